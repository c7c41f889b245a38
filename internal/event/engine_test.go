package event_test

import (
	"strings"
	"testing"

	"github.com/thyth/mudcore/internal/codec"
	"github.com/thyth/mudcore/internal/event"
	"github.com/thyth/mudcore/internal/flow"
	"github.com/thyth/mudcore/internal/logging"
	"github.com/thyth/mudcore/internal/rules"
	"github.com/thyth/mudcore/internal/script"
)

// harness wires a real engine to a real Lua runtime, the way the cmd/
// binaries do, minus the sockets and the terminal.
type harness struct {
	engine   *event.Engine
	lua      *script.Runtime
	triggers *rules.Triggers
	aliases  *rules.Aliases
	timers   *rules.Timers
	cdc      *codec.Codec
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		cdc:      codec.New(),
		triggers: rules.NewTriggers(),
		aliases:  rules.NewAliases(),
		timers:   rules.NewTimers(),
	}
	vars := event.NewVars()
	h.engine = event.NewEngine(logging.Discard(), h.cdc, flow.NewFlow(100, 80, true),
		rules.NewTriggerCache(10), h.triggers, h.aliases, h.timers, vars, ';', false, false)
	h.lua = script.New(h.engine, vars)
	h.engine.SetScriptHost(h.lua)
	t.Cleanup(h.lua.Close)
	return h
}

// runScript pushes src through the full user-output path, as if typed in
// script mode on the command bar.
func (h *harness) runScript(t *testing.T, src string) []event.Output {
	t.Helper()
	return h.engine.HandleEvent(event.Event{
		Kind: event.KindUserOutput, UserOutputKind: event.OutputScript, UserOutputText: src,
	})
}

// submit pushes a command line through alias matching and segment splitting.
func (h *harness) submit(cmd string) []event.Output {
	return h.engine.HandleEvent(event.Event{
		Kind: event.KindUserOutput, UserOutputKind: event.OutputCmd, UserOutputText: cmd,
	})
}

func (h *harness) feedWorld(raw []byte) []event.Output {
	return h.engine.HandleEvent(event.Event{Kind: event.KindWorldBytes, WorldBytes: raw})
}

func toServer(outs []event.Output) string {
	var sb strings.Builder
	for _, o := range outs {
		sb.WriteString(o.ToServer)
	}
	return sb.String()
}

func toUI(outs []event.Output) []string {
	var lines []string
	for _, o := range outs {
		if o.ToUIText != "" {
			lines = append(lines, o.ToUIText)
		}
	}
	return lines
}

func TestAliasExpansion(t *testing.T) {
	h := newHarness(t)
	h.runScript(t, `CreateAlias("n", "", "^n$", alias_flag.Enabled, function() Send("north") end)`)

	outs := h.submit("n")
	if got := toServer(outs); got != "north\n" {
		t.Fatalf("expected exactly north\\n to the world, got %q", got)
	}
}

func TestMultiSegmentWithMixedAlias(t *testing.T) {
	h := newHarness(t)
	h.runScript(t, `CreateAlias("num", "", [[^num (\d+)\s+(\d+)$]], alias_flag.Enabled,
		function(name, text, wc) Send(wc[1] .. wc[2]) end)`)

	outs := h.submit("x;num 123 456")
	if got := toServer(outs); got != "x\n123456\n" {
		t.Fatalf("expected x\\n123456\\n, got %q", got)
	}
}

func TestSingleLineTriggerUTF8(t *testing.T) {
	h := newHarness(t)
	h.runScript(t, `SwitchCodec("utf8")`)
	h.runScript(t, `CreateTrigger("zhang", "", "^张三走了过来。$", trigger_flag.Enabled, 1,
		function() Send("triggered") end)`)

	outs := h.feedWorld([]byte("张三走了过来。\r\n"))
	ui := toUI(outs)
	if len(ui) != 1 || ui[0] != "张三走了过来。\r\n" {
		t.Fatalf("expected one UI line with the raw text, got %q", ui)
	}
	if got := toServer(outs); got != "triggered\n" {
		t.Fatalf("expected triggered\\n, got %q", got)
	}
	// the UI line must precede the trigger's send
	if outs[0].ToUIText == "" {
		t.Fatalf("expected UI emission before trigger send, got %+v", outs)
	}
}

func TestMultiLineTrigger(t *testing.T) {
	h := newHarness(t)
	h.runScript(t, `SwitchCodec("utf8")`)
	h.runScript(t, `CreateTrigger("two", "", [[^张三走了过来。\r\n李四走了过来。$]],
		trigger_flag.Enabled, 2, function() Send("triggered") end)`)

	outs := h.feedWorld([]byte("张三走了过来。\r\n"))
	if got := toServer(outs); got != "" {
		t.Fatalf("first line alone must not fire, got %q", got)
	}
	outs = h.feedWorld([]byte("李四走了过来。\r\n"))
	if got := toServer(outs); got != "triggered\n" {
		t.Fatalf("expected triggered\\n after second line, got %q", got)
	}
}

func TestWildcardTrigger(t *testing.T) {
	h := newHarness(t)
	h.runScript(t, `SwitchCodec("utf8")`)
	h.runScript(t, `CreateTrigger("who", "", [[^(.*)走了过来。$]], trigger_flag.Enabled, 1,
		function(name, text, wc) Send(wc[1]) end)`)

	outs := h.feedWorld([]byte("张三走了过来。\r\n"))
	if got := toServer(outs); got != "张三\n" {
		t.Fatalf("expected first capture to reach the world, got %q", got)
	}
}

func TestOneShotTriggerFiresOnce(t *testing.T) {
	h := newHarness(t)
	h.runScript(t, `SwitchCodec("utf8")`)
	h.runScript(t, `CreateTrigger("once", "", "^hit$",
		trigger_flag.Enabled + trigger_flag.OneShot, 1, function() Send("ow") end)`)

	outs := h.feedWorld([]byte("hit\r\n"))
	if got := toServer(outs); got != "ow\n" {
		t.Fatalf("expected first feed to fire, got %q", got)
	}
	if _, ok := h.triggers.Get("once"); ok {
		t.Fatalf("one-shot trigger must be removed from the store after firing")
	}
	outs = h.feedWorld([]byte("hit\r\n"))
	if got := toServer(outs); got != "" {
		t.Fatalf("second identical feed must not fire, got %q", got)
	}
}

func TestTriggerActionsApplyBeforeNextLine(t *testing.T) {
	h := newHarness(t)
	h.runScript(t, `SwitchCodec("utf8")`)
	h.runScript(t, `
		CreateTrigger("first", "", "^one$", trigger_flag.Enabled, 1, function()
			DeleteTrigger("second")
			Send("saw-one")
		end)
		CreateTrigger("second", "", "^two$", trigger_flag.Enabled, 1, function()
			Send("saw-two")
		end)
	`)

	// both lines arrive in one chunk; the first trigger deletes the second
	// before the second line is examined
	outs := h.feedWorld([]byte("one\r\ntwo\r\n"))
	if got := toServer(outs); got != "saw-one\n" {
		t.Fatalf("expected only saw-one\\n, got %q", got)
	}
}

func TestDecodeStatefulAcrossChunks(t *testing.T) {
	h := newHarness(t)
	h.runScript(t, `SwitchCodec("utf8")`)
	h.runScript(t, `CreateTrigger("t", "", "^张三$", trigger_flag.Enabled, 1,
		function() Send("ok") end)`)

	raw := []byte("张三\r\n")
	// split inside the first multi-byte character
	outs := h.feedWorld(raw[:2])
	if got := toServer(outs); got != "" {
		t.Fatalf("partial sequence must not produce output, got %q", got)
	}
	outs = h.feedWorld(raw[2:])
	if got := toServer(outs); got != "ok\n" {
		t.Fatalf("expected trigger after completing the sequence, got %q", got)
	}
}

func TestEmptyInputSendsBareNewline(t *testing.T) {
	h := newHarness(t)
	outs := h.submit("")
	if got := toServer(outs); got != "\n" {
		t.Fatalf("expected bare newline, got %q", got)
	}
}

func TestDeleteAliasDropsCallback(t *testing.T) {
	h := newHarness(t)
	h.runScript(t, `CreateAlias("n", "", "^n$", alias_flag.Enabled, function() Send("north") end)`)
	h.runScript(t, `DeleteAlias("n")`)

	outs := h.submit("n")
	if got := toServer(outs); got != "n\n" {
		t.Fatalf("deleted alias must not rewrite input, got %q", got)
	}
}

func TestTimerFiredRunsCallback(t *testing.T) {
	h := newHarness(t)
	h.runScript(t, `CreateTimer("tick", "", 5, timer_flag.Enabled, function() Send("tick") end)`)

	if _, ok := h.timers.Get("tick"); !ok {
		t.Fatalf("expected timer model in store")
	}
	// stand in for the scheduler goroutine delivering the fired tick
	outs := h.engine.HandleEvent(event.Event{Kind: event.KindTimerFired, TimerName: "tick"})
	if got := toServer(outs); got != "tick\n" {
		t.Fatalf("expected tick\\n, got %q", got)
	}
	// repeating timer keeps both its model and its callback
	outs = h.engine.HandleEvent(event.Event{Kind: event.KindTimerFired, TimerName: "tick"})
	if got := toServer(outs); got != "tick\n" {
		t.Fatalf("expected repeating timer to fire again, got %q", got)
	}
}

func TestOneShotTimerRemovedAfterFiring(t *testing.T) {
	h := newHarness(t)
	h.runScript(t, `DoAfter(5, function() Send("later") end)`)

	all := h.timers.All()
	if len(all) != 1 {
		t.Fatalf("expected one DoAfter timer, got %d", len(all))
	}
	name := all[0].Name
	outs := h.engine.HandleEvent(event.Event{Kind: event.KindTimerFired, TimerName: name})
	if got := toServer(outs); got != "later\n" {
		t.Fatalf("expected later\\n, got %q", got)
	}
	if _, ok := h.timers.Get(name); ok {
		t.Fatalf("spent one-shot timer must be removed from the store")
	}
}

func TestDrainLimitBreaksRecursion(t *testing.T) {
	h := newHarness(t)
	h.runScript(t, `CreateAlias("loop", "", "^x$", alias_flag.Enabled, function() Send("x") end)`)

	// each Send("x") re-enters the alias; the drain cap must break the cycle
	// and HandleEvent must return rather than recurse forever
	outs := h.submit("x")
	if len(outs) > 40 {
		t.Fatalf("expected the drain cap to bound output, got %d outputs", len(outs))
	}
}

func TestWorldDisconnectedSurfacesUILine(t *testing.T) {
	h := newHarness(t)
	outs := h.engine.HandleEvent(event.Event{Kind: event.KindWorldDisconnected})
	ui := toUI(outs)
	if len(ui) != 1 || !strings.Contains(ui[0], "disconnected") {
		t.Fatalf("expected a disconnect notice, got %q", ui)
	}
}

func TestSwitchCodecChangesDecoding(t *testing.T) {
	h := newHarness(t)
	if h.cdc.Name() != codec.GB18030 {
		t.Fatalf("expected GB18030 default")
	}
	h.runScript(t, `SwitchCodec("big5")`)
	if h.cdc.Name() != codec.Big5 {
		t.Fatalf("expected big5 after SwitchCodec, got %v", h.cdc.Name())
	}
}
