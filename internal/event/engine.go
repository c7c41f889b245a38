package event

import (
	"time"

	"github.com/thyth/mudcore/internal/ansimxp"
	"github.com/thyth/mudcore/internal/codec"
	"github.com/thyth/mudcore/internal/flow"
	"github.com/thyth/mudcore/internal/logging"
	"github.com/thyth/mudcore/internal/rules"
)

// maxDrainIterations bounds the action-queue drain per external event
// (spec §4.8: "If the drain does not complete within 30 iterations, log
// and abort the drain to prevent infinite recursion").
const maxDrainIterations = 30

// ActionSink is anything that can receive further actions produced while
// draining the queue — the Engine itself, and (via this interface) the
// script host, so that a callback's bound-function calls land on the same
// queue rather than a side channel.
type ActionSink interface {
	Enqueue(Action)
}

// ScriptHost runs interpreter callbacks synchronously on the engine thread
// (spec §4.7). Implemented by internal/script.Runtime; declared here so the
// engine can hold one without importing the script package (which imports
// this one for Action/ActionSink).
type ScriptHost interface {
	RunAliasCallback(name, matchText string, groups []string, named map[string]string) error
	RunTriggerCallback(name, matchText string, groups []string, named map[string]string) error
	RunTimerCallback(name string) error
	RunFile(path string) error
	RunChunk(name, source string) error
	DropAliasCallback(name string)
	DropTriggerCallback(name string)
	DropTimerCallback(name string)
}

// Output is one unit of work the engine hands to the outbound handler after
// draining the action queue (spec §4.8 step 4).
type Output struct {
	ToServer  string          // non-empty: bytes to write to the world socket
	ToUIText  string          // non-empty/ToUISpans non-nil: a line to render
	ToUISpans []ansimxp.Span
}

// Engine is the single-threaded reducer owning every piece of mutable
// session state (spec §5: "only thread that mutates them").
type Engine struct {
	log      *logging.Logger
	codec    *codec.Codec
	flow     *flow.Flow
	cache    *rules.TriggerCache
	triggers *rules.Triggers
	aliases  *rules.Aliases
	timers   *rules.Timers
	vars     *Vars
	script   ScriptHost

	cmdDelimiter rune
	ignoreEmpty  bool
	sendEmptyCmd bool

	queue   []Action
	outputs []Output
}

// NewEngine wires the component instances the reducer composes. The timers
// store carries its own delay queue; a dedicated scheduler goroutine blocks
// on it and feeds KindTimerFired events back here.
func NewEngine(log *logging.Logger, cdc *codec.Codec, fl *flow.Flow, cache *rules.TriggerCache,
	triggers *rules.Triggers, aliases *rules.Aliases, timers *rules.Timers, vars *Vars,
	cmdDelimiter rune, ignoreEmpty, sendEmptyCmd bool) *Engine {
	return &Engine{
		log: log, codec: cdc, flow: fl, cache: cache,
		triggers: triggers, aliases: aliases, timers: timers, vars: vars,
		cmdDelimiter: cmdDelimiter, ignoreEmpty: ignoreEmpty, sendEmptyCmd: sendEmptyCmd,
	}
}

// SetScriptHost attaches the interpreter that runs alias/trigger/timer
// callbacks. Separate from NewEngine since the script host is typically
// constructed with a reference back to the engine as its ActionSink.
func (e *Engine) SetScriptHost(h ScriptHost) { e.script = h }

// Vars exposes the engine's variable table (e.g. for a status line).
func (e *Engine) Vars() *Vars { return e.vars }

// Enqueue appends action to the temp queue (satisfies ActionSink; called by
// both event translation and script callbacks).
func (e *Engine) Enqueue(a Action) { e.queue = append(e.queue, a) }

// HandleEvent translates one external Event into actions and drains the
// queue to empty before returning, per spec §4.8 and invariant 5. It
// returns the Outputs accumulated while draining.
func (e *Engine) HandleEvent(ev Event) []Output {
	e.outputs = e.outputs[:0]
	e.translate(ev)
	e.drain()
	return e.outputs
}

func (e *Engine) translate(ev Event) {
	switch ev.Kind {
	case KindWorldBytes:
		e.Enqueue(Action{Kind: ActionParseWorldBytes, WorldBytes: ev.WorldBytes})
	case KindUserOutput:
		e.Enqueue(Action{Kind: ActionExecuteUserOutput, OutputKind: ev.UserOutputKind, OutputText: ev.UserOutputText})
	case KindTimerFired:
		e.handleTimerFired(ev.TimerName)
	case KindWorldDisconnected:
		e.emitUI("[disconnected]\n", nil)
	default:
		// Terminal/window/client-lifecycle events are handled by the cmd/
		// binaries' glue; the engine proper only drives the
		// world/script/timer pipeline.
	}
}

func (e *Engine) handleTimerFired(name string) {
	tm, ok := e.timers.Get(name)
	if !ok {
		return
	}
	if e.script != nil {
		if err := e.script.RunTimerCallback(tm.Callback); err != nil {
			e.log.Warnf("timer %s callback error: %v", name, err)
		}
	}
	// The scheduler already disabled a fired one-shot instead of
	// rescheduling it; drop the spent model (and its callback) entirely so
	// DoAfter's synthesised timers don't accumulate.
	if tm.OneShot {
		e.Enqueue(Action{Kind: ActionDeleteTimer, Name: name})
	}
}

// drain pops and executes actions until the queue is empty, capped at
// maxDrainIterations total actions processed (spec §4.8 step 3).
func (e *Engine) drain() {
	n := 0
	for len(e.queue) > 0 {
		if n >= maxDrainIterations {
			e.log.Errorf("action queue drain exceeded %d iterations, aborting", maxDrainIterations)
			e.queue = e.queue[:0]
			return
		}
		a := e.queue[0]
		e.queue = e.queue[1:]
		e.apply(a)
		n++
	}
}

func (e *Engine) apply(a Action) {
	switch a.Kind {
	case ActionSwitchCodec:
		if n, ok := codec.ParseName(a.CodecName); ok {
			e.codec.Switch(n)
		}
	case ActionCreateAlias:
		e.applyCreateAlias(a.AliasSpec)
	case ActionDeleteAlias:
		if e.aliases.Remove(a.Name) && e.script != nil {
			e.script.DropAliasCallback(a.Name)
		}
	case ActionEnableAliasGroup:
		e.aliases.EnableGroup(a.Name, a.Enabled)
	case ActionCreateTrigger:
		e.applyCreateTrigger(a.TriggerSpec)
	case ActionDeleteTrigger:
		if e.triggers.Remove(a.Name) && e.script != nil {
			e.script.DropTriggerCallback(a.Name)
		}
	case ActionEnableTriggerGroup:
		e.triggers.EnableGroup(a.Name, a.Enabled)
	case ActionCreateTimer:
		e.applyCreateTimer(a.TimerSpec)
	case ActionDeleteTimer:
		if e.timers.Remove(a.Name) && e.script != nil {
			e.script.DropTimerCallback(a.Name)
		}
	case ActionEnableTimerGroup:
		for _, t := range e.timers.All() {
			if t.Group == a.Name {
				e.timers.Enable(t.Name, a.Enabled)
			}
		}
	case ActionLoadFile:
		if e.script != nil {
			if err := e.script.RunFile(a.Name); err != nil {
				e.log.Warnf("LoadFile(%s) error: %v", a.Name, err)
			}
		}
	case ActionRunScript:
		if e.script != nil {
			if err := e.script.RunChunk(a.ScriptName, a.ScriptSource); err != nil {
				e.log.Warnf("script %s error: %v", a.ScriptName, err)
			}
		}
	case ActionExecuteUserOutput:
		e.applyExecuteUserOutput(a.OutputKind, a.OutputText)
	case ActionParseWorldBytes:
		e.applyParseWorldBytes(a.WorldBytes)
	case ActionProcessWorldLines:
		e.applyProcessWorldLines(a.RawLines)
	case ActionSendLineToUI:
		e.emitUI(a.UILine, a.UISpans)
	case ActionSendToServer:
		e.outputs = append(e.outputs, Output{ToServer: a.ServerMsg})
	}
}

func (e *Engine) emitUI(text string, spans []ansimxp.Span) {
	e.outputs = append(e.outputs, Output{ToUIText: text, ToUISpans: spans})
}

func (e *Engine) applyCreateAlias(spec AliasSpec) {
	if spec.Pattern == "" {
		e.log.Warnf("CreateAlias %s: empty pattern rejected", spec.Name)
		return
	}
	a, err := rules.NewAlias(spec.Name, spec.Group, spec.Pattern, spec.IsRegex, spec.Enabled, rules.Target(spec.Target), spec.Callback)
	if err != nil {
		e.log.Warnf("CreateAlias %s: %v", spec.Name, err)
		return
	}
	if err := e.aliases.Add(a); err != nil {
		e.log.Warnf("CreateAlias %s: %v", spec.Name, err)
	}
}

func (e *Engine) applyCreateTrigger(spec TriggerSpec) {
	if spec.Pattern == "" {
		e.log.Warnf("CreateTrigger %s: empty pattern rejected", spec.Name)
		return
	}
	t, err := rules.NewTrigger(spec.Name, spec.Group, spec.Pattern, spec.IsRegex, spec.MatchLines,
		spec.Enabled, spec.OneShot, spec.KeepEvaluating, spec.Callback)
	if err != nil {
		e.log.Warnf("CreateTrigger %s: %v", spec.Name, err)
		return
	}
	if err := e.triggers.Add(t); err != nil {
		e.log.Warnf("CreateTrigger %s: %v", spec.Name, err)
	}
}

func (e *Engine) applyCreateTimer(spec TimerSpec) {
	tick := time.Duration(spec.TickMillis) * time.Millisecond
	tm := rules.NewTimer(spec.Name, spec.Group, tick, spec.Enabled, spec.OneShot, spec.Callback)
	if err := e.timers.Insert(tm); err != nil {
		e.log.Warnf("CreateTimer %s: %v", spec.Name, err)
	}
}

// applyParseWorldBytes decodes with the current codec and splits on '\n'
// into RawLines, enqueuing ActionProcessWorldLines (spec §4.8).
func (e *Engine) applyParseWorldBytes(raw []byte) {
	text := e.codec.Decode(raw)
	if text == "" {
		return
	}
	lines := splitKeepNewline(text)
	e.Enqueue(Action{Kind: ActionProcessWorldLines, RawLines: lines})
}

// applyProcessWorldLines feeds each line through the flow/cache/trigger
// pipeline, draining the queue between lines so a trigger's own actions take
// effect before the next line is examined (spec §4.8, invariant 5).
func (e *Engine) applyProcessWorldLines(lines []string) {
	for _, line := range lines {
		var lastStyles []ansimxp.Span
		for _, outLine := range e.flow.Push(line) {
			e.outputs = append(e.outputs, Output{ToUIText: outLine.Content(), ToUISpans: outLine.Spans})
			lastStyles = outLine.Spans
		}
		if !endsWithNewline(line) {
			continue // unterminated tail: not yet a complete line to cache/trigger
		}
		trimmed := rules.TrimEnding(line)
		e.cache.Push(trimmed, lastStyles)

		trig, text, styles, ok := e.triggers.TriggerFirst(e.cache)
		if !ok {
			continue
		}
		if styles == nil {
			styles = lastStyles
		}
		groups, named := captureGroups(trig, text)
		if e.script != nil {
			if err := e.script.RunTriggerCallback(trig.Callback, text, groups, named); err != nil {
				e.log.Warnf("trigger %s callback error: %v", trig.Name, err)
			}
		}
		if trig.OneShot {
			e.Enqueue(Action{Kind: ActionDeleteTrigger, Name: trig.Name})
		}
		e.drain()
	}
}

func captureGroups(t *rules.Trigger, text string) ([]string, map[string]string) {
	m, ok := t.Captures(text)
	if !ok {
		return nil, nil
	}
	return m.Groups, m.Named
}

// applyExecuteUserOutput strips the trailing newline, splits on the
// configured delimiter and '\n', optionally drops empty segments, and for
// each segment either runs a matching alias or sends it to the world (spec
// §4.8).
func (e *Engine) applyExecuteUserOutput(kind OutputKind, text string) {
	if kind == OutputScript {
		e.Enqueue(Action{Kind: ActionRunScript, ScriptName: "<input>", ScriptSource: text})
		return
	}
	if trimTrailingNewline(text) == "" {
		e.Enqueue(Action{Kind: ActionSendToServer, ServerMsg: "\n"})
		return
	}
	segments := splitCommand(text, e.cmdDelimiter)
	for _, seg := range segments {
		if seg == "" {
			if e.ignoreEmpty {
				continue
			}
			if !e.sendEmptyCmd {
				continue
			}
			e.Enqueue(Action{Kind: ActionSendToServer, ServerMsg: "\n"})
			continue
		}
		if a, ok := e.aliases.MatchFirst(seg); ok {
			groups, named := aliasCaptures(a, seg)
			if e.script != nil {
				if err := e.script.RunAliasCallback(a.Callback, seg, groups, named); err != nil {
					e.log.Warnf("alias %s callback error: %v", a.Name, err)
				}
			}
			continue
		}
		e.Enqueue(Action{Kind: ActionSendToServer, ServerMsg: seg + "\n"})
	}
}

func aliasCaptures(a *rules.Alias, text string) ([]string, map[string]string) {
	m, ok := a.Captures(text)
	if !ok {
		return nil, nil
	}
	return m.Groups, m.Named
}

func splitKeepNewline(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			out = append(out, s[start:i+1])
			start = i + 1
		}
	}
	if start < len(s) {
		out = append(out, s[start:])
	}
	return out
}

func endsWithNewline(s string) bool {
	return len(s) > 0 && s[len(s)-1] == '\n'
}

func splitCommand(text string, delim rune) []string {
	trimmed := trimTrailingNewline(text)
	var segments []string
	var cur []rune
	for _, r := range trimmed {
		if r == '\n' || r == delim {
			segments = append(segments, string(cur))
			cur = cur[:0]
			continue
		}
		cur = append(cur, r)
	}
	segments = append(segments, string(cur))
	return segments
}

func trimTrailingNewline(s string) string {
	if len(s) > 0 && s[len(s)-1] == '\n' {
		return s[:len(s)-1]
	}
	return s
}
