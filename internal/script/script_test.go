package script

import (
	"testing"

	"github.com/thyth/mudcore/internal/event"
)

type fakeSink struct {
	actions []event.Action
}

func (f *fakeSink) Enqueue(a event.Action) { f.actions = append(f.actions, a) }

func TestSetGetVariable(t *testing.T) {
	sink := &fakeSink{}
	vars := event.NewVars()
	rt := New(sink, vars)
	defer rt.Close()

	if err := rt.RunChunk("<test>", `SetVariable("a", "b")`); err != nil {
		t.Fatalf("exec: %v", err)
	}
	if got := vars.Get("a"); got != "b" {
		t.Fatalf("expected a=b, got %q", got)
	}
	if err := rt.RunChunk("<test>", `assert(GetVariable("a") == "b")`); err != nil {
		t.Fatalf("GetVariable mismatch: %v", err)
	}
}

func TestSendEnqueuesExecuteUserOutput(t *testing.T) {
	sink := &fakeSink{}
	rt := New(sink, event.NewVars())
	defer rt.Close()

	if err := rt.RunChunk("<test>", `Send("north")`); err != nil {
		t.Fatalf("exec: %v", err)
	}
	if len(sink.actions) != 1 || sink.actions[0].Kind != event.ActionExecuteUserOutput || sink.actions[0].OutputText != "north" {
		t.Fatalf("expected one ExecuteUserOutput(north) action, got %+v", sink.actions)
	}
}

func TestCreateAliasRegistersCallbackAndEnqueues(t *testing.T) {
	sink := &fakeSink{}
	rt := New(sink, event.NewVars())
	defer rt.Close()

	err := rt.RunChunk("<test>", `
		function onNorth(name, text, wildcards)
			SetVariable("lastAlias", name)
		end
		CreateAlias("n", "nav", "^n$", alias_flag.Enabled, onNorth)
	`)
	if err != nil {
		t.Fatalf("exec: %v", err)
	}
	if len(sink.actions) != 1 || sink.actions[0].Kind != event.ActionCreateAlias {
		t.Fatalf("expected one CreateAlias action, got %+v", sink.actions)
	}
	if _, ok := rt.aliasCallbacks["n"]; !ok {
		t.Fatalf("expected alias callback 'n' registered")
	}

	if err := rt.RunAliasCallback("n", "n", []string{"n"}, nil); err != nil {
		t.Fatalf("RunAliasCallback: %v", err)
	}
	if got := rt.vars.Get("lastAlias"); got != "n" {
		t.Fatalf("expected callback to run with name 'n', got %q", got)
	}
}

func TestCreateAliasDuplicateNameRejected(t *testing.T) {
	sink := &fakeSink{}
	rt := New(sink, event.NewVars())
	defer rt.Close()

	script := `
		function cb(name, text, wildcards) end
		CreateAlias("dup", "", "x", alias_flag.Enabled, cb)
	`
	if err := rt.RunChunk("<test>", script); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if err := rt.RunChunk("<test>", `CreateAlias("dup", "", "y", alias_flag.Enabled, cb)`); err == nil {
		t.Fatalf("expected duplicate alias name to fail")
	}
	if len(sink.actions) != 1 {
		t.Fatalf("duplicate rejection must not enqueue a second action, got %+v", sink.actions)
	}
}

func TestCreateTriggerWithWildcards(t *testing.T) {
	sink := &fakeSink{}
	rt := New(sink, event.NewVars())
	defer rt.Close()

	err := rt.RunChunk("<test>", `
		function onHit(name, text, wildcards)
			SetVariable("who", wildcards[1])
		end
		CreateTrigger("hit", "", "(\\w+) hits you", trigger_flag.Enabled, 1, onHit)
	`)
	if err != nil {
		t.Fatalf("exec: %v", err)
	}
	if err := rt.RunTriggerCallback("hit", "troll hits you", []string{"troll hits you", "troll"}, nil); err != nil {
		t.Fatalf("RunTriggerCallback: %v", err)
	}
	if got := rt.vars.Get("who"); got != "troll" {
		t.Fatalf("expected who=troll, got %q", got)
	}
}

func TestDoAfterCreatesOneShotTimer(t *testing.T) {
	sink := &fakeSink{}
	rt := New(sink, event.NewVars())
	defer rt.Close()

	if err := rt.RunChunk("<test>", `DoAfter(100, function(name) SetVariable("fired", "yes") end)`); err != nil {
		t.Fatalf("exec: %v", err)
	}
	if len(sink.actions) != 1 || sink.actions[0].Kind != event.ActionCreateTimer {
		t.Fatalf("expected one CreateTimer action, got %+v", sink.actions)
	}
	spec := sink.actions[0].TimerSpec
	if !spec.OneShot || !spec.Enabled || spec.TickMillis != 100 {
		t.Fatalf("expected enabled one-shot 100ms timer, got %+v", spec)
	}
	if err := rt.RunTimerCallback(spec.Name); err != nil {
		t.Fatalf("RunTimerCallback: %v", err)
	}
	if rt.vars.Get("fired") != "yes" {
		t.Fatalf("expected DoAfter callback to run")
	}
}

func TestGetUniqueIDIsFreshEachCall(t *testing.T) {
	rt := New(&fakeSink{}, event.NewVars())
	defer rt.Close()
	if err := rt.RunChunk("<test>", `
		a = GetUniqueID()
		b = GetUniqueID()
		assert(a ~= b)
		assert(#a > 0)
	`); err != nil {
		t.Fatalf("exec: %v", err)
	}
}
