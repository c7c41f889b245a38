// Package script embeds the Lua interpreter (C7): the bound-function
// surface enumerated in spec §4.7, backed by github.com/yuin/gopher-lua (the
// Go analogue of the original's rlua/mlua embedding, per SPEC_FULL.md's
// DOMAIN STACK).
//
// Grounded on original_source/src/script.rs's setup_script_functions and
// original_source/src/runtime/init.rs's init_lua: each bound function there
// has a direct counterpart here, translated from "push onto an Arc<Mutex<
// VecDeque<EngineAction>>>" into "Enqueue onto the engine's event.ActionSink".
// Callback registries (alias/trigger/timer name -> Lua function) are kept as
// plain Go maps rather than a Lua-side table, since Go has no trouble
// holding a *lua.LFunction directly and doing so lets DeleteAlias/Trigger/
// Timer drop the registry entry without a second Lua round-trip.
package script

import (
	"fmt"

	"github.com/google/uuid"
	lua "github.com/yuin/gopher-lua"

	"github.com/thyth/mudcore/internal/ansimxp"
	"github.com/thyth/mudcore/internal/event"
	"github.com/thyth/mudcore/internal/flow"
	"github.com/thyth/mudcore/internal/rules"
)

// Runtime is the engine's ScriptHost (event.ScriptHost): it owns the Lua
// state and the three name-keyed callback registries, and runs every
// callback synchronously on the caller's goroutine (spec §4.7: "calls into
// the interpreter run synchronously on the engine thread").
type Runtime struct {
	L    *lua.LState
	sink event.ActionSink
	vars *event.Vars

	aliasCallbacks   map[string]*lua.LFunction
	triggerCallbacks map[string]*lua.LFunction
	timerCallbacks   map[string]*lua.LFunction
}

// New returns a Runtime with every bound function registered in the Lua
// global table. sink receives the actions bound functions enqueue (normally
// the event.Engine itself, so that callback-derived actions land on its
// drain queue rather than a side channel — spec §4.7's "breaks ownership
// cycles" design note).
func New(sink event.ActionSink, vars *event.Vars) *Runtime {
	r := &Runtime{
		L:                lua.NewState(),
		sink:             sink,
		vars:             vars,
		aliasCallbacks:   map[string]*lua.LFunction{},
		triggerCallbacks: map[string]*lua.LFunction{},
		timerCallbacks:   map[string]*lua.LFunction{},
	}
	r.register()
	return r
}

// Close releases the Lua state.
func (r *Runtime) Close() { r.L.Close() }

func (r *Runtime) register() {
	reg := func(name string, fn lua.LGFunction) { r.L.SetGlobal(name, r.L.NewFunction(fn)) }

	reg("SetVariable", r.luaSetVariable)
	reg("GetVariable", r.luaGetVariable)
	reg("SwitchCodec", r.luaSwitchCodec)
	reg("Send", r.luaSend)
	reg("Note", r.luaNote)
	reg("ColourNote", r.luaColourNote)
	reg("CreateAlias", r.luaCreateAlias)
	reg("DeleteAlias", r.luaDeleteAlias)
	reg("EnableAliasGroup", r.luaEnableAliasGroup)
	reg("CreateTrigger", r.luaCreateTrigger)
	reg("DeleteTrigger", r.luaDeleteTrigger)
	reg("EnableTriggerGroup", r.luaEnableTriggerGroup)
	reg("CreateTimer", r.luaCreateTimer)
	reg("DeleteTimer", r.luaDeleteTimer)
	reg("EnableTimerGroup", r.luaEnableTimerGroup)
	reg("DoAfter", r.luaDoAfter)
	reg("GetUniqueID", r.luaGetUniqueID)
	reg("LoadFile", r.luaLoadFile)

	// alias/trigger/timer flag bit constants, mirroring
	// original_source/src/runtime/init.rs's alias_flag/trigger_flag/
	// timer_flag globals so user scripts can compose flags the same way.
	flagTable := func(pairs map[string]int) *lua.LTable {
		t := r.L.NewTable()
		for k, v := range pairs {
			t.RawSetString(k, lua.LNumber(v))
		}
		return t
	}
	r.L.SetGlobal("alias_flag", flagTable(map[string]int{"Enabled": 1, "KeepEvaluating": 8}))
	r.L.SetGlobal("trigger_flag", flagTable(map[string]int{"Enabled": 1, "KeepEvaluating": 8, "OneShot": 32768}))
	r.L.SetGlobal("timer_flag", flagTable(map[string]int{"Enabled": 1, "OneShot": 4}))
}

// --- bound functions (spec §4.7) ---

func (r *Runtime) luaSetVariable(L *lua.LState) int {
	k := L.CheckString(1)
	v := L.CheckString(2)
	r.vars.Set(k, v)
	return 0
}

func (r *Runtime) luaGetVariable(L *lua.LState) int {
	k := L.CheckString(1)
	L.Push(lua.LString(r.vars.Get(k)))
	return 1
}

func (r *Runtime) luaSwitchCodec(L *lua.LState) int {
	name := L.CheckString(1)
	r.sink.Enqueue(event.Action{Kind: event.ActionSwitchCodec, CodecName: name})
	return 0
}

func (r *Runtime) luaSend(L *lua.LState) int {
	s := L.CheckString(1)
	r.sink.Enqueue(event.Action{Kind: event.ActionExecuteUserOutput, OutputKind: event.OutputCmd, OutputText: s})
	return 0
}

func (r *Runtime) luaNote(L *lua.LState) int {
	s := L.CheckString(1)
	r.sink.Enqueue(event.Action{Kind: event.ActionSendLineToUI, UILine: s, UISpans: flow.Note(s).Spans})
	return 0
}

func (r *Runtime) luaColourNote(L *lua.LState) int {
	fg := L.CheckString(1)
	bg := L.CheckString(2)
	text := L.CheckString(3)
	r.sink.Enqueue(event.Action{
		Kind:    event.ActionSendLineToUI,
		UILine:  text,
		UISpans: colourNoteSpans(fg, bg, text),
	})
	return 0
}

func (r *Runtime) luaGetUniqueID(L *lua.LState) int {
	L.Push(lua.LString(uuid.New().String()))
	return 1
}

func (r *Runtime) luaLoadFile(L *lua.LState) int {
	path := L.CheckString(1)
	r.sink.Enqueue(event.Action{Kind: event.ActionLoadFile, Name: path})
	return 0
}

func (r *Runtime) luaCreateAlias(L *lua.LState) int {
	name := L.CheckString(1)
	group := L.CheckString(2)
	pattern := L.CheckString(3)
	flags := L.CheckInt(4)
	fn := L.CheckFunction(5)

	if pattern == "" {
		L.RaiseError("CreateAlias: empty pattern not allowed")
		return 0
	}
	if _, exists := r.aliasCallbacks[name]; exists {
		L.RaiseError("CreateAlias: alias callback %q already exists", name)
		return 0
	}
	r.aliasCallbacks[name] = fn
	r.sink.Enqueue(event.Action{Kind: event.ActionCreateAlias, AliasSpec: event.AliasSpec{
		Name: name, Group: group, Pattern: pattern, IsRegex: true,
		Enabled:  flags&1 != 0,
		Target:   int(rules.TargetScript),
		Callback: name,
	}})
	return 0
}

func (r *Runtime) luaDeleteAlias(L *lua.LState) int {
	name := L.CheckString(1)
	delete(r.aliasCallbacks, name)
	r.sink.Enqueue(event.Action{Kind: event.ActionDeleteAlias, Name: name})
	return 0
}

func (r *Runtime) luaEnableAliasGroup(L *lua.LState) int {
	name := L.CheckString(1)
	enabled := L.CheckBool(2)
	r.sink.Enqueue(event.Action{Kind: event.ActionEnableAliasGroup, Name: name, Enabled: enabled})
	return 0
}

func (r *Runtime) luaCreateTrigger(L *lua.LState) int {
	name := L.CheckString(1)
	group := L.CheckString(2)
	pattern := L.CheckString(3)
	flags := L.CheckInt(4)
	matchLines := L.OptInt(5, 1)
	fn := L.CheckFunction(6)

	if pattern == "" {
		L.RaiseError("CreateTrigger: empty pattern not allowed")
		return 0
	}
	if _, exists := r.triggerCallbacks[name]; exists {
		L.RaiseError("CreateTrigger: trigger callback %q already exists", name)
		return 0
	}
	r.triggerCallbacks[name] = fn
	r.sink.Enqueue(event.Action{Kind: event.ActionCreateTrigger, TriggerSpec: event.TriggerSpec{
		Name: name, Group: group, Pattern: pattern, IsRegex: true,
		MatchLines:     matchLines,
		Enabled:        flags&1 != 0,
		OneShot:        flags&32768 != 0,
		KeepEvaluating: flags&8 != 0,
		Callback:       name,
	}})
	return 0
}

func (r *Runtime) luaDeleteTrigger(L *lua.LState) int {
	name := L.CheckString(1)
	delete(r.triggerCallbacks, name)
	r.sink.Enqueue(event.Action{Kind: event.ActionDeleteTrigger, Name: name})
	return 0
}

func (r *Runtime) luaEnableTriggerGroup(L *lua.LState) int {
	name := L.CheckString(1)
	enabled := L.CheckBool(2)
	r.sink.Enqueue(event.Action{Kind: event.ActionEnableTriggerGroup, Name: name, Enabled: enabled})
	return 0
}

func (r *Runtime) luaCreateTimer(L *lua.LState) int {
	name := L.CheckString(1)
	group := L.CheckString(2)
	tickMillis := L.CheckInt64(3)
	flags := L.CheckInt(4)
	fn := L.CheckFunction(5)

	if _, exists := r.timerCallbacks[name]; exists {
		L.RaiseError("CreateTimer: timer callback %q already exists", name)
		return 0
	}
	r.timerCallbacks[name] = fn
	r.sink.Enqueue(event.Action{Kind: event.ActionCreateTimer, TimerSpec: event.TimerSpec{
		Name: name, Group: group, TickMillis: tickMillis,
		Enabled:  flags&1 != 0,
		OneShot:  flags&4 != 0,
		Callback: name,
	}})
	return 0
}

func (r *Runtime) luaDeleteTimer(L *lua.LState) int {
	name := L.CheckString(1)
	delete(r.timerCallbacks, name)
	r.sink.Enqueue(event.Action{Kind: event.ActionDeleteTimer, Name: name})
	return 0
}

func (r *Runtime) luaEnableTimerGroup(L *lua.LState) int {
	name := L.CheckString(1)
	enabled := L.CheckBool(2)
	r.sink.Enqueue(event.Action{Kind: event.ActionEnableTimerGroup, Name: name, Enabled: enabled})
	return 0
}

// luaDoAfter creates a one-shot timer under a synthesised unique name (spec
// §4.7: "DoAfter creates a one-shot timer with synthesised unique name").
func (r *Runtime) luaDoAfter(L *lua.LState) int {
	tickMillis := L.CheckInt64(1)
	fn := L.CheckFunction(2)

	name := uuid.New().String()
	r.timerCallbacks[name] = fn
	r.sink.Enqueue(event.Action{Kind: event.ActionCreateTimer, TimerSpec: event.TimerSpec{
		Name: name, Group: "TemporaryDoAfter", TickMillis: tickMillis,
		Enabled: true, OneShot: true, Callback: name,
	}})
	return 0
}

// --- event.ScriptHost implementation: callback invocation ---

// RunAliasCallback invokes the Lua function registered under name with
// (name, matchText, wildcards), mirroring
// original_source/src/runtime/engine.rs's exec_alias.
func (r *Runtime) RunAliasCallback(name, matchText string, groups []string, named map[string]string) error {
	fn, ok := r.aliasCallbacks[name]
	if !ok {
		return fmt.Errorf("script: alias callback %q not found", name)
	}
	return r.call(fn, lua.LString(name), lua.LString(matchText), r.wildcards(groups, named))
}

// RunTriggerCallback invokes the Lua function registered under name with
// (name, matchText, wildcards), mirroring exec_trigger.
func (r *Runtime) RunTriggerCallback(name, matchText string, groups []string, named map[string]string) error {
	fn, ok := r.triggerCallbacks[name]
	if !ok {
		return fmt.Errorf("script: trigger callback %q not found", name)
	}
	return r.call(fn, lua.LString(name), lua.LString(matchText), r.wildcards(groups, named))
}

// RunTimerCallback invokes the Lua function registered under name with just
// the timer's name. The registry entry stays: a repeating timer fires the
// same callback on every tick, and a one-shot timer's entry is dropped when
// the engine deletes its model (DropTimerCallback).
func (r *Runtime) RunTimerCallback(name string) error {
	fn, ok := r.timerCallbacks[name]
	if !ok {
		return fmt.Errorf("script: timer callback %q not found", name)
	}
	return r.call(fn, lua.LString(name))
}

// DropAliasCallback removes an alias's registry entry when the engine
// deletes its model (spec §4.7: removing a model removes its callback
// entry). Safe on a name that was never registered.
func (r *Runtime) DropAliasCallback(name string) { delete(r.aliasCallbacks, name) }

// DropTriggerCallback removes a trigger's registry entry; used by the
// engine for one-shot triggers and script-issued deletions alike.
func (r *Runtime) DropTriggerCallback(name string) { delete(r.triggerCallbacks, name) }

// DropTimerCallback removes a timer's registry entry, including the
// synthesised DoAfter timers once they have fired.
func (r *Runtime) DropTimerCallback(name string) { delete(r.timerCallbacks, name) }

// RunFile loads and executes a Lua source file (the LoadFile bound
// function's effect).
func (r *Runtime) RunFile(path string) error {
	if err := r.L.DoFile(path); err != nil {
		return fmt.Errorf("script: load %s: %w", path, err)
	}
	return nil
}

// RunChunk executes an inline chunk of Lua source, e.g. a user's
// script-prefixed command-line input (spec §4.10) or a loaded file's body.
func (r *Runtime) RunChunk(name, source string) error {
	fn, err := r.L.LoadString(source)
	if err != nil {
		return fmt.Errorf("script: parse %s: %w", name, err)
	}
	r.L.Push(fn)
	if err := r.L.PCall(0, lua.MultRet, nil); err != nil {
		return fmt.Errorf("script: exec %s: %w", name, err)
	}
	return nil
}

func (r *Runtime) call(fn *lua.LFunction, args ...lua.LValue) error {
	r.L.Push(fn)
	for _, a := range args {
		r.L.Push(a)
	}
	if err := r.L.PCall(len(args), 0, nil); err != nil {
		return fmt.Errorf("script: callback error: %w", err)
	}
	return nil
}

// colourNoteSpans renders the ColourNote binding's styled line (spec §4.7,
// grounded on original_source/src/runtime/init.rs's colour_note and
// internal/flow's ColourNote constructor). Unrecognised colour names fall
// back to no colour, matching Color::from_str_or_default's behaviour.
func colourNoteSpans(fg, bg, text string) []ansimxp.Span {
	fgColor, _ := ansimxp.ColorByName(fg)
	bgColor, _ := ansimxp.ColorByName(bg)
	return flow.ColourNote(fgColor, bgColor, text).Spans
}

// wildcards builds the single table handed to alias/trigger callbacks as
// their third argument: the whole match at index 0 and capture groups
// 1-based from index 1 (rules.Match.Groups puts the whole match first),
// plus any named captures, combined the way a Lua table naturally holds
// both (spec §4.5: "exposed ... as a positional list (1-based) and by
// name").
func (r *Runtime) wildcards(groups []string, named map[string]string) *lua.LTable {
	t := r.L.NewTable()
	for i, g := range groups {
		t.RawSetInt(i, lua.LString(g))
	}
	for k, v := range named {
		t.RawSetString(k, lua.LString(v))
	}
	return t
}
