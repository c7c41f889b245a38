// Package event implements the single-threaded event engine (C8): a
// reducer over an inbound channel of Events and an internal queue of
// Actions, owning every piece of mutable session state.
//
// Grounded on original_source/src/runtime/engine.rs's EngineAction enum and
// reducer loop, and runtime/mod.rs's translate_cmds/process_bytes_from_mud.
package event

import "github.com/thyth/mudcore/internal/ansimxp"

// Kind distinguishes the external events the engine's inbound channel
// carries.
type Kind int

const (
	KindWorldBytes Kind = iota
	KindWorldDisconnected
	KindUserOutput
	KindTimerFired
	KindTerminalKey
	KindTerminalMouse
	KindWindowResize
	KindNewClient
	KindClientAuthSuccess
	KindClientAuthFail
	KindClientDisconnect
	KindServerDown
	KindQuit
)

// OutputKind distinguishes a UserOutput event's two submission modes (spec
// §4.10: typed command line vs. script-prefixed line).
type OutputKind int

const (
	OutputCmd OutputKind = iota
	OutputScript
)

// Event is one item off the engine's inbound channel.
type Event struct {
	Kind Kind

	WorldBytes []byte // KindWorldBytes

	UserOutputKind OutputKind // KindUserOutput
	UserOutputText string     // KindUserOutput

	TimerName string // KindTimerFired

	Key   TerminalKey   // KindTerminalKey
	Mouse TerminalMouse // KindTerminalMouse

	Width, Height int // KindWindowResize

	ClientID int // KindNewClient / ClientAuthSuccess|Fail / ClientDisconnect
}

// TerminalKey is a minimal representation of a key press, independent of
// the concrete terminal library's event type.
type TerminalKey struct {
	Rune      rune
	Name      string // "enter", "backspace", "up", "down", "ctrl+q", "ctrl+f", ...
	IsControl bool
}

// TerminalMouse is a minimal mouse-wheel event.
type TerminalMouse struct {
	WheelUp bool
}

// ActionKind distinguishes the internal action-queue entries the reducer
// drains between external events.
type ActionKind int

const (
	ActionSwitchCodec ActionKind = iota
	ActionCreateAlias
	ActionDeleteAlias
	ActionEnableAliasGroup
	ActionCreateTrigger
	ActionDeleteTrigger
	ActionEnableTriggerGroup
	ActionCreateTimer
	ActionDeleteTimer
	ActionEnableTimerGroup
	ActionLoadFile
	ActionExecuteUserOutput
	ActionParseWorldBytes
	ActionProcessWorldLines
	ActionSendLineToUI
	ActionSendToServer
	ActionRunScript
)

// Action is one internally generated unit of work, produced either by
// translating an external Event or by a script callback (spec §4.7's
// "engine action queue, not the external event bus").
type Action struct {
	Kind ActionKind

	CodecName string // ActionSwitchCodec

	AliasSpec   AliasSpec   // ActionCreateAlias
	Name        string      // ActionDeleteAlias/Trigger/Timer, ActionEnableAliasGroup/TriggerGroup/TimerGroup (group name), ActionLoadFile (path)
	Enabled     bool        // ActionEnableAliasGroup/TriggerGroup/TimerGroup
	TriggerSpec TriggerSpec // ActionCreateTrigger
	TimerSpec   TimerSpec   // ActionCreateTimer

	OutputKind OutputKind // ActionExecuteUserOutput
	OutputText string     // ActionExecuteUserOutput

	WorldBytes []byte   // ActionParseWorldBytes
	RawLines   []string // ActionProcessWorldLines (already split on '\n', newline retained)

	UILine    string          // ActionSendLineToUI
	UISpans   []ansimxp.Span  // ActionSendLineToUI (nil lets the UI derive from plain text)
	ServerMsg string          // ActionSendToServer

	ScriptSource string // ActionRunScript (inline chunk, e.g. a loaded file's content)
	ScriptName   string // ActionRunScript (chunk name for error messages)
}

// AliasSpec is the data carried by a CreateAlias action, mirroring the
// CreateAlias(name, group, pattern, flags, fn) bound function (spec §4.7).
type AliasSpec struct {
	Name, Group, Pattern string
	IsRegex              bool
	Enabled              bool
	Target               int // rules.TargetWorld / rules.TargetScript
	Callback             string
}

// TriggerSpec is the data carried by a CreateTrigger action.
type TriggerSpec struct {
	Name, Group, Pattern string
	IsRegex              bool
	MatchLines           int
	Enabled              bool
	OneShot              bool
	KeepEvaluating       bool
	Callback             string
}

// TimerSpec is the data carried by a CreateTimer action.
type TimerSpec struct {
	Name, Group string
	TickMillis  int64
	Enabled     bool
	OneShot     bool
	Callback    string
}
