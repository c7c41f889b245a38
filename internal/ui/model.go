package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/thyth/mudcore/internal/ansimxp"
	"github.com/thyth/mudcore/internal/event"
	"github.com/thyth/mudcore/internal/flow"
)

var (
	scriptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	cmdStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
)

// quitMsg signals that the outbound Output channel has closed (the engine
// goroutine exited) and the program should end.
type quitMsg struct{}

// Model is the bubbletea render loop over the flow board and command bar
// (C10). It owns no session state of its own beyond display and the command
// bar's edit buffer: submitted lines, quit, resize, and wheel-scroll events
// it turns into event.Events and hands to the engine goroutine over Events;
// every Output it receives back is rendered.
//
// Grounded on the engine/renderer split in original_source/src/ui/mod.rs
// ("the UI thread never mutates interpreter or rule state directly") and on
// the accept-loop-plus-channel shape common across the retrieved pack's
// client programs for bridging a blocking goroutine into bubbletea via a
// Cmd that waits on a channel.
type Model struct {
	outputs <-chan event.Output
	events  chan<- event.Event

	vp    viewport.Model
	board *Board
	cmd   *Cmdbar

	autoFollow bool
	width      int
	height     int
	cjk        bool

	ready bool
}

// New constructs the renderer. outputs is fed by the goroutine draining
// engine.HandleEvent results; events carries key/mouse/resize/quit signals
// back to that goroutine. maxLines mirrors term.max_lines and cjk selects
// CJK-aware wrapping; scriptPrefix/histLines mirror
// term.script_prefix/term.history_lines.
func New(outputs <-chan event.Output, events chan<- event.Event, maxLines int, cjk bool, scriptPrefix rune, histLines int) *Model {
	return &Model{
		outputs:    outputs,
		events:     events,
		board:      NewBoard(maxLines, 80, cjk),
		cmd:        NewCmdbar(scriptPrefix, histLines),
		autoFollow: true,
		cjk:        cjk,
	}
}

func waitForOutput(ch <-chan event.Output) tea.Cmd {
	return func() tea.Msg {
		out, ok := <-ch
		if !ok {
			return quitMsg{}
		}
		return out
	}
}

// Init starts the subscription to the engine's Output channel.
func (m *Model) Init() tea.Cmd {
	return waitForOutput(m.outputs)
}

func (m *Model) emit(ev event.Event) {
	if m.events == nil {
		return
	}
	select {
	case m.events <- ev:
	default:
		// the engine goroutine's inbound channel should never be this far
		// behind under normal operation; dropping here avoids blocking the
		// render loop indefinitely if it is.
	}
}

// Update handles bubbletea messages: terminal resize, key presses, mouse
// wheel events, and Outputs arriving from the engine.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		barHeight := 1
		vpHeight := msg.Height - barHeight
		if vpHeight < 1 {
			vpHeight = 1
		}
		if !m.ready {
			m.vp = viewport.New(msg.Width, vpHeight)
			m.ready = true
		} else {
			m.vp.Width = msg.Width
			m.vp.Height = vpHeight
		}
		m.board.Reshape(msg.Width)
		m.refresh()
		m.emit(event.Event{Kind: event.KindWindowResize, Width: msg.Width, Height: msg.Height})
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case event.Output:
		return m.handleOutput(msg)

	case quitMsg:
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) handleOutput(out event.Output) (tea.Model, tea.Cmd) {
	if out.ToUIText != "" || out.ToUISpans != nil {
		m.board.Push(flow.Line{Spans: uiSpans(out)})
		m.refresh()
		if m.autoFollow {
			m.vp.GotoBottom()
		}
	}
	return m, waitForOutput(m.outputs)
}

// uiSpans derives display Spans for an Output: the engine-provided Spans
// when present (already styled by C3), or a single plain Span built from
// the raw text otherwise (ActionSendLineToUI's "nil lets the UI derive from
// plain text" case).
func uiSpans(out event.Output) []ansimxp.Span {
	if out.ToUISpans != nil {
		return out.ToUISpans
	}
	return []ansimxp.Span{{Text: out.ToUIText, Ended: true}}
}

func (m *Model) refresh() {
	if !m.ready {
		return
	}
	m.vp.SetContent(renderBoard(m.board.DisplayLines()))
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlQ:
		m.emit(event.Event{Kind: event.KindQuit})
		return m, tea.Quit
	case tea.KeyCtrlF:
		m.autoFollow = !m.autoFollow
		if m.autoFollow {
			m.vp.GotoBottom()
		}
		return m, nil
	case tea.KeyEnter:
		text, isScript := m.cmd.Submit()
		kind := event.OutputCmd
		if isScript {
			kind = event.OutputScript
		}
		m.emit(event.Event{Kind: event.KindUserOutput, UserOutputKind: kind, UserOutputText: text})
		return m, nil
	case tea.KeyBackspace:
		m.cmd.Backspace()
		return m, nil
	case tea.KeyUp:
		m.cmd.HistoryUp()
		return m, nil
	case tea.KeyDown:
		m.cmd.HistoryDown()
		return m, nil
	case tea.KeyRunes, tea.KeySpace:
		if msg.Type == tea.KeySpace && len(msg.Runes) == 0 {
			m.cmd.TypeRune(' ')
			return m, nil
		}
		for _, r := range msg.Runes {
			m.cmd.TypeRune(r)
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	// Wheel scroll only moves the viewport while auto-follow is off; it
	// never toggles auto-follow itself (spec §4.10, Ctrl-F owns that).
	if m.autoFollow {
		return m, nil
	}
	switch msg.Type {
	case tea.MouseWheelUp:
		m.vp.LineUp(3)
		m.emit(event.Event{Kind: event.KindTerminalMouse, Mouse: event.TerminalMouse{WheelUp: true}})
	case tea.MouseWheelDown:
		m.vp.LineDown(3)
		m.emit(event.Event{Kind: event.KindTerminalMouse, Mouse: event.TerminalMouse{WheelUp: false}})
	}
	return m, nil
}

// View renders the flow board above the command bar.
func (m *Model) View() string {
	if !m.ready {
		return "initializing..."
	}
	return m.vp.View() + "\n" + m.renderCmdbar()
}

func (m *Model) renderCmdbar() string {
	prefix := "> "
	style := cmdStyle
	if m.cmd.InScriptMode() {
		prefix = "."
		style = scriptStyle
	}
	follow := ""
	if !m.autoFollow {
		follow = " [scroll]"
	}
	return fmt.Sprintf("%s%s%s", style.Render(prefix), m.cmd.Buffer(), follow)
}
