// Package ui implements the terminal flow board and command bar (C10): a
// bubbletea render loop over the flow buffer plus a command-line editor with
// bounded history and script-prefix mode (spec §4.10).
//
// Grounded on original_source/src/ui/cmdbar.rs for the edit rules (typed
// character append, backspace, history navigation, script-prefix detection)
// and on other_examples/1853658a_jinterlante1206-AleutianLocal__pkg-ux-renderer.go.go
// for the general shape of a renderer owning its own mutable display state.
package ui

// Cmdbar is the command-line editor: an edit buffer, a bounded history
// deque, and script-prefix mode tracking, independent of any terminal
// library so its edit rules can be tested directly (spec §4.10).
type Cmdbar struct {
	prefix rune

	buf        []rune
	scriptMode bool

	history []string
	histCap int

	browsing  bool
	browseIdx int
	liveBuf   []rune
	liveMode  bool
}

// NewCmdbar returns an empty Cmdbar. prefix is the script-mode trigger
// character (term.script_prefix, default '.'); histCap bounds the history
// deque (term.history_lines).
func NewCmdbar(prefix rune, histCap int) *Cmdbar {
	if histCap < 1 {
		histCap = 1
	}
	return &Cmdbar{prefix: prefix, histCap: histCap}
}

// Buffer returns the current edit buffer's text.
func (c *Cmdbar) Buffer() string { return string(c.buf) }

// InScriptMode reports whether the bar is in script-input mode (spec §4.10:
// "the bar style changes and submission produces a script event").
func (c *Cmdbar) InScriptMode() bool { return c.scriptMode }

// TypeRune appends r to the buffer, unless it is the script prefix typed as
// the very first character of an empty, non-script buffer — that toggles
// script mode instead of being inserted (spec §4.10).
func (c *Cmdbar) TypeRune(r rune) {
	c.stopBrowsing()
	if len(c.buf) == 0 && !c.scriptMode && r == c.prefix {
		c.scriptMode = true
		return
	}
	c.buf = append(c.buf, r)
}

// Backspace removes the last character. In script mode the prefix counts as
// the first character: a backspace on an empty script-mode buffer deletes it
// and so leaves script mode (spec §4.10).
func (c *Cmdbar) Backspace() {
	c.stopBrowsing()
	if len(c.buf) == 0 {
		c.scriptMode = false
		return
	}
	c.buf = c.buf[:len(c.buf)-1]
}

// Submit returns the buffer's text and whether it was composed in script
// mode, records it in history (skipping a duplicate of the immediately
// preceding entry, spec §4.10), and resets the bar to an empty, non-script
// state.
func (c *Cmdbar) Submit() (text string, isScript bool) {
	text = string(c.buf)
	isScript = c.scriptMode
	if text != "" && (len(c.history) == 0 || c.history[len(c.history)-1] != text) {
		c.history = append(c.history, text)
		if len(c.history) > c.histCap {
			c.history = c.history[1:]
		}
	}
	c.buf = nil
	c.scriptMode = false
	c.browsing = false
	return text, isScript
}

// HistoryUp navigates to the previous (older) history entry, saving the
// live buffer being edited the first time it is called (spec §4.10).
func (c *Cmdbar) HistoryUp() {
	if len(c.history) == 0 {
		return
	}
	if !c.browsing {
		c.liveBuf = append([]rune(nil), c.buf...)
		c.liveMode = c.scriptMode
		c.browsing = true
		c.browseIdx = len(c.history)
	}
	if c.browseIdx > 0 {
		c.browseIdx--
	}
	c.loadEntry(c.history[c.browseIdx])
}

// HistoryDown navigates to the next (newer) history entry, restoring the
// saved live buffer once navigation passes the newest entry.
func (c *Cmdbar) HistoryDown() {
	if !c.browsing {
		return
	}
	c.browseIdx++
	if c.browseIdx >= len(c.history) {
		c.browsing = false
		c.buf = c.liveBuf
		c.scriptMode = c.liveMode
		return
	}
	c.loadEntry(c.history[c.browseIdx])
}

func (c *Cmdbar) loadEntry(s string) {
	c.scriptMode = false
	c.buf = []rune(s)
}

func (c *Cmdbar) stopBrowsing() {
	if c.browsing {
		c.browsing = false
	}
}
