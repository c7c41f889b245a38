package ui

import "github.com/thyth/mudcore/internal/flow"

// Board is the UI-side mirror of the flow board: it keeps the original
// (unwrapped) Lines the engine has sent for display so it can re-wrap them
// on a terminal resize, independent of the engine's own flow.Flow (which
// lives on the engine goroutine and must not be touched from the render
// thread, spec §5).
type Board struct {
	maxLines int
	width    int
	cjk      bool

	raw     []flow.Line
	wrapped []flow.WrapLine
}

// NewBoard returns an empty Board bounded to maxLines logical lines
// (term.max_lines), wrapping at width display columns.
func NewBoard(maxLines, width int, cjk bool) *Board {
	if maxLines < 1 {
		maxLines = 1
	}
	if width < 1 {
		width = 1
	}
	return &Board{maxLines: maxLines, width: width, cjk: cjk}
}

// Push appends a newly received logical line, wrapping it at the board's
// current width, and trims the oldest line if over capacity.
func (b *Board) Push(l flow.Line) {
	b.raw = append(b.raw, l)
	b.wrapped = append(b.wrapped, l.Wrap(b.width, b.cjk))
	for len(b.raw) > b.maxLines {
		b.raw = b.raw[1:]
		b.wrapped = b.wrapped[1:]
	}
}

// Reshape re-wraps every retained logical line at a new display width
// (terminal resize).
func (b *Board) Reshape(width int) {
	if width < 1 {
		width = 1
	}
	b.width = width
	wrapped := make([]flow.WrapLine, len(b.raw))
	for i, l := range b.raw {
		wrapped[i] = l.Wrap(width, b.cjk)
	}
	b.wrapped = wrapped
}

// DisplayLines flattens every retained WrapLine's display rows into one
// sequence, oldest first — the full scrollback the viewport scrolls over.
func (b *Board) DisplayLines() []flow.Line {
	var out []flow.Line
	for _, wl := range b.wrapped {
		out = append(out, wl.Lines...)
	}
	return out
}
