package flow

import (
	"github.com/thyth/mudcore/internal/ansimxp"
)

// Flow owns a bounded deque of RawLines and the parallel parsed WrapLine
// deque built from them, kept in sync on push and on reshape (spec §4.4 /
// §3 Flow invariant 1: exactly one unterminated tail at a time).
type Flow struct {
	capacity int
	width    int
	cjk      bool

	raw   []RawLine
	wraps []WrapLine

	parser *ansimxp.Parser
	curTail Line // the not-yet-flushed trailing Line being built by parser output
}

// NewFlow returns an empty Flow with the given capacity (spec §3, term.max_lines).
func NewFlow(capacity int, width int, cjk bool) *Flow {
	if capacity < 1 {
		capacity = 1
	}
	if width < 1 {
		width = 80
	}
	return &Flow{
		capacity: capacity,
		width:    width,
		cjk:      cjk,
		parser:   ansimxp.NewParser(),
	}
}

// Push feeds raw text (already codec-decoded) through the ANSI/MXP parser,
// appends to the raw-line buffer (merging into an unterminated tail), and
// appends parsed spans to the trailing WrapLine, wrapping incrementally.
// Returns the display lines newly completed by this push (for a UI renderer
// to append without re-rendering the whole buffer).
func (f *Flow) Push(text string) []Line {
	f.pushRaw(text)

	f.parser.Fill(text)
	var completed []Line
	for {
		el, ok := f.parser.Next()
		if !ok {
			break
		}
		if el.Kind != ansimxp.ElemSpan {
			continue
		}
		f.curTail.Spans = append(f.curTail.Spans, *el.Span)
		if el.Span.Ended {
			completed = append(completed, f.curTail)
			f.appendWrap(f.curTail)
			f.curTail = Line{}
		}
	}
	f.trim()
	return completed
}

func (f *Flow) pushRaw(text string) {
	if len(f.raw) > 0 && !f.raw[len(f.raw)-1].Ended() {
		f.raw[len(f.raw)-1] = f.raw[len(f.raw)-1].Merge(text)
	} else {
		f.raw = append(f.raw, RawLine{Content: text})
	}
	f.trimRaw()
}

func (f *Flow) appendWrap(l Line) {
	wl := l.Wrap(f.width, f.cjk)
	f.wraps = append(f.wraps, wl)
	f.trimWraps()
}

func (f *Flow) trimRaw() {
	for len(f.raw) > f.capacity {
		f.raw = f.raw[1:]
	}
}

func (f *Flow) trimWraps() {
	for len(f.wraps) > f.capacity {
		f.wraps = f.wraps[1:]
	}
}

// trim enforces capacity on both deques atomically from the front (spec
// invariant 4: push on a full flow drops the oldest line).
func (f *Flow) trim() {
	f.trimRaw()
	f.trimWraps()
}

// RawLines returns a snapshot of the raw-line buffer.
func (f *Flow) RawLines() []RawLine {
	out := make([]RawLine, len(f.raw))
	copy(out, f.raw)
	return out
}

// WrapLines returns a snapshot of the parsed display buffer.
func (f *Flow) WrapLines() []WrapLine {
	out := make([]WrapLine, len(f.wraps))
	copy(out, f.wraps)
	return out
}

// Reshape clears the parsed buffer, resets the parser, and replays the last
// N raw lines (N = height) through the parser at the new width (spec §4.4).
// reshape(w) applied twice with the same width is idempotent (spec testable
// property 3) since it always rebuilds deterministically from the raw
// buffer.
func (f *Flow) Reshape(width int, cjk bool, height int) {
	if width < 1 {
		width = 1
	}
	f.width = width
	f.cjk = cjk
	f.parser = ansimxp.NewParser()
	f.wraps = nil
	f.curTail = Line{}

	start := 0
	if height > 0 && len(f.raw) > height {
		start = len(f.raw) - height
	}
	for _, rl := range f.raw[start:] {
		f.parser.Fill(rl.Content)
		for {
			el, ok := f.parser.Next()
			if !ok {
				break
			}
			if el.Kind != ansimxp.ElemSpan {
				continue
			}
			f.curTail.Spans = append(f.curTail.Spans, *el.Span)
			if el.Span.Ended {
				f.appendWrap(f.curTail)
				f.curTail = Line{}
			}
		}
	}
}
