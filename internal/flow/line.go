// Package flow implements the text model (C4): RawLine, Line, WrapLine, and
// the bounded Flow buffer with CJK-aware wrapping.
//
// Grounded on original_source/src/ui/{line,flow,span,width}.rs; width
// computation is delegated to github.com/mattn/go-runewidth the way every
// bubbletea-based repo in the retrieved pack does.
package flow

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/thyth/mudcore/internal/ansimxp"
)

// RawLine is an immutable string segment that may or may not end with '\n'.
// Go strings are already cheap to share (immutable, backed by a read-only
// byte slice), so RawLine needs no separate owned/shared distinction: a
// RawLine value can be copied freely.
type RawLine struct {
	Content string
}

// Ended reports whether this RawLine is terminated by a newline.
func (r RawLine) Ended() bool { return strings.HasSuffix(r.Content, "\n") }

// Merge appends other's content to r, used when a new chunk continues the
// current unterminated tail (spec invariant 1).
func (r RawLine) Merge(other string) RawLine {
	return RawLine{Content: r.Content + other}
}

// Line is an ordered sequence of spans whose concatenated content forms one
// logical line.
type Line struct {
	Spans []ansimxp.Span
}

// Ended reports whether the final span's content ends with '\n'.
func (l Line) Ended() bool {
	if len(l.Spans) == 0 {
		return false
	}
	return l.Spans[len(l.Spans)-1].Ended
}

// Content concatenates every span's text.
func (l Line) Content() string {
	var sb strings.Builder
	for _, s := range l.Spans {
		sb.WriteString(s.Text)
	}
	return sb.String()
}

// Raw renders a single-span raw line: used for locally-generated lines
// (echoed commands, Note()/error lines) that carry no MXP/ANSI markup.
func Raw(text string) Line {
	return Line{Spans: []ansimxp.Span{{Text: text, Ended: strings.HasSuffix(text, "\n")}}}
}

// Note renders a styled informational line (the scripted runtime's Note()
// binding, spec §4.7), using a fixed light-blue foreground.
func Note(text string) Line {
	return Line{Spans: []ansimxp.Span{{
		Style: ansimxp.Style{Fg: ansimxp.LightBlue},
		Text:  text,
		Ended: true,
	}}}
}

// ColourNote renders a styled informational line with caller-chosen colors
// (spec §4.7's ColourNote, supplementing the plain Note binding).
func ColourNote(fg, bg ansimxp.Color, text string) Line {
	return Line{Spans: []ansimxp.Span{{
		Style: ansimxp.Style{Fg: fg, Bg: bg},
		Text:  text,
		Ended: true,
	}}}
}

// Err renders a styled error line (spec §7: runtime errors surface as a
// styled error line in the UI).
func Err(msg string) Line {
	return Line{Spans: []ansimxp.Span{{
		Style: ansimxp.Style{Fg: ansimxp.Red},
		Text:  msg,
		Ended: true,
	}}}
}

// WrapLine is the sequence of display Lines produced by wrapping one
// logical Line to a display width.
type WrapLine struct {
	Lines []Line
}

// cellWidth returns the CJK-aware display width of r, with tabs advancing
// to the next multiple of 8 (spec §4.4).
func cellWidth(cond *runewidth.Condition, r rune, col int) int {
	if r == '\t' {
		return 8 - (col % 8)
	}
	return cond.RuneWidth(r)
}

// Wrap splits l into a WrapLine such that every resulting Line has display
// width <= maxWidth. Splits occur at character boundaries; a character
// wider than one cell is never split across lines (spec §4.4). cjk selects
// the East-Asian-wide width table.
func (l Line) Wrap(maxWidth int, cjk bool) WrapLine {
	if maxWidth < 1 {
		maxWidth = 1
	}
	cond := runewidth.NewCondition()
	cond.EastAsianWidth = cjk

	var out []Line
	var cur []ansimxp.Span
	col := 0
	flush := func() {
		out = append(out, Line{Spans: cur})
		cur = nil
		col = 0
	}
	for _, sp := range l.Spans {
		var curText strings.Builder
		for _, r := range sp.Text {
			w := cellWidth(cond, r, col)
			if w > 0 && col+w > maxWidth {
				if curText.Len() > 0 {
					cur = append(cur, ansimxp.Span{Style: sp.Style, Label: sp.Label, Text: curText.String()})
					curText.Reset()
				}
				flush()
			}
			curText.WriteRune(r)
			col += w
		}
		if curText.Len() > 0 {
			cur = append(cur, ansimxp.Span{Style: sp.Style, Label: sp.Label, Text: curText.String(), Ended: sp.Ended})
		}
	}
	out = append(out, Line{Spans: cur})
	return WrapLine{Lines: out}
}
