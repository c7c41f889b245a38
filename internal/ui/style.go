package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/thyth/mudcore/internal/ansimxp"
	"github.com/thyth/mudcore/internal/flow"
)

// ansiIndex maps the 16-colour palette to the ANSI terminal colour indices
// lipgloss.Color accepts as a numeric string, matching the SGR 30-37/90-97
// table in internal/ansimxp/style.go.
var ansiIndex = map[ansimxp.Color]int{
	ansimxp.Black: 0, ansimxp.Red: 1, ansimxp.Green: 2, ansimxp.Yellow: 3,
	ansimxp.Blue: 4, ansimxp.Magenta: 5, ansimxp.Cyan: 6, ansimxp.Gray: 7,
	ansimxp.DarkGray: 8, ansimxp.LightRed: 9, ansimxp.LightGreen: 10,
	ansimxp.LightYellow: 11, ansimxp.LightBlue: 12, ansimxp.LightMagenta: 13,
	ansimxp.LightCyan: 14, ansimxp.White: 15,
}

// spanStyle translates a parsed Style into the equivalent lipgloss.Style,
// the last step before a Span reaches the terminal (spec §4.10 renders the
// Spans the engine already classified in C3/C4).
func spanStyle(s ansimxp.Style) lipgloss.Style {
	st := lipgloss.NewStyle()
	if idx, ok := ansiIndex[s.Fg]; ok {
		st = st.Foreground(lipgloss.Color(fmt.Sprint(idx)))
	}
	if idx, ok := ansiIndex[s.Bg]; ok {
		st = st.Background(lipgloss.Color(fmt.Sprint(idx)))
	}
	if s.Mod&ansimxp.ModBold != 0 {
		st = st.Bold(true)
	}
	if s.Mod&ansimxp.ModDim != 0 {
		st = st.Faint(true)
	}
	if s.Mod&ansimxp.ModItalic != 0 {
		st = st.Italic(true)
	}
	if s.Mod&ansimxp.ModUnderline != 0 {
		st = st.Underline(true)
	}
	if s.Mod&(ansimxp.ModSlowBlink|ansimxp.ModRapidBlink) != 0 {
		st = st.Blink(true)
	}
	if s.Mod&ansimxp.ModReversed != 0 {
		st = st.Reverse(true)
	}
	if s.Mod&ansimxp.ModCrossedOut != 0 {
		st = st.Strikethrough(true)
	}
	return st
}

// renderLine renders one display Line (already wrapped to width) as a
// styled terminal string, span by span.
func renderLine(l flow.Line) string {
	var sb strings.Builder
	for _, sp := range l.Spans {
		text := strings.TrimRight(sp.Text, "\r\n")
		if text == "" {
			continue
		}
		sb.WriteString(spanStyle(sp.Style).Render(text))
	}
	return sb.String()
}

// renderBoard joins every display line in lines with newlines, the content
// handed to the viewport (spec §4.10: "renders the last visible WrapLines").
func renderBoard(lines []flow.Line) string {
	rows := make([]string, len(lines))
	for i, l := range lines {
		rows[i] = renderLine(l)
	}
	return strings.Join(rows, "\n")
}
