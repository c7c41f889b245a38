// Package ansimxp implements the incremental ANSI/MXP parser (C3): a
// resumable tokenizer over SGR escapes and MXP tags, and an element
// assembler that turns tokens into styled Spans, honoring the MXP
// non-nesting label-stack policy (spec §4.3, design note (b)).
//
// The SGR code table is grounded byte-for-byte on
// original_source/src/proto/ansi.rs's apply_sgr_code. The tokenizer states
// and the label-stack/element rules are grounded on
// original_source/src/proto/mxp.rs and original_source/src/proto/mod.rs.
package ansimxp

// Color is one of the 16-colour palette entries used by SGR and MXP <C>.
type Color int

const (
	ColorNone Color = iota
	Black
	Red
	Green
	Yellow
	Blue
	Magenta
	Cyan
	Gray
	DarkGray
	LightRed
	LightGreen
	LightYellow
	LightBlue
	LightMagenta
	LightCyan
	White
)

// Modifier is a bitset of SGR text attributes.
type Modifier uint16

const (
	ModBold Modifier = 1 << iota
	ModDim
	ModItalic
	ModUnderline
	ModSlowBlink
	ModRapidBlink
	ModReversed
	ModHidden
	ModCrossedOut
)

// Style is the visual style of a Span: fg/bg colours plus a modifier set.
type Style struct {
	Fg  Color
	Bg  Color
	Mod Modifier
}

// AddModifier returns a copy of s with m set.
func (s Style) AddModifier(m Modifier) Style { s.Mod |= m; return s }

// RemoveModifier returns a copy of s with m cleared.
func (s Style) RemoveModifier(m Modifier) Style { s.Mod &^= m; return s }

// WithFg returns a copy of s with the foreground colour set.
func (s Style) WithFg(c Color) Style { s.Fg = c; return s }

// WithBg returns a copy of s with the background colour set.
func (s Style) WithBg(c Color) Style { s.Bg = c; return s }

// ApplySGRCode applies one numeric SGR code to style, matching the exact
// table in original_source/src/proto/ansi.rs::apply_sgr_code.
func ApplySGRCode(style Style, code int) Style {
	switch code {
	case 0:
		return Style{}
	case 1:
		return style.AddModifier(ModBold)
	case 2:
		return style.AddModifier(ModDim)
	case 3:
		return style.AddModifier(ModItalic)
	case 4:
		return style.AddModifier(ModUnderline)
	case 5:
		return style.AddModifier(ModSlowBlink)
	case 6:
		return style.AddModifier(ModRapidBlink)
	case 7:
		return style.AddModifier(ModReversed)
	case 8:
		return style.AddModifier(ModHidden)
	case 9:
		return style.AddModifier(ModCrossedOut)
	case 21:
		return style.RemoveModifier(ModBold)
	case 22:
		return style.RemoveModifier(ModDim)
	case 23:
		return style.RemoveModifier(ModItalic)
	case 24:
		return style.RemoveModifier(ModUnderline)
	case 25:
		return style.RemoveModifier(ModSlowBlink).RemoveModifier(ModRapidBlink)
	case 27:
		return style.RemoveModifier(ModReversed)
	case 28:
		return style.RemoveModifier(ModHidden)
	case 29:
		return style.RemoveModifier(ModCrossedOut)
	case 30:
		return style.WithFg(Black)
	case 31:
		return style.WithFg(Red)
	case 32:
		return style.WithFg(Green)
	case 33:
		return style.WithFg(Yellow)
	case 34:
		return style.WithFg(Blue)
	case 35:
		return style.WithFg(Magenta)
	case 36:
		return style.WithFg(Cyan)
	case 37:
		return style.WithFg(Gray)
	case 38, 39:
		style.Fg = ColorNone
		return style
	case 90:
		return style.WithFg(DarkGray)
	case 91:
		return style.WithFg(LightRed)
	case 92:
		return style.WithFg(LightGreen)
	case 93:
		return style.WithFg(LightYellow)
	case 94:
		return style.WithFg(LightBlue)
	case 95:
		return style.WithFg(LightMagenta)
	case 96:
		return style.WithFg(LightCyan)
	case 97:
		return style.WithFg(White)
	case 40:
		return style.WithBg(Black)
	case 41:
		return style.WithBg(Red)
	case 42:
		return style.WithBg(Green)
	case 43:
		return style.WithBg(Yellow)
	case 44:
		return style.WithBg(Blue)
	case 45:
		return style.WithBg(Magenta)
	case 46:
		return style.WithBg(Cyan)
	case 47:
		return style.WithBg(Gray)
	case 48, 49:
		style.Bg = ColorNone
		return style
	case 100:
		return style.WithBg(DarkGray)
	case 101:
		return style.WithBg(LightRed)
	case 102:
		return style.WithBg(LightGreen)
	case 103:
		return style.WithBg(LightYellow)
	case 104:
		return style.WithBg(LightBlue)
	case 105:
		return style.WithBg(LightMagenta)
	case 106:
		return style.WithBg(LightCyan)
	case 107:
		return style.WithBg(White)
	default:
		// unknown SGR code: ignored, unlike the Rust original which panics;
		// a client-facing parser must never abort on server-sent bytes.
		return style
	}
}

// ApplySGR applies a full semicolon-delimited SGR parameter string
// left-to-right.
func ApplySGR(style Style, sgr string) Style {
	n := 0
	have := false
	for _, ch := range sgr {
		switch {
		case ch == ';':
			style = ApplySGRCode(style, n)
			n = 0
			have = false
		case ch >= '0' && ch <= '9':
			n = n*10 + int(ch-'0')
			have = true
		default:
			// malformed char: stop applying further codes
			return style
		}
	}
	if have || sgr == "" {
		style = ApplySGRCode(style, n)
	}
	return style
}
