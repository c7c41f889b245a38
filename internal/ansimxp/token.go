package ansimxp

// Mode is the MXP line mode switched by ESC[Nz.
type Mode int

const (
	ModeOpen Mode = iota
	ModeSecure
)

// TokenKind enumerates every token the tokenizer can emit, matching the
// Token enum in original_source/src/proto/mxp.rs.
type TokenKind int

const (
	TokText TokenKind = iota
	TokLineEndedText
	TokBold
	TokItalic
	TokUnderline
	TokStrikeout
	TokColor
	TokColorReset
	TokFont
	TokFontReset
	TokNoBr
	TokP
	TokBr
	TokSbr
	TokNbsp
	TokA
	TokAEnd
	TokSend
	TokSendEnd
	TokExpire
	TokVersion
	TokSupport
	TokSGR
	TokMxpMode
	TokAmperChar
	TokHeader
	TokImg
	TokNone
)

// Attr holds the optional attribute set MXP tags carry (href/hint/prompt
// flag/expire/face/size), all optional per spec §4.3.
type Attr struct {
	Href   string
	Hint   string
	Prompt bool
	Expire string
	Face   string
	Size   string
}

// Token is one parsed unit of ANSI/MXP text.
type Token struct {
	Kind TokenKind
	Text string // Text/LineEndedText/SGR payload/Expire/Img src
	On   bool   // Bold/Italic/Underline/Strikeout/P toggle state, or Header open/close
	Fg   Color
	Bg   Color
	HasFg bool
	HasBg bool
	Attr  Attr
	Mode  Mode
	Ch    rune // AmperChar
	Level int  // Header level 1..6
}
