package ansimxp

// Span is one styled, labeled run of text, the unit the text-model layer
// (C4) accumulates into lines.
type Span struct {
	Style Style
	Label *Label
	Text  string
	Ended bool // true if this run is terminated by '\n'
}

// ElementKind distinguishes a styled Span from the handful of MXP
// out-of-band signals a caller may want (mode switch, capability query,
// inline image).
type ElementKind int

const (
	ElemNone ElementKind = iota
	ElemSpan
	ElemMxpMode
	ElemMxpVersion
	ElemMxpSupport
	ElemMxpImg
)

// Element is one assembled unit of output from Parser.Next.
type Element struct {
	Kind ElementKind
	Span *Span
	Mode Mode
	Img  string
}

// Parser combines the Tokenizer with running style and an MXP LabelStack to
// produce a stream of styled, labeled spans. Grounded on
// original_source/src/proto/mod.rs's Parser/Element/InlineElements.
type Parser struct {
	tok   *Tokenizer
	style Style
	ls    LabelStack
	buf   []rune
	// immediate holds a control element produced mid-token that must be
	// returned before any further span accumulation, mirroring the
	// original's self.immediate stash.
	immediate *Element
}

// NewParser returns an empty Parser.
func NewParser() *Parser {
	return &Parser{tok: NewTokenizer()}
}

// Fill feeds decoded text into the underlying tokenizer.
func (p *Parser) Fill(s string) { p.tok.Fill(s) }

// Next returns the next assembled Element, or ok=false when more input is
// required (mirrors Tokenizer's StatusPending). Text buffered when the
// tokenizer runs dry is first returned as an unterminated span.
func (p *Parser) Next() (Element, bool) {
	if p.immediate != nil {
		e := *p.immediate
		p.immediate = nil
		return e, true
	}
	for {
		tok, lit, status := p.tok.Next()
		switch status {
		case StatusPending:
			if e, ok := p.output(false); ok {
				return e, true
			}
			return Element{}, false
		case StatusInvalid:
			p.buf = append(p.buf, []rune(lit)...)
			continue
		}

		switch tok.Kind {
		case TokText:
			p.buf = append(p.buf, []rune(tok.Text)...)
		case TokLineEndedText:
			p.buf = append(p.buf, []rune(tok.Text)...)
			if e, ok := p.output(true); ok {
				return e, true
			}
		case TokAmperChar:
			p.buf = append(p.buf, tok.Ch)
		case TokNbsp:
			p.buf = append(p.buf, ' ')
		case TokBr, TokSbr:
			p.buf = append(p.buf, '\n')
			if e, ok := p.output(true); ok {
				return e, true
			}
		case TokNoBr, TokP:
			// layout hints with no bearing on the span stream itself.
			continue
		case TokBold:
			if e, ok := p.restyle(func(s Style) Style {
				if tok.On {
					return s.AddModifier(ModBold)
				}
				return s.RemoveModifier(ModBold)
			}); ok {
				return e, true
			}
		case TokItalic:
			if e, ok := p.restyle(func(s Style) Style {
				if tok.On {
					return s.AddModifier(ModItalic)
				}
				return s.RemoveModifier(ModItalic)
			}); ok {
				return e, true
			}
		case TokUnderline:
			if e, ok := p.restyle(func(s Style) Style {
				if tok.On {
					return s.AddModifier(ModUnderline)
				}
				return s.RemoveModifier(ModUnderline)
			}); ok {
				return e, true
			}
		case TokStrikeout:
			if e, ok := p.restyle(func(s Style) Style {
				if tok.On {
					return s.AddModifier(ModCrossedOut)
				}
				return s.RemoveModifier(ModCrossedOut)
			}); ok {
				return e, true
			}
		case TokColor, TokFont:
			if e, ok := p.restyle(func(s Style) Style {
				if tok.HasFg {
					s.Fg = tok.Fg
				}
				if tok.HasBg {
					s.Bg = tok.Bg
				}
				return s
			}); ok {
				return e, true
			}
		case TokColorReset, TokFontReset:
			if e, ok := p.restyle(func(Style) Style { return Style{} }); ok {
				return e, true
			}
		case TokSGR:
			if e, ok := p.restyle(func(s Style) Style { return ApplySGR(s, tok.Text) }); ok {
				return e, true
			}
		case TokA:
			if e, ok := p.output(false); ok {
				p.ls.Push(Label{Kind: LabelA, Href: tok.Attr.Href, Hint: tok.Attr.Hint})
				return e, true
			}
			p.ls.Push(Label{Kind: LabelA, Href: tok.Attr.Href, Hint: tok.Attr.Hint})
		case TokSend:
			if e, ok := p.output(false); ok {
				p.ls.Push(Label{Kind: LabelSend, Href: tok.Attr.Href, Hint: tok.Attr.Hint, Prompt: tok.Attr.Prompt})
				return e, true
			}
			p.ls.Push(Label{Kind: LabelSend, Href: tok.Attr.Href, Hint: tok.Attr.Hint, Prompt: tok.Attr.Prompt})
		case TokHeader:
			if tok.On {
				if e, ok := p.output(false); ok {
					p.ls.Push(Label{Kind: LabelHeader, Level: tok.Level})
					return e, true
				}
				p.ls.Push(Label{Kind: LabelHeader, Level: tok.Level})
				continue
			}
			if p.ls.Matches(LabelHeader, tok.Level) {
				e, ok := p.output(false)
				p.ls.Pop(LabelHeader, tok.Level)
				if ok {
					return e, true
				}
			}
		case TokAEnd:
			if p.ls.Matches(LabelA, 0) {
				e, ok := p.output(false)
				p.ls.Pop(LabelA, 0)
				if ok {
					return e, true
				}
			}
		case TokSendEnd:
			if p.ls.Matches(LabelSend, 0) {
				e, ok := p.output(false)
				p.ls.Pop(LabelSend, 0)
				if ok {
					return e, true
				}
			}
		case TokMxpMode:
			if e, ok := p.output(true); ok {
				p.immediate = &Element{Kind: ElemMxpMode, Mode: tok.Mode}
				return e, true
			}
			return Element{Kind: ElemMxpMode, Mode: tok.Mode}, true
		case TokVersion:
			if e, ok := p.output(true); ok {
				p.immediate = &Element{Kind: ElemMxpVersion}
				return e, true
			}
			return Element{Kind: ElemMxpVersion}, true
		case TokSupport:
			if e, ok := p.output(true); ok {
				p.immediate = &Element{Kind: ElemMxpSupport}
				return e, true
			}
			return Element{Kind: ElemMxpSupport}, true
		case TokImg:
			if e, ok := p.output(true); ok {
				p.immediate = &Element{Kind: ElemMxpImg, Img: tok.Text}
				return e, true
			}
			return Element{Kind: ElemMxpImg, Img: tok.Text}, true
		case TokExpire:
			continue
		}
	}
}

// output flushes any buffered text as a Span element. When ended is true
// the span is marked as newline-terminated.
func (p *Parser) output(ended bool) (Element, bool) {
	if len(p.buf) == 0 {
		return Element{}, false
	}
	sp := &Span{Style: p.style, Label: p.ls.Top(), Text: string(p.buf), Ended: ended}
	p.buf = nil
	return Element{Kind: ElemSpan, Span: sp}, true
}

// restyle flushes the currently buffered span (under the old style) then
// applies fn to the running style.
func (p *Parser) restyle(fn func(Style) Style) (Element, bool) {
	e, ok := p.output(false)
	p.style = fn(p.style)
	return e, ok
}

// HasPendingOutput reports whether buffered text awaits a flush.
func (p *Parser) HasPendingOutput() bool { return len(p.buf) > 0 }
