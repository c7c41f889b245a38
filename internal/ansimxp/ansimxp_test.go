package ansimxp

import "testing"

func drain(p *Parser) []Element {
	var out []Element
	for {
		e, ok := p.Next()
		if !ok {
			return out
		}
		out = append(out, e)
	}
}

func spanTexts(els []Element) string {
	s := ""
	for _, e := range els {
		if e.Kind == ElemSpan {
			s += e.Span.Text
		}
	}
	return s
}

func TestPlainTextRoundTrip(t *testing.T) {
	p := NewParser()
	p.Fill("hello world\n")
	els := drain(p)
	if got := spanTexts(els); got != "hello world\n" {
		t.Fatalf("got %q", got)
	}
}

func TestSplitResilience(t *testing.T) {
	input := "a\x1b[1mbold\x1b[0m <B>x</B> &amp; end\n"
	whole := NewParser()
	whole.Fill(input)
	want := spanTexts(drain(whole))

	for split := 0; split <= len(input); split++ {
		p := NewParser()
		p.Fill(input[:split])
		got := spanTexts(drain(p))
		p.Fill(input[split:])
		got += spanTexts(drain(p))
		if got != want {
			t.Fatalf("split at %d: got %q want %q", split, got, want)
		}
	}
}

func TestSGRBoldProducesStyledSpan(t *testing.T) {
	p := NewParser()
	p.Fill("\x1b[1mbold\x1b[0mplain")
	els := drain(p)
	var found bool
	for _, e := range els {
		if e.Kind == ElemSpan && e.Span.Text == "bold" {
			found = true
			if e.Span.Style.Mod&ModBold == 0 {
				t.Fatalf("expected bold modifier on span %+v", e.Span)
			}
		}
	}
	if !found {
		t.Fatalf("bold span not found in %+v", els)
	}
}

func TestMxpModeToken(t *testing.T) {
	p := NewParser()
	p.Fill("\x1b[1z")
	els := drain(p)
	if len(els) != 1 || els[0].Kind != ElemMxpMode || els[0].Mode != ModeSecure {
		t.Fatalf("expected secure mode element, got %+v", els)
	}
}

func TestLabelNonNesting(t *testing.T) {
	p := NewParser()
	p.Fill("<A href=foo>one<H1>two</H1>three</A>")
	els := drain(p)
	var labels []LabelKind
	for _, e := range els {
		if e.Kind == ElemSpan {
			if e.Span.Label == nil {
				labels = append(labels, LabelNone)
			} else {
				labels = append(labels, e.Span.Label.Kind)
			}
		}
	}
	// "one" labeled A, "two" labeled Header (A dropped when H1 opened),
	// "three" unlabeled since </H1> clears the header and </A> has no
	// matching label left to clear.
	if len(labels) != 3 {
		t.Fatalf("expected 3 spans, got %d: %+v", len(labels), els)
	}
	if labels[0] != LabelA || labels[1] != LabelHeader || labels[2] != LabelNone {
		t.Fatalf("unexpected label sequence: %v", labels)
	}
}

func TestInvalidAmpEscapeIsLiteral(t *testing.T) {
	p := NewParser()
	p.Fill("a&bogus;b")
	els := drain(p)
	if got := spanTexts(els); got != "a&bogus;b" {
		t.Fatalf("got %q", got)
	}
}

func TestHeaderWithInlineColor(t *testing.T) {
	p := NewParser()
	p.Fill("<H2>hi <C red>red</C> done</H2>")
	els := drain(p)
	var texts []string
	for _, e := range els {
		if e.Kind == ElemSpan {
			texts = append(texts, e.Span.Text)
		}
	}
	joined := ""
	for _, s := range texts {
		joined += s
	}
	if joined != "hi red done" {
		t.Fatalf("got %q", joined)
	}
}
