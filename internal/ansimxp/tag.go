package ansimxp

import "strings"

var colorNames = map[string]Color{
	"black": Black, "red": Red, "green": Green, "yellow": Yellow,
	"blue": Blue, "magenta": Magenta, "cyan": Cyan, "gray": Gray, "grey": Gray,
	"white": White, "darkgray": DarkGray, "darkgrey": DarkGray,
	"lightred": LightRed, "lightgreen": LightGreen, "lightyellow": LightYellow,
	"lightblue": LightBlue, "lightmagenta": LightMagenta, "lightcyan": LightCyan,
}

// ColorByName resolves the same case-insensitive colour names recognised by
// MXP's <C>/<FONT> attributes, exported for callers outside this package
// (the scripted runtime's ColourNote binding, spec §4.7).
func ColorByName(name string) (Color, bool) {
	c, ok := colorNames[strings.ToLower(name)]
	return c, ok
}

// attrSet is the parsed name->value map of one tag body, plus an optional
// "principal" value: the quoted-name form where the first bare attribute
// stands for the tag's primary argument (spec §4.3).
type attrSet struct {
	vals      map[string]string
	principal string
	hasPrinc  bool
}

// parseAttrs scans the whitespace-separated attribute list following a tag
// name: bare words, name=value, and name="quoted value" forms.
func parseAttrs(body string) attrSet {
	as := attrSet{vals: map[string]string{}}
	i := 0
	n := len(body)
	first := true
	for i < n {
		for i < n && (body[i] == ' ' || body[i] == '\t') {
			i++
		}
		if i >= n {
			break
		}
		start := i
		for i < n && body[i] != '=' && body[i] != ' ' && body[i] != '\t' {
			i++
		}
		key := body[start:i]
		if i < n && body[i] == '=' {
			i++
			var val string
			if i < n && (body[i] == '"' || body[i] == '\'') {
				q := body[i]
				i++
				vstart := i
				for i < n && body[i] != q {
					i++
				}
				val = body[vstart:i]
				if i < n {
					i++
				}
			} else {
				vstart := i
				for i < n && body[i] != ' ' && body[i] != '\t' {
					i++
				}
				val = body[vstart:i]
			}
			as.vals[strings.ToLower(key)] = val
		} else {
			// bare word: first one is the principal attribute
			if first && !as.hasPrinc {
				as.principal = key
				as.hasPrinc = true
			}
			as.vals[strings.ToLower(key)] = key
		}
		first = false
	}
	return as
}

func (as attrSet) get(keys ...string) (string, bool) {
	for _, k := range keys {
		if v, ok := as.vals[k]; ok {
			return v, true
		}
	}
	return "", false
}

// buildTag turns a complete "<...>" or "</...>" body (without the angle
// brackets) into a Token, or reports ok=false for an unrecognised tag name
// (the caller treats the whole tag text as invalid/literal).
func buildTag(body string) (Token, bool) {
	body = strings.TrimSpace(body)
	closing := strings.HasPrefix(body, "/")
	if closing {
		body = body[1:]
	}
	name := body
	rest := ""
	for i, r := range body {
		if r == ' ' || r == '\t' {
			name = body[:i]
			rest = strings.TrimSpace(body[i+1:])
			break
		}
	}
	upper := strings.ToUpper(name)

	switch upper {
	case "B", "BOLD", "STRONG":
		return Token{Kind: TokBold, On: !closing}, true
	case "I", "ITALIC", "EM":
		return Token{Kind: TokItalic, On: !closing}, true
	case "U", "UNDERLINE":
		return Token{Kind: TokUnderline, On: !closing}, true
	case "S", "STRIKEOUT":
		return Token{Kind: TokStrikeout, On: !closing}, true
	case "NOBR":
		return Token{Kind: TokNoBr}, true
	case "P":
		return Token{Kind: TokP, On: !closing}, true
	case "BR":
		return Token{Kind: TokBr}, true
	case "SBR":
		return Token{Kind: TokSbr}, true
	case "VERSION":
		return Token{Kind: TokVersion}, true
	case "SUPPORT":
		return Token{Kind: TokSupport}, true
	case "IMG":
		as := parseAttrs(rest)
		src, _ := as.get("src")
		if src == "" {
			src = as.principal
		}
		return Token{Kind: TokImg, Text: src}, true
	case "EXPIRE":
		as := parseAttrs(rest)
		name := as.principal
		if name == "" {
			name, _ = as.get("name")
		}
		return Token{Kind: TokExpire, Text: name}, true
	case "FONT":
		if closing {
			return Token{Kind: TokFontReset}, true
		}
		as := parseAttrs(rest)
		face, _ := as.get("face")
		size, _ := as.get("size")
		tok := Token{Kind: TokFont, Attr: Attr{Face: face, Size: size}}
		if fg, ok := as.get("color", "fore"); ok {
			if c, ok := colorNames[strings.ToLower(fg)]; ok {
				tok.Fg, tok.HasFg = c, true
			}
		}
		if bg, ok := as.get("back"); ok {
			if c, ok := colorNames[strings.ToLower(bg)]; ok {
				tok.Bg, tok.HasBg = c, true
			}
		}
		return tok, true
	case "C", "COLOR":
		if closing {
			return Token{Kind: TokColorReset}, true
		}
		as := parseAttrs(rest)
		tok := Token{Kind: TokColor}
		fg := as.principal
		if fg == "" {
			fg, _ = as.get("fore")
		}
		if c, ok := colorNames[strings.ToLower(fg)]; ok {
			tok.Fg, tok.HasFg = c, true
		}
		if bg, ok := as.get("back"); ok {
			if c, ok := colorNames[strings.ToLower(bg)]; ok {
				tok.Bg, tok.HasBg = c, true
			}
		}
		return tok, true
	case "A":
		if closing {
			return Token{Kind: TokAEnd}, true
		}
		as := parseAttrs(rest)
		href := as.principal
		if href == "" {
			href, _ = as.get("href")
		}
		hint, _ := as.get("hint", "xch_hint")
		return Token{Kind: TokA, Attr: Attr{Href: href, Hint: hint}}, true
	case "SEND":
		if closing {
			return Token{Kind: TokSendEnd}, true
		}
		as := parseAttrs(rest)
		href := as.principal
		if href == "" {
			href, _ = as.get("href")
		}
		hint, _ := as.get("hint", "xch_hint")
		_, prompt := as.get("prompt")
		return Token{Kind: TokSend, Attr: Attr{Href: href, Hint: hint, Prompt: prompt}}, true
	case "NBSP":
		return Token{Kind: TokNbsp}, true
	}

	if len(upper) >= 2 && upper[0] == 'H' && upper[1] >= '1' && upper[1] <= '6' && len(upper) == 2 {
		return Token{Kind: TokHeader, Level: int(upper[1] - '0'), On: !closing}, true
	}

	return Token{}, false
}
