// Package codec implements the switchable world-byte codec (C1). Decode is
// stateful across calls (a multi-byte sequence may straddle two reads);
// encode is stateless and strict, failing when a rune has no representation
// in the active codec.
//
// Grounded on original_source/src/codec.rs, which wraps the Rust `encoding`
// crate's GB18030/BigFive2003/UTF8 codecs the same way; here the analogous
// golang.org/x/text/encoding/simplifiedchinese and traditionalchinese
// transforms stand in for them.
package codec

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/transform"
)

// Name identifies one of the three supported codecs.
type Name int

const (
	// GB18030 is the default codec.
	GB18030 Name = iota
	UTF8
	Big5
)

func (n Name) String() string {
	switch n {
	case GB18030:
		return "gb18030"
	case UTF8:
		return "utf8"
	case Big5:
		return "big5"
	default:
		return "unknown"
	}
}

// ParseName accepts the case-insensitive aliases the scripted runtime's
// SwitchCodec binding uses ("gbk", "utf8"/"utf-8", "big5").
func ParseName(s string) (Name, bool) {
	switch strings.ToLower(s) {
	case "gbk", "gb18030":
		return GB18030, true
	case "utf8", "utf-8":
		return UTF8, true
	case "big5":
		return Big5, true
	default:
		return 0, false
	}
}

func encodingFor(n Name) encoding.Encoding {
	switch n {
	case GB18030:
		return simplifiedchinese.GB18030
	case Big5:
		return traditionalchinese.Big5
	default:
		return nil // UTF8 needs no transform
	}
}

// Codec decodes and encodes between world bytes and text, holding any
// partial multi-byte tail across decode calls.
type Codec struct {
	name    Name
	pending []byte
}

// New returns a Codec defaulting to GB18030, matching spec §4.1.
func New() *Codec {
	return &Codec{name: GB18030}
}

// Switch replaces the active codec, discarding any buffered partial bytes.
func (c *Codec) Switch(n Name) {
	c.name = n
	c.pending = nil
}

// Name reports the active codec.
func (c *Codec) Name() Name { return c.name }

// Decode consumes any prefix of data that forms complete code points,
// buffering a trailing partial sequence for the next call. Malformed
// sequences are replaced with U+FFFD, advancing by one byte.
func (c *Codec) Decode(data []byte) string {
	buf := append(c.pending, data...)
	c.pending = nil

	if c.name == UTF8 {
		return c.decodeUTF8(buf)
	}
	return c.decodeNonUTF8(buf)
}

func (c *Codec) decodeUTF8(buf []byte) string {
	var sb strings.Builder
	i := 0
	for i < len(buf) {
		r, size := utf8.DecodeRune(buf[i:])
		if r == utf8.RuneError {
			if size <= 1 {
				// Could be an incomplete trailing sequence; only buffer it
				// if it might still complete (i.e. we are at EOF for this
				// call and the remaining bytes look like a lead byte).
				if isIncompleteUTF8Tail(buf[i:]) {
					c.pending = append(c.pending, buf[i:]...)
					return sb.String()
				}
				sb.WriteRune(utf8.RuneError)
				i++
				continue
			}
		}
		sb.WriteRune(r)
		i += size
	}
	return sb.String()
}

// isIncompleteUTF8Tail reports whether b looks like the start of a
// multi-byte UTF-8 sequence that was cut short by a read boundary.
func isIncompleteUTF8Tail(b []byte) bool {
	if len(b) == 0 || len(b) >= 4 {
		return false
	}
	lead := b[0]
	var want int
	switch {
	case lead&0xE0 == 0xC0:
		want = 2
	case lead&0xF0 == 0xE0:
		want = 3
	case lead&0xF8 == 0xF0:
		want = 4
	default:
		return false
	}
	return len(b) < want
}

// decodeNonUTF8 runs the whole buffer through the codec's Transform with
// atEOF=false, so a trailing short sequence is reported as ErrShortSrc
// rather than consumed; that tail is buffered for the next call. A
// genuinely malformed leading byte is replaced with U+FFFD and skipped.
func (c *Codec) decodeNonUTF8(buf []byte) string {
	enc := encodingFor(c.name)
	dec := enc.NewDecoder()
	var sb strings.Builder
	dst := make([]byte, 4096)
	src := buf
	for len(src) > 0 {
		ndst, nsrc, err := dec.Transform(dst, src, false)
		sb.Write(dst[:ndst])
		src = src[nsrc:]
		switch err {
		case nil:
			if nsrc == 0 && ndst == 0 {
				// No progress without error: treat leading byte as
				// malformed rather than loop forever.
				sb.WriteRune(utf8.RuneError)
				src = src[1:]
			}
		case transform.ErrShortSrc:
			c.pending = append(c.pending, src...)
			return sb.String()
		default:
			sb.WriteRune(utf8.RuneError)
			if len(src) > 0 {
				src = src[1:]
			}
		}
	}
	return sb.String()
}

// Encode converts text to bytes in the active codec, failing if a rune
// cannot be represented (strict mode, spec §4.1).
func (c *Codec) Encode(text string) ([]byte, error) {
	if c.name == UTF8 {
		return []byte(text), nil
	}
	enc := encodingFor(c.name)
	out, err := enc.NewEncoder().Bytes([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("codec: encode in %s: %w", c.name, err)
	}
	return out, nil
}
