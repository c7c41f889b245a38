// Package wireproto implements the authenticated framed-packet protocol
// (C9) used between the proxy server and its thin clients: a length-framed
// packet envelope plus a SHA-1 challenge/response handshake.
//
// Grounded on original_source/src/protocol.rs (packet framing) and
// original_source/src/auth.rs (the handshake). The original frames with the
// byteorder crate's 24-bit little-endian helpers; Go has no builtin u24, so
// this file hand-rolls the 3-byte read/write the same width.
package wireproto

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/thyth/mudcore/internal/flow"
	"github.com/thyth/mudcore/internal/muderr"
)

// Kind is a packet's trailing type tag.
type Kind byte

const (
	KindOk       Kind = 0x00
	KindAuthReq  Kind = 0x01
	KindAuthResp Kind = 0x02
	KindText     Kind = 0x03
	KindLines    Kind = 0x04
	KindErr      Kind = 0xFF
)

const maxFrame = 0xFFFFFF // frame payloads >= this length continue into another frame

// Packet is one protocol message. Exactly one of the fields is meaningful,
// selected by Kind.
type Packet struct {
	Kind  Kind
	Bytes []byte          // AuthReq / AuthResp payload
	Text  string          // Text / Err payload
	Lines []flow.RawLine  // Lines payload
}

// Ok is the empty success acknowledgement.
func Ok() Packet { return Packet{Kind: KindOk} }

// AuthReq carries the random seed sent by the server.
func AuthReq(seed []byte) Packet { return Packet{Kind: KindAuthReq, Bytes: seed} }

// AuthResp carries the client's computed secret.
func AuthResp(secret []byte) Packet { return Packet{Kind: KindAuthResp, Bytes: secret} }

// TextPacket carries a single line of text (e.g. outbound user input).
func TextPacket(s string) Packet { return Packet{Kind: KindText, Text: s} }

// ErrPacket carries a human-readable error message.
func ErrPacket(msg string) Packet { return Packet{Kind: KindErr, Text: msg} }

// LinesPacket carries a batch of raw world lines.
func LinesPacket(lines []flow.RawLine) Packet { return Packet{Kind: KindLines, Lines: lines} }

func (p Packet) payload() ([]byte, error) {
	switch p.Kind {
	case KindOk:
		return nil, nil
	case KindAuthReq, KindAuthResp:
		return p.Bytes, nil
	case KindText, KindErr:
		return []byte(p.Text), nil
	case KindLines:
		return encodeLines(p.Lines)
	default:
		return nil, fmt.Errorf("wireproto: unknown packet kind %x", p.Kind)
	}
}

// WriteTo writes p to w as one or more length-prefixed frames (spec §9: a
// payload of length >= 0xFFFFFF is split across multiple frames, each
// carrying exactly 0xFFFFFF bytes except the last).
func (p Packet) WriteTo(w io.Writer) error {
	payload, err := p.payload()
	if err != nil {
		return err
	}
	bs := append(payload, byte(p.Kind))
	for len(bs) >= maxFrame {
		if err := writeFrame(w, bs[:maxFrame]); err != nil {
			return err
		}
		bs = bs[maxFrame:]
	}
	return writeFrame(w, bs)
}

// ReadFrom reads one packet from r, reassembling continuation frames.
func ReadFrom(r io.Reader) (Packet, error) {
	var bs []byte
	for {
		frame, err := readFrame(r)
		if err != nil {
			return Packet{}, err
		}
		bs = append(bs, frame...)
		if len(frame) < maxFrame {
			break
		}
	}
	if len(bs) == 0 {
		return Packet{}, fmt.Errorf("wireproto: %w: empty packet", muderr.ErrMalformedPacket)
	}
	header := bs[len(bs)-1]
	body := bs[:len(bs)-1]
	switch Kind(header) {
	case KindOk:
		return Ok(), nil
	case KindAuthReq:
		return AuthReq(body), nil
	case KindAuthResp:
		return AuthResp(body), nil
	case KindText:
		return TextPacket(string(body)), nil
	case KindErr:
		return ErrPacket(string(body)), nil
	case KindLines:
		lines, err := decodeLines(body)
		if err != nil {
			return Packet{}, err
		}
		return LinesPacket(lines), nil
	default:
		return Packet{}, fmt.Errorf("wireproto: %w: invalid header byte %x", muderr.ErrMalformedPacket, header)
	}
}

func encodeLines(lines []flow.RawLine) ([]byte, error) {
	bs := make([]byte, 4, 4+len(lines)*8)
	binary.LittleEndian.PutUint32(bs, uint32(len(lines)))
	for _, line := range lines {
		content := []byte(line.Content)
		lenBuf := make([]byte, 4)
		binary.LittleEndian.PutUint32(lenBuf, uint32(len(content)))
		bs = append(bs, lenBuf...)
		bs = append(bs, content...)
	}
	return bs, nil
}

func decodeLines(bs []byte) ([]flow.RawLine, error) {
	if len(bs) < 4 {
		return nil, fmt.Errorf("wireproto: %w: lines payload too short", muderr.ErrMalformedPacket)
	}
	n := binary.LittleEndian.Uint32(bs)
	bs = bs[4:]
	lines := make([]flow.RawLine, 0, n)
	for i := uint32(0); i < n; i++ {
		if len(bs) < 4 {
			return nil, fmt.Errorf("wireproto: %w: truncated line length", muderr.ErrMalformedPacket)
		}
		l := binary.LittleEndian.Uint32(bs)
		bs = bs[4:]
		if uint32(len(bs)) < l {
			return nil, fmt.Errorf("wireproto: %w: truncated line content", muderr.ErrMalformedPacket)
		}
		lines = append(lines, flow.RawLine{Content: string(bs[:l])})
		bs = bs[l:]
	}
	return lines, nil
}

func writeFrame(w io.Writer, buf []byte) error {
	if len(buf) > maxFrame {
		return fmt.Errorf("wireproto: frame too large: %d", len(buf))
	}
	var hdr [3]byte
	putUint24LE(hdr[:], uint32(len(buf)))
	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	_, err := w.Write(buf)
	return err
}

func readFrame(r io.Reader) ([]byte, error) {
	var hdr [3]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, err
	}
	n := uint24LE(hdr[:])
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func putUint24LE(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
}

func uint24LE(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16
}
