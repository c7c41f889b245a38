// Package telnet implements the telnet IAC framer (C2). It strips telnet
// option negotiation out of a raw byte stream, replying only with refusals
// (no option is supported by default, per spec §4.2 / design note (a)), and
// surfaces plain text and EOF to the caller.
//
// The state-machine shape (explicit states, resumable across arbitrary
// read-boundary splits) is grounded on
// other_examples/fae77e8e_mmcdole-rune__network-telnet.go.go's Parser.extract.
package telnet

// Telnet command bytes (RFC 854).
const (
	IAC  byte = 255
	DONT byte = 254
	DO   byte = 253
	WONT byte = 252
	WILL byte = 251
	SB   byte = 250
	SE   byte = 240
	GA   byte = 249
	NOP  byte = 241
)

type state int

const (
	stateNormal state = iota
	stateIAC
	stateNeg
	stateSub
	stateSubIAC
)

// EventKind enumerates the four outcomes of Recv, matching spec §4.2.
type EventKind int

const (
	Text EventKind = iota
	DataToSend
	Empty
	Disconnected
)

// Event is one outcome of Recv.
type Event struct {
	Kind EventKind
	Data []byte
}

// Parser is an incremental telnet byte-stream decoder. It carries no
// knowledge of any enabled option: every WILL/DO is refused, every SB is
// swallowed.
type Parser struct {
	st       state
	negCmd   byte
	subOpt   byte
	subBuf   []byte
	textBuf  []byte
	outbound [][]byte
}

// NewParser returns a Parser with empty state.
func NewParser() *Parser {
	return &Parser{st: stateNormal}
}

// Feed processes a chunk of raw bytes from the world, returning the plain
// text extracted (may be empty) and appending any negotiation replies to the
// parser's pending outbound queue (drained via TakeOutbound).
func (p *Parser) Feed(data []byte) []byte {
	for _, b := range data {
		p.step(b)
	}
	text := p.textBuf
	p.textBuf = nil
	return text
}

// TakeOutbound drains and returns any negotiation-reply byte chunks queued
// during the most recent Feed calls.
func (p *Parser) TakeOutbound() [][]byte {
	out := p.outbound
	p.outbound = nil
	return out
}

func (p *Parser) step(b byte) {
	switch p.st {
	case stateNormal:
		if b == IAC {
			p.st = stateIAC
			return
		}
		p.textBuf = append(p.textBuf, normalizeByte(b)...)
	case stateIAC:
		switch b {
		case IAC:
			// escaped 0xFF literal
			p.textBuf = append(p.textBuf, IAC)
			p.st = stateNormal
		case WILL, WONT, DO, DONT:
			p.negCmd = b
			p.st = stateNeg
		case SB:
			p.st = stateSub
		case SE, GA, NOP:
			p.st = stateNormal
		default:
			// unrecognised command byte, no option/sub payload follows
			p.st = stateNormal
		}
	case stateNeg:
		p.reply(p.negCmd, b)
		p.st = stateNormal
	case stateSub:
		if b == IAC {
			p.st = stateSubIAC
			return
		}
		p.subBuf = append(p.subBuf, b)
	case stateSubIAC:
		if b == SE {
			p.subOpt = 0
			p.subBuf = nil
			p.st = stateNormal
			return
		}
		// stray IAC inside subnegotiation that isn't SE: treat as literal
		// and resume collecting
		p.subBuf = append(p.subBuf, IAC, b)
		p.st = stateSub
	}
}

// normalizeByte passes every text byte through unchanged: a lone CR and a
// CR-NUL pair both reach the ANSI/MXP layer above as-is, and that layer owns
// newline semantics (its tokenizer drops CR-NUL pairs).
func normalizeByte(b byte) []byte {
	return []byte{b}
}

// reply enqueues the appropriate refusal for an inbound WILL/WONT/DO/DONT,
// since no option is supported by default (spec design note (a)).
func (p *Parser) reply(cmd, opt byte) {
	var resp byte
	switch cmd {
	case WILL:
		resp = DONT
	case DO:
		resp = WONT
	case WONT, DONT:
		// no reply required to a refusal/cessation
		return
	default:
		return
	}
	p.outbound = append(p.outbound, []byte{IAC, resp, opt})
}

// EscapeIAC doubles every 0xFF byte in data, for outbound text that must
// pass through telnet framing unmodified.
func EscapeIAC(data []byte) []byte {
	out := make([]byte, 0, len(data))
	for _, b := range data {
		out = append(out, b)
		if b == IAC {
			out = append(out, IAC)
		}
	}
	return out
}
