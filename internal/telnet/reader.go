package telnet

import "io"

// Reader wraps a raw byte source with the telnet Parser and exposes the
// blocking recv() operation from spec §4.2: one Event per call, draining any
// already-decoded events before touching the underlying reader again.
type Reader struct {
	src    io.Reader
	parser *Parser
	buf    []byte
	queue  []Event
}

// NewReader wraps src. bufSize sizes the raw read buffer.
func NewReader(src io.Reader, bufSize int) *Reader {
	if bufSize <= 0 {
		bufSize = 4096
	}
	return &Reader{src: src, parser: NewParser(), buf: make([]byte, bufSize)}
}

// Recv returns the next Event: Text, DataToSend, Empty, or Disconnected.
// EOF on the underlying reader surfaces exactly once as Disconnected.
func (r *Reader) Recv() (Event, error) {
	if len(r.queue) > 0 {
		ev := r.queue[0]
		r.queue = r.queue[1:]
		return ev, nil
	}

	n, err := r.src.Read(r.buf)
	if n > 0 {
		text := r.parser.Feed(r.buf[:n])
		if len(text) > 0 {
			r.queue = append(r.queue, Event{Kind: Text, Data: text})
		}
		for _, out := range r.parser.TakeOutbound() {
			r.queue = append(r.queue, Event{Kind: DataToSend, Data: out})
		}
	}
	if err != nil {
		if err == io.EOF {
			r.queue = append(r.queue, Event{Kind: Disconnected})
		} else {
			return Event{}, err
		}
	}
	if len(r.queue) > 0 {
		ev := r.queue[0]
		r.queue = r.queue[1:]
		return ev, nil
	}
	return Event{Kind: Empty}, nil
}
