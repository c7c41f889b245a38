package ui

import (
	"os"

	"golang.org/x/term"
)

// RawTerm is the scoped raw-mode terminal handle spec §5's resource
// discipline note calls for: "acquisition returns a handle whose drop
// restores the prior state ... on every control-flow exit." bubbletea
// manages raw mode internally for the duration of Program.Run, but a
// terminating signal or a panic unwinding past Run can leave the terminal
// in whatever mode it last had; AcquireRawTerm/Restore is the outer,
// belt-and-suspenders scope around that.
type RawTerm struct {
	fd    int
	state *term.State
}

// AcquireRawTerm puts stdin into raw mode if it is a terminal, returning a
// handle to restore it. Returns a nil-bodied handle (Restore is then a
// no-op) when stdin isn't a TTY, e.g. when piping a session transcript in
// for testing.
func AcquireRawTerm() (*RawTerm, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return &RawTerm{fd: fd}, nil
	}
	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, err
	}
	return &RawTerm{fd: fd, state: state}, nil
}

// Restore returns the terminal to its prior (cooked) mode. Safe to call on
// a handle acquired from a non-TTY stdin, and safe to call more than once.
func (r *RawTerm) Restore() {
	if r == nil || r.state == nil {
		return
	}
	_ = term.Restore(r.fd, r.state)
	r.state = nil
}
