// Package logging provides the small level-gated logger used throughout the
// core, in place of the ad-hoc -printTiming/-debug style flags the proxy
// this module grew from used directly on the standard logger.
package logging

import (
	"io"
	"log"
	"os"
)

type Level int

const (
	LevelError Level = iota
	LevelWarn
	LevelInfo
	LevelDebug
	LevelTrace
)

// Logger wraps a standard library *log.Logger with a level gate.
type Logger struct {
	level Level
	l     *log.Logger
}

// New builds a Logger writing to w at the given level. A nil w defaults to
// os.Stderr.
func New(w io.Writer, level Level) *Logger {
	if w == nil {
		w = os.Stderr
	}
	return &Logger{level: level, l: log.New(w, "", log.LstdFlags|log.Lmicroseconds)}
}

// Discard returns a Logger that drops everything; useful default for tests.
func Discard() *Logger {
	return New(io.Discard, LevelError)
}

func (lg *Logger) enabled(lv Level) bool { return lg != nil && lg.level >= lv }

func (lg *Logger) Errorf(format string, args ...any) {
	if lg.enabled(LevelError) {
		lg.l.Printf("ERROR "+format, args...)
	}
}

func (lg *Logger) Warnf(format string, args ...any) {
	if lg.enabled(LevelWarn) {
		lg.l.Printf("WARN  "+format, args...)
	}
}

func (lg *Logger) Infof(format string, args ...any) {
	if lg.enabled(LevelInfo) {
		lg.l.Printf("INFO  "+format, args...)
	}
}

func (lg *Logger) Debugf(format string, args ...any) {
	if lg.enabled(LevelDebug) {
		lg.l.Printf("DEBUG "+format, args...)
	}
}

func (lg *Logger) Tracef(format string, args ...any) {
	if lg.enabled(LevelTrace) {
		lg.l.Printf("TRACE "+format, args...)
	}
}
