package rules

import (
	"strings"

	"github.com/thyth/mudcore/internal/ansimxp"
)

// TriggerCache is the bounded rolling window of recently completed lines
// (spec §3: "default: min 5, max 10") used to match multi-line triggers,
// plus the style run of the most recent line for single-line matches.
type TriggerCache struct {
	capacity int
	lines    []string
	styles   [][]ansimxp.Span
}

const (
	minCacheLines = 5
	maxCacheLines = 10
)

// NewTriggerCache returns a cache with the given capacity, clamped to
// [minCacheLines, maxCacheLines].
func NewTriggerCache(capacity int) *TriggerCache {
	if capacity < minCacheLines {
		capacity = minCacheLines
	}
	if capacity > maxCacheLines {
		capacity = maxCacheLines
	}
	return &TriggerCache{capacity: capacity}
}

// Push records a completed line's trimmed text and its inline style spans.
func (c *TriggerCache) Push(trimmed string, styles []ansimxp.Span) {
	c.lines = append(c.lines, trimmed)
	c.styles = append(c.styles, styles)
	for len(c.lines) > c.capacity {
		c.lines = c.lines[1:]
		c.styles = c.styles[1:]
	}
}

// LastTrimmed returns the most recently pushed line, trimmed of trailing
// CR/LF (spec §4.5).
func (c *TriggerCache) LastTrimmed() string {
	if len(c.lines) == 0 {
		return ""
	}
	return c.lines[len(c.lines)-1]
}

// LastStyles returns the inline style spans of the most recent line.
func (c *TriggerCache) LastStyles() []ansimxp.Span {
	if len(c.styles) == 0 {
		return nil
	}
	return c.styles[len(c.styles)-1]
}

// LastNTrimmed joins the last n lines (trimmed) with "\r\n", reconstructing
// the separator a multi-line trigger pattern spans. Returns "" if fewer than
// n lines are available.
func (c *TriggerCache) LastNTrimmed(n int) string {
	if n <= 0 || len(c.lines) < n {
		return ""
	}
	return strings.Join(c.lines[len(c.lines)-n:], "\r\n")
}

// TrimEnding strips a single trailing "\r\n", "\n", or "\r" from s, the
// normalisation applied before caching or matching a line.
func TrimEnding(s string) string {
	s = strings.TrimSuffix(s, "\r\n")
	s = strings.TrimSuffix(s, "\n")
	s = strings.TrimSuffix(s, "\r")
	return s
}
