// Package rules implements the trigger/alias/timer store (C5): an ordered,
// name-unique collection with O(n) lookup, atomic add (compile-or-reject),
// and match-first/match-all semantics.
//
// Grounded on original_source/src/runtime/model.rs (generic Model/ModelExec/
// ModelStore), trigger.rs (multi-line cache matching), and timer.rs
// (generation-id scheduling). Pattern compilation uses
// github.com/dlclark/regexp2 rather than stdlib regexp: the original's
// multi-line triggers rely on an (?m)-prefixed Rust `regex` and named-group
// capture lookup that regexp2's engine models more directly (see
// SPEC_FULL.md's DOMAIN STACK section).
package rules

import (
	"fmt"

	"github.com/dlclark/regexp2"
)

// Pattern is either a plain string match or a compiled regex, mirroring
// original_source/src/runtime/mod.rs's Pattern enum.
type Pattern struct {
	plain string
	re    *regexp2.Regexp
	isRe  bool
}

// CompilePlain builds a literal-match pattern.
func CompilePlain(s string) Pattern {
	return Pattern{plain: s}
}

// CompileRegex compiles pattern as a regex. When matchLines > 1, the pattern
// is compiled with multiline mode enabled so ^/$ match at internal line
// boundaries (spec §4.5: "compilation of a multi-line trigger prepends
// multiline mode to the regex").
func CompileRegex(pattern string, matchLines int) (Pattern, error) {
	opts := regexp2.None
	if matchLines > 1 {
		opts |= regexp2.Multiline
	}
	re, err := regexp2.Compile(pattern, opts)
	if err != nil {
		return Pattern{}, fmt.Errorf("rules: compile pattern %q: %w", pattern, err)
	}
	return Pattern{re: re, isRe: true}, nil
}

// IsMatch reports whether input matches the pattern. For plain patterns,
// strict requests exact equality instead of substring containment.
func (p Pattern) IsMatch(input string, strict bool) bool {
	if p.isRe {
		m, err := p.re.MatchString(input)
		return err == nil && m
	}
	if strict {
		return input == p.plain
	}
	return containsSubstring(input, p.plain)
}

func containsSubstring(s, sub string) bool {
	if sub == "" {
		return true
	}
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}

// Match is a successful regex match's captured groups, by position (1-based,
// index 0 is the whole match) and by name.
type Match struct {
	Groups []string
	Named  map[string]string
}

// FindMatch runs the pattern against input and returns its captures. Only
// meaningful for regex patterns; plain patterns return a Match with just the
// whole-input group.
func (p Pattern) FindMatch(input string) (Match, bool) {
	if !p.isRe {
		if p.IsMatch(input, false) {
			return Match{Groups: []string{input}}, true
		}
		return Match{}, false
	}
	m, err := p.re.FindStringMatch(input)
	if err != nil || m == nil {
		return Match{}, false
	}
	groups := m.Groups()
	match := Match{Named: map[string]string{}}
	for _, g := range groups {
		match.Groups = append(match.Groups, g.String())
		if g.Name != "" && g.Name != "0" {
			match.Named[g.Name] = g.String()
		}
	}
	return match, true
}
