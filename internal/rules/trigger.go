package rules

import "github.com/thyth/mudcore/internal/ansimxp"

// Trigger is a named, grouped rule matched against incoming lines that
// invokes a script callback (spec §3, §4.5).
type Trigger struct {
	Name           string
	Group          string
	PatternText    string
	IsRegex        bool
	MatchLines     int
	Enabled        bool
	OneShot        bool
	KeepEvaluating bool
	Callback       string

	compiled Pattern
}

// NewTrigger compiles pattern and returns a Trigger, or an error if the
// pattern fails to compile (spec §3 invariant 2: the trigger is rejected as
// a whole, with no partial state left behind — enforced by the caller never
// storing a Trigger whose NewTrigger call failed).
func NewTrigger(name, group, pattern string, isRegex bool, matchLines int, enabled, oneShot, keepEvaluating bool, callback string) (Trigger, error) {
	if matchLines < 1 {
		matchLines = 1
	}
	t := Trigger{
		Name: name, Group: group, PatternText: pattern, IsRegex: isRegex,
		MatchLines: matchLines, Enabled: enabled, OneShot: oneShot,
		KeepEvaluating: keepEvaluating, Callback: callback,
	}
	if isRegex {
		p, err := CompileRegex(pattern, matchLines)
		if err != nil {
			return Trigger{}, err
		}
		t.compiled = p
	} else {
		t.compiled = CompilePlain(pattern)
	}
	return t, nil
}

func (t Trigger) ModelName() string        { return t.Name }
func (t Trigger) ModelGroup() string       { return t.Group }
func (t Trigger) ModelEnabled() bool       { return t.Enabled }
func (t *Trigger) SetModelEnabled(e bool)  { t.Enabled = e }

// Triggers is the ordered store of Trigger entries.
type Triggers struct {
	store *Store[*Trigger]
}

// NewTriggers returns an empty Triggers store.
func NewTriggers() *Triggers {
	return &Triggers{store: NewStore[*Trigger]()}
}

func (ts *Triggers) Add(t Trigger) error       { return ts.store.Add(&t) }
func (ts *Triggers) Remove(name string) bool   { _, ok := ts.store.Remove(name); return ok }
func (ts *Triggers) Enable(name string, enabled bool) bool {
	_, ok := ts.store.Enable(name, enabled)
	return ok
}
func (ts *Triggers) EnableGroup(group string, enabled bool) int {
	return ts.store.EnableGroup(group, enabled)
}
func (ts *Triggers) Get(name string) (*Trigger, bool) { return ts.store.Get(name) }
func (ts *Triggers) All() []*Trigger                  { return ts.store.All() }

// TriggerFirst scans triggers in insertion order and returns the first
// enabled entry whose pattern matches the cache, along with the matched
// text and (for single-line triggers only) the inline style run of the last
// cached line (spec §4.5, §4.6).
func (ts *Triggers) TriggerFirst(cache *TriggerCache) (*Trigger, string, []ansimxp.Span, bool) {
	for _, t := range ts.store.All() {
		if !t.Enabled {
			continue
		}
		if t.MatchLines > 1 {
			text := cache.LastNTrimmed(t.MatchLines)
			if text == "" {
				continue
			}
			if t.compiled.IsMatch(text, true) {
				return t, text, nil, true
			}
			continue
		}
		text := cache.LastTrimmed()
		if t.compiled.IsMatch(text, true) {
			return t, text, cache.LastStyles(), true
		}
	}
	return nil, "", nil, false
}

// Captures exposes the regex captures of a match against text, for handing
// to a script callback (spec §4.5: "positional list (1-based) and by
// name").
func (t *Trigger) Captures(text string) (Match, bool) {
	return t.compiled.FindMatch(text)
}
