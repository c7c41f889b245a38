package rules

// Target distinguishes where a matched alias's replacement text goes:
// straight to the world, or into the script interpreter (spec §4.7/§4.8,
// grounded on original_source/src/runtime/mod.rs's Target enum).
type Target int

const (
	TargetWorld Target = iota
	TargetScript
)

// Alias is the same shape as Trigger minus match_lines and one-shot,
// applied line-by-line to outbound user input before send (spec §3).
type Alias struct {
	Name     string
	Group    string
	IsRegex  bool
	Enabled  bool
	Target   Target
	Callback string // script callback identifier, keyed into the alias callback registry
	compiled Pattern
}

// NewAlias compiles pattern and returns an Alias.
func NewAlias(name, group, pattern string, isRegex bool, enabled bool, target Target, callback string) (Alias, error) {
	a := Alias{Name: name, Group: group, IsRegex: isRegex, Enabled: enabled, Target: target, Callback: callback}
	if isRegex {
		p, err := CompileRegex(pattern, 1)
		if err != nil {
			return Alias{}, err
		}
		a.compiled = p
	} else {
		a.compiled = CompilePlain(pattern)
	}
	return a, nil
}

func (a Alias) ModelName() string       { return a.Name }
func (a Alias) ModelGroup() string      { return a.Group }
func (a Alias) ModelEnabled() bool      { return a.Enabled }
func (a *Alias) SetModelEnabled(e bool) { a.Enabled = e }

// IsMatch reports whether input matches this alias (strict equality for
// plain patterns).
func (a *Alias) IsMatch(input string) bool { return a.compiled.IsMatch(input, true) }

// Captures exposes the regex captures for this alias's match.
func (a *Alias) Captures(input string) (Match, bool) { return a.compiled.FindMatch(input) }

// Aliases is the ordered store of Alias entries.
type Aliases struct {
	store *Store[*Alias]
}

// NewAliases returns an empty Aliases store.
func NewAliases() *Aliases {
	return &Aliases{store: NewStore[*Alias]()}
}

func (as *Aliases) Add(a Alias) error     { return as.store.Add(&a) }
func (as *Aliases) Remove(name string) bool { _, ok := as.store.Remove(name); return ok }
func (as *Aliases) Enable(name string, enabled bool) bool {
	_, ok := as.store.Enable(name, enabled)
	return ok
}
func (as *Aliases) EnableGroup(group string, enabled bool) int {
	return as.store.EnableGroup(group, enabled)
}
func (as *Aliases) Get(name string) (*Alias, bool) { return as.store.Get(name) }
func (as *Aliases) All() []*Alias                  { return as.store.All() }

// MatchFirst returns the first enabled alias whose pattern matches input,
// in insertion order (spec §4.5 match_first).
func (as *Aliases) MatchFirst(input string) (*Alias, bool) {
	for _, a := range as.store.All() {
		if a.Enabled && a.IsMatch(input) {
			return a, true
		}
	}
	return nil, false
}
