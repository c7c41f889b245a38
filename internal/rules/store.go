package rules

import "github.com/thyth/mudcore/internal/muderr"

// Model is the common shape every entry in a Store exposes: name/group
// identity and an enabled flag, mirroring original_source's Model trait.
type Model interface {
	ModelName() string
	ModelGroup() string
	SetModelEnabled(bool)
	ModelEnabled() bool
}

// Store is an ordered, name-unique collection of T, backed by a plain slice
// with O(n) lookup by name (spec §4.5). Order is meaningful: match-first
// iterates in insertion order.
type Store[T Model] struct {
	entries []T
}

// NewStore returns an empty Store.
func NewStore[T Model]() *Store[T] {
	return &Store[T]{}
}

// Add appends model, rejecting it atomically if its name is non-empty and
// already present (spec §3 invariant 2: no partial side effect on failure).
func (s *Store[T]) Add(model T) error {
	name := model.ModelName()
	if name != "" {
		if _, ok := s.indexOf(name); ok {
			return muderr.ErrDuplicateName
		}
	}
	s.entries = append(s.entries, model)
	return nil
}

// Remove deletes the named entry and returns it.
func (s *Store[T]) Remove(name string) (T, bool) {
	var zero T
	if name == "" {
		return zero, false
	}
	idx, ok := s.indexOf(name)
	if !ok {
		return zero, false
	}
	m := s.entries[idx]
	s.entries = append(s.entries[:idx], s.entries[idx+1:]...)
	return m, true
}

// Enable flips the enabled flag of the named entry, returning it.
func (s *Store[T]) Enable(name string, enabled bool) (T, bool) {
	var zero T
	if name == "" {
		return zero, false
	}
	idx, ok := s.indexOf(name)
	if !ok {
		return zero, false
	}
	s.entries[idx].SetModelEnabled(enabled)
	return s.entries[idx], true
}

// EnableGroup flips the enabled flag on every entry in group, returning the
// count affected.
func (s *Store[T]) EnableGroup(group string, enabled bool) int {
	if group == "" {
		return 0
	}
	n := 0
	for i := range s.entries {
		if s.entries[i].ModelGroup() == group {
			s.entries[i].SetModelEnabled(enabled)
			n++
		}
	}
	return n
}

// Get returns the named entry.
func (s *Store[T]) Get(name string) (T, bool) {
	var zero T
	if name == "" {
		return zero, false
	}
	idx, ok := s.indexOf(name)
	if !ok {
		return zero, false
	}
	return s.entries[idx], true
}

// All returns a snapshot of every entry in insertion order.
func (s *Store[T]) All() []T {
	out := make([]T, len(s.entries))
	copy(out, s.entries)
	return out
}

// Replace overwrites the named entry in place (used to update a model
// in-place, e.g. a timer's generation, without disturbing order).
func (s *Store[T]) Replace(name string, model T) bool {
	idx, ok := s.indexOf(name)
	if !ok {
		return false
	}
	s.entries[idx] = model
	return true
}

func (s *Store[T]) indexOf(name string) (int, bool) {
	for i := range s.entries {
		if s.entries[i].ModelName() == name {
			return i, true
		}
	}
	return 0, false
}
