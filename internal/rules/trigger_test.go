package rules

import "testing"

func TestTriggerFirstSingleLine(t *testing.T) {
	ts := NewTriggers()
	tr, err := NewTrigger("hp", "", "you are bleeding", false, 1, true, false, false, "onBleed")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if err := ts.Add(tr); err != nil {
		t.Fatalf("add: %v", err)
	}

	cache := NewTriggerCache(5)
	cache.Push("something else", nil)
	if _, _, _, ok := ts.TriggerFirst(cache); ok {
		t.Fatalf("expected no match")
	}
	cache.Push("you are bleeding", nil)
	got, text, _, ok := ts.TriggerFirst(cache)
	if !ok || got.Name != "hp" || text != "you are bleeding" {
		t.Fatalf("expected match on hp, got %v %q %v", got, text, ok)
	}
}

func TestTriggerFirstDisabledSkipped(t *testing.T) {
	ts := NewTriggers()
	tr, _ := NewTrigger("a", "", "x", false, 1, false, false, false, "cb")
	_ = ts.Add(tr)
	cache := NewTriggerCache(5)
	cache.Push("x", nil)
	if _, _, _, ok := ts.TriggerFirst(cache); ok {
		t.Fatalf("disabled trigger should not match")
	}
}

func TestTriggerFirstMultiLine(t *testing.T) {
	ts := NewTriggers()
	tr, err := NewTrigger("multi", "", `^foo\r\nbar$`, true, 2, true, false, false, "cb")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	_ = ts.Add(tr)

	cache := NewTriggerCache(5)
	cache.Push("foo", nil)
	if _, _, _, ok := ts.TriggerFirst(cache); ok {
		t.Fatalf("expected no match with only one line cached")
	}
	cache.Push("bar", nil)
	got, text, styles, ok := ts.TriggerFirst(cache)
	if !ok || got.Name != "multi" || text != "foo\r\nbar" {
		t.Fatalf("expected multi-line match, got %q %v", text, ok)
	}
	if styles != nil {
		t.Fatalf("multi-line match should not report inline styles")
	}
}

func TestTriggerFirstInsertionOrder(t *testing.T) {
	ts := NewTriggers()
	first, _ := NewTrigger("first", "", "hit", false, 1, true, false, false, "cb1")
	second, _ := NewTrigger("second", "", "hit", false, 1, true, false, false, "cb2")
	_ = ts.Add(first)
	_ = ts.Add(second)

	cache := NewTriggerCache(5)
	cache.Push("hit", nil)
	got, _, _, ok := ts.TriggerFirst(cache)
	if !ok || got.Name != "first" {
		t.Fatalf("expected earliest-inserted trigger to win, got %v", got)
	}
}

func TestTriggerDuplicateNameRejected(t *testing.T) {
	ts := NewTriggers()
	a, _ := NewTrigger("dup", "", "x", false, 1, true, false, false, "cb")
	b, _ := NewTrigger("dup", "", "y", false, 1, true, false, false, "cb")
	if err := ts.Add(a); err != nil {
		t.Fatalf("first add: %v", err)
	}
	if err := ts.Add(b); err == nil {
		t.Fatalf("expected duplicate name rejection")
	}
	if len(ts.All()) != 1 {
		t.Fatalf("duplicate rejection must not leave partial state")
	}
}

func TestTriggerCapturesNamedGroups(t *testing.T) {
	tr, err := NewTrigger("cap", "", `(?<who>\w+) hits you`, true, 1, true, false, false, "cb")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	m, ok := tr.Captures("troll hits you")
	if !ok {
		t.Fatalf("expected match")
	}
	if m.Named["who"] != "troll" {
		t.Fatalf("expected named capture who=troll, got %v", m.Named)
	}
}
