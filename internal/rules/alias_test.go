package rules

import "testing"

func TestAliasMatchFirst(t *testing.T) {
	as := NewAliases()
	a, err := NewAlias("n", "", "n", false, true, TargetWorld, "north")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if err := as.Add(a); err != nil {
		t.Fatalf("add: %v", err)
	}

	if _, ok := as.MatchFirst("north"); ok {
		t.Fatalf("plain alias must match strictly, not substring")
	}
	got, ok := as.MatchFirst("n")
	if !ok || got.Name != "n" {
		t.Fatalf("expected match on alias n")
	}
}

func TestAliasDisabledSkipped(t *testing.T) {
	as := NewAliases()
	a, _ := NewAlias("look", "", "l", false, false, TargetWorld, "look")
	_ = as.Add(a)
	if _, ok := as.MatchFirst("l"); ok {
		t.Fatalf("disabled alias should not match")
	}
}

func TestAliasRegexCaptures(t *testing.T) {
	a, err := NewAlias("give", "", `^gi (\w+)$`, true, true, TargetScript, "giveItem")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if !a.IsMatch("gi sword") {
		t.Fatalf("expected regex alias to match")
	}
	m, ok := a.Captures("gi sword")
	if !ok || len(m.Groups) < 2 || m.Groups[1] != "sword" {
		t.Fatalf("expected capture group 1 = sword, got %v", m)
	}
}

func TestAliasEnableGroup(t *testing.T) {
	as := NewAliases()
	a, _ := NewAlias("a1", "movement", "a", false, false, TargetWorld, "a")
	b, _ := NewAlias("a2", "movement", "b", false, false, TargetWorld, "b")
	_ = as.Add(a)
	_ = as.Add(b)

	n := as.EnableGroup("movement", true)
	if n != 2 {
		t.Fatalf("expected 2 aliases enabled, got %d", n)
	}
	if _, ok := as.MatchFirst("a"); !ok {
		t.Fatalf("expected a1 enabled after group enable")
	}
}
