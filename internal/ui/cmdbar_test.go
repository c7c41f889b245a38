package ui

import "testing"

func TestCmdbarTypeAndSubmit(t *testing.T) {
	c := NewCmdbar('.', 10)
	for _, r := range "north" {
		c.TypeRune(r)
	}
	text, isScript := c.Submit()
	if text != "north" || isScript {
		t.Fatalf("expected plain submit of 'north', got %q isScript=%v", text, isScript)
	}
	if c.Buffer() != "" {
		t.Fatalf("expected empty buffer after submit, got %q", c.Buffer())
	}
}

func TestCmdbarScriptPrefixMode(t *testing.T) {
	c := NewCmdbar('.', 10)
	c.TypeRune('.')
	if !c.InScriptMode() {
		t.Fatalf("expected script mode after typing prefix as first character")
	}
	if c.Buffer() != "" {
		t.Fatalf("prefix character should not be inserted into the buffer, got %q", c.Buffer())
	}
	for _, r := range "Send(\"hi\")" {
		c.TypeRune(r)
	}
	text, isScript := c.Submit()
	if !isScript || text != "Send(\"hi\")" {
		t.Fatalf("expected script submit, got %q isScript=%v", text, isScript)
	}
}

func TestCmdbarBackspaceToEmptyLeavesScriptMode(t *testing.T) {
	c := NewCmdbar('.', 10)
	c.TypeRune('.')
	c.TypeRune('x')
	c.Backspace()
	if !c.InScriptMode() {
		t.Fatalf("expected script mode still active with buffer non-empty")
	}
	c.Backspace()
	if c.InScriptMode() {
		t.Fatalf("expected script mode cleared once buffer emptied")
	}
}

func TestCmdbarHistoryNoDuplicateOfPrevious(t *testing.T) {
	c := NewCmdbar('.', 10)
	for _, s := range []string{"look", "look"} {
		for _, r := range s {
			c.TypeRune(r)
		}
		c.Submit()
	}
	if len(c.history) != 1 {
		t.Fatalf("expected duplicate of the previous entry to be skipped, got %v", c.history)
	}
}

func TestCmdbarHistoryCap(t *testing.T) {
	c := NewCmdbar('.', 2)
	for _, s := range []string{"a", "b", "c"} {
		for _, r := range s {
			c.TypeRune(r)
		}
		c.Submit()
	}
	if len(c.history) != 2 || c.history[0] != "b" || c.history[1] != "c" {
		t.Fatalf("expected bounded history [b c], got %v", c.history)
	}
}

func TestCmdbarHistoryUpDownRoundTrip(t *testing.T) {
	c := NewCmdbar('.', 10)
	for _, s := range []string{"one", "two"} {
		for _, r := range s {
			c.TypeRune(r)
		}
		c.Submit()
	}
	for _, r := range "draft" {
		c.TypeRune(r)
	}
	c.HistoryUp()
	if c.Buffer() != "two" {
		t.Fatalf("expected 'two' after first HistoryUp, got %q", c.Buffer())
	}
	c.HistoryUp()
	if c.Buffer() != "one" {
		t.Fatalf("expected 'one' after second HistoryUp, got %q", c.Buffer())
	}
	c.HistoryDown()
	if c.Buffer() != "two" {
		t.Fatalf("expected 'two' after HistoryDown, got %q", c.Buffer())
	}
	c.HistoryDown()
	if c.Buffer() != "draft" {
		t.Fatalf("expected restored live buffer 'draft', got %q", c.Buffer())
	}
}
