package rules

import (
	"testing"
	"time"
)

func TestTimerFiresAfterTick(t *testing.T) {
	ts := NewTimers()
	if err := ts.Insert(NewTimer("tick", "", 10*time.Millisecond, true, true, "onTick")); err != nil {
		t.Fatalf("insert: %v", err)
	}
	fired, ok := ts.OnSchedule()
	if !ok || fired.Name != "tick" {
		t.Fatalf("expected tick to fire, got %v %v", fired, ok)
	}
}

func TestTimerOneShotDisablesAfterFiring(t *testing.T) {
	ts := NewTimers()
	_ = ts.Insert(NewTimer("once", "", 5*time.Millisecond, true, true, "cb"))
	if _, ok := ts.OnSchedule(); !ok {
		t.Fatalf("expected first fire")
	}
	tm, ok := ts.Get("once")
	if !ok {
		t.Fatalf("timer should still be in index")
	}
	if tm.Enabled {
		t.Fatalf("one-shot timer must be disabled after firing")
	}
}

func TestTimerRepeatingReschedules(t *testing.T) {
	ts := NewTimers()
	_ = ts.Insert(NewTimer("rep", "", 5*time.Millisecond, true, false, "cb"))
	if _, ok := ts.OnSchedule(); !ok {
		t.Fatalf("expected first fire")
	}
	if _, ok := ts.OnSchedule(); !ok {
		t.Fatalf("expected repeating timer to fire again")
	}
}

func TestTimerDisabledNotScheduled(t *testing.T) {
	ts := NewTimers()
	if err := ts.Insert(NewTimer("off", "", 5*time.Millisecond, false, false, "cb")); err != nil {
		t.Fatalf("insert: %v", err)
	}
	tm, ok := ts.Get("off")
	if !ok || tm.Enabled {
		t.Fatalf("disabled timer should be stored but not enabled")
	}
}

// TestTimerDisableDropsStaleTick verifies that disabling a scheduled timer
// before it fires causes its pending tick to be silently discarded rather
// than firing, and that re-enabling produces a fresh generation that fires
// independently of the stale one.
func TestTimerDisableDropsStaleTick(t *testing.T) {
	ts := NewTimers()
	_ = ts.Insert(NewTimer("flap", "", 5*time.Millisecond, true, true, "cb"))
	ts.Enable("flap", false)
	ts.Enable("flap", true)

	fired, ok := ts.OnSchedule()
	if !ok || fired.Name != "flap" {
		t.Fatalf("expected the re-enabled generation to fire, got %v %v", fired, ok)
	}
}

func TestTimerRemoveDropsPendingTick(t *testing.T) {
	ts := NewTimers()
	_ = ts.Insert(NewTimer("a", "", 5*time.Millisecond, true, true, "cb"))
	_ = ts.Insert(NewTimer("b", "", 10*time.Millisecond, true, true, "cb"))
	if !ts.Remove("a") {
		t.Fatalf("expected removal to succeed")
	}
	fired, ok := ts.OnSchedule()
	if !ok || fired.Name != "b" {
		t.Fatalf("expected removed timer's tick to be skipped, got %v %v", fired, ok)
	}
}
