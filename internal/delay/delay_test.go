package delay

import (
	"testing"
	"time"
)

func TestPopOrdersByDeadline(t *testing.T) {
	q := New()
	q.Push(Delay(100, 100*time.Millisecond))
	q.Push(Delay(50, 10*time.Millisecond))
	first := q.Pop()
	if first.Value != 50 {
		t.Fatalf("expected 50 first, got %v", first.Value)
	}
	second := q.Pop()
	if second.Value != 100 {
		t.Fatalf("expected 100 second, got %v", second.Value)
	}
}

func TestPopUntilTimesOut(t *testing.T) {
	q := New()
	q.Push(Delay(1, 500*time.Millisecond))
	_, ok := q.PopUntil(time.Now().Add(50 * time.Millisecond))
	if ok {
		t.Fatalf("expected timeout, got a value")
	}
}

func TestPushWakesEarlierHead(t *testing.T) {
	q := New()
	q.Push(Delay("late", 500*time.Millisecond))
	go func() {
		time.Sleep(10 * time.Millisecond)
		q.Push(Delay("early", 20*time.Millisecond))
	}()
	start := time.Now()
	it := q.Pop()
	if it.Value != "early" {
		t.Fatalf("expected early item first, got %v", it.Value)
	}
	if time.Since(start) > 200*time.Millisecond {
		t.Fatalf("pop took too long, push-wake likely broken")
	}
}
