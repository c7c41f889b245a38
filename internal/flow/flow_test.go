package flow

import "testing"

func TestWrapRespectsMaxWidth(t *testing.T) {
	l := Raw("abcdefghij")
	wl := l.Wrap(4, false)
	for _, line := range wl.Lines {
		w := 0
		for _, sp := range line.Spans {
			w += len([]rune(sp.Text))
		}
		if w > 4 {
			t.Fatalf("line exceeds max width: %q (%d)", line.Content(), w)
		}
	}
	var joined string
	for _, line := range wl.Lines {
		joined += line.Content()
	}
	if joined != "abcdefghij" {
		t.Fatalf("wrap lost content: %q", joined)
	}
}

func TestFlowCapacityDropsOldest(t *testing.T) {
	f := NewFlow(2, 80, false)
	f.Push("one\n")
	f.Push("two\n")
	f.Push("three\n")
	raws := f.RawLines()
	if len(raws) != 2 {
		t.Fatalf("expected capacity-bounded buffer of 2, got %d", len(raws))
	}
	if raws[0].Content != "two\n" {
		t.Fatalf("expected oldest dropped, got %q first", raws[0].Content)
	}
}

func TestFlowMergesUnterminatedTail(t *testing.T) {
	f := NewFlow(10, 80, false)
	f.Push("partial")
	f.Push(" line\n")
	raws := f.RawLines()
	if len(raws) != 1 || raws[0].Content != "partial line\n" {
		t.Fatalf("expected merged single raw line, got %+v", raws)
	}
}

func TestReshapeIdempotent(t *testing.T) {
	f := NewFlow(100, 80, false)
	f.Push("the quick brown fox jumps\n")
	f.Reshape(10, false, 100)
	first := f.WrapLines()
	f.Reshape(10, false, 100)
	second := f.WrapLines()
	if len(first) != len(second) {
		t.Fatalf("reshape not idempotent: %d vs %d wraplines", len(first), len(second))
	}
	for i := range first {
		if first[i].Lines[0].Content() != second[i].Lines[0].Content() {
			t.Fatalf("reshape mismatch at %d", i)
		}
	}
}
