// Package delay implements the deadline-ordered delay queue (C6): a min-heap
// of payloads blocking pop until the earliest deadline has passed.
//
// Grounded on original_source/src/runtime/delay_queue.rs's Condvar-guarded
// BinaryHeap; container/heap is the natural Go min-heap (the Rust source
// inverts Ord to make its max-heap behave as a min-heap, a workaround Go's
// heap.Interface has no need for).
package delay

import (
	"container/heap"
	"sync"
	"time"
)

// Item is one scheduled payload.
type Item struct {
	Value any
	Until time.Time
}

// Delay bundles a payload with an absolute deadline.
func Delay(value any, d time.Duration) Item {
	return Item{Value: value, Until: time.Now().Add(d)}
}

// Until bundles a payload with an explicit deadline.
func Until(value any, when time.Time) Item {
	return Item{Value: value, Until: when}
}

type itemHeap []Item

func (h itemHeap) Len() int            { return len(h) }
func (h itemHeap) Less(i, j int) bool  { return h[i].Until.Before(h[j].Until) }
func (h itemHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *itemHeap) Push(x any)         { *h = append(*h, x.(Item)) }
func (h *itemHeap) Pop() any {
	old := *h
	n := len(old)
	it := old[n-1]
	*h = old[:n-1]
	return it
}

// Queue is a thread-safe delay queue: push from any goroutine, pop blocks
// the caller (typically one dedicated timer-scheduler goroutine) until the
// head's deadline passes.
type Queue struct {
	mu   sync.Mutex
	cond *sync.Cond
	h    itemHeap
}

// New returns an empty Queue.
func New() *Queue {
	q := &Queue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Push inserts an item, waking the pop waiter if this item becomes the new
// earliest head.
func (q *Queue) Push(it Item) {
	q.mu.Lock()
	wasEmpty := q.h.Len() == 0
	wasEarlier := !wasEmpty && it.Until.Before(q.h[0].Until)
	heap.Push(&q.h, it)
	q.mu.Unlock()
	if wasEmpty || wasEarlier {
		q.cond.Broadcast()
	}
}

// Pop blocks until the head's deadline has passed, then pops and returns it.
// Waking may happen earlier when Push installs a new, earlier head.
func (q *Queue) Pop() Item {
	q.mu.Lock()
	defer q.mu.Unlock()
	for {
		if q.h.Len() > 0 {
			now := time.Now()
			head := q.h[0]
			if !now.Before(head.Until) {
				return heap.Pop(&q.h).(Item)
			}
			q.waitUntil(head.Until)
			continue
		}
		q.cond.Wait()
	}
}

// PopUntil blocks as Pop does, but returns (Item{}, false) if deadline
// passes first without the head becoming ready.
func (q *Queue) PopUntil(deadline time.Time) (Item, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for {
		now := time.Now()
		if q.h.Len() > 0 {
			head := q.h[0]
			if !now.Before(head.Until) {
				return heap.Pop(&q.h).(Item), true
			}
			if !now.Before(deadline) {
				return Item{}, false
			}
			wake := head.Until
			if deadline.Before(wake) {
				wake = deadline
			}
			q.waitUntil(wake)
			continue
		}
		if !now.Before(deadline) {
			return Item{}, false
		}
		q.waitUntil(deadline)
	}
}

// waitUntil sleeps on the condvar up to 'when', using a timer to force a
// wake even without a Broadcast. Must be called with q.mu held; re-acquires
// it before returning.
func (q *Queue) waitUntil(when time.Time) {
	d := time.Until(when)
	if d <= 0 {
		return
	}
	timer := time.AfterFunc(d, func() {
		q.cond.Broadcast()
	})
	q.cond.Wait()
	timer.Stop()
}

// Len reports the number of scheduled items (diagnostic use only).
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.h.Len()
}
