package rules

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/thyth/mudcore/internal/delay"
)

// Timer is a named, grouped, periodic (or one-shot) rule that invokes a
// script callback after a tick interval elapses (spec §3, §4.6). Grounded on
// original_source/src/runtime/timer.rs's TimerModel/Timer/Timers.
//
// Disabling a timer clears its generation so that any pop already sitting in
// the delay queue is recognized as stale and dropped; re-enabling assigns a
// fresh generation and reschedules. This is the same technique the original
// uses a random u128 for, done here with github.com/google/uuid instead.
type Timer struct {
	Name       string
	Group      string
	TickTime   time.Duration
	Enabled    bool
	OneShot    bool
	Callback   string
	generation uuid.UUID
	hasGen     bool
}

// NewTimer returns a Timer with no generation assigned; Timers.Insert starts
// it if Enabled is true.
func NewTimer(name, group string, tickTime time.Duration, enabled, oneShot bool, callback string) Timer {
	return Timer{Name: name, Group: group, TickTime: tickTime, Enabled: enabled, OneShot: oneShot, Callback: callback}
}

func (t Timer) ModelName() string       { return t.Name }
func (t Timer) ModelGroup() string      { return t.Group }
func (t Timer) ModelEnabled() bool      { return t.Enabled }
func (t *Timer) SetModelEnabled(e bool) { t.Enabled = e }

// schedTick is the value pushed into the delay queue: a name/generation pair
// used to validate a popped tick against the current model state before
// firing (spec §4.6: "a disabled-then-re-enabled timer must not fire on
// behalf of its earlier generation").
type schedTick struct {
	name       string
	generation uuid.UUID
}

// Timers is the ordered name-index of Timer entries paired with the delay
// queue driving their ticks. Unlike the other rule stores, Timers is
// accessed from two goroutines (spec §5 point 7: a dedicated timer thread
// blocks on the delay queue while the engine thread creates/deletes/enables
// timers), so every access is guarded by mu.
type Timers struct {
	mu    sync.Mutex
	store *Store[*Timer]
	queue *delay.Queue
}

// NewTimers returns an empty Timers store with its own delay queue.
func NewTimers() *Timers {
	return &Timers{store: NewStore[*Timer](), queue: delay.New()}
}

// Insert adds t to the name-index, starting (scheduling) it immediately if
// enabled (spec §4.6, grounded on timer.rs's Timers::insert).
func (ts *Timers) Insert(t Timer) error {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	if !t.Enabled {
		t.hasGen = false
		return ts.store.Add(&t)
	}
	return ts.start(t)
}

func (ts *Timers) start(t Timer) error {
	t.generation = uuid.New()
	t.hasGen = true
	if err := ts.store.Add(&t); err != nil {
		return err
	}
	ts.queue.Push(delay.Item{
		Value: schedTick{name: t.Name, generation: t.generation},
		Until: time.Now().Add(t.TickTime),
	})
	return nil
}

// Remove drops the named timer from the index; any tick already queued for
// it is discarded when popped, since the model no longer exists.
func (ts *Timers) Remove(name string) bool {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	_, ok := ts.store.Remove(name)
	return ok
}

// Enable toggles a timer on or off (spec §4.6, grounded on timer.rs's
// Timers::enable). Turning an enabled timer off clears its generation so a
// queued tick is recognized as stale. Turning a disabled timer on assigns a
// fresh generation and reschedules from now.
func (ts *Timers) Enable(name string, enabled bool) bool {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	t, ok := ts.store.Get(name)
	if !ok {
		return false
	}
	if t.Enabled == enabled {
		return true
	}
	if t.Enabled && !enabled {
		t.Enabled = false
		t.hasGen = false
		return true
	}
	cur := *t
	cur.Enabled = true
	_, _ = ts.store.Remove(name)
	_ = ts.start(cur)
	return true
}

func (ts *Timers) Get(name string) (*Timer, bool) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.store.Get(name)
}

func (ts *Timers) All() []*Timer {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.store.All()
}

// OnSchedule blocks until the next tick is due, validates it against the
// current model state, and returns the firing Timer. Stale ticks (from a
// removed timer, a disabled timer, or an earlier generation superseded by
// re-enabling) are silently discarded and the wait resumes, mirroring
// timer.rs's on_schedule loop. A one-shot timer is disabled, not
// rescheduled, after it fires; a repeating timer is rescheduled for another
// tick_time from now.
func (ts *Timers) OnSchedule() (*Timer, bool) {
	for {
		// Pop blocks, potentially for a long time: it must never run with
		// ts.mu held, or the engine thread's CreateTimer/DeleteTimer calls
		// would stall until the next tick (spec §5 point 7 runs this on its
		// own dedicated thread precisely so it doesn't block the engine).
		item := ts.queue.Pop()
		tick, ok := item.Value.(schedTick)
		if !ok {
			continue
		}
		fired, ok := ts.validateAndReschedule(tick)
		if !ok {
			continue
		}
		return fired, true
	}
}

// validateAndReschedule checks a popped tick against the current model
// state and, for a repeating timer, pushes its next tick — all under ts.mu
// so it cannot race the engine thread's store mutations.
func (ts *Timers) validateAndReschedule(tick schedTick) (*Timer, bool) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	t, ok := ts.store.Get(tick.name)
	if !ok || !t.Enabled || !t.hasGen || t.generation != tick.generation {
		return nil, false
	}
	if t.OneShot {
		t.Enabled = false
		t.hasGen = false
	} else {
		ts.queue.Push(delay.Item{
			Value: schedTick{name: t.Name, generation: t.generation},
			Until: time.Now().Add(t.TickTime),
		})
	}
	return t, true
}
