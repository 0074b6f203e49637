package shutdown

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// TimerState is the lifecycle of a Timer.
type TimerState int32

const (
	TimerUnstarted TimerState = iota
	TimerPending
	TimerFired
	TimerCancelled
)

func (s TimerState) String() string {
	switch s {
	case TimerUnstarted:
		return "unstarted"
	case TimerPending:
		return "pending"
	case TimerFired:
		return "fired"
	case TimerCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transitions are possible.
func (s TimerState) Terminal() bool {
	return s == TimerFired || s == TimerCancelled
}

// Timer requests shutdown once its interval has elapsed, unless it is
// cancelled first. A Timer is single-use.
//
// Firing and cancelling race on one compare-and-swap of the state word, so
// exactly one of them happens no matter how close Cancel is to the deadline.
type Timer struct {
	id       string
	interval time.Duration
	target   *State

	state atomic.Int32

	mu       sync.Mutex
	t        *time.Timer
	deadline time.Time
	done     chan struct{}
}

// NewTimer creates an unstarted Timer on the default State.
func NewTimer(interval time.Duration) *Timer {
	return Default().NewTimer(interval)
}

// NewTimer creates an unstarted Timer that requests shutdown of s.
func (s *State) NewTimer(interval time.Duration) *Timer {
	return &Timer{
		id:       uuid.NewString(),
		interval: interval,
		target:   s,
		done:     make(chan struct{}),
	}
}

// Start arms the timer for now + interval. It fails with ErrInvalidState
// unless the timer is fresh.
func (t *Timer) Start() error {
	if !t.state.CompareAndSwap(int32(TimerUnstarted), int32(TimerPending)) {
		return &StateError{Op: "start", State: t.State()}
	}

	t.mu.Lock()
	t.deadline = time.Now().Add(t.interval)
	t.t = time.AfterFunc(t.interval, t.fire)
	t.mu.Unlock()

	log().TimerArmed(t.id, t.interval)
	return nil
}

func (t *Timer) fire() {
	if !t.state.CompareAndSwap(int32(TimerPending), int32(TimerFired)) {
		return
	}
	t.target.timersFired.Add(1)
	t.target.Request()
	close(t.done)
	log().TimerFired(t.id, t.interval)
}

// Cancel stops a pending timer so it never requests shutdown. Cancelling
// an unstarted timer retires it. After fire, or a previous Cancel, it is a
// no-op.
func (t *Timer) Cancel() {
	for {
		cur := TimerState(t.state.Load())
		if cur.Terminal() {
			return
		}
		if t.state.CompareAndSwap(int32(cur), int32(TimerCancelled)) {
			break
		}
	}

	t.mu.Lock()
	if t.t != nil {
		t.t.Stop()
	}
	t.mu.Unlock()

	t.target.timersCancelled.Add(1)
	close(t.done)
	log().TimerCancelled(t.id)
}

// State returns the timer's lifecycle state.
func (t *Timer) State() TimerState {
	return TimerState(t.state.Load())
}

// Done returns a channel closed when the timer fires or is cancelled.
func (t *Timer) Done() <-chan struct{} {
	return t.done
}

// Interval returns the configured delay.
func (t *Timer) Interval() time.Duration {
	return t.interval
}

// Deadline returns when a started timer is due; zero before Start.
func (t *Timer) Deadline() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.deadline
}

// ID identifies the timer in logs.
func (t *Timer) ID() string {
	return t.id
}
