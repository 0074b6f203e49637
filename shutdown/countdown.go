package shutdown

import (
	"fmt"
	"math"
	"sync"
	"time"
)

// NoLimit is a Countdown limit that never runs out on its own.
const NoLimit time.Duration = math.MaxInt64

// Countdown tracks a time limit that counts as expired once shutdown is
// requested. Listeners can fold both checks into one:
//
//	budget := shutdown.NewCountdown(limit)
//	for !budget.Expired() {
//	    step()
//	}
//
// Before Stop, a Reset of the State un-expires a countdown whose time is
// not up. After Stop the result is frozen.
type Countdown struct {
	state *State

	mu        sync.Mutex
	start     time.Time
	limit     time.Duration
	stopped   bool
	elapsed   time.Duration
	requested bool
}

// NewCountdown starts a countdown of limit against the default State.
func NewCountdown(limit time.Duration) *Countdown {
	return Default().NewCountdown(limit)
}

// NewCountdown starts a countdown of limit against s.
func (s *State) NewCountdown(limit time.Duration) *Countdown {
	c := &Countdown{state: s}
	c.Restart(limit)
	return c
}

// Restart starts the countdown over with a new limit.
func (c *Countdown) Restart(limit time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.start = time.Now()
	c.limit = limit
	c.stopped = false
	c.elapsed = 0
	c.requested = false
}

// Stop freezes the countdown and returns the elapsed time. Later calls
// return the same value.
func (c *Countdown) Stop() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.stopped {
		c.stopped = true
		c.elapsed = time.Since(c.start)
		c.requested = c.state.Requested()
	}
	return c.elapsed
}

// Remaining returns the time left under the limit: zero once stopped or
// once shutdown is requested, negative when the limit has been overrun.
func (c *Countdown) Remaining() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining()
}

func (c *Countdown) remaining() time.Duration {
	if c.stopped || c.state.Requested() {
		return 0
	}
	if c.limit == NoLimit {
		return NoLimit
	}
	return c.limit - time.Since(c.start)
}

// Expired reports whether the limit ran out or shutdown was requested.
// After Stop it reports whether either had happened by the time Stop ran.
func (c *Countdown) Expired() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return c.requested || c.elapsed > c.limit
	}
	return c.remaining() <= 0
}

// Timer returns an unstarted Timer that fires when the remaining time runs
// out. It fails with ErrExpired if there is no time left.
func (c *Countdown) Timer() (*Timer, error) {
	rem := c.Remaining()
	if rem <= 0 {
		return nil, fmt.Errorf("%w: %v remaining", ErrExpired, rem)
	}
	return c.state.NewTimer(rem), nil
}
