package shutdown

import (
	"context"
	"sync/atomic"
	"time"
)

// epoch is one cycle of the flag. done is closed exactly once, by the
// goroutine whose CompareAndSwap on fired succeeds.
type epoch struct {
	seq   uint64
	fired atomic.Bool
	done  chan struct{}
}

func newEpoch(seq uint64) *epoch {
	return &epoch{seq: seq, done: make(chan struct{})}
}

// State is a shutdown-request flag with broadcast wake-up.
//
// The zero value is not usable; construct with New.
type State struct {
	cur atomic.Pointer[epoch]

	requests        atomic.Uint64
	signalsCaught   atomic.Uint64
	timersFired     atomic.Uint64
	timersCancelled atomic.Uint64
}

// Stats are cumulative counters for a State, across epochs.
type Stats struct {
	Epoch           uint64
	Requested       bool
	Requests        uint64
	SignalsCaught   uint64
	TimersFired     uint64
	TimersCancelled uint64
}

// New creates an independent State, not requested.
func New() *State {
	s := &State{}
	s.cur.Store(newEpoch(0))
	return s
}

var defaultState = New()

// Default returns the process-wide State used by the package-level functions.
func Default() *State {
	return defaultState
}

// Request asks every listener of s to shut down. Raising an already raised
// flag is a no-op. All goroutines blocked in Wait are released.
//
// Request never blocks, allocates or locks, so it is safe to call from the
// goroutine that services signal delivery.
func (s *State) Request() {
	s.requests.Add(1)
	e := s.cur.Load()
	if e.fired.CompareAndSwap(false, true) {
		close(e.done)
	}
}

// Requested reports whether shutdown has been requested.
//
// With no timeout, or a zero one, it returns immediately. With a positive
// timeout it blocks until a request arrives or the timeout elapses. Forever
// blocks until a request arrives.
func (s *State) Requested(timeout ...time.Duration) bool {
	if len(timeout) == 0 || timeout[0] == 0 {
		return s.cur.Load().fired.Load()
	}
	return s.Wait(timeout[0])
}

// Wait blocks until shutdown is requested or timeout elapses, and reports
// whether it was requested. A zero timeout polls; Forever (or any negative
// value) waits without limit.
func (s *State) Wait(timeout time.Duration) bool {
	e := s.cur.Load()
	if e.fired.Load() {
		return true
	}
	switch {
	case timeout == 0:
		return false
	case timeout < 0:
		<-e.done
		return true
	}

	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case <-e.done:
		return true
	case <-t.C:
		return s.cur.Load().fired.Load()
	}
}

// WaitContext blocks until shutdown is requested or ctx is done. It returns
// true if shutdown was requested.
func (s *State) WaitContext(ctx context.Context) bool {
	e := s.cur.Load()
	select {
	case <-e.done:
		return true
	case <-ctx.Done():
		return s.cur.Load().fired.Load()
	}
}

// Done returns a channel closed when shutdown is requested in the current
// epoch. A channel obtained before Reset belongs to the old epoch.
func (s *State) Done() <-chan struct{} {
	return s.cur.Load().done
}

// Context returns a copy of parent that is cancelled when shutdown is
// requested. Call the returned cancel function to release resources.
func (s *State) Context(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	done := s.Done()
	go func() {
		select {
		case <-done:
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

// Reset clears the flag and starts a new epoch. It wakes nobody: waiters
// blocked before the reset keep waiting for their timeout or a later
// Request. Resetting an unrequested State is a no-op.
func (s *State) Reset() {
	for {
		e := s.cur.Load()
		if !e.fired.Load() {
			return
		}
		if s.cur.CompareAndSwap(e, newEpoch(e.seq+1)) {
			log().EpochReset(e.seq + 1)
			return
		}
	}
}

// Epoch returns the number of resets that started a new cycle.
func (s *State) Epoch() uint64 {
	return s.cur.Load().seq
}

// Stats returns a snapshot of the counters.
func (s *State) Stats() Stats {
	e := s.cur.Load()
	return Stats{
		Epoch:           e.seq,
		Requested:       e.fired.Load(),
		Requests:        s.requests.Load(),
		SignalsCaught:   s.signalsCaught.Load(),
		TimersFired:     s.timersFired.Load(),
		TimersCancelled: s.timersCancelled.Load(),
	}
}

// Request asks every listener in this process to shut down.
func Request() {
	defaultState.Request()
}

// Requested reports whether shutdown has been requested in this process,
// waiting up to the optional timeout for it.
func Requested(timeout ...time.Duration) bool {
	return defaultState.Requested(timeout...)
}

// Wait blocks until shutdown is requested in this process or timeout elapses.
func Wait(timeout time.Duration) bool {
	return defaultState.Wait(timeout)
}

// Reset stops requesting that listeners in this process shut down.
func Reset() {
	defaultState.Reset()
}
