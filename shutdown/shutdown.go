package shutdown

import (
	"errors"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/vinayprograms/wrapup/logging"
)

// Common errors.
var (
	// ErrUnsupportedSignal indicates a signal that cannot be caught on this platform.
	ErrUnsupportedSignal = errors.New("unsupported signal")

	// ErrInvalidState indicates a Timer transition that its lifecycle does not allow.
	ErrInvalidState = errors.New("invalid timer state")

	// ErrNoSignals indicates CatchSignals was given an empty signal set.
	ErrNoSignals = errors.New("no signals selected")

	// ErrExpired indicates a Countdown has no time left.
	ErrExpired = errors.New("time limit has expired")

	// ErrInvalidConfig indicates invalid configuration.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Forever makes Requested and Wait block until a shutdown is requested.
const Forever time.Duration = -1

// SignalError reports a signal rejected at registration time.
type SignalError struct {
	// Signal is nil when a name could not be resolved.
	Signal os.Signal
	Name   string
	Reason string
}

func (e *SignalError) Error() string {
	name := e.Name
	if e.Signal != nil {
		name = signalName(e.Signal)
	}
	return fmt.Sprintf("%v: %s (%s)", ErrUnsupportedSignal, name, e.Reason)
}

// Unwrap returns ErrUnsupportedSignal.
func (e *SignalError) Unwrap() error {
	return ErrUnsupportedSignal
}

// StateError reports a Timer operation attempted from the wrong state.
type StateError struct {
	Op    string
	State TimerState
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%v: cannot %s a %s timer", ErrInvalidState, e.Op, e.State)
}

// Unwrap returns ErrInvalidState.
func (e *StateError) Unwrap() error {
	return ErrInvalidState
}

// Config configures a signal Catcher.
type Config struct {
	// Signals to catch. Empty means the platform default
	// (SIGINT and SIGTERM; os.Interrupt and SIGTERM on Windows).
	Signals []os.Signal

	// State receives the request. Default: Default().
	State *State

	// OnSignal is called after the request is raised for a caught signal.
	// Default: log a warning naming the signal and the process.
	OnSignal func(sig os.Signal)

	// KeepRequest stops Catcher.Stop from restoring the flag to the value
	// it had when catching began.
	KeepRequest bool
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	for _, sig := range c.Signals {
		if sig == nil {
			return fmt.Errorf("%w: nil signal", ErrInvalidConfig)
		}
	}
	return nil
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Signals: DefaultSignals(),
		State:   Default(),
	}
}

var logger atomic.Pointer[logging.Logger]

func init() {
	logger.Store(logging.New().WithComponent("shutdown"))
}

// SetLogger replaces the logger used by catchers and timers.
func SetLogger(l *logging.Logger) {
	if l == nil {
		return
	}
	logger.Store(l.WithComponent("shutdown"))
}

func log() *logging.Logger {
	return logger.Load()
}
