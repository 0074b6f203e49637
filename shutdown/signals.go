package shutdown

import (
	"fmt"
	"os"
	"os/signal"
	"sync"

	"go.uber.org/multierr"
)

// Catcher forwards OS signals to a State. It is the bridge between the
// runtime's signal delivery and Request.
type Catcher struct {
	state    *State
	signals  []os.Signal
	onSignal func(os.Signal)
	keep     bool

	// requested at install time, restored by Stop unless keep is set.
	wasRequested bool

	ch       chan os.Signal
	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once

	mu     sync.Mutex
	caught os.Signal
}

// CatchSignals installs a Catcher on the default State. With no arguments
// it catches DefaultSignals().
func CatchSignals(sigs ...os.Signal) (*Catcher, error) {
	return Default().CatchSignals(sigs...)
}

// CatchSignals installs a Catcher that requests shutdown of s. With no
// arguments it catches DefaultSignals().
func (s *State) CatchSignals(sigs ...os.Signal) (*Catcher, error) {
	return NewCatcher(Config{Signals: sigs, State: s})
}

// NewCatcher validates cfg and starts catching its signals.
//
// A nil Signals slice selects DefaultSignals(); a non-nil empty one is
// rejected with ErrNoSignals. Every signal is checked before anything is
// installed, and all unsupported ones are reported together.
func NewCatcher(cfg Config) (*Catcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	sigs := cfg.Signals
	if sigs == nil {
		sigs = DefaultSignals()
	}
	if len(sigs) == 0 {
		return nil, ErrNoSignals
	}

	var errs error
	for _, sig := range sigs {
		errs = multierr.Append(errs, checkSignal(sig))
	}
	if errs != nil {
		return nil, errs
	}

	state := cfg.State
	if state == nil {
		state = Default()
	}

	c := &Catcher{
		state:        state,
		signals:      dedupe(sigs),
		onSignal:     cfg.OnSignal,
		keep:         cfg.KeepRequest,
		wasRequested: state.Requested(),
		ch:           make(chan os.Signal, 1),
		stopCh:       make(chan struct{}),
		doneCh:       make(chan struct{}),
	}
	if c.onSignal == nil {
		c.onSignal = logSignal
	}

	signal.Notify(c.ch, c.signals...)
	log().SignalsCaught(os.Getpid(), signalNames(c.signals))

	go c.run()
	return c, nil
}

func (c *Catcher) run() {
	select {
	case sig := <-c.ch:
		c.state.signalsCaught.Add(1)
		c.state.Request()
		// Hand the signals back so a repeat gets the default action.
		signal.Stop(c.ch)

		c.mu.Lock()
		c.caught = sig
		c.mu.Unlock()

		// Closed before the callback so OnSignal may call Stop.
		close(c.doneCh)
		c.onSignal(sig)
	case <-c.stopCh:
		close(c.doneCh)
	}
}

// Stop uninstalls the catcher and, unless KeepRequest was set, restores the
// flag to the value it had when catching began. Stop is idempotent.
func (c *Catcher) Stop() {
	c.stopOnce.Do(func() {
		signal.Stop(c.ch)
		close(c.stopCh)
		<-c.doneCh

		if c.keep {
			return
		}
		if c.wasRequested {
			c.state.Request()
		} else {
			c.state.Reset()
		}
	})
}

// Done returns a channel closed once the catcher has handled a signal or
// been stopped. OnSignal may still be running when it closes.
func (c *Catcher) Done() <-chan struct{} {
	return c.doneCh
}

// Caught returns the signal that triggered the request, or nil.
func (c *Catcher) Caught() os.Signal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.caught
}

// Signals returns the signals this catcher listens for.
func (c *Catcher) Signals() []os.Signal {
	out := make([]os.Signal, len(c.signals))
	copy(out, c.signals)
	return out
}

// ParseSignals resolves signal names or numbers, e.g. "SIGTERM", "int", "15".
func ParseSignals(names ...string) ([]os.Signal, error) {
	if len(names) == 0 {
		return nil, ErrNoSignals
	}
	var (
		sigs []os.Signal
		errs error
	)
	for _, name := range names {
		sig, err := ParseSignal(name)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		sigs = append(sigs, sig)
	}
	if errs != nil {
		return nil, errs
	}
	return sigs, nil
}

func logSignal(sig os.Signal) {
	log().ShutdownSignal(signalName(sig), os.Getpid(), isInterrupt(sig))
}

func dedupe(sigs []os.Signal) []os.Signal {
	seen := make(map[os.Signal]bool, len(sigs))
	out := make([]os.Signal, 0, len(sigs))
	for _, sig := range sigs {
		if seen[sig] {
			continue
		}
		seen[sig] = true
		out = append(out, sig)
	}
	return out
}

func signalNames(sigs []os.Signal) []string {
	names := make([]string, len(sigs))
	for i, sig := range sigs {
		names[i] = signalName(sig)
	}
	return names
}

func unsupported(sig os.Signal, format string, args ...any) error {
	return &SignalError{Signal: sig, Reason: fmt.Sprintf(format, args...)}
}
