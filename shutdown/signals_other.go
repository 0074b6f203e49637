//go:build !unix && !windows

package shutdown

import (
	"os"
	"runtime"
)

// DefaultSignals returns os.Interrupt. Platforms such as js, wasip1 and
// plan9 have no signals the runtime forwards, so catching it fails with
// ErrUnsupportedSignal; use a Timer or the stop file instead.
func DefaultSignals() []os.Signal {
	return []os.Signal{os.Interrupt}
}

// ParseSignal always fails on this platform.
func ParseSignal(name string) (os.Signal, error) {
	return nil, &SignalError{Name: name, Reason: "signals not supported on " + runtime.GOOS}
}

func checkSignal(sig os.Signal) error {
	return unsupported(sig, "signals not supported on %s", runtime.GOOS)
}

func signalName(sig os.Signal) string {
	if sig == os.Interrupt {
		return "SIGINT"
	}
	return sig.String()
}

func isInterrupt(sig os.Signal) bool {
	return sig == os.Interrupt
}
