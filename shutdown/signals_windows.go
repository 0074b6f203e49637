//go:build windows

package shutdown

import (
	"os"
	"strings"
	"syscall"
)

// DefaultSignals returns os.Interrupt and SIGTERM. Windows has no POSIX
// signals; the Go runtime maps Ctrl+C and Ctrl+Break to os.Interrupt and
// console close, logoff and shutdown events to SIGTERM.
func DefaultSignals() []os.Signal {
	return []os.Signal{os.Interrupt, syscall.SIGTERM}
}

var windowsSignals = map[string]os.Signal{
	"SIGINT":   os.Interrupt,
	"SIGBREAK": os.Interrupt,
	"SIGTERM":  syscall.SIGTERM,
	"2":        os.Interrupt,
	"15":       syscall.SIGTERM,
}

// ParseSignal resolves "SIGINT", "SIGBREAK" or "SIGTERM", with or without
// the SIG prefix, or their numbers.
func ParseSignal(name string) (os.Signal, error) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	if sig, ok := windowsSignals[upper]; ok {
		return sig, nil
	}
	if sig, ok := windowsSignals["SIG"+upper]; ok {
		return sig, nil
	}
	return nil, &SignalError{Name: name, Reason: "not deliverable on windows"}
}

func checkSignal(sig os.Signal) error {
	if sig == os.Interrupt || sig == syscall.SIGTERM {
		return nil
	}
	return unsupported(sig, "not deliverable on windows")
}

func signalName(sig os.Signal) string {
	switch sig {
	case os.Interrupt:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	}
	return sig.String()
}

func isInterrupt(sig os.Signal) bool {
	return sig == os.Interrupt
}
