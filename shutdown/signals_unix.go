//go:build unix

package shutdown

import (
	"os"
	"strconv"
	"strings"
	"syscall"

	"golang.org/x/sys/unix"
)

// DefaultSignals returns SIGINT (Ctrl+C) and SIGTERM (what process managers
// and container runtimes send to request a stop).
func DefaultSignals() []os.Signal {
	return []os.Signal{unix.SIGINT, unix.SIGTERM}
}

// ParseSignal resolves a signal by name ("SIGTERM", "term") or number ("15").
func ParseSignal(name string) (os.Signal, error) {
	name = strings.TrimSpace(name)
	if n, err := strconv.Atoi(name); err == nil {
		sig := syscall.Signal(n)
		if err := checkSignal(sig); err != nil {
			return nil, err
		}
		return sig, nil
	}

	upper := strings.ToUpper(name)
	if !strings.HasPrefix(upper, "SIG") {
		upper = "SIG" + upper
	}
	sig := unix.SignalNum(upper)
	if sig == 0 {
		return nil, &SignalError{Name: name, Reason: "unknown signal name"}
	}
	if err := checkSignal(sig); err != nil {
		return nil, err
	}
	return sig, nil
}

func checkSignal(sig os.Signal) error {
	s, ok := sig.(syscall.Signal)
	if !ok {
		return unsupported(sig, "not an OS signal (%T)", sig)
	}
	switch {
	case s <= 0 || unix.SignalName(s) == "":
		return unsupported(sig, "unknown signal number %d", int(s))
	case s == unix.SIGKILL || s == unix.SIGSTOP:
		return unsupported(sig, "cannot be caught")
	}
	return nil
}

func signalName(sig os.Signal) string {
	if s, ok := sig.(syscall.Signal); ok {
		if name := unix.SignalName(s); name != "" {
			return name
		}
	}
	return sig.String()
}

func isInterrupt(sig os.Signal) bool {
	return sig == unix.SIGINT
}
