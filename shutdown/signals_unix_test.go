//go:build unix

package shutdown

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"testing"
	"time"

	"golang.org/x/sys/unix"
)

// TestCatchSignalsRejectsUncatchable tests SIGKILL, SIGSTOP and numbers
// outside the platform's signal table.
func TestCatchSignalsRejectsUncatchable(t *testing.T) {
	for _, sig := range []os.Signal{unix.SIGKILL, unix.SIGSTOP, syscall.Signal(0), syscall.Signal(1000)} {
		_, err := New().CatchSignals(sig)
		if !errors.Is(err, ErrUnsupportedSignal) {
			t.Errorf("%v: expected ErrUnsupportedSignal, got %v", sig, err)
		}
	}
}

// TestCatchSIGTERM delivers a real SIGTERM to the test process.
func TestCatchSIGTERM(t *testing.T) {
	s := New()
	got := make(chan os.Signal, 1)
	c, err := NewCatcher(Config{
		Signals:     []os.Signal{unix.SIGTERM},
		State:       s,
		KeepRequest: true,
		OnSignal:    func(sig os.Signal) { got <- sig },
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	defer c.Stop()

	if err := unix.Kill(os.Getpid(), unix.SIGTERM); err != nil {
		t.Fatalf("kill: %v", err)
	}

	if !s.Wait(5 * time.Second) {
		t.Fatal("expected SIGTERM to request shutdown")
	}
	select {
	case <-c.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("catcher did not finish handling the signal")
	}
	select {
	case sig := <-got:
		if sig != unix.SIGTERM {
			t.Fatalf("expected OnSignal with SIGTERM, got %v", sig)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("OnSignal was not called")
	}
	if c.Caught() != unix.SIGTERM {
		t.Fatalf("expected Caught() SIGTERM, got %v", c.Caught())
	}
	if s.Stats().SignalsCaught != 1 {
		t.Fatalf("expected one caught signal, got %d", s.Stats().SignalsCaught)
	}
}

// TestParseSignal tests name, short name and number forms.
func TestParseSignal(t *testing.T) {
	tests := []struct {
		in   string
		want os.Signal
	}{
		{"SIGTERM", unix.SIGTERM},
		{"term", unix.SIGTERM},
		{"Int", unix.SIGINT},
		{"15", unix.SIGTERM},
		{" SIGHUP ", unix.SIGHUP},
	}
	for _, tt := range tests {
		got, err := ParseSignal(tt.in)
		if err != nil {
			t.Errorf("ParseSignal(%q): unexpected error %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseSignal(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	for _, bad := range []string{"SIGNOPE", "KILL", "9", "0"} {
		if _, err := ParseSignal(bad); !errors.Is(err, ErrUnsupportedSignal) {
			t.Errorf("ParseSignal(%q): expected ErrUnsupportedSignal, got %v", bad, err)
		}
	}
}

// TestSignalErrorMessage tests the rendered error text.
func TestSignalErrorMessage(t *testing.T) {
	err := &SignalError{Signal: unix.SIGKILL, Reason: "cannot be caught"}
	want := "unsupported signal: SIGKILL (cannot be caught)"
	if err.Error() != want {
		t.Fatalf("got %q, want %q", err.Error(), want)
	}
}

// TestOnSignalCanStopCatcher tests that an OnSignal callback may call Stop
// on its own catcher without blocking.
func TestOnSignalCanStopCatcher(t *testing.T) {
	s := New()
	stopped := make(chan struct{})
	var c *Catcher
	ready := make(chan struct{})
	c, err := NewCatcher(Config{
		Signals: []os.Signal{unix.SIGUSR1},
		State:   s,
		OnSignal: func(os.Signal) {
			<-ready
			c.Stop()
			close(stopped)
		},
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	close(ready)

	if err := unix.Kill(os.Getpid(), unix.SIGUSR1); err != nil {
		t.Fatalf("kill: %v", err)
	}

	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop called from OnSignal did not return")
	}
	select {
	case <-c.Done():
	default:
		t.Fatal("expected Done closed")
	}
	if c.Caught() != unix.SIGUSR1 {
		t.Fatalf("expected Caught() SIGUSR1, got %v", c.Caught())
	}
	// Stop restores the flag that was lowered at install time.
	if s.Requested() {
		t.Fatal("expected Stop to restore the unrequested flag")
	}
}

const repeatSignalEnv = "WRAPUP_REPEAT_SIGNAL_CHILD"

// TestRepeatedSignalTerminates tests that the second SIGTERM after a
// handled one gets the default action and kills the process. It runs the
// test binary again as a child so the signal cannot take down the suite.
func TestRepeatedSignalTerminates(t *testing.T) {
	if os.Getenv(repeatSignalEnv) == "1" {
		repeatSignalChild()
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=^TestRepeatedSignalTerminates$")
	cmd.Env = append(os.Environ(), repeatSignalEnv+"=1")
	out, err := cmd.CombinedOutput()

	if !strings.Contains(string(out), "first signal handled") {
		t.Fatalf("child did not survive the first signal: %s", out)
	}
	if strings.Contains(string(out), "second signal ignored") {
		t.Fatalf("child survived the second signal: %s", out)
	}
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected the child to be killed, got %v: %s", err, out)
	}
	ws, ok := exitErr.Sys().(syscall.WaitStatus)
	if !ok {
		t.Fatalf("unexpected wait status %T", exitErr.Sys())
	}
	if !ws.Signaled() || ws.Signal() != syscall.SIGTERM {
		t.Fatalf("expected death by SIGTERM, got %v", ws)
	}
}

func repeatSignalChild() {
	s := New()
	c, err := NewCatcher(Config{
		Signals:     []os.Signal{unix.SIGTERM},
		State:       s,
		KeepRequest: true,
		OnSignal:    func(os.Signal) {},
	})
	if err != nil {
		fmt.Println("catch:", err)
		os.Exit(2)
	}

	unix.Kill(os.Getpid(), unix.SIGTERM)
	if !s.Wait(5 * time.Second) {
		fmt.Println("first signal not caught")
		os.Exit(2)
	}
	<-c.Done()
	fmt.Println("first signal handled")

	unix.Kill(os.Getpid(), unix.SIGTERM)
	time.Sleep(5 * time.Second)
	fmt.Println("second signal ignored")
	os.Exit(0)
}
