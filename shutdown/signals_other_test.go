//go:build !unix && !windows

package shutdown

import (
	"errors"
	"testing"
)

// TestCatchSignalsUnsupportedPlatform tests that catching fails cleanly
// where the runtime delivers no signals, leaving the State usable.
func TestCatchSignalsUnsupportedPlatform(t *testing.T) {
	s := New()
	if _, err := s.CatchSignals(); !errors.Is(err, ErrUnsupportedSignal) {
		t.Fatalf("expected ErrUnsupportedSignal, got %v", err)
	}
	if _, err := ParseSignal("SIGTERM"); !errors.Is(err, ErrUnsupportedSignal) {
		t.Fatalf("expected ErrUnsupportedSignal from ParseSignal, got %v", err)
	}
	s.Request()
	if !s.Requested() {
		t.Fatal("expected Request to work without signal support")
	}
}
