package stopfile

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/vinayprograms/wrapup/logging"
	"github.com/vinayprograms/wrapup/shutdown"
)

func quietLogger() *logging.Logger {
	l := logging.New()
	l.SetOutput(io.Discard)
	return l
}

func TestWatchRequiresPath(t *testing.T) {
	if _, err := Watch(Config{}); !errors.Is(err, ErrNoPath) {
		t.Fatalf("expected ErrNoPath, got %v", err)
	}
}

func TestStopFileCreatedRequestsShutdown(t *testing.T) {
	state := shutdown.New()
	path := filepath.Join(t.TempDir(), "app.stop")

	w, err := Watch(Config{Path: path, State: state, PollInterval: 10 * time.Millisecond, Logger: quietLogger()})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	defer w.Close()

	if state.Requested() {
		t.Fatal("expected no request before the file exists")
	}

	if err := os.WriteFile(path, nil, 0o600); err != nil {
		t.Fatalf("write stop file: %v", err)
	}

	if !state.Wait(5 * time.Second) {
		t.Fatal("expected stop file to request shutdown")
	}
	select {
	case <-w.Fired():
	case <-time.After(5 * time.Second):
		t.Fatal("expected Fired to close")
	}
}

func TestExistingStopFileTriggersImmediately(t *testing.T) {
	state := shutdown.New()
	path := filepath.Join(t.TempDir(), "app.stop")
	if err := os.WriteFile(path, nil, 0o600); err != nil {
		t.Fatalf("write stop file: %v", err)
	}

	w, err := Watch(Config{Path: path, State: state, Remove: true, Logger: quietLogger()})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	defer w.Close()

	if !state.Requested() {
		t.Fatal("expected immediate request for an existing stop file")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected stop file removed, stat err = %v", err)
	}
}

func TestUnrelatedFileIgnored(t *testing.T) {
	state := shutdown.New()
	dir := t.TempDir()

	w, err := Watch(Config{Path: filepath.Join(dir, "app.stop"), State: state, Logger: quietLogger()})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if state.Wait(100 * time.Millisecond) {
		t.Fatal("expected unrelated file not to request shutdown")
	}
}

func TestPollingFallback(t *testing.T) {
	state := shutdown.New()
	// A missing parent directory cannot be watched, forcing the fallback.
	dir := filepath.Join(t.TempDir(), "later")
	path := filepath.Join(dir, "app.stop")

	w, err := Watch(Config{Path: path, State: state, PollInterval: 10 * time.Millisecond, Logger: quietLogger()})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	defer w.Close()

	if !w.Polling() {
		t.Fatal("expected polling when the directory does not exist")
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, nil, 0o600); err != nil {
		t.Fatalf("write stop file: %v", err)
	}
	if !state.Wait(5 * time.Second) {
		t.Fatal("expected polling watcher to request shutdown")
	}
}

func TestWatchErrorSwitchesToPolling(t *testing.T) {
	state := shutdown.New()
	path := filepath.Join(t.TempDir(), "app.stop")

	w, err := Watch(Config{Path: path, State: state, PollInterval: 10 * time.Millisecond, Logger: quietLogger()})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	defer w.Close()

	if w.Polling() || w.fsw == nil {
		t.Skip("fsnotify unavailable, watcher already polling")
	}

	// Deliver a watcher error the way the backend does on queue overflow.
	select {
	case w.fsw.Errors <- errors.New("event queue overflow"):
	case <-time.After(5 * time.Second):
		t.Fatal("watch loop did not take the error")
	}

	deadline := time.Now().Add(5 * time.Second)
	for !w.Polling() {
		if time.Now().After(deadline) {
			t.Fatal("expected the watcher to switch to polling")
		}
		time.Sleep(5 * time.Millisecond)
	}

	if err := os.WriteFile(path, nil, 0o600); err != nil {
		t.Fatalf("write stop file: %v", err)
	}
	if !state.Wait(5 * time.Second) {
		t.Fatal("expected polling watcher to request shutdown")
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	w, err := Watch(Config{Path: filepath.Join(t.TempDir(), "app.stop"), State: shutdown.New(), Logger: quietLogger()})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("first close: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}
