// Package stopfile requests shutdown when a sentinel file appears, so an
// operator can stop a process with `touch /run/myapp.stop` where sending a
// signal is awkward (containers without a shell, other users' processes).
//
// The parent directory is watched with fsnotify; when that is unavailable
// the watcher falls back to polling the path.
package stopfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/vinayprograms/wrapup/logging"
	"github.com/vinayprograms/wrapup/shutdown"
)

// ErrNoPath indicates a Config without a path.
var ErrNoPath = errors.New("stop file path is empty")

// Config configures a Watcher.
type Config struct {
	// Path of the stop file.
	Path string

	// State receives the request. Default: shutdown.Default().
	State *shutdown.State

	// PollInterval is used when fsnotify is unavailable. Default: 2s.
	PollInterval time.Duration

	// Remove deletes the stop file after it triggered, so the next run
	// does not stop immediately.
	Remove bool

	// Logger defaults to a stderr logger.
	Logger *logging.Logger
}

// Watcher raises a shutdown request once the stop file exists.
type Watcher struct {
	path         string
	state        *shutdown.State
	pollInterval time.Duration
	remove       bool
	log          *logging.Logger

	fsw     *fsnotify.Watcher
	polling atomic.Bool
	done    chan struct{}
	fired   chan struct{}
	once    sync.Once
	fire    sync.Once
}

// Watch starts watching cfg.Path. If the file already exists the request is
// raised immediately.
func Watch(cfg Config) (*Watcher, error) {
	if cfg.Path == "" {
		return nil, ErrNoPath
	}
	path, err := filepath.Abs(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("resolve stop file: %w", err)
	}

	w := &Watcher{
		path:         path,
		state:        cfg.State,
		pollInterval: cfg.PollInterval,
		remove:       cfg.Remove,
		log:          cfg.Logger,
		done:         make(chan struct{}),
		fired:        make(chan struct{}),
	}
	if w.state == nil {
		w.state = shutdown.Default()
	}
	if w.pollInterval <= 0 {
		w.pollInterval = 2 * time.Second
	}
	if w.log == nil {
		w.log = logging.New()
	}
	w.log = w.log.WithComponent("stopfile")

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		w.log.Info("fsnotify unavailable, falling back to polling", map[string]interface{}{"error": err})
		w.startPolling()
		return w, nil
	}
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		w.log.Info("cannot watch directory, falling back to polling", map[string]interface{}{
			"path":  filepath.Dir(path),
			"error": err,
		})
		fsw.Close()
		w.startPolling()
		return w, nil
	}
	w.fsw = fsw

	// Checked after Add so a file created in between is not missed.
	if exists(path) {
		w.trigger()
	}
	go w.watch()
	return w, nil
}

func (w *Watcher) startPolling() {
	w.polling.Store(true)
	if exists(w.path) {
		w.trigger()
	}
	go w.poll()
}

func (w *Watcher) watch() {
	for {
		select {
		case <-w.done:
			return
		case <-w.fired:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) {
				w.trigger()
				return
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Info("fsnotify error, switching to polling", map[string]interface{}{"error": err})
			w.startPolling()
			return
		}
	}
}

func (w *Watcher) poll() {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return
		case <-w.fired:
			return
		case <-ticker.C:
			if exists(w.path) {
				w.trigger()
				return
			}
		}
	}
}

func (w *Watcher) trigger() {
	w.fire.Do(func() {
		w.state.Request()
		w.log.StopFile(w.path)
		if w.remove {
			if err := os.Remove(w.path); err != nil && !os.IsNotExist(err) {
				w.log.Warn("cannot remove stop file", map[string]interface{}{
					"path":  w.path,
					"error": err,
				})
			}
		}
		close(w.fired)
	})
}

// Fired returns a channel closed once the stop file triggered a request.
func (w *Watcher) Fired() <-chan struct{} {
	return w.fired
}

// Polling reports whether the watcher fell back to polling.
func (w *Watcher) Polling() bool {
	return w.polling.Load()
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// Close stops the watcher and releases resources.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		if w.fsw != nil {
			if closeErr := w.fsw.Close(); closeErr != nil {
				err = fmt.Errorf("closing fsnotify watcher: %w", closeErr)
			}
		}
	})
	return err
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
