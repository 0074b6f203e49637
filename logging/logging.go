// Package logging provides leveled key=value console and file logging for
// shutdown events. Lines look like:
//
//	WARN  2026-01-02T15:04:05.000Z [shutdown] shutdown_signal pid=42 signal=SIGINT
package logging

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// Level represents log severity.
type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// levelPriority maps levels to numeric priority for filtering.
var levelPriority = map[Level]int{
	LevelDebug: 0,
	LevelInfo:  1,
	LevelWarn:  2,
	LevelError: 3,
}

// ParseLevel converts a level name to a Level, case-insensitively.
// Unknown names map to LevelInfo.
func ParseLevel(s string) Level {
	l := Level(strings.ToUpper(strings.TrimSpace(s)))
	if l == "WARNING" {
		return LevelWarn
	}
	if _, ok := levelPriority[l]; ok {
		return l
	}
	return LevelInfo
}

// sink is shared by a logger and everything derived from it.
type sink struct {
	mu       sync.Mutex
	output   io.Writer
	minLevel Level
}

// Logger writes leveled lines to stderr, or to a writer set with SetOutput.
type Logger struct {
	sink      *sink
	component string
}

// New creates a new Logger at INFO level writing to stderr.
func New() *Logger {
	return &Logger{
		sink: &sink{output: os.Stderr, minLevel: LevelInfo},
	}
}

// WithComponent returns a logger sharing l's output and level that tags
// lines with the given component name.
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{sink: l.sink, component: component}
}

// SetLevel sets the minimum log level.
func (l *Logger) SetLevel(level Level) {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	l.sink.minLevel = level
}

// SetOutput sets the output writer (default: stderr).
func (l *Logger) SetOutput(w io.Writer) {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	l.sink.output = w
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, fields ...map[string]interface{}) {
	l.log(LevelDebug, msg, fields...)
}

// Info logs an info message.
func (l *Logger) Info(msg string, fields ...map[string]interface{}) {
	l.log(LevelInfo, msg, fields...)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, fields ...map[string]interface{}) {
	l.log(LevelWarn, msg, fields...)
}

// Error logs an error message.
func (l *Logger) Error(msg string, fields ...map[string]interface{}) {
	l.log(LevelError, msg, fields...)
}

// formatFields formats fields as key=value pairs in key order.
func formatFields(fields map[string]interface{}) string {
	if len(fields) == 0 {
		return ""
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, fields[k])
	}
	return " " + strings.Join(parts, " ")
}

// log writes: LEVEL TIMESTAMP [component] message key=value ...
func (l *Logger) log(level Level, msg string, fields ...map[string]interface{}) {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()

	if levelPriority[level] < levelPriority[l.sink.minLevel] {
		return
	}

	timestamp := time.Now().UTC().Format("2006-01-02T15:04:05.000Z")

	var fieldStr string
	if len(fields) > 0 && fields[0] != nil {
		fieldStr = formatFields(fields[0])
	}

	var line string
	if l.component != "" {
		line = fmt.Sprintf("%-5s %s [%s] %s%s\n", level, timestamp, l.component, msg, fieldStr)
	} else {
		line = fmt.Sprintf("%-5s %s %s%s\n", level, timestamp, msg, fieldStr)
	}

	l.sink.output.Write([]byte(line))
}

// --- Shutdown event methods ---

// SignalsCaught logs that the process now listens for shutdown signals.
func (l *Logger) SignalsCaught(pid int, signals []string) {
	l.Info("listening_for_signals", map[string]interface{}{
		"pid":     pid,
		"signals": strings.Join(signals, ","),
	})
}

// ShutdownSignal logs a caught signal that requested shutdown. For an
// interrupt it also tells the operator how to force quit.
func (l *Logger) ShutdownSignal(signal string, pid int, interrupt bool) {
	fields := map[string]interface{}{
		"signal": signal,
		"pid":    pid,
	}
	msg := "Commencing shutdown."
	if interrupt {
		msg += " Press Ctrl+C again to exit immediately."
	}
	l.Warn(msg, fields)
}

// TimerArmed logs a started shutdown timer.
func (l *Logger) TimerArmed(id string, interval time.Duration) {
	l.Debug("timer_armed", map[string]interface{}{
		"timer":    id,
		"interval": interval.String(),
	})
}

// TimerFired logs a timer that requested shutdown.
func (l *Logger) TimerFired(id string, interval time.Duration) {
	l.Info("timer_fired", map[string]interface{}{
		"timer":    id,
		"interval": interval.String(),
	})
}

// TimerCancelled logs a timer cancelled before its deadline.
func (l *Logger) TimerCancelled(id string) {
	l.Debug("timer_cancelled", map[string]interface{}{
		"timer": id,
	})
}

// EpochReset logs the start of a new request cycle.
func (l *Logger) EpochReset(epoch uint64) {
	l.Debug("epoch_reset", map[string]interface{}{
		"epoch": epoch,
	})
}

// StopFile logs a stop file that requested shutdown.
func (l *Logger) StopFile(path string) {
	l.Warn("Commencing shutdown.", map[string]interface{}{
		"stop_file": path,
	})
}
