package logging

import (
	"io"

	"github.com/caarlos0/env/v10"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config selects the level and destination of a Logger.
type Config struct {
	// Level is the minimum level name (debug, info, warn, error).
	Level string `env:"WRAPUP_LOG_LEVEL" toml:"level"`

	// File, when set, sends output to a size-rotated log file instead of stderr.
	File string `env:"WRAPUP_LOG_FILE" toml:"file"`

	// MaxSizeMB is the size at which the log file rotates.
	MaxSizeMB int `env:"WRAPUP_LOG_MAX_SIZE_MB" toml:"max_size_mb"`

	// MaxBackups is how many rotated files are kept.
	MaxBackups int `env:"WRAPUP_LOG_MAX_BACKUPS" toml:"max_backups"`
}

// DefaultConfig returns INFO level on stderr.
func DefaultConfig() Config {
	return Config{
		Level:      string(LevelInfo),
		MaxSizeMB:  10,
		MaxBackups: 3,
	}
}

// LoadConfig returns defaults overridden by WRAPUP_LOG_* environment variables.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// NewFromConfig creates a Logger for cfg. The returned io.Closer must be
// closed to release the log file; it is a no-op for stderr.
func NewFromConfig(cfg Config) (*Logger, io.Closer) {
	l := New()
	l.SetLevel(ParseLevel(cfg.Level))

	if cfg.File == "" {
		return l, nopCloser{}
	}

	lj := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     28,
	}
	l.SetOutput(lj)
	return l, lj
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
