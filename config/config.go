// Package config loads settings for processes that use shutdown requests:
// which signals to catch, an overall time limit, a stop file, the metrics
// endpoint and the worker loop. Values come from defaults, then a TOML
// file, then WRAPUP_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v10"

	"github.com/vinayprograms/wrapup/logging"
	"github.com/vinayprograms/wrapup/shutdown"
)

// ErrInvalidConfig indicates a configuration that fails validation.
var ErrInvalidConfig = errors.New("invalid configuration")

// FileName is the configuration file looked up in StandardPaths.
const FileName = "wrapup.toml"

// Config is the full configuration.
type Config struct {
	Log      logging.Config `toml:"log"`
	Signals  Signals        `toml:"signals"`
	Timer    Timer          `toml:"timer"`
	StopFile StopFile       `toml:"stopfile"`
	Metrics  Metrics        `toml:"metrics"`
	Workers  Workers        `toml:"workers"`
}

// Signals selects the signals that request shutdown.
type Signals struct {
	// Catch lists signal names or numbers. Empty means the platform default.
	Catch []string `toml:"catch" env:"WRAPUP_SIGNALS" envSeparator:","`

	// KeepRequest leaves the request raised when catching stops.
	KeepRequest bool `toml:"keep_request" env:"WRAPUP_KEEP_REQUEST"`
}

// Timer requests shutdown after a fixed time. Zero disables it.
type Timer struct {
	Limit time.Duration `toml:"limit" env:"WRAPUP_TIME_LIMIT"`
}

// StopFile requests shutdown when a file appears. Empty path disables it.
type StopFile struct {
	Path         string        `toml:"path" env:"WRAPUP_STOP_FILE"`
	PollInterval time.Duration `toml:"poll_interval" env:"WRAPUP_STOP_FILE_POLL"`
}

// Metrics serves Prometheus metrics. Empty address disables it.
type Metrics struct {
	Addr string `toml:"addr" env:"WRAPUP_METRICS_ADDR"`
}

// Workers configures the interruptible worker loop.
type Workers struct {
	Count    int           `toml:"count" env:"WRAPUP_WORKERS"`
	Interval time.Duration `toml:"interval" env:"WRAPUP_WORK_INTERVAL"`
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Log:      logging.DefaultConfig(),
		StopFile: StopFile{PollInterval: 2 * time.Second},
		Workers:  Workers{Count: 4, Interval: time.Second},
	}
}

// StandardPaths returns the config file locations in order of priority.
func StandardPaths() []string {
	paths := []string{FileName}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "wrapup", FileName))
	}
	return paths
}

// Load reads the first config file found in StandardPaths, applies
// environment overrides and validates. It returns the path used, or ""
// when no file exists (not an error).
func Load() (*Config, string, error) {
	for _, path := range StandardPaths() {
		if _, err := os.Stat(path); err == nil {
			cfg, err := LoadFile(path)
			return cfg, path, err
		}
	}
	cfg, err := finish(DefaultConfig())
	return cfg, "", err
}

// LoadFile reads a specific config file, applies environment overrides
// and validates.
func LoadFile(path string) (*Config, error) {
	cfg := DefaultConfig()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%w: %s: unknown key %q", ErrInvalidConfig, path, undecoded[0].String())
	}
	return finish(cfg)
}

func finish(cfg Config) (*Config, error) {
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Timer.Limit < 0 {
		return fmt.Errorf("%w: timer.limit must not be negative", ErrInvalidConfig)
	}
	if c.Workers.Count < 1 {
		return fmt.Errorf("%w: workers.count must be at least 1", ErrInvalidConfig)
	}
	if c.Workers.Interval <= 0 {
		return fmt.Errorf("%w: workers.interval must be positive", ErrInvalidConfig)
	}
	if c.StopFile.Path != "" && c.StopFile.PollInterval <= 0 {
		return fmt.Errorf("%w: stopfile.poll_interval must be positive", ErrInvalidConfig)
	}
	if len(c.Signals.Catch) > 0 {
		if _, err := shutdown.ParseSignals(c.Signals.Catch...); err != nil {
			return fmt.Errorf("%w: signals.catch: %w", ErrInvalidConfig, err)
		}
	}
	return nil
}

// CatcherConfig converts the signal settings for shutdown.NewCatcher.
func (c *Config) CatcherConfig(state *shutdown.State) (shutdown.Config, error) {
	cfg := shutdown.DefaultConfig()
	if state != nil {
		cfg.State = state
	}
	cfg.KeepRequest = c.Signals.KeepRequest
	if len(c.Signals.Catch) > 0 {
		sigs, err := shutdown.ParseSignals(c.Signals.Catch...)
		if err != nil {
			return shutdown.Config{}, err
		}
		cfg.Signals = sigs
	}
	return cfg, nil
}
