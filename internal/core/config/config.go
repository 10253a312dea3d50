// Package config handles configuration loading and validation for diffwatch.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so yaml values like "150ms" parse.
type Duration time.Duration

// UnmarshalYAML accepts either a duration string or an integer
// nanosecond count.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var ns int64
	if err := value.Decode(&ns); err == nil {
		*d = Duration(ns)
		return nil
	}

	var raw string
	if err := value.Decode(&raw); err != nil {
		return fmt.Errorf("config: invalid duration value: %w", err)
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("config: invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML renders the duration in its string form.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config holds the application configuration.
type Config struct {
	GitPath string      `yaml:"git_path"`
	Diff    DiffConfig  `yaml:"diff"`
	Watch   WatchConfig `yaml:"watch"`
	View    ViewConfig  `yaml:"view"`
	DataDir string      `yaml:"-"` // set by caller, not from config file
}

// DiffConfig controls diff synthesis.
type DiffConfig struct {
	// FullContextLines is the -U value used in full-context mode; it
	// must exceed any realistic file length.
	FullContextLines int `yaml:"full_context_lines"`
}

// WatchConfig controls head-change detection and the lock retry loop.
type WatchConfig struct {
	Enabled bool `yaml:"enabled"`
	// PollInterval is the fallback marker-file polling cadence when the
	// filesystem watcher cannot be created.
	PollInterval Duration `yaml:"poll_interval"`
	// Debounce settles bursts of marker-file events into one signal.
	Debounce Duration `yaml:"debounce"`
	// LockRetryDelay is the pause between lock-marker checks.
	LockRetryDelay Duration `yaml:"lock_retry_delay"`
	// LockRetryAttempts bounds the lock-marker retry loop.
	LockRetryAttempts int `yaml:"lock_retry_attempts"`
}

// ViewConfig controls which entries appear in the view.
type ViewConfig struct {
	// Ignore holds doublestar glob patterns; matching paths are
	// filtered out of the classification result.
	Ignore []string `yaml:"ignore"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		GitPath: "git",
		Diff: DiffConfig{
			FullContextLines: 999999,
		},
		Watch: WatchConfig{
			Enabled:           true,
			PollInterval:      Duration(2 * time.Second),
			Debounce:          Duration(100 * time.Millisecond),
			LockRetryDelay:    Duration(150 * time.Millisecond),
			LockRetryAttempts: 5,
		},
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the
// provided dataDir.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.DataDir = dataDir

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}

			// Re-set dataDir since Unmarshal may have cleared it
			cfg.DataDir = dataDir
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks invariants the rest of the system relies on.
func (c *Config) Validate() error {
	if c.GitPath == "" {
		return fmt.Errorf("config: git_path must not be empty")
	}
	if c.Diff.FullContextLines <= 0 {
		return fmt.Errorf("config: diff.full_context_lines must be positive, got %d", c.Diff.FullContextLines)
	}
	if c.Watch.LockRetryAttempts <= 0 {
		return fmt.Errorf("config: watch.lock_retry_attempts must be positive, got %d", c.Watch.LockRetryAttempts)
	}
	if c.Watch.LockRetryDelay <= 0 {
		return fmt.Errorf("config: watch.lock_retry_delay must be positive, got %s", c.Watch.LockRetryDelay.Std())
	}
	if c.Watch.PollInterval <= 0 {
		return fmt.Errorf("config: watch.poll_interval must be positive, got %s", c.Watch.PollInterval.Std())
	}
	return nil
}
