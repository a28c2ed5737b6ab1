package config

import (
	"fmt"
	"strconv"
	"time"

	"github.com/rcliao/spaced-review/internal/scheduler"
)

// Config is the persistent configuration stored as config.toml.
type Config struct {
	Version int           `toml:"version"`
	Storage StorageConfig `toml:"storage"`
	Review  ReviewConfig  `toml:"review"`
	Rebuild RebuildConfig `toml:"rebuild"`
	Log     LogConfig     `toml:"log"`
}

type StorageConfig struct {
	SQLitePath string `toml:"sqlite_path,omitempty"`
	// Document names the review document all commands operate on.
	Document string `toml:"document,omitempty"`
}

// ReviewConfig holds the settings the queue assembler and scheduler read.
type ReviewConfig struct {
	DailyLimit      int    `toml:"daily_limit"`
	DefaultPriority int    `toml:"default_priority"`
	Algorithm       string `toml:"algorithm,omitempty"`
	Cramming        bool   `toml:"cramming"`
	MixedMode       bool   `toml:"mixed_mode"`
}

// RebuildConfig tunes priority-order rebuild coalescing.
type RebuildConfig struct {
	Interval string `toml:"interval,omitempty"`
}

type LogConfig struct {
	Debug bool `toml:"debug"`
	// Format is "console" or "json".
	Format string `toml:"format,omitempty"`
}

// Log output formats.
const (
	LogFormatConsole = "console"
	LogFormatJSON    = "json"
)

// RebuildInterval parses Rebuild.Interval.
func (c *Config) RebuildInterval() (time.Duration, error) {
	if c.Rebuild.Interval == "" {
		return defaultRebuildInterval, nil
	}
	d, err := time.ParseDuration(c.Rebuild.Interval)
	if err != nil {
		return 0, fmt.Errorf("rebuild.interval: %w", err)
	}
	return d, nil
}

// Validate rejects out-of-range settings.
func (c *Config) Validate() error {
	if c.Review.DailyLimit < 0 {
		return fmt.Errorf("review.daily_limit must be >= 0, got %d", c.Review.DailyLimit)
	}
	if c.Review.DefaultPriority < 0 || c.Review.DefaultPriority > 100 {
		return fmt.Errorf("review.default_priority must be within 0..100, got %d", c.Review.DefaultPriority)
	}
	if _, err := scheduler.ParseAlgorithm(c.Review.Algorithm); err != nil {
		return fmt.Errorf("review.algorithm: %w", err)
	}
	d, err := c.RebuildInterval()
	if err != nil {
		return err
	}
	if d < 0 {
		return fmt.Errorf("rebuild.interval must not be negative, got %s", d)
	}
	switch c.Log.Format {
	case "", LogFormatConsole, LogFormatJSON:
	default:
		return fmt.Errorf("log.format must be %s or %s, got %q", LogFormatConsole, LogFormatJSON, c.Log.Format)
	}
	return nil
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

// configKeys is the authoritative map of all supported config keys.
var configKeys = map[string]configKeyInfo{
	"storage.sqlite_path": {
		get: func(c *Config) string { return c.Storage.SQLitePath },
		set: func(c *Config, v string) error { c.Storage.SQLitePath = v; return nil },
	},
	"storage.document": {
		get: func(c *Config) string { return c.Storage.Document },
		set: func(c *Config, v string) error { c.Storage.Document = v; return nil },
	},
	"review.daily_limit": {
		get: func(c *Config) string { return strconv.Itoa(c.Review.DailyLimit) },
		set: func(c *Config, v string) error { return setInt(&c.Review.DailyLimit, "review.daily_limit", v) },
	},
	"review.default_priority": {
		get: func(c *Config) string { return strconv.Itoa(c.Review.DefaultPriority) },
		set: func(c *Config, v string) error {
			return setInt(&c.Review.DefaultPriority, "review.default_priority", v)
		},
	},
	"review.algorithm": {
		get: func(c *Config) string { return c.Review.Algorithm },
		set: func(c *Config, v string) error {
			alg, err := scheduler.ParseAlgorithm(v)
			if err != nil {
				return err
			}
			c.Review.Algorithm = string(alg)
			return nil
		},
	},
	"review.cramming": {
		get: func(c *Config) string { return strconv.FormatBool(c.Review.Cramming) },
		set: func(c *Config, v string) error { return setBool(&c.Review.Cramming, "review.cramming", v) },
	},
	"review.mixed_mode": {
		get: func(c *Config) string { return strconv.FormatBool(c.Review.MixedMode) },
		set: func(c *Config, v string) error { return setBool(&c.Review.MixedMode, "review.mixed_mode", v) },
	},
	"rebuild.interval": {
		get: func(c *Config) string { return c.Rebuild.Interval },
		set: func(c *Config, v string) error {
			if _, err := time.ParseDuration(v); err != nil {
				return fmt.Errorf("invalid value for rebuild.interval: %w", err)
			}
			c.Rebuild.Interval = v
			return nil
		},
	},
	"log.debug": {
		get: func(c *Config) string { return strconv.FormatBool(c.Log.Debug) },
		set: func(c *Config, v string) error { return setBool(&c.Log.Debug, "log.debug", v) },
	},
	"log.format": {
		get: func(c *Config) string { return c.Log.Format },
		set: func(c *Config, v string) error { c.Log.Format = v; return nil },
	},
}

func setInt(dst *int, key, v string) error {
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	*dst = n
	return nil
}

func setBool(dst *bool, key, v string) error {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	*dst = b
	return nil
}
