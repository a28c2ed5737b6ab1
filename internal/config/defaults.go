package config

import "time"

const (
	defaultDocument        = "review"
	defaultDailyLimit      = 0
	defaultDefaultPriority = 70
	defaultAlgorithm       = "classic"
	defaultMixedMode       = true
	defaultRebuildInterval = time.Second
	defaultLogFormat       = LogFormatConsole
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Storage: StorageConfig{
			Document: defaultDocument,
		},
		Review: ReviewConfig{
			DailyLimit:      defaultDailyLimit,
			DefaultPriority: defaultDefaultPriority,
			Algorithm:       defaultAlgorithm,
			MixedMode:       defaultMixedMode,
		},
		Rebuild: RebuildConfig{
			Interval: defaultRebuildInterval.String(),
		},
		Log: LogConfig{
			Format: defaultLogFormat,
		},
	}
}
