package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. SPACED_REVIEW_REVIEW_DAILY_LIMIT.
const EnvPrefix = "SPACED_REVIEW"

// InitViper creates and returns a configured *viper.Viper.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound via BindFlags)
//  2. Environment variables (SPACED_REVIEW_REVIEW_DAILY_LIMIT, etc.)
//  3. config.toml file values
//  4. Defaults from NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	setViperDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("toml")

	dir, err := Dir(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}
	v.AddConfigPath(dir)

	if err := v.ReadInConfig(); err != nil {
		// Config file not found errors are fine, defaults will apply.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)

	v.SetDefault("storage.sqlite_path", d.Storage.SQLitePath)
	v.SetDefault("storage.document", d.Storage.Document)

	v.SetDefault("review.daily_limit", d.Review.DailyLimit)
	v.SetDefault("review.default_priority", d.Review.DefaultPriority)
	v.SetDefault("review.algorithm", d.Review.Algorithm)
	v.SetDefault("review.cramming", d.Review.Cramming)
	v.SetDefault("review.mixed_mode", d.Review.MixedMode)

	v.SetDefault("rebuild.interval", d.Rebuild.Interval)

	v.SetDefault("log.debug", d.Log.Debug)
	v.SetDefault("log.format", d.Log.Format)
}

// FromViper reads the effective configuration out of v.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Version: v.GetInt("version"),
		Storage: StorageConfig{
			SQLitePath: v.GetString("storage.sqlite_path"),
			Document:   v.GetString("storage.document"),
		},
		Review: ReviewConfig{
			DailyLimit:      v.GetInt("review.daily_limit"),
			DefaultPriority: v.GetInt("review.default_priority"),
			Algorithm:       v.GetString("review.algorithm"),
			Cramming:        v.GetBool("review.cramming"),
			MixedMode:       v.GetBool("review.mixed_mode"),
		},
		Rebuild: RebuildConfig{
			Interval: v.GetString("rebuild.interval"),
		},
		Log: LogConfig{
			Debug:  v.GetBool("log.debug"),
			Format: v.GetString("log.format"),
		},
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Flag ties a command-line flag to the config key it overrides.
type Flag struct {
	Name     string
	ViperKey string
}

// BindFlags binds already-registered flags on cmd to v. Flags that cmd does
// not define are ignored.
func BindFlags(v *viper.Viper, cmd *cobra.Command, flags ...Flag) {
	for _, def := range flags {
		f := cmd.Flags().Lookup(def.Name)
		if f == nil {
			continue
		}
		_ = v.BindPFlag(def.ViperKey, f)
	}
}
