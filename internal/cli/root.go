// Package cli implements the spaced-review CLI commands.
package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/rcliao/spaced-review/internal/config"
	"github.com/rcliao/spaced-review/internal/engine"
	"github.com/rcliao/spaced-review/internal/logging"
	"github.com/rcliao/spaced-review/internal/metrics"
	"github.com/rcliao/spaced-review/internal/scheduler"
	"github.com/rcliao/spaced-review/internal/store"
)

var (
	dbPath      string
	docFlag     string
	formatFlag  string
	configDir   string
	metricsFile string
	debugFlag   bool

	cfg      = config.NewDefaultConfig()
	logger   = zap.NewNop()
	registry = prometheus.NewRegistry()
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "spaced-review",
	Short: "Spaced repetition review queue",
	Long: "Schedule reviews with SM-2, FSRS or fixed intervals, keep a priority order\n" +
		"across decks and assemble the daily queue. SQLite-backed, single binary.",
	PersistentPreRunE:  setup,
	PersistentPostRunE: flushMetrics,
	SilenceUsage:       true,
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Database path (default: $SPACED_REVIEW_DB or <config-dir>/review.db)")
	RootCmd.PersistentFlags().StringVar(&docFlag, "doc", "", "Review document (default: storage.document)")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "json", "Output format: json or text")
	RootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "Config directory (default: $SPACED_REVIEW_HOME or ~/.spaced-review)")
	RootCmd.PersistentFlags().StringVar(&metricsFile, "metrics-textfile", "", "Write Prometheus metrics to this file on exit")
	RootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Enable debug logging")
}

// setup resolves the effective config (flags > env > config.toml > defaults)
// and builds the logger.
func setup(cmd *cobra.Command, _ []string) error {
	v, err := config.InitViper(configDir)
	if err != nil {
		return err
	}
	config.BindFlags(v, cmd,
		config.Flag{Name: "db", ViperKey: "storage.sqlite_path"},
		config.Flag{Name: "doc", ViperKey: "storage.document"},
		config.Flag{Name: "debug", ViperKey: "log.debug"},
		config.Flag{Name: "cram", ViperKey: "review.cramming"},
		config.Flag{Name: "limit", ViperKey: "review.daily_limit"},
	)
	return loadConfig(v)
}

func loadConfig(v *viper.Viper) error {
	c, err := config.FromViper(v)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	cfg = c
	logger = logging.New(cfg.Log)
	return nil
}

func flushMetrics(_ *cobra.Command, _ []string) error {
	_ = logger.Sync()
	if metricsFile == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(metricsFile, registry); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}

func getDBPath() string {
	if cfg.Storage.SQLitePath != "" {
		return cfg.Storage.SQLitePath
	}
	if env := os.Getenv("SPACED_REVIEW_DB"); env != "" {
		return env
	}
	dir, err := config.Dir(configDir)
	if err != nil {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, config.DirName)
	}
	return filepath.Join(dir, "review.db")
}

func getDoc() string {
	if cfg.Storage.Document != "" {
		return cfg.Storage.Document
	}
	return config.NewDefaultConfig().Storage.Document
}

func openStore() (*store.SQLiteStore, error) {
	return store.NewSQLiteStore(getDBPath(), store.WithLogger(logger))
}

// openEngine opens the store behind a history cache and builds an engine
// from the effective config. Callers close the returned store.
func openEngine() (*engine.Engine, *store.SQLiteStore, error) {
	s, err := openStore()
	if err != nil {
		return nil, nil, err
	}
	cached, err := store.NewCachedStore(s, store.DefaultCacheSize)
	if err != nil {
		s.Close()
		return nil, nil, err
	}

	interval, err := cfg.RebuildInterval()
	if err != nil {
		s.Close()
		return nil, nil, err
	}
	settings := engine.Settings{
		DailyLimit:      cfg.Review.DailyLimit,
		DefaultPriority: cfg.Review.DefaultPriority,
		Algorithm:       scheduler.Algorithm(cfg.Review.Algorithm),
		Cramming:        cfg.Review.Cramming,
		MixedMode:       cfg.Review.MixedMode,
		RebuildInterval: interval,
	}

	observer, err := metrics.NewPrometheusObserver("", registry)
	if err != nil {
		s.Close()
		return nil, nil, err
	}
	e, err := engine.New(cached, settings, engine.WithLogger(logger), engine.WithObserver(observer))
	if err != nil {
		s.Close()
		return nil, nil, err
	}
	return e, s, nil
}

func printJSON(v any) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}

func textOutput() bool {
	return formatFlag == "text"
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
