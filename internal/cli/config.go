package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/spaced-review/internal/config"
)

const configLongDesc string = `Manage persistent spaced-review configuration.

Configuration is stored as config.toml in the config directory and provides
defaults for every command. Flags and SPACED_REVIEW_* environment variables
take precedence over the file.

Keys use dotted notation matching the TOML section structure:
  storage.sqlite_path, storage.document,
  review.daily_limit, review.default_priority, review.algorithm,
  review.cramming, review.mixed_mode,
  rebuild.interval, log.debug, log.format

Examples:
  spaced-review config set review.daily_limit 40
  spaced-review config set review.algorithm adaptive
  spaced-review config get review.daily_limit
  spaced-review config list`

var (
	keyStyle   = titleStyle
	valueStyle = newStyle
)

func init() {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage persistent configuration",
		Long:  configLongDesc,
		// Config commands must work even when config.toml fails validation.
		PersistentPreRunE:  func(*cobra.Command, []string) error { return nil },
		PersistentPostRunE: func(*cobra.Command, []string) error { return nil },
	}

	setCmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			return runConfigSet(args[0], args[1])
		},
		ValidArgsFunction: completeConfigKeys,
	}

	getCmd := &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runConfigGet(args[0])
		},
		ValidArgsFunction: completeConfigKeys,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List all configuration values",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return runConfigList()
		},
	}

	configCmd.AddCommand(setCmd, getCmd, listCmd)
	RootCmd.AddCommand(configCmd)
}

func completeConfigKeys(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return config.ValidConfigKeys(), cobra.ShellCompDirectiveNoFileComp
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}

func unknownKeyErr(key string) error {
	return fmt.Errorf("unknown config key: %q\n\nValid keys: %s",
		key, strings.Join(config.ValidConfigKeys(), ", "))
}

func runConfigSet(key, value string) error {
	if !config.IsValidConfigKey(key) {
		return unknownKeyErr(key)
	}

	cfger, err := config.NewConfiger(configDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfger.SetConfigValue(key, value); err != nil {
		return err
	}

	fmt.Printf("%s = %s  %s\n",
		keyStyle.Render(key),
		valueStyle.Render(value),
		dimStyle.Render("("+cfger.GetTarget()+")"),
	)
	return nil
}

func runConfigGet(key string) error {
	if !config.IsValidConfigKey(key) {
		return unknownKeyErr(key)
	}

	cfger, err := config.NewConfiger(configDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	value, err := cfger.GetConfigValue(key)
	if err != nil {
		return err
	}
	fmt.Println(value)
	return nil
}

func runConfigList() error {
	cfger, err := config.NewConfiger(configDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	fmt.Printf("Using config file: %s\n\n", cfger.GetTarget())

	keys := config.ValidConfigKeys()
	maxLen := 0
	for _, k := range keys {
		maxLen = max(maxLen, len(k))
	}

	for _, key := range keys {
		value, err := cfger.GetConfigValue(key)
		if err != nil {
			return err
		}
		if value == "" {
			fmt.Printf("%-*s = <not set>\n", maxLen, key)
		} else {
			fmt.Printf("%-*s = %q\n", maxLen, key, value)
		}
	}
	return nil
}
