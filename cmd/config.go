package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"github.com/dltmtt/viaggiatreno-api/pkg/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage viaggiatreno configuration",
	Long: `View or edit the local configuration (~/.viaggiatreno.toml): base URL,
timeouts, retry policy, concurrency caps and the default output directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		sets, _ := cmd.Flags().GetStringArray("set")
		if len(sets) == 0 {
			data, err := toml.Marshal(cfg)
			if err != nil {
				return err
			}
			fmt.Print(string(data))
			return nil
		}

		for _, entry := range sets {
			key, value, ok := strings.Cut(entry, "=")
			if !ok {
				return fmt.Errorf("invalid --set %q: use key=value", entry)
			}
			if err := applySetting(cfg, strings.TrimSpace(key), strings.TrimSpace(value)); err != nil {
				return err
			}
		}

		if err := config.Save(cfg); err != nil {
			return err
		}
		fmt.Println("Configuration saved.")
		return nil
	},
}

func applySetting(cfg *config.Config, key, value string) error {
	switch key {
	case "base_url":
		cfg.BaseURL = value
		return nil
	case "output_dir":
		cfg.OutputDir = value
		return nil
	}

	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return fmt.Errorf("invalid value %q for %s", value, key)
	}
	switch key {
	case "timeout_seconds":
		cfg.TimeoutSeconds = n
	case "max_retries":
		cfg.MaxRetries = n
	case "backoff_base_seconds":
		cfg.BackoffBaseSeconds = n
	case "backoff_cap_seconds":
		cfg.BackoffCapSeconds = n
	case "max_concurrent":
		if n < 1 {
			return fmt.Errorf("invalid value %q for %s: must be at least 1", value, key)
		}
		cfg.MaxConcurrent = n
	case "window_limit":
		if n < 1 {
			return fmt.Errorf("invalid value %q for %s: must be at least 1", value, key)
		}
		cfg.WindowLimit = n
	default:
		return fmt.Errorf("unknown configuration key %q", key)
	}
	return nil
}

func init() {
	configCmd.Flags().StringArray("set", nil, "Set a configuration value as key=value (repeatable)")
	rootCmd.AddCommand(configCmd)
}
