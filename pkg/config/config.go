package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/dltmtt/viaggiatreno-api/pkg/api"
)

// Config holds the tunables the client, scheduler and dump commands consume.
type Config struct {
	BaseURL            string `toml:"base_url"`
	TimeoutSeconds     int    `toml:"timeout_seconds"`
	MaxRetries         int    `toml:"max_retries"`
	BackoffBaseSeconds int    `toml:"backoff_base_seconds"`
	BackoffCapSeconds  int    `toml:"backoff_cap_seconds"`
	MaxConcurrent      int    `toml:"max_concurrent"`
	WindowLimit        int    `toml:"window_limit"`
	OutputDir          string `toml:"output_dir"`
}

// Default returns the stock configuration.
func Default() *Config {
	retry := api.DefaultRetryPolicy()
	return &Config{
		BaseURL:            api.DefaultBaseURL,
		TimeoutSeconds:     int(api.DefaultTimeout / time.Second),
		MaxRetries:         retry.MaxAttempts,
		BackoffBaseSeconds: int(retry.BaseDelay / time.Second),
		BackoffCapSeconds:  int(retry.MaxDelay / time.Second),
		MaxConcurrent:      api.DefaultMaxConcurrent,
		WindowLimit:        api.DefaultWindowLimit,
		OutputDir:          "dumps",
	}
}

// Timeout returns the request timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// RetryPolicy builds the executor retry policy from the configured values.
func (c *Config) RetryPolicy() api.RetryPolicy {
	policy := api.DefaultRetryPolicy()
	policy.MaxAttempts = c.MaxRetries
	policy.BaseDelay = time.Duration(c.BackoffBaseSeconds) * time.Second
	policy.MaxDelay = time.Duration(c.BackoffCapSeconds) * time.Second
	return policy
}

// getConfigPath returns the absolute path to ~/.viaggiatreno.toml.
func getConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not find user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".viaggiatreno.toml"), nil
}

// Load reads the configuration from disk. A missing file yields the defaults;
// values present in the file override them.
func Load() (*Config, error) {
	cfg := Default()

	path, err := getConfigPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration back to disk.
func Save(cfg *Config) error {
	path, err := getConfigPath()
	if err != nil {
		return err
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
