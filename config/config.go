// Package config loads the client core's configuration from YAML, with
// environment variable expansion and defaulting.
package config

import (
	"fmt"
	"time"

	"github.com/brevity-app/brevity-go/breaker"
	"github.com/brevity-app/brevity-go/retry"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	API     APIConfig     `yaml:"api"`
	Retry   RetryConfig   `yaml:"retry"`
	Breaker BreakerConfig `yaml:"breaker"`
	Logging LoggingConfig `yaml:"logging"`
}

// APIConfig holds Brevity API connection settings.
type APIConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	Timeout string `yaml:"timeout"` // e.g. "30s"
}

// RetryConfig holds retry executor settings. Durations are strings in
// time.ParseDuration format.
type RetryConfig struct {
	MaxAttempts       int     `yaml:"max_attempts"`
	InitialDelay      string  `yaml:"initial_delay"`
	MaxDelay          string  `yaml:"max_delay"`
	BackoffMultiplier float64 `yaml:"backoff_multiplier"`
	ShowToast         bool    `yaml:"show_toast"`
	LogErrors         bool    `yaml:"log_errors"`
	ReportErrors      bool    `yaml:"report_errors"`
}

// BreakerConfig holds circuit breaker settings.
type BreakerConfig struct {
	FailureThreshold int    `yaml:"failure_threshold"`
	RecoveryTimeout  string `yaml:"recovery_timeout"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// RetryExecutorConfig materializes the retry settings. Hooks are left to the
// caller; this only carries the numeric policy.
func (c *AppConfig) RetryExecutorConfig() (retry.Config, error) {
	cfg := retry.Config{
		MaxAttempts:       c.Retry.MaxAttempts,
		BackoffMultiplier: c.Retry.BackoffMultiplier,
	}

	var err error
	if cfg.InitialDelay, err = parseDuration("retry.initial_delay", c.Retry.InitialDelay); err != nil {
		return retry.Config{}, err
	}
	if cfg.MaxDelay, err = parseDuration("retry.max_delay", c.Retry.MaxDelay); err != nil {
		return retry.Config{}, err
	}
	return cfg, nil
}

// BreakerOptions materializes the breaker settings as constructor options.
func (c *AppConfig) BreakerOptions() ([]breaker.Option, error) {
	recovery, err := parseDuration("breaker.recovery_timeout", c.Breaker.RecoveryTimeout)
	if err != nil {
		return nil, err
	}

	var opts []breaker.Option
	if c.Breaker.FailureThreshold > 0 {
		opts = append(opts, breaker.WithFailureThreshold(c.Breaker.FailureThreshold))
	}
	if recovery > 0 {
		opts = append(opts, breaker.WithRecoveryTimeout(recovery))
	}
	return opts, nil
}

// APITimeout returns the configured request timeout.
func (c *AppConfig) APITimeout() (time.Duration, error) {
	return parseDuration("api.timeout", c.API.Timeout)
}

func parseDuration(field, value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %s: %w", field, err)
	}
	return d, nil
}
