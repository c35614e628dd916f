// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Defaults live in New; Load layers an optional YAML file and env vars.
// - External errors are wrapped via this package's sentinel kinds.
package config

import "time"

// Config contains process configuration for the worker.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the health/read-API listen address, e.g. ":8090".
	Addr string `koanf:"addr"`

	// PostgresDSN points at the job/metric store. Empty selects the
	// in-memory store (dev and tests).
	PostgresDSN string `koanf:"postgres_dsn"`

	// Season is the active season synced by default.
	Season int `koanf:"season"`

	// Provider API settings.
	ProviderBaseURL    string `koanf:"provider_base_url"`
	ProviderTimeoutSec int    `koanf:"provider_timeout_sec"`
	FetchMaxAttempts   int    `koanf:"fetch_max_attempts"`
	FetchBackoffMS     int    `koanf:"fetch_backoff_ms"`
	FetchPageSize      int    `koanf:"fetch_page_size"`

	// OAuth refresh settings for provider credentials. All three empty
	// disables refresh; expired tokens then simply fail their jobs.
	ProviderTokenURL     string `koanf:"provider_token_url"`
	ProviderClientID     string `koanf:"provider_client_id"`
	ProviderClientSecret string `koanf:"provider_client_secret"`

	// Compute control API settings.
	ControlAPIURL   string `koanf:"control_api_url"`
	ControlAPIToken string `koanf:"control_api_token"`
	ControlAppID    string `koanf:"control_app_id"`

	// Worker loop bounds.
	MaxJobsPerRun     int `koanf:"max_jobs_per_run"`
	MaxRuntimeMinutes int `koanf:"max_runtime_minutes"`

	// Fan-out widths for concurrent sub-batches inside a job.
	LeagueBatchSize int `koanf:"league_batch_size"`
	EntityBatchSize int `koanf:"entity_batch_size"`

	// RollingWindowWeeks bounds the trailing window for rolling averages.
	RollingWindowWeeks int `koanf:"rolling_window_weeks"`

	// ScoreWeights maps metric keys to their weight in the composite score.
	ScoreWeights map[string]float64 `koanf:"score_weights"`

	// DefaultScoreWeight is used for metrics absent from ScoreWeights.
	DefaultScoreWeight float64 `koanf:"default_score_weight"`

	// CredentialSkewSec refreshes tokens this long before expiry.
	CredentialSkewSec int `koanf:"credential_skew_sec"`
}

// MaxRuntime returns the loop's wall-clock ceiling as a duration.
func (c *Config) MaxRuntime() time.Duration {
	return time.Duration(c.MaxRuntimeMinutes) * time.Minute
}

// FetchBackoff returns the base backoff unit for provider retries.
func (c *Config) FetchBackoff() time.Duration {
	return time.Duration(c.FetchBackoffMS) * time.Millisecond
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		Addr:               ":8090",
		Season:             time.Now().Year(),
		ProviderBaseURL:    "https://provider.example.com/fantasy/v2",
		ProviderTimeoutSec: 20,
		FetchMaxAttempts:   3,
		FetchBackoffMS:     1000,
		FetchPageSize:      25,
		MaxJobsPerRun:      50,
		MaxRuntimeMinutes:  180,
		LeagueBatchSize:    3,
		EntityBatchSize:    10,
		RollingWindowWeeks: 3,
		ScoreWeights: map[string]float64{
			"points":         0.40,
			"points_allowed": 0.25,
			"turnovers":      0.20,
			"sacks":          0.15,
		},
		DefaultScoreWeight: 0.10,
		CredentialSkewSec:  60,
	}
}
