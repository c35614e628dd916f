package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New)
//  2. file (YAML) if FFA_CONFIG is set
//  3. env (prefix FFA_)
func Load(ctx context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("FFA_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Env keys like FFA_MAX_JOBS_PER_RUN map to max_jobs_per_run; underscores
	// are preserved to match the koanf tags on the struct.
	envProvider := env.Provider("FFA_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "ffa_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.ProviderBaseURL == "":
		return fmt.Errorf("%w: provider_base_url must not be empty", ErrInvalidConfig)
	case c.MaxJobsPerRun < 1:
		return fmt.Errorf("%w: max_jobs_per_run must be positive", ErrInvalidConfig)
	case c.MaxRuntimeMinutes < 1:
		return fmt.Errorf("%w: max_runtime_minutes must be positive", ErrInvalidConfig)
	case c.FetchMaxAttempts < 1:
		return fmt.Errorf("%w: fetch_max_attempts must be positive", ErrInvalidConfig)
	case c.FetchPageSize < 1:
		return fmt.Errorf("%w: fetch_page_size must be positive", ErrInvalidConfig)
	case c.LeagueBatchSize < 1 || c.EntityBatchSize < 1:
		return fmt.Errorf("%w: batch sizes must be positive", ErrInvalidConfig)
	case c.RollingWindowWeeks < 1:
		return fmt.Errorf("%w: rolling_window_weeks must be positive", ErrInvalidConfig)
	}
	return nil
}
