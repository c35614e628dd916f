package config

import (
	"context"
	"errors"
	"os"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.MaxJobsPerRun != 50 {
		t.Errorf("expected default max_jobs_per_run 50, got %d", cfg.MaxJobsPerRun)
	}
	if cfg.MaxRuntimeMinutes != 180 {
		t.Errorf("expected default max_runtime_minutes 180, got %d", cfg.MaxRuntimeMinutes)
	}
	if cfg.LeagueBatchSize != 3 || cfg.EntityBatchSize != 10 {
		t.Errorf("unexpected batch defaults: %d/%d", cfg.LeagueBatchSize, cfg.EntityBatchSize)
	}
	if cfg.RollingWindowWeeks != 3 {
		t.Errorf("expected rolling window 3, got %d", cfg.RollingWindowWeeks)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("FFA_MAX_JOBS_PER_RUN", "10")
	t.Setenv("FFA_ADDR", ":9999")

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.MaxJobsPerRun != 10 {
		t.Errorf("env override ignored: got %d", cfg.MaxJobsPerRun)
	}
	if cfg.Addr != ":9999" {
		t.Errorf("env override ignored: got %q", cfg.Addr)
	}
}

func TestLoadInvalid(t *testing.T) {
	t.Setenv("FFA_MAX_JOBS_PER_RUN", "0")

	_, err := Load(context.Background())
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("FFA_CONFIG", "/nonexistent/config.yaml")
	defer os.Unsetenv("FFA_CONFIG")

	_, err := Load(context.Background())
	if !errors.Is(err, ErrLoadConfig) {
		t.Fatalf("expected ErrLoadConfig, got %v", err)
	}
}
