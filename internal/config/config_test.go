package config

import (
	"errors"
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("APP_NAME", "trade-match")
	t.Setenv("APP_ENV", "test")
	t.Setenv("HTTP_PORT", "8080")
}

func TestLoad_PoolTuningFromEnv(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DB_POOL_MAX_CONNS", "10")
	t.Setenv("DB_POOL_MAX_CONN_LIFETIME_SECONDS", "600")
	t.Setenv("DB_POOL_MAX_CONN_IDLE_SECONDS", "120")
	t.Setenv("DB_POOL_HEALTH_CHECK_SECONDS", "30")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Database.PoolMaxConns != 10 {
		t.Fatalf("expected 10 max conns, got %d", cfg.Database.PoolMaxConns)
	}
	if cfg.Database.PoolMaxConnLifetime != 600*time.Second {
		t.Fatalf("expected 600s lifetime, got %v", cfg.Database.PoolMaxConnLifetime)
	}
	if cfg.Database.PoolMaxConnIdleTime != 120*time.Second {
		t.Fatalf("expected 120s idle time, got %v", cfg.Database.PoolMaxConnIdleTime)
	}
	if cfg.Database.PoolHealthCheckPeriod != 30*time.Second {
		t.Fatalf("expected 30s health check period, got %v", cfg.Database.PoolHealthCheckPeriod)
	}
}

func TestLoad_PoolTuningDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Database.PoolMaxConnLifetime == 0 {
		t.Fatalf("expected a non-zero default conn lifetime")
	}
	if cfg.Database.PoolMaxConnIdleTime == 0 {
		t.Fatalf("expected a non-zero default idle time")
	}
	if cfg.Database.PoolHealthCheckPeriod == 0 {
		t.Fatalf("expected a non-zero default health check period")
	}
}

func TestLoad_ReportsAllMissingRequired(t *testing.T) {
	t.Setenv("APP_NAME", "")
	t.Setenv("APP_ENV", "")
	t.Setenv("HTTP_PORT", "")

	_, err := Load()
	if !errors.Is(err, errMissingRequiredEnv) {
		t.Fatalf("expected missing-env error, got %v", err)
	}
}
