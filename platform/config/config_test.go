package config

import (
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost/studio")
	t.Setenv("JWT_ACCESS_SECRET", "secret")
	t.Setenv("CORS_ALLOW_ALL", "false")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.GetProjectCreateMaxAttempts() != 3 {
		t.Fatalf("expected 3 project create attempts, got %d", cfg.GetProjectCreateMaxAttempts())
	}
	if cfg.GetProjectCreateBackoff() != 100*time.Millisecond {
		t.Fatalf("expected 100ms backoff, got %s", cfg.GetProjectCreateBackoff())
	}
	if cfg.GetSettingsCacheTTL() != 5*time.Minute {
		t.Fatalf("expected 5m settings TTL, got %s", cfg.GetSettingsCacheTTL())
	}
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DATABASE_URL", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when DATABASE_URL is empty")
	}
}

func TestLoadRejectsWildcardCORSWithCredentials(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CORS_ORIGINS", "*")
	t.Setenv("CORS_ALLOW_CREDENTIALS", "true")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for wildcard origins with credentials")
	}
}

func TestLoadRejectsZeroAttempts(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PROJECT_CREATE_MAX_ATTEMPTS", "0")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for zero project create attempts")
	}
}
