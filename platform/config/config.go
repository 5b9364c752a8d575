// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// MigrationConfig controls startup migrations.
type MigrationConfig interface {
	DatabaseConfig
	GetMigrationsEnabled() bool
}

// JWTConfig provides JWT validation settings for middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// RedisConfig provides the redis connection used by the cache and the job queue.
type RedisConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
}

// SchedulerConfig provides settings for the asynq client and worker.
type SchedulerConfig interface {
	RedisConfig
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
}

// SettingsConfig provides tenant settings cache settings.
type SettingsConfig interface {
	GetSettingsCacheTTL() time.Duration
}

// ProvisioningConfig provides the retry policy for project creation.
type ProvisioningConfig interface {
	GetProjectCreateMaxAttempts() int
	GetProjectCreateBackoff() time.Duration
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                     string
	HTTPAddr                string
	DatabaseURL             string
	MigrationsEnabled       bool
	JWTAccessSecret         string
	CORSAllowAll            bool
	CORSOrigins             []string
	CORSAllowCreds          bool
	RedisURL                string
	RedisTLSInsecure        bool
	AsynqQueueName          string
	AsynqConcurrency        int
	SettingsCacheTTL        time.Duration
	ProjectCreateMaxAttempt int
	ProjectCreateBackoff    time.Duration
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string     { return c.DatabaseURL }
func (c *Config) GetMigrationsEnabled() bool { return c.MigrationsEnabled }

// JWTConfig implementation
func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// RedisConfig / SchedulerConfig implementation
func (c *Config) GetRedisURL() string       { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int  { return c.AsynqConcurrency }

// SettingsConfig implementation
func (c *Config) GetSettingsCacheTTL() time.Duration { return c.SettingsCacheTTL }

// ProvisioningConfig implementation
func (c *Config) GetProjectCreateMaxAttempts() int       { return c.ProjectCreateMaxAttempt }
func (c *Config) GetProjectCreateBackoff() time.Duration { return c.ProjectCreateBackoff }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:                     getEnv("APP_ENV", "development"),
		HTTPAddr:                getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:             getEnv("DATABASE_URL", ""),
		MigrationsEnabled:       strings.EqualFold(getEnv("MIGRATIONS_ENABLED", "true"), "true"),
		JWTAccessSecret:         getEnv("JWT_ACCESS_SECRET", ""),
		CORSAllowAll:            corsAllowAll,
		CORSOrigins:             corsOrigins,
		CORSAllowCreds:          strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
		RedisURL:                getEnv("REDIS_URL", ""),
		RedisTLSInsecure:        strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:          getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency:        mustInt(getEnv("ASYNQ_CONCURRENCY", "10")),
		SettingsCacheTTL:        mustDuration(getEnv("SETTINGS_CACHE_TTL", "5m")),
		ProjectCreateMaxAttempt: mustInt(getEnv("PROJECT_CREATE_MAX_ATTEMPTS", "3")),
		ProjectCreateBackoff:    mustDuration(getEnv("PROJECT_CREATE_BACKOFF", "100ms")),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTAccessSecret == "" {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}
	if cfg.ProjectCreateMaxAttempt < 1 {
		return nil, fmt.Errorf("PROJECT_CREATE_MAX_ATTEMPTS must be at least 1")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	result, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
