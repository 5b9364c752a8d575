// Package cache provides the redis client shared by the settings cache and
// the job queue.
// This is part of the platform layer and contains no business logic.
package cache

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"studio_backend/platform/config"

	"github.com/redis/go-redis/v9"
)

// ParseOptions turns a redis URL into client options, optionally relaxing
// TLS verification for managed redis with self-signed certificates.
func ParseOptions(redisURL string, tlsInsecure bool) (*redis.Options, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	if opt.TLSConfig != nil {
		clone := opt.TLSConfig.Clone()
		if tlsInsecure {
			clone.InsecureSkipVerify = true
		}
		opt.TLSConfig = clone
	} else if tlsInsecure {
		opt.TLSConfig = &tls.Config{InsecureSkipVerify: true}
	}
	return opt, nil
}

// NewClient creates a redis client and performs a health check.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	if cfg.GetRedisURL() == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := ParseOptions(cfg.GetRedisURL(), cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}
