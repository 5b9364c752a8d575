// Package service reads tenant settings through a short-lived redis cache.
package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"studio_backend/platform/config"
	"studio_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const cacheKeyPrefix = "settings:auto_create_project_on_won:"

// Store is the durable source of settings.
type Store interface {
	AutoCreateProjectOnWon(ctx context.Context, orgID uuid.UUID) (*bool, error)
}

// Service answers settings lookups. A nil redis client disables caching.
type Service struct {
	store Store
	cache *redis.Client
	ttl   time.Duration
	group singleflight.Group
	log   *logger.Logger
}

// New creates a settings service
func New(store Store, cache *redis.Client, cfg config.SettingsConfig, log *logger.Logger) *Service {
	return &Service{store: store, cache: cache, ttl: cfg.GetSettingsCacheTTL(), log: log}
}

// AutoCreateProjectOnWon reports whether winning a lead should provision a
// project. An absent setting means true. Errors are returned to the caller,
// which decides the fallback.
func (s *Service) AutoCreateProjectOnWon(ctx context.Context, tenantID uuid.UUID) (bool, error) {
	key := cacheKeyPrefix + tenantID.String()

	if cached, ok := s.readCache(ctx, key); ok {
		return cached, nil
	}

	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		stored, err := s.store.AutoCreateProjectOnWon(ctx, tenantID)
		if err != nil {
			return false, err
		}
		enabled := stored == nil || *stored
		s.writeCache(ctx, key, enabled)
		return enabled, nil
	})
	if err != nil {
		return false, fmt.Errorf("auto-create project setting: %w", err)
	}
	return v.(bool), nil
}

func (s *Service) readCache(ctx context.Context, key string) (bool, bool) {
	if s.cache == nil {
		return false, false
	}
	raw, err := s.cache.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.WithContext(ctx).Warn("settings cache read failed", "key", key, "error", err)
		}
		return false, false
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return value, true
}

func (s *Service) writeCache(ctx context.Context, key string, value bool) {
	if s.cache == nil || s.ttl <= 0 {
		return
	}
	if err := s.cache.Set(ctx, key, strconv.FormatBool(value), s.ttl).Err(); err != nil {
		s.log.WithContext(ctx).Warn("settings cache write failed", "key", key, "error", err)
	}
}
