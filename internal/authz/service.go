// Package authz answers capability checks for tenant users.
package authz

import (
	"context"
	"slices"

	"studio_backend/platform/logger"

	"github.com/google/uuid"
)

// RoleAdmin holds every capability of its organization.
const RoleAdmin = "admin"

// Store looks up capability grants.
type Store interface {
	Granted(ctx context.Context, orgID, userID uuid.UUID, roles []string, capability string) (bool, error)
}

var _ Store = (*Repository)(nil)

type Service struct {
	store Store
	log   *logger.Logger
}

func New(store Store, log *logger.Logger) *Service {
	return &Service{store: store, log: log}
}

// HasCapability reports whether the user may perform the capability.
func (s *Service) HasCapability(ctx context.Context, tenantID, userID uuid.UUID, roles []string, capability string) (bool, error) {
	if slices.Contains(roles, RoleAdmin) {
		return true, nil
	}
	if roles == nil {
		roles = []string{}
	}
	granted, err := s.store.Granted(ctx, tenantID, userID, roles, capability)
	if err != nil {
		return false, err
	}
	if !granted {
		s.log.WithContext(ctx).Info("capability denied", "userId", userID, "capability", capability)
	}
	return granted, nil
}
