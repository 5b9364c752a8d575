package authz

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository reads role capability grants
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new capability repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Granted reports whether any of the token roles, or any role the user holds
// in the organization, grants the capability.
func (r *Repository) Granted(ctx context.Context, orgID, userID uuid.UUID, roles []string, capability string) (bool, error) {
	var granted bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM role_capabilities rc
			WHERE rc.organization_id = $1
			  AND rc.capability = $4
			  AND (
				rc.role = ANY($3)
				OR rc.role IN (
					SELECT m.role FROM organization_members m
					WHERE m.organization_id = $1 AND m.user_id = $2
				)
			  )
		)`, orgID, userID, roles, capability).Scan(&granted)
	if err != nil {
		return false, fmt.Errorf("check capability %s: %w", capability, err)
	}
	return granted, nil
}
