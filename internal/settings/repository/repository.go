package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository reads organization settings
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new settings repository
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// AutoCreateProjectOnWon returns the stored flag, or nil when the
// organization has no settings row or the column is NULL.
func (r *Repository) AutoCreateProjectOnWon(ctx context.Context, orgID uuid.UUID) (*bool, error) {
	var value *bool
	err := r.pool.QueryRow(ctx,
		`SELECT auto_create_project_on_won FROM organization_settings WHERE organization_id = $1`, orgID,
	).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read organization settings: %w", err)
	}
	return value, nil
}
