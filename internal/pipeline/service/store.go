package service

import (
	"context"

	"studio_backend/internal/pipeline/repository"

	"github.com/google/uuid"
)

// LeadStore is the lead persistence the pipeline needs.
type LeadStore interface {
	GetLead(ctx context.Context, id uuid.UUID, organizationID uuid.UUID) (repository.Lead, error)
	GetProperty(ctx context.Context, id uuid.UUID, organizationID uuid.UUID) (repository.Property, error)
	ApplyStageChange(ctx context.Context, params repository.StageChangeParams) (repository.Lead, error)
	AddActivity(ctx context.Context, params repository.ActivityParams) error
}

// StageReverter undoes a committed stage change.
type StageReverter interface {
	RevertStage(ctx context.Context, leadID, organizationID uuid.UUID, current, restoreTo string) error
}

// PropertyStore writes property rows.
type PropertyStore interface {
	CreateProperty(ctx context.Context, organizationID uuid.UUID, city string, params repository.PropertyParams) (uuid.UUID, error)
	UpdateProperty(ctx context.Context, id uuid.UUID, organizationID uuid.UUID, params repository.PropertyParams) error
}

// Store is everything the pipeline service reads and writes.
type Store interface {
	LeadStore
	StageReverter
	PropertyStore
}

var _ Store = (*repository.Repository)(nil)
