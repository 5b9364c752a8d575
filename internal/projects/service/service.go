package service

import (
	"context"

	"studio_backend/internal/projects/repository"
	"studio_backend/platform/apperr"
	"studio_backend/platform/logger"

	"github.com/google/uuid"
)

const (
	CategoryModular = "modular"
	CategoryTurnkey = "turnkey"
)

// Store is the persistence the projects service needs.
type Store interface {
	CreateFromLead(ctx context.Context, p repository.CreateFromLeadParams) (uuid.UUID, error)
	LinkBaseline(ctx context.Context, id uuid.UUID, orgID uuid.UUID, baselineQuotationID uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID, orgID uuid.UUID) (repository.Project, error)
}

var _ Store = (*repository.Repository)(nil)

// Service provides project business logic
type Service struct {
	repo Store
	log  *logger.Logger
}

// New creates a new projects service
func New(repo Store, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// CreateFromLead creates a project for a won lead. A number collision is
// returned unchanged so the caller can retry.
func (s *Service) CreateFromLead(ctx context.Context, p repository.CreateFromLeadParams) (uuid.UUID, error) {
	if p.Category != CategoryModular && p.Category != CategoryTurnkey {
		return uuid.Nil, apperr.Validation("project category must be modular or turnkey")
	}
	id, err := s.repo.CreateFromLead(ctx, p)
	if err != nil {
		return uuid.Nil, err
	}
	s.log.WithContext(ctx).Info("project created", "projectId", id, "leadId", p.LeadID, "category", p.Category)
	return id, nil
}

// LinkBaseline points the project quotation and baseline at the baseline copy
func (s *Service) LinkBaseline(ctx context.Context, tenantID, projectID, baselineQuotationID uuid.UUID) error {
	return s.repo.LinkBaseline(ctx, projectID, tenantID, baselineQuotationID)
}

// GetByID returns a project
func (s *Service) GetByID(ctx context.Context, tenantID, id uuid.UUID) (repository.Project, error) {
	return s.repo.GetByID(ctx, id, tenantID)
}
