// Package service implements quotation creation from templates, the
// project baseline copy and read access to quotation trees.
package service

import (
	"context"
	"fmt"
	"strings"

	"studio_backend/internal/quotations/repository"
	"studio_backend/platform/apperr"
	"studio_backend/platform/logger"

	"github.com/google/uuid"
)

// Store is the persistence the quotation service needs.
type Store interface {
	HierarchyWriter
	NextQuotationNumber(ctx context.Context, orgID uuid.UUID) (string, error)
	NextVersion(ctx context.Context, orgID uuid.UUID, quotationNumber string) (int, error)
	Create(ctx context.Context, q repository.NewQuotation) (repository.Quotation, error)
	GetByID(ctx context.Context, id uuid.UUID, orgID uuid.UUID) (repository.Quotation, error)
	LockForProject(ctx context.Context, id uuid.UUID, orgID uuid.UUID, projectID uuid.UUID) error
	LeadExists(ctx context.Context, leadID uuid.UUID, orgID uuid.UUID) (bool, error)
	GetTemplate(ctx context.Context, id uuid.UUID, orgID uuid.UUID) (repository.Template, error)
	LoadTemplateSource(ctx context.Context, templateID uuid.UUID, orgID uuid.UUID) ([]repository.SourceSpace, []repository.SourceEntry, error)
	LoadQuotationSource(ctx context.Context, quotationID uuid.UUID, orgID uuid.UUID) ([]repository.SourceSpace, []repository.SourceEntry, error)
	ListSpaces(ctx context.Context, quotationID uuid.UUID, orgID uuid.UUID) ([]repository.Space, error)
	ListComponents(ctx context.Context, quotationID uuid.UUID, orgID uuid.UUID) ([]repository.Component, error)
	ListLineItems(ctx context.Context, quotationID uuid.UUID, orgID uuid.UUID) ([]repository.LineItem, error)
	CountRows(ctx context.Context, quotationID uuid.UUID, orgID uuid.UUID) (repository.RowCounts, error)
}

var _ Store = (*repository.Repository)(nil)

type CreateFromTemplateInput struct {
	TenantID   uuid.UUID
	ActorID    uuid.UUID
	LeadID     uuid.UUID
	TemplateID uuid.UUID
	Title      string
}

type BaselineInput struct {
	TenantID          uuid.UUID
	SourceQuotationID uuid.UUID
	ProjectID         uuid.UUID
	ActorID           uuid.UUID
}

// MaterializedQuotation is a new quotation header plus what was copied into it.
type MaterializedQuotation struct {
	Quotation repository.Quotation
	Summary   Summary
}

// Service provides quotation business logic
type Service struct {
	repo         Store
	materializer *Materializer
	log          *logger.Logger
}

// New creates a new quotations service
func New(repo Store, log *logger.Logger) *Service {
	return &Service{
		repo:         repo,
		materializer: NewMaterializer(repo, log),
		log:          log,
	}
}

// CreateFromTemplate creates a draft quotation for a lead and fills it with
// the template's hierarchy.
func (s *Service) CreateFromTemplate(ctx context.Context, in CreateFromTemplateInput) (MaterializedQuotation, error) {
	exists, err := s.repo.LeadExists(ctx, in.LeadID, in.TenantID)
	if err != nil {
		return MaterializedQuotation{}, err
	}
	if !exists {
		return MaterializedQuotation{}, apperr.NotFound("lead not found")
	}

	template, err := s.repo.GetTemplate(ctx, in.TemplateID, in.TenantID)
	if err != nil {
		return MaterializedQuotation{}, err
	}
	spaces, entries, err := s.repo.LoadTemplateSource(ctx, template.ID, in.TenantID)
	if err != nil {
		return MaterializedQuotation{}, err
	}

	number, err := s.repo.NextQuotationNumber(ctx, in.TenantID)
	if err != nil {
		return MaterializedQuotation{}, err
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = template.Name
	}
	actor := in.ActorID
	quotation, err := s.repo.Create(ctx, repository.NewQuotation{
		OrganizationID:  in.TenantID,
		LeadID:          in.LeadID,
		QuotationNumber: number,
		Version:         1,
		Title:           title,
		Status:          repository.StatusDraft,
		TemplateID:      &template.ID,
		CreatedBy:       &actor,
	})
	if err != nil {
		return MaterializedQuotation{}, err
	}

	summary := s.materializer.Materialize(ctx, in.TenantID, spaces, entries, quotation.ID)
	return MaterializedQuotation{Quotation: quotation, Summary: summary}, nil
}

// CopyBaseline creates the project-owned revision of a quotation: same
// number, next version, locked and linked to the project. A missing header
// or a non-empty source that yielded no rows is MATERIALIZATION_FAILED.
func (s *Service) CopyBaseline(ctx context.Context, in BaselineInput) (MaterializedQuotation, error) {
	source, err := s.repo.GetByID(ctx, in.SourceQuotationID, in.TenantID)
	if err != nil {
		return MaterializedQuotation{}, materializationFailed("load source quotation", err)
	}
	spaces, entries, err := s.repo.LoadQuotationSource(ctx, source.ID, in.TenantID)
	if err != nil {
		return MaterializedQuotation{}, materializationFailed("load source hierarchy", err)
	}
	version, err := s.repo.NextVersion(ctx, in.TenantID, source.QuotationNumber)
	if err != nil {
		return MaterializedQuotation{}, materializationFailed("allocate baseline version", err)
	}

	projectID := in.ProjectID
	sourceID := source.ID
	actor := in.ActorID
	baseline, err := s.repo.Create(ctx, repository.NewQuotation{
		OrganizationID:     in.TenantID,
		LeadID:             source.LeadID,
		ProjectID:          &projectID,
		QuotationNumber:    source.QuotationNumber,
		Version:            version,
		Title:              source.Title,
		Status:             repository.StatusLocked,
		LockedForProjectID: &projectID,
		SourceQuotationID:  &sourceID,
		TemplateID:         source.TemplateID,
		CreatedBy:          &actor,
	})
	if err != nil {
		return MaterializedQuotation{}, materializationFailed("create baseline quotation", err)
	}

	summary := s.materializer.Materialize(ctx, in.TenantID, spaces, entries, baseline.ID)
	if len(spaces)+len(entries) > 0 && summary.Total() == 0 {
		return MaterializedQuotation{}, materializationFailed("copy baseline rows",
			fmt.Errorf("source has %d spaces and %d line items but nothing was copied", len(spaces), len(entries)))
	}
	return MaterializedQuotation{Quotation: baseline, Summary: summary}, nil
}

func materializationFailed(step string, err error) error {
	return apperr.Wrap(apperr.KindInternal, "baseline quotation could not be materialized", err).
		WithOp(step).
		WithCode(apperr.CodeMaterializationFailed)
}

// GetByID returns a quotation header
func (s *Service) GetByID(ctx context.Context, tenantID, id uuid.UUID) (repository.Quotation, error) {
	return s.repo.GetByID(ctx, id, tenantID)
}

// LockForProject flags a quotation as locked for a project
func (s *Service) LockForProject(ctx context.Context, tenantID, quotationID, projectID uuid.UUID) error {
	return s.repo.LockForProject(ctx, quotationID, tenantID, projectID)
}

// CountRows counts a quotation's hierarchy rows
func (s *Service) CountRows(ctx context.Context, tenantID, quotationID uuid.UUID) (repository.RowCounts, error) {
	return s.repo.CountRows(ctx, quotationID, tenantID)
}
