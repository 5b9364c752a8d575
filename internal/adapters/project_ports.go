package adapters

import (
	"context"
	"errors"
	"fmt"

	"studio_backend/internal/pipeline/ports"
	projectsrepo "studio_backend/internal/projects/repository"
	projectsvc "studio_backend/internal/projects/service"

	"github.com/google/uuid"
)

// ProjectService is the narrow slice of the projects service used by the
// won saga.
type ProjectService interface {
	CreateFromLead(ctx context.Context, p projectsrepo.CreateFromLeadParams) (uuid.UUID, error)
	LinkBaseline(ctx context.Context, tenantID, projectID, baselineQuotationID uuid.UUID) error
}

var _ ProjectService = (*projectsvc.Service)(nil)

// ProjectPortsAdapter implements ports.ProjectCreator and ports.ProjectLinker.
type ProjectPortsAdapter struct {
	svc ProjectService
}

// NewProjectPortsAdapter creates a new adapter.
func NewProjectPortsAdapter(svc ProjectService) *ProjectPortsAdapter {
	return &ProjectPortsAdapter{svc: svc}
}

// CreateProjectFromLead creates the project and translates a project number
// collision into the pipeline's retryable error.
func (a *ProjectPortsAdapter) CreateProjectFromLead(ctx context.Context, input ports.CreateProjectInput) (uuid.UUID, error) {
	id, err := a.svc.CreateFromLead(ctx, projectsrepo.CreateFromLeadParams{
		OrganizationID:   input.TenantID,
		LeadID:           input.LeadID,
		CreatedBy:        input.ActorID,
		Category:         input.Category,
		QuotationID:      input.QuotationID,
		ProjectManagerID: input.ProjectManagerID,
		Priority:         input.Priority,
		StartDate:        input.StartDate,
		ExpectedEndDate:  input.ExpectedEndDate,
	})
	if errors.Is(err, projectsrepo.ErrProjectNumberTaken) {
		return uuid.Nil, fmt.Errorf("%w: %v", ports.ErrProjectNumberCollision, err)
	}
	return id, err
}

// LinkBaseline makes the baseline copy the project's quotation and baseline.
func (a *ProjectPortsAdapter) LinkBaseline(ctx context.Context, tenantID, projectID, baselineQuotationID uuid.UUID) error {
	return a.svc.LinkBaseline(ctx, tenantID, projectID, baselineQuotationID)
}

var (
	_ ports.ProjectCreator = (*ProjectPortsAdapter)(nil)
	_ ports.ProjectLinker  = (*ProjectPortsAdapter)(nil)
)
