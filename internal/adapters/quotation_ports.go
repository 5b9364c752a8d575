package adapters

import (
	"context"

	"studio_backend/internal/pipeline/ports"
	quotationsrepo "studio_backend/internal/quotations/repository"
	quotationsvc "studio_backend/internal/quotations/service"

	"github.com/google/uuid"
)

// QuotationService is the narrow slice of the quotations service the
// pipeline reaches through this adapter.
type QuotationService interface {
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (quotationsrepo.Quotation, error)
	LockForProject(ctx context.Context, tenantID, quotationID, projectID uuid.UUID) error
	CopyBaseline(ctx context.Context, in quotationsvc.BaselineInput) (quotationsvc.MaterializedQuotation, error)
}

var _ QuotationService = (*quotationsvc.Service)(nil)

// QuotationPortsAdapter implements the pipeline's quotation ports on top of
// the quotations module.
type QuotationPortsAdapter struct {
	svc QuotationService
}

// NewQuotationPortsAdapter creates a new adapter.
func NewQuotationPortsAdapter(svc QuotationService) *QuotationPortsAdapter {
	return &QuotationPortsAdapter{svc: svc}
}

// GetQuotationSummary returns the fields used for won eligibility.
func (a *QuotationPortsAdapter) GetQuotationSummary(ctx context.Context, tenantID, quotationID uuid.UUID) (ports.QuotationSummary, error) {
	q, err := a.svc.GetByID(ctx, tenantID, quotationID)
	if err != nil {
		return ports.QuotationSummary{}, err
	}
	return ports.QuotationSummary{
		ID:                 q.ID,
		LeadID:             q.LeadID,
		Status:             q.Status,
		QuotationNumber:    q.QuotationNumber,
		Version:            q.Version,
		LockedForProjectID: q.LockedForProjectID,
	}, nil
}

// LockForProject marks the selected quotation as locked for the project.
func (a *QuotationPortsAdapter) LockForProject(ctx context.Context, tenantID, quotationID, projectID uuid.UUID) error {
	return a.svc.LockForProject(ctx, tenantID, quotationID, projectID)
}

// CopyBaseline materializes the project baseline.
func (a *QuotationPortsAdapter) CopyBaseline(ctx context.Context, input ports.BaselineCopyInput) (ports.BaselineCopyResult, error) {
	result, err := a.svc.CopyBaseline(ctx, quotationsvc.BaselineInput{
		TenantID:          input.TenantID,
		SourceQuotationID: input.SourceQuotationID,
		ProjectID:         input.ProjectID,
		ActorID:           input.ActorID,
	})
	if err != nil {
		return ports.BaselineCopyResult{}, err
	}
	return ports.BaselineCopyResult{
		BaselineQuotationID: result.Quotation.ID,
		SpacesCreated:       result.Summary.SpacesCreated,
		ComponentsCreated:   result.Summary.ComponentsCreated,
		LineItemsCreated:    result.Summary.LineItemsCreated,
	}, nil
}

// Compile-time checks.
var (
	_ ports.QuotationReader = (*QuotationPortsAdapter)(nil)
	_ ports.QuotationLocker = (*QuotationPortsAdapter)(nil)
	_ ports.BaselineCopier  = (*QuotationPortsAdapter)(nil)
)
