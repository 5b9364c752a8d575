package adapters

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"studio_backend/internal/pipeline/ports"
	projectsrepo "studio_backend/internal/projects/repository"
	quotationsrepo "studio_backend/internal/quotations/repository"
	quotationsvc "studio_backend/internal/quotations/service"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
)

type fakeProjectService struct {
	err    error
	params projectsrepo.CreateFromLeadParams
}

func (f *fakeProjectService) CreateFromLead(_ context.Context, p projectsrepo.CreateFromLeadParams) (uuid.UUID, error) {
	f.params = p
	if f.err != nil {
		return uuid.Nil, f.err
	}
	return uuid.New(), nil
}

func (f *fakeProjectService) LinkBaseline(context.Context, uuid.UUID, uuid.UUID, uuid.UUID) error {
	return nil
}

func TestCreateProjectFromLeadMapsCollision(t *testing.T) {
	svc := &fakeProjectService{err: fmt.Errorf("%w: key exists", projectsrepo.ErrProjectNumberTaken)}
	adapter := NewProjectPortsAdapter(svc)

	_, err := adapter.CreateProjectFromLead(context.Background(), ports.CreateProjectInput{TenantID: uuid.New(), LeadID: uuid.New()})
	if !errors.Is(err, ports.ErrProjectNumberCollision) {
		t.Fatalf("expected collision, got %v", err)
	}
}

func TestCreateProjectFromLeadPassesOtherErrors(t *testing.T) {
	cause := errors.New("connection reset")
	adapter := NewProjectPortsAdapter(&fakeProjectService{err: cause})

	_, err := adapter.CreateProjectFromLead(context.Background(), ports.CreateProjectInput{})
	if errors.Is(err, ports.ErrProjectNumberCollision) || !errors.Is(err, cause) {
		t.Fatalf("expected the original error, got %v", err)
	}
}

func TestCreateProjectFromLeadMapsInput(t *testing.T) {
	svc := &fakeProjectService{}
	adapter := NewProjectPortsAdapter(svc)
	quotationID := uuid.New()
	priority := "high"
	input := ports.CreateProjectInput{
		TenantID:    uuid.New(),
		LeadID:      uuid.New(),
		ActorID:     uuid.New(),
		Category:    "modular",
		QuotationID: &quotationID,
		Priority:    &priority,
	}

	if _, err := adapter.CreateProjectFromLead(context.Background(), input); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := projectsrepo.CreateFromLeadParams{
		OrganizationID: input.TenantID,
		LeadID:         input.LeadID,
		CreatedBy:      input.ActorID,
		Category:       "modular",
		QuotationID:    &quotationID,
		Priority:       &priority,
	}
	if diff := cmp.Diff(want, svc.params); diff != "" {
		t.Fatalf("params mismatch (-want +got):\n%s", diff)
	}
}

type fakeQuotationService struct {
	quotation quotationsrepo.Quotation
	result    quotationsvc.MaterializedQuotation
	input     quotationsvc.BaselineInput
}

func (f *fakeQuotationService) GetByID(context.Context, uuid.UUID, uuid.UUID) (quotationsrepo.Quotation, error) {
	return f.quotation, nil
}

func (f *fakeQuotationService) LockForProject(context.Context, uuid.UUID, uuid.UUID, uuid.UUID) error {
	return nil
}

func (f *fakeQuotationService) CopyBaseline(_ context.Context, in quotationsvc.BaselineInput) (quotationsvc.MaterializedQuotation, error) {
	f.input = in
	return f.result, nil
}

func TestQuotationPortsAdapter(t *testing.T) {
	lockedFor := uuid.New()
	svc := &fakeQuotationService{
		quotation: quotationsrepo.Quotation{
			ID:                 uuid.New(),
			LeadID:             uuid.New(),
			Status:             "approved",
			QuotationNumber:    "QT-2026-0001",
			Version:            2,
			LockedForProjectID: &lockedFor,
		},
		result: quotationsvc.MaterializedQuotation{
			Quotation: quotationsrepo.Quotation{ID: uuid.New()},
			Summary:   quotationsvc.Summary{SpacesCreated: 2, ComponentsCreated: 1, LineItemsCreated: 5},
		},
	}
	adapter := NewQuotationPortsAdapter(svc)

	summary, err := adapter.GetQuotationSummary(context.Background(), uuid.New(), svc.quotation.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantSummary := ports.QuotationSummary{
		ID:                 svc.quotation.ID,
		LeadID:             svc.quotation.LeadID,
		Status:             "approved",
		QuotationNumber:    "QT-2026-0001",
		Version:            2,
		LockedForProjectID: &lockedFor,
	}
	if diff := cmp.Diff(wantSummary, summary); diff != "" {
		t.Fatalf("summary mismatch (-want +got):\n%s", diff)
	}

	input := ports.BaselineCopyInput{TenantID: uuid.New(), SourceQuotationID: uuid.New(), ProjectID: uuid.New(), ActorID: uuid.New()}
	copied, err := adapter.CopyBaseline(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if copied.BaselineQuotationID != svc.result.Quotation.ID || copied.LineItemsCreated != 5 {
		t.Fatalf("unexpected copy result %+v", copied)
	}
	if svc.input.ProjectID != input.ProjectID || svc.input.SourceQuotationID != input.SourceQuotationID {
		t.Fatalf("unexpected baseline input %+v", svc.input)
	}
}
