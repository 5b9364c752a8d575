package service

import (
	"context"
	"errors"
	"testing"

	"studio_backend/internal/quotations/repository"
	"studio_backend/platform/apperr"
	"studio_backend/platform/logger"

	"github.com/google/uuid"
)

func seedSource(store *fakeStore, org uuid.UUID) repository.Quotation {
	source := repository.Quotation{
		ID:              uuid.New(),
		OrganizationID:  org,
		LeadID:          uuid.New(),
		QuotationNumber: "QT-2026-0007",
		Version:         1,
		Title:           "Kitchen remodel",
		Status:          repository.StatusApproved,
	}
	store.quotations[source.ID] = source
	fx := twoSpacesFiveEntries()
	store.sourceSpaces = fx.spaces
	store.sourceEntries = fx.entries
	return source
}

func TestCopyBaselineCreatesLockedRevision(t *testing.T) {
	org := uuid.New()
	store := newFakeStore()
	store.nextVersion = 3
	source := seedSource(store, org)
	projectID := uuid.New()
	svc := New(store, logger.Nop())

	result, err := svc.CopyBaseline(context.Background(), BaselineInput{
		TenantID:          org,
		SourceQuotationID: source.ID,
		ProjectID:         projectID,
		ActorID:           uuid.New(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	baseline := result.Quotation
	if baseline.QuotationNumber != source.QuotationNumber || baseline.Version != 3 {
		t.Fatalf("expected %s v3, got %s v%d", source.QuotationNumber, baseline.QuotationNumber, baseline.Version)
	}
	if baseline.Status != repository.StatusLocked {
		t.Fatalf("expected locked status, got %s", baseline.Status)
	}
	if baseline.ProjectID == nil || *baseline.ProjectID != projectID {
		t.Fatal("baseline must reference the project")
	}
	if baseline.LockedForProjectID == nil || *baseline.LockedForProjectID != projectID {
		t.Fatal("baseline must be locked for the project")
	}
	if baseline.SourceQuotationID == nil || *baseline.SourceQuotationID != source.ID {
		t.Fatal("baseline must reference its source")
	}
	if baseline.LeadID != source.LeadID {
		t.Fatal("baseline must keep the source lead")
	}
	if result.Summary.SpacesCreated != 2 || result.Summary.ComponentsCreated != 1 || result.Summary.LineItemsCreated != 5 {
		t.Fatalf("unexpected summary %+v", result.Summary)
	}
}

func TestCopyBaselineHeaderFailure(t *testing.T) {
	org := uuid.New()
	store := newFakeStore()
	source := seedSource(store, org)
	store.failCreate = errors.New("unique violation")
	svc := New(store, logger.Nop())

	_, err := svc.CopyBaseline(context.Background(), BaselineInput{TenantID: org, SourceQuotationID: source.ID, ProjectID: uuid.New()})
	if !apperr.HasCode(err, apperr.CodeMaterializationFailed) {
		t.Fatalf("expected %s, got %v", apperr.CodeMaterializationFailed, err)
	}
}

func TestCopyBaselineMissingSource(t *testing.T) {
	store := newFakeStore()
	svc := New(store, logger.Nop())

	_, err := svc.CopyBaseline(context.Background(), BaselineInput{TenantID: uuid.New(), SourceQuotationID: uuid.New(), ProjectID: uuid.New()})
	if !apperr.HasCode(err, apperr.CodeMaterializationFailed) {
		t.Fatalf("expected %s, got %v", apperr.CodeMaterializationFailed, err)
	}
}

func TestCopyBaselineNothingCopied(t *testing.T) {
	org := uuid.New()
	store := newFakeStore()
	source := seedSource(store, org)
	store.failAllRows = true
	svc := New(store, logger.Nop())

	_, err := svc.CopyBaseline(context.Background(), BaselineInput{TenantID: org, SourceQuotationID: source.ID, ProjectID: uuid.New()})
	if !apperr.HasCode(err, apperr.CodeMaterializationFailed) {
		t.Fatalf("expected %s, got %v", apperr.CodeMaterializationFailed, err)
	}
}

func TestCopyBaselineEmptySourceSucceeds(t *testing.T) {
	org := uuid.New()
	store := newFakeStore()
	source := seedSource(store, org)
	store.sourceSpaces = nil
	store.sourceEntries = nil
	svc := New(store, logger.Nop())

	result, err := svc.CopyBaseline(context.Background(), BaselineInput{TenantID: org, SourceQuotationID: source.ID, ProjectID: uuid.New()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Summary.Total() != 0 {
		t.Fatalf("expected empty summary, got %+v", result.Summary)
	}
}

func TestCreateFromTemplate(t *testing.T) {
	org := uuid.New()
	store := newFakeStore()
	store.template = repository.Template{ID: uuid.New(), Name: "Standard 2BHK"}
	fx := twoSpacesFiveEntries()
	store.sourceSpaces = fx.spaces
	store.sourceEntries = fx.entries
	svc := New(store, logger.Nop())

	result, err := svc.CreateFromTemplate(context.Background(), CreateFromTemplateInput{
		TenantID:   org,
		ActorID:    uuid.New(),
		LeadID:     uuid.New(),
		TemplateID: store.template.ID,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	q := result.Quotation
	if q.Status != repository.StatusDraft || q.Version != 1 {
		t.Fatalf("expected draft v1, got %s v%d", q.Status, q.Version)
	}
	if q.Title != "Standard 2BHK" {
		t.Fatalf("expected template name as title, got %q", q.Title)
	}
	if q.TemplateID == nil || *q.TemplateID != store.template.ID {
		t.Fatal("quotation must reference its template")
	}
	if result.Summary.LineItemsCreated != 5 {
		t.Fatalf("expected 5 line items, got %d", result.Summary.LineItemsCreated)
	}
}

func TestCreateFromTemplateUnknownLead(t *testing.T) {
	store := newFakeStore()
	store.leadExists = false
	svc := New(store, logger.Nop())

	_, err := svc.CreateFromTemplate(context.Background(), CreateFromTemplateInput{TenantID: uuid.New(), LeadID: uuid.New(), TemplateID: uuid.New()})
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if len(store.headers) != 0 {
		t.Fatal("no quotation should be created")
	}
}

func TestBuildTreeNestsRows(t *testing.T) {
	q := repository.Quotation{ID: uuid.New()}
	space := repository.Space{ID: uuid.New(), Name: "Kitchen"}
	comp := repository.Component{ID: uuid.New(), SpaceID: space.ID, Name: "Base Cabinets"}
	items := []repository.LineItem{
		{ID: uuid.New(), SpaceID: &space.ID, ComponentID: &comp.ID, Name: "Carcass"},
		{ID: uuid.New(), SpaceID: &space.ID, Name: "Painting"},
		{ID: uuid.New(), Name: "Delivery"},
	}

	tree := buildTree(q, []repository.Space{space}, []repository.Component{comp}, items)

	if len(tree.Spaces) != 1 || len(tree.Spaces[0].Components) != 1 {
		t.Fatalf("unexpected tree shape %+v", tree)
	}
	if got := tree.Spaces[0].Components[0].LineItems; len(got) != 1 || got[0].Name != "Carcass" {
		t.Fatalf("unexpected component items %+v", got)
	}
	if got := tree.Spaces[0].LineItems; len(got) != 1 || got[0].Name != "Painting" {
		t.Fatalf("unexpected space items %+v", got)
	}
	if len(tree.Unassigned) != 1 || tree.Unassigned[0].Name != "Delivery" {
		t.Fatalf("unexpected unassigned items %+v", tree.Unassigned)
	}
}
