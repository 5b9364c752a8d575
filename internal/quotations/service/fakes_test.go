package service

import (
	"context"
	"errors"
	"sync"

	"studio_backend/internal/quotations/repository"
	"studio_backend/platform/apperr"

	"github.com/google/uuid"
)

var errInsert = errors.New("insert failed")

// fakeStore records every write and can fail individual inserts by name.
type fakeStore struct {
	mu sync.Mutex

	spaces     []repository.NewSpace
	components []repository.NewComponent
	lineItems  []repository.NewLineItem
	headers    []repository.NewQuotation

	failSpaces     map[string]bool
	failComponents bool
	failLineItems  map[string]bool
	failAllRows    bool
	failCreate     error

	quotations     map[uuid.UUID]repository.Quotation
	leadExists     bool
	template       repository.Template
	sourceSpaces   []repository.SourceSpace
	sourceEntries  []repository.SourceEntry
	nextVersion    int
	lockedProjects map[uuid.UUID]uuid.UUID
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		failSpaces:     map[string]bool{},
		failLineItems:  map[string]bool{},
		quotations:     map[uuid.UUID]repository.Quotation{},
		leadExists:     true,
		nextVersion:    2,
		lockedProjects: map[uuid.UUID]uuid.UUID{},
	}
}

func (f *fakeStore) CreateSpace(_ context.Context, s repository.NewSpace) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAllRows || f.failSpaces[s.Name] {
		return uuid.Nil, errInsert
	}
	f.spaces = append(f.spaces, s)
	return uuid.New(), nil
}

func (f *fakeStore) CreateComponent(_ context.Context, c repository.NewComponent) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAllRows || f.failComponents {
		return uuid.Nil, errInsert
	}
	f.components = append(f.components, c)
	return uuid.New(), nil
}

func (f *fakeStore) CreateLineItem(_ context.Context, li repository.NewLineItem) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAllRows || f.failLineItems[li.Name] {
		return uuid.Nil, errInsert
	}
	f.lineItems = append(f.lineItems, li)
	return uuid.New(), nil
}

func (f *fakeStore) NextQuotationNumber(context.Context, uuid.UUID) (string, error) {
	return "QT-2026-0001", nil
}

func (f *fakeStore) NextVersion(context.Context, uuid.UUID, string) (int, error) {
	return f.nextVersion, nil
}

func (f *fakeStore) Create(_ context.Context, q repository.NewQuotation) (repository.Quotation, error) {
	if f.failCreate != nil {
		return repository.Quotation{}, f.failCreate
	}
	f.headers = append(f.headers, q)
	created := repository.Quotation{
		ID:                 uuid.New(),
		OrganizationID:     q.OrganizationID,
		LeadID:             q.LeadID,
		ProjectID:          q.ProjectID,
		QuotationNumber:    q.QuotationNumber,
		Version:            q.Version,
		Title:              q.Title,
		Status:             q.Status,
		LockedForProjectID: q.LockedForProjectID,
		SourceQuotationID:  q.SourceQuotationID,
		TemplateID:         q.TemplateID,
		CreatedBy:          q.CreatedBy,
	}
	f.quotations[created.ID] = created
	return created, nil
}

func (f *fakeStore) GetByID(_ context.Context, id uuid.UUID, _ uuid.UUID) (repository.Quotation, error) {
	q, ok := f.quotations[id]
	if !ok {
		return repository.Quotation{}, apperr.NotFound("quotation not found")
	}
	return q, nil
}

func (f *fakeStore) LockForProject(_ context.Context, id uuid.UUID, _ uuid.UUID, projectID uuid.UUID) error {
	if _, ok := f.quotations[id]; !ok {
		return apperr.NotFound("quotation not found")
	}
	f.lockedProjects[id] = projectID
	return nil
}

func (f *fakeStore) LeadExists(context.Context, uuid.UUID, uuid.UUID) (bool, error) {
	return f.leadExists, nil
}

func (f *fakeStore) GetTemplate(_ context.Context, id uuid.UUID, _ uuid.UUID) (repository.Template, error) {
	if f.template.ID != id {
		return repository.Template{}, apperr.NotFound("quotation template not found")
	}
	return f.template, nil
}

func (f *fakeStore) LoadTemplateSource(context.Context, uuid.UUID, uuid.UUID) ([]repository.SourceSpace, []repository.SourceEntry, error) {
	return f.sourceSpaces, f.sourceEntries, nil
}

func (f *fakeStore) LoadQuotationSource(context.Context, uuid.UUID, uuid.UUID) ([]repository.SourceSpace, []repository.SourceEntry, error) {
	return f.sourceSpaces, f.sourceEntries, nil
}

func (f *fakeStore) ListSpaces(context.Context, uuid.UUID, uuid.UUID) ([]repository.Space, error) {
	return nil, nil
}

func (f *fakeStore) ListComponents(context.Context, uuid.UUID, uuid.UUID) ([]repository.Component, error) {
	return nil, nil
}

func (f *fakeStore) ListLineItems(context.Context, uuid.UUID, uuid.UUID) ([]repository.LineItem, error) {
	return nil, nil
}

func (f *fakeStore) CountRows(context.Context, uuid.UUID, uuid.UUID) (repository.RowCounts, error) {
	return repository.RowCounts{
		Spaces:     len(f.spaces),
		Components: len(f.components),
		LineItems:  len(f.lineItems),
	}, nil
}

func ptr[T any](v T) *T { return &v }
