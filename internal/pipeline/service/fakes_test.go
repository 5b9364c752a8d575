package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"studio_backend/internal/events"
	"studio_backend/internal/pipeline/ports"
	"studio_backend/internal/pipeline/repository"
	"studio_backend/platform/apperr"
	"studio_backend/platform/config"
	"studio_backend/platform/logger"

	"github.com/google/uuid"
)

var (
	testTenantID = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	testUserID   = uuid.MustParse("22222222-2222-2222-2222-222222222222")
)

type fakeStore struct {
	mu         sync.Mutex
	leads      map[uuid.UUID]repository.Lead
	properties map[uuid.UUID]repository.Property

	applyCalls   []repository.StageChangeParams
	reverts      []string
	activities   []repository.ActivityParams
	createdProps []repository.PropertyParams
	createCity   string

	updatePropertyErr error
	createPropertyErr error
	applyErr          error
	activityErr       error
	// revertErrs[i] is returned by revert call i; later calls succeed.
	revertErrs  []error
	revertCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		leads:      map[uuid.UUID]repository.Lead{},
		properties: map[uuid.UUID]repository.Property{},
	}
}

func (f *fakeStore) addLead(lead repository.Lead) repository.Lead {
	if lead.ID == uuid.Nil {
		lead.ID = uuid.New()
	}
	lead.OrganizationID = testTenantID
	f.leads[lead.ID] = lead
	return lead
}

func (f *fakeStore) GetLead(_ context.Context, id uuid.UUID, organizationID uuid.UUID) (repository.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	lead, ok := f.leads[id]
	if !ok || lead.OrganizationID != organizationID {
		return repository.Lead{}, repository.ErrNotFound
	}
	return lead, nil
}

func (f *fakeStore) GetProperty(_ context.Context, id uuid.UUID, _ uuid.UUID) (repository.Property, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.properties[id]
	if !ok {
		return repository.Property{}, repository.ErrPropertyNotFound
	}
	return p, nil
}

func (f *fakeStore) ApplyStageChange(_ context.Context, params repository.StageChangeParams) (repository.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.applyCalls = append(f.applyCalls, params)
	if f.applyErr != nil {
		return repository.Lead{}, f.applyErr
	}
	lead, ok := f.leads[params.LeadID]
	if !ok || lead.Stage != params.FromStage {
		return repository.Lead{}, repository.ErrStageConflict
	}
	lead.Stage = params.ToStage
	if params.PropertyID != nil {
		lead.PropertyID = params.PropertyID
	}
	if params.AssignedTo != nil {
		lead.AssignedTo = params.AssignedTo
		lead.AssignedBy = params.AssignedBy
		lead.AssignedAt = params.AssignedAt
	}
	if params.ServiceType != nil {
		lead.ServiceType = params.ServiceType
	}
	if params.WonQuotationID != nil {
		lead.WonQuotationID = params.WonQuotationID
	}
	if params.WonAmount != nil {
		lead.WonAmount.Decimal = *params.WonAmount
		lead.WonAmount.Valid = true
	}
	if params.ExpectedProjectStart != nil {
		lead.ExpectedProjectStart = params.ExpectedProjectStart
	}
	if params.WonAt != nil {
		lead.WonAt = params.WonAt
	}
	if params.DisqualificationReason != nil {
		lead.DisqualificationReason = params.DisqualificationReason
		lead.DisqualifiedAt = params.DisqualifiedAt
	}
	if params.LostReason != nil {
		lead.LostReason = params.LostReason
		lead.LostNotes = params.LostNotes
		lead.LostAt = params.LostAt
	}
	f.leads[lead.ID] = lead
	return lead, nil
}

func (f *fakeStore) RevertStage(_ context.Context, leadID, _ uuid.UUID, current, restoreTo string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.revertCalls++
	if f.revertCalls <= len(f.revertErrs) && f.revertErrs[f.revertCalls-1] != nil {
		return f.revertErrs[f.revertCalls-1]
	}
	lead, ok := f.leads[leadID]
	if !ok || lead.Stage != current {
		return repository.ErrStageConflict
	}
	lead.Stage = restoreTo
	f.leads[leadID] = lead
	f.reverts = append(f.reverts, restoreTo)
	return nil
}

func (f *fakeStore) AddActivity(_ context.Context, params repository.ActivityParams) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.activityErr != nil {
		return f.activityErr
	}
	f.activities = append(f.activities, params)
	return nil
}

func (f *fakeStore) CreateProperty(_ context.Context, _ uuid.UUID, city string, params repository.PropertyParams) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createPropertyErr != nil {
		return uuid.Nil, f.createPropertyErr
	}
	f.createdProps = append(f.createdProps, params)
	f.createCity = city
	id := uuid.New()
	f.properties[id] = repository.Property{ID: id, OrganizationID: testTenantID, City: city}
	return id, nil
}

func (f *fakeStore) UpdateProperty(_ context.Context, _ uuid.UUID, _ uuid.UUID, _ repository.PropertyParams) error {
	return f.updatePropertyErr
}

func (f *fakeStore) stageOf(id uuid.UUID) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.leads[id].Stage
}

type fakeAuthorizer struct {
	allowed bool
	calls   int
}

func (f *fakeAuthorizer) HasCapability(context.Context, uuid.UUID, uuid.UUID, []string, string) (bool, error) {
	f.calls++
	return f.allowed, nil
}

type fakeQuotes struct {
	quotations map[uuid.UUID]ports.QuotationSummary
}

func (f *fakeQuotes) GetQuotationSummary(_ context.Context, _ uuid.UUID, quotationID uuid.UUID) (ports.QuotationSummary, error) {
	q, ok := f.quotations[quotationID]
	if !ok {
		return ports.QuotationSummary{}, apperr.NotFound("quotation not found")
	}
	return q, nil
}

type fakeSettings struct {
	enabled bool
	err     error
}

func (f fakeSettings) AutoCreateProjectOnWon(context.Context, uuid.UUID) (bool, error) {
	return f.enabled, f.err
}

// fakeProjects returns errs[i] on call i and succeeds once errs is exhausted.
type fakeProjects struct {
	errs    []error
	calls   int
	created []uuid.UUID
	inputs  []ports.CreateProjectInput
}

func (f *fakeProjects) CreateProjectFromLead(_ context.Context, input ports.CreateProjectInput) (uuid.UUID, error) {
	f.calls++
	f.inputs = append(f.inputs, input)
	if f.calls <= len(f.errs) && f.errs[f.calls-1] != nil {
		return uuid.Nil, f.errs[f.calls-1]
	}
	id := uuid.New()
	f.created = append(f.created, id)
	return id, nil
}

type fakeLocker struct {
	err   error
	calls int
}

func (f *fakeLocker) LockForProject(context.Context, uuid.UUID, uuid.UUID, uuid.UUID) error {
	f.calls++
	return f.err
}

type fakeCopier struct {
	err   error
	calls int
}

func (f *fakeCopier) CopyBaseline(_ context.Context, input ports.BaselineCopyInput) (ports.BaselineCopyResult, error) {
	f.calls++
	if f.err != nil {
		return ports.BaselineCopyResult{}, f.err
	}
	return ports.BaselineCopyResult{BaselineQuotationID: uuid.New(), SpacesCreated: 2, ComponentsCreated: 1, LineItemsCreated: 5}, nil
}

type fakeLinker struct {
	err   error
	calls int
}

func (f *fakeLinker) LinkBaseline(context.Context, uuid.UUID, uuid.UUID, uuid.UUID) error {
	f.calls++
	return f.err
}

type recordingBus struct {
	mu     sync.Mutex
	events []events.Event
}

func (b *recordingBus) Publish(_ context.Context, event events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
}

func (b *recordingBus) PublishSync(ctx context.Context, event events.Event) error {
	b.Publish(ctx, event)
	return nil
}

func (b *recordingBus) Subscribe(string, events.Handler) {}

func (b *recordingBus) names() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.events))
	for i, e := range b.events {
		out[i] = e.EventName()
	}
	return out
}

var errCollision = errors.Join(ports.ErrProjectNumberCollision, errors.New("duplicate key value violates unique constraint"))

type harness struct {
	svc      *Service
	store    *fakeStore
	auth     *fakeAuthorizer
	quotes   *fakeQuotes
	projects *fakeProjects
	locker   *fakeLocker
	copier   *fakeCopier
	linker   *fakeLinker
	bus      *recordingBus
	sleeps   []time.Duration
}

func newHarness(settings fakeSettings) *harness {
	h := &harness{
		store:    newFakeStore(),
		auth:     &fakeAuthorizer{allowed: true},
		quotes:   &fakeQuotes{quotations: map[uuid.UUID]ports.QuotationSummary{}},
		projects: &fakeProjects{},
		locker:   &fakeLocker{},
		copier:   &fakeCopier{},
		linker:   &fakeLinker{},
		bus:      &recordingBus{},
	}
	log := logger.Nop()
	h.svc = New(h.store, h.bus, log)
	h.svc.SetAuthorizer(h.auth)
	h.svc.SetQuotationReader(h.quotes)

	cfg := &config.Config{ProjectCreateMaxAttempt: 3, ProjectCreateBackoff: 100 * time.Millisecond}
	prov := NewProvisioner(ProvisionerDeps{
		Settings: settings,
		Projects: h.projects,
		Locker:   h.locker,
		Copier:   h.copier,
		Linker:   h.linker,
		Reverter: h.store,
		EventBus: h.bus,
	}, cfg, log)
	prov.sleep = func(_ context.Context, d time.Duration) error {
		h.sleeps = append(h.sleeps, d)
		return nil
	}
	h.svc.SetProvisioner(prov)
	return h
}

func (h *harness) actor() Actor {
	return Actor{TenantID: testTenantID, UserID: testUserID, Roles: []string{"sales"}}
}

func (h *harness) approvedQuotation(leadID uuid.UUID) uuid.UUID {
	id := uuid.New()
	h.quotes.quotations[id] = ports.QuotationSummary{ID: id, LeadID: leadID, Status: "approved", QuotationNumber: "QT-0001", Version: 1}
	return id
}
