package scheduler

import (
	"context"
	"errors"
	"testing"

	"studio_backend/internal/events"
	pipelinerepo "studio_backend/internal/pipeline/repository"
	quotationsrepo "studio_backend/internal/quotations/repository"
	"studio_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

type fakeCounter map[uuid.UUID]quotationsrepo.RowCounts

func (f fakeCounter) CountRows(_ context.Context, _ uuid.UUID, id uuid.UUID) (quotationsrepo.RowCounts, error) {
	counts, ok := f[id]
	if !ok {
		return quotationsrepo.RowCounts{}, errors.New("unknown quotation")
	}
	return counts, nil
}

type fakeActivities struct {
	written []pipelinerepo.ActivityParams
}

func (f *fakeActivities) AddActivity(_ context.Context, p pipelinerepo.ActivityParams) error {
	f.written = append(f.written, p)
	return nil
}

func auditPayload(source, baseline uuid.UUID) BaselineAuditPayload {
	return BaselineAuditPayload{
		TenantID:            uuid.NewString(),
		LeadID:              uuid.NewString(),
		ProjectID:           uuid.NewString(),
		SourceQuotationID:   source.String(),
		BaselineQuotationID: baseline.String(),
	}
}

func TestBaselineAuditRecordsGap(t *testing.T) {
	source, baseline := uuid.New(), uuid.New()
	counter := fakeCounter{
		source:   {Spaces: 2, Components: 1, LineItems: 5},
		baseline: {Spaces: 2, Components: 1, LineItems: 4},
	}
	activities := &fakeActivities{}
	auditor := NewBaselineAuditor(counter, activities, logger.Nop())

	result, err := auditor.Audit(context.Background(), auditPayload(source, baseline))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Gap {
		t.Fatal("expected a gap")
	}
	if len(activities.written) != 1 || activities.written[0].ActivityType != pipelinerepo.ActivityBaselineGap {
		t.Fatalf("expected one baseline_gap activity, got %+v", activities.written)
	}
	if got := activities.written[0].Metadata["missingLineItems"]; got != 1 {
		t.Fatalf("expected 1 missing line item, got %v", got)
	}
}

func TestBaselineAuditCompleteCopy(t *testing.T) {
	source, baseline := uuid.New(), uuid.New()
	counter := fakeCounter{
		source:   {Spaces: 2, Components: 2, LineItems: 5},
		baseline: {Spaces: 2, Components: 1, LineItems: 5},
	}
	activities := &fakeActivities{}

	result, err := NewBaselineAuditor(counter, activities, logger.Nop()).Audit(context.Background(), auditPayload(source, baseline))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Gap || len(activities.written) != 0 {
		t.Fatalf("expected no gap, got %+v and %d activities", result, len(activities.written))
	}
}

func TestBaselineAuditRejectsInvalidPayload(t *testing.T) {
	payload := auditPayload(uuid.New(), uuid.New())
	payload.ProjectID = "not-a-uuid"

	_, err := NewBaselineAuditor(fakeCounter{}, &fakeActivities{}, logger.Nop()).Audit(context.Background(), payload)
	if err == nil {
		t.Fatal("expected error for invalid project id")
	}
}

func TestBaselineAuditTaskPayload(t *testing.T) {
	payload := auditPayload(uuid.New(), uuid.New())
	task, err := NewBaselineAuditTask(payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task.Type() != TaskBaselineAudit {
		t.Fatalf("unexpected task type %s", task.Type())
	}
	parsed, err := ParseBaselineAuditPayload(task)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parsed != payload {
		t.Fatalf("payload mismatch: %+v vs %+v", parsed, payload)
	}
	if _, err := ParseBaselineAuditPayload(asynq.NewTask(TaskBaselineAudit, []byte("{"))); err == nil {
		t.Fatal("expected error for malformed payload")
	}
}

type recordingScheduler struct {
	payloads []BaselineAuditPayload
}

func (r *recordingScheduler) ScheduleBaselineAudit(_ context.Context, p BaselineAuditPayload) error {
	r.payloads = append(r.payloads, p)
	return nil
}

func TestSubscribeBaselineAuditSchedulesOnProvisioned(t *testing.T) {
	bus := events.NewInMemoryBus(logger.Nop())
	sched := &recordingScheduler{}
	SubscribeBaselineAudit(bus, sched, logger.Nop())

	evt := events.ProjectProvisioned{
		BaseEvent:           events.NewBaseEvent(),
		LeadID:              uuid.New(),
		OrganizationID:      uuid.New(),
		ProjectID:           uuid.New(),
		SourceQuotationID:   uuid.New(),
		BaselineQuotationID: uuid.New(),
	}
	if err := bus.PublishSync(context.Background(), evt); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(sched.payloads) != 1 {
		t.Fatalf("expected 1 scheduled audit, got %d", len(sched.payloads))
	}
	if sched.payloads[0].ProjectID != evt.ProjectID.String() {
		t.Fatalf("unexpected project id %s", sched.payloads[0].ProjectID)
	}
}
