package scheduler

import (
	"context"

	"studio_backend/internal/events"
	"studio_backend/platform/logger"
)

// SubscribeBaselineAudit schedules a baseline audit for every provisioned
// project.
func SubscribeBaselineAudit(bus events.Bus, sched BaselineAuditScheduler, log *logger.Logger) {
	bus.Subscribe(events.ProjectProvisioned{}.EventName(), events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		e, ok := event.(events.ProjectProvisioned)
		if !ok {
			return nil
		}
		err := sched.ScheduleBaselineAudit(ctx, BaselineAuditPayload{
			TenantID:            e.OrganizationID.String(),
			LeadID:              e.LeadID.String(),
			ProjectID:           e.ProjectID.String(),
			SourceQuotationID:   e.SourceQuotationID.String(),
			BaselineQuotationID: e.BaselineQuotationID.String(),
		})
		if err != nil {
			log.Warn("failed to schedule baseline audit", "projectId", e.ProjectID, "error", err)
		}
		return err
	}))
}
