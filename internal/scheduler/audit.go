package scheduler

import (
	"context"
	"fmt"

	pipelinerepo "studio_backend/internal/pipeline/repository"
	quotationsrepo "studio_backend/internal/quotations/repository"
	"studio_backend/platform/logger"

	"github.com/google/uuid"
)

// RowCounter counts the hierarchy rows of a quotation.
type RowCounter interface {
	CountRows(ctx context.Context, tenantID, quotationID uuid.UUID) (quotationsrepo.RowCounts, error)
}

// ActivityWriter records lead activities.
type ActivityWriter interface {
	AddActivity(ctx context.Context, params pipelinerepo.ActivityParams) error
}

// BaselineAuditor compares a baseline quotation with its source and records
// a lead activity when rows were skipped during materialization.
type BaselineAuditor struct {
	counter    RowCounter
	activities ActivityWriter
	log        *logger.Logger
}

func NewBaselineAuditor(counter RowCounter, activities ActivityWriter, log *logger.Logger) *BaselineAuditor {
	return &BaselineAuditor{counter: counter, activities: activities, log: log}
}

// AuditResult reports the row counts that were compared.
type AuditResult struct {
	Source   quotationsrepo.RowCounts
	Baseline quotationsrepo.RowCounts
	Gap      bool
}

// Audit checks spaces and line items. Component counts are not compared since
// the copy regroups line items.
func (a *BaselineAuditor) Audit(ctx context.Context, payload BaselineAuditPayload) (AuditResult, error) {
	ids, err := parseAuditIDs(payload)
	if err != nil {
		return AuditResult{}, err
	}

	source, err := a.counter.CountRows(ctx, ids.tenant, ids.source)
	if err != nil {
		return AuditResult{}, fmt.Errorf("count source rows: %w", err)
	}
	baseline, err := a.counter.CountRows(ctx, ids.tenant, ids.baseline)
	if err != nil {
		return AuditResult{}, fmt.Errorf("count baseline rows: %w", err)
	}

	result := AuditResult{
		Source:   source,
		Baseline: baseline,
		Gap:      baseline.Spaces < source.Spaces || baseline.LineItems < source.LineItems,
	}
	if !result.Gap {
		a.log.Info("baseline audit passed", "projectId", ids.project, "lineItems", baseline.LineItems)
		return result, nil
	}

	a.log.Warn("baseline audit found missing rows",
		"projectId", ids.project,
		"sourceSpaces", source.Spaces, "baselineSpaces", baseline.Spaces,
		"sourceLineItems", source.LineItems, "baselineLineItems", baseline.LineItems,
	)
	err = a.activities.AddActivity(ctx, pipelinerepo.ActivityParams{
		OrganizationID: ids.tenant,
		LeadID:         ids.lead,
		ActivityType:   pipelinerepo.ActivityBaselineGap,
		Title:          "Project baseline is incomplete",
		Metadata: map[string]interface{}{
			"projectId":           ids.project.String(),
			"sourceQuotationId":   ids.source.String(),
			"baselineQuotationId": ids.baseline.String(),
			"missingSpaces":       source.Spaces - baseline.Spaces,
			"missingLineItems":    source.LineItems - baseline.LineItems,
		},
	})
	if err != nil {
		return result, fmt.Errorf("record baseline gap: %w", err)
	}
	return result, nil
}

type auditIDs struct {
	tenant, lead, project, source, baseline uuid.UUID
}

func parseAuditIDs(p BaselineAuditPayload) (auditIDs, error) {
	var ids auditIDs
	for _, f := range []struct {
		name  string
		value string
		dst   *uuid.UUID
	}{
		{"tenantId", p.TenantID, &ids.tenant},
		{"leadId", p.LeadID, &ids.lead},
		{"projectId", p.ProjectID, &ids.project},
		{"sourceQuotationId", p.SourceQuotationID, &ids.source},
		{"baselineQuotationId", p.BaselineQuotationID, &ids.baseline},
	} {
		id, err := uuid.Parse(f.value)
		if err != nil {
			return auditIDs{}, fmt.Errorf("invalid %s: %w", f.name, err)
		}
		*f.dst = id
	}
	return ids, nil
}
