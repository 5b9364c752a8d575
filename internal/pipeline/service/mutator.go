package service

import (
	"context"
	"errors"
	"time"

	"studio_backend/internal/events"
	"studio_backend/internal/pipeline/domain"
	"studio_backend/internal/pipeline/repository"
	"studio_backend/platform/apperr"
	"studio_backend/platform/logger"

	"github.com/google/uuid"
)

// StageChange is the input of LeadMutator.Apply.
type StageChange struct {
	Lead       repository.Lead
	To         domain.Stage
	Actor      Actor
	Requested  domain.Fields
	AssignedTo *uuid.UUID
	Property   PropertyResolution
}

// LeadMutator writes the stage change and its audit trail.
type LeadMutator struct {
	store    LeadStore
	eventBus events.Bus
	log      *logger.Logger
	now      func() time.Time
}

func NewLeadMutator(store LeadStore, eventBus events.Bus, log *logger.Logger) *LeadMutator {
	return &LeadMutator{store: store, eventBus: eventBus, log: log, now: time.Now}
}

// Apply writes the destination stage plus the stage-keyed projection of the
// request in one guarded update, then records the activity.
func (m *LeadMutator) Apply(ctx context.Context, change StageChange) (repository.Lead, error) {
	params := m.buildParams(change)

	lead, err := m.store.ApplyStageChange(ctx, params)
	if errors.Is(err, repository.ErrStageConflict) {
		return repository.Lead{}, apperr.Conflict("lead stage changed in the meantime, reload and try again")
	}
	if err != nil {
		return repository.Lead{}, err
	}

	m.recordActivity(ctx, change, lead)

	from := change.Lead.Stage
	changeReason := ""
	if v := stringValue(change.Requested, domain.FieldChangeReason); v != nil {
		changeReason = *v
	}
	m.eventBus.Publish(ctx, events.LeadStageChanged{
		BaseEvent:      events.NewBaseEvent(),
		LeadID:         lead.ID,
		OrganizationID: lead.OrganizationID,
		ActorID:        change.Actor.UserID,
		FromStage:      from,
		ToStage:        lead.Stage,
		ChangeReason:   changeReason,
	})

	return lead, nil
}

// AnnounceWon publishes LeadWon. It is called once the won stage stands:
// provisioning finished or was not required.
func (m *LeadMutator) AnnounceWon(ctx context.Context, actor Actor, lead repository.Lead) {
	if lead.WonQuotationID == nil {
		return
	}
	wonAmount := ""
	if lead.WonAmount.Valid {
		wonAmount = lead.WonAmount.Decimal.String()
	}
	m.eventBus.Publish(ctx, events.LeadWon{
		BaseEvent:      events.NewBaseEvent(),
		LeadID:         lead.ID,
		OrganizationID: lead.OrganizationID,
		ActorID:        actor.UserID,
		QuotationID:    *lead.WonQuotationID,
		WonAmount:      wonAmount,
	})
}

func (m *LeadMutator) buildParams(change StageChange) repository.StageChangeParams {
	now := m.now()
	req := change.Requested
	params := repository.StageChangeParams{
		LeadID:         change.Lead.ID,
		OrganizationID: change.Lead.OrganizationID,
		FromStage:      change.Lead.Stage,
		ToStage:        string(change.To),
	}
	if change.Property.Changed(change.Lead.PropertyID) {
		params.PropertyID = change.Property.PropertyID
	}

	for _, key := range domain.LeadProjection(change.To) {
		switch key {
		case domain.FieldServiceType:
			params.ServiceType = stringValue(req, key)
		case domain.FieldBudgetRange:
			params.BudgetRange = stringValue(req, key)
		case domain.FieldTargetStartDate:
			params.TargetStartDate = dateValue(req, key)
		case domain.FieldTargetEndDate:
			params.TargetEndDate = dateValue(req, key)
		case domain.FieldSelectedQuotationID:
			params.WonQuotationID = uuidValue(req, key)
		case domain.FieldWonAmount:
			params.WonAmount = decimalValue(req, key)
		case domain.FieldContractSignedDate:
			params.ContractSignedDate = dateValue(req, key)
		case domain.FieldExpectedProjectStart:
			params.ExpectedProjectStart = dateValue(req, key)
		case domain.FieldDisqualificationReason:
			params.DisqualificationReason = stringValue(req, key)
		case domain.FieldLostReason:
			params.LostReason = stringValue(req, key)
		case domain.FieldLostNotes:
			params.LostNotes = stringValue(req, key)
		}
	}

	switch change.To {
	case domain.StageQualified:
		assignee := change.Actor.UserID
		if change.AssignedTo != nil {
			assignee = *change.AssignedTo
		}
		actor := change.Actor.UserID
		params.AssignedTo = &assignee
		params.AssignedBy = &actor
		params.AssignedAt = &now
	case domain.StageWon:
		params.WonAt = &now
	case domain.StageLost:
		params.LostAt = &now
	case domain.StageDisqualified:
		params.DisqualifiedAt = &now
	}
	return params
}

func (m *LeadMutator) recordActivity(ctx context.Context, change StageChange, lead repository.Lead) {
	actor := change.Actor.UserID
	activity := repository.ActivityParams{
		OrganizationID: lead.OrganizationID,
		LeadID:         lead.ID,
		CreatedBy:      &actor,
		Metadata: map[string]interface{}{
			"fromStage": change.Lead.Stage,
			"toStage":   lead.Stage,
		},
	}
	reason := stringValue(change.Requested, domain.FieldChangeReason)

	switch change.To {
	case domain.StageWon:
		activity.ActivityType = repository.ActivityStageWon
		activity.Title = "Deal won"
		if lead.WonAmount.Valid {
			activity.Metadata["wonAmount"] = lead.WonAmount.Decimal.String()
		}
		if lead.WonQuotationID != nil {
			activity.Metadata["quotationId"] = lead.WonQuotationID.String()
		}
		activity.Body = reason
	case domain.StageLost:
		activity.ActivityType = repository.ActivityStageLost
		activity.Title = "Lead lost"
		activity.Metadata["lostReason"] = deref(lead.LostReason)
		activity.Body = lead.LostNotes
	case domain.StageDisqualified:
		activity.ActivityType = repository.ActivityStageDisqualified
		activity.Title = "Lead disqualified"
		activity.Metadata["disqualificationReason"] = deref(lead.DisqualificationReason)
		activity.Body = lead.DisqualificationReason
	default:
		if reason == nil {
			return
		}
		activity.ActivityType = repository.ActivityNote
		activity.Title = "Stage changed"
		activity.Body = reason
	}

	if err := m.store.AddActivity(ctx, activity); err != nil {
		m.log.WithContext(ctx).Warn("lead activity not recorded",
			"leadId", lead.ID, "activityType", activity.ActivityType, "error", err)
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
