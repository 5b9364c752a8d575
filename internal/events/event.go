// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"studio_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Pipeline Domain Events
// =============================================================================

// LeadStageChanged is published after a lead row moved to a new stage.
type LeadStageChanged struct {
	BaseEvent
	LeadID         uuid.UUID `json:"leadId"`
	OrganizationID uuid.UUID `json:"organizationId"`
	ActorID        uuid.UUID `json:"actorId"`
	FromStage      string    `json:"fromStage"`
	ToStage        string    `json:"toStage"`
	ChangeReason   string    `json:"changeReason,omitempty"`
}

func (e LeadStageChanged) EventName() string { return "pipeline.lead.stage_changed" }

// LeadWon is published once a won transition stands: after provisioning
// completed or was not required. A rolled back transition never emits it.
type LeadWon struct {
	BaseEvent
	LeadID         uuid.UUID `json:"leadId"`
	OrganizationID uuid.UUID `json:"organizationId"`
	ActorID        uuid.UUID `json:"actorId"`
	QuotationID    uuid.UUID `json:"quotationId"`
	WonAmount      string    `json:"wonAmount"`
}

func (e LeadWon) EventName() string { return "pipeline.lead.won" }

// =============================================================================
// Provisioning Domain Events
// =============================================================================

// ProjectProvisioned is published when the won saga completed.
type ProjectProvisioned struct {
	BaseEvent
	LeadID              uuid.UUID `json:"leadId"`
	OrganizationID      uuid.UUID `json:"organizationId"`
	ProjectID           uuid.UUID `json:"projectId"`
	SourceQuotationID   uuid.UUID `json:"sourceQuotationId"`
	BaselineQuotationID uuid.UUID `json:"baselineQuotationId"`
	QuotationLocked     bool      `json:"quotationLocked"`
	Linked              bool      `json:"linked"`
}

func (e ProjectProvisioned) EventName() string { return "provisioning.project.provisioned" }

// ProvisioningRolledBack is published after the lead stage was reverted.
type ProvisioningRolledBack struct {
	BaseEvent
	LeadID         uuid.UUID  `json:"leadId"`
	OrganizationID uuid.UUID  `json:"organizationId"`
	RestoredStage  string     `json:"restoredStage"`
	ProjectID      *uuid.UUID `json:"projectId,omitempty"`
	Cause          string     `json:"cause"`
}

func (e ProvisioningRolledBack) EventName() string { return "provisioning.rolled_back" }
