package transport

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request DTOs

type CreateFromTemplateRequest struct {
	LeadID     uuid.UUID `json:"leadId" validate:"required"`
	TemplateID uuid.UUID `json:"templateId" validate:"required"`
	Title      string    `json:"title" validate:"omitempty,max=200"`
}

// Response DTOs

type QuotationResponse struct {
	ID                 uuid.UUID  `json:"id"`
	LeadID             uuid.UUID  `json:"leadId"`
	ProjectID          *uuid.UUID `json:"projectId,omitempty"`
	QuotationNumber    string     `json:"quotationNumber"`
	Version            int        `json:"version"`
	Title              string     `json:"title"`
	Status             string     `json:"status"`
	LockedForProjectID *uuid.UUID `json:"lockedForProjectId,omitempty"`
	LockedAt           *time.Time `json:"lockedAt,omitempty"`
	SourceQuotationID  *uuid.UUID `json:"sourceQuotationId,omitempty"`
	TemplateID         *uuid.UUID `json:"templateId,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

type MaterializeSummaryResponse struct {
	SpacesCreated     int `json:"spacesCreated"`
	ComponentsCreated int `json:"componentsCreated"`
	LineItemsCreated  int `json:"lineItemsCreated"`
}

type CreateFromTemplateResponse struct {
	Quotation QuotationResponse          `json:"quotation"`
	Summary   MaterializeSummaryResponse `json:"summary"`
}

type LineItemResponse struct {
	ID           uuid.UUID        `json:"id"`
	CostItemID   *uuid.UUID       `json:"costItemId,omitempty"`
	Name         string           `json:"name"`
	UnitCode     string           `json:"unitCode"`
	Rate         decimal.Decimal  `json:"rate"`
	Quantity     *decimal.Decimal `json:"quantity"`
	Length       *decimal.Decimal `json:"length"`
	Width        *decimal.Decimal `json:"width"`
	Amount       decimal.Decimal  `json:"amount"`
	DisplayOrder int              `json:"displayOrder"`
}

type ComponentResponse struct {
	ID                 uuid.UUID          `json:"id"`
	ComponentTypeID    uuid.UUID          `json:"componentTypeId"`
	ComponentVariantID *uuid.UUID         `json:"componentVariantId,omitempty"`
	Name               string             `json:"name"`
	DisplayOrder       int                `json:"displayOrder"`
	LineItems          []LineItemResponse `json:"lineItems"`
}

type SpaceResponse struct {
	ID           uuid.UUID           `json:"id"`
	SpaceTypeID  *uuid.UUID          `json:"spaceTypeId,omitempty"`
	Name         string              `json:"name"`
	DisplayOrder int                 `json:"displayOrder"`
	Components   []ComponentResponse `json:"components"`
	LineItems    []LineItemResponse  `json:"lineItems"`
}

type QuotationTreeResponse struct {
	QuotationResponse
	Spaces     []SpaceResponse    `json:"spaces"`
	Unassigned []LineItemResponse `json:"unassignedLineItems"`
}
