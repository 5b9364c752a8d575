package transport

import (
	"time"

	"github.com/google/uuid"
)

type ProjectResponse struct {
	ID                  uuid.UUID  `json:"id"`
	LeadID              uuid.UUID  `json:"leadId"`
	ProjectNumber       string     `json:"projectNumber"`
	ProjectCategory     string     `json:"projectCategory"`
	QuotationID         *uuid.UUID `json:"quotationId,omitempty"`
	BaselineQuotationID *uuid.UUID `json:"baselineQuotationId,omitempty"`
	ProjectManagerID    *uuid.UUID `json:"projectManagerId,omitempty"`
	Priority            *string    `json:"priority,omitempty"`
	StartDate           *string    `json:"startDate,omitempty"`
	ExpectedEndDate     *string    `json:"expectedEndDate,omitempty"`
	CreatedBy           uuid.UUID  `json:"createdBy"`
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt"`
}
