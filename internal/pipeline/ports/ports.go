// Package ports defines the collaborators the pipeline depends on. The
// implementations live in other modules and are wired through
// internal/adapters so the pipeline never imports them directly.
package ports

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// CapabilityCloseWonDeals is the capability required to move a lead to won.
const CapabilityCloseWonDeals = "close_won_deals"

// ErrProjectNumberCollision marks a project creation that lost the race on
// the generated project number. It is the only retryable creation error.
var ErrProjectNumberCollision = errors.New("project number already taken")

// Authorizer answers capability questions for the acting user.
type Authorizer interface {
	HasCapability(ctx context.Context, tenantID, userID uuid.UUID, roles []string, capability string) (bool, error)
}

// QuotationSummary is the slice of a quotation the pipeline needs to decide
// eligibility.
type QuotationSummary struct {
	ID              uuid.UUID
	LeadID          uuid.UUID
	Status          string
	QuotationNumber string
	Version         int

	// LockedForProjectID is set once a project owns the quotation.
	LockedForProjectID *uuid.UUID
}

// QuotationReader loads quotation summaries. A missing quotation returns an
// apperr NotFound error.
type QuotationReader interface {
	GetQuotationSummary(ctx context.Context, tenantID, quotationID uuid.UUID) (QuotationSummary, error)
}

// QuotationLocker flags a quotation as locked for a project. A quotation
// already locked for another project is left unchanged and reported as an
// apperr Conflict.
type QuotationLocker interface {
	LockForProject(ctx context.Context, tenantID, quotationID, projectID uuid.UUID) error
}

type BaselineCopyInput struct {
	TenantID          uuid.UUID
	SourceQuotationID uuid.UUID
	ProjectID         uuid.UUID
	ActorID           uuid.UUID
}

type BaselineCopyResult struct {
	BaselineQuotationID uuid.UUID
	SpacesCreated       int
	ComponentsCreated   int
	LineItemsCreated    int
}

// BaselineCopier materializes the project-owned copy of a quotation.
type BaselineCopier interface {
	CopyBaseline(ctx context.Context, input BaselineCopyInput) (BaselineCopyResult, error)
}

type CreateProjectInput struct {
	TenantID         uuid.UUID
	LeadID           uuid.UUID
	ActorID          uuid.UUID
	Category         string
	QuotationID      *uuid.UUID
	ProjectManagerID *uuid.UUID
	Priority         *string
	StartDate        *time.Time
	ExpectedEndDate  *time.Time
}

// ProjectCreator runs the atomic project creation procedure. A number
// collision must be reported as ErrProjectNumberCollision (wrapped or not).
type ProjectCreator interface {
	CreateProjectFromLead(ctx context.Context, input CreateProjectInput) (uuid.UUID, error)
}

// ProjectLinker sets both quotation_id and baseline_quotation_id of a
// project to its baseline copy.
type ProjectLinker interface {
	LinkBaseline(ctx context.Context, tenantID, projectID, baselineQuotationID uuid.UUID) error
}

// SettingsReader exposes the tenant flags that drive provisioning.
type SettingsReader interface {
	AutoCreateProjectOnWon(ctx context.Context, tenantID uuid.UUID) (bool, error)
}
