package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound = errors.New("lead not found")
	// ErrStageConflict is returned when the lead left the expected stage
	// between read and update.
	ErrStageConflict    = errors.New("lead stage changed concurrently")
	ErrPropertyNotFound = errors.New("property not found")
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type Lead struct {
	ID                     uuid.UUID
	OrganizationID         uuid.UUID
	Stage                  string
	ClientName             string
	AssignedTo             *uuid.UUID
	AssignedAt             *time.Time
	AssignedBy             *uuid.UUID
	ServiceType            *string
	BudgetRange            *string
	TargetStartDate        *time.Time
	TargetEndDate          *time.Time
	PropertyID             *uuid.UUID
	DisqualificationReason *string
	DisqualifiedAt         *time.Time
	LostReason             *string
	LostNotes              *string
	LostAt                 *time.Time
	WonAmount              decimal.NullDecimal
	WonQuotationID         *uuid.UUID
	ContractSignedDate     *time.Time
	ExpectedProjectStart   *time.Time
	WonAt                  *time.Time
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

const leadColumns = `id, organization_id, stage, client_name, assigned_to, assigned_at, assigned_by,
	service_type, budget_range, target_start_date, target_end_date, property_id,
	disqualification_reason, disqualified_at, lost_reason, lost_notes, lost_at,
	won_amount, won_quotation_id, contract_signed_date, expected_project_start, won_at,
	created_at, updated_at`

func scanLead(row pgx.Row) (Lead, error) {
	var lead Lead
	err := row.Scan(
		&lead.ID, &lead.OrganizationID, &lead.Stage, &lead.ClientName, &lead.AssignedTo, &lead.AssignedAt, &lead.AssignedBy,
		&lead.ServiceType, &lead.BudgetRange, &lead.TargetStartDate, &lead.TargetEndDate, &lead.PropertyID,
		&lead.DisqualificationReason, &lead.DisqualifiedAt, &lead.LostReason, &lead.LostNotes, &lead.LostAt,
		&lead.WonAmount, &lead.WonQuotationID, &lead.ContractSignedDate, &lead.ExpectedProjectStart, &lead.WonAt,
		&lead.CreatedAt, &lead.UpdatedAt,
	)
	return lead, err
}

func (r *Repository) GetLead(ctx context.Context, id uuid.UUID, organizationID uuid.UUID) (Lead, error) {
	lead, err := scanLead(r.pool.QueryRow(ctx, `
		SELECT `+leadColumns+`
		FROM leads
		WHERE id = $1 AND organization_id = $2
	`, id, organizationID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	return lead, err
}
