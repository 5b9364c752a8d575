package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// StageChangeParams describes one guarded stage update. Every non-nil
// field is written in the same statement as the stage.
type StageChangeParams struct {
	LeadID         uuid.UUID
	OrganizationID uuid.UUID
	FromStage      string
	ToStage        string

	PropertyID *uuid.UUID

	AssignedTo *uuid.UUID
	AssignedAt *time.Time
	AssignedBy *uuid.UUID

	ServiceType     *string
	BudgetRange     *string
	TargetStartDate *time.Time
	TargetEndDate   *time.Time

	WonQuotationID       *uuid.UUID
	WonAmount            *decimal.Decimal
	ContractSignedDate   *time.Time
	ExpectedProjectStart *time.Time
	WonAt                *time.Time

	DisqualificationReason *string
	DisqualifiedAt         *time.Time

	LostReason *string
	LostNotes  *string
	LostAt     *time.Time
}

// ApplyStageChange moves the lead from FromStage to ToStage. If the stored
// stage no longer equals FromStage nothing is written and ErrStageConflict
// is returned.
func (r *Repository) ApplyStageChange(ctx context.Context, params StageChangeParams) (Lead, error) {
	setClauses := []string{"stage = $1"}
	args := []interface{}{params.ToStage}
	argIdx := 2

	fields := []struct {
		enabled bool
		column  string
		value   interface{}
	}{
		{params.PropertyID != nil, "property_id", params.PropertyID},
		{params.AssignedTo != nil, "assigned_to", params.AssignedTo},
		{params.AssignedAt != nil, "assigned_at", params.AssignedAt},
		{params.AssignedBy != nil, "assigned_by", params.AssignedBy},
		{params.ServiceType != nil, "service_type", params.ServiceType},
		{params.BudgetRange != nil, "budget_range", params.BudgetRange},
		{params.TargetStartDate != nil, "target_start_date", params.TargetStartDate},
		{params.TargetEndDate != nil, "target_end_date", params.TargetEndDate},
		{params.WonQuotationID != nil, "won_quotation_id", params.WonQuotationID},
		{params.WonAmount != nil, "won_amount", params.WonAmount},
		{params.ContractSignedDate != nil, "contract_signed_date", params.ContractSignedDate},
		{params.ExpectedProjectStart != nil, "expected_project_start", params.ExpectedProjectStart},
		{params.WonAt != nil, "won_at", params.WonAt},
		{params.DisqualificationReason != nil, "disqualification_reason", params.DisqualificationReason},
		{params.DisqualifiedAt != nil, "disqualified_at", params.DisqualifiedAt},
		{params.LostReason != nil, "lost_reason", params.LostReason},
		{params.LostNotes != nil, "lost_notes", params.LostNotes},
		{params.LostAt != nil, "lost_at", params.LostAt},
	}

	for _, field := range fields {
		if !field.enabled {
			continue
		}
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", field.column, argIdx))
		args = append(args, field.value)
		argIdx++
	}

	setClauses = append(setClauses, "updated_at = now()")
	args = append(args, params.LeadID, params.OrganizationID, params.FromStage)

	query := fmt.Sprintf(`
		UPDATE leads SET %s
		WHERE id = $%d AND organization_id = $%d AND stage = $%d
		RETURNING %s
	`, strings.Join(setClauses, ", "), argIdx, argIdx+1, argIdx+2, leadColumns)

	lead, err := scanLead(r.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrStageConflict
	}
	if err != nil {
		return Lead{}, fmt.Errorf("apply stage change: %w", err)
	}
	return lead, nil
}

// RevertStage puts the lead back on restoreTo if it still sits on current.
func (r *Repository) RevertStage(ctx context.Context, leadID, organizationID uuid.UUID, current, restoreTo string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE leads SET stage = $1, updated_at = now()
		WHERE id = $2 AND organization_id = $3 AND stage = $4
	`, restoreTo, leadID, organizationID, current)
	if err != nil {
		return fmt.Errorf("revert stage: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrStageConflict
	}
	return nil
}
