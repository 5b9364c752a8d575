package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Activity types written to lead_activities.
const (
	ActivityStageWon          = "stage_won"
	ActivityStageLost         = "stage_lost"
	ActivityStageDisqualified = "stage_disqualified"
	ActivityNote              = "note"
	ActivityBaselineGap       = "baseline_gap"
)

type ActivityParams struct {
	OrganizationID uuid.UUID
	LeadID         uuid.UUID
	ActivityType   string
	Title          string
	Body           *string
	Metadata       map[string]interface{}
	CreatedBy      *uuid.UUID
}

func (r *Repository) AddActivity(ctx context.Context, params ActivityParams) error {
	meta := params.Metadata
	if meta == nil {
		meta = map[string]interface{}{}
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshal activity metadata: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO lead_activities (organization_id, lead_id, activity_type, title, body, metadata, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, params.OrganizationID, params.LeadID, params.ActivityType, params.Title, params.Body, metaJSON, params.CreatedBy)
	if err != nil {
		return fmt.Errorf("insert lead activity: %w", err)
	}
	return nil
}
