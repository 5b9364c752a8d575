package repository

import (
	"context"
	"errors"
	"fmt"

	"studio_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// ── Materialization Sources ───────────────────────────────────────────────────

// SourceSpace is a space to copy, from a template or an existing quotation
type SourceSpace struct {
	ID            uuid.UUID
	SpaceTypeID   *uuid.UUID
	OverrideName  *string
	SpaceTypeName string
	DisplayOrder  int
}

// SourceEntry is a line entry to copy, with its cost item already resolved
type SourceEntry struct {
	ID                 uuid.UUID
	SourceSpaceID      *uuid.UUID
	ComponentTypeID    *uuid.UUID
	ComponentName      string
	ComponentVariantID *uuid.UUID
	CostItemID         *uuid.UUID
	Name               string
	UnitCode           string
	DefaultRate        decimal.Decimal
	RateOverride       decimal.NullDecimal
	DisplayOrder       int
}

// Template is a quotation template header
type Template struct {
	ID   uuid.UUID
	Name string
}

// GetTemplate returns an active template of the organization
func (r *Repository) GetTemplate(ctx context.Context, id uuid.UUID, orgID uuid.UUID) (Template, error) {
	var t Template
	err := r.pool.QueryRow(ctx, `
		SELECT id, name
		FROM quotation_templates
		WHERE id = $1 AND organization_id = $2 AND is_active = true
	`, id, orgID).Scan(&t.ID, &t.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return Template{}, apperr.NotFound(templateNotFoundMsg)
	}
	if err != nil {
		return Template{}, fmt.Errorf("failed to get quotation template: %w", err)
	}
	return t, nil
}

// LoadTemplateSource reads the spaces and line entries of a template
func (r *Repository) LoadTemplateSource(ctx context.Context, templateID uuid.UUID, orgID uuid.UUID) ([]SourceSpace, []SourceEntry, error) {
	spaceRows, err := r.pool.Query(ctx, `
		SELECT ts.id, ts.space_type_id, ts.override_name, COALESCE(st.name, ''), ts.display_order
		FROM quotation_template_spaces ts
		JOIN quotation_templates t ON t.id = ts.template_id
		LEFT JOIN space_types st ON st.id = ts.space_type_id
		WHERE ts.template_id = $1 AND t.organization_id = $2
		ORDER BY ts.display_order ASC
	`, templateID, orgID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load template spaces: %w", err)
	}
	spaces, err := collectSpaces(spaceRows)
	if err != nil {
		return nil, nil, err
	}

	entryRows, err := r.pool.Query(ctx, `
		SELECT li.id, li.template_space_id, li.component_type_id, COALESCE(ct.name, ''), li.component_variant_id,
			li.cost_item_id, COALESCE(ci.name, ''), COALESCE(ci.unit_code, 'nos'), COALESCE(ci.default_rate, 0),
			li.rate_override, li.display_order
		FROM quotation_template_line_items li
		JOIN quotation_templates t ON t.id = li.template_id
		LEFT JOIN component_types ct ON ct.id = li.component_type_id
		LEFT JOIN cost_items ci ON ci.id = li.cost_item_id
		WHERE li.template_id = $1 AND t.organization_id = $2
		ORDER BY li.display_order ASC
	`, templateID, orgID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load template line items: %w", err)
	}
	entries, err := collectEntries(entryRows)
	if err != nil {
		return nil, nil, err
	}
	return spaces, entries, nil
}

// LoadQuotationSource reads an existing quotation's own hierarchy. Space and
// component names carry over as overrides, line item rates as rate overrides.
func (r *Repository) LoadQuotationSource(ctx context.Context, quotationID uuid.UUID, orgID uuid.UUID) ([]SourceSpace, []SourceEntry, error) {
	spaceRows, err := r.pool.Query(ctx, `
		SELECT s.id, s.space_type_id, s.name, COALESCE(st.name, ''), s.display_order
		FROM quotation_spaces s
		LEFT JOIN space_types st ON st.id = s.space_type_id
		WHERE s.quotation_id = $1 AND s.organization_id = $2
		ORDER BY s.display_order ASC
	`, quotationID, orgID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load quotation spaces: %w", err)
	}
	spaces, err := collectSpaces(spaceRows)
	if err != nil {
		return nil, nil, err
	}

	entryRows, err := r.pool.Query(ctx, `
		SELECT li.id, li.space_id, c.component_type_id, COALESCE(c.name, ''), c.component_variant_id,
			li.cost_item_id, li.name, li.unit_code, li.rate, li.rate, li.display_order
		FROM quotation_line_items li
		LEFT JOIN quotation_components c ON c.id = li.component_id
		WHERE li.quotation_id = $1 AND li.organization_id = $2
		ORDER BY li.display_order ASC
	`, quotationID, orgID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load quotation line items: %w", err)
	}
	entries, err := collectEntries(entryRows)
	if err != nil {
		return nil, nil, err
	}
	return spaces, entries, nil
}

func collectSpaces(rows pgx.Rows) ([]SourceSpace, error) {
	defer rows.Close()
	spaces := make([]SourceSpace, 0)
	for rows.Next() {
		var s SourceSpace
		if err := rows.Scan(&s.ID, &s.SpaceTypeID, &s.OverrideName, &s.SpaceTypeName, &s.DisplayOrder); err != nil {
			return nil, err
		}
		spaces = append(spaces, s)
	}
	return spaces, rows.Err()
}

func collectEntries(rows pgx.Rows) ([]SourceEntry, error) {
	defer rows.Close()
	entries := make([]SourceEntry, 0)
	for rows.Next() {
		var e SourceEntry
		if err := rows.Scan(
			&e.ID, &e.SourceSpaceID, &e.ComponentTypeID, &e.ComponentName, &e.ComponentVariantID,
			&e.CostItemID, &e.Name, &e.UnitCode, &e.DefaultRate, &e.RateOverride, &e.DisplayOrder,
		); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
