package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ── Hierarchy Models ──────────────────────────────────────────────────────────

// Space is a room or area of a quotation
type Space struct {
	ID           uuid.UUID  `db:"id"`
	QuotationID  uuid.UUID  `db:"quotation_id"`
	SpaceTypeID  *uuid.UUID `db:"space_type_id"`
	Name         string     `db:"name"`
	DisplayOrder int        `db:"display_order"`
}

// Component groups line items of one component type inside a space
type Component struct {
	ID                 uuid.UUID  `db:"id"`
	QuotationID        uuid.UUID  `db:"quotation_id"`
	SpaceID            uuid.UUID  `db:"space_id"`
	ComponentTypeID    uuid.UUID  `db:"component_type_id"`
	ComponentVariantID *uuid.UUID `db:"component_variant_id"`
	Name               string     `db:"name"`
	DisplayOrder       int        `db:"display_order"`
}

// LineItem is a priced row of a quotation
type LineItem struct {
	ID           uuid.UUID           `db:"id"`
	QuotationID  uuid.UUID           `db:"quotation_id"`
	SpaceID      *uuid.UUID          `db:"space_id"`
	ComponentID  *uuid.UUID          `db:"component_id"`
	CostItemID   *uuid.UUID          `db:"cost_item_id"`
	Name         string              `db:"name"`
	UnitCode     string              `db:"unit_code"`
	Rate         decimal.Decimal     `db:"rate"`
	Quantity     decimal.NullDecimal `db:"quantity"`
	Length       decimal.NullDecimal `db:"length"`
	Width        decimal.NullDecimal `db:"width"`
	Amount       decimal.Decimal     `db:"amount"`
	DisplayOrder int                 `db:"display_order"`
}

type NewSpace struct {
	OrganizationID uuid.UUID
	QuotationID    uuid.UUID
	SpaceTypeID    *uuid.UUID
	Name           string
	DisplayOrder   int
}

type NewComponent struct {
	OrganizationID     uuid.UUID
	QuotationID        uuid.UUID
	SpaceID            uuid.UUID
	ComponentTypeID    uuid.UUID
	ComponentVariantID *uuid.UUID
	Name               string
	DisplayOrder       int
}

// NewLineItem leaves quantity, length and width NULL and amount zero.
type NewLineItem struct {
	OrganizationID uuid.UUID
	QuotationID    uuid.UUID
	SpaceID        *uuid.UUID
	ComponentID    *uuid.UUID
	CostItemID     *uuid.UUID
	Name           string
	UnitCode       string
	Rate           decimal.Decimal
	DisplayOrder   int
}

// RowCounts counts the hierarchy rows of a quotation
type RowCounts struct {
	Spaces     int
	Components int
	LineItems  int
}

// Total returns the number of rows across all levels.
func (c RowCounts) Total() int {
	return c.Spaces + c.Components + c.LineItems
}

// ── Writes ────────────────────────────────────────────────────────────────────

func (r *Repository) CreateSpace(ctx context.Context, s NewSpace) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.pool.QueryRow(ctx, `
		INSERT INTO quotation_spaces (organization_id, quotation_id, space_type_id, name, display_order)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, s.OrganizationID, s.QuotationID, s.SpaceTypeID, s.Name, s.DisplayOrder).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to insert quotation space: %w", err)
	}
	return id, nil
}

func (r *Repository) CreateComponent(ctx context.Context, c NewComponent) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.pool.QueryRow(ctx, `
		INSERT INTO quotation_components (
			organization_id, quotation_id, space_id, component_type_id, component_variant_id, name, display_order
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, c.OrganizationID, c.QuotationID, c.SpaceID, c.ComponentTypeID, c.ComponentVariantID, c.Name, c.DisplayOrder).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to insert quotation component: %w", err)
	}
	return id, nil
}

func (r *Repository) CreateLineItem(ctx context.Context, li NewLineItem) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.pool.QueryRow(ctx, `
		INSERT INTO quotation_line_items (
			organization_id, quotation_id, space_id, component_id, cost_item_id,
			name, unit_code, rate, quantity, length, width, amount, display_order
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULL, NULL, NULL, 0, $9)
		RETURNING id
	`, li.OrganizationID, li.QuotationID, li.SpaceID, li.ComponentID, li.CostItemID,
		li.Name, li.UnitCode, li.Rate, li.DisplayOrder).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to insert quotation line item: %w", err)
	}
	return id, nil
}

// ── Reads ─────────────────────────────────────────────────────────────────────

func (r *Repository) ListSpaces(ctx context.Context, quotationID uuid.UUID, orgID uuid.UUID) ([]Space, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, quotation_id, space_type_id, name, display_order
		FROM quotation_spaces
		WHERE quotation_id = $1 AND organization_id = $2
		ORDER BY display_order ASC, name ASC
	`, quotationID, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list quotation spaces: %w", err)
	}
	defer rows.Close()

	items := make([]Space, 0)
	for rows.Next() {
		var s Space
		if err := rows.Scan(&s.ID, &s.QuotationID, &s.SpaceTypeID, &s.Name, &s.DisplayOrder); err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

func (r *Repository) ListComponents(ctx context.Context, quotationID uuid.UUID, orgID uuid.UUID) ([]Component, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, quotation_id, space_id, component_type_id, component_variant_id, name, display_order
		FROM quotation_components
		WHERE quotation_id = $1 AND organization_id = $2
		ORDER BY display_order ASC, name ASC
	`, quotationID, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list quotation components: %w", err)
	}
	defer rows.Close()

	items := make([]Component, 0)
	for rows.Next() {
		var c Component
		if err := rows.Scan(&c.ID, &c.QuotationID, &c.SpaceID, &c.ComponentTypeID, &c.ComponentVariantID, &c.Name, &c.DisplayOrder); err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

func (r *Repository) ListLineItems(ctx context.Context, quotationID uuid.UUID, orgID uuid.UUID) ([]LineItem, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, quotation_id, space_id, component_id, cost_item_id, name, unit_code,
			rate, quantity, length, width, amount, display_order
		FROM quotation_line_items
		WHERE quotation_id = $1 AND organization_id = $2
		ORDER BY display_order ASC, name ASC
	`, quotationID, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list quotation line items: %w", err)
	}
	defer rows.Close()

	items := make([]LineItem, 0)
	for rows.Next() {
		var li LineItem
		if err := rows.Scan(
			&li.ID, &li.QuotationID, &li.SpaceID, &li.ComponentID, &li.CostItemID, &li.Name, &li.UnitCode,
			&li.Rate, &li.Quantity, &li.Length, &li.Width, &li.Amount, &li.DisplayOrder,
		); err != nil {
			return nil, err
		}
		items = append(items, li)
	}
	return items, rows.Err()
}

// CountRows counts the spaces, components and line items of a quotation
func (r *Repository) CountRows(ctx context.Context, quotationID uuid.UUID, orgID uuid.UUID) (RowCounts, error) {
	var c RowCounts
	err := r.pool.QueryRow(ctx, `
		SELECT
			(SELECT count(*) FROM quotation_spaces WHERE quotation_id = $1 AND organization_id = $2),
			(SELECT count(*) FROM quotation_components WHERE quotation_id = $1 AND organization_id = $2),
			(SELECT count(*) FROM quotation_line_items WHERE quotation_id = $1 AND organization_id = $2)
	`, quotationID, orgID).Scan(&c.Spaces, &c.Components, &c.LineItems)
	if err != nil {
		return RowCounts{}, fmt.Errorf("failed to count quotation rows: %w", err)
	}
	return c, nil
}
