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

type Property struct {
	ID               uuid.UUID
	OrganizationID   uuid.UUID
	PropertyName     *string
	PropertyCategory *string
	PropertyType     *string
	PropertySubtype  *string
	UnitNumber       *string
	CarpetArea       decimal.NullDecimal
	AddressLine      *string
	City             string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// PropertyParams carries the property-bearing values of a transition. Nil
// fields are left untouched on update and NULL on insert.
type PropertyParams struct {
	PropertyName     *string
	PropertyCategory *string
	PropertyType     *string
	PropertySubtype  *string
	UnitNumber       *string
	CarpetArea       *decimal.Decimal
}

func (r *Repository) GetProperty(ctx context.Context, id uuid.UUID, organizationID uuid.UUID) (Property, error) {
	var p Property
	err := r.pool.QueryRow(ctx, `
		SELECT id, organization_id, property_name, property_category, property_type, property_subtype,
			unit_number, carpet_area, address_line, city, created_at, updated_at
		FROM properties
		WHERE id = $1 AND organization_id = $2
	`, id, organizationID).Scan(
		&p.ID, &p.OrganizationID, &p.PropertyName, &p.PropertyCategory, &p.PropertyType, &p.PropertySubtype,
		&p.UnitNumber, &p.CarpetArea, &p.AddressLine, &p.City, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Property{}, ErrPropertyNotFound
	}
	return p, err
}

// CreateProperty inserts a property with the given city placeholder.
func (r *Repository) CreateProperty(ctx context.Context, organizationID uuid.UUID, city string, params PropertyParams) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.pool.QueryRow(ctx, `
		INSERT INTO properties (
			organization_id, property_name, property_category, property_type, property_subtype,
			unit_number, carpet_area, city
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`,
		organizationID, params.PropertyName, params.PropertyCategory, params.PropertyType, params.PropertySubtype,
		params.UnitNumber, params.CarpetArea, city,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert property: %w", err)
	}
	return id, nil
}

// UpdateProperty applies a partial update.
func (r *Repository) UpdateProperty(ctx context.Context, id uuid.UUID, organizationID uuid.UUID, params PropertyParams) error {
	setClauses := []string{}
	args := []interface{}{}
	argIdx := 1

	fields := []struct {
		enabled bool
		column  string
		value   interface{}
	}{
		{params.PropertyName != nil, "property_name", params.PropertyName},
		{params.PropertyCategory != nil, "property_category", params.PropertyCategory},
		{params.PropertyType != nil, "property_type", params.PropertyType},
		{params.PropertySubtype != nil, "property_subtype", params.PropertySubtype},
		{params.UnitNumber != nil, "unit_number", params.UnitNumber},
		{params.CarpetArea != nil, "carpet_area", params.CarpetArea},
	}

	for _, field := range fields {
		if !field.enabled {
			continue
		}
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", field.column, argIdx))
		args = append(args, field.value)
		argIdx++
	}

	if len(setClauses) == 0 {
		return nil
	}

	setClauses = append(setClauses, "updated_at = now()")
	args = append(args, id, organizationID)

	query := fmt.Sprintf(`
		UPDATE properties SET %s
		WHERE id = $%d AND organization_id = $%d
	`, strings.Join(setClauses, ", "), argIdx, argIdx+1)

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update property: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPropertyNotFound
	}
	return nil
}
