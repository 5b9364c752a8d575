package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"studio_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ── Domain Models ─────────────────────────────────────────────────────────────

// Quotation statuses.
const (
	StatusDraft       = "draft"
	StatusSent        = "sent"
	StatusViewed      = "viewed"
	StatusNegotiating = "negotiating"
	StatusApproved    = "approved"
	StatusRejected    = "rejected"
	StatusLocked      = "locked"
)

// Quotation is the database model for a quotation header
type Quotation struct {
	ID                 uuid.UUID  `db:"id"`
	OrganizationID     uuid.UUID  `db:"organization_id"`
	LeadID             uuid.UUID  `db:"lead_id"`
	ProjectID          *uuid.UUID `db:"project_id"`
	QuotationNumber    string     `db:"quotation_number"`
	Version            int        `db:"version"`
	Title              string     `db:"title"`
	Status             string     `db:"status"`
	LockedForProjectID *uuid.UUID `db:"locked_for_project_id"`
	LockedAt           *time.Time `db:"locked_at"`
	SourceQuotationID  *uuid.UUID `db:"source_quotation_id"`
	TemplateID         *uuid.UUID `db:"template_id"`
	CreatedBy          *uuid.UUID `db:"created_by"`
	CreatedAt          time.Time  `db:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at"`
}

// NewQuotation holds the values of a quotation header insert
type NewQuotation struct {
	OrganizationID     uuid.UUID
	LeadID             uuid.UUID
	ProjectID          *uuid.UUID
	QuotationNumber    string
	Version            int
	Title              string
	Status             string
	LockedForProjectID *uuid.UUID
	SourceQuotationID  *uuid.UUID
	TemplateID         *uuid.UUID
	CreatedBy          *uuid.UUID
}

// ── Repository ────────────────────────────────────────────────────────────────

const (
	quotationNotFoundMsg = "quotation not found"
	templateNotFoundMsg  = "quotation template not found"
	leadNotFoundMsg      = "lead not found"
)

// Repository provides database operations for quotations
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new quotations repository
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const quotationColumns = `id, organization_id, lead_id, project_id, quotation_number, version, title, status,
	locked_for_project_id, locked_at, source_quotation_id, template_id, created_by, created_at, updated_at`

func scanQuotation(row pgx.Row) (Quotation, error) {
	var q Quotation
	err := row.Scan(
		&q.ID, &q.OrganizationID, &q.LeadID, &q.ProjectID, &q.QuotationNumber, &q.Version, &q.Title, &q.Status,
		&q.LockedForProjectID, &q.LockedAt, &q.SourceQuotationID, &q.TemplateID, &q.CreatedBy, &q.CreatedAt, &q.UpdatedAt,
	)
	return q, err
}

// NextQuotationNumber atomically generates the next quotation number for an organization
func (r *Repository) NextQuotationNumber(ctx context.Context, orgID uuid.UUID) (string, error) {
	var nextNum int
	query := `
		INSERT INTO quotation_counters (organization_id, last_number)
		VALUES ($1, 1)
		ON CONFLICT (organization_id) DO UPDATE SET last_number = quotation_counters.last_number + 1
		RETURNING last_number`

	if err := r.pool.QueryRow(ctx, query, orgID).Scan(&nextNum); err != nil {
		return "", fmt.Errorf("failed to generate quotation number: %w", err)
	}

	year := time.Now().Year()
	return fmt.Sprintf("QT-%d-%04d", year, nextNum), nil
}

// NextVersion returns the version a new revision of quotationNumber gets.
func (r *Repository) NextVersion(ctx context.Context, orgID uuid.UUID, quotationNumber string) (int, error) {
	var maxVersion int
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(MAX(version), 0)
		FROM quotations
		WHERE organization_id = $1 AND quotation_number = $2
	`, orgID, quotationNumber).Scan(&maxVersion)
	if err != nil {
		return 0, fmt.Errorf("failed to read quotation versions: %w", err)
	}
	return maxVersion + 1, nil
}

// Create inserts a quotation header
func (r *Repository) Create(ctx context.Context, q NewQuotation) (Quotation, error) {
	var lockedAt *time.Time
	if q.LockedForProjectID != nil {
		now := time.Now()
		lockedAt = &now
	}

	created, err := scanQuotation(r.pool.QueryRow(ctx, `
		INSERT INTO quotations (
			organization_id, lead_id, project_id, quotation_number, version, title, status,
			locked_for_project_id, locked_at, source_quotation_id, template_id, created_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING `+quotationColumns,
		q.OrganizationID, q.LeadID, q.ProjectID, q.QuotationNumber, q.Version, q.Title, q.Status,
		q.LockedForProjectID, lockedAt, q.SourceQuotationID, q.TemplateID, q.CreatedBy,
	))
	if err != nil {
		return Quotation{}, fmt.Errorf("failed to insert quotation: %w", err)
	}
	return created, nil
}

// GetByID retrieves a quotation by its ID scoped to organization
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID, orgID uuid.UUID) (Quotation, error) {
	q, err := scanQuotation(r.pool.QueryRow(ctx, `
		SELECT `+quotationColumns+`
		FROM quotations
		WHERE id = $1 AND organization_id = $2
	`, id, orgID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Quotation{}, apperr.NotFound(quotationNotFoundMsg)
	}
	if err != nil {
		return Quotation{}, fmt.Errorf("failed to get quotation: %w", err)
	}
	return q, nil
}

// lockForProjectSQL never moves a lock from one project to another.
const lockForProjectSQL = `
		UPDATE quotations
		SET locked_for_project_id = $3, locked_at = COALESCE(locked_at, now()), updated_at = now()
		WHERE id = $1 AND organization_id = $2
			AND (locked_for_project_id IS NULL OR locked_for_project_id = $3)`

// LockForProject marks a quotation as locked for the given project
func (r *Repository) LockForProject(ctx context.Context, id uuid.UUID, orgID uuid.UUID, projectID uuid.UUID) error {
	result, err := r.pool.Exec(ctx, lockForProjectSQL, id, orgID, projectID)
	if err != nil {
		return fmt.Errorf("failed to lock quotation: %w", err)
	}
	if result.RowsAffected() > 0 {
		return nil
	}

	var lockedFor *uuid.UUID
	err = r.pool.QueryRow(ctx, `
		SELECT locked_for_project_id FROM quotations WHERE id = $1 AND organization_id = $2
	`, id, orgID).Scan(&lockedFor)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound(quotationNotFoundMsg)
	}
	if err != nil {
		return fmt.Errorf("failed to read quotation lock: %w", err)
	}
	return apperr.Conflict("quotation is already locked for another project")
}

// LeadExists reports whether the lead belongs to the organization
func (r *Repository) LeadExists(ctx context.Context, leadID uuid.UUID, orgID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM leads WHERE id = $1 AND organization_id = $2)
	`, leadID, orgID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check lead: %w", err)
	}
	return exists, nil
}
