package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"studio_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	projectNumberConstraint = "projects_project_number_key"
	pgUniqueViolation       = "23505"
	projectNotFoundMsg      = "project not found"
)

// ErrProjectNumberTaken is returned when a concurrent create won the project
// number. Retrying the whole call derives a fresh number.
var ErrProjectNumberTaken = errors.New("project number already taken")

// Project is the database model for a project
type Project struct {
	ID                  uuid.UUID  `db:"id"`
	OrganizationID      uuid.UUID  `db:"organization_id"`
	LeadID              uuid.UUID  `db:"lead_id"`
	ProjectNumber       string     `db:"project_number"`
	ProjectCategory     string     `db:"project_category"`
	QuotationID         *uuid.UUID `db:"quotation_id"`
	BaselineQuotationID *uuid.UUID `db:"baseline_quotation_id"`
	ProjectManagerID    *uuid.UUID `db:"project_manager_id"`
	Priority            *string    `db:"priority"`
	StartDate           *time.Time `db:"start_date"`
	ExpectedEndDate     *time.Time `db:"expected_end_date"`
	CreatedBy           uuid.UUID  `db:"created_by"`
	CreatedAt           time.Time  `db:"created_at"`
	UpdatedAt           time.Time  `db:"updated_at"`
}

// CreateFromLeadParams are the arguments of create_project_from_lead
type CreateFromLeadParams struct {
	OrganizationID   uuid.UUID
	LeadID           uuid.UUID
	CreatedBy        uuid.UUID
	Category         string
	QuotationID      *uuid.UUID
	ProjectManagerID *uuid.UUID
	Priority         *string
	StartDate        *time.Time
	ExpectedEndDate  *time.Time
}

// Repository provides database operations for projects
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new projects repository
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateFromLead creates a project through the database routine that
// allocates the project number.
func (r *Repository) CreateFromLead(ctx context.Context, p CreateFromLeadParams) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.pool.QueryRow(ctx, `SELECT create_project_from_lead($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		p.OrganizationID, p.LeadID, p.CreatedBy, p.Category, p.QuotationID,
		p.ProjectManagerID, p.Priority, p.StartDate, p.ExpectedEndDate,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, classifyCreateError(err)
	}
	return id, nil
}

func classifyCreateError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation && pgErr.ConstraintName == projectNumberConstraint {
		return fmt.Errorf("%w: %s", ErrProjectNumberTaken, pgErr.Detail)
	}
	return fmt.Errorf("create project from lead: %w", err)
}

// linkBaselineSQL points both quotation columns of the project at its
// baseline copy.
const linkBaselineSQL = `
		UPDATE projects
		SET baseline_quotation_id = $3, quotation_id = $3, updated_at = now()
		WHERE id = $1 AND organization_id = $2`

// LinkBaseline makes the baseline quotation the project's quotation
func (r *Repository) LinkBaseline(ctx context.Context, id uuid.UUID, orgID uuid.UUID, baselineQuotationID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, linkBaselineSQL, id, orgID, baselineQuotationID)
	if err != nil {
		return fmt.Errorf("link baseline quotation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(projectNotFoundMsg)
	}
	return nil
}

// GetByID returns a project of the organization
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID, orgID uuid.UUID) (Project, error) {
	var p Project
	err := r.pool.QueryRow(ctx, `
		SELECT id, organization_id, lead_id, project_number, project_category, quotation_id,
			baseline_quotation_id, project_manager_id, priority, start_date, expected_end_date,
			created_by, created_at, updated_at
		FROM projects WHERE id = $1 AND organization_id = $2`, id, orgID).Scan(
		&p.ID, &p.OrganizationID, &p.LeadID, &p.ProjectNumber, &p.ProjectCategory, &p.QuotationID,
		&p.BaselineQuotationID, &p.ProjectManagerID, &p.Priority, &p.StartDate, &p.ExpectedEndDate,
		&p.CreatedBy, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Project{}, apperr.NotFound(projectNotFoundMsg)
	}
	if err != nil {
		return Project{}, fmt.Errorf("get project: %w", err)
	}
	return p, nil
}
