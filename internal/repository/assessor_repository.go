package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/eteeap/admissions-api/internal/models"
)

const assessorColumns = `id, assessor_no, email, password_hash, full_name, expertise, assessor_type, is_approved, created_at, last_login`

// AssessorRepository provides database access for assessor accounts.
type AssessorRepository struct {
	db *sqlx.DB
}

// NewAssessorRepository creates a new instance of AssessorRepository.
func NewAssessorRepository(db *sqlx.DB) *AssessorRepository {
	return &AssessorRepository{db: db}
}

// Create inserts a new assessor record.
func (r *AssessorRepository) Create(ctx context.Context, assessor *models.Assessor) error {
	if assessor.ID == "" {
		assessor.ID = uuid.NewString()
	}
	if assessor.CreatedAt.IsZero() {
		assessor.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO assessors (id, assessor_no, email, password_hash, full_name, expertise, assessor_type, is_approved, created_at)
		VALUES (:id, :assessor_no, :email, :password_hash, :full_name, :expertise, :assessor_type, :is_approved, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, assessor); err != nil {
		return fmt.Errorf("create assessor: %w", err)
	}
	return nil
}

// FindByEmail returns an assessor by email address.
func (r *AssessorRepository) FindByEmail(ctx context.Context, email string) (*models.Assessor, error) {
	query := fmt.Sprintf(`SELECT %s FROM assessors WHERE LOWER(email) = LOWER($1) LIMIT 1`, assessorColumns)
	var assessor models.Assessor
	if err := r.db.GetContext(ctx, &assessor, query, email); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find assessor by email: %w", err)
	}
	return &assessor, nil
}

// FindByID returns an assessor by identifier.
func (r *AssessorRepository) FindByID(ctx context.Context, id string) (*models.Assessor, error) {
	query := fmt.Sprintf(`SELECT %s FROM assessors WHERE id = $1 LIMIT 1`, assessorColumns)
	var assessor models.Assessor
	if err := r.db.GetContext(ctx, &assessor, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find assessor by id: %w", err)
	}
	return &assessor, nil
}

// ListApproved returns approved assessors ordered by name, for assignment
// pickers.
func (r *AssessorRepository) ListApproved(ctx context.Context) ([]models.Assessor, error) {
	query := fmt.Sprintf(`SELECT %s FROM assessors WHERE is_approved = TRUE ORDER BY full_name ASC`, assessorColumns)
	var assessors []models.Assessor
	if err := r.db.SelectContext(ctx, &assessors, query); err != nil {
		return nil, fmt.Errorf("list approved assessors: %w", err)
	}
	return assessors, nil
}

// List returns every assessor, newest first.
func (r *AssessorRepository) List(ctx context.Context) ([]models.Assessor, error) {
	query := fmt.Sprintf(`SELECT %s FROM assessors ORDER BY created_at DESC`, assessorColumns)
	var assessors []models.Assessor
	if err := r.db.SelectContext(ctx, &assessors, query); err != nil {
		return nil, fmt.Errorf("list assessors: %w", err)
	}
	return assessors, nil
}

// Update edits the mutable assessor fields.
func (r *AssessorRepository) Update(ctx context.Context, assessor *models.Assessor) error {
	const query = `UPDATE assessors SET full_name = :full_name, email = :email, expertise = :expertise, assessor_type = :assessor_type, is_approved = :is_approved WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, assessor)
	if err != nil {
		return fmt.Errorf("update assessor: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes the assessor. Assignments cascade, which prunes the
// assessor out of every applicant's set in the same statement.
func (r *AssessorRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM assessors WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete assessor: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdateLastLogin stamps a successful login.
func (r *AssessorRepository) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	const query = `UPDATE assessors SET last_login = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, ts); err != nil {
		return fmt.Errorf("update assessor last login: %w", err)
	}
	return nil
}
