package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/eteeap/admissions-api/internal/models"
)

const applicantColumns = `id, applicant_no, email, password_hash, status, personal_info, final_score, is_passed, created_at, updated_at`

// ApplicantRepository provides database access for applicant accounts.
type ApplicantRepository struct {
	db *sqlx.DB
}

// NewApplicantRepository creates a new instance of ApplicantRepository.
func NewApplicantRepository(db *sqlx.DB) *ApplicantRepository {
	return &ApplicantRepository{db: db}
}

// Create inserts a new applicant record.
func (r *ApplicantRepository) Create(ctx context.Context, applicant *models.Applicant) error {
	if applicant.ID == "" {
		applicant.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if applicant.CreatedAt.IsZero() {
		applicant.CreatedAt = now
	}
	applicant.UpdatedAt = now
	if applicant.Status == "" {
		applicant.Status = models.StatusPendingReview
	}

	const query = `INSERT INTO applicants (id, applicant_no, email, password_hash, status, personal_info, created_at, updated_at)
		VALUES (:id, :applicant_no, :email, :password_hash, :status, :personal_info, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, applicant); err != nil {
		return fmt.Errorf("create applicant: %w", err)
	}
	return nil
}

// FindByEmail returns an applicant by email address.
func (r *ApplicantRepository) FindByEmail(ctx context.Context, email string) (*models.Applicant, error) {
	query := fmt.Sprintf(`SELECT %s FROM applicants WHERE LOWER(email) = LOWER($1) LIMIT 1`, applicantColumns)
	var applicant models.Applicant
	if err := r.db.GetContext(ctx, &applicant, query, email); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find applicant by email: %w", err)
	}
	return &applicant, nil
}

// FindByID returns an applicant by identifier.
func (r *ApplicantRepository) FindByID(ctx context.Context, id string) (*models.Applicant, error) {
	query := fmt.Sprintf(`SELECT %s FROM applicants WHERE id = $1 LIMIT 1`, applicantColumns)
	var applicant models.Applicant
	if err := r.db.GetContext(ctx, &applicant, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find applicant by id: %w", err)
	}
	return &applicant, nil
}

// List returns applicants matching the filter, newest first, with total count.
func (r *ApplicantRepository) List(ctx context.Context, filter models.ApplicantFilter) ([]models.Applicant, int, error) {
	baseQuery := `FROM applicants WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(email) LIKE $%d OR LOWER(applicant_no) LIKE $%d OR LOWER(personal_info->>'lastname') LIKE $%d)", len(args)+1, len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"created_at":   true,
		"updated_at":   true,
		"applicant_no": true,
		"status":       true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "created_at"
	}
	sortOrder := strings.ToUpper(filter.SortOrder)
	if sortOrder != "ASC" && sortOrder != "DESC" {
		sortOrder = "DESC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 200 {
		pageSize = 50
	}
	offset := (page - 1) * pageSize

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", applicantColumns, baseQuery, sortBy, sortOrder, pageSize, offset)

	var applicants []models.Applicant
	if err := r.db.SelectContext(ctx, &applicants, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list applicants: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count applicants: %w", err)
	}

	return applicants, total, nil
}

// UpdatePersonalInfo replaces the profile block.
func (r *ApplicantRepository) UpdatePersonalInfo(ctx context.Context, id string, info models.PersonalInfo) error {
	const query = `UPDATE applicants SET personal_info = $2, updated_at = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, info, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update personal info: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdateStatus moves an applicant to a new pipeline status.
func (r *ApplicantRepository) UpdateStatus(ctx context.Context, id string, status models.ApplicantStatus) error {
	const query = `UPDATE applicants SET status = $2, updated_at = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update applicant status: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SetFinalResult records the finalized outcome alongside the status change.
func (r *ApplicantRepository) SetFinalResult(ctx context.Context, id string, status models.ApplicantStatus, finalScore int, isPassed bool) error {
	const query = `UPDATE applicants SET status = $2, final_score = $3, is_passed = $4, updated_at = $5 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, finalScore, isPassed, time.Now().UTC()); err != nil {
		return fmt.Errorf("set final result: %w", err)
	}
	return nil
}

// CountByStatus returns applicant counts grouped by status.
func (r *ApplicantRepository) CountByStatus(ctx context.Context) (map[models.ApplicantStatus]int, error) {
	const query = `SELECT status, COUNT(*) AS count FROM applicants GROUP BY status`
	rows := []struct {
		Status models.ApplicantStatus `db:"status"`
		Count  int                    `db:"count"`
	}{}
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("count applicants by status: %w", err)
	}
	counts := make(map[models.ApplicantStatus]int, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// CountCreatedSince returns how many applicants registered after the cutoff.
func (r *ApplicantRepository) CountCreatedSince(ctx context.Context, cutoff time.Time) (int, error) {
	const query = `SELECT COUNT(*) FROM applicants WHERE created_at >= $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, cutoff); err != nil {
		return 0, fmt.Errorf("count new applicants: %w", err)
	}
	return count, nil
}
