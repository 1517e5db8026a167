package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/eteeap/admissions-api/internal/models"
)

// AssignmentRepository owns the applicant <-> assessor relationship table.
// Both directions of the link are computed from this single table.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository creates a new instance of AssignmentRepository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// Upsert records an assignment. Re-assigning an existing pair is a no-op.
func (r *AssignmentRepository) Upsert(ctx context.Context, assignment *models.Assignment) error {
	if assignment.AssignedAt.IsZero() {
		assignment.AssignedAt = time.Now().UTC()
	}
	const query = `INSERT INTO assignments (applicant_id, assessor_id, full_name, course, status, assigned_at)
		VALUES (:applicant_id, :assessor_id, :full_name, :course, :status, :assigned_at)
		ON CONFLICT (applicant_id, assessor_id) DO NOTHING`
	if _, err := r.db.NamedExecContext(ctx, query, assignment); err != nil {
		return fmt.Errorf("upsert assignment: %w", err)
	}
	return nil
}

// Exists reports whether the pair is linked.
func (r *AssignmentRepository) Exists(ctx context.Context, applicantID, assessorID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM assignments WHERE applicant_id = $1 AND assessor_id = $2)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, applicantID, assessorID); err != nil {
		return false, fmt.Errorf("check assignment: %w", err)
	}
	return exists, nil
}

// ListForAssessor joins assignments with live applicant data for the
// assessor's worklist. When status is non-empty only matching applicants are
// returned.
func (r *AssignmentRepository) ListForAssessor(ctx context.Context, assessorID string, status models.ApplicantStatus) ([]models.AssignedApplicant, error) {
	query := `SELECT a.applicant_id, p.applicant_no, a.full_name, a.course, p.status, p.final_score, a.assigned_at, p.created_at, p.personal_info
		FROM assignments a
		JOIN applicants p ON p.id = a.applicant_id
		WHERE a.assessor_id = $1`
	args := []interface{}{assessorID}
	if status != "" {
		query += " AND p.status = $2"
		args = append(args, status)
	}
	query += " ORDER BY p.created_at DESC"

	var assigned []models.AssignedApplicant
	if err := r.db.SelectContext(ctx, &assigned, query, args...); err != nil {
		return nil, fmt.Errorf("list assignments for assessor: %w", err)
	}
	return assigned, nil
}

// ListForApplicant joins assignments with live assessor data.
func (r *AssignmentRepository) ListForApplicant(ctx context.Context, applicantID string) ([]models.AssignedAssessor, error) {
	const query = `SELECT a.assessor_id, s.assessor_no, s.full_name, s.expertise, a.assigned_at
		FROM assignments a
		JOIN assessors s ON s.id = a.assessor_id
		WHERE a.applicant_id = $1
		ORDER BY a.assigned_at ASC`
	var assigned []models.AssignedAssessor
	if err := r.db.SelectContext(ctx, &assigned, query, applicantID); err != nil {
		return nil, fmt.Errorf("list assignments for applicant: %w", err)
	}
	return assigned, nil
}

// CountForAssessors returns assignment counts keyed by assessor ID.
func (r *AssignmentRepository) CountForAssessors(ctx context.Context) (map[string]int, error) {
	const query = `SELECT assessor_id, COUNT(*) AS count FROM assignments GROUP BY assessor_id`
	rows := []struct {
		AssessorID string `db:"assessor_id"`
		Count      int    `db:"count"`
	}{}
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("count assignments: %w", err)
	}
	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.AssessorID] = row.Count
	}
	return counts, nil
}
