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

const evaluationColumns = `id, applicant_id, assessor_id, education, work, achievements, interview, total_score, is_passed, status, evaluated_at, finalized_at, final_comments`

// EvaluationRepository provides database access for the append-only
// evaluation history.
type EvaluationRepository struct {
	db *sqlx.DB
}

// NewEvaluationRepository creates a new instance of EvaluationRepository.
func NewEvaluationRepository(db *sqlx.DB) *EvaluationRepository {
	return &EvaluationRepository{db: db}
}

// Create appends a new evaluation row. Prior rows for the applicant are never
// modified.
func (r *EvaluationRepository) Create(ctx context.Context, evaluation *models.Evaluation) error {
	if evaluation.ID == "" {
		evaluation.ID = uuid.NewString()
	}
	if evaluation.EvaluatedAt.IsZero() {
		evaluation.EvaluatedAt = time.Now().UTC()
	}
	if evaluation.Status == "" {
		evaluation.Status = models.EvaluationDraft
	}

	const query = `INSERT INTO evaluations (id, applicant_id, assessor_id, education, work, achievements, interview, total_score, is_passed, status, evaluated_at)
		VALUES (:id, :applicant_id, :assessor_id, :education, :work, :achievements, :interview, :total_score, :is_passed, :status, :evaluated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, evaluation); err != nil {
		return fmt.Errorf("create evaluation: %w", err)
	}
	return nil
}

// LatestForApplicant returns the most recently appended evaluation,
// regardless of status.
func (r *EvaluationRepository) LatestForApplicant(ctx context.Context, applicantID string) (*models.Evaluation, error) {
	query := fmt.Sprintf(`SELECT %s FROM evaluations WHERE applicant_id = $1 ORDER BY evaluated_at DESC LIMIT 1`, evaluationColumns)
	var evaluation models.Evaluation
	if err := r.db.GetContext(ctx, &evaluation, query, applicantID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("latest evaluation: %w", err)
	}
	return &evaluation, nil
}

// LatestByAssessor returns the assessor's most recent evaluation for the
// applicant, used to pre-fill the scoring form.
func (r *EvaluationRepository) LatestByAssessor(ctx context.Context, applicantID, assessorID string) (*models.Evaluation, error) {
	query := fmt.Sprintf(`SELECT %s FROM evaluations WHERE applicant_id = $1 AND assessor_id = $2 ORDER BY evaluated_at DESC LIMIT 1`, evaluationColumns)
	var evaluation models.Evaluation
	if err := r.db.GetContext(ctx, &evaluation, query, applicantID, assessorID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("latest evaluation by assessor: %w", err)
	}
	return &evaluation, nil
}

// ListForApplicant returns the applicant's full evaluation history, newest
// first.
func (r *EvaluationRepository) ListForApplicant(ctx context.Context, applicantID string) ([]models.Evaluation, error) {
	query := fmt.Sprintf(`SELECT %s FROM evaluations WHERE applicant_id = $1 ORDER BY evaluated_at DESC`, evaluationColumns)
	var evaluations []models.Evaluation
	if err := r.db.SelectContext(ctx, &evaluations, query, applicantID); err != nil {
		return nil, fmt.Errorf("list evaluations: %w", err)
	}
	return evaluations, nil
}

// Finalize marks a single evaluation as finalized with closing comments.
func (r *EvaluationRepository) Finalize(ctx context.Context, id, finalComments string, finalizedAt time.Time) error {
	const query = `UPDATE evaluations SET status = $2, finalized_at = $3, final_comments = $4 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, models.EvaluationFinalized, finalizedAt, finalComments)
	if err != nil {
		return fmt.Errorf("finalize evaluation: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CreateComment appends a finalization audit comment.
func (r *EvaluationRepository) CreateComment(ctx context.Context, comment *models.EvaluationComment) error {
	if comment.ID == "" {
		comment.ID = uuid.NewString()
	}
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO evaluation_comments (id, applicant_id, assessor_id, evaluation_id, comments, created_at)
		VALUES (:id, :applicant_id, :assessor_id, :evaluation_id, :comments, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, comment); err != nil {
		return fmt.Errorf("create evaluation comment: %w", err)
	}
	return nil
}

// ListComments returns the applicant's finalization comments, newest first.
func (r *EvaluationRepository) ListComments(ctx context.Context, applicantID string) ([]models.EvaluationComment, error) {
	const query = `SELECT id, applicant_id, assessor_id, evaluation_id, comments, created_at
		FROM evaluation_comments WHERE applicant_id = $1 ORDER BY created_at DESC`
	var comments []models.EvaluationComment
	if err := r.db.SelectContext(ctx, &comments, query, applicantID); err != nil {
		return nil, fmt.Errorf("list evaluation comments: %w", err)
	}
	return comments, nil
}

// CountFinalizedSince returns how many evaluations were finalized after the
// cutoff.
func (r *EvaluationRepository) CountFinalizedSince(ctx context.Context, cutoff time.Time) (int, error) {
	const query = `SELECT COUNT(*) FROM evaluations WHERE status = $1 AND finalized_at >= $2`
	var count int
	if err := r.db.GetContext(ctx, &count, query, models.EvaluationFinalized, cutoff); err != nil {
		return 0, fmt.Errorf("count finalized evaluations: %w", err)
	}
	return count, nil
}
