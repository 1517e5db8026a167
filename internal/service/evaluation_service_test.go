package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/eteeap/admissions-api/internal/dto"
	"github.com/eteeap/admissions-api/internal/models"
	appErrors "github.com/eteeap/admissions-api/pkg/errors"
)

type mockEvaluationRepo struct {
	rows      []*models.Evaluation
	comments  []*models.EvaluationComment
	finalized map[string]string
}

func (m *mockEvaluationRepo) Create(ctx context.Context, evaluation *models.Evaluation) error {
	evaluation.ID = fmt.Sprintf("eval-%d", len(m.rows)+1)
	evaluation.EvaluatedAt = time.Now().UTC()
	m.rows = append(m.rows, evaluation)
	return nil
}

func (m *mockEvaluationRepo) LatestForApplicant(ctx context.Context, applicantID string) (*models.Evaluation, error) {
	for i := len(m.rows) - 1; i >= 0; i-- {
		if m.rows[i].ApplicantID == applicantID {
			return m.rows[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockEvaluationRepo) LatestByAssessor(ctx context.Context, applicantID, assessorID string) (*models.Evaluation, error) {
	for i := len(m.rows) - 1; i >= 0; i-- {
		if m.rows[i].ApplicantID == applicantID && m.rows[i].AssessorID == assessorID {
			return m.rows[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockEvaluationRepo) ListForApplicant(ctx context.Context, applicantID string) ([]models.Evaluation, error) {
	var out []models.Evaluation
	for i := len(m.rows) - 1; i >= 0; i-- {
		if m.rows[i].ApplicantID == applicantID {
			out = append(out, *m.rows[i])
		}
	}
	return out, nil
}

func (m *mockEvaluationRepo) Finalize(ctx context.Context, id, finalComments string, finalizedAt time.Time) error {
	if m.finalized == nil {
		m.finalized = make(map[string]string)
	}
	m.finalized[id] = finalComments
	for _, row := range m.rows {
		if row.ID == id {
			row.Status = models.EvaluationFinalized
			row.FinalizedAt = &finalizedAt
			return nil
		}
	}
	return sql.ErrNoRows
}

func (m *mockEvaluationRepo) CreateComment(ctx context.Context, comment *models.EvaluationComment) error {
	m.comments = append(m.comments, comment)
	return nil
}

type mockEvalApplicantRepo struct {
	applicant   *models.Applicant
	lastStatus  models.ApplicantStatus
	finalScore  int
	finalPassed bool
	finalStatus models.ApplicantStatus
}

func (m *mockEvalApplicantRepo) FindByID(ctx context.Context, id string) (*models.Applicant, error) {
	if m.applicant == nil {
		return nil, sql.ErrNoRows
	}
	return m.applicant, nil
}

func (m *mockEvalApplicantRepo) UpdateStatus(ctx context.Context, id string, status models.ApplicantStatus) error {
	m.lastStatus = status
	return nil
}

func (m *mockEvalApplicantRepo) SetFinalResult(ctx context.Context, id string, status models.ApplicantStatus, finalScore int, isPassed bool) error {
	m.finalStatus = status
	m.finalScore = finalScore
	m.finalPassed = isPassed
	return nil
}

type mockAssignmentChecker struct {
	assigned bool
}

func (m *mockAssignmentChecker) Exists(ctx context.Context, applicantID, assessorID string) (bool, error) {
	return m.assigned, nil
}

func newEvaluationService(evals *mockEvaluationRepo, applicants *mockEvalApplicantRepo, assigned bool) *EvaluationService {
	return NewEvaluationService(evals, applicants, &mockAssignmentChecker{assigned: assigned}, nil, validator.New(), zap.NewNop())
}

func submitRequest(applicantID string, edu, work, ach, interview int) dto.SubmitEvaluationRequest {
	req := dto.SubmitEvaluationRequest{ApplicantID: applicantID}
	req.Scores.Education = dto.SectionScores{Score: edu}
	req.Scores.Work = dto.SectionScores{Score: work}
	req.Scores.Achievements = dto.SectionScores{Score: ach}
	req.Scores.Interview = dto.SectionScores{Score: interview}
	return req
}

const testApplicantID = "6f1a2b3c-4d5e-6f70-8192-a3b4c5d6e7f8"

func TestSubmitEvaluationPassingTotal(t *testing.T) {
	evals := &mockEvaluationRepo{}
	applicants := &mockEvalApplicantRepo{}
	svc := newEvaluationService(evals, applicants, true)

	evaluation, err := svc.Submit(context.Background(), "s1", submitRequest(testApplicantID, 18, 35, 20, 10))
	require.NoError(t, err)
	assert.Equal(t, 83, evaluation.TotalScore)
	assert.True(t, evaluation.IsPassed)
	assert.Equal(t, models.EvaluationDraft, evaluation.Status)
	assert.Equal(t, models.StatusUnderAssessment, applicants.lastStatus)
}

func TestSubmitEvaluationFailingTotal(t *testing.T) {
	evals := &mockEvaluationRepo{}
	applicants := &mockEvalApplicantRepo{}
	svc := newEvaluationService(evals, applicants, true)

	evaluation, err := svc.Submit(context.Background(), "s1", submitRequest(testApplicantID, 10, 20, 15, 10))
	require.NoError(t, err)
	assert.Equal(t, 55, evaluation.TotalScore)
	assert.False(t, evaluation.IsPassed)
}

func TestSubmitEvaluationExactThresholdPasses(t *testing.T) {
	svc := newEvaluationService(&mockEvaluationRepo{}, &mockEvalApplicantRepo{}, true)

	evaluation, err := svc.Submit(context.Background(), "s1", submitRequest(testApplicantID, 15, 25, 10, 10))
	require.NoError(t, err)
	assert.Equal(t, 60, evaluation.TotalScore)
	assert.True(t, evaluation.IsPassed)
}

func TestSubmitEvaluationSectionOverMax(t *testing.T) {
	svc := newEvaluationService(&mockEvaluationRepo{}, &mockEvalApplicantRepo{}, true)

	_, err := svc.Submit(context.Background(), "s1", submitRequest(testApplicantID, 21, 10, 10, 10))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.Submit(context.Background(), "s1", submitRequest(testApplicantID, 10, 41, 10, 10))
	require.Error(t, err)

	_, err = svc.Submit(context.Background(), "s1", submitRequest(testApplicantID, 10, 10, 26, 10))
	require.Error(t, err)

	_, err = svc.Submit(context.Background(), "s1", submitRequest(testApplicantID, 10, 10, 10, 16))
	require.Error(t, err)
}

func TestSubmitEvaluationNotAssigned(t *testing.T) {
	svc := newEvaluationService(&mockEvaluationRepo{}, &mockEvalApplicantRepo{}, false)

	_, err := svc.Submit(context.Background(), "s1", submitRequest(testApplicantID, 10, 10, 10, 10))
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotAssigned.Code, appErr.Code)
	assert.Equal(t, 404, appErr.Status)
}

func TestFinalizeTargetsMostRecentEvaluation(t *testing.T) {
	evals := &mockEvaluationRepo{}
	applicants := &mockEvalApplicantRepo{}
	svc := newEvaluationService(evals, applicants, true)

	_, err := svc.Submit(context.Background(), "s1", submitRequest(testApplicantID, 10, 20, 15, 10))
	require.NoError(t, err)
	second, err := svc.Submit(context.Background(), "s1", submitRequest(testApplicantID, 18, 35, 20, 10))
	require.NoError(t, err)

	finalized, err := svc.Finalize(context.Background(), "s1", dto.FinalizeEvaluationRequest{
		ApplicantID: testApplicantID,
		Comments:    "strong portfolio",
	})
	require.NoError(t, err)
	assert.Equal(t, second.ID, finalized.ID)
	assert.Equal(t, models.EvaluationFinalized, finalized.Status)
	assert.Equal(t, models.StatusEvaluatedPassed, applicants.finalStatus)
	assert.Equal(t, 83, applicants.finalScore)
	assert.True(t, applicants.finalPassed)
	require.Len(t, evals.comments, 1)
	assert.Equal(t, second.ID, evals.comments[0].EvaluationID)
}

func TestFinalizeDraftOwnedByAnotherAssessor(t *testing.T) {
	evals := &mockEvaluationRepo{}
	applicants := &mockEvalApplicantRepo{}
	svc := newEvaluationService(evals, applicants, true)

	_, err := svc.Submit(context.Background(), "s1", submitRequest(testApplicantID, 18, 35, 20, 10))
	require.NoError(t, err)

	// s2 is assigned too, but the latest draft belongs to s1
	_, err = svc.Finalize(context.Background(), "s2", dto.FinalizeEvaluationRequest{ApplicantID: testApplicantID})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)
	assert.Equal(t, 403, appErr.Status)
	assert.Empty(t, evals.finalized)
	assert.Empty(t, applicants.finalStatus)

	_, err = svc.Finalize(context.Background(), "s1", dto.FinalizeEvaluationRequest{ApplicantID: testApplicantID})
	require.NoError(t, err)
}

func TestFinalizeFailingEvaluation(t *testing.T) {
	evals := &mockEvaluationRepo{}
	applicants := &mockEvalApplicantRepo{}
	svc := newEvaluationService(evals, applicants, true)

	_, err := svc.Submit(context.Background(), "s1", submitRequest(testApplicantID, 10, 20, 15, 10))
	require.NoError(t, err)

	finalized, err := svc.Finalize(context.Background(), "s1", dto.FinalizeEvaluationRequest{ApplicantID: testApplicantID})
	require.NoError(t, err)
	assert.False(t, finalized.IsPassed)
	assert.Equal(t, models.StatusEvaluatedFailed, applicants.finalStatus)
	assert.Empty(t, evals.comments)
}

func TestFinalizeWithoutEvaluation(t *testing.T) {
	svc := newEvaluationService(&mockEvaluationRepo{}, &mockEvalApplicantRepo{}, true)

	_, err := svc.Finalize(context.Background(), "s1", dto.FinalizeEvaluationRequest{ApplicantID: testApplicantID})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNoEvaluation.Code, appErr.Code)
	assert.Equal(t, 400, appErr.Status)
}
