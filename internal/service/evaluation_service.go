package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/eteeap/admissions-api/internal/dto"
	"github.com/eteeap/admissions-api/internal/models"
	appErrors "github.com/eteeap/admissions-api/pkg/errors"
)

type evaluationRepository interface {
	Create(ctx context.Context, evaluation *models.Evaluation) error
	LatestForApplicant(ctx context.Context, applicantID string) (*models.Evaluation, error)
	LatestByAssessor(ctx context.Context, applicantID, assessorID string) (*models.Evaluation, error)
	Finalize(ctx context.Context, id, finalComments string, finalizedAt time.Time) error
	CreateComment(ctx context.Context, comment *models.EvaluationComment) error
}

type evaluationApplicantRepository interface {
	FindByID(ctx context.Context, id string) (*models.Applicant, error)
	UpdateStatus(ctx context.Context, id string, status models.ApplicantStatus) error
	SetFinalResult(ctx context.Context, id string, status models.ApplicantStatus, finalScore int, isPassed bool) error
}

type evaluationAssignmentRepository interface {
	Exists(ctx context.Context, applicantID, assessorID string) (bool, error)
}

type cacheInvalidator interface {
	DeleteByPattern(ctx context.Context, pattern string) error
}

// EvaluationService implements rubric scoring. Evaluations are append-only;
// re-submitting adds a new draft and finalization always targets the most
// recent row for the applicant.
type EvaluationService struct {
	evaluations evaluationRepository
	applicants  evaluationApplicantRepository
	assignments evaluationAssignmentRepository
	cache       cacheInvalidator
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewEvaluationService constructs an EvaluationService instance.
func NewEvaluationService(evaluations evaluationRepository, applicants evaluationApplicantRepository, assignments evaluationAssignmentRepository, cache cacheInvalidator, validate *validator.Validate, logger *zap.Logger) *EvaluationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &EvaluationService{
		evaluations: evaluations,
		applicants:  applicants,
		assignments: assignments,
		cache:       cache,
		validator:   validate,
		logger:      logger,
	}
}

// Submit appends a draft evaluation and moves the applicant to Under
// Assessment.
func (s *EvaluationService) Submit(ctx context.Context, assessorID string, req dto.SubmitEvaluationRequest) (*models.Evaluation, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid evaluation payload")
	}
	if err := validateSectionBounds(req); err != nil {
		return nil, err
	}

	if err := s.requireAssignment(ctx, req.ApplicantID, assessorID); err != nil {
		return nil, err
	}

	total := req.Scores.Education.Score + req.Scores.Work.Score + req.Scores.Achievements.Score + req.Scores.Interview.Score

	evaluation := &models.Evaluation{
		ApplicantID:  req.ApplicantID,
		AssessorID:   assessorID,
		Education:    toSection(req.Scores.Education),
		Work:         toSection(req.Scores.Work),
		Achievements: toSection(req.Scores.Achievements),
		Interview:    toSection(req.Scores.Interview),
		TotalScore:   total,
		IsPassed:     total >= models.PassingScore,
		Status:       models.EvaluationDraft,
	}
	if err := s.evaluations.Create(ctx, evaluation); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store evaluation")
	}

	if err := s.applicants.UpdateStatus(ctx, req.ApplicantID, models.StatusUnderAssessment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update applicant status")
	}
	s.invalidateDashboard(ctx)

	s.logger.Info("evaluation submitted",
		zap.String("applicant_id", req.ApplicantID),
		zap.String("assessor_id", assessorID),
		zap.Int("total_score", total))
	return evaluation, nil
}

// Finalize closes the applicant's most recent evaluation and writes the
// pass/fail outcome back onto the applicant.
func (s *EvaluationService) Finalize(ctx context.Context, assessorID string, req dto.FinalizeEvaluationRequest) (*models.Evaluation, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid finalize payload")
	}

	if err := s.requireAssignment(ctx, req.ApplicantID, assessorID); err != nil {
		return nil, err
	}

	evaluation, err := s.evaluations.LatestForApplicant(ctx, req.ApplicantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNoEvaluation, "")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load evaluation")
	}
	if evaluation.AssessorID != assessorID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "the latest evaluation was submitted by another assessor")
	}

	now := time.Now().UTC()
	if err := s.evaluations.Finalize(ctx, evaluation.ID, req.Comments, now); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to finalize evaluation")
	}
	evaluation.Status = models.EvaluationFinalized
	evaluation.FinalizedAt = &now
	if req.Comments != "" {
		evaluation.FinalComments = &req.Comments
		if err := s.evaluations.CreateComment(ctx, &models.EvaluationComment{
			ApplicantID:  req.ApplicantID,
			AssessorID:   assessorID,
			EvaluationID: evaluation.ID,
			Comments:     req.Comments,
		}); err != nil {
			s.logger.Warn("failed to record finalization comment", zap.Error(err))
		}
	}

	status := models.StatusEvaluatedFailed
	if evaluation.IsPassed {
		status = models.StatusEvaluatedPassed
	}
	if err := s.applicants.SetFinalResult(ctx, req.ApplicantID, status, evaluation.TotalScore, evaluation.IsPassed); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record final result")
	}
	s.invalidateDashboard(ctx)

	s.logger.Info("evaluation finalized",
		zap.String("applicant_id", req.ApplicantID),
		zap.String("evaluation_id", evaluation.ID),
		zap.Bool("passed", evaluation.IsPassed))
	return evaluation, nil
}

// LatestByAssessor returns the assessor's most recent scores for an
// applicant, used to pre-fill the evaluation form.
func (s *EvaluationService) LatestByAssessor(ctx context.Context, applicantID, assessorID string) (*models.Evaluation, error) {
	if err := s.requireAssignment(ctx, applicantID, assessorID); err != nil {
		return nil, err
	}

	evaluation, err := s.evaluations.LatestByAssessor(ctx, applicantID, assessorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no evaluation submitted yet")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load evaluation")
	}
	return evaluation, nil
}

func (s *EvaluationService) requireAssignment(ctx context.Context, applicantID, assessorID string) error {
	assigned, err := s.assignments.Exists(ctx, applicantID, assessorID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check assignment")
	}
	if !assigned {
		return appErrors.Clone(appErrors.ErrNotAssigned, "")
	}
	return nil
}

func (s *EvaluationService) invalidateDashboard(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, "dashboard:*"); err != nil {
		s.logger.Warn("failed to invalidate dashboard cache", zap.Error(err))
	}
}

func validateSectionBounds(req dto.SubmitEvaluationRequest) error {
	checks := []struct {
		name  string
		score int
		max   int
	}{
		{"educational qualification", req.Scores.Education.Score, models.MaxEducationScore},
		{"work experience", req.Scores.Work.Score, models.MaxWorkScore},
		{"professional achievements", req.Scores.Achievements.Score, models.MaxAchievementsScore},
		{"interview", req.Scores.Interview.Score, models.MaxInterviewScore},
	}
	for _, check := range checks {
		if check.score < 0 || check.score > check.max {
			return appErrors.Clone(appErrors.ErrValidation,
				fmt.Sprintf("%s score must be between 0 and %d", check.name, check.max))
		}
	}
	return nil
}

func toSection(scores dto.SectionScores) models.Section {
	return models.Section{
		Score:     scores.Score,
		Comments:  scores.Comments,
		Breakdown: scores.Breakdown,
	}
}
