package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/eteeap/admissions-api/internal/dto"
	"github.com/eteeap/admissions-api/internal/models"
	appErrors "github.com/eteeap/admissions-api/pkg/errors"
)

type assignmentRepository interface {
	Upsert(ctx context.Context, assignment *models.Assignment) error
	Exists(ctx context.Context, applicantID, assessorID string) (bool, error)
	ListForAssessor(ctx context.Context, assessorID string, status models.ApplicantStatus) ([]models.AssignedApplicant, error)
	ListForApplicant(ctx context.Context, applicantID string) ([]models.AssignedAssessor, error)
}

type assignmentApplicantRepository interface {
	FindByID(ctx context.Context, id string) (*models.Applicant, error)
	UpdateStatus(ctx context.Context, id string, status models.ApplicantStatus) error
}

type assignmentAssessorRepository interface {
	FindByID(ctx context.Context, id string) (*models.Assessor, error)
}

// AssignmentService links applicants to the assessors who will score them.
// The link is a set: assigning the same pair twice is not an error and leaves
// a single assignment.
type AssignmentService struct {
	assignments assignmentRepository
	applicants  assignmentApplicantRepository
	assessors   assignmentAssessorRepository
	cache       cacheInvalidator
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewAssignmentService constructs an AssignmentService instance.
func NewAssignmentService(assignments assignmentRepository, applicants assignmentApplicantRepository, assessors assignmentAssessorRepository, cache cacheInvalidator, validate *validator.Validate, logger *zap.Logger) *AssignmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AssignmentService{
		assignments: assignments,
		applicants:  applicants,
		assessors:   assessors,
		cache:       cache,
		validator:   validate,
		logger:      logger,
	}
}

// Assign links an applicant to an approved assessor, snapshotting the
// applicant's name and course at assignment time.
func (s *AssignmentService) Assign(ctx context.Context, req dto.AssignAssessorRequest) (*models.Assignment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}

	applicant, err := s.applicants.FindByID(ctx, req.ApplicantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "applicant not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load applicant")
	}

	assessor, err := s.assessors.FindByID(ctx, req.AssessorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assessor not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assessor")
	}
	if !assessor.IsApproved {
		return nil, appErrors.Clone(appErrors.ErrAssessorNotEligible, "")
	}

	assignment := &models.Assignment{
		ApplicantID: applicant.ID,
		AssessorID:  assessor.ID,
		FullName:    applicant.DisplayName(),
		Course:      applicant.Course(),
		Status:      string(models.StatusUnderAssessment),
	}
	if err := s.assignments.Upsert(ctx, assignment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store assignment")
	}

	if err := s.applicants.UpdateStatus(ctx, applicant.ID, models.StatusUnderAssessment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update applicant status")
	}
	s.invalidateDashboard(ctx)

	s.logger.Info("assessor assigned",
		zap.String("applicant_id", applicant.ID),
		zap.String("assessor_id", assessor.ID))
	return assignment, nil
}

// ListForAssessor returns the assessor's worklist, optionally filtered by
// applicant status.
func (s *AssignmentService) ListForAssessor(ctx context.Context, assessorID string, status models.ApplicantStatus) ([]models.AssignedApplicant, error) {
	assigned, err := s.assignments.ListForAssessor(ctx, assessorID, status)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assigned applicants")
	}
	return assigned, nil
}

// EnsureAssigned verifies the applicant is on the assessor's worklist. Used
// to scope assessor-side applicant views to their own panel.
func (s *AssignmentService) EnsureAssigned(ctx context.Context, applicantID, assessorID string) error {
	assigned, err := s.assignments.Exists(ctx, applicantID, assessorID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check assignment")
	}
	if !assigned {
		return appErrors.Clone(appErrors.ErrNotAssigned, "")
	}
	return nil
}

func (s *AssignmentService) invalidateDashboard(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, "dashboard:*"); err != nil {
		s.logger.Warn("failed to invalidate dashboard cache", zap.Error(err))
	}
}

// ListForApplicant returns the assessors linked to an applicant.
func (s *AssignmentService) ListForApplicant(ctx context.Context, applicantID string) ([]models.AssignedAssessor, error) {
	assigned, err := s.assignments.ListForApplicant(ctx, applicantID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assigned assessors")
	}
	return assigned, nil
}
