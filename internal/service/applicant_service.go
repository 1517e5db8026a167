package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/eteeap/admissions-api/internal/dto"
	"github.com/eteeap/admissions-api/internal/models"
	appErrors "github.com/eteeap/admissions-api/pkg/errors"
)

type applicantRepository interface {
	FindByID(ctx context.Context, id string) (*models.Applicant, error)
	UpdatePersonalInfo(ctx context.Context, id string, info models.PersonalInfo) error
}

type applicantDocumentLister interface {
	ListByOwner(ctx context.Context, ownerID string) ([]models.Document, error)
}

type applicantAssignmentLister interface {
	ListForApplicant(ctx context.Context, applicantID string) ([]models.AssignedAssessor, error)
}

// ApplicantService serves the applicant's own profile views and personal
// information updates.
type ApplicantService struct {
	applicants  applicantRepository
	documents   applicantDocumentLister
	assignments applicantAssignmentLister
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewApplicantService constructs an ApplicantService instance.
func NewApplicantService(applicants applicantRepository, documents applicantDocumentLister, assignments applicantAssignmentLister, validate *validator.Validate, logger *zap.Logger) *ApplicantService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ApplicantService{
		applicants:  applicants,
		documents:   documents,
		assignments: assignments,
		validator:   validate,
		logger:      logger,
	}
}

// Profile assembles the applicant's full view: account, profile block,
// uploaded files, and assigned assessors.
func (s *ApplicantService) Profile(ctx context.Context, applicantID string) (*dto.ApplicantDetail, error) {
	applicant, err := s.applicants.FindByID(ctx, applicantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "applicant not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load applicant")
	}

	files, err := s.documents.ListByOwner(ctx, applicantID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list documents")
	}

	assessors, err := s.assignments.ListForApplicant(ctx, applicantID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assigned assessors")
	}

	return buildApplicantDetail(applicant, files, assessors, nil), nil
}

// UpdatePersonalInfo replaces the applicant's profile block after checking
// that every mandatory intake field is present.
func (s *ApplicantService) UpdatePersonalInfo(ctx context.Context, applicantID string, req dto.UpdatePersonalInfoRequest) (*models.Applicant, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid profile payload")
	}
	if missing := missingPersonalInfoFields(req.PersonalInfo); len(missing) > 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("missing required fields: %v", missing))
	}

	if err := s.applicants.UpdatePersonalInfo(ctx, applicantID, req.PersonalInfo); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "applicant not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update profile")
	}

	applicant, err := s.applicants.FindByID(ctx, applicantID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reload applicant")
	}

	s.logger.Info("personal info updated", zap.String("applicant_id", applicantID))
	return applicant, nil
}

func missingPersonalInfoFields(info models.PersonalInfo) []string {
	present := map[string]bool{
		"firstname":           info.FirstName != "",
		"lastname":            info.LastName != "",
		"gender":              info.Gender != "",
		"age":                 info.Age > 0,
		"occupation":          info.Occupation != "",
		"nationality":         info.Nationality != "",
		"civilstatus":         info.CivilStatus != "",
		"birthDate":           info.BirthDate != "",
		"birthplace":          info.BirthPlace != "",
		"mobileNumber":        info.MobileNumber != "",
		"emailAddress":        info.EmailAddress != "",
		"country":             info.Country != "",
		"province":            info.Province != "",
		"city":                info.City != "",
		"street":              info.Street != "",
		"zipCode":             info.ZipCode != "",
		"firstPriorityCourse": info.FirstPriorityCourse != "",
	}

	var missing []string
	for _, field := range dto.RequiredPersonalInfoFields {
		if !present[field] {
			missing = append(missing, field)
		}
	}
	return missing
}

func buildApplicantDetail(applicant *models.Applicant, files []models.Document, assessors []models.AssignedAssessor, evaluations []models.Evaluation) *dto.ApplicantDetail {
	return &dto.ApplicantDetail{
		ID:                applicant.ID,
		ApplicantNo:       applicant.ApplicantNo,
		Email:             applicant.Email,
		Name:              applicant.DisplayName(),
		Course:            applicant.Course(),
		Status:            applicant.Status,
		PersonalInfo:      applicant.PersonalInfo,
		Files:             files,
		AssignedAssessors: assessors,
		Evaluations:       evaluations,
		FinalScore:        applicant.FinalScore,
		IsPassed:          applicant.IsPassed,
		CreatedAt:         applicant.CreatedAt,
	}
}
