package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/eteeap/admissions-api/internal/dto"
	"github.com/eteeap/admissions-api/internal/models"
	appErrors "github.com/eteeap/admissions-api/pkg/errors"
)

type adminApplicantRepository interface {
	List(ctx context.Context, filter models.ApplicantFilter) ([]models.Applicant, int, error)
	FindByID(ctx context.Context, id string) (*models.Applicant, error)
	UpdateStatus(ctx context.Context, id string, status models.ApplicantStatus) error
}

type adminAssessorRepository interface {
	List(ctx context.Context) ([]models.Assessor, error)
	ListApproved(ctx context.Context) ([]models.Assessor, error)
	FindByID(ctx context.Context, id string) (*models.Assessor, error)
	Update(ctx context.Context, assessor *models.Assessor) error
	Delete(ctx context.Context, id string) error
}

type adminAccountRepository interface {
	List(ctx context.Context) ([]models.Admin, error)
	FindByID(ctx context.Context, id string) (*models.Admin, error)
	CountSuperAdmins(ctx context.Context) (int, error)
	Update(ctx context.Context, admin *models.Admin) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	Delete(ctx context.Context, id string) error
}

type adminAssignmentRepository interface {
	ListForAssessor(ctx context.Context, assessorID string, status models.ApplicantStatus) ([]models.AssignedApplicant, error)
	ListForApplicant(ctx context.Context, applicantID string) ([]models.AssignedAssessor, error)
	CountForAssessors(ctx context.Context) (map[string]int, error)
}

type adminEvaluationRepository interface {
	ListForApplicant(ctx context.Context, applicantID string) ([]models.Evaluation, error)
	ListComments(ctx context.Context, applicantID string) ([]models.EvaluationComment, error)
}

type adminDocumentRepository interface {
	ListByOwner(ctx context.Context, ownerID string) ([]models.Document, error)
}

// AdminService implements the back-office operations: applicant roster and
// final decisions, assessor management, and admin account management.
type AdminService struct {
	applicants  adminApplicantRepository
	assessors   adminAssessorRepository
	admins      adminAccountRepository
	assignments adminAssignmentRepository
	evaluations adminEvaluationRepository
	documents   adminDocumentRepository
	cache       cacheInvalidator
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewAdminService constructs an AdminService instance.
func NewAdminService(applicants adminApplicantRepository, assessors adminAssessorRepository, admins adminAccountRepository, assignments adminAssignmentRepository, evaluations adminEvaluationRepository, documents adminDocumentRepository, cache cacheInvalidator, validate *validator.Validate, logger *zap.Logger) *AdminService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AdminService{
		applicants:  applicants,
		assessors:   assessors,
		admins:      admins,
		assignments: assignments,
		evaluations: evaluations,
		documents:   documents,
		cache:       cache,
		validator:   validate,
		logger:      logger,
	}
}

// ListApplicants returns the roster with pagination metadata.
func (s *AdminService) ListApplicants(ctx context.Context, filter models.ApplicantFilter) ([]dto.ApplicantSummary, *models.Pagination, error) {
	applicants, total, err := s.applicants.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list applicants")
	}

	summaries := make([]dto.ApplicantSummary, 0, len(applicants))
	for i := range applicants {
		summaries = append(summaries, applicantSummary(&applicants[i]))
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 200 {
		pageSize = 50
	}
	return summaries, models.NewPagination(page, pageSize, total), nil
}

// GetApplicant returns the full applicant view including evaluation history.
func (s *AdminService) GetApplicant(ctx context.Context, id string) (*dto.ApplicantDetail, error) {
	applicant, err := s.applicants.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "applicant not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load applicant")
	}

	files, err := s.documents.ListByOwner(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list documents")
	}
	assessors, err := s.assignments.ListForApplicant(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assigned assessors")
	}
	evaluations, err := s.evaluations.ListForApplicant(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list evaluations")
	}
	comments, err := s.evaluations.ListComments(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list final comments")
	}

	detail := buildApplicantDetail(applicant, files, assessors, evaluations)
	detail.FinalComments = comments
	return detail, nil
}

// ApproveApplicant records the final admission decision.
func (s *AdminService) ApproveApplicant(ctx context.Context, id string) error {
	return s.setApplicantStatus(ctx, id, models.StatusApproved)
}

// RejectApplicant records a final rejection.
func (s *AdminService) RejectApplicant(ctx context.Context, id string) error {
	return s.setApplicantStatus(ctx, id, models.StatusRejected)
}

func (s *AdminService) setApplicantStatus(ctx context.Context, id string, status models.ApplicantStatus) error {
	if err := s.applicants.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "applicant not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update applicant status")
	}
	s.invalidateDashboard(ctx)
	s.logger.Info("applicant status changed", zap.String("applicant_id", id), zap.String("status", string(status)))
	return nil
}

// ListAssessors returns every assessor with assignment counts and worklists.
func (s *AdminService) ListAssessors(ctx context.Context) ([]dto.AssessorSummary, error) {
	assessors, err := s.assessors.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assessors")
	}
	counts, err := s.assignments.CountForAssessors(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count assignments")
	}

	summaries := make([]dto.AssessorSummary, 0, len(assessors))
	for i := range assessors {
		a := &assessors[i]
		summaries = append(summaries, dto.AssessorSummary{
			ID:              a.ID,
			AssessorNo:      a.AssessorNo,
			Email:           a.Email,
			FullName:        a.FullName,
			Expertise:       a.Expertise,
			AssessorType:    a.AssessorType,
			IsApproved:      a.IsApproved,
			ApplicantsCount: counts[a.ID],
			CreatedAt:       a.CreatedAt,
			LastLogin:       a.LastLogin,
		})
	}
	return summaries, nil
}

// GetAssessor returns one assessor with their assigned applicants attached.
func (s *AdminService) GetAssessor(ctx context.Context, id string) (*dto.AssessorSummary, error) {
	assessor, err := s.assessors.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assessor not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assessor")
	}

	assigned, err := s.assignments.ListForAssessor(ctx, id, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assigned applicants")
	}

	return &dto.AssessorSummary{
		ID:              assessor.ID,
		AssessorNo:      assessor.AssessorNo,
		Email:           assessor.Email,
		FullName:        assessor.FullName,
		Expertise:       assessor.Expertise,
		AssessorType:    assessor.AssessorType,
		IsApproved:      assessor.IsApproved,
		ApplicantsCount: len(assigned),
		Assigned:        assigned,
		CreatedAt:       assessor.CreatedAt,
		LastLogin:       assessor.LastLogin,
	}, nil
}

// UpdateAssessor edits an assessor account, including the approval flag that
// gates both login and new assignments.
func (s *AdminService) UpdateAssessor(ctx context.Context, id string, req dto.UpdateAssessorRequest) (*models.Assessor, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assessor payload")
	}

	assessor, err := s.assessors.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assessor not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assessor")
	}

	assessor.FullName = req.FullName
	assessor.Email = req.Email
	assessor.Expertise = models.Expertise(req.Expertise)
	assessor.AssessorType = models.AssessorType(req.AssessorType)
	assessor.IsApproved = *req.IsApproved

	if err := s.assessors.Update(ctx, assessor); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update assessor")
	}
	s.logger.Info("assessor updated", zap.String("assessor_id", id), zap.Bool("approved", assessor.IsApproved))
	return assessor, nil
}

// DeleteAssessor removes an assessor; the assignment cascade prunes them out
// of every applicant's panel.
func (s *AdminService) DeleteAssessor(ctx context.Context, id string) error {
	if err := s.assessors.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "assessor not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete assessor")
	}
	s.logger.Info("assessor deleted", zap.String("assessor_id", id))
	return nil
}

// ListApprovedAssessors backs the assignment picker.
func (s *AdminService) ListApprovedAssessors(ctx context.Context) ([]models.Assessor, error) {
	assessors, err := s.assessors.ListApproved(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list approved assessors")
	}
	return assessors, nil
}

// ListAdmins returns every back-office account.
func (s *AdminService) ListAdmins(ctx context.Context) ([]models.Admin, error) {
	admins, err := s.admins.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list admins")
	}
	return admins, nil
}

// GetAdmin returns one back-office account.
func (s *AdminService) GetAdmin(ctx context.Context, id string) (*models.Admin, error) {
	admin, err := s.admins.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "admin not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load admin")
	}
	return admin, nil
}

// UpdateAdmin edits another admin account. Demoting the last super admin is
// refused so the system always retains one.
func (s *AdminService) UpdateAdmin(ctx context.Context, actor *models.SessionClaims, id string, req dto.UpdateAdminRequest) (*models.Admin, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid admin payload")
	}
	if actor == nil || !actor.IsSuperAdmin {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only super admins can edit admin accounts")
	}

	admin, err := s.admins.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "admin not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load admin")
	}

	demoting := req.IsSuperAdmin != nil && !*req.IsSuperAdmin && admin.IsSuperAdmin
	if demoting {
		supers, err := s.admins.CountSuperAdmins(ctx)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count super admins")
		}
		if supers <= 1 {
			return nil, appErrors.Clone(appErrors.ErrConflict, "cannot demote the last super admin")
		}
	}

	admin.Email = req.Email
	admin.FullName = req.FullName
	if req.IsSuperAdmin != nil {
		admin.IsSuperAdmin = *req.IsSuperAdmin
	}

	if err := s.admins.Update(ctx, admin); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update admin")
	}
	s.logger.Info("admin updated", zap.String("admin_id", id))
	return admin, nil
}

// DeleteAdmin removes an admin account. Self-deletion and removing the last
// super admin are refused.
func (s *AdminService) DeleteAdmin(ctx context.Context, actor *models.SessionClaims, id string) error {
	if actor == nil || !actor.IsSuperAdmin {
		return appErrors.Clone(appErrors.ErrForbidden, "only super admins can delete admin accounts")
	}
	if actor.UserID == id {
		return appErrors.Clone(appErrors.ErrConflict, "cannot delete your own account")
	}

	admin, err := s.admins.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "admin not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load admin")
	}

	if admin.IsSuperAdmin {
		supers, err := s.admins.CountSuperAdmins(ctx)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count super admins")
		}
		if supers <= 1 {
			return appErrors.Clone(appErrors.ErrConflict, "cannot delete the last super admin")
		}
	}

	if err := s.admins.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete admin")
	}
	s.logger.Info("admin deleted", zap.String("admin_id", id))
	return nil
}

// ChangeAdminPassword updates a password. Self-changes must present the
// current password; super admins may reset others without it.
func (s *AdminService) ChangeAdminPassword(ctx context.Context, actor *models.SessionClaims, targetID string, req dto.ChangePasswordRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid password payload")
	}
	if actor == nil {
		return appErrors.Clone(appErrors.ErrUnauthorized, "")
	}

	selfChange := actor.UserID == targetID
	if !selfChange && !actor.IsSuperAdmin {
		return appErrors.Clone(appErrors.ErrForbidden, "only super admins can reset other admin passwords")
	}

	admin, err := s.admins.FindByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "admin not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load admin")
	}

	if selfChange {
		if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.CurrentPassword)) != nil {
			return appErrors.Clone(appErrors.ErrForbidden, "current password does not match")
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}
	if err := s.admins.UpdatePassword(ctx, targetID, string(hash)); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update password")
	}

	s.logger.Info("admin password changed", zap.String("admin_id", targetID), zap.Bool("self", selfChange))
	return nil
}

func (s *AdminService) invalidateDashboard(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, "dashboard:*"); err != nil {
		s.logger.Warn("failed to invalidate dashboard cache", zap.Error(err))
	}
}

func applicantSummary(applicant *models.Applicant) dto.ApplicantSummary {
	score := 0
	if applicant.FinalScore != nil {
		score = *applicant.FinalScore
	}
	return dto.ApplicantSummary{
		ID:              applicant.ID,
		ApplicantNo:     applicant.ApplicantNo,
		Name:            applicant.DisplayName(),
		Course:          applicant.Course(),
		ApplicationDate: applicant.CreatedAt,
		CurrentScore:    score,
		Status:          applicant.Status,
	}
}
