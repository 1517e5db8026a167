package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/eteeap/admissions-api/internal/dto"
	"github.com/eteeap/admissions-api/internal/models"
	appErrors "github.com/eteeap/admissions-api/pkg/errors"
)

type authApplicantRepository interface {
	Create(ctx context.Context, applicant *models.Applicant) error
	FindByEmail(ctx context.Context, email string) (*models.Applicant, error)
	FindByID(ctx context.Context, id string) (*models.Applicant, error)
}

type authAssessorRepository interface {
	Create(ctx context.Context, assessor *models.Assessor) error
	FindByEmail(ctx context.Context, email string) (*models.Assessor, error)
	FindByID(ctx context.Context, id string) (*models.Assessor, error)
	UpdateLastLogin(ctx context.Context, id string, ts time.Time) error
}

type authAdminRepository interface {
	Create(ctx context.Context, admin *models.Admin) error
	FindByEmail(ctx context.Context, email string) (*models.Admin, error)
	FindByID(ctx context.Context, id string) (*models.Admin, error)
	Count(ctx context.Context) (int, error)
	UpdateLastLogin(ctx context.Context, id string, ts time.Time) error
}

type counterRepository interface {
	Next(ctx context.Context, role string, start int64) (int64, error)
}

// AuthConfig defines configuration for the three session kinds.
type AuthConfig struct {
	Secret          string
	ApplicantExpiry time.Duration
	AssessorExpiry  time.Duration
	AdminExpiry     time.Duration
	Issuer          string
	CounterStart    int64
}

// AuthService handles registration, login, and token validation for the
// applicant, assessor, and admin account pools. Each pool is independent, so
// the same email may exist once per role.
type AuthService struct {
	applicants authApplicantRepository
	assessors  authAssessorRepository
	admins     authAdminRepository
	counters   counterRepository
	validator  *validator.Validate
	logger     *zap.Logger
	config     AuthConfig
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(applicants authApplicantRepository, assessors authAssessorRepository, admins authAdminRepository, counters counterRepository, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if config.CounterStart <= 0 {
		config.CounterStart = 1000
	}
	return &AuthService{
		applicants: applicants,
		assessors:  assessors,
		admins:     admins,
		counters:   counters,
		validator:  validate,
		logger:     logger,
		config:     config,
	}
}

// RegisterApplicant creates an applicant account with a freshly allocated
// applicant number.
func (s *AuthService) RegisterApplicant(ctx context.Context, req dto.RegisterApplicantRequest) (*models.Applicant, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid registration payload")
	}

	if _, err := s.applicants.FindByEmail(ctx, req.Email); err == nil {
		return nil, appErrors.Clone(appErrors.ErrDuplicateEmail, "")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing applicant")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	applicantNo, err := s.nextIdentifier(ctx, models.RoleApplicant)
	if err != nil {
		return nil, err
	}

	applicant := &models.Applicant{
		ApplicantNo:  applicantNo,
		Email:        req.Email,
		PasswordHash: string(hash),
		Status:       models.StatusPendingReview,
	}
	if err := s.applicants.Create(ctx, applicant); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create applicant")
	}

	s.logger.Info("applicant registered", zap.String("applicant_no", applicant.ApplicantNo))
	return applicant, nil
}

// RegisterAssessor creates an evaluator account. Accounts are stored approved
// so existing panels keep working, but login still checks the flag so an
// admin can revoke access.
func (s *AuthService) RegisterAssessor(ctx context.Context, req dto.RegisterAssessorRequest) (*models.Assessor, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid registration payload")
	}

	if _, err := s.assessors.FindByEmail(ctx, req.Email); err == nil {
		return nil, appErrors.Clone(appErrors.ErrDuplicateEmail, "")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing assessor")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	assessorNo, err := s.nextIdentifier(ctx, models.RoleAssessor)
	if err != nil {
		return nil, err
	}

	assessor := &models.Assessor{
		AssessorNo:   assessorNo,
		Email:        req.Email,
		PasswordHash: string(hash),
		FullName:     req.FullName,
		Expertise:    models.Expertise(req.Expertise),
		AssessorType: models.AssessorType(req.AssessorType),
		IsApproved:   true,
	}
	if err := s.assessors.Create(ctx, assessor); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create assessor")
	}

	s.logger.Info("assessor registered", zap.String("assessor_no", assessor.AssessorNo))
	return assessor, nil
}

// RegisterAdmin creates a back-office account. The very first admin registers
// without a session and becomes super admin; every later registration
// requires an authenticated super admin.
func (s *AuthService) RegisterAdmin(ctx context.Context, req dto.RegisterAdminRequest, actor *models.SessionClaims) (*models.Admin, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid registration payload")
	}

	total, err := s.admins.Count(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count admins")
	}

	if total > 0 {
		if actor == nil {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "admin registration requires a super admin session")
		}
		if !actor.IsSuperAdmin {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "only super admins can register new admins")
		}
	}

	if _, err := s.admins.FindByEmail(ctx, req.Email); err == nil {
		return nil, appErrors.Clone(appErrors.ErrDuplicateEmail, "")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing admin")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	admin := &models.Admin{
		Email:        req.Email,
		PasswordHash: string(hash),
		FullName:     req.FullName,
		IsSuperAdmin: total == 0,
	}
	if err := s.admins.Create(ctx, admin); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create admin")
	}

	s.logger.Info("admin registered", zap.String("email", admin.Email), zap.Bool("super_admin", admin.IsSuperAdmin))
	return admin, nil
}

// LoginApplicant authenticates an applicant and issues a session token.
func (s *AuthService) LoginApplicant(ctx context.Context, req dto.LoginRequest) (*dto.LoginResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}

	applicant, err := s.applicants.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch applicant")
	}
	if bcrypt.CompareHashAndPassword([]byte(applicant.PasswordHash), []byte(req.Password)) != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
	}

	token, expiresAt, err := s.issueToken(models.SessionClaims{
		UserID: applicant.ID,
		Role:   models.RoleApplicant,
		Email:  applicant.Email,
	}, s.config.ApplicantExpiry)
	if err != nil {
		return nil, err
	}

	return &dto.LoginResult{Token: token, ExpiresAt: expiresAt, Profile: applicantProfile(applicant)}, nil
}

// LoginAssessor authenticates an assessor. Unapproved accounts are rejected
// even with correct credentials.
func (s *AuthService) LoginAssessor(ctx context.Context, req dto.LoginRequest) (*dto.LoginResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}

	assessor, err := s.assessors.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch assessor")
	}
	if bcrypt.CompareHashAndPassword([]byte(assessor.PasswordHash), []byte(req.Password)) != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
	}
	if !assessor.IsApproved {
		return nil, appErrors.Clone(appErrors.ErrNotApproved, "")
	}

	if err := s.assessors.UpdateLastLogin(ctx, assessor.ID, time.Now().UTC()); err != nil {
		s.logger.Warn("failed to update assessor last login", zap.Error(err))
	}

	token, expiresAt, err := s.issueToken(models.SessionClaims{
		UserID:   assessor.ID,
		Role:     models.RoleAssessor,
		Email:    assessor.Email,
		FullName: assessor.FullName,
	}, s.config.AssessorExpiry)
	if err != nil {
		return nil, err
	}

	return &dto.LoginResult{Token: token, ExpiresAt: expiresAt, Profile: assessorProfile(assessor)}, nil
}

// LoginAdmin authenticates an admin and issues a workday-length session.
func (s *AuthService) LoginAdmin(ctx context.Context, req dto.LoginRequest) (*dto.LoginResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}

	admin, err := s.admins.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch admin")
	}
	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)) != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
	}

	if err := s.admins.UpdateLastLogin(ctx, admin.ID, time.Now().UTC()); err != nil {
		s.logger.Warn("failed to update admin last login", zap.Error(err))
	}

	token, expiresAt, err := s.issueToken(models.SessionClaims{
		UserID:       admin.ID,
		Role:         models.RoleAdmin,
		Email:        admin.Email,
		FullName:     admin.FullName,
		IsSuperAdmin: admin.IsSuperAdmin,
	}, s.config.AdminExpiry)
	if err != nil {
		return nil, err
	}

	return &dto.LoginResult{Token: token, ExpiresAt: expiresAt, Profile: adminProfile(admin)}, nil
}

// AuthStatus resolves a session cookie into a fresh profile. Failures are
// reported in the payload, never as an HTTP error.
func (s *AuthService) AuthStatus(ctx context.Context, role models.Role, token string) dto.AuthStatusResponse {
	if token == "" {
		return dto.AuthStatusResponse{Authenticated: false, Message: "no active session"}
	}

	claims, err := s.ValidateToken(token)
	if err != nil || claims.Role != role {
		return dto.AuthStatusResponse{Authenticated: false, Message: "session expired or invalid"}
	}

	var profile interface{}
	switch role {
	case models.RoleApplicant:
		applicant, err := s.applicants.FindByID(ctx, claims.UserID)
		if err != nil {
			return dto.AuthStatusResponse{Authenticated: false, Message: "account no longer exists"}
		}
		profile = applicantProfile(applicant)
	case models.RoleAssessor:
		assessor, err := s.assessors.FindByID(ctx, claims.UserID)
		if err != nil {
			return dto.AuthStatusResponse{Authenticated: false, Message: "account no longer exists"}
		}
		profile = assessorProfile(assessor)
	case models.RoleAdmin:
		admin, err := s.admins.FindByID(ctx, claims.UserID)
		if err != nil {
			return dto.AuthStatusResponse{Authenticated: false, Message: "account no longer exists"}
		}
		profile = adminProfile(admin)
	}

	return dto.AuthStatusResponse{Authenticated: true, User: profile}
}

// ValidateToken parses and validates a session token returning the claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.SessionClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}

	return claims, nil
}

func (s *AuthService) issueToken(claims models.SessionClaims, expiry time.Duration) (string, time.Time, error) {
	issuedAt := time.Now().UTC()
	expiresAt := issuedAt.Add(expiry)
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Issuer:    s.config.Issuer,
		Subject:   claims.UserID,
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		NotBefore: jwt.NewNumericDate(issuedAt),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims)
	signed, err := token.SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", time.Time{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign token")
	}
	return signed, expiresAt, nil
}

// nextIdentifier allocates the next human-readable number for the role,
// e.g. APL1001 or AST1001.
func (s *AuthService) nextIdentifier(ctx context.Context, role models.Role) (string, error) {
	seq, err := s.counters.Next(ctx, string(role), s.config.CounterStart)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to allocate identifier")
	}
	prefix := "APL"
	if role == models.RoleAssessor {
		prefix = "AST"
	}
	return fmt.Sprintf("%s%04d", prefix, seq), nil
}

func applicantProfile(a *models.Applicant) map[string]interface{} {
	return map[string]interface{}{
		"_id":          a.ID,
		"applicantId":  a.ApplicantNo,
		"email":        a.Email,
		"status":       a.Status,
		"personalInfo": a.PersonalInfo,
		"createdAt":    a.CreatedAt,
	}
}

func assessorProfile(a *models.Assessor) map[string]interface{} {
	return map[string]interface{}{
		"_id":          a.ID,
		"assessorId":   a.AssessorNo,
		"email":        a.Email,
		"fullName":     a.FullName,
		"expertise":    a.Expertise,
		"assessorType": a.AssessorType,
		"isApproved":   a.IsApproved,
	}
}

func adminProfile(a *models.Admin) map[string]interface{} {
	return map[string]interface{}{
		"_id":          a.ID,
		"email":        a.Email,
		"fullName":     a.FullName,
		"isSuperAdmin": a.IsSuperAdmin,
	}
}
