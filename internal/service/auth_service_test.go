package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/eteeap/admissions-api/internal/dto"
	"github.com/eteeap/admissions-api/internal/models"
	appErrors "github.com/eteeap/admissions-api/pkg/errors"
)

type mockApplicantAuthRepo struct {
	byEmail *models.Applicant
	byID    *models.Applicant
	created *models.Applicant
}

func (m *mockApplicantAuthRepo) Create(ctx context.Context, applicant *models.Applicant) error {
	applicant.ID = "applicant-1"
	m.created = applicant
	return nil
}

func (m *mockApplicantAuthRepo) FindByEmail(ctx context.Context, email string) (*models.Applicant, error) {
	if m.byEmail == nil {
		return nil, sql.ErrNoRows
	}
	return m.byEmail, nil
}

func (m *mockApplicantAuthRepo) FindByID(ctx context.Context, id string) (*models.Applicant, error) {
	if m.byID == nil {
		return nil, sql.ErrNoRows
	}
	return m.byID, nil
}

type mockAssessorAuthRepo struct {
	byEmail          *models.Assessor
	byID             *models.Assessor
	created          *models.Assessor
	lastLoginUpdated bool
}

func (m *mockAssessorAuthRepo) Create(ctx context.Context, assessor *models.Assessor) error {
	assessor.ID = "assessor-1"
	m.created = assessor
	return nil
}

func (m *mockAssessorAuthRepo) FindByEmail(ctx context.Context, email string) (*models.Assessor, error) {
	if m.byEmail == nil {
		return nil, sql.ErrNoRows
	}
	return m.byEmail, nil
}

func (m *mockAssessorAuthRepo) FindByID(ctx context.Context, id string) (*models.Assessor, error) {
	if m.byID == nil {
		return nil, sql.ErrNoRows
	}
	return m.byID, nil
}

func (m *mockAssessorAuthRepo) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	m.lastLoginUpdated = true
	return nil
}

type mockAdminAuthRepo struct {
	byEmail          *models.Admin
	byID             *models.Admin
	created          *models.Admin
	count            int
	lastLoginUpdated bool
}

func (m *mockAdminAuthRepo) Create(ctx context.Context, admin *models.Admin) error {
	admin.ID = "admin-1"
	m.created = admin
	return nil
}

func (m *mockAdminAuthRepo) FindByEmail(ctx context.Context, email string) (*models.Admin, error) {
	if m.byEmail == nil {
		return nil, sql.ErrNoRows
	}
	return m.byEmail, nil
}

func (m *mockAdminAuthRepo) FindByID(ctx context.Context, id string) (*models.Admin, error) {
	if m.byID == nil {
		return nil, sql.ErrNoRows
	}
	return m.byID, nil
}

func (m *mockAdminAuthRepo) Count(ctx context.Context) (int, error) {
	return m.count, nil
}

func (m *mockAdminAuthRepo) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	m.lastLoginUpdated = true
	return nil
}

type mockCounterRepo struct {
	next int64
}

func (m *mockCounterRepo) Next(ctx context.Context, role string, start int64) (int64, error) {
	if m.next == 0 {
		m.next = start
	}
	m.next++
	return m.next, nil
}

func newAuthService(applicants *mockApplicantAuthRepo, assessors *mockAssessorAuthRepo, admins *mockAdminAuthRepo) *AuthService {
	return NewAuthService(applicants, assessors, admins, &mockCounterRepo{}, validator.New(), zap.NewNop(), AuthConfig{
		Secret:          "secret",
		ApplicantExpiry: time.Hour,
		AssessorExpiry:  time.Hour,
		AdminExpiry:     8 * time.Hour,
		Issuer:          "admissions-api",
		CounterStart:    1000,
	})
}

func TestRegisterApplicantAllocatesNumber(t *testing.T) {
	applicants := &mockApplicantAuthRepo{}
	svc := newAuthService(applicants, &mockAssessorAuthRepo{}, &mockAdminAuthRepo{})

	applicant, err := svc.RegisterApplicant(context.Background(), dto.RegisterApplicantRequest{
		Email:    "juan@example.com",
		Password: "password1",
	})
	require.NoError(t, err)
	assert.Equal(t, "APL1001", applicant.ApplicantNo)
	assert.Equal(t, models.StatusPendingReview, applicant.Status)
	assert.NotEqual(t, "password1", applicant.PasswordHash)
}

func TestRegisterApplicantDuplicateEmail(t *testing.T) {
	applicants := &mockApplicantAuthRepo{byEmail: &models.Applicant{ID: "existing"}}
	svc := newAuthService(applicants, &mockAssessorAuthRepo{}, &mockAdminAuthRepo{})

	_, err := svc.RegisterApplicant(context.Background(), dto.RegisterApplicantRequest{
		Email:    "juan@example.com",
		Password: "password1",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrDuplicateEmail.Code, appErrors.FromError(err).Code)
}

func TestRegisterAssessorAllocatesNumber(t *testing.T) {
	assessors := &mockAssessorAuthRepo{}
	svc := newAuthService(&mockApplicantAuthRepo{}, assessors, &mockAdminAuthRepo{})

	assessor, err := svc.RegisterAssessor(context.Background(), dto.RegisterAssessorRequest{
		Email:        "maria@example.com",
		Password:     "password1",
		FullName:     "Maria Reyes",
		Expertise:    "engineering",
		AssessorType: "external",
	})
	require.NoError(t, err)
	assert.Equal(t, "AST1001", assessor.AssessorNo)
	assert.True(t, assessor.IsApproved)
}

func TestLoginAssessorUnapproved(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("password1"), bcrypt.DefaultCost)
	assessors := &mockAssessorAuthRepo{byEmail: &models.Assessor{
		ID:           "s1",
		Email:        "maria@example.com",
		PasswordHash: string(hash),
		IsApproved:   false,
	}}
	svc := newAuthService(&mockApplicantAuthRepo{}, assessors, &mockAdminAuthRepo{})

	_, err := svc.LoginAssessor(context.Background(), dto.LoginRequest{Email: "maria@example.com", Password: "password1"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotApproved.Code, appErr.Code)
	assert.Equal(t, 403, appErr.Status)
	assert.False(t, assessors.lastLoginUpdated)
}

func TestLoginApplicantWrongPassword(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("password1"), bcrypt.DefaultCost)
	applicants := &mockApplicantAuthRepo{byEmail: &models.Applicant{ID: "a1", Email: "juan@example.com", PasswordHash: string(hash)}}
	svc := newAuthService(applicants, &mockAssessorAuthRepo{}, &mockAdminAuthRepo{})

	_, err := svc.LoginApplicant(context.Background(), dto.LoginRequest{Email: "juan@example.com", Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestRegisterFirstAdminBecomesSuperAdmin(t *testing.T) {
	admins := &mockAdminAuthRepo{count: 0}
	svc := newAuthService(&mockApplicantAuthRepo{}, &mockAssessorAuthRepo{}, admins)

	admin, err := svc.RegisterAdmin(context.Background(), dto.RegisterAdminRequest{
		Email:    "root@example.com",
		Password: "password1",
		FullName: "Root Admin",
	}, nil)
	require.NoError(t, err)
	assert.True(t, admin.IsSuperAdmin)
}

func TestRegisterSecondAdminRequiresSuperAdmin(t *testing.T) {
	admins := &mockAdminAuthRepo{count: 1}
	svc := newAuthService(&mockApplicantAuthRepo{}, &mockAssessorAuthRepo{}, admins)

	req := dto.RegisterAdminRequest{Email: "second@example.com", Password: "password1", FullName: "Second"}

	_, err := svc.RegisterAdmin(context.Background(), req, nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)

	_, err = svc.RegisterAdmin(context.Background(), req, &models.SessionClaims{UserID: "admin-1", Role: models.RoleAdmin})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	admin, err := svc.RegisterAdmin(context.Background(), req, &models.SessionClaims{UserID: "admin-1", Role: models.RoleAdmin, IsSuperAdmin: true})
	require.NoError(t, err)
	assert.False(t, admin.IsSuperAdmin)
}

func TestLoginAdminTokenRoundTrip(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("password1"), bcrypt.DefaultCost)
	admins := &mockAdminAuthRepo{byEmail: &models.Admin{
		ID:           "admin-1",
		Email:        "root@example.com",
		PasswordHash: string(hash),
		FullName:     "Root Admin",
		IsSuperAdmin: true,
	}}
	svc := newAuthService(&mockApplicantAuthRepo{}, &mockAssessorAuthRepo{}, admins)

	res, err := svc.LoginAdmin(context.Background(), dto.LoginRequest{Email: "root@example.com", Password: "password1"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.True(t, admins.lastLoginUpdated)

	claims, err := svc.ValidateToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, "admin-1", claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
	assert.True(t, claims.IsSuperAdmin)
}

func TestAuthStatusInvalidToken(t *testing.T) {
	svc := newAuthService(&mockApplicantAuthRepo{}, &mockAssessorAuthRepo{}, &mockAdminAuthRepo{})

	status := svc.AuthStatus(context.Background(), models.RoleApplicant, "not-a-token")
	assert.False(t, status.Authenticated)

	status = svc.AuthStatus(context.Background(), models.RoleApplicant, "")
	assert.False(t, status.Authenticated)
}

func TestAuthStatusWrongRoleCookie(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("password1"), bcrypt.DefaultCost)
	applicants := &mockApplicantAuthRepo{byEmail: &models.Applicant{ID: "a1", Email: "juan@example.com", PasswordHash: string(hash)}}
	svc := newAuthService(applicants, &mockAssessorAuthRepo{}, &mockAdminAuthRepo{})

	res, err := svc.LoginApplicant(context.Background(), dto.LoginRequest{Email: "juan@example.com", Password: "password1"})
	require.NoError(t, err)

	// an applicant token presented against the admin status endpoint
	status := svc.AuthStatus(context.Background(), models.RoleAdmin, res.Token)
	assert.False(t, status.Authenticated)
}
