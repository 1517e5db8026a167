package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/eteeap/admissions-api/internal/models"
	"github.com/eteeap/admissions-api/internal/service"
)

type fakeApplicantRepo struct {
	byEmail *models.Applicant
}

func (f *fakeApplicantRepo) Create(ctx context.Context, applicant *models.Applicant) error {
	applicant.ID = "applicant-1"
	return nil
}

func (f *fakeApplicantRepo) FindByEmail(ctx context.Context, email string) (*models.Applicant, error) {
	if f.byEmail == nil {
		return nil, sql.ErrNoRows
	}
	return f.byEmail, nil
}

func (f *fakeApplicantRepo) FindByID(ctx context.Context, id string) (*models.Applicant, error) {
	if f.byEmail == nil {
		return nil, sql.ErrNoRows
	}
	return f.byEmail, nil
}

type fakeAssessorRepo struct{}

func (f *fakeAssessorRepo) Create(ctx context.Context, assessor *models.Assessor) error { return nil }
func (f *fakeAssessorRepo) FindByEmail(ctx context.Context, email string) (*models.Assessor, error) {
	return nil, sql.ErrNoRows
}
func (f *fakeAssessorRepo) FindByID(ctx context.Context, id string) (*models.Assessor, error) {
	return nil, sql.ErrNoRows
}
func (f *fakeAssessorRepo) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	return nil
}

type fakeAdminRepo struct{}

func (f *fakeAdminRepo) Create(ctx context.Context, admin *models.Admin) error { return nil }
func (f *fakeAdminRepo) FindByEmail(ctx context.Context, email string) (*models.Admin, error) {
	return nil, sql.ErrNoRows
}
func (f *fakeAdminRepo) FindByID(ctx context.Context, id string) (*models.Admin, error) {
	return nil, sql.ErrNoRows
}
func (f *fakeAdminRepo) Count(ctx context.Context) (int, error) { return 0, nil }
func (f *fakeAdminRepo) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	return nil
}

type fakeCounterRepo struct{ seq int64 }

func (f *fakeCounterRepo) Next(ctx context.Context, role string, start int64) (int64, error) {
	if f.seq == 0 {
		f.seq = start
	}
	f.seq++
	return f.seq, nil
}

func newTestAuthHandler(applicants *fakeApplicantRepo) *AuthHandler {
	svc := service.NewAuthService(applicants, &fakeAssessorRepo{}, &fakeAdminRepo{}, &fakeCounterRepo{},
		validator.New(), zap.NewNop(), service.AuthConfig{
			Secret:          "test-secret",
			ApplicantExpiry: time.Hour,
			AssessorExpiry:  time.Hour,
			AdminExpiry:     8 * time.Hour,
			Issuer:          "admissions-api",
			CounterStart:    1000,
		})
	return NewAuthHandler(svc, CookieConfig{
		ApplicantExpiry: time.Hour,
		AssessorExpiry:  time.Hour,
		AdminExpiry:     8 * time.Hour,
	})
}

func TestLoginApplicantSetsHTTPOnlyCookie(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hash, _ := bcrypt.GenerateFromPassword([]byte("password1"), bcrypt.DefaultCost)
	handler := newTestAuthHandler(&fakeApplicantRepo{byEmail: &models.Applicant{
		ID:           "applicant-1",
		Email:        "juan@example.com",
		PasswordHash: string(hash),
	}})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/auth/applicant/login",
		strings.NewReader(`{"email":"juan@example.com","password":"password1"}`))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.LoginApplicant(c)

	require.Equal(t, http.StatusOK, rec.Code)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "applicantToken", cookies[0].Name)
	assert.NotEmpty(t, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, 3600, cookies[0].MaxAge)

	// the token never appears in the body
	assert.NotContains(t, rec.Body.String(), cookies[0].Value)
}

func TestLoginApplicantBadCredentials(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hash, _ := bcrypt.GenerateFromPassword([]byte("password1"), bcrypt.DefaultCost)
	handler := newTestAuthHandler(&fakeApplicantRepo{byEmail: &models.Applicant{
		ID:           "applicant-1",
		Email:        "juan@example.com",
		PasswordHash: string(hash),
	}})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/auth/applicant/login",
		strings.NewReader(`{"email":"juan@example.com","password":"wrong"}`))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.LoginApplicant(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, rec.Result().Cookies())
}

func TestAuthStatusWithoutCookieIsOK(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newTestAuthHandler(&fakeApplicantRepo{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/auth/applicant/status", nil)

	handler.ApplicantAuthStatus(c)

	require.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Success bool `json:"success"`
		Data    struct {
			Authenticated bool `json:"authenticated"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.True(t, envelope.Success)
	assert.False(t, envelope.Data.Authenticated)
}

func TestLogoutClearsCookie(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newTestAuthHandler(&fakeApplicantRepo{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/auth/applicant/logout", nil)

	handler.LogoutApplicant(c)

	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "applicantToken", cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.Negative(t, cookies[0].MaxAge)
}

func TestRegisterApplicantReturnsAllocatedNumber(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newTestAuthHandler(&fakeApplicantRepo{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/auth/applicant/register",
		strings.NewReader(`{"email":"juan@example.com","password":"password1"}`))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.RegisterApplicant(c)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), "APL1001")
}
