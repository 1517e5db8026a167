package handler

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/eteeap/admissions-api/internal/middleware"
	"github.com/eteeap/admissions-api/internal/models"
	"github.com/eteeap/admissions-api/internal/service"
)

type fakeAssignmentRepo struct {
	assigned map[string]bool
}

func (f *fakeAssignmentRepo) Upsert(ctx context.Context, assignment *models.Assignment) error {
	return nil
}

func (f *fakeAssignmentRepo) Exists(ctx context.Context, applicantID, assessorID string) (bool, error) {
	return f.assigned[applicantID+"/"+assessorID], nil
}

func (f *fakeAssignmentRepo) ListForAssessor(ctx context.Context, assessorID string, status models.ApplicantStatus) ([]models.AssignedApplicant, error) {
	return []models.AssignedApplicant{{ApplicantID: "a1", FullName: "Dela Cruz, Juan"}}, nil
}

func (f *fakeAssignmentRepo) ListForApplicant(ctx context.Context, applicantID string) ([]models.AssignedAssessor, error) {
	return nil, nil
}

type fakeProfileApplicantRepo struct {
	applicant *models.Applicant
}

func (f *fakeProfileApplicantRepo) FindByID(ctx context.Context, id string) (*models.Applicant, error) {
	if f.applicant == nil {
		return nil, sql.ErrNoRows
	}
	return f.applicant, nil
}

func (f *fakeProfileApplicantRepo) UpdatePersonalInfo(ctx context.Context, id string, info models.PersonalInfo) error {
	return nil
}

func (f *fakeProfileApplicantRepo) UpdateStatus(ctx context.Context, id string, status models.ApplicantStatus) error {
	return nil
}

type fakeDocumentLister struct{}

func (f *fakeDocumentLister) ListByOwner(ctx context.Context, ownerID string) ([]models.Document, error) {
	return nil, nil
}

func newTestAssessorHandler(assignments *fakeAssignmentRepo) *AssessorHandler {
	assignmentSvc := service.NewAssignmentService(assignments,
		&fakeProfileApplicantRepo{applicant: &models.Applicant{ID: "a1"}},
		nil, nil, validator.New(), zap.NewNop())
	applicantSvc := service.NewApplicantService(
		&fakeProfileApplicantRepo{applicant: &models.Applicant{ID: "a1", ApplicantNo: "APL1001"}},
		&fakeDocumentLister{}, assignments, validator.New(), zap.NewNop())
	return NewAssessorHandler(assignmentSvc, applicantSvc, nil, nil, nil)
}

func withAssessorSession(c *gin.Context) {
	c.Set(middleware.ContextUserKey, &models.SessionClaims{UserID: "s1", Role: models.RoleAssessor})
}

func TestAssignedApplicantsRequiresSession(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newTestAssessorHandler(&fakeAssignmentRepo{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/assessor/applicants", nil)

	handler.AssignedApplicants(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAssignedApplicantsListsWorklist(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newTestAssessorHandler(&fakeAssignmentRepo{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/assessor/applicants", nil)
	withAssessorSession(c)

	handler.AssignedApplicants(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Dela Cruz, Juan")
}

func TestApplicantDetailScopedToAssignment(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newTestAssessorHandler(&fakeAssignmentRepo{assigned: map[string]bool{"a1/s1": true}})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/assessor/applicants/a1", nil)
	c.Params = gin.Params{{Key: "id", Value: "a1"}}
	withAssessorSession(c)

	handler.ApplicantDetail(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "APL1001")
}

func TestApplicantDetailUnassignedIsNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newTestAssessorHandler(&fakeAssignmentRepo{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/assessor/applicants/a1", nil)
	c.Params = gin.Params{{Key: "id", Value: "a1"}}
	withAssessorSession(c)

	handler.ApplicantDetail(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
