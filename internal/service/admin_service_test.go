package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/eteeap/admissions-api/internal/dto"
	"github.com/eteeap/admissions-api/internal/models"
	appErrors "github.com/eteeap/admissions-api/pkg/errors"
)

type mockAdminApplicantRepo struct {
	applicants []models.Applicant
	statuses   map[string]models.ApplicantStatus
}

func (m *mockAdminApplicantRepo) List(ctx context.Context, filter models.ApplicantFilter) ([]models.Applicant, int, error) {
	return m.applicants, len(m.applicants), nil
}

func (m *mockAdminApplicantRepo) FindByID(ctx context.Context, id string) (*models.Applicant, error) {
	for i := range m.applicants {
		if m.applicants[i].ID == id {
			return &m.applicants[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockAdminApplicantRepo) UpdateStatus(ctx context.Context, id string, status models.ApplicantStatus) error {
	if _, err := m.FindByID(ctx, id); err != nil {
		return err
	}
	if m.statuses == nil {
		m.statuses = make(map[string]models.ApplicantStatus)
	}
	m.statuses[id] = status
	return nil
}

type mockAdminAssessorRepo struct {
	assessors []models.Assessor
	deleted   []string
}

func (m *mockAdminAssessorRepo) List(ctx context.Context) ([]models.Assessor, error) {
	return m.assessors, nil
}

func (m *mockAdminAssessorRepo) ListApproved(ctx context.Context) ([]models.Assessor, error) {
	var out []models.Assessor
	for _, a := range m.assessors {
		if a.IsApproved {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *mockAdminAssessorRepo) FindByID(ctx context.Context, id string) (*models.Assessor, error) {
	for i := range m.assessors {
		if m.assessors[i].ID == id {
			return &m.assessors[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockAdminAssessorRepo) Update(ctx context.Context, assessor *models.Assessor) error {
	for i := range m.assessors {
		if m.assessors[i].ID == assessor.ID {
			m.assessors[i] = *assessor
			return nil
		}
	}
	return sql.ErrNoRows
}

func (m *mockAdminAssessorRepo) Delete(ctx context.Context, id string) error {
	for i := range m.assessors {
		if m.assessors[i].ID == id {
			m.assessors = append(m.assessors[:i], m.assessors[i+1:]...)
			m.deleted = append(m.deleted, id)
			return nil
		}
	}
	return sql.ErrNoRows
}

type mockAdminAccountRepo struct {
	admins []models.Admin
}

func (m *mockAdminAccountRepo) List(ctx context.Context) ([]models.Admin, error) {
	return m.admins, nil
}

func (m *mockAdminAccountRepo) FindByID(ctx context.Context, id string) (*models.Admin, error) {
	for i := range m.admins {
		if m.admins[i].ID == id {
			return &m.admins[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockAdminAccountRepo) CountSuperAdmins(ctx context.Context) (int, error) {
	count := 0
	for _, a := range m.admins {
		if a.IsSuperAdmin {
			count++
		}
	}
	return count, nil
}

func (m *mockAdminAccountRepo) Update(ctx context.Context, admin *models.Admin) error {
	for i := range m.admins {
		if m.admins[i].ID == admin.ID {
			m.admins[i] = *admin
			return nil
		}
	}
	return sql.ErrNoRows
}

func (m *mockAdminAccountRepo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	for i := range m.admins {
		if m.admins[i].ID == id {
			m.admins[i].PasswordHash = passwordHash
			return nil
		}
	}
	return sql.ErrNoRows
}

func (m *mockAdminAccountRepo) Delete(ctx context.Context, id string) error {
	for i := range m.admins {
		if m.admins[i].ID == id {
			m.admins = append(m.admins[:i], m.admins[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

type mockAdminAssignmentRepo struct {
	assigned map[string][]models.AssignedApplicant
}

func (m *mockAdminAssignmentRepo) ListForAssessor(ctx context.Context, assessorID string, status models.ApplicantStatus) ([]models.AssignedApplicant, error) {
	return m.assigned[assessorID], nil
}

func (m *mockAdminAssignmentRepo) ListForApplicant(ctx context.Context, applicantID string) ([]models.AssignedAssessor, error) {
	return nil, nil
}

func (m *mockAdminAssignmentRepo) CountForAssessors(ctx context.Context) (map[string]int, error) {
	counts := make(map[string]int)
	for id, list := range m.assigned {
		counts[id] = len(list)
	}
	return counts, nil
}

type mockAdminEvaluationRepo struct {
	evaluations []models.Evaluation
}

func (m *mockAdminEvaluationRepo) ListForApplicant(ctx context.Context, applicantID string) ([]models.Evaluation, error) {
	return m.evaluations, nil
}

func (m *mockAdminEvaluationRepo) ListComments(ctx context.Context, applicantID string) ([]models.EvaluationComment, error) {
	return nil, nil
}

type mockAdminDocumentRepo struct{}

func (m *mockAdminDocumentRepo) ListByOwner(ctx context.Context, ownerID string) ([]models.Document, error) {
	return nil, nil
}

func newAdminService(applicants *mockAdminApplicantRepo, assessors *mockAdminAssessorRepo, admins *mockAdminAccountRepo) *AdminService {
	return NewAdminService(applicants, assessors, admins,
		&mockAdminAssignmentRepo{assigned: map[string][]models.AssignedApplicant{}},
		&mockAdminEvaluationRepo{}, &mockAdminDocumentRepo{}, nil,
		validator.New(), zap.NewNop())
}

func superAdminClaims(id string) *models.SessionClaims {
	return &models.SessionClaims{UserID: id, Role: models.RoleAdmin, IsSuperAdmin: true}
}

func TestApproveAndRejectApplicant(t *testing.T) {
	applicants := &mockAdminApplicantRepo{applicants: []models.Applicant{{ID: "a1"}, {ID: "a2"}}}
	svc := newAdminService(applicants, &mockAdminAssessorRepo{}, &mockAdminAccountRepo{})

	require.NoError(t, svc.ApproveApplicant(context.Background(), "a1"))
	require.NoError(t, svc.RejectApplicant(context.Background(), "a2"))
	assert.Equal(t, models.StatusApproved, applicants.statuses["a1"])
	assert.Equal(t, models.StatusRejected, applicants.statuses["a2"])

	err := svc.ApproveApplicant(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestUpdateAssessorTogglesApproval(t *testing.T) {
	assessors := &mockAdminAssessorRepo{assessors: []models.Assessor{{
		ID: "s1", Email: "maria@example.com", FullName: "Maria Reyes",
		Expertise: models.ExpertiseEngineering, AssessorType: models.AssessorTypeExternal, IsApproved: true,
	}}}
	svc := newAdminService(&mockAdminApplicantRepo{}, assessors, &mockAdminAccountRepo{})

	approved := false
	updated, err := svc.UpdateAssessor(context.Background(), "s1", dto.UpdateAssessorRequest{
		FullName:     "Maria Reyes",
		Email:        "maria@example.com",
		Expertise:    "engineering",
		AssessorType: "external",
		IsApproved:   &approved,
	})
	require.NoError(t, err)
	assert.False(t, updated.IsApproved)
	assert.False(t, assessors.assessors[0].IsApproved)
}

func TestDeleteAdminGuards(t *testing.T) {
	admins := &mockAdminAccountRepo{admins: []models.Admin{
		{ID: "root", IsSuperAdmin: true},
		{ID: "other", IsSuperAdmin: false},
	}}
	svc := newAdminService(&mockAdminApplicantRepo{}, &mockAdminAssessorRepo{}, admins)

	// self deletion refused
	err := svc.DeleteAdmin(context.Background(), superAdminClaims("root"), "root")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)

	// non super admins cannot delete at all
	err = svc.DeleteAdmin(context.Background(), &models.SessionClaims{UserID: "other", Role: models.RoleAdmin}, "root")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	// deleting the plain admin works
	require.NoError(t, svc.DeleteAdmin(context.Background(), superAdminClaims("root"), "other"))
}

func TestDeleteLastSuperAdminRefused(t *testing.T) {
	admins := &mockAdminAccountRepo{admins: []models.Admin{
		{ID: "root", IsSuperAdmin: true},
		{ID: "second", IsSuperAdmin: true},
	}}
	svc := newAdminService(&mockAdminApplicantRepo{}, &mockAdminAssessorRepo{}, admins)

	require.NoError(t, svc.DeleteAdmin(context.Background(), superAdminClaims("root"), "second"))

	// root is now the last super admin; another super admin session cannot
	// remove it either
	err := svc.DeleteAdmin(context.Background(), superAdminClaims("ghost"), "root")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestDemoteLastSuperAdminRefused(t *testing.T) {
	admins := &mockAdminAccountRepo{admins: []models.Admin{{ID: "root", Email: "root@example.com", FullName: "Root", IsSuperAdmin: true}}}
	svc := newAdminService(&mockAdminApplicantRepo{}, &mockAdminAssessorRepo{}, admins)

	demote := false
	_, err := svc.UpdateAdmin(context.Background(), superAdminClaims("root"), "root", dto.UpdateAdminRequest{
		Email:        "root@example.com",
		FullName:     "Root",
		IsSuperAdmin: &demote,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestChangeAdminPasswordRules(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("current1"), bcrypt.DefaultCost)
	admins := &mockAdminAccountRepo{admins: []models.Admin{
		{ID: "root", PasswordHash: string(hash), IsSuperAdmin: true},
		{ID: "other", PasswordHash: string(hash)},
	}}
	svc := newAdminService(&mockAdminApplicantRepo{}, &mockAdminAssessorRepo{}, admins)

	// self change with wrong current password
	err := svc.ChangeAdminPassword(context.Background(), superAdminClaims("root"), "root", dto.ChangePasswordRequest{
		CurrentPassword: "wrong",
		NewPassword:     "newpassword",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	// self change with correct current password
	require.NoError(t, svc.ChangeAdminPassword(context.Background(), superAdminClaims("root"), "root", dto.ChangePasswordRequest{
		CurrentPassword: "current1",
		NewPassword:     "newpassword",
	}))

	// super admin resets another admin without the current password
	require.NoError(t, svc.ChangeAdminPassword(context.Background(), superAdminClaims("root"), "other", dto.ChangePasswordRequest{
		NewPassword: "resetpassword",
	}))

	// plain admin cannot reset someone else
	err = svc.ChangeAdminPassword(context.Background(), &models.SessionClaims{UserID: "other", Role: models.RoleAdmin}, "root", dto.ChangePasswordRequest{
		NewPassword: "resetpassword",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestGetAdmin(t *testing.T) {
	admins := &mockAdminAccountRepo{admins: []models.Admin{{ID: "ad1", Email: "root@example.com"}}}
	svc := newAdminService(&mockAdminApplicantRepo{}, &mockAdminAssessorRepo{}, admins)

	admin, err := svc.GetAdmin(context.Background(), "ad1")
	require.NoError(t, err)
	assert.Equal(t, "root@example.com", admin.Email)

	_, err = svc.GetAdmin(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestListAssessorsIncludesCounts(t *testing.T) {
	assessors := &mockAdminAssessorRepo{assessors: []models.Assessor{{ID: "s1", FullName: "Maria Reyes"}}}
	svc := NewAdminService(&mockAdminApplicantRepo{}, assessors, &mockAdminAccountRepo{},
		&mockAdminAssignmentRepo{assigned: map[string][]models.AssignedApplicant{
			"s1": {{ApplicantID: "a1"}, {ApplicantID: "a2"}},
		}},
		&mockAdminEvaluationRepo{}, &mockAdminDocumentRepo{}, nil,
		validator.New(), zap.NewNop())

	summaries, err := svc.ListAssessors(context.Background())
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, 2, summaries[0].ApplicantsCount)
}
