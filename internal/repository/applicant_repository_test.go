package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eteeap/admissions-api/internal/models"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

func TestApplicantFindByEmail(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewApplicantRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "applicant_no", "email", "password_hash", "status", "personal_info", "final_score", "is_passed", "created_at", "updated_at"}).
		AddRow("1", "APL1001", "juan@example.com", "hash", string(models.StatusPendingReview), []byte(`{"firstname":"Juan","lastname":"Dela Cruz"}`), nil, nil, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, applicant_no, email, password_hash, status, personal_info, final_score, is_passed, created_at, updated_at FROM applicants WHERE LOWER(email) = LOWER($1) LIMIT 1")).
		WithArgs("juan@example.com").
		WillReturnRows(rows)

	applicant, err := repo.FindByEmail(context.Background(), "juan@example.com")
	require.NoError(t, err)
	assert.Equal(t, "APL1001", applicant.ApplicantNo)
	assert.Equal(t, "Juan", applicant.PersonalInfo.FirstName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicantCreateDefaultsStatus(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewApplicantRepository(db)

	mock.ExpectExec("INSERT INTO applicants").WillReturnResult(sqlmock.NewResult(1, 1))

	applicant := &models.Applicant{ApplicantNo: "APL1001", Email: "juan@example.com", PasswordHash: "hash"}
	err := repo.Create(context.Background(), applicant)
	require.NoError(t, err)
	assert.NotEmpty(t, applicant.ID)
	assert.Equal(t, models.StatusPendingReview, applicant.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicantListWithStatusFilter(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewApplicantRepository(db)

	now := time.Now()
	listRows := sqlmock.NewRows([]string{"id", "applicant_no", "email", "password_hash", "status", "personal_info", "final_score", "is_passed", "created_at", "updated_at"}).
		AddRow("1", "APL1001", "juan@example.com", "hash", string(models.StatusUnderAssessment), []byte(`{}`), nil, nil, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, applicant_no, email, password_hash, status, personal_info, final_score, is_passed, created_at, updated_at FROM applicants WHERE 1=1 AND status = $1 ORDER BY created_at DESC LIMIT 50 OFFSET 0")).
		WithArgs(string(models.StatusUnderAssessment)).
		WillReturnRows(listRows)

	countRows := sqlmock.NewRows([]string{"count"}).AddRow(1)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM applicants WHERE 1=1 AND status = $1")).
		WithArgs(string(models.StatusUnderAssessment)).
		WillReturnRows(countRows)

	applicants, total, err := repo.List(context.Background(), models.ApplicantFilter{Status: string(models.StatusUnderAssessment)})
	require.NoError(t, err)
	assert.Len(t, applicants, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicantUpdateStatusMissingRow(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewApplicantRepository(db)

	mock.ExpectExec("UPDATE applicants SET status").WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(context.Background(), "missing", models.StatusApproved)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicantCountByStatus(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewApplicantRepository(db)

	rows := sqlmock.NewRows([]string{"status", "count"}).
		AddRow(string(models.StatusPendingReview), 3).
		AddRow(string(models.StatusApproved), 1)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT status, COUNT(*) AS count FROM applicants GROUP BY status")).WillReturnRows(rows)

	counts, err := repo.CountByStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, counts[models.StatusPendingReview])
	assert.Equal(t, 1, counts[models.StatusApproved])
	assert.NoError(t, mock.ExpectationsWereMet())
}
