package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounterNextSeedsAboveStart(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCounterRepository(db)

	rows := sqlmock.NewRows([]string{"seq"}).AddRow(1001)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO counters (role, seq) VALUES ($1, $2 + 1)")).
		WithArgs("applicant", int64(1000)).
		WillReturnRows(rows)

	seq, err := repo.Next(context.Background(), "applicant", 1000)
	require.NoError(t, err)
	assert.Equal(t, int64(1001), seq)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCounterNextIncrementsExisting(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCounterRepository(db)

	rows := sqlmock.NewRows([]string{"seq"}).AddRow(1005)
	mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (role) DO UPDATE SET seq = counters.seq + 1")).
		WithArgs("assessor", int64(1000)).
		WillReturnRows(rows)

	seq, err := repo.Next(context.Background(), "assessor", 1000)
	require.NoError(t, err)
	assert.Equal(t, int64(1005), seq)
	assert.NoError(t, mock.ExpectationsWereMet())
}
