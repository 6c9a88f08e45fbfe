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

	"github.com/univpanel/scheduling-api/internal/models"
)

func newSubstituteRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestSubstituteRepositoryListByOriginalTeacher(t *testing.T) {
	db, mock, cleanup := newSubstituteRepoMock(t)
	defer cleanup()
	repo := NewSubstituteRepository(db)

	rows := sqlmock.NewRows([]string{"id", "original_teacher_id", "substitute_teacher_id", "start_date", "end_date", "active", "created_at", "updated_at"}).
		AddRow("sub-1", "prof-1", "prof-2", time.Now(), nil, true, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, original_teacher_id, substitute_teacher_id, start_date, end_date, active, created_at, updated_at FROM substitutes WHERE original_teacher_id = $1 ORDER BY created_at DESC")).
		WithArgs("prof-1").
		WillReturnRows(rows)

	subs, err := repo.ListByOriginalTeacher(context.Background(), "prof-1")
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "prof-2", subs[0].SubstituteTeacherID)
	assert.Nil(t, subs[0].EndDate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubstituteRepositoryCreateAssignsID(t *testing.T) {
	db, mock, cleanup := newSubstituteRepoMock(t)
	defer cleanup()
	repo := NewSubstituteRepository(db)

	mock.ExpectExec("INSERT INTO substitutes").
		WithArgs(sqlmock.AnyArg(), "prof-1", "prof-2", sqlmock.AnyArg(), sqlmock.AnyArg(), true, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	sub := &models.Substitute{
		OriginalTeacherID:   "prof-1",
		SubstituteTeacherID: "prof-2",
		StartDate:           time.Now(),
		Active:              true,
	}
	require.NoError(t, repo.Create(context.Background(), sub))
	assert.NotEmpty(t, sub.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubstituteRepositoryMarkCompleted(t *testing.T) {
	db, mock, cleanup := newSubstituteRepoMock(t)
	defer cleanup()
	repo := NewSubstituteRepository(db)

	end := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec("UPDATE substitutes SET active = FALSE").
		WithArgs(end, sqlmock.AnyArg(), "sub-1").
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.MarkCompleted(context.Background(), "sub-1", end))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubstituteRepositoryReactivate(t *testing.T) {
	db, mock, cleanup := newSubstituteRepoMock(t)
	defer cleanup()
	repo := NewSubstituteRepository(db)

	end := time.Date(2026, 4, 30, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec("UPDATE substitutes SET active = TRUE").
		WithArgs(end, sqlmock.AnyArg(), "sub-1").
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Reactivate(context.Background(), "sub-1", &end))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubstituteRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newSubstituteRepoMock(t)
	defer cleanup()
	repo := NewSubstituteRepository(db)

	mock.ExpectExec("DELETE FROM substitutes").
		WithArgs("sub-1").
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Delete(context.Background(), "sub-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
