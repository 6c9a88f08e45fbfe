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

func newRoomRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestRoomRepositoryList(t *testing.T) {
	db, mock, cleanup := newRoomRepoMock(t)
	defer cleanup()
	repo := NewRoomRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "kind", "capacity", "has_projector", "availability", "created_at", "updated_at"}).
		AddRow("r1", "Room 101", "CLASSROOM", 30, false, "FREE", time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, kind, capacity, has_projector, availability, created_at, updated_at FROM rooms WHERE 1=1 ORDER BY name ASC LIMIT 20 OFFSET 0")).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM rooms WHERE 1=1")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	list, total, err := repo.List(context.Background(), models.RoomFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomRepositoryCreateAndUpdateAvailability(t *testing.T) {
	db, mock, cleanup := newRoomRepoMock(t)
	defer cleanup()
	repo := NewRoomRepository(db)

	mock.ExpectExec("INSERT INTO rooms").
		WithArgs(sqlmock.AnyArg(), "Room 101", "CLASSROOM", 30, false, "FREE", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	room := &models.Room{Name: "Room 101", Kind: models.RoomClassroom, Capacity: 30, Availability: models.RoomFree}
	require.NoError(t, repo.Create(context.Background(), room))
	assert.NotEmpty(t, room.ID)

	mock.ExpectExec("UPDATE rooms SET availability").
		WithArgs(models.RoomMaintenance, sqlmock.AnyArg(), "r1").
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.UpdateAvailability(context.Background(), "r1", models.RoomMaintenance))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomRepositoryExistsByName(t *testing.T) {
	db, mock, cleanup := newRoomRepoMock(t)
	defer cleanup()
	repo := NewRoomRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM rooms WHERE LOWER(name) = LOWER($1) LIMIT 1")).
		WithArgs("Room 101").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	exists, err := repo.ExistsByName(context.Background(), "Room 101", "")
	require.NoError(t, err)
	assert.True(t, exists)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM rooms WHERE LOWER(name) = LOWER($1) AND id <> $2 LIMIT 1")).
		WithArgs("Room 101", "r1").
		WillReturnRows(sqlmock.NewRows([]string{"1"}))

	exists, err = repo.ExistsByName(context.Background(), "Room 101", "r1")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomRepositoryListPhysical(t *testing.T) {
	db, mock, cleanup := newRoomRepoMock(t)
	defer cleanup()
	repo := NewRoomRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "kind", "capacity", "has_projector", "availability", "created_at", "updated_at"}).
		AddRow("r1", "Room 101", "CLASSROOM", 30, false, "FREE", time.Now(), time.Now()).
		AddRow("r2", "Chem Lab", "LAB", 24, true, "FREE", time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, kind, capacity, has_projector, availability, created_at, updated_at FROM rooms WHERE kind <> $1 ORDER BY name ASC")).
		WithArgs(models.RoomVirtual).
		WillReturnRows(rows)

	rooms, err := repo.ListPhysical(context.Background())
	require.NoError(t, err)
	assert.Len(t, rooms, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}
