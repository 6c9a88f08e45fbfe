package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/univpanel/scheduling-api/internal/models"
	appErrors "github.com/univpanel/scheduling-api/pkg/errors"
)

type periodRepoStub struct {
	periods    []models.Period
	nextID     int
	createErr  error
	updateErr  error
	deleteCall int
}

func (s *periodRepoStub) List(ctx context.Context, filter models.PeriodFilter) ([]models.Period, int, error) {
	return s.periods, len(s.periods), nil
}

func (s *periodRepoStub) FindByID(ctx context.Context, id string) (*models.Period, error) {
	for i := range s.periods {
		if s.periods[i].ID == id {
			p := s.periods[i]
			return &p, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *periodRepoStub) FindByIDs(ctx context.Context, ids []string) ([]models.Period, error) {
	var out []models.Period
	for _, id := range ids {
		for i := range s.periods {
			if s.periods[i].ID == id {
				out = append(out, s.periods[i])
			}
		}
	}
	return out, nil
}

func (s *periodRepoStub) ListByRoomAndDay(ctx context.Context, roomID string, day models.Weekday) ([]models.Period, error) {
	var out []models.Period
	for _, p := range s.periods {
		if p.RoomID == roomID && p.Weekday == day {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *periodRepoStub) ListByRoom(ctx context.Context, roomID string) ([]models.Period, error) {
	var out []models.Period
	for _, p := range s.periods {
		if p.RoomID == roomID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *periodRepoStub) Create(ctx context.Context, period *models.Period) error {
	if s.createErr != nil {
		return s.createErr
	}
	if period.ID == "" {
		s.nextID++
		period.ID = string(rune('a' + s.nextID))
	}
	s.periods = append(s.periods, *period)
	return nil
}

func (s *periodRepoStub) Update(ctx context.Context, period *models.Period) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	for i := range s.periods {
		if s.periods[i].ID == period.ID {
			s.periods[i] = *period
			return nil
		}
	}
	return sql.ErrNoRows
}

func (s *periodRepoStub) Delete(ctx context.Context, id string) error {
	s.deleteCall++
	for i := range s.periods {
		if s.periods[i].ID == id {
			s.periods = append(s.periods[:i], s.periods[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

type roomLookupStub struct {
	rooms map[string]*models.Room
}

func (s *roomLookupStub) FindByID(ctx context.Context, id string) (*models.Room, error) {
	room, ok := s.rooms[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return room, nil
}

func (s *roomLookupStub) ListPhysical(ctx context.Context) ([]models.Room, error) {
	var out []models.Room
	for _, room := range s.rooms {
		if room.Kind.Physical() {
			out = append(out, *room)
		}
	}
	return out, nil
}

type subjectLookupStub struct {
	exists map[string]bool
}

func (s *subjectLookupStub) ExistsByID(ctx context.Context, id string) (bool, error) {
	return s.exists[id], nil
}

func newPeriodServiceForTest(repo *periodRepoStub, rooms *roomLookupStub, subjects *subjectLookupStub) *PeriodService {
	return NewPeriodService(repo, rooms, subjects, nil, nil, nil, nil, zap.NewNop())
}

func defaultPeriodFixtures() (*periodRepoStub, *roomLookupStub, *subjectLookupStub) {
	repo := &periodRepoStub{}
	rooms := &roomLookupStub{rooms: map[string]*models.Room{
		"r1": {ID: "r1", Name: "Room 101", Kind: models.RoomClassroom},
	}}
	subjects := &subjectLookupStub{exists: map[string]bool{"s1": true}}
	return repo, rooms, subjects
}

func TestPeriodServiceCreate(t *testing.T) {
	repo, rooms, subjects := defaultPeriodFixtures()
	svc := newPeriodServiceForTest(repo, rooms, subjects)

	created, err := svc.Create(context.Background(), CreatePeriodRequest{
		SubjectID: "s1",
		RoomID:    "r1",
		Weekday:   "monday",
		StartTime: "08:00",
		EndTime:   "09:30",
	})
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, models.Monday, created.Weekday)
	assert.Equal(t, "08:00", created.StartTime.String())
	assert.Len(t, repo.periods, 1)
}

func TestPeriodServiceCreateRejectsSunday(t *testing.T) {
	repo, rooms, subjects := defaultPeriodFixtures()
	svc := newPeriodServiceForTest(repo, rooms, subjects)

	_, err := svc.Create(context.Background(), CreatePeriodRequest{
		SubjectID: "s1",
		RoomID:    "r1",
		Weekday:   "SUNDAY",
		StartTime: "08:00",
		EndTime:   "09:00",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidDay.Code, appErrors.FromError(err).Code)
}

func TestPeriodServiceCreateMalformedTime(t *testing.T) {
	repo, rooms, subjects := defaultPeriodFixtures()
	svc := newPeriodServiceForTest(repo, rooms, subjects)

	_, err := svc.Create(context.Background(), CreatePeriodRequest{
		SubjectID: "s1",
		RoomID:    "r1",
		Weekday:   "MONDAY",
		StartTime: "eight",
		EndTime:   "09:00",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidRange.Code, appErrors.FromError(err).Code)
}

func TestPeriodServiceCreateMissingTimes(t *testing.T) {
	repo, rooms, subjects := defaultPeriodFixtures()
	svc := newPeriodServiceForTest(repo, rooms, subjects)

	// An absent time is a range violation, not a window violation.
	_, err := svc.Create(context.Background(), CreatePeriodRequest{
		SubjectID: "s1",
		RoomID:    "r1",
		Weekday:   "MONDAY",
		EndTime:   "09:00",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidRange.Code, appErrors.FromError(err).Code)

	_, err = svc.Create(context.Background(), CreatePeriodRequest{
		SubjectID: "s1",
		RoomID:    "r1",
		Weekday:   "MONDAY",
		StartTime: "08:00",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidRange.Code, appErrors.FromError(err).Code)
}

func TestPeriodServiceCreateOutsideWindow(t *testing.T) {
	repo, rooms, subjects := defaultPeriodFixtures()
	svc := newPeriodServiceForTest(repo, rooms, subjects)

	_, err := svc.Create(context.Background(), CreatePeriodRequest{
		SubjectID: "s1",
		RoomID:    "r1",
		Weekday:   "SATURDAY",
		StartTime: "14:00",
		EndTime:   "16:00",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrOutOfRange.Code, appErrors.FromError(err).Code)
}

func TestPeriodServiceCreateUnknownRoom(t *testing.T) {
	repo, rooms, subjects := defaultPeriodFixtures()
	svc := newPeriodServiceForTest(repo, rooms, subjects)

	_, err := svc.Create(context.Background(), CreatePeriodRequest{
		SubjectID: "s1",
		RoomID:    "no-such-room",
		Weekday:   "MONDAY",
		StartTime: "08:00",
		EndTime:   "09:00",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestPeriodServiceCreateUnknownSubject(t *testing.T) {
	repo, rooms, subjects := defaultPeriodFixtures()
	svc := newPeriodServiceForTest(repo, rooms, subjects)

	_, err := svc.Create(context.Background(), CreatePeriodRequest{
		SubjectID: "ghost",
		RoomID:    "r1",
		Weekday:   "MONDAY",
		StartTime: "08:00",
		EndTime:   "09:00",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestPeriodServiceCreateTouchingEndpointsConflict(t *testing.T) {
	repo, rooms, subjects := defaultPeriodFixtures()
	repo.periods = []models.Period{{
		ID:        "p1",
		SubjectID: "s1",
		RoomID:    "r1",
		Weekday:   models.Monday,
		StartTime: mustDayTime(t, "08:00"),
		EndTime:   mustDayTime(t, "09:00"),
	}}
	svc := newPeriodServiceForTest(repo, rooms, subjects)

	_, err := svc.Create(context.Background(), CreatePeriodRequest{
		SubjectID: "s1",
		RoomID:    "r1",
		Weekday:   "MONDAY",
		StartTime: "09:00",
		EndTime:   "10:00",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPeriodOverlap.Code, appErrors.FromError(err).Code)
	assert.Len(t, repo.periods, 1)
}

func TestPeriodServiceCreateOtherDayNoConflict(t *testing.T) {
	repo, rooms, subjects := defaultPeriodFixtures()
	repo.periods = []models.Period{{
		ID:        "p1",
		SubjectID: "s1",
		RoomID:    "r1",
		Weekday:   models.Monday,
		StartTime: mustDayTime(t, "08:00"),
		EndTime:   mustDayTime(t, "09:00"),
	}}
	svc := newPeriodServiceForTest(repo, rooms, subjects)

	_, err := svc.Create(context.Background(), CreatePeriodRequest{
		SubjectID: "s1",
		RoomID:    "r1",
		Weekday:   "TUESDAY",
		StartTime: "08:00",
		EndTime:   "09:00",
	})
	require.NoError(t, err)
	assert.Len(t, repo.periods, 2)
}

func TestPeriodServiceUpdateExcludesSelf(t *testing.T) {
	repo, rooms, subjects := defaultPeriodFixtures()
	repo.periods = []models.Period{{
		ID:        "p1",
		SubjectID: "s1",
		RoomID:    "r1",
		Weekday:   models.Monday,
		StartTime: mustDayTime(t, "08:00"),
		EndTime:   mustDayTime(t, "09:00"),
	}}
	svc := newPeriodServiceForTest(repo, rooms, subjects)

	updated, err := svc.Update(context.Background(), "p1", UpdatePeriodRequest{
		SubjectID: "s1",
		RoomID:    "r1",
		Weekday:   "MONDAY",
		StartTime: "08:00",
		EndTime:   "09:00",
	})
	require.NoError(t, err)
	assert.Equal(t, "p1", updated.ID)
}

func TestPeriodServiceUpdateConflictsWithOther(t *testing.T) {
	repo, rooms, subjects := defaultPeriodFixtures()
	repo.periods = []models.Period{
		{ID: "p1", SubjectID: "s1", RoomID: "r1", Weekday: models.Monday, StartTime: mustDayTime(t, "08:00"), EndTime: mustDayTime(t, "09:00")},
		{ID: "p2", SubjectID: "s1", RoomID: "r1", Weekday: models.Monday, StartTime: mustDayTime(t, "10:00"), EndTime: mustDayTime(t, "11:00")},
	}
	svc := newPeriodServiceForTest(repo, rooms, subjects)

	_, err := svc.Update(context.Background(), "p1", UpdatePeriodRequest{
		SubjectID: "s1",
		RoomID:    "r1",
		Weekday:   "MONDAY",
		StartTime: "10:30",
		EndTime:   "11:30",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPeriodOverlap.Code, appErrors.FromError(err).Code)
}

func TestPeriodServiceDeleteUnknown(t *testing.T) {
	repo, rooms, subjects := defaultPeriodFixtures()
	svc := newPeriodServiceForTest(repo, rooms, subjects)

	err := svc.Delete(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestPeriodServiceBulkSeedSkipsAuditoriumAndConflicts(t *testing.T) {
	repo := &periodRepoStub{}
	rooms := &roomLookupStub{rooms: map[string]*models.Room{
		"r1": {ID: "r1", Name: "Room 101", Kind: models.RoomClassroom},
		"r2": {ID: "r2", Name: "Main Hall", Kind: models.RoomAuditorium},
	}}
	subjects := &subjectLookupStub{exists: map[string]bool{"s1": true}}

	// An existing Monday booking forces one skipped seed entry.
	repo.periods = []models.Period{{
		ID:        "p-existing",
		SubjectID: "s1",
		RoomID:    "r1",
		Weekday:   models.Monday,
		StartTime: mustDayTime(t, "08:00"),
		EndTime:   mustDayTime(t, "09:00"),
	}}

	svc := newPeriodServiceForTest(repo, rooms, subjects)
	result, err := svc.BulkSeed(context.Background(), BulkSeedRequest{SubjectID: "s1"})
	require.NoError(t, err)

	assert.Len(t, result.Created, 5)
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, "r1", result.Skipped[0].RoomID)
	assert.Equal(t, models.Monday, result.Skipped[0].Weekday)

	for _, p := range result.Created {
		assert.Equal(t, "r1", p.RoomID)
	}
}

func TestPeriodServiceBulkSeedUnknownSubject(t *testing.T) {
	repo, rooms, _ := defaultPeriodFixtures()
	subjects := &subjectLookupStub{exists: map[string]bool{}}
	svc := newPeriodServiceForTest(repo, rooms, subjects)

	_, err := svc.BulkSeed(context.Background(), BulkSeedRequest{SubjectID: "ghost"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func mustDayTime(t *testing.T, raw string) models.DayTime {
	t.Helper()
	parsed, err := models.ParseDayTime(raw)
	require.NoError(t, err)
	return parsed
}
