package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/univpanel/scheduling-api/internal/models"
	appErrors "github.com/univpanel/scheduling-api/pkg/errors"
)

type timetableSourceStub struct {
	timetable *models.RoomTimetable
	err       error
}

func (s *timetableSourceStub) ForRoom(ctx context.Context, roomID string) (*models.RoomTimetable, bool, error) {
	if s.err != nil {
		return nil, false, s.err
	}
	return s.timetable, false, nil
}

type scheduleViewSourceStub struct {
	view *models.ScheduleView
	err  error
}

func (s *scheduleViewSourceStub) Get(ctx context.Context, id string) (*models.ScheduleView, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.view, nil
}

type fileStoreStub struct {
	saved map[string][]byte
	err   error
}

func (s *fileStoreStub) Save(filename string, data []byte) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if s.saved == nil {
		s.saved = map[string][]byte{}
	}
	s.saved[filename] = data
	return "exports/" + filename, nil
}

func sampleTimetable(t *testing.T) *models.RoomTimetable {
	return &models.RoomTimetable{
		Room: models.Room{ID: "r1", Name: "Room 101", Kind: models.RoomClassroom},
		Entries: []models.TimetableEntry{
			{PeriodID: "p1", RoomID: "r1", RoomName: "Room 101", SubjectID: "s1", SubjectName: "Calculus",
				Weekday: models.Monday, StartTime: mustDayTime(t, "08:00"), EndTime: mustDayTime(t, "09:30")},
		},
	}
}

func TestParseExportFormat(t *testing.T) {
	format, err := ParseExportFormat("")
	require.NoError(t, err)
	assert.Equal(t, ExportFormatCSV, format)

	format, err = ParseExportFormat("PDF")
	require.NoError(t, err)
	assert.Equal(t, ExportFormatPDF, format)

	_, err = ParseExportFormat("xlsx")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestExportRoomTimetableCSV(t *testing.T) {
	store := &fileStoreStub{}
	svc := NewExportService(&timetableSourceStub{timetable: sampleTimetable(t)}, nil, nil, store, zap.NewNop(), true)

	result, err := svc.RoomTimetable(context.Background(), "r1", ExportFormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "text/csv", result.ContentType)
	assert.True(t, strings.HasPrefix(result.Filename, "timetable_Room_101_"))
	assert.NotEmpty(t, result.RelativePath)

	body := string(result.Payload)
	assert.Contains(t, body, "Day,Start,End,Subject")
	assert.Contains(t, body, "MONDAY,08:00,09:30,Calculus")
	assert.Contains(t, store.saved, result.Filename)
}

func TestExportRoomTimetablePDF(t *testing.T) {
	svc := NewExportService(&timetableSourceStub{timetable: sampleTimetable(t)}, nil, nil, nil, zap.NewNop(), true)

	result, err := svc.RoomTimetable(context.Background(), "r1", ExportFormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.True(t, strings.HasSuffix(result.Filename, ".pdf"))
	assert.NotEmpty(t, result.Payload)
}

func TestExportDisabled(t *testing.T) {
	svc := NewExportService(&timetableSourceStub{timetable: sampleTimetable(t)}, nil, nil, nil, zap.NewNop(), false)

	_, err := svc.RoomTimetable(context.Background(), "r1", ExportFormatCSV)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrState.Code, appErrors.FromError(err).Code)
}

func TestExportStorageFailureIsWarningOnly(t *testing.T) {
	store := &fileStoreStub{err: assert.AnError}
	svc := NewExportService(&timetableSourceStub{timetable: sampleTimetable(t)}, nil, nil, store, zap.NewNop(), true)

	result, err := svc.RoomTimetable(context.Background(), "r1", ExportFormatCSV)
	require.NoError(t, err)
	assert.Empty(t, result.RelativePath)
	assert.NotEmpty(t, result.Payload)
}

func TestExportSchedule(t *testing.T) {
	rooms := &roomLookupStub{rooms: map[string]*models.Room{
		"r1": {ID: "r1", Name: "Room 101", Kind: models.RoomClassroom},
	}}
	view := &models.ScheduleView{
		Schedule: models.Schedule{ID: "sched-1", GroupLabel: "CS-2A", ClassType: "LECTURE"},
		Periods: []models.Period{
			{ID: "p1", RoomID: "r1", Weekday: models.Monday, StartTime: mustDayTime(t, "08:00"), EndTime: mustDayTime(t, "09:00")},
		},
	}
	svc := NewExportService(nil, &scheduleViewSourceStub{view: view}, rooms, nil, zap.NewNop(), true)

	result, err := svc.Schedule(context.Background(), "sched-1")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.True(t, strings.HasPrefix(result.Filename, "schedule_CS-2A_"))
	assert.NotEmpty(t, result.Payload)
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "Room_101", sanitizeFilename("Room 101"))
	assert.Equal(t, "na", sanitizeFilename(""))
	assert.Equal(t, "a-b", sanitizeFilename("a/b"))
}
