package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/univpanel/scheduling-api/internal/models"
	appErrors "github.com/univpanel/scheduling-api/pkg/errors"
	"github.com/univpanel/scheduling-api/pkg/export"
)

// ExportFormat names a supported rendering format.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ContentType returns the MIME type for the format.
func (f ExportFormat) ContentType() string {
	if f == ExportFormatPDF {
		return "application/pdf"
	}
	return "text/csv"
}

type timetableSource interface {
	ForRoom(ctx context.Context, roomID string) (*models.RoomTimetable, bool, error)
}

type scheduleViewSource interface {
	Get(ctx context.Context, id string) (*models.ScheduleView, error)
}

type exportRoomSource interface {
	FindByID(ctx context.Context, id string) (*models.Room, error)
}

type exportFileStore interface {
	Save(filename string, data []byte) (string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportResult carries a rendered document ready to stream to the caller.
type ExportResult struct {
	Filename     string
	ContentType  string
	Payload      []byte
	RelativePath string
}

// ExportService renders room timetables and schedules into downloadable
// documents. Each render is also persisted under the exports directory so
// recent files can be re-fetched from disk.
type ExportService struct {
	timetables timetableSource
	schedules  scheduleViewSource
	rooms      exportRoomSource
	storage    exportFileStore
	csv        csvRenderer
	pdf        pdfRenderer
	logger     *zap.Logger
	enabled    bool
}

// NewExportService constructs an ExportService.
func NewExportService(timetables timetableSource, schedules scheduleViewSource, rooms exportRoomSource, storage exportFileStore, logger *zap.Logger, enabled bool) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		timetables: timetables,
		schedules:  schedules,
		rooms:      rooms,
		storage:    storage,
		csv:        export.NewCSVExporter(),
		pdf:        export.NewPDFExporter(),
		logger:     logger,
		enabled:    enabled,
	}
}

// ParseExportFormat normalises the query-string format value.
func ParseExportFormat(raw string) (ExportFormat, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "csv":
		return ExportFormatCSV, nil
	case "pdf":
		return ExportFormatPDF, nil
	default:
		return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", raw))
	}
}

// RoomTimetable renders the weekly timetable of a room.
func (s *ExportService) RoomTimetable(ctx context.Context, roomID string, format ExportFormat) (*ExportResult, error) {
	if !s.enabled {
		return nil, appErrors.Clone(appErrors.ErrState, "exports are disabled")
	}

	timetable, _, err := s.timetables.ForRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	headers := []string{"Day", "Start", "End", "Subject"}
	rows := make([]map[string]string, 0, len(timetable.Entries))
	for _, entry := range timetable.Entries {
		rows = append(rows, map[string]string{
			"Day":     string(entry.Weekday),
			"Start":   entry.StartTime.String(),
			"End":     entry.EndTime.String(),
			"Subject": entry.SubjectName,
		})
	}
	dataset := export.Dataset{Headers: headers, Rows: rows}
	title := fmt.Sprintf("Timetable %s", timetable.Room.Name)

	return s.render(dataset, title, format, fmt.Sprintf("timetable_%s", sanitizeFilename(timetable.Room.Name)))
}

// Schedule renders a professor schedule as a PDF document.
func (s *ExportService) Schedule(ctx context.Context, scheduleID string) (*ExportResult, error) {
	if !s.enabled {
		return nil, appErrors.Clone(appErrors.ErrState, "exports are disabled")
	}

	view, err := s.schedules.Get(ctx, scheduleID)
	if err != nil {
		return nil, err
	}

	periods := make([]models.Period, len(view.Periods))
	copy(periods, view.Periods)
	sort.Slice(periods, func(i, j int) bool {
		if periods[i].Weekday != periods[j].Weekday {
			return periods[i].Weekday.Order() < periods[j].Weekday.Order()
		}
		return periods[i].StartTime.Before(periods[j].StartTime)
	})

	roomNames := make(map[string]string)
	headers := []string{"Day", "Start", "End", "Room"}
	rows := make([]map[string]string, 0, len(periods))
	for _, period := range periods {
		name, ok := roomNames[period.RoomID]
		if !ok {
			room, err := s.rooms.FindByID(ctx, period.RoomID)
			if err != nil {
				name = period.RoomID
			} else {
				name = room.Name
			}
			roomNames[period.RoomID] = name
		}
		rows = append(rows, map[string]string{
			"Day":   string(period.Weekday),
			"Start": period.StartTime.String(),
			"End":   period.EndTime.String(),
			"Room":  name,
		})
	}
	dataset := export.Dataset{Headers: headers, Rows: rows}
	title := fmt.Sprintf("Schedule %s %s", view.Schedule.GroupLabel, view.Schedule.ClassType)

	return s.render(dataset, title, ExportFormatPDF, fmt.Sprintf("schedule_%s", sanitizeFilename(view.Schedule.GroupLabel)))
}

func (s *ExportService) render(dataset export.Dataset, title string, format ExportFormat, baseName string) (*ExportResult, error) {
	var payload []byte
	var err error
	switch format {
	case ExportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case ExportFormatPDF:
		payload, err = s.pdf.Render(dataset, title)
	default:
		err = fmt.Errorf("unsupported format %s", format)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	timestamp := time.Now().UTC().Format("20060102_150405")
	filename := fmt.Sprintf("%s_%s.%s", baseName, timestamp, format)

	result := &ExportResult{Filename: filename, ContentType: format.ContentType(), Payload: payload}
	if s.storage != nil {
		relPath, err := s.storage.Save(filename, payload)
		if err != nil {
			s.logger.Warn("failed to persist export", zap.String("filename", filename), zap.Error(err))
		} else {
			result.RelativePath = relPath
		}
	}
	return result, nil
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}
