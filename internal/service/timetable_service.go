package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/univpanel/scheduling-api/internal/models"
	appErrors "github.com/univpanel/scheduling-api/pkg/errors"
)

type timetableRoomSource interface {
	FindByID(ctx context.Context, id string) (*models.Room, error)
}

type timetablePeriodSource interface {
	ListByRoom(ctx context.Context, roomID string) ([]models.Period, error)
}

type timetableSubjectSource interface {
	FindByID(ctx context.Context, id string) (*models.Subject, error)
}

// TimetableService assembles the weekly view of a room: every period in that
// room resolved against subject names, grouped by day. Results are cached
// and invalidated whenever a period mutation touches the room.
type TimetableService struct {
	rooms    timetableRoomSource
	periods  timetablePeriodSource
	subjects timetableSubjectSource
	cache    *CacheService
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewTimetableService instantiates TimetableService.
func NewTimetableService(rooms timetableRoomSource, periods timetablePeriodSource, subjects timetableSubjectSource, cache *CacheService, cacheTTL time.Duration, logger *zap.Logger) *TimetableService {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimetableService{rooms: rooms, periods: periods, subjects: subjects, cache: cache, cacheTTL: cacheTTL, logger: logger}
}

func timetableCacheKey(roomID string) string {
	return fmt.Sprintf("timetable:room:%s", roomID)
}

// ForRoom returns the weekly timetable of a room ordered by day then start
// time. The boolean reports whether the result came from cache.
func (s *TimetableService) ForRoom(ctx context.Context, roomID string) (*models.RoomTimetable, bool, error) {
	key := timetableCacheKey(roomID)
	if s.cache.Enabled() {
		var cached models.RoomTimetable
		if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
			return &cached, true, nil
		}
	}

	room, err := s.rooms.FindByID(ctx, roomID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, appErrors.Clone(appErrors.ErrNotFound, "room not found")
		}
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load room")
	}

	periods, err := s.periods.ListByRoom(ctx, roomID)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load periods")
	}

	subjectNames := make(map[string]string)
	entries := make([]models.TimetableEntry, 0, len(periods))
	for _, period := range periods {
		name, ok := subjectNames[period.SubjectID]
		if !ok {
			subject, err := s.subjects.FindByID(ctx, period.SubjectID)
			if err != nil {
				if err != sql.ErrNoRows {
					return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
				}
				// Dangling reference: keep the row visible rather than
				// failing the whole timetable.
				name = period.SubjectID
			} else {
				name = subject.Name
			}
			subjectNames[period.SubjectID] = name
		}
		entries = append(entries, models.TimetableEntry{
			PeriodID:    period.ID,
			RoomID:      room.ID,
			RoomName:    room.Name,
			SubjectID:   period.SubjectID,
			SubjectName: name,
			Weekday:     period.Weekday,
			StartTime:   period.StartTime,
			EndTime:     period.EndTime,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Weekday != entries[j].Weekday {
			return entries[i].Weekday.Order() < entries[j].Weekday.Order()
		}
		return entries[i].StartTime.Before(entries[j].StartTime)
	})

	timetable := &models.RoomTimetable{Room: *room, Entries: entries}
	if s.cache.Enabled() {
		if err := s.cache.Set(ctx, key, timetable, s.cacheTTL); err != nil {
			s.logger.Warn("failed to cache timetable", zap.String("room_id", roomID), zap.Error(err))
		}
	}
	return timetable, false, nil
}
