package service

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/univpanel/scheduling-api/internal/models"
	appErrors "github.com/univpanel/scheduling-api/pkg/errors"
)

type periodRepository interface {
	List(ctx context.Context, filter models.PeriodFilter) ([]models.Period, int, error)
	FindByID(ctx context.Context, id string) (*models.Period, error)
	FindByIDs(ctx context.Context, ids []string) ([]models.Period, error)
	ListByRoomAndDay(ctx context.Context, roomID string, day models.Weekday) ([]models.Period, error)
	ListByRoom(ctx context.Context, roomID string) ([]models.Period, error)
	Create(ctx context.Context, period *models.Period) error
	Update(ctx context.Context, period *models.Period) error
	Delete(ctx context.Context, id string) error
}

type periodRoomLookup interface {
	FindByID(ctx context.Context, id string) (*models.Room, error)
	ListPhysical(ctx context.Context) ([]models.Room, error)
}

type periodSubjectLookup interface {
	ExistsByID(ctx context.Context, id string) (bool, error)
}

// CreatePeriodRequest describes payload for creating a period. Times use
// "HH:MM". Field-level presence is deliberately left to the domain
// validator so error kinds follow the documented check order.
type CreatePeriodRequest struct {
	SubjectID string `json:"subject_id"`
	RoomID    string `json:"room_id"`
	Weekday   string `json:"weekday"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// UpdatePeriodRequest replaces an existing period by id.
type UpdatePeriodRequest struct {
	SubjectID string `json:"subject_id"`
	RoomID    string `json:"room_id"`
	Weekday   string `json:"weekday"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// BulkSeedRequest seeds one full-day period per weekday for every
// non-auditorium physical room.
type BulkSeedRequest struct {
	SubjectID string `json:"subject_id" validate:"required"`
}

// PeriodService owns the committed periods and guards the no-overlap
// invariant. All mutations run under one mutex so the overlap check and the
// subsequent write are atomic within the process.
type PeriodService struct {
	mu sync.Mutex

	repo      periodRepository
	rooms     periodRoomLookup
	subjects  periodSubjectLookup
	checker   *PeriodValidator
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPeriodService instantiates PeriodService.
func NewPeriodService(repo periodRepository, rooms periodRoomLookup, subjects periodSubjectLookup, checker *PeriodValidator, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *PeriodService {
	if checker == nil {
		checker = NewPeriodValidator()
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PeriodService{
		repo:      repo,
		rooms:     rooms,
		subjects:  subjects,
		checker:   checker,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
	}
}

// List returns periods with pagination metadata.
func (s *PeriodService) List(ctx context.Context, filter models.PeriodFilter) ([]models.Period, *models.Pagination, error) {
	periods, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list periods")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return periods, pagination, nil
}

// Get loads a period by id.
func (s *PeriodService) Get(ctx context.Context, id string) (*models.Period, error) {
	period, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "period not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load period")
	}
	return period, nil
}

// FindMany loads the periods matching the given ids.
func (s *PeriodService) FindMany(ctx context.Context, ids []string) ([]models.Period, error) {
	periods, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load periods")
	}
	return periods, nil
}

// Create validates a candidate period, checks room-and-day overlap against
// the committed periods, and persists it.
func (s *PeriodService) Create(ctx context.Context, req CreatePeriodRequest) (*models.Period, error) {
	candidate, err := s.buildCandidate(req.SubjectID, req.RoomID, req.Weekday, req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}

	if err := s.checkReferences(ctx, candidate); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureNoOverlap(ctx, candidate, ""); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, &candidate); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create period")
	}
	s.invalidateTimetables(ctx)
	return &candidate, nil
}

// Update re-validates and re-checks overlap against all other periods
// before committing the replacement. Editing a period to identical values
// always succeeds because the period is excluded from its own check.
func (s *PeriodService) Update(ctx context.Context, id string, req UpdatePeriodRequest) (*models.Period, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "period not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load period")
	}

	candidate, err := s.buildCandidate(req.SubjectID, req.RoomID, req.Weekday, req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}
	candidate.ID = existing.ID
	candidate.CreatedAt = existing.CreatedAt

	if err := s.checkReferences(ctx, candidate); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureNoOverlap(ctx, candidate, existing.ID); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, &candidate); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update period")
	}
	s.invalidateTimetables(ctx)
	return &candidate, nil
}

// Delete removes a period by id. Schedules referencing the period are the
// aggregator's responsibility.
func (s *PeriodService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "period not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load period")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete period")
	}
	s.invalidateTimetables(ctx)
	return nil
}

// BulkSeed creates one full-day period per weekday Monday through Saturday
// for every non-auditorium physical room. Individual failures are logged
// and skipped; the batch itself never fails on a conflict.
func (s *PeriodService) BulkSeed(ctx context.Context, req BulkSeedRequest) (*models.SeedResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid seed payload")
	}

	exists, err := s.subjects.ExistsByID(ctx, req.SubjectID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check subject")
	}
	if !exists {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
	}

	rooms, err := s.rooms.ListPhysical(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list rooms")
	}

	result := &models.SeedResult{}
	for _, room := range rooms {
		if room.Kind == models.RoomAuditorium {
			continue
		}
		for _, day := range models.SchedulableWeekdays {
			start, end := models.DayBounds(day)
			created, err := s.Create(ctx, CreatePeriodRequest{
				SubjectID: req.SubjectID,
				RoomID:    room.ID,
				Weekday:   string(day),
				StartTime: start.String(),
				EndTime:   end.String(),
			})
			if err != nil {
				s.logger.Warn("seed period skipped",
					zap.String("room_id", room.ID),
					zap.String("weekday", string(day)),
					zap.Error(err))
				result.Skipped = append(result.Skipped, models.SeedFailure{
					RoomID:  room.ID,
					Weekday: day,
					Reason:  appErrors.FromError(err).Message,
				})
				continue
			}
			result.Created = append(result.Created, *created)
		}
	}
	return result, nil
}

func (s *PeriodService) buildCandidate(subjectID, roomID, weekday, start, end string) (models.Period, error) {
	candidate := models.Period{
		SubjectID: subjectID,
		RoomID:    roomID,
		Weekday:   models.NormalizeWeekday(weekday),
	}

	if start == "" {
		return models.Period{}, appErrors.Clone(appErrors.ErrInvalidRange, "start time is required")
	}
	startParsed, err := models.ParseDayTime(start)
	if err != nil {
		return models.Period{}, appErrors.Wrap(err, appErrors.ErrInvalidRange.Code, appErrors.ErrInvalidRange.Status, "invalid start time")
	}
	candidate.StartTime = startParsed

	if end == "" {
		return models.Period{}, appErrors.Clone(appErrors.ErrInvalidRange, "end time is required")
	}
	endParsed, err := models.ParseDayTime(end)
	if err != nil {
		return models.Period{}, appErrors.Wrap(err, appErrors.ErrInvalidRange.Code, appErrors.ErrInvalidRange.Status, "invalid end time")
	}
	candidate.EndTime = endParsed

	if err := s.checker.Validate(candidate); err != nil {
		return models.Period{}, err
	}
	return candidate, nil
}

func (s *PeriodService) checkReferences(ctx context.Context, period models.Period) error {
	if _, err := s.rooms.FindByID(ctx, period.RoomID); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "room not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load room")
	}

	exists, err := s.subjects.ExistsByID(ctx, period.SubjectID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check subject")
	}
	if !exists {
		return appErrors.Clone(appErrors.ErrNotFound, "subject not found")
	}
	return nil
}

// ensureNoOverlap scans committed periods sharing the candidate's room and
// day. Touching endpoints count as overlap; the comparison is inclusive on
// both ends.
func (s *PeriodService) ensureNoOverlap(ctx context.Context, candidate models.Period, ignoreID string) error {
	existing, err := s.repo.ListByRoomAndDay(ctx, candidate.RoomID, candidate.Weekday)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check period overlap")
	}

	for _, item := range existing {
		if item.ID == ignoreID {
			continue
		}
		if candidate.Overlaps(item) {
			if s.metrics != nil {
				s.metrics.RecordPeriodConflict()
			}
			domainErr := &models.PeriodConflictError{
				Message: fmt.Sprintf("room already booked %s %s-%s", string(item.Weekday), item.StartTime, item.EndTime),
				Conflict: models.PeriodConflict{
					PeriodID:  item.ID,
					SubjectID: item.SubjectID,
					RoomID:    item.RoomID,
					Weekday:   item.Weekday,
					StartTime: item.StartTime,
					EndTime:   item.EndTime,
				},
			}
			return appErrors.Wrap(domainErr, appErrors.ErrPeriodOverlap.Code, appErrors.ErrPeriodOverlap.Status, domainErr.Message)
		}
	}
	return nil
}

func (s *PeriodService) invalidateTimetables(ctx context.Context) {
	if !s.cache.Enabled() {
		return
	}
	if err := s.cache.Invalidate(ctx, "timetable:*"); err != nil {
		s.logger.Warn("timetable cache invalidation failed", zap.Error(err))
	}
}
