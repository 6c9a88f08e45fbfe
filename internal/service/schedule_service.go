package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/univpanel/scheduling-api/internal/models"
	appErrors "github.com/univpanel/scheduling-api/pkg/errors"
)

type scheduleRepository interface {
	List(ctx context.Context, filter models.ScheduleFilter) ([]models.Schedule, int, error)
	FindByID(ctx context.Context, id string) (*models.Schedule, error)
	ListByProfessor(ctx context.Context, professorID string) ([]models.Schedule, error)
	ListBySubject(ctx context.Context, subjectID string) ([]models.Schedule, error)
	ListByDay(ctx context.Context, day models.Weekday) ([]models.Schedule, error)
	ListByRoom(ctx context.Context, roomID string) ([]models.Schedule, error)
	ListPeriodIDs(ctx context.Context, scheduleID string) ([]string, error)
	AddPeriod(ctx context.Context, scheduleID, periodID string) error
	RemovePeriod(ctx context.Context, scheduleID, periodID string) (bool, error)
	Create(ctx context.Context, schedule *models.Schedule) error
	Update(ctx context.Context, schedule *models.Schedule) error
	Delete(ctx context.Context, id string) error
}

type schedulePeriodStore interface {
	Create(ctx context.Context, req CreatePeriodRequest) (*models.Period, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*models.Period, error)
	FindMany(ctx context.Context, ids []string) ([]models.Period, error)
}

// CreateScheduleRequest describes payload for creating a schedule.
type CreateScheduleRequest struct {
	ProfessorID string `json:"professor_id" validate:"required"`
	SubjectID   string `json:"subject_id" validate:"required"`
	GroupLabel  string `json:"group_label" validate:"required"`
	ClassType   string `json:"class_type" validate:"required"`
}

// AddSchedulePeriodRequest attaches a new period to a schedule. The period
// is created through the period store, so it still passes validation and
// the room overlap check.
type AddSchedulePeriodRequest struct {
	RoomID    string `json:"room_id"`
	Weekday   string `json:"weekday"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// ScheduleService groups periods under professor/subject/group schedules.
// It aggregates period ids only; the canonical rows stay with the period
// store, and every schedule-level mutation delegates to it.
type ScheduleService struct {
	repo      scheduleRepository
	periods   schedulePeriodStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewScheduleService instantiates ScheduleService.
func NewScheduleService(repo scheduleRepository, periods schedulePeriodStore, validate *validator.Validate, logger *zap.Logger) *ScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleService{repo: repo, periods: periods, validator: validate, logger: logger}
}

// List returns schedules with pagination metadata.
func (s *ScheduleService) List(ctx context.Context, filter models.ScheduleFilter) ([]models.Schedule, *models.Pagination, error) {
	schedules, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list schedules")
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
	return schedules, pagination, nil
}

// Get loads a schedule with its periods resolved.
func (s *ScheduleService) Get(ctx context.Context, id string) (*models.ScheduleView, error) {
	sched, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule")
	}

	periods, err := s.periods.FindMany(ctx, sched.PeriodIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule periods")
	}
	return &models.ScheduleView{Schedule: *sched, Periods: periods}, nil
}

// Create stores a new schedule without periods.
func (s *ScheduleService) Create(ctx context.Context, req CreateScheduleRequest) (*models.Schedule, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule payload")
	}

	schedule := models.Schedule{
		ProfessorID: req.ProfessorID,
		SubjectID:   req.SubjectID,
		GroupLabel:  req.GroupLabel,
		ClassType:   req.ClassType,
	}
	if err := s.repo.Create(ctx, &schedule); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create schedule")
	}
	schedule.PeriodIDs = []string{}
	return &schedule, nil
}

// Delete removes a schedule and its period links. The periods themselves
// stay committed; they belong to the period store.
func (s *ScheduleService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete schedule")
	}
	return nil
}

// AddPeriod creates a period for the schedule's subject and links it. If
// the link write fails the created period is removed again, so the
// schedule never ends up half-mutated.
func (s *ScheduleService) AddPeriod(ctx context.Context, scheduleID string, req AddSchedulePeriodRequest) (*models.Period, error) {
	sched, err := s.repo.FindByID(ctx, scheduleID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule")
	}

	period, err := s.periods.Create(ctx, CreatePeriodRequest{
		SubjectID: sched.SubjectID,
		RoomID:    req.RoomID,
		Weekday:   req.Weekday,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	})
	if err != nil {
		return nil, err
	}

	if err := s.repo.AddPeriod(ctx, scheduleID, period.ID); err != nil {
		if delErr := s.periods.Delete(ctx, period.ID); delErr != nil {
			s.logger.Error("failed to remove orphaned period after link failure",
				zap.String("period_id", period.ID), zap.Error(delErr))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to link period to schedule")
	}
	return period, nil
}

// RemovePeriod unlinks a period from the schedule and deletes it from the
// period store.
func (s *ScheduleService) RemovePeriod(ctx context.Context, scheduleID, periodID string) error {
	if _, err := s.repo.FindByID(ctx, scheduleID); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule")
	}

	removed, err := s.repo.RemovePeriod(ctx, scheduleID, periodID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to unlink period")
	}
	if !removed {
		return appErrors.Clone(appErrors.ErrNotFound, "period is not part of this schedule")
	}

	if err := s.periods.Delete(ctx, periodID); err != nil {
		return err
	}
	return nil
}

// ByProfessor returns schedules owned by a professor.
func (s *ScheduleService) ByProfessor(ctx context.Context, professorID string) ([]models.Schedule, error) {
	schedules, err := s.repo.ListByProfessor(ctx, professorID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list schedules by professor")
	}
	return schedules, nil
}

// BySubject returns schedules covering a subject.
func (s *ScheduleService) BySubject(ctx context.Context, subjectID string) ([]models.Schedule, error) {
	schedules, err := s.repo.ListBySubject(ctx, subjectID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list schedules by subject")
	}
	return schedules, nil
}

// ByDay returns schedules with at least one period on the given day. The
// day name is compared case-insensitively.
func (s *ScheduleService) ByDay(ctx context.Context, day string) ([]models.Schedule, error) {
	weekday := models.NormalizeWeekday(day)
	if !weekday.Known() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown weekday")
	}
	schedules, err := s.repo.ListByDay(ctx, weekday)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list schedules by day")
	}
	return schedules, nil
}

// ByRoom returns schedules with at least one period in the given room.
func (s *ScheduleService) ByRoom(ctx context.Context, roomID string) ([]models.Schedule, error) {
	schedules, err := s.repo.ListByRoom(ctx, roomID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list schedules by room")
	}
	return schedules, nil
}
