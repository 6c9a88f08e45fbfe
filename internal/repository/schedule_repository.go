package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/univpanel/scheduling-api/internal/models"
)

const scheduleColumns = "id, professor_id, subject_id, group_label, class_type, created_at, updated_at"

// ScheduleRepository provides persistence for schedules and their period
// links. Schedules reference periods by id through schedule_periods.
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository creates a new schedule repository.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// List returns schedules with optional filtering and pagination.
func (r *ScheduleRepository) List(ctx context.Context, filter models.ScheduleFilter) ([]models.Schedule, int, error) {
	base := "FROM schedules WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.ProfessorID != "" {
		conditions = append(conditions, fmt.Sprintf("professor_id = $%d", len(args)+1))
		args = append(args, filter.ProfessorID)
	}
	if filter.SubjectID != "" {
		conditions = append(conditions, fmt.Sprintf("subject_id = $%d", len(args)+1))
		args = append(args, filter.SubjectID)
	}
	if filter.GroupLabel != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(group_label) = LOWER($%d)", len(args)+1))
		args = append(args, filter.GroupLabel)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"group_label": true,
		"class_type":  true,
		"created_at":  true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "created_at"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", scheduleColumns, base, sortBy, order, size, offset)
	var schedules []models.Schedule
	if err := r.db.SelectContext(ctx, &schedules, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list schedules: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count schedules: %w", err)
	}

	return schedules, total, nil
}

// FindByID loads a schedule by id, including its period ids.
func (r *ScheduleRepository) FindByID(ctx context.Context, id string) (*models.Schedule, error) {
	query := fmt.Sprintf("SELECT %s FROM schedules WHERE id = $1", scheduleColumns)
	var sched models.Schedule
	if err := r.db.GetContext(ctx, &sched, query, id); err != nil {
		return nil, err
	}
	periodIDs, err := r.ListPeriodIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	sched.PeriodIDs = periodIDs
	return &sched, nil
}

// ListByProfessor returns schedules owned by a professor.
func (r *ScheduleRepository) ListByProfessor(ctx context.Context, professorID string) ([]models.Schedule, error) {
	query := fmt.Sprintf("SELECT %s FROM schedules WHERE professor_id = $1 ORDER BY created_at ASC", scheduleColumns)
	var schedules []models.Schedule
	if err := r.db.SelectContext(ctx, &schedules, query, professorID); err != nil {
		return nil, fmt.Errorf("list schedules by professor: %w", err)
	}
	return schedules, nil
}

// ListBySubject returns schedules covering a subject.
func (r *ScheduleRepository) ListBySubject(ctx context.Context, subjectID string) ([]models.Schedule, error) {
	query := fmt.Sprintf("SELECT %s FROM schedules WHERE subject_id = $1 ORDER BY created_at ASC", scheduleColumns)
	var schedules []models.Schedule
	if err := r.db.SelectContext(ctx, &schedules, query, subjectID); err != nil {
		return nil, fmt.Errorf("list schedules by subject: %w", err)
	}
	return schedules, nil
}

// ListByDay returns schedules that have at least one period on the day.
func (r *ScheduleRepository) ListByDay(ctx context.Context, day models.Weekday) ([]models.Schedule, error) {
	const query = `SELECT DISTINCT s.id, s.professor_id, s.subject_id, s.group_label, s.class_type, s.created_at, s.updated_at FROM schedules s JOIN schedule_periods sp ON sp.schedule_id = s.id JOIN periods p ON p.id = sp.period_id WHERE p.weekday = $1 ORDER BY s.created_at ASC`
	var schedules []models.Schedule
	if err := r.db.SelectContext(ctx, &schedules, query, day); err != nil {
		return nil, fmt.Errorf("list schedules by day: %w", err)
	}
	return schedules, nil
}

// ListByRoom returns schedules that have at least one period in the room.
func (r *ScheduleRepository) ListByRoom(ctx context.Context, roomID string) ([]models.Schedule, error) {
	const query = `SELECT DISTINCT s.id, s.professor_id, s.subject_id, s.group_label, s.class_type, s.created_at, s.updated_at FROM schedules s JOIN schedule_periods sp ON sp.schedule_id = s.id JOIN periods p ON p.id = sp.period_id WHERE p.room_id = $1 ORDER BY s.created_at ASC`
	var schedules []models.Schedule
	if err := r.db.SelectContext(ctx, &schedules, query, roomID); err != nil {
		return nil, fmt.Errorf("list schedules by room: %w", err)
	}
	return schedules, nil
}

// ListPeriodIDs returns the period ids linked to a schedule.
func (r *ScheduleRepository) ListPeriodIDs(ctx context.Context, scheduleID string) ([]string, error) {
	var ids []string
	const query = `SELECT period_id FROM schedule_periods WHERE schedule_id = $1 ORDER BY linked_at ASC`
	if err := r.db.SelectContext(ctx, &ids, query, scheduleID); err != nil {
		return nil, fmt.Errorf("list schedule period ids: %w", err)
	}
	return ids, nil
}

// AddPeriod links a period to a schedule.
func (r *ScheduleRepository) AddPeriod(ctx context.Context, scheduleID, periodID string) error {
	const query = `INSERT INTO schedule_periods (schedule_id, period_id, linked_at) VALUES ($1, $2, $3)`
	if _, err := r.db.ExecContext(ctx, query, scheduleID, periodID, time.Now().UTC()); err != nil {
		return fmt.Errorf("link period to schedule: %w", err)
	}
	return nil
}

// RemovePeriod unlinks a period from a schedule. It reports whether a link
// existed.
func (r *ScheduleRepository) RemovePeriod(ctx context.Context, scheduleID, periodID string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM schedule_periods WHERE schedule_id = $1 AND period_id = $2`, scheduleID, periodID)
	if err != nil {
		return false, fmt.Errorf("unlink period from schedule: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("unlink period rows affected: %w", err)
	}
	return affected > 0, nil
}

// Create stores a new schedule record.
func (r *ScheduleRepository) Create(ctx context.Context, schedule *models.Schedule) error {
	if schedule.ID == "" {
		schedule.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if schedule.CreatedAt.IsZero() {
		schedule.CreatedAt = now
	}
	schedule.UpdatedAt = now

	const query = `INSERT INTO schedules (id, professor_id, subject_id, group_label, class_type, created_at, updated_at) VALUES (:id, :professor_id, :subject_id, :group_label, :class_type, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, schedule); err != nil {
		return fmt.Errorf("create schedule: %w", err)
	}
	return nil
}

// Update modifies a schedule record.
func (r *ScheduleRepository) Update(ctx context.Context, schedule *models.Schedule) error {
	schedule.UpdatedAt = time.Now().UTC()
	const query = `UPDATE schedules SET professor_id = :professor_id, subject_id = :subject_id, group_label = :group_label, class_type = :class_type, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, schedule); err != nil {
		return fmt.Errorf("update schedule: %w", err)
	}
	return nil
}

// Delete removes a schedule and its period links.
func (r *ScheduleRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete schedule: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM schedule_periods WHERE schedule_id = $1`, id); err != nil {
		return fmt.Errorf("delete schedule period links: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM schedules WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete schedule: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit delete schedule: %w", err)
	}
	return nil
}
