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

const periodColumns = "id, subject_id, room_id, weekday, start_time, end_time, created_at, updated_at"

// PeriodRepository provides persistence for periods.
type PeriodRepository struct {
	db *sqlx.DB
}

// NewPeriodRepository creates a new period repository.
func NewPeriodRepository(db *sqlx.DB) *PeriodRepository {
	return &PeriodRepository{db: db}
}

// List returns periods with optional filtering and pagination.
func (r *PeriodRepository) List(ctx context.Context, filter models.PeriodFilter) ([]models.Period, int, error) {
	base := "FROM periods WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.RoomID != "" {
		conditions = append(conditions, fmt.Sprintf("room_id = $%d", len(args)+1))
		args = append(args, filter.RoomID)
	}
	if filter.SubjectID != "" {
		conditions = append(conditions, fmt.Sprintf("subject_id = $%d", len(args)+1))
		args = append(args, filter.SubjectID)
	}
	if filter.Weekday != "" {
		conditions = append(conditions, fmt.Sprintf("weekday = $%d", len(args)+1))
		args = append(args, filter.Weekday)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"weekday":    true,
		"start_time": true,
		"room_id":    true,
		"created_at": true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "weekday"
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s, start_time ASC LIMIT %d OFFSET %d", periodColumns, base, sortBy, order, size, offset)
	var periods []models.Period
	if err := r.db.SelectContext(ctx, &periods, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list periods: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count periods: %w", err)
	}

	return periods, total, nil
}

// FindByID loads a period by id.
func (r *PeriodRepository) FindByID(ctx context.Context, id string) (*models.Period, error) {
	query := fmt.Sprintf("SELECT %s FROM periods WHERE id = $1", periodColumns)
	var period models.Period
	if err := r.db.GetContext(ctx, &period, query, id); err != nil {
		return nil, err
	}
	return &period, nil
}

// FindByIDs loads the periods matching the given ids, ordered by day then
// start time.
func (r *PeriodRepository) FindByIDs(ctx context.Context, ids []string) ([]models.Period, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(fmt.Sprintf("SELECT %s FROM periods WHERE id IN (?)", periodColumns), ids)
	if err != nil {
		return nil, fmt.Errorf("build periods by ids query: %w", err)
	}
	query = r.db.Rebind(query)
	var periods []models.Period
	if err := r.db.SelectContext(ctx, &periods, query, args...); err != nil {
		return nil, fmt.Errorf("list periods by ids: %w", err)
	}
	return periods, nil
}

// ListByRoomAndDay returns the periods occupying a room on a given day.
// This is the overlap-check scope for create and edit.
func (r *PeriodRepository) ListByRoomAndDay(ctx context.Context, roomID string, day models.Weekday) ([]models.Period, error) {
	query := fmt.Sprintf("SELECT %s FROM periods WHERE room_id = $1 AND weekday = $2 ORDER BY start_time ASC", periodColumns)
	var periods []models.Period
	if err := r.db.SelectContext(ctx, &periods, query, roomID, day); err != nil {
		return nil, fmt.Errorf("list periods by room and day: %w", err)
	}
	return periods, nil
}

// ListByRoom returns every period placed in a room.
func (r *PeriodRepository) ListByRoom(ctx context.Context, roomID string) ([]models.Period, error) {
	query := fmt.Sprintf("SELECT %s FROM periods WHERE room_id = $1 ORDER BY weekday ASC, start_time ASC", periodColumns)
	var periods []models.Period
	if err := r.db.SelectContext(ctx, &periods, query, roomID); err != nil {
		return nil, fmt.Errorf("list periods by room: %w", err)
	}
	return periods, nil
}

// Create stores a new period record.
func (r *PeriodRepository) Create(ctx context.Context, period *models.Period) error {
	if period.ID == "" {
		period.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if period.CreatedAt.IsZero() {
		period.CreatedAt = now
	}
	period.UpdatedAt = now

	const query = `INSERT INTO periods (id, subject_id, room_id, weekday, start_time, end_time, created_at, updated_at) VALUES (:id, :subject_id, :room_id, :weekday, :start_time, :end_time, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, period); err != nil {
		return fmt.Errorf("create period: %w", err)
	}
	return nil
}

// Update replaces the stored period by id.
func (r *PeriodRepository) Update(ctx context.Context, period *models.Period) error {
	period.UpdatedAt = time.Now().UTC()
	const query = `UPDATE periods SET subject_id = :subject_id, room_id = :room_id, weekday = :weekday, start_time = :start_time, end_time = :end_time, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, period); err != nil {
		return fmt.Errorf("update period: %w", err)
	}
	return nil
}

// Delete removes a period by id.
func (r *PeriodRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM periods WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete period: %w", err)
	}
	return nil
}
