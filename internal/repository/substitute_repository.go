package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/univpanel/scheduling-api/internal/models"
)

const substituteColumns = "id, original_teacher_id, substitute_teacher_id, start_date, end_date, active, created_at, updated_at"

// SubstituteRepository provides persistence for substitution records.
type SubstituteRepository struct {
	db *sqlx.DB
}

// NewSubstituteRepository creates a new substitute repository.
func NewSubstituteRepository(db *sqlx.DB) *SubstituteRepository {
	return &SubstituteRepository{db: db}
}

// ListAll returns every substitution record, newest first.
func (r *SubstituteRepository) ListAll(ctx context.Context) ([]models.Substitute, error) {
	query := fmt.Sprintf("SELECT %s FROM substitutes ORDER BY created_at DESC", substituteColumns)
	var subs []models.Substitute
	if err := r.db.SelectContext(ctx, &subs, query); err != nil {
		return nil, fmt.Errorf("list substitutes: %w", err)
	}
	return subs, nil
}

// FindByID loads a substitution record by id.
func (r *SubstituteRepository) FindByID(ctx context.Context, id string) (*models.Substitute, error) {
	query := fmt.Sprintf("SELECT %s FROM substitutes WHERE id = $1", substituteColumns)
	var sub models.Substitute
	if err := r.db.GetContext(ctx, &sub, query, id); err != nil {
		return nil, err
	}
	return &sub, nil
}

// ListByOriginalTeacher returns all substitution records for a teacher,
// newest first. Currently-active filtering happens in the service where the
// clock lives.
func (r *SubstituteRepository) ListByOriginalTeacher(ctx context.Context, teacherID string) ([]models.Substitute, error) {
	query := fmt.Sprintf("SELECT %s FROM substitutes WHERE original_teacher_id = $1 ORDER BY created_at DESC", substituteColumns)
	var subs []models.Substitute
	if err := r.db.SelectContext(ctx, &subs, query, teacherID); err != nil {
		return nil, fmt.Errorf("list substitutes by teacher: %w", err)
	}
	return subs, nil
}

// ListActiveFlagged returns records whose active flag is still set. Date
// bounds are applied by the caller.
func (r *SubstituteRepository) ListActiveFlagged(ctx context.Context) ([]models.Substitute, error) {
	query := fmt.Sprintf("SELECT %s FROM substitutes WHERE active = TRUE ORDER BY start_date ASC", substituteColumns)
	var subs []models.Substitute
	if err := r.db.SelectContext(ctx, &subs, query); err != nil {
		return nil, fmt.Errorf("list active substitutes: %w", err)
	}
	return subs, nil
}

// Create stores a new substitution record.
func (r *SubstituteRepository) Create(ctx context.Context, sub *models.Substitute) error {
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = now
	}
	sub.UpdatedAt = now

	const query = `INSERT INTO substitutes (id, original_teacher_id, substitute_teacher_id, start_date, end_date, active, created_at, updated_at) VALUES (:id, :original_teacher_id, :substitute_teacher_id, :start_date, :end_date, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, sub); err != nil {
		return fmt.Errorf("create substitute: %w", err)
	}
	return nil
}

// MarkCompleted clears the active flag and closes the record on endDate.
func (r *SubstituteRepository) MarkCompleted(ctx context.Context, id string, endDate time.Time) error {
	const query = `UPDATE substitutes SET active = FALSE, end_date = $1, updated_at = $2 WHERE id = $3`
	if _, err := r.db.ExecContext(ctx, query, endDate, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("mark substitute completed: %w", err)
	}
	return nil
}

// Reactivate restores the active flag and the prior end date. Used to
// compensate a failed role flip during reversion.
func (r *SubstituteRepository) Reactivate(ctx context.Context, id string, endDate *time.Time) error {
	const query = `UPDATE substitutes SET active = TRUE, end_date = $1, updated_at = $2 WHERE id = $3`
	if _, err := r.db.ExecContext(ctx, query, endDate, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("reactivate substitute: %w", err)
	}
	return nil
}

// Delete removes a substitution record. Used to compensate a failed role
// flip during promotion.
func (r *SubstituteRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM substitutes WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete substitute: %w", err)
	}
	return nil
}
