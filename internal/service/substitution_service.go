package service

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/univpanel/scheduling-api/internal/models"
	appErrors "github.com/univpanel/scheduling-api/pkg/errors"
)

type substituteRepository interface {
	ListAll(ctx context.Context) ([]models.Substitute, error)
	FindByID(ctx context.Context, id string) (*models.Substitute, error)
	ListByOriginalTeacher(ctx context.Context, teacherID string) ([]models.Substitute, error)
	ListActiveFlagged(ctx context.Context) ([]models.Substitute, error)
	Create(ctx context.Context, sub *models.Substitute) error
	MarkCompleted(ctx context.Context, id string, endDate time.Time) error
	Reactivate(ctx context.Context, id string, endDate *time.Time) error
	Delete(ctx context.Context, id string) error
}

type accountRegistry interface {
	FindByID(ctx context.Context, id string) (*models.Account, error)
	UpdateRole(ctx context.Context, id string, role models.AccountRole) error
}

// ScheduleFileHook maintains a professor's personal schedule file. It is a
// side-effect-only collaborator: failures surface as warnings and never
// roll back a role transition.
type ScheduleFileHook interface {
	Create(professorID string) error
	Delete(professorID string) error
}

const dateLayout = "2006-01-02"

// PromoteRequest elevates a professor to administrator for a date range.
// An absent end date leaves the substitution open-ended.
type PromoteRequest struct {
	ProfessorID  string  `json:"professor_id" validate:"required"`
	SubstituteID string  `json:"substitute_id" validate:"required"`
	StartDate    string  `json:"start_date" validate:"required"`
	EndDate      *string `json:"end_date"`
}

// PromoteResult reports the created substitution and any hook warning.
type PromoteResult struct {
	Substitute models.Substitute `json:"substitute"`
	Warning    string            `json:"warning,omitempty"`
}

// RevertResult reports the completed substitution and any hook warning.
type RevertResult struct {
	Substitute models.Substitute `json:"substitute"`
	Warning    string            `json:"warning,omitempty"`
}

// SubstitutionService drives the professor/administrator role transition
// and owns the substitution records. Mutations run under one mutex so the
// uniqueness check and the writes behind it are atomic in-process.
type SubstitutionService struct {
	mu sync.Mutex

	repo      substituteRepository
	accounts  accountRegistry
	hook      ScheduleFileHook
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewSubstitutionService instantiates SubstitutionService.
func NewSubstitutionService(repo substituteRepository, accounts accountRegistry, hook ScheduleFileHook, validate *validator.Validate, logger *zap.Logger) *SubstitutionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubstitutionService{
		repo:      repo,
		accounts:  accounts,
		hook:      hook,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// WithClock overrides the service clock. Intended for tests.
func (s *SubstitutionService) WithClock(now func() time.Time) *SubstitutionService {
	if now != nil {
		s.now = now
	}
	return s
}

// Promote elevates a professor to administrator, recording the substitute
// who covers the teaching load. The substitution record is written durably
// before the role flip; if the flip fails the record is removed again so no
// administrator exists without a substitute on file.
func (s *SubstitutionService) Promote(ctx context.Context, req PromoteRequest) (*PromoteResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid promotion payload")
	}

	startDate, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid start date")
	}
	var endDate *time.Time
	if req.EndDate != nil && *req.EndDate != "" {
		parsed, err := time.Parse(dateLayout, *req.EndDate)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid end date")
		}
		if parsed.Before(startDate) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "end date precedes start date")
		}
		endDate = &parsed
	}

	professor, err := s.accounts.FindByID(ctx, req.ProfessorID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "professor account not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load professor account")
	}
	if professor.Role != models.RoleProfessor {
		return nil, appErrors.Clone(appErrors.ErrRoleError, "only professors can be promoted")
	}

	if _, err := s.accounts.FindByID(ctx, req.SubstituteID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "substitute account not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load substitute account")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.repo.ListByOriginalTeacher(ctx, req.ProfessorID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load substitutions")
	}
	today := s.now()
	for _, sub := range existing {
		if sub.CurrentlyActiveAt(today) {
			return nil, appErrors.Clone(appErrors.ErrActiveSubstitutionExists, "")
		}
	}

	sub := models.Substitute{
		OriginalTeacherID:   req.ProfessorID,
		SubstituteTeacherID: req.SubstituteID,
		StartDate:           startDate,
		EndDate:             endDate,
		Active:              true,
	}
	if err := s.repo.Create(ctx, &sub); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record substitution")
	}

	if err := s.accounts.UpdateRole(ctx, req.ProfessorID, models.RoleAdmin); err != nil {
		if delErr := s.repo.Delete(ctx, sub.ID); delErr != nil {
			s.logger.Error("failed to remove substitution after role flip failure",
				zap.String("substitute_id", sub.ID), zap.Error(delErr))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to promote account")
	}

	result := &PromoteResult{Substitute: sub}
	if s.hook != nil {
		if err := s.hook.Delete(req.ProfessorID); err != nil {
			s.logger.Warn("schedule file removal failed", zap.String("account_id", req.ProfessorID), zap.Error(err))
			result.Warning = "promotion succeeded but the personal schedule file could not be removed"
		}
	}

	s.logger.Info("professor promoted",
		zap.String("professor_id", req.ProfessorID),
		zap.String("substitute_id", req.SubstituteID))
	return result, nil
}

// Revert returns an administrator to the professor role, completing the
// matching substitution record. If the role flip fails the record is
// re-activated so the reversion can be retried.
func (s *SubstitutionService) Revert(ctx context.Context, adminID string) (*RevertResult, error) {
	account, err := s.accounts.FindByID(ctx, adminID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "account not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load account")
	}
	if account.Role != models.RoleAdmin {
		return nil, appErrors.Clone(appErrors.ErrRoleError, "only administrators can be reverted")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	subs, err := s.repo.ListByOriginalTeacher(ctx, adminID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load substitutions")
	}

	var current *models.Substitute
	for i := range subs {
		if subs[i].Active {
			current = &subs[i]
			break
		}
	}
	if current == nil {
		return nil, appErrors.Clone(appErrors.ErrNoSubstituteAssigned, "")
	}

	today := s.now().UTC().Truncate(24 * time.Hour)
	priorEnd := current.EndDate
	if err := s.repo.MarkCompleted(ctx, current.ID, today); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to complete substitution")
	}

	if err := s.accounts.UpdateRole(ctx, adminID, models.RoleProfessor); err != nil {
		// Restore the record so the reversion can be retried instead of the
		// account staying an administrator with no active substitution.
		if reErr := s.repo.Reactivate(ctx, current.ID, priorEnd); reErr != nil {
			s.logger.Error("failed to restore substitution after role flip failure",
				zap.String("substitute_id", current.ID), zap.Error(reErr))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to revert account role")
	}
	current.Active = false
	current.EndDate = &today

	result := &RevertResult{Substitute: *current}
	if s.hook != nil {
		if err := s.hook.Create(adminID); err != nil {
			s.logger.Warn("schedule file creation failed", zap.String("account_id", adminID), zap.Error(err))
			result.Warning = "reversion succeeded but the personal schedule file could not be created"
		}
	}

	s.logger.Info("administrator reverted", zap.String("account_id", adminID))
	return result, nil
}

// ListActive returns the substitutions in effect today.
func (s *SubstitutionService) ListActive(ctx context.Context) ([]models.Substitute, error) {
	subs, err := s.repo.ListActiveFlagged(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list substitutions")
	}
	today := s.now()
	current := make([]models.Substitute, 0, len(subs))
	for _, sub := range subs {
		if sub.CurrentlyActiveAt(today) {
			current = append(current, sub)
		}
	}
	return current, nil
}

// Get loads a single substitution record.
func (s *SubstitutionService) Get(ctx context.Context, id string) (*models.Substitute, error) {
	sub, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "substitution not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load substitution")
	}
	return sub, nil
}

// ListAll returns every substitution record, past and present.
func (s *SubstitutionService) ListAll(ctx context.Context) ([]models.Substitute, error) {
	subs, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list substitutions")
	}
	return subs, nil
}
