package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/univpanel/scheduling-api/internal/models"
	appErrors "github.com/univpanel/scheduling-api/pkg/errors"
)

type roomRepository interface {
	List(ctx context.Context, filter models.RoomFilter) ([]models.Room, int, error)
	FindByID(ctx context.Context, id string) (*models.Room, error)
	ExistsByID(ctx context.Context, id string) (bool, error)
	ExistsByName(ctx context.Context, name, excludeID string) (bool, error)
	ListByKind(ctx context.Context, kind models.RoomKind) ([]models.Room, error)
	ListAvailable(ctx context.Context) ([]models.Room, error)
	Create(ctx context.Context, room *models.Room) error
	Update(ctx context.Context, room *models.Room) error
	UpdateAvailability(ctx context.Context, id string, availability models.RoomAvailability) error
	Delete(ctx context.Context, id string) error
}

// CreateRoomRequest describes payload for registering a room.
type CreateRoomRequest struct {
	ID           string `json:"id"`
	Name         string `json:"name" validate:"required"`
	Kind         string `json:"kind" validate:"required"`
	Capacity     int    `json:"capacity" validate:"required,gt=0"`
	HasProjector bool   `json:"has_projector"`
}

// UpdateRoomRequest updates an existing room.
type UpdateRoomRequest struct {
	Name         string `json:"name" validate:"required"`
	Kind         string `json:"kind" validate:"required"`
	Capacity     int    `json:"capacity" validate:"required,gt=0"`
	HasProjector bool   `json:"has_projector"`
}

// RoomService owns room records and their availability state.
type RoomService struct {
	repo      roomRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRoomService instantiates RoomService.
func NewRoomService(repo roomRepository, validate *validator.Validate, logger *zap.Logger) *RoomService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RoomService{repo: repo, validator: validate, logger: logger}
}

// List returns rooms with pagination metadata.
func (s *RoomService) List(ctx context.Context, filter models.RoomFilter) ([]models.Room, *models.Pagination, error) {
	rooms, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list rooms")
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
	return rooms, pagination, nil
}

// Get loads a room by id.
func (s *RoomService) Get(ctx context.Context, id string) (*models.Room, error) {
	room, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "room not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load room")
	}
	return room, nil
}

// Create registers a new room. Ids and names must be unique; names compare
// case-insensitively. Labs and auditoriums always carry a projector.
func (s *RoomService) Create(ctx context.Context, req CreateRoomRequest) (*models.Room, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid room payload")
	}

	kind := models.RoomKind(req.Kind)
	if !kind.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown room kind %q", req.Kind))
	}

	if req.ID != "" {
		exists, err := s.repo.ExistsByID(ctx, req.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check room id")
		}
		if exists {
			return nil, appErrors.Clone(appErrors.ErrDuplicateID, "room id already in use")
		}
	}

	taken, err := s.repo.ExistsByName(ctx, req.Name, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check room name")
	}
	if taken {
		return nil, appErrors.Clone(appErrors.ErrDuplicateName, "room name already in use")
	}

	room := models.Room{
		ID:           req.ID,
		Name:         req.Name,
		Kind:         kind,
		Capacity:     req.Capacity,
		HasProjector: req.HasProjector || kind.RequiresProjector(),
		Availability: models.RoomFree,
	}

	if err := s.repo.Create(ctx, &room); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create room")
	}
	s.logger.Info("room created", zap.String("room_id", room.ID), zap.String("kind", string(room.Kind)))
	return &room, nil
}

// Update modifies an existing room.
func (s *RoomService) Update(ctx context.Context, id string, req UpdateRoomRequest) (*models.Room, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid room payload")
	}

	kind := models.RoomKind(req.Kind)
	if !kind.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown room kind %q", req.Kind))
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "room not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load room")
	}

	taken, err := s.repo.ExistsByName(ctx, req.Name, existing.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check room name")
	}
	if taken {
		return nil, appErrors.Clone(appErrors.ErrDuplicateName, "room name already in use")
	}

	updated := models.Room{
		ID:           existing.ID,
		Name:         req.Name,
		Kind:         kind,
		Capacity:     req.Capacity,
		HasProjector: req.HasProjector || kind.RequiresProjector(),
		Availability: existing.Availability,
		CreatedAt:    existing.CreatedAt,
	}

	if err := s.repo.Update(ctx, &updated); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update room")
	}
	return &updated, nil
}

// Delete removes a room. Only free rooms may be deleted.
func (s *RoomService) Delete(ctx context.Context, id string) error {
	room, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "room not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load room")
	}

	if room.Availability != models.RoomFree {
		return appErrors.Clone(appErrors.ErrRoomBusy, fmt.Sprintf("room is %s", string(room.Availability)))
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete room")
	}
	s.logger.Info("room deleted", zap.String("room_id", id))
	return nil
}

// SetMaintenance flips availability to Maintenance or back to Free. Any
// state can be force-set; callers own the consequences of overwriting an
// Occupied room.
func (s *RoomService) SetMaintenance(ctx context.Context, id string, on bool) (*models.Room, error) {
	target := models.RoomMaintenance
	if !on {
		target = models.RoomFree
	}
	return s.setAvailability(ctx, id, target)
}

// SetOccupied flips availability to Occupied or back to Free.
func (s *RoomService) SetOccupied(ctx context.Context, id string, on bool) (*models.Room, error) {
	target := models.RoomOccupied
	if !on {
		target = models.RoomFree
	}
	return s.setAvailability(ctx, id, target)
}

func (s *RoomService) setAvailability(ctx context.Context, id string, target models.RoomAvailability) (*models.Room, error) {
	room, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "room not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load room")
	}

	if err := s.repo.UpdateAvailability(ctx, id, target); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update room availability")
	}
	room.Availability = target
	return room, nil
}

// ByKind returns rooms of one kind.
func (s *RoomService) ByKind(ctx context.Context, kind models.RoomKind) ([]models.Room, error) {
	if !kind.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown room kind %q", string(kind)))
	}
	rooms, err := s.repo.ListByKind(ctx, kind)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list rooms by kind")
	}
	return rooms, nil
}

// BySubKind returns physical rooms of one subtype. Virtual is not a
// physical subtype and is rejected.
func (s *RoomService) BySubKind(ctx context.Context, kind models.RoomKind) ([]models.Room, error) {
	if !kind.Physical() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%q is not a physical room subtype", string(kind)))
	}
	rooms, err := s.repo.ListByKind(ctx, kind)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list rooms by subtype")
	}
	return rooms, nil
}

// Available returns rooms currently free.
func (s *RoomService) Available(ctx context.Context) ([]models.Room, error) {
	rooms, err := s.repo.ListAvailable(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list available rooms")
	}
	return rooms, nil
}
