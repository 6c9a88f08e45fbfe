package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/univpanel/scheduling-api/internal/models"
	"github.com/univpanel/scheduling-api/internal/service"
	"github.com/univpanel/scheduling-api/pkg/response"
)

type roomStoreMock struct {
	rooms map[string]*models.Room
}

func newRoomStoreMock(rooms ...*models.Room) *roomStoreMock {
	mock := &roomStoreMock{rooms: map[string]*models.Room{}}
	for _, room := range rooms {
		mock.rooms[room.ID] = room
	}
	return mock
}

func (m *roomStoreMock) List(ctx context.Context, filter models.RoomFilter) ([]models.Room, int, error) {
	var out []models.Room
	for _, room := range m.rooms {
		out = append(out, *room)
	}
	return out, len(out), nil
}

func (m *roomStoreMock) FindByID(ctx context.Context, id string) (*models.Room, error) {
	room, ok := m.rooms[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *room
	return &copied, nil
}

func (m *roomStoreMock) ExistsByID(ctx context.Context, id string) (bool, error) {
	_, ok := m.rooms[id]
	return ok, nil
}

func (m *roomStoreMock) ExistsByName(ctx context.Context, name, excludeID string) (bool, error) {
	for _, room := range m.rooms {
		if room.ID != excludeID && strings.EqualFold(room.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

func (m *roomStoreMock) ListByKind(ctx context.Context, kind models.RoomKind) ([]models.Room, error) {
	var out []models.Room
	for _, room := range m.rooms {
		if room.Kind == kind {
			out = append(out, *room)
		}
	}
	return out, nil
}

func (m *roomStoreMock) ListAvailable(ctx context.Context) ([]models.Room, error) {
	var out []models.Room
	for _, room := range m.rooms {
		if room.Availability == models.RoomFree {
			out = append(out, *room)
		}
	}
	return out, nil
}

func (m *roomStoreMock) Create(ctx context.Context, room *models.Room) error {
	if room.ID == "" {
		room.ID = "generated"
	}
	copied := *room
	m.rooms[room.ID] = &copied
	return nil
}

func (m *roomStoreMock) Update(ctx context.Context, room *models.Room) error {
	if _, ok := m.rooms[room.ID]; !ok {
		return sql.ErrNoRows
	}
	copied := *room
	m.rooms[room.ID] = &copied
	return nil
}

func (m *roomStoreMock) UpdateAvailability(ctx context.Context, id string, availability models.RoomAvailability) error {
	room, ok := m.rooms[id]
	if !ok {
		return sql.ErrNoRows
	}
	room.Availability = availability
	return nil
}

func (m *roomStoreMock) Delete(ctx context.Context, id string) error {
	if _, ok := m.rooms[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.rooms, id)
	return nil
}

func newRoomHandlerForTest(rooms ...*models.Room) (*RoomHandler, *roomStoreMock) {
	store := newRoomStoreMock(rooms...)
	return NewRoomHandler(service.NewRoomService(store, nil, zap.NewNop())), store
}

func TestRoomHandlerCreate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, store := newRoomHandlerForTest()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body, _ := json.Marshal(service.CreateRoomRequest{
		ID:       "101",
		Name:     "Room 101",
		Kind:     "CLASSROOM",
		Capacity: 30,
	})
	req, _ := http.NewRequest(http.MethodPost, "/rooms", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Create(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, store.rooms, "101")
}

func TestRoomHandlerCreateDuplicateName(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _ := newRoomHandlerForTest(&models.Room{ID: "101", Name: "Room 101", Kind: models.RoomClassroom, Availability: models.RoomFree})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body, _ := json.Marshal(service.CreateRoomRequest{
		Name:     "room 101",
		Kind:     "CLASSROOM",
		Capacity: 30,
	})
	req, _ := http.NewRequest(http.MethodPost, "/rooms", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Create(c)
	require.Equal(t, http.StatusConflict, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "DUPLICATE_NAME", envelope.Error.Code)
}

func TestRoomHandlerGetNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _ := newRoomHandlerForTest()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/rooms/ghost", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "ghost"}}

	handler.Get(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRoomHandlerDeleteBusy(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, store := newRoomHandlerForTest(&models.Room{ID: "101", Name: "Room 101", Kind: models.RoomClassroom, Availability: models.RoomOccupied})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodDelete, "/rooms/101", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "101"}}

	handler.Delete(c)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, store.rooms, "101")
}

func TestRoomHandlerSetMaintenance(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, store := newRoomHandlerForTest(&models.Room{ID: "101", Name: "Room 101", Kind: models.RoomClassroom, Availability: models.RoomFree})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPatch, "/rooms/101/maintenance", bytes.NewReader([]byte(`{"on":true}`)))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "101"}}

	handler.SetMaintenance(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.RoomMaintenance, store.rooms["101"].Availability)
}
