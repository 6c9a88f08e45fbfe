package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/univpanel/scheduling-api/internal/models"
	"github.com/univpanel/scheduling-api/internal/service"
	"github.com/univpanel/scheduling-api/pkg/response"
)

type substituteStoreMock struct {
	subs   []models.Substitute
	nextID int
}

func (m *substituteStoreMock) ListAll(ctx context.Context) ([]models.Substitute, error) {
	return m.subs, nil
}

func (m *substituteStoreMock) FindByID(ctx context.Context, id string) (*models.Substitute, error) {
	for i := range m.subs {
		if m.subs[i].ID == id {
			sub := m.subs[i]
			return &sub, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *substituteStoreMock) ListByOriginalTeacher(ctx context.Context, teacherID string) ([]models.Substitute, error) {
	var out []models.Substitute
	for _, sub := range m.subs {
		if sub.OriginalTeacherID == teacherID {
			out = append(out, sub)
		}
	}
	return out, nil
}

func (m *substituteStoreMock) ListActiveFlagged(ctx context.Context) ([]models.Substitute, error) {
	var out []models.Substitute
	for _, sub := range m.subs {
		if sub.Active {
			out = append(out, sub)
		}
	}
	return out, nil
}

func (m *substituteStoreMock) Create(ctx context.Context, sub *models.Substitute) error {
	m.nextID++
	sub.ID = "sub-" + string(rune('0'+m.nextID))
	m.subs = append(m.subs, *sub)
	return nil
}

func (m *substituteStoreMock) MarkCompleted(ctx context.Context, id string, endDate time.Time) error {
	for i := range m.subs {
		if m.subs[i].ID == id {
			m.subs[i].Active = false
			end := endDate
			m.subs[i].EndDate = &end
			return nil
		}
	}
	return sql.ErrNoRows
}

func (m *substituteStoreMock) Reactivate(ctx context.Context, id string, endDate *time.Time) error {
	for i := range m.subs {
		if m.subs[i].ID == id {
			m.subs[i].Active = true
			m.subs[i].EndDate = endDate
			return nil
		}
	}
	return sql.ErrNoRows
}

func (m *substituteStoreMock) Delete(ctx context.Context, id string) error {
	for i := range m.subs {
		if m.subs[i].ID == id {
			m.subs = append(m.subs[:i], m.subs[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

type accountStoreMock struct {
	accounts map[string]*models.Account
}

func (m *accountStoreMock) FindByID(ctx context.Context, id string) (*models.Account, error) {
	account, ok := m.accounts[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *account
	return &copied, nil
}

func (m *accountStoreMock) UpdateRole(ctx context.Context, id string, role models.AccountRole) error {
	account, ok := m.accounts[id]
	if !ok {
		return sql.ErrNoRows
	}
	account.Role = role
	return nil
}

func newSubstitutionHandlerForTest() (*SubstitutionHandler, *accountStoreMock) {
	accounts := &accountStoreMock{accounts: map[string]*models.Account{
		"prof-1": {ID: "prof-1", Username: "prof", Role: models.RoleProfessor},
		"prof-2": {ID: "prof-2", Username: "cover", Role: models.RoleProfessor},
	}}
	svc := service.NewSubstitutionService(&substituteStoreMock{}, accounts, nil, nil, zap.NewNop())
	return NewSubstitutionHandler(svc), accounts
}

func TestSubstitutionHandlerPromote(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, accounts := newSubstitutionHandlerForTest()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body, _ := json.Marshal(service.PromoteRequest{
		ProfessorID:  "prof-1",
		SubstituteID: "prof-2",
		StartDate:    "2026-03-02",
	})
	req, _ := http.NewRequest(http.MethodPost, "/substitutions/promote", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Promote(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, models.RoleAdmin, accounts.accounts["prof-1"].Role)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Nil(t, envelope.Error)
	assert.NotNil(t, envelope.Data)
}

func TestSubstitutionHandlerPromoteInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _ := newSubstitutionHandlerForTest()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/substitutions/promote", bytes.NewReader([]byte(`invalid`)))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Promote(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubstitutionHandlerPromoteWrongRole(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, accounts := newSubstitutionHandlerForTest()
	accounts.accounts["prof-1"].Role = models.RoleStudent

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body, _ := json.Marshal(service.PromoteRequest{
		ProfessorID:  "prof-1",
		SubstituteID: "prof-2",
		StartDate:    "2026-03-02",
	})
	req, _ := http.NewRequest(http.MethodPost, "/substitutions/promote", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Promote(c)
	require.Equal(t, http.StatusConflict, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "ROLE_ERROR", envelope.Error.Code)
}

func TestSubstitutionHandlerRevertWithoutRecord(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, accounts := newSubstitutionHandlerForTest()
	accounts.accounts["prof-1"].Role = models.RoleAdmin

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/substitutions/revert/prof-1", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "accountId", Value: "prof-1"}}

	handler.Revert(c)
	require.Equal(t, http.StatusConflict, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "NO_SUBSTITUTE_ASSIGNED", envelope.Error.Code)
}

func TestSubstitutionHandlerGetUnknown(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _ := newSubstitutionHandlerForTest()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/substitutions/missing", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "missing"}}

	handler.Get(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
