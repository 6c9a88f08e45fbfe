package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/univpanel/scheduling-api/internal/models"
	appErrors "github.com/univpanel/scheduling-api/pkg/errors"
)

type accountRepoStub struct {
	accounts map[string]*models.Account
	audits   []models.AuditLog
	auditErr error
}

func newAccountRepoStub(accounts ...*models.Account) *accountRepoStub {
	stub := &accountRepoStub{accounts: map[string]*models.Account{}}
	for _, account := range accounts {
		stub.accounts[account.ID] = account
	}
	return stub
}

func (s *accountRepoStub) List(ctx context.Context, filter models.AccountFilter) ([]models.Account, int, error) {
	var out []models.Account
	for _, account := range s.accounts {
		if filter.Role != nil && account.Role != *filter.Role {
			continue
		}
		out = append(out, *account)
	}
	return out, len(out), nil
}

func (s *accountRepoStub) FindByID(ctx context.Context, id string) (*models.Account, error) {
	account, ok := s.accounts[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *account
	return &copied, nil
}

func (s *accountRepoStub) FindByUsername(ctx context.Context, username string) (*models.Account, error) {
	for _, account := range s.accounts {
		if strings.EqualFold(account.Username, username) {
			copied := *account
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *accountRepoStub) CountByRole(ctx context.Context, role models.AccountRole) (int, error) {
	count := 0
	for _, account := range s.accounts {
		if account.Role == role {
			count++
		}
	}
	return count, nil
}

func (s *accountRepoStub) Create(ctx context.Context, account *models.Account) error {
	if account.ID == "" {
		account.ID = "acc-" + account.Username
	}
	copied := *account
	s.accounts[account.ID] = &copied
	return nil
}

func (s *accountRepoStub) Delete(ctx context.Context, id string) error {
	if _, ok := s.accounts[id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.accounts, id)
	return nil
}

func (s *accountRepoStub) CreateAuditLog(ctx context.Context, entry *models.AuditLog) error {
	if s.auditErr != nil {
		return s.auditErr
	}
	s.audits = append(s.audits, *entry)
	return nil
}

func TestAccountServiceCreate(t *testing.T) {
	repo := newAccountRepoStub()
	svc := NewAccountService(repo, nil, zap.NewNop())

	account, err := svc.Create(context.Background(), CreateAccountRequest{
		Username: "jsmith",
		FullName: "Jo Smith",
		Role:     "professor",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleProfessor, account.Role)
	assert.NotEmpty(t, account.ID)
}

func TestAccountServiceCreateDuplicateUsername(t *testing.T) {
	repo := newAccountRepoStub(&models.Account{ID: "a1", Username: "jsmith", Role: models.RoleProfessor})
	svc := NewAccountService(repo, nil, zap.NewNop())

	_, err := svc.Create(context.Background(), CreateAccountRequest{
		Username: "JSmith",
		FullName: "Other Smith",
		Role:     "STUDENT",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrDuplicateName.Code, appErrors.FromError(err).Code)
}

func TestAccountServiceCreateUnknownRole(t *testing.T) {
	repo := newAccountRepoStub()
	svc := NewAccountService(repo, nil, zap.NewNop())

	_, err := svc.Create(context.Background(), CreateAccountRequest{
		Username: "jsmith",
		FullName: "Jo Smith",
		Role:     "JANITOR",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAccountServiceCreateShortUsername(t *testing.T) {
	repo := newAccountRepoStub()
	svc := NewAccountService(repo, nil, zap.NewNop())

	_, err := svc.Create(context.Background(), CreateAccountRequest{
		Username: "jo",
		FullName: "Jo Smith",
		Role:     "STUDENT",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAccountServiceDeleteLastAdmin(t *testing.T) {
	repo := newAccountRepoStub(&models.Account{ID: "a1", Username: "boss", Role: models.RoleAdmin})
	svc := NewAccountService(repo, nil, zap.NewNop())

	err := svc.Delete(context.Background(), "a1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrLastAdmin.Code, appErrors.FromError(err).Code)
	assert.Contains(t, repo.accounts, "a1")
}

func TestAccountServiceDeleteAdminWithPeer(t *testing.T) {
	repo := newAccountRepoStub(
		&models.Account{ID: "a1", Username: "boss", Role: models.RoleAdmin},
		&models.Account{ID: "a2", Username: "chief", Role: models.RoleAdmin},
	)
	svc := NewAccountService(repo, nil, zap.NewNop())

	require.NoError(t, svc.Delete(context.Background(), "a1"))
	assert.NotContains(t, repo.accounts, "a1")
}

func TestAccountServiceDeleteUnknown(t *testing.T) {
	repo := newAccountRepoStub()
	svc := NewAccountService(repo, nil, zap.NewNop())

	err := svc.Delete(context.Background(), "ghost")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestAccountServiceRecordAuditNeverFails(t *testing.T) {
	repo := newAccountRepoStub()
	repo.auditErr = sql.ErrConnDone
	svc := NewAccountService(repo, nil, zap.NewNop())

	// Must not panic or surface the error.
	svc.RecordAudit(context.Background(), models.AuditLog{Action: models.AuditActionRoomWrite, Resource: "rooms"})
	assert.Empty(t, repo.audits)
}
