package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/univpanel/scheduling-api/internal/models"
	appErrors "github.com/univpanel/scheduling-api/pkg/errors"
)

type subjectRepoStub struct {
	subjects map[string]*models.Subject
}

func (s *subjectRepoStub) List(ctx context.Context, filter models.SubjectFilter) ([]models.Subject, int, error) {
	var out []models.Subject
	for _, subject := range s.subjects {
		out = append(out, *subject)
	}
	return out, len(out), nil
}

func (s *subjectRepoStub) FindByID(ctx context.Context, id string) (*models.Subject, error) {
	subject, ok := s.subjects[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *subject
	return &copied, nil
}

func (s *subjectRepoStub) Create(ctx context.Context, subject *models.Subject) error {
	if subject.ID == "" {
		subject.ID = "sub-" + subject.Code
	}
	copied := *subject
	s.subjects[subject.ID] = &copied
	return nil
}

func TestSubjectServiceCreate(t *testing.T) {
	repo := &subjectRepoStub{subjects: map[string]*models.Subject{}}
	svc := NewSubjectService(repo, nil, zap.NewNop())

	subject, err := svc.Create(context.Background(), CreateSubjectRequest{Code: "MATH1", Name: "Calculus"})
	require.NoError(t, err)
	assert.NotEmpty(t, subject.ID)
	assert.Contains(t, repo.subjects, subject.ID)
}

func TestSubjectServiceCreateShortCode(t *testing.T) {
	repo := &subjectRepoStub{subjects: map[string]*models.Subject{}}
	svc := NewSubjectService(repo, nil, zap.NewNop())

	_, err := svc.Create(context.Background(), CreateSubjectRequest{Code: "M", Name: "Calculus"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestSubjectServiceGetUnknown(t *testing.T) {
	repo := &subjectRepoStub{subjects: map[string]*models.Subject{}}
	svc := NewSubjectService(repo, nil, zap.NewNop())

	_, err := svc.Get(context.Background(), "ghost")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
