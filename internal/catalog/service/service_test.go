package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"lms/internal/catalog/models"
	"lms/internal/catalog/store"
	id "lms/pkg/domain"
	dErrors "lms/pkg/domain-errors"
	audit "lms/pkg/platform/audit"
	"lms/pkg/platform/audit/publisher"
	auditmemory "lms/pkg/platform/audit/store/memory"
	"lms/pkg/requestcontext"
)

type failingStore struct {
	*store.InMemoryCourseStore
}

func (failingStore) List(context.Context, models.Filter) ([]*models.Course, error) {
	return nil, errors.New("connection reset")
}

type CatalogServiceSuite struct {
	suite.Suite
	store   *store.InMemoryCourseStore
	audit   *auditmemory.InMemoryStore
	service *Service
	admin   context.Context
	student context.Context
	now     time.Time
}

func TestCatalogServiceSuite(t *testing.T) {
	suite.Run(t, new(CatalogServiceSuite))
}

func (s *CatalogServiceSuite) SetupTest() {
	s.store = store.NewInMemory()
	s.audit = auditmemory.NewInMemoryStore()
	s.service = New(s.store,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithAuditPublisher(publisher.NewPublisher(s.audit)),
	)
	s.now = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	base := requestcontext.WithTime(context.Background(), s.now)
	s.admin = requestcontext.WithCaller(base, id.NewUserID(), id.RoleAdmin)
	s.student = requestcontext.WithCaller(base, id.NewUserID(), id.RoleStudent)
}

func details(title string, level models.Level) models.Details {
	return models.Details{Title: title, Level: level, Price: 49.99, Duration: "6 weeks"}
}

func (s *CatalogServiceSuite) TestCreate() {
	s.Run("admin creates a course", func() {
		c, err := s.service.Create(s.admin, details("Go Basics", models.LevelBeginner))
		s.Require().NoError(err)
		s.Equal(s.now, c.CreatedAt)

		found, err := s.service.Get(context.Background(), c.ID)
		s.Require().NoError(err)
		s.Equal("Go Basics", found.Title)
		s.Len(s.audit.ListByAction(context.Background(), audit.EventCourseCreated), 1)
	})

	s.Run("student is forbidden", func() {
		_, err := s.service.Create(s.student, details("Nope", models.LevelBeginner))
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("invalid details are a validation error", func() {
		_, err := s.service.Create(s.admin, details("", models.LevelBeginner))
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *CatalogServiceSuite) TestGetMissing() {
	_, err := s.service.Get(context.Background(), id.NewCourseID())
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *CatalogServiceSuite) TestUpdateAndDelete() {
	c, err := s.service.Create(s.admin, details("Old", models.LevelBeginner))
	s.Require().NoError(err)

	updated, err := s.service.Update(s.admin, c.ID, details("New", models.LevelAdvanced))
	s.Require().NoError(err)
	s.Equal("New", updated.Title)
	s.Equal(models.LevelAdvanced, updated.Level)

	_, err = s.service.Update(s.student, c.ID, details("Hijack", models.LevelAdvanced))
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))

	s.True(dErrors.HasCode(s.service.Delete(s.student, c.ID), dErrors.CodeForbidden))
	s.Require().NoError(s.service.Delete(s.admin, c.ID))
	s.True(dErrors.HasCode(s.service.Delete(s.admin, c.ID), dErrors.CodeNotFound))

	_, err = s.service.Update(s.admin, c.ID, details("Gone", models.LevelBeginner))
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *CatalogServiceSuite) TestListPrecedence() {
	_, err := s.service.Create(s.admin, details("Go Basics", models.LevelBeginner))
	s.Require().NoError(err)
	_, err = s.service.Create(s.admin, details("Advanced Go", models.LevelAdvanced))
	s.Require().NoError(err)

	all, err := s.service.List(context.Background(), models.Filter{})
	s.Require().NoError(err)
	s.Len(all, 2)

	both, err := s.service.List(context.Background(), models.Filter{Title: "  basics ", Level: models.LevelAdvanced})
	s.Require().NoError(err)
	s.Require().Len(both, 1)
	s.Equal("Go Basics", both[0].Title)

	byLevel, err := s.service.List(context.Background(), models.Filter{Level: models.LevelAdvanced})
	s.Require().NoError(err)
	s.Require().Len(byLevel, 1)
	s.Equal("Advanced Go", byLevel[0].Title)
}

func (s *CatalogServiceSuite) TestStorageFailureIsInternal() {
	svc := New(failingStore{store.NewInMemory()})
	_, err := svc.List(context.Background(), models.Filter{})
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}
