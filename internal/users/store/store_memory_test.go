package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"lms/internal/users/models"
	id "lms/pkg/domain"
	"lms/pkg/platform/sentinel"
)

type InMemoryUserStoreSuite struct {
	suite.Suite
	store *InMemoryUserStore
	ctx   context.Context
}

func TestInMemoryUserStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryUserStoreSuite))
}

func (s *InMemoryUserStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func newStudent(address string) *models.User {
	now := time.Now().UTC()
	return &models.User{
		ID:              id.NewUserID(),
		Name:            "Student",
		Email:           address,
		PasswordHash:    "hash",
		Role:            id.RoleStudent,
		EnrolledCourses: []string{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func (s *InMemoryUserStoreSuite) TestLookupBehavior() {
	user := newStudent("jane.doe@example.com")
	s.Require().NoError(s.store.Save(s.ctx, user))

	s.Run("returns user by ID when exists", func() {
		found, err := s.store.FindByID(s.ctx, user.ID)
		s.Require().NoError(err)
		s.Equal(user, found)
	})

	s.Run("returns user by email regardless of case", func() {
		found, err := s.store.FindByEmail(s.ctx, "Jane.Doe@EXAMPLE.com")
		s.Require().NoError(err)
		s.Equal(user.ID, found.ID)
	})

	s.Run("returns ErrNotFound when user ID does not exist", func() {
		_, err := s.store.FindByID(s.ctx, id.NewUserID())
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("returns ErrNotFound when email does not exist", func() {
		_, err := s.store.FindByEmail(s.ctx, "missing@example.com")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *InMemoryUserStoreSuite) TestEmailUniqueness() {
	s.Require().NoError(s.store.Save(s.ctx, newStudent("dup@example.com")))

	err := s.store.Save(s.ctx, newStudent("DUP@example.com"))
	s.ErrorIs(err, sentinel.ErrAlreadyUsed)
}

func (s *InMemoryUserStoreSuite) TestAddCourseReference() {
	user := newStudent("index@example.com")
	s.Require().NoError(s.store.Save(s.ctx, user))
	courseID := id.NewCourseID()

	s.Run("adds a reference", func() {
		s.Require().NoError(s.store.AddCourseReference(s.ctx, user.ID, courseID, time.Now()))
		found, err := s.store.FindByID(s.ctx, user.ID)
		s.Require().NoError(err)
		s.True(found.HasCourseReference(courseID))
	})

	s.Run("is idempotent", func() {
		s.Require().NoError(s.store.AddCourseReference(s.ctx, user.ID, courseID, time.Now()))
		s.Require().NoError(s.store.AddCourseReference(s.ctx, user.ID, courseID, time.Now()))
		found, err := s.store.FindByID(s.ctx, user.ID)
		s.Require().NoError(err)
		s.Equal([]string{courseID.String()}, found.EnrolledCourses)
	})

	s.Run("unknown user is ErrNotFound", func() {
		err := s.store.AddCourseReference(s.ctx, id.NewUserID(), courseID, time.Now())
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *InMemoryUserStoreSuite) TestConcurrentAddCourseReference() {
	user := newStudent("race@example.com")
	s.Require().NoError(s.store.Save(s.ctx, user))
	courseID := id.NewCourseID()

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.store.AddCourseReference(s.ctx, user.ID, courseID, time.Now())
		}()
	}
	wg.Wait()

	found, err := s.store.FindByID(s.ctx, user.ID)
	s.Require().NoError(err)
	s.Len(found.EnrolledCourses, 1)
}

func (s *InMemoryUserStoreSuite) TestReturnedRecordsAreCopies() {
	user := newStudent("copy@example.com")
	s.Require().NoError(s.store.Save(s.ctx, user))

	found, err := s.store.FindByID(s.ctx, user.ID)
	s.Require().NoError(err)
	found.EnrolledCourses = append(found.EnrolledCourses, "tampered")

	again, err := s.store.FindByID(s.ctx, user.ID)
	s.Require().NoError(err)
	s.Empty(again.EnrolledCourses)
}
