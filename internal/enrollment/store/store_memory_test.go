package store

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"lms/internal/enrollment/models"
	id "lms/pkg/domain"
	"lms/pkg/platform/sentinel"
)

type InMemoryEnrollmentStoreSuite struct {
	suite.Suite
	store *InMemoryEnrollmentStore
	ctx   context.Context
	now   time.Time
}

func TestInMemoryEnrollmentStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryEnrollmentStoreSuite))
}

func (s *InMemoryEnrollmentStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
	s.now = time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
}

func (s *InMemoryEnrollmentStoreSuite) newEnrollment(userID id.UserID, courseID id.CourseID) *models.Enrollment {
	e, err := models.NewEnrollment(id.NewEnrollmentID(), userID, courseID, s.now)
	s.Require().NoError(err)
	return e
}

func (s *InMemoryEnrollmentStoreSuite) TestCreateAndLookup() {
	userID, courseID := id.NewUserID(), id.NewCourseID()
	e := s.newEnrollment(userID, courseID)

	exists, err := s.store.Exists(s.ctx, userID, courseID)
	s.Require().NoError(err)
	s.False(exists)

	s.Require().NoError(s.store.Create(s.ctx, e))

	exists, err = s.store.Exists(s.ctx, userID, courseID)
	s.Require().NoError(err)
	s.True(exists)

	found, err := s.store.FindByUserAndCourse(s.ctx, userID, courseID)
	s.Require().NoError(err)
	s.Equal(*e, *found)

	_, err = s.store.FindByUserAndCourse(s.ctx, userID, id.NewCourseID())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemoryEnrollmentStoreSuite) TestDuplicatePairIsRejected() {
	userID, courseID := id.NewUserID(), id.NewCourseID()
	s.Require().NoError(s.store.Create(s.ctx, s.newEnrollment(userID, courseID)))

	err := s.store.Create(s.ctx, s.newEnrollment(userID, courseID))
	s.ErrorIs(err, sentinel.ErrAlreadyUsed)

	list, err := s.store.ListByUser(s.ctx, userID)
	s.Require().NoError(err)
	s.Len(list, 1)
}

func (s *InMemoryEnrollmentStoreSuite) TestConcurrentCreateHasOneWinner() {
	userID, courseID := id.NewUserID(), id.NewCourseID()
	const attempts = 32

	var (
		wg        sync.WaitGroup
		wins      atomic.Int32
		conflicts atomic.Int32
		start     = make(chan struct{})
	)
	for range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			err := s.store.Create(s.ctx, s.newEnrollment(userID, courseID))
			switch {
			case err == nil:
				wins.Add(1)
			case errors.Is(err, sentinel.ErrAlreadyUsed):
				conflicts.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	s.Equal(int32(1), wins.Load())
	s.Equal(int32(attempts-1), conflicts.Load())
}

func (s *InMemoryEnrollmentStoreSuite) TestListByUserIsScoped() {
	alice, bob := id.NewUserID(), id.NewUserID()
	first := s.newEnrollment(alice, id.NewCourseID())
	second := s.newEnrollment(alice, id.NewCourseID())
	s.Require().NoError(s.store.Create(s.ctx, first))
	s.Require().NoError(s.store.Create(s.ctx, second))
	s.Require().NoError(s.store.Create(s.ctx, s.newEnrollment(bob, id.NewCourseID())))

	list, err := s.store.ListByUser(s.ctx, alice)
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.ElementsMatch([]id.EnrollmentID{first.ID, second.ID}, []id.EnrollmentID{list[0].ID, list[1].ID})

	empty, err := s.store.ListByUser(s.ctx, id.NewUserID())
	s.Require().NoError(err)
	s.Empty(empty)
}

func (s *InMemoryEnrollmentStoreSuite) TestUpdateProgress() {
	e := s.newEnrollment(id.NewUserID(), id.NewCourseID())
	s.Require().NoError(s.store.Create(s.ctx, e))
	later := s.now.Add(time.Hour)

	s.Run("overwrites progress and refreshes updatedAt", func() {
		updated, err := s.store.UpdateProgress(s.ctx, e.ID, 55, later)
		s.Require().NoError(err)
		s.Equal(55, updated.Progress)
		s.Equal(later, updated.UpdatedAt)
		s.Equal(s.now, updated.EnrolledAt)
	})

	s.Run("lower values are accepted", func() {
		updated, err := s.store.UpdateProgress(s.ctx, e.ID, 10, later)
		s.Require().NoError(err)
		s.Equal(10, updated.Progress)
	})

	s.Run("out of range is invalid state and leaves the record alone", func() {
		_, err := s.store.UpdateProgress(s.ctx, e.ID, 101, later)
		s.ErrorIs(err, sentinel.ErrInvalidState)
		_, err = s.store.UpdateProgress(s.ctx, e.ID, -1, later)
		s.ErrorIs(err, sentinel.ErrInvalidState)

		found, err := s.store.FindByUserAndCourse(s.ctx, e.UserID, e.CourseID)
		s.Require().NoError(err)
		s.Equal(10, found.Progress)
	})

	s.Run("unknown enrollment", func() {
		_, err := s.store.UpdateProgress(s.ctx, id.NewEnrollmentID(), 5, later)
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *InMemoryEnrollmentStoreSuite) TestReturnedRecordsAreCopies() {
	e := s.newEnrollment(id.NewUserID(), id.NewCourseID())
	s.Require().NoError(s.store.Create(s.ctx, e))
	e.Progress = 99

	found, err := s.store.FindByUserAndCourse(s.ctx, e.UserID, e.CourseID)
	s.Require().NoError(err)
	s.Equal(0, found.Progress)
	found.Progress = 77

	again, err := s.store.FindByUserAndCourse(s.ctx, e.UserID, e.CourseID)
	s.Require().NoError(err)
	s.Equal(0, again.Progress)
}
