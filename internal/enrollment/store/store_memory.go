// Package store persists the enrollment ledger.
package store

import (
	"context"
	"sync"
	"time"

	"lms/internal/enrollment/models"
	id "lms/pkg/domain"
	"lms/pkg/platform/sentinel"
)

// InMemoryEnrollmentStore keeps enrollments under a single lock. The
// compound-key index enforces one enrollment per (user, course).
type InMemoryEnrollmentStore struct {
	mu     sync.RWMutex
	byID   map[id.EnrollmentID]*models.Enrollment
	byKey  map[models.Key]id.EnrollmentID
	byUser map[id.UserID][]id.EnrollmentID
}

func NewInMemory() *InMemoryEnrollmentStore {
	return &InMemoryEnrollmentStore{
		byID:   make(map[id.EnrollmentID]*models.Enrollment),
		byKey:  make(map[models.Key]id.EnrollmentID),
		byUser: make(map[id.UserID][]id.EnrollmentID),
	}
}

func (s *InMemoryEnrollmentStore) Exists(_ context.Context, userID id.UserID, courseID id.CourseID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byKey[models.Key{UserID: userID, CourseID: courseID}]
	return ok, nil
}

// Create inserts e, or returns sentinel.ErrAlreadyUsed when the pair is taken.
func (s *InMemoryEnrollmentStore) Create(_ context.Context, e *models.Enrollment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byKey[e.Key()]; ok {
		return sentinel.ErrAlreadyUsed
	}
	if _, ok := s.byID[e.ID]; ok {
		return sentinel.ErrAlreadyUsed
	}
	stored := *e
	s.byID[e.ID] = &stored
	s.byKey[e.Key()] = e.ID
	s.byUser[e.UserID] = append(s.byUser[e.UserID], e.ID)
	return nil
}

func (s *InMemoryEnrollmentStore) FindByUserAndCourse(_ context.Context, userID id.UserID, courseID id.CourseID) (*models.Enrollment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	enrollmentID, ok := s.byKey[models.Key{UserID: userID, CourseID: courseID}]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	found := *s.byID[enrollmentID]
	return &found, nil
}

// ListByUser returns the user's enrollments. The order is an implementation
// detail; callers must not rely on it.
func (s *InMemoryEnrollmentStore) ListByUser(_ context.Context, userID id.UserID) ([]*models.Enrollment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.byUser[userID]
	out := make([]*models.Enrollment, 0, len(ids))
	for _, enrollmentID := range ids {
		e := *s.byID[enrollmentID]
		out = append(out, &e)
	}
	return out, nil
}

// UpdateProgress overwrites progress on one enrollment under the store lock.
func (s *InMemoryEnrollmentStore) UpdateProgress(_ context.Context, enrollmentID id.EnrollmentID, progress int, now time.Time) (*models.Enrollment, error) {
	if !models.ValidProgress(progress) {
		return nil, sentinel.ErrInvalidState
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.byID[enrollmentID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	e.SetProgress(progress, now)
	updated := *e
	return &updated, nil
}
