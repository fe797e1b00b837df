// Package store persists users and their course index.
package store

import (
	"context"
	"sync"
	"time"

	"lms/internal/users/models"
	id "lms/pkg/domain"
	"lms/pkg/email"
	"lms/pkg/platform/sentinel"
	lmsstrings "lms/pkg/platform/strings"
)

// InMemoryUserStore is a mutex-guarded user store for development and tests.
// Every method copies records in and out.
type InMemoryUserStore struct {
	mu      sync.RWMutex
	users   map[id.UserID]*models.User
	byEmail map[string]id.UserID
}

func NewInMemory() *InMemoryUserStore {
	return &InMemoryUserStore{
		users:   make(map[id.UserID]*models.User),
		byEmail: make(map[string]id.UserID),
	}
}

// Save inserts a new user. An email already taken by another user yields
// sentinel.ErrAlreadyUsed.
func (s *InMemoryUserStore) Save(_ context.Context, user *models.User) error {
	key := email.Normalize(user.Email)

	s.mu.Lock()
	defer s.mu.Unlock()
	if owner, ok := s.byEmail[key]; ok && owner != user.ID {
		return sentinel.ErrAlreadyUsed
	}
	s.users[user.ID] = user.Clone()
	s.byEmail[key] = user.ID
	return nil
}

func (s *InMemoryUserStore) FindByID(_ context.Context, userID id.UserID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return u.Clone(), nil
}

func (s *InMemoryUserStore) FindByEmail(_ context.Context, address string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	userID, ok := s.byEmail[email.Normalize(address)]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return s.users[userID].Clone(), nil
}

// AddCourseReference appends courseID to the user's index. Adding a reference
// that is already present is a no-op.
func (s *InMemoryUserStore) AddCourseReference(_ context.Context, userID id.UserID, courseID id.CourseID, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return sentinel.ErrNotFound
	}
	refs, changed := lmsstrings.AppendUnique(u.EnrolledCourses, courseID.String())
	if changed {
		u.EnrolledCourses = refs
		u.UpdatedAt = now
	}
	return nil
}
