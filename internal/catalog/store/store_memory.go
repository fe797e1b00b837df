// Package store persists catalog courses.
package store

import (
	"context"
	"sort"
	"sync"

	"lms/internal/catalog/models"
	id "lms/pkg/domain"
	"lms/pkg/platform/sentinel"
)

// InMemoryCourseStore is a mutex-guarded catalog for development and tests.
type InMemoryCourseStore struct {
	mu      sync.RWMutex
	courses map[id.CourseID]*models.Course
}

func NewInMemory() *InMemoryCourseStore {
	return &InMemoryCourseStore{courses: make(map[id.CourseID]*models.Course)}
}

func (s *InMemoryCourseStore) Create(_ context.Context, course *models.Course) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.courses[course.ID]; ok {
		return sentinel.ErrAlreadyUsed
	}
	c := *course
	s.courses[course.ID] = &c
	return nil
}

func (s *InMemoryCourseStore) FindByID(_ context.Context, courseID id.CourseID) (*models.Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.courses[courseID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	out := *c
	return &out, nil
}

// List returns matching courses, oldest first.
func (s *InMemoryCourseStore) List(_ context.Context, filter models.Filter) ([]*models.Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Course, 0, len(s.courses))
	for _, c := range s.courses {
		if filter.Matches(c) {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *InMemoryCourseStore) Update(_ context.Context, course *models.Course) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.courses[course.ID]; !ok {
		return sentinel.ErrNotFound
	}
	c := *course
	s.courses[course.ID] = &c
	return nil
}

func (s *InMemoryCourseStore) Delete(_ context.Context, courseID id.CourseID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.courses[courseID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.courses, courseID)
	return nil
}
