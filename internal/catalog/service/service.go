// Package service implements catalog browsing and admin course management.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"lms/internal/catalog/models"
	"lms/internal/policy"
	"lms/pkg/attrs"
	id "lms/pkg/domain"
	dErrors "lms/pkg/domain-errors"
	audit "lms/pkg/platform/audit"
	"lms/pkg/platform/sentinel"
	"lms/pkg/requestcontext"
)

// CourseStore is the catalog persistence port.
type CourseStore interface {
	Create(ctx context.Context, course *models.Course) error
	FindByID(ctx context.Context, courseID id.CourseID) (*models.Course, error)
	List(ctx context.Context, filter models.Filter) ([]*models.Course, error)
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, courseID id.CourseID) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service serves the public catalog and admin course management.
type Service struct {
	courses        CourseStore
	logger         *slog.Logger
	auditPublisher AuditPublisher
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func New(courses CourseStore, opts ...Option) *Service {
	s := &Service{courses: courses, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns courses matching the filter. A title filter takes priority
// over a level filter; with neither, every course is returned.
func (s *Service) List(ctx context.Context, filter models.Filter) ([]*models.Course, error) {
	filter.Title = strings.TrimSpace(filter.Title)
	courses, err := s.courses.List(ctx, filter.Effective())
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list courses")
	}
	return courses, nil
}

func (s *Service) Get(ctx context.Context, courseID id.CourseID) (*models.Course, error) {
	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "Course not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load course")
	}
	return course, nil
}

// Create adds a course. Admin only.
func (s *Service) Create(ctx context.Context, details models.Details) (*models.Course, error) {
	if err := policy.Authorize(requestcontext.Role(ctx), policy.ActionManageCatalog); err != nil {
		return nil, err
	}
	course, err := models.NewCourse(id.NewCourseID(), details, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.courses.Create(ctx, course); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create course")
	}
	s.logAudit(ctx, audit.EventCourseCreated,
		"user_id", requestcontext.UserID(ctx).String(),
		"course_id", course.ID.String(),
	)
	return course, nil
}

// Update replaces a course's editable fields. Admin only.
func (s *Service) Update(ctx context.Context, courseID id.CourseID, details models.Details) (*models.Course, error) {
	if err := policy.Authorize(requestcontext.Role(ctx), policy.ActionManageCatalog); err != nil {
		return nil, err
	}
	course, err := s.Get(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if err := course.Update(details, requestcontext.Now(ctx)); err != nil {
		return nil, err
	}
	if err := s.courses.Update(ctx, course); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "Course not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update course")
	}
	s.logAudit(ctx, audit.EventCourseUpdated,
		"user_id", requestcontext.UserID(ctx).String(),
		"course_id", course.ID.String(),
	)
	return course, nil
}

// Delete removes a course. Existing enrollments are left in place; the
// enrolled-courses read path drops them.
func (s *Service) Delete(ctx context.Context, courseID id.CourseID) error {
	if err := policy.Authorize(requestcontext.Role(ctx), policy.ActionManageCatalog); err != nil {
		return err
	}
	if err := s.courses.Delete(ctx, courseID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "Course not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete course")
	}
	s.logAudit(ctx, audit.EventCourseDeleted,
		"user_id", requestcontext.UserID(ctx).String(),
		"course_id", courseID.String(),
	)
	return nil
}

func (s *Service) logAudit(ctx context.Context, event audit.AuditEvent, attributes ...any) {
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		attributes = append(attributes, "request_id", requestID)
	}
	args := append(attributes, "event", string(event), "log_type", "audit")
	if s.logger != nil {
		s.logger.InfoContext(ctx, string(event), args...)
	}
	if s.auditPublisher == nil {
		return
	}
	_ = s.auditPublisher.Emit(ctx, audit.Event{
		UserID:    requestcontext.UserID(ctx),
		Subject:   attrs.ExtractString(attributes, "course_id"),
		Action:    string(event),
		RequestID: requestcontext.RequestID(ctx),
		IP:        requestcontext.ClientIP(ctx),
		Timestamp: requestcontext.Now(ctx),
	})
}
