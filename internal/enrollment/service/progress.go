package service

import (
	"context"
	"errors"
	"strconv"

	"go.opentelemetry.io/otel/attribute"

	"lms/internal/enrollment/models"
	"lms/internal/policy"
	id "lms/pkg/domain"
	dErrors "lms/pkg/domain-errors"
	audit "lms/pkg/platform/audit"
	"lms/pkg/platform/sentinel"
	"lms/pkg/requestcontext"
)

var errInvalidProgress = dErrors.New(dErrors.CodeInvalidProgress, "Progress must be between 0 and 100")

// UpdateProgress overwrites the caller's progress on a course. Last write
// wins; values are neither clamped nor required to increase.
func (s *Service) UpdateProgress(ctx context.Context, caller Caller, courseID id.CourseID, progress int) (_ *models.Enrollment, err error) {
	ctx, span := s.startSpan(ctx, "UpdateProgress",
		attribute.String("user.id", caller.UserID.String()),
		attribute.String("course.id", courseID.String()),
		attribute.Int("progress", progress),
	)
	defer func() { endSpan(span, err) }()

	user, err := s.resolveCaller(ctx, caller, policy.ActionUpdateProgress)
	if err != nil {
		return nil, err
	}
	if !models.ValidProgress(progress) {
		return nil, errInvalidProgress
	}

	enrollment, err := s.findEnrollment(ctx, user.ID, courseID)
	if err != nil {
		return nil, err
	}

	updated, err := s.enrollments.UpdateProgress(ctx, enrollment.ID, progress, requestcontext.Now(ctx))
	if err != nil {
		switch {
		case errors.Is(err, sentinel.ErrInvalidState):
			return nil, errInvalidProgress
		case errors.Is(err, sentinel.ErrNotFound):
			return nil, dErrors.New(dErrors.CodeNotEnrolled, "Not enrolled in this course")
		default:
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update progress")
		}
	}
	s.metrics.IncrementProgressUpdate()
	s.logAudit(ctx, audit.EventProgressUpdated,
		"user_id", user.ID.String(),
		"course_id", courseID.String(),
		"progress", strconv.Itoa(progress),
	)
	return updated, nil
}

// GetEnrollment returns the caller's enrollment in a course.
func (s *Service) GetEnrollment(ctx context.Context, caller Caller, courseID id.CourseID) (_ *models.Enrollment, err error) {
	ctx, span := s.startSpan(ctx, "GetEnrollment",
		attribute.String("user.id", caller.UserID.String()),
		attribute.String("course.id", courseID.String()),
	)
	defer func() { endSpan(span, err) }()

	user, err := s.resolveCaller(ctx, caller, policy.ActionViewEnrollment)
	if err != nil {
		return nil, err
	}
	return s.findEnrollment(ctx, user.ID, courseID)
}

func (s *Service) findEnrollment(ctx context.Context, userID id.UserID, courseID id.CourseID) (*models.Enrollment, error) {
	enrollment, err := s.enrollments.FindByUserAndCourse(ctx, userID, courseID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotEnrolled, "Not enrolled in this course")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load enrollment")
	}
	return enrollment, nil
}
