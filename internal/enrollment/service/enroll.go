package service

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"

	"lms/internal/enrollment/models"
	"lms/internal/policy"
	id "lms/pkg/domain"
	dErrors "lms/pkg/domain-errors"
	audit "lms/pkg/platform/audit"
	"lms/pkg/platform/sentinel"
	"lms/pkg/requestcontext"
)

// EnrollOutcome reports both phases of an enroll. The ledger write always
// succeeded when an outcome is returned; IndexSynced is false when the user
// course-index update failed afterwards, with the cause in IndexErr.
type EnrollOutcome struct {
	Enrollment  *models.Enrollment
	IndexSynced bool
	IndexErr    error
}

// Enroll links the caller to a course.
//
// The ledger's unique key decides concurrent duplicates: the Exists check is
// only a fast path. The index update runs after the ledger write and its
// failure does not fail the call.
func (s *Service) Enroll(ctx context.Context, caller Caller, courseID id.CourseID) (_ *EnrollOutcome, err error) {
	ctx, span := s.startSpan(ctx, "Enroll",
		attribute.String("user.id", caller.UserID.String()),
		attribute.String("course.id", courseID.String()),
	)
	defer func() { endSpan(span, err) }()

	user, err := s.resolveCaller(ctx, caller, policy.ActionEnroll)
	if err != nil {
		return nil, err
	}

	if _, err := s.courses.FindByID(ctx, courseID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeCourseNotFound, "Course not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load course")
	}

	exists, err := s.enrollments.Exists(ctx, user.ID, courseID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check enrollment")
	}
	if exists {
		s.metrics.IncrementConflict("precheck")
		return nil, dErrors.New(dErrors.CodeAlreadyEnrolled, "Already enrolled in this course")
	}

	now := requestcontext.Now(ctx)
	enrollment, err := models.NewEnrollment(id.NewEnrollmentID(), user.ID, courseID, now)
	if err != nil {
		return nil, err
	}
	if err := s.enrollments.Create(ctx, enrollment); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			s.metrics.IncrementConflict("ledger")
			return nil, dErrors.New(dErrors.CodeAlreadyEnrolled, "Already enrolled in this course")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create enrollment")
	}
	s.metrics.IncrementCreated()
	s.logAudit(ctx, audit.EventEnrollmentCreated,
		"user_id", user.ID.String(),
		"course_id", courseID.String(),
		"enrollment_id", enrollment.ID.String(),
	)

	outcome := &EnrollOutcome{Enrollment: enrollment, IndexSynced: true}
	if err := s.users.AddCourseReference(ctx, user.ID, courseID, now); err != nil {
		outcome.IndexSynced = false
		outcome.IndexErr = err
		span.SetAttributes(attribute.Bool("course_index.synced", false))
		s.metrics.IncrementIndexSyncFailure()
		s.logger.WarnContext(ctx, "course index update failed after enrollment",
			"user_id", user.ID.String(),
			"course_id", courseID.String(),
			"enrollment_id", enrollment.ID.String(),
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		s.logAudit(ctx, audit.EventCourseIndexPending,
			"user_id", user.ID.String(),
			"course_id", courseID.String(),
			"reason", err.Error(),
		)
	}
	return outcome, nil
}
