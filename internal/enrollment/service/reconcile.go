package service

import (
	"context"
	"errors"
	"strconv"

	"go.opentelemetry.io/otel/attribute"

	"lms/internal/policy"
	id "lms/pkg/domain"
	dErrors "lms/pkg/domain-errors"
	audit "lms/pkg/platform/audit"
	"lms/pkg/platform/sentinel"
	"lms/pkg/requestcontext"
)

// ReconcileCourseIndex replays every ledger enrollment of userID into that
// user's course index and returns how many references were missing. It
// closes the window left by an enroll whose index update failed. Admin only.
func (s *Service) ReconcileCourseIndex(ctx context.Context, caller Caller, userID id.UserID) (_ int, err error) {
	ctx, span := s.startSpan(ctx, "ReconcileCourseIndex",
		attribute.String("caller.id", caller.UserID.String()),
		attribute.String("user.id", userID.String()),
	)
	defer func() { endSpan(span, err) }()

	if _, err := s.resolveCaller(ctx, caller, policy.ActionReconcileIndex); err != nil {
		return 0, err
	}

	target, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return 0, dErrors.New(dErrors.CodeNotFound, "User not found")
		}
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}

	enrollments, err := s.enrollments.ListByUser(ctx, userID)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list enrollments")
	}

	now := requestcontext.Now(ctx)
	added := 0
	for _, enrollment := range enrollments {
		if target.HasCourseReference(enrollment.CourseID) {
			continue
		}
		if err := s.users.AddCourseReference(ctx, userID, enrollment.CourseID, now); err != nil {
			return added, dErrors.Wrap(err, dErrors.CodeInternal, "failed to repair course index")
		}
		added++
	}
	span.SetAttributes(attribute.Int("course_index.added", added))
	s.metrics.AddIndexRepairs(added)

	if added > 0 {
		s.logAudit(ctx, audit.EventCourseIndexRepaired,
			"user_id", userID.String(),
			"actor_id", caller.UserID.String(),
			"added", strconv.Itoa(added),
		)
	}
	return added, nil
}
