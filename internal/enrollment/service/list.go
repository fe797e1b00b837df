package service

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	catalogmodels "lms/internal/catalog/models"
	"lms/internal/policy"
	dErrors "lms/pkg/domain-errors"
	"lms/pkg/platform/sentinel"
	"lms/pkg/requestcontext"
)

// ListEnrolledCourses joins the caller's ledger entries against the catalog.
// Lookups run concurrently, bounded by the configured fan-out, and results
// keep ledger order. Enrollments whose course is gone are skipped and logged;
// any other catalog failure fails the whole call.
func (s *Service) ListEnrolledCourses(ctx context.Context, caller Caller) (_ []*catalogmodels.Course, err error) {
	ctx, span := s.startSpan(ctx, "ListEnrolledCourses",
		attribute.String("user.id", caller.UserID.String()),
	)
	defer func() { endSpan(span, err) }()
	defer s.metrics.ObserveListEnrolled(time.Now())

	user, err := s.resolveCaller(ctx, caller, policy.ActionListEnrollments)
	if err != nil {
		return nil, err
	}

	enrollments, err := s.enrollments.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list enrollments")
	}
	span.SetAttributes(attribute.Int("enrollments.count", len(enrollments)))

	found := make([]*catalogmodels.Course, len(enrollments))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.fanout)
	for i, enrollment := range enrollments {
		g.Go(func() error {
			course, err := s.courses.FindByID(gctx, enrollment.CourseID)
			if err != nil {
				if errors.Is(err, sentinel.ErrNotFound) {
					s.metrics.IncrementDanglingDropped()
					s.logger.WarnContext(ctx, "dangling course reference",
						"user_id", user.ID.String(),
						"course_id", enrollment.CourseID.String(),
						"enrollment_id", enrollment.ID.String(),
						"request_id", requestcontext.RequestID(ctx),
					)
					return nil
				}
				return err
			}
			found[i] = course
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load enrolled courses")
	}

	courses := make([]*catalogmodels.Course, 0, len(found))
	for _, course := range found {
		if course != nil {
			courses = append(courses, course)
		}
	}
	return courses, nil
}
