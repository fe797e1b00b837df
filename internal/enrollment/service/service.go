// Package service coordinates the enrollment ledger, the user course-index
// and the catalog. It is the only writer that touches both the ledger and
// the index, and it never does so atomically: the ledger is the source of
// truth and the index is repaired by ReconcileCourseIndex.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	catalogmodels "lms/internal/catalog/models"
	"lms/internal/enrollment/metrics"
	"lms/internal/enrollment/models"
	"lms/internal/policy"
	usermodels "lms/internal/users/models"
	"lms/pkg/attrs"
	id "lms/pkg/domain"
	dErrors "lms/pkg/domain-errors"
	audit "lms/pkg/platform/audit"
	"lms/pkg/platform/sentinel"
	"lms/pkg/requestcontext"
)

const (
	tracerName    = "lms/internal/enrollment/service"
	defaultFanout = 8
)

// EnrollmentStore is the ledger port.
type EnrollmentStore interface {
	Exists(ctx context.Context, userID id.UserID, courseID id.CourseID) (bool, error)
	Create(ctx context.Context, enrollment *models.Enrollment) error
	FindByUserAndCourse(ctx context.Context, userID id.UserID, courseID id.CourseID) (*models.Enrollment, error)
	// ListByUser returns the user's enrollments in no guaranteed order.
	ListByUser(ctx context.Context, userID id.UserID) ([]*models.Enrollment, error)
	UpdateProgress(ctx context.Context, enrollmentID id.EnrollmentID, progress int, now time.Time) (*models.Enrollment, error)
}

// UserIndex resolves callers and owns the denormalized enrolled-course set.
type UserIndex interface {
	FindByID(ctx context.Context, userID id.UserID) (*usermodels.User, error)
	AddCourseReference(ctx context.Context, userID id.UserID, courseID id.CourseID, now time.Time) error
}

// CourseLookup is the keyed catalog read used for existence checks and the
// enrolled-courses join.
type CourseLookup interface {
	FindByID(ctx context.Context, courseID id.CourseID) (*catalogmodels.Course, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Caller is the authenticated identity behind a request.
type Caller struct {
	UserID id.UserID
	Role   id.Role
}

// CallerFromContext reads the identity stored by the auth middleware.
func CallerFromContext(ctx context.Context) Caller {
	return Caller{UserID: requestcontext.UserID(ctx), Role: requestcontext.Role(ctx)}
}

// Service implements enroll, progress and the enrolled-courses read path.
type Service struct {
	enrollments    EnrollmentStore
	users          UserIndex
	courses        CourseLookup
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
	tracer         trace.Tracer
	fanout         int
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

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithFanout bounds concurrent catalog lookups in ListEnrolledCourses.
func WithFanout(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.fanout = n
		}
	}
}

func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Service) {
		if tp != nil {
			s.tracer = tp.Tracer(tracerName)
		}
	}
}

func New(enrollments EnrollmentStore, users UserIndex, courses CourseLookup, opts ...Option) *Service {
	s := &Service{
		enrollments: enrollments,
		users:       users,
		courses:     courses,
		logger:      slog.Default(),
		tracer:      otel.Tracer(tracerName),
		fanout:      defaultFanout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// resolveCaller loads the stored user behind the token and checks the
// action against the stored role.
func (s *Service) resolveCaller(ctx context.Context, caller Caller, action policy.Action) (*usermodels.User, error) {
	if caller.UserID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	user, err := s.users.FindByID(ctx, caller.UserID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "User not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	if err := policy.Authorize(user.Role, action); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) startSpan(ctx context.Context, name string, kv ...attribute.KeyValue) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "enrollment."+name, trace.WithAttributes(kv...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
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
	userID, _ := id.ParseUserID(attrs.ExtractString(attributes, "user_id"))
	if err := s.auditPublisher.Emit(ctx, audit.Event{
		UserID:    userID,
		Subject:   attrs.ExtractString(attributes, "course_id"),
		Action:    string(event),
		Reason:    attrs.ExtractString(attributes, "reason"),
		RequestID: requestcontext.RequestID(ctx),
		ActorID:   attrs.ExtractString(attributes, "actor_id"),
		IP:        requestcontext.ClientIP(ctx),
		Timestamp: requestcontext.Now(ctx),
	}); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"event", string(event),
			"error", err,
		)
	}
}
