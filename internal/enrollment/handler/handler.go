// Package handler exposes enrollment and progress over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	catalogmodels "lms/internal/catalog/models"
	"lms/internal/enrollment/models"
	"lms/internal/enrollment/service"
	id "lms/pkg/domain"
	dErrors "lms/pkg/domain-errors"
	"lms/pkg/platform/httputil"
	"lms/pkg/platform/middleware/auth"
	request "lms/pkg/platform/middleware/request"
	"lms/pkg/platform/middleware/role"
	"lms/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/enrollment-mocks.go -package=mocks Service

// Service is the enrollment behaviour the handler depends on.
type Service interface {
	Enroll(ctx context.Context, caller service.Caller, courseID id.CourseID) (*service.EnrollOutcome, error)
	UpdateProgress(ctx context.Context, caller service.Caller, courseID id.CourseID, progress int) (*models.Enrollment, error)
	GetEnrollment(ctx context.Context, caller service.Caller, courseID id.CourseID) (*models.Enrollment, error)
	ListEnrolledCourses(ctx context.Context, caller service.Caller) ([]*catalogmodels.Course, error)
	ReconcileCourseIndex(ctx context.Context, caller service.Caller, userID id.UserID) (int, error)
}

type Handler struct {
	service   Service
	logger    *slog.Logger
	validator auth.JWTValidator
}

func New(service Service, logger *slog.Logger, validator auth.JWTValidator) *Handler {
	return &Handler{
		service:   service,
		logger:    logger,
		validator: validator,
	}
}

// Register mounts the student enrollment routes and the admin reconcile route.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(request.ContentTypeJSON)
		r.Use(auth.RequireAuth(h.validator, h.logger))

		r.Route("/api/enrollments", func(r chi.Router) {
			r.With(role.Require(h.logger, id.RoleStudent, id.RoleAdmin)).Get("/", h.HandleListEnrolledCourses)

			r.Group(func(r chi.Router) {
				r.Use(role.Require(h.logger, id.RoleStudent))
				r.Get("/{courseId}", h.HandleGetEnrollment)
				r.Post("/enroll", h.HandleEnroll)
				r.Put("/progress", h.HandleUpdateProgress)
			})
		})

		r.With(role.Require(h.logger, id.RoleAdmin)).
			Post("/api/admin/users/{userId}/reconcile", h.HandleReconcile)
	})
}

// HandleEnroll handles POST /api/enrollments/enroll.
func (h *Handler) HandleEnroll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[EnrollRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	outcome, err := h.service.Enroll(ctx, service.CallerFromContext(ctx), req.courseID)
	if err != nil {
		h.logFailure(ctx, "enroll failed", err, "course_id", req.CourseID)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "enrolled",
		"request_id", requestID,
		"course_id", req.CourseID,
		"enrollment_id", outcome.Enrollment.ID.String(),
		"index_synced", outcome.IndexSynced,
	)
	httputil.WriteJSON(w, http.StatusOK, EnrollResponse{
		Message:      "Successfully enrolled in course",
		EnrollmentID: outcome.Enrollment.ID.String(),
		IndexSynced:  outcome.IndexSynced,
	})
}

// HandleUpdateProgress handles PUT /api/enrollments/progress.
func (h *Handler) HandleUpdateProgress(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[ProgressRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	enrollment, err := h.service.UpdateProgress(ctx, service.CallerFromContext(ctx), req.courseID, *req.Progress)
	if err != nil {
		h.logFailure(ctx, "progress update failed", err, "course_id", req.CourseID)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ProgressResponse{
		Message:  "Progress updated successfully",
		Progress: enrollment.Progress,
	})
}

// HandleGetEnrollment handles GET /api/enrollments/{courseId}.
func (h *Handler) HandleGetEnrollment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	courseID, err := id.ParseCourseID(chi.URLParam(r, "courseId"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid course id"))
		return
	}

	enrollment, err := h.service.GetEnrollment(ctx, service.CallerFromContext(ctx), courseID)
	if err != nil {
		h.logFailure(ctx, "get enrollment failed", err, "course_id", courseID.String())
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, enrollment)
}

// HandleListEnrolledCourses handles GET /api/enrollments. The body is a bare
// array of courses.
func (h *Handler) HandleListEnrolledCourses(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	courses, err := h.service.ListEnrolledCourses(ctx, service.CallerFromContext(ctx))
	if err != nil {
		h.logFailure(ctx, "list enrolled courses failed", err)
		httputil.WriteError(w, err)
		return
	}
	if courses == nil {
		courses = []*catalogmodels.Course{}
	}
	httputil.WriteJSON(w, http.StatusOK, courses)
}

// HandleReconcile handles POST /api/admin/users/{userId}/reconcile.
func (h *Handler) HandleReconcile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, err := id.ParseUserID(chi.URLParam(r, "userId"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid user id"))
		return
	}

	added, err := h.service.ReconcileCourseIndex(ctx, service.CallerFromContext(ctx), userID)
	if err != nil {
		h.logFailure(ctx, "course index reconcile failed", err, "user_id", userID.String())
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ReconcileResponse{Added: added})
}

// logFailure logs business rejections at warn and everything else at error.
func (h *Handler) logFailure(ctx context.Context, msg string, err error, args ...any) {
	level := slog.LevelError
	if de, ok := dErrors.From(err); ok && dErrors.HTTPStatus(de.Code) < http.StatusInternalServerError {
		level = slog.LevelWarn
	}
	args = append(args,
		"request_id", requestcontext.RequestID(ctx),
		"user_id", requestcontext.UserID(ctx).String(),
		"error", err,
	)
	h.logger.Log(ctx, level, msg, args...)
}
