// Package handler exposes the course catalog over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"lms/internal/catalog/models"
	id "lms/pkg/domain"
	dErrors "lms/pkg/domain-errors"
	"lms/pkg/platform/httputil"
	"lms/pkg/platform/middleware/auth"
	request "lms/pkg/platform/middleware/request"
	"lms/pkg/platform/middleware/role"
	"lms/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/catalog-mocks.go -package=mocks Service

// Service is the catalog behaviour the handler depends on.
type Service interface {
	List(ctx context.Context, filter models.Filter) ([]*models.Course, error)
	Get(ctx context.Context, courseID id.CourseID) (*models.Course, error)
	Create(ctx context.Context, details models.Details) (*models.Course, error)
	Update(ctx context.Context, courseID id.CourseID, details models.Details) (*models.Course, error)
	Delete(ctx context.Context, courseID id.CourseID) error
}

// Handler serves /api/courses.
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

// Register mounts the public reads and the admin writes.
func (h *Handler) Register(r chi.Router) {
	r.Route("/api/courses", func(r chi.Router) {
		r.Get("/", h.HandleList)
		r.Get("/{id}", h.HandleGet)

		r.Group(func(r chi.Router) {
			r.Use(request.ContentTypeJSON)
			r.Use(auth.RequireAuth(h.validator, h.logger))
			r.Use(role.Require(h.logger, id.RoleAdmin))
			r.Post("/", h.HandleCreate)
			r.Put("/{id}", h.HandleUpdate)
			r.Delete("/{id}", h.HandleDelete)
		})
	})
}

// HandleList handles GET /api/courses?title=&level=.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()
	filter := models.Filter{
		Title: strings.TrimSpace(query.Get("title")),
		Level: models.Level(strings.TrimSpace(query.Get("level"))),
	}

	courses, err := h.service.List(ctx, filter)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list courses",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toListResponse(courses))
}

// HandleGet handles GET /api/courses/{id}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	courseID, ok := h.courseIDParam(w, r)
	if !ok {
		return
	}

	course, err := h.service.Get(ctx, courseID)
	if err != nil {
		h.logFailure(ctx, "failed to get course", courseID, err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, course)
}

// HandleCreate handles POST /api/courses.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[CourseRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	course, err := h.service.Create(ctx, req.Details())
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to create course",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, course)
}

// HandleUpdate handles PUT /api/courses/{id}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	courseID, ok := h.courseIDParam(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[CourseRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	course, err := h.service.Update(ctx, courseID, req.Details())
	if err != nil {
		h.logFailure(ctx, "failed to update course", courseID, err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, course)
}

// HandleDelete handles DELETE /api/courses/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	courseID, ok := h.courseIDParam(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(ctx, courseID); err != nil {
		h.logFailure(ctx, "failed to delete course", courseID, err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteMessage(w, http.StatusOK, "Course deleted successfully")
}

func (h *Handler) courseIDParam(w http.ResponseWriter, r *http.Request) (id.CourseID, bool) {
	courseID, err := id.ParseCourseID(chi.URLParam(r, "id"))
	if err != nil {
		h.logger.WarnContext(r.Context(), "invalid course id",
			"request_id", requestcontext.RequestID(r.Context()),
			"error", err,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid course id"))
		return id.CourseID{}, false
	}
	return courseID, true
}

func (h *Handler) logFailure(ctx context.Context, msg string, courseID id.CourseID, err error) {
	level := slog.LevelWarn
	if dErrors.HTTPStatus(codeOf(err)) >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	h.logger.Log(ctx, level, msg,
		"request_id", requestcontext.RequestID(ctx),
		"course_id", courseID.String(),
		"error", err,
	)
}

func codeOf(err error) dErrors.Code {
	if de, ok := dErrors.From(err); ok {
		return de.Code
	}
	return dErrors.CodeInternal
}
