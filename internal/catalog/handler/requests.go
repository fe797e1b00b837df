package handler

import (
	"lms/internal/catalog/models"
	dErrors "lms/pkg/domain-errors"
	"lms/pkg/platform/validation"
)

// CourseRequest is the body of POST /api/courses and PUT /api/courses/{id}.
type CourseRequest struct {
	Title       string  `json:"title" validate:"required,max=200"`
	Description string  `json:"description" validate:"max=5000"`
	Instructor  string  `json:"instructor" validate:"max=200"`
	Thumbnail   string  `json:"thumbnail" validate:"max=2048"`
	Duration    string  `json:"duration" validate:"max=100"`
	Level       string  `json:"level" validate:"required"`
	Price       float64 `json:"price" validate:"gte=0"`

	level models.Level
}

// Validate implements httputil.Validatable.
func (r *CourseRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if err := validation.Struct(r); err != nil {
		return err
	}
	level, err := models.ParseLevel(r.Level)
	if err != nil {
		return err
	}
	r.level = level
	return nil
}

// Details converts the validated request into catalog fields.
func (r *CourseRequest) Details() models.Details {
	return models.Details{
		Title:       r.Title,
		Description: r.Description,
		Instructor:  r.Instructor,
		Thumbnail:   r.Thumbnail,
		Duration:    r.Duration,
		Level:       r.level,
		Price:       r.Price,
	}
}
