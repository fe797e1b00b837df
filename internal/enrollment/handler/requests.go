package handler

import (
	id "lms/pkg/domain"
	dErrors "lms/pkg/domain-errors"
	"lms/pkg/platform/validation"
)

// EnrollRequest is the body of POST /api/enrollments/enroll.
type EnrollRequest struct {
	CourseID string `json:"courseId" validate:"required"`

	courseID id.CourseID
}

func (r *EnrollRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if err := validation.Struct(r); err != nil {
		return err
	}
	courseID, err := parseCourseID(r.CourseID)
	if err != nil {
		return err
	}
	r.courseID = courseID
	return nil
}

// ProgressRequest is the body of PUT /api/enrollments/progress. The range
// check belongs to the service so it reports InvalidProgress.
type ProgressRequest struct {
	CourseID string `json:"courseId" validate:"required"`
	Progress *int   `json:"progress" validate:"required"`

	courseID id.CourseID
}

func (r *ProgressRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if err := validation.Struct(r); err != nil {
		return err
	}
	courseID, err := parseCourseID(r.CourseID)
	if err != nil {
		return err
	}
	r.courseID = courseID
	return nil
}

func parseCourseID(raw string) (id.CourseID, error) {
	courseID, err := id.ParseCourseID(raw)
	if err != nil {
		return id.CourseID{}, dErrors.New(dErrors.CodeValidation, "courseId must be a valid id")
	}
	return courseID, nil
}
