package handler

import "lms/internal/catalog/models"

// CourseListResponse wraps a catalog listing.
type CourseListResponse struct {
	Courses []*models.Course `json:"courses"`
	Count   int              `json:"count"`
}

func toListResponse(courses []*models.Course) CourseListResponse {
	if courses == nil {
		courses = []*models.Course{}
	}
	return CourseListResponse{Courses: courses, Count: len(courses)}
}
