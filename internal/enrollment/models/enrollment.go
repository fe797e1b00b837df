// Package models holds the Enrollment record, the ledger's unit of truth for
// whether a user is enrolled in a course.
package models

import (
	"time"

	id "lms/pkg/domain"
	dErrors "lms/pkg/domain-errors"
)

const (
	MinProgress = 0
	MaxProgress = 100
)

// Enrollment links one user to one course.
//
// Invariants:
//   - at most one Enrollment exists per (UserID, CourseID)
//   - Progress is within [MinProgress, MaxProgress]
//   - EnrolledAt never changes after creation; UpdatedAt moves on every write
type Enrollment struct {
	ID         id.EnrollmentID `json:"id"`
	UserID     id.UserID       `json:"userId"`
	CourseID   id.CourseID     `json:"courseId"`
	EnrolledAt time.Time       `json:"enrolledAt"`
	Progress   int             `json:"progress"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// NewEnrollment starts an enrollment at zero progress.
func NewEnrollment(enrollmentID id.EnrollmentID, userID id.UserID, courseID id.CourseID, now time.Time) (*Enrollment, error) {
	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "user id is required")
	}
	if courseID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "course id is required")
	}
	return &Enrollment{
		ID:         enrollmentID,
		UserID:     userID,
		CourseID:   courseID,
		EnrolledAt: now,
		Progress:   MinProgress,
		UpdatedAt:  now,
	}, nil
}

// ValidProgress reports whether p is an acceptable progress value.
func ValidProgress(p int) bool {
	return p >= MinProgress && p <= MaxProgress
}

// SetProgress overwrites progress. Callers validate the range first; the
// value is not clamped.
func (e *Enrollment) SetProgress(p int, now time.Time) {
	e.Progress = p
	e.UpdatedAt = now
}

// Key is the ledger's uniqueness key.
type Key struct {
	UserID   id.UserID
	CourseID id.CourseID
}

func (e *Enrollment) Key() Key {
	return Key{UserID: e.UserID, CourseID: e.CourseID}
}
