package domain

import (
	"github.com/google/uuid"

	dErrors "lms/pkg/domain-errors"
)

// Typed identifiers keep users, courses and enrollments from being mixed up at
// call sites. All three are UUIDs underneath.
type (
	UserID       uuid.UUID
	CourseID     uuid.UUID
	EnrollmentID uuid.UUID
)

func NewUserID() UserID             { return UserID(uuid.New()) }
func NewCourseID() CourseID         { return CourseID(uuid.New()) }
func NewEnrollmentID() EnrollmentID { return EnrollmentID(uuid.New()) }

// ParseUserID parses external input into a UserID.
// Errors: CodeInvalidInput for empty, malformed or nil UUIDs.
func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s, "user ID")
	return UserID(u), err
}

// ParseCourseID parses external input into a CourseID.
// Errors: CodeInvalidInput for empty, malformed or nil UUIDs.
func ParseCourseID(s string) (CourseID, error) {
	u, err := parseUUID(s, "course ID")
	return CourseID(u), err
}

// ParseEnrollmentID parses external input into an EnrollmentID.
// Errors: CodeInvalidInput for empty, malformed or nil UUIDs.
func ParseEnrollmentID(s string) (EnrollmentID, error) {
	u, err := parseUUID(s, "enrollment ID")
	return EnrollmentID(u), err
}

func parseUUID(s, label string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be nil")
	}
	return u, nil
}

func (id UserID) String() string { return uuid.UUID(id).String() }
func (id UserID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

func (id CourseID) String() string { return uuid.UUID(id).String() }
func (id CourseID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

func (id EnrollmentID) String() string { return uuid.UUID(id).String() }
func (id EnrollmentID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

// MarshalText lets typed IDs serialize as plain UUID strings in JSON bodies.
func (id UserID) MarshalText() ([]byte, error)       { return uuid.UUID(id).MarshalText() }
func (id CourseID) MarshalText() ([]byte, error)     { return uuid.UUID(id).MarshalText() }
func (id EnrollmentID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

func (id *UserID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}

func (id *CourseID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}

func (id *EnrollmentID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}
