// Package models holds the User record and its course index.
package models

import (
	"slices"
	"strings"
	"time"

	id "lms/pkg/domain"
	dErrors "lms/pkg/domain-errors"
	"lms/pkg/email"
)

// User is an account that can enroll in courses.
//
// Invariants:
//   - Email is stored normalized (trimmed, lowercase) and unique across users
//   - Role is one of the closed id.Role values
//   - EnrolledCourses is a set: AddCourseReference never introduces duplicates
//
// EnrolledCourses is a denormalized index of the enrollment ledger. It may lag
// the ledger after a partial enroll failure and is never consulted to decide
// whether a user is enrolled.
type User struct {
	ID              id.UserID `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	PasswordHash    string    `json:"-"`
	Role            id.Role   `json:"role"`
	EnrolledCourses []string  `json:"enrolledCourses"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// NewUser builds a user for registration. An empty name is derived from the email.
func NewUser(userID id.UserID, name, address, passwordHash string, role id.Role, now time.Time) (*User, error) {
	address = email.Normalize(address)
	if address == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "email is required")
	}
	if !role.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "role must be admin or student")
	}
	if passwordHash == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "password hash is required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = email.DeriveNameFromEmail(address)
	}
	return &User{
		ID:              userID,
		Name:            name,
		Email:           address,
		PasswordHash:    passwordHash,
		Role:            role,
		EnrolledCourses: []string{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// HasCourseReference reports whether the index contains courseID.
func (u *User) HasCourseReference(courseID id.CourseID) bool {
	return slices.Contains(u.EnrolledCourses, courseID.String())
}

// Clone returns a deep copy so stores never hand out shared slices.
func (u *User) Clone() *User {
	c := *u
	c.EnrolledCourses = slices.Clone(u.EnrolledCourses)
	if c.EnrolledCourses == nil {
		c.EnrolledCourses = []string{}
	}
	return &c
}
