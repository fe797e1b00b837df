// Package models holds the Course catalog record.
package models

import (
	"strings"
	"time"

	id "lms/pkg/domain"
	dErrors "lms/pkg/domain-errors"
)

// Level is the closed set of course difficulty levels.
type Level string

const (
	LevelBeginner     Level = "Beginner"
	LevelIntermediate Level = "Intermediate"
	LevelAdvanced     Level = "Advanced"
)

// ParseLevel accepts the canonical spelling only; filters match exactly.
func ParseLevel(s string) (Level, error) {
	switch Level(s) {
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
		return Level(s), nil
	default:
		return "", dErrors.New(dErrors.CodeValidation, "level must be Beginner, Intermediate or Advanced")
	}
}

// Course is a catalog item. Enrollments reference it by id only.
type Course struct {
	ID          id.CourseID `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Instructor  string      `json:"instructor"`
	Thumbnail   string      `json:"thumbnail"`
	Duration    string      `json:"duration"`
	Level       Level       `json:"level"`
	Price       float64     `json:"price"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// Details are the admin-editable fields of a course.
type Details struct {
	Title       string
	Description string
	Instructor  string
	Thumbnail   string
	Duration    string
	Level       Level
	Price       float64
}

func (d Details) validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return dErrors.New(dErrors.CodeValidation, "title is required")
	}
	if _, err := ParseLevel(string(d.Level)); err != nil {
		return err
	}
	if d.Price < 0 {
		return dErrors.New(dErrors.CodeValidation, "price must not be negative")
	}
	return nil
}

// NewCourse builds a course with both timestamps set to now.
func NewCourse(courseID id.CourseID, d Details, now time.Time) (*Course, error) {
	if err := d.validate(); err != nil {
		return nil, err
	}
	c := &Course{ID: courseID, CreatedAt: now}
	c.apply(d, now)
	return c, nil
}

// Update replaces every editable field and refreshes UpdatedAt.
func (c *Course) Update(d Details, now time.Time) error {
	if err := d.validate(); err != nil {
		return err
	}
	c.apply(d, now)
	return nil
}

func (c *Course) apply(d Details, now time.Time) {
	c.Title = strings.TrimSpace(d.Title)
	c.Description = d.Description
	c.Instructor = d.Instructor
	c.Thumbnail = d.Thumbnail
	c.Duration = d.Duration
	c.Level = d.Level
	c.Price = d.Price
	c.UpdatedAt = now
}

// Filter narrows a catalog scan. A set Title wins over Level.
type Filter struct {
	Title string
	Level Level
}

// Effective applies the precedence rule: title beats level.
func (f Filter) Effective() Filter {
	if f.Title != "" {
		return Filter{Title: f.Title}
	}
	return f
}

// Matches reports whether c passes the filter. Title matching is a
// case-insensitive substring test; level is exact.
func (f Filter) Matches(c *Course) bool {
	f = f.Effective()
	if f.Title != "" {
		return strings.Contains(strings.ToLower(c.Title), strings.ToLower(f.Title))
	}
	if f.Level != "" {
		return c.Level == f.Level
	}
	return true
}
