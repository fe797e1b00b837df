package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "lms/pkg/domain"
	dErrors "lms/pkg/domain-errors"
)

func validDetails() Details {
	return Details{
		Title:    "Go for Beginners",
		Level:    LevelBeginner,
		Price:    49.99,
		Duration: "6 weeks",
	}
}

func TestNewCourse(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	c, err := NewCourse(id.NewCourseID(), validDetails(), now)
	require.NoError(t, err)
	assert.Equal(t, now, c.CreatedAt)
	assert.Equal(t, now, c.UpdatedAt)
	assert.Equal(t, 49.99, c.Price)

	tests := []struct {
		name   string
		mutate func(*Details)
	}{
		{"empty title", func(d *Details) { d.Title = "  " }},
		{"negative price", func(d *Details) { d.Price = -1 }},
		{"unknown level", func(d *Details) { d.Level = "Expert" }},
		{"lowercase level", func(d *Details) { d.Level = "beginner" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDetails()
			tt.mutate(&d)
			_, err := NewCourse(id.NewCourseID(), d, now)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		})
	}
}

func TestCourse_UpdateKeepsCreatedAt(t *testing.T) {
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c, err := NewCourse(id.NewCourseID(), validDetails(), created)
	require.NoError(t, err)

	later := created.Add(time.Hour)
	d := validDetails()
	d.Title = "Advanced Go"
	d.Level = LevelAdvanced
	require.NoError(t, c.Update(d, later))

	assert.Equal(t, created, c.CreatedAt)
	assert.Equal(t, later, c.UpdatedAt)
	assert.Equal(t, "Advanced Go", c.Title)
}

func TestFilter_Matches(t *testing.T) {
	course := &Course{Title: "Intro to Distributed Systems", Level: LevelIntermediate}

	tests := []struct {
		name   string
		filter Filter
		want   bool
	}{
		{"no filter matches all", Filter{}, true},
		{"title substring ignores case", Filter{Title: "DISTRIBUTED"}, true},
		{"title miss", Filter{Title: "cooking"}, false},
		{"level exact", Filter{Level: LevelIntermediate}, true},
		{"level miss", Filter{Level: LevelAdvanced}, false},
		{"title beats level", Filter{Title: "intro", Level: LevelAdvanced}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Matches(course))
		})
	}
}
