package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"lms/internal/catalog/models"
	"lms/internal/platform/postgres"
	id "lms/pkg/domain"
	"lms/pkg/platform/sentinel"
)

// PostgresCourseStore persists courses in the courses table.
type PostgresCourseStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresCourseStore {
	return &PostgresCourseStore{db: db}
}

const courseColumns = `id, title, description, instructor, thumbnail, duration, level, price, created_at, updated_at`

func (s *PostgresCourseStore) Create(ctx context.Context, c *models.Course) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO courses (`+courseColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		uuid.UUID(c.ID), c.Title, c.Description, c.Instructor, c.Thumbnail,
		c.Duration, string(c.Level), c.Price, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err, "") {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("insert course: %w", err)
	}
	return nil
}

func (s *PostgresCourseStore) FindByID(ctx context.Context, courseID id.CourseID) (*models.Course, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+courseColumns+` FROM courses WHERE id = $1`, uuid.UUID(courseID))
	c, err := scanCourse(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find course: %w", err)
	}
	return c, nil
}

// List applies the filter in SQL, oldest first.
func (s *PostgresCourseStore) List(ctx context.Context, filter models.Filter) ([]*models.Course, error) {
	filter = filter.Effective()
	query := `SELECT ` + courseColumns + ` FROM courses`
	var args []any
	switch {
	case filter.Title != "":
		query += ` WHERE title ILIKE $1`
		args = append(args, "%"+escapeLike(filter.Title)+"%")
	case filter.Level != "":
		query += ` WHERE level = $1`
		args = append(args, string(filter.Level))
	}
	query += ` ORDER BY created_at ASC, id ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	defer rows.Close()

	courses := []*models.Course{}
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, fmt.Errorf("scan course: %w", err)
		}
		courses = append(courses, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate courses: %w", err)
	}
	return courses, nil
}

func (s *PostgresCourseStore) Update(ctx context.Context, c *models.Course) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE courses
		SET title = $2, description = $3, instructor = $4, thumbnail = $5,
		    duration = $6, level = $7, price = $8, updated_at = $9
		WHERE id = $1
	`,
		uuid.UUID(c.ID), c.Title, c.Description, c.Instructor, c.Thumbnail,
		c.Duration, string(c.Level), c.Price, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update course: %w", err)
	}
	return requireAffected(res)
}

func (s *PostgresCourseStore) Delete(ctx context.Context, courseID id.CourseID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM courses WHERE id = $1`, uuid.UUID(courseID))
	if err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	return requireAffected(res)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCourse(row scanner) (*models.Course, error) {
	var (
		c        models.Course
		courseID uuid.UUID
		level    string
	)
	if err := row.Scan(&courseID, &c.Title, &c.Description, &c.Instructor, &c.Thumbnail,
		&c.Duration, &level, &c.Price, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	c.ID = id.CourseID(courseID)
	c.Level = models.Level(level)
	return &c, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
