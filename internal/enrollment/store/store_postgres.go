package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"lms/internal/enrollment/models"
	"lms/internal/platform/postgres"
	id "lms/pkg/domain"
	"lms/pkg/platform/sentinel"
)

// uniqueUserCourse is the constraint backing the one-enrollment-per-pair rule.
const uniqueUserCourse = "enrollments_user_course_key"

// PostgresEnrollmentStore persists enrollments in the enrollments table.
type PostgresEnrollmentStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresEnrollmentStore {
	return &PostgresEnrollmentStore{db: db}
}

const enrollmentColumns = `id, user_id, course_id, enrolled_at, progress, updated_at`

func (s *PostgresEnrollmentStore) Exists(ctx context.Context, userID id.UserID, courseID id.CourseID) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM enrollments WHERE user_id = $1 AND course_id = $2)`,
		uuid.UUID(userID), uuid.UUID(courseID),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check enrollment: %w", err)
	}
	return exists, nil
}

// Create relies on the unique constraint; a concurrent duplicate surfaces as
// sentinel.ErrAlreadyUsed.
func (s *PostgresEnrollmentStore) Create(ctx context.Context, e *models.Enrollment) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO enrollments (`+enrollmentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		uuid.UUID(e.ID), uuid.UUID(e.UserID), uuid.UUID(e.CourseID),
		e.EnrolledAt, e.Progress, e.UpdatedAt,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err, uniqueUserCourse) || postgres.IsUniqueViolation(err, "enrollments_pkey") {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("insert enrollment: %w", err)
	}
	return nil
}

func (s *PostgresEnrollmentStore) FindByUserAndCourse(ctx context.Context, userID id.UserID, courseID id.CourseID) (*models.Enrollment, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+enrollmentColumns+` FROM enrollments WHERE user_id = $1 AND course_id = $2`,
		uuid.UUID(userID), uuid.UUID(courseID),
	)
	e, err := scanEnrollment(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find enrollment: %w", err)
	}
	return e, nil
}

// ListByUser returns the user's enrollments. The ORDER BY only makes output
// deterministic; callers must not rely on the order.
func (s *PostgresEnrollmentStore) ListByUser(ctx context.Context, userID id.UserID) ([]*models.Enrollment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+enrollmentColumns+` FROM enrollments WHERE user_id = $1 ORDER BY enrolled_at ASC, id ASC`,
		uuid.UUID(userID),
	)
	if err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	defer rows.Close()

	out := []*models.Enrollment{}
	for rows.Next() {
		e, err := scanEnrollment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan enrollment: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	return out, nil
}

// UpdateProgress is a single-row UPDATE; the CHECK constraint backs the
// range check done here.
func (s *PostgresEnrollmentStore) UpdateProgress(ctx context.Context, enrollmentID id.EnrollmentID, progress int, now time.Time) (*models.Enrollment, error) {
	if !models.ValidProgress(progress) {
		return nil, sentinel.ErrInvalidState
	}
	row := s.db.QueryRowContext(ctx, `
		UPDATE enrollments SET progress = $2, updated_at = $3
		WHERE id = $1
		RETURNING `+enrollmentColumns,
		uuid.UUID(enrollmentID), progress, now,
	)
	e, err := scanEnrollment(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("update progress: %w", err)
	}
	return e, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEnrollment(row scanner) (*models.Enrollment, error) {
	var (
		e                      models.Enrollment
		enrollmentID, uid, cid uuid.UUID
	)
	if err := row.Scan(&enrollmentID, &uid, &cid, &e.EnrolledAt, &e.Progress, &e.UpdatedAt); err != nil {
		return nil, err
	}
	e.ID = id.EnrollmentID(enrollmentID)
	e.UserID = id.UserID(uid)
	e.CourseID = id.CourseID(cid)
	e.EnrolledAt = e.EnrolledAt.UTC()
	e.UpdatedAt = e.UpdatedAt.UTC()
	return &e, nil
}
