package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"lms/internal/platform/postgres"
	"lms/internal/users/models"
	id "lms/pkg/domain"
	"lms/pkg/email"
	"lms/pkg/platform/sentinel"
	lmsstrings "lms/pkg/platform/strings"
)

// PostgresUserStore persists users in the users table.
type PostgresUserStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresUserStore {
	return &PostgresUserStore{db: db}
}

const userColumns = `id, name, email, password_hash, role, enrolled_courses, created_at, updated_at`

// Save inserts a user. The case-insensitive email index is authoritative.
func (s *PostgresUserStore) Save(ctx context.Context, user *models.User) error {
	refs := user.EnrolledCourses
	if refs == nil {
		refs = []string{}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		uuid.UUID(user.ID),
		user.Name,
		email.Normalize(user.Email),
		user.PasswordHash,
		string(user.Role),
		pq.Array(refs),
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err, "") {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *PostgresUserStore) FindByID(ctx context.Context, userID id.UserID) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, uuid.UUID(userID))
	return scanUser(row)
}

func (s *PostgresUserStore) FindByEmail(ctx context.Context, address string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = $1`, email.Normalize(address))
	return scanUser(row)
}

// AddCourseReference appends courseID only when absent, in a single
// conditional UPDATE, so concurrent or retried calls leave one entry.
func (s *PostgresUserStore) AddCourseReference(ctx context.Context, userID id.UserID, courseID id.CourseID, now time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET enrolled_courses = array_append(enrolled_courses, $2::text),
		    updated_at = $3
		WHERE id = $1 AND NOT ($2::text = ANY(enrolled_courses))
	`, uuid.UUID(userID), courseID.String(), now)
	if err != nil {
		return fmt.Errorf("append course reference: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("append course reference: %w", err)
	}
	if affected > 0 {
		return nil
	}

	// Zero rows means either the reference is already present or the user is gone.
	var exists bool
	if err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, uuid.UUID(userID)).Scan(&exists); err != nil {
		return fmt.Errorf("check user exists: %w", err)
	}
	if !exists {
		return sentinel.ErrNotFound
	}
	return nil
}

func scanUser(row *sql.Row) (*models.User, error) {
	var (
		u      models.User
		userID uuid.UUID
		role   string
		refs   []string
	)
	err := row.Scan(&userID, &u.Name, &u.Email, &u.PasswordHash, &role, pq.Array(&refs), &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	u.ID = id.UserID(userID)
	u.Role = id.Role(role)
	u.EnrolledCourses = lmsstrings.DedupeAndTrim(refs)
	if u.EnrolledCourses == nil {
		u.EnrolledCourses = []string{}
	}
	return &u, nil
}
