// Package service implements account registration and password login.
package service

import (
	"context"
	"errors"
	"log/slog"

	"lms/internal/users/models"
	"lms/pkg/attrs"
	id "lms/pkg/domain"
	dErrors "lms/pkg/domain-errors"
	"lms/pkg/email"
	audit "lms/pkg/platform/audit"
	"lms/pkg/platform/sentinel"
	"lms/pkg/requestcontext"
)

// UserStore is the subset of the users store needed for accounts.
type UserStore interface {
	Save(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, address string) (*models.User, error)
}

type TokenIssuer interface {
	GenerateAccessToken(userID id.UserID, role id.Role) (string, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// RegisterInput carries a validated registration request.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     id.Role
}

// LoginResult is returned on successful authentication.
type LoginResult struct {
	Token string
	User  *models.User
}

type Service struct {
	users          UserStore
	tokens         TokenIssuer
	hasher         PasswordHasher
	logger         *slog.Logger
	auditPublisher AuditPublisher
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func New(users UserStore, tokens TokenIssuer, hasher PasswordHasher, opts ...Option) *Service {
	s := &Service{
		users:  users,
		tokens: tokens,
		hasher: hasher,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates an account. Role defaults to student.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	role := in.Role
	if role == "" {
		role = id.RoleStudent
	}
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}
	user, err := models.NewUser(id.NewUserID(), in.Name, in.Email, hash, role, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.users.Save(ctx, user); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.New(dErrors.CodeBadRequest, "Email is already in use")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save user")
	}
	s.logAudit(ctx, audit.EventUserRegistered,
		"user_id", user.ID.String(),
		"role", string(user.Role),
	)
	return user, nil
}

// Login verifies credentials and issues an access token. Unknown email and
// wrong password produce the same error.
func (s *Service) Login(ctx context.Context, address, password string) (*LoginResult, error) {
	invalid := dErrors.New(dErrors.CodeUnauthorized, "Invalid email or password")

	user, err := s.users.FindByEmail(ctx, email.Normalize(address))
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.logAudit(ctx, audit.EventAuthFailed, "reason", "unknown_email")
			return nil, invalid
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	if err := s.hasher.Verify(password, user.PasswordHash); err != nil {
		if dErrors.HasCode(err, dErrors.CodeUnauthorized) {
			s.logAudit(ctx, audit.EventAuthFailed,
				"user_id", user.ID.String(),
				"reason", "bad_password",
			)
			return nil, invalid
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to verify password")
	}

	token, err := s.tokens.GenerateAccessToken(user.ID, user.Role)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue token")
	}
	s.logAudit(ctx, audit.EventUserLoggedIn, "user_id", user.ID.String())
	return &LoginResult{Token: token, User: user}, nil
}

func (s *Service) logAudit(ctx context.Context, event audit.AuditEvent, attributes ...any) {
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		attributes = append(attributes, "request_id", requestID)
	}
	args := append(attributes, "event", string(event), "log_type", "audit")
	if s.logger != nil {
		s.logger.InfoContext(ctx, string(event), args...)
	}
	if s.auditPublisher == nil {
		return
	}
	userID, _ := id.ParseUserID(attrs.ExtractString(attributes, "user_id"))
	_ = s.auditPublisher.Emit(ctx, audit.Event{
		UserID:    userID,
		Subject:   attrs.ExtractString(attributes, "user_id"),
		Action:    string(event),
		Reason:    attrs.ExtractString(attributes, "reason"),
		RequestID: requestcontext.RequestID(ctx),
		IP:        requestcontext.ClientIP(ctx),
		Timestamp: requestcontext.Now(ctx),
	})
}
