package main

import (
	"context"
	"fmt"
	"log/slog"

	authservice "lms/internal/auth/service"
	"lms/internal/catalog/models"
	id "lms/pkg/domain"
	dErrors "lms/pkg/domain-errors"
	"lms/pkg/requestcontext"
)

const (
	demoAdminEmail    = "admin@lms.local"
	demoAdminPassword = "admin123"
)

var demoCourses = []models.Details{
	{
		Title:       "Go Fundamentals",
		Description: "Types, interfaces and the standard library from first principles.",
		Instructor:  "Dana Ortiz",
		Duration:    "6 weeks",
		Level:       models.LevelBeginner,
		Price:       49.99,
	},
	{
		Title:       "Concurrency Patterns in Go",
		Description: "Goroutines, channels, errgroup and bounded worker pools.",
		Instructor:  "Sam Whitfield",
		Duration:    "4 weeks",
		Level:       models.LevelIntermediate,
		Price:       79.00,
	},
	{
		Title:       "Distributed Systems Design",
		Description: "Consistency models, idempotency and repairing derived indexes.",
		Instructor:  "Priya Raman",
		Duration:    "8 weeks",
		Level:       models.LevelAdvanced,
		Price:       129.00,
	},
}

// seedDemoData creates an admin account and a starter catalog. An existing
// admin is kept, and courses are only added to an empty catalog.
func seedDemoData(ctx context.Context, a *app, log *slog.Logger) error {
	admin, err := a.auth.Register(ctx, authservice.RegisterInput{
		Name:     "Demo Admin",
		Email:    demoAdminEmail,
		Password: demoAdminPassword,
		Role:     id.RoleAdmin,
	})
	switch {
	case err == nil:
		log.WarnContext(ctx, "seeded demo admin with a well-known password", "email", demoAdminEmail)
	case dErrors.HasCode(err, dErrors.CodeBadRequest):
		admin, err = a.users.FindByEmail(ctx, demoAdminEmail)
		if err != nil {
			return fmt.Errorf("load demo admin: %w", err)
		}
		log.InfoContext(ctx, "demo admin already present", "email", demoAdminEmail)
	default:
		return fmt.Errorf("seed admin: %w", err)
	}
	if admin.Role != id.RoleAdmin {
		return fmt.Errorf("%s exists with role %q", demoAdminEmail, admin.Role)
	}

	// Catalog writes are authorized against the caller in ctx.
	ctx = requestcontext.WithCaller(ctx, admin.ID, admin.Role)
	existing, err := a.catalog.List(ctx, models.Filter{})
	if err != nil {
		return fmt.Errorf("list courses: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}
	for _, details := range demoCourses {
		if _, err := a.catalog.Create(ctx, details); err != nil {
			return fmt.Errorf("seed course %q: %w", details.Title, err)
		}
	}
	log.InfoContext(ctx, "seeded demo catalog", "courses", len(demoCourses))
	return nil
}
