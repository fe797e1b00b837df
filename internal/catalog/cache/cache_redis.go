// Package cache puts a Redis read-through cache in front of the catalog store.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"lms/internal/catalog/metrics"
	"lms/internal/catalog/models"
	id "lms/pkg/domain"
)

// Store is the catalog store being cached.
type Store interface {
	Create(ctx context.Context, course *models.Course) error
	FindByID(ctx context.Context, courseID id.CourseID) (*models.Course, error)
	List(ctx context.Context, filter models.Filter) ([]*models.Course, error)
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, courseID id.CourseID) error
}

const (
	keyPrefix    = "lms:course:"
	tombstone    = "-"
	// Must exceed the request timeout so an in-flight read finishes first.
	tombstoneTTL = 35 * time.Second
)

// CachedStore caches FindByID results. Writes go to the inner store first.
// Create evicts the key; Update and Delete replace it with a short-lived
// tombstone, and reads only populate an absent key, so a lookup that loaded
// the old record before the write cannot put it back. Redis failures are
// logged and counted, never returned: the inner store stays the source of
// truth. Absent courses are not cached, so a course created after a failed
// lookup is visible immediately.
type CachedStore struct {
	inner   Store
	client  redis.Cmdable
	ttl     time.Duration
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Option configures a CachedStore.
type Option func(*CachedStore)

func WithLogger(logger *slog.Logger) Option {
	return func(c *CachedStore) {
		c.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *CachedStore) {
		c.metrics = m
	}
}

func New(inner Store, client redis.Cmdable, ttl time.Duration, opts ...Option) *CachedStore {
	c := &CachedStore{
		inner:  inner,
		client: client,
		ttl:    ttl,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func key(courseID id.CourseID) string {
	return keyPrefix + courseID.String()
}

func (c *CachedStore) FindByID(ctx context.Context, courseID id.CourseID) (*models.Course, error) {
	raw, err := c.client.Get(ctx, key(courseID)).Bytes()
	switch {
	case err == nil && string(raw) == tombstone:
	case err == nil:
		var course models.Course
		decodeErr := json.Unmarshal(raw, &course)
		if decodeErr == nil {
			c.metrics.IncrementCacheHit()
			return &course, nil
		}
		c.fail(ctx, "decode", courseID, decodeErr)
	case errors.Is(err, redis.Nil):
	default:
		c.fail(ctx, "get", courseID, err)
	}

	c.metrics.IncrementCacheMiss()
	course, err := c.inner.FindByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	c.fill(ctx, course)
	return course, nil
}

// fill caches course unless the key is already present, tombstones included.
func (c *CachedStore) fill(ctx context.Context, course *models.Course) {
	payload, err := json.Marshal(course)
	if err != nil {
		c.fail(ctx, "encode", course.ID, err)
		return
	}
	if err := c.client.SetNX(ctx, key(course.ID), payload, c.ttl).Err(); err != nil {
		c.fail(ctx, "set", course.ID, err)
	}
}

// List is not cached; filtered scans are admin and browse traffic.
func (c *CachedStore) List(ctx context.Context, filter models.Filter) ([]*models.Course, error) {
	return c.inner.List(ctx, filter)
}

func (c *CachedStore) Create(ctx context.Context, course *models.Course) error {
	if err := c.inner.Create(ctx, course); err != nil {
		return err
	}
	c.evict(ctx, course.ID)
	return nil
}

func (c *CachedStore) Update(ctx context.Context, course *models.Course) error {
	if err := c.inner.Update(ctx, course); err != nil {
		return err
	}
	c.bury(ctx, course.ID)
	return nil
}

func (c *CachedStore) Delete(ctx context.Context, courseID id.CourseID) error {
	if err := c.inner.Delete(ctx, courseID); err != nil {
		return err
	}
	c.bury(ctx, courseID)
	return nil
}

func (c *CachedStore) evict(ctx context.Context, courseID id.CourseID) {
	if err := c.client.Del(ctx, key(courseID)).Err(); err != nil {
		c.fail(ctx, "del", courseID, err)
	}
}

func (c *CachedStore) bury(ctx context.Context, courseID id.CourseID) {
	if err := c.client.Set(ctx, key(courseID), tombstone, tombstoneTTL).Err(); err != nil {
		c.fail(ctx, "tombstone", courseID, err)
	}
}

func (c *CachedStore) fail(ctx context.Context, op string, courseID id.CourseID, err error) {
	c.metrics.IncrementCacheError(op)
	c.logger.WarnContext(ctx, "course cache operation failed",
		"op", op,
		"course_id", courseID.String(),
		"error", err,
	)
}
