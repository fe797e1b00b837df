package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	authhandler "lms/internal/auth/handler"
	"lms/internal/auth/secrets"
	authservice "lms/internal/auth/service"
	"lms/internal/auth/token"
	"lms/internal/catalog/cache"
	cataloghandler "lms/internal/catalog/handler"
	catalogmetrics "lms/internal/catalog/metrics"
	catalogservice "lms/internal/catalog/service"
	catalogstore "lms/internal/catalog/store"
	enrollmenthandler "lms/internal/enrollment/handler"
	enrollmentmetrics "lms/internal/enrollment/metrics"
	enrollmentservice "lms/internal/enrollment/service"
	enrollmentstore "lms/internal/enrollment/store"
	"lms/internal/platform/config"
	"lms/internal/platform/metrics"
	"lms/internal/platform/postgres"
	"lms/internal/platform/redis"
	userstore "lms/internal/users/store"
	"lms/pkg/platform/audit"
	"lms/pkg/platform/audit/publisher"
	auditkafka "lms/pkg/platform/audit/store/kafka"
	auditmemory "lms/pkg/platform/audit/store/memory"
	auditpostgres "lms/pkg/platform/audit/store/postgres"
	"lms/pkg/platform/httputil"
	"lms/pkg/platform/middleware/metadata"
	request "lms/pkg/platform/middleware/request"
	"lms/pkg/platform/middleware/requesttime"
)

const (
	requestTimeout   = 30 * time.Second
	auditBufferSize  = 1024
	kafkaPartitions  = 3
	kafkaReplication = 1
)

// userStore is what the auth and enrollment services need from the users backend.
type userStore interface {
	authservice.UserStore
	enrollmentservice.UserIndex
}

type app struct {
	cfg    config.Config
	log    *slog.Logger
	db     *sql.DB
	redis  *redis.Client
	kafka  *auditkafka.Store
	audit  *publisher.Publisher
	users  userStore
	course cache.Store

	enrollmentStore enrollmentservice.EnrollmentStore

	auth       *authservice.Service
	catalog    *catalogservice.Service
	enrollment *enrollmentservice.Service
	tokens     *token.JWTService
	metrics    *metrics.Metrics
}

func newApp(ctx context.Context, cfg config.Config, log *slog.Logger) (*app, error) {
	a := &app{cfg: cfg, log: log, metrics: metrics.New()}
	if err := a.openStorage(ctx); err != nil {
		a.Close()
		return nil, err
	}
	if err := a.openAudit(ctx); err != nil {
		a.Close()
		return nil, err
	}

	a.tokens = token.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.JWTIssuer, cfg.Auth.JWTTTL)
	a.auth = authservice.New(a.users, a.tokens, secrets.NewHasher(0),
		authservice.WithLogger(log),
		authservice.WithAuditPublisher(a.audit),
	)
	a.catalog = catalogservice.New(a.course,
		catalogservice.WithLogger(log),
		catalogservice.WithAuditPublisher(a.audit),
	)
	a.enrollment = enrollmentservice.New(a.enrollmentStore, a.users, a.course,
		enrollmentservice.WithLogger(log),
		enrollmentservice.WithAuditPublisher(a.audit),
		enrollmentservice.WithMetrics(enrollmentmetrics.New()),
		enrollmentservice.WithFanout(cfg.CatalogFanout),
	)
	return a, nil
}

func (a *app) openStorage(ctx context.Context) error {
	var (
		courses     cache.Store
		enrollments enrollmentservice.EnrollmentStore
	)
	switch a.cfg.Storage.Driver {
	case config.DriverPostgres:
		db, err := postgres.Open(ctx, a.cfg.Storage.DatabaseURL)
		if err != nil {
			return fmt.Errorf("open postgres: %w", err)
		}
		a.db = db
		if err := postgres.Migrate(ctx, db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		a.users = userstore.NewPostgres(db)
		courses = catalogstore.NewPostgres(db)
		enrollments = enrollmentstore.NewPostgres(db)
	default:
		a.users = userstore.NewInMemory()
		courses = catalogstore.NewInMemory()
		enrollments = enrollmentstore.NewInMemory()
	}

	client, err := redis.New(ctx, a.cfg.Redis)
	if err != nil {
		return fmt.Errorf("open redis: %w", err)
	}
	a.redis = client
	if client != nil {
		if err := client.RegisterPoolMetrics(prometheus.DefaultRegisterer); err != nil {
			return fmt.Errorf("register redis metrics: %w", err)
		}
		courses = cache.New(courses, client.Client, a.cfg.CourseCacheTTL,
			cache.WithLogger(a.log),
			cache.WithMetrics(catalogmetrics.New()),
		)
	}
	a.course = courses
	a.enrollmentStore = enrollments
	return nil
}

// openAudit picks the first configured sink: Kafka, then Postgres, then memory.
func (a *app) openAudit(ctx context.Context) error {
	var store audit.Store
	switch {
	case len(a.cfg.Kafka.Brokers) > 0:
		k, err := auditkafka.New(a.cfg.Kafka.Brokers, a.cfg.Kafka.Topic)
		if err != nil {
			return err
		}
		a.kafka = k
		if err := k.EnsureTopic(ctx, kafkaPartitions, kafkaReplication); err != nil {
			return fmt.Errorf("ensure audit topic: %w", err)
		}
		store = k
	case a.db != nil:
		store = auditpostgres.New(a.db)
	default:
		store = auditmemory.NewInMemoryStore()
	}
	a.audit = publisher.NewPublisher(store,
		publisher.WithAsyncBuffer(auditBufferSize),
		publisher.WithLogger(a.log),
	)
	return nil
}

// Router builds the full HTTP surface.
func (a *app) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(request.Recovery(a.log))
	r.Use(request.RequestID)
	r.Use(metadata.ClientMetadata)
	r.Use(requesttime.Middleware)
	r.Use(request.Logger(a.log))
	r.Use(request.Timeout(requestTimeout))
	r.Use(request.LatencyMiddleware(a.metrics, routePattern))

	r.Get("/healthz", a.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	authhandler.New(a.auth, a.log).Register(r)
	cataloghandler.New(a.catalog, a.log, a.tokens).Register(r)
	enrollmenthandler.New(a.enrollment, a.log, a.tokens).Register(r)
	return r
}

// routePattern labels latency by the matched chi pattern so ids do not
// explode label cardinality.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}

func (a *app) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	checks := map[string]string{}
	healthy := true
	record := func(name string, err error) {
		if err != nil {
			healthy = false
			checks[name] = err.Error()
			a.log.WarnContext(ctx, "health check failed", "component", name, "error", err)
			return
		}
		checks[name] = "ok"
	}
	if a.db != nil {
		record("postgres", a.db.PingContext(ctx))
	}
	if a.redis != nil {
		record("redis", a.redis.Health(ctx))
	}
	if a.kafka != nil {
		record("kafka", a.kafka.Ping(ctx))
	}

	status := http.StatusOK
	body := map[string]any{"status": "ok", "checks": checks}
	if !healthy {
		status = http.StatusServiceUnavailable
		body["status"] = "degraded"
	}
	httputil.WriteJSON(w, status, body)
}

// Close drains the audit publisher before closing its sinks.
func (a *app) Close() {
	if a.audit != nil {
		a.audit.Close()
	}
	if a.kafka != nil {
		a.kafka.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.db != nil {
		_ = a.db.Close()
	}
}
