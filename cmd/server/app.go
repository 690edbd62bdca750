package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"

	"github.com/phrazzld/account-api/internal/config"
	"github.com/phrazzld/account-api/internal/platform/metrics"
	"github.com/phrazzld/account-api/internal/platform/postgres"
	"github.com/phrazzld/account-api/internal/platform/redis"
	"github.com/phrazzld/account-api/internal/platform/tracing"
	"github.com/phrazzld/account-api/internal/service"
	"github.com/phrazzld/account-api/internal/service/auth"
	"github.com/phrazzld/account-api/internal/store"
)

// application holds the shared dependencies of the running server.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB
	redis  *goredis.Client

	userStore   store.UserStore
	jwtService  auth.JWTService
	userService service.UserService

	registry    *prometheus.Registry
	httpMetrics *metrics.HTTPMetrics

	shutdownTracing tracing.ShutdownFunc
}

// newApplication wires stores, auth and the user service on top of an open
// database. Redis is connected only when configured.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		slog.Int("token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes))

	hasher := auth.NewBcryptHasher(cfg.Auth.BcryptCost)
	app.userStore = postgres.NewPostgresUserStore(db, logger)

	var limiter service.LoginLimiter
	if cfg.Redis.Enabled() {
		app.redis, err = redis.NewClient(ctx, cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		rl, err := redis.NewLoginLimiter(
			app.redis,
			cfg.Auth.MaxLoginAttempts,
			cfg.Auth.LoginAttemptWindow(),
			logger,
		)
		if err != nil {
			_ = app.redis.Close()
			return nil, fmt.Errorf("failed to create login limiter: %w", err)
		}
		limiter = rl
		logger.Info("login throttling enabled",
			slog.Int("max_attempts", cfg.Auth.MaxLoginAttempts),
			slog.Duration("window", cfg.Auth.LoginAttemptWindow()))
	} else {
		logger.Warn("redis not configured, login throttling disabled")
	}

	userService, err := service.NewUserService(app.userStore, db, app.jwtService, hasher, limiter, logger)
	if err != nil {
		app.closeRedis()
		return nil, fmt.Errorf("failed to create user service: %w", err)
	}
	app.userService = userService

	app.registry = prometheus.NewRegistry()
	app.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewDBStatsCollector(db, "account"),
	)
	app.httpMetrics = metrics.NewHTTPMetrics(app.registry)

	logger.Info("application initialized")
	return app, nil
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (app *application) Run(ctx context.Context) error {
	return app.startHTTPServer(ctx, app.setupRouter())
}

func (app *application) closeRedis() {
	if app.redis == nil {
		return
	}
	if err := app.redis.Close(); err != nil {
		app.logger.Error("error closing redis client", slog.String("error", err.Error()))
	}
}

// cleanup releases application resources after the server has stopped.
func (app *application) cleanup(ctx context.Context) {
	if app.shutdownTracing != nil {
		if err := app.shutdownTracing(ctx); err != nil {
			app.logger.Error("error flushing traces", slog.String("error", err.Error()))
		}
	}

	app.closeRedis()

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", slog.String("error", err.Error()))
		}
	}

	app.logger.Info("application shutdown completed")
}
