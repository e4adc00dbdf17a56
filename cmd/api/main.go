// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	redis_rate "github.com/go-redis/redis_rate/v10"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"

	"github.com/carterperez-dev/templates/users-service/internal/admin"
	"github.com/carterperez-dev/templates/users-service/internal/auth"
	"github.com/carterperez-dev/templates/users-service/internal/config"
	"github.com/carterperez-dev/templates/users-service/internal/core"
	"github.com/carterperez-dev/templates/users-service/internal/health"
	"github.com/carterperez-dev/templates/users-service/internal/metrics"
	"github.com/carterperez-dev/templates/users-service/internal/middleware"
	"github.com/carterperez-dev/templates/users-service/internal/server"
	"github.com/carterperez-dev/templates/users-service/internal/user"
)

const (
	drainDelay = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	envFile := flag.String("env-file", ".env", "optional dotenv file loaded before config")
	flag.Parse()

	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to load env file", "path", *envFile, "error", err)
	}

	if err := run(*configPath); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

//nolint:funlen // bootstrap code is inherently verbose
func run(configPath string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	if _, err := os.Stat(configPath); errors.Is(err, fs.ErrNotExist) {
		configPath = ""
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	telemetry, err := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
	if err != nil {
		logger.Warn("failed to initialize telemetry", "error", err)
	} else if cfg.Otel.Enabled {
		logger.Info("OpenTelemetry tracer initialized",
			"endpoint", cfg.Otel.Endpoint,
		)
	}

	jwtManager, err := auth.NewJWTManager(cfg.JWT)
	if err != nil {
		return err
	}
	logger.Info("JWT manager initialized",
		"algorithm", "HS256",
		"issuer", cfg.JWT.Issuer,
		"audience", cfg.JWT.Audience,
	)

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)

	if cfg.Database.AutoMigrate {
		if err := core.EnsureSchema(ctx, db.DB); err != nil {
			return err
		}
		logger.Info("database schema ensured")
	}

	checkers := []health.Checker{db}
	adminCfg := admin.HandlerConfig{
		DBStats: db.Stats,
		DBPing:  db.Ping,
	}

	var redisClient *goredis.Client
	redis, err := connectRedis(ctx, cfg.Redis)
	switch {
	case err != nil:
		logger.Warn("redis unavailable, rate limits are per instance",
			"error", err,
		)
	case redis == nil:
		logger.Info("redis not configured, rate limits are per instance")
	default:
		redisClient = redis.Client
		checkers = append(checkers, redis)
		adminCfg.RedisStats = redis.PoolStats
		adminCfg.RedisPing = redis.Ping
		logger.Info("redis connected",
			"pool_size", cfg.Redis.PoolSize,
		)
	}

	var (
		prom       *metrics.Prom
		dbObserver = core.NoopObserver
		authMetric auth.Metrics
	)
	if cfg.Metrics.Enabled {
		registry := prometheus.NewRegistry()
		metrics.RegisterRuntime(registry)
		prom = metrics.New(registry)
		dbObserver = prom
		authMetric = prom
	}

	userRepo := user.NewRepository(db.DB, dbObserver)
	userSvc := user.NewService(userRepo)
	userHandler, err := user.NewHandler(userSvc)
	if err != nil {
		return err
	}

	seeded, err := userSvc.EnsureAdmin(ctx, cfg.Admin)
	if err != nil {
		return err
	}
	if seeded {
		logger.Info("initial admin created", "email", cfg.Admin.Email)
	}

	authSvc := auth.NewService(jwtManager, userSvc, authMetric)
	authHandler := auth.NewHandler(authSvc)

	healthHandler := health.NewHandler(checkers...)

	adminCfg.Users = userSvc
	adminHandler := admin.NewHandler(adminCfg)

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(middleware.Tracing(cfg.Otel.ServiceName))
	router.Use(middleware.Logger(logger))
	if prom != nil {
		router.Use(prom.Middleware)
	}
	router.Use(
		middleware.NewRateLimiter(redisClient, middleware.RateLimitConfig{
			Limit: redis_rate.Limit{
				Rate:   cfg.RateLimit.Requests,
				Burst:  cfg.RateLimit.Burst,
				Period: cfg.RateLimit.Window,
			},
			FailOpen: true,
		}).Handler,
	)
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.CORS(cfg.CORS))

	healthHandler.RegisterRoutes(router)

	if prom != nil {
		router.Handle(cfg.Metrics.Path, prom.Handler())
	}

	tokenLimiter := middleware.NewRateLimiter(redisClient, middleware.RateLimitConfig{
		Limit:   middleware.PerMinute(cfg.RateLimit.TokenRequests, cfg.RateLimit.TokenBurst),
		KeyFunc: middleware.KeyByScopeAndIP("tokens"),
	})

	authenticator := middleware.Authenticator(jwtManager)
	adminOnly := middleware.RequireAdmin

	router.Route("/v1", func(r chi.Router) {
		authHandler.RegisterRoutes(r, tokenLimiter.Handler)
		userHandler.RegisterRoutes(r, authenticator, adminOnly)
		adminHandler.RegisterRoutes(r, authenticator, adminOnly)
	})

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}

	if redis != nil {
		if err := redis.Close(); err != nil {
			logger.Error("redis close error", "error", err)
		}
	}

	if err := db.Close(); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("application stopped")
	return nil
}

// connectRedis returns nil without error when no URL is configured.
func connectRedis(ctx context.Context, cfg config.RedisConfig) (*core.Redis, error) {
	if cfg.URL == "" {
		return nil, nil
	}
	return core.NewRedis(ctx, cfg)
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var handler slog.Handler

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
