// Package main is the entrypoint for the vinylshop API server.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/vinylshop/vinylshop/internal/cache"
	"github.com/vinylshop/vinylshop/internal/config"
	"github.com/vinylshop/vinylshop/internal/events"
	"github.com/vinylshop/vinylshop/internal/handler"
	"github.com/vinylshop/vinylshop/internal/metrics"
	"github.com/vinylshop/vinylshop/internal/middleware"
	"github.com/vinylshop/vinylshop/internal/migrations"
	"github.com/vinylshop/vinylshop/internal/repository"
	"github.com/vinylshop/vinylshop/internal/server"
	"github.com/vinylshop/vinylshop/internal/service"
)

func main() {
	if err := run(context.Background()); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := initLogger(cfg)

	if cfg.MigrateOnStart {
		if err := migrations.Run(ctx, cfg.DatabaseURL); err != nil {
			logger.Error("failed to apply migrations",
				slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			)
			return errStartup
		}
		logger.Info("migrations applied")
	}

	// Initialize database
	repo, err := repository.New(ctx, cfg.DatabaseURL, cfg.StoreTimeout)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		return errStartup
	}
	logger.Info("connected to database", "store_timeout", cfg.StoreTimeout)

	metricsRecorder := metrics.NewNoop()
	userDeps := service.UserDeps{
		Users:         repo.Users(),
		Metrics:       metricsRecorder,
		Logger:        logger,
		DefaultRoleID: cfg.DefaultRoleID,
	}
	var readyCache handler.HealthChecker

	// Initialize cache (optional)
	var cacheClient *cache.Cache
	if cfg.CacheEnabled() {
		cacheClient, err = cache.New(ctx, cfg.RedisURL, cfg.CacheTTL)
		if err != nil {
			logger.Error(
				"failed to connect to Redis",
				slog.String("error", sanitizeError(err, cfg.RedisURL)),
				slog.String("redis_url", redactURL(cfg.RedisURL)),
			)
			repo.Close()
			return errStartup
		}
		cacheClient.WithFenceTTL(cfg.CacheFenceTTL)
		userDeps.Cache = cacheClient
		readyCache = cacheClient
		logger.Info("connected to Redis", "ttl", cfg.CacheTTL, "fence_ttl", cfg.CacheFenceTTL)
	} else {
		logger.Info("REDIS_URL not set, user cache disabled")
	}

	// Lifecycle events share the cache's Redis connection
	var publisher service.EventPublisher
	if cfg.PublishEvents() {
		publisher = events.NewPublisher(cacheClient.Client(), logger, metricsRecorder)
		userDeps.Events = publisher
		logger.Info("publishing events", "stream", events.StreamKey)
	}

	// Initialize services
	userService := service.NewUserService(userDeps)
	accountService := service.NewAccountService(repo.Accounts(), metricsRecorder, logger).WithEvents(publisher)

	// Initialize handlers
	h := handler.New()
	healthHandler := handler.NewHealthHandler(repo, readyCache)
	userHandler := handler.NewUserHandler(userService, logger)
	accountHandler := handler.NewAccountHandler(accountService, logger)

	r := setupRouter(h, healthHandler, userHandler, accountHandler, cfg, logger)

	srv := server.New(r, server.Options{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	srv.OnShutdown("postgres", func(context.Context) error {
		repo.Close()
		return nil
	})
	if cacheClient != nil {
		srv.OnShutdown("redis", func(context.Context) error {
			return cacheClient.Close()
		})
	}

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"cache", cfg.CacheEnabled(),
		"events", cfg.PublishEvents(),
	)

	return srv.Run(ctx)
}

// errStartup is returned after the cause has already been logged with
// secrets redacted.
var errStartup = errors.New("startup failed")

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h).With("service", "vinylshop")
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(
	h *handler.Handler,
	healthHandler *handler.HealthHandler,
	userHandler *handler.UserHandler,
	accountHandler *handler.AccountHandler,
	cfg *config.Config,
	logger *slog.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.SecureHeaders(cfg.IsDevelopment()))
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))

	// Probes
	r.Get("/healthz", healthHandler.Healthz)
	r.Get("/readyz", healthHandler.Readyz)
	r.Get("/", h.Hello)
	r.Get("/openapi.yaml", h.OpenAPI)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))

		r.Route("/users", func(r chi.Router) {
			r.Post("/", userHandler.Register)
			r.Get("/", userHandler.FindByEmail)
			r.Get("/{id}", userHandler.Get)
			r.Patch("/{id}", userHandler.Update)
			r.Delete("/{id}", userHandler.Delete)
			r.Post("/{id}/password", userHandler.ChangePassword)
			r.Post("/{id}/verify", userHandler.Verify)
		})

		r.Route("/accounts", func(r chi.Router) {
			r.Post("/", accountHandler.Open)
			r.Get("/", accountHandler.FindByEmail)
			r.Get("/{id}", accountHandler.Get)
			r.Patch("/{id}", accountHandler.Rename)
			r.Delete("/{id}", accountHandler.Close)
		})
	})

	// 404 and 405 handlers
	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	return r
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
