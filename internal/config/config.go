// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// defaultEnvFile is read before parsing when present. ENV_FILE overrides it.
const defaultEnvFile = ".env"

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"8080"`

	// Database (PostgreSQL)
	DatabaseURL    string        `env:"DATABASE_URL,required,notEmpty"`
	StoreTimeout   time.Duration `env:"STORE_TIMEOUT" envDefault:"3s"`
	MigrateOnStart bool          `env:"MIGRATE_ON_START" envDefault:"false"`

	// Cache (Redis). Empty disables the user cache and event stream.
	RedisURL      string        `env:"REDIS_URL"`
	CacheTTL      time.Duration `env:"CACHE_TTL" envDefault:"10m"`
	CacheFenceTTL time.Duration `env:"CACHE_FENCE_TTL" envDefault:"5s"`
	EventsEnabled bool          `env:"EVENTS_ENABLED" envDefault:"true"`

	// Role given to newly registered users
	DefaultRoleID int64 `env:"DEFAULT_ROLE_ID" envDefault:"1"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Request body size limit in bytes (default 1MB)
	MaxRequestBodySize int64 `env:"MAX_REQUEST_BODY_SIZE" envDefault:"1048576"`

	// Browser origins allowed to call the API. Empty disables CORS.
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// CacheEnabled reports whether a Redis URL was configured.
func (c *Config) CacheEnabled() bool {
	return c.RedisURL != ""
}

// PublishEvents reports whether lifecycle events go to the Redis stream.
func (c *Config) PublishEvents() bool {
	return c.CacheEnabled() && c.EventsEnabled
}

// Validate checks values the env tags cannot express.
func (c *Config) Validate() error {
	var errs []error

	if c.AppPort < 1 || c.AppPort > 65535 {
		errs = append(errs, fmt.Errorf("APP_PORT must be 1-65535, got %d", c.AppPort))
	}
	if c.StoreTimeout <= 0 {
		errs = append(errs, errors.New("STORE_TIMEOUT must be positive"))
	}
	if c.CacheEnabled() && c.CacheTTL <= 0 {
		errs = append(errs, errors.New("CACHE_TTL must be positive"))
	}
	// Refills of reads that started before a write must land inside the fence.
	if c.CacheEnabled() && c.CacheFenceTTL <= c.StoreTimeout {
		errs = append(errs, fmt.Errorf("CACHE_FENCE_TTL (%s) must exceed STORE_TIMEOUT (%s)", c.CacheFenceTTL, c.StoreTimeout))
	}
	if c.DefaultRoleID <= 0 {
		errs = append(errs, errors.New("DEFAULT_ROLE_ID must be positive"))
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("LOG_LEVEL %q is not one of debug, info, warn, error", c.LogLevel))
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		errs = append(errs, fmt.Errorf("LOG_FORMAT %q is not json or text", c.LogFormat))
	}
	if c.MaxRequestBodySize <= 0 {
		errs = append(errs, errors.New("MAX_REQUEST_BODY_SIZE must be positive"))
	}

	return errors.Join(errs...)
}

// Load parses environment variables and returns a validated Config.
// Variables from the env file fill in only what the process environment
// does not set. Returns an error if required variables are missing.
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func loadEnvFile() error {
	path := os.Getenv("ENV_FILE")
	if path == "" {
		path = defaultEnvFile
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	return nil
}
