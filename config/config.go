package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// DefaultJWTSecret is only acceptable outside production.
const DefaultJWTSecret = "velora-local-development-secret-change-me"

// Store drivers selected by the DATABASE_URL scheme.
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

var errDefaultSecret = errors.New("JWT_SECRET must be set in production")

type Config struct {
	Env      string `env:"ENV" envDefault:"local" validate:"required,oneof=local staging production"`
	Port     string `env:"PORT" envDefault:"5000" validate:"required"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`

	DatabaseURL   string `env:"DATABASE_URL" envDefault:"mongodb://localhost:27017" validate:"required"`
	MongoDatabase string `env:"MONGO_DATABASE" envDefault:"velora" validate:"required"`

	MetricsPort           string `env:"METRICS_PORT" envDefault:"9090"`
	HealthRefreshSchedule string `env:"HEALTH_REFRESH_SCHEDULE" envDefault:"@every 30s" validate:"required"`

	JWTSecret string `env:"JWT_SECRET" envDefault:"velora-local-development-secret-change-me" validate:"required,min=32"`
	Locale    string `env:"LOCALE" envDefault:"ru" validate:"oneof=ru en"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"https://velora-client-wheat.vercel.app,http://localhost:3000" validate:"min=1,dive,url"`

	// TrustedProxies lists proxy IPs/CIDRs whose X-Forwarded-For is believed.
	// Empty means the client address is always the TCP peer.
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:"," validate:"dive,ip|cidr"`

	RedisURL           string `env:"REDIS_URL" validate:"omitempty,url"`
	RateLimitPerMinute int    `env:"RATE_LIMIT_PER_MINUTE" envDefault:"30" validate:"min=1,max=10000"`

	ResendAPIKey string `env:"RESEND_API_KEY" validate:"required_if=Env production,required_if=Env staging"`
	ResendFrom   string `env:"RESEND_FROM"    validate:"required_if=Env production,required_if=Env staging"`
}

// Load reads an optional .env file, then the environment.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()
	return parse()
}

func parse() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if cfg.Env == "production" && cfg.JWTSecret == DefaultJWTSecret {
		return nil, fmt.Errorf("invalid config: %w", errDefaultSecret)
	}

	if _, err := cfg.StoreDriver(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
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

// ExposeErrorDetails reports whether 500 responses may carry error text.
func (c *Config) ExposeErrorDetails() bool {
	return c.Env != "production"
}

// StoreDriver picks the persistence backend from the DATABASE_URL scheme.
func (c *Config) StoreDriver() (string, error) {
	u, err := url.Parse(c.DatabaseURL)
	if err != nil {
		return "", fmt.Errorf("parse DATABASE_URL: %w", err)
	}

	switch strings.ToLower(u.Scheme) {
	case "mongodb", "mongodb+srv":
		return DriverMongo, nil
	case "postgres", "postgresql":
		return DriverPostgres, nil
	case "memory":
		return DriverMemory, nil
	default:
		return "", fmt.Errorf("unsupported DATABASE_URL scheme %q", u.Scheme)
	}
}
