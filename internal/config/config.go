package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

// Config is the typed process configuration shared by every binary.
type Config struct {
	HTTPAddr        string
	StorageDriver   string
	PostgresDSN     string
	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	SessionTimezone *time.Location

	RedisAddr     string
	StatsCacheTTL time.Duration

	RabbitMQURL     string
	VoteEventsQueue string

	GoogleClientID    string
	GoogleRedirectURL string

	CORSOrigins  []string
	CookieDomain string
}

// Load reads an optional .env file and then the environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from the given lookup function.
func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Config{
		HTTPAddr:        valueOr(getenv("HTTP_ADDR"), "0.0.0.0:8080"),
		StorageDriver:   strings.ToLower(valueOr(getenv("STORAGE_DRIVER"), StoragePostgres)),
		PostgresDSN:     getenv("POSTGRES_DSN"),
		JWTSecret:       getenv("JWT_SECRET"),
		RedisAddr:       getenv("REDIS_ADDR"),
		RabbitMQURL:     getenv("RABBITMQ_URL"),
		VoteEventsQueue: valueOr(getenv("VOTE_EVENTS_QUEUE"), "vote.cast"),
		CookieDomain:    getenv("COOKIE_DOMAIN"),

		GoogleClientID:    getenv("GOOGLE_CLIENT_ID"),
		GoogleRedirectURL: getenv("GOOGLE_REDIRECT_URL"),
		CORSOrigins:       splitList(getenv("CORS_ORIGINS")),
	}

	var err error
	if cfg.AccessTokenTTL, err = durationOr(getenv, "ACCESS_TOKEN_TTL", 15*time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.RefreshTokenTTL, err = durationOr(getenv, "REFRESH_TOKEN_TTL", 7*24*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.StatsCacheTTL, err = durationOr(getenv, "STATS_CACHE_TTL", 5*time.Minute); err != nil {
		return Config{}, err
	}

	cfg.SessionTimezone, err = time.LoadLocation(valueOr(getenv("SESSION_TIMEZONE"), "UTC"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid SESSION_TIMEZONE: %w", err)
	}

	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET is required")
	}

	switch cfg.StorageDriver {
	case StorageMemory:
	case StoragePostgres:
		if cfg.PostgresDSN == "" {
			cfg.PostgresDSN = composeDSN(getenv)
		}
		if cfg.PostgresDSN == "" {
			return Config{}, errors.New("POSTGRES_DSN or POSTGRES_HOST/POSTGRES_DB is required")
		}
	default:
		return Config{}, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}

	return cfg, nil
}

// DSN composes a connection string from discrete parts, the way the
// deployment's POSTGRES_* variables are laid out.
func DSN(host, port, user, password, dbName string) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, password, host, port, dbName)
}

func composeDSN(getenv func(string) string) string {
	host, dbName := getenv("POSTGRES_HOST"), getenv("POSTGRES_DB")
	if host == "" || dbName == "" {
		return ""
	}
	return DSN(host, valueOr(getenv("POSTGRES_PORT"), "5432"), getenv("POSTGRES_USER"), getenv("POSTGRES_PASSWORD"), dbName)
}

func durationOr(getenv func(string) string, name string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(getenv(name))
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return d, nil
}

func valueOr(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return strings.TrimSpace(value)
}

func splitList(raw string) []string {
	var out []string
	for _, value := range strings.Split(raw, ",") {
		value = strings.TrimSpace(value)
		if value != "" {
			out = append(out, value)
		}
	}
	return out
}
