package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envOf(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv(envOf(map[string]string{
		"JWT_SECRET":   "secret",
		"POSTGRES_DSN": "postgres://u:p@db:5432/club?sslmode=disable",
	}))
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.HTTPAddr)
	assert.Equal(t, StoragePostgres, cfg.StorageDriver)
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.RefreshTokenTTL)
	assert.Equal(t, 5*time.Minute, cfg.StatsCacheTTL)
	assert.Equal(t, time.UTC, cfg.SessionTimezone)
	assert.Equal(t, "vote.cast", cfg.VoteEventsQueue)
	assert.Empty(t, cfg.CORSOrigins)
	assert.Empty(t, cfg.GoogleClientID)
}

func TestFromEnvComposesDSN(t *testing.T) {
	cfg, err := FromEnv(envOf(map[string]string{
		"JWT_SECRET":        "secret",
		"POSTGRES_HOST":     "db",
		"POSTGRES_USER":     "club",
		"POSTGRES_PASSWORD": "pw",
		"POSTGRES_DB":       "clubvote",
	}))
	require.NoError(t, err)
	assert.Equal(t, "postgres://club:pw@db:5432/clubvote?sslmode=disable", cfg.PostgresDSN)
}

func TestFromEnvParsesOverrides(t *testing.T) {
	cfg, err := FromEnv(envOf(map[string]string{
		"JWT_SECRET":          "secret",
		"STORAGE_DRIVER":      "Memory",
		"SESSION_TIMEZONE":    "America/Sao_Paulo",
		"STATS_CACHE_TTL":     "30s",
		"CORS_ORIGINS":        "http://a.test, ,http://b.test",
		"GOOGLE_CLIENT_ID":    "client.apps.googleusercontent.com",
		"GOOGLE_REDIRECT_URL": "https://club.example/app",
	}))
	require.NoError(t, err)

	assert.Equal(t, StorageMemory, cfg.StorageDriver)
	assert.Equal(t, "America/Sao_Paulo", cfg.SessionTimezone.String())
	assert.Equal(t, 30*time.Second, cfg.StatsCacheTTL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
	assert.Empty(t, cfg.PostgresDSN)
	assert.Equal(t, "client.apps.googleusercontent.com", cfg.GoogleClientID)
	assert.Equal(t, "https://club.example/app", cfg.GoogleRedirectURL)
}

func TestFromEnvErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing secret", map[string]string{"STORAGE_DRIVER": "memory"}},
		{"missing dsn", map[string]string{"JWT_SECRET": "s"}},
		{"bad driver", map[string]string{"JWT_SECRET": "s", "STORAGE_DRIVER": "sqlite"}},
		{"bad ttl", map[string]string{"JWT_SECRET": "s", "STORAGE_DRIVER": "memory", "ACCESS_TOKEN_TTL": "soon"}},
		{"negative ttl", map[string]string{"JWT_SECRET": "s", "STORAGE_DRIVER": "memory", "STATS_CACHE_TTL": "-1m"}},
		{"bad timezone", map[string]string{"JWT_SECRET": "s", "STORAGE_DRIVER": "memory", "SESSION_TIMEZONE": "Mars/Olympus"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromEnv(envOf(tt.env))
			assert.Error(t, err)
		})
	}
}
