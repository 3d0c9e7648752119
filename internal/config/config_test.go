package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "local", cfg.StorageBackend)
	assert.Equal(t, int64(5<<20), cfg.UploadMaxSize)
	assert.True(t, cfg.RateLimitEnabled)
	assert.Equal(t, "127.0.0.1:8080", cfg.HTTPAddr())
	assert.NoError(t, cfg.Validate())
}

func TestFromEnv_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestFromEnv_InvalidValues(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)

	t.Run("port", func(t *testing.T) {
		t.Setenv("HTTP_PORT", "eighty")
		_, err := FromEnv()
		assert.Error(t, err)
	})

	t.Run("duration", func(t *testing.T) {
		t.Setenv("SESSION_TTL", "one day")
		_, err := FromEnv()
		assert.Error(t, err)
	})

	t.Run("bool", func(t *testing.T) {
		t.Setenv("MINIO_USE_SSL", "maybe")
		_, err := FromEnv()
		assert.Error(t, err)
	})
}

func TestValidate_CollectsAllProblems(t *testing.T) {
	cfg := &Config{
		HTTPPort:       0,
		DatabaseDriver: "mysql",
		DatabaseURL:    "x",
		JWTSecret:      "short",
		SessionTTL:     time.Hour,
		StorageBackend: "minio",
		UploadMaxSize:  1,
		LogLevel:       "verbose",
		LogFormat:      "text",
	}

	err := cfg.Validate()
	require.Error(t, err)

	msg := err.Error()
	for _, want := range []string{"HTTP_PORT", "DATABASE_DRIVER", "JWT_SECRET", "MINIO_ENDPOINT", "LOG_LEVEL"} {
		assert.True(t, strings.Contains(msg, want), "expected %q in %q", want, msg)
	}
}
