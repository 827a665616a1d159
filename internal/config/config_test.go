package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"HOST", "PORT", "APP_ENV", "APP_VERSION", "LOG_LEVEL", "SHUTDOWN_TIMEOUT",
		"WALKSCORE_API_KEY", "WALKSCORE_BASE_URL", "WALKSCORE_TIMEOUT",
		"WALKSCORE_MAX_BODY_BYTES", "METRICS_ENABLED",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()

	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.Equal(t, "3001", cfg.Port)
	assert.Equal(t, "dev", cfg.Environment)
	assert.Equal(t, "dev", cfg.Version)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, DefaultWalkScoreURL, cfg.WalkScoreBaseURL)
	assert.Equal(t, 10*time.Second, cfg.WalkScoreTimeout)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, int64(1<<20), cfg.WalkScoreMaxBodyBytes)
	assert.True(t, cfg.MetricsEnabled)
	assert.Empty(t, cfg.WalkScoreAPIKey)
	assert.Equal(t, "0.0.0.0:3001", cfg.Addr())
}

func TestLoad_FromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOST", "localhost")
	t.Setenv("PORT", "8080")
	t.Setenv("WALKSCORE_API_KEY", "test-key")
	t.Setenv("WALKSCORE_BASE_URL", "http://127.0.0.1:9999/score")
	t.Setenv("WALKSCORE_TIMEOUT", "3")
	t.Setenv("METRICS_ENABLED", "false")
	t.Setenv("APP_ENV", "production")

	cfg := Load()

	assert.Equal(t, "localhost:8080", cfg.Addr())
	assert.Equal(t, "test-key", cfg.WalkScoreAPIKey)
	assert.Equal(t, "http://127.0.0.1:9999/score", cfg.WalkScoreBaseURL)
	assert.Equal(t, 3*time.Second, cfg.WalkScoreTimeout)
	assert.False(t, cfg.MetricsEnabled)
	assert.True(t, cfg.IsProduction())
}

func TestLoad_InvalidNumbersFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("WALKSCORE_TIMEOUT", "soon")
	t.Setenv("SHUTDOWN_TIMEOUT", "-5")

	cfg := Load()

	assert.Equal(t, 10*time.Second, cfg.WalkScoreTimeout)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
}

func TestValidate(t *testing.T) {
	cfg := &Config{}
	require.ErrorIs(t, cfg.Validate(), ErrMissingAPIKey)

	cfg.WalkScoreAPIKey = "   "
	require.ErrorIs(t, cfg.Validate(), ErrMissingAPIKey)

	cfg.WalkScoreAPIKey = "abc123"
	require.NoError(t, cfg.Validate())
}

func TestSlogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		cfg := &Config{LogLevel: in}
		assert.Equal(t, want, cfg.SlogLevel(), "level %q", in)
	}
}
