package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/storepulse")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.APIHost)
	assert.Equal(t, 8000, cfg.APIPort)
	assert.Equal(t, "development", cfg.Environment)
	assert.False(t, cfg.IsProduction())

	assert.Equal(t, "http://localhost:8500", cfg.OracleURL)
	assert.Equal(t, 10*time.Second, cfg.OracleTimeout)
	assert.Equal(t, 256, cfg.BroadcastQueueSize)
	assert.Equal(t, 64, cfg.WSSendBuffer)

	assert.True(t, cfg.RateLimitEnabled)
	assert.True(t, cfg.CacheEnabled)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowOrigins)

	assert.Equal(t, 30*time.Minute, cfg.RetentionSweepInterval)
	assert.Equal(t, 30*24*time.Hour, cfg.RetentionMaxAge)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/storepulse")
	t.Setenv("API_PORT", "9090")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("ORACLE_URL", "http://oracle:9000")
	t.Setenv("ORACLE_TIMEOUT_SECONDS", "3")
	t.Setenv("BROADCAST_QUEUE_SIZE", "32")
	t.Setenv("RATE_LIMIT_ENABLED", "false")
	t.Setenv("CORS_ALLOW_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.APIPort)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "http://oracle:9000", cfg.OracleURL)
	assert.Equal(t, 3*time.Second, cfg.OracleTimeout)
	assert.Equal(t, 32, cfg.BroadcastQueueSize)
	assert.False(t, cfg.RateLimitEnabled)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowOrigins)
}

func TestEnvHelpersIgnoreMalformedValues(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/storepulse")
	t.Setenv("API_PORT", "not-a-number")
	t.Setenv("DEBUG", "not-a-bool")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8000, cfg.APIPort)
	assert.False(t, cfg.Debug)
}
