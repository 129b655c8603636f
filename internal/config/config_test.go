package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "postgres://localhost/helpmemake")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, 5*time.Second, cfg.RollbackDelay)
	assert.Equal(t, 5, cfg.MutationMaxRetries)
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:5173"}, cfg.AllowedOrigins)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.False(t, cfg.Debug)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "postgres://localhost/helpmemake")
	t.Setenv("ROLLBACK_DELAY", "250ms")
	t.Setenv("APP_DEBUG", "true")
	t.Setenv("MESSAGE_RATE_LIMIT", "10")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 250*time.Millisecond, cfg.RollbackDelay)
	assert.True(t, cfg.Debug)
	assert.Equal(t, 10, cfg.MessageRateLimit)
}

func TestLoadRequiresDSN(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "postgres://localhost/helpmemake")
	cfg, err := Load()
	require.NoError(t, err)

	bad := *cfg
	bad.LogFormat = "xml"
	assert.Error(t, bad.Validate())

	bad = *cfg
	bad.RollbackDelay = 0
	assert.Error(t, bad.Validate())

	bad = *cfg
	bad.MutationMaxRetries = 0
	assert.Error(t, bad.Validate())
}
