package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.Store.Backend)
	assert.Equal(t, 10*time.Second, cfg.Client.StaleTime)
	assert.Equal(t, 5*time.Second, cfg.Client.PollInterval)
	assert.Equal(t, 10*time.Second, cfg.Client.MutationTimeout)
	assert.Equal(t, 5*time.Minute, cfg.Client.VisitorRefresh)
	assert.Equal(t, 3, cfg.Client.VisitorAttempts)
	assert.Equal(t, []string{"events/all", "blogs/all"}, cfg.Client.WatchKeys)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("STORE_BACKEND", "redis")
	t.Setenv("QUERY_STALE_TIME", "30s")
	t.Setenv("WATCH_KEYS", "talents/all, events/status/upcoming ,")
	t.Setenv("REDIS_DB", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "redis", cfg.Store.Backend)
	assert.Equal(t, 30*time.Second, cfg.Client.StaleTime)
	assert.Equal(t, []string{"talents/all", "events/status/upcoming"}, cfg.Client.WatchKeys)
	assert.Equal(t, 0, cfg.Redis.DB)
}

func TestValidate(t *testing.T) {
	t.Setenv("STORE_BACKEND", "mongo")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("STORE_BACKEND", "postgres")
	t.Setenv("APP_ENV", "production")
	_, err = Load()
	assert.ErrorContains(t, err, "JWT_SECRET")

	t.Setenv("JWT_SECRET", "s3cr3t")
	_, err = Load()
	assert.ErrorContains(t, err, "ADMIN_PASSWORD")

	t.Setenv("ADMIN_PASSWORD", "better-password")
	_, err = Load()
	assert.NoError(t, err)
}

func TestLoadDatabaseConfig(t *testing.T) {
	t.Setenv("DB_PORT", "6543")
	t.Setenv("DB_RETRY_DELAY", "250ms")

	cfg, err := LoadDatabaseConfig()
	require.NoError(t, err)
	assert.Equal(t, 6543, cfg.Port)
	assert.Equal(t, 250*time.Millisecond, cfg.RetryDelay)

	t.Setenv("DB_CONNECT_TIMEOUT", "soon")
	_, err = LoadDatabaseConfig()
	assert.Error(t, err)
}
