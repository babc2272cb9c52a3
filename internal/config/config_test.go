package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_PORT", "")
	t.Setenv("HTTP_RETRY_MAX_ATTEMPTS", "")
	t.Setenv("SERVICENOW_BASE_URL", "https://snow.example.com/")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:3978", cfg.App.Addr())
	assert.Equal(t, 3, cfg.Retry.MaxAttempts)
	assert.Equal(t, "https://snow.example.com", cfg.ServiceNow.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HTTP_RETRY_BASE_DELAY_MS", "50")
	t.Setenv("POSTGRES_RUN_MIGRATIONS", "false")
	t.Setenv("GRAPH_MEMBER_CACHE_TTL_SECONDS", "notanumber")
	t.Setenv("BOT_CONFERENCE_BRIDGES", "711752242, ,100")
	t.Setenv("REDIS_KEY_PREFIX", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 50*time.Millisecond, cfg.Retry.BaseDelay())
	assert.False(t, cfg.Postgres.RunMigrations)
	assert.Equal(t, 300*time.Second, cfg.Graph.MemberCacheDuration())
	assert.Equal(t, []string{"711752242", "100"}, cfg.Bot.Bridges)
	assert.Equal(t, "bart", cfg.Redis.KeyPrefix)
}

func TestLoadRejectsBadRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "x")
	_, err := Load()
	assert.Error(t, err)
}
