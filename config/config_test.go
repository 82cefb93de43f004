package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 50, cfg.Query.DefaultLimit)
	assert.Equal(t, 100, cfg.Query.MaxLimit)
	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, "localhost:6379", cfg.RedisAddress())
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("QUERY_DEFAULT_LIMIT", "20")
	t.Setenv("QUERY_MAX_LIMIT", "40")
	t.Setenv("WEBHOOK_TIMEOUT", "3s")
	t.Setenv("APP_ALLOWED_ORIGINS", "https://a.dev, https://b.dev,")
	t.Setenv("REDIS_ENABLED", "not-a-bool")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 20, cfg.Query.DefaultLimit)
	assert.Equal(t, 40, cfg.Query.MaxLimit)
	assert.Equal(t, 3*time.Second, cfg.Webhook.Timeout)
	assert.Equal(t, []string{"https://a.dev", "https://b.dev"}, cfg.App.AllowedOrigins)
	assert.True(t, cfg.Redis.Enabled)
}

func TestLoadConfig_RejectsNonPositiveMaxLimit(t *testing.T) {
	t.Setenv("QUERY_MAX_LIMIT", "0")
	_, err := LoadConfig()
	assert.Error(t, err)
}
