package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLimits(t *testing.T) {
	limits, err := ParseLimits("http:100:60000, login:3:900000")
	require.NoError(t, err)
	require.Len(t, limits, 2)

	assert.Equal(t, "http", limits[0].Name)
	assert.Equal(t, uint64(100), limits[0].MaxRequests)
	assert.Equal(t, time.Minute, limits[0].Window)

	assert.Equal(t, "login", limits[1].Name)
	assert.Equal(t, uint64(3), limits[1].MaxRequests)
	assert.Equal(t, 15*time.Minute, limits[1].Window)
}

func TestParseLimits_Malformed(t *testing.T) {
	cases := []string{
		"",
		"http:100",
		"http:many:60000",
		"http:100:soon",
		":100:60000",
	}

	for _, raw := range cases {
		_, err := ParseLimits(raw)
		assert.Error(t, err, "raw=%q", raw)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Storage.Type)
	require.Len(t, cfg.RateLimiter.Limits, 1)
	assert.Equal(t, "http", cfg.RateLimiter.HTTPLimitType)
	assert.Equal(t, uint64(100), cfg.RateLimiter.Limits[0].MaxRequests)
	assert.Equal(t, time.Minute, cfg.RateLimiter.Limits[0].Window)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("STORAGE_TYPE", "redis")
	t.Setenv("REDIS_HOST", "redis.internal")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("LIMITS", "api:10:1000,burst:50:5000")
	t.Setenv("HTTP_LIMIT_TYPE", "burst")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "redis", cfg.Storage.Type)
	assert.Equal(t, "redis.internal", cfg.Storage.Redis.Host)
	assert.Equal(t, 6380, cfg.Storage.Redis.Port)
	assert.Equal(t, "burst", cfg.RateLimiter.HTTPLimitType)
	require.Len(t, cfg.RateLimiter.Limits, 2)
	assert.Equal(t, "api", cfg.RateLimiter.Limits[0].Name)
	assert.Equal(t, 5*time.Second, cfg.RateLimiter.Limits[1].Window)
}

func TestLoad_InvalidRedisPort(t *testing.T) {
	t.Setenv("REDIS_PORT", "not-a-port")

	_, err := Load()
	require.Error(t, err)
}
