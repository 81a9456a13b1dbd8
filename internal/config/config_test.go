package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "storefront.db", cfg.DBDSN)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 30*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Equal(t, 60, cfg.RateLimit)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("STOREFRONT_ADDR", ":9090")
	t.Setenv("STOREFRONT_DB_DSN", "test.db")
	t.Setenv("STOREFRONT_CACHE_TTL", "5m")
	t.Setenv("STOREFRONT_RATE_LIMIT", "10")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "test.db", cfg.DBDSN)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 10, cfg.RateLimit)
}
