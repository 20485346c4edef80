package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/order-desk/internal/database"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("APP_PORT", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, database.DriverSQLite, cfg.DBDriver)
	assert.Equal(t, "db.sqlite", cfg.DBPath)
	assert.Equal(t, "8080", cfg.Port)
	assert.False(t, cfg.EventsEnabled)
	assert.Equal(t, database.SQLiteDSN("db.sqlite"), cfg.DSN())
}

func TestLoadMySQL(t *testing.T) {
	t.Setenv("DB_DRIVER", "MySQL")
	t.Setenv("DB_USER", "desk")
	t.Setenv("DB_PASS", "secret")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PORT", "3307")
	t.Setenv("DB_NAME", "orders")
	t.Setenv("EVENTS_ENABLED", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, database.DriverMySQL, cfg.DBDriver)
	assert.True(t, cfg.EventsEnabled)
	assert.Equal(t, database.MySQLDSN("desk", "secret", "db", "3307", "orders"), cfg.DSN())
}

func TestValidate(t *testing.T) {
	cases := map[string]Config{
		"unknown driver": {DBDriver: "postgres", Port: "1"},
		"no sqlite path": {DBDriver: database.DriverSQLite, Port: "1"},
		"no mysql user":  {DBDriver: database.DriverMySQL, DBName: "orders", Port: "1"},
		"no mysql name":  {DBDriver: database.DriverMySQL, DBUser: "desk", Port: "1"},
		"no port":        {DBDriver: database.DriverSQLite, DBPath: "x.db"},
	}
	for name, cfg := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, cfg.Validate())
		})
	}
	assert.NoError(t, Config{DBDriver: database.DriverSQLite, DBPath: "x.db", Port: "1"}.Validate())
}

func TestLoadCacheConfig(t *testing.T) {
	t.Setenv("CACHE_METHODS", "get, head")
	t.Setenv("CACHE_TTL", "2m")
	t.Setenv("CACHE_ENABLED", "false")

	cfg := LoadCacheConfig()
	assert.False(t, cfg.Enabled)
	assert.Equal(t, map[string]bool{"GET": true, "HEAD": true}, cfg.Methods)
	assert.Equal(t, 2*time.Minute, cfg.TTL)
	assert.Equal(t, "cache", cfg.Prefix)
	assert.Equal(t, 1<<20, cfg.MaxBodyBytes)
}

func TestLoadRateLimitConfig(t *testing.T) {
	t.Setenv("RATE_LIMIT_BURST", "5")
	t.Setenv("RATE_LIMIT_REFILL_EVERY", "2s")
	t.Setenv("RATE_LIMIT_TTL", "1s")

	cfg := LoadRateLimitConfig()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 5, cfg.Capacity)
	assert.Equal(t, 1, cfg.RefillTokens)
	assert.Equal(t, 2*time.Second, cfg.RefillInterval)
	assert.Equal(t, 10*time.Second, cfg.TTL)
	assert.Equal(t, "ip_route", cfg.KeyStrategy)
}

func TestLoadRedisConfig(t *testing.T) {
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("REDIS_DB", "2")

	cfg := LoadRedisConfig()
	assert.Equal(t, "cache:6380", cfg.Addr)
	assert.Equal(t, 2, cfg.DB)
	assert.False(t, cfg.TLS)
}
