package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "3001", cfg.Port)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Contains(t, cfg.Database.DSN, "tcp(localhost:3306)/conectabem")
	assert.Contains(t, cfg.Database.DSN, "parseTime=true")
	assert.Equal(t, 5*time.Second, cfg.LockTTL)
	assert.Equal(t, 10*time.Minute, cfg.OTP.TTL)
	assert.Equal(t, 6, cfg.OTP.Length)
	assert.Empty(t, cfg.Redis.Addr)
	assert.False(t, cfg.EnableCleanup)
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfigPostgres(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_NAME", "booking")
	t.Setenv("DB_USERNAME", "app")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "5432", cfg.Database.Port)
	assert.Contains(t, cfg.Database.DSN, "host=db port=5432 user=app")
	assert.Contains(t, cfg.Database.DSN, "dbname=booking sslmode=disable")
}

func TestLoadConfigExplicitDSNWins(t *testing.T) {
	t.Setenv("DB_DSN", "user:pass@tcp(mysql:3306)/other?parseTime=true")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "user:pass@tcp(mysql:3306)/other?parseTime=true", cfg.Database.DSN)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("LOCK_TTL", "2s")
	t.Setenv("ENABLE_CLEANUP", "true")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, 2*time.Second, cfg.LockTTL)
	assert.True(t, cfg.EnableCleanup)
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"unknown driver", "DB_DRIVER", "sqlite"},
		{"bad jwt expiry", "JWT_EXPIRATION_MINUTES", "soon"},
		{"bad lock ttl", "LOCK_TTL", "five"},
		{"bad otp length", "OTP_LENGTH", "2"},
		{"bad cleanup flag", "ENABLE_CLEANUP", "maybe"},
		{"bad redis db", "REDIS_DB", "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := LoadConfig()
			assert.ErrorContains(t, err, tt.key)
		})
	}
}
