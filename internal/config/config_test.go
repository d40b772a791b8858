package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	for _, key := range []string{"STORAGE_BACKEND", "STORAGE_TIMEOUT", "SESSION_TTL", "AUTH_DEFAULT_PASSWORD", "SERVER_HOST", "SERVER_PORT"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, BackendBolt, cfg.Storage.Backend)
	assert.Equal(t, "123456", cfg.Auth.DefaultPassword)
	assert.Equal(t, 5*time.Second, cfg.Storage.Timeout)
	assert.Equal(t, time.Duration(0), cfg.JWT.TTL)
	assert.Equal(t, "127.0.0.1:8080", cfg.Address())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("STORAGE_BACKEND", "Memory")
	t.Setenv("STORAGE_TIMEOUT", "2")
	t.Setenv("SESSION_TTL", "24h")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, BackendMemory, cfg.Storage.Backend)
	assert.Equal(t, 2*time.Second, cfg.Storage.Timeout)
	assert.Equal(t, 24*time.Hour, cfg.JWT.TTL)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"unknown backend", func(c *Config) { c.Storage.Backend = "sqlite" }},
		{"missing secret", func(c *Config) { c.JWT.Secret = "" }},
		{"empty default password", func(c *Config) { c.Auth.DefaultPassword = "" }},
		{"backup without bolt", func(c *Config) {
			c.Backup.Enabled = true
			c.Storage.Backend = BackendRedis
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				Storage: StorageConfig{Backend: BackendBolt},
				JWT:     JWTConfig{Secret: "s"},
				Auth:    AuthConfig{DefaultPassword: "123456"},
			}
			require.NoError(t, cfg.Validate())
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadPostgres(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("STORAGE_BACKEND", "postgres")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_USER", "app")
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("DB_NAME", "clinic")
	t.Setenv("DB_PORT", "")
	t.Setenv("DB_SSLMODE", "")
	t.Setenv("RUN_MIGRATIONS", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, BackendPostgres, cfg.Storage.Backend)
	assert.False(t, cfg.Migrations.Enabled)
	assert.Equal(t, "postgres://app:pw@db:5432/clinic?sslmode=disable", cfg.Database.DSN())

	cfg.Database.URL = "postgres://override/db"
	assert.Equal(t, "postgres://override/db", cfg.Database.DSN())
}
