package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/leaveledger/internal/infrastructure/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("STORAGE_DRIVER", "")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.NotEmpty(t, cfg.DatabaseURL)
	assert.Empty(t, cfg.JWTSecret)
	assert.False(t, cfg.AuthEnabled)
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, config.StoragePostgres, cfg.StorageDriver)
	assert.Equal(t, "migrations", cfg.MigrationsPath)
	assert.Equal(t, 30*time.Second, cfg.DatabaseTimeout)
	assert.Equal(t, 5*time.Second, cfg.DatabaseLockTimeout)
	assert.Equal(t, time.Minute, cfg.AutoApprovalInterval)
	assert.Equal(t, 15*time.Minute, cfg.EmployeeCacheTTL)
	assert.Equal(t, 168*time.Hour, cfg.OutboxRetention)
	assert.Equal(t, time.Hour, cfg.ReconcileInterval)
}

func TestLoadOverrides(t *testing.T) {
	env := map[string]string{
		"DATABASE_URL":           "postgres://example",
		"REDIS_URL":              "redis://example",
		"HTTP_PORT":              "9090",
		"DATABASE_TIMEOUT":       "45s",
		"DATABASE_LOCK_TIMEOUT":  "750ms",
		"JWT_SECRET":             "top-secret",
		"AUTH_ENABLED":           "true",
		"STORAGE_DRIVER":         "memory",
		"SEED_FILE":              "/etc/leave/seed.json",
		"EMPLOYEE_DIRECTORY_URL": "http://hr.internal",
		"AUTO_APPROVAL_INTERVAL": "0s",
		"RATE_LIMIT_RPS":         "2.5",
		"RECONCILE_INTERVAL":     "0s",
	}
	for k, v := range env {
		t.Setenv(k, v)
	}

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres://example", cfg.DatabaseURL)
	assert.Equal(t, "redis://example", cfg.RedisURL)
	assert.Equal(t, "9090", cfg.HTTPPort)
	assert.Equal(t, 45*time.Second, cfg.DatabaseTimeout)
	assert.Equal(t, 750*time.Millisecond, cfg.DatabaseLockTimeout)
	assert.Equal(t, "top-secret", cfg.JWTSecret)
	assert.True(t, cfg.AuthEnabled)
	assert.Equal(t, config.StorageMemory, cfg.StorageDriver)
	assert.Equal(t, "/etc/leave/seed.json", cfg.SeedFile)
	assert.Equal(t, "http://hr.internal", cfg.EmployeeDirectoryURL)
	assert.Zero(t, cfg.AutoApprovalInterval)
	assert.Equal(t, 2.5, cfg.RateLimitRPS)
	assert.Zero(t, cfg.ReconcileInterval)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "duration", env: map[string]string{"HTTP_READ_TIMEOUT": "not-a-duration"}},
		{name: "storage driver", env: map[string]string{"STORAGE_DRIVER": "sqlite"}},
		{name: "negative rate", env: map[string]string{"RATE_LIMIT_RPS": "-1"}},
		{name: "auth without secret", env: map[string]string{"AUTH_ENABLED": "true", "JWT_SECRET": ""}},
		{name: "min over max conns", env: map[string]string{"DATABASE_MIN_CONNS": "10", "DATABASE_MAX_CONNS": "4"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := config.Load()
			assert.Error(t, err)
		})
	}
}
