package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Tests here use t.Setenv, so they cannot run in parallel.

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("JWT_SECRET_KEY", "jwt-secret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, int32(25), cfg.Database.MaxConns)
	assert.False(t, cfg.Database.AutoMigrate)
	assert.Equal(t, 8, cfg.Payroll.WorkerPoolSize)
	assert.Equal(t, 5*time.Minute, cfg.Payroll.BulkTimeout)
	assert.Equal(t, "9", cfg.Payroll.DoubleOvertimeWeeklyCap.String())
	assert.Equal(t, TaxSourceFile, cfg.Tax.Source)
	assert.Equal(t, "config/tax_tables.yaml", cfg.Tax.FilePath)
	assert.Equal(t, 15*time.Minute, cfg.Tax.ReloadInterval)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.App.AllowedOrigins)
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
}

func TestLoad_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DB_AUTO_MIGRATE", "true")
	t.Setenv("PAYROLL_WORKER_POOL_SIZE", "4")
	t.Setenv("PAYROLL_DOUBLE_OVERTIME_WEEKLY_CAP", "0")
	t.Setenv("TAX_TABLE_SOURCE", "database")
	t.Setenv("TAX_TABLE_RELOAD_INTERVAL", "0s")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.Database.AutoMigrate)
	assert.Equal(t, 4, cfg.Payroll.WorkerPoolSize)
	assert.True(t, cfg.Payroll.DoubleOvertimeWeeklyCap.IsZero())
	assert.Equal(t, TaxSourceDatabase, cfg.Tax.Source)
	assert.Equal(t, time.Duration(0), cfg.Tax.ReloadInterval)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.App.AllowedOrigins)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{name: "port", key: "DB_PORT", val: "five"},
		{name: "bulk timeout", key: "PAYROLL_BULK_TIMEOUT", val: "soon"},
		{name: "double cap", key: "PAYROLL_DOUBLE_OVERTIME_WEEKLY_CAP", val: "nine"},
		{name: "negative double cap", key: "PAYROLL_DOUBLE_OVERTIME_WEEKLY_CAP", val: "-1"},
		{name: "tax source", key: "TAX_TABLE_SOURCE", val: "s3"},
		{name: "workers above pool", key: "PAYROLL_WORKER_POOL_SIZE", val: "64"},
		{name: "log level", key: "LOG_LEVEL", val: "loud"},
		{name: "auto migrate", key: "DB_AUTO_MIGRATE", val: "maybe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(tt.key, tt.val)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingSecrets(t *testing.T) {
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("JWT_SECRET_KEY", "")

	_, err := Load()
	assert.ErrorContains(t, err, "JWT_SECRET_KEY")
}

func TestConfig_DatabaseURL(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{
		Host: "db", Port: 5433, User: "payroll", Password: "pw", Name: "nomina", SSLMode: "require",
	}}

	assert.Equal(t, "postgres://payroll:pw@db:5433/nomina?sslmode=require", cfg.DatabaseURL())
}
