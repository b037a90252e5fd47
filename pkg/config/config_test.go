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

	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
	assert.Equal(t, 15*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.Equal(t, "disable", cfg.DB.SSLMode)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.Approval.Policy)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("DB_PASSWORD", "p@ss/word")
	t.Setenv("DB_NAME", "ladle_test")
	t.Setenv("APPROVAL_POLICY", "quantity < 100.0")
	t.Setenv("HTTP_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, "quantity < 100.0", cfg.Approval.Policy)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.HTTP.AllowedOrigins)

	// special characters in the password must survive DSN construction
	dsn := cfg.DB.ConnectionString()
	assert.Contains(t, dsn, "ladle_test")
	assert.NotContains(t, dsn, "p@ss/word")
}

func TestDatabaseURLWinsOverParts(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/ladle?sslmode=require")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://u:p@db:5432/ladle?sslmode=require", cfg.DB.ConnectionString())
}

func TestLoadRejectsInvalidPort(t *testing.T) {
	t.Setenv("HTTP_PORT", "70000")

	_, err := Load()
	require.Error(t, err)
}
