package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("CONFIG_ENV", "test")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8081", cfg.Server.Port)
	assert.Equal(t, "single", cfg.Ledger.Mode)
	assert.Equal(t, "redis", cfg.Store.Driver)
	assert.Equal(t, "json", cfg.Store.Codec)
	assert.Equal(t, 2*time.Second, cfg.Store.Timeout)
	assert.Equal(t, 5*time.Minute, cfg.Auth.TimestampTolerance)
	assert.Empty(t, cfg.Auth.HMACSecret)
	assert.True(t, cfg.Metrics.Enabled)
}

func TestLoadConfig_EnvFileMergedOverBase(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "app-config.yaml", `
server:
  port: "9000"
store:
  driver: redis
  timeout: 1s
`)
	writeFile(t, dir, "staging.yaml", `
ledger:
  mode: multi
store:
  driver: sqlite
  dsn: file:balances.db
`)
	t.Setenv("CONFIG_ENV", "staging")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "multi", cfg.Ledger.Mode)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "file:balances.db", cfg.Store.DSN)
	assert.Equal(t, time.Second, cfg.Store.Timeout)
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	t.Setenv("CONFIG_ENV", "test")
	t.Setenv("PORT", "7000")
	t.Setenv("BALANCED_STORE_DRIVER", "memory")
	t.Setenv("BALANCED_AUTH_HMAC_SECRET", "s3cret")
	t.Setenv("BALANCED_STORE_KEY_PREFIX", "bal:")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "7000", cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Equal(t, "s3cret", cfg.Auth.HMACSecret)
	assert.Equal(t, "bal:", cfg.Store.KeyPrefix)
}

func TestLoadConfig_InvalidMode(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "test.yaml", "ledger:\n  mode: both\n")
	t.Setenv("CONFIG_ENV", "test")

	_, err := LoadConfig(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid ledger.mode")
}
