package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, 2, cfg.Wallet.SecurityLevel)
	assert.Equal(t, "http://localhost:14265", cfg.Ledger.NodeURL)
	assert.Equal(t, 30*time.Second, cfg.Ledger.Timeout)
	assert.Equal(t, "redis", cfg.MQ.Type)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
app:
  env: production
ledger:
  node_url: http://node.example:14265
  timeout: 5s
  cache_enabled: true
wallet:
  security_level: 3
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("LEDGER_RETRY_COUNT", "7")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.App.Env)
	assert.Equal(t, "http://node.example:14265", cfg.Ledger.NodeURL)
	assert.Equal(t, 5*time.Second, cfg.Ledger.Timeout)
	assert.True(t, cfg.Ledger.CacheEnabled)
	assert.Equal(t, 3, cfg.Wallet.SecurityLevel)
	assert.Equal(t, 7, cfg.Ledger.RetryCount)
}

func TestLoad_BrokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("app: [unclosed"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}
