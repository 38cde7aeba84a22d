package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "https://api.tripo3d.ai/v2/openapi", cfg.Client.BaseURL)
	assert.Equal(t, 2*time.Second, cfg.Poll.Interval)
	assert.Equal(t, 3, cfg.Download.Concurrency)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tripo.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
client:
  api_key: file-key
  timeout: 45s
poll:
  interval: 5s
download:
  dir: /tmp/models
log:
  level: debug
  development: true
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "file-key", cfg.Client.APIKey)
	assert.Equal(t, 45*time.Second, cfg.Client.Timeout)
	assert.Equal(t, 5*time.Second, cfg.Poll.Interval)
	assert.Equal(t, "/tmp/models", cfg.Download.Dir)
	assert.True(t, cfg.Log.Development)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/no/such/config.yaml")
	require.Error(t, err)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tripo.yaml")
	require.NoError(t, os.WriteFile(path, []byte("client:\n  api_key: file-key\n"), 0o644))

	t.Setenv(EnvAPIKey, "env-key")
	t.Setenv(EnvPollInterval, "250ms")
	t.Setenv(EnvDownloadConcurrency, "8")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env-key", cfg.Client.APIKey)
	assert.Equal(t, 250*time.Millisecond, cfg.Poll.Interval)
	assert.Equal(t, 8, cfg.Download.Concurrency)
}

func TestFromEnv(t *testing.T) {
	t.Setenv(EnvAPIKey, "only-env")
	t.Setenv(EnvBaseURL, "https://mock.example.com")

	cfg := FromEnv()
	assert.Equal(t, "only-env", cfg.Client.APIKey)
	assert.Equal(t, "https://mock.example.com", cfg.Client.BaseURL)
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(LogConfig{Level: "warn"})
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))

	_, err = NewLogger(LogConfig{Level: "noisy"})
	require.Error(t, err)
}
