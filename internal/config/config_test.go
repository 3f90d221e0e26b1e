package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/2beens/gymlog/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `
[development]
backend_url = "http://localhost:9000/"
request_timeout = "5s"
sync_strategy = "reload"
log_level = "trace"
log_to_stdout = true

[production]
environment = "prod-eu"
backend_url = "https://gym.example.com"
logs_path = "/var/log/gymlog"
sentry_enabled = true
`

func TestParse(t *testing.T) {
	cfg, err := config.Parse("dev", testConfig)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000", cfg.BackendURL)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout.Duration)
	assert.Equal(t, "reload", cfg.SyncStrategy)
	assert.Equal(t, "trace", cfg.LogLevel)
	assert.True(t, cfg.LogToStdout)
	assert.Equal(t, "dev", cfg.Environment)

	cfg, err = config.Parse("production", testConfig)
	require.NoError(t, err)
	assert.Equal(t, "https://gym.example.com", cfg.BackendURL)
	assert.Zero(t, cfg.RequestTimeout.Duration)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "prod-eu", cfg.Environment)
	assert.True(t, cfg.SentryEnabled)
}

func TestParse_Errors(t *testing.T) {
	_, err := config.Parse("staging", testConfig)
	assert.EqualError(t, err, "unknown env: staging")

	_, err = config.Parse("prod", "[development]\nlog_level = \"debug\"\n")
	assert.EqualError(t, err, "no config for env: prod")

	_, err = config.Parse("dev", "[development]\nrequest_timeout = \"soon\"\n")
	assert.Error(t, err)

	_, err = config.Parse("dev", "[development]\nrequest_timeout = \"-1s\"\n")
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(testConfig), 0o600))

	cfg, err := config.Load("development", path)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000", cfg.BackendURL)

	_, err = config.Load("development", filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
