package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, `
api:
  base_url: https://api.moringaconnect.example/
  timeout: 10s
  rate_per_second: 5
store:
  request_fencing: true
storage:
  backend: file
  dir: /tmp/mc-test
refresh_schedule: "@every 5m"
metrics_addr: ":9180"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://api.moringaconnect.example/", cfg.API.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.API.Timeout)
	assert.Equal(t, 5.0, cfg.API.RatePerSecond)
	assert.True(t, cfg.Store.RequestFencing)
	assert.Equal(t, BackendFile, cfg.Storage.Backend)
	assert.Equal(t, "/tmp/mc-test", cfg.Storage.Dir)
	assert.Equal(t, "@every 5m", cfg.RefreshSchedule)
	assert.Equal(t, ":9180", cfg.MetricsAddr)
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
api:
  base_url: https://api.example
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
	assert.Equal(t, BackendFile, cfg.Storage.Backend)
	assert.Equal(t, ".moringaconnect", cfg.Storage.Dir)
	assert.False(t, cfg.Store.RequestFencing)
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
api:
  base_url: https://file.example
storage:
  backend: file
`)
	t.Setenv("MORINGA_API_BASE_URL", "https://env.example")
	t.Setenv("MORINGA_REQUEST_FENCING", "true")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://env.example", cfg.API.BaseURL)
	assert.True(t, cfg.Store.RequestFencing)
}

func TestValidation(t *testing.T) {
	t.Run("base url required", func(t *testing.T) {
		_, err := Load(writeConfig(t, `storage: {backend: file}`))
		assert.Error(t, err)
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, err := Load(writeConfig(t, `
api: {base_url: https://api.example}
storage: {backend: s3}
`))
		assert.Error(t, err)
	})

	t.Run("redis needs addr", func(t *testing.T) {
		_, err := Load(writeConfig(t, `
api: {base_url: https://api.example}
storage: {backend: redis}
`))
		assert.Error(t, err)
	})

	t.Run("redis with addr", func(t *testing.T) {
		cfg, err := Load(writeConfig(t, `
api: {base_url: https://api.example}
storage: {backend: redis, redis_addr: "localhost:6379"}
`))
		require.NoError(t, err)
		assert.Equal(t, BackendRedis, cfg.Storage.Backend)
	})
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
