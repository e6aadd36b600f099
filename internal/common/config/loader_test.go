package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfigFile(t, `
app:
  name: adgen-orchestrator
  environment: test
backend:
  base_url: https://api.example.com
  api_key: yaml-key
polling:
  interval: 1000
  max_attempts: 30
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com", cfg.Backend.BaseURL)
	assert.Equal(t, "yaml-key", cfg.Backend.APIKey)
	assert.Equal(t, 1000, cfg.Polling.Interval)
	assert.Equal(t, 30, cfg.Polling.MaxAttempts)
}

func TestLoadFromFile_AppliesDefaults(t *testing.T) {
	path := writeConfigFile(t, `
backend:
  base_url: https://api.example.com
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, ":9402", cfg.App.MetricsAddr)
	assert.Equal(t, 2000, cfg.Polling.Interval)
	assert.Equal(t, 150, cfg.Polling.MaxAttempts)
	assert.Equal(t, 300000, cfg.Polling.Timeout)
	assert.Equal(t, int64(10<<20), cfg.Upload.MaxSizeBytes)
	assert.Contains(t, cfg.Upload.AllowedTypes, "image/png")
	assert.Equal(t, "configs/templates.json", cfg.Templates.RegistryPath)
}

func TestLoadFromFile_Validation(t *testing.T) {
	t.Run("missing backend url", func(t *testing.T) {
		path := writeConfigFile(t, `
app:
  name: adgen-orchestrator
`)
		_, err := LoadFromFile(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "backend.base_url")
	})

	t.Run("interval below floor", func(t *testing.T) {
		path := writeConfigFile(t, `
backend:
  base_url: https://api.example.com
polling:
  interval: 100
`)
		_, err := LoadFromFile(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "polling.interval")
	})

	t.Run("email enabled without sender", func(t *testing.T) {
		path := writeConfigFile(t, `
backend:
  base_url: https://api.example.com
notifications:
  email:
    enabled: true
  aws:
    region: us-east-1
`)
		_, err := LoadFromFile(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "from_email")
	})
}

func TestGetDuration(t *testing.T) {
	assert.Equal(t, 2*time.Second, GetDuration(2000))
	assert.Equal(t, time.Duration(0), GetDuration(0))
}

func TestPostgresGetDSN(t *testing.T) {
	p := PostgresConfig{
		Host:     "localhost",
		Port:     5432,
		Database: "adgen",
		User:     "app",
		Password: "secret",
		SSLMode:  "disable",
	}
	assert.Equal(t,
		"host=localhost port=5432 user=app password=secret dbname=adgen sslmode=disable",
		p.GetDSN())
}
