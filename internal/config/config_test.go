package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfigFileDefaults(t *testing.T) {
	path := writeConfig(t, "drafts:\n  backend: memory\n")

	cfg, err := LoadConfigFile(path)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000", cfg.API.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
	assert.Equal(t, "memory", cfg.Drafts.Backend)
	assert.Equal(t, "resumetailor", cfg.Drafts.Namespace)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "text", cfg.App.DefaultFormat)
	assert.True(t, cfg.API.CircuitBreaker.Enabled)
}

func TestLoadConfigFileOverrides(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, `
api:
  baseURL: https://api.example.com/
  timeout: 5s
drafts:
  backend: sqlite
  path: `+filepath.Join(dir, "drafts.db")+`
app:
  logLevel: debug
`)

	cfg, err := LoadConfigFile(path)
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com", cfg.API.BaseURL, "trailing slash is trimmed")
	assert.Equal(t, 5*time.Second, cfg.API.Timeout)
	assert.Equal(t, "sqlite", cfg.Drafts.Backend)
	assert.True(t, cfg.Observability.ConsoleOutput, "debug logging turns on console output")
}

func TestLoadConfigFileEnvOverride(t *testing.T) {
	t.Setenv("RESUMETAILOR_API_BASEURL", "http://backend:9000")
	t.Setenv("RESUMETAILOR_SERVER_APIKEYS", "alpha, beta")
	path := writeConfig(t, "drafts:\n  backend: memory\n")

	cfg, err := LoadConfigFile(path)
	require.NoError(t, err)

	assert.Equal(t, "http://backend:9000", cfg.API.BaseURL)
	assert.Equal(t, []string{"alpha", "beta"}, cfg.Server.APIKeys)
}

func TestLoadConfigFileRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown drafts backend", "drafts:\n  backend: etcd\n"},
		{"bad log level", "drafts:\n  backend: memory\napp:\n  logLevel: loud\n"},
		{"redis without address", "drafts:\n  backend: redis\n  redis:\n    addr: \"\"\n"},
		{"base url not a url", "drafts:\n  backend: memory\napi:\n  baseURL: nope\n"},
		{"default format unsupported", "drafts:\n  backend: memory\napp:\n  defaultFormat: yaml\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfigFile(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestValidateRequiresVaultAddress(t *testing.T) {
	cfg, err := LoadConfigFile(writeConfig(t, "drafts:\n  backend: memory\n"))
	require.NoError(t, err)

	cfg.Vault.Enabled = true
	assert.ErrorContains(t, cfg.Validate(), "vault.address")
}
