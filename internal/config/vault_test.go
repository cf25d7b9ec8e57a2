package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"resumetailor/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSecrets struct {
	strings map[string]string
	fail    bool
}

func (f *fakeSecrets) GetStringSecret(path, key string) (string, error) {
	if f.fail {
		return "", fmt.Errorf("vault unavailable")
	}
	value, ok := f.strings[path+"#"+key]
	if !ok {
		return "", fmt.Errorf("key '%s' not found in secret %s", key, path)
	}
	return value, nil
}

func (f *fakeSecrets) GetStringSliceSecret(path, key string) ([]string, error) {
	value, err := f.GetStringSecret(path, key)
	if err != nil {
		return nil, err
	}
	return splitAndTrim(value), nil
}

func TestParseVersionValue(t *testing.T) {
	tests := []struct {
		name        string
		input       any
		expected    int64
		expectError bool
	}{
		{name: "int64 value", input: int64(42), expected: 42},
		{name: "float64 value", input: float64(42.0), expected: 42},
		{name: "string value", input: "42", expected: 42},
		{name: "invalid string value", input: "not-a-number", expectError: true},
		{name: "unsupported type", input: []string{"42"}, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := parseVersionValue(tt.input, "test/path")

			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expected, result)
			}
		})
	}
}

func TestDecodeKVv2(t *testing.T) {
	secret, err := decodeKVv2(map[string]any{
		"data":     map[string]any{"api_key": "abc"},
		"metadata": map[string]any{"version": float64(3)},
	}, "secret/data/backend")
	require.NoError(t, err)
	assert.Equal(t, int64(3), secret.Version)
	assert.Equal(t, "abc", secret.Data["api_key"])

	_, err = decodeKVv2(map[string]any{"api_key": "abc"}, "secret/backend")
	assert.ErrorContains(t, err, "not in KVv2 format")
}

func TestApplySecrets(t *testing.T) {
	cfg := &Config{}
	cfg.Vault.Secrets = VaultSecrets{
		APIKey:        "secret/data/backend",
		ServerKeys:    "secret/data/server",
		RedisPassword: "secret/data/redis",
	}
	reader := &fakeSecrets{strings: map[string]string{
		"secret/data/backend#api_key": "backend-key",
		"secret/data/server#keys":     "k1, k2,",
		"secret/data/redis#password":  "hunter2",
	}}

	require.NoError(t, applySecrets(reader, cfg, errors.Discard()))

	assert.Equal(t, "backend-key", cfg.API.APIKey)
	assert.Equal(t, []string{"k1", "k2"}, cfg.Server.APIKeys)
	assert.Equal(t, "hunter2", cfg.Drafts.Redis.Password)
}

func TestApplySecretsSkipsUnconfiguredPaths(t *testing.T) {
	cfg := &Config{}
	cfg.API.APIKey = "from-env"

	require.NoError(t, applySecrets(&fakeSecrets{fail: true}, cfg, nil))
	assert.Equal(t, "from-env", cfg.API.APIKey)
}

func TestApplySecretsPropagatesFailure(t *testing.T) {
	cfg := &Config{}
	cfg.Vault.Secrets.APIKey = "secret/data/backend"

	err := applySecrets(&fakeSecrets{fail: true}, cfg, nil)
	assert.ErrorContains(t, err, "backend API key")
}

func TestResolveVaultToken(t *testing.T) {
	dir := t.TempDir()
	tokenFile := filepath.Join(dir, "token")
	require.NoError(t, os.WriteFile(tokenFile, []byte("  s.token\n"), 0o600))

	token, err := resolveVaultToken(VaultConfig{TokenFile: tokenFile})
	require.NoError(t, err)
	assert.Equal(t, "s.token", token)

	token, err = resolveVaultToken(VaultConfig{Token: "direct", TokenFile: tokenFile})
	require.NoError(t, err)
	assert.Equal(t, "direct", token)

	_, err = resolveVaultToken(VaultConfig{})
	assert.Error(t, err)
}

func TestNewVaultClientDisabled(t *testing.T) {
	client, err := NewVaultClient(VaultConfig{Enabled: false}, nil)
	assert.NoError(t, err)
	assert.Nil(t, client)
}

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "abcd****6789", maskSecret("abcdef0123456789"))
	assert.Equal(t, "****", maskSecret("short"))
	assert.Equal(t, "", maskSecret(""))
}
