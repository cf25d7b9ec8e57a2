package server

import (
	"fmt"
	"testing"
	"time"

	"resumetailor/internal/config"

	"github.com/stretchr/testify/assert"
)

// MockVaultClient is a mock implementation for testing
type MockVaultClient struct {
	secrets map[string]*config.VaultSecret
}

func (m *MockVaultClient) GetSecretV2(path string) (*config.VaultSecret, error) {
	if secret, exists := m.secrets[path]; exists {
		return secret, nil
	}
	return nil, fmt.Errorf("no secret at %s", path)
}

func (m *MockVaultClient) GetStringSliceSecret(path, key string) ([]string, error) {
	if secret, exists := m.secrets[path]; exists {
		if value, ok := secret.Data[key].([]string); ok {
			return value, nil
		}
	}
	return nil, nil
}

func TestKeyWatcherPoll(t *testing.T) {
	mockClient := &MockVaultClient{
		secrets: map[string]*config.VaultSecret{
			"secret/data/keys": {Data: map[string]any{"keys": []string{"key-one"}}, Version: 1},
		},
	}

	var got [][]string
	kw := NewKeyWatcher(mockClient, "secret/data/keys", time.Minute, func(keys []string, err error) {
		assert.NoError(t, err)
		got = append(got, keys)
	}, nil)

	kw.Poll()
	kw.Poll() // same version, no callback
	assert.Equal(t, [][]string{{"key-one"}}, got)

	mockClient.secrets["secret/data/keys"] = &config.VaultSecret{
		Data:    map[string]any{"keys": []string{"key-two", "key-three"}},
		Version: 2,
	}
	kw.Poll()
	assert.Equal(t, []string{"key-two", "key-three"}, got[1])
	assert.Equal(t, int64(2), kw.Status()["last_version"])
}

func TestKeyWatcherEmptySecret(t *testing.T) {
	mockClient := &MockVaultClient{
		secrets: map[string]*config.VaultSecret{
			"secret/data/keys": {Data: map[string]any{}, Version: 3},
		},
	}

	var callbackErr error
	kw := NewKeyWatcher(mockClient, "secret/data/keys", time.Minute, func(keys []string, err error) {
		callbackErr = err
	}, nil)

	kw.Poll()
	assert.Error(t, callbackErr)
}

func TestKeyWatcherStartStop(t *testing.T) {
	kw := NewKeyWatcher(&MockVaultClient{}, "secret/data/keys", time.Hour, func([]string, error) {}, nil)

	assert.NoError(t, kw.Start())
	assert.Error(t, kw.Start())
	assert.True(t, kw.Status()["running"].(bool))
	assert.NoError(t, kw.Stop())
	assert.NoError(t, kw.Stop())
	assert.False(t, kw.Status()["running"].(bool))
}
