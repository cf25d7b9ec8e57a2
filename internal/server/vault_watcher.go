package server

import (
	"fmt"
	"sync"
	"time"

	"resumetailor/internal/config"
	"resumetailor/internal/errors"
)

// VaultClientInterface defines the interface for Vault operations
type VaultClientInterface interface {
	GetSecretV2(path string) (*config.VaultSecret, error)
	GetStringSliceSecret(path, key string) ([]string, error)
}

// KeyReloadCallback is called when a new set of server API keys is available
type KeyReloadCallback func(keys []string, err error)

// KeyWatcher polls a Vault KVv2 secret holding the server API keys and
// reports the new key set whenever the secret version advances.
type KeyWatcher struct {
	mu sync.RWMutex

	client         VaultClientInterface
	secretPath     string
	pollInterval   time.Duration
	reloadCallback KeyReloadCallback
	logger         *errors.Logger

	stopChan    chan struct{}
	running     bool
	lastVersion int64
}

// NewKeyWatcher creates a new KeyWatcher
func NewKeyWatcher(client VaultClientInterface, secretPath string, pollInterval time.Duration, reloadCallback KeyReloadCallback, logger *errors.Logger) *KeyWatcher {
	return &KeyWatcher{
		client:         client,
		secretPath:     secretPath,
		pollInterval:   pollInterval,
		reloadCallback: reloadCallback,
		logger:         logger,
		stopChan:       make(chan struct{}),
	}
}

// Start begins polling Vault for secret changes
func (kw *KeyWatcher) Start() error {
	kw.mu.Lock()
	defer kw.mu.Unlock()
	if kw.running {
		return fmt.Errorf("key watcher is already running")
	}
	kw.running = true
	go kw.pollLoop()
	if kw.logger != nil {
		kw.logger.Info("Key watcher started", "secret_path", kw.secretPath, "poll_interval", kw.pollInterval)
	}
	return nil
}

// Stop stops the watcher
func (kw *KeyWatcher) Stop() error {
	kw.mu.Lock()
	defer kw.mu.Unlock()
	if !kw.running {
		return nil
	}
	close(kw.stopChan)
	kw.running = false
	if kw.logger != nil {
		kw.logger.Info("Key watcher stopped")
	}
	return nil
}

func (kw *KeyWatcher) pollLoop() {
	ticker := time.NewTicker(kw.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			kw.Poll()
		case <-kw.stopChan:
			return
		}
	}
}

// Poll checks the secret once and fires the callback if it changed
func (kw *KeyWatcher) Poll() {
	changed, err := kw.checkForUpdates()
	if err != nil {
		if kw.logger != nil {
			kw.logger.LogError(err, "Failed to check Vault for key updates")
		}
		return
	}
	if !changed {
		return
	}

	keys, err := kw.client.GetStringSliceSecret(kw.secretPath, "keys")
	if err == nil && len(keys) == 0 {
		err = fmt.Errorf("secret %s holds no keys", kw.secretPath)
	}
	if err != nil {
		if kw.logger != nil {
			kw.logger.LogError(err, "Failed to fetch rotated API keys from Vault")
		}
		kw.reloadCallback(nil, err)
		return
	}
	if kw.logger != nil {
		kw.logger.Info("Server API keys rotated", "count", len(keys))
	}
	kw.reloadCallback(keys, nil)
}

// checkForUpdates checks if the Vault secret version has changed
func (kw *KeyWatcher) checkForUpdates() (bool, error) {
	secret, err := kw.client.GetSecretV2(kw.secretPath)
	if err != nil {
		return false, fmt.Errorf("failed to read secret: %w", err)
	}
	if secret == nil {
		return false, fmt.Errorf("secret %s not found", kw.secretPath)
	}

	kw.mu.Lock()
	defer kw.mu.Unlock()
	if secret.Version > kw.lastVersion {
		kw.lastVersion = secret.Version
		return true, nil
	}
	return false, nil
}

// Status returns the current status of the watcher for health reporting
func (kw *KeyWatcher) Status() map[string]any {
	kw.mu.RLock()
	defer kw.mu.RUnlock()
	return map[string]any{
		"running":       kw.running,
		"poll_interval": kw.pollInterval.String(),
		"secret_path":   kw.secretPath,
		"last_version":  kw.lastVersion,
	}
}
