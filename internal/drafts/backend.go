// Package drafts keeps unsaved experience and education edits so they
// survive a reload of the same result. It is a best-effort cache: the
// backend response stays authoritative everywhere except for the one
// override applied when a workspace is opened.
package drafts

import (
	"context"
	"fmt"

	"resumetailor/internal/config"
	"resumetailor/internal/errors"
)

// Backend is a flat byte-valued key/value store
type Backend interface {
	// Get returns the stored value and whether the key exists.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set replaces the value for key. A failed Set leaves the previous value in place.
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	// Keys lists every stored key starting with prefix.
	Keys(ctx context.Context, prefix string) ([]string, error)
	Close() error
}

// Watcher is implemented by backends that can report external changes
type Watcher interface {
	// Watch streams keys under prefix that changed outside this process.
	Watch(ctx context.Context, prefix string) (<-chan string, error)
}

// OpenBackend builds the backend selected by cfg
func OpenBackend(ctx context.Context, cfg config.DraftsConfig, logger *errors.Logger) (Backend, error) {
	switch cfg.Backend {
	case "", "memory":
		return NewMemoryBackend(), nil
	case "file":
		return NewFileBackend(cfg.Path, logger)
	case "sqlite":
		return OpenSQLiteBackend(ctx, cfg.Path)
	case "redis":
		return OpenRedisBackend(ctx, cfg.Redis)
	default:
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("unknown drafts backend %q", cfg.Backend), nil)
	}
}
