package drafts

import (
	"context"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"resumetailor/internal/errors"
	"resumetailor/internal/utils"

	"github.com/fsnotify/fsnotify"
)

const draftExt = ".json"

// FileBackend stores one JSON file per key under a root directory.
// A key "ns:id:section" lives at root/ns/id/section.json.
type FileBackend struct {
	root   string
	logger *errors.Logger
}

// NewFileBackend creates the root directory if needed
func NewFileBackend(root string, logger *errors.Logger) (*FileBackend, error) {
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("drafts path is required")
	}
	if err := os.MkdirAll(root, 0o700); err != nil {
		return nil, fmt.Errorf("create drafts directory: %w", err)
	}
	return &FileBackend{root: filepath.Clean(root), logger: logger}, nil
}

// keyPath maps a key onto the filesystem, rejecting segments that would escape root.
func (f *FileBackend) keyPath(key string) (string, error) {
	segments := strings.Split(key, ":")
	parts := make([]string, 0, len(segments)+1)
	parts = append(parts, f.root)
	for _, segment := range segments {
		if segment == "" || segment == "." || segment == ".." {
			return "", fmt.Errorf("invalid draft key %q", key)
		}
		parts = append(parts, url.PathEscape(segment))
	}
	return filepath.Join(parts...) + draftExt, nil
}

// pathKey is the inverse of keyPath.
func (f *FileBackend) pathKey(path string) (string, bool) {
	rel, err := filepath.Rel(f.root, path)
	if err != nil || !strings.HasSuffix(rel, draftExt) {
		return "", false
	}
	segments := strings.Split(strings.TrimSuffix(rel, draftExt), string(filepath.Separator))
	for i, segment := range segments {
		decoded, err := url.PathUnescape(segment)
		if err != nil {
			return "", false
		}
		segments[i] = decoded
	}
	return strings.Join(segments, ":"), true
}

func (f *FileBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	path, err := f.keyPath(key)
	if err != nil {
		return nil, false, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read draft: %w", err)
	}
	return data, true, nil
}

// Set writes through a temp file and rename so readers never see a torn value.
func (f *FileBackend) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := f.keyPath(key)
	if err != nil {
		return err
	}
	if err := utils.WriteFileAtomic(path, value, 0o600); err != nil {
		return fmt.Errorf("write draft: %w", err)
	}
	return nil
}

func (f *FileBackend) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := f.keyPath(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete draft: %w", err)
	}
	// Drop the id directory once its last section is gone.
	_ = os.Remove(filepath.Dir(path))
	return nil
}

func (f *FileBackend) Keys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	err := filepath.WalkDir(f.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			return nil
		}
		if key, ok := f.pathKey(path); ok && strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list drafts: %w", err)
	}
	sort.Strings(keys)
	return keys, nil
}

func (f *FileBackend) Close() error {
	return nil
}

// Watch reports keys under prefix whose files are written, replaced or removed.
// The prefix must name a whole directory, e.g. "ns:id:".
func (f *FileBackend) Watch(ctx context.Context, prefix string) (<-chan string, error) {
	dir, err := f.prefixDir(prefix)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create watch directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	changes := make(chan string, 16)
	go func() {
		defer close(changes)
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
					continue
				}
				key, ok := f.pathKey(event.Name)
				if !ok {
					continue
				}
				select {
				case changes <- key:
				case <-ctx.Done():
					return
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				if f.logger != nil {
					f.logger.Warn("Draft watcher error", "dir", dir, "error", err.Error())
				}
			}
		}
	}()
	return changes, nil
}

func (f *FileBackend) prefixDir(prefix string) (string, error) {
	trimmed := strings.TrimSuffix(prefix, ":")
	if trimmed == "" {
		return f.root, nil
	}
	parts := []string{f.root}
	for _, segment := range strings.Split(trimmed, ":") {
		if segment == "" || segment == "." || segment == ".." {
			return "", fmt.Errorf("invalid watch prefix %q", prefix)
		}
		parts = append(parts, url.PathEscape(segment))
	}
	return filepath.Join(parts...), nil
}
