package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// ResumeExtensions are the upload formats the backend can parse
var ResumeExtensions = []string{".pdf", ".docx", ".txt"}

// Ext returns the lowercased extension of name, dot included
func Ext(name string) string {
	return strings.ToLower(filepath.Ext(name))
}

// IsResumeFile reports whether name has an upload format the backend accepts
func IsResumeFile(name string) bool {
	return slices.Contains(ResumeExtensions, Ext(name))
}

// CheckInputFile makes sure name is a regular file no larger than maxSize
// and returns its size. A maxSize of zero disables the size check.
func CheckInputFile(name string, maxSize int64) (int64, error) {
	if name == "" {
		return 0, fmt.Errorf("no file given")
	}
	info, err := os.Stat(name)
	switch {
	case os.IsNotExist(err):
		return 0, fmt.Errorf("%s does not exist", name)
	case err != nil:
		return 0, fmt.Errorf("cannot stat %s: %w", name, err)
	case !info.Mode().IsRegular():
		return 0, fmt.Errorf("%s is not a regular file", name)
	case maxSize > 0 && info.Size() > maxSize:
		return 0, fmt.Errorf("%s is %s, limit is %s", name, FormatFileSize(info.Size()), FormatFileSize(maxSize))
	}
	return info.Size(), nil
}

// WriteFileAtomic writes data next to name and renames it into place, so
// a reader sees either the previous content or the new one.
func WriteFileAtomic(name string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(name)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(name)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	fail := func(step string, err error) error {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("%s %s: %w", step, name, err)
	}

	if _, err := tmp.Write(data); err != nil {
		return fail("write", err)
	}
	if err := tmp.Chmod(perm); err != nil {
		return fail("chmod", err)
	}
	if err := tmp.Sync(); err != nil {
		return fail("sync", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Rename(tmpName, name); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", name, err)
	}
	return nil
}

// FormatFileSize returns a human-readable file size
func FormatFileSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
