package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"resumetailor/internal/errors"
	"resumetailor/internal/utils"
)

// InputFile is one file named on the command line, read in full
type InputFile struct {
	Path string
	Data []byte
}

// Name is the base name sent to the backend with an upload
func (f InputFile) Name() string { return filepath.Base(f.Path) }

// Text returns the content with surrounding whitespace trimmed
func (f InputFile) Text() string { return strings.TrimSpace(string(f.Data)) }

// FileProcessor reads command inputs and writes command outputs
type FileProcessor struct {
	logger  *errors.Logger
	maxSize int64
}

// NewFileProcessor creates a file processor. maxSize of zero means unlimited.
func NewFileProcessor(logger *errors.Logger, maxSize int64) *FileProcessor {
	if logger == nil {
		logger = errors.Discard()
	}
	return &FileProcessor{logger: logger, maxSize: maxSize}
}

// Read checks path against the size limit and loads it
func (fp *FileProcessor) Read(path string) (InputFile, error) {
	size, err := utils.CheckInputFile(path, fp.maxSize)
	if err != nil {
		return InputFile{}, errors.NewValidationError(errors.ErrCodeInvalidInputFile,
			fmt.Sprintf("Invalid file %s", path), err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		code := errors.ErrCodeFileNotReadable
		if os.IsNotExist(err) {
			code = errors.ErrCodeFileNotFound
		}
		return InputFile{}, errors.NewIOError(code, fmt.Sprintf("Cannot read %s", path), err)
	}
	fp.logger.Debug("Read input file", "path", path, "size", utils.FormatFileSize(size))
	return InputFile{Path: path, Data: data}, nil
}

// ReadAll reads every path in order, stopping at the first failure
func (fp *FileProcessor) ReadAll(paths ...string) ([]InputFile, error) {
	files := make([]InputFile, 0, len(paths))
	for _, path := range paths {
		f, err := fp.Read(path)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}

// CheckResumeFile rejects names whose extension the backend cannot parse
func (fp *FileProcessor) CheckResumeFile(name string) error {
	if utils.IsResumeFile(name) {
		return nil
	}
	return errors.NewValidationError(errors.ErrCodeInvalidFormat,
		fmt.Sprintf("Unsupported resume format %q, use one of %s",
			utils.Ext(name), strings.Join(utils.ResumeExtensions, ", ")), nil)
}

// Write replaces path atomically, creating parent directories
func (fp *FileProcessor) Write(path string, data []byte) error {
	if err := utils.WriteFileAtomic(path, data, 0o600); err != nil {
		return errors.NewIOError(errors.ErrCodeFileWriteFailed,
			fmt.Sprintf("Cannot write %s", path), err)
	}
	return nil
}
