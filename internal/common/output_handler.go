package common

import (
	"fmt"
	"io"
	"os"

	"resumetailor/internal/errors"
	"resumetailor/internal/formatters"
)

// CommandConfig holds common configuration for commands
type CommandConfig struct {
	OutputFile   string
	OutputFormat string
	// Stdout receives output when OutputFile is empty. Defaults to os.Stdout.
	Stdout io.Writer
}

// OutputHandler handles formatting and writing output
type OutputHandler struct {
	fileProcessor *FileProcessor
	registry      *formatters.FormatterRegistry
	logger        *errors.Logger
}

// NewOutputHandler creates a new output handler
func NewOutputHandler(logger *errors.Logger) *OutputHandler {
	if logger == nil {
		logger = errors.Discard()
	}
	return &OutputHandler{
		fileProcessor: NewFileProcessor(logger, 0),
		registry:      formatters.GlobalRegistry,
		logger:        logger,
	}
}

// HandleOutput formats data and writes it to the configured file, or to
// Stdout when no file is set.
func (oh *OutputHandler) HandleOutput(data any, config CommandConfig) error {
	output, err := oh.registry.Format(data, config.OutputFormat)
	if err != nil {
		return errors.NewValidationError(errors.ErrCodeInvalidFormat,
			fmt.Sprintf("Failed to format output as %s", config.OutputFormat), err)
	}

	if config.OutputFile != "" {
		if err := oh.fileProcessor.Write(config.OutputFile, []byte(output)); err != nil {
			return err
		}
		oh.logger.Info("Output written", "file", config.OutputFile, "format", config.OutputFormat)
		return nil
	}

	out := config.Stdout
	if out == nil {
		out = os.Stdout
	}
	if _, err := io.WriteString(out, output); err != nil {
		return errors.NewIOError(errors.ErrCodeFileWriteFailed, "Cannot write output", err)
	}
	return nil
}
