package common

import (
	"context"
	"fmt"
	"time"

	"resumetailor/internal/errors"
)

// CreateInputFunc builds the operation input from the files read, in argument order.
type CreateInputFunc[Input any] func(files []InputFile) (Input, error)

// LogDetailsFunc defines how to log the start of an operation.
type LogDetailsFunc[Input any] func(input Input, cfg CommandConfig)

// OperationFunc is a backend operation run by a command.
type OperationFunc[Input, Output any] func(context.Context, Input) (Output, error)

// RunFileCommand reads the files named in args, builds the operation input
// from their contents, runs it and writes the formatted output.
func RunFileCommand[Input, Output any](
	ctx context.Context,
	logger *errors.Logger,
	maxFileSize int64,
	cmdConfig CommandConfig,
	args []string,
	createInput CreateInputFunc[Input],
	operation OperationFunc[Input, Output],
	logDetails LogDetailsFunc[Input],
) error {
	files, err := NewFileProcessor(logger, maxFileSize).ReadAll(args...)
	if err != nil {
		return err
	}

	input, err := createInput(files)
	if err != nil {
		return fmt.Errorf("failed to build input: %w", err)
	}

	if logDetails != nil {
		logDetails(input, cmdConfig)
	}

	return RunCommand(ctx, logger, cmdConfig, func(ctx context.Context) (Output, error) {
		return operation(ctx, input)
	})
}

// RunCommand runs operation and writes its formatted output.
func RunCommand[Output any](
	ctx context.Context,
	logger *errors.Logger,
	cmdConfig CommandConfig,
	operation func(context.Context) (Output, error),
) error {
	if logger == nil {
		logger = errors.Discard()
	}
	start := time.Now()
	result, err := operation(ctx)
	if err != nil {
		return err
	}
	logger.Debug("Command operation finished", "duration_ms", time.Since(start).Milliseconds())

	return NewOutputHandler(logger).HandleOutput(result, cmdConfig)
}
