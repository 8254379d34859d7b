package common

import (
	"context"
	"fmt"

	"resumatch/internal/document"
	"resumatch/internal/errors"
)

// CreateInputFunc defines how to create the operation input from document texts.
type CreateInputFunc[Input any] func(contents []string) (Input, error)

// LogDetailsFunc defines how to log the start of an operation.
type LogDetailsFunc[Input any] func(input Input, cfg CommandConfig)

// OperationFunc is a generic function signature for an analysis operation.
type OperationFunc[Input, Output any] func(context.Context, Input) (Output, error)

// RunDocumentCommand encapsulates the common logic of document-based CLI
// commands: load every source, build the input, run the operation and
// write the formatted result.
func RunDocumentCommand[Input, Output any](
	ctx context.Context,
	logger *errors.Logger,
	loader *document.Loader,
	cmdConfig CommandConfig,
	sources []string,
	createInput CreateInputFunc[Input],
	operation OperationFunc[Input, Output],
	logDetails LogDetailsFunc[Input],
) error {
	outputHandler := NewOutputHandler(logger)

	// Fail on a bad output path before spending backend calls
	if err := outputHandler.ValidateOutputFile(cmdConfig.OutputFile); err != nil {
		return err
	}

	contents, err := loader.LoadAll(ctx, sources...)
	if err != nil {
		return err
	}

	input, err := createInput(contents)
	if err != nil {
		return fmt.Errorf("failed to create input from documents: %w", err)
	}

	if logDetails != nil {
		logDetails(input, cmdConfig)
	}

	result, err := operation(ctx, input)
	if err != nil {
		return err
	}

	return outputHandler.HandleOutput(result, cmdConfig)
}
