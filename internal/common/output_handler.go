package common

import (
	"fmt"
	"io"
	"os"

	"resumatch/internal/errors"
	"resumatch/internal/formatters"
	"resumatch/internal/utils"
)

// CommandConfig holds common configuration for commands
type CommandConfig struct {
	OutputFile   string
	OutputFormat string
}

// OutputHandler formats command results and writes them to a file or stdout
type OutputHandler struct {
	registry *formatters.FormatterRegistry
	logger   *errors.Logger
	stdout   io.Writer
}

// NewOutputHandler creates a new output handler
func NewOutputHandler(logger *errors.Logger) *OutputHandler {
	if logger == nil {
		logger = errors.NewDiscardLogger()
	}
	return &OutputHandler{
		registry: formatters.GlobalRegistry,
		logger:   logger,
		stdout:   os.Stdout,
	}
}

// ValidateOutputFile prepares the parent directory of filename. An empty
// name means stdout; an existing directory is rejected.
func (oh *OutputHandler) ValidateOutputFile(filename string) error {
	if filename == "" {
		return nil
	}

	if info, err := os.Stat(filename); err == nil && info.IsDir() {
		return errors.NewValidationError(errors.ErrCodeInvalidOutputFile,
			fmt.Sprintf("%s is a directory", filename), nil).
			WithContext("file", filename)
	}
	if err := utils.ValidateOutputFile(filename); err != nil {
		return errors.NewIOError(errors.ErrCodeInvalidOutputFile,
			fmt.Sprintf("cannot prepare output file %s", filename), err).
			WithContext("file", filename)
	}
	return nil
}

// HandleOutput formats data and writes it to the configured destination
func (oh *OutputHandler) HandleOutput(data any, config CommandConfig) error {
	if err := oh.ValidateOutputFile(config.OutputFile); err != nil {
		return err
	}

	output, err := oh.registry.Format(data, config.OutputFormat)
	if err != nil {
		return errors.NewValidationError(errors.ErrCodeInvalidFormat,
			fmt.Sprintf("Failed to format output as %s", config.OutputFormat), err)
	}

	if config.OutputFile == "" {
		_, err = fmt.Fprint(oh.stdout, output)
		return err
	}

	if err := os.WriteFile(config.OutputFile, []byte(output), 0600); err != nil {
		return errors.NewIOError(errors.ErrCodeFileWriteFailed,
			fmt.Sprintf("cannot write %s", config.OutputFile), err).
			WithContext("file", config.OutputFile)
	}
	oh.logger.Info("Output written",
		"file", config.OutputFile,
		"format", config.OutputFormat,
		"size", utils.FormatFileSize(int64(len(output))))
	return nil
}

// GetSupportedFormats returns all supported output formats
func (oh *OutputHandler) GetSupportedFormats() []string {
	return oh.registry.GetSupportedFormats()
}
