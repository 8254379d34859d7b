// Package document reads resumes and job descriptions from local files or
// S3 objects and extracts their text.
package document

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"

	"golang.org/x/sync/errgroup"

	"resumatch/internal/errors"
	"resumatch/internal/utils"
)

// DefaultMaxFileSize caps documents at 16 MB
const DefaultMaxFileSize int64 = 16 << 20

// ObjectFetcher downloads remote documents
type ObjectFetcher interface {
	Fetch(ctx context.Context, bucket, key string, maxSize int64) ([]byte, error)
}

// Loader turns a source path or s3:// URI into text
type Loader struct {
	maxSize int64
	remote  ObjectFetcher
	logger  *errors.Logger
}

// NewLoader creates a loader. remote may be nil, in which case s3:// sources
// are rejected.
func NewLoader(maxSize int64, remote ObjectFetcher, logger *errors.Logger) *Loader {
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}
	if logger == nil {
		logger = errors.NewDiscardLogger()
	}
	return &Loader{maxSize: maxSize, remote: remote, logger: logger}
}

// Load reads source and returns its text
func (l *Loader) Load(ctx context.Context, source string) (string, error) {
	var (
		name string
		data []byte
		err  error
	)

	if IsS3URI(source) {
		name, data, err = l.loadRemote(ctx, source)
	} else {
		name = source
		data, err = l.loadLocal(source)
	}
	if err != nil {
		return "", err
	}

	text, err := Extract(name, data)
	if err != nil {
		return "", err
	}

	l.logger.Debug("Document loaded",
		"source", source,
		"size", utils.FormatFileSize(int64(len(data))),
		"characters", len([]rune(text)))
	return text, nil
}

// LoadAll loads every source concurrently, keeping argument order
func (l *Loader) LoadAll(ctx context.Context, sources ...string) ([]string, error) {
	texts := make([]string, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	for i, source := range sources {
		g.Go(func() error {
			text, err := l.Load(gctx, source)
			if err != nil {
				return err
			}
			texts[i] = text
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return texts, nil
}

func (l *Loader) loadRemote(ctx context.Context, source string) (string, []byte, error) {
	bucket, key, err := ParseS3URI(source)
	if err != nil {
		return "", nil, err
	}
	if l.remote == nil {
		return "", nil, errors.NewConfigError(errors.ErrCodeRemoteSourceFailed,
			"s3:// sources need sources.s3 to be configured", nil).
			WithContext("source", source)
	}

	if !utils.IsSupportedDocument(key) {
		return "", nil, unsupportedDocument(key)
	}

	data, err := l.remote.Fetch(ctx, bucket, key, l.maxSize)
	if err != nil {
		return "", nil, err
	}
	return path.Base(key), data, nil
}

func (l *Loader) loadLocal(filename string) ([]byte, error) {
	if !utils.IsSupportedDocument(filename) {
		return nil, unsupportedDocument(filename)
	}
	if err := utils.ValidateInputFile(filename); err != nil {
		return nil, errors.NewIOError(errors.ErrCodeFileNotFound,
			fmt.Sprintf("Invalid file %s", filename), err)
	}

	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Cannot read file: %s", filename), err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			l.logger.Warn("Failed to close file", "filename", filename, "error", err)
		}
	}()

	if info, err := file.Stat(); err == nil {
		if err := checkSize(filename, info.Size(), l.maxSize); err != nil {
			return nil, err
		}
	}

	data, err := io.ReadAll(io.LimitReader(file, l.maxSize+1))
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Failed to read file content: %s", filename), err)
	}
	if err := checkSize(filename, int64(len(data)), l.maxSize); err != nil {
		return nil, err
	}
	return data, nil
}

func checkSize(source string, size, maxSize int64) error {
	if size > maxSize {
		return errors.NewValidationError(errors.ErrCodeFileTooLarge,
			fmt.Sprintf("%s is %s, larger than the %s limit", source,
				utils.FormatFileSize(size), utils.FormatFileSize(maxSize)), nil).
			WithContext("source", source)
	}
	return nil
}
