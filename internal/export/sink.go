package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// FilePerm is the permission of written artifacts. Exports contain health
// data, so they are readable by the owner only.
const FilePerm os.FileMode = 0o600

// Sink persists an artifact.
type Sink interface {
	// Put stores content under name and returns where it was stored.
	Put(ctx context.Context, name string, content []byte) (string, error)
}

// FileSink writes artifacts into a local folder.
type FileSink struct {
	folder string
	logger *slog.Logger
}

// FileSinkOption configures a FileSink.
type FileSinkOption func(*FileSink)

// WithSinkLogger sets the logger that reports replaced artifacts.
func WithSinkLogger(logger *slog.Logger) FileSinkOption {
	return func(s *FileSink) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewFileSink returns a FileSink writing into folder.
// An empty folder means the current working directory.
func NewFileSink(folder string, opts ...FileSinkOption) *FileSink {
	s := &FileSink{
		folder: folder,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Put writes content to folder/name atomically. An existing file with the
// same name is replaced and a warning is logged.
func (s *FileSink) Put(ctx context.Context, name string, content []byte) (string, error) {
	path := filepath.Join(s.folder, name)
	if s.folder == "" {
		path = name
	}
	if _, err := os.Stat(path); err == nil {
		s.logger.WarnContext(ctx, "artifact already exists, overwriting", "path", path)
	}
	if err := writeFileAtomic(path, content, FilePerm); err != nil {
		return "", err
	}
	return path, nil
}

// writeFileAtomic writes data to a temporary file next to path and renames
// it into place, so readers never see a partial artifact.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if tmp != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	tmp = nil

	if err := os.Chmod(tmpPath, perm); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}
