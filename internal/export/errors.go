package export

import (
	"errors"
	"fmt"

	"github.com/amspoke/carelink-downloader/internal/model"
)

// Stage is the step of the export path that failed.
type Stage string

// Export stages.
const (
	StageSerialize Stage = "serialize"
	StageWrite     Stage = "write"
	StageUpload    Stage = "upload"
)

var (
	// ErrNilRecord is returned when there is no record to export, e.g.
	// because the session did not provide it.
	ErrNilRecord = errors.New("record is nil")

	// ErrUpload marks sink errors raised by the upload of a staged file.
	ErrUpload = errors.New("upload failed")
)

// Error describes a failed export.
type Error struct {
	Kind  model.Kind
	Stage Stage
	// Path is the local file left behind by the failed stage, if any.
	Path string
	Err  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("export %s: %s (local copy %s): %v", e.Kind, e.Stage, e.Path, e.Err)
	}
	return fmt.Sprintf("export %s: %s: %v", e.Kind, e.Stage, e.Err)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// stagedError is returned by sinks when a local file outlives the failure.
type stagedError struct {
	path string
	err  error
}

func (e *stagedError) Error() string { return e.err.Error() }

func (e *stagedError) Unwrap() error { return e.err }
