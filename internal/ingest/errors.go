package ingest

import (
	"errors"
	"fmt"
)

// ErrPathNotAllowed is returned when a requested path resolves outside the
// configured ingestion roots. The file is never opened in that case.
var ErrPathNotAllowed = errors.New("ingest: path not allowed")

// ErrUnsupportedFormat is returned for files whose extension is not a
// supported image format.
var ErrUnsupportedFormat = errors.New("ingest: unsupported image format")

// Pipeline stage names, used in failure reports and metrics labels.
const (
	StageAuthorize = "authorize"
	StageMetadata  = "metadata"
	StageCaption   = "caption"
	StageEmbed     = "embed"
	StageStore     = "store"
	StageArchive   = "archive"
)

// StageError ties a pipeline failure to the stage it happened in.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("ingest: stage %s failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func stageErr(stage string, err error) *StageError {
	return &StageError{Stage: stage, Err: err}
}

// FailureStage extracts the pipeline stage from an ingestion error, or ""
// when the error did not come from a pipeline stage.
func FailureStage(err error) string {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return ""
}
