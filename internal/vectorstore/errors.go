package vectorstore

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrDimensionMismatch is returned when an existing collection was
	// created with a different vector dimension than requested, or when a
	// record's vector does not match the store's configured dimension.
	ErrDimensionMismatch = errors.New("vectorstore: dimension mismatch")

	// ErrQueryFailed is returned when a fan-out search fails on every
	// requested metric. Single-metric failures degrade instead.
	ErrQueryFailed = errors.New("vectorstore: query failed on all metrics")
)

// ReconcileOutcome names what happened after a partial multi-collection write.
type ReconcileOutcome string

const (
	// OutcomeRetriedAndFailed: missing collections were retried up to the
	// configured bound and at least one still failed; written ones were
	// rolled back.
	OutcomeRetriedAndFailed ReconcileOutcome = "retried_and_failed"

	// OutcomeRolledBack: the partially-written collections were cleaned up
	// so the dataset holds the all-or-nothing invariant again.
	OutcomeRolledBack ReconcileOutcome = "rolled_back"

	// OutcomeRollbackFailed: cleanup itself failed; the dataset is
	// inconsistent for this point and needs operator attention.
	OutcomeRollbackFailed ReconcileOutcome = "rollback_failed"
)

// PartialWriteError reports a multi-collection write or delete that did not
// reach all collections, naming which ones succeeded before reconciliation
// and how the store reconciled. It is never swallowed: callers either see a
// clean success or this error.
type PartialWriteError struct {
	ImageID string
	Written []string
	Failed  []string
	Outcome ReconcileOutcome
	Err     error
}

func (e *PartialWriteError) Error() string {
	return fmt.Sprintf(
		"vectorstore: partial write for %s (written=[%s] failed=[%s] outcome=%s): %v",
		e.ImageID,
		strings.Join(e.Written, ","),
		strings.Join(e.Failed, ","),
		e.Outcome,
		e.Err,
	)
}

func (e *PartialWriteError) Unwrap() error {
	return e.Err
}

// IsPartialWrite reports whether err carries a PartialWriteError and returns it.
func IsPartialWrite(err error) (*PartialWriteError, bool) {
	var pw *PartialWriteError
	if errors.As(err, &pw) {
		return pw, true
	}
	return nil, false
}
