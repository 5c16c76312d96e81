package embedding

import "errors"

var (
	// ErrServiceUnavailable is returned on transport failures against the
	// embedding service. Retrying is the orchestrator's job.
	ErrServiceUnavailable = errors.New("embedding: service unavailable")

	// ErrDimensionMismatch is returned when the service answers with a
	// vector whose length differs from the configured dimension. Vectors
	// are never truncated or padded.
	ErrDimensionMismatch = errors.New("embedding: dimension mismatch")
)
