package caption

import "errors"

var (
	// ErrServiceUnavailable is returned on connection or timeout failures
	// while talking to the captioning endpoint. The client never retries;
	// retry policy belongs to the ingestion orchestrator.
	ErrServiceUnavailable = errors.New("caption: service unavailable")

	// ErrParse is returned when the model's response cannot be decomposed
	// into a description and tag list.
	ErrParse = errors.New("caption: unparsable response")
)

// IsUnavailable reports whether the error is a transport-level failure.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrServiceUnavailable)
}

// IsParseError reports whether the error is a response-parsing failure.
func IsParseError(err error) bool {
	return errors.Is(err, ErrParse)
}
