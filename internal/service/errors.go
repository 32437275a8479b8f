package service

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConfigured means the vision-model API key is missing. The
	// process keeps serving; every extraction fails with a fixed message.
	ErrNotConfigured = errors.New("vision model not configured")

	// ErrNoCandidates means the model answered 2xx but produced no
	// candidates.
	ErrNoCandidates = errors.New("no candidates in model response")

	// ErrEmptyContent means the first candidate carried no content parts.
	ErrEmptyContent = errors.New("empty content in model response")

	// ErrMalformedOutput means the model's text was not parseable as a
	// JSON object. Kept distinct from UpstreamError for diagnosability;
	// clients see the same 500 shape.
	ErrMalformedOutput = errors.New("model output is not valid JSON")
)

// UpstreamError is a non-success status from the vision-model endpoint.
// The response body is logged server-side only; clients get the status
// code in the "details" field.
type UpstreamError struct {
	StatusCode int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("vision API returned status %d", e.StatusCode)
}
