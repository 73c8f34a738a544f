package fetcher

import (
	"errors"
	"fmt"
)

// Common task-local errors. None of these abort sibling tasks.
var (
	// ErrMissingSize means the response carried no usable length header,
	// so completion can never be detected. The task is abandoned for this
	// run and finalize is skipped entirely.
	ErrMissingSize = errors.New("fetcher: response carries no usable size")

	// ErrTransferIncomplete means the sidecar did not reach the expected
	// size. The sidecar is left in place for a future resume.
	ErrTransferIncomplete = errors.New("fetcher: transfer incomplete")
)

// DeniedError is a permanent denial (403, 404, 405) from the host. It is
// not retryable within this run.
type DeniedError struct {
	URL        string
	StatusCode int
}

func (e *DeniedError) Error() string {
	return fmt.Sprintf("fetcher: download denied for %s (status %d)", e.URL, e.StatusCode)
}

// StatusError is a mismatch between resume state and response status:
// a fresh request must answer 200, a resumed one 206.
type StatusError struct {
	URL          string
	StatusCode   int
	ResumeOffset int64
}

func (e *StatusError) Error() string {
	want := 200
	if e.ResumeOffset > 0 {
		want = 206
	}
	return fmt.Sprintf("fetcher: unexpected status %d for %s (want %d at offset %d)",
		e.StatusCode, e.URL, want, e.ResumeOffset)
}
