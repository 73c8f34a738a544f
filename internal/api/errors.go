package api

import (
	"errors"
	"fmt"
)

// ErrMalformedURL is returned when a share URL does not have the expected
// .../d/<id> shape. It is detected before any network call.
var ErrMalformedURL = errors.New("api: share URL has no content id")

// AuthError indicates the account-creation call did not report success.
type AuthError struct {
	Status string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("api: account creation failed (status %q)", e.Status)
}

// ResolutionError indicates a content lookup did not report success. A
// partial tree is not trustworthy, so this aborts the whole resolution.
type ResolutionError struct {
	URL    string
	Status string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("api: content lookup failed for %s (status %q)", e.URL, e.Status)
}
