// sessionhandler/errors.go
package sessionhandler

import (
	"errors"
	"fmt"
)

// ErrMissingToken is returned when an operation requires a session and none is present in
// memory or storage. It is surfaced to the caller and never retried.
var ErrMissingToken = errors.New("no token session present")

// RefreshError wraps a failure of the caller-supplied refresh function. By the time a
// RefreshError is returned the session has already been destroyed, so callers should route
// the user back to authentication.
type RefreshError struct {
	Err error
}

func (e *RefreshError) Error() string {
	return fmt.Sprintf("token refresh failed: %v", e.Err)
}

func (e *RefreshError) Unwrap() error {
	return e.Err
}
