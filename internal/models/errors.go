// internal/models/errors.go
package models

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by storage when a row does not exist or is not
// visible to the requesting user.
var ErrNotFound = errors.New("not found")

// InvalidRequestError reports a malformed chat request or a plan-scoped
// request without a resolvable plan.
type InvalidRequestError struct {
	Reason string
}

func (e *InvalidRequestError) Error() string {
	return fmt.Sprintf("invalid request: %s", e.Reason)
}

func InvalidRequest(format string, args ...any) error {
	return &InvalidRequestError{Reason: fmt.Sprintf(format, args...)}
}

// IsInvalidRequest reports whether err is, or wraps, an InvalidRequestError.
func IsInvalidRequest(err error) bool {
	var ir *InvalidRequestError
	return errors.As(err, &ir)
}
