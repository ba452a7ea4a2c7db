// internal/gpt/errors.go
package gpt

import (
	"fmt"
)

// ProviderError is returned when the provider answered with a non-success
// status or an unusable body.
type ProviderError struct {
	StatusCode int
	Body       string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider error: status %d: %s", e.StatusCode, e.Body)
}

// UnavailableError is returned when the provider could not be reached.
type UnavailableError struct {
	Err error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("provider unavailable: %v", e.Err)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}
