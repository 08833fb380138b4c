package analyst

import (
	"fmt"
	"time"
)

// TransportError is a failure to reach the service at all: DNS,
// refused connections, TLS.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return "analyst transport: " + e.Err.Error() }
func (e *TransportError) Unwrap() error { return e.Err }

// TimeoutError means the request exceeded the configured ceiling.
type TimeoutError struct {
	After time.Duration
	Err   error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("analyst request timed out after %s", e.After)
}
func (e *TimeoutError) Unwrap() error { return e.Err }

// BackendError is a response with status >= 400.
type BackendError struct {
	Status    int
	Body      string
	RequestID string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("API Error (%d): %s", e.Status, e.Body)
}

// MalformedResponseError is a successful response whose payload lacks
// the expected keys.
type MalformedResponseError struct {
	RequestID string
	Reason    string
	Body      string
}

func (e *MalformedResponseError) Error() string {
	return "Unexpected API response format: " + e.Reason
}
