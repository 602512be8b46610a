package resource

import "errors"

var (
	// ErrAdapterUnavailable means a sensor read or actuator write failed.
	ErrAdapterUnavailable = errors.New("adapter unavailable")
	// ErrMalformedRequest means a write did not carry a usable target state.
	ErrMalformedRequest = errors.New("malformed request")
	// ErrNotFound means the addressed resource does not exist.
	ErrNotFound = errors.New("resource not found")
)

// RequestError carries a reason meant for the client.
type RequestError struct {
	Reason string
}

func (e *RequestError) Error() string { return e.Reason }

// Unwrap lets errors.Is match ErrMalformedRequest.
func (e *RequestError) Unwrap() error { return ErrMalformedRequest }

func malformed(reason string) error {
	return &RequestError{Reason: reason}
}
