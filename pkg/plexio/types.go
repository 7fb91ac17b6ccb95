package plexio

import (
	"errors"
	"fmt"
)

// Max number of bytes of a non-OK response body that's kept for diagnostics.
const bodyPreviewLen = 300

// Max size of a successful response body.
const maxBodyLen = 4 << 20 // 4 MiB

// ErrNotConfigured is returned when the client has no base URL.
// No request is sent in that case.
var ErrNotConfigured = errors.New("Plexio base URL not configured")

// ErrBodyTooLarge is returned when a successful response body exceeds 4 MiB.
var ErrBodyTooLarge = errors.New("Plexio response body too large")

// StatusError is returned when Plexio responds with a non-2xx status code.
type StatusError struct {
	StatusCode int
	// The beginning of the response body
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("bad GET response: %v", e.StatusCode)
}

// DecodeError is returned when the response body of a successful response isn't a JSON object.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("couldn't unmarshal response body: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
