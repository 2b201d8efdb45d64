package reviewstore

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by GetByID when no review has the id.
	ErrNotFound = errors.New("review not found")

	// ErrStoreUnavailable is returned when the backing medium cannot be read.
	ErrStoreUnavailable = errors.New("review store unavailable")

	// ErrPersistenceFull is returned when the backing medium refuses a write for lack of space.
	ErrPersistenceFull = errors.New("review storage is full")

	// ErrTransport is returned for non-2xx responses and network failures of the remote store.
	ErrTransport = errors.New("review transport error")

	// ErrMirrorFailure marks a failed mirror write. It is logged and never returned to callers.
	ErrMirrorFailure = errors.New("review mirror write failed")
)

// TransportError is a failed round-trip to the remote review API.
// StatusCode is 0 when the request never got a response.
type TransportError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *TransportError) Error() string {
	return e.Message
}

func (e *TransportError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrTransport}
	}
	return []error{ErrTransport, e.Err}
}

func statusMessage(status int) string {
	return fmt.Sprintf("HTTP error, status %d", status)
}
