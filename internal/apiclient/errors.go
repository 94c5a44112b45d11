package apiclient

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNetwork matches every *NetworkError.
	ErrNetwork = errors.New("network error")

	// ErrUploadSource marks an upload aborted because a local file could
	// not be read.
	ErrUploadSource = errors.New("failed to read upload")
)

// NetworkError is a transport-level failure: no HTTP response was received.
type NetworkError struct {
	Op  string
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %s %s: %v", ErrNetwork, e.Op, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

func (e *NetworkError) Is(target error) bool {
	return target == ErrNetwork
}

// HTTPError is a non-2xx response. Message is taken from the response body
// when the server supplied one.
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s (%d)", e.Message, e.Status)
}

// Unauthorized reports a 401-class failure: the session is no longer usable.
func (e *HTTPError) Unauthorized() bool {
	return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
}

// AsHTTPError checks if an error is an HTTPError and returns it.
func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	if errors.As(err, &he) {
		return he, true
	}
	return nil, false
}

// IsUnauthorized reports whether err carries a 401 or 403 response.
func IsUnauthorized(err error) bool {
	he, ok := AsHTTPError(err)
	return ok && he.Unauthorized()
}
