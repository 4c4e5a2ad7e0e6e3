package relay

import (
	"errors"
	"fmt"
)

// ErrDryRun is returned by writes that were skipped because the client is in
// dry-run mode.
var ErrDryRun = errors.New("dry run: write skipped")

// RemoteError is a failed call to the relay API: either a transport failure
// (StatusCode == 0) or a non-2xx response.
type RemoteError struct {
	// Op is the client operation: list, get, create, update, delete.
	Op string

	Method string
	URL    string

	// StatusCode is the HTTP status, or 0 when no response was received.
	StatusCode int

	// Body is the (truncated) response body of a non-2xx response.
	Body string

	// RequestID is the X-Request-ID sent with the request.
	RequestID string

	// Err is the underlying transport or decode error, if any.
	Err error
}

// Error implements the error interface.
func (e *RemoteError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("relay %s: %s %s: %v", e.Op, e.Method, e.URL, e.Err)
	}
	if e.Body != "" {
		return fmt.Sprintf("relay %s: %s %s: status %d: %s", e.Op, e.Method, e.URL, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("relay %s: %s %s: status %d", e.Op, e.Method, e.URL, e.StatusCode)
}

// Unwrap returns the underlying error.
func (e *RemoteError) Unwrap() error {
	return e.Err
}

// IsRemoteError returns true if err is or wraps a RemoteError.
func IsRemoteError(err error) bool {
	var re *RemoteError
	return errors.As(err, &re)
}

// IsNotFound returns true if err is a RemoteError with status 404.
func IsNotFound(err error) bool {
	var re *RemoteError
	if errors.As(err, &re) {
		return re.StatusCode == 404
	}
	return false
}
