package remote

import (
	"errors"
	"fmt"
)

// ErrNetwork wraps transport-level failures: timeouts, refused
// connections, unreadable responses. Never retried automatically;
// "try again" is a user action.
var ErrNetwork = errors.New("remote: network failure")

// APIError is a failure the server acknowledged: a non-2xx status with
// an optional reason from the error envelope.
type APIError struct {
	Status int
	Reason string
}

func (e *APIError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("server error: %s (status %d)", e.Reason, e.Status)
	}
	return fmt.Sprintf("server error: status %d", e.Status)
}
