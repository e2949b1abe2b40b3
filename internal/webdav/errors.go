package webdav

import (
	"errors"
	"fmt"
)

// ErrRangeNotSatisfiable reports that no bytes exist beyond the requested offset.
var ErrRangeNotSatisfiable = errors.New("range not satisfiable")

// ErrNotConfigured reports a client built without a server.
var ErrNotConfigured = errors.New("webdav client not configured")

// TransportError describes a failed remote call: the server could not be
// reached or answered with an unexpected status.
type TransportError struct {
	Op         string
	Object     string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	target := e.Object
	if target == "" {
		target = "logs directory"
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("webdav %s %s: unexpected status %d", e.Op, target, e.StatusCode)
	}
	return fmt.Sprintf("webdav %s %s: %v", e.Op, target, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransportError reports whether err wraps a *TransportError.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
