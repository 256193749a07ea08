package server

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	errWouldBlock = errors.New("would block")

	errIdleTimeout    = newConnError("timeout", "idle timeout exceeded")
	errOversize       = newConnError("oversize", "request exceeds buffer capacity")
	errHeaderTooLarge = newConnError("oversize", "header exceeds max header bytes")
	errContentLength  = newConnError("protocol", "content-length parse error")
	errNotKeepAlive   = newConnError("close", "connection not persistent")
	errTableFull      = newConnError("rejected", "connection table full")
	errServerShutdown = newConnError("shutdown", "server shutting down")
)

// connError is a reason to close a connection. Group is used as the metrics label.
type connError struct {
	Group string
	Err   error
}

func newConnError(group string, str string) error {
	return &connError{
		Group: group,
		Err:   errors.New(str),
	}
}

func wrapConnError(group string, err error) error {
	return &connError{
		Group: group,
		Err:   err,
	}
}

func (e *connError) Error() string {
	if e.Group == "" {
		return fmt.Sprintf("%v", e.Err)
	}
	return fmt.Sprintf("%s error: %v", e.Group, e.Err)
}

func (e *connError) Unwrap() error {
	return e.Err
}

// closeReason returns the group of err, or "error" if err carries none.
func closeReason(err error) string {
	var ce *connError
	if errors.As(err, &ce) {
		return ce.Group
	}
	return "error"
}
