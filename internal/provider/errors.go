package provider

import (
	"errors"
	"fmt"
)

var (
	// Sentinel errors for errors.Is checks at the boundary.
	ErrUnavailable = errors.New("provider: host unreachable or transport failure")
	ErrUpstream    = errors.New("provider: upstream error (non-2xx)")
	ErrBadResponse = errors.New("provider: invalid response format or malformed data")
	ErrTimeout     = errors.New("provider: request timed out")
	ErrThrottled   = errors.New("provider: client-side rate limit exceeded")
)

// Error is a rich error type that wraps the sentinel errors with context.
type Error struct {
	Sentinel  error
	Operation string
	Status    int
	Body      string
	Err       error // nested lower-level error (e.g. net.Error)
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("provider: %s: %v", e.Operation, e.Sentinel)
	if e.Status > 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.Status)
	}
	if e.Body != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Body)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Sentinel
}
