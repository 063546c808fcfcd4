package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyQuery is returned when a blank username is submitted
	ErrEmptyQuery = errors.New("username is empty")
	// ErrLookupInFlight is returned when submitting while a lookup is pending
	ErrLookupInFlight = errors.New("lookup already in flight")
	// ErrUserNotFound is returned when the directory has no such user
	ErrUserNotFound = errors.New("user not found")
	// ErrTimeout marks a lookup that did not settle before its deadline
	ErrTimeout = errors.New("lookup timed out")
)

// TransportError wraps any failure talking to the user directory
type TransportError struct {
	Username string
	Status   int // HTTP status, 0 if no response was received
	Err      error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("lookup %q: status %d: %v", e.Username, e.Status, e.Err)
	}
	return fmt.Sprintf("lookup %q: %v", e.Username, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsTransport reports whether err is, or wraps, a TransportError
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
