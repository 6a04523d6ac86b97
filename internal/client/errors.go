package client

import (
	"errors"
	"fmt"
)

// TransportError reports a failed call to the service: a network failure,
// a non-2xx status, or a body that could not be decoded.
type TransportError struct {
	Op         string
	StatusCode int // 0 when no response was received
	Err        error
}

func newTransportError(op string, status int, err error) *TransportError {
	return &TransportError{Op: op, StatusCode: status, Err: err}
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransportError reports whether err is, or wraps, a TransportError.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
