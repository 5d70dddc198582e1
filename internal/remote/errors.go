package remote

import (
	"errors"
	"fmt"
)

// ErrUnreachable wraps every transport-level failure: refused connections,
// DNS errors, timeouts and cancelled contexts.
var ErrUnreachable = errors.New("remote unreachable")

// StatusError is a non-2xx response.  Message is the "error" field of the
// JSON body when present, otherwise the status text.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("remote: %d %s", e.Code, e.Message)
}

// IsUnreachable reports whether err came from the transport rather than
// from a server response.
func IsUnreachable(err error) bool { return errors.Is(err, ErrUnreachable) }

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == code
}
