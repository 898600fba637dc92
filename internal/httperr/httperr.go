// Package httperr defines HTTPError, an error value that carries the HTTP
// status a failing operation wants its caller to report.
//
// Commands and services stay transport-agnostic: they return an *HTTPError
// through the ordinary error channel and the HTTP layer translates it into a
// response (see handlers.writeError). Nothing in this package writes to a
// connection.
//
// Status codes are stored as given. Range checking is left to the transport,
// which falls back to 500 for anything ErrorStatus rejects: an error is never
// reported with a 1xx, 2xx or 3xx status.
package httperr

import (
	"errors"
	"fmt"
)

// HTTPError is an error with an attached HTTP status code.
//
// The status and message are fixed at construction; there are no setters.
type HTTPError struct {
	status  int
	message string
	cause   error
}

// New returns an HTTPError with the given status and message.
func New(status int, message string) *HTTPError {
	return &HTTPError{status: status, message: message}
}

// Newf is New with a formatted message.
func Newf(status int, format string, args ...any) *HTTPError {
	return &HTTPError{status: status, message: fmt.Sprintf(format, args...)}
}

// Wrap returns an HTTPError that reports message and unwraps to cause.
// The cause is not folded into Error(), so clients only ever see message.
func Wrap(status int, message string, cause error) *HTTPError {
	return &HTTPError{status: status, message: message, cause: cause}
}

// StatusCode returns the status passed at construction.
func (e *HTTPError) StatusCode() int { return e.status }

// Message returns the message passed at construction.
func (e *HTTPError) Message() string { return e.message }

// Error implements the error interface.
func (e *HTTPError) Error() string { return e.message }

// Unwrap returns the wrapped cause, if any.
func (e *HTTPError) Unwrap() error { return e.cause }

// StatusOf returns the status of the first HTTPError in err's chain.
func StatusOf(err error) (int, bool) {
	var he *HTTPError
	if errors.As(err, &he) {
		return he.status, true
	}
	return 0, false
}

// ErrorStatus reports whether code is a client or server error status
// (400..599).
func ErrorStatus(code int) bool {
	return code >= 400 && code <= 599
}
