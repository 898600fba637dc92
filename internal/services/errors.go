// Package services holds the application layer: the command dispatcher and
// the execution log queries built on top of it.
//
// This file centralizes service-level error values and the mapping from a
// command failure to the HTTP status it is reported with. The mapping lives
// here, not in the transport, because the status is also stored on each
// execution record.
package services

import (
	"context"
	"errors"
	"net/http"

	"github.com/novaordis/rest-playground/internal/command"
	"github.com/novaordis/rest-playground/internal/httperr"
)

var (
	// ErrExecutionNotFound indicates that no execution exists with the given ID.
	ErrExecutionNotFound = errors.New("execution not found")
)

// StatusFor returns the HTTP status a command error is reported with.
//
//   - nil                        -> 200
//   - *httperr.HTTPError         -> its status, or 500 when out of range
//   - command.ErrNotImplemented  -> 501
//   - command.ErrUnknownCommand  -> 404
//   - context.DeadlineExceeded   -> 504
//   - anything else              -> 500
//
// An HTTPError anywhere in the chain wins over the sentinels.
func StatusFor(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if status, ok := httperr.StatusOf(err); ok {
		if httperr.ErrorStatus(status) {
			return status
		}
		return http.StatusInternalServerError
	}
	switch {
	case errors.Is(err, command.ErrNotImplemented):
		return http.StatusNotImplemented
	case errors.Is(err, command.ErrUnknownCommand):
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
