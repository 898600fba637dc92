// Package handlers defines the error codes returned in API error envelopes.
//
// Codes are lowercase snake_case and stable; clients branch on them rather
// than on messages. Most follow from the HTTP status (see codeForStatus);
// the rest name failures the status alone cannot convey.
//
// Example response:
//
//	{
//	  "request_id": "e1b9be03-4999-4289-9f03-999b042d65d6",
//	  "code": "not_implemented",
//	  "message": "version: execute() not yet implemented"
//	}
package handlers

import "net/http"

const (
	ErrCodeBadRequest     = "bad_request"
	ErrCodeUnauthorized   = "unauthorized"
	ErrCodeForbidden      = "forbidden"
	ErrCodeNotFound       = "not_found"
	ErrCodeConflict       = "conflict"
	ErrCodeUnprocessable  = "unprocessable_entity"
	ErrCodeRateLimited    = "too_many_requests"
	ErrCodeInternal       = "internal_error"
	ErrCodeNotImplemented = "not_implemented"
	ErrCodeUnavailable    = "service_unavailable"
	ErrCodeTimeout        = "timeout"

	// Domain-specific:
	ErrCodeUnknownCommand   = "unknown_command"
	ErrCodeCommandFailed    = "command_failed"
	ErrCodeListFailed       = "list_failed"
	ErrCodeMethodNotAllowed = "method_not_allowed"
)

// codeForStatus picks the generic code for a status. Statuses without a
// dedicated code fall back to command_failed (4xx) or internal_error (5xx).
func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return ErrCodeBadRequest
	case http.StatusUnauthorized:
		return ErrCodeUnauthorized
	case http.StatusForbidden:
		return ErrCodeForbidden
	case http.StatusNotFound:
		return ErrCodeNotFound
	case http.StatusMethodNotAllowed:
		return ErrCodeMethodNotAllowed
	case http.StatusConflict:
		return ErrCodeConflict
	case http.StatusUnprocessableEntity:
		return ErrCodeUnprocessable
	case http.StatusTooManyRequests:
		return ErrCodeRateLimited
	case http.StatusNotImplemented:
		return ErrCodeNotImplemented
	case http.StatusServiceUnavailable:
		return ErrCodeUnavailable
	case http.StatusGatewayTimeout:
		return ErrCodeTimeout
	}
	if status >= http.StatusInternalServerError {
		return ErrCodeInternal
	}
	return ErrCodeCommandFailed
}
