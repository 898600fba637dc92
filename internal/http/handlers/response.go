// Package handlers provides the HTTP handlers of the public API.
//
// This file holds the response helpers shared by every endpoint: the error
// envelope, fail, and writeError, which turns a command error into a
// response.
//
// Example error response:
//
//	HTTP/1.1 501 Not Implemented
//	{
//	  "request_id": "123e4567-e89b-12d3-a456-426614174000",
//	  "code": "not_implemented",
//	  "message": "version: execute() not yet implemented"
//	}
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/novaordis/rest-playground/internal/command"
	"github.com/novaordis/rest-playground/internal/http/middleware"
	"github.com/novaordis/rest-playground/internal/httperr"
	"github.com/novaordis/rest-playground/internal/services"
)

// ErrorResponse is the error envelope returned by all endpoints.
type ErrorResponse struct {
	// Correlates server logs and client errors
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Stable, machine-readable code (see errors.go constants)
	Code string `json:"code" example:"not_implemented"`
	// Human-readable message (safe to show to users)
	Message string `json:"message" example:"version: execute() not yet implemented"`
}

// fail aborts with the error envelope. 5xx responses are logged with the
// request-scoped logger.
func fail(c *gin.Context, status int, code, msg string) {
	if status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("code", code).
			Str("message", msg).
			Msg("api error")
	}
	c.AbortWithStatusJSON(status, ErrorResponse{
		RequestID: c.Writer.Header().Get("X-Request-ID"),
		Code:      code,
		Message:   msg,
	})
}

// Fail is the exported variant of fail, for router-level handlers.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

// writeError reports a dispatch error.
//
//   - *httperr.HTTPError: its status and message; 500 when the status is
//     not a 4xx or 5xx
//   - command.ErrNotImplemented: 501 not_implemented
//   - command.ErrUnknownCommand: 404 unknown_command
//   - anything else: the status from services.StatusFor, with the message
//     hidden behind a generic one for 5xx
func writeError(c *gin.Context, err error) {
	status := services.StatusFor(err)

	var he *httperr.HTTPError
	switch {
	case errors.As(err, &he):
		code := codeForStatus(status)
		if !httperr.ErrorStatus(he.StatusCode()) {
			middleware.LoggerFrom(c).Warn().
				Int("declared_status", he.StatusCode()).
				Msg("http error with non-error status")
			code = ErrCodeInternal
		}
		fail(c, status, code, he.Message())
	case errors.Is(err, command.ErrNotImplemented):
		fail(c, status, ErrCodeNotImplemented, err.Error())
	case errors.Is(err, command.ErrUnknownCommand):
		fail(c, status, ErrCodeUnknownCommand, err.Error())
	case status >= http.StatusInternalServerError:
		_ = c.Error(err)
		msg := http.StatusText(status)
		if status == http.StatusInternalServerError {
			msg = "internal server error"
		}
		fail(c, status, codeForStatus(status), msg)
	default:
		fail(c, status, codeForStatus(status), err.Error())
	}
}

func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}
