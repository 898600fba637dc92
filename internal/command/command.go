// Package command defines the unit of server-side work the REST layer
// dispatches: a Command bound to a shared Context with a single Execute
// operation.
//
// Lifecycle of one invocation:
//
//	factory(ctx) -> Command -> Execute -> succeeded | failed
//
// A Command is constructed per invocation and discarded afterwards; it is
// never retried or reused with a different Context. Failures travel back as
// plain errors. A command that wants a specific HTTP status returns an
// *httperr.HTTPError; one that has no behavior yet returns an error matching
// ErrNotImplemented.
package command

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/novaordis/rest-playground/internal/config"
)

var (
	// ErrNotImplemented marks an operation with no behavior yet. The HTTP
	// layer reports it as 501.
	ErrNotImplemented = errors.New("execute() not yet implemented")

	// ErrUnknownCommand is returned when no factory is registered under a name.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrInvalidName is returned when registering an empty command name.
	ErrInvalidName = errors.New("command name must not be empty")

	// ErrDuplicate is returned when a name is registered twice.
	ErrDuplicate = errors.New("command already registered")
)

// Context carries the ambient dependencies commands need. It is built once
// by the server and shared read-only by every invocation, so it must not be
// mutated after the first dispatch.
type Context struct {
	Config config.Config
	Logger zerolog.Logger
}

// Command is one unit of work bound to a Context.
type Command interface {
	// Name is the registry key the command was created under.
	Name() string
	// Context returns the bound Context. It may be nil.
	Context() *Context
	// Execute runs the command. It returns nil on success.
	Execute(ctx context.Context) error
}

// Reporter is implemented by commands that produce a payload on success.
// The dispatcher reads it only after Execute returned nil.
type Reporter interface {
	Report() any
}

// Factory constructs a fresh Command bound to c.
type Factory func(c *Context) Command

// Base holds the Context reference shared by concrete commands. Embed it and
// override Execute; Base alone is never executable.
type Base struct {
	ctx *Context
}

// NewBase binds a Base to c.
func NewBase(c *Context) Base { return Base{ctx: c} }

// Context returns the bound Context.
func (b Base) Context() *Context { return b.ctx }

// Execute always fails: concrete commands must provide their own.
func (b Base) Execute(context.Context) error { return ErrNotImplemented }

// logger returns the Context logger, or a disabled one for a nil Context.
func (b Base) logger() *zerolog.Logger {
	if b.ctx == nil {
		l := zerolog.Nop()
		return &l
	}
	return &b.ctx.Logger
}
