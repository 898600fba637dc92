package command

import (
	"context"
	"fmt"
)

// VersionName is the registry key of the version command.
const VersionName = "version"

// Version reports service version information. It has no behavior yet and
// fails every invocation with ErrNotImplemented.
type Version struct {
	Base
}

// NewVersion returns a Version bound to c. c may be nil.
func NewVersion(c *Context) Command {
	return &Version{Base: NewBase(c)}
}

// Name implements Command.
func (*Version) Name() string { return VersionName }

// Execute implements Command.
func (v *Version) Execute(context.Context) error {
	return fmt.Errorf("%s: %w", VersionName, ErrNotImplemented)
}
