package command

import (
	"context"
	"net/http"

	"github.com/novaordis/rest-playground/internal/apispec"
	"github.com/novaordis/rest-playground/internal/httperr"
)

// DescribeAPIName is the registry key of the describe-api command.
const DescribeAPIName = "describe-api"

// DescribeAPI parses the document at Config.APISpecPath and reports its
// summary.
type DescribeAPI struct {
	Base
	summary *apispec.Summary
}

// NewDescribeAPI returns a DescribeAPI bound to c.
func NewDescribeAPI(c *Context) Command {
	return &DescribeAPI{Base: NewBase(c)}
}

// Name implements Command.
func (*DescribeAPI) Name() string { return DescribeAPIName }

// Execute implements Command.
//
// Failures:
//   - 404 when no document path is configured
//   - 422 wrapping the loader error when the document cannot be read or parsed
func (d *DescribeAPI) Execute(ctx context.Context) error {
	c := d.Context()
	if c == nil || c.Config.APISpecPath == "" {
		return httperr.New(http.StatusNotFound, "api specification not configured")
	}

	doc, err := apispec.Load(ctx, c.Config.APISpecPath)
	if err != nil {
		d.logger().Warn().Err(err).Str("path", c.Config.APISpecPath).Msg("describe-api: load failed")
		return httperr.Wrap(http.StatusUnprocessableEntity, "cannot load api specification", err)
	}

	s := doc.Summary()
	d.summary = &s
	d.logger().Debug().
		Str("title", s.Title).
		Int("operations", s.OperationCount).
		Msg("describe-api: loaded")
	return nil
}

// Report implements Reporter. It is nil until Execute succeeds.
func (d *DescribeAPI) Report() any {
	if d.summary == nil {
		return nil
	}
	return d.summary
}
