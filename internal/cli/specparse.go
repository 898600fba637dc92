// Package cli builds the cobra commands behind the repository's binaries.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/novaordis/rest-playground/internal/apispec"
)

// NewSpecParseCommand returns the root command of the specparse binary. It
// parses the single Swagger 2.0 or OpenAPI 3.x document named on the command
// line and writes the parsed result to out.
//
// Parse failures are returned unchanged so the caller decides how to report
// them.
func NewSpecParseCommand(out io.Writer) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "specparse <file>",
		Short: "parse a Swagger/OpenAPI document and print it",
		Args: func(_ *cobra.Command, args []string) error {
			switch {
			case len(args) == 0:
				return apispec.ErrMissingPath
			case len(args) > 1:
				return fmt.Errorf("expected exactly one file path, got %d", len(args))
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			doc, err := apispec.Load(ctx, args[0])
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(doc.Summary())
			}
			_, err = io.WriteString(out, doc.String())
			return err
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the document summary as JSON")
	return cmd
}
