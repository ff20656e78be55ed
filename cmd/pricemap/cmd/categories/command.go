// Package categories provides the categories command implementation.
package categories

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/agentstation/pricemap/cmd/application"
	"github.com/agentstation/pricemap/internal/cmd/output"
)

// NewCommand creates the categories command using app context.
func NewCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:     "categories",
		Aliases: []string{"registry"},
		GroupID: "management",
		Short:   "Show the effective registry",
		Long: `Categories prints the registry in effect: the ordered vendor list, every
category with its directory, and the vendor file that supplies features and
images. Use -o yaml to get a file that can be passed back with --registry.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return Run(app, cmd.OutOrStdout())
		},
	}
}

// Run prints the effective registry to w.
func Run(app application.Application, w io.Writer) error {
	reg, err := app.Registry()
	if err != nil {
		return err
	}

	format := output.DetectFormat(app.OutputFormat())
	if format == output.FormatYAML {
		data, err := reg.FormatYAML()
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	}

	return output.Write(w, format, reg, func(wide bool) output.Data {
		return output.RegistryTable(reg, wide)
	})
}
