// Package status provides the status command implementation.
package status

import (
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/agentstation/pricemap/cmd/application"
	"github.com/agentstation/pricemap/internal/cmd/output"
	"github.com/agentstation/pricemap/pkg/status"
)

// NewCommand creates the status command using app context.
func NewCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:     "status",
		GroupID: "management",
		Short:   "Show the state of vendor files and combined outputs",
		Long: `Status lists, per category, every vendor file with its product count,
size and age, followed by the combined output and the aggregate.

Files modified within the last hour are fresh, within the last day stale,
and old otherwise.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return Run(app, time.Now(), cmd.OutOrStdout())
		},
	}
}

// Run collects a status report as of now and prints it to w.
func Run(app application.Application, now time.Time, w io.Writer) error {
	reg, err := app.Registry()
	if err != nil {
		return err
	}

	report := status.Collect(reg, now)
	app.Logger().Debug().
		Int("categories", len(report.Categories)).
		Int("products", report.Products).
		Msg("Status collected")

	format := output.DetectFormat(app.OutputFormat())
	return output.Write(w, format, report, func(wide bool) output.Data {
		return output.StatusTable(report, wide)
	})
}
