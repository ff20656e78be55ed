// Package combine provides the combine command implementation.
package combine

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/agentstation/pricemap/cmd/application"
	"github.com/agentstation/pricemap/internal/cmd/output"
	"github.com/agentstation/pricemap/pkg/combiner"
	"github.com/agentstation/pricemap/pkg/constants"
	"github.com/agentstation/pricemap/pkg/logging"
)

// Report is the machine-readable outcome of one combined category.
type Report struct {
	Category string         `json:"category" yaml:"category"`
	Output   string         `json:"output" yaml:"output"`
	Stats    combiner.Stats `json:"stats" yaml:"stats"`
}

// NewCommand creates the combine command using app context.
func NewCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:     "combine [category...]",
		GroupID: "core",
		Short:   "Combine vendor files into unified catalogs",
		Long: `Combine matches the products of every vendor file in a category against
the base vendor, keeps only products offered by all vendors, and writes the
result to the category's _combined.json. The aggregate final.json is rebuilt
afterwards.

Without arguments every category is combined.`,
		Example: `  pricemap combine                    # Combine every category
  pricemap combine laptop mobiles     # Combine two categories, then the aggregate
  pricemap combine -o json            # Print stats as JSON`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return Run(cmd.Context(), app, args, cmd.OutOrStdout())
		},
	}
}

// Run combines the named categories, or all of them, rebuilds the aggregate
// and prints the per-category stats to w.
func Run(ctx context.Context, app application.Application, categories []string, w io.Writer) error {
	ctx, cancel := context.WithTimeout(ctx, constants.CommandTimeout)
	defer cancel()
	ctx = logging.WithLogger(ctx, app.Logger())

	c, err := app.Combiner()
	if err != nil {
		return err
	}

	results := make([]*combiner.Result, 0, len(categories))
	for _, name := range categories {
		result, err := c.Category(logging.WithCategory(ctx, name), name)
		if err != nil {
			return err
		}
		results = append(results, result)
	}

	summary, err := c.Final(ctx)
	if err != nil {
		return err
	}
	if len(categories) == 0 {
		results = summary.Categories
	}

	reports := make([]Report, len(results))
	for i, r := range results {
		reports[i] = Report{Category: r.Category, Output: r.Output, Stats: r.Stats}
	}

	format := output.DetectFormat(app.OutputFormat())
	return output.Write(w, format, reports, func(wide bool) output.Data {
		return output.CombineTable(results, wide)
	})
}
