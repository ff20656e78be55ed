// Package watch provides the watch command implementation.
package watch

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/agentstation/pricemap/cmd/application"
	"github.com/agentstation/pricemap/pkg/combiner"
	"github.com/agentstation/pricemap/pkg/logging"
	"github.com/agentstation/pricemap/pkg/scheduler"
	"github.com/agentstation/pricemap/pkg/watcher"
)

// NewCommand creates the watch command using app context.
func NewCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:     "watch",
		GroupID: "core",
		Short:   "Recombine categories whenever a vendor file changes",
		Long: `Watch combines every category once, then watches the category directories
and recombines a category, followed by the aggregate, whenever one of its
vendor files changes content.

Changes arriving within the debounce interval of the last triggered
recompute are dropped. On SIGINT or SIGTERM the watcher stops and running
recomputes are allowed to finish, bounded by the shutdown timeout.`,
		Example: `  pricemap watch
  pricemap watch --debounce 3s
  pricemap watch --root ./data --registry registry.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return Run(cmd.Context(), app, nil)
		},
	}
}

// Run performs the initial full combine and watches until ctx is done.
// ready, when non-nil, is called once the watcher is attached.
func Run(ctx context.Context, app application.Application, ready func()) error {
	logger := app.Logger()
	ctx = logging.WithLogger(ctx, logger)

	c, err := app.Combiner()
	if err != nil {
		return err
	}

	if _, err := c.Final(ctx); err != nil {
		return err
	}

	sched := scheduler.New(ctx, recompute(c), 0)
	w := watcher.New(c.Registry(), c.Cache(), sched, app.DebounceInterval())

	if ready != nil {
		go func() {
			select {
			case <-w.Ready():
				ready()
			case <-ctx.Done():
			}
		}()
	}

	runErr := w.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), app.ShutdownTimeout())
	defer cancel()

	logger.Info().Msg("Draining pending recomputes")
	if err := sched.Close(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("Shutdown timed out with recomputes still running")
		if runErr == nil {
			runErr = err
		}
	}
	return runErr
}

// recompute combines one category and then rebuilds the aggregate.
func recompute(c *combiner.Combiner) scheduler.Task {
	return func(ctx context.Context, category string) error {
		if _, err := c.Category(ctx, category); err != nil {
			return err
		}
		_, err := c.Final(ctx)
		return err
	}
}
