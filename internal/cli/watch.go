package cli

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"ghostls/internal/config"
	"ghostls/internal/gitstatus"
	"ghostls/internal/watch"
)

func newWatchCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "watch <path>",
		Short: "List a directory and list it again whenever it or its manifest changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := o.resolve(cmd)
			if err != nil {
				return err
			}

			w, err := watch.New(args[0])
			if err != nil {
				return err
			}
			defer w.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return watchLoop(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr(), args[0], cfg, o.runner, w)
		},
	}
}

// watchLoop prints the listing once and again after every change signal.
// Every listing resolves the manifest afresh.
func watchLoop(ctx context.Context, out, errOut io.Writer, path string, cfg *config.Config, runner gitstatus.CommandRunner, w *watch.Watcher) error {
	list := func() {
		if err := listPaths(ctx, out, errOut, []string{path}, cfg, runner); err != nil {
			logger.Debug("Listing %s failed: %v", path, err)
		}
	}

	list()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-w.Changes():
			logger.Debug("Change detected in %s", path)
			fmt.Fprintln(out)
			list()
		case err := <-w.Errors():
			logger.Warn("Watch error: %v", err)
		}
	}
}
