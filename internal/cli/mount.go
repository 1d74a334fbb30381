package cli

import (
	"context"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"ghostls/internal/mount"
)

func newMountCommand(o *options) *cobra.Command {
	var allowOther bool

	cmd := &cobra.Command{
		Use:   "mount <source> <mountpoint>",
		Short: "Mount a read-only view of a tree merged with its ghosts",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := o.resolve(cmd)
			if err != nil {
				return err
			}
			source := filepath.Clean(args[0])
			mountPoint := filepath.Clean(args[1])

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			gfs, err := mount.New(source, mount.Options{
				Listing:    listOptions(ctx, cfg, []string{source}, o.runner),
				AllowOther: allowOther,
			})
			if err != nil {
				return err
			}
			return serve(ctx, gfs, mountPoint)
		},
	}

	cmd.Flags().BoolVar(&allowOther, "allow-other", false, "let other users access the mount (needs user_allow_other)")
	return cmd
}

// serve mounts gfs and blocks until ctx is cancelled or the kernel
// unmounts it.
func serve(ctx context.Context, gfs *mount.GhostFS, mountPoint string) error {
	if err := gfs.Mount(mountPoint); err != nil {
		return err
	}
	logger.Info("Serving %s, interrupt to unmount", mountPoint)

	err := gfs.Wait(ctx)
	if ctx.Err() == nil {
		// unmounted from outside
		return err
	}

	logger.Info("Received signal, unmounting")
	if err := gfs.Unmount(mountPoint); err != nil {
		return err
	}
	if err := gfs.Wait(context.Background()); err != nil {
		logger.Warn("FUSE server stopped with error: %v", err)
	}
	logger.Info("Clean shutdown complete")
	return nil
}
