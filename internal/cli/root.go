package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"ghostls/internal/config"
	"ghostls/internal/fs"
	"ghostls/internal/gitstatus"
	"ghostls/internal/logging"
)

// Version is injected at build time via -ldflags
var Version = "dev"

var logger = logging.GetLogger().WithPrefix("cli")

// ErrListingFailed is returned when at least one path could not be listed.
var ErrListingFailed = errors.New("some paths could not be listed")

// options holds the flags shared by every command.
type options struct {
	configPath  string
	logLevel    string
	all         int
	gitIgnore   bool
	deref       bool
	totalSize   bool
	noGhosts    bool
	long        bool
	ignoreGlobs []string
	color       string

	// runner executes git; tests replace it
	runner gitstatus.CommandRunner
}

// NewRootCommand creates and returns the root cobra command for ghostls
func NewRootCommand() *cobra.Command {
	o := &options{runner: gitstatus.ExecRunner{}}

	cmd := &cobra.Command{
		Use:   "ghostls [path...]",
		Short: "List directories together with their manifest ghosts",
		Long: `ghostls lists directories the way ls does and adds the entries a
src/.meta/manifest.json declares below them but which are missing on disk.

Directories that exist only in the manifest can be listed too.`,
		Version: Version,
		Args:    cobra.ArbitraryArgs,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
		// main reports errors
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := o.resolve(cmd)
			if err != nil {
				return err
			}
			if len(args) == 0 {
				args = []string{"."}
			}
			return listPaths(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), args, cfg, o.runner)
		},
	}

	o.addListingFlags(cmd)
	cmd.PersistentFlags().StringVar(&o.configPath, "config", "", "configuration file (default $GHOSTLS_CONFIG or ~/.config/ghostls/config.yaml)")
	cmd.PersistentFlags().StringVar(&o.logLevel, "log-level", "", "log level: error, warn, info, debug, trace")

	cmd.AddCommand(newMountCommand(o))
	cmd.AddCommand(newWatchCommand(o))

	return cmd
}

func (o *options) addListingFlags(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.CountVarP(&o.all, "all", "a", "show dotfiles; repeat to also show . and ..")
	f.BoolVar(&o.gitIgnore, "git-ignore", false, "hide entries ignored by git")
	f.BoolVarP(&o.deref, "dereference", "L", false, "show the metadata of link targets")
	f.BoolVar(&o.totalSize, "total-size", false, "size directories by their whole subtree")
	f.BoolVar(&o.noGhosts, "no-ghosts", false, "do not read the manifest")
	f.StringArrayVarP(&o.ignoreGlobs, "ignore-glob", "I", nil, "hide entries whose name matches the glob (repeatable)")
	f.BoolVarP(&o.long, "long", "l", false, "render a table with entry details")
	f.StringVar(&o.color, "color", "", "when to color output: auto, always, never")
}

// resolve merges the configuration file, the environment and the flags that
// were set explicitly, in that order.
func (o *options) resolve(cmd *cobra.Command) (*config.Config, error) {
	path := o.configPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()

	flags := cmd.Flags()
	if flags.Changed("all") {
		cfg.Dots = o.all
		if cfg.Dots > 2 {
			cfg.Dots = 2
		}
	}
	if flags.Changed("git-ignore") {
		cfg.GitIgnore = o.gitIgnore
	}
	if flags.Changed("dereference") {
		cfg.DerefLinks = o.deref
	}
	if flags.Changed("total-size") {
		cfg.TotalSize = o.totalSize
	}
	if flags.Changed("no-ghosts") {
		cfg.NoGhosts = o.noGhosts
	}
	if flags.Changed("ignore-glob") {
		cfg.IgnoreGlobs = append(cfg.IgnoreGlobs, o.ignoreGlobs...)
	}
	if flags.Changed("long") {
		cfg.Long = o.long
	}
	if flags.Changed("color") {
		cfg.Color = o.color
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = o.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	level, _ := logging.ParseLevel(cfg.LogLevel)
	logging.GetLogger().SetLevel(level)
	logger.Debug("Configuration: %+v", *cfg)
	return cfg, nil
}

// listOptions builds the listing options, attaching git status when
// ignored entries must be hidden.
func listOptions(ctx context.Context, cfg *config.Config, paths []string, runner gitstatus.CommandRunner) fs.ListOptions {
	opts := cfg.ListOptions()
	if cfg.GitIgnore {
		opts.Git = gitstatus.NewCache(ctx, paths, runner)
	}
	return opts
}

// listPaths lists every path in turn. A path that fails is reported on
// errOut and the rest are still listed.
func listPaths(ctx context.Context, out, errOut io.Writer, paths []string, cfg *config.Config, runner gitstatus.CommandRunner) error {
	if ctx == nil {
		ctx = context.Background()
	}
	opts := listOptions(ctx, cfg, paths, runner)
	r := &Renderer{Color: colorEnabled(cfg.Color, out), Long: cfg.Long}

	failed := false
	printed := 0
	for _, path := range paths {
		dir, err := fs.OpenDir(path)
		if err != nil {
			fmt.Fprintf(errOut, "ghostls: %s: %v\n", path, causeOf(err))
			failed = true
			continue
		}

		if len(paths) > 1 {
			if printed > 0 {
				fmt.Fprintln(out)
			}
			fmt.Fprintf(out, "%s:\n", path)
		}
		if err := r.Render(out, dir.Files(opts).Collect()); err != nil {
			return err
		}
		printed++
	}

	if failed {
		return ErrListingFailed
	}
	return nil
}

// causeOf strips the operation context from listing errors for display.
func causeOf(err error) error {
	var fsErr *fs.Error
	if errors.As(err, &fsErr) {
		return fsErr.Err
	}
	return err
}
