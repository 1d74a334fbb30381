package mount

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"ghostls/internal/fs"
	"ghostls/internal/logging"

	"bazil.org/fuse"
	fusefs "bazil.org/fuse/fs"
)

var (
	vfsLogger = logging.GetLogger().WithPrefix("mount")
)

// Options configures the mounted view.
type Options struct {
	// Listing is applied to every directory read through the mount. Dot
	// handling is fixed: dotfiles are shown and `.`/`..` come from the node.
	// Links are never dereferenced; they are served as links.
	Listing fs.ListOptions

	// AllowOther lets users other than the mounting one see the tree. It
	// requires user_allow_other in /etc/fuse.conf.
	AllowOther bool
}

// GhostFS serves a source directory merged with its ghost directories as a
// read-only FUSE filesystem.
type GhostFS struct {
	sourceDir string     // Root directory of source files
	opts      Options    // Listing options for every directory
	conn      *fuse.Conn // FUSE connection
	uid       uint32     // User ID reported for every node
	gid       uint32     // Group ID reported for every node
	done      chan error // Result of the serve loop
}

// New creates a filesystem for sourceDir. The directory is not read until
// the filesystem is mounted.
func New(sourceDir string, opts Options) (*GhostFS, error) {
	vfsLogger.Info("Creating ghost filesystem")
	vfsLogger.Debug("Source directory: %s", sourceDir)

	info, err := os.Stat(sourceDir)
	if err != nil {
		return nil, fmt.Errorf("source directory not accessible: %w", err)
	}
	if !info.IsDir() {
		return nil, fs.NewError(fs.OpLookup, sourceDir, fs.ErrNotDirectory)
	}

	// Get UID/GID from environment if set
	uid := safeIntToUint32(os.Getuid())
	gid := safeIntToUint32(os.Getgid())

	if puidStr := os.Getenv("PUID"); puidStr != "" {
		if puid, err := strconv.ParseUint(puidStr, 10, 32); err == nil {
			uid = uint32(puid)
			vfsLogger.Debug("Using PUID from environment: %d", uid)
		}
	}
	if pgidStr := os.Getenv("PGID"); pgidStr != "" {
		if pgid, err := strconv.ParseUint(pgidStr, 10, 32); err == nil {
			gid = uint32(pgid)
			vfsLogger.Debug("Using PGID from environment: %d", gid)
		}
	}

	opts.Listing.Dots = fs.Dotfiles
	opts.Listing.DerefLinks = false

	return &GhostFS{
		sourceDir: sourceDir,
		opts:      opts,
		uid:       uid,
		gid:       gid,
	}, nil
}

// Root implements the fusefs.FS interface, returning the root directory node.
func (gfs *GhostFS) Root() (fusefs.Node, error) {
	vfsLogger.Trace("Getting root directory node")
	return &Dir{
		fs:   gfs,
		path: NewSourcePath(""),
	}, nil
}

func waitForMount(mountpoint string) error {
	for i := 0; i < 30; i++ {
		info, err := os.Stat(mountpoint)
		if err == nil && info.IsDir() {
			return nil
		}
		time.Sleep(100 * time.Millisecond)
	}
	return fmt.Errorf("mount point not available after 3 seconds")
}

// Mount mounts the filesystem at mountPoint and serves it in the background.
// Wait blocks until serving stops.
func (gfs *GhostFS) Mount(mountPoint string) error {
	vfsLogger.Info("Mounting ghost filesystem")
	vfsLogger.Debug("Mount point: %s", mountPoint)
	vfsLogger.Debug("Source directory: %s", gfs.sourceDir)
	vfsLogger.Debug("UID: %d, GID: %d", gfs.uid, gfs.gid)

	// Check if source directory is readable
	if _, err := os.ReadDir(gfs.sourceDir); err != nil {
		vfsLogger.Error("Cannot read source directory: %v", err)
		return fmt.Errorf("source directory not readable: %w", err)
	}

	mountOpts := []fuse.MountOption{
		fuse.FSName("ghostls"),
		fuse.Subtype("ghostls"),
		fuse.ReadOnly(),
		fuse.DefaultPermissions(),
		fuse.AsyncRead(),
		fuse.AllowNonEmptyMount(),
	}
	if gfs.opts.AllowOther {
		mountOpts = append(mountOpts, fuse.AllowOther())
	}

	vfsLogger.Debug("Mounting with options: %+v", mountOpts)

	c, err := fuse.Mount(mountPoint, mountOpts...)
	if err != nil {
		return fmt.Errorf("mount failed: %w", err)
	}
	gfs.conn = c
	gfs.done = make(chan error, 1)

	go func() {
		err := fusefs.Serve(c, gfs)
		if err != nil {
			vfsLogger.Error("FUSE server error: %v", err)
		}
		gfs.done <- err
	}()

	// Wait for mount to be ready
	if err := waitForMount(mountPoint); err != nil {
		c.Close()
		vfsLogger.Error("Mount point not ready: %v", err)
		return fmt.Errorf("mount point failed to initialize: %w", err)
	}

	vfsLogger.Info("Filesystem mounted successfully")
	return nil
}

// Wait blocks until the serve loop exits or ctx is done.
func (gfs *GhostFS) Wait(ctx context.Context) error {
	if gfs.done == nil {
		return nil
	}
	select {
	case err := <-gfs.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Unmount cleanly unmounts the filesystem.
func (gfs *GhostFS) Unmount(mountPoint string) error {
	vfsLogger.Info("Unmounting filesystem from: %s", mountPoint)
	if gfs.conn == nil {
		return nil
	}
	if err := fuse.Unmount(mountPoint); err != nil {
		vfsLogger.Error("Unmount failed: %v", err)
		return err
	}
	vfsLogger.Info("Unmount completed successfully")
	return gfs.conn.Close()
}
