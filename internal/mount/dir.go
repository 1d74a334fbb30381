package mount

import (
	"context"
	"errors"
	"os"
	"syscall"

	"ghostls/internal/fs"
	"ghostls/internal/logging"

	"bazil.org/fuse"
	fusefs "bazil.org/fuse/fs"
)

var (
	dirLogger = logging.GetLogger().WithPrefix("dir")
)

// Dir represents a directory in the mounted tree. It is either a real
// directory of the source or a ghost that exists only in the manifest.
type Dir struct {
	fs    *GhostFS
	path  *SourcePath
	ghost bool
}

func (d *Dir) fullPath() string {
	return d.path.FullPath(d.fs.sourceDir)
}

// Attr implements the Node interface, returning directory attributes.
func (d *Dir) Attr(_ context.Context, a *fuse.Attr) error {
	dirLogger.Trace("Getting attributes for directory: %q (ghost=%v)", d.path.String(), d.ghost)

	a.Uid = d.fs.uid
	a.Gid = d.fs.gid

	if d.ghost {
		a.Mode = os.ModeDir | 0555
		return nil
	}

	info, err := os.Stat(d.fullPath())
	if err != nil {
		dirLogger.Warn("Failed to stat directory %q: %v", d.path.String(), err)
		return ToFuseError(err)
	}
	a.Mode = readOnlyMode(info.Mode())
	a.Mtime = info.ModTime()
	a.Atime = info.ModTime()
	a.Ctime = info.ModTime()
	return nil
}

// listing opens the directory through the listing layer.
func (d *Dir) listing() (*fs.Files, error) {
	dir, err := fs.OpenDir(d.fullPath())
	if err != nil {
		return nil, err
	}
	return dir.Files(d.fs.opts.Listing), nil
}

// Lookup implements the NodeStringLookuper interface, finding a child node.
// A missing child resolves only when this directory's listing shows it as
// a ghost.
func (d *Dir) Lookup(_ context.Context, name string) (fusefs.Node, error) {
	dirLogger.Debug("Looking up %q in directory %q", name, d.path.String())
	childPath := d.path.Join(name)

	info, err := os.Lstat(childPath.FullPath(d.fs.sourceDir))
	switch {
	case err == nil && info.IsDir():
		return &Dir{fs: d.fs, path: childPath}, nil
	case err == nil:
		return &File{fs: d.fs, path: childPath}, nil
	case !errors.Is(err, os.ErrNotExist):
		dirLogger.Warn("Failed to stat %q: %v", childPath.String(), err)
		return nil, ToFuseError(err)
	}

	files, err := d.listing()
	if err != nil {
		dirLogger.Debug("Path not found: %q", childPath.String())
		return nil, syscall.ENOENT
	}
	for f, ok := files.Next(); ok; f, ok = files.Next() {
		if f.IsGhost() && f.Name == name {
			dirLogger.Debug("Found ghost directory: %q", childPath.String())
			return &Dir{fs: d.fs, path: childPath, ghost: true}, nil
		}
	}

	dirLogger.Debug("Path not found: %q", childPath.String())
	return nil, syscall.ENOENT
}

// ReadDirAll implements the HandleReadDirAller interface, listing directory
// contents: real entries first, then ghosts.
func (d *Dir) ReadDirAll(_ context.Context) ([]fuse.Dirent, error) {
	dirLogger.Debug("Reading directory contents: %q", d.path.String())
	var entries []fuse.Dirent

	// Add standard entries
	entries = append(entries, fuse.Dirent{Name: ".", Type: fuse.DT_Dir})
	entries = append(entries, fuse.Dirent{Name: "..", Type: fuse.DT_Dir})

	files, err := d.listing()
	if err != nil {
		// a zone leaf has nothing declared below it
		if d.ghost && errors.Is(err, fs.ErrInvalidGhostDir) {
			return entries, nil
		}
		dirLogger.Error("Failed to list %q: %v", d.path.String(), err)
		return nil, ToFuseError(err)
	}

	for f, ok := files.Next(); ok; f, ok = files.Next() {
		if f.IsDot() {
			continue
		}
		dirLogger.Trace("Found entry: %q (ghost=%v, zone=%v)", f.Name, f.IsGhost(), f.Zone)
		entries = append(entries, fuse.Dirent{
			Name: f.Name,
			Type: direntType(f.Mode()),
		})
	}

	dirLogger.Debug("Directory %q contains %d entries", d.path.String(), len(entries))
	return entries, nil
}

// Setattr implements the NodeSetattrer interface. The mount is read-only.
func (d *Dir) Setattr(_ context.Context, _ *fuse.SetattrRequest, _ *fuse.SetattrResponse) error {
	return readOnly(OpSetattr, d.path.String())
}

// Mkdir implements the NodeMkdirer interface. The mount is read-only.
func (d *Dir) Mkdir(_ context.Context, req *fuse.MkdirRequest) (fusefs.Node, error) {
	dirLogger.Warn("Rejected mkdir of %q in %q", req.Name, d.path.String())
	return nil, readOnly(OpMkdir, d.path.Join(req.Name).String())
}

// Remove implements the NodeRemover interface. The mount is read-only.
func (d *Dir) Remove(_ context.Context, req *fuse.RemoveRequest) error {
	dirLogger.Warn("Rejected removal of %q in %q", req.Name, d.path.String())
	return readOnly(OpRemove, d.path.Join(req.Name).String())
}

// Rename implements the NodeRenamer interface. The mount is read-only.
func (d *Dir) Rename(_ context.Context, req *fuse.RenameRequest, _ fusefs.Node) error {
	dirLogger.Warn("Rejected rename of %q to %q", req.OldName, req.NewName)
	return readOnly(OpRename, d.path.Join(req.OldName).String())
}
