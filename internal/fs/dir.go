package fs

import (
	"errors"
	iofs "io/fs"
	"os"
	"path/filepath"

	"ghostls/internal/logging"
	"ghostls/internal/manifest"
)

var (
	dirLogger = logging.GetLogger().WithPrefix("dir")
)

// GhostContext is the manifest context of a directory that exists only in
// the manifest. Canonical is the path the directory would have on disk.
type GhostContext struct {
	Manifest  *manifest.Info
	Canonical string
}

// Dir is a snapshot of one directory's entries. It is read at most once and
// only queried afterwards. A ghost Dir has no physical entries at all.
type Dir struct {
	// Path is the path as given by the caller, not necessarily canonical.
	Path string

	contents []os.DirEntry
	ghost    *GhostContext
	read     bool
}

// NewDir creates an empty snapshot of path without reading it.
func NewDir(path string) *Dir {
	return &Dir{Path: path}
}

// NewGhostDir creates a snapshot of a virtual directory. The manifest context
// must be resolved by the caller (see manifest.IsValidGhostDir) since the
// path cannot be canonicalized.
func NewGhostDir(path string, info *manifest.Info, canonical string) *Dir {
	return &Dir{
		Path:  path,
		ghost: &GhostContext{Manifest: info, Canonical: canonical},
		read:  true,
	}
}

// ReadDir creates a Dir filled with all the entries of the directory at
// path. Fails if the directory can't be read.
//
// The OS never reports the `.` and `..` entries; Files adds them when asked.
func ReadDir(path string) (*Dir, error) {
	d := NewDir(path)
	if err := d.Read(); err != nil {
		return nil, err
	}
	return d, nil
}

// OpenDir resolves path to a listable directory: a real directory is read,
// a missing path becomes a ghost directory when the manifest declares
// entries below it.
func OpenDir(path string) (*Dir, error) {
	info, err := os.Stat(path)
	switch {
	case err == nil && !info.IsDir():
		return nil, NewError(OpLookup, path, ErrNotDirectory)
	case err == nil:
		return ReadDir(path)
	case !errors.Is(err, iofs.ErrNotExist):
		return nil, NewError(OpStat, path, err)
	}

	m, canonical, ok := manifest.IsValidGhostDir(path)
	if !ok {
		return nil, NewError(OpLookup, path, ErrInvalidGhostDir)
	}
	dirLogger.Debug("Listing %q as ghost directory %s", path, canonical)
	return NewGhostDir(path, m, canonical), nil
}

// Read reads the directory entries. It touches the disk only once; later
// calls and calls on a ghost Dir do nothing.
func (d *Dir) Read() error {
	if d.read {
		return nil
	}

	dirLogger.Info("Reading directory %q", d.Path)
	contents, err := os.ReadDir(d.Path)
	if err != nil {
		return NewError(OpReadDir, d.Path, err)
	}
	d.contents = contents
	d.read = true

	dirLogger.Info("Read directory success %q (%d entries)", d.Path, len(contents))
	return nil
}

// IsGhost reports whether the directory exists only in the manifest.
func (d *Dir) IsGhost() bool {
	return d.ghost != nil
}

// GhostContext returns the manifest context of a ghost Dir, or nil.
func (d *Dir) GhostContext() *GhostContext {
	return d.ghost
}

// Len returns the number of physical entries read.
func (d *Dir) Len() int {
	return len(d.contents)
}

// Names returns the names of the physical entries in read order.
func (d *Dir) Names() []string {
	names := make([]string, 0, len(d.contents))
	for _, e := range d.contents {
		names = append(names, e.Name())
	}
	return names
}

// Contains reports whether path is one of the entries read from this
// directory.
func (d *Dir) Contains(path string) bool {
	for _, e := range d.contents {
		if d.Join(e.Name()) == path {
			return true
		}
	}
	return false
}

// Join appends child to the directory path.
func (d *Dir) Join(child string) string {
	return filepath.Join(d.Path, child)
}

// Files returns an iterator over the directory's listing. The manifest is
// resolved here, once, unless ghosts are suppressed.
func (d *Dir) Files(opts ListOptions) *Files {
	var (
		info           *manifest.Info
		ghostCanonical string
	)
	if !opts.NoGhosts {
		if d.ghost != nil {
			info, ghostCanonical = d.ghost.Manifest, d.ghost.Canonical
		} else if m, ok := manifest.Find(d.Path); ok {
			info = m
		}
	}

	builder := opts.Builder
	if builder == nil {
		builder = NewFile
	}

	f := &Files{
		dir:      d,
		opts:     opts,
		builder:  builder,
		manifest: info,
		dotfiles: opts.Dots.ShowsDotfiles(),
		dots:     opts.Dots.dots(),
	}
	if info != nil {
		for _, g := range GetGhosts(d, info, ghostCanonical) {
			f.ghosts = append(f.ghosts, NewGhostFile(g, d))
		}
	}
	return f
}
