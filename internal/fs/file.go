package fs

import (
	iofs "io/fs"
	"os"
	"path/filepath"
)

type fileKind int

const (
	kindEntry fileKind = iota
	kindGhost
	kindCurrent
	kindParent
)

// File is one entry of a listing: a real directory entry, a ghost synthesized
// from the manifest, or one of the `.`/`..` pseudo-entries.
type File struct {
	// Name is the name shown in the listing.
	Name string

	// Path is the entry's path built from its parent's path.
	Path string

	// Parent is the directory the entry was listed from.
	Parent *Dir

	// Zone is set for directories the manifest declares as logical units.
	Zone bool

	kind       fileKind
	entry      os.DirEntry
	derefLinks bool
	totalSize  bool

	info    os.FileInfo
	infoErr error
	statted bool
}

// FileBuilder constructs the listing entry for a real directory entry.
type FileBuilder func(path string, parent *Dir, name string, derefLinks, totalSize bool, de os.DirEntry) *File

// NewFile is the default FileBuilder. Metadata is queried lazily, and only
// the entry type reported by the directory read is used up front.
func NewFile(path string, parent *Dir, name string, derefLinks, totalSize bool, de os.DirEntry) *File {
	return &File{
		Name:       name,
		Path:       path,
		Parent:     parent,
		kind:       kindEntry,
		entry:      de,
		derefLinks: derefLinks,
		totalSize:  totalSize,
	}
}

// NewGhostFile creates the listing entry for a ghost. Ghosts are always
// directories.
func NewGhostFile(g GhostEntry, parent *Dir) *File {
	return &File{
		Name:   g.Name,
		Path:   g.Path,
		Parent: parent,
		Zone:   g.Zone,
		kind:   kindGhost,
	}
}

// NewCurrentDirFile creates the `.` entry for dir.
func NewCurrentDirFile(dir *Dir, totalSize bool) *File {
	return &File{
		Name:      ".",
		Path:      dir.Path,
		Parent:    dir,
		kind:      kindCurrent,
		totalSize: totalSize,
	}
}

// NewParentDirFile creates the `..` entry for dir located at path.
func NewParentDirFile(path string, dir *Dir, totalSize bool) *File {
	return &File{
		Name:      "..",
		Path:      path,
		Parent:    dir,
		kind:      kindParent,
		totalSize: totalSize,
	}
}

// IsGhost reports whether the entry exists only in the manifest.
func (f *File) IsGhost() bool {
	return f.kind == kindGhost
}

// IsDot reports whether the entry is `.` or `..`.
func (f *File) IsDot() bool {
	return f.kind == kindCurrent || f.kind == kindParent
}

// Stat returns the entry's metadata, following symlinks when the listing
// dereferences links. The result is cached.
func (f *File) Stat() (os.FileInfo, error) {
	if f.statted {
		return f.info, f.infoErr
	}
	f.statted = true

	switch {
	case f.kind == kindGhost:
		f.infoErr = NewError(OpStat, f.Path, iofs.ErrNotExist)
	case f.kind != kindEntry || f.derefLinks:
		f.info, f.infoErr = os.Stat(f.Path)
	default:
		f.info, f.infoErr = os.Lstat(f.Path)
	}
	if f.infoErr != nil {
		if _, ok := f.infoErr.(*Error); !ok {
			f.infoErr = NewError(OpStat, f.Path, f.infoErr)
		}
	}
	return f.info, f.infoErr
}

// IsDir reports whether the entry is a directory. Ghosts and dot entries
// always are.
func (f *File) IsDir() bool {
	if f.kind != kindEntry {
		return true
	}
	if f.entry != nil && (f.entry.Type()&os.ModeSymlink == 0 || !f.derefLinks) {
		return f.entry.IsDir()
	}
	info, err := f.Stat()
	return err == nil && info.IsDir()
}

// IsLink reports whether the entry itself is a symbolic link.
func (f *File) IsLink() bool {
	if f.kind != kindEntry {
		return false
	}
	if f.entry != nil {
		return f.entry.Type()&os.ModeSymlink != 0
	}
	info, err := os.Lstat(f.Path)
	return err == nil && info.Mode()&os.ModeSymlink != 0
}

// Mode returns the entry's file mode; ghosts report a bare directory mode.
func (f *File) Mode() os.FileMode {
	if f.kind == kindGhost {
		return os.ModeDir
	}
	info, err := f.Stat()
	if err != nil {
		if f.IsDir() {
			return os.ModeDir
		}
		return 0
	}
	return info.Mode()
}

// Size returns the entry's size in bytes. With total size enabled, the size
// of a directory is the sum of every regular file below it.
func (f *File) Size() int64 {
	if f.kind == kindGhost {
		return 0
	}
	info, err := f.Stat()
	if err != nil {
		return 0
	}
	if !info.IsDir() || !f.totalSize {
		return info.Size()
	}
	return treeSize(f.Path)
}

func treeSize(root string) int64 {
	var total int64
	_ = filepath.WalkDir(root, func(_ string, d iofs.DirEntry, err error) error {
		if err != nil {
			// unreadable subtrees don't count
			return nil
		}
		if d.Type().IsRegular() {
			if info, infoErr := d.Info(); infoErr == nil {
				total += info.Size()
			}
		}
		return nil
	})
	return total
}
