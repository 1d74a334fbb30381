package mount

import (
	"path/filepath"
	"strings"

	"ghostls/internal/logging"
)

var (
	pathLogger = logging.GetLogger().WithPrefix("path")
)

// SourcePath is the path of a node relative to the mounted source directory.
// The node may exist only in the manifest.
type SourcePath struct {
	// relative path from source root, "" for the root
	path string
}

// NewSourcePath creates a new SourcePath instance.
// It cleans the path and ensures it's relative to the source root.
func NewSourcePath(path string) *SourcePath {
	cleaned := filepath.Clean("/" + path)
	cleaned = strings.TrimPrefix(cleaned, "/")
	pathLogger.Trace("Creating new source path: %q -> %q", path, cleaned)
	return &SourcePath{path: cleaned}
}

// String returns the string representation of the path
func (sp *SourcePath) String() string {
	return sp.path
}

// FullPath returns the absolute path by joining with the source root
func (sp *SourcePath) FullPath(sourceRoot string) string {
	return filepath.Join(sourceRoot, sp.path)
}

// Join returns the path of the child called name.
func (sp *SourcePath) Join(name string) *SourcePath {
	return NewSourcePath(filepath.Join(sp.path, name))
}

// Parent returns a SourcePath representing the parent directory
func (sp *SourcePath) Parent() *SourcePath {
	parent := filepath.Dir(sp.path)
	if parent == "." {
		parent = ""
	}
	return NewSourcePath(parent)
}

// Base returns the last element of the path
func (sp *SourcePath) Base() string {
	return filepath.Base(sp.path)
}

// IsRoot reports whether this is the source root itself.
func (sp *SourcePath) IsRoot() bool {
	return sp.path == ""
}
