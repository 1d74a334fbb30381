package fs

import (
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"ghostls/internal/gitstatus"
	"ghostls/internal/manifest"
)

// DotFilter controls whether dotfiles and the `.`/`..` pseudo-entries are
// listed. `.` and `..` are "extra hidden": they only show when dotfiles do.
type DotFilter int

const (
	// JustFiles hides anything beginning with a dot.
	JustFiles DotFilter = iota

	// Dotfiles shows dotfiles but hides `.` and `..`.
	Dotfiles

	// DotfilesAndDots shows dotfiles, `.` and `..`.
	DotfilesAndDots
)

// ParseDotFilter maps the number of times "show all" was requested to a
// filter: none hides dotfiles, once shows them, twice adds `.` and `..`.
func ParseDotFilter(count int) DotFilter {
	switch {
	case count <= 0:
		return JustFiles
	case count == 1:
		return Dotfiles
	default:
		return DotfilesAndDots
	}
}

func (d DotFilter) String() string {
	switch d {
	case Dotfiles:
		return "dotfiles"
	case DotfilesAndDots:
		return "dotfiles-and-dots"
	default:
		return "just-files"
	}
}

// ShowsDotfiles reports whether entries beginning with a dot are listed.
func (d DotFilter) ShowsDotfiles() bool {
	return d == Dotfiles || d == DotfilesAndDots
}

func (d DotFilter) dots() dotsNext {
	if d == DotfilesAndDots {
		return dotsDot
	}
	return dotsFiles
}

// StatusLookup is the git status capability used to hide ignored entries.
type StatusLookup interface {
	Lookup(path string, followSymlink bool) gitstatus.Status
}

// ListOptions configures a listing.
type ListOptions struct {
	Dots DotFilter

	// Git is consulted only when GitIgnoring is set; nil means nothing is
	// ignored.
	Git         StatusLookup
	GitIgnoring bool

	// DerefLinks makes entries report the metadata of their link targets.
	DerefLinks bool

	// TotalSize makes directories report the size of their whole subtree.
	TotalSize bool

	// NoGhosts skips all manifest work: no ghosts and no zone flags.
	NoGhosts bool

	// IgnoreGlobs hides real entries whose name matches any pattern.
	IgnoreGlobs []string

	// Builder constructs entries for real directory entries; nil means
	// NewFile.
	Builder FileBuilder
}

// dotsNext is the pseudo-entry to produce next, if any.
type dotsNext int

const (
	dotsDot dotsNext = iota
	dotsDotDot
	dotsFiles
)

// Files iterates over a directory listing: `.` and `..` when requested, then
// the visible real entries in read order, then the ghosts. Once exhausted it
// stays exhausted.
type Files struct {
	dir      *Dir
	opts     ListOptions
	builder  FileBuilder
	manifest *manifest.Info

	dotfiles bool
	dots     dotsNext

	pos      int
	ghosts   []*File
	ghostPos int
}

// Manifest returns the manifest context resolved for this listing, or nil.
func (f *Files) Manifest() *manifest.Info {
	return f.manifest
}

// parent returns the path of the `..` entry. Trimming the last component
// would give "" for ".", so `..` is appended instead.
func (f *Files) parent() string {
	p := f.dir.Path
	if strings.HasSuffix(p, string(os.PathSeparator)) {
		return p + ".."
	}
	return p + string(os.PathSeparator) + ".."
}

// Next returns the next entry, or false once the listing is exhausted.
func (f *Files) Next() (*File, bool) {
	switch f.dots {
	case dotsDot:
		f.dots = dotsDotDot
		return NewCurrentDirFile(f.dir, f.opts.TotalSize), true

	case dotsDotDot:
		f.dots = dotsFiles
		return NewParentDirFile(f.parent(), f.dir, f.opts.TotalSize), true
	}

	if file := f.nextVisibleFile(); file != nil {
		return file, true
	}
	if f.ghostPos < len(f.ghosts) {
		g := f.ghosts[f.ghostPos]
		f.ghostPos++
		return g, true
	}
	return nil, false
}

// Collect drains the iterator.
func (f *Files) Collect() []*File {
	var out []*File
	for file, ok := f.Next(); ok; file, ok = f.Next() {
		out = append(out, file)
	}
	return out
}

// nextVisibleFile advances through the real entries until one passes the
// dotfile, ignore-glob and git-ignore filters.
func (f *Files) nextVisibleFile() *File {
	for f.pos < len(f.dir.contents) {
		entry := f.dir.contents[f.pos]
		f.pos++

		name := entry.Name()
		path := f.dir.Join(name)

		if !f.dotfiles && strings.HasPrefix(name, ".") {
			continue
		}
		if !f.dotfiles && isPlatformHidden(name, entry) {
			continue
		}
		if f.ignoredByGlob(name) {
			continue
		}
		if f.opts.GitIgnoring && f.opts.Git != nil && f.opts.Git.Lookup(path, false).IsIgnored() {
			continue
		}

		file := f.builder(path, f.dir, name, f.opts.DerefLinks, f.opts.TotalSize, entry)
		if f.manifest != nil && file.IsDir() {
			if canonical, err := manifest.Canonicalize(path); err == nil {
				file.Zone = f.manifest.IsZone(canonical)
			} else {
				dirLogger.Debug("Failed to canonicalize %q, leaving it unmarked: %v", path, err)
			}
		}
		return file
	}
	return nil
}

func (f *Files) ignoredByGlob(name string) bool {
	for _, pattern := range f.opts.IgnoreGlobs {
		if ok, err := doublestar.Match(pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}

// ValidateGlobs reports the first pattern that is not a valid glob.
func ValidateGlobs(patterns []string) (string, bool) {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return p, false
		}
	}
	return "", true
}
