// Package gitstatus answers "what is the git status of this path" for the
// listing layer. Status is read once per repository with git porcelain output.
package gitstatus

import (
	"bytes"
	"strings"
)

// Code is the state of a path on one side of the index.
type Code int

const (
	NotModified Code = iota
	New
	Modified
	Deleted
	Renamed
	TypeChange
	Ignored
	Conflicted
)

var codeNames = map[Code]string{
	NotModified: "not-modified",
	New:         "new",
	Modified:    "modified",
	Deleted:     "deleted",
	Renamed:     "renamed",
	TypeChange:  "type-change",
	Ignored:     "ignored",
	Conflicted:  "conflicted",
}

func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return "unknown"
}

// Status is the staged (index) and unstaged (worktree) state of a path.
// The zero value means the path is clean or unknown to git.
type Status struct {
	Staged   Code
	Unstaged Code
}

// IsIgnored reports whether git ignores the path.
func (s Status) IsIgnored() bool {
	return s.Unstaged == Ignored
}

func codeFor(b byte) Code {
	switch b {
	case 'M':
		return Modified
	case 'A', 'C', '?':
		return New
	case 'D':
		return Deleted
	case 'R':
		return Renamed
	case 'T':
		return TypeChange
	case '!':
		return Ignored
	case 'U':
		return Conflicted
	default:
		return NotModified
	}
}

func isConflict(x, y byte) bool {
	switch string([]byte{x, y}) {
	case "DD", "AU", "UD", "UA", "DU", "AA", "UU":
		return true
	}
	return false
}

// Porcelain holds parsed `git status --porcelain=v1 -z` output. Keys are
// slash-separated paths relative to the worktree root.
type Porcelain struct {
	Files map[string]Status

	// IgnoredDirs holds directories git reported as ignored as a whole
	// ("!! dir/"), without the trailing slash.
	IgnoredDirs map[string]struct{}
}

// ParsePorcelain parses NUL-separated porcelain v1 output. Rename and copy
// records carry their original path as an extra field, which is skipped.
func ParsePorcelain(out []byte) *Porcelain {
	p := &Porcelain{
		Files:       make(map[string]Status),
		IgnoredDirs: make(map[string]struct{}),
	}

	records := bytes.Split(out, []byte{0})
	for i := 0; i < len(records); i++ {
		rec := records[i]
		if len(rec) < 4 || rec[2] != ' ' {
			continue
		}
		x, y := rec[0], rec[1]
		path := string(rec[3:])

		if x == 'R' || x == 'C' {
			// the next record is the source path
			i++
		}

		var st Status
		switch {
		case x == '!' && y == '!':
			st = Status{Staged: NotModified, Unstaged: Ignored}
		case x == '?' && y == '?':
			st = Status{Staged: NotModified, Unstaged: New}
		case isConflict(x, y):
			st = Status{Staged: Conflicted, Unstaged: Conflicted}
		default:
			st = Status{Staged: codeFor(x), Unstaged: codeFor(y)}
		}

		if strings.HasSuffix(path, "/") {
			path = strings.TrimSuffix(path, "/")
			if st.IsIgnored() {
				p.IgnoredDirs[path] = struct{}{}
				continue
			}
		}
		p.Files[path] = st
	}
	return p
}
