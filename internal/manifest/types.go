// Package manifest locates and reads the monorepo manifest that declares the
// logical layout (zones) superimposed on a physical src tree.
package manifest

import (
	"path/filepath"
	"strings"
)

const (
	// RootName is the name an ancestor directory must have to be a src root.
	RootName = "src"

	// RelPath is the manifest location relative to a src root.
	RelPath = ".meta/manifest.json"

	// LogicalRoot prefixes every logical path declared in a manifest.
	LogicalRoot = "//"
)

// Info is the resolved manifest context for one src root. It is built fresh
// for every lookup and never modified afterwards.
type Info struct {
	// SrcRoot is the canonical path of the src directory holding the manifest.
	SrcRoot string

	// Entries is the set of declared logical paths, each of the form
	// "//segment/segment". No hierarchy is prebuilt.
	Entries map[string]struct{}
}

// NewInfo creates an Info for the given src root and keys.
func NewInfo(srcRoot string, keys ...string) *Info {
	entries := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		entries[k] = struct{}{}
	}
	return &Info{SrcRoot: srcRoot, Entries: entries}
}

// Len returns the number of declared logical paths.
func (i *Info) Len() int {
	return len(i.Entries)
}

// Contains reports whether key is a literal manifest entry.
func (i *Info) Contains(key string) bool {
	_, ok := i.Entries[key]
	return ok
}

// relative returns canonical relative to SrcRoot in slash form. ok is false
// when canonical lies outside SrcRoot. The root itself yields "".
func (i *Info) relative(canonical string) (string, bool) {
	if canonical == i.SrcRoot {
		return "", true
	}
	root := i.SrcRoot
	if !strings.HasSuffix(root, string(filepath.Separator)) {
		root += string(filepath.Separator)
	}
	if !strings.HasPrefix(canonical, root) {
		return "", false
	}
	return filepath.ToSlash(strings.TrimPrefix(canonical, root)), true
}

// TargetPathFor returns the logical path ("//a/b") a canonical filesystem path
// corresponds to. The src root itself has no logical path, nor does anything
// outside it.
func (i *Info) TargetPathFor(canonical string) (string, bool) {
	rel, ok := i.relative(canonical)
	if !ok || rel == "" {
		return "", false
	}
	return LogicalRoot + rel, true
}

// Prefix returns the prefix that the logical paths of canonical's children
// start with: "//" for the src root, "//a/b/" below it.
func (i *Info) Prefix(canonical string) (string, bool) {
	rel, ok := i.relative(canonical)
	if !ok {
		return "", false
	}
	if rel == "" {
		return LogicalRoot, true
	}
	return LogicalRoot + rel + "/", true
}

// IsZone reports whether canonical is declared as a zone, i.e. its logical
// path is a literal key. Paths that merely lead to deeper keys are not zones.
func (i *Info) IsZone(canonical string) bool {
	target, ok := i.TargetPathFor(canonical)
	if !ok {
		return false
	}
	return i.Contains(target)
}

// HasDescendants reports whether any key lies strictly below logical.
func (i *Info) HasDescendants(logical string) bool {
	prefix := strings.TrimSuffix(logical, "/") + "/"
	for key := range i.Entries {
		if strings.HasPrefix(key, prefix) {
			return true
		}
	}
	return false
}
