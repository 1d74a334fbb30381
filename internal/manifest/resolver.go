package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"ghostls/internal/logging"
)

var (
	logger = logging.GetLogger().WithPrefix("manifest")

	// ErrNoExistingAncestor is returned when no ancestor of a path exists.
	ErrNoExistingAncestor = errors.New("no existing ancestor")
)

// Canonicalize returns the absolute, symlink-free form of path. It fails when
// path (or any of its ancestors) does not exist.
func Canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}

// Load reads a manifest file and returns its key set. The manifest is a flat
// JSON object; values are ignored.
func Load(manifestPath string) (map[string]struct{}, error) {
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", manifestPath, err)
	}

	entries := make(map[string]struct{}, len(raw))
	for key := range raw {
		entries[key] = struct{}{}
	}
	return entries, nil
}

// Find returns the manifest governing path, if any. Any failure along the
// way (path cannot be canonicalized, no src root, broken manifest) yields
// false.
func Find(path string) (*Info, bool) {
	canonical, err := Canonicalize(path)
	if err != nil {
		logger.Debug("Failed to canonicalize path %q: %v", path, err)
		return nil, false
	}
	return findFromCanonical(canonical)
}

// findFromCanonical walks up from a canonical path. The closest src ancestor
// that has a manifest file is authoritative: if that manifest cannot be read
// or parsed the search stops there.
func findFromCanonical(canonical string) (*Info, bool) {
	current := canonical
	for {
		if filepath.Base(current) == RootName {
			manifestPath := filepath.Join(current, RelPath)
			if _, err := os.Stat(manifestPath); err == nil {
				entries, loadErr := Load(manifestPath)
				if loadErr != nil {
					logger.Warn("%v", loadErr)
					return nil, false
				}
				logger.Trace("Using manifest %s (%d entries)", manifestPath, len(entries))
				return &Info{SrcRoot: current, Entries: entries}, true
			}
		}

		parent := filepath.Dir(current)
		if parent == current {
			return nil, false
		}
		current = parent
	}
}

// nearestExisting splits abs into its closest existing ancestor and the
// missing components below it, in order.
func nearestExisting(abs string) (string, []string, error) {
	var missing []string
	current := abs
	for {
		if _, err := os.Stat(current); err == nil {
			return current, missing, nil
		}
		parent := filepath.Dir(current)
		if parent == current {
			return "", nil, fmt.Errorf("%s: %w", abs, ErrNoExistingAncestor)
		}
		missing = append([]string{filepath.Base(current)}, missing...)
		current = parent
	}
}

// FindForGhost resolves the manifest for a path that may not exist. It
// returns the manifest together with the canonical path the target would
// have: the canonical form of its nearest existing ancestor with the missing
// components appended again.
func FindForGhost(path string) (*Info, string, bool) {
	abs, err := filepath.Abs(path)
	if err != nil {
		logger.Debug("Failed to make %q absolute: %v", path, err)
		return nil, "", false
	}

	existing, missing, err := nearestExisting(abs)
	if err != nil {
		logger.Debug("%v", err)
		return nil, "", false
	}

	canonicalBase, err := filepath.EvalSymlinks(existing)
	if err != nil {
		logger.Debug("Failed to canonicalize ancestor %q: %v", existing, err)
		return nil, "", false
	}

	info, ok := findFromCanonical(canonicalBase)
	if !ok {
		return nil, "", false
	}

	wouldBe := filepath.Join(append([]string{canonicalBase}, missing...)...)
	return info, wouldBe, true
}

// IsValidGhostDir reports whether path can be listed as a virtual directory:
// the manifest must declare at least one entry below it.
func IsValidGhostDir(path string) (*Info, string, bool) {
	info, canonical, ok := FindForGhost(path)
	if !ok {
		return nil, "", false
	}

	target, ok := info.TargetPathFor(canonical)
	if !ok {
		return nil, "", false
	}

	if !info.HasDescendants(target) {
		logger.Debug("No manifest entries below %s", target)
		return nil, "", false
	}
	return info, canonical, true
}
