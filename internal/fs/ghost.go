package fs

import (
	"sort"
	"strings"

	"ghostls/internal/logging"
	"ghostls/internal/manifest"
)

var (
	ghostLogger = logging.GetLogger().WithPrefix("ghost")
)

// GhostEntry is a virtual child synthesized from the manifest.
type GhostEntry struct {
	Name string

	// Path is the parent's path joined with Name; nothing exists there.
	Path string

	// Zone is set when the entry's logical path is itself a manifest key,
	// as opposed to a node on the way to deeper keys.
	Zone bool
}

// GetGhosts returns one entry per first path segment that the manifest
// declares below dir but that is not physically present in it. Deeper
// declared paths collapse into their first segment. ghostCanonical is used
// instead of canonicalizing dir.Path when dir is a ghost.
//
// Entries are sorted by name.
func GetGhosts(dir *Dir, info *manifest.Info, ghostCanonical string) []GhostEntry {
	if info == nil {
		return nil
	}

	canonical := ghostCanonical
	if !dir.IsGhost() {
		c, err := manifest.Canonicalize(dir.Path)
		if err != nil {
			ghostLogger.Debug("Failed to canonicalize path %q: %v", dir.Path, err)
			return nil
		}
		canonical = c
	}

	prefix, ok := info.Prefix(canonical)
	if !ok {
		ghostLogger.Trace("%s is outside src root %s", canonical, info.SrcRoot)
		return nil
	}

	existing := make(map[string]struct{}, len(dir.contents))
	for _, e := range dir.contents {
		existing[e.Name()] = struct{}{}
	}

	names := make(map[string]struct{})
	for key := range info.Entries {
		suffix, found := strings.CutPrefix(key, prefix)
		if !found || suffix == "" {
			continue
		}
		first, _, _ := strings.Cut(suffix, "/")
		if first == "" {
			continue
		}
		if _, physical := existing[first]; physical {
			continue
		}
		names[first] = struct{}{}
	}

	ghosts := make([]GhostEntry, 0, len(names))
	for name := range names {
		ghosts = append(ghosts, GhostEntry{
			Name: name,
			Path: dir.Join(name),
			Zone: info.Contains(prefix + name),
		})
	}
	sort.Slice(ghosts, func(i, j int) bool {
		return ghosts[i].Name < ghosts[j].Name
	})

	ghostLogger.Debug("Synthesized %d ghost entries for %s", len(ghosts), prefix)
	return ghosts
}
