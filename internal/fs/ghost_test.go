package fs

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ghostls/internal/manifest"
)

func ghostNames(ghosts []GhostEntry) []string {
	names := make([]string, 0, len(ghosts))
	for _, g := range ghosts {
		names = append(names, g.Name)
	}
	return names
}

func TestGetGhostsWithoutManifest(t *testing.T) {
	tree := newTestTree(t)
	d, err := ReadDir(tree.SrcRoot)
	require.NoError(t, err)

	assert.Empty(t, GetGhosts(d, nil, ""))
}

func TestGetGhostsIntermediateNodes(t *testing.T) {
	tree := newTestTree(t)
	tree.Manifest("//areas/tools/dev", "//areas/apps/flow")
	areas := tree.Mkdir("areas")

	d, err := ReadDir(areas)
	require.NoError(t, err)
	info, ok := manifest.Find(areas)
	require.True(t, ok)

	ghosts := GetGhosts(d, info, "")
	require.Len(t, ghosts, 2)
	assert.Equal(t, []string{"apps", "tools"}, ghostNames(ghosts))
	for _, g := range ghosts {
		assert.False(t, g.Zone, "%s is only an intermediate node", g.Name)
		assert.Equal(t, filepath.Join(areas, g.Name), g.Path)
	}
}

func TestGetGhostsZoneLeaf(t *testing.T) {
	tree := newTestTree(t)
	tree.Manifest("//areas/tools/dev", "//areas/apps/flow")
	tree.Mkdir("areas")

	toolsPath := filepath.Join(tree.SrcRoot, "areas", "tools")
	info, canonical, ok := manifest.IsValidGhostDir(toolsPath)
	require.True(t, ok)
	d := NewGhostDir(toolsPath, info, canonical)

	ghosts := GetGhosts(d, info, canonical)
	require.Len(t, ghosts, 1)
	assert.Equal(t, "dev", ghosts[0].Name)
	assert.True(t, ghosts[0].Zone)
	assert.Equal(t, filepath.Join(toolsPath, "dev"), ghosts[0].Path)
}

func TestGetGhostsCollapseSharedSegment(t *testing.T) {
	tree := newTestTree(t)
	tree.Manifest("//lib", "//lib/a", "//lib/b/c", "//lib/b/d", "//other/x")

	d, err := ReadDir(tree.SrcRoot)
	require.NoError(t, err)
	info, ok := manifest.Find(tree.SrcRoot)
	require.True(t, ok)

	ghosts := GetGhosts(d, info, "")
	assert.Equal(t, []string{"lib", "other"}, ghostNames(ghosts))
	assert.True(t, ghosts[0].Zone, "//lib is a literal key")
	assert.False(t, ghosts[1].Zone)
}

func TestGetGhostsPhysicalEntriesWin(t *testing.T) {
	tree := newTestTree(t)
	tree.Manifest("//areas/tools/dev", "//areas/apps/flow")
	tree.Mkdir("areas/tools")
	areas := filepath.Join(tree.SrcRoot, "areas")

	d, err := ReadDir(areas)
	require.NoError(t, err)
	info, ok := manifest.Find(areas)
	require.True(t, ok)

	assert.Equal(t, []string{"apps"}, ghostNames(GetGhosts(d, info, "")))
}

func TestGetGhostsOutsideSrcRoot(t *testing.T) {
	tree := newTestTree(t)
	tree.Manifest("//areas/tools/dev")

	d, err := ReadDir(tree.Base)
	require.NoError(t, err)
	info, ok := manifest.Find(tree.SrcRoot)
	require.True(t, ok)

	assert.Empty(t, GetGhosts(d, info, ""))
}

func TestGetGhostsUncanonicalizablePath(t *testing.T) {
	info := manifest.NewInfo("/nowhere/src", "//a")
	d := NewDir("/nowhere/src")

	assert.Empty(t, GetGhosts(d, info, ""))
}
