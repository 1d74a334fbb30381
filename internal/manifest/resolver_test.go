package manifest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupRepo creates <tmp>/repo/src with a manifest holding keys and returns
// the canonical src root.
func setupRepo(t *testing.T, keys ...string) string {
	t.Helper()
	base, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)

	srcRoot := filepath.Join(base, "repo", "src")
	writeManifest(t, srcRoot, keys...)
	return srcRoot
}

func writeManifest(t *testing.T, srcRoot string, keys ...string) {
	t.Helper()
	doc := make(map[string]any, len(keys))
	for _, k := range keys {
		doc[k] = map[string]any{}
	}
	data, err := json.Marshal(doc)
	require.NoError(t, err)

	manifestPath := filepath.Join(srcRoot, RelPath)
	require.NoError(t, os.MkdirAll(filepath.Dir(manifestPath), 0755))
	require.NoError(t, os.WriteFile(manifestPath, data, 0644))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	t.Run("KeysOnly", func(t *testing.T) {
		p := filepath.Join(dir, "ok.json")
		require.NoError(t, os.WriteFile(p, []byte(`{"//a/b": {"owner": "x"}, "//c": 3, "//d": null}`), 0644))

		entries, err := Load(p)
		require.NoError(t, err)
		assert.Len(t, entries, 3)
		assert.Contains(t, entries, "//a/b")
		assert.Contains(t, entries, "//c")
		assert.Contains(t, entries, "//d")
	})

	t.Run("NotAnObject", func(t *testing.T) {
		p := filepath.Join(dir, "list.json")
		require.NoError(t, os.WriteFile(p, []byte(`["//a"]`), 0644))

		_, err := Load(p)
		assert.Error(t, err)
	})

	t.Run("Missing", func(t *testing.T) {
		_, err := Load(filepath.Join(dir, "absent.json"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestFind(t *testing.T) {
	srcRoot := setupRepo(t, "//areas/tools/dev", "//areas/apps/flow")
	areas := filepath.Join(srcRoot, "areas")
	require.NoError(t, os.MkdirAll(areas, 0755))

	t.Run("FromSrcRoot", func(t *testing.T) {
		info, ok := Find(srcRoot)
		require.True(t, ok)
		assert.Equal(t, srcRoot, info.SrcRoot)
		assert.Equal(t, 2, info.Len())
	})

	t.Run("FromDescendant", func(t *testing.T) {
		info, ok := Find(areas)
		require.True(t, ok)
		assert.Equal(t, srcRoot, info.SrcRoot)
	})

	t.Run("OutsideSrc", func(t *testing.T) {
		_, ok := Find(filepath.Dir(srcRoot))
		assert.False(t, ok)
	})

	t.Run("MissingPath", func(t *testing.T) {
		_, ok := Find(filepath.Join(areas, "nope"))
		assert.False(t, ok)
	})

	t.Run("ThroughSymlink", func(t *testing.T) {
		link := filepath.Join(t.TempDir(), "link")
		require.NoError(t, os.Symlink(areas, link))

		info, ok := Find(link)
		require.True(t, ok)
		assert.Equal(t, srcRoot, info.SrcRoot)
	})
}

func TestFindSkipsSrcWithoutManifest(t *testing.T) {
	outer := setupRepo(t, "//lib")
	inner := filepath.Join(outer, "lib", "src")
	require.NoError(t, os.MkdirAll(inner, 0755))

	info, ok := Find(inner)
	require.True(t, ok)
	assert.Equal(t, outer, info.SrcRoot)
}

func TestFindBrokenManifestIsAuthoritative(t *testing.T) {
	outer := setupRepo(t, "//lib")
	inner := filepath.Join(outer, "lib", "src")
	manifestPath := filepath.Join(inner, RelPath)
	require.NoError(t, os.MkdirAll(filepath.Dir(manifestPath), 0755))
	require.NoError(t, os.WriteFile(manifestPath, []byte("{not json"), 0644))

	_, ok := Find(inner)
	assert.False(t, ok, "closest manifest is broken, outer manifest must not be used")
}

func TestFindForGhost(t *testing.T) {
	srcRoot := setupRepo(t, "//areas/tools/dev")
	require.NoError(t, os.MkdirAll(filepath.Join(srcRoot, "areas"), 0755))

	info, canonical, ok := FindForGhost(filepath.Join(srcRoot, "areas", "tools", "dev"))
	require.True(t, ok)
	assert.Equal(t, srcRoot, info.SrcRoot)
	assert.Equal(t, filepath.Join(srcRoot, "areas", "tools", "dev"), canonical)

	t.Run("RelativePath", func(t *testing.T) {
		wd, err := os.Getwd()
		require.NoError(t, err)
		require.NoError(t, os.Chdir(filepath.Join(srcRoot, "areas")))
		defer func() { _ = os.Chdir(wd) }()

		_, canonical, ok := FindForGhost(filepath.Join("tools", "dev"))
		require.True(t, ok)
		assert.Equal(t, filepath.Join(srcRoot, "areas", "tools", "dev"), canonical)
	})

	t.Run("NoManifest", func(t *testing.T) {
		_, _, ok := FindForGhost(filepath.Join(t.TempDir(), "x", "y"))
		assert.False(t, ok)
	})
}

func TestIsValidGhostDir(t *testing.T) {
	srcRoot := setupRepo(t, "//areas/tools/dev", "//areas/apps/flow")
	require.NoError(t, os.MkdirAll(filepath.Join(srcRoot, "areas"), 0755))

	tests := []struct {
		name  string
		path  string
		valid bool
	}{
		{"IntermediateNode", filepath.Join(srcRoot, "areas", "tools"), true},
		{"OtherBranch", filepath.Join(srcRoot, "areas", "apps"), true},
		{"LeafZone", filepath.Join(srcRoot, "areas", "tools", "dev"), false},
		{"BelowLeaf", filepath.Join(srcRoot, "areas", "tools", "dev", "sub"), false},
		{"Undeclared", filepath.Join(srcRoot, "areas", "nothing"), false},
		{"SrcRoot", srcRoot, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, canonical, ok := IsValidGhostDir(tt.path)
			assert.Equal(t, tt.valid, ok)
			if tt.valid {
				assert.Equal(t, srcRoot, info.SrcRoot)
				assert.Equal(t, tt.path, canonical)
			}
		})
	}
}
