package gitstatus

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func porcelain(records ...string) []byte {
	return []byte(strings.Join(records, "\x00") + "\x00")
}

func TestParsePorcelain(t *testing.T) {
	out := porcelain(
		" M cmd/main.go",
		"A  new.go",
		"?? scratch.txt",
		"!! build/",
		"!! debug.log",
		"R  renamed.go", "old.go",
		"UU conflict.go",
		"MM both.go",
	)

	p := ParsePorcelain(out)

	tests := []struct {
		path string
		want Status
	}{
		{"cmd/main.go", Status{NotModified, Modified}},
		{"new.go", Status{New, NotModified}},
		{"scratch.txt", Status{NotModified, New}},
		{"debug.log", Status{NotModified, Ignored}},
		{"renamed.go", Status{Renamed, NotModified}},
		{"conflict.go", Status{Conflicted, Conflicted}},
		{"both.go", Status{Modified, Modified}},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Files[tt.path])
		})
	}

	assert.NotContains(t, p.Files, "old.go", "rename source must be skipped")
	assert.Contains(t, p.IgnoredDirs, "build")
}

func TestParsePorcelainEmpty(t *testing.T) {
	p := ParsePorcelain(nil)
	assert.Empty(t, p.Files)
	assert.Empty(t, p.IgnoredDirs)
}

type fakeRunner struct {
	outputs map[string][]byte
	calls   []string
}

func (f *fakeRunner) Run(_ context.Context, dir string, args ...string) ([]byte, error) {
	key := dir + "|" + strings.Join(args, " ")
	f.calls = append(f.calls, key)
	if out, ok := f.outputs[key]; ok {
		return out, nil
	}
	return nil, errors.New("fatal: not a git repository")
}

func TestCacheLookup(t *testing.T) {
	root, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	sub := filepath.Join(root, "pkg")
	require.NoError(t, os.MkdirAll(sub, 0755))

	runner := &fakeRunner{outputs: map[string][]byte{
		sub + "|rev-parse --show-toplevel":                                    []byte(root + "\n"),
		root + "|rev-parse --show-toplevel":                                   []byte(root + "\n"),
		root + "|status --porcelain=v1 -z --ignored --untracked-files=all": porcelain("!! build/", "!! pkg/gen.go", " M pkg/lib.go"),
	}}

	cache := NewCache(context.Background(), []string{sub, root}, runner)

	statusCalls := 0
	for _, c := range runner.calls {
		if strings.Contains(c, "status") {
			statusCalls++
		}
	}
	assert.Equal(t, 1, statusCalls, "status is read once per worktree")

	assert.True(t, cache.Lookup(filepath.Join(sub, "gen.go"), false).IsIgnored())
	assert.True(t, cache.Lookup(filepath.Join(root, "build"), false).IsIgnored())
	assert.True(t, cache.Lookup(filepath.Join(root, "build", "out", "a.o"), false).IsIgnored())
	assert.Equal(t, Status{NotModified, Modified}, cache.Lookup(filepath.Join(sub, "lib.go"), false))
	assert.Equal(t, Status{}, cache.Lookup(filepath.Join(sub, "clean.go"), false))
	assert.True(t, cache.Has(sub))
}

func TestCacheOutsideRepo(t *testing.T) {
	dir := t.TempDir()
	cache := NewCache(context.Background(), []string{dir}, &fakeRunner{})

	assert.False(t, cache.Has(dir))
	assert.Equal(t, Status{}, cache.Lookup(filepath.Join(dir, "x"), true))
}
