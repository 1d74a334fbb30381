package gitstatus

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"strings"

	"ghostls/internal/logging"
)

var logger = logging.GetLogger().WithPrefix("git")

// CommandRunner runs git in a directory and returns its standard output.
type CommandRunner interface {
	Run(ctx context.Context, dir string, args ...string) ([]byte, error)
}

// ExecRunner runs the git binary found in PATH.
type ExecRunner struct{}

// Run implements CommandRunner.
func (ExecRunner) Run(ctx context.Context, dir string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return nil, fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
	}
	return out, nil
}

type repo struct {
	root   string
	status *Porcelain
}

// Cache holds the status of every repository containing one of the paths it
// was built for.
type Cache struct {
	repos []repo
}

// NewCache discovers the worktrees containing paths and reads their status.
// Paths outside any worktree are skipped; a nil runner means ExecRunner.
func NewCache(ctx context.Context, paths []string, runner CommandRunner) *Cache {
	if runner == nil {
		runner = ExecRunner{}
	}

	c := &Cache{}
	seen := make(map[string]bool)
	for _, p := range paths {
		dir := p
		if info, err := os.Stat(p); err != nil || !info.IsDir() {
			dir = filepath.Dir(p)
		}

		out, err := runner.Run(ctx, dir, "rev-parse", "--show-toplevel")
		if err != nil {
			logger.Debug("%s is not inside a git worktree: %v", p, err)
			continue
		}
		root := filepath.Clean(strings.TrimSpace(string(out)))
		if seen[root] {
			continue
		}
		seen[root] = true

		statusOut, err := runner.Run(ctx, root, "status", "--porcelain=v1", "-z", "--ignored", "--untracked-files=all")
		if err != nil {
			logger.Warn("Failed to read git status for %s: %v", root, err)
			continue
		}
		st := ParsePorcelain(statusOut)
		logger.Debug("Read git status for %s: %d files, %d ignored directories", root, len(st.Files), len(st.IgnoredDirs))
		c.repos = append(c.repos, repo{root: root, status: st})
	}
	return c
}

// Has reports whether the cache knows a worktree containing path.
func (c *Cache) Has(p string) bool {
	_, _, ok := c.locate(resolve(p, false))
	return ok
}

// Lookup returns the status of p. When followSymlink is set the path is
// fully resolved first; otherwise only its parent directory is.
func (c *Cache) Lookup(p string, followSymlink bool) Status {
	r, rel, ok := c.locate(resolve(p, followSymlink))
	if !ok {
		return Status{}
	}
	if st, ok := r.status.Files[rel]; ok {
		return st
	}
	for dir := rel; dir != "." && dir != "/" && dir != ""; dir = path.Dir(dir) {
		if _, ok := r.status.IgnoredDirs[dir]; ok {
			return Status{Staged: NotModified, Unstaged: Ignored}
		}
	}
	return Status{}
}

func resolve(p string, followSymlink bool) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return p
	}
	if followSymlink {
		if resolved, err := filepath.EvalSymlinks(abs); err == nil {
			return resolved
		}
		return abs
	}
	if parent, err := filepath.EvalSymlinks(filepath.Dir(abs)); err == nil {
		return filepath.Join(parent, filepath.Base(abs))
	}
	return abs
}

// locate finds the innermost repository containing abs.
func (c *Cache) locate(abs string) (*repo, string, bool) {
	var best *repo
	var bestRel string
	for i := range c.repos {
		r := &c.repos[i]
		rel, err := filepath.Rel(r.root, abs)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		if best == nil || len(r.root) > len(best.root) {
			best = r
			bestRel = filepath.ToSlash(rel)
		}
	}
	return best, bestRel, best != nil
}
