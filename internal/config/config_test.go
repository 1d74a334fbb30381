package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ghostls/internal/fs"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 0, cfg.Dots)
	assert.Equal(t, ColorAuto, cfg.Color)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.False(t, cfg.NoGhosts)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigValidFile(t *testing.T) {
	path := writeConfig(t, `dots: 2
git_ignore: true
no_ghosts: true
ignore_globs: ["*.o", "**/tmp"]
color: never
long: true
log_level: debug
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Dots)
	assert.True(t, cfg.GitIgnore)
	assert.True(t, cfg.NoGhosts)
	assert.Equal(t, []string{"*.o", "**/tmp"}, cfg.IgnoreGlobs)
	assert.Equal(t, ColorNever, cfg.Color)
	assert.True(t, cfg.Long)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.False(t, cfg.DerefLinks, "unset keys keep defaults")
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigPartialFile(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "total_size: true\n"))
	require.NoError(t, err)

	assert.True(t, cfg.TotalSize)
	assert.Equal(t, ColorAuto, cfg.Color)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	cfg, err = LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigMalformed(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "dots: [unclosed\n"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		valid  bool
	}{
		{"defaults", func(*Config) {}, true},
		{"dots too high", func(c *Config) { c.Dots = 3 }, false},
		{"negative dots", func(c *Config) { c.Dots = -1 }, false},
		{"bad color", func(c *Config) { c.Color = "rainbow" }, false},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, false},
		{"warning alias", func(c *Config) { c.LogLevel = "WARNING" }, true},
		{"bad glob", func(c *Config) { c.IgnoreGlobs = []string{"[unclosed"} }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if tt.valid {
				assert.NoError(t, cfg.Validate())
			} else {
				assert.Error(t, cfg.Validate())
			}
		})
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("GHOSTLS_NO_GHOSTS", "1")
	t.Setenv("LOG_LEVEL", "trace")
	t.Setenv("NO_COLOR", "yes")

	cfg := DefaultConfig()
	cfg.ApplyEnv()

	assert.True(t, cfg.NoGhosts)
	assert.Equal(t, "trace", cfg.LogLevel)
	assert.Equal(t, ColorNever, cfg.Color)
}

func TestApplyEnvIgnoresUnparsableBool(t *testing.T) {
	t.Setenv("GHOSTLS_NO_GHOSTS", "maybe")
	t.Setenv("NO_COLOR", "")

	cfg := DefaultConfig()
	cfg.ApplyEnv()

	assert.False(t, cfg.NoGhosts)
	assert.Equal(t, ColorAuto, cfg.Color)
}

func TestDefaultPath(t *testing.T) {
	t.Setenv(EnvConfigPath, "/etc/ghostls.yaml")
	assert.Equal(t, "/etc/ghostls.yaml", DefaultPath())

	t.Setenv(EnvConfigPath, "")
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	assert.Equal(t, filepath.Join("/xdg", "ghostls", "config.yaml"), DefaultPath())
}

func TestLoadDefault(t *testing.T) {
	t.Setenv(EnvConfigPath, writeConfig(t, "long: true\nlog_level: info\n"))
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("NO_COLOR", "")
	t.Setenv("GHOSTLS_NO_GHOSTS", "")

	cfg, err := LoadDefault()
	require.NoError(t, err)
	assert.True(t, cfg.Long)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestListOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Dots = 1
	cfg.GitIgnore = true
	cfg.IgnoreGlobs = []string{"*.tmp"}

	opts := cfg.ListOptions()
	assert.Equal(t, fs.Dotfiles, opts.Dots)
	assert.True(t, opts.GitIgnoring)
	assert.Nil(t, opts.Git)
	assert.Equal(t, []string{"*.tmp"}, opts.IgnoreGlobs)
}
