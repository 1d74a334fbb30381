package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"ghostls/internal/fs"
	"ghostls/internal/logging"
)

// Color modes
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// EnvConfigPath overrides the location of the configuration file.
const EnvConfigPath = "GHOSTLS_CONFIG"

// Config holds the listing defaults. Command-line flags override it.
type Config struct {
	// Dots is the dotfile filter: 0 hides dotfiles, 1 shows them, 2 adds `.` and `..`
	Dots int `yaml:"dots"`

	// GitIgnore hides entries git ignores
	GitIgnore bool `yaml:"git_ignore"`

	// DerefLinks shows the metadata of link targets
	DerefLinks bool `yaml:"deref_links"`

	// TotalSize sizes directories by their whole subtree
	TotalSize bool `yaml:"total_size"`

	// NoGhosts disables the manifest entirely
	NoGhosts bool `yaml:"no_ghosts"`

	// IgnoreGlobs hides entries whose name matches
	IgnoreGlobs []string `yaml:"ignore_globs"`

	// Color is one of auto, always, never
	Color string `yaml:"color"`

	// Long renders a table instead of a plain list
	Long bool `yaml:"long"`

	// LogLevel sets the level of the stderr logger
	LogLevel string `yaml:"log_level"`
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		Dots:     0,
		Color:    ColorAuto,
		LogLevel: "warn",
	}
}

// DefaultPath returns $GHOSTLS_CONFIG, or ghostls/config.yaml under the
// user configuration directory.
func DefaultPath() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "ghostls", "config.yaml")
}

// LoadConfig loads configuration from the specified file path
// If the file doesn't exist, returns default configuration without error
// If the file exists but is malformed, returns an error
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// unset keys keep their defaults
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// LoadDefault loads the configuration from DefaultPath and applies the
// environment overrides.
func LoadDefault() (*Config, error) {
	cfg, err := LoadConfig(DefaultPath())
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	return cfg, nil
}

// ApplyEnv applies GHOSTLS_NO_GHOSTS, LOG_LEVEL and NO_COLOR.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("GHOSTLS_NO_GHOSTS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.NoGhosts = b
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	// https://no-color.org: any non-empty value disables color
	if os.Getenv("NO_COLOR") != "" {
		c.Color = ColorNever
	}
}

// Validate validates the configuration values
// Returns an error if any values are invalid
func (c *Config) Validate() error {
	if c.Dots < 0 || c.Dots > 2 {
		return fmt.Errorf("dots must be 0, 1 or 2, got %d", c.Dots)
	}

	switch c.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("invalid color %q, must be one of: auto, always, never", c.Color)
	}

	if _, ok := logging.ParseLevel(c.LogLevel); !ok {
		return fmt.Errorf("invalid log_level %q, must be one of: trace, debug, info, warn, error", c.LogLevel)
	}

	if p, ok := fs.ValidateGlobs(c.IgnoreGlobs); !ok {
		return fmt.Errorf("invalid ignore glob %q", p)
	}
	return nil
}

// ListOptions converts the configuration to listing options. Git status
// is attached by the caller.
func (c *Config) ListOptions() fs.ListOptions {
	return fs.ListOptions{
		Dots:        fs.ParseDotFilter(c.Dots),
		GitIgnoring: c.GitIgnore,
		DerefLinks:  c.DerefLinks,
		TotalSize:   c.TotalSize,
		NoGhosts:    c.NoGhosts,
		IgnoreGlobs: c.IgnoreGlobs,
	}
}
