// Package config loads the gitcache configuration file.
package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/FamousArchives/famous-git-cache/cache"
	"github.com/FamousArchives/famous-git-cache/errors"
	"gopkg.in/yaml.v3"
)

// LogFormat selects the log handler.
type LogFormat string

const (
	LogFormatText LogFormat = "text"
	LogFormatJSON LogFormat = "json"
)

// Config represents the complete gitcache configuration
type Config struct {
	Cache CacheConfig `yaml:"cache"`
	Git   GitConfig   `yaml:"git"`
	Log   LogConfig   `yaml:"log"`
}

// CacheConfig configures where mirrors live and how long they stay fresh
type CacheConfig struct {
	Root       string        `yaml:"root"`
	StaleAfter time.Duration `yaml:"stale_after"`
	DefaultRef string        `yaml:"default_ref"`
}

// GitConfig configures the git executable
type GitConfig struct {
	Binary  string        `yaml:"binary"`
	Timeout time.Duration `yaml:"timeout"`
}

// LogConfig configures logging
type LogConfig struct {
	Level  string    `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Cache: CacheConfig{
			Root:       filepath.Join(os.TempDir(), "git-cache"),
			StaleAfter: cache.DefaultStaleAfter,
			DefaultRef: cache.DefaultRef,
		},
		Git: GitConfig{
			Binary: cache.DefaultGitBinary,
		},
		Log: LogConfig{
			Level:  "info",
			Format: LogFormatText,
		},
	}
}

// Load reads and parses the configuration file. Keys missing from the file
// keep their defaults. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	path = os.ExpandEnv(path)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WrapWithContext(err, errors.CodeNotFound, "config file not found",
				map[string]interface{}{"path": path})
		}
		return nil, errors.WrapWithContext(err, errors.CodeFileSystem, "failed to read config file",
			map[string]interface{}{"path": path})
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.WrapWithContext(err, errors.CodeInvalidConfig, "failed to parse config file",
			map[string]interface{}{"path": path})
	}

	cfg.expandEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// expandEnv expands environment variables in path-like fields
func (c *Config) expandEnv() {
	c.Cache.Root = os.ExpandEnv(c.Cache.Root)
	c.Git.Binary = os.ExpandEnv(c.Git.Binary)
}

// Validate checks the configuration for errors
func (c *Config) Validate() error {
	invalid := func(format string, args ...interface{}) error {
		return errors.Newf(errors.CodeInvalidConfig, format, args...)
	}

	if strings.TrimSpace(c.Cache.Root) == "" {
		return invalid("cache.root is required")
	}
	if c.Cache.StaleAfter < 0 {
		return invalid("cache.stale_after must not be negative: %s", c.Cache.StaleAfter)
	}
	if strings.TrimSpace(c.Cache.DefaultRef) == "" {
		return invalid("cache.default_ref is required")
	}
	if strings.TrimSpace(c.Git.Binary) == "" {
		return invalid("git.binary is required")
	}
	if c.Git.Timeout < 0 {
		return invalid("git.timeout must not be negative: %s", c.Git.Timeout)
	}

	if _, ok := parseLevel(c.Log.Level); !ok {
		return invalid("invalid log.level: %s (must be debug, info, warn, or error)", c.Log.Level)
	}
	switch c.Log.Format {
	case LogFormatText, LogFormatJSON:
		// valid
	default:
		return invalid("invalid log.format: %s (must be text or json)", c.Log.Format)
	}

	return nil
}

// SlogLevel returns the configured level, falling back to info.
func (c *Config) SlogLevel() slog.Level {
	level, _ := parseLevel(c.Log.Level)
	return level
}

func parseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, true
	case "info", "":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// Options converts the configuration to cache options.
func (c *Config) Options() []cache.Option {
	return []cache.Option{
		cache.WithRoot(c.Cache.Root),
		cache.WithStaleAfter(c.Cache.StaleAfter),
		cache.WithDefaultRef(c.Cache.DefaultRef),
		cache.WithGitBinary(c.Git.Binary),
		cache.WithCommandTimeout(c.Git.Timeout),
	}
}
