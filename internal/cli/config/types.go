// Package config provides configuration management for the drl CLI.
//
// The project-level settings (source directory, include and exclude
// patterns, index path, workers) are the shared ones from internal/config;
// this package layers CLI-only options on top and resolves paths against
// the project root.
package config

import (
	sharedcfg "github.com/leapstack-labs/drl/internal/config"
)

// Config holds all CLI configuration options.
type Config struct {
	ProjectRoot  string       `koanf:"-"`
	SourceDir    string       `koanf:"source_dir"`
	Include      []string     `koanf:"include"`
	Exclude      []string     `koanf:"exclude"`
	IndexPath    string       `koanf:"index_path"`
	Workers      int          `koanf:"workers"`
	Verbose      bool         `koanf:"verbose"`
	OutputFormat string       `koanf:"output"`
	Watch        *WatchConfig `koanf:"watch"`
}

// WatchConfig holds configuration for drl watch.
type WatchConfig struct {
	// DebounceMS is how long to wait after the last file event before
	// re-checking.
	DebounceMS int `koanf:"debounce_ms"`
}

// Project returns the shared project view of the configuration.
func (c *Config) Project() *sharedcfg.ProjectConfig {
	return &sharedcfg.ProjectConfig{
		SourceDir: c.SourceDir,
		Include:   c.Include,
		Exclude:   c.Exclude,
		IndexPath: c.IndexPath,
		Workers:   c.Workers,
	}
}

// GetWatchConfig returns the watch config with defaults applied for any
// unset values.
func (c *Config) GetWatchConfig() *WatchConfig {
	if c.Watch == nil {
		return &WatchConfig{DebounceMS: DefaultDebounceMS}
	}
	w := *c.Watch
	if w.DebounceMS <= 0 {
		w.DebounceMS = DefaultDebounceMS
	}
	return &w
}

// Default configuration values - uses shared defaults from internal/config
const (
	DefaultSourceDir  = sharedcfg.DefaultSourceDir
	DefaultIndexPath  = sharedcfg.DefaultIndexPath
	DefaultWorkers    = sharedcfg.DefaultWorkers
	DefaultInclude    = sharedcfg.DefaultInclude
	DefaultOutput     = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultDebounceMS = 200
)
