// Package config provides shared project configuration for DRL tooling.
// It is decoupled from CLI concerns so that the language server and the
// loader can read a project's drl.yaml on their own.
package config

import "fmt"

// ProjectConfig is the project-level configuration stored in drl.yaml.
type ProjectConfig struct {
	// SourceDir is the directory searched for rule files, relative to the
	// project root.
	SourceDir string `koanf:"source_dir"`

	// Include and Exclude are glob patterns matched against paths relative
	// to SourceDir. A file is loaded when it matches some Include pattern
	// and no Exclude pattern.
	Include []string `koanf:"include"`
	Exclude []string `koanf:"exclude"`

	// IndexPath is the SQLite symbol index, relative to the project root.
	IndexPath string `koanf:"index_path"`

	// Workers bounds concurrent parsing. Zero means DefaultWorkers.
	Workers int `koanf:"workers"`
}

// Validate checks the configuration for values that can never work.
func (c *ProjectConfig) Validate() error {
	if c.SourceDir == "" {
		return fmt.Errorf("source_dir is required")
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	if len(c.Include) == 0 {
		return fmt.Errorf("at least one include pattern is required")
	}
	return nil
}
