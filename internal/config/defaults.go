package config

// Default configuration values.
const (
	DefaultSourceDir = "rules"
	DefaultIndexPath = ".drl/index.db"
	DefaultWorkers   = 4
	DefaultInclude   = "**/*.drl"
)

// ApplyDefaults fills unset fields of c with the defaults.
func (c *ProjectConfig) ApplyDefaults() {
	if c == nil {
		return
	}
	if c.SourceDir == "" {
		c.SourceDir = DefaultSourceDir
	}
	if c.IndexPath == "" {
		c.IndexPath = DefaultIndexPath
	}
	if c.Workers == 0 {
		c.Workers = DefaultWorkers
	}
	if len(c.Include) == 0 {
		c.Include = []string{DefaultInclude}
	}
}

// Default returns a configuration with every default applied.
func Default() *ProjectConfig {
	c := &ProjectConfig{}
	c.ApplyDefaults()
	return c
}
