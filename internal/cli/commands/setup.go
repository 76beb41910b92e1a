package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/drl/internal/cli/config"
	"github.com/leapstack-labs/drl/internal/cli/output"
	"github.com/leapstack-labs/drl/internal/index"
	"github.com/leapstack-labs/drl/internal/loader"
	"github.com/leapstack-labs/drl/pkg/drl"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext for cmd.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(ctxOf(cmd))
	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

func ctxOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// getConfig returns the current configuration, or the defaults when no
// configuration has been loaded.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return &config.Config{
		SourceDir:    config.DefaultSourceDir,
		Include:      []string{config.DefaultInclude},
		IndexPath:    config.DefaultIndexPath,
		Workers:      config.DefaultWorkers,
		OutputFormat: config.DefaultOutput,
	}
}

// loaderFor returns a loader over the configured sources, or over dir when
// a directory is given on the command line.
func (c *CommandContext) loaderFor(dir string) *loader.Loader {
	project := c.Cfg.Project()
	if dir != "" {
		project.SourceDir = dir
	}
	return loader.New(project, c.Logger)
}

// loadFiles parses the rule files selected by path: a single file, every
// matching file below a directory, or the configured sources when path is
// empty.
func (c *CommandContext) loadFiles(ctx context.Context, path string) ([]*loader.File, error) {
	if path != "" {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", path, err)
		}
		if !info.IsDir() {
			res, err := drl.ParseFile(path)
			if err != nil {
				return nil, err
			}
			abs, _ := filepath.Abs(path)
			return []*loader.File{{Path: abs, RelPath: filepath.Base(path), Result: res}}, nil
		}
	}
	return c.loaderFor(path).Load(ctx)
}

// openIndex opens the configured symbol index and applies migrations,
// creating the directory when create is set.
func (c *CommandContext) openIndex(create bool) (*index.Store, error) {
	path := c.Cfg.IndexPath
	if create {
		if dir := filepath.Dir(path); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return nil, fmt.Errorf("failed to create index directory: %w", err)
			}
		}
	} else if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("symbol index not found at %s (run 'drl index build')", path)
	}

	store := index.NewStore(c.Logger)
	if err := store.Open(path); err != nil {
		return nil, err
	}
	if err := store.Migrate(); err != nil {
		_ = store.Close()
		return nil, err
	}
	return store, nil
}

// displayPath shortens path relative to the project root for display.
func (c *CommandContext) displayPath(path string) string {
	if c.Cfg.ProjectRoot == "" {
		return path
	}
	if rel, err := filepath.Rel(c.Cfg.ProjectRoot, path); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return path
}
