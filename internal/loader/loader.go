// Package loader discovers DRL files in a project and parses them
// concurrently, one independent builder per file.
package loader

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/drl/internal/config"
	"github.com/leapstack-labs/drl/pkg/drl"
)

// File is one parsed rule file.
type File struct {
	// Path is the absolute or root-joined path of the file.
	Path string
	// RelPath is Path relative to the source directory, slash-separated.
	RelPath string
	// Result holds the descriptor tree and syntax errors.
	Result *drl.Result
}

// Loader finds and parses the rule files of a project.
type Loader struct {
	root    string
	include []string
	exclude []string
	workers int
	logger  *slog.Logger
}

// New creates a loader for the source directory of cfg.
func New(cfg *config.ProjectConfig, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = config.DefaultWorkers
	}
	include := cfg.Include
	if len(include) == 0 {
		include = []string{config.DefaultInclude}
	}
	return &Loader{
		root:    cfg.SourceDir,
		include: include,
		exclude: cfg.Exclude,
		workers: workers,
		logger:  logger,
	}
}

// Root returns the directory the loader searches.
func (l *Loader) Root() string {
	return l.root
}

// Matches reports whether a path relative to the root would be loaded.
func (l *Loader) Matches(rel string) bool {
	rel = filepath.ToSlash(rel)
	return matchAny(l.include, rel) && !matchAny(l.exclude, rel)
}

// Discover returns the relative paths of all matching files, sorted.
// Hidden directories are skipped.
func (l *Loader) Discover() ([]string, error) {
	var files []string
	err := filepath.WalkDir(l.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(l.root, path)
		if err != nil {
			return err
		}
		if d.IsDir() {
			if rel != "." && len(d.Name()) > 1 && d.Name()[0] == '.' {
				return filepath.SkipDir
			}
			return nil
		}
		if l.Matches(rel) {
			files = append(files, filepath.ToSlash(rel))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to discover rule files in %s: %w", l.root, err)
	}
	sort.Strings(files)
	return files, nil
}

// Load discovers and parses every matching file. Files come back in
// discovery order. A file that cannot be read fails the whole load;
// syntax errors do not, they are part of each File's Result.
func (l *Loader) Load(ctx context.Context) ([]*File, error) {
	rels, err := l.Discover()
	if err != nil {
		return nil, err
	}
	l.logger.Debug("discovered rule files", "root", l.root, "count", len(rels))

	files := make([]*File, len(rels))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(l.workers)

	for i, rel := range rels {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			path := filepath.Join(l.root, filepath.FromSlash(rel))
			res, err := drl.ParseFile(path)
			if err != nil {
				return err
			}
			if res.HasErrors() {
				l.logger.Debug("syntax errors", "file", rel, "count", len(res.Errors))
			}
			files[i] = &File{Path: path, RelPath: rel, Result: res}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return files, nil
}
