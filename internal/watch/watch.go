// Package watch reports changes to the rule files of a project.
//
// File system events are collected and debounced; once the tree has been
// quiet for the debounce interval the handler receives every file that was
// written or removed since the last call.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/leapstack-labs/drl/internal/loader"
)

// Event lists the rule files that changed. Paths are absolute.
type Event struct {
	Changed []string
	Removed []string
}

// Handler is called with each debounced batch of changes. Returning an
// error stops the watcher.
type Handler func(ctx context.Context, ev Event) error

// Watcher watches the source directory of a loader.
type Watcher struct {
	loader   *loader.Loader
	debounce time.Duration
	fsw      *fsnotify.Watcher
	logger   *slog.Logger
}

// New starts watching every directory below the loader's root.
func New(l *loader.Loader, debounce time.Duration, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	w := &Watcher{loader: l, debounce: debounce, fsw: fsw, logger: logger}
	if err := w.addTree(l.Root()); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", l.Root(), err)
	}
	return w, nil
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// addTree adds dir and its subdirectories, skipping hidden ones.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}

// relevant reports whether path is a rule file the loader would load.
func (w *Watcher) relevant(path string) bool {
	rel, err := filepath.Rel(w.loader.Root(), path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return false
	}
	return w.loader.Matches(rel)
}

// Run delivers debounced changes to handle until ctx is done, the handler
// fails or the watcher is closed.
func (w *Watcher) Run(ctx context.Context, handle Handler) error {
	defer func() { _ = w.fsw.Close() }()

	pending := map[string]fsnotify.Op{}
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "error", err)

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addTree(event.Name); err != nil {
						w.logger.Warn("failed to watch new directory", "path", event.Name, "error", err)
					}
					continue
				}
			}
			if !w.relevant(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			w.logger.Debug("file event", "path", event.Name, "op", event.Op.String())
			pending[event.Name] = event.Op

			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			ev := collect(pending)
			pending = map[string]fsnotify.Op{}
			if err := handle(ctx, ev); err != nil {
				return err
			}
		}
	}
}

// collect splits pending operations into changed and removed files. The
// last operation seen for a path wins.
func collect(pending map[string]fsnotify.Op) Event {
	var ev Event
	for path, op := range pending {
		if op.Has(fsnotify.Remove) || op.Has(fsnotify.Rename) {
			ev.Removed = append(ev.Removed, path)
		} else {
			ev.Changed = append(ev.Changed, path)
		}
	}
	sort.Strings(ev.Changed)
	sort.Strings(ev.Removed)
	return ev
}
