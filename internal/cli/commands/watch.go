package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/leapstack-labs/drl/internal/index"
	"github.com/leapstack-labs/drl/internal/loader"
	"github.com/leapstack-labs/drl/internal/watch"
	"github.com/leapstack-labs/drl/pkg/drl"
	"github.com/spf13/cobra"
)

// WatchOptions holds options for the watch command.
type WatchOptions struct {
	Index bool
}

// NewWatchCommand creates the watch command.
func NewWatchCommand() *cobra.Command {
	opts := &WatchOptions{}
	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Re-check rule files whenever they change",
		Long: `Check every rule file once, then watch the source directory and
re-check files as they are saved.

With --index the symbol index is kept current as well. Press Ctrl+C to stop.`,
		Example: `  # Watch the configured source directory
  drl watch

  # Watch and keep the symbol index current
  drl watch --index`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := ""
			if len(args) > 0 {
				dir = args[0]
			}
			ctx, stop := signal.NotifyContext(ctxOf(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runWatch(ctx, cmd, dir, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Index, "index", false, "Update the symbol index on every change")

	return cmd
}

func runWatch(ctx context.Context, cmd *cobra.Command, dir string, opts *WatchOptions) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer
	l := cmdCtx.loaderFor(dir)

	files, err := l.Load(ctx)
	if err != nil {
		return err
	}
	if err := renderCheck(r, cmdCtx.checkReport(files)); err != nil {
		return err
	}

	var store *index.Store
	if opts.Index {
		store, err = cmdCtx.openIndex(false)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()
	}

	debounce := time.Duration(cmdCtx.Cfg.GetWatchConfig().DebounceMS) * time.Millisecond
	w, err := watch.New(l, debounce, cmdCtx.Logger)
	if err != nil {
		return err
	}
	r.Muted(fmt.Sprintf("Watching %s (Ctrl+C to stop)", cmdCtx.displayPath(l.Root())))

	return w.Run(ctx, func(ctx context.Context, ev watch.Event) error {
		return cmdCtx.handleChange(ctx, store, ev)
	})
}

// handleChange re-checks changed files and updates the index when one is
// open. Files that vanished before they could be read count as removed.
func (c *CommandContext) handleChange(ctx context.Context, store *index.Store, ev watch.Event) error {
	var files []*loader.File
	removed := ev.Removed
	for _, path := range ev.Changed {
		res, err := drl.ParseFile(path)
		if err != nil {
			c.Logger.Debug("changed file not readable", "path", path, "error", err)
			removed = append(removed, path)
			continue
		}
		files = append(files, &loader.File{Path: path, Result: res})
	}

	if len(files) > 0 {
		if err := renderCheck(c.Renderer, c.checkReport(files)); err != nil {
			return err
		}
	}
	for _, path := range removed {
		c.Renderer.Muted("Removed " + c.displayPath(path))
	}

	if store == nil {
		return nil
	}
	for _, f := range files {
		if f.Result.Package == nil {
			continue
		}
		if _, err := store.ReplaceFile(ctx, index.Document{
			Path:       f.Path,
			Package:    f.Result.Package,
			ErrorCount: len(f.Result.Errors),
		}); err != nil {
			c.Logger.Warn("failed to update index", "path", f.Path, "error", err)
		}
	}
	for _, path := range removed {
		if err := store.RemoveFile(ctx, path); err != nil {
			c.Logger.Warn("failed to update index", "path", path, "error", err)
		}
	}
	return nil
}
