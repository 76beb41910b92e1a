package commands

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/leapstack-labs/drl/internal/cli/output"
	"github.com/leapstack-labs/drl/internal/index"
	"github.com/spf13/cobra"
)

// NewIndexCommand creates the index command and its subcommands.
func NewIndexCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Build and query the project symbol index",
		Long: `Maintain a SQLite index of every rule, function, global and import of
the project. The index backs workspace symbol search in the language server.`,
	}

	cmd.AddCommand(newIndexBuildCommand())
	cmd.AddCommand(newIndexQueryCommand())
	cmd.AddCommand(newIndexStatusCommand())

	return cmd
}

func newIndexBuildCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "build",
		Short: "Rebuild the symbol index from the rule sources",
		Example: `  # Index the configured source directory
  drl index build`,
		Args: cobra.NoArgs,
		RunE: runIndexBuild,
	}
}

func runIndexBuild(cmd *cobra.Command, _ []string) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer
	ctx := ctxOf(cmd)

	files, err := cmdCtx.loadFiles(ctx, "")
	if err != nil {
		return err
	}

	docs := make([]index.Document, 0, len(files))
	for _, f := range files {
		if f.Result.Package == nil {
			cmdCtx.Logger.Warn("skipping file that failed to build", "file", f.Path, "error", f.Result.Err)
			continue
		}
		docs = append(docs, index.Document{
			Path:       f.Path,
			Package:    f.Result.Package,
			ErrorCount: len(f.Result.Errors),
		})
	}

	store, err := cmdCtx.openIndex(true)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	info, err := store.Build(ctx, cmdCtx.Cfg.SourceDir, docs)
	if err != nil {
		return err
	}

	if ok, err := r.Structured(info); ok {
		return err
	}
	r.Success(fmt.Sprintf("Indexed %d symbols from %d files", info.SymbolCount, info.FileCount))
	if info.ErrorCount > 0 {
		r.Warning(fmt.Sprintf("%d syntax error(s); run 'drl check' for details", info.ErrorCount))
	}
	r.Muted("Index: " + cmdCtx.displayPath(cmdCtx.Cfg.IndexPath))
	return nil
}

// IndexQueryOptions holds options for the index query command.
type IndexQueryOptions struct {
	Kind    string
	Package string
	File    string
	Limit   int
}

func newIndexQueryCommand() *cobra.Command {
	opts := &IndexQueryOptions{}
	cmd := &cobra.Command{
		Use:   "query [name]",
		Short: "Search the symbol index",
		Long: `Search indexed symbols by name. The name may contain "*" wildcards;
without one it must match exactly.`,
		Example: `  # Every rule whose name starts with Discount
  drl index query 'Discount*' --kind rule

  # Everything declared in a package
  drl index query --package org.shop.pricing`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := index.Query{
				Kind:    index.SymbolKind(opts.Kind),
				Package: opts.Package,
				File:    opts.File,
				Limit:   opts.Limit,
			}
			if len(args) > 0 {
				q.Name = args[0]
			}
			if q.File != "" {
				if abs, err := filepath.Abs(q.File); err == nil {
					q.File = abs
				}
			}
			return runIndexQuery(cmd, q)
		},
	}

	cmd.Flags().StringVar(&opts.Kind, "kind", "", "Only symbols of this kind")
	cmd.Flags().StringVar(&opts.Package, "package", "", "Only symbols of this package")
	cmd.Flags().StringVar(&opts.File, "file", "", "Only symbols of this file")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "Maximum number of results (0 for no limit)")
	_ = cmd.RegisterFlagCompletionFunc("kind", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{
			string(index.KindRule), string(index.KindFunction), string(index.KindGlobal),
			string(index.KindImport), string(index.KindFunctionImport),
		}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runIndexQuery(cmd *cobra.Command, q index.Query) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer

	store, err := cmdCtx.openIndex(false)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	symbols, err := store.Query(ctxOf(cmd), q)
	if err != nil {
		return err
	}

	entries := make([]OutlineEntry, len(symbols))
	for i, s := range symbols {
		entries[i] = OutlineEntry{
			File:    cmdCtx.displayPath(s.File),
			Line:    s.Line(),
			Kind:    s.Kind,
			Name:    s.Name,
			Package: s.Package,
			Detail:  s.Detail,
		}
	}
	if ok, err := r.Structured(entries); ok {
		return err
	}
	if len(entries) == 0 {
		r.Muted("No matching symbols")
		return nil
	}

	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = []string{string(e.Kind), e.Name, e.Package, fmt.Sprintf("%s:%d", e.File, e.Line)}
	}
	r.Table([]string{"kind", "name", "package", "location"}, rows)
	return nil
}

func newIndexStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the last build of the symbol index",
		Args:  cobra.NoArgs,
		RunE:  runIndexStatus,
	}
}

func runIndexStatus(cmd *cobra.Command, _ []string) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer

	store, err := cmdCtx.openIndex(false)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	info, err := store.LastBuild(ctxOf(cmd))
	if err != nil {
		return err
	}
	if info == nil {
		r.Muted("The index has not been built yet")
		return nil
	}
	if ok, err := r.Structured(info); ok {
		return err
	}

	r.Header(1, "Symbol index")
	kv := func(k, v string) {
		if r.EffectiveMode() == output.ModeMarkdown {
			r.Println(output.FormatKeyValue(k, v))
			return
		}
		r.Printf("  %s %s\n", r.Styles().Muted.Render(k+":"), v)
	}
	kv("Build", info.ID)
	kv("Root", cmdCtx.displayPath(info.Root))
	kv("Built", info.StartedAt.Local().Format(time.RFC3339))
	kv("Files", fmt.Sprintf("%d", info.FileCount))
	kv("Symbols", fmt.Sprintf("%d", info.SymbolCount))
	kv("Errors", fmt.Sprintf("%d", info.ErrorCount))
	return nil
}
