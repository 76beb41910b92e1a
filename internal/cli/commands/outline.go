package commands

import (
	"fmt"

	"github.com/leapstack-labs/drl/internal/cli/output"
	"github.com/leapstack-labs/drl/internal/index"
	"github.com/spf13/cobra"
)

// OutlineEntry is one declaration in drl outline output.
type OutlineEntry struct {
	File    string           `json:"file" yaml:"file"`
	Line    int              `json:"line" yaml:"line"`
	Kind    index.SymbolKind `json:"kind" yaml:"kind"`
	Name    string           `json:"name" yaml:"name"`
	Package string           `json:"package,omitempty" yaml:"package,omitempty"`
	Detail  string           `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// OutlineOptions holds options for the outline command.
type OutlineOptions struct {
	Kinds []string
}

// NewOutlineCommand creates the outline command.
func NewOutlineCommand() *cobra.Command {
	opts := &OutlineOptions{}
	cmd := &cobra.Command{
		Use:   "outline [path]",
		Short: "List the declarations of rule files",
		Long: `List rules, functions, globals and imports of rule files as a table.

With no path the configured source directory is used.`,
		Example: `  # Outline the whole project
  drl outline

  # Only rules and functions of one directory
  drl outline rules/pricing --kind rule --kind function`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) > 0 {
				path = args[0]
			}
			return runOutline(cmd, path, opts)
		},
	}

	cmd.Flags().StringSliceVar(&opts.Kinds, "kind", nil, "Only show these kinds: rule, function, global, import, function_import")

	return cmd
}

func runOutline(cmd *cobra.Command, path string, opts *OutlineOptions) error {
	cmdCtx := NewCommandContext(cmd)

	files, err := cmdCtx.loadFiles(ctxOf(cmd), path)
	if err != nil {
		return err
	}

	keep := map[index.SymbolKind]bool{}
	for _, k := range opts.Kinds {
		keep[index.SymbolKind(k)] = true
	}

	entries := []OutlineEntry{}
	for _, f := range files {
		if f.Result.Package == nil {
			cmdCtx.Logger.Warn("skipping file that failed to build", "file", f.Path, "error", f.Result.Err)
			continue
		}
		for _, s := range index.Symbols(f.Path, f.Result.Package) {
			if len(keep) > 0 && !keep[s.Kind] {
				continue
			}
			entries = append(entries, OutlineEntry{
				File:    cmdCtx.displayPath(s.File),
				Line:    s.Line(),
				Kind:    s.Kind,
				Name:    s.Name,
				Package: s.Package,
				Detail:  s.Detail,
			})
		}
	}

	return renderOutline(cmdCtx.Renderer, entries)
}

func renderOutline(r *output.Renderer, entries []OutlineEntry) error {
	if ok, err := r.Structured(entries); ok {
		return err
	}
	if len(entries) == 0 {
		r.Muted("No declarations found")
		return nil
	}

	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = []string{fmt.Sprintf("%s:%d", e.File, e.Line), string(e.Kind), e.Name, e.Detail}
	}
	r.Table([]string{"location", "kind", "name", "detail"}, rows)
	return nil
}
