package commands

import (
	"fmt"

	"github.com/leapstack-labs/drl/internal/cli/output"
	"github.com/leapstack-labs/drl/pkg/descr"
	"github.com/leapstack-labs/drl/pkg/drl"
	"github.com/leapstack-labs/drl/pkg/format"
	"github.com/spf13/cobra"
)

// Views accepted by drl parse --view.
const (
	viewTree = "tree"
	viewDRL  = "drl"
	viewJSON = "json"
	viewYAML = "yaml"
)

// ParseOptions holds options for the parse command.
type ParseOptions struct {
	View string
}

// NewParseCommand creates the parse command.
func NewParseCommand() *cobra.Command {
	opts := &ParseOptions{}
	cmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Print the package descriptor of a rule file",
		Long: `Parse a DRL file and print the descriptor tree built from it.

Views:
  - tree: indented descriptor tree with source positions
  - drl:  the descriptor printed back as DRL
  - json: machine-readable descriptor
  - yaml: machine-readable descriptor

Syntax errors are reported on stderr; the descriptor is printed anyway.`,
		Example: `  # Show the descriptor tree
  drl parse rules/cheese.drl

  # Descriptor as JSON
  drl parse rules/cheese.drl --view json

  # Normalised DRL
  drl parse rules/cheese.drl --view drl`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.View, "view", "", "Descriptor view: tree, drl, json, yaml (default follows --output)")
	_ = cmd.RegisterFlagCompletionFunc("view", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{viewTree, viewDRL, viewJSON, viewYAML}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runParse(cmd *cobra.Command, path string, opts *ParseOptions) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer

	res, err := drl.ParseFile(path)
	if err != nil {
		return err
	}
	for _, d := range res.Diagnostics() {
		r.Warning(fmt.Sprintf("%s:%s", path, d))
	}
	if res.Err != nil {
		return fmt.Errorf("failed to build %s: %w", path, res.Err)
	}

	view := opts.View
	if view == "" {
		view = defaultView(r.EffectiveMode())
	}
	return renderPackage(r, res.Package, view)
}

// defaultView maps the output mode to a descriptor view.
func defaultView(mode output.Mode) string {
	switch mode {
	case output.ModeJSON:
		return viewJSON
	case output.ModeYAML:
		return viewYAML
	}
	return viewTree
}

func renderPackage(r *output.Renderer, pkg *descr.PackageDescr, view string) error {
	switch view {
	case viewTree:
		r.Printf("%s", format.Tree(pkg))
	case viewDRL:
		r.Printf("%s", format.Format(pkg))
	case viewJSON:
		data, err := format.JSON(pkg)
		if err != nil {
			return err
		}
		r.Printf("%s", data)
	case viewYAML:
		data, err := format.YAML(pkg)
		if err != nil {
			return err
		}
		r.Printf("%s", data)
	default:
		return fmt.Errorf("unknown view %q (use tree, drl, json or yaml)", view)
	}
	return nil
}
