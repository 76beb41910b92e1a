package commands

import (
	"errors"
	"fmt"
	"sort"

	"github.com/leapstack-labs/drl/internal/cli/output"
	"github.com/leapstack-labs/drl/internal/loader"
	"github.com/spf13/cobra"
)

// Problem is one syntax error of a checked file.
type Problem struct {
	File    string `json:"file" yaml:"file"`
	Line    int    `json:"line" yaml:"line"`
	Column  int    `json:"column" yaml:"column"`
	Message string `json:"message" yaml:"message"`
}

// CheckReport is the structured result of drl check.
type CheckReport struct {
	Files    int       `json:"files" yaml:"files"`
	Problems []Problem `json:"problems" yaml:"problems"`
}

// errProblemsFound makes drl check exit with status 1.
var errProblemsFound = errors.New("syntax errors found")

// NewCheckCommand creates the check command.
func NewCheckCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [path]",
		Short: "Report syntax errors in rule files",
		Long: `Parse rule files and report their syntax errors.

With no path the configured source directory is checked. A path may name
a single file or a directory.

Output adapts to environment:
  - Terminal: Styled output with colors
  - Piped/Scripted: Markdown format
  - JSON/YAML: Machine-readable format

The command exits with status 1 when any error is found.`,
		Example: `  # Check every rule file of the project
  drl check

  # Check one file
  drl check rules/cheese.drl

  # Machine-readable report
  drl check -o json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) > 0 {
				path = args[0]
			}
			return runCheck(cmd, path)
		},
	}

	return cmd
}

func runCheck(cmd *cobra.Command, path string) error {
	cmdCtx := NewCommandContext(cmd)

	files, err := cmdCtx.loadFiles(ctxOf(cmd), path)
	if err != nil {
		return err
	}

	report := cmdCtx.checkReport(files)
	if err := renderCheck(cmdCtx.Renderer, report); err != nil {
		return err
	}
	if len(report.Problems) > 0 {
		return errProblemsFound
	}
	return nil
}

// checkReport collects the problems of files, ordered by file and position.
func (c *CommandContext) checkReport(files []*loader.File) *CheckReport {
	report := &CheckReport{Files: len(files), Problems: []Problem{}}
	for _, f := range files {
		for _, d := range f.Result.Diagnostics() {
			report.Problems = append(report.Problems, Problem{
				File:    c.displayPath(f.Path),
				Line:    d.Pos.Line,
				Column:  d.Pos.Column,
				Message: d.Message,
			})
		}
	}
	sort.SliceStable(report.Problems, func(i, j int) bool {
		a, b := report.Problems[i], report.Problems[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})
	return report
}

func renderCheck(r *output.Renderer, report *CheckReport) error {
	if ok, err := r.Structured(report); ok {
		return err
	}

	if r.EffectiveMode() == output.ModeMarkdown {
		r.Println(output.FormatHeader(1, "Check"))
		r.Println("")
		r.Println(output.FormatKeyValue("Files", fmt.Sprintf("%d", report.Files)))
		r.Println(output.FormatKeyValue("Errors", fmt.Sprintf("%d", len(report.Problems))))
		if len(report.Problems) > 0 {
			r.Println("")
			for _, p := range report.Problems {
				r.Printf("- `%s:%d:%d` %s\n", p.File, p.Line, p.Column, p.Message)
			}
		}
		return nil
	}

	styles := r.Styles()
	for _, p := range report.Problems {
		r.Printf("%s %s\n", styles.Path.Render(fmt.Sprintf("%s:%d:%d:", p.File, p.Line, p.Column)), p.Message)
	}
	if len(report.Problems) == 0 {
		r.Success(fmt.Sprintf("%d file(s) checked, no errors", report.Files))
	} else {
		r.Error(fmt.Sprintf("%d error(s) in %d file(s) checked", len(report.Problems), report.Files))
	}
	return nil
}
