package lsp

import (
	"github.com/leapstack-labs/drl/pkg/descr"
	"github.com/leapstack-labs/drl/pkg/drl"
)

const diagnosticSource = "drl"

// publishDiagnostics parses the document and publishes its syntax errors.
func (s *Server) publishDiagnostics(doc *Document) {
	if doc == nil {
		return
	}
	diagnostics := syntaxDiagnostics(doc.Result)
	s.logger.Debug("Publishing diagnostics", "uri", doc.URI, "count", len(diagnostics))

	version := doc.Version
	s.sendNotification("textDocument/publishDiagnostics", &PublishDiagnosticsParams{
		URI:         doc.URI,
		Version:     &version,
		Diagnostics: diagnostics,
	})
}

// syntaxDiagnostics converts the errors of a parse into diagnostics. Each
// diagnostic covers the single character the error was reported at.
func syntaxDiagnostics(res *drl.Result) []Diagnostic {
	diagnostics := []Diagnostic{}
	if res == nil {
		return diagnostics
	}
	for _, d := range res.Diagnostics() {
		start := toPosition(d.Pos)
		end := start
		end.Character++
		diagnostics = append(diagnostics, Diagnostic{
			Range:    Range{Start: start, End: end},
			Severity: DiagnosticSeverityError,
			Source:   diagnosticSource,
			Message:  d.Message,
		})
	}
	return diagnostics
}

// consequenceRange maps a problem reported against a rule's compiled
// consequence back to the editor. line is the 1-based line in the
// generated consequence, col the 0-based column; the result is a
// one-character range anchored at the rule's "then" keyword.
//
// TODO: publish consequence compile problems through this once an external
// validator reports them to the server.
func consequenceRange(rule *descr.RuleDescr, line, col int) Range {
	l := rule.ConsequenceLocation.Line + line - 2
	if l < 0 {
		l = 0
	}
	if col < 0 {
		col = 0
	}
	start := Position{Line: uint32(l), Character: uint32(col)}
	return Range{Start: start, End: Position{Line: start.Line, Character: start.Character + 1}}
}
