package lsp

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/drl/pkg/descr"
	"github.com/leapstack-labs/drl/pkg/token"
)

// getHover describes the innermost declaration under the cursor: a
// pattern inside a rule, the rule itself, a function or a global.
func (s *Server) getHover(params HoverParams) *Hover {
	doc := s.documents.Get(params.TextDocument.URI)
	if doc == nil || doc.Result == nil || doc.Result.Package == nil {
		return nil
	}
	pkg := doc.Result.Package
	offset := doc.PositionToOffset(params.Position)
	var comments []*token.Comment
	if doc.Result.Tree != nil {
		comments = doc.Result.Tree.Comments
	}

	for _, rule := range pkg.Rules {
		if !rule.Span.Contains(offset) {
			continue
		}
		for _, p := range descr.Patterns(rule.LHS) {
			if p.Span.Contains(offset) {
				return markdownHover(patternHover(p), spanRange(p.Span))
			}
		}
		return markdownHover(withDoc(ruleHover(rule), comments, rule.Span), spanRange(rule.Span))
	}
	for _, fn := range pkg.Functions {
		if fn.Span.Contains(offset) {
			return markdownHover(withDoc(functionHover(fn), comments, fn.Span), spanRange(fn.Span))
		}
	}
	for _, g := range pkg.Globals {
		if g.Span.Contains(offset) {
			return markdownHover(fmt.Sprintf("**global** `%s %s`", g.Type, g.Identifier), spanRange(g.Span))
		}
	}
	return nil
}

func markdownHover(text string, r Range) *Hover {
	return &Hover{
		Contents: MarkupContent{Kind: MarkupKindMarkdown, Value: text},
		Range:    &r,
	}
}

// withDoc appends the comment written directly above a declaration.
func withDoc(text string, comments []*token.Comment, span token.Span) string {
	if doc := token.DocComment(comments, span.Start.Line); doc != "" {
		return text + "\n\n" + doc
	}
	return text
}

func ruleHover(rule *descr.RuleDescr) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "**rule** `%s`", rule.Name)
	if rule.ParentName != "" {
		fmt.Fprintf(&sb, " extends `%s`", rule.ParentName)
	}
	sb.WriteString("\n")
	for _, name := range rule.AttributeNames() {
		a := rule.Attributes[name]
		if a.Value == "" {
			fmt.Fprintf(&sb, "\n- %s", name)
		} else {
			fmt.Fprintf(&sb, "\n- %s: `%s`", name, a.Value)
		}
	}
	patterns := descr.Patterns(rule.LHS)
	fmt.Fprintf(&sb, "\n\n%d pattern(s)", len(patterns))
	if bindings := descr.Bindings(rule.LHS); len(bindings) > 0 {
		fmt.Fprintf(&sb, ", bindings: `%s`", strings.Join(bindings, "`, `"))
	}
	return sb.String()
}

func patternHover(p *descr.Pattern) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "**pattern** `%s`", p.ObjectType)
	if p.Identifier != "" {
		fmt.Fprintf(&sb, " bound to `%s`", p.Identifier)
	}
	if p.Constraint != nil {
		for _, c := range p.Constraint.Children {
			if ec, ok := c.(*descr.ExprConstraint); ok {
				fmt.Fprintf(&sb, "\n- `%s`", ec.Text)
			}
		}
	}
	if p.Source != nil {
		fmt.Fprintf(&sb, "\n\nfrom `%s`", p.Source.DataSource)
	}
	return sb.String()
}

func functionHover(fn *descr.FunctionDescr) string {
	params := make([]string, len(fn.Parameters))
	for i, p := range fn.Parameters {
		params[i] = p.Type + " " + p.Name
	}
	return fmt.Sprintf("**function** `%s %s(%s)`", fn.ReturnType, fn.Name, strings.Join(params, ", "))
}
