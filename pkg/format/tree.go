package format

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/drl/pkg/descr"
	"github.com/leapstack-labs/drl/pkg/token"
)

// Tree renders pkg as an indented outline, one descriptor per line with its
// source position. It is meant for debugging the builder.
func Tree(pkg *descr.PackageDescr) string {
	p := newPrinter(2)
	p.line("package " + orNone(pkg.Name))
	p.indent()
	if pkg.Unit != nil {
		p.line("unit " + pkg.Unit.Target + at(pkg.Unit.Span))
	}
	for _, imp := range pkg.Imports {
		p.line("import " + imp.Target + at(imp.Span))
	}
	for _, imp := range pkg.FunctionImports {
		p.line("import function " + imp.Target + at(imp.Span))
	}
	for _, g := range pkg.Globals {
		p.line("global " + g.Identifier + " : " + g.Type + at(g.Span))
	}
	for _, name := range pkg.AttributeNames() {
		a := pkg.Attributes[name]
		p.line(attributeLine(a))
	}
	for _, fn := range pkg.Functions {
		params := make([]string, len(fn.Parameters))
		for i, param := range fn.Parameters {
			params[i] = param.Type + " " + param.Name
		}
		p.line(fmt.Sprintf("function %s(%s) %s%s", fn.Name, strings.Join(params, ", "), fn.ReturnType, at(fn.Span)))
	}
	for _, r := range pkg.Rules {
		p.treeRule(r)
	}
	p.dedent()
	return p.String()
}

func (p *Printer) treeRule(r *descr.RuleDescr) {
	head := "rule " + quote(r.Name)
	if r.ParentName != "" {
		head += " extends " + quote(r.ParentName)
	}
	p.line(head + at(r.Span))
	p.indent()
	for _, name := range r.AttributeNames() {
		p.line(attributeLine(r.Attributes[name]))
	}
	for _, a := range r.Annotations {
		p.line("@" + a.Name + " = " + a.Value)
	}
	p.treeCondition(r.LHS)
	if r.ConsequenceLocation.IsValid() {
		p.line(fmt.Sprintf("consequence @%d:%d (%d lines)",
			r.ConsequenceLocation.Line, r.ConsequenceLocation.Column, lineCount(r.Consequence)))
	}
	p.dedent()
}

func (p *Printer) treeCondition(c descr.Condition) {
	switch n := c.(type) {
	case *descr.And:
		p.line("and" + at(n.Span))
		p.treeChildren(n.Children)
	case *descr.Or:
		p.line("or" + at(n.Span))
		p.treeChildren(n.Children)
	case *descr.Not:
		p.line("not" + at(n.Span))
		p.treeChildren([]descr.Condition{n.Child})
	case *descr.Exists:
		p.line("exists" + at(n.Span))
		p.treeChildren([]descr.Condition{n.Child})
	case *descr.Pattern:
		s := "pattern " + n.ObjectType
		if n.Identifier != "" {
			s += " as " + n.Identifier
		}
		if n.Source != nil {
			s += " from " + n.Source.DataSource
		}
		p.line(s + at(n.Span))
		if n.Constraint != nil {
			p.treeChildren(n.Constraint.Children)
		}
	case *descr.ExprConstraint:
		p.line("constraint " + n.Text + at(n.Span))
	}
}

func (p *Printer) treeChildren(children []descr.Condition) {
	p.indent()
	for _, c := range children {
		p.treeCondition(c)
	}
	p.dedent()
}

func attributeLine(a *descr.AttributeDescr) string {
	if a.Value == "" {
		return "attribute " + a.Name + at(a.Span)
	}
	return "attribute " + a.Name + " = " + a.Value + at(a.Span)
}

// at formats the start of a span as " @line:col", or "" for an invalid span.
func at(s token.Span) string {
	if !s.IsValid() {
		return ""
	}
	return fmt.Sprintf(" @%d:%d", s.Start.Line, s.Start.Column)
}

func orNone(s string) string {
	if s == "" {
		return "<none>"
	}
	return s
}

func lineCount(s string) int {
	if s == "" {
		return 0
	}
	return strings.Count(s, "\n") + 1
}
