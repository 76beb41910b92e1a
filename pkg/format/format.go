package format

import (
	"strings"

	"github.com/leapstack-labs/drl/pkg/descr"
)

// Format renders pkg as normalised DRL source. Conditions are printed from
// the descriptor tree, so the output reflects exactly what was built:
// constraint texts are normalised and nested ANDs at the top of a rule
// appear flattened.
func Format(pkg *descr.PackageDescr) string {
	p := newPrinter(indentSize)
	p.formatPackage(pkg)
	return p.String()
}

func (p *Printer) formatPackage(pkg *descr.PackageDescr) {
	if pkg.Name != "" {
		p.line("package " + pkg.Name + ";")
	}
	if pkg.Unit != nil {
		p.line("unit " + pkg.Unit.Target + ";")
	}

	if len(pkg.Imports)+len(pkg.FunctionImports) > 0 {
		p.blank()
	}
	for _, imp := range pkg.Imports {
		p.line("import " + imp.Target + ";")
	}
	for _, imp := range pkg.FunctionImports {
		p.line("import function " + imp.Target + ";")
	}

	if len(pkg.Globals) > 0 {
		p.blank()
	}
	for _, g := range pkg.Globals {
		p.line("global " + g.Type + " " + g.Identifier + ";")
	}

	if len(pkg.Attributes) > 0 {
		p.blank()
	}
	for _, name := range pkg.AttributeNames() {
		p.formatAttribute(pkg.Attributes[name])
	}

	for _, fn := range pkg.Functions {
		p.blank()
		p.formatFunction(fn)
	}
	for _, r := range pkg.Rules {
		p.blank()
		p.formatRule(r)
	}
}

func (p *Printer) formatFunction(fn *descr.FunctionDescr) {
	p.write("function " + fn.ReturnType + " " + fn.Name + "(")
	p.formatList(len(fn.Parameters), func(i int) {
		p.write(fn.Parameters[i].Type + " " + fn.Parameters[i].Name)
	}, ", ")
	p.write(")")
	if fn.Body == "" {
		p.writeln()
		return
	}
	p.space()
	p.block(fn.Body)
}

func (p *Printer) formatRule(r *descr.RuleDescr) {
	p.write("rule " + quote(r.Name))
	if r.ParentName != "" {
		p.write(" extends " + quote(r.ParentName))
	}
	p.writeln()

	p.indent()
	for _, a := range r.Annotations {
		p.formatAnnotation(a)
	}
	for _, name := range r.AttributeNames() {
		p.formatAttribute(r.Attributes[name])
	}
	p.dedent()

	p.line("when")
	p.indent()
	for _, c := range r.LHS.Children {
		p.formatCondition(c, true)
		p.writeln()
	}
	p.dedent()

	p.line("then")
	if r.Consequence != "" {
		p.indent()
		p.block(r.Consequence)
		p.dedent()
	}
	p.line("end")
}

func (p *Printer) formatAnnotation(a *descr.AnnotationDescr) {
	if a.Value == "" {
		p.line("@" + a.Name)
		return
	}
	p.line("@" + a.Name + "(" + a.Value + ")")
}

// formatAttribute prints an attribute. Values that were written bare in
// DRL are printed bare; the others are quoted again.
func (p *Printer) formatAttribute(a *descr.AttributeDescr) {
	switch {
	case a.Value == "":
		p.line(a.Name)
	case bareAttributes[a.Name]:
		p.line(a.Name + " " + a.Value)
	case a.Name == "calendars":
		names := strings.Split(a.Value, ", ")
		for i, name := range names {
			names[i] = quote(name)
		}
		p.line(a.Name + " " + strings.Join(names, ", "))
	default:
		p.line(a.Name + " " + quote(a.Value))
	}
}

var bareAttributes = map[string]bool{
	"salience":       true,
	"enabled":        true,
	"no-loop":        true,
	"auto-focus":     true,
	"lock-on-active": true,
	"refract":        true,
	"direct":         true,
	"timer":          true,
	"duration":       true,
}

// formatCondition prints one condition element. top is true for direct
// children of a rule's root And, which need no parentheses.
func (p *Printer) formatCondition(c descr.Condition, top bool) {
	switch n := c.(type) {
	case *descr.Pattern:
		p.formatPattern(n, true)
	case *descr.Not:
		p.write("not ")
		p.formatCondition(n.Child, false)
	case *descr.Exists:
		p.write("exists ")
		p.formatCondition(n.Child, false)
	case *descr.Or:
		if id, ok := sharedBinding(n); ok {
			p.write(id + " : (")
			p.formatList(len(n.Children), func(i int) {
				p.formatPattern(n.Children[i].(*descr.Pattern), false)
			}, " or ")
			p.write(")")
			return
		}
		p.formatJunction(n.Children, " or ", top)
	case *descr.And:
		p.formatJunction(n.Children, " and ", false)
	case *descr.ExprConstraint:
		p.write(n.Text)
	}
}

func (p *Printer) formatJunction(children []descr.Condition, op string, top bool) {
	if !top {
		p.write("(")
	}
	p.formatList(len(children), func(i int) {
		p.formatCondition(children[i], false)
	}, op)
	if !top {
		p.write(")")
	}
}

func (p *Printer) formatPattern(pt *descr.Pattern, withBinding bool) {
	if withBinding && pt.Identifier != "" {
		p.write(pt.Identifier + " : ")
	}
	p.write(pt.ObjectType + "(")
	if pt.Constraint != nil && len(pt.Constraint.Children) > 0 {
		p.space()
		p.formatList(len(pt.Constraint.Children), func(i int) {
			p.formatCondition(pt.Constraint.Children[i], false)
		}, ", ")
		p.space()
	}
	p.write(")")
	if pt.Source != nil {
		p.write(" from " + pt.Source.DataSource)
	}
}

// sharedBinding reports whether every child of or is a Pattern bound to the
// same identifier, which is how a labelled alternative list is built.
func sharedBinding(or *descr.Or) (string, bool) {
	if len(or.Children) < 2 {
		return "", false
	}
	var id string
	for i, c := range or.Children {
		pt, ok := c.(*descr.Pattern)
		if !ok || pt.Identifier == "" {
			return "", false
		}
		if i == 0 {
			id = pt.Identifier
		} else if pt.Identifier != id {
			return "", false
		}
	}
	return id, true
}

var quoteReplacer = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\t", `\t`,
	"\r", `\r`,
)

// quote wraps s in double quotes using Java escapes.
func quote(s string) string {
	return `"` + quoteReplacer.Replace(s) + `"`
}
