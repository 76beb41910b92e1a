// Package builder turns a DRL concrete syntax tree into a descriptor tree.
//
// The builder walks the CST once, top to bottom, dispatching on node kind.
// Context such as the rule being built is passed explicitly down the walk;
// a builder holds no state beyond the tree and the package it produces, and
// each Build call uses a fresh one.
//
// Syntax errors never stop the walk: error nodes contribute no text and no
// descriptors, so a partial package is always produced. Only an
// *InvariantError, raised when the tree has a shape the descriptor model
// cannot represent, aborts the build.
package builder

import (
	"strings"

	"github.com/leapstack-labs/drl/pkg/cst"
	"github.com/leapstack-labs/drl/pkg/descr"
	"github.com/leapstack-labs/drl/pkg/token"
)

type builder struct {
	tree *cst.Tree
	pkg  *descr.PackageDescr
}

// Build builds the package descriptor for tree.
func Build(tree *cst.Tree) (*descr.PackageDescr, error) {
	b := &builder{tree: tree, pkg: descr.NewPackageDescr()}
	if tree == nil || tree.Root == nil {
		return b.pkg, nil
	}
	for _, n := range tree.Root.Children {
		if err := b.visitTopLevel(n); err != nil {
			return nil, err
		}
	}
	return b.pkg, nil
}

func (b *builder) visitTopLevel(n *cst.Node) error {
	switch n.Kind {
	case cst.KindPackageDef:
		b.pkg.Name = textOrEmpty(n.First(cst.KindQualifiedName))
	case cst.KindUnitDef:
		b.pkg.Unit = &descr.UnitDescr{
			Target: textOrEmpty(n.First(cst.KindQualifiedName)),
			Span:   significantSpan(n),
		}
	case cst.KindImportDef:
		b.visitImport(n)
	case cst.KindGlobalDef:
		b.visitGlobal(n)
	case cst.KindFunctionDef:
		b.visitFunction(n)
	case cst.KindAttribute:
		if a := buildAttribute(n); a != nil {
			b.pkg.AddAttribute(a)
		}
	case cst.KindRuleDef:
		return b.visitRule(n)
	case cst.KindError, cst.KindTerminal:
		// recovered junk and stray separators
	}
	return nil
}

func (b *builder) visitImport(n *cst.Node) {
	target := textOrEmpty(n.First(cst.KindQualifiedName))
	if n.Terminal(token.STAR) != nil {
		target += ".*"
	}
	span := significantSpan(n)

	if n.Terminal(token.FUNCTION) != nil || n.Terminal(token.STATIC) != nil {
		b.pkg.FunctionImports = append(b.pkg.FunctionImports, &descr.FunctionImportDescr{Target: target, Span: span})
		return
	}
	b.pkg.Imports = append(b.pkg.Imports, &descr.ImportDescr{Target: target, Span: span})
}

func (b *builder) visitGlobal(n *cst.Node) {
	b.pkg.Globals = append(b.pkg.Globals, &descr.GlobalDescr{
		Identifier: firstIdent(n),
		Type:       b.sourceText(n.First(cst.KindType)),
		Span:       significantSpan(n),
	})
}

func (b *builder) visitFunction(n *cst.Node) {
	fn := &descr.FunctionDescr{
		Name:       firstIdent(n),
		ReturnType: "void",
		Namespace:  b.pkg.Namespace(),
		Body:       b.sourceText(n.First(cst.KindBlock)),
		Span:       n.Span,
	}
	if t := n.First(cst.KindType); t != nil {
		fn.ReturnType = b.sourceText(t)
	}
	if dialect := b.pkg.Attribute("dialect"); dialect != nil {
		fn.Dialect = dialect.Value
	}
	for _, param := range n.First(cst.KindFormalParameters).All(cst.KindFormalParameter) {
		fn.Parameters = append(fn.Parameters, descr.Parameter{
			Type: b.sourceText(param.First(cst.KindType)),
			Name: firstIdent(param),
		})
	}
	b.pkg.Functions = append(b.pkg.Functions, fn)
}

// visitRule builds a rule. The rule is appended before its body is walked
// so that rules keep source order even when the body is malformed.
func (b *builder) visitRule(n *cst.Node) error {
	rule := descr.NewRuleDescr(stripDelimiters(textOrEmpty(n.First(cst.KindRuleName))))
	rule.ParentName = stripDelimiters(textOrEmpty(n.First(cst.KindParentName)))
	rule.Span = n.Span
	b.pkg.Rules = append(b.pkg.Rules, rule)

	for _, child := range n.Children {
		switch child.Kind {
		case cst.KindAttribute:
			if a := buildAttribute(child); a != nil {
				rule.AddAttribute(a)
			}
		case cst.KindAnnotation:
			rule.Annotations = append(rule.Annotations, buildAnnotation(child))
		case cst.KindLhs:
			lhs, err := composeLHS(child)
			if err != nil {
				return err
			}
			rule.LHS = lhs
		case cst.KindRhs:
			b.visitRhs(child, rule)
		}
	}
	return nil
}

// visitRhs records the consequence and the position of "then".
func (b *builder) visitRhs(n *cst.Node, rule *descr.RuleDescr) {
	if then := n.Terminal(token.THEN); then != nil {
		rule.ConsequenceLocation = then.Token.Pos
	}
	rule.Consequence = b.sourceText(n.First(cst.KindConsequence))
}

// buildAttribute builds an attribute from its keyword and optional value.
// The value has its quotes stripped and Java escapes decoded.
func buildAttribute(n *cst.Node) *descr.AttributeDescr {
	kw := n.Child(0)
	if kw == nil || !kw.IsTerminal() {
		return nil
	}
	a := &descr.AttributeDescr{Name: kw.Token.Literal, Span: significantSpan(n)}
	value := n.Child(1)
	if value == nil {
		return a
	}
	// calendars takes a list of strings; each one is unquoted on its own
	if literals := value.All(cst.KindLiteral); len(literals) > 1 {
		parts := make([]string, 0, len(literals))
		for _, lit := range literals {
			parts = append(parts, unescapeJava(stripDelimiters(textOrEmpty(lit))))
		}
		a.Value = strings.Join(parts, ", ")
		return a
	}
	a.Value = unescapeJava(stripDelimiters(textOrEmpty(value)))
	return a
}

// buildAnnotation builds an annotation whose value is its first argument.
func buildAnnotation(n *cst.Node) *descr.AnnotationDescr {
	a := &descr.AnnotationDescr{
		Name: textOrEmpty(n.First(cst.KindQualifiedName)),
		Span: n.Span,
	}
	if args := n.First(cst.KindAnnotationArgs); args != nil {
		a.Value = textOrEmpty(args.First(cst.KindChunk))
	}
	return a
}
