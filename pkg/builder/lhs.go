package builder

import (
	"github.com/leapstack-labs/drl/pkg/cst"
	"github.com/leapstack-labs/drl/pkg/descr"
	"github.com/leapstack-labs/drl/pkg/token"
)

// composeLHS turns the LHS node of a rule into the rule's root And. Each
// top-level element becomes one child; nested Ands are then merged into the
// root so that the root never has an And child.
func composeLHS(lhs *cst.Node) (*descr.And, error) {
	root := &descr.And{}
	if lhs == nil {
		return root, nil
	}
	root.Span = lhs.Span

	var parts []descr.Condition
	for _, child := range lhs.Children {
		c, err := compose(child)
		if err != nil {
			return nil, err
		}
		if c != nil {
			parts = append(parts, c)
		}
	}
	for _, c := range parts {
		root.AddOrMerge(c)
	}
	return root, nil
}

// compose returns the condition for a condition-producing node, or nil for
// separators, error nodes and anything else that yields no condition.
func compose(n *cst.Node) (descr.Condition, error) {
	switch n.Kind {
	case cst.KindLhsOr:
		return composeChain(n, cst.KindLhsAnd, token.OR, func(children []descr.Condition) descr.Condition {
			return &descr.Or{Children: children, Span: n.Span}
		})
	case cst.KindLhsAnd:
		return composeChain(n, cst.KindLhsUnary, token.AND, func(children []descr.Condition) descr.Condition {
			return &descr.And{Children: children, Span: n.Span}
		})
	case cst.KindLhsUnary:
		for _, child := range n.Children {
			switch child.Kind {
			case cst.KindLhsNot, cst.KindLhsExists, cst.KindLhsOr, cst.KindLhsPatternBind:
				return compose(child)
			}
		}
		return nil, nil
	case cst.KindLhsNot:
		c, err := composePatternBind(n.First(cst.KindLhsPatternBind), n)
		if err != nil {
			return nil, err
		}
		return &descr.Not{Child: c, Span: n.Span}, nil
	case cst.KindLhsExists:
		c, err := composePatternBind(n.First(cst.KindLhsPatternBind), n)
		if err != nil {
			return nil, err
		}
		return &descr.Exists{Child: c, Span: n.Span}, nil
	case cst.KindLhsPatternBind:
		return composePatternBind(n, n)
	default:
		return nil, nil
	}
}

// composeChain composes an OR or AND chain. Only a chain that actually
// contains the operator keyword gets a wrapper; otherwise the single operand
// is returned as is.
func composeChain(n *cst.Node, operand cst.Kind, op token.TokenType, wrap func([]descr.Condition) descr.Condition) (descr.Condition, error) {
	operands := n.All(operand)
	if n.Count(op) == 0 {
		if len(operands) == 0 {
			return nil, nil
		}
		return compose(operands[0])
	}
	var children []descr.Condition
	for _, o := range operands {
		c, err := compose(o)
		if err != nil {
			return nil, err
		}
		if c != nil {
			children = append(children, c)
		}
	}
	return wrap(children), nil
}

// composePatternBind builds the condition for a pattern bind: a single
// Pattern, or an Or of Patterns that all share the bind's label. owner is
// the node reported when the bind holds no pattern at all.
func composePatternBind(bind, owner *cst.Node) (descr.Condition, error) {
	patterns := bind.All(cst.KindLhsPattern)
	if len(patterns) == 0 {
		return nil, &InvariantError{
			Construct: constructName(owner),
			Message:   "pattern bind has no pattern",
			Span:      owner.Span,
		}
	}

	label := bind.First(cst.KindLabel)
	identifier := firstIdent(label)

	if len(patterns) == 1 {
		p := buildPattern(patterns[0])
		p.Identifier = identifier
		if label != nil {
			p.Span = label.Span.Join(p.Span)
		}
		return p, nil
	}

	or := &descr.Or{Span: bind.Span}
	for _, pn := range patterns {
		p := buildPattern(pn)
		p.Identifier = identifier
		or.Add(p)
	}
	return or, nil
}

func constructName(n *cst.Node) string {
	switch n.Kind {
	case cst.KindLhsNot:
		return "not"
	case cst.KindLhsExists:
		return "exists"
	}
	return "pattern bind"
}

// buildPattern builds a Pattern with its constraints and data source.
func buildPattern(n *cst.Node) *descr.Pattern {
	p := descr.NewPattern(textOrEmpty(n.First(cst.KindQualifiedName)))
	p.Span = n.Span

	for _, c := range n.First(cst.KindConstraints).All(cst.KindConstraint) {
		if ec, ok := buildConstraint(c); ok {
			p.AddConstraint(ec)
		}
	}

	if src := n.First(cst.KindPatternSource); src != nil {
		if text, ok := reconstruct(src); ok {
			p.Source = &descr.From{DataSource: text, Span: src.Span}
		}
	}
	return p
}

// buildConstraint reconstructs one constraint. A label is kept verbatim in
// front of the expression. Constraints whose expression yields no text are
// dropped.
func buildConstraint(n *cst.Node) (*descr.ExprConstraint, bool) {
	var expr *cst.Node
	for _, c := range n.Children {
		if c.Kind != cst.KindLabel {
			expr = c
		}
	}
	if _, ok := reconstruct(expr); !ok {
		return nil, false
	}

	text, _ := reconstruct(n)
	return &descr.ExprConstraint{
		Text:  text,
		Label: firstIdent(n.First(cst.KindLabel)),
		Span:  n.Span,
	}, true
}
