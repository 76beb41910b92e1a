package descr

// Walk visits c and its descendants in pre-order. Pattern constraints are
// visited after the pattern itself. Returning false from fn skips the
// children of that condition.
func Walk(c Condition, fn func(Condition) bool) {
	if c == nil || !fn(c) {
		return
	}
	switch n := c.(type) {
	case *And:
		for _, child := range n.Children {
			Walk(child, fn)
		}
	case *Or:
		for _, child := range n.Children {
			Walk(child, fn)
		}
	case *Not:
		Walk(n.Child, fn)
	case *Exists:
		Walk(n.Child, fn)
	case *Pattern:
		if n.Constraint != nil {
			for _, child := range n.Constraint.Children {
				Walk(child, fn)
			}
		}
	case *ExprConstraint:
	}
}

// Patterns returns every pattern under c in source order.
func Patterns(c Condition) []*Pattern {
	var out []*Pattern
	Walk(c, func(n Condition) bool {
		if p, ok := n.(*Pattern); ok {
			out = append(out, p)
		}
		return true
	})
	return out
}

// Bindings returns the distinct binding identifiers under c in first-seen
// order, pattern and constraint labels alike.
func Bindings(c Condition) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(name string) {
		if name != "" && !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	Walk(c, func(n Condition) bool {
		switch v := n.(type) {
		case *Pattern:
			add(v.Identifier)
		case *ExprConstraint:
			add(v.Label)
		}
		return true
	})
	return out
}
