package descr

import "github.com/leapstack-labs/drl/pkg/token"

// Condition is an element of a rule's condition tree. The set of
// implementations is closed: *And, *Or, *Not, *Exists, *Pattern and
// *ExprConstraint.
type Condition interface {
	GetSpan() token.Span
	condition()
}

// And matches when all children match.
type And struct {
	Children []Condition
	Span     token.Span
}

// Or matches when any child matches.
type Or struct {
	Children []Condition
	Span     token.Span
}

// Not matches when its child has no match.
type Not struct {
	Child Condition
	Span  token.Span
}

// Exists matches when its child has at least one match.
type Exists struct {
	Child Condition
	Span  token.Span
}

// Pattern matches facts of ObjectType satisfying every constraint.
// Identifier is the binding name, "" when unbound.
type Pattern struct {
	ObjectType string
	Identifier string
	Constraint *And
	Source     *From
	Span       token.Span
}

// ExprConstraint is a single constraint expression of a pattern. Text holds
// the whole constraint, label included; Label is the bound identifier.
type ExprConstraint struct {
	Text  string
	Label string
	Span  token.Span
}

// From is the data source of a pattern ("from" clause). It is not a
// Condition.
type From struct {
	DataSource string
	Span       token.Span
}

func (*And) condition()            {}
func (*Or) condition()             {}
func (*Not) condition()            {}
func (*Exists) condition()         {}
func (*Pattern) condition()        {}
func (*ExprConstraint) condition() {}

// GetSpan returns the source span.
func (c *And) GetSpan() token.Span { return c.Span }

// GetSpan returns the source span.
func (c *Or) GetSpan() token.Span { return c.Span }

// GetSpan returns the source span.
func (c *Not) GetSpan() token.Span { return c.Span }

// GetSpan returns the source span.
func (c *Exists) GetSpan() token.Span { return c.Span }

// GetSpan returns the source span.
func (c *Pattern) GetSpan() token.Span { return c.Span }

// GetSpan returns the source span.
func (c *ExprConstraint) GetSpan() token.Span { return c.Span }

// NewPattern creates a pattern with an empty constraint.
func NewPattern(objectType string) *Pattern {
	return &Pattern{ObjectType: objectType, Constraint: &And{}}
}

// AddConstraint appends a constraint to the pattern.
func (p *Pattern) AddConstraint(c *ExprConstraint) {
	if p.Constraint == nil {
		p.Constraint = &And{}
	}
	p.Constraint.Children = append(p.Constraint.Children, c)
}

// Add appends c as a child.
func (a *And) Add(c Condition) {
	a.Children = append(a.Children, c)
}

// AddOrMerge appends c, or, when c is an And, merges its children in
// order. Merging recurses so that no direct child of a is an And.
func (a *And) AddOrMerge(c Condition) {
	if inner, ok := c.(*And); ok {
		for _, child := range inner.Children {
			a.AddOrMerge(child)
		}
		return
	}
	a.Children = append(a.Children, c)
}

// Add appends c as a child.
func (o *Or) Add(c Condition) {
	o.Children = append(o.Children, c)
}

// KindOf returns a short lowercase name for the concrete condition type.
func KindOf(c Condition) string {
	switch c.(type) {
	case *And:
		return "and"
	case *Or:
		return "or"
	case *Not:
		return "not"
	case *Exists:
		return "exists"
	case *Pattern:
		return "pattern"
	case *ExprConstraint:
		return "constraint"
	}
	return "unknown"
}
