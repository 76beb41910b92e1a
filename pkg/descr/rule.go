package descr

import "github.com/leapstack-labs/drl/pkg/token"

// RuleDescr is a rule definition.
type RuleDescr struct {
	Name        string // string delimiters stripped
	ParentName  string // from "extends", "" otherwise
	Attributes  map[string]*AttributeDescr
	Annotations []*AnnotationDescr
	LHS         *And
	Consequence string

	// ConsequenceLocation is the position of the "then" keyword. It anchors
	// diagnostics reported against the consequence text.
	ConsequenceLocation token.Position

	Span token.Span
}

// NewRuleDescr creates a rule with an empty LHS.
func NewRuleDescr(name string) *RuleDescr {
	return &RuleDescr{
		Name:       name,
		Attributes: make(map[string]*AttributeDescr),
		LHS:        &And{},
	}
}

// Attribute returns the rule attribute with the given name, or nil.
func (r *RuleDescr) Attribute(name string) *AttributeDescr {
	return r.Attributes[name]
}

// AddAttribute sets a rule attribute; a later one with the same name wins.
func (r *RuleDescr) AddAttribute(a *AttributeDescr) {
	if r.Attributes == nil {
		r.Attributes = make(map[string]*AttributeDescr)
	}
	r.Attributes[a.Name] = a
}

// AttributeNames returns the rule attribute names in sorted order.
func (r *RuleDescr) AttributeNames() []string {
	return sortedKeys(r.Attributes)
}

// Annotation returns the first annotation with the given name, or nil.
func (r *RuleDescr) Annotation(name string) *AnnotationDescr {
	for _, a := range r.Annotations {
		if a.Name == name {
			return a
		}
	}
	return nil
}
