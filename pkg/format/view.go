package format

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/drl/pkg/descr"
	"github.com/leapstack-labs/drl/pkg/token"
)

// PackageView is the serialisable form of a package descriptor. Conditions
// carry a "kind" discriminator so that the closed condition type survives a
// round trip through JSON or YAML.
type PackageView struct {
	Name            string            `json:"name" yaml:"name"`
	Unit            string            `json:"unit,omitempty" yaml:"unit,omitempty"`
	Imports         []string          `json:"imports,omitempty" yaml:"imports,omitempty"`
	FunctionImports []string          `json:"function_imports,omitempty" yaml:"function_imports,omitempty"`
	Globals         []GlobalView      `json:"globals,omitempty" yaml:"globals,omitempty"`
	Attributes      map[string]string `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	Functions       []FunctionView    `json:"functions,omitempty" yaml:"functions,omitempty"`
	Rules           []RuleView        `json:"rules,omitempty" yaml:"rules,omitempty"`
}

// GlobalView is a global declaration.
type GlobalView struct {
	Identifier string     `json:"identifier" yaml:"identifier"`
	Type       string     `json:"type" yaml:"type"`
	Range      *RangeView `json:"range,omitempty" yaml:"range,omitempty"`
}

// FunctionView is a function declaration without its body.
type FunctionView struct {
	Name       string     `json:"name" yaml:"name"`
	ReturnType string     `json:"return_type" yaml:"return_type"`
	Parameters []string   `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	Dialect    string     `json:"dialect,omitempty" yaml:"dialect,omitempty"`
	Range      *RangeView `json:"range,omitempty" yaml:"range,omitempty"`
}

// RuleView is a rule.
type RuleView struct {
	Name        string            `json:"name" yaml:"name"`
	Extends     string            `json:"extends,omitempty" yaml:"extends,omitempty"`
	Attributes  map[string]string `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	Annotations map[string]string `json:"annotations,omitempty" yaml:"annotations,omitempty"`
	When        *ConditionView    `json:"when" yaml:"when"`
	Then        string            `json:"then,omitempty" yaml:"then,omitempty"`
	ThenLine    int               `json:"then_line,omitempty" yaml:"then_line,omitempty"`
	Range       *RangeView        `json:"range,omitempty" yaml:"range,omitempty"`
}

// ConditionView is any condition element.
type ConditionView struct {
	Kind       string           `json:"kind" yaml:"kind"`
	ObjectType string           `json:"type,omitempty" yaml:"type,omitempty"`
	Binding    string           `json:"binding,omitempty" yaml:"binding,omitempty"`
	From       string           `json:"from,omitempty" yaml:"from,omitempty"`
	Text       string           `json:"text,omitempty" yaml:"text,omitempty"`
	Label      string           `json:"label,omitempty" yaml:"label,omitempty"`
	Children   []*ConditionView `json:"children,omitempty" yaml:"children,omitempty"`
}

// RangeView is a line/column range, 1-based.
type RangeView struct {
	StartLine   int `json:"start_line" yaml:"start_line"`
	StartColumn int `json:"start_column" yaml:"start_column"`
	EndLine     int `json:"end_line" yaml:"end_line"`
	EndColumn   int `json:"end_column" yaml:"end_column"`
}

// NewView converts pkg into its serialisable view.
func NewView(pkg *descr.PackageDescr) *PackageView {
	v := &PackageView{Name: pkg.Name}
	if pkg.Unit != nil {
		v.Unit = pkg.Unit.Target
	}
	for _, imp := range pkg.Imports {
		v.Imports = append(v.Imports, imp.Target)
	}
	for _, imp := range pkg.FunctionImports {
		v.FunctionImports = append(v.FunctionImports, imp.Target)
	}
	for _, g := range pkg.Globals {
		v.Globals = append(v.Globals, GlobalView{Identifier: g.Identifier, Type: g.Type, Range: rangeOf(g.Span)})
	}
	v.Attributes = attributeMap(pkg.Attributes)
	for _, fn := range pkg.Functions {
		fv := FunctionView{Name: fn.Name, ReturnType: fn.ReturnType, Dialect: fn.Dialect, Range: rangeOf(fn.Span)}
		for _, param := range fn.Parameters {
			fv.Parameters = append(fv.Parameters, param.Type+" "+param.Name)
		}
		v.Functions = append(v.Functions, fv)
	}
	for _, r := range pkg.Rules {
		rv := RuleView{
			Name:       r.Name,
			Extends:    r.ParentName,
			Attributes: attributeMap(r.Attributes),
			When:       conditionView(r.LHS),
			Then:       r.Consequence,
			ThenLine:   r.ConsequenceLocation.Line,
			Range:      rangeOf(r.Span),
		}
		if len(r.Annotations) > 0 {
			rv.Annotations = make(map[string]string, len(r.Annotations))
			for _, a := range r.Annotations {
				rv.Annotations[a.Name] = a.Value
			}
		}
		v.Rules = append(v.Rules, rv)
	}
	return v
}

func conditionView(c descr.Condition) *ConditionView {
	if c == nil {
		return nil
	}
	v := &ConditionView{Kind: descr.KindOf(c)}
	switch n := c.(type) {
	case *descr.And:
		v.Children = conditionViews(n.Children)
	case *descr.Or:
		v.Children = conditionViews(n.Children)
	case *descr.Not:
		v.Children = conditionViews([]descr.Condition{n.Child})
	case *descr.Exists:
		v.Children = conditionViews([]descr.Condition{n.Child})
	case *descr.Pattern:
		v.ObjectType = n.ObjectType
		v.Binding = n.Identifier
		if n.Source != nil {
			v.From = n.Source.DataSource
		}
		if n.Constraint != nil {
			v.Children = conditionViews(n.Constraint.Children)
		}
	case *descr.ExprConstraint:
		v.Text = n.Text
		v.Label = n.Label
	}
	return v
}

func conditionViews(cs []descr.Condition) []*ConditionView {
	if len(cs) == 0 {
		return nil
	}
	out := make([]*ConditionView, 0, len(cs))
	for _, c := range cs {
		out = append(out, conditionView(c))
	}
	return out
}

func attributeMap(attrs map[string]*descr.AttributeDescr) map[string]string {
	if len(attrs) == 0 {
		return nil
	}
	out := make(map[string]string, len(attrs))
	for name, a := range attrs {
		out[name] = a.Value
	}
	return out
}

func rangeOf(s token.Span) *RangeView {
	if !s.IsValid() {
		return nil
	}
	return &RangeView{
		StartLine:   s.Start.Line,
		StartColumn: s.Start.Column,
		EndLine:     s.End.Line,
		EndColumn:   s.End.Column,
	}
}

// JSON renders the view of pkg as indented JSON.
func JSON(pkg *descr.PackageDescr) ([]byte, error) {
	data, err := json.MarshalIndent(NewView(pkg), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal package: %w", err)
	}
	return append(data, '\n'), nil
}

// YAML renders the view of pkg as YAML.
func YAML(pkg *descr.PackageDescr) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(NewView(pkg)); err != nil {
		return nil, fmt.Errorf("failed to marshal package: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to marshal package: %w", err)
	}
	return buf.Bytes(), nil
}
