package descr

import (
	"sort"

	"github.com/leapstack-labs/drl/pkg/token"
)

// PackageDescr is the root descriptor of a DRL document.
type PackageDescr struct {
	Name            string // dotted, "" when absent or unrecoverable
	Unit            *UnitDescr
	Imports         []*ImportDescr
	FunctionImports []*FunctionImportDescr
	Globals         []*GlobalDescr
	Functions       []*FunctionDescr
	Rules           []*RuleDescr
	Attributes      map[string]*AttributeDescr
}

// NewPackageDescr creates an empty package descriptor.
func NewPackageDescr() *PackageDescr {
	return &PackageDescr{Attributes: make(map[string]*AttributeDescr)}
}

// Namespace returns the namespace functions are declared in, which is the
// package name.
func (p *PackageDescr) Namespace() string {
	return p.Name
}

// Attribute returns the package attribute with the given name, or nil.
func (p *PackageDescr) Attribute(name string) *AttributeDescr {
	return p.Attributes[name]
}

// AddAttribute sets a package attribute. A later attribute with the same
// name replaces the earlier one.
func (p *PackageDescr) AddAttribute(a *AttributeDescr) {
	if p.Attributes == nil {
		p.Attributes = make(map[string]*AttributeDescr)
	}
	p.Attributes[a.Name] = a
}

// AttributeNames returns the package attribute names in sorted order.
func (p *PackageDescr) AttributeNames() []string {
	return sortedKeys(p.Attributes)
}

// Rule returns the first rule with the given name, or nil.
func (p *PackageDescr) Rule(name string) *RuleDescr {
	for _, r := range p.Rules {
		if r.Name == name {
			return r
		}
	}
	return nil
}

// UnitDescr is a "unit" declaration.
type UnitDescr struct {
	Target string
	Span   token.Span
}

// ImportDescr is a type import. Target ends in ".*" for wildcard imports.
type ImportDescr struct {
	Target string
	Span   token.Span
}

// FunctionImportDescr is an "import function" or "import static".
type FunctionImportDescr struct {
	Target string
	Span   token.Span
}

// GlobalDescr is a "global" declaration. Type keeps the source spelling,
// generics included.
type GlobalDescr struct {
	Identifier string
	Type       string
	Span       token.Span
}

// Parameter is a function parameter.
type Parameter struct {
	Type string
	Name string
}

// FunctionDescr is a "function" declaration.
type FunctionDescr struct {
	Name       string
	ReturnType string // "void" when omitted
	Parameters []Parameter
	Body       string // source of the block, braces and whitespace included
	Namespace  string
	Dialect    string
	Span       token.Span
}

// AttributeDescr is a rule or package attribute such as salience or
// agenda-group. Value is "" for attributes written without one.
type AttributeDescr struct {
	Name  string
	Value string
	Span  token.Span
}

// AnnotationDescr is a rule annotation. Value is the text of the first
// argument, "" without arguments.
type AnnotationDescr struct {
	Name  string
	Value string
	Span  token.Span
}

func sortedKeys(m map[string]*AttributeDescr) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
