package index

import (
	"strings"

	"github.com/leapstack-labs/drl/pkg/descr"
	"github.com/leapstack-labs/drl/pkg/token"
)

// SymbolKind is the kind of an indexed declaration.
type SymbolKind string

// Symbol kinds.
const (
	KindRule           SymbolKind = "rule"
	KindFunction       SymbolKind = "function"
	KindGlobal         SymbolKind = "global"
	KindImport         SymbolKind = "import"
	KindFunctionImport SymbolKind = "function_import"
)

// Symbol is one top-level declaration of a rule file.
type Symbol struct {
	Kind    SymbolKind `json:"kind" yaml:"kind"`
	Name    string     `json:"name" yaml:"name"`
	Package string     `json:"package" yaml:"package"`
	// Detail is the parent rule for rules, the type for globals and the
	// signature for functions.
	Detail string     `json:"detail,omitempty" yaml:"detail,omitempty"`
	File   string     `json:"file" yaml:"file"`
	Span   token.Span `json:"-" yaml:"-"`
}

// Line returns the 1-based line the symbol starts on.
func (s Symbol) Line() int {
	return s.Span.Start.Line
}

// Symbols lists the declarations of pkg in source order within each kind:
// rules, functions, globals, imports, function imports.
func Symbols(file string, pkg *descr.PackageDescr) []Symbol {
	if pkg == nil {
		return nil
	}
	sym := func(kind SymbolKind, name, detail string, span token.Span) Symbol {
		return Symbol{Kind: kind, Name: name, Package: pkg.Name, Detail: detail, File: file, Span: span}
	}

	var out []Symbol
	for _, r := range pkg.Rules {
		out = append(out, sym(KindRule, r.Name, r.ParentName, r.Span))
	}
	for _, f := range pkg.Functions {
		out = append(out, sym(KindFunction, f.Name, signature(f), f.Span))
	}
	for _, g := range pkg.Globals {
		out = append(out, sym(KindGlobal, g.Identifier, g.Type, g.Span))
	}
	for _, i := range pkg.Imports {
		out = append(out, sym(KindImport, i.Target, "", i.Span))
	}
	for _, i := range pkg.FunctionImports {
		out = append(out, sym(KindFunctionImport, i.Target, "", i.Span))
	}
	return out
}

func signature(f *descr.FunctionDescr) string {
	params := make([]string, len(f.Parameters))
	for i, p := range f.Parameters {
		params[i] = p.Type + " " + p.Name
	}
	return f.ReturnType + " " + f.Name + "(" + strings.Join(params, ", ") + ")"
}
