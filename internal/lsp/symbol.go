package lsp

import (
	"sort"

	"github.com/leapstack-labs/drl/internal/index"
	"github.com/leapstack-labs/drl/pkg/descr"
	"github.com/leapstack-labs/drl/pkg/token"
)

// symbolKinds maps index symbol kinds to LSP symbol kinds.
var symbolKinds = map[index.SymbolKind]SymbolKind{
	index.KindRule:           SymbolKindEvent,
	index.KindFunction:       SymbolKindFunction,
	index.KindGlobal:         SymbolKindVariable,
	index.KindImport:         SymbolKindModule,
	index.KindFunctionImport: SymbolKindFunction,
}

// documentSymbols returns the outline of a package in source order. Rules
// carry their patterns as children.
func documentSymbols(pkg *descr.PackageDescr) []DocumentSymbol {
	if pkg == nil {
		return []DocumentSymbol{}
	}

	type entry struct {
		offset int
		sym    DocumentSymbol
	}
	var entries []entry
	add := func(span token.Span, sym DocumentSymbol) {
		sym.Range = spanRange(span)
		sym.SelectionRange = sym.Range
		entries = append(entries, entry{offset: span.Start.Offset, sym: sym})
	}

	if pkg.Unit != nil {
		add(pkg.Unit.Span, DocumentSymbol{Name: pkg.Unit.Target, Detail: "unit", Kind: SymbolKindNamespace})
	}
	// Index symbols cover imports, globals and functions; rules get their
	// patterns attached below.
	for _, sym := range index.Symbols("", pkg) {
		if sym.Kind == index.KindRule {
			continue
		}
		add(sym.Span, DocumentSymbol{Name: sym.Name, Detail: sym.Detail, Kind: symbolKinds[sym.Kind]})
	}
	for _, rule := range pkg.Rules {
		add(rule.Span, DocumentSymbol{
			Name:     rule.Name,
			Detail:   ruleDetail(rule),
			Kind:     SymbolKindEvent,
			Children: patternSymbols(rule),
		})
	}

	sort.SliceStable(entries, func(i, j int) bool { return entries[i].offset < entries[j].offset })
	out := make([]DocumentSymbol, len(entries))
	for i, e := range entries {
		out[i] = e.sym
	}
	return out
}

func ruleDetail(rule *descr.RuleDescr) string {
	if rule.ParentName != "" {
		return "extends " + rule.ParentName
	}
	return ""
}

func patternSymbols(rule *descr.RuleDescr) []DocumentSymbol {
	var out []DocumentSymbol
	for _, p := range descr.Patterns(rule.LHS) {
		r := spanRange(p.Span)
		out = append(out, DocumentSymbol{
			Name:           p.ObjectType,
			Detail:         p.Identifier,
			Kind:           SymbolKindStruct,
			Range:          r,
			SelectionRange: r,
		})
	}
	return out
}

// workspaceSymbols converts index hits to symbol information.
func workspaceSymbols(symbols []index.Symbol) []SymbolInformation {
	out := make([]SymbolInformation, 0, len(symbols))
	for _, sym := range symbols {
		out = append(out, SymbolInformation{
			Name: sym.Name,
			Kind: symbolKinds[sym.Kind],
			Location: Location{
				URI:   PathToURI(sym.File),
				Range: spanRange(sym.Span),
			},
			ContainerName: sym.Package,
		})
	}
	return out
}
