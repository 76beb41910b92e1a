// Package descr provides the descriptor tree built from a DRL document.
//
// Descriptors are the semantic view of a DRL source: grammar artefacts such
// as separators, optional keywords and alternative spellings are gone, and
// what remains is the package, its declarations and its rules. Every
// descriptor carries the source span it was built from.
//
// # Core Types
//
// PackageDescr: Root descriptor holding the package name, unit, imports,
// function imports, globals, functions, package attributes and rules
//
// RuleDescr: A rule with attributes, annotations, a condition tree (LHS) and
// an opaque consequence (RHS)
//
// Condition: Closed sum type for the condition tree, implemented by And, Or,
// Not, Exists, Pattern and ExprConstraint
//
// # Invariants
//
// A rule's LHS is always an And and none of its direct children is an And.
// Not and Exists wrap exactly one child. A Pattern's Constraint is never nil
// and only holds ExprConstraint children.
//
// # Basic Usage
//
//	pkg, err := builder.Build(tree)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, rule := range pkg.Rules {
//	    fmt.Println("Rule:", rule.Name)
//	    descr.Walk(rule.LHS, func(c descr.Condition) bool {
//	        if p, ok := c.(*descr.Pattern); ok {
//	            fmt.Println("  matches", p.ObjectType)
//	        }
//	        return true
//	    })
//	}
//
// # Spans
//
// Spans are half-open: Start is the first character of the construct and End
// is one past its last significant character. A trailing ';' is not
// significant, so for "import a.B;" the span covers "import a.B".
//
// # Thread Safety
//
// Descriptors are built by a single builder and are not mutated after Build
// returns. They can then be shared between goroutines for reading.
package descr
