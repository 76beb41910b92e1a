// Package drl parses DRL source into a package descriptor.
//
// It chains the lexer, the error-recovering parser and the descriptor
// builder:
//
//	res := drl.Parse(src)
//	if res.HasErrors() {
//		for _, err := range res.Errors {
//			fmt.Println(err)
//		}
//	}
//	for _, rule := range res.Package.Rules {
//		fmt.Println(rule.Name)
//	}
//
// Syntax errors never prevent a descriptor from being built. Only an
// internal invariant failure leaves Package nil; it is reported in Err.
package drl

import (
	"errors"
	"fmt"
	"os"

	"github.com/leapstack-labs/drl/pkg/builder"
	"github.com/leapstack-labs/drl/pkg/cst"
	"github.com/leapstack-labs/drl/pkg/descr"
	"github.com/leapstack-labs/drl/pkg/parser"
	"github.com/leapstack-labs/drl/pkg/token"
)

// Result is the outcome of parsing one document.
type Result struct {
	Package *descr.PackageDescr // nil only when Err is set
	Tree    *cst.Tree
	Errors  []error // lexer and parser errors, in source order
	Err     error   // *builder.InvariantError
}

// HasErrors reports whether the document had syntax errors or failed to
// build.
func (r *Result) HasErrors() bool {
	return len(r.Errors) > 0 || r.Err != nil
}

// Diagnostic is a syntax error with its position.
type Diagnostic struct {
	Pos     token.Position
	Message string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%d:%d: %s", d.Pos.Line, d.Pos.Column, d.Message)
}

// Diagnostics flattens Errors and Err into positioned messages.
func (r *Result) Diagnostics() []Diagnostic {
	out := make([]Diagnostic, 0, len(r.Errors)+1)
	for _, err := range r.Errors {
		d := Diagnostic{Pos: parser.ErrorPosition(err), Message: err.Error()}
		var pe *parser.ParseError
		var le *parser.LexError
		switch {
		case errors.As(err, &pe):
			d.Message = pe.Message
		case errors.As(err, &le):
			d.Message = le.Message
		}
		out = append(out, d)
	}
	if r.Err != nil {
		d := Diagnostic{Message: r.Err.Error()}
		var ie *builder.InvariantError
		if errors.As(r.Err, &ie) {
			d.Pos = ie.Span.Start
		}
		out = append(out, d)
	}
	return out
}

// Parse lexes, parses and builds src. It never returns nil.
func Parse(src string) *Result {
	tree, errs := parser.Parse(src)
	res := &Result{Tree: tree, Errors: errs}
	pkg, err := builder.Build(tree)
	if err != nil {
		res.Err = err
		return res
	}
	res.Package = pkg
	return res
}

// ParseFile reads and parses the file at path.
func ParseFile(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Parse(string(data)), nil
}
