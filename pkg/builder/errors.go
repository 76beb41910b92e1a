package builder

import (
	"fmt"

	"github.com/leapstack-labs/drl/pkg/token"
)

// InvariantError reports a CST shape the builder cannot turn into a valid
// descriptor, such as a pattern bind without any pattern. It aborts the
// document being built.
type InvariantError struct {
	Construct string
	Message   string
	Span      token.Span
}

func (e *InvariantError) Error() string {
	if !e.Span.IsValid() {
		return fmt.Sprintf("invalid %s: %s", e.Construct, e.Message)
	}
	return fmt.Sprintf("invalid %s at line %d, column %d: %s",
		e.Construct, e.Span.Start.Line, e.Span.Start.Column, e.Message)
}
