// Package cst defines the concrete syntax tree produced by the DRL parser.
//
// The tree keeps every token, including separators and the tokens skipped
// during error recovery (wrapped in KindError nodes), so that builders can
// recover exact source spans and text.
package cst

import (
	"strings"

	"github.com/leapstack-labs/drl/pkg/token"
)

// Node is a CST node. A node is a terminal (Token set, no children), an
// error node (Err set) or a non-terminal of some grammar production.
type Node struct {
	Kind     Kind
	Children []*Node
	Token    *token.Token // terminals only
	Span     token.Span
	Err      string // error nodes only
}

// NewTerminal creates a terminal node for tok.
func NewTerminal(tok token.Token) *Node {
	t := tok
	return &Node{Kind: KindTerminal, Token: &t, Span: t.Span()}
}

// NewNode creates a non-terminal node and attaches children.
func NewNode(kind Kind, children ...*Node) *Node {
	n := &Node{Kind: kind}
	for _, c := range children {
		n.AddChild(c)
	}
	return n
}

// NewError creates an error node wrapping the skipped children.
func NewError(msg string, children ...*Node) *Node {
	n := NewNode(KindError, children...)
	n.Err = msg
	return n
}

// AddChild appends c and widens the span of n to cover it. Nil children are
// ignored.
func (n *Node) AddChild(c *Node) {
	if c == nil {
		return
	}
	n.Children = append(n.Children, c)
	n.Span = n.Span.Join(c.Span)
}

// IsTerminal reports whether n wraps a single token.
func (n *Node) IsTerminal() bool { return n.Kind == KindTerminal }

// IsError reports whether n is an error-recovery node.
func (n *Node) IsError() bool { return n.Kind == KindError }

// Is reports whether n is a terminal of type t.
func (n *Node) Is(t token.TokenType) bool {
	return n != nil && n.Kind == KindTerminal && n.Token.Type == t
}

// Child returns the i-th child or nil.
func (n *Node) Child(i int) *Node {
	if n == nil || i < 0 || i >= len(n.Children) {
		return nil
	}
	return n.Children[i]
}

// First returns the first direct child of the given kind, or nil.
func (n *Node) First(kind Kind) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if c.Kind == kind {
			return c
		}
	}
	return nil
}

// All returns the direct children of the given kind.
func (n *Node) All(kind Kind) []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	for _, c := range n.Children {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}

// Terminal returns the first direct terminal child of type t, or nil.
func (n *Node) Terminal(t token.TokenType) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if c.Is(t) {
			return c
		}
	}
	return nil
}

// Count returns the number of direct terminal children of type t.
func (n *Node) Count(t token.TokenType) int {
	if n == nil {
		return 0
	}
	count := 0
	for _, c := range n.Children {
		if c.Is(t) {
			count++
		}
	}
	return count
}

// Tokens returns every token under n in source order, including tokens
// inside error nodes.
func (n *Node) Tokens() []*token.Token {
	var out []*token.Token
	Walk(n, func(c *Node) bool {
		if c.IsTerminal() {
			out = append(out, c.Token)
		}
		return true
	})
	return out
}

// HasErrors reports whether n or any descendant is an error node.
func (n *Node) HasErrors() bool {
	found := false
	Walk(n, func(c *Node) bool {
		if c.IsError() {
			found = true
		}
		return !found
	})
	return found
}

// Walk visits n and its descendants depth-first in source order. Returning
// false from fn skips the children of that node.
func Walk(n *Node, fn func(*Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		Walk(c, fn)
	}
}

// String renders n as an s-expression, mostly for tests and debugging.
func (n *Node) String() string {
	var sb strings.Builder
	n.write(&sb)
	return sb.String()
}

func (n *Node) write(sb *strings.Builder) {
	if n == nil {
		sb.WriteString("<nil>")
		return
	}
	if n.IsTerminal() {
		sb.WriteString(n.Token.Literal)
		return
	}
	sb.WriteByte('(')
	sb.WriteString(n.Kind.String())
	for _, c := range n.Children {
		sb.WriteByte(' ')
		c.write(sb)
	}
	sb.WriteByte(')')
}

// Tree is a parsed DRL document.
type Tree struct {
	Root     *Node // KindCompilationUnit
	Tokens   []token.Token
	Comments []*token.Comment
	Source   string
}

// Text returns the source text covered by n.
func (t *Tree) Text(n *Node) string {
	if t == nil || n == nil {
		return ""
	}
	return n.Span.Text(t.Source)
}
