package cst

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/drl/pkg/token"
)

func tok(t token.TokenType, lit string, offset int) token.Token {
	return token.Token{Type: t, Literal: lit, Pos: token.Position{Line: 1, Column: offset + 1, Offset: offset}}
}

func TestNewNodeSpan(t *testing.T) {
	// "import a.B;"
	n := NewNode(KindImportDef,
		NewTerminal(tok(token.IMPORT, "import", 0)),
		NewNode(KindQualifiedName,
			NewTerminal(tok(token.IDENT, "a", 7)),
			NewTerminal(tok(token.DOT, ".", 8)),
			NewTerminal(tok(token.IDENT, "B", 9)),
		),
		NewTerminal(tok(token.SEMI, ";", 10)),
	)

	assert.Equal(t, 0, n.Span.Start.Offset)
	assert.Equal(t, 11, n.Span.End.Offset)
	assert.Equal(t, "(ImportDef import (QualifiedName a . B) ;)", n.String())
	assert.Len(t, n.Tokens(), 5)
	assert.NotNil(t, n.Terminal(token.SEMI))
	assert.Nil(t, n.Terminal(token.STAR))
	assert.Equal(t, 1, n.Count(token.IMPORT))
	require.NotNil(t, n.First(KindQualifiedName))
	assert.Len(t, n.First(KindQualifiedName).Children, 3)
}

func TestEmptyNodeHasInvalidSpan(t *testing.T) {
	n := NewNode(KindConstraints)
	assert.False(t, n.Span.IsValid())
	n.AddChild(nil)
	assert.Empty(t, n.Children)
}

func TestHasErrors(t *testing.T) {
	clean := NewNode(KindQualifiedName, NewTerminal(tok(token.IDENT, "foo", 0)))
	assert.False(t, clean.HasErrors())

	broken := NewNode(KindQualifiedName,
		NewError("unexpected NUMBER", NewTerminal(tok(token.NUMBER, "12", 0))),
		NewTerminal(tok(token.IDENT, "foo", 3)),
	)
	assert.True(t, broken.HasErrors())
	assert.True(t, broken.Child(0).IsError())
	assert.Nil(t, broken.Child(5))
}

func TestWalkSkipsChildren(t *testing.T) {
	root := NewNode(KindCompilationUnit,
		NewNode(KindPackageDef, NewTerminal(tok(token.PACKAGE, "package", 0))),
		NewNode(KindRuleDef, NewTerminal(tok(token.RULE, "rule", 8))),
	)

	var kinds []Kind
	Walk(root, func(n *Node) bool {
		kinds = append(kinds, n.Kind)
		return n.Kind != KindPackageDef
	})
	assert.Equal(t, []Kind{KindCompilationUnit, KindPackageDef, KindRuleDef, KindTerminal}, kinds)
}

func TestTreeText(t *testing.T) {
	src := "package foo"
	root := NewNode(KindPackageDef,
		NewTerminal(tok(token.PACKAGE, "package", 0)),
		NewTerminal(tok(token.IDENT, "foo", 8)),
	)
	tree := &Tree{Root: root, Source: src}
	assert.Equal(t, "package foo", tree.Text(root))
	assert.Equal(t, "foo", tree.Text(root.Child(1)))
	assert.Equal(t, "PackageDef", KindPackageDef.String())
}
