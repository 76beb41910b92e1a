package builder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/drl/pkg/cst"
	"github.com/leapstack-labs/drl/pkg/token"
)

func TestStripDelimiters(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`"abc"`, "abc"},
		{`'abc'`, "abc"},
		{`  "padded"  `, "padded"},
		{`"mixed'`, `"mixed'`},
		{`"`, `"`},
		{`""`, ""},
		{"plain", "plain"},
		{`"a" "b"`, `a" "b`},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, stripDelimiters(tt.in))
		})
	}
}

func TestUnescapeJava(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "no escapes", in: "hello", want: "hello"},
		{name: "control characters", in: `a\tb\nc\rd\be\ff`, want: "a\tb\nc\rd\be\ff"},
		{name: "quotes and backslash", in: `\"x\' \\`, want: `"x' \`},
		{name: "unicode", in: `caf\u00e9`, want: "café"},
		{name: "unicode with extra u", in: `\uuu0041`, want: "A"},
		{name: "bad unicode", in: `\u12`, want: "u12"},
		{name: "octal", in: `\101\7\0`, want: "A\a\x00"},
		{name: "octal stops at three digits", in: `\1012`, want: "A2"},
		{name: "high octal takes two digits", in: `\477`, want: "'7"},
		{name: "unknown escape", in: `\q`, want: "q"},
		{name: "trailing backslash", in: `abc\`, want: `abc\`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, unescapeJava(tt.in))
		})
	}
}

// tok builds a terminal at the given offset on line 1.
func tok(tt token.TokenType, lit string, offset int) *cst.Node {
	return cst.NewTerminal(token.Token{
		Type:    tt,
		Literal: lit,
		Pos:     token.Position{Line: 1, Column: offset + 1, Offset: offset},
	})
}

func TestReconstruct(t *testing.T) {
	tests := []struct {
		name   string
		node   *cst.Node
		want   string
		wantOK bool
	}{
		{
			name:   "nil",
			node:   nil,
			wantOK: false,
		},
		{
			name:   "single literal",
			node:   cst.NewNode(cst.KindExpression, cst.NewNode(cst.KindLiteral, tok(token.STRING, `'x'`, 0))),
			want:   `'x'`,
			wantOK: true,
		},
		{
			name: "adjacent and spaced tokens",
			// a.b(1)  ==   c
			node: cst.NewNode(cst.KindExpression,
				tok(token.IDENT, "a", 0), tok(token.DOT, ".", 1), tok(token.IDENT, "b", 2),
				tok(token.LPAREN, "(", 3), tok(token.NUMBER, "1", 4), tok(token.RPAREN, ")", 5),
				tok(token.EQ, "==", 8), tok(token.IDENT, "c", 14)),
			want:   "a.b(1) == c",
			wantOK: true,
		},
		{
			name: "error subtree skipped",
			node: cst.NewNode(cst.KindExpression,
				tok(token.IDENT, "x", 0),
				cst.NewError("junk", tok(token.HASH, "#", 2)),
				tok(token.GT, ">", 4), tok(token.NUMBER, "1", 6)),
			want:   "x > 1",
			wantOK: true,
		},
		{
			name:   "only errors",
			node:   cst.NewNode(cst.KindExpression, cst.NewError("junk", tok(token.HASH, "#", 0))),
			wantOK: false,
		},
		{
			name:   "error node itself",
			node:   cst.NewError("junk", tok(token.IDENT, "x", 0)),
			wantOK: false,
		},
		{
			name:   "empty node",
			node:   cst.NewNode(cst.KindConstraints),
			wantOK: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := reconstruct(tt.node)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReconstruct_StableUnderWhitespace(t *testing.T) {
	a := cst.NewNode(cst.KindExpression, tok(token.IDENT, "x", 0), tok(token.GT, ">", 2), tok(token.NUMBER, "1", 4))
	b := cst.NewNode(cst.KindExpression, tok(token.IDENT, "x", 0), tok(token.GT, ">", 5), tok(token.NUMBER, "1", 10))

	ta, _ := reconstruct(a)
	tb, _ := reconstruct(b)
	assert.Equal(t, ta, tb)
}

func TestSignificantSpan(t *testing.T) {
	n := cst.NewNode(cst.KindImportDef,
		tok(token.IMPORT, "import", 0), tok(token.IDENT, "a", 7), tok(token.SEMI, ";", 8), tok(token.SEMI, ";", 9))
	span := significantSpan(n)
	require.True(t, span.IsValid())
	assert.Equal(t, 0, span.Start.Offset)
	assert.Equal(t, 8, span.End.Offset)

	assert.False(t, significantSpan(cst.NewNode(cst.KindImportDef, tok(token.SEMI, ";", 0))).IsValid())
}

func TestFirstIdent(t *testing.T) {
	n := cst.NewNode(cst.KindGlobalDef,
		tok(token.GLOBAL, "global", 0),
		cst.NewNode(cst.KindType, tok(token.IDENT, "String", 7)),
		tok(token.IDENT, "name", 14))
	assert.Equal(t, "name", firstIdent(n))
	assert.Equal(t, "", firstIdent(nil))
	assert.Equal(t, "", firstIdent(cst.NewNode(cst.KindGlobalDef, tok(token.GLOBAL, "global", 0))))
}
