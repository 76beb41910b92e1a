package lsp

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/drl/internal/testutil"
)

const hoverSrc = `package org.shop

// Doubles a value.
function int twice(int x) {
    return x * 2;
}

global java.util.List names;

/**
 * Gives a discount.
 */
rule "Discount" extends "Base"
    salience 10
when
    $o : Order( total > 100 ) from orders
then
end
`

func hoverAt(uri string, line, char uint32) HoverParams {
	return HoverParams{TextDocumentPositionParams{
		TextDocument: TextDocumentIdentifier{URI: uri},
		Position:     Position{Line: line, Character: char},
	}}
}

func TestGetHover(t *testing.T) {
	uri := "file:///rules/shop.drl"
	s := NewServerWithLogger(strings.NewReader(""), io.Discard, testutil.NewTestLogger(t))
	s.documents.Open(uri, hoverSrc, 1)

	tests := []struct {
		name string
		line uint32
		char uint32
		want []string
	}{
		{
			name: "function",
			line: 3, char: 14,
			want: []string{"**function** `int twice(int x)`", "\n\nDoubles a value."},
		},
		{
			name: "global",
			line: 7, char: 10,
			want: []string{"**global** `java.util.List names`"},
		},
		{
			name: "rule",
			line: 12, char: 2,
			want: []string{
				"**rule** `Discount` extends `Base`",
				"- salience: `10`",
				"1 pattern(s), bindings: `$o`",
				"\n\nGives a discount.",
			},
		},
		{
			name: "pattern",
			line: 15, char: 10,
			want: []string{"**pattern** `Order` bound to `$o`", "- `total > 100`", "from `orders`"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hover := s.getHover(hoverAt(uri, tt.line, tt.char))
			require.NotNil(t, hover)
			assert.Equal(t, MarkupKindMarkdown, hover.Contents.Kind)
			require.NotNil(t, hover.Range)
			for _, want := range tt.want {
				assert.Contains(t, hover.Contents.Value, want)
			}
		})
	}

	t.Run("outside any declaration", func(t *testing.T) {
		assert.Nil(t, s.getHover(hoverAt(uri, 1, 0)))
	})

	t.Run("unknown document", func(t *testing.T) {
		assert.Nil(t, s.getHover(hoverAt("file:///nope.drl", 0, 0)))
	})
}
