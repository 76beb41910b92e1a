package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookupIdent(t *testing.T) {
	tests := []struct {
		ident string
		want  TokenType
	}{
		{"rule", RULE},
		{"when", WHEN},
		{"memberOf", MEMBEROF},
		{"no-loop", NO_LOOP},
		{"Rule", IDENT},
		{"$c", IDENT},
		{"Cheese", IDENT},
	}
	for _, tt := range tests {
		t.Run(tt.ident, func(t *testing.T) {
			assert.Equal(t, tt.want, LookupIdent(tt.ident))
		})
	}
}

func TestTokenTypeString(t *testing.T) {
	assert.Equal(t, "rule", RULE.String())
	assert.Equal(t, "agenda-group", AGENDA_GROUP.String())
	assert.Equal(t, "==", EQ.String())
	assert.Equal(t, "TOKEN(9999)", TokenType(9999).String())
}

func TestKeywordClasses(t *testing.T) {
	assert.True(t, IsKeyword(PACKAGE))
	assert.True(t, IsKeyword(DURATION))
	assert.False(t, IsKeyword(IDENT))

	assert.True(t, IsAttribute(SALIENCE))
	assert.False(t, IsAttribute(RULE))

	assert.True(t, IsSoftKeyword(DURATION))
	assert.True(t, IsSoftKeyword(CONTAINS))
	assert.False(t, IsSoftKeyword(THEN))

	assert.True(t, IsHyphenatedKeyword("lock-on-active"))
	assert.False(t, IsHyphenatedKeyword("a-b"))
}

func TestTokenSpan(t *testing.T) {
	tok := Token{Type: IDENT, Literal: "Cheese", Pos: Position{Line: 2, Column: 5, Offset: 14}}
	span := tok.Span()
	assert.Equal(t, 20, span.End.Offset)
	assert.Equal(t, 11, span.End.Column)
	assert.Equal(t, 6, span.Len())
}

func TestSpanText(t *testing.T) {
	src := "import a.B;"
	s := Span{Start: Position{Line: 1, Column: 1, Offset: 0}, End: Position{Line: 1, Column: 11, Offset: 10}}
	assert.Equal(t, "import a.B", s.Text(src))
	assert.Equal(t, "", Span{}.Text(src))
	assert.True(t, s.Contains(0))
	assert.False(t, s.Contains(10))
}

func TestSpanJoin(t *testing.T) {
	a := Span{Start: Position{Line: 1, Column: 1, Offset: 0}, End: Position{Line: 1, Column: 4, Offset: 3}}
	b := Span{Start: Position{Line: 1, Column: 6, Offset: 5}, End: Position{Line: 1, Column: 9, Offset: 8}}
	j := a.Join(b)
	assert.Equal(t, 0, j.Start.Offset)
	assert.Equal(t, 8, j.End.Offset)
	assert.Equal(t, a, a.Join(Span{}))
	assert.Equal(t, b, Span{}.Join(b))
}
