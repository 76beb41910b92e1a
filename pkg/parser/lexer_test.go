package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/drl/pkg/token"
)

func TestLexer_Tokens(t *testing.T) {
	tests := []struct {
		name  string
		input string
		types []token.TokenType
		lits  []string
	}{
		{
			name:  "rule header",
			input: `rule "a" no-loop true salience -10`,
			types: []token.TokenType{token.RULE, token.STRING, token.NO_LOOP, token.TRUE, token.SALIENCE, token.MINUS, token.NUMBER, token.EOF},
			lits:  []string{"rule", `"a"`, "no-loop", "true", "salience", "-", "10", ""},
		},
		{
			name:  "binding and constraint",
			input: `$c : Cheese( type == 'x', price >= 10L )`,
			types: []token.TokenType{token.IDENT, token.COLON, token.IDENT, token.LPAREN, token.IDENT, token.EQ, token.STRING, token.COMMA, token.IDENT, token.GE, token.NUMBER, token.RPAREN, token.EOF},
			lits:  []string{"$c", ":", "Cheese", "(", "type", "==", "'x'", ",", "price", ">=", "10L", ")", ""},
		},
		{
			name:  "nested generics close with single tokens",
			input: `List<Map<String,Integer>>`,
			types: []token.TokenType{token.IDENT, token.LT, token.IDENT, token.LT, token.IDENT, token.COMMA, token.IDENT, token.GT, token.GT, token.EOF},
		},
		{
			name:  "dashed words that are not keywords",
			input: `a-b agenda-groupx`,
			types: []token.TokenType{token.IDENT, token.MINUS, token.IDENT, token.IDENT, token.MINUS, token.IDENT, token.EOF},
			lits:  []string{"a", "-", "b", "agenda", "-", "groupx", ""},
		},
		{
			name:  "operators",
			input: `&& || != ! = @ # ? ;`,
			types: []token.TokenType{token.ANDAND, token.OROR, token.NE, token.BANG, token.ASSIGN, token.AT, token.HASH, token.QUESTION, token.SEMI, token.EOF},
		},
		{
			name:  "escaped string stays raw",
			input: `"\..*\\."`,
			types: []token.TokenType{token.STRING, token.EOF},
			lits:  []string{`"\..*\\."`, ""},
		},
		{
			name:  "comments are skipped",
			input: "// line\nrule /* block */ end",
			types: []token.TokenType{token.RULE, token.END, token.EOF},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks := Tokenize(tt.input)
			require.Len(t, toks, len(tt.types))
			for i, tok := range toks {
				assert.Equal(t, tt.types[i], tok.Type, "token %d", i)
				if tt.lits != nil {
					assert.Equal(t, tt.lits[i], tok.Literal, "token %d", i)
				}
			}
		})
	}
}

func TestLexer_Positions(t *testing.T) {
	toks := Tokenize("package foo\n  import a.B")
	require.Len(t, toks, 7)

	assert.Equal(t, token.Position{Line: 1, Column: 1, Offset: 0}, toks[0].Pos)
	assert.Equal(t, token.Position{Line: 1, Column: 9, Offset: 8}, toks[1].Pos)
	assert.Equal(t, token.Position{Line: 2, Column: 3, Offset: 14}, toks[2].Pos)
	assert.Equal(t, 24, toks[5].End().Offset)
}

func TestLexer_Comments(t *testing.T) {
	l := NewLexer("// one\nrule /* two */ end")
	for l.NextToken().Type != token.EOF {
	}
	require.Len(t, l.Comments, 2)
	assert.Equal(t, token.LineComment, l.Comments[0].Kind)
	assert.Equal(t, "// one", l.Comments[0].Text)
	assert.Equal(t, token.BlockComment, l.Comments[1].Kind)
	assert.Equal(t, "/* two */", l.Comments[1].Text)
}

func TestLexer_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		msg   string
	}{
		{"unterminated string", "\"abc\nrule", ErrUnterminatedString},
		{"unterminated comment", "/* abc", ErrUnterminatedComment},
		{"illegal character", "rule `x`", `illegal character "` + "`" + `"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLexer(tt.input)
			for l.NextToken().Type != token.EOF {
			}
			require.NotEmpty(t, l.Errors)
			var lexErr *LexError
			require.ErrorAs(t, l.Errors[0], &lexErr)
			assert.Equal(t, tt.msg, lexErr.Message)
		})
	}
}
