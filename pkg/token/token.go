// Package token defines the lexical tokens of the DRL rule language.
//
// Keyword lookup is case-sensitive, as in DRL. Attribute keywords such as
// salience or agenda-group are soft: the parser also accepts them where an
// identifier is expected.
package token

import "fmt"

// TokenType represents the type of a lexical token.
//
//nolint:revive // Accept stutter as token.TokenType is clear and widely used
type TokenType int32

const (
	// Special tokens
	EOF TokenType = iota
	ILLEGAL

	// Literals
	IDENT  // identifier, $binding
	NUMBER // 123, 45.67, 10L, 0x1F
	STRING // "hello" or 'hello', raw with quotes

	// Operators and punctuation
	PLUS     // +
	MINUS    // -
	STAR     // *
	SLASH    // /
	PERCENT  // %
	ASSIGN   // =
	EQ       // ==
	NE       // !=
	LT       // <
	GT       // >
	LE       // <=
	GE       // >=
	ANDAND   // &&
	OROR     // ||
	BANG     // !
	AMP      // &
	PIPE     // |
	CARET    // ^
	TILDE    // ~
	QUESTION // ?
	HASH     // #
	AT       // @
	DOT      // .
	COMMA    // ,
	COLON    // :
	SEMI     // ;
	LPAREN   // (
	RPAREN   // )
	LBRACKET // [
	RBRACKET // ]
	LBRACE   // {
	RBRACE   // }

	// Structural keywords
	PACKAGE
	UNIT
	IMPORT
	FUNCTION
	STATIC
	GLOBAL
	RULE
	QUERY
	DECLARE
	EXTENDS
	WHEN
	THEN
	END

	// Condition keywords
	AND
	OR
	NOT
	EXISTS
	FROM
	EVAL
	FORALL
	ACCUMULATE
	COLLECT

	// Expression keywords
	IN
	MATCHES
	CONTAINS
	MEMBEROF
	SOUNDSLIKE
	INSTANCEOF
	NEW
	TRUE
	FALSE
	NULL

	// Rule attributes
	SALIENCE
	ENABLED
	NO_LOOP
	AUTO_FOCUS
	LOCK_ON_ACTIVE
	REFRACT
	DIRECT
	AGENDA_GROUP
	ACTIVATION_GROUP
	RULEFLOW_GROUP
	DATE_EFFECTIVE
	DATE_EXPIRES
	DIALECT
	CALENDARS
	TIMER
	DURATION
)

// String returns a human-readable representation of the token type.
func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TOKEN(%d)", t)
}

var tokenNames = map[TokenType]string{
	EOF:     "EOF",
	ILLEGAL: "ILLEGAL",
	IDENT:   "IDENT",
	NUMBER:  "NUMBER",
	STRING:  "STRING",

	PLUS:     "+",
	MINUS:    "-",
	STAR:     "*",
	SLASH:    "/",
	PERCENT:  "%",
	ASSIGN:   "=",
	EQ:       "==",
	NE:       "!=",
	LT:       "<",
	GT:       ">",
	LE:       "<=",
	GE:       ">=",
	ANDAND:   "&&",
	OROR:     "||",
	BANG:     "!",
	AMP:      "&",
	PIPE:     "|",
	CARET:    "^",
	TILDE:    "~",
	QUESTION: "?",
	HASH:     "#",
	AT:       "@",
	DOT:      ".",
	COMMA:    ",",
	COLON:    ":",
	SEMI:     ";",
	LPAREN:   "(",
	RPAREN:   ")",
	LBRACKET: "[",
	RBRACKET: "]",
	LBRACE:   "{",
	RBRACE:   "}",
}

// keywords maps keyword spellings to their token types.
var keywords = map[string]TokenType{
	"package":  PACKAGE,
	"unit":     UNIT,
	"import":   IMPORT,
	"function": FUNCTION,
	"static":   STATIC,
	"global":   GLOBAL,
	"rule":     RULE,
	"query":    QUERY,
	"declare":  DECLARE,
	"extends":  EXTENDS,
	"when":     WHEN,
	"then":     THEN,
	"end":      END,

	"and":        AND,
	"or":         OR,
	"not":        NOT,
	"exists":     EXISTS,
	"from":       FROM,
	"eval":       EVAL,
	"forall":     FORALL,
	"accumulate": ACCUMULATE,
	"collect":    COLLECT,

	"in":         IN,
	"matches":    MATCHES,
	"contains":   CONTAINS,
	"memberOf":   MEMBEROF,
	"soundslike": SOUNDSLIKE,
	"instanceof": INSTANCEOF,
	"new":        NEW,
	"true":       TRUE,
	"false":      FALSE,
	"null":       NULL,

	"salience":         SALIENCE,
	"enabled":          ENABLED,
	"no-loop":          NO_LOOP,
	"auto-focus":       AUTO_FOCUS,
	"lock-on-active":   LOCK_ON_ACTIVE,
	"refract":          REFRACT,
	"direct":           DIRECT,
	"agenda-group":     AGENDA_GROUP,
	"activation-group": ACTIVATION_GROUP,
	"ruleflow-group":   RULEFLOW_GROUP,
	"date-effective":   DATE_EFFECTIVE,
	"date-expires":     DATE_EXPIRES,
	"dialect":          DIALECT,
	"calendars":        CALENDARS,
	"timer":            TIMER,
	"duration":         DURATION,
}

func init() {
	for word, t := range keywords {
		tokenNames[t] = word
	}
}

// hyphenated lists the attribute keywords spelled with dashes. The lexer
// only joins dashed words when the result is one of these.
var hyphenated = map[string]bool{
	"no-loop":          true,
	"auto-focus":       true,
	"lock-on-active":   true,
	"agenda-group":     true,
	"activation-group": true,
	"ruleflow-group":   true,
	"date-effective":   true,
	"date-expires":     true,
}

// LookupIdent returns the keyword token type for ident, or IDENT.
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// IsHyphenatedKeyword reports whether word is a dashed attribute keyword.
func IsHyphenatedKeyword(word string) bool {
	return hyphenated[word]
}

// IsKeyword returns true if the token type is a keyword.
func IsKeyword(t TokenType) bool {
	return t >= PACKAGE && t <= DURATION
}

// IsAttribute returns true if the token type starts a rule attribute.
func IsAttribute(t TokenType) bool {
	return t >= SALIENCE && t <= DURATION
}

// IsSoftKeyword reports whether a keyword may also be used as an identifier,
// for example a field named duration or a method called contains.
func IsSoftKeyword(t TokenType) bool {
	switch t {
	case UNIT, MATCHES, CONTAINS, MEMBEROF, SOUNDSLIKE, COLLECT:
		return true
	}
	return IsAttribute(t)
}

// Token represents a lexical token with position information.
// Literal is the exact source text of the token.
type Token struct {
	Type    TokenType
	Literal string
	Pos     Position
}

// End returns the position just past the last character of the token.
// Tokens never span lines.
func (t Token) End() Position {
	return Position{
		Line:   t.Pos.Line,
		Column: t.Pos.Column + len(t.Literal),
		Offset: t.Pos.Offset + len(t.Literal),
	}
}

// Span returns the source range covered by the token.
func (t Token) Span() Span {
	return Span{Start: t.Pos, End: t.End()}
}

func (t Token) String() string {
	switch t.Type {
	case IDENT, NUMBER, STRING, ILLEGAL:
		return fmt.Sprintf("%s(%s)", t.Type, t.Literal)
	default:
		return t.Type.String()
	}
}
