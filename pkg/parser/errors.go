package parser

import (
	"fmt"

	"github.com/leapstack-labs/drl/pkg/token"
)

// ParseError represents a parsing error with position information.
type ParseError struct {
	Pos     token.Position
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at line %d, column %d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

// LexError represents a lexical analysis error.
type LexError struct {
	Pos     token.Position
	Message string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("lexer error at line %d, column %d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

// Common error messages
const (
	ErrUnexpectedToken     = "unexpected token %s, expected %s"
	ErrUnexpectedTopLevel  = "unexpected token %s at top level"
	ErrUnsupported         = "%s is not supported"
	ErrMissingEnd          = "missing 'end' for rule %s"
	ErrMissingValue        = "attribute %s requires a value"
	ErrUnterminatedString  = "unterminated string literal"
	ErrUnterminatedComment = "unterminated block comment"
	ErrUnterminatedBlock   = "unterminated block"
	ErrIllegalCharacter    = "illegal character %q"
)

// ErrorPosition returns the position of a lexer or parser error, or the zero
// position for other errors.
func ErrorPosition(err error) token.Position {
	switch e := err.(type) {
	case *ParseError:
		return e.Pos
	case *LexError:
		return e.Pos
	}
	return token.Position{}
}
