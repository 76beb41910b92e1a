package parser

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/drl/pkg/token"
)

// Lexer tokenizes DRL input. Token literals are exact slices of the input,
// string literals keep their quotes and escapes.
type Lexer struct {
	input   string
	pos     int  // current position in input
	readPos int  // reading position (after current char)
	ch      byte // current char under examination
	line    int  // current line number (1-based)
	col     int  // current column number (1-based)

	// Comments collected during lexing
	Comments []*token.Comment

	// Errors collected during lexing
	Errors []error
}

// NewLexer creates a new Lexer for the given input.
func NewLexer(input string) *Lexer {
	l := &Lexer{
		input: input,
		line:  1,
		col:   0,
	}
	l.readChar()
	return l
}

// readChar advances to the next character.
func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.col = 0
	}
	if l.readPos >= len(l.input) {
		l.ch = 0 // ASCII NUL = EOF
	} else {
		l.ch = l.input[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++
	l.col++
}

// peekChar returns the next character without advancing.
func (l *Lexer) peekChar() byte {
	if l.readPos >= len(l.input) {
		return 0
	}
	return l.input[l.readPos]
}

// currentPos returns the current position.
func (l *Lexer) currentPos() token.Position {
	return token.Position{
		Line:   l.line,
		Column: l.col,
		Offset: l.pos,
	}
}

// NextToken returns the next token.
func (l *Lexer) NextToken() token.Token {
	l.skipWhitespaceAndComments()

	pos := l.currentPos()

	if l.pos >= len(l.input) {
		return token.Token{Type: token.EOF, Pos: pos}
	}

	switch l.ch {
	case '+':
		return l.symbol(token.PLUS, 1)
	case '-':
		return l.symbol(token.MINUS, 1)
	case '*':
		return l.symbol(token.STAR, 1)
	case '/':
		return l.symbol(token.SLASH, 1)
	case '%':
		return l.symbol(token.PERCENT, 1)
	case '=':
		if l.peekChar() == '=' {
			return l.symbol(token.EQ, 2)
		}
		return l.symbol(token.ASSIGN, 1)
	case '!':
		if l.peekChar() == '=' {
			return l.symbol(token.NE, 2)
		}
		return l.symbol(token.BANG, 1)
	case '<':
		if l.peekChar() == '=' {
			return l.symbol(token.LE, 2)
		}
		return l.symbol(token.LT, 1)
	case '>':
		// '>>' stays two tokens so nested generics close cleanly
		if l.peekChar() == '=' {
			return l.symbol(token.GE, 2)
		}
		return l.symbol(token.GT, 1)
	case '&':
		if l.peekChar() == '&' {
			return l.symbol(token.ANDAND, 2)
		}
		return l.symbol(token.AMP, 1)
	case '|':
		if l.peekChar() == '|' {
			return l.symbol(token.OROR, 2)
		}
		return l.symbol(token.PIPE, 1)
	case '^':
		return l.symbol(token.CARET, 1)
	case '~':
		return l.symbol(token.TILDE, 1)
	case '?':
		return l.symbol(token.QUESTION, 1)
	case '#':
		return l.symbol(token.HASH, 1)
	case '@':
		return l.symbol(token.AT, 1)
	case '.':
		return l.symbol(token.DOT, 1)
	case ',':
		return l.symbol(token.COMMA, 1)
	case ':':
		return l.symbol(token.COLON, 1)
	case ';':
		return l.symbol(token.SEMI, 1)
	case '(':
		return l.symbol(token.LPAREN, 1)
	case ')':
		return l.symbol(token.RPAREN, 1)
	case '[':
		return l.symbol(token.LBRACKET, 1)
	case ']':
		return l.symbol(token.RBRACKET, 1)
	case '{':
		return l.symbol(token.LBRACE, 1)
	case '}':
		return l.symbol(token.RBRACE, 1)
	case '"', '\'':
		return token.Token{Type: token.STRING, Literal: l.readString(pos), Pos: pos}
	}

	switch {
	case isIdentStart(l.ch):
		if kw, ok := l.matchHyphenated(); ok {
			return token.Token{Type: token.LookupIdent(kw), Literal: kw, Pos: pos}
		}
		lit := l.readIdentifier()
		return token.Token{Type: token.LookupIdent(lit), Literal: lit, Pos: pos}
	case isDigit(l.ch):
		return token.Token{Type: token.NUMBER, Literal: l.readNumber(), Pos: pos}
	default:
		lit := string(l.ch)
		l.addError(pos, fmt.Sprintf(ErrIllegalCharacter, lit))
		l.readChar()
		return token.Token{Type: token.ILLEGAL, Literal: lit, Pos: pos}
	}
}

// symbol consumes an n-byte operator or punctuation token.
func (l *Lexer) symbol(t token.TokenType, n int) token.Token {
	pos := l.currentPos()
	start := l.pos
	for range n {
		l.readChar()
	}
	return token.Token{Type: t, Literal: l.input[start:l.pos], Pos: pos}
}

// matchHyphenated consumes a dashed attribute keyword such as no-loop when
// the input at the current position spells one.
func (l *Lexer) matchHyphenated() (string, bool) {
	rest := l.input[l.pos:]
	end := 0
	for end < len(rest) && (isIdentPart(rest[end]) || rest[end] == '-') {
		end++
	}
	word := rest[:end]
	if !strings.Contains(word, "-") {
		return "", false
	}
	// longest dashed prefix that is a keyword, e.g. "no-loop-x" is not one
	for cut := len(word); cut > 0; cut = strings.LastIndexByte(word[:cut], '-') {
		if token.IsHyphenatedKeyword(word[:cut]) {
			if cut < len(rest) && isIdentPart(rest[cut]) {
				return "", false
			}
			for range cut {
				l.readChar()
			}
			return word[:cut], true
		}
	}
	return "", false
}

// skipWhitespaceAndComments skips whitespace and collects comments.
func (l *Lexer) skipWhitespaceAndComments() {
	for {
		for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' || l.ch == '\f' {
			l.readChar()
		}

		if l.ch == '/' && l.peekChar() == '/' {
			l.collectLineComment()
			continue
		}

		if l.ch == '/' && l.peekChar() == '*' {
			l.collectBlockComment()
			continue
		}

		break
	}
}

// collectLineComment collects a line comment.
func (l *Lexer) collectLineComment() {
	startPos := l.currentPos()
	startOffset := l.pos

	for l.ch != '\n' && l.pos < len(l.input) {
		l.readChar()
	}

	l.Comments = append(l.Comments, &token.Comment{
		Kind: token.LineComment,
		Text: l.input[startOffset:l.pos],
		Span: token.Span{Start: startPos, End: l.currentPos()},
	})
}

// collectBlockComment collects a block comment.
func (l *Lexer) collectBlockComment() {
	startPos := l.currentPos()
	startOffset := l.pos

	l.readChar() // skip '/'
	l.readChar() // skip '*'

	closed := false
	for l.pos < len(l.input) {
		if l.ch == '*' && l.peekChar() == '/' {
			l.readChar() // skip '*'
			l.readChar() // skip '/'
			closed = true
			break
		}
		l.readChar()
	}
	if !closed {
		l.addError(startPos, ErrUnterminatedComment)
	}

	l.Comments = append(l.Comments, &token.Comment{
		Kind: token.BlockComment,
		Text: l.input[startOffset:l.pos],
		Span: token.Span{Start: startPos, End: l.currentPos()},
	})
}

// readString reads a quoted string literal and returns it verbatim,
// quotes included. Backslash escapes are skipped, not decoded. A string
// may not span lines.
func (l *Lexer) readString(pos token.Position) string {
	quote := l.ch
	start := l.pos
	l.readChar() // skip opening quote

	for {
		switch {
		case l.pos >= len(l.input) || l.ch == '\n':
			l.addError(pos, ErrUnterminatedString)
			return l.input[start:l.pos]
		case l.ch == '\\':
			l.readChar()
			if l.pos < len(l.input) && l.ch != '\n' {
				l.readChar()
			}
		case l.ch == quote:
			l.readChar() // skip closing quote
			return l.input[start:l.pos]
		default:
			l.readChar()
		}
	}
}

// readIdentifier reads an unquoted identifier, $ included.
func (l *Lexer) readIdentifier() string {
	start := l.pos
	for isIdentPart(l.ch) && l.pos < len(l.input) {
		l.readChar()
	}
	return l.input[start:l.pos]
}

// readNumber reads a numeric literal: integer, hex, decimal or scientific,
// with an optional Java type suffix (10L, 1.5f, 2B, 3I).
func (l *Lexer) readNumber() string {
	start := l.pos

	if l.ch == '0' && (l.peekChar() == 'x' || l.peekChar() == 'X') {
		l.readChar() // skip '0'
		l.readChar() // skip 'x'
		for isHexDigit(l.ch) {
			l.readChar()
		}
		if l.ch == 'l' || l.ch == 'L' {
			l.readChar()
		}
		return l.input[start:l.pos]
	}

	for isDigit(l.ch) || l.ch == '_' {
		l.readChar()
	}

	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar() // skip '.'
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	if l.ch == 'e' || l.ch == 'E' {
		l.readChar() // skip 'e' or 'E'
		if l.ch == '+' || l.ch == '-' {
			l.readChar() // skip sign
		}
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	switch l.ch {
	case 'l', 'L', 'f', 'F', 'd', 'D', 'b', 'B', 'i', 'I':
		if !isIdentPart(l.peekChar()) {
			l.readChar()
		}
	}

	return l.input[start:l.pos]
}

func (l *Lexer) addError(pos token.Position, msg string) {
	l.Errors = append(l.Errors, &LexError{Pos: pos, Message: msg})
}

// isIdentStart returns true if ch can start an identifier. Bytes of
// multi-byte UTF-8 sequences are accepted as letters.
func isIdentStart(ch byte) bool {
	return ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z' || ch == '_' || ch == '$' || ch >= 0x80
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}

// isDigit returns true if ch is a digit.
func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isHexDigit(ch byte) bool {
	return isDigit(ch) || ch >= 'a' && ch <= 'f' || ch >= 'A' && ch <= 'F'
}

// Tokenize returns all tokens from the input, ending with EOF.
func Tokenize(input string) []token.Token {
	l := NewLexer(input)
	var tokens []token.Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == token.EOF {
			break
		}
	}
	return tokens
}
