// Package parser provides an error-recovering DRL parser that produces a
// concrete syntax tree.
//
// # Usage
//
//	tree, errs := parser.Parse(src)
//	for _, err := range errs {
//	    // report err, the tree is still usable
//	}
//
// # Grammar Overview
//
// The parser implements a recursive descent parser for DRL:
//
//	compilationUnit → packagedef? unitdef? (importdef | globaldef | functiondef
//	                  | attribute | ruledef)*
//	packagedef      → PACKAGE qualifiedName ;?
//	unitdef         → UNIT qualifiedName ;?
//	importdef       → IMPORT (FUNCTION | STATIC)? qualifiedName (. *)? ;?
//	globaldef       → GLOBAL type IDENT ;?
//	functiondef     → FUNCTION type? IDENT formalParameters block
//	ruledef         → RULE name (EXTENDS name)? (annotation | attribute | ,)*
//	                  lhs? rhs? END
//
// See parser_rule.go and parser_expr.go for the rule body and expression
// grammar.
//
// Tokens that fit no production are wrapped in cst.KindError nodes and a
// *ParseError is recorded; parsing always runs to the end of input.
package parser

import (
	"fmt"

	"github.com/leapstack-labs/drl/pkg/cst"
	"github.com/leapstack-labs/drl/pkg/token"
)

// Parser parses DRL into a CST.
type Parser struct {
	source   string
	tokens   []token.Token
	pos      int
	comments []*token.Comment
	errors   []error
}

// NewParser creates a new parser for the given DRL input.
func NewParser(src string) *Parser {
	l := NewLexer(src)
	var tokens []token.Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == token.EOF {
			break
		}
	}
	p := &Parser{
		source:   src,
		tokens:   tokens,
		comments: l.Comments,
	}
	p.errors = append(p.errors, l.Errors...)
	return p
}

// Parse parses src and returns the CST together with every lexer and
// parser error. The tree is never nil.
func Parse(src string) (*cst.Tree, []error) {
	p := NewParser(src)
	tree := p.Parse()
	return tree, p.Errors()
}

// Parse runs the parser over the whole input.
func (p *Parser) Parse() *cst.Tree {
	return &cst.Tree{
		Root:     p.parseCompilationUnit(),
		Tokens:   p.tokens,
		Comments: p.comments,
		Source:   p.source,
	}
}

// Errors returns the errors collected so far.
func (p *Parser) Errors() []error {
	return p.errors
}

// ---------- Token Helpers ----------

// cur returns the current token.
func (p *Parser) cur() token.Token {
	return p.tokens[p.pos]
}

// peekAt returns the token n positions ahead, EOF past the end.
func (p *Parser) peekAt(n int) token.Token {
	if p.pos+n >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.pos+n]
}

// check returns true if the current token is of the given type.
func (p *Parser) check(t token.TokenType) bool {
	return p.cur().Type == t
}

// checkPeek returns true if the token n positions ahead is of the given type.
func (p *Parser) checkPeek(n int, t token.TokenType) bool {
	return p.peekAt(n).Type == t
}

// atEOF returns true at the end of input.
func (p *Parser) atEOF() bool {
	return p.check(token.EOF)
}

// advance wraps the current token in a terminal node and moves on. EOF is
// never consumed.
func (p *Parser) advance() *cst.Node {
	n := cst.NewTerminal(p.cur())
	if !p.atEOF() {
		p.pos++
	}
	return n
}

// match consumes the current token if it is of the given type.
func (p *Parser) match(t token.TokenType) *cst.Node {
	if p.check(t) {
		return p.advance()
	}
	return nil
}

// expect consumes a token of the given type or records an error.
func (p *Parser) expect(t token.TokenType, what string) *cst.Node {
	if p.check(t) {
		return p.advance()
	}
	p.addError(p.cur().Pos, fmt.Sprintf(ErrUnexpectedToken, describe(p.cur()), what))
	return nil
}

// separator consumes a token of type t into n and reports whether it did.
func (p *Parser) separator(n *cst.Node, t token.TokenType) bool {
	sep := p.match(t)
	n.AddChild(sep)
	return sep != nil
}

// identLike reports whether tok can serve as an identifier.
func identLike(tok token.Token) bool {
	return tok.Type == token.IDENT || token.IsSoftKeyword(tok.Type)
}

// expectIdent consumes an identifier-like token or records an error.
func (p *Parser) expectIdent(what string) *cst.Node {
	if identLike(p.cur()) {
		return p.advance()
	}
	p.addError(p.cur().Pos, fmt.Sprintf(ErrUnexpectedToken, describe(p.cur()), what))
	return nil
}

// addError records a parse error. Repeated errors at the same offset are
// collapsed.
func (p *Parser) addError(pos token.Position, msg string) {
	if n := len(p.errors); n > 0 {
		if pe, ok := p.errors[n-1].(*ParseError); ok && pe.Pos.Offset == pos.Offset {
			return
		}
	}
	p.errors = append(p.errors, &ParseError{Pos: pos, Message: msg})
}

// skipUntil wraps tokens in an error node until stop reports true or the
// input ends. It returns nil when nothing was skipped.
func (p *Parser) skipUntil(msg string, stop func(token.Token) bool) *cst.Node {
	var skipped []*cst.Node
	for !p.atEOF() && !stop(p.cur()) {
		skipped = append(skipped, p.advance())
	}
	if len(skipped) == 0 {
		return nil
	}
	return cst.NewError(msg, skipped...)
}

func describe(tok token.Token) string {
	switch tok.Type {
	case token.EOF:
		return "end of input"
	case token.IDENT, token.NUMBER, token.STRING, token.ILLEGAL:
		return fmt.Sprintf("%q", tok.Literal)
	default:
		return fmt.Sprintf("'%s'", tok.Literal)
	}
}

// ---------- Compilation Unit ----------

// isTopLevel reports whether tok starts (or resynchronises to) a
// top-level construct.
func isTopLevel(tok token.Token) bool {
	switch tok.Type {
	case token.PACKAGE, token.IMPORT, token.GLOBAL, token.FUNCTION,
		token.RULE, token.QUERY, token.DECLARE, token.EOF:
		return true
	}
	return false
}

func (p *Parser) parseCompilationUnit() *cst.Node {
	root := cst.NewNode(cst.KindCompilationUnit)
	for !p.atEOF() {
		start := p.pos
		switch tok := p.cur(); {
		case tok.Type == token.PACKAGE:
			root.AddChild(p.parsePackage())
		case tok.Type == token.UNIT && identLike(p.peekAt(1)):
			root.AddChild(p.parseUnit())
		case tok.Type == token.IMPORT:
			root.AddChild(p.parseImport())
		case tok.Type == token.GLOBAL:
			root.AddChild(p.parseGlobal())
		case tok.Type == token.FUNCTION:
			root.AddChild(p.parseFunction())
		case tok.Type == token.RULE:
			root.AddChild(p.parseRule())
		case token.IsAttribute(tok.Type):
			root.AddChild(p.parseAttribute())
		case tok.Type == token.SEMI:
			root.AddChild(p.advance())
		case tok.Type == token.QUERY || tok.Type == token.DECLARE:
			p.addError(tok.Pos, fmt.Sprintf(ErrUnsupported, tok.Literal))
			skipped := []*cst.Node{p.advance()}
			if rest := p.skipUntil("", isTopLevel); rest != nil {
				skipped = append(skipped, rest.Children...)
			}
			root.AddChild(cst.NewError(fmt.Sprintf(ErrUnsupported, tok.Literal), skipped...))
		default:
			msg := fmt.Sprintf(ErrUnexpectedTopLevel, describe(tok))
			p.addError(tok.Pos, msg)
			skipped := []*cst.Node{p.advance()}
			if rest := p.skipUntil(msg, func(t token.Token) bool {
				return isTopLevel(t) || token.IsAttribute(t.Type)
			}); rest != nil {
				skipped = append(skipped, rest.Children...)
			}
			root.AddChild(cst.NewError(msg, skipped...))
		}
		if p.pos == start {
			// no production consumed anything; force progress
			root.AddChild(cst.NewError("", p.advance()))
		}
	}
	return root
}

// parsePackage parses: PACKAGE qualifiedName ;?
// Junk between the keyword and the name is kept as error children of the
// name so that the name text can still be recovered.
func (p *Parser) parsePackage() *cst.Node {
	n := cst.NewNode(cst.KindPackageDef, p.advance())
	n.AddChild(p.parseQualifiedNameWithJunk("package name"))
	n.AddChild(p.match(token.SEMI))
	return n
}

// parseUnit parses: UNIT qualifiedName ;?
func (p *Parser) parseUnit() *cst.Node {
	n := cst.NewNode(cst.KindUnitDef, p.advance())
	n.AddChild(p.parseQualifiedName("unit name"))
	n.AddChild(p.match(token.SEMI))
	return n
}

// parseImport parses: IMPORT (FUNCTION | STATIC)? qualifiedName (. *)? ;?
func (p *Parser) parseImport() *cst.Node {
	n := cst.NewNode(cst.KindImportDef, p.advance())
	if p.check(token.FUNCTION) || p.check(token.STATIC) {
		n.AddChild(p.advance())
	}
	n.AddChild(p.parseQualifiedName("import target"))
	if p.check(token.DOT) && p.checkPeek(1, token.STAR) {
		n.AddChild(p.advance())
		n.AddChild(p.advance())
	}
	n.AddChild(p.match(token.SEMI))
	return n
}

// parseGlobal parses: GLOBAL type IDENT ;?
func (p *Parser) parseGlobal() *cst.Node {
	n := cst.NewNode(cst.KindGlobalDef, p.advance())
	n.AddChild(p.parseType())
	n.AddChild(p.expectIdent("global identifier"))
	n.AddChild(p.match(token.SEMI))
	return n
}

// parseFunction parses: FUNCTION type? IDENT formalParameters block
func (p *Parser) parseFunction() *cst.Node {
	n := cst.NewNode(cst.KindFunctionDef, p.advance())
	if !(identLike(p.cur()) && p.checkPeek(1, token.LPAREN)) {
		n.AddChild(p.parseType())
	}
	n.AddChild(p.expectIdent("function name"))
	n.AddChild(p.parseFormalParameters())
	n.AddChild(p.parseBlock())
	return n
}

// parseFormalParameters parses: ( (type IDENT (, type IDENT)*)? )
func (p *Parser) parseFormalParameters() *cst.Node {
	lparen := p.expect(token.LPAREN, "'('")
	if lparen == nil {
		return nil
	}
	n := cst.NewNode(cst.KindFormalParameters, lparen)
	for !p.check(token.RPAREN) && !p.atEOF() {
		if !identLike(p.cur()) {
			p.addError(p.cur().Pos, fmt.Sprintf(ErrUnexpectedToken, describe(p.cur()), "parameter type"))
			n.AddChild(p.skipUntil("bad parameter", func(t token.Token) bool {
				return t.Type == token.RPAREN || t.Type == token.LBRACE || isTopLevel(t)
			}))
			break
		}
		n.AddChild(cst.NewNode(cst.KindFormalParameter, p.parseType(), p.expectIdent("parameter name")))
		if !p.separator(n, token.COMMA) {
			break
		}
	}
	n.AddChild(p.expect(token.RPAREN, "')'"))
	return n
}

// parseBlock parses a brace-balanced block and keeps every token.
func (p *Parser) parseBlock() *cst.Node {
	lbrace := p.expect(token.LBRACE, "'{'")
	if lbrace == nil {
		return nil
	}
	n := cst.NewNode(cst.KindBlock, lbrace)
	depth := 1
	for depth > 0 {
		if p.atEOF() {
			p.addError(lbrace.Token.Pos, ErrUnterminatedBlock)
			break
		}
		switch p.cur().Type {
		case token.LBRACE:
			depth++
		case token.RBRACE:
			depth--
		}
		n.AddChild(p.advance())
	}
	return n
}
