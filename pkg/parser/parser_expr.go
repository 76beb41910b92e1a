package parser

// Expression and type grammar:
//
//	qualifiedName → IDENT (. IDENT)*
//	type          → qualifiedName typeArguments? ([ ])*
//	typeArguments → < typeArgument (, typeArgument)* >
//	typeArgument  → ? ((EXTENDS | super) type)? | type
//	expression    → unary (binaryOp unary)* (? expression : expression)?
//	unary         → (! | - | + | ~) unary | postfix
//	postfix       → primary (. IDENT arguments? | [ expression ] | arguments)*
//	primary       → literal | IDENT | ( expression ) | list | NEW type arguments
//	list          → [ (expression ((, | :) expression)*)? ]
//	arguments     → ( (expression (, expression)*)? )
//
// Binary operators are kept flat: the CST only needs source order, not
// precedence.

import (
	"fmt"

	"github.com/leapstack-labs/drl/pkg/cst"
	"github.com/leapstack-labs/drl/pkg/token"
)

// parseQualifiedName parses IDENT (. IDENT)*. A dot is only consumed when an
// identifier follows, so "foo.*" leaves ". *" to the caller.
func (p *Parser) parseQualifiedName(what string) *cst.Node {
	n := cst.NewNode(cst.KindQualifiedName)
	ident := p.expectIdent(what)
	if ident == nil {
		return n
	}
	n.AddChild(ident)
	for p.check(token.DOT) && identLike(p.peekAt(1)) {
		n.AddChild(p.advance())
		n.AddChild(p.advance())
	}
	return n
}

// parseQualifiedNameWithJunk is parseQualifiedName that first swallows
// tokens which cannot start a name into error children.
func (p *Parser) parseQualifiedNameWithJunk(what string) *cst.Node {
	n := cst.NewNode(cst.KindQualifiedName)
	isJunk := func(t token.Token) bool {
		switch {
		case identLike(t), isTopLevel(t):
			return false
		case t.Type == token.SEMI || t.Type == token.DOT:
			return false
		}
		return true
	}
	for isJunk(p.cur()) {
		p.addError(p.cur().Pos, fmt.Sprintf(ErrUnexpectedToken, describe(p.cur()), what))
		n.AddChild(cst.NewError("unexpected token", p.advance()))
	}
	if !identLike(p.cur()) {
		if len(n.Children) == 0 {
			p.addError(p.cur().Pos, fmt.Sprintf(ErrUnexpectedToken, describe(p.cur()), what))
		}
		return n
	}
	for _, c := range p.parseQualifiedName(what).Children {
		n.AddChild(c)
	}
	return n
}

// parseType parses a possibly generic, possibly array type.
func (p *Parser) parseType() *cst.Node {
	n := cst.NewNode(cst.KindType, p.parseQualifiedName("type"))
	if p.check(token.LT) {
		n.AddChild(p.parseTypeArguments())
	}
	for p.check(token.LBRACKET) && p.checkPeek(1, token.RBRACKET) {
		n.AddChild(p.advance())
		n.AddChild(p.advance())
	}
	return n
}

func (p *Parser) parseTypeArguments() *cst.Node {
	n := cst.NewNode(cst.KindTypeArguments, p.advance())
	for {
		if p.check(token.QUESTION) {
			n.AddChild(p.advance())
			if p.check(token.EXTENDS) || (p.check(token.IDENT) && p.cur().Literal == "super") {
				n.AddChild(p.advance())
				n.AddChild(p.parseType())
			}
		} else {
			n.AddChild(p.parseType())
		}
		if !p.separator(n, token.COMMA) {
			break
		}
	}
	n.AddChild(p.expect(token.GT, "'>'"))
	return n
}

// isBinaryOp reports whether t continues an expression as an infix operator.
func isBinaryOp(t token.TokenType) bool {
	switch t {
	case token.OROR, token.ANDAND, token.EQ, token.NE, token.LT, token.GT,
		token.LE, token.GE, token.PLUS, token.MINUS, token.STAR, token.SLASH,
		token.PERCENT, token.AMP, token.PIPE, token.CARET,
		token.MATCHES, token.CONTAINS, token.MEMBEROF, token.SOUNDSLIKE,
		token.IN, token.INSTANCEOF:
		return true
	}
	return false
}

func isRelational(t token.TokenType) bool {
	switch t {
	case token.EQ, token.NE, token.LT, token.GT, token.LE, token.GE,
		token.MATCHES, token.CONTAINS, token.MEMBEROF, token.SOUNDSLIKE:
		return true
	}
	return false
}

// negatable operators may be written with a leading not, e.g. "not matches".
func negatable(t token.TokenType) bool {
	switch t {
	case token.MATCHES, token.CONTAINS, token.MEMBEROF, token.SOUNDSLIKE, token.IN:
		return true
	}
	return false
}

// parseExpression returns nil, consuming nothing, when the current token
// cannot start an expression.
func (p *Parser) parseExpression() *cst.Node {
	first := p.parseUnary()
	if first == nil {
		return nil
	}
	n := cst.NewNode(cst.KindExpression, first)
	for {
		op := p.cur().Type
		switch {
		case op == token.NOT && negatable(p.peekAt(1).Type):
			n.AddChild(p.advance())
			op = p.cur().Type
			n.AddChild(p.advance())
		case isBinaryOp(op):
			n.AddChild(p.advance())
		default:
			return p.finishExpression(n)
		}

		switch op {
		case token.INSTANCEOF:
			n.AddChild(p.parseType())
			continue
		case token.IN:
			n.AddChild(p.parseArguments())
			continue
		case token.ANDAND, token.OROR:
			// abbreviated restriction: price > 10 && < 20
			if isRelational(p.cur().Type) {
				n.AddChild(p.advance())
			}
		}

		operand := p.parseUnary()
		if operand == nil {
			p.addError(p.cur().Pos, fmt.Sprintf(ErrUnexpectedToken, describe(p.cur()), "expression"))
			return n
		}
		n.AddChild(operand)
	}
}

func (p *Parser) finishExpression(n *cst.Node) *cst.Node {
	if p.check(token.QUESTION) {
		n.AddChild(p.advance())
		n.AddChild(p.parseExpression())
		n.AddChild(p.expect(token.COLON, "':'"))
		n.AddChild(p.parseExpression())
	}
	if len(n.Children) == 1 {
		return n.Children[0]
	}
	return n
}

func (p *Parser) parseUnary() *cst.Node {
	switch p.cur().Type {
	case token.BANG, token.MINUS, token.PLUS, token.TILDE:
		op := p.advance()
		operand := p.parseUnary()
		if operand == nil {
			p.addError(p.cur().Pos, fmt.Sprintf(ErrUnexpectedToken, describe(p.cur()), "expression"))
		}
		return cst.NewNode(cst.KindExpression, op, operand)
	}
	primary := p.parsePrimary()
	if primary == nil {
		return nil
	}
	return p.parsePostfix(primary)
}

func (p *Parser) parsePrimary() *cst.Node {
	tok := p.cur()
	switch {
	case tok.Type == token.NUMBER, tok.Type == token.STRING,
		tok.Type == token.TRUE, tok.Type == token.FALSE, tok.Type == token.NULL:
		return cst.NewNode(cst.KindLiteral, p.advance())
	case identLike(tok), tok.Type == token.ACCUMULATE, tok.Type == token.EVAL:
		return cst.NewNode(cst.KindPrimary, p.advance())
	case tok.Type == token.LPAREN:
		n := cst.NewNode(cst.KindPrimary, p.advance())
		inner := p.parseExpression()
		if inner == nil {
			p.addError(p.cur().Pos, fmt.Sprintf(ErrUnexpectedToken, describe(p.cur()), "expression"))
		}
		n.AddChild(inner)
		n.AddChild(p.expect(token.RPAREN, "')'"))
		return n
	case tok.Type == token.LBRACKET:
		return p.parseList()
	case tok.Type == token.NEW:
		n := cst.NewNode(cst.KindPrimary, p.advance())
		n.AddChild(p.parseType())
		switch {
		case p.check(token.LPAREN):
			n.AddChild(p.parseArguments())
		case p.check(token.LBRACKET):
			n.AddChild(p.parseList())
		}
		return n
	}
	return nil
}

func (p *Parser) parsePostfix(n *cst.Node) *cst.Node {
	for {
		switch {
		case p.check(token.DOT), p.check(token.BANG) && p.checkPeek(1, token.DOT):
			// member access, including the null-safe form !.
			next := cst.NewNode(cst.KindPrimary, n)
			if p.check(token.BANG) {
				next.AddChild(p.advance())
			}
			next.AddChild(p.advance())
			next.AddChild(p.expectIdent("member name"))
			if p.check(token.LPAREN) {
				next.AddChild(p.parseArguments())
			}
			n = next
		case p.check(token.HASH):
			// inline cast: expr#Type
			n = cst.NewNode(cst.KindPrimary, n, p.advance(), p.parseQualifiedName("type"))
		case p.check(token.LBRACKET):
			next := cst.NewNode(cst.KindPrimary, n, p.advance())
			next.AddChild(p.parseExpression())
			next.AddChild(p.expect(token.RBRACKET, "']'"))
			n = next
		case p.check(token.LPAREN) && callable(n):
			n = cst.NewNode(cst.KindPrimary, n, p.parseArguments())
		default:
			return n
		}
	}
}

// callable reports whether n is a bare name that may be followed by an
// argument list.
func callable(n *cst.Node) bool {
	return n.Kind == cst.KindPrimary && len(n.Children) == 1 && n.Children[0].IsTerminal()
}

// parseArguments parses ( (expression (, expression)*)? ).
func (p *Parser) parseArguments() *cst.Node {
	lparen := p.expect(token.LPAREN, "'('")
	if lparen == nil {
		return nil
	}
	n := cst.NewNode(cst.KindArguments, lparen)
	for !p.check(token.RPAREN) {
		arg := p.parseExpression()
		if arg == nil {
			break
		}
		n.AddChild(arg)
		if !p.separator(n, token.COMMA) {
			break
		}
	}
	n.AddChild(p.expect(token.RPAREN, "')'"))
	return n
}

// parseList parses an inline list or map: [1, 2] or [a : b].
func (p *Parser) parseList() *cst.Node {
	n := cst.NewNode(cst.KindListLiteral, p.advance())
	for !p.check(token.RBRACKET) {
		item := p.parseExpression()
		if item == nil {
			break
		}
		n.AddChild(item)
		if !p.separator(n, token.COMMA) && !p.separator(n, token.COLON) {
			break
		}
	}
	n.AddChild(p.expect(token.RBRACKET, "']'"))
	return n
}
