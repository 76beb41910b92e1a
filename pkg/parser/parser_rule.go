package parser

// Rule grammar:
//
//	attribute      → attrKeyword value?
//	annotation     → @ qualifiedName ( ( chunk (, chunk)* )? )?
//	lhs            → WHEN :? lhsOr*
//	lhsOr          → ( OR lhsAnd+ ) | lhsAnd (OR lhsAnd)*
//	lhsAnd         → ( AND lhsUnary+ ) | lhsUnary (AND lhsUnary)*
//	lhsUnary       → (lhsNot | lhsExists | ( lhsOr ) | lhsPatternBind) ;?
//	lhsNot         → NOT lhsPatternBind
//	lhsExists      → EXISTS lhsPatternBind
//	lhsPatternBind → label? (( lhsPattern (OR lhsPattern)* ) | lhsPattern)
//	lhsPattern     → qualifiedName ( constraints? ) (FROM expression)?
//	constraint     → label? expression
//	label          → IDENT :
//	rhs            → THEN consequence
//	consequence    → any tokens up to END at brace depth zero

import (
	"fmt"

	"github.com/leapstack-labs/drl/pkg/cst"
	"github.com/leapstack-labs/drl/pkg/token"
)

// parseRule parses a rule definition. A missing END is reported but the
// rule node is still returned.
func (p *Parser) parseRule() *cst.Node {
	rule := cst.NewNode(cst.KindRuleDef, p.advance())

	var name string
	if p.check(token.STRING) || identLike(p.cur()) {
		name = p.cur().Literal
		rule.AddChild(cst.NewNode(cst.KindRuleName, p.advance()))
	} else {
		p.addError(p.cur().Pos, fmt.Sprintf(ErrUnexpectedToken, describe(p.cur()), "rule name"))
	}

	if ext := p.match(token.EXTENDS); ext != nil {
		rule.AddChild(ext)
		if p.check(token.STRING) || identLike(p.cur()) {
			rule.AddChild(cst.NewNode(cst.KindParentName, p.advance()))
		} else {
			p.addError(p.cur().Pos, fmt.Sprintf(ErrUnexpectedToken, describe(p.cur()), "parent rule name"))
		}
	}

	p.parseRuleHeader(rule)

	if p.check(token.WHEN) {
		rule.AddChild(p.parseLhs())
	}
	if !p.check(token.THEN) && !p.check(token.END) {
		p.addError(p.cur().Pos, fmt.Sprintf(ErrUnexpectedToken, describe(p.cur()), "'then'"))
		rule.AddChild(p.skipUntil("unexpected rule content", func(t token.Token) bool {
			return t.Type == token.THEN || t.Type == token.END || isTopLevel(t)
		}))
	}
	if p.check(token.THEN) {
		rule.AddChild(p.parseRhs())
	}

	if end := p.match(token.END); end != nil {
		rule.AddChild(end)
	} else {
		p.addError(p.cur().Pos, fmt.Sprintf(ErrMissingEnd, name))
	}
	return rule
}

// parseRuleHeader parses annotations and attributes in any order, with
// optional commas between them.
func (p *Parser) parseRuleHeader(rule *cst.Node) {
	for {
		switch {
		case p.check(token.AT):
			rule.AddChild(p.parseAnnotation())
		case token.IsAttribute(p.cur().Type):
			rule.AddChild(p.parseAttribute())
		case p.check(token.COMMA):
			rule.AddChild(p.advance())
		default:
			return
		}
	}
}

// parseAttribute parses a rule or package attribute. Boolean attributes
// take an optional value; the others require one.
func (p *Parser) parseAttribute() *cst.Node {
	kw := p.advance()
	n := cst.NewNode(cst.KindAttribute, kw)

	var value *cst.Node
	switch kw.Token.Type {
	case token.NO_LOOP, token.AUTO_FOCUS, token.LOCK_ON_ACTIVE, token.REFRACT, token.DIRECT:
		if p.check(token.TRUE) || p.check(token.FALSE) {
			value = cst.NewNode(cst.KindAttributeValue, cst.NewNode(cst.KindLiteral, p.advance()))
		}
		n.AddChild(value)
		return n
	case token.ENABLED:
		switch {
		case p.check(token.TRUE) || p.check(token.FALSE):
			value = cst.NewNode(cst.KindAttributeValue, cst.NewNode(cst.KindLiteral, p.advance()))
		case p.check(token.LPAREN):
			value = cst.NewNode(cst.KindAttributeValue, p.parseParenChunk())
		}
		n.AddChild(value)
		return n
	case token.SALIENCE:
		if expr := p.parseExpression(); expr != nil {
			value = cst.NewNode(cst.KindAttributeValue, expr)
		}
	case token.CALENDARS:
		if p.check(token.STRING) {
			value = cst.NewNode(cst.KindAttributeValue, cst.NewNode(cst.KindLiteral, p.advance()))
			for p.check(token.COMMA) && p.checkPeek(1, token.STRING) {
				value.AddChild(p.advance())
				value.AddChild(cst.NewNode(cst.KindLiteral, p.advance()))
			}
		}
	case token.TIMER, token.DURATION:
		switch {
		case p.check(token.LPAREN):
			value = cst.NewNode(cst.KindAttributeValue, p.parseParenChunk())
		case p.check(token.NUMBER):
			value = cst.NewNode(cst.KindAttributeValue, cst.NewNode(cst.KindLiteral, p.advance()))
		}
	default:
		if p.check(token.STRING) {
			value = cst.NewNode(cst.KindAttributeValue, cst.NewNode(cst.KindLiteral, p.advance()))
		}
	}

	if value == nil {
		p.addError(p.cur().Pos, fmt.Sprintf(ErrMissingValue, kw.Token.Literal))
		return n
	}
	n.AddChild(value)
	return n
}

// parseParenChunk consumes a parenthesised, balanced token run verbatim.
func (p *Parser) parseParenChunk() *cst.Node {
	n := cst.NewNode(cst.KindChunk, p.advance())
	depth := 1
	for depth > 0 && !p.atEOF() && !isRuleBoundary(p.cur()) {
		switch p.cur().Type {
		case token.LPAREN:
			depth++
		case token.RPAREN:
			depth--
		}
		n.AddChild(p.advance())
	}
	if depth > 0 {
		p.addError(p.cur().Pos, fmt.Sprintf(ErrUnexpectedToken, describe(p.cur()), "')'"))
	}
	return n
}

// isRuleBoundary reports tokens no rule fragment may swallow.
func isRuleBoundary(tok token.Token) bool {
	switch tok.Type {
	case token.WHEN, token.THEN, token.END:
		return true
	}
	return isTopLevel(tok)
}

// parseAnnotation parses @name or @name(args). Each argument is kept as a
// balanced chunk of tokens.
func (p *Parser) parseAnnotation() *cst.Node {
	n := cst.NewNode(cst.KindAnnotation, p.advance())
	n.AddChild(p.parseQualifiedName("annotation name"))
	if !p.check(token.LPAREN) {
		return n
	}
	args := cst.NewNode(cst.KindAnnotationArgs, p.advance())
	for !p.check(token.RPAREN) && !p.atEOF() && !isRuleBoundary(p.cur()) {
		chunk := cst.NewNode(cst.KindChunk)
		depth := 0
		for !p.atEOF() && !isRuleBoundary(p.cur()) {
			t := p.cur().Type
			if depth == 0 && (t == token.COMMA || t == token.RPAREN) {
				break
			}
			switch t {
			case token.LPAREN, token.LBRACKET, token.LBRACE:
				depth++
			case token.RPAREN, token.RBRACKET, token.RBRACE:
				depth--
			}
			chunk.AddChild(p.advance())
		}
		args.AddChild(chunk)
		if !p.separator(args, token.COMMA) {
			break
		}
	}
	args.AddChild(p.expect(token.RPAREN, "')'"))
	n.AddChild(args)
	return n
}

// ---------- Left Hand Side ----------

// canStartLhs reports whether tok can begin a condition element.
func (p *Parser) canStartLhs() bool {
	tok := p.cur()
	switch tok.Type {
	case token.NOT, token.EXISTS, token.LPAREN:
		return true
	}
	return identLike(tok)
}

func isUnsupportedCondition(t token.TokenType) bool {
	switch t {
	case token.EVAL, token.FORALL, token.ACCUMULATE:
		return true
	}
	return false
}

func (p *Parser) parseLhs() *cst.Node {
	n := cst.NewNode(cst.KindLhs, p.advance())
	n.AddChild(p.match(token.COLON))
	for !p.check(token.THEN) && !p.check(token.END) && !isTopLevel(p.cur()) {
		start := p.pos
		switch {
		case isUnsupportedCondition(p.cur().Type):
			n.AddChild(p.parseUnsupportedCondition())
		case p.canStartLhs():
			n.AddChild(p.parseLhsOr())
		default:
			p.addError(p.cur().Pos, fmt.Sprintf(ErrUnexpectedToken, describe(p.cur()), "condition"))
			n.AddChild(cst.NewError("unexpected token", p.advance()))
		}
		if p.pos == start {
			n.AddChild(cst.NewError("unexpected token", p.advance()))
		}
	}
	return n
}

// parseUnsupportedCondition turns eval(...), forall(...) and accumulate(...)
// conditions into error regions.
func (p *Parser) parseUnsupportedCondition() *cst.Node {
	kw := p.advance()
	p.addError(kw.Token.Pos, fmt.Sprintf(ErrUnsupported, kw.Token.Literal))
	children := []*cst.Node{kw}
	if p.check(token.LPAREN) {
		children = append(children, p.parseParenChunk())
	}
	return cst.NewError(fmt.Sprintf(ErrUnsupported, kw.Token.Literal), children...)
}

func (p *Parser) parseLhsOr() *cst.Node {
	if p.check(token.LPAREN) && p.checkPeek(1, token.OR) {
		n := cst.NewNode(cst.KindLhsOr, p.advance(), p.advance())
		for !p.check(token.RPAREN) && p.canStartLhs() {
			n.AddChild(p.parseLhsAnd())
		}
		n.AddChild(p.expect(token.RPAREN, "')'"))
		return n
	}
	n := cst.NewNode(cst.KindLhsOr, p.parseLhsAnd())
	for p.check(token.OR) {
		n.AddChild(p.advance())
		if !p.canStartLhs() {
			p.addError(p.cur().Pos, fmt.Sprintf(ErrUnexpectedToken, describe(p.cur()), "condition"))
			break
		}
		n.AddChild(p.parseLhsAnd())
	}
	return n
}

func (p *Parser) parseLhsAnd() *cst.Node {
	if p.check(token.LPAREN) && p.checkPeek(1, token.AND) {
		n := cst.NewNode(cst.KindLhsAnd, p.advance(), p.advance())
		for !p.check(token.RPAREN) && p.canStartLhs() {
			n.AddChild(p.parseLhsUnary())
		}
		n.AddChild(p.expect(token.RPAREN, "')'"))
		return n
	}
	n := cst.NewNode(cst.KindLhsAnd, p.parseLhsUnary())
	for p.check(token.AND) {
		n.AddChild(p.advance())
		if !p.canStartLhs() {
			p.addError(p.cur().Pos, fmt.Sprintf(ErrUnexpectedToken, describe(p.cur()), "condition"))
			break
		}
		n.AddChild(p.parseLhsUnary())
	}
	return n
}

func (p *Parser) parseLhsUnary() *cst.Node {
	n := cst.NewNode(cst.KindLhsUnary)
	switch {
	case p.check(token.NOT):
		n.AddChild(p.parseQuantified(cst.KindLhsNot))
	case p.check(token.EXISTS):
		n.AddChild(p.parseQuantified(cst.KindLhsExists))
	case p.check(token.LPAREN):
		n.AddChild(p.advance())
		n.AddChild(p.parseLhsOr())
		n.AddChild(p.expect(token.RPAREN, "')'"))
	default:
		n.AddChild(p.parsePatternBindOrError())
	}
	n.AddChild(p.match(token.SEMI))
	return n
}

// parseQuantified parses NOT or EXISTS followed by a pattern bind. Without
// a usable pattern the whole construct becomes an error node.
func (p *Parser) parseQuantified(kind cst.Kind) *cst.Node {
	kw := p.advance()
	bind, ok := p.parsePatternBind()
	if !ok {
		return cst.NewError(fmt.Sprintf(ErrUnexpectedToken, describe(p.cur()), "pattern"), kw, bind)
	}
	return cst.NewNode(kind, kw, bind)
}

func (p *Parser) parsePatternBindOrError() *cst.Node {
	bind, ok := p.parsePatternBind()
	if !ok {
		return cst.NewError("missing pattern", bind)
	}
	return bind
}

// parsePatternBind parses an optionally labelled pattern or a parenthesised
// list of alternative patterns. ok is false when no pattern was found; an
// error has then been recorded.
func (p *Parser) parsePatternBind() (*cst.Node, bool) {
	n := cst.NewNode(cst.KindLhsPatternBind)
	if identLike(p.cur()) && p.checkPeek(1, token.COLON) {
		n.AddChild(cst.NewNode(cst.KindLabel, p.advance(), p.advance()))
	}

	if !p.check(token.LPAREN) {
		pattern := p.parsePattern()
		if pattern == nil {
			p.addError(p.cur().Pos, fmt.Sprintf(ErrUnexpectedToken, describe(p.cur()), "pattern"))
			return n, false
		}
		n.AddChild(pattern)
		return n, true
	}

	n.AddChild(p.advance())
	pattern := p.parsePattern()
	if pattern == nil {
		p.addError(p.cur().Pos, fmt.Sprintf(ErrUnexpectedToken, describe(p.cur()), "pattern"))
		n.AddChild(p.skipUntil("unexpected token", func(t token.Token) bool {
			return t.Type == token.RPAREN || isRuleBoundary(t)
		}))
		n.AddChild(p.match(token.RPAREN))
		return n, false
	}
	n.AddChild(pattern)
	for p.check(token.OR) {
		n.AddChild(p.advance())
		alt := p.parsePattern()
		if alt == nil {
			p.addError(p.cur().Pos, fmt.Sprintf(ErrUnexpectedToken, describe(p.cur()), "pattern"))
			break
		}
		n.AddChild(alt)
	}
	n.AddChild(p.expect(token.RPAREN, "')'"))
	return n, true
}

// parsePattern parses ObjectType( constraints ) with an optional from
// source. It returns nil, consuming nothing, unless an identifier is next.
func (p *Parser) parsePattern() *cst.Node {
	if !identLike(p.cur()) {
		return nil
	}
	n := cst.NewNode(cst.KindLhsPattern, p.parseQualifiedName("object type"))
	lparen := p.expect(token.LPAREN, "'('")
	if lparen == nil {
		return n
	}
	n.AddChild(lparen)
	n.AddChild(p.parseConstraints())
	n.AddChild(p.expect(token.RPAREN, "')'"))

	if from := p.match(token.FROM); from != nil {
		n.AddChild(from)
		expr := p.parseExpression()
		if expr == nil {
			p.addError(p.cur().Pos, fmt.Sprintf(ErrUnexpectedToken, describe(p.cur()), "pattern source"))
		} else {
			n.AddChild(cst.NewNode(cst.KindPatternSource, expr))
		}
	}
	return n
}

// parseConstraints parses comma separated constraints up to the closing
// parenthesis. Unparseable constraint text is kept in error nodes.
func (p *Parser) parseConstraints() *cst.Node {
	n := cst.NewNode(cst.KindConstraints)
	for !p.check(token.RPAREN) && !p.atEOF() && !isRuleBoundary(p.cur()) {
		if c := p.parseConstraint(); c != nil {
			n.AddChild(c)
		}
		if !p.check(token.COMMA) && !p.check(token.RPAREN) {
			p.addError(p.cur().Pos, fmt.Sprintf(ErrUnexpectedToken, describe(p.cur()), "',' or ')'"))
			n.AddChild(p.skipConstraintRest())
		}
		if !p.separator(n, token.COMMA) {
			break
		}
	}
	return n
}

func (p *Parser) parseConstraint() *cst.Node {
	n := cst.NewNode(cst.KindConstraint)
	if identLike(p.cur()) && p.checkPeek(1, token.COLON) {
		n.AddChild(cst.NewNode(cst.KindLabel, p.advance(), p.advance()))
	}
	expr := p.parseExpression()
	if expr == nil {
		if len(n.Children) == 0 {
			return nil
		}
		p.addError(p.cur().Pos, fmt.Sprintf(ErrUnexpectedToken, describe(p.cur()), "constraint"))
	}
	n.AddChild(expr)
	return n
}

// skipConstraintRest skips to the next ',' or ')' at parenthesis depth zero.
func (p *Parser) skipConstraintRest() *cst.Node {
	var skipped []*cst.Node
	depth := 0
	for !p.atEOF() && !isRuleBoundary(p.cur()) {
		t := p.cur().Type
		if depth == 0 && (t == token.COMMA || t == token.RPAREN) {
			break
		}
		switch t {
		case token.LPAREN:
			depth++
		case token.RPAREN:
			depth--
		}
		skipped = append(skipped, p.advance())
	}
	if len(skipped) == 0 {
		return nil
	}
	return cst.NewError("unexpected constraint content", skipped...)
}

// ---------- Right Hand Side ----------

// parseRhs parses THEN and the raw consequence tokens. The consequence ends
// at an END keyword outside braces that is not a member access (x.end), or
// at the header of a following rule when END is missing.
func (p *Parser) parseRhs() *cst.Node {
	n := cst.NewNode(cst.KindRhs, p.advance())
	body := cst.NewNode(cst.KindConsequence)
	depth := 0
	for !p.atEOF() {
		tok := p.cur()
		prevDot := p.pos > 0 && p.tokens[p.pos-1].Type == token.DOT
		if depth == 0 && !prevDot {
			if tok.Type == token.END {
				break
			}
			if startsDefinition(tok, p.peekAt(1)) {
				break
			}
		}
		switch tok.Type {
		case token.LBRACE:
			depth++
		case token.RBRACE:
			if depth > 0 {
				depth--
			}
		}
		body.AddChild(p.advance())
	}
	n.AddChild(body)
	return n
}

// startsDefinition reports whether tok, next looks like the header of a new
// rule, query or declaration rather than Java code using the same word.
func startsDefinition(tok, next token.Token) bool {
	switch tok.Type {
	case token.RULE, token.QUERY, token.DECLARE:
		return next.Type == token.STRING || next.Type == token.IDENT
	}
	return false
}
