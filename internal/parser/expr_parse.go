package parser

import "nimbus/internal/lexer"

// expression parses assignment and everything looser than it — the
// widest production, used everywhere a full expression is expected.
func (p *Parser) expression() Expr {
	return p.assignment()
}

// assignment handles plain `=` and the compound-assignment forms,
// which desugar to `target = target OP value` here per spec.md §4.3.
func (p *Parser) assignment() Expr {
	expr := p.ternary()

	if p.match(lexer.TokenEqual) {
		line := p.previous().Line
		value := p.assignment()
		return &Assign{Target: expr, Value: value, Line: line}
	}
	if op, ok := compoundAssignOps[p.peek().Kind]; ok {
		line := p.peek().Line
		p.advance()
		value := p.assignment()
		return &Assign{Target: expr, Value: &Binary{Left: expr, Operator: op, Right: value, Line: line}, Line: line}
	}
	return expr
}

func (p *Parser) ternary() Expr {
	cond := p.logicalOr()
	if p.match(lexer.TokenQuestion) {
		line := p.previous().Line
		then := p.assignment()
		p.consume(lexer.TokenColon, "expect ':' in ternary expression")
		elseExpr := p.assignment()
		return &Ternary{Cond: cond, Then: then, Else: elseExpr, Line: line}
	}
	return cond
}

func (p *Parser) logicalOr() Expr {
	expr := p.logicalAnd()
	for p.check(lexer.TokenOr) {
		line := p.peek().Line
		p.advance()
		right := p.logicalAnd()
		expr = &Logical{Left: expr, Operator: "||", Right: right, Line: line}
	}
	return expr
}

func (p *Parser) logicalAnd() Expr {
	expr := p.binary(3)
	for p.check(lexer.TokenAnd) {
		line := p.peek().Line
		p.advance()
		right := p.binary(3)
		expr = &Logical{Left: expr, Operator: "&&", Right: right, Line: line}
	}
	return expr
}

// binary climbs the precedence table built for equality/comparison/
// additive/multiplicative operators; logical && and || are handled
// above since they short-circuit rather than always evaluating both
// sides.
func (p *Parser) binary(minPrec int) Expr {
	left := p.unary()
	for {
		tok := p.peek()
		prec, ok := precedence[tok.Kind]
		if !ok || prec < minPrec {
			break
		}
		p.advance()
		right := p.binary(prec + 1)
		left = &Binary{Left: left, Operator: tok.Lexeme, Right: right, Line: tok.Line}
	}
	return left
}

func (p *Parser) unary() Expr {
	switch {
	case p.check(lexer.TokenBang), p.check(lexer.TokenMinus):
		tok := p.advance()
		operand := p.unary()
		return &Unary{Operator: tok.Lexeme, Operand: operand, Line: tok.Line}
	case p.check(lexer.TokenPlusPlus), p.check(lexer.TokenMinusMinus):
		tok := p.advance()
		operand := p.unary()
		return &Unary{Operator: tok.Lexeme, Operand: operand, Line: tok.Line}
	case p.check(lexer.TokenNew):
		tok := p.advance()
		// The callee is a primary plus any `.name` accesses; the first
		// '(' opens the constructor's argument list rather than a call.
		callee := p.primary()
		for p.match(lexer.TokenDot) {
			name := p.consume(lexer.TokenIdent, "expect property name after '.'")
			callee = &Property{Object: callee, Name: name.Lexeme, Line: name.Line}
		}
		var args []Expr
		if p.match(lexer.TokenLParen) {
			args = p.argumentList()
		}
		return &New{Callee: callee, Args: args, Line: tok.Line}
	default:
		return p.postfix()
	}
}

func (p *Parser) postfix() Expr {
	expr := p.callOrMember(p.primary())
	if p.check(lexer.TokenPlusPlus) || p.check(lexer.TokenMinusMinus) {
		tok := p.advance()
		return &Postfix{Operator: tok.Lexeme, Operand: expr, Line: tok.Line}
	}
	return expr
}

// callOrMember parses the call/member/subscript chain that can follow
// any primary: `f(a)(b).c[0]`.
func (p *Parser) callOrMember(expr Expr) Expr {
	for {
		switch {
		case p.match(lexer.TokenLParen):
			line := p.previous().Line
			args := p.argumentList()
			expr = &Call{Callee: expr, Args: args, Line: line}
		case p.match(lexer.TokenDot):
			name := p.consume(lexer.TokenIdent, "expect property name after '.'")
			expr = &Property{Object: expr, Name: name.Lexeme, Line: name.Line}
		case p.match(lexer.TokenLBracket):
			line := p.previous().Line
			index := p.expression()
			p.consume(lexer.TokenRBracket, "expect ']' after index")
			expr = &Index{Object: expr, Index: index, Line: line}
		default:
			return expr
		}
	}
}

func (p *Parser) argumentList() []Expr {
	var args []Expr
	if !p.check(lexer.TokenRParen) {
		args = append(args, p.expression())
		for p.match(lexer.TokenComma) {
			args = append(args, p.expression())
		}
	}
	p.consume(lexer.TokenRParen, "expect ')' after arguments")
	return args
}

func (p *Parser) primary() Expr {
	tok := p.advance()
	switch tok.Kind {
	case lexer.TokenNumber:
		return &Literal{Value: tok.Literal, Line: tok.Line}
	case lexer.TokenString:
		return &Literal{Value: tok.Literal, Line: tok.Line}
	case lexer.TokenTrue:
		return &Literal{Value: true, Line: tok.Line}
	case lexer.TokenFalse:
		return &Literal{Value: false, Line: tok.Line}
	case lexer.TokenNull:
		return &Literal{Value: nil, Line: tok.Line}
	case lexer.TokenThis:
		return &This{Line: tok.Line}
	case lexer.TokenIdent:
		return p.identifierOrArrow(tok)
	case lexer.TokenLParen:
		return p.parenOrArrow(tok)
	case lexer.TokenLBracket:
		return p.listLiteral(tok)
	case lexer.TokenLBrace:
		return p.objectLiteral(tok)
	case lexer.TokenFunction:
		return p.functionExpr(tok)
	default:
		panic(p.errorAt(tok, "unexpected token %q in expression", tok.Lexeme))
	}
}

// identifierOrArrow handles the single-parameter arrow shorthand
// `x => expr`, which starts indistinguishably from a bare identifier.
func (p *Parser) identifierOrArrow(tok lexer.Token) Expr {
	if p.check(lexer.TokenArrow) {
		p.advance()
		return p.arrowBody([]string{tok.Lexeme}, tok.Line)
	}
	return &Variable{Name: tok.Lexeme, Line: tok.Line}
}

// parenOrArrow disambiguates `(expr)` from `(params) => body` by
// scanning ahead for the arrow after the matching ')'.
func (p *Parser) parenOrArrow(tok lexer.Token) Expr {
	if p.looksLikeArrowParams() {
		params := p.arrowParamList()
		p.consume(lexer.TokenArrow, "expect '=>' after arrow parameter list")
		return p.arrowBody(params, tok.Line)
	}
	expr := p.expression()
	p.consume(lexer.TokenRParen, "expect ')' after expression")
	return expr
}

// looksLikeArrowParams scans forward from the just-consumed '(' to see
// whether the matching ')' is followed by '=>', without committing to
// either parse path.
func (p *Parser) looksLikeArrowParams() bool {
	depth := 1
	i := p.current
	for i < len(p.tokens) && depth > 0 {
		switch p.tokens[i].Kind {
		case lexer.TokenLParen:
			depth++
		case lexer.TokenRParen:
			depth--
		}
		i++
	}
	return i < len(p.tokens) && p.tokens[i].Kind == lexer.TokenArrow
}

func (p *Parser) arrowParamList() []string {
	var params []string
	if !p.check(lexer.TokenRParen) {
		params = append(params, p.consume(lexer.TokenIdent, "expect parameter name").Lexeme)
		for p.match(lexer.TokenComma) {
			params = append(params, p.consume(lexer.TokenIdent, "expect parameter name").Lexeme)
		}
	}
	p.consume(lexer.TokenRParen, "expect ')' after arrow parameters")
	return params
}

func (p *Parser) arrowBody(params []string, line int) Expr {
	if p.match(lexer.TokenLBrace) {
		return &ArrowExpr{Params: params, Body: p.block(), Line: line}
	}
	return &ArrowExpr{Params: params, ExprBody: p.assignment(), Line: line}
}

func (p *Parser) listLiteral(tok lexer.Token) Expr {
	var elements []Expr
	if !p.check(lexer.TokenRBracket) {
		elements = append(elements, p.expression())
		for p.match(lexer.TokenComma) {
			elements = append(elements, p.expression())
		}
	}
	p.consume(lexer.TokenRBracket, "expect ']' after list elements")
	return &ListLiteral{Elements: elements, Line: tok.Line}
}

func (p *Parser) objectLiteral(tok lexer.Token) Expr {
	var keys []string
	var values []Expr
	for !p.check(lexer.TokenRBrace) && !p.isAtEnd() {
		var key string
		switch {
		case p.check(lexer.TokenIdent):
			key = p.advance().Lexeme
		case p.check(lexer.TokenString):
			key = p.advance().Literal.(string)
		default:
			panic(p.errorAt(p.peek(), "expect property name in object literal"))
		}
		p.consume(lexer.TokenColon, "expect ':' after object key")
		keys = append(keys, key)
		values = append(values, p.expression())
		if !p.match(lexer.TokenComma) {
			break
		}
	}
	p.consume(lexer.TokenRBrace, "expect '}' after object literal")
	return &ObjectLiteral{Keys: keys, Values: values, Line: tok.Line}
}

func (p *Parser) functionExpr(tok lexer.Token) Expr {
	var name string
	if p.check(lexer.TokenIdent) {
		name = p.advance().Lexeme
	}
	params := p.paramList()
	body := p.functionBody()
	return &FunctionExpr{Name: name, Params: params, Body: body, Line: tok.Line}
}
