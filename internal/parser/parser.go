// Package parser implements a recursive-descent, precedence-climbing
// parser over internal/lexer's token stream, producing the AST
// consumed by internal/compiler.
package parser

import (
	"nimbus/internal/errors"
	"nimbus/internal/lexer"
)

// precedence climbs loosest-to-tightest per spec.md §4.2. Assignment,
// ternary and unary are handled structurally (not via this table)
// because they aren't simple left-associative binary operators.
var precedence = map[lexer.TokenType]int{
	lexer.TokenOr:  1,
	lexer.TokenAnd: 2,

	lexer.TokenEqualEqual:      3,
	lexer.TokenBangEqual:       3,
	lexer.TokenEqualEqualEqual: 3,
	lexer.TokenBangEqualEqual:  3,

	lexer.TokenLess:         4,
	lexer.TokenGreater:      4,
	lexer.TokenLessEqual:    4,
	lexer.TokenGreaterEqual: 4,

	lexer.TokenPlus:  5,
	lexer.TokenMinus: 5,

	lexer.TokenStar:    6,
	lexer.TokenSlash:   6,
	lexer.TokenPercent: 6,
}

var compoundAssignOps = map[lexer.TokenType]string{
	lexer.TokenPlusEqual:    "+",
	lexer.TokenMinusEqual:   "-",
	lexer.TokenStarEqual:    "*",
	lexer.TokenSlashEqual:   "/",
	lexer.TokenPercentEqual: "%",
}

// Parser turns a token stream into a list of top-level statements. It
// collects ParseErrors as it goes (SPEC_FULL.md §4.2) rather than
// raising on the first one; a panic/recover boundary at Parse still
// catches anything structurally unexpected.
type Parser struct {
	tokens  []lexer.Token
	current int
	file    string
	Errors  []*errors.Error
}

func NewParser(tokens []lexer.Token, file string) *Parser {
	return &Parser{tokens: tokens, file: file}
}

// Parse returns every top-level statement it could recover past. Check
// p.Errors afterward; a non-empty slice means the AST is best-effort.
func (p *Parser) Parse() []Stmt {
	var stmts []Stmt
	for !p.isAtEnd() {
		stmts = append(stmts, p.declaration())
	}
	return stmts
}

func (p *Parser) declaration() Stmt {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(*errors.Error); ok {
				p.Errors = append(p.Errors, e)
				p.synchronize()
				return
			}
			panic(r)
		}
	}()
	return p.statementOrPanic()
}

// synchronize discards tokens until a plausible statement boundary so
// one syntax error doesn't cascade into spurious follow-on errors.
func (p *Parser) synchronize() {
	for !p.isAtEnd() {
		if p.previous().Kind == lexer.TokenSemicolon {
			return
		}
		switch p.peek().Kind {
		case lexer.TokenClass, lexer.TokenFunction, lexer.TokenVar, lexer.TokenConst,
			lexer.TokenFor, lexer.TokenIf, lexer.TokenWhile, lexer.TokenReturn:
			return
		}
		p.advance()
	}
}

func (p *Parser) statementOrPanic() Stmt {
	switch {
	case p.match(lexer.TokenVar):
		return p.varDeclaration(false)
	case p.match(lexer.TokenConst):
		return p.varDeclaration(true)
	case p.match(lexer.TokenFunction):
		return p.functionDeclaration()
	case p.match(lexer.TokenClass):
		return p.classDeclaration()
	case p.match(lexer.TokenImport):
		return p.importStatement()
	case p.match(lexer.TokenExport):
		return p.exportStatement()
	case p.match(lexer.TokenIf):
		return p.ifStatement()
	case p.match(lexer.TokenWhile):
		return p.whileStatement()
	case p.match(lexer.TokenFor):
		return p.forStatement()
	case p.match(lexer.TokenReturn):
		return p.returnStatement()
	case p.match(lexer.TokenLBrace):
		return &BlockStmt{Stmts: p.block()}
	default:
		return p.expressionStatement()
	}
}

func (p *Parser) varDeclaration(isConst bool) Stmt {
	line := p.previous().Line
	name := p.consume(lexer.TokenIdent, "expect variable name").Lexeme
	var init Expr
	if p.match(lexer.TokenEqual) {
		init = p.expression()
	}
	p.matchSemicolon()
	return &VarStmt{Name: name, Init: init, IsConst: isConst, Line: line}
}

func (p *Parser) functionDeclaration() Stmt {
	line := p.previous().Line
	name := p.consume(lexer.TokenIdent, "expect function name").Lexeme
	params := p.paramList()
	body := p.functionBody()
	return &FunctionStmt{Name: name, Params: params, Body: body, Line: line}
}

func (p *Parser) classDeclaration() Stmt {
	line := p.previous().Line
	name := p.consume(lexer.TokenIdent, "expect class name").Lexeme
	p.consume(lexer.TokenLBrace, "expect '{' before class body")
	var methods []*FunctionStmt
	for !p.check(lexer.TokenRBrace) && !p.isAtEnd() {
		methodLine := p.peek().Line
		methodName := p.consume(lexer.TokenIdent, "expect method name").Lexeme
		params := p.paramList()
		body := p.functionBody()
		methods = append(methods, &FunctionStmt{Name: methodName, Params: params, Body: body, Line: methodLine})
	}
	p.consume(lexer.TokenRBrace, "expect '}' after class body")
	return &ClassStmt{Name: name, Methods: methods, Line: line}
}

func (p *Parser) importStatement() Stmt {
	line := p.previous().Line
	p.consume(lexer.TokenLBrace, "expect '{' after import")
	var specifiers []string
	if !p.check(lexer.TokenRBrace) {
		specifiers = append(specifiers, p.consume(lexer.TokenIdent, "expect import name").Lexeme)
		for p.match(lexer.TokenComma) {
			specifiers = append(specifiers, p.consume(lexer.TokenIdent, "expect import name").Lexeme)
		}
	}
	p.consume(lexer.TokenRBrace, "expect '}' after import specifiers")
	p.consume(lexer.TokenFrom, "expect 'from' after import specifiers")
	path := p.consume(lexer.TokenString, "expect module path string").Literal.(string)
	p.matchSemicolon()
	return &ImportStmt{Specifiers: specifiers, Path: path, Line: line}
}

func (p *Parser) exportStatement() Stmt {
	line := p.previous().Line
	p.consume(lexer.TokenLBrace, "expect '{' after export")
	var names []string
	if !p.check(lexer.TokenRBrace) {
		names = append(names, p.consume(lexer.TokenIdent, "expect export name").Lexeme)
		for p.match(lexer.TokenComma) {
			names = append(names, p.consume(lexer.TokenIdent, "expect export name").Lexeme)
		}
	}
	p.consume(lexer.TokenRBrace, "expect '}' after export specifiers")
	p.matchSemicolon()
	return &ExportStmt{Names: names, Line: line}
}

func (p *Parser) ifStatement() Stmt {
	p.consume(lexer.TokenLParen, "expect '(' after 'if'")
	cond := p.expression()
	p.consume(lexer.TokenRParen, "expect ')' after if condition")
	then := p.statementOrPanic()
	var elseBranch Stmt
	if p.match(lexer.TokenElse) {
		elseBranch = p.statementOrPanic()
	}
	return &IfStmt{Cond: cond, Then: then, Else: elseBranch}
}

func (p *Parser) whileStatement() Stmt {
	p.consume(lexer.TokenLParen, "expect '(' after 'while'")
	cond := p.expression()
	p.consume(lexer.TokenRParen, "expect ')' after while condition")
	body := p.statementOrPanic()
	return &WhileStmt{Cond: cond, Body: body}
}

// forStatement desugars `for (init; cond; inc) body` into a block
// containing init followed by `while (cond) { body; inc; }`, per
// spec.md §4.3 — there is no ForStmt AST node.
func (p *Parser) forStatement() Stmt {
	p.consume(lexer.TokenLParen, "expect '(' after 'for'")

	var init Stmt
	if !p.check(lexer.TokenSemicolon) {
		switch {
		case p.match(lexer.TokenVar):
			init = p.varDeclaration(false)
		case p.match(lexer.TokenConst):
			init = p.varDeclaration(true)
		default:
			init = &ExpressionStmt{Expr: p.expression()}
			p.matchSemicolon()
		}
	} else {
		p.advance() // consume the ';'
	}

	var cond Expr = &Literal{Value: true}
	if !p.check(lexer.TokenSemicolon) {
		cond = p.expression()
	}
	p.consume(lexer.TokenSemicolon, "expect ';' after for condition")

	var inc Expr
	if !p.check(lexer.TokenRParen) {
		inc = p.expression()
	}
	p.consume(lexer.TokenRParen, "expect ')' after for clauses")

	body := p.statementOrPanic()
	loopBody := []Stmt{body}
	if inc != nil {
		loopBody = append(loopBody, &ExpressionStmt{Expr: inc})
	}

	whileStmt := &WhileStmt{Cond: cond, Body: &BlockStmt{Stmts: loopBody}}
	if init == nil {
		return whileStmt
	}
	return &BlockStmt{Stmts: []Stmt{init, whileStmt}}
}

func (p *Parser) returnStatement() Stmt {
	line := p.previous().Line
	var value Expr
	if !p.check(lexer.TokenSemicolon) && !p.check(lexer.TokenRBrace) && !p.isAtEnd() {
		value = p.expression()
	}
	p.matchSemicolon()
	return &ReturnStmt{Value: value, Line: line}
}

func (p *Parser) expressionStatement() Stmt {
	expr := p.expression()
	p.matchSemicolon()
	return &ExpressionStmt{Expr: expr}
}

func (p *Parser) block() []Stmt {
	var stmts []Stmt
	for !p.check(lexer.TokenRBrace) && !p.isAtEnd() {
		stmts = append(stmts, p.declaration())
	}
	p.consume(lexer.TokenRBrace, "expect '}' after block")
	return stmts
}

func (p *Parser) paramList() []string {
	p.consume(lexer.TokenLParen, "expect '(' before parameter list")
	var params []string
	if !p.check(lexer.TokenRParen) {
		params = append(params, p.consume(lexer.TokenIdent, "expect parameter name").Lexeme)
		for p.match(lexer.TokenComma) {
			params = append(params, p.consume(lexer.TokenIdent, "expect parameter name").Lexeme)
		}
	}
	p.consume(lexer.TokenRParen, "expect ')' after parameter list")
	return params
}

func (p *Parser) functionBody() []Stmt {
	p.consume(lexer.TokenLBrace, "expect '{' before function body")
	return p.block()
}

// matchSemicolon consumes an optional trailing ';' — statements don't
// require one, matching the teacher's tolerant statement boundaries.
func (p *Parser) matchSemicolon() {
	p.match(lexer.TokenSemicolon)
}
