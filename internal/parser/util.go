package parser

import (
	"nimbus/internal/errors"
	"nimbus/internal/lexer"
)

func (p *Parser) match(kind lexer.TokenType) bool {
	if p.check(kind) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) check(kind lexer.TokenType) bool {
	if p.isAtEnd() {
		return false
	}
	return p.peek().Kind == kind
}

func (p *Parser) consume(kind lexer.TokenType, msg string) lexer.Token {
	if p.check(kind) {
		return p.advance()
	}
	panic(p.errorAt(p.peek(), "%s (got %q)", msg, p.peek().Lexeme))
}

func (p *Parser) advance() lexer.Token {
	if !p.isAtEnd() {
		p.current++
	}
	return p.tokens[p.current-1]
}

func (p *Parser) peek() lexer.Token {
	return p.tokens[p.current]
}

func (p *Parser) previous() lexer.Token {
	return p.tokens[p.current-1]
}

func (p *Parser) isAtEnd() bool {
	return p.peek().Kind == lexer.TokenEOF
}

func (p *Parser) errorAt(tok lexer.Token, format string, args ...interface{}) *errors.Error {
	return errors.New(errors.Parse, p.file, tok.Line, format, args...)
}
