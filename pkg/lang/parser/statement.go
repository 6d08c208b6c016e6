package parser

import (
	"github.com/helixdb/helixql/pkg/lang/ast"
	"github.com/helixdb/helixql/pkg/lang/token"
)

func (p *Parser) parseStatement() (ast.Statement, error) {
	if p.atIdent("DROP") {
		return p.parseDropStatement()
	}
	if p.cur().Type == token.IDENT && p.peek(1).Type == token.LARROW {
		nameTok := p.advance()
		p.advance() // "<-"
		val, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		return &ast.Assignment{Pos: nameTok.Pos, Variable: nameTok.Literal, Value: val}, nil
	}
	start := p.cur()
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return &ast.ExprStatement{Pos: start.Pos, Value: expr}, nil
}

func (p *Parser) parseDropStatement() (*ast.DropStatement, error) {
	start := p.advance() // "DROP"
	if p.cur().Type != token.LPAREN {
		return &ast.DropStatement{Pos: start.Pos}, nil
	}
	p.advance()
	target, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN, ")"); err != nil {
		return nil, err
	}
	return &ast.DropStatement{Pos: start.Pos, Target: target}, nil
}
