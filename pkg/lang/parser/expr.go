package parser

import (
	"strconv"

	"github.com/helixdb/helixql/pkg/lang/ast"
	"github.com/helixdb/helixql/pkg/lang/token"
)

func (p *Parser) parseExpression() (ast.Expression, error) {
	switch {
	case p.cur().Type == token.STRING:
		t := p.advance()
		return &ast.Literal{Pos: t.Pos, Value: ast.LiteralValue{Kind: "String", Str: t.Literal}}, nil
	case p.cur().Type == token.INTEGER:
		t := p.advance()
		n, err := strconv.ParseInt(t.Literal, 10, 64)
		if err != nil {
			return nil, &Error{Pos: t.Pos, Expected: "a valid integer", Found: t.Literal}
		}
		return &ast.Literal{Pos: t.Pos, Value: ast.LiteralValue{Kind: "Integer", Int: n}}, nil
	case p.cur().Type == token.FLOAT:
		t := p.advance()
		f, err := strconv.ParseFloat(t.Literal, 64)
		if err != nil {
			return nil, &Error{Pos: t.Pos, Expected: "a valid float", Found: t.Literal}
		}
		return &ast.Literal{Pos: t.Pos, Value: ast.LiteralValue{Kind: "Float", Float: f}}, nil
	case p.cur().Type == token.LBRACKET:
		return p.parseArrayLiteral()
	case p.atIdent("NONE"):
		t := p.advance()
		return &ast.Literal{Pos: t.Pos, Value: ast.LiteralValue{Kind: "Null"}}, nil
	case p.atIdent("true") || p.atIdent("false"):
		t := p.advance()
		return &ast.Literal{Pos: t.Pos, Value: ast.LiteralValue{Kind: "Boolean", Bool: t.Literal == "true"}}, nil
	case p.atIdent("AND"):
		return p.parseVariadicBool(func(pos ast.Position, ops []ast.Expression) ast.Expression {
			return &ast.And{Pos: pos, Operands: ops}
		})
	case p.atIdent("OR"):
		return p.parseVariadicBool(func(pos ast.Position, ops []ast.Expression) ast.Expression {
			return &ast.Or{Pos: pos, Operands: ops}
		})
	case p.atIdent("EXISTS"):
		t := p.advance()
		if _, err := p.expect(token.LPAREN, "("); err != nil {
			return nil, err
		}
		inner, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN, ")"); err != nil {
			return nil, err
		}
		return &ast.Exists{Pos: t.Pos, Traversal: inner}, nil
	case p.atIdent("SearchV"):
		return p.parseSearchV()
	case p.atIdent("AddN"):
		return p.parseAddN()
	case p.atIdent("AddV"):
		return p.parseAddV()
	case p.atIdent("AddE"):
		return p.parseAddE()
	case p.atIdent("BatchAddV"):
		return p.parseBatchAddV()
	case p.atIdent("ID"):
		t := p.advance()
		return &ast.Traversal{Pos: t.Pos, Start: ast.TraversalStart{Pos: t.Pos, Kind: ast.StartAnonymous}, Steps: []ast.Step{&ast.IDStep{Pos: t.Pos}}}, nil
	case p.atIdent("COUNT"):
		t := p.advance()
		return &ast.Traversal{Pos: t.Pos, Start: ast.TraversalStart{Pos: t.Pos, Kind: ast.StartAnonymous}, Steps: []ast.Step{&ast.CountStep{Pos: t.Pos}}}, nil
	default:
		return p.parseTraversal()
	}
}

func (p *Parser) parseVariadicBool(make func(ast.Position, []ast.Expression) ast.Expression) (ast.Expression, error) {
	t := p.advance()
	if _, err := p.expect(token.LPAREN, "("); err != nil {
		return nil, err
	}
	var ops []ast.Expression
	for p.cur().Type != token.RPAREN {
		e, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		ops = append(ops, e)
		if p.cur().Type == token.COMMA {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(token.RPAREN, ")"); err != nil {
		return nil, err
	}
	return make(t.Pos, ops), nil
}

func (p *Parser) parseArrayLiteral() (ast.Expression, error) {
	start := p.advance() // "["
	var elems []ast.LiteralValue
	for p.cur().Type != token.RBRACKET {
		e, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		lit, ok := e.(*ast.Literal)
		if !ok {
			return nil, &Error{Pos: e.ExprPos(), Expected: "a literal inside an array literal", Found: ""}
		}
		elems = append(elems, lit.Value)
		if p.cur().Type == token.COMMA {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(token.RBRACKET, "]"); err != nil {
		return nil, err
	}
	return &ast.Literal{Pos: start.Pos, Value: ast.LiteralValue{Kind: "Array", Array: elems}}, nil
}

func (p *Parser) parseTypeArg() (string, error) {
	if _, err := p.expect(token.LT, "<"); err != nil {
		return "", err
	}
	nameTok, err := p.expect(token.IDENT, "a type name")
	if err != nil {
		return "", err
	}
	if _, err := p.expect(token.GT, ">"); err != nil {
		return "", err
	}
	return nameTok.Literal, nil
}

// parseTraversal parses a start step (N/E/V scan, a bound-variable
// reference, or the anonymous `_`) followed by zero or more `::` steps.
func (p *Parser) parseTraversal() (ast.Expression, error) {
	start := p.cur()
	var ts ast.TraversalStart

	switch {
	case p.cur().Type == token.UNDERSCORE:
		p.advance()
		ts = ast.TraversalStart{Pos: start.Pos, Kind: ast.StartAnonymous}
	case p.atIdent("N"), p.atIdent("E"), p.atIdent("V"):
		kindTok := p.advance()
		ts = ast.TraversalStart{Pos: start.Pos}
		switch kindTok.Literal {
		case "N":
			ts.Kind = ast.StartNode
		case "E":
			ts.Kind = ast.StartEdge
		case "V":
			ts.Kind = ast.StartVector
		}
		if p.cur().Type == token.LT {
			typeName, err := p.parseTypeArg()
			if err != nil {
				return nil, err
			}
			ts.Type = typeName
		}
		if p.cur().Type == token.LPAREN {
			p.advance()
			var ids []ast.Expression
			for p.cur().Type != token.RPAREN {
				e, err := p.parseExpression()
				if err != nil {
					return nil, err
				}
				ids = append(ids, e)
				if p.cur().Type == token.COMMA {
					p.advance()
					continue
				}
				break
			}
			if _, err := p.expect(token.RPAREN, ")"); err != nil {
				return nil, err
			}
			ts.IDs = ids
		}
	case p.cur().Type == token.IDENT:
		nameTok := p.advance()
		ts = ast.TraversalStart{Pos: start.Pos, Kind: ast.StartVariable, Name: nameTok.Literal}
	default:
		return nil, &Error{Pos: start.Pos, Expected: "an expression", Found: p.cur().Literal}
	}

	trav := &ast.Traversal{Pos: start.Pos, Start: ts}
	for p.cur().Type == token.COLONCOLON {
		p.advance()
		step, err := p.parseStep()
		if err != nil {
			return nil, err
		}
		trav.Steps = append(trav.Steps, step)
	}

	// A bound-variable reference with no `::` steps is just an Ident, not a
	// Traversal (spec.md's Expression::Identifier equivalent).
	if ts.Kind == ast.StartVariable && len(trav.Steps) == 0 {
		return &ast.Ident{Pos: start.Pos, Name: ts.Name}, nil
	}
	return trav, nil
}
