package parser

import (
	"github.com/helixdb/helixql/pkg/lang/ast"
	"github.com/helixdb/helixql/pkg/lang/token"
)

func (p *Parser) parseStep() (ast.Step, error) {
	switch {
	case p.cur().Type == token.LBRACE:
		obj, err := p.parseObjectLiteral()
		if err != nil {
			return nil, err
		}
		return obj, nil
	case p.cur().Type == token.BANG:
		return p.parseExcludeFieldStep()
	case p.cur().Type == token.PIPE:
		return p.parseClosureStep()
	case p.atIdent("Out"), p.atIdent("In"), p.atIdent("Both"), p.atIdent("OutE"), p.atIdent("InE"), p.atIdent("BothE"):
		return p.parseGraphStep()
	case p.atIdent("WHERE"):
		return p.parseWhereStep()
	case p.atIdent("RANGE"):
		return p.parseRangeStep()
	case p.atIdent("COUNT"):
		t := p.advance()
		return &ast.CountStep{Pos: t.Pos}, nil
	case p.atIdent("ID"):
		t := p.advance()
		return &ast.IDStep{Pos: t.Pos}, nil
	case p.atIdent("UPDATE"):
		return p.parseUpdateStep()
	case p.atIdent("DROP"):
		t := p.advance()
		return &ast.DropStep{Pos: t.Pos}, nil
	case p.atIdent("GT"), p.atIdent("GTE"), p.atIdent("LT"), p.atIdent("LTE"), p.atIdent("EQ"), p.atIdent("NEQ"):
		return p.parseComparator()
	default:
		t := p.cur()
		return nil, &Error{Pos: t.Pos, Expected: "a traversal step", Found: t.Literal}
	}
}

func (p *Parser) parseGraphStep() (*ast.GraphStep, error) {
	nameTok := p.advance()
	g := &ast.GraphStep{Pos: nameTok.Pos}
	switch nameTok.Literal {
	case "Out":
		g.Dir = ast.DirOut
	case "In":
		g.Dir = ast.DirIn
	case "Both":
		g.Dir = ast.DirBoth
	case "OutE":
		g.Dir, g.EmitEdges = ast.DirOut, true
	case "InE":
		g.Dir, g.EmitEdges = ast.DirIn, true
	case "BothE":
		g.Dir, g.EmitEdges = ast.DirBoth, true
	}
	if p.cur().Type == token.LT {
		typeName, err := p.parseTypeArg()
		if err != nil {
			return nil, err
		}
		g.EdgeType = typeName
	}
	return g, nil
}

func (p *Parser) parseWhereStep() (*ast.WhereStep, error) {
	t := p.advance()
	if _, err := p.expect(token.LPAREN, "("); err != nil {
		return nil, err
	}
	pred, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN, ")"); err != nil {
		return nil, err
	}
	return &ast.WhereStep{Pos: t.Pos, Pred: pred}, nil
}

func (p *Parser) parseRangeStep() (*ast.RangeStep, error) {
	t := p.advance()
	if _, err := p.expect(token.LPAREN, "("); err != nil {
		return nil, err
	}
	lo, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.COMMA, ","); err != nil {
		return nil, err
	}
	hi, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN, ")"); err != nil {
		return nil, err
	}
	return &ast.RangeStep{Pos: t.Pos, Lo: lo, Hi: hi}, nil
}

func (p *Parser) parseComparator() (*ast.Comparator, error) {
	nameTok := p.advance()
	c := &ast.Comparator{Pos: nameTok.Pos}
	switch nameTok.Literal {
	case "GT":
		c.Kind = ast.CmpGT
	case "GTE":
		c.Kind = ast.CmpGTE
	case "LT":
		c.Kind = ast.CmpLT
	case "LTE":
		c.Kind = ast.CmpLTE
	case "EQ":
		c.Kind = ast.CmpEQ
	case "NEQ":
		c.Kind = ast.CmpNEQ
	}
	if _, err := p.expect(token.LPAREN, "("); err != nil {
		return nil, err
	}
	val, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN, ")"); err != nil {
		return nil, err
	}
	c.Value = val
	return c, nil
}

// parseMappingFieldList parses the comma-separated body of an object
// literal, stopping at "}". A bare `..` token sets spread; each other item
// is `name` (shorthand) or `name: expr`.
func (p *Parser) parseMappingFieldList() ([]ast.MappingField, bool, error) {
	var fields []ast.MappingField
	spread := false
	for p.cur().Type != token.RBRACE {
		if p.cur().Type == token.DOTDOT {
			p.advance()
			spread = true
		} else {
			nameTok, err := p.expect(token.IDENT, "a field name")
			if err != nil {
				return nil, false, err
			}
			mf := ast.MappingField{Pos: nameTok.Pos, Name: nameTok.Literal}
			if p.cur().Type == token.COLON {
				p.advance()
				val, err := p.parseExpression()
				if err != nil {
					return nil, false, err
				}
				mf.Expr = val
			}
			fields = append(fields, mf)
		}
		if p.cur().Type == token.COMMA {
			p.advance()
			continue
		}
		break
	}
	return fields, spread, nil
}

func (p *Parser) parseObjectLiteral() (*ast.ObjectStep, error) {
	start := p.advance() // "{"
	fields, spread, err := p.parseMappingFieldList()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RBRACE, "}"); err != nil {
		return nil, err
	}
	return &ast.ObjectStep{Pos: start.Pos, Fields: fields, HasSpread: spread}, nil
}

func (p *Parser) parseExcludeFieldStep() (*ast.ExcludeFieldStep, error) {
	start := p.advance() // "!"
	if _, err := p.expect(token.LBRACE, "{"); err != nil {
		return nil, err
	}
	var names []string
	for p.cur().Type != token.RBRACE {
		t, err := p.expect(token.IDENT, "a field name")
		if err != nil {
			return nil, err
		}
		names = append(names, t.Literal)
		if p.cur().Type == token.COMMA {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(token.RBRACE, "}"); err != nil {
		return nil, err
	}
	return &ast.ExcludeFieldStep{Pos: start.Pos, Exclude: names}, nil
}

func (p *Parser) parseClosureStep() (*ast.ClosureStep, error) {
	start := p.advance() // "|"
	paramTok, err := p.expect(token.IDENT, "a closure parameter name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.PIPE, "|"); err != nil {
		return nil, err
	}
	obj, err := p.parseObjectLiteral()
	if err != nil {
		return nil, err
	}
	return &ast.ClosureStep{Pos: start.Pos, Param: paramTok.Literal, Object: *obj}, nil
}

func (p *Parser) parseUpdateStep() (*ast.UpdateStep, error) {
	start := p.advance() // "UPDATE"
	if _, err := p.expect(token.LPAREN, "("); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LBRACE, "{"); err != nil {
		return nil, err
	}
	fields, _, err := p.parseMappingFieldList()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RBRACE, "}"); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN, ")"); err != nil {
		return nil, err
	}
	return &ast.UpdateStep{Pos: start.Pos, Fields: fields}, nil
}

func (p *Parser) parseSearchV() (*ast.SearchVExpr, error) {
	start := p.advance() // "SearchV"
	typeName, err := p.parseTypeArg()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LPAREN, "("); err != nil {
		return nil, err
	}
	q, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.COMMA, ","); err != nil {
		return nil, err
	}
	k, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN, ")"); err != nil {
		return nil, err
	}
	return &ast.SearchVExpr{Pos: start.Pos, Type: typeName, Query: q, K: k}, nil
}

func (p *Parser) parseAddN() (*ast.AddNExpr, error) {
	start := p.advance() // "AddN"
	typeName, err := p.parseTypeArg()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LPAREN, "("); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LBRACE, "{"); err != nil {
		return nil, err
	}
	fields, _, err := p.parseMappingFieldList()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RBRACE, "}"); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN, ")"); err != nil {
		return nil, err
	}
	return &ast.AddNExpr{Pos: start.Pos, Type: typeName, Props: fields}, nil
}

func (p *Parser) parseAddV() (*ast.AddVExpr, error) {
	start := p.advance() // "AddV"
	typeName, err := p.parseTypeArg()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LPAREN, "("); err != nil {
		return nil, err
	}
	v, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN, ")"); err != nil {
		return nil, err
	}
	return &ast.AddVExpr{Pos: start.Pos, Type: typeName, Vector: v}, nil
}

func (p *Parser) parseBatchAddV() (*ast.BatchAddVExpr, error) {
	start := p.advance() // "BatchAddV"
	typeName, err := p.parseTypeArg()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LPAREN, "("); err != nil {
		return nil, err
	}
	idTok, err := p.expect(token.IDENT, "an identifier")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN, ")"); err != nil {
		return nil, err
	}
	return &ast.BatchAddVExpr{Pos: start.Pos, Type: typeName, Identifier: idTok.Literal}, nil
}

func (p *Parser) parseAddE() (*ast.AddEExpr, error) {
	start := p.advance() // "AddE"
	typeName, err := p.parseTypeArg()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LPAREN, "("); err != nil {
		return nil, err
	}
	var fields []ast.MappingField
	if p.cur().Type == token.LBRACE {
		p.advance()
		fields, _, err = p.parseMappingFieldList()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RBRACE, "}"); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.RPAREN, ")"); err != nil {
		return nil, err
	}

	add := &ast.AddEExpr{Pos: start.Pos, Type: typeName, Props: fields}
	for p.cur().Type == token.COLONCOLON {
		save := p.pos
		p.advance()
		switch {
		case p.atIdent("From"):
			p.advance()
			if _, err := p.expect(token.LPAREN, "("); err != nil {
				return nil, err
			}
			e, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.RPAREN, ")"); err != nil {
				return nil, err
			}
			add.From = e
		case p.atIdent("To"):
			p.advance()
			if _, err := p.expect(token.LPAREN, "("); err != nil {
				return nil, err
			}
			e, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.RPAREN, ")"); err != nil {
				return nil, err
			}
			add.To = e
		default:
			p.pos = save
			return add, nil
		}
	}
	return add, nil
}
