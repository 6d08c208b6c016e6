// Package parser turns a HelixQL token stream into an ast.Source via
// recursive descent, in the style of aabr2612-KiteDB's graphdb.Parser: a
// token slice, a cursor, and one method per grammar production.
package parser

import (
	"fmt"

	"github.com/helixdb/helixql/pkg/lang/ast"
	"github.com/helixdb/helixql/pkg/lang/lexer"
	"github.com/helixdb/helixql/pkg/lang/token"
)

// Parser consumes a fixed token slice produced by the lexer.
type Parser struct {
	tokens []token.Token
	pos    int
}

// Parse lexes and parses a complete HelixQL source file.
func Parse(src string) (*ast.Source, error) {
	toks, err := lexer.New(src).Tokenize()
	if err != nil {
		return nil, err
	}
	p := &Parser{tokens: toks}
	return p.parseSource()
}

func (p *Parser) cur() token.Token {
	if p.pos >= len(p.tokens) {
		return token.Token{Type: token.EOF}
	}
	return p.tokens[p.pos]
}

func (p *Parser) peek(off int) token.Token {
	i := p.pos + off
	if i >= len(p.tokens) {
		return token.Token{Type: token.EOF}
	}
	return p.tokens[i]
}

func (p *Parser) advance() token.Token {
	t := p.cur()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return t
}

func (p *Parser) expect(tt token.Type, desc string) (token.Token, error) {
	t := p.cur()
	if t.Type != tt {
		return t, &Error{Pos: t.Pos, Expected: desc, Found: t.Literal}
	}
	return p.advance(), nil
}

// expectIdent expects an IDENT token whose literal equals lit exactly
// (used for contextual keywords like "From"/"To"/"Properties" that the
// lexer does not distinguish from ordinary identifiers).
func (p *Parser) expectIdent(lit string) (token.Token, error) {
	t := p.cur()
	if t.Type != token.IDENT || t.Literal != lit {
		return t, &Error{Pos: t.Pos, Expected: fmt.Sprintf("%q", lit), Found: t.Literal}
	}
	return p.advance(), nil
}

func (p *Parser) atIdent(lit string) bool {
	t := p.cur()
	return t.Type == token.IDENT && t.Literal == lit
}

func (p *Parser) parseSource() (*ast.Source, error) {
	src := &ast.Source{}
	for p.cur().Type != token.EOF {
		switch {
		case p.atIdent("N") && p.peek(1).Type == token.COLONCOLON:
			n, err := p.parseNodeDecl()
			if err != nil {
				return nil, err
			}
			src.Nodes = append(src.Nodes, n)
		case p.atIdent("E") && p.peek(1).Type == token.COLONCOLON:
			e, err := p.parseEdgeDecl()
			if err != nil {
				return nil, err
			}
			src.Edges = append(src.Edges, e)
		case p.atIdent("V") && p.peek(1).Type == token.COLONCOLON:
			v, err := p.parseVectorDecl()
			if err != nil {
				return nil, err
			}
			src.Vectors = append(src.Vectors, v)
		case p.atIdent("QUERY"):
			q, err := p.parseQueryDecl()
			if err != nil {
				return nil, err
			}
			src.Queries = append(src.Queries, q)
		default:
			t := p.cur()
			return nil, &Error{Pos: t.Pos, Expected: "N::, E::, V::, or QUERY declaration", Found: t.Literal}
		}
	}
	return src, nil
}

func (p *Parser) parseFieldType() (ast.FieldType, error) {
	t := p.cur()
	if t.Type == token.LBRACKET {
		p.advance()
		inner, err := p.parseFieldType()
		if err != nil {
			return ast.FieldType{}, err
		}
		if _, err := p.expect(token.RBRACKET, "]"); err != nil {
			return ast.FieldType{}, err
		}
		return ast.FieldType{Pos: t.Pos, Name: "Array", ArrayOf: &inner}, nil
	}
	if t.Type != token.IDENT {
		return ast.FieldType{}, &Error{Pos: t.Pos, Expected: "a type name", Found: t.Literal}
	}
	p.advance()
	return ast.FieldType{Pos: t.Pos, Name: t.Literal}, nil
}

func (p *Parser) parseFieldDefList(closing token.Type) ([]ast.FieldDef, error) {
	var fields []ast.FieldDef
	for p.cur().Type != closing {
		nameTok, err := p.expect(token.IDENT, "a field name")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.COLON, ":"); err != nil {
			return nil, err
		}
		ft, err := p.parseFieldType()
		if err != nil {
			return nil, err
		}
		fields = append(fields, ast.FieldDef{Pos: nameTok.Pos, Name: nameTok.Literal, Type: ft})
		if p.cur().Type == token.COMMA {
			p.advance()
			continue
		}
		break
	}
	return fields, nil
}

func (p *Parser) parseNodeDecl() (*ast.NodeDecl, error) {
	start := p.advance() // "N"
	if _, err := p.expect(token.COLONCOLON, "::"); err != nil {
		return nil, err
	}
	nameTok, err := p.expect(token.IDENT, "a node type name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LBRACE, "{"); err != nil {
		return nil, err
	}
	fields, err := p.parseFieldDefList(token.RBRACE)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RBRACE, "}"); err != nil {
		return nil, err
	}
	return &ast.NodeDecl{Pos: start.Pos, Name: nameTok.Literal, Fields: fields}, nil
}

func (p *Parser) parseEdgeDecl() (*ast.EdgeDecl, error) {
	start := p.advance() // "E"
	if _, err := p.expect(token.COLONCOLON, "::"); err != nil {
		return nil, err
	}
	nameTok, err := p.expect(token.IDENT, "an edge type name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LBRACE, "{"); err != nil {
		return nil, err
	}

	decl := &ast.EdgeDecl{Pos: start.Pos, Name: nameTok.Literal}
	for p.cur().Type != token.RBRACE {
		switch {
		case p.atIdent("From"):
			p.advance()
			if _, err := p.expect(token.COLON, ":"); err != nil {
				return nil, err
			}
			t, err := p.expect(token.IDENT, "a node type name")
			if err != nil {
				return nil, err
			}
			decl.From = t.Literal
		case p.atIdent("To"):
			p.advance()
			if _, err := p.expect(token.COLON, ":"); err != nil {
				return nil, err
			}
			t, err := p.expect(token.IDENT, "a node type name")
			if err != nil {
				return nil, err
			}
			decl.To = t.Literal
		case p.atIdent("Properties"):
			p.advance()
			if _, err := p.expect(token.COLON, ":"); err != nil {
				return nil, err
			}
			if _, err := p.expect(token.LBRACE, "{"); err != nil {
				return nil, err
			}
			fields, err := p.parseFieldDefList(token.RBRACE)
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.RBRACE, "}"); err != nil {
				return nil, err
			}
			decl.Properties = fields
		default:
			t := p.cur()
			return nil, &Error{Pos: t.Pos, Expected: "From, To, or Properties", Found: t.Literal}
		}
		if p.cur().Type == token.COMMA {
			p.advance()
		}
	}
	if _, err := p.expect(token.RBRACE, "}"); err != nil {
		return nil, err
	}
	return decl, nil
}

func (p *Parser) parseVectorDecl() (*ast.VectorDecl, error) {
	start := p.advance() // "V"
	if _, err := p.expect(token.COLONCOLON, "::"); err != nil {
		return nil, err
	}
	nameTok, err := p.expect(token.IDENT, "a vector type name")
	if err != nil {
		return nil, err
	}
	return &ast.VectorDecl{Pos: start.Pos, Name: nameTok.Literal}, nil
}

func (p *Parser) parseQueryDecl() (*ast.QueryDecl, error) {
	start := p.advance() // "QUERY"
	nameTok, err := p.expect(token.IDENT, "a query name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LPAREN, "("); err != nil {
		return nil, err
	}
	var params []ast.Parameter
	for p.cur().Type != token.RPAREN {
		pt, err := p.expect(token.IDENT, "a parameter name")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.COLON, ":"); err != nil {
			return nil, err
		}
		ft, err := p.parseFieldType()
		if err != nil {
			return nil, err
		}
		params = append(params, ast.Parameter{Pos: pt.Pos, Name: pt.Literal, Type: ft})
		if p.cur().Type == token.COMMA {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(token.RPAREN, ")"); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.ARROW, "=>"); err != nil {
		return nil, err
	}

	var body []ast.Statement
	for !p.atIdent("RETURN") {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		body = append(body, stmt)
	}

	if _, err := p.expectIdent("RETURN"); err != nil {
		return nil, err
	}
	var returns []ast.Expression
	for {
		e, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		returns = append(returns, e)
		if p.cur().Type == token.COMMA {
			p.advance()
			continue
		}
		break
	}

	return &ast.QueryDecl{Pos: start.Pos, Name: nameTok.Literal, Parameters: params, Body: body, Returns: returns}, nil
}
