// Package token defines the lexical tokens of the HelixQL grammar (spec.md
// §6.1): schema declarations, QUERY definitions, traversal steps, and the
// literal/punctuation vocabulary they're built from.
package token

// Type identifies the lexical class of a Token.
type Type int

const (
	EOF Type = iota
	ILLEGAL

	IDENT   // identifier, lower or upper initial
	STRING  // "..."
	INTEGER // 123
	FLOAT   // 1.5

	// Punctuation
	COLONCOLON // ::
	LT         // <
	GT         // >
	LPAREN     // (
	RPAREN     // )
	LBRACE     // {
	RBRACE     // }
	LBRACKET   // [
	RBRACKET   // ]
	COMMA      // ,
	COLON      // :
	ARROW      // =>
	LARROW     // <-
	BANG       // !
	PIPE       // |
	DOTDOT     // ..
	DOT        // .
	UNDERSCORE // _
)

// Position records where a token began, for diagnostics (spec.md §4.A:
// "Source positions are retained on every AST node").
type Position struct {
	Line int
	Col  int
}

// Token is one lexical unit.
type Token struct {
	Type    Type
	Literal string
	Pos     Position
}

// keywords holds the reserved words of the grammar. Everything else that
// lexes as IDENT is either a user identifier or a schema type name;
// case-initial (upper vs lower) is a parser/semantic concern, not a lexer
// one, mirroring how aabr2612's tokenizer leaves casing alone.
var keywords = map[string]bool{
	"QUERY": true, "RETURN": true, "WHERE": true, "EXISTS": true,
	"AND": true, "OR": true,
	"GT": true, "GTE": true, "LT": true, "LTE": true, "EQ": true, "NEQ": true,
	"COUNT": true, "ID": true, "RANGE": true,
	"AddN": true, "AddV": true, "AddE": true, "BatchAddV": true,
	"UPDATE": true, "DROP": true, "SearchV": true,
	"From": true, "To": true, "Properties": true, "NONE": true,
	"Out": true, "In": true, "Both": true, "OutE": true, "InE": true, "BothE": true,
	"String": true, "Integer": true, "Float": true, "Boolean": true,
}

// IsKeyword reports whether literal is a reserved word of the grammar.
func IsKeyword(literal string) bool {
	return keywords[literal]
}
