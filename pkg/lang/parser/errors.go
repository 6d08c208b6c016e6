package parser

import (
	"fmt"

	"github.com/helixdb/helixql/pkg/lang/token"
)

// Error is the ParseError of spec.md §7: `ParseError{pos, expected, found}`.
type Error struct {
	Pos      token.Position
	Expected string
	Found    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("parse error at line %d col %d: expected %s, found %q", e.Pos.Line, e.Pos.Col, e.Expected, e.Found)
}
