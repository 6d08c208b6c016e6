// Package ir is the typed operator representation §4.D of spec.md lowers
// every QueryDecl into: a linear body of bind/eval instructions, each built
// from a small tree of Start/Step operators that pkg/exec interprets
// directly against the Graph and Vector backends. Grounded on the
// teacher's pkg/cypher/traversal.go step-chaining structure and on the
// original Rust implementation's generator.rs, whose codegen branches this
// lowering pass mirrors one-for-one.
package ir

import (
	"github.com/helixdb/helixql/pkg/lang/ast"
	"github.com/helixdb/helixql/pkg/sema"
	"github.com/helixdb/helixql/pkg/value"
)

// GraphDir mirrors ast.GraphStepDir at the IR layer so pkg/ir has no
// dependency on ast beyond lowering.
type GraphDir int

const (
	DirOut GraphDir = iota
	DirIn
	DirBoth
)

// ComparatorKind mirrors ast.ComparatorKind.
type ComparatorKind int

const (
	CmpGT ComparatorKind = iota
	CmpGTE
	CmpLT
	CmpLTE
	CmpEQ
	CmpNEQ
)

// Expr is any IR value-producing node: a literal, a variable reference, a
// full Chain, or one of the boolean/mutating expression forms.
type Expr interface{ exprNode() }

type Lit struct{ Value value.Value }

func (Lit) exprNode() {}

// Var references a query parameter or a body-bound variable by name.
type Var struct{ Name string }

func (Var) exprNode() {}

// ChainExpr wraps a Chain used as a value-producing expression (the usual
// case: every Traversal in the source lowers to one of these).
type ChainExpr struct{ Chain *Chain }

func (ChainExpr) exprNode() {}

type And struct{ Operands []Expr }

func (And) exprNode() {}

type Or struct{ Operands []Expr }

func (Or) exprNode() {}

// Exists wraps a sub-expression (almost always a ChainExpr) whose stream is
// probed for at least one element.
type Exists struct{ Sub Expr }

func (Exists) exprNode() {}

type SearchV struct {
	Type  string
	Query Expr
	K     Expr
}

func (SearchV) exprNode() {}

// FieldAssign is one `name: expr` pair of an AddN/AddE prop map or an
// UPDATE step.
type FieldAssign struct {
	Name  string
	Value Expr
}

type AddNode struct {
	Type  string
	Props []FieldAssign
}

func (AddNode) exprNode() {}

type AddVector struct {
	Type   string
	Vector Expr
}

func (AddVector) exprNode() {}

type BatchAddVector struct {
	Type       string
	Identifier string
}

func (BatchAddVector) exprNode() {}

type AddEdge struct {
	Type  string
	Props []FieldAssign
	From  Expr
	To    Expr
}

func (AddEdge) exprNode() {}

// Start is the first element of a Chain: a scan, a reference to a bound
// variable, or the anonymous current-item binding.
type Start interface{ startNode() }

type ScanNodes struct {
	Type string // "" means Any
	IDs  []Expr
}

func (ScanNodes) startNode() {}

type ScanEdges struct {
	Type string
	IDs  []Expr
}

func (ScanEdges) startNode() {}

type ScanVectors struct {
	Type string
	IDs  []Expr
}

func (ScanVectors) startNode() {}

type VarStart struct{ Name string }

func (VarStart) startNode() {}

// Underscore is bound at evaluation time to the enclosing stream's current
// item (inside Filter predicates, Exists arguments, and projection field
// expressions).
type Underscore struct{}

func (Underscore) startNode() {}

// Step is one link of a Chain after its Start.
type Step interface{ stepNode() }

type Traverse struct {
	Dir       GraphDir
	EdgeType  string // "" means any edge type
	EmitEdges bool
}

func (Traverse) stepNode() {}

// Filter is ::WHERE(pred); Pred is evaluated with the chain's current item
// bound to Underscore.
type Filter struct{ Pred Expr }

func (Filter) stepNode() {}

type Range struct{ Lo, Hi Expr }

func (Range) stepNode() {}

type Count struct{}

func (Count) stepNode() {}

type IDOf struct{}

func (IDOf) stepNode() {}

// FieldAccess projects the current item down to a single declared field's
// scalar value — the lowering of a single shorthand-field object step that
// is immediately followed by a comparator (spec.md §4.C).
type FieldAccess struct{ Field string }

func (FieldAccess) stepNode() {}

// Compare applies a comparator to the chain's current (scalar) value.
type Compare struct {
	Kind  ComparatorKind
	Value Expr
}

func (Compare) stepNode() {}

// ProjectField is one resolved output field of a Project step. Value is nil
// for the shorthand form: the executor resolves Name against the current
// item's declared properties first, falling back to a bound variable of
// the same name (spec.md §4.C's "identifier alone is shorthand for
// identifier: identifier"). Spread and exclude-projection fields always
// lower with Value nil, since they only ever name declared properties.
type ProjectField struct {
	Name  string
	Value Expr
}

// Project is the fully-resolved lowering of an object_step or
// exclude_field step: spread and exclusion have already been expanded into
// an explicit, source-declared-order field list.
type Project struct{ Fields []ProjectField }

func (Project) stepNode() {}

// Closure rebinds the chain's current item to Param before evaluating an
// inner Project.
type Closure struct {
	Param   string
	Project Project
}

func (Closure) stepNode() {}

type Update struct{ Fields []FieldAssign }

func (Update) stepNode() {}

type Drop struct{}

func (Drop) stepNode() {}

// Chain is a Start followed by zero or more Steps; evaluating it folds the
// running value the same way pkg/sema folds its static type.
type Chain struct {
	Start Start
	Steps []Step
}

func (Chain) exprNode() {}

// Instr is one body-level instruction of a lowered query: a binding or a
// bare evaluated expression (for side effects only).
type Instr interface{ instrNode() }

type Bind struct {
	Var   string
	Value Expr
}

func (Bind) instrNode() {}

type Eval struct{ Value Expr }

func (Eval) instrNode() {}

// NoOpDrop is the lowering of a no-argument DROP statement — a warning was
// already emitted by the analyzer; at execution time it does nothing.
type NoOpDrop struct{}

func (NoOpDrop) instrNode() {}

// Param is one query parameter, with its static type carried through from
// the analyzer for runtime argument validation.
type Param struct {
	Name string
	Type sema.Type
}

// Query is one fully lowered QueryDecl.
type Query struct {
	Decl     *ast.QueryDecl
	Params   []Param
	Mutating bool
	Body     []Instr
	Returns  []Expr
}

// Program is every lowered query of a compiled source file, by name.
type Program struct {
	Queries map[string]*Query
}
