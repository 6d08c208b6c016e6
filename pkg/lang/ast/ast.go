// Package ast defines the abstract syntax produced by pkg/lang/parser from
// HelixQL source text (spec.md §4.A). Every node retains its source
// Position so the analyzer and executor can attach diagnostics precisely.
package ast

import "github.com/helixdb/helixql/pkg/lang/token"

// Position is re-exported from token for callers that don't otherwise
// depend on the lexer.
type Position = token.Position

// Source is the root of a parsed file: an unordered bag of schema
// declarations and query definitions (spec.md §6.1 — "zero or more
// declarations in any order").
type Source struct {
	Nodes   []*NodeDecl
	Edges   []*EdgeDecl
	Vectors []*VectorDecl
	Queries []*QueryDecl
}

// FieldType is the static type annotation grammar: String | Integer |
// Float | Boolean | [T] | <UppercaseName>.
type FieldType struct {
	Pos       Position
	Name      string     // "String", "Integer", "Float", "Boolean", or a schema identifier
	ArrayOf   *FieldType // non-nil when this is [T]
}

// FieldDef is a single `name: type` pair.
type FieldDef struct {
	Pos  Position
	Name string
	Type FieldType
}

// NodeDecl is `N::<Name> { field, field, … }`.
type NodeDecl struct {
	Pos    Position
	Name   string
	Fields []FieldDef
}

// EdgeDecl is `E::<Name> { From: <Node>, To: <Node>, Properties: { fields? } }`.
type EdgeDecl struct {
	Pos        Position
	Name       string
	From       string
	To         string
	Properties []FieldDef
}

// VectorDecl is `V::<Name>`.
type VectorDecl struct {
	Pos  Position
	Name string
}

// Parameter is one `p: T` entry in a QUERY's parameter list.
type Parameter struct {
	Pos  Position
	Name string
	Type FieldType
}

// QueryDecl is `QUERY <name>(p: T, …) => <body> RETURN <expr>, …`.
type QueryDecl struct {
	Pos        Position
	Name       string
	Parameters []Parameter
	Body       []Statement
	Returns    []Expression
}

// Statement is a body-level construct: either a binding (`name <- expr`) or
// a bare mutating/read statement.
type Statement interface {
	StmtPos() Position
}

// Assignment is `name <- expr`.
type Assignment struct {
	Pos      Position
	Variable string
	Value    Expression
}

func (a *Assignment) StmtPos() Position { return a.Pos }

// ExprStatement wraps an Expression used as a statement on its own, e.g. a
// bare `DROP(...)` or `AddE<T>(...)` not bound to a variable.
type ExprStatement struct {
	Pos   Position
	Value Expression
}

func (e *ExprStatement) StmtPos() Position { return e.Pos }

// Expression is the supertype of every value-producing AST node: literals,
// identifiers, traversals, boolean connectives, and mutating operations
// that can also appear inline (AddN, AddE, …).
type Expression interface {
	ExprPos() Position
}

// Literal is a scalar literal: string, integer, float, boolean, or NONE.
type Literal struct {
	Pos   Position
	Value LiteralValue
}

func (l *Literal) ExprPos() Position { return l.Pos }

// LiteralValue tags which scalar a Literal holds.
type LiteralValue struct {
	Kind  string // "String" | "Integer" | "Float" | "Boolean" | "Null" | "Array"
	Str   string
	Int   int64
	Float float64
	Bool  bool
	Array []LiteralValue
}

// Ident is a bare identifier reference (a bound variable, or a query
// parameter name).
type Ident struct {
	Pos  Position
	Name string
}

func (i *Ident) ExprPos() Position { return i.Pos }

// StartKind discriminates the three start_vertex/start_edge/start_vector
// forms of a Traversal.
type StartKind int

const (
	StartNode StartKind = iota
	StartEdge
	StartVector
	StartVariable  // N -> a previously bound variable, referenced by name
	StartAnonymous // `_`, the current item of an enclosing stream
)

// TraversalStart is the first element of a Traversal: a scan (optionally
// typed and/or by explicit ids) or a reference to a bound variable or the
// anonymous `_`.
type TraversalStart struct {
	Pos  Position
	Kind StartKind
	Type string       // schema type name; "" means untyped (Any)
	IDs  []Expression // explicit id expressions, e.g. N<T>(x)
	Name string       // for StartVariable
}

// Traversal is a start followed by zero or more Steps.
type Traversal struct {
	Pos   Position
	Start TraversalStart
	Steps []Step
}

func (t *Traversal) ExprPos() Position { return t.Pos }

// Step is one link in a traversal's step chain.
type Step interface {
	StepPos() Position
}

// GraphStepDir is the direction of a graph traversal step.
type GraphStepDir int

const (
	DirOut GraphStepDir = iota
	DirIn
	DirBoth
)

// GraphStep is `::Out<E>`, `::In<E>`, `::Both<E>` and their edge-emitting
// `*E` variants (`::OutE<E>` etc.).
type GraphStep struct {
	Pos       Position
	Dir       GraphStepDir
	EdgeType  string // "" means any edge type
	EmitEdges bool   // true for the *E variants (emit EdgeStream, not NodeStream)
}

func (g *GraphStep) StepPos() Position { return g.Pos }

// WhereStep is `::WHERE(pred)`.
type WhereStep struct {
	Pos  Position
	Pred Expression
}

func (w *WhereStep) StepPos() Position { return w.Pos }

// RangeStep is `::RANGE(a, b)`.
type RangeStep struct {
	Pos Position
	Lo  Expression
	Hi  Expression
}

func (r *RangeStep) StepPos() Position { return r.Pos }

// CountStep is `::COUNT`.
type CountStep struct {
	Pos Position
}

func (c *CountStep) StepPos() Position { return c.Pos }

// IDStep is `::ID`.
type IDStep struct {
	Pos Position
}

func (i *IDStep) StepPos() Position { return i.Pos }

// UpdateStep is `::UPDATE({f: e, …})`.
type UpdateStep struct {
	Pos    Position
	Fields []MappingField
}

func (u *UpdateStep) StepPos() Position { return u.Pos }

// DropStep is a `DROP` or `DROP(expr)` statement-level step. It is modeled
// as both a Step (for `t::DROP`) and a Statement (bare `DROP` / `DROP(x)`);
// see DropStatement for the latter.
type DropStep struct {
	Pos Position
}

func (d *DropStep) StepPos() Position { return d.Pos }

// DropStatement is the bare statement form `DROP` or `DROP(expr)`.
type DropStatement struct {
	Pos    Position
	Target Expression // nil means the no-argument form (Design Notes Open Question (b))
}

func (d *DropStatement) StmtPos() Position { return d.Pos }

// MappingField is one `name: expr` entry of an object_step/update, or the
// shorthand `identifier` (Expr == nil means `identifier: identifier`).
type MappingField struct {
	Pos  Position
	Name string
	Expr Expression // nil for shorthand
}

// ObjectStep is a projection `{ a, b: expr, .. }`.
type ObjectStep struct {
	Pos        Position
	Fields     []MappingField
	HasSpread  bool
}

func (o *ObjectStep) StepPos() Position { return o.Pos }

// ExcludeFieldStep is `!{x, y}` — a projection that starts from all
// declared properties minus the named fields.
type ExcludeFieldStep struct {
	Pos     Position
	Exclude []string
}

func (e *ExcludeFieldStep) StepPos() Position { return e.Pos }

// ClosureStep is `|x| { … }` — rebinds the current item to x before an
// inner ObjectStep.
type ClosureStep struct {
	Pos     Position
	Param   string
	Object  ObjectStep
}

func (c *ClosureStep) StepPos() Position { return c.Pos }

// And is `AND(lhs, rhs, …)` used as a boolean-context expression.
type And struct {
	Pos      Position
	Operands []Expression
}

func (a *And) ExprPos() Position { return a.Pos }

// Or is `OR(lhs, rhs, …)`.
type Or struct {
	Pos      Position
	Operands []Expression
}

func (o *Or) ExprPos() Position { return o.Pos }

// Exists is `EXISTS(traversal)`.
type Exists struct {
	Pos       Position
	Traversal Expression
}

func (e *Exists) ExprPos() Position { return e.Pos }

// ComparatorKind is GT/GTE/LT/LTE/EQ/NEQ.
type ComparatorKind int

const (
	CmpGT ComparatorKind = iota
	CmpGTE
	CmpLT
	CmpLTE
	CmpEQ
	CmpNEQ
)

// Comparator is `::GT(e)`, etc., applied to the current value. It can
// appear both as a Step (after an object/field access, e.g.
// `_::{age}::GTE(18)`) and nested inside And/Or/Exists boolean contexts.
type Comparator struct {
	Pos   Position
	Kind  ComparatorKind
	Value Expression
}

func (c *Comparator) StepPos() Position { return c.Pos }
func (c *Comparator) ExprPos() Position { return c.Pos }

// SearchVExpr is `SearchV<T>(v, k)`.
type SearchVExpr struct {
	Pos   Position
	Type  string
	Query Expression
	K     Expression
}

func (s *SearchVExpr) ExprPos() Position { return s.Pos }

// AddNExpr is `AddN<T>({ field: expr, … })`.
type AddNExpr struct {
	Pos   Position
	Type  string
	Props []MappingField
}

func (a *AddNExpr) ExprPos() Position { return a.Pos }

// AddVExpr is `AddV<T>(vector)`.
type AddVExpr struct {
	Pos    Position
	Type   string
	Vector Expression
}

func (a *AddVExpr) ExprPos() Position { return a.Pos }

// BatchAddVExpr is `BatchAddV<T>(identifier)`.
type BatchAddVExpr struct {
	Pos        Position
	Type       string
	Identifier string
}

func (b *BatchAddVExpr) ExprPos() Position { return b.Pos }

// AddEExpr is `AddE<T>(props)::From(x)::To(y)` (order-free From/To).
type AddEExpr struct {
	Pos   Position
	Type  string
	Props []MappingField
	From  Expression
	To    Expression
}

func (a *AddEExpr) ExprPos() Position { return a.Pos }
