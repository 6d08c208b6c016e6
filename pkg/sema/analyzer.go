package sema

import (
	"github.com/helixdb/helixql/pkg/lang/ast"
	"github.com/helixdb/helixql/pkg/schema"
	"github.com/helixdb/helixql/pkg/value"
)

// QueryInfo is the analyzer's annotation of a single QueryDecl, consumed by
// pkg/ir during lowering.
type QueryInfo struct {
	Decl        *ast.QueryDecl
	ParamTypes  map[string]Type
	Mutating    bool
	ReturnTypes []Type

	// ExprTypes records the inferred type of every Expression node that
	// was type-checked, keyed by AST node identity.
	ExprTypes map[ast.Expression]Type

	// ProjectionElementType records, for every ObjectStep/ExcludeFieldStep
	// that projects a concrete (non-Any) element type, the schema type
	// name whose declared fields the spread/exclude/shorthand resolves
	// against. Lowering uses this to expand `..` and `!{...}`.
	ProjectionElementType map[ast.Step]string
}

// Result is the output of Analyze: one QueryInfo per query, by name.
type Result struct {
	Registry *schema.Registry
	Queries  map[string]*QueryInfo
}

type ctx struct {
	reg   *schema.Registry
	vars  map[string]Type
	info  *QueryInfo
	diags *[]Diagnostic
}

func (c *ctx) addDiag(d Diagnostic) { *c.diags = append(*c.diags, d) }

// Analyze type-checks every query in source against reg and returns the
// annotated result plus a batch of diagnostics. Only a clean pass (no
// SeverityError diagnostics) should progress to lowering (spec.md §4.C).
func Analyze(source *ast.Source, reg *schema.Registry) (*Result, []Diagnostic) {
	var diags []Diagnostic
	res := &Result{Registry: reg, Queries: make(map[string]*QueryInfo)}

	for _, q := range source.Queries {
		info := &QueryInfo{
			Decl:                  q,
			ParamTypes:            make(map[string]Type),
			ExprTypes:             make(map[ast.Expression]Type),
			ProjectionElementType: make(map[ast.Step]string),
		}
		c := &ctx{reg: reg, vars: make(map[string]Type), info: info, diags: &diags}

		for _, p := range q.Parameters {
			t := fieldTypeToType(p.Type, reg)
			info.ParamTypes[p.Name] = t
			c.vars[p.Name] = t
		}

		for _, stmt := range q.Body {
			c.analyzeStatement(stmt)
		}

		for _, ret := range q.Returns {
			info.ReturnTypes = append(info.ReturnTypes, c.infer(ret, nil))
		}

		res.Queries[q.Name] = info
	}

	return res, diags
}

func fieldTypeToType(ft ast.FieldType, reg *schema.Registry) Type {
	if ft.ArrayOf != nil {
		elem := fieldTypeToType(*ft.ArrayOf, reg)
		return ArrayOf(elem)
	}
	switch ft.Name {
	case "String", "ID":
		return Scalar(value.KindString)
	case "Integer":
		return Scalar(value.KindInteger)
	case "Float":
		return Scalar(value.KindFloat)
	case "Boolean":
		return Scalar(value.KindBoolean)
	default:
		if _, ok := reg.Node(ft.Name); ok {
			return NodeStream(ft.Name)
		}
		if _, ok := reg.Edge(ft.Name); ok {
			return EdgeStream(ft.Name)
		}
		if _, ok := reg.Vector(ft.Name); ok {
			return VectorStream(ft.Name)
		}
		return Scalar(value.KindString)
	}
}

func (c *ctx) analyzeStatement(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.Assignment:
		t := c.infer(s.Value, nil)
		c.vars[s.Variable] = t
		if exprIsMutating(s.Value) {
			c.info.Mutating = true
		}
	case *ast.ExprStatement:
		c.infer(s.Value, nil)
		if exprIsMutating(s.Value) {
			c.info.Mutating = true
		}
	case *ast.DropStatement:
		c.info.Mutating = true
		if s.Target == nil {
			c.addDiag(warnDropNoop(s.Pos))
			return
		}
		t := c.infer(s.Target, nil)
		if !t.IsStream() {
			c.addDiag(typeError(s.Pos, "a stream", t.String()))
		}
	}
}

// exprIsMutating reports whether evaluating expr, on its own, performs a
// storage mutation — used to decide whether the surrounding query needs a
// write transaction (spec.md §4.D/E; mirrors the original Rust generator's
// txn-mode check in generate_query).
func exprIsMutating(expr ast.Expression) bool {
	switch e := expr.(type) {
	case *ast.AddNExpr, *ast.AddVExpr, *ast.AddEExpr, *ast.BatchAddVExpr:
		return true
	case *ast.Traversal:
		for _, step := range e.Steps {
			switch step.(type) {
			case *ast.UpdateStep, *ast.DropStep:
				return true
			}
		}
		return false
	default:
		return false
	}
}

// infer computes the static type of expr. underscore, when non-nil, is the
// type bound to the anonymous `_` within the expression (spec.md's "the
// anonymous traversal is re-typed against the current element type").
func (c *ctx) infer(expr ast.Expression, underscore *Type) Type {
	t := c.inferUncached(expr, underscore)
	c.info.ExprTypes[expr] = t
	return t
}

func (c *ctx) inferUncached(expr ast.Expression, underscore *Type) Type {
	switch e := expr.(type) {
	case *ast.Literal:
		return literalType(e.Value)
	case *ast.Ident:
		if t, ok := c.vars[e.Name]; ok {
			return t
		}
		c.addDiag(resolveError(e.Pos, e.Name))
		return NodeStream(AnyType)
	case *ast.Traversal:
		return c.inferTraversal(e, underscore)
	case *ast.And:
		for _, op := range e.Operands {
			if t := c.infer(op, underscore); t.Kind != KindBool {
				c.addDiag(typeError(op.ExprPos(), "Bool", t.String()))
			}
		}
		return Bool()
	case *ast.Or:
		for _, op := range e.Operands {
			if t := c.infer(op, underscore); t.Kind != KindBool {
				c.addDiag(typeError(op.ExprPos(), "Bool", t.String()))
			}
		}
		return Bool()
	case *ast.Exists:
		if _, ok := e.Traversal.(*ast.Traversal); !ok {
			c.addDiag(typeError(e.Pos, "a traversal", "non-traversal expression"))
		} else {
			c.infer(e.Traversal, underscore)
		}
		return Bool()
	case *ast.SearchVExpr:
		return c.inferSearchV(e, underscore)
	case *ast.AddNExpr:
		return c.inferAddN(e, underscore)
	case *ast.AddVExpr:
		return c.inferAddV(e, underscore)
	case *ast.BatchAddVExpr:
		return c.inferBatchAddV(e)
	case *ast.AddEExpr:
		return c.inferAddE(e, underscore)
	default:
		return Unit()
	}
}

func literalType(v ast.LiteralValue) Type {
	switch v.Kind {
	case "String":
		return Scalar(value.KindString)
	case "Integer":
		return Scalar(value.KindInteger)
	case "Float":
		return Scalar(value.KindFloat)
	case "Boolean":
		return Scalar(value.KindBoolean)
	case "Null":
		return Scalar(value.KindNull)
	case "Array":
		if len(v.Array) == 0 {
			return ArrayOf(Scalar(value.KindFloat))
		}
		elem := literalType(v.Array[0])
		return ArrayOf(elem)
	default:
		return Unit()
	}
}
