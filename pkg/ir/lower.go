package ir

import (
	"fmt"

	"github.com/helixdb/helixql/pkg/lang/ast"
	"github.com/helixdb/helixql/pkg/schema"
	"github.com/helixdb/helixql/pkg/sema"
	"github.com/helixdb/helixql/pkg/value"
)

// Lower translates a clean sema.Result (no SeverityError diagnostics) into
// a Program. Callers must check sema.HasErrors before calling Lower.
func Lower(res *sema.Result) (*Program, error) {
	prog := &Program{Queries: make(map[string]*Query)}
	for name, info := range res.Queries {
		q, err := lowerQuery(info, res.Registry)
		if err != nil {
			return nil, fmt.Errorf("ir: lowering query %q: %w", name, err)
		}
		prog.Queries[name] = q
	}
	return prog, nil
}

func lowerQuery(info *sema.QueryInfo, reg *schema.Registry) (*Query, error) {
	l := &lowerer{info: info, reg: reg}

	q := &Query{Decl: info.Decl, Mutating: info.Mutating}
	for _, p := range info.Decl.Parameters {
		q.Params = append(q.Params, Param{Name: p.Name, Type: info.ParamTypes[p.Name]})
	}

	for _, stmt := range info.Decl.Body {
		instr, err := l.lowerStatement(stmt)
		if err != nil {
			return nil, err
		}
		if instr != nil {
			q.Body = append(q.Body, instr)
		}
	}

	for _, ret := range info.Decl.Returns {
		e, err := l.lowerExpr(ret)
		if err != nil {
			return nil, err
		}
		q.Returns = append(q.Returns, e)
	}

	return q, nil
}

// lowerer carries the per-query context lowering needs: the analyzer's
// annotations (for resolved projection element types) and the schema
// registry (for expanding spread/exclude into explicit field lists).
type lowerer struct {
	info *sema.QueryInfo
	reg  *schema.Registry
}

func (l *lowerer) lowerStatement(stmt ast.Statement) (Instr, error) {
	switch s := stmt.(type) {
	case *ast.Assignment:
		v, err := l.lowerExpr(s.Value)
		if err != nil {
			return nil, err
		}
		return &Bind{Var: s.Variable, Value: v}, nil
	case *ast.ExprStatement:
		v, err := l.lowerExpr(s.Value)
		if err != nil {
			return nil, err
		}
		return &Eval{Value: v}, nil
	case *ast.DropStatement:
		if s.Target == nil {
			return &NoOpDrop{}, nil
		}
		v, err := l.lowerExpr(s.Target)
		if err != nil {
			return nil, err
		}
		return &Eval{Value: appendDrop(v)}, nil
	default:
		return nil, fmt.Errorf("ir: unhandled statement type %T", stmt)
	}
}

// appendDrop wraps a lowered chain expression with a trailing Drop step so
// the bare `DROP(expr)` statement form shares the same evaluation path as
// `expr::DROP`.
func appendDrop(e Expr) Expr {
	ce, ok := e.(*ChainExpr)
	if !ok {
		return e
	}
	ce.Chain.Steps = append(ce.Chain.Steps, &Drop{})
	return ce
}

func (l *lowerer) lowerExpr(expr ast.Expression) (Expr, error) {
	switch e := expr.(type) {
	case *ast.Literal:
		return &Lit{Value: lowerLiteral(e.Value)}, nil
	case *ast.Ident:
		return &Var{Name: e.Name}, nil
	case *ast.Traversal:
		c, err := l.lowerChain(e)
		if err != nil {
			return nil, err
		}
		return &ChainExpr{Chain: c}, nil
	case *ast.And:
		ops, err := l.lowerExprList(e.Operands)
		if err != nil {
			return nil, err
		}
		return &And{Operands: ops}, nil
	case *ast.Or:
		ops, err := l.lowerExprList(e.Operands)
		if err != nil {
			return nil, err
		}
		return &Or{Operands: ops}, nil
	case *ast.Exists:
		sub, err := l.lowerExpr(e.Traversal)
		if err != nil {
			return nil, err
		}
		return &Exists{Sub: sub}, nil
	case *ast.SearchVExpr:
		q, err := l.lowerExpr(e.Query)
		if err != nil {
			return nil, err
		}
		k, err := l.lowerExpr(e.K)
		if err != nil {
			return nil, err
		}
		return &SearchV{Type: e.Type, Query: q, K: k}, nil
	case *ast.AddNExpr:
		props, err := l.lowerFieldAssigns(e.Props)
		if err != nil {
			return nil, err
		}
		return &AddNode{Type: e.Type, Props: props}, nil
	case *ast.AddVExpr:
		v, err := l.lowerExpr(e.Vector)
		if err != nil {
			return nil, err
		}
		return &AddVector{Type: e.Type, Vector: v}, nil
	case *ast.BatchAddVExpr:
		return &BatchAddVector{Type: e.Type, Identifier: e.Identifier}, nil
	case *ast.AddEExpr:
		props, err := l.lowerFieldAssigns(e.Props)
		if err != nil {
			return nil, err
		}
		from, err := l.lowerExpr(e.From)
		if err != nil {
			return nil, err
		}
		to, err := l.lowerExpr(e.To)
		if err != nil {
			return nil, err
		}
		return &AddEdge{Type: e.Type, Props: props, From: from, To: to}, nil
	default:
		return nil, fmt.Errorf("ir: unhandled expression type %T", expr)
	}
}

func (l *lowerer) lowerExprList(exprs []ast.Expression) ([]Expr, error) {
	out := make([]Expr, 0, len(exprs))
	for _, e := range exprs {
		le, err := l.lowerExpr(e)
		if err != nil {
			return nil, err
		}
		out = append(out, le)
	}
	return out, nil
}

func (l *lowerer) lowerFieldAssigns(fields []ast.MappingField) ([]FieldAssign, error) {
	out := make([]FieldAssign, 0, len(fields))
	for _, mf := range fields {
		var v Expr
		if mf.Expr != nil {
			lowered, err := l.lowerExpr(mf.Expr)
			if err != nil {
				return nil, err
			}
			v = lowered
		} else {
			// shorthand `name` means `name: name`
			v = &Var{Name: mf.Name}
		}
		out = append(out, FieldAssign{Name: mf.Name, Value: v})
	}
	return out, nil
}

func (l *lowerer) lowerChain(t *ast.Traversal) (*Chain, error) {
	start, err := l.lowerStart(t.Start)
	if err != nil {
		return nil, err
	}

	c := &Chain{Start: start}
	for i := 0; i < len(t.Steps); i++ {
		step := t.Steps[i]
		if os, ok := step.(*ast.ObjectStep); ok && isFieldAccessShorthand(os) && i+1 < len(t.Steps) {
			if _, isCmp := t.Steps[i+1].(*ast.Comparator); isCmp {
				c.Steps = append(c.Steps, &FieldAccess{Field: os.Fields[0].Name})
				continue
			}
		}
		s, err := l.lowerStep(step)
		if err != nil {
			return nil, err
		}
		c.Steps = append(c.Steps, s)
	}
	return c, nil
}

func isFieldAccessShorthand(o *ast.ObjectStep) bool {
	return !o.HasSpread && len(o.Fields) == 1 && o.Fields[0].Expr == nil
}

func (l *lowerer) lowerStart(ts ast.TraversalStart) (Start, error) {
	switch ts.Kind {
	case ast.StartNode:
		ids, err := l.lowerExprList(ts.IDs)
		if err != nil {
			return nil, err
		}
		return &ScanNodes{Type: ts.Type, IDs: ids}, nil
	case ast.StartEdge:
		ids, err := l.lowerExprList(ts.IDs)
		if err != nil {
			return nil, err
		}
		return &ScanEdges{Type: ts.Type, IDs: ids}, nil
	case ast.StartVector:
		ids, err := l.lowerExprList(ts.IDs)
		if err != nil {
			return nil, err
		}
		return &ScanVectors{Type: ts.Type, IDs: ids}, nil
	case ast.StartVariable:
		return &VarStart{Name: ts.Name}, nil
	case ast.StartAnonymous:
		return &Underscore{}, nil
	default:
		return nil, fmt.Errorf("ir: unhandled traversal start kind %v", ts.Kind)
	}
}

func (l *lowerer) lowerStep(step ast.Step) (Step, error) {
	switch s := step.(type) {
	case *ast.GraphStep:
		return &Traverse{Dir: lowerDir(s.Dir), EdgeType: s.EdgeType, EmitEdges: s.EmitEdges}, nil
	case *ast.WhereStep:
		pred, err := l.lowerExpr(s.Pred)
		if err != nil {
			return nil, err
		}
		return &Filter{Pred: pred}, nil
	case *ast.RangeStep:
		lo, err := l.lowerExpr(s.Lo)
		if err != nil {
			return nil, err
		}
		hi, err := l.lowerExpr(s.Hi)
		if err != nil {
			return nil, err
		}
		return &Range{Lo: lo, Hi: hi}, nil
	case *ast.CountStep:
		return &Count{}, nil
	case *ast.IDStep:
		return &IDOf{}, nil
	case *ast.UpdateStep:
		fields, err := l.lowerFieldAssigns(s.Fields)
		if err != nil {
			return nil, err
		}
		return &Update{Fields: fields}, nil
	case *ast.DropStep:
		return &Drop{}, nil
	case *ast.Comparator:
		v, err := l.lowerExpr(s.Value)
		if err != nil {
			return nil, err
		}
		return &Compare{Kind: lowerCmp(s.Kind), Value: v}, nil
	case *ast.ObjectStep:
		return l.lowerObjectStep(s, step)
	case *ast.ExcludeFieldStep:
		return l.lowerExcludeStep(s, step)
	case *ast.ClosureStep:
		proj, err := l.lowerObjectStep(&s.Object, step)
		if err != nil {
			return nil, err
		}
		return &Closure{Param: s.Param, Project: *proj}, nil
	default:
		return nil, fmt.Errorf("ir: unhandled step type %T", step)
	}
}

func (l *lowerer) lowerObjectStep(o *ast.ObjectStep, key ast.Step) (*Project, error) {
	seen := make(map[string]bool, len(o.Fields))
	var fields []ProjectField
	for _, mf := range o.Fields {
		seen[mf.Name] = true
		if mf.Expr != nil {
			v, err := l.lowerExpr(mf.Expr)
			if err != nil {
				return nil, err
			}
			fields = append(fields, ProjectField{Name: mf.Name, Value: v})
			continue
		}
		fields = append(fields, ProjectField{Name: mf.Name})
	}

	if o.HasSpread {
		elem := l.info.ProjectionElementType[key]
		declared := l.declaredFieldNames(elem)
		for _, name := range declared {
			if seen[name] {
				continue
			}
			fields = append(fields, ProjectField{Name: name})
		}
	}

	return &Project{Fields: fields}, nil
}

func (l *lowerer) lowerExcludeStep(e *ast.ExcludeFieldStep, key ast.Step) (*Project, error) {
	elem := l.info.ProjectionElementType[key]
	excl := make(map[string]bool, len(e.Exclude))
	for _, name := range e.Exclude {
		excl[name] = true
	}
	var fields []ProjectField
	for _, name := range l.declaredFieldNames(elem) {
		if excl[name] {
			continue
		}
		fields = append(fields, ProjectField{Name: name})
	}
	return &Project{Fields: fields}, nil
}

func (l *lowerer) declaredFieldNames(elem string) []string {
	if n, ok := l.reg.Node(elem); ok {
		return n.FieldNames()
	}
	if e, ok := l.reg.Edge(elem); ok {
		return e.FieldNames()
	}
	return nil
}

func lowerDir(d ast.GraphStepDir) GraphDir {
	switch d {
	case ast.DirOut:
		return DirOut
	case ast.DirIn:
		return DirIn
	default:
		return DirBoth
	}
}

func lowerCmp(k ast.ComparatorKind) ComparatorKind {
	switch k {
	case ast.CmpGT:
		return CmpGT
	case ast.CmpGTE:
		return CmpGTE
	case ast.CmpLT:
		return CmpLT
	case ast.CmpLTE:
		return CmpLTE
	case ast.CmpEQ:
		return CmpEQ
	default:
		return CmpNEQ
	}
}

func lowerLiteral(v ast.LiteralValue) value.Value {
	switch v.Kind {
	case "String":
		return value.String(v.Str)
	case "Integer":
		return value.Integer(v.Int)
	case "Float":
		return value.Float(v.Float)
	case "Boolean":
		return value.Boolean(v.Bool)
	case "Array":
		elems := make([]value.Value, len(v.Array))
		for i, e := range v.Array {
			elems[i] = lowerLiteral(e)
		}
		return value.Array(elems)
	default:
		return value.Null
	}
}
