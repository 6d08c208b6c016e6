package sema

import (
	"fmt"

	"github.com/helixdb/helixql/pkg/lang/ast"
	"github.com/helixdb/helixql/pkg/schema"
	"github.com/helixdb/helixql/pkg/value"
)

// inferTraversal folds a Traversal's start and steps into a single Type,
// per spec.md §4.C's per-step typing rules.
func (c *ctx) inferTraversal(t *ast.Traversal, underscore *Type) Type {
	cur := c.startType(t.Start, underscore)
	for i := 0; i < len(t.Steps); i++ {
		step := t.Steps[i]
		// A single shorthand-field object step immediately followed by a
		// comparator (`_::{age}::GTE(18)`) is field-value access, not a
		// one-field record comparison — the comparator needs the field's
		// own scalar type, not Record{age: Integer}.
		if os, ok := step.(*ast.ObjectStep); ok && isSingleShorthandField(os) && i+1 < len(t.Steps) {
			if _, isCmp := t.Steps[i+1].(*ast.Comparator); isCmp {
				cur = c.applyFieldAccess(os, cur)
				continue
			}
		}
		cur = c.applyStep(step, cur)
	}
	return cur
}

func isSingleShorthandField(o *ast.ObjectStep) bool {
	return !o.HasSpread && len(o.Fields) == 1 && o.Fields[0].Expr == nil
}

// applyFieldAccess resolves `{fieldName}` to the declared type of that one
// field, rather than wrapping it in a Record.
func (c *ctx) applyFieldAccess(o *ast.ObjectStep, cur Type) Type {
	name := o.Fields[0].Name
	elem := cur.ElementTypeName()
	if elem == "" {
		c.addDiag(typeError(o.Pos, "a concretely-typed element for field access", cur.String()))
		return Scalar(value.KindInteger)
	}
	declared, ok := c.declaredFields(elem)
	if !ok {
		c.addDiag(schemaError(o.Pos, fmt.Sprintf("%q has no declared fields", elem)))
		return Scalar(value.KindInteger)
	}
	f, ok := fieldByName(declared, name)
	if !ok {
		c.addDiag(schemaError(o.Pos, fmt.Sprintf("undeclared field %q on %q", name, elem)))
		return Scalar(value.KindInteger)
	}
	return schemaTypeToSemaType(f.Type)
}

func (c *ctx) startType(ts ast.TraversalStart, underscore *Type) Type {
	switch ts.Kind {
	case ast.StartNode:
		elem := AnyType
		if ts.Type != "" {
			if _, ok := c.reg.Node(ts.Type); !ok {
				c.addDiag(schemaError(ts.Pos, fmt.Sprintf("unknown node type %q", ts.Type)))
			}
			elem = ts.Type
		}
		c.checkIDArgs(ts.IDs, underscore)
		return NodeStream(elem)
	case ast.StartEdge:
		elem := AnyType
		if ts.Type != "" {
			if _, ok := c.reg.Edge(ts.Type); !ok {
				c.addDiag(schemaError(ts.Pos, fmt.Sprintf("unknown edge type %q", ts.Type)))
			}
			elem = ts.Type
		}
		c.checkIDArgs(ts.IDs, underscore)
		return EdgeStream(elem)
	case ast.StartVector:
		elem := AnyType
		if ts.Type != "" {
			if _, ok := c.reg.Vector(ts.Type); !ok {
				c.addDiag(schemaError(ts.Pos, fmt.Sprintf("unknown vector type %q", ts.Type)))
			}
			elem = ts.Type
		}
		c.checkIDArgs(ts.IDs, underscore)
		return VectorStream(elem)
	case ast.StartVariable:
		if t, ok := c.vars[ts.Name]; ok {
			return t
		}
		c.addDiag(resolveError(ts.Pos, ts.Name))
		return NodeStream(AnyType)
	case ast.StartAnonymous:
		if underscore != nil {
			return *underscore
		}
		c.addDiag(typeError(ts.Pos, "a bound `_`", "none available outside WHERE/EXISTS/object-step context"))
		return NodeStream(AnyType)
	default:
		return NodeStream(AnyType)
	}
}

func (c *ctx) checkIDArgs(ids []ast.Expression, underscore *Type) {
	for _, idExpr := range ids {
		t := c.infer(idExpr, underscore)
		if t.Kind != KindScalar || t.Scalar != value.KindString {
			c.addDiag(typeError(idExpr.ExprPos(), "Scalar(String) (an id)", t.String()))
		}
	}
}

func (c *ctx) applyStep(step ast.Step, cur Type) Type {
	switch s := step.(type) {
	case *ast.GraphStep:
		return c.applyGraphStep(s, cur)
	case *ast.WhereStep:
		pred := c.infer(s.Pred, &cur)
		if pred.Kind != KindBool {
			c.addDiag(typeError(s.Pos, "Bool", pred.String()))
		}
		return cur
	case *ast.RangeStep:
		lo := c.infer(s.Lo, &cur)
		hi := c.infer(s.Hi, &cur)
		if lo.Kind != KindScalar || lo.Scalar != value.KindInteger {
			c.addDiag(typeError(s.Lo.ExprPos(), "Scalar(Integer)", lo.String()))
		}
		if hi.Kind != KindScalar || hi.Scalar != value.KindInteger {
			c.addDiag(typeError(s.Hi.ExprPos(), "Scalar(Integer)", hi.String()))
		}
		return cur
	case *ast.CountStep:
		return Scalar(value.KindInteger)
	case *ast.IDStep:
		return Scalar(value.KindString)
	case *ast.UpdateStep:
		return c.applyUpdateStep(s, cur)
	case *ast.DropStep:
		return Unit()
	case *ast.Comparator:
		return c.applyComparator(s, cur)
	case *ast.ObjectStep:
		return c.applyObjectStep(s, cur, step)
	case *ast.ExcludeFieldStep:
		return c.applyExcludeStep(s, cur, step)
	case *ast.ClosureStep:
		return c.applyClosureStep(s, cur, step)
	default:
		return cur
	}
}

func (c *ctx) applyGraphStep(g *ast.GraphStep, cur Type) Type {
	if cur.Kind != KindNodeStream {
		c.addDiag(typeError(g.Pos, "NodeStream<T>", cur.String()))
		if g.EmitEdges {
			return EdgeStream(AnyType)
		}
		return NodeStream(AnyType)
	}

	s := cur.ElementTypeName()
	resultElem := AnyType
	edgeElem := AnyType

	if g.EdgeType != "" {
		edgeElem = g.EdgeType
		edge, ok := c.reg.Edge(g.EdgeType)
		if !ok {
			c.addDiag(schemaError(g.Pos, fmt.Sprintf("unknown edge type %q", g.EdgeType)))
		} else {
			if s != "" {
				switch g.Dir {
				case ast.DirOut:
					if edge.From != s {
						c.addDiag(typeError(g.Pos, fmt.Sprintf("NodeStream<%s> (Out<%s> requires From=%s)", edge.From, g.EdgeType, edge.From), cur.String()))
					}
				case ast.DirIn:
					if edge.To != s {
						c.addDiag(typeError(g.Pos, fmt.Sprintf("NodeStream<%s> (In<%s> requires To=%s)", edge.To, g.EdgeType, edge.To), cur.String()))
					}
				case ast.DirBoth:
					if edge.From != s && edge.To != s {
						c.addDiag(typeError(g.Pos, fmt.Sprintf("NodeStream<%s|%s>", edge.From, edge.To), cur.String()))
					}
				}
			}
			switch g.Dir {
			case ast.DirOut:
				resultElem = edge.To
			case ast.DirIn:
				resultElem = edge.From
			case ast.DirBoth:
				if edge.From == edge.To {
					resultElem = edge.From
				}
			}
		}
	}

	if g.EmitEdges {
		return EdgeStream(edgeElem)
	}
	return NodeStream(resultElem)
}

func (c *ctx) applyUpdateStep(u *ast.UpdateStep, cur Type) Type {
	elem := cur.ElementTypeName()
	if elem == "" {
		c.addDiag(typeError(u.Pos, "a concretely-typed stream", cur.String()))
		return cur
	}
	declared, ok := c.declaredFields(elem)
	if !ok {
		c.addDiag(schemaError(u.Pos, fmt.Sprintf("%q has no declared fields", elem)))
		return cur
	}
	for _, mf := range u.Fields {
		f, ok := fieldByName(declared, mf.Name)
		if !ok {
			c.addDiag(schemaError(mf.Pos, fmt.Sprintf("undeclared field %q on %q", mf.Name, elem)))
			continue
		}
		if mf.Expr == nil {
			continue
		}
		t := c.infer(mf.Expr, &cur)
		want := schemaTypeToSemaType(f.Type)
		if !typesCompatible(t, want) {
			c.addDiag(typeError(mf.Expr.ExprPos(), want.String(), t.String()))
		}
	}
	return cur
}

func (c *ctx) applyComparator(cmp *ast.Comparator, cur Type) Type {
	val := c.infer(cmp.Value, &cur)
	switch cmp.Kind {
	case ast.CmpGT, ast.CmpGTE, ast.CmpLT, ast.CmpLTE:
		if !cur.IsNumeric() {
			c.addDiag(typeError(cmp.Pos, "a numeric operand", cur.String()))
		}
		if !val.IsNumeric() {
			c.addDiag(typeError(cmp.Value.ExprPos(), "a numeric operand", val.String()))
		}
	case ast.CmpEQ, ast.CmpNEQ:
		nullable := cur.Kind == KindScalar && cur.Scalar == value.KindNull
		nullable = nullable || (val.Kind == KindScalar && val.Scalar == value.KindNull)
		if !nullable && !cur.SameScalar(val) {
			c.addDiag(typeError(cmp.Value.ExprPos(), cur.String(), val.String()))
		}
	}
	return Bool()
}

func (c *ctx) applyObjectStep(o *ast.ObjectStep, cur Type, step ast.Step) Type {
	elem := cur.ElementTypeName()
	declared, haveDeclared := c.declaredFields(elem)

	seen := make(map[string]bool, len(o.Fields))
	var fields []RecordField
	for _, mf := range o.Fields {
		seen[mf.Name] = true
		if mf.Expr != nil {
			fields = append(fields, RecordField{Name: mf.Name, Type: c.infer(mf.Expr, &cur)})
			continue
		}
		if haveDeclared {
			if f, ok := fieldByName(declared, mf.Name); ok {
				fields = append(fields, RecordField{Name: mf.Name, Type: schemaTypeToSemaType(f.Type)})
				continue
			}
		}
		if t, ok := c.vars[mf.Name]; ok {
			fields = append(fields, RecordField{Name: mf.Name, Type: t})
			continue
		}
		c.addDiag(schemaError(mf.Pos, fmt.Sprintf("undeclared field %q", mf.Name)))
	}

	if o.HasSpread {
		if !haveDeclared {
			c.addDiag(typeError(o.Pos, "a concretely-typed element for spread `..`", cur.String()))
		} else {
			c.info.ProjectionElementType[step] = elem
			for _, f := range declared {
				if seen[f.Name] {
					continue
				}
				fields = append(fields, RecordField{Name: f.Name, Type: schemaTypeToSemaType(f.Type)})
			}
		}
	}

	return Record(fields)
}

func (c *ctx) applyExcludeStep(e *ast.ExcludeFieldStep, cur Type, step ast.Step) Type {
	elem := cur.ElementTypeName()
	declared, ok := c.declaredFields(elem)
	if !ok {
		c.addDiag(typeError(e.Pos, "a concretely-typed element for exclude-projection `!{...}`", cur.String()))
		return Record(nil)
	}
	c.info.ProjectionElementType[step] = elem

	exclude := make(map[string]bool, len(e.Exclude))
	for _, name := range e.Exclude {
		exclude[name] = true
	}
	var fields []RecordField
	for _, f := range declared {
		if exclude[f.Name] {
			continue
		}
		fields = append(fields, RecordField{Name: f.Name, Type: schemaTypeToSemaType(f.Type)})
	}
	return Record(fields)
}

func (c *ctx) applyClosureStep(cl *ast.ClosureStep, cur Type, step ast.Step) Type {
	old, had := c.vars[cl.Param]
	c.vars[cl.Param] = cur
	result := c.applyObjectStep(&cl.Object, cur, step)
	if had {
		c.vars[cl.Param] = old
	} else {
		delete(c.vars, cl.Param)
	}
	return result
}

func (c *ctx) inferSearchV(e *ast.SearchVExpr, underscore *Type) Type {
	if _, ok := c.reg.Vector(e.Type); !ok {
		c.addDiag(schemaError(e.Pos, fmt.Sprintf("unknown vector type %q", e.Type)))
	}
	q := c.infer(e.Query, underscore)
	if q.Kind != KindArray || !(q.ArrayOf.IsNumeric()) {
		c.addDiag(typeError(e.Query.ExprPos(), "[Float]", q.String()))
	}
	k := c.infer(e.K, underscore)
	if k.Kind != KindScalar || k.Scalar != value.KindInteger {
		c.addDiag(typeError(e.K.ExprPos(), "Scalar(Integer)", k.String()))
	}
	return VectorStream(e.Type)
}

func (c *ctx) inferAddN(e *ast.AddNExpr, underscore *Type) Type {
	nt, ok := c.reg.Node(e.Type)
	if !ok {
		c.addDiag(schemaError(e.Pos, fmt.Sprintf("unknown node type %q", e.Type)))
		return NodeStream(AnyType)
	}
	c.checkExactProps(e.Pos, e.Props, nt.Fields, underscore)
	return NodeStream(e.Type)
}

func (c *ctx) inferAddV(e *ast.AddVExpr, underscore *Type) Type {
	if _, ok := c.reg.Vector(e.Type); !ok {
		c.addDiag(schemaError(e.Pos, fmt.Sprintf("unknown vector type %q", e.Type)))
	}
	v := c.infer(e.Vector, underscore)
	if v.Kind != KindArray || !v.ArrayOf.IsNumeric() {
		c.addDiag(typeError(e.Vector.ExprPos(), "[Float]", v.String()))
	}
	return VectorStream(e.Type)
}

func (c *ctx) inferBatchAddV(e *ast.BatchAddVExpr) Type {
	if _, ok := c.reg.Vector(e.Type); !ok {
		c.addDiag(schemaError(e.Pos, fmt.Sprintf("unknown vector type %q", e.Type)))
	}
	t, ok := c.vars[e.Identifier]
	if !ok {
		c.addDiag(resolveError(e.Pos, e.Identifier))
	} else if t.Kind != KindArray {
		c.addDiag(typeError(e.Pos, "[Float] (a batch of vectors)", t.String()))
	}
	return VectorStream(e.Type)
}

func (c *ctx) inferAddE(e *ast.AddEExpr, underscore *Type) Type {
	et, ok := c.reg.Edge(e.Type)
	if !ok {
		c.addDiag(schemaError(e.Pos, fmt.Sprintf("unknown edge type %q", e.Type)))
		return EdgeStream(AnyType)
	}
	c.checkExactProps(e.Pos, e.Props, et.Properties, underscore)

	from := c.infer(e.From, underscore)
	to := c.infer(e.To, underscore)
	if !endpointMatches(from, et.From) {
		c.addDiag(typeError(e.From.ExprPos(), fmt.Sprintf("an id or NodeStream<%s>", et.From), from.String()))
	}
	if !endpointMatches(to, et.To) {
		c.addDiag(typeError(e.To.ExprPos(), fmt.Sprintf("an id or NodeStream<%s>", et.To), to.String()))
	}
	return EdgeStream(e.Type)
}

// checkExactProps enforces that props names exactly the declared field set
// of a node/edge type — every field present once, nothing extra (spec.md
// §4.E: "the set of keys in props is exactly the declared field set").
func (c *ctx) checkExactProps(pos ast.Position, props []ast.MappingField, declared []schema.Field, underscore *Type) {
	given := make(map[string]bool, len(props))
	for _, mf := range props {
		given[mf.Name] = true
		f, ok := fieldByName(declared, mf.Name)
		if !ok {
			c.addDiag(schemaError(mf.Pos, fmt.Sprintf("undeclared field %q", mf.Name)))
			continue
		}
		want := schemaTypeToSemaType(f.Type)
		var got Type
		if mf.Expr != nil {
			got = c.infer(mf.Expr, underscore)
		} else if t, ok := c.vars[mf.Name]; ok {
			got = t
		} else {
			c.addDiag(resolveError(mf.Pos, mf.Name))
			continue
		}
		if !typesCompatible(got, want) {
			c.addDiag(typeError(mf.Pos, want.String(), got.String()))
		}
	}
	for _, f := range declared {
		if !given[f.Name] {
			c.addDiag(schemaError(pos, fmt.Sprintf("missing required field %q", f.Name)))
		}
	}
}

func endpointMatches(t Type, endpoint string) bool {
	if t.Kind == KindScalar && t.Scalar == value.KindString {
		return true
	}
	if t.Kind == KindNodeStream && (t.Elem == endpoint || t.Elem == AnyType) {
		return true
	}
	return false
}

func (c *ctx) declaredFields(elem string) ([]schema.Field, bool) {
	if n, ok := c.reg.Node(elem); ok {
		return n.Fields, true
	}
	if e, ok := c.reg.Edge(elem); ok {
		return e.Properties, true
	}
	return nil, false
}

func fieldByName(fields []schema.Field, name string) (schema.Field, bool) {
	for _, f := range fields {
		if f.Name == name {
			return f, true
		}
	}
	return schema.Field{}, false
}

func schemaTypeToSemaType(ft schema.FieldType) Type {
	switch ft.Kind {
	case schema.KindString:
		return Scalar(value.KindString)
	case schema.KindInteger:
		return Scalar(value.KindInteger)
	case schema.KindFloat:
		return Scalar(value.KindFloat)
	case schema.KindBoolean:
		return Scalar(value.KindBoolean)
	case schema.KindArray:
		return ArrayOf(schemaTypeToSemaType(*ft.ElemOf))
	case schema.KindSchemaRef:
		// A reference field stores the referenced entity's id as text.
		return Scalar(value.KindString)
	default:
		return Unit()
	}
}

func typesCompatible(t, want Type) bool {
	if want.Kind == KindArray {
		if t.Kind != KindArray {
			return false
		}
		return typesCompatible(*t.ArrayOf, *want.ArrayOf)
	}
	if want.Kind == KindScalar {
		if t.Kind != KindScalar {
			return false
		}
		if t.Scalar == want.Scalar || t.Scalar == value.KindNull {
			return true
		}
		return want.Scalar == value.KindFloat && t.Scalar == value.KindInteger
	}
	return t.Kind == want.Kind
}
