package exec

import (
	"context"
	"fmt"

	"github.com/helixdb/helixql/pkg/graphdb"
	"github.com/helixdb/helixql/pkg/ir"
	"github.com/helixdb/helixql/pkg/value"
)

// buildChainStream folds a Chain's Start and Steps into a Stream pipeline,
// the way pkg/sema folds the same Chain into a single static Type
// (ir.Chain's doc comment). Each Step wraps the Stream built so far.
func (ex *Executor) buildChainStream(ctx context.Context, ec *evalCtx, c *ir.Chain) (Stream, error) {
	cur, err := ex.buildStart(ctx, ec, c.Start)
	if err != nil {
		return nil, err
	}
	for _, step := range c.Steps {
		cur, err = ex.buildStep(ctx, ec, cur, step)
		if err != nil {
			return nil, err
		}
	}
	return cur, nil
}

func (ex *Executor) buildStart(ctx context.Context, ec *evalCtx, start ir.Start) (Stream, error) {
	switch s := start.(type) {
	case *ir.ScanNodes:
		return ex.scanNodes(ctx, ec, s)
	case *ir.ScanEdges:
		return ex.scanEdges(ctx, ec, s)
	case *ir.ScanVectors:
		return ex.scanVectors(ctx, ec, s)
	case *ir.VarStart:
		items, ok := ec.vars[s.Name]
		if !ok {
			return nil, fmt.Errorf("exec: unresolved variable %q", s.Name)
		}
		return newSliceStream(items), nil
	case *ir.Underscore:
		if ec.underscore == nil {
			return nil, fmt.Errorf("exec: `_` has no binding outside a WHERE/EXISTS/object-step context")
		}
		return newSliceStream([]Item{*ec.underscore}), nil
	default:
		return nil, fmt.Errorf("exec: unhandled start type %T", start)
	}
}

func (ex *Executor) evalIDs(ctx context.Context, ec *evalCtx, ids []ir.Expr) ([]string, error) {
	out := make([]string, 0, len(ids))
	for _, idExpr := range ids {
		items, err := ex.evalExpr(ctx, ec, idExpr)
		if err != nil {
			return nil, err
		}
		v, err := firstScalar(items)
		if err != nil {
			return nil, err
		}
		if v.Kind != value.KindString {
			return nil, fmt.Errorf("exec: expected an id (Scalar(String)), got %s", v.Kind)
		}
		out = append(out, v.Str)
	}
	return out, nil
}

func (ex *Executor) scanNodes(ctx context.Context, ec *evalCtx, s *ir.ScanNodes) (Stream, error) {
	if len(s.IDs) > 0 {
		ids, err := ex.evalIDs(ctx, ec, s.IDs)
		if err != nil {
			return nil, err
		}
		items := make([]Item, 0, len(ids))
		for _, id := range ids {
			n, err := ec.txn.GetNode(id)
			if err != nil {
				return nil, fmt.Errorf("exec: N<%s>(%s): %w", s.Type, id, err)
			}
			items = append(items, nodeItem(n))
		}
		return newSliceStream(items), nil
	}
	it, err := ec.txn.ScanNodes(s.Type)
	if err != nil {
		return nil, fmt.Errorf("exec: scanning nodes: %w", err)
	}
	return &nodeIterStream{it: it}, nil
}

func (ex *Executor) scanEdges(ctx context.Context, ec *evalCtx, s *ir.ScanEdges) (Stream, error) {
	if len(s.IDs) > 0 {
		ids, err := ex.evalIDs(ctx, ec, s.IDs)
		if err != nil {
			return nil, err
		}
		items := make([]Item, 0, len(ids))
		for _, id := range ids {
			e, err := ec.txn.GetEdge(id)
			if err != nil {
				return nil, fmt.Errorf("exec: E<%s>(%s): %w", s.Type, id, err)
			}
			items = append(items, edgeItem(e))
		}
		return newSliceStream(items), nil
	}
	it, err := ec.txn.ScanEdges(s.Type)
	if err != nil {
		return nil, fmt.Errorf("exec: scanning edges: %w", err)
	}
	return &edgeIterStream{it: it}, nil
}

// scanVectors handles `V<T>(id, …)`. The Vector backend (spec.md §6.2) has
// no get-by-id or scan-all operation, only put/search/delete, so an
// explicit id list is taken on faith as a reference to a vector put
// earlier in the same query or a prior one; a bare, id-less `V<T>` scan
// has no backend operation to serve it and is rejected.
func (ex *Executor) scanVectors(ctx context.Context, ec *evalCtx, s *ir.ScanVectors) (Stream, error) {
	if len(s.IDs) == 0 {
		return nil, fmt.Errorf("exec: V<%s> with no explicit id has no backend scan to run", s.Type)
	}
	ids, err := ex.evalIDs(ctx, ec, s.IDs)
	if err != nil {
		return nil, err
	}
	items := make([]Item, len(ids))
	for i, id := range ids {
		items[i] = vectorItem(VectorHit{Type: s.Type, ID: id})
	}
	return newSliceStream(items), nil
}

func (ex *Executor) buildStep(ctx context.Context, ec *evalCtx, cur Stream, step ir.Step) (Stream, error) {
	switch s := step.(type) {
	case *ir.Traverse:
		return &traverseStream{txn: ec.txn, upstream: cur, dir: s.Dir, edgeType: s.EdgeType, emitEdges: s.EmitEdges}, nil
	case *ir.Filter:
		return &filterStream{ex: ex, ec: ec, upstream: cur, pred: s.Pred}, nil
	case *ir.Range:
		return ex.buildRange(ctx, ec, cur, s)
	case *ir.Count:
		return &countStream{upstream: cur}, nil
	case *ir.IDOf:
		return &idOfStream{upstream: cur}, nil
	case *ir.FieldAccess:
		return &fieldAccessStream{upstream: cur, field: s.Field}, nil
	case *ir.Compare:
		return &compareStream{ex: ex, ec: ec, upstream: cur, kind: s.Kind, rhs: s.Value}, nil
	case *ir.Project:
		return &projectStream{ex: ex, ec: ec, upstream: cur, fields: s.Fields}, nil
	case *ir.Closure:
		return &closureStream{ex: ex, ec: ec, upstream: cur, param: s.Param, fields: s.Project.Fields}, nil
	case *ir.Update:
		return &updateStream{ex: ex, ec: ec, txn: ec.txn, upstream: cur, fields: s.Fields}, nil
	case *ir.Drop:
		return &dropStream{txn: ec.txn, upstream: cur}, nil
	default:
		return nil, fmt.Errorf("exec: unhandled step type %T", step)
	}
}

func (ex *Executor) buildRange(ctx context.Context, ec *evalCtx, cur Stream, s *ir.Range) (Stream, error) {
	loItems, err := ex.evalExpr(ctx, ec, s.Lo)
	if err != nil {
		return nil, err
	}
	lo, err := firstInt(loItems)
	if err != nil {
		return nil, err
	}
	hiItems, err := ex.evalExpr(ctx, ec, s.Hi)
	if err != nil {
		return nil, err
	}
	hi, err := firstInt(hiItems)
	if err != nil {
		return nil, err
	}
	if lo > hi {
		return nil, fmt.Errorf("exec: RANGE(%d, %d): %w", lo, hi, ErrRangeInvalid)
	}
	return &rangeStream{upstream: cur, lo: int(lo), hi: int(hi)}, nil
}

// nodeIterStream adapts a graphdb.NodeIter to Stream.
type nodeIterStream struct{ it graphdb.NodeIter }

func (s *nodeIterStream) Next(ctx context.Context) (Item, bool, error) {
	n, ok, err := s.it.Next()
	if err != nil || !ok {
		return Item{}, ok, err
	}
	return nodeItem(n), true, nil
}

// edgeIterStream adapts a graphdb.EdgeIter to Stream.
type edgeIterStream struct{ it graphdb.EdgeIter }

func (s *edgeIterStream) Next(ctx context.Context) (Item, bool, error) {
	e, ok, err := s.it.Next()
	if err != nil || !ok {
		return Item{}, ok, err
	}
	return edgeItem(e), true, nil
}

// dirIter pairs an adjacency-index cursor with the direction it was opened
// in, so traverseStream knows which endpoint of each yielded edge is the
// "other side" once it dereferences the edge into a neighbor node.
type dirIter struct {
	it  graphdb.EdgeIter
	dir graphdb.Direction
}

// traverseStream implements Out<E>/In<E>/Both<E>(/*E variants): for each
// upstream Node item, it concatenates the out-adjacency then (for Both)
// the in-adjacency edge iterators, per spec.md §4.E. No deduplication: a
// node reachable by two edges is yielded twice.
type traverseStream struct {
	txn       graphdb.Txn
	upstream  Stream
	dir       ir.GraphDir
	edgeType  string
	emitEdges bool
	queue     []dirIter
}

func (t *traverseStream) Next(ctx context.Context) (Item, bool, error) {
	for {
		if err := ctx.Err(); err != nil {
			return Item{}, false, err
		}
		for len(t.queue) > 0 {
			cur := t.queue[0]
			e, ok, err := cur.it.Next()
			if err != nil {
				return Item{}, false, err
			}
			if !ok {
				t.queue = t.queue[1:]
				continue
			}
			if t.emitEdges {
				return edgeItem(e), true, nil
			}
			neighborID := e.To
			if cur.dir == graphdb.DirIn {
				neighborID = e.From
			}
			n, err := t.txn.GetNode(neighborID)
			if err != nil {
				return Item{}, false, fmt.Errorf("exec: traversal resolving neighbor %s: %w", neighborID, err)
			}
			return nodeItem(n), true, nil
		}

		up, ok, err := t.upstream.Next(ctx)
		if err != nil {
			return Item{}, false, err
		}
		if !ok {
			return Item{}, false, nil
		}
		if up.Kind != ItemNode {
			return Item{}, false, fmt.Errorf("exec: traversal step requires a Node item, got kind %v", up.Kind)
		}

		var dirs []graphdb.Direction
		switch t.dir {
		case ir.DirOut:
			dirs = []graphdb.Direction{graphdb.DirOut}
		case ir.DirIn:
			dirs = []graphdb.Direction{graphdb.DirIn}
		default:
			dirs = []graphdb.Direction{graphdb.DirOut, graphdb.DirIn}
		}
		for _, d := range dirs {
			it, err := t.txn.Neighbors(up.Node.ID, t.edgeType, d)
			if err != nil {
				return Item{}, false, err
			}
			t.queue = append(t.queue, dirIter{it: it, dir: d})
		}
	}
}

// filterStream implements ::WHERE(pred): pred is re-evaluated against a
// fresh scope with `_` bound to the current item (spec.md §4.E).
type filterStream struct {
	ex       *Executor
	ec       *evalCtx
	upstream Stream
	pred     ir.Expr
}

func (f *filterStream) Next(ctx context.Context) (Item, bool, error) {
	for {
		it, ok, err := f.upstream.Next(ctx)
		if err != nil || !ok {
			return Item{}, ok, err
		}
		sub := f.ec.withUnderscore(&it)
		items, err := f.ex.evalExpr(ctx, sub, f.pred)
		if err != nil {
			return Item{}, false, err
		}
		keep, err := firstBool(items)
		if err != nil {
			return Item{}, false, err
		}
		if keep {
			return it, true, nil
		}
	}
}

// fieldAccessStream is the lowering of a single shorthand-field object
// step immediately followed by a comparator: it projects each item to
// one declared field's scalar value (spec.md §4.C).
type fieldAccessStream struct {
	upstream Stream
	field    string
}

func (s *fieldAccessStream) Next(ctx context.Context) (Item, bool, error) {
	it, ok, err := s.upstream.Next(ctx)
	if err != nil || !ok {
		return Item{}, ok, err
	}
	v, ok := it.fieldValue(s.field)
	if !ok {
		return Item{}, false, fmt.Errorf("exec: undeclared field %q", s.field)
	}
	return scalarItem(v), true, nil
}

// compareStream applies a comparator to the chain's current scalar value.
type compareStream struct {
	ex       *Executor
	ec       *evalCtx
	upstream Stream
	kind     ir.ComparatorKind
	rhs      ir.Expr
}

func (s *compareStream) Next(ctx context.Context) (Item, bool, error) {
	it, ok, err := s.upstream.Next(ctx)
	if err != nil || !ok {
		return Item{}, ok, err
	}
	rhsItems, err := s.ex.evalExpr(ctx, s.ec.withUnderscore(&it), s.rhs)
	if err != nil {
		return Item{}, false, err
	}
	rhs, err := firstScalar(rhsItems)
	if err != nil {
		return Item{}, false, err
	}
	result, err := compareValues(s.kind, it.Scalar, rhs)
	if err != nil {
		return Item{}, false, err
	}
	return scalarItem(value.Boolean(result)), true, nil
}

func compareValues(kind ir.ComparatorKind, lhs, rhs value.Value) (bool, error) {
	switch kind {
	case ir.CmpEQ:
		return lhs.Equal(rhs), nil
	case ir.CmpNEQ:
		return !lhs.Equal(rhs), nil
	default:
		cmp, err := value.Compare(lhs, rhs)
		if err != nil {
			return false, fmt.Errorf("exec: %w", err)
		}
		switch kind {
		case ir.CmpGT:
			return cmp > 0, nil
		case ir.CmpGTE:
			return cmp >= 0, nil
		case ir.CmpLT:
			return cmp < 0, nil
		case ir.CmpLTE:
			return cmp <= 0, nil
		default:
			return false, fmt.Errorf("exec: unhandled comparator kind %v", kind)
		}
	}
}

// rangeStream drops the first lo items and emits up to hi-lo more, lazily:
// it never pulls past what the caller actually consumes.
type rangeStream struct {
	upstream    Stream
	lo, hi      int
	skippedOnce bool
	emitted     int
}

func (r *rangeStream) Next(ctx context.Context) (Item, bool, error) {
	if !r.skippedOnce {
		for i := 0; i < r.lo; i++ {
			_, ok, err := r.upstream.Next(ctx)
			if err != nil {
				return Item{}, false, err
			}
			if !ok {
				break
			}
		}
		r.skippedOnce = true
	}
	if r.emitted >= r.hi-r.lo {
		return Item{}, false, nil
	}
	it, ok, err := r.upstream.Next(ctx)
	if err != nil || !ok {
		return Item{}, ok, err
	}
	r.emitted++
	return it, true, nil
}

// countStream drains its upstream once and yields the single resulting
// count, per spec.md §8 invariant 7 ("COUNT equals the length of the
// stream it replaces").
type countStream struct {
	upstream Stream
	done     bool
}

func (c *countStream) Next(ctx context.Context) (Item, bool, error) {
	if c.done {
		return Item{}, false, nil
	}
	items, err := drain(ctx, c.upstream)
	if err != nil {
		return Item{}, false, err
	}
	c.done = true
	return scalarItem(value.Integer(int64(len(items)))), true, nil
}

// idOfStream implements ::ID, which requires a materialized single
// element (spec.md §4.D).
type idOfStream struct {
	upstream Stream
	done     bool
}

func (s *idOfStream) Next(ctx context.Context) (Item, bool, error) {
	if s.done {
		return Item{}, false, nil
	}
	it, ok, err := s.upstream.Next(ctx)
	if err != nil {
		return Item{}, false, err
	}
	if !ok {
		return Item{}, false, fmt.Errorf("exec: ::ID requires a single materialized element, got none")
	}
	if _, more, err := s.upstream.Next(ctx); err != nil {
		return Item{}, false, err
	} else if more {
		return Item{}, false, fmt.Errorf("exec: ::ID requires a single materialized element, got more than one")
	}
	id, err := it.id()
	if err != nil {
		return Item{}, false, err
	}
	s.done = true
	return scalarItem(value.String(id)), true, nil
}

// projectStream is the fully-resolved lowering of an object_step or
// exclude_field step (spec.md §4.F).
type projectStream struct {
	ex       *Executor
	ec       *evalCtx
	upstream Stream
	fields   []ir.ProjectField
}

func (p *projectStream) Next(ctx context.Context) (Item, bool, error) {
	it, ok, err := p.upstream.Next(ctx)
	if err != nil || !ok {
		return Item{}, ok, err
	}
	rec, err := p.ex.project(ctx, p.ec.withUnderscore(&it), it, p.fields)
	if err != nil {
		return Item{}, false, err
	}
	return recordItem(rec), true, nil
}

// project evaluates one object_step's fields against item, preserving
// source-declared key order (spec.md §4.F: "Records are emitted ... in
// source-declared key order").
func (ex *Executor) project(ctx context.Context, ec *evalCtx, item Item, fields []ir.ProjectField) (*value.Record, error) {
	rec := value.NewRecord()
	for _, f := range fields {
		if f.Value == nil {
			// Shorthand field: resolve against the current item's declared
			// properties first, falling back to a bound variable of the
			// same name (pkg/ir's doc comment on ProjectField).
			if v, ok := item.fieldValue(f.Name); ok {
				rec.Set(f.Name, v)
				continue
			}
			if v, ok := ec.vars[f.Name]; ok {
				rec.Set(f.Name, itemsToFieldValue(v))
				continue
			}
			return nil, fmt.Errorf("exec: shorthand field %q resolves to neither a declared property nor a bound variable", f.Name)
		}
		items, err := ex.evalExpr(ctx, ec, f.Value)
		if err != nil {
			return nil, fmt.Errorf("exec: field %q: %w", f.Name, err)
		}
		rec.Set(f.Name, itemsToFieldValue(items))
	}
	return rec, nil
}

// closureStream rebinds the current item to Param before evaluating the
// inner object step, so nested traversals inside the projection can refer
// to the outer item by name instead of an ambiguous `_` (spec.md §4.F).
type closureStream struct {
	ex       *Executor
	ec       *evalCtx
	upstream Stream
	param    string
	fields   []ir.ProjectField
}

func (c *closureStream) Next(ctx context.Context) (Item, bool, error) {
	it, ok, err := c.upstream.Next(ctx)
	if err != nil || !ok {
		return Item{}, ok, err
	}
	sub := c.ec.withVar(c.param, []Item{it}).withUnderscore(&it)
	rec, err := c.ex.project(ctx, sub, it, c.fields)
	if err != nil {
		return Item{}, false, err
	}
	return recordItem(rec), true, nil
}

// updateStream implements ::UPDATE({...}): mutations take effect
// immediately in the surrounding transaction (spec.md §4.E) and the
// mutated item passes through unchanged in shape.
type updateStream struct {
	ex       *Executor
	ec       *evalCtx
	txn      graphdb.Txn
	upstream Stream
	fields   []ir.FieldAssign
}

func (u *updateStream) Next(ctx context.Context) (Item, bool, error) {
	it, ok, err := u.upstream.Next(ctx)
	if err != nil || !ok {
		return Item{}, ok, err
	}
	sub := u.ec.withUnderscore(&it)
	switch it.Kind {
	case ItemNode:
		for _, fa := range u.fields {
			v, err := u.ex.resolveFieldAssign(ctx, sub, fa)
			if err != nil {
				return Item{}, false, err
			}
			it.Node.Properties[fa.Name] = v
		}
		if err := u.txn.PutNode(it.Node); err != nil {
			return Item{}, false, fmt.Errorf("exec: UPDATE: %w", err)
		}
	case ItemEdge:
		for _, fa := range u.fields {
			v, err := u.ex.resolveFieldAssign(ctx, sub, fa)
			if err != nil {
				return Item{}, false, err
			}
			it.Edge.Properties[fa.Name] = v
		}
		if err := u.txn.PutEdge(it.Edge); err != nil {
			return Item{}, false, fmt.Errorf("exec: UPDATE: %w", err)
		}
	default:
		return Item{}, false, fmt.Errorf("exec: UPDATE requires a Node or Edge item, got kind %v", it.Kind)
	}
	return it, true, nil
}

// dropStream implements DROP, cascading per spec.md §3/§8 invariant 4 via
// graphdb.Txn's own cascading DeleteNode. It yields nothing: DROP's IR
// type is Unit (spec.md §4.D), so draining it for its side effects is the
// only thing callers do with it.
type dropStream struct {
	txn      graphdb.Txn
	upstream Stream
}

func (d *dropStream) Next(ctx context.Context) (Item, bool, error) {
	for {
		it, ok, err := d.upstream.Next(ctx)
		if err != nil {
			return Item{}, false, err
		}
		if !ok {
			return Item{}, false, nil
		}
		switch it.Kind {
		case ItemNode:
			if err := d.txn.DeleteNode(it.Node.ID); err != nil {
				return Item{}, false, fmt.Errorf("exec: DROP: %w", err)
			}
		case ItemEdge:
			if err := d.txn.DeleteEdge(it.Edge.ID); err != nil {
				return Item{}, false, fmt.Errorf("exec: DROP: %w", err)
			}
		default:
			return Item{}, false, fmt.Errorf("exec: DROP requires a Node or Edge item, got kind %v", it.Kind)
		}
	}
}
