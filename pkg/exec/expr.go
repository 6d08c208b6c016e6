package exec

import (
	"context"
	"errors"
	"fmt"

	"github.com/helixdb/helixql/pkg/graphdb"
	"github.com/helixdb/helixql/pkg/ir"
	"github.com/helixdb/helixql/pkg/value"
)

// Runtime error kinds of spec.md §7 not already covered by a backend
// package's own sentinels (graphdb/vectordb propagate as a wrapped
// BackendError cause).
var (
	ErrRuntimeTypeMismatch = errors.New("exec: runtime type mismatch")
	ErrRangeInvalid        = errors.New("exec: invalid RANGE arguments")
)

// evalExpr evaluates any IR expression to the stream of Items it produces.
// Scalars and booleans are represented as a one-item stream so every Expr
// has a uniform result shape (spec.md §4.D's operator table treats "Stream
// of 1" and "Scalar" interchangeably at several op boundaries — IdOf,
// AddNode, AddEdge, AddVector all produce exactly one item).
func (ex *Executor) evalExpr(ctx context.Context, ec *evalCtx, expr ir.Expr) ([]Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch e := expr.(type) {
	case *ir.Lit:
		return []Item{scalarItem(e.Value)}, nil
	case *ir.Var:
		items, ok := ec.vars[e.Name]
		if !ok {
			return nil, fmt.Errorf("exec: unresolved variable %q", e.Name)
		}
		return items, nil
	case *ir.ChainExpr:
		s, err := ex.buildChainStream(ctx, ec, e.Chain)
		if err != nil {
			return nil, err
		}
		return drain(ctx, s)
	case *ir.And:
		v, err := ex.evalAnd(ctx, ec, e.Operands)
		if err != nil {
			return nil, err
		}
		return []Item{scalarItem(value.Boolean(v))}, nil
	case *ir.Or:
		v, err := ex.evalOr(ctx, ec, e.Operands)
		if err != nil {
			return nil, err
		}
		return []Item{scalarItem(value.Boolean(v))}, nil
	case *ir.Exists:
		v, err := ex.evalExists(ctx, ec, e.Sub)
		if err != nil {
			return nil, err
		}
		return []Item{scalarItem(value.Boolean(v))}, nil
	case *ir.SearchV:
		return ex.evalSearchV(ctx, ec, e)
	case *ir.AddNode:
		return ex.evalAddNode(ctx, ec, e)
	case *ir.AddVector:
		return ex.evalAddVector(ctx, ec, e)
	case *ir.BatchAddVector:
		return ex.evalBatchAddVector(ctx, ec, e)
	case *ir.AddEdge:
		return ex.evalAddEdge(ctx, ec, e)
	default:
		return nil, fmt.Errorf("exec: unhandled expression type %T", expr)
	}
}

func (ex *Executor) evalAnd(ctx context.Context, ec *evalCtx, operands []ir.Expr) (bool, error) {
	for _, op := range operands {
		items, err := ex.evalExpr(ctx, ec, op)
		if err != nil {
			return false, err
		}
		v, err := firstBool(items)
		if err != nil {
			return false, err
		}
		if !v {
			return false, nil
		}
	}
	return true, nil
}

func (ex *Executor) evalOr(ctx context.Context, ec *evalCtx, operands []ir.Expr) (bool, error) {
	for _, op := range operands {
		items, err := ex.evalExpr(ctx, ec, op)
		if err != nil {
			return false, err
		}
		v, err := firstBool(items)
		if err != nil {
			return false, err
		}
		if v {
			return true, nil
		}
	}
	return false, nil
}

// evalExists short-circuits on the sub-traversal's first element (spec.md
// §4.E) rather than draining it, when Sub is a Chain — the common case.
func (ex *Executor) evalExists(ctx context.Context, ec *evalCtx, sub ir.Expr) (bool, error) {
	ce, ok := sub.(*ir.ChainExpr)
	if !ok {
		items, err := ex.evalExpr(ctx, ec, sub)
		if err != nil {
			return false, err
		}
		return len(items) > 0, nil
	}
	s, err := ex.buildChainStream(ctx, ec, ce.Chain)
	if err != nil {
		return false, err
	}
	_, ok, err = s.Next(ctx)
	if err != nil {
		return false, err
	}
	return ok, nil
}

func (ex *Executor) evalSearchV(ctx context.Context, ec *evalCtx, e *ir.SearchV) ([]Item, error) {
	qItems, err := ex.evalExpr(ctx, ec, e.Query)
	if err != nil {
		return nil, err
	}
	query, err := firstVector(qItems)
	if err != nil {
		return nil, err
	}
	kItems, err := ex.evalExpr(ctx, ec, e.K)
	if err != nil {
		return nil, err
	}
	k, err := firstInt(kItems)
	if err != nil {
		return nil, err
	}

	hits, err := ex.Vectors.Search(ctx, e.Type, query, int(k))
	if err != nil {
		return nil, fmt.Errorf("exec: SearchV<%s>: %w", e.Type, err)
	}
	out := make([]Item, len(hits))
	for i, h := range hits {
		out[i] = vectorItem(VectorHit{Type: e.Type, ID: h.ID, Distance: h.Distance})
	}
	return out, nil
}

func (ex *Executor) evalAddNode(ctx context.Context, ec *evalCtx, e *ir.AddNode) ([]Item, error) {
	props, err := ex.resolveFieldAssigns(ctx, ec, e.Props)
	if err != nil {
		return nil, err
	}
	node := &graphdb.Node{ID: value.NewID(), Type: e.Type, Properties: props}
	if err := ec.txn.PutNode(node); err != nil {
		return nil, fmt.Errorf("exec: AddN<%s>: %w", e.Type, err)
	}
	return []Item{nodeItem(node)}, nil
}

func (ex *Executor) evalAddVector(ctx context.Context, ec *evalCtx, e *ir.AddVector) ([]Item, error) {
	items, err := ex.evalExpr(ctx, ec, e.Vector)
	if err != nil {
		return nil, err
	}
	vec, err := firstVector(items)
	if err != nil {
		return nil, err
	}
	id := value.NewID()
	if err := ex.Vectors.Put(ctx, e.Type, id, vec); err != nil {
		return nil, fmt.Errorf("exec: AddV<%s>: %w", e.Type, err)
	}
	return []Item{vectorItem(VectorHit{Type: e.Type, ID: id})}, nil
}

func (ex *Executor) evalBatchAddVector(ctx context.Context, ec *evalCtx, e *ir.BatchAddVector) ([]Item, error) {
	items, ok := ec.vars[e.Identifier]
	if !ok {
		return nil, fmt.Errorf("exec: unresolved variable %q", e.Identifier)
	}
	batch, err := firstScalar(items)
	if err != nil {
		return nil, err
	}
	if batch.Kind != value.KindArray {
		return nil, fmt.Errorf("exec: BatchAddV<%s>: %q is not an array of vectors", e.Type, e.Identifier)
	}
	out := make([]Item, 0, len(batch.Array))
	for _, row := range batch.Array {
		vec, err := valueToVector(row)
		if err != nil {
			return nil, fmt.Errorf("exec: BatchAddV<%s>: %w", e.Type, err)
		}
		id := value.NewID()
		if err := ex.Vectors.Put(ctx, e.Type, id, vec); err != nil {
			return nil, fmt.Errorf("exec: BatchAddV<%s>: %w", e.Type, err)
		}
		out = append(out, vectorItem(VectorHit{Type: e.Type, ID: id}))
	}
	return out, nil
}

func (ex *Executor) evalAddEdge(ctx context.Context, ec *evalCtx, e *ir.AddEdge) ([]Item, error) {
	props, err := ex.resolveFieldAssigns(ctx, ec, e.Props)
	if err != nil {
		return nil, err
	}
	fromID, err := ex.resolveEndpoint(ctx, ec, e.From)
	if err != nil {
		return nil, err
	}
	toID, err := ex.resolveEndpoint(ctx, ec, e.To)
	if err != nil {
		return nil, err
	}

	txn := ec.txn
	if err := ex.checkEndpointTypes(txn, e.Type, fromID, toID); err != nil {
		return nil, err
	}

	edge := &graphdb.Edge{ID: value.NewID(), Type: e.Type, From: fromID, To: toID, Properties: props}
	if err := txn.PutEdge(edge); err != nil {
		return nil, fmt.Errorf("exec: AddE<%s>: %w", e.Type, err)
	}
	return []Item{edgeItem(edge)}, nil
}

// checkEndpointTypes enforces spec.md §4.E's "AddE validates at runtime
// that the resolved from and to nodes exist and have types matching the
// edge type's declared endpoints, else TypeMismatch."
func (ex *Executor) checkEndpointTypes(txn graphdb.Txn, edgeType, fromID, toID string) error {
	et, ok := ex.Registry.Edge(edgeType)
	if !ok {
		return fmt.Errorf("exec: AddE<%s>: %w", edgeType, ErrRuntimeTypeMismatch)
	}
	from, err := txn.GetNode(fromID)
	if err != nil {
		return fmt.Errorf("exec: AddE<%s> resolving From: %w", edgeType, err)
	}
	if from.Type != et.From {
		return fmt.Errorf("exec: AddE<%s>: From node has type %q, edge declares From: %s: %w", edgeType, from.Type, et.From, ErrRuntimeTypeMismatch)
	}
	to, err := txn.GetNode(toID)
	if err != nil {
		return fmt.Errorf("exec: AddE<%s> resolving To: %w", edgeType, err)
	}
	if to.Type != et.To {
		return fmt.Errorf("exec: AddE<%s>: To node has type %q, edge declares To: %s: %w", edgeType, to.Type, et.To, ErrRuntimeTypeMismatch)
	}
	return nil
}

// resolveEndpoint accepts either a bare id (Scalar(String)) or a
// NodeStream expression, taking its first element's id, mirroring the
// analyzer's endpointMatches rule that allows either shape.
func (ex *Executor) resolveEndpoint(ctx context.Context, ec *evalCtx, e ir.Expr) (string, error) {
	items, err := ex.evalExpr(ctx, ec, e)
	if err != nil {
		return "", err
	}
	if len(items) == 0 {
		return "", fmt.Errorf("exec: AddE endpoint resolved to no element")
	}
	return items[0].id()
}

func (ex *Executor) resolveFieldAssigns(ctx context.Context, ec *evalCtx, fields []ir.FieldAssign) (map[string]value.Value, error) {
	out := make(map[string]value.Value, len(fields))
	for _, fa := range fields {
		v, err := ex.resolveFieldAssign(ctx, ec, fa)
		if err != nil {
			return nil, err
		}
		out[fa.Name] = v
	}
	return out, nil
}

func (ex *Executor) resolveFieldAssign(ctx context.Context, ec *evalCtx, fa ir.FieldAssign) (value.Value, error) {
	items, err := ex.evalExpr(ctx, ec, fa.Value)
	if err != nil {
		return value.Value{}, fmt.Errorf("exec: field %q: %w", fa.Name, err)
	}
	return itemsToFieldValue(items), nil
}
