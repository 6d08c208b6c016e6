// Package exec is the pull-based Query Executor of spec.md §4.E: it
// interprets a lowered pkg/ir.Query against a pkg/graphdb.Graph and a
// pkg/vectordb.Vector backend, the way pkg/sema folds the same IR shape
// into a static Type at compile time (pkg/ir's own doc comment draws this
// parallel explicitly).
package exec

import (
	"context"
	"fmt"

	"github.com/helixdb/helixql/pkg/graphdb"
	"github.com/helixdb/helixql/pkg/ir"
	"github.com/helixdb/helixql/pkg/schema"
	"github.com/helixdb/helixql/pkg/value"
	"github.com/helixdb/helixql/pkg/vectordb"
)

// Executor holds the two backend capabilities and the schema registry
// every lowered operator needs: the registry to validate AddE endpoint
// types at runtime, the graph for nodes/edges/adjacency, the vector index
// for SearchV/AddV/BatchAddV.
type Executor struct {
	Registry *schema.Registry
	Graph    graphdb.Graph
	Vectors  vectordb.Vector
}

func New(reg *schema.Registry, g graphdb.Graph, v vectordb.Vector) *Executor {
	return &Executor{Registry: reg, Graph: g, Vectors: v}
}

// Run executes one compiled Query: it opens a read or write transaction
// per Query.Mutating, binds args into a fresh scope, runs the body, and
// commits on success or rolls back on any error — spec.md §8 invariant 5,
// "on any runtime error, the post-state equals the pre-state."
func (ex *Executor) Run(ctx context.Context, q *ir.Query, args map[string]value.Value) (interface{}, error) {
	var txn graphdb.Txn
	var err error
	if q.Mutating {
		txn, err = ex.Graph.BeginWrite(ctx)
	} else {
		txn, err = ex.Graph.BeginRead(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("exec: beginning transaction: %w", err)
	}

	result, runErr := ex.runQuery(ctx, txn, q, args)
	if runErr != nil {
		_ = txn.Rollback()
		return nil, runErr
	}
	if err := txn.Commit(); err != nil {
		return nil, fmt.Errorf("exec: commit: %w", err)
	}
	return result, nil
}

func (ex *Executor) runQuery(ctx context.Context, txn graphdb.Txn, q *ir.Query, args map[string]value.Value) (interface{}, error) {
	ec := newEvalCtx(txn)
	for _, p := range q.Params {
		v, ok := args[p.Name]
		if !ok {
			return nil, fmt.Errorf("exec: missing argument %q", p.Name)
		}
		ec = ec.withVar(p.Name, []Item{scalarItem(v)})
	}

	for _, instr := range q.Body {
		var err error
		ec, err = ex.runInstr(ctx, ec, instr)
		if err != nil {
			return nil, err
		}
	}

	results, err := ex.evalReturns(ctx, ec, q.Returns)
	if err != nil {
		return nil, err
	}
	if len(results) == 1 {
		return results[0], nil
	}
	return results, nil
}

// runInstr evaluates one body instruction, returning the (possibly
// var-extended) scope later instructions and the RETURN clause see.
func (ex *Executor) runInstr(ctx context.Context, ec *evalCtx, instr ir.Instr) (*evalCtx, error) {
	switch in := instr.(type) {
	case *ir.Bind:
		items, err := ex.evalExpr(ctx, ec, in.Value)
		if err != nil {
			return nil, fmt.Errorf("exec: binding %q: %w", in.Var, err)
		}
		return ec.withVar(in.Var, items), nil
	case *ir.Eval:
		if _, err := ex.evalExpr(ctx, ec, in.Value); err != nil {
			return nil, err
		}
		return ec, nil
	case *ir.NoOpDrop:
		return ec, nil
	default:
		return nil, fmt.Errorf("exec: unhandled instruction type %T", instr)
	}
}

// evalReturns evaluates each RETURN expression independently and renders
// every one to its own JSON-compatible slot with itemsToResult, preserving
// per-expression boundaries: `RETURN e1, e2` produces the 2-tuple
// `[itemsToResult(e1), itemsToResult(e2)]` even when e1 or e2 itself
// yields more than one item, since flattening every expression's items
// into one combined slice (as a naive concatenation would) loses the
// boundary between them. runQuery unwraps the single-element case per
// spec.md §4.F ("a single-expression return is unwrapped to that value").
func (ex *Executor) evalReturns(ctx context.Context, ec *evalCtx, returns []ir.Expr) ([]interface{}, error) {
	out := make([]interface{}, len(returns))
	for i, r := range returns {
		items, err := ex.evalExpr(ctx, ec, r)
		if err != nil {
			return nil, err
		}
		out[i] = itemsToResult(items)
	}
	return out, nil
}
