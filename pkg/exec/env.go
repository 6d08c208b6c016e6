package exec

import "github.com/helixdb/helixql/pkg/graphdb"

// evalCtx is the per-evaluation scope threaded through expression and
// chain evaluation: the transaction every mutating operator writes
// through, the query's parameters and body-bound variables, and whatever
// item `_` is currently bound to (non-nil only inside a WHERE/EXISTS
// predicate, an object-step field expression, or a closure's body —
// spec.md §6.1's "anonymous traversals `_::…`").
//
// withUnderscore/withVar never mutate the receiver: each returns a new
// scope so a Stream stage can derive one per upstream item without one
// item's binding leaking into another's.
type evalCtx struct {
	txn        graphdb.Txn
	vars       map[string][]Item
	underscore *Item
}

func newEvalCtx(txn graphdb.Txn) *evalCtx {
	return &evalCtx{txn: txn, vars: make(map[string][]Item)}
}

func (e *evalCtx) withUnderscore(it *Item) *evalCtx {
	return &evalCtx{txn: e.txn, vars: e.vars, underscore: it}
}

func (e *evalCtx) withVar(name string, items []Item) *evalCtx {
	vars := make(map[string][]Item, len(e.vars)+1)
	for k, v := range e.vars {
		vars[k] = v
	}
	vars[name] = items
	return &evalCtx{txn: e.txn, vars: vars, underscore: e.underscore}
}
