package graphdb

import (
	"context"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// badgerTxn wraps a single badger.Txn with the ReadOnly|Writing|Aborted|
// Committed state machine of spec.md §4.G. It is used directly for both
// begin_read and begin_write transactions — only writable marks whether a
// mutating call is permitted to transition state out of ReadOnly at all.
type badgerTxn struct {
	graph    *BadgerGraph
	ctx      context.Context
	tx       *badger.Txn
	writable bool
	state    TxnState
}

func (t *badgerTxn) State() TxnState { return t.state }

func (t *badgerTxn) checkCtx() error {
	if t.ctx == nil {
		return nil
	}
	return t.ctx.Err()
}

func (t *badgerTxn) requireActive() error {
	if t.state == StateAborted || t.state == StateCommitted {
		return ErrTxnClosed
	}
	return t.checkCtx()
}

// requireMutable transitions ReadOnly -> Writing on a writable transaction,
// or fails for a read-only one.
func (t *badgerTxn) requireMutable() error {
	if err := t.requireActive(); err != nil {
		return err
	}
	if !t.writable {
		return ErrReadOnly
	}
	if t.state == StateReadOnly {
		t.state = StateWriting
	}
	return nil
}

func (t *badgerTxn) abort(err error) error {
	t.state = StateAborted
	t.tx.Discard()
	return err
}

func (t *badgerTxn) GetNode(id string) (*Node, error) {
	if err := t.requireActive(); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, ErrInvalidID
	}
	item, err := t.tx.Get(nodeKey(id))
	if err == badger.ErrKeyNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var n *Node
	err = item.Value(func(val []byte) error {
		var decErr error
		n, decErr = decodeNode(val)
		return decErr
	})
	return n, err
}

func (t *badgerTxn) PutNode(node *Node) error {
	if err := t.requireMutable(); err != nil {
		return err
	}
	if node == nil || node.ID == "" {
		return ErrInvalidID
	}

	key := nodeKey(node.ID)
	var previous *Node
	if item, err := t.tx.Get(key); err == nil {
		if err := item.Value(func(val []byte) error {
			var decErr error
			previous, decErr = decodeNode(val)
			return decErr
		}); err != nil {
			return t.abort(fmt.Errorf("graphdb: reading existing node: %w", err))
		}
	} else if err != badger.ErrKeyNotFound {
		return t.abort(err)
	}

	data, err := encodeNode(node)
	if err != nil {
		return t.abort(fmt.Errorf("graphdb: encoding node: %w", err))
	}
	if err := t.tx.Set(key, data); err != nil {
		return t.abort(err)
	}

	if previous != nil && previous.Type != node.Type {
		if err := t.tx.Delete(nodeTypeKey(previous.Type, node.ID)); err != nil {
			return t.abort(err)
		}
	}
	if previous == nil || previous.Type != node.Type {
		if err := t.tx.Set(nodeTypeKey(node.Type, node.ID), []byte{}); err != nil {
			return t.abort(err)
		}
	}
	return nil
}

func (t *badgerTxn) DeleteNode(id string) error {
	if err := t.requireMutable(); err != nil {
		return err
	}
	if id == "" {
		return ErrInvalidID
	}

	key := nodeKey(id)
	item, err := t.tx.Get(key)
	if err == badger.ErrKeyNotFound {
		return ErrNotFound
	}
	if err != nil {
		return t.abort(err)
	}
	var node *Node
	if err := item.Value(func(val []byte) error {
		var decErr error
		node, decErr = decodeNode(val)
		return decErr
	}); err != nil {
		return t.abort(err)
	}

	// Cascade: delete every edge touching this node (spec.md §8 invariant 4).
	if err := t.deleteAdjacentEdges(id); err != nil {
		return t.abort(err)
	}

	if err := t.tx.Delete(nodeTypeKey(node.Type, id)); err != nil {
		return t.abort(err)
	}
	if err := t.tx.Delete(key); err != nil {
		return t.abort(err)
	}
	return nil
}

// deleteAdjacentEdges removes every edge reachable from nodeID's out or in
// adjacency buckets, including their index entries.
func (t *badgerTxn) deleteAdjacentEdges(nodeID string) error {
	var edgeIDs []string
	for _, prefix := range [2]byte{prefixOutAdj, prefixInAdj} {
		p := adjAnyTypePrefix(prefix, nodeID)
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := t.tx.NewIterator(opts)
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			edgeIDs = append(edgeIDs, extractTrailingID(it.Item().Key()))
		}
		it.Close()
	}
	for _, id := range edgeIDs {
		if err := t.deleteEdgeByID(id); err != nil && err != ErrNotFound {
			return err
		}
	}
	return nil
}

func (t *badgerTxn) ScanNodes(typeName string) (NodeIter, error) {
	if err := t.requireActive(); err != nil {
		return nil, err
	}
	if typeName == "" {
		opts := badger.DefaultIteratorOptions
		it := t.tx.NewIterator(opts)
		prefix := []byte{prefixNode}
		it.Seek(prefix)
		return &nodeScanIter{txn: t, it: it, prefix: prefix, byKey: true}, nil
	}
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	it := t.tx.NewIterator(opts)
	prefix := nodeTypePrefix(typeName)
	it.Seek(prefix)
	return &nodeScanIter{txn: t, it: it, prefix: prefix, byKey: false}, nil
}

func (t *badgerTxn) GetEdge(id string) (*Edge, error) {
	if err := t.requireActive(); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, ErrInvalidID
	}
	item, err := t.tx.Get(edgeKey(id))
	if err == badger.ErrKeyNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var e *Edge
	err = item.Value(func(val []byte) error {
		var decErr error
		e, decErr = decodeEdge(val)
		return decErr
	})
	return e, err
}

func (t *badgerTxn) PutEdge(edge *Edge) error {
	if err := t.requireMutable(); err != nil {
		return err
	}
	if edge == nil || edge.ID == "" {
		return ErrInvalidID
	}

	key := edgeKey(edge.ID)
	_, err := t.tx.Get(key)
	if err == nil {
		return t.abort(ErrAlreadyExists)
	}
	if err != badger.ErrKeyNotFound {
		return t.abort(err)
	}

	if _, err := t.tx.Get(nodeKey(edge.From)); err == badger.ErrKeyNotFound {
		return ErrNotFound
	} else if err != nil {
		return t.abort(err)
	}
	if _, err := t.tx.Get(nodeKey(edge.To)); err == badger.ErrKeyNotFound {
		return ErrNotFound
	} else if err != nil {
		return t.abort(err)
	}

	data, err := encodeEdge(edge)
	if err != nil {
		return t.abort(fmt.Errorf("graphdb: encoding edge: %w", err))
	}
	if err := t.tx.Set(key, data); err != nil {
		return t.abort(err)
	}
	if err := t.tx.Set(edgeTypeKey(edge.Type, edge.ID), []byte{}); err != nil {
		return t.abort(err)
	}
	if err := t.tx.Set(outAdjKey(edge.From, edge.Type, edge.ID), []byte{}); err != nil {
		return t.abort(err)
	}
	if err := t.tx.Set(inAdjKey(edge.To, edge.Type, edge.ID), []byte{}); err != nil {
		return t.abort(err)
	}
	return nil
}

func (t *badgerTxn) DeleteEdge(id string) error {
	if err := t.requireMutable(); err != nil {
		return err
	}
	if err := t.deleteEdgeByID(id); err != nil {
		if err != ErrNotFound {
			return t.abort(err)
		}
		return err
	}
	return nil
}

// deleteEdgeByID is the internal helper shared by DeleteEdge and node
// cascade deletion; it does not itself transition or abort the txn state,
// leaving that to the caller.
func (t *badgerTxn) deleteEdgeByID(id string) error {
	key := edgeKey(id)
	item, err := t.tx.Get(key)
	if err == badger.ErrKeyNotFound {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	var edge *Edge
	if err := item.Value(func(val []byte) error {
		var decErr error
		edge, decErr = decodeEdge(val)
		return decErr
	}); err != nil {
		return err
	}

	if err := t.tx.Delete(edgeTypeKey(edge.Type, id)); err != nil {
		return err
	}
	if err := t.tx.Delete(outAdjKey(edge.From, edge.Type, id)); err != nil {
		return err
	}
	if err := t.tx.Delete(inAdjKey(edge.To, edge.Type, id)); err != nil {
		return err
	}
	return t.tx.Delete(key)
}

func (t *badgerTxn) ScanEdges(typeName string) (EdgeIter, error) {
	if err := t.requireActive(); err != nil {
		return nil, err
	}
	if typeName == "" {
		it := t.tx.NewIterator(badger.DefaultIteratorOptions)
		prefix := []byte{prefixEdge}
		it.Seek(prefix)
		return &edgeScanIter{txn: t, it: it, prefix: prefix, byKey: true}, nil
	}
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	it := t.tx.NewIterator(opts)
	prefix := edgeTypePrefix(typeName)
	it.Seek(prefix)
	return &edgeScanIter{txn: t, it: it, prefix: prefix, byKey: false}, nil
}

func (t *badgerTxn) Neighbors(nodeID, edgeType string, dir Direction) (EdgeIter, error) {
	if err := t.requireActive(); err != nil {
		return nil, err
	}
	if nodeID == "" {
		return nil, ErrInvalidID
	}
	prefixByte := prefixOutAdj
	if dir == DirIn {
		prefixByte = prefixInAdj
	}
	var prefix []byte
	if edgeType == "" {
		prefix = adjAnyTypePrefix(prefixByte, nodeID)
	} else {
		prefix = adjTypePrefix(prefixByte, nodeID, edgeType)
	}

	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	it := t.tx.NewIterator(opts)
	it.Seek(prefix)
	return &neighborIter{txn: t, it: it, prefix: prefix, wantType: edgeType}, nil
}

func (t *badgerTxn) Commit() error {
	if err := t.requireActive(); err != nil {
		return err
	}
	if err := t.tx.Commit(); err != nil {
		t.state = StateAborted
		return fmt.Errorf("graphdb: commit: %w", err)
	}
	t.state = StateCommitted
	return nil
}

func (t *badgerTxn) Rollback() error {
	if t.state == StateAborted || t.state == StateCommitted {
		return ErrTxnClosed
	}
	t.tx.Discard()
	t.state = StateAborted
	return nil
}

var _ Txn = (*badgerTxn)(nil)
