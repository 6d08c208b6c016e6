package graphdb

import "github.com/dgraph-io/badger/v4"

// nodeScanIter walks either every node key directly (byKey) or a node-type
// index bucket (byKey false) that has to dereference to the node key.
type nodeScanIter struct {
	txn    *badgerTxn
	it     *badger.Iterator
	prefix []byte
	byKey  bool
	closed bool
}

func (s *nodeScanIter) Next() (*Node, bool, error) {
	if err := s.txn.checkCtx(); err != nil {
		return nil, false, err
	}
	for !s.closed && s.it.ValidForPrefix(s.prefix) {
		item := s.it.Item()
		var data []byte
		var id string
		var fetchErr error
		if s.byKey {
			id = ""
			fetchErr = item.Value(func(val []byte) error {
				data = append([]byte(nil), val...)
				return nil
			})
		} else {
			id = extractTrailingID(item.Key())
		}
		s.it.Next()
		if fetchErr != nil {
			return nil, false, fetchErr
		}

		if s.byKey {
			n, err := decodeNode(data)
			if err != nil {
				return nil, false, err
			}
			return n, true, nil
		}

		nodeItem, err := s.txn.tx.Get(nodeKey(id))
		if err == badger.ErrKeyNotFound {
			continue // stale index entry racing a delete within the same txn
		}
		if err != nil {
			return nil, false, err
		}
		var n *Node
		err = nodeItem.Value(func(val []byte) error {
			var decErr error
			n, decErr = decodeNode(val)
			return decErr
		})
		if err != nil {
			return nil, false, err
		}
		return n, true, nil
	}
	s.close()
	return nil, false, nil
}

func (s *nodeScanIter) close() {
	if !s.closed {
		s.it.Close()
		s.closed = true
	}
}

type edgeScanIter struct {
	txn    *badgerTxn
	it     *badger.Iterator
	prefix []byte
	byKey  bool
	closed bool
}

func (s *edgeScanIter) Next() (*Edge, bool, error) {
	if err := s.txn.checkCtx(); err != nil {
		return nil, false, err
	}
	for !s.closed && s.it.ValidForPrefix(s.prefix) {
		item := s.it.Item()
		var data []byte
		var id string
		var fetchErr error
		if s.byKey {
			fetchErr = item.Value(func(val []byte) error {
				data = append([]byte(nil), val...)
				return nil
			})
		} else {
			id = extractTrailingID(item.Key())
		}
		s.it.Next()
		if fetchErr != nil {
			return nil, false, fetchErr
		}

		if s.byKey {
			e, err := decodeEdge(data)
			if err != nil {
				return nil, false, err
			}
			return e, true, nil
		}

		edgeItem, err := s.txn.tx.Get(edgeKey(id))
		if err == badger.ErrKeyNotFound {
			continue
		}
		if err != nil {
			return nil, false, err
		}
		var e *Edge
		err = edgeItem.Value(func(val []byte) error {
			var decErr error
			e, decErr = decodeEdge(val)
			return decErr
		})
		if err != nil {
			return nil, false, err
		}
		return e, true, nil
	}
	s.close()
	return nil, false, nil
}

func (s *edgeScanIter) close() {
	if !s.closed {
		s.it.Close()
		s.closed = true
	}
}

// neighborIter walks an adjacency bucket, dereferencing each entry to its
// edge and, when wantType is set, verifying the decoded Edge.Type against
// it to cover the bounded-hash bucket's (rare) collisions.
type neighborIter struct {
	txn      *badgerTxn
	it       *badger.Iterator
	prefix   []byte
	wantType string
	closed   bool
}

func (s *neighborIter) Next() (*Edge, bool, error) {
	if err := s.txn.checkCtx(); err != nil {
		return nil, false, err
	}
	for !s.closed && s.it.ValidForPrefix(s.prefix) {
		id := extractTrailingID(s.it.Item().Key())
		s.it.Next()

		edgeItem, err := s.txn.tx.Get(edgeKey(id))
		if err == badger.ErrKeyNotFound {
			continue
		}
		if err != nil {
			return nil, false, err
		}
		var e *Edge
		err = edgeItem.Value(func(val []byte) error {
			var decErr error
			e, decErr = decodeEdge(val)
			return decErr
		})
		if err != nil {
			return nil, false, err
		}
		if s.wantType != "" && e.Type != s.wantType {
			continue
		}
		return e, true, nil
	}
	s.close()
	return nil, false, nil
}

func (s *neighborIter) close() {
	if !s.closed {
		s.it.Close()
		s.closed = true
	}
}
