package graphdb

import (
	"context"
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v4"
)

// BadgerGraph is the persistent Graph backend, adapted from the teacher's
// pkg/storage.BadgerEngine. Key structure:
//
//	Nodes:          0x01 + nodeID            -> JSON(Node)
//	Edges:          0x02 + edgeID            -> JSON(Edge)
//	Node type index: 0x03 + type + 0x00 + nodeID -> empty
//	Edge type index: 0x04 + type + 0x00 + edgeID -> empty
//	Out adjacency:  0x05 + nodeID + 0x00 + edgeTypeHash(8) + 0x00 + edgeID -> empty
//	In adjacency:   0x06 + nodeID + 0x00 + edgeTypeHash(8) + 0x00 + edgeID -> empty
type BadgerGraph struct {
	db     *badger.DB
	mu     sync.RWMutex
	closed bool
}

// Options configures BadgerGraph, trimmed to what HelixQL's pkg/config
// actually exposes (data directory, in-memory mode for tests).
type Options struct {
	DataDir    string
	InMemory   bool
	SyncWrites bool
}

// Open opens a persistent BadgerGraph rooted at opts.DataDir.
func Open(opts Options) (*BadgerGraph, error) {
	bo := badger.DefaultOptions(opts.DataDir).
		WithLogger(nil).
		WithMemTableSize(16 << 20).
		WithValueLogFileSize(64 << 20).
		WithNumMemtables(2).
		WithNumLevelZeroTables(2).
		WithNumLevelZeroTablesStall(4).
		WithValueThreshold(1024).
		WithBlockCacheSize(32 << 20).
		WithIndexCacheSize(16 << 20)

	if opts.InMemory {
		bo = bo.WithInMemory(true)
	}
	if opts.SyncWrites {
		bo = bo.WithSyncWrites(true)
	}

	db, err := badger.Open(bo)
	if err != nil {
		return nil, fmt.Errorf("graphdb: opening badger: %w", err)
	}
	return &BadgerGraph{db: db}, nil
}

// OpenInMemory opens a BadgerGraph with no disk persistence, for tests.
func OpenInMemory() (*BadgerGraph, error) {
	return Open(Options{InMemory: true})
}

// BeginRead starts a read-only transaction.
func (g *BadgerGraph) BeginRead(ctx context.Context) (Txn, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.closed {
		return nil, ErrClosed
	}
	return &badgerTxn{
		graph:    g,
		ctx:      ctx,
		writable: false,
		state:    StateReadOnly,
		tx:       g.db.NewTransaction(false),
	}, nil
}

// BeginWrite starts a transaction capable of mutating state. It remains in
// StateReadOnly until its first mutating call, per spec.md §4.G.
func (g *BadgerGraph) BeginWrite(ctx context.Context) (Txn, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.closed {
		return nil, ErrClosed
	}
	return &badgerTxn{
		graph:    g,
		ctx:      ctx,
		writable: true,
		state:    StateReadOnly,
		tx:       g.db.NewTransaction(true),
	}, nil
}

// Close closes the underlying BadgerDB database.
func (g *BadgerGraph) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return nil
	}
	g.closed = true
	return g.db.Close()
}

var _ Graph = (*BadgerGraph)(nil)
