// Package graphdb is the Graph backend capability of spec.md §4.G/§6.2: a
// store of typed nodes and edges with a directional adjacency index, and a
// transaction façade whose state machine is ReadOnly | Writing | Aborted |
// Committed. Grounded on the teacher's pkg/storage (badger.go,
// badger_transaction.go, transaction.go, types.go), generalized from the
// teacher's label/Neo4j-property model to HelixQL's single declared
// Type per node/edge and its edge-typed, directional adjacency lookups.
package graphdb

import (
	"context"
	"errors"

	"github.com/helixdb/helixql/pkg/value"
)

// Common errors, mirroring the teacher's pkg/storage/types.go sentinel set.
var (
	ErrNotFound      = errors.New("graphdb: not found")
	ErrAlreadyExists = errors.New("graphdb: already exists")
	ErrInvalidID     = errors.New("graphdb: invalid id")
	ErrClosed        = errors.New("graphdb: closed")
	ErrReadOnly      = errors.New("graphdb: transaction is read-only")
	ErrTxnClosed     = errors.New("graphdb: transaction already committed or aborted")
)

// Node is one stored graph vertex: a declared schema Type plus its
// property bag. Unlike the teacher's Node, there is exactly one Type (no
// multi-label model) since HelixQL's N:: declares a single node type.
type Node struct {
	ID         string
	Type       string
	Properties map[string]value.Value
}

// Edge is one stored directed graph edge between two nodes of a declared
// edge Type.
type Edge struct {
	ID         string
	Type       string
	From       string
	To         string
	Properties map[string]value.Value
}

// Direction selects which side of the adjacency index Neighbors reads from.
type Direction int

const (
	DirOut Direction = iota
	DirIn
)

// TxnState is the transaction state machine of spec.md §4.G.
type TxnState int

const (
	StateReadOnly TxnState = iota
	StateWriting
	StateAborted
	StateCommitted
)

func (s TxnState) String() string {
	switch s {
	case StateReadOnly:
		return "ReadOnly"
	case StateWriting:
		return "Writing"
	case StateAborted:
		return "Aborted"
	case StateCommitted:
		return "Committed"
	default:
		return "Unknown"
	}
}

// NodeIter is a pull-based cursor over nodes, matching spec.md §4.E's
// "each operator exposes next() returning the next item or end-of-stream".
// Next returns ok=false (with a nil error) at end-of-stream.
type NodeIter interface {
	Next() (n *Node, ok bool, err error)
}

// EdgeIter is the edge analog of NodeIter.
type EdgeIter interface {
	Next() (e *Edge, ok bool, err error)
}

// Txn is one read or write transaction against a Graph backend, per
// spec.md §6.2's begin_read/begin_write/commit/abort contract.
type Txn interface {
	State() TxnState

	ScanNodes(typeName string) (NodeIter, error)
	GetNode(id string) (*Node, error)
	PutNode(node *Node) error
	DeleteNode(id string) error // cascades: deletes every edge touching id

	ScanEdges(typeName string) (EdgeIter, error)
	GetEdge(id string) (*Edge, error)
	PutEdge(edge *Edge) error
	DeleteEdge(id string) error

	// Neighbors enumerates edges of the adjacency index keyed by
	// (nodeID, edgeType, direction). edgeType == "" matches any edge type.
	Neighbors(nodeID, edgeType string, dir Direction) (EdgeIter, error)

	Commit() error
	Rollback() error
}

// Graph is the abstract backend capability the executor is polymorphic
// over (spec.md §9 "Polymorphism over a capability set").
type Graph interface {
	BeginRead(ctx context.Context) (Txn, error)
	BeginWrite(ctx context.Context) (Txn, error)
	Close() error
}
