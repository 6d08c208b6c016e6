package exec

import (
	"fmt"

	"github.com/helixdb/helixql/pkg/graphdb"
	"github.com/helixdb/helixql/pkg/value"
)

// ItemKind tags the runtime shape an Item holds as it moves through a
// Chain's step pipeline (spec.md §4.E). Corresponds to the element kinds
// streams carry in pkg/sema/pkg/ir: Node, Edge, a vector search hit,
// a scalar, or a shaped Record.
type ItemKind int

const (
	ItemNode ItemKind = iota
	ItemEdge
	ItemVector
	ItemScalar
	ItemRecord
)

// VectorHit is one SearchV result carried through the pipeline: the id and
// registered type of the matched vector plus the distance it was found at.
type VectorHit struct {
	Type     string
	ID       string
	Distance float64
}

// Item is the tagged runtime value a Stream yields. Only the field named
// by Kind is meaningful.
type Item struct {
	Kind   ItemKind
	Node   *graphdb.Node
	Edge   *graphdb.Edge
	Vector VectorHit
	Scalar value.Value
	Record *value.Record
}

func nodeItem(n *graphdb.Node) Item   { return Item{Kind: ItemNode, Node: n} }
func edgeItem(e *graphdb.Edge) Item   { return Item{Kind: ItemEdge, Edge: e} }
func vectorItem(h VectorHit) Item     { return Item{Kind: ItemVector, Vector: h} }
func scalarItem(v value.Value) Item   { return Item{Kind: ItemScalar, Scalar: v} }
func recordItem(r *value.Record) Item { return Item{Kind: ItemRecord, Record: r} }

// ToValue converts a non-Record Item to the value.Value it stands for as a
// property assignment or an AddE endpoint (spec.md §6.3). Record items
// have no single Value; callers that may see one use ToInterface instead.
func (it Item) ToValue() value.Value {
	switch it.Kind {
	case ItemNode:
		return value.NodeRef(it.Node.ID, it.Node.Type)
	case ItemEdge:
		return value.EdgeRef(it.Edge.ID, it.Edge.Type)
	case ItemVector:
		return value.VectorRef(it.Vector.ID, it.Vector.Type)
	default:
		return it.Scalar
	}
}

// ToInterface renders an Item as the JSON-compatible shape spec.md §6.3
// requires of a query result: objects for records, plain values otherwise.
func (it Item) ToInterface() interface{} {
	if it.Kind == ItemRecord {
		return it.Record.ToInterface()
	}
	return it.ToValue().ToInterface()
}

// id returns the identifier an Item stands for, used by AddE endpoints,
// DROP targets, and ::ID. Only Node/Edge/Vector/String-scalar items have
// one.
func (it Item) id() (string, error) {
	switch it.Kind {
	case ItemNode:
		return it.Node.ID, nil
	case ItemEdge:
		return it.Edge.ID, nil
	case ItemVector:
		return it.Vector.ID, nil
	case ItemScalar:
		if it.Scalar.Kind == value.KindString {
			return it.Scalar.Str, nil
		}
	}
	return "", fmt.Errorf("exec: item of kind %v has no id", it.Kind)
}

// bool reports the truthiness of a scalar Boolean item, as required by
// WHERE/EXISTS/AND/OR operands (spec.md §4.C boolean-context rules).
func (it Item) bool() (bool, error) {
	if it.Kind != ItemScalar || it.Scalar.Kind != value.KindBoolean {
		return false, fmt.Errorf("exec: expected a Bool item, got kind %v", it.Kind)
	}
	return it.Scalar.Bool, nil
}

// fieldValue resolves a declared property name against an Item, used by
// FieldAccess and by shorthand Project fields' property-lookup-first rule.
func (it Item) fieldValue(name string) (value.Value, bool) {
	switch it.Kind {
	case ItemNode:
		v, ok := it.Node.Properties[name]
		return v, ok
	case ItemEdge:
		v, ok := it.Edge.Properties[name]
		return v, ok
	case ItemRecord:
		v, ok := it.Record.Values[name]
		return v, ok
	default:
		return value.Value{}, false
	}
}
