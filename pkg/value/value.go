// Package value defines the tagged Value union that flows through every
// stage of the HelixQL pipeline: literals in source text, node/edge/vector
// properties, and projected result records all resolve to a value.Value.
package value

import (
	"fmt"
	"sort"
)

// Kind tags the variant held by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindInteger
	KindFloat
	KindBoolean
	KindArray
	KindNodeRef
	KindEdgeRef
	KindVectorRef
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "Null"
	case KindString:
		return "String"
	case KindInteger:
		return "Integer"
	case KindFloat:
		return "Float"
	case KindBoolean:
		return "Boolean"
	case KindArray:
		return "Array"
	case KindNodeRef:
		return "NodeRef"
	case KindEdgeRef:
		return "EdgeRef"
	case KindVectorRef:
		return "VectorRef"
	default:
		return "Unknown"
	}
}

// Value is a tagged union over the scalar and reference types named in
// spec.md §3: String | Integer | Float | Boolean | Array<T> | NodeRef |
// EdgeRef | VectorRef | Null. Only the field matching Kind is meaningful.
type Value struct {
	Kind    Kind
	Str     string
	Int     int64
	Float   float64
	Bool    bool
	Array   []Value
	RefID   string // NodeRef/EdgeRef/VectorRef id (UUIDv4 text form)
	RefType string // declared schema type name of the referenced entity
}

// Null is the NONE literal.
var Null = Value{Kind: KindNull}

func String(s string) Value  { return Value{Kind: KindString, Str: s} }
func Integer(i int64) Value  { return Value{Kind: KindInteger, Int: i} }
func Float(f float64) Value  { return Value{Kind: KindFloat, Float: f} }
func Boolean(b bool) Value   { return Value{Kind: KindBoolean, Bool: b} }
func Array(vs []Value) Value { return Value{Kind: KindArray, Array: vs} }

func NodeRef(id, typeName string) Value {
	return Value{Kind: KindNodeRef, RefID: id, RefType: typeName}
}

func EdgeRef(id, typeName string) Value {
	return Value{Kind: KindEdgeRef, RefID: id, RefType: typeName}
}

func VectorRef(id, typeName string) Value {
	return Value{Kind: KindVectorRef, RefID: id, RefType: typeName}
}

// IsNull reports whether v is the NONE literal.
func (v Value) IsNull() bool { return v.Kind == KindNull }

// Equal compares two values for the EQ/NEQ comparators of spec.md §4.C.
// Scalars compare by value; Integer and Float never unify (the analyzer
// rejects that earlier) so equality here is only ever asked of same-kind
// operands once type-checking has passed.
func (v Value) Equal(other Value) bool {
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case KindNull:
		return true
	case KindString:
		return v.Str == other.Str
	case KindInteger:
		return v.Int == other.Int
	case KindFloat:
		return v.Float == other.Float
	case KindBoolean:
		return v.Bool == other.Bool
	case KindNodeRef, KindEdgeRef, KindVectorRef:
		return v.RefID == other.RefID
	case KindArray:
		if len(v.Array) != len(other.Array) {
			return false
		}
		for i := range v.Array {
			if !v.Array[i].Equal(other.Array[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Compare orders two numeric values for GT/GTE/LT/LTE. Returns -1, 0, 1.
// Callers must ensure both values are Integer or Float.
func Compare(a, b Value) (int, error) {
	af, aok := numeric(a)
	bf, bok := numeric(b)
	if !aok || !bok {
		return 0, fmt.Errorf("value: Compare requires numeric operands, got %s and %s", a.Kind, b.Kind)
	}
	switch {
	case af < bf:
		return -1, nil
	case af > bf:
		return 1, nil
	default:
		return 0, nil
	}
}

func numeric(v Value) (float64, bool) {
	switch v.Kind {
	case KindInteger:
		return float64(v.Int), true
	case KindFloat:
		return v.Float, true
	default:
		return 0, false
	}
}

// ToInterface converts a Value into a JSON-friendly interface{} per the
// wire format of spec.md §6.3 (UUIDs as strings, floats as IEEE-754
// doubles, arrays as arrays).
func (v Value) ToInterface() interface{} {
	switch v.Kind {
	case KindNull:
		return nil
	case KindString:
		return v.Str
	case KindInteger:
		return v.Int
	case KindFloat:
		return v.Float
	case KindBoolean:
		return v.Bool
	case KindArray:
		out := make([]interface{}, len(v.Array))
		for i, item := range v.Array {
			out[i] = item.ToInterface()
		}
		return out
	case KindNodeRef, KindEdgeRef, KindVectorRef:
		return v.RefID
	default:
		return nil
	}
}

// Record is an ordered map from field name to Value, as produced by
// object_step projections (spec.md §4.F). Key order is preserved in Keys
// so that records serialize in source-declared order rather than Go's
// randomized map order.
type Record struct {
	Keys   []string
	Values map[string]Value
}

// NewRecord creates an empty ordered record.
func NewRecord() *Record {
	return &Record{Values: make(map[string]Value)}
}

// Set appends key (if not already present) and assigns its value.
func (r *Record) Set(key string, v Value) {
	if _, ok := r.Values[key]; !ok {
		r.Keys = append(r.Keys, key)
	}
	r.Values[key] = v
}

// ToInterface renders the record as a JSON-compatible map, which does not
// carry key order; callers that need deterministic key order for transport
// should iterate Keys directly rather than ranging over the returned map.
func (r *Record) ToInterface() map[string]interface{} {
	out := make(map[string]interface{}, len(r.Keys))
	for _, k := range r.Keys {
		out[k] = r.Values[k].ToInterface()
	}
	return out
}

// SortedKeys returns a copy of the declared keys, sorted, for comparisons
// that do not depend on declaration order.
func (r *Record) SortedKeys() []string {
	ks := append([]string(nil), r.Keys...)
	sort.Strings(ks)
	return ks
}
