// Package sema type-checks HelixQL queries against a schema.Registry,
// resolving identifiers and annotating the AST with static types (spec.md
// §4.C). It is grounded on the type-directed structure of the original
// Rust code generator (helixc/generator/generator.rs): every branch that
// generator took to emit Rust implies a static rule here, checked instead
// of compiled.
package sema

import (
	"fmt"

	"github.com/helixdb/helixql/pkg/value"
)

// Kind tags the shape of a static Type.
type Kind int

const (
	KindNodeStream Kind = iota
	KindEdgeStream
	KindVectorStream
	KindScalar
	KindBool
	KindRecord
	KindUnit
	KindArray
)

// AnyType is the schema-element-name used when a stream's element type is
// unconstrained (e.g. bare `N`, or a Both<E> step whose endpoints differ).
const AnyType = "Any"

// RecordField is one field of a Record type (the output shape of an
// object_step projection).
type RecordField struct {
	Name string
	Type Type
}

// Type is the static type of a HelixQL expression, one of the variants
// named in spec.md §4.C.
type Type struct {
	Kind    Kind
	Elem    string     // schema type name for *Stream kinds; "" otherwise
	Scalar  value.Kind // for KindScalar: String | Integer | Float | Boolean
	Fields  []RecordField
	ArrayOf *Type // for KindArray
}

func NodeStream(elem string) Type   { return Type{Kind: KindNodeStream, Elem: elem} }
func EdgeStream(elem string) Type   { return Type{Kind: KindEdgeStream, Elem: elem} }
func VectorStream(elem string) Type { return Type{Kind: KindVectorStream, Elem: elem} }
func Scalar(k value.Kind) Type      { return Type{Kind: KindScalar, Scalar: k} }
func Bool() Type                    { return Type{Kind: KindBool} }
func Unit() Type                    { return Type{Kind: KindUnit} }
func Record(fields []RecordField) Type {
	return Type{Kind: KindRecord, Fields: fields}
}
func ArrayOf(elem Type) Type { return Type{Kind: KindArray, ArrayOf: &elem} }

func (t Type) String() string {
	switch t.Kind {
	case KindNodeStream:
		return fmt.Sprintf("NodeStream<%s>", t.Elem)
	case KindEdgeStream:
		return fmt.Sprintf("EdgeStream<%s>", t.Elem)
	case KindVectorStream:
		return fmt.Sprintf("VectorStream<%s>", t.Elem)
	case KindScalar:
		return fmt.Sprintf("Scalar(%s)", t.Scalar)
	case KindBool:
		return "Bool"
	case KindRecord:
		return "Record{...}"
	case KindUnit:
		return "Unit"
	case KindArray:
		return fmt.Sprintf("[%s]", t.ArrayOf.String())
	default:
		return "?"
	}
}

// IsStream reports whether t is one of the *Stream kinds.
func (t Type) IsStream() bool {
	return t.Kind == KindNodeStream || t.Kind == KindEdgeStream || t.Kind == KindVectorStream
}

// ElementTypeName returns the schema type name a stream carries, or ""
// when t is not a stream or its element type is unconstrained (Any).
func (t Type) ElementTypeName() string {
	if !t.IsStream() || t.Elem == AnyType {
		return ""
	}
	return t.Elem
}

// IsNumeric reports whether t is Scalar(Integer) or Scalar(Float), the
// operand type GT/GTE/LT/LTE require.
func (t Type) IsNumeric() bool {
	return t.Kind == KindScalar && (t.Scalar == value.KindInteger || t.Scalar == value.KindFloat)
}

// SameScalar reports whether t and o are both KindScalar of the same kind,
// the unification EQ/NEQ require.
func (t Type) SameScalar(o Type) bool {
	return t.Kind == KindScalar && o.Kind == KindScalar && t.Scalar == o.Scalar
}
