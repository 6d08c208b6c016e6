// Package schema holds the NodeType/EdgeType/VectorType declarations
// parsed from a HelixQL source file (spec.md §4.B) and answers the
// type-lookup queries the analyzer and executor need.
package schema

import (
	"fmt"

	"github.com/helixdb/helixql/pkg/lang/ast"
)

// Kind of a scalar-or-array field type, resolved from ast.FieldType.
type Kind int

const (
	KindString Kind = iota
	KindInteger
	KindFloat
	KindBoolean
	KindArray
	KindSchemaRef // refers to a declared NodeType/EdgeType/VectorType by name
)

// FieldType is the resolved (schema-independent) type of a field.
type FieldType struct {
	Kind    Kind
	ElemOf  *FieldType // set when Kind == KindArray
	RefName string     // set when Kind == KindSchemaRef
}

func (t FieldType) String() string {
	switch t.Kind {
	case KindString:
		return "String"
	case KindInteger:
		return "Integer"
	case KindFloat:
		return "Float"
	case KindBoolean:
		return "Boolean"
	case KindArray:
		return "[" + t.ElemOf.String() + "]"
	case KindSchemaRef:
		return t.RefName
	default:
		return "?"
	}
}

// Equal reports structural equality between two field types.
func (t FieldType) Equal(o FieldType) bool {
	if t.Kind != o.Kind {
		return false
	}
	switch t.Kind {
	case KindArray:
		if t.ElemOf == nil || o.ElemOf == nil {
			return t.ElemOf == o.ElemOf
		}
		return t.ElemOf.Equal(*o.ElemOf)
	case KindSchemaRef:
		return t.RefName == o.RefName
	default:
		return true
	}
}

// Field is a single declared property.
type Field struct {
	Name string
	Type FieldType
}

// NodeType is a declared `N::Name { fields }`.
type NodeType struct {
	Name   string
	Fields []Field
}

// FieldNames returns the declared field names in declaration order.
func (n *NodeType) FieldNames() []string {
	names := make([]string, len(n.Fields))
	for i, f := range n.Fields {
		names[i] = f.Name
	}
	return names
}

// Field looks up a declared field by name.
func (n *NodeType) Field(name string) (Field, bool) {
	for _, f := range n.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// EdgeType is a declared `E::Name { From, To, Properties }`.
type EdgeType struct {
	Name       string
	From       string
	To         string
	Properties []Field
}

func (e *EdgeType) FieldNames() []string {
	names := make([]string, len(e.Properties))
	for i, f := range e.Properties {
		names[i] = f.Name
	}
	return names
}

func (e *EdgeType) Field(name string) (Field, bool) {
	for _, f := range e.Properties {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// VectorType is a declared `V::Name`. Dimensionality and metric are
// configured at the backend, not in the grammar (Design Notes Open
// Question (a)).
type VectorType struct {
	Name string
}

// Registry holds all schema declarations of a source file, keyed by
// uppercase identifier. Populated once before any query is analyzed;
// read-only after that (§5 — "The schema registry is read-only after
// load").
type Registry struct {
	nodes   map[string]*NodeType
	edges   map[string]*EdgeType
	vectors map[string]*VectorType
}

// Error is one of the SchemaError variants of spec.md §4.B.
type Error struct {
	Kind string // "Duplicate" | "UnknownEndpoint" | "UnknownType"
	Name string
}

func (e *Error) Error() string {
	switch e.Kind {
	case "Duplicate":
		return fmt.Sprintf("schema: duplicate declaration of %q", e.Name)
	case "UnknownEndpoint":
		return fmt.Sprintf("schema: edge endpoint references unknown node type %q", e.Name)
	case "UnknownType":
		return fmt.Sprintf("schema: reference to unknown type %q", e.Name)
	default:
		return fmt.Sprintf("schema: error (%s) on %q", e.Kind, e.Name)
	}
}

// Build constructs a Registry from a parsed ast.Source, checking the
// invariants of spec.md §3 (identity by name, no duplicates; edge
// endpoints resolve to declared NodeTypes). Declaration order is
// irrelevant; forward references are legal (§4.B).
func Build(src *ast.Source) (*Registry, error) {
	r := &Registry{
		nodes:   make(map[string]*NodeType),
		edges:   make(map[string]*EdgeType),
		vectors: make(map[string]*VectorType),
	}

	for _, n := range src.Nodes {
		if _, exists := r.nodes[n.Name]; exists {
			return nil, &Error{Kind: "Duplicate", Name: n.Name}
		}
		nt := &NodeType{Name: n.Name}
		for _, f := range n.Fields {
			ft, err := resolveFieldType(f.Type)
			if err != nil {
				return nil, err
			}
			nt.Fields = append(nt.Fields, Field{Name: f.Name, Type: ft})
		}
		r.nodes[n.Name] = nt
	}

	for _, v := range src.Vectors {
		if _, exists := r.vectors[v.Name]; exists {
			return nil, &Error{Kind: "Duplicate", Name: v.Name}
		}
		r.vectors[v.Name] = &VectorType{Name: v.Name}
	}

	for _, e := range src.Edges {
		if _, exists := r.edges[e.Name]; exists {
			return nil, &Error{Kind: "Duplicate", Name: e.Name}
		}
		et := &EdgeType{Name: e.Name, From: e.From, To: e.To}
		for _, f := range e.Properties {
			ft, err := resolveFieldType(f.Type)
			if err != nil {
				return nil, err
			}
			et.Properties = append(et.Properties, Field{Name: f.Name, Type: ft})
		}
		r.edges[e.Name] = et
	}

	// Edge endpoint invariant: From/To resolve to declared NodeTypes at the
	// end of schema parsing (spec.md §3).
	for _, e := range r.edges {
		if _, ok := r.nodes[e.From]; !ok {
			return nil, &Error{Kind: "UnknownEndpoint", Name: e.From}
		}
		if _, ok := r.nodes[e.To]; !ok {
			return nil, &Error{Kind: "UnknownEndpoint", Name: e.To}
		}
	}

	return r, nil
}

func resolveFieldType(ft ast.FieldType) (FieldType, error) {
	if ft.ArrayOf != nil {
		elem, err := resolveFieldType(*ft.ArrayOf)
		if err != nil {
			return FieldType{}, err
		}
		return FieldType{Kind: KindArray, ElemOf: &elem}, nil
	}
	switch ft.Name {
	case "String":
		return FieldType{Kind: KindString}, nil
	case "Integer":
		return FieldType{Kind: KindInteger}, nil
	case "Float":
		return FieldType{Kind: KindFloat}, nil
	case "Boolean":
		return FieldType{Kind: KindBoolean}, nil
	case "ID":
		// ID is shorthand for the string text form of a UUID (spec.md's
		// `x: ID` parameter in scenario S2); it is not itself a schema
		// declaration, so it resolves directly to String rather than a
		// schema reference.
		return FieldType{Kind: KindString}, nil
	default:
		// A reference to a NodeType/EdgeType/VectorType declared elsewhere
		// in the source (forward references are legal). Build does not check
		// that the name is declared: an undeclared name is kept as a
		// KindSchemaRef and no UnknownType error is returned.
		return FieldType{Kind: KindSchemaRef, RefName: ft.Name}, nil
	}
}

// Node looks up a declared NodeType by name.
func (r *Registry) Node(name string) (*NodeType, bool) {
	n, ok := r.nodes[name]
	return n, ok
}

// Edge looks up a declared EdgeType by name.
func (r *Registry) Edge(name string) (*EdgeType, bool) {
	e, ok := r.edges[name]
	return e, ok
}

// Vector looks up a declared VectorType by name.
func (r *Registry) Vector(name string) (*VectorType, bool) {
	v, ok := r.vectors[name]
	return v, ok
}

// Nodes enumerates all declared NodeTypes.
func (r *Registry) Nodes() []*NodeType {
	out := make([]*NodeType, 0, len(r.nodes))
	for _, n := range r.nodes {
		out = append(out, n)
	}
	return out
}

// Edges enumerates all declared EdgeTypes.
func (r *Registry) Edges() []*EdgeType {
	out := make([]*EdgeType, 0, len(r.edges))
	for _, e := range r.edges {
		out = append(out, e)
	}
	return out
}

// Vectors enumerates all declared VectorTypes.
func (r *Registry) Vectors() []*VectorType {
	out := make([]*VectorType, 0, len(r.vectors))
	for _, v := range r.vectors {
		out = append(out, v)
	}
	return out
}

// EdgesFrom returns every EdgeType whose From endpoint equals nodeType;
// EdgesTo is the To-side counterpart.
func (r *Registry) EdgesFrom(nodeType string) []*EdgeType {
	var out []*EdgeType
	for _, e := range r.edges {
		if e.From == nodeType {
			out = append(out, e)
		}
	}
	return out
}

func (r *Registry) EdgesTo(nodeType string) []*EdgeType {
	var out []*EdgeType
	for _, e := range r.edges {
		if e.To == nodeType {
			out = append(out, e)
		}
	}
	return out
}
