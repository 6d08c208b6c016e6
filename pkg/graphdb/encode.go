package graphdb

import (
	"encoding/json"
	"fmt"

	"github.com/helixdb/helixql/pkg/value"
)

// wireValue is the JSON-serializable form of a value.Value, carrying its
// Kind explicitly so decoding doesn't lose the String/Integer/Float/
// NodeRef/etc. distinction the way a bare encoding/json round-trip through
// interface{} would. Mirrors the teacher's serializableNode/serializableEdge
// pattern of an explicit wire struct alongside the domain type.
type wireValue struct {
	Kind    string      `json:"kind"`
	Str     string      `json:"str,omitempty"`
	Int     int64       `json:"int,omitempty"`
	Float   float64     `json:"float,omitempty"`
	Bool    bool        `json:"bool,omitempty"`
	Array   []wireValue `json:"array,omitempty"`
	RefID   string      `json:"refId,omitempty"`
	RefType string      `json:"refType,omitempty"`
}

func encodeValue(v value.Value) wireValue {
	w := wireValue{Kind: v.Kind.String()}
	switch v.Kind {
	case value.KindString:
		w.Str = v.Str
	case value.KindInteger:
		w.Int = v.Int
	case value.KindFloat:
		w.Float = v.Float
	case value.KindBoolean:
		w.Bool = v.Bool
	case value.KindArray:
		w.Array = make([]wireValue, len(v.Array))
		for i, e := range v.Array {
			w.Array[i] = encodeValue(e)
		}
	case value.KindNodeRef, value.KindEdgeRef, value.KindVectorRef:
		w.RefID = v.RefID
		w.RefType = v.RefType
	}
	return w
}

func decodeValue(w wireValue) (value.Value, error) {
	switch w.Kind {
	case "Null", "":
		return value.Null, nil
	case "String":
		return value.String(w.Str), nil
	case "Integer":
		return value.Integer(w.Int), nil
	case "Float":
		return value.Float(w.Float), nil
	case "Boolean":
		return value.Boolean(w.Bool), nil
	case "Array":
		vs := make([]value.Value, len(w.Array))
		for i, e := range w.Array {
			dv, err := decodeValue(e)
			if err != nil {
				return value.Value{}, err
			}
			vs[i] = dv
		}
		return value.Array(vs), nil
	case "NodeRef":
		return value.NodeRef(w.RefID, w.RefType), nil
	case "EdgeRef":
		return value.EdgeRef(w.RefID, w.RefType), nil
	case "VectorRef":
		return value.VectorRef(w.RefID, w.RefType), nil
	default:
		return value.Value{}, fmt.Errorf("graphdb: unknown value kind %q in stored record", w.Kind)
	}
}

type wireNode struct {
	ID         string               `json:"id"`
	Type       string               `json:"type"`
	Properties map[string]wireValue `json:"properties,omitempty"`
}

type wireEdge struct {
	ID         string               `json:"id"`
	Type       string               `json:"type"`
	From       string               `json:"from"`
	To         string               `json:"to"`
	Properties map[string]wireValue `json:"properties,omitempty"`
}

func encodeNode(n *Node) ([]byte, error) {
	w := wireNode{ID: n.ID, Type: n.Type}
	if len(n.Properties) > 0 {
		w.Properties = make(map[string]wireValue, len(n.Properties))
		for k, v := range n.Properties {
			w.Properties[k] = encodeValue(v)
		}
	}
	return json.Marshal(w)
}

func decodeNode(data []byte) (*Node, error) {
	var w wireNode
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, err
	}
	n := &Node{ID: w.ID, Type: w.Type}
	if len(w.Properties) > 0 {
		n.Properties = make(map[string]value.Value, len(w.Properties))
		for k, wv := range w.Properties {
			dv, err := decodeValue(wv)
			if err != nil {
				return nil, err
			}
			n.Properties[k] = dv
		}
	}
	return n, nil
}

func encodeEdge(e *Edge) ([]byte, error) {
	w := wireEdge{ID: e.ID, Type: e.Type, From: e.From, To: e.To}
	if len(e.Properties) > 0 {
		w.Properties = make(map[string]wireValue, len(e.Properties))
		for k, v := range e.Properties {
			w.Properties[k] = encodeValue(v)
		}
	}
	return json.Marshal(w)
}

func decodeEdge(data []byte) (*Edge, error) {
	var w wireEdge
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, err
	}
	e := &Edge{ID: w.ID, Type: w.Type, From: w.From, To: w.To}
	if len(w.Properties) > 0 {
		e.Properties = make(map[string]value.Value, len(w.Properties))
		for k, wv := range w.Properties {
			dv, err := decodeValue(wv)
			if err != nil {
				return nil, err
			}
			e.Properties[k] = dv
		}
	}
	return e, nil
}
