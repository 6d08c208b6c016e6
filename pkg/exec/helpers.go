package exec

import (
	"fmt"

	"github.com/helixdb/helixql/pkg/value"
)

func firstScalar(items []Item) (value.Value, error) {
	if len(items) == 0 {
		return value.Value{}, fmt.Errorf("exec: expected a scalar value, got an empty stream")
	}
	return items[0].ToValue(), nil
}

func firstBool(items []Item) (bool, error) {
	if len(items) == 0 {
		return false, fmt.Errorf("exec: expected a Bool value, got an empty stream")
	}
	return items[0].bool()
}

func firstInt(items []Item) (int64, error) {
	v, err := firstScalar(items)
	if err != nil {
		return 0, err
	}
	if v.Kind != value.KindInteger {
		return 0, fmt.Errorf("exec: expected Scalar(Integer), got %s", v.Kind)
	}
	return v.Int, nil
}

func firstVector(items []Item) ([]float32, error) {
	v, err := firstScalar(items)
	if err != nil {
		return nil, err
	}
	return valueToVector(v)
}

func valueToVector(v value.Value) ([]float32, error) {
	if v.Kind != value.KindArray {
		return nil, fmt.Errorf("exec: expected [Float], got %s", v.Kind)
	}
	out := make([]float32, len(v.Array))
	for i, e := range v.Array {
		switch e.Kind {
		case value.KindFloat:
			out[i] = float32(e.Float)
		case value.KindInteger:
			out[i] = float32(e.Int)
		default:
			return nil, fmt.Errorf("exec: expected a numeric vector element, got %s", e.Kind)
		}
	}
	return out, nil
}

// itemsToFieldValue renders a field expression's evaluated stream as the
// Value a Record or property assignment stores: a single element unwraps
// directly, multiple elements (a nested traversal's results) become an
// Array per spec.md §6.3's "arrays for streams".
func itemsToFieldValue(items []Item) value.Value {
	if len(items) == 1 {
		return items[0].ToValue()
	}
	vals := make([]value.Value, len(items))
	for i, it := range items {
		vals[i] = it.ToValue()
	}
	return value.Array(vals)
}

// itemsToResult renders a RETURN expression's evaluated stream as the
// JSON-compatible shape spec.md §6.3 requires: a stream of exactly one
// element unwraps to that element (matching S1's "returns one node", not
// a one-element array); any other count is an array.
func itemsToResult(items []Item) interface{} {
	if len(items) == 1 {
		return items[0].ToInterface()
	}
	out := make([]interface{}, len(items))
	for i, it := range items {
		out[i] = it.ToInterface()
	}
	return out
}
