package query

import (
	"fmt"

	"github.com/helixdb/helixql/pkg/sema"
	"github.com/helixdb/helixql/pkg/value"
)

// ArgsFromJSON converts a JSON-decoded argument map (as produced by
// encoding/json.Unmarshal into map[string]interface{}) into the
// map[string]value.Value Runtime.Run expects, coercing each value to the
// query's declared parameter type — JSON numbers decode as float64
// regardless of source syntax, so an Integer-typed parameter needs the
// declared type to convert correctly rather than guessing from the JSON
// literal's shape (spec.md §6.1's grammar has no separate int/float JSON
// literal distinction to fall back on).
func (p *Program) ArgsFromJSON(queryName string, raw map[string]interface{}) (map[string]value.Value, error) {
	q, ok := p.IR.Queries[queryName]
	if !ok {
		return nil, fmt.Errorf("query: no such query %q", queryName)
	}
	out := make(map[string]value.Value, len(q.Params))
	for _, param := range q.Params {
		v, ok := raw[param.Name]
		if !ok {
			return nil, fmt.Errorf("query: missing argument %q", param.Name)
		}
		coerced, err := coerce(v, param.Type)
		if err != nil {
			return nil, fmt.Errorf("query: argument %q: %w", param.Name, err)
		}
		out[param.Name] = coerced
	}
	return out, nil
}

func coerce(v interface{}, t sema.Type) (value.Value, error) {
	switch t.Kind {
	case sema.KindScalar:
		return coerceScalar(v, t.Scalar)
	case sema.KindArray:
		arr, ok := v.([]interface{})
		if !ok {
			return value.Value{}, fmt.Errorf("expected an array, got %T", v)
		}
		out := make([]value.Value, len(arr))
		for i, elem := range arr {
			cv, err := coerce(elem, *t.ArrayOf)
			if err != nil {
				return value.Value{}, fmt.Errorf("element %d: %w", i, err)
			}
			out[i] = cv
		}
		return value.Array(out), nil
	default:
		return value.Value{}, fmt.Errorf("unsupported parameter type %s", t)
	}
}

func coerceScalar(v interface{}, k value.Kind) (value.Value, error) {
	switch k {
	case value.KindString:
		s, ok := v.(string)
		if !ok {
			return value.Value{}, fmt.Errorf("expected a string, got %T", v)
		}
		return value.String(s), nil
	case value.KindInteger:
		f, ok := v.(float64)
		if !ok {
			return value.Value{}, fmt.Errorf("expected an integer, got %T", v)
		}
		return value.Integer(int64(f)), nil
	case value.KindFloat:
		f, ok := v.(float64)
		if !ok {
			return value.Value{}, fmt.Errorf("expected a float, got %T", v)
		}
		return value.Float(f), nil
	case value.KindBoolean:
		b, ok := v.(bool)
		if !ok {
			return value.Value{}, fmt.Errorf("expected a boolean, got %T", v)
		}
		return value.Boolean(b), nil
	default:
		return value.Value{}, fmt.Errorf("unsupported scalar kind %s", k)
	}
}
