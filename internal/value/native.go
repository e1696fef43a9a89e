package value

import (
	"fmt"
	"sort"
	"strconv"
)

// Native converts a value into a plain Go tree: string, map[string]any,
// []any or nil. An unresolved Function becomes its canonical text.
func Native(v Value) any {
	switch t := v.(type) {
	case nil:
		return nil
	case Scalar:
		return t.Text
	case *Complex:
		if t == nil {
			return nil
		}
		out := make(map[string]any, t.Len())
		for _, k := range t.keys {
			out[k] = Native(t.entries[k])
		}
		return out
	case List:
		out := make([]any, len(t.Items))
		for i, item := range t.Items {
			out[i] = Native(item)
		}
		return out
	case Function:
		return t.String()
	default:
		panic(fmt.Sprintf("value: unexpected variant %T", v))
	}
}

// FromNative converts a plain Go tree into a value. Map keys are ordered
// alphabetically since Go maps carry no order.
func FromNative(in any) (Value, error) {
	switch t := in.(type) {
	case nil:
		return nil, nil
	case Value:
		return t, nil
	case string:
		return Str(t), nil
	case bool:
		return Str(strconv.FormatBool(t)), nil
	case int:
		return Str(strconv.Itoa(t)), nil
	case int64:
		return Str(strconv.FormatInt(t, 10)), nil
	case float64:
		return Str(strconv.FormatFloat(t, 'f', -1, 64)), nil
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		c := NewComplex()
		for _, k := range keys {
			v, err := FromNative(t[k])
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", k, err)
			}
			c.Set(k, v)
		}
		return c, nil
	case []any:
		items := make([]Value, len(t))
		for i, item := range t {
			v, err := FromNative(item)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			items[i] = v
		}
		return List{Items: items}, nil
	default:
		return nil, fmt.Errorf("unsupported native type %T", in)
	}
}
