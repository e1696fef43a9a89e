package evaluator

import (
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/kubelower/internal/value"
)

// toCty converts a resolved value for use as a function argument.
func toCty(v value.Value) cty.Value {
	switch t := v.(type) {
	case value.Scalar:
		return cty.StringVal(t.Text)
	case *value.Complex:
		if t.Len() == 0 {
			return cty.EmptyObjectVal
		}
		attrs := make(map[string]cty.Value, t.Len())
		for _, k := range t.Keys() {
			entry, _ := t.Get(k)
			attrs[k] = toCty(entry)
		}
		return cty.ObjectVal(attrs)
	case value.List:
		if len(t.Items) == 0 {
			return cty.EmptyTupleVal
		}
		items := make([]cty.Value, len(t.Items))
		for i, item := range t.Items {
			items[i] = toCty(item)
		}
		return cty.TupleVal(items)
	case value.Function:
		return cty.StringVal(t.String())
	default:
		return cty.NullVal(cty.DynamicPseudoType)
	}
}

// fromCty converts a function result back into a value. Object attributes
// come back in lexical order.
func fromCty(v cty.Value) value.Value {
	if v.IsNull() || !v.IsKnown() {
		return nil
	}

	ty := v.Type()
	switch {
	case ty == cty.String:
		return value.Str(v.AsString())
	case ty == cty.Number:
		return value.Str(v.AsBigFloat().Text('f', -1))
	case ty == cty.Bool:
		if v.True() {
			return value.Str("true")
		}
		return value.Str("false")
	case ty.IsObjectType() || ty.IsMapType():
		out := value.NewComplex()
		for it := v.ElementIterator(); it.Next(); {
			k, elem := it.Element()
			out.Set(k.AsString(), fromCty(elem))
		}
		return out
	case ty.IsTupleType() || ty.IsListType() || ty.IsSetType():
		var items []value.Value
		for it := v.ElementIterator(); it.Next(); {
			_, elem := it.Element()
			items = append(items, fromCty(elem))
		}
		return value.List{Items: items}
	default:
		return value.Str(v.GoString())
	}
}
