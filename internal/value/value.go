package value

import (
	"fmt"
	"strconv"
	"strings"
)

// Value is a node in a property tree. The interface is sealed; the only
// implementations are Scalar, *Complex, List and Function.
type Value interface {
	fmt.Stringer
	isValue()
}

// Scalar is a textual leaf value. Numbers and booleans are kept as text
// until a schema says how to coerce them.
type Scalar struct {
	Text string
}

// List is an ordered sequence of values.
type List struct {
	Items []Value
}

// Function is an unresolved reference, e.g. get_attribute(backend, ip_address).
type Function struct {
	Name string
	Args []Value
}

func (Scalar) isValue()   {}
func (*Complex) isValue() {}
func (List) isValue()     {}
func (Function) isValue() {}

// String returns the raw text.
func (s Scalar) String() string { return s.Text }

// String renders the list in a compact bracketed form.
func (l List) String() string {
	parts := make([]string, len(l.Items))
	for i, item := range l.Items {
		parts[i] = render(item)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// String renders the canonical call form, e.g. get_input("port").
func (f Function) String() string {
	parts := make([]string, len(f.Args))
	for i, arg := range f.Args {
		parts[i] = render(arg)
	}
	return f.Name + "(" + strings.Join(parts, ", ") + ")"
}

// render formats a value nested inside a list, map or call, quoting scalars.
func render(v Value) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case Scalar:
		return strconv.Quote(t.Text)
	default:
		return t.String()
	}
}

// Str is a shorthand for a Scalar value.
func Str(text string) Scalar {
	return Scalar{Text: text}
}

// Call is a shorthand for a Function value.
func Call(name string, args ...Value) Function {
	return Function{Name: name, Args: args}
}

// ScalarText returns the text of v when it is a Scalar.
func ScalarText(v Value) (string, bool) {
	s, ok := v.(Scalar)
	if !ok {
		return "", false
	}
	return s.Text, true
}
