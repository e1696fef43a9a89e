package registry

import "strings"

// Schema is the resolved shape of a property definition. The interface is
// sealed; see Structured, MapOf, ListOf, Primitive and Opaque.
type Schema interface {
	schema()
}

// Structured is a data type with declared fields, inherited ones first.
type Structured struct {
	Type   string
	Fields *Definitions
}

// MapOf is a map whose entries all follow Entry.
type MapOf struct {
	Entry *PropertyDefinition
}

// ListOf is a list whose elements all follow Entry.
type ListOf struct {
	Entry *PropertyDefinition
}

// Primitive is a leaf type. Type is the primitive name the definition
// resolves to (e.g. "scalar-unit.size"), Kind drives coercion.
type Primitive struct {
	Type string
	Kind Kind
}

// Opaque carries no structure; values pass through unchanged.
type Opaque struct {
	Type string
}

func (Structured) schema() {}
func (MapOf) schema()      {}
func (ListOf) schema()     {}
func (Primitive) schema()  {}
func (Opaque) schema()     {}

// Kind is the coercion target of a primitive.
type Kind int

const (
	KindString Kind = iota
	KindInteger
	KindFloat
	KindBoolean
)

// String returns the primitive name of the kind.
func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindBoolean:
		return "boolean"
	default:
		return "string"
	}
}

const (
	typeList = "list"
	typeMap  = "map"
)

var primitiveKinds = map[string]Kind{
	"string":    KindString,
	"integer":   KindInteger,
	"float":     KindFloat,
	"boolean":   KindBoolean,
	"timestamp": KindString,
	"version":   KindString,
	"range":     KindString,
}

func isPrimitive(name string) bool {
	if _, ok := primitiveKinds[name]; ok {
		return true
	}
	return strings.HasPrefix(name, "scalar-unit.")
}

// Resolve turns a property definition into its schema. A nil definition is
// opaque. A data type deriving from a primitive resolves to that primitive.
func (r *Registry) Resolve(def *PropertyDefinition) (Schema, error) {
	if def == nil || def.Type == "" {
		return Opaque{}, nil
	}

	switch def.Type {
	case typeList:
		return ListOf{Entry: def.EntrySchema}, nil
	case typeMap:
		return MapOf{Entry: def.EntrySchema}, nil
	}
	if isPrimitive(def.Type) {
		return Primitive{Type: def.Type, Kind: primitiveKinds[def.Type]}, nil
	}

	if _, err := r.DataType(def.Type); err != nil {
		return nil, err
	}
	for _, ancestor := range r.Ancestry(def.Type) {
		if _, ok := r.DataTypes[ancestor]; ok {
			continue
		}
		if isPrimitive(ancestor) {
			return Primitive{Type: ancestor, Kind: primitiveKinds[ancestor]}, nil
		}
	}

	fields, err := r.DataProperties(def.Type)
	if err != nil {
		return nil, err
	}
	if fields.Len() == 0 {
		return Opaque{Type: def.Type}, nil
	}
	return Structured{Type: def.Type, Fields: fields}, nil
}
