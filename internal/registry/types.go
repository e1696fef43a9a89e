package registry

import "github.com/vk/kubelower/internal/value"

// Names of the standard lifecycle interface and its create operation.
const (
	StandardInterface = "Standard"
	CreateOperation   = "create"
)

// PropertyDefinition describes one declared property. EntrySchema is only
// meaningful for list and map types.
type PropertyDefinition struct {
	Type        string
	EntrySchema *PropertyDefinition
	Required    bool
	Default     value.Value
	Description string
}

// Operation is a lifecycle operation with its ordered input parameters.
type Operation struct {
	Implementation string
	Inputs         *value.Complex
}

// Interface groups named operations.
type Interface struct {
	Type       string
	Operations map[string]*Operation
}

// NodeType is a node type definition.
type NodeType struct {
	Name        string
	DerivedFrom string
	Description string
	Properties  *Definitions
	Interfaces  map[string]*Interface
}

// DataType is a structured property type definition.
type DataType struct {
	Name        string
	DerivedFrom string
	Description string
	Properties  *Definitions
}

// CapabilityType is a capability type definition.
type CapabilityType struct {
	Name        string
	DerivedFrom string
	Properties  *Definitions
}

// RelationshipType is a relationship type definition.
type RelationshipType struct {
	Name        string
	DerivedFrom string
}

// Definitions is an ordered mapping from property name to definition.
type Definitions struct {
	names []string
	defs  map[string]*PropertyDefinition
}

// NewDefinitions creates an empty ordered definition set.
func NewDefinitions() *Definitions {
	return &Definitions{defs: make(map[string]*PropertyDefinition)}
}

// Add appends a definition. Re-adding a name replaces the definition but
// keeps the original position, which is how a subtype refines a property.
func (d *Definitions) Add(name string, def *PropertyDefinition) *Definitions {
	if d.defs == nil {
		d.defs = make(map[string]*PropertyDefinition)
	}
	if _, ok := d.defs[name]; !ok {
		d.names = append(d.names, name)
	}
	d.defs[name] = def
	return d
}

// Get returns the definition of name.
func (d *Definitions) Get(name string) (*PropertyDefinition, bool) {
	if d == nil {
		return nil, false
	}
	def, ok := d.defs[name]
	return def, ok
}

// Names returns the property names in declaration order.
func (d *Definitions) Names() []string {
	if d == nil {
		return nil
	}
	return append([]string(nil), d.names...)
}

// Len returns the number of definitions.
func (d *Definitions) Len() int {
	if d == nil {
		return 0
	}
	return len(d.names)
}
