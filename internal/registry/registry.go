package registry

import (
	"fmt"
	"log/slog"
	"sort"
)

// Registry holds all type definitions known to a single run.
type Registry struct {
	NodeTypes         map[string]*NodeType
	DataTypes         map[string]*DataType
	CapabilityTypes   map[string]*CapabilityType
	RelationshipTypes map[string]*RelationshipType
}

// New creates a registry seeded with the normative root types.
func New() *Registry {
	r := &Registry{
		NodeTypes:         make(map[string]*NodeType),
		DataTypes:         make(map[string]*DataType),
		CapabilityTypes:   make(map[string]*CapabilityType),
		RelationshipTypes: make(map[string]*RelationshipType),
	}
	registerNormativeTypes(r)
	return r
}

// RegisterNodeType adds a node type. Names are unique across all kinds.
func (r *Registry) RegisterNodeType(t *NodeType) error {
	if err := r.checkFree(t.Name); err != nil {
		return err
	}
	slog.Debug("Registering node type.", "name", t.Name, "derived_from", t.DerivedFrom)
	r.NodeTypes[t.Name] = t
	return nil
}

// RegisterDataType adds a data type.
func (r *Registry) RegisterDataType(t *DataType) error {
	if err := r.checkFree(t.Name); err != nil {
		return err
	}
	slog.Debug("Registering data type.", "name", t.Name, "derived_from", t.DerivedFrom)
	r.DataTypes[t.Name] = t
	return nil
}

// RegisterCapabilityType adds a capability type.
func (r *Registry) RegisterCapabilityType(t *CapabilityType) error {
	if err := r.checkFree(t.Name); err != nil {
		return err
	}
	slog.Debug("Registering capability type.", "name", t.Name, "derived_from", t.DerivedFrom)
	r.CapabilityTypes[t.Name] = t
	return nil
}

// RegisterRelationshipType adds a relationship type.
func (r *Registry) RegisterRelationshipType(t *RelationshipType) error {
	if err := r.checkFree(t.Name); err != nil {
		return err
	}
	slog.Debug("Registering relationship type.", "name", t.Name, "derived_from", t.DerivedFrom)
	r.RelationshipTypes[t.Name] = t
	return nil
}

func (r *Registry) checkFree(name string) error {
	if name == "" {
		return fmt.Errorf("type name cannot be empty")
	}
	if _, ok := r.parentOf(name); ok || isPrimitive(name) {
		return fmt.Errorf("type %q already registered", name)
	}
	return nil
}

// NodeType resolves a node type by name.
func (r *Registry) NodeType(name string) (*NodeType, error) {
	t, ok := r.NodeTypes[name]
	if !ok {
		return nil, &LookupError{Kind: "node type", Name: name}
	}
	return t, nil
}

// DataType resolves a data type by name.
func (r *Registry) DataType(name string) (*DataType, error) {
	t, ok := r.DataTypes[name]
	if !ok {
		return nil, &LookupError{Kind: "data type", Name: name}
	}
	return t, nil
}

// CapabilityType resolves a capability type by name.
func (r *Registry) CapabilityType(name string) (*CapabilityType, error) {
	t, ok := r.CapabilityTypes[name]
	if !ok {
		return nil, &LookupError{Kind: "capability type", Name: name}
	}
	return t, nil
}

// parentOf returns the derived_from of any registered type.
func (r *Registry) parentOf(name string) (string, bool) {
	if t, ok := r.NodeTypes[name]; ok {
		return t.DerivedFrom, true
	}
	if t, ok := r.DataTypes[name]; ok {
		return t.DerivedFrom, true
	}
	if t, ok := r.CapabilityTypes[name]; ok {
		return t.DerivedFrom, true
	}
	if t, ok := r.RelationshipTypes[name]; ok {
		return t.DerivedFrom, true
	}
	return "", false
}

// IsDerivedFrom reports whether name equals base or inherits from it.
func (r *Registry) IsDerivedFrom(name, base string) bool {
	seen := make(map[string]struct{})
	for current := name; current != ""; {
		if current == base {
			return true
		}
		if _, loop := seen[current]; loop {
			return false
		}
		seen[current] = struct{}{}
		parent, ok := r.parentOf(current)
		if !ok {
			return false
		}
		current = parent
	}
	return false
}

// Ancestry returns name followed by its ancestors, nearest first.
func (r *Registry) Ancestry(name string) []string {
	var chain []string
	seen := make(map[string]struct{})
	for current := name; current != ""; {
		if _, loop := seen[current]; loop {
			break
		}
		seen[current] = struct{}{}
		chain = append(chain, current)
		parent, ok := r.parentOf(current)
		if !ok {
			break
		}
		current = parent
	}
	return chain
}

// NodeProperty returns the definition of prop on a node type, searching
// ancestors when the type itself does not declare it.
func (r *Registry) NodeProperty(typeName, prop string) (*PropertyDefinition, error) {
	if _, err := r.NodeType(typeName); err != nil {
		return nil, err
	}
	for _, name := range r.Ancestry(typeName) {
		t, ok := r.NodeTypes[name]
		if !ok {
			continue
		}
		if def, ok := t.Properties.Get(prop); ok {
			return def, nil
		}
	}
	return nil, &LookupError{Kind: "property", Name: prop, Owner: typeName}
}

// DataProperties merges the property definitions of a data type and its
// ancestors. Inherited properties come first.
func (r *Registry) DataProperties(typeName string) (*Definitions, error) {
	if _, err := r.DataType(typeName); err != nil {
		return nil, err
	}
	chain := r.Ancestry(typeName)
	merged := NewDefinitions()
	for i := len(chain) - 1; i >= 0; i-- {
		t, ok := r.DataTypes[chain[i]]
		if !ok {
			continue
		}
		for _, name := range t.Properties.Names() {
			def, _ := t.Properties.Get(name)
			merged.Add(name, def)
		}
	}
	return merged, nil
}

// CapabilityProperty reports whether a capability type, or one of its
// ancestors, declares prop.
func (r *Registry) CapabilityProperty(typeName, prop string) (*PropertyDefinition, bool) {
	for _, name := range r.Ancestry(typeName) {
		t, ok := r.CapabilityTypes[name]
		if !ok {
			continue
		}
		if def, ok := t.Properties.Get(prop); ok {
			return def, true
		}
	}
	return nil, false
}

// Operation returns the named operation of a node type's interface. It
// returns nil without error when no type in the hierarchy declares it.
func (r *Registry) Operation(typeName, iface, op string) (*Operation, error) {
	if _, err := r.NodeType(typeName); err != nil {
		return nil, err
	}
	for _, name := range r.Ancestry(typeName) {
		t, ok := r.NodeTypes[name]
		if !ok || t.Interfaces == nil {
			continue
		}
		i, ok := t.Interfaces[iface]
		if !ok || i.Operations == nil {
			continue
		}
		if o, ok := i.Operations[op]; ok {
			return o, nil
		}
	}
	return nil, nil
}

// CreateOperation is Operation for the standard lifecycle create step.
func (r *Registry) CreateOperation(typeName string) (*Operation, error) {
	return r.Operation(typeName, StandardInterface, CreateOperation)
}

// TypeNames lists every registered type name, sorted.
func (r *Registry) TypeNames() []string {
	var names []string
	for n := range r.NodeTypes {
		names = append(names, n)
	}
	for n := range r.DataTypes {
		names = append(names, n)
	}
	for n := range r.CapabilityTypes {
		names = append(names, n)
	}
	for n := range r.RelationshipTypes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
