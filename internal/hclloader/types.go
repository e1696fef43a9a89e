package hclloader

import (
	"context"
	"fmt"

	"github.com/vk/kubelower/internal/registry"
	"github.com/vk/kubelower/internal/value"
)

func (l *Loader) registerTypes(ctx context.Context, reg *registry.Registry, root *fileRoot) error {
	for _, b := range root.DataTypes {
		props, err := l.translateProperties(ctx, b.Properties, "data type "+b.Name)
		if err != nil {
			return err
		}
		err = reg.RegisterDataType(&registry.DataType{
			Name:        b.Name,
			DerivedFrom: b.DerivedFrom,
			Description: b.Description,
			Properties:  props,
		})
		if err != nil {
			return err
		}
	}

	for _, b := range root.CapabilityTypes {
		props, err := l.translateProperties(ctx, b.Properties, "capability type "+b.Name)
		if err != nil {
			return err
		}
		err = reg.RegisterCapabilityType(&registry.CapabilityType{
			Name:        b.Name,
			DerivedFrom: b.DerivedFrom,
			Properties:  props,
		})
		if err != nil {
			return err
		}
	}

	for _, b := range root.RelationshipTypes {
		if err := reg.RegisterRelationshipType(&registry.RelationshipType{Name: b.Name, DerivedFrom: b.DerivedFrom}); err != nil {
			return err
		}
	}

	for _, b := range root.NodeTypes {
		t, err := l.translateNodeType(ctx, b)
		if err != nil {
			return err
		}
		if err := reg.RegisterNodeType(t); err != nil {
			return err
		}
	}
	return nil
}

func (l *Loader) translateNodeType(ctx context.Context, b *nodeTypeBlock) (*registry.NodeType, error) {
	owner := "node type " + b.Name
	props, err := l.translateProperties(ctx, b.Properties, owner)
	if err != nil {
		return nil, err
	}

	t := &registry.NodeType{
		Name:        b.Name,
		DerivedFrom: b.DerivedFrom,
		Description: b.Description,
		Properties:  props,
		Interfaces:  make(map[string]*registry.Interface, len(b.Interfaces)),
	}
	for _, ib := range b.Interfaces {
		iface := &registry.Interface{Type: ib.Type, Operations: make(map[string]*registry.Operation, len(ib.Operations))}
		for _, ob := range ib.Operations {
			op := &registry.Operation{Implementation: ob.Implementation, Inputs: value.NewComplex()}
			if isExprDefined(ctx, ob.Inputs, "inputs") {
				v, diags := exprToValue(ob.Inputs)
				if diags.HasErrors() {
					return nil, fmt.Errorf("inputs of %s.%s on %s: %w", ib.Name, ob.Name, owner, diags)
				}
				inputs, ok := v.(*value.Complex)
				if !ok {
					return nil, fmt.Errorf("inputs of %s.%s on %s must be an object", ib.Name, ob.Name, owner)
				}
				op.Inputs = inputs
			}
			iface.Operations[ob.Name] = op
		}
		t.Interfaces[ib.Name] = iface
	}
	return t, nil
}

func (l *Loader) translateProperties(ctx context.Context, blocks []*propertyBlock, owner string) (*registry.Definitions, error) {
	defs := registry.NewDefinitions()
	for _, pb := range blocks {
		def := &registry.PropertyDefinition{
			Type:        pb.Type,
			Required:    pb.Required,
			Description: pb.Description,
			EntrySchema: translateEntrySchema(pb.EntrySchema),
		}
		if isExprDefined(ctx, pb.Default, "default") {
			v, diags := exprToValue(pb.Default)
			if diags.HasErrors() {
				return nil, fmt.Errorf("default of property %q on %s: %w", pb.Name, owner, diags)
			}
			def.Default = v
		}
		defs.Add(pb.Name, def)
	}
	return defs, nil
}

func translateEntrySchema(b *entrySchemaBlock) *registry.PropertyDefinition {
	if b == nil {
		return nil
	}
	return &registry.PropertyDefinition{Type: b.Type, EntrySchema: translateEntrySchema(b.EntrySchema)}
}
