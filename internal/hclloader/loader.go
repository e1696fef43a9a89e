// Package hclloader reads a type library, a topology and its inputs from
// HCL files.
//
// All top-level blocks may appear in any file:
//
//	data_type "k8s.datatypes.ServiceSpec" { derived_from = "tosca.datatypes.Root" ... }
//	node_type "k8s.nodes.Service" { property "spec" { type = "k8s.datatypes.ServiceSpec" } }
//	node "web" { type = "k8s.nodes.Service"  properties = { ... } }
//	relationship { type = "tosca.relationships.DependsOn"  source = "web" ... }
//	input "mode" { value = "production" }
//
// Property trees are converted without evaluation: TOSCA functions written
// as HCL calls, e.g. get_attribute(backend, "ip_address"), become deferred
// references.
package hclloader

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/vk/kubelower/internal/ctxlog"
	"github.com/vk/kubelower/internal/fsutil"
	"github.com/vk/kubelower/internal/inmemorytopology"
	"github.com/vk/kubelower/internal/registry"
	"github.com/vk/kubelower/internal/topology"
	"github.com/vk/kubelower/internal/value"
)

// Extension is the suffix of the files the loader reads.
const Extension = ".hcl"

// Result is everything read from one set of paths.
type Result struct {
	Files    []string
	Registry *registry.Registry
	Topology *inmemorytopology.Store
	Inputs   map[string]value.Value
}

// Loader reads HCL files.
type Loader struct{}

// NewLoader creates a new HCL loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads every .hcl file under paths. Types are registered and validated
// first, then nodes are created, then relationships, so blocks may reference
// each other across files regardless of order.
func (l *Loader) Load(ctx context.Context, paths ...string) (*Result, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	files, err := fsutil.FindFiles(paths, Extension)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no %s files found in %v", Extension, paths)
	}
	logger.Debug("Discovered HCL files.", "count", len(files))

	parser := hclparse.NewParser()
	var roots []*fileRoot
	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root fileRoot
		diags = gohcl.DecodeBody(hclFile.Body, nil, &root)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}
		roots = append(roots, &root)
	}

	reg := registry.New()
	for _, root := range roots {
		if err := l.registerTypes(ctx, reg, root); err != nil {
			return nil, err
		}
	}
	if err := reg.Validate(ctx); err != nil {
		return nil, fmt.Errorf("invalid type library: %w", err)
	}

	res := &Result{
		Files:    files,
		Registry: reg,
		Topology: inmemorytopology.New(reg),
		Inputs:   make(map[string]value.Value),
	}
	for _, root := range roots {
		if err := l.addNodes(ctx, res, root); err != nil {
			return nil, err
		}
	}
	for _, root := range roots {
		if err := l.addRelationships(ctx, res, root); err != nil {
			return nil, err
		}
		if err := l.addInputs(ctx, res, root); err != nil {
			return nil, err
		}
	}

	logger.Debug("HCL loading complete.",
		"types", len(reg.TypeNames()),
		"nodes", len(res.Topology.Nodes(ctx)),
		"relationships", len(res.Topology.AllRelationships(ctx)),
		"inputs", len(res.Inputs),
	)
	return res, nil
}

func (l *Loader) addNodes(ctx context.Context, res *Result, root *fileRoot) error {
	for _, nb := range root.Nodes {
		if _, err := res.Registry.NodeType(nb.Type); err != nil {
			return fmt.Errorf("node %q: %w", nb.Name, err)
		}
		n, err := res.Topology.AddNode(ctx, nb.Name, nb.Type)
		if err != nil {
			return err
		}

		props, err := l.propertyTree(ctx, nb.Properties, "node "+nb.Name)
		if err != nil {
			return err
		}
		n.Properties = props

		for _, cb := range nb.Capabilities {
			if _, err := res.Registry.CapabilityType(cb.Type); err != nil {
				return fmt.Errorf("capability %q of node %q: %w", cb.Name, nb.Name, err)
			}
			capProps, err := l.propertyTree(ctx, cb.Properties, fmt.Sprintf("capability %s of node %s", cb.Name, nb.Name))
			if err != nil {
				return err
			}
			n.Capabilities[cb.Name] = &topology.Capability{Type: cb.Type, Properties: capProps}
		}
	}
	return nil
}

func (l *Loader) addRelationships(ctx context.Context, res *Result, root *fileRoot) error {
	for _, rb := range root.Relationships {
		if _, ok := res.Registry.RelationshipTypes[rb.Type]; !ok {
			return fmt.Errorf("relationship %s -> %s: %w", rb.Source, rb.Target, &registry.LookupError{Kind: "relationship type", Name: rb.Type})
		}
		src, ok := res.Topology.NodeByName(ctx, rb.Source)
		if !ok {
			return fmt.Errorf("relationship source %q: %w", rb.Source, topology.ErrNodeNotFound)
		}
		dst, ok := res.Topology.NodeByName(ctx, rb.Target)
		if !ok {
			return fmt.Errorf("relationship target %q: %w", rb.Target, topology.ErrNodeNotFound)
		}
		capability := rb.Capability
		if capability == "" {
			capability = rb.Requirement
		}
		_, err := res.Topology.AddRelationship(ctx, topology.Relationship{
			Type:        rb.Type,
			Source:      src.ID,
			Target:      dst.ID,
			Requirement: rb.Requirement,
			Capability:  capability,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (l *Loader) addInputs(ctx context.Context, res *Result, root *fileRoot) error {
	for _, ib := range root.Inputs {
		if _, exists := res.Inputs[ib.Name]; exists {
			return fmt.Errorf("input %q is declared more than once", ib.Name)
		}
		v, diags := exprToValue(ib.Value)
		if diags.HasErrors() {
			return fmt.Errorf("input %q: %w", ib.Name, diags)
		}
		res.Inputs[ib.Name] = v
	}
	return nil
}

// propertyTree converts an optional `properties = { ... }` attribute.
func (l *Loader) propertyTree(ctx context.Context, expr hcl.Expression, owner string) (*value.Complex, error) {
	if !isExprDefined(ctx, expr, "properties") {
		return value.NewComplex(), nil
	}
	v, diags := exprToValue(expr)
	if diags.HasErrors() {
		return nil, fmt.Errorf("properties of %s: %w", owner, diags)
	}
	c, ok := v.(*value.Complex)
	if !ok {
		return nil, fmt.Errorf("properties of %s must be an object, got %s", owner, v)
	}
	return c, nil
}
