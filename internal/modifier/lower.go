package modifier

import (
	"context"
	"fmt"

	"github.com/vk/kubelower/internal/buildstate"
	"github.com/vk/kubelower/internal/ctxlog"
	"github.com/vk/kubelower/internal/proppath"
	"github.com/vk/kubelower/internal/registry"
	"github.com/vk/kubelower/internal/topology"
	"github.com/vk/kubelower/internal/value"
)

// headerPaths are copied verbatim from an origin node into its manifest.
var headerPaths = []*proppath.Path{
	proppath.MustParse("apiVersion"),
	proppath.MustParse("kind"),
	proppath.MustParse("metadata"),
}

var (
	metadataNamePath = proppath.MustParse("metadata.name")
	specPath         = proppath.MustParse("spec")
	serviceTypePath  = proppath.MustParse("spec.service_type")
	specTypePath     = proppath.MustParse("spec.type")
)

func (p *pass) lowerService(ctx context.Context, svc *topology.Node) error {
	res, st, err := p.lower(ctx, svc, p.types.ServiceResource)
	if err != nil {
		return err
	}
	if t, ok := proppath.Delete(st.Manifest, serviceTypePath); ok {
		if err := proppath.Set(st.Manifest, specTypePath, t, proppath.Overwrite); err != nil {
			return fmt.Errorf("lower %q: %w", svc.Name, err)
		}
	}
	if name, ok := value.Lookup(svc.Properties, metadataNamePath); ok && name != nil {
		if err := value.Set(res.Properties, serviceNamePath, name, proppath.Overwrite); err != nil {
			return fmt.Errorf("lower %q: %w", svc.Name, err)
		}
	}
	return nil
}

func (p *pass) lowerDeployment(ctx context.Context, dep *topology.Node) error {
	res, _, err := p.lower(ctx, dep, p.types.DeploymentResource)
	if err != nil {
		return err
	}

	for _, svc := range p.topo.SourceNodesByCapability(ctx, dep.ID, capabilityFeature) {
		if svc.Type != p.types.Service {
			continue
		}
		svcRes, err := p.replacement(ctx, svc)
		if err != nil {
			return err
		}
		if err := p.link(ctx, svcRes, res, svc.Name+" -> "+dep.Name); err != nil {
			return err
		}
	}

	for _, svc := range p.topo.TargetNodes(ctx, dep.ID, requirementDependency) {
		if svc.Type != p.types.Service {
			continue
		}
		svcRes, err := p.replacement(ctx, svc)
		if err != nil {
			return err
		}
		if err := p.link(ctx, res, svcRes, dep.Name+" -> "+svc.Name); err != nil {
			return err
		}
	}
	return nil
}

// lower creates the resource node replacing origin and seeds its manifest
// with the origin's header and transformed spec.
func (p *pass) lower(ctx context.Context, origin *topology.Node, resourceType string) (*topology.Node, *buildstate.State, error) {
	res, err := p.topo.AddNode(ctx, origin.Name+ResourceSuffix, resourceType)
	if err != nil {
		return nil, nil, fmt.Errorf("create resource for %q: %w", origin.Name, err)
	}
	res.Tags.Set(p.createdFromTag(), origin.Name)

	st, err := p.state.Replace(origin.ID, res.ID)
	if err != nil {
		return nil, nil, err
	}

	for _, hp := range headerPaths {
		v, ok := value.Lookup(origin.Properties, hp)
		if !ok || v == nil {
			continue
		}
		if err := proppath.Set(st.Manifest, hp, value.Native(v), proppath.Overwrite); err != nil {
			return nil, nil, fmt.Errorf("lower %q: %w", origin.Name, err)
		}
	}

	if spec, ok := origin.Properties.Get("spec"); ok && spec != nil {
		def, err := p.registry.NodeProperty(origin.Type, "spec")
		if err != nil {
			return nil, nil, fmt.Errorf("lower %q: %w", origin.Name, err)
		}
		out, err := p.transformer.Transform(ctx, spec, def, "spec")
		if err != nil {
			return nil, nil, fmt.Errorf("lower %q: %w", origin.Name, err)
		}
		if err := proppath.Set(st.Manifest, specPath, out, proppath.Overwrite); err != nil {
			return nil, nil, fmt.Errorf("lower %q: %w", origin.Name, err)
		}
	}

	p.metrics.ResourceCreated(resourceType)
	ctxlog.FromContext(ctx).Debug("Created resource node.", "origin", origin.Name, "resource", res.Name, "type", resourceType)
	return res, st, nil
}

// link adds a DependsOn edge between two resource nodes unless an
// equivalent edge is already there.
func (p *pass) link(ctx context.Context, src, dst *topology.Node, createdFrom string) error {
	if p.topo.HasRelationship(ctx, src.ID, dst.ID, requirementDependency, capabilityFeature) {
		return nil
	}
	tags := topology.NewTags()
	tags.Set(p.createdFromTag(), createdFrom)
	_, err := p.topo.AddRelationship(ctx, topology.Relationship{
		Type:        registry.DependsOn,
		Source:      src.ID,
		Target:      dst.ID,
		Requirement: requirementDependency,
		Capability:  capabilityFeature,
		Tags:        tags,
	})
	if err != nil {
		return fmt.Errorf("link %s: %w", createdFrom, err)
	}
	p.metrics.RelationshipCreated()
	ctxlog.FromContext(ctx).Debug("Linked resources.", "source", src.Name, "target", dst.Name, "created_from", createdFrom)
	return nil
}

func (p *pass) replacement(ctx context.Context, origin *topology.Node) (*topology.Node, error) {
	id, ok := p.state.Replacement(origin.ID)
	if !ok {
		return nil, &LookupError{What: "replacement", Node: origin.Name}
	}
	n, ok := p.topo.Node(ctx, id)
	if !ok {
		return nil, &LookupError{What: "replacement", Node: origin.Name}
	}
	return n, nil
}
