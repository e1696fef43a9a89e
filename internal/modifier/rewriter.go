// Package modifier lowers a topology of Service, Deployment and Container
// nodes into resource nodes that each carry a Kubernetes manifest.
//
// A pass runs in five strictly ordered steps:
//
//  1. Every Service becomes a ServiceResource.
//  2. Every Deployment becomes a DeploymentResource, and the DependsOn edges
//     between services and deployments are recreated between the resources.
//  3. Every Container is folded into its deployment resource, including the
//     environment inputs of the component it hosts.
//  4. The original Service and Deployment nodes are removed.
//  5. Every resource manifest is serialized into `resource_yaml`.
//
// A pass mutates the topology in place. After a fatal error the topology
// may be partially rewritten and must be discarded.
package modifier

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/vk/kubelower/internal/buildstate"
	"github.com/vk/kubelower/internal/ctxlog"
	"github.com/vk/kubelower/internal/envresolve"
	"github.com/vk/kubelower/internal/evaluator"
	"github.com/vk/kubelower/internal/manifest"
	"github.com/vk/kubelower/internal/metrics"
	"github.com/vk/kubelower/internal/proppath"
	"github.com/vk/kubelower/internal/registry"
	"github.com/vk/kubelower/internal/topology"
	"github.com/vk/kubelower/internal/transform"
	"github.com/vk/kubelower/internal/value"
)

// Property names written on resource nodes.
const (
	PropServiceName       = "service_name"
	PropServiceLookups    = "service_dependency_lookups"
	PropResourceYAML      = "resource_yaml"
	requirementDependency = "dependency"
	capabilityFeature     = "feature"
)

var (
	serviceNamePath    = proppath.MustParse(PropServiceName)
	serviceLookupsPath = proppath.MustParse(PropServiceLookups)
	resourceYAMLPath   = proppath.MustParse(PropResourceYAML)
)

// Rewriter runs rewrite passes. It holds no per-pass state and can be reused
// for several topologies, one at a time.
type Rewriter struct {
	registry   *registry.Registry
	serializer manifest.Serializer
	parsers    transform.Parsers
	types      Types
	tag        string
	metrics    *metrics.Metrics
}

// New creates a rewriter over the given type registry.
func New(reg *registry.Registry, opts ...Option) *Rewriter {
	r := &Rewriter{
		registry:   reg,
		serializer: manifest.NewYAMLSerializer(),
		parsers:    transform.DefaultParsers(),
		types:      DefaultTypes(),
		tag:        DefaultTag,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Types returns the type names the rewriter recognizes.
func (r *Rewriter) Types() Types {
	return r.types
}

// createdFromTag is the provenance tag key.
func (r *Rewriter) createdFromTag() string {
	return r.tag + "_created_from"
}

// pass is the state of one Process call.
type pass struct {
	*Rewriter
	topo        topology.Store
	state       *buildstate.Store
	transformer *transform.Transformer
	env         *envresolve.Resolver
}

// Process rewrites topo in place. inputs feeds get_input when environment
// inputs are evaluated and may be nil.
func (r *Rewriter) Process(ctx context.Context, topo topology.Store, inputs map[string]value.Value) error {
	ctx = ctxlog.With(ctx, "pass_id", uuid.NewString())
	logger := ctxlog.FromContext(ctx)
	logger.Info("Rewriting topology.", "nodes", len(topo.Nodes(ctx)))

	p := &pass{
		Rewriter:    r,
		topo:        topo,
		state:       buildstate.New(),
		transformer: transform.New(r.registry, r.parsers, transform.WithFallbackHook(r.metrics.ParseFallback)),
		env:         envresolve.New(topo, r.registry, evaluator.New(topo, inputs), r.types.Service),
	}

	services := topo.NodesOfType(ctx, r.types.Service, false)
	for _, svc := range services {
		if err := p.lowerService(ctx, svc); err != nil {
			return err
		}
	}

	deployments := topo.NodesOfType(ctx, r.types.Deployment, false)
	for _, dep := range deployments {
		if err := p.lowerDeployment(ctx, dep); err != nil {
			return err
		}
	}

	for _, c := range topo.NodesOfType(ctx, r.types.Container, false) {
		if err := p.foldContainer(ctx, c); err != nil {
			return err
		}
	}

	for _, n := range append(services, deployments...) {
		if err := topo.RemoveNode(ctx, n.ID); err != nil {
			return fmt.Errorf("remove %q: %w", n.Name, err)
		}
		r.metrics.NodeRemoved()
	}

	if err := p.finalize(ctx); err != nil {
		return err
	}

	logger.Info("Topology rewritten.", "services", len(services), "deployments", len(deployments), "nodes", len(topo.Nodes(ctx)))
	return nil
}

// finalize serializes the manifest of every resource node that has one.
func (p *pass) finalize(ctx context.Context) error {
	for _, n := range p.topo.NodesOfType(ctx, p.types.Resource, true) {
		st, ok := p.state.State(n.ID)
		if !ok || len(st.Manifest) == 0 {
			continue
		}
		text, err := p.serializer.Serialize(ctx, st.Manifest)
		if err != nil {
			return fmt.Errorf("serialize resource %q: %w", n.Name, err)
		}
		if err := value.Set(n.Properties, resourceYAMLPath, value.Str(text), proppath.Overwrite); err != nil {
			return fmt.Errorf("store manifest of %q: %w", n.Name, err)
		}
		p.metrics.ManifestSerialized()
	}
	return nil
}
