package envresolve

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/kubelower/internal/buildstate"
	"github.com/vk/kubelower/internal/ctxlog"
	"github.com/vk/kubelower/internal/evaluator"
	"github.com/vk/kubelower/internal/proppath"
	"github.com/vk/kubelower/internal/registry"
	"github.com/vk/kubelower/internal/topology"
	"github.com/vk/kubelower/internal/value"
)

// Kind is the classification of one environment input.
type Kind int

const (
	KindServiceIP Kind = iota
	KindEndpointProperty
	KindExpression
)

// String returns a short label, used in logs and metrics.
func (k Kind) String() string {
	switch k {
	case KindServiceIP:
		return "service_ip"
	case KindEndpointProperty:
		return "endpoint_property"
	default:
		return "expression"
	}
}

// addressAttributes are the attributes that hold a node's network address.
var addressAttributes = map[string]struct{}{
	"ip_address":      {},
	"private_address": {},
	"public_address":  {},
}

var serviceNamePath = proppath.MustParse("metadata.name")

// Types is the part of the type registry the resolver needs.
type Types interface {
	IsDerivedFrom(name, base string) bool
	CapabilityProperty(typeName, prop string) (*registry.PropertyDefinition, bool)
}

// Evaluator resolves generic expressions.
type Evaluator interface {
	Resolve(ctx context.Context, node *topology.Node, props *value.Complex, v value.Value) (value.Value, error)
}

// Result is the outcome of resolving one input.
type Result struct {
	Kind    Kind
	Value   value.Value
	Skipped bool
	Service string // service recorded for KindServiceIP
}

// Resolver classifies environment inputs.
type Resolver struct {
	topo        topology.Store
	types       Types
	eval        Evaluator
	serviceType string
}

// New creates a resolver. serviceType is the node type whose instances
// expose deploy-time addresses.
func New(topo topology.Store, types Types, eval Evaluator, serviceType string) *Resolver {
	return &Resolver{topo: topo, types: types, eval: eval, serviceType: serviceType}
}

// Resolve classifies the input name=v declared for node. Service addresses
// allocate the next index of lookups. A skipped result carries no value.
func (r *Resolver) Resolve(ctx context.Context, node *topology.Node, name string, v value.Value, lookups *buildstate.LookupTable) (Result, error) {
	logger := ctxlog.FromContext(ctx).With("node", node.Name, "property", name)

	if svc, ok := r.serviceDependency(ctx, node, v); ok {
		svcName, ok := value.ScalarText(lookupOr(svc.Properties, serviceNamePath))
		if !ok {
			svcName = svc.Name
		}
		k := lookups.Allocate(svcName)
		logger.Debug("Environment input bound to service address.", "service", svcName, "token", buildstate.Token(k))
		return Result{Kind: KindServiceIP, Value: value.Str(buildstate.Placeholder(k)), Service: svcName}, nil
	}

	if found, ok := r.endpointProperty(ctx, node, v); ok {
		logger.Debug("Environment input bound to endpoint property.", "raw_value", v.String())
		return Result{Kind: KindEndpointProperty, Value: found}, nil
	}

	res, err := r.eval.Resolve(ctx, node, node.Properties, v)
	if err != nil {
		if errors.Is(err, evaluator.ErrInvalidArgument) {
			logger.Warn("Skipping environment input that cannot be evaluated.", "raw_value", rawText(v), "error", err)
			return Result{Kind: KindExpression, Skipped: true}, nil
		}
		return Result{}, fmt.Errorf("evaluate %s on node %q: %w", name, node.Name, err)
	}
	if res == nil {
		logger.Debug("Environment input evaluated to null, skipping.")
		return Result{Kind: KindExpression, Skipped: true}, nil
	}
	return Result{Kind: KindExpression, Value: res}, nil
}

// serviceDependency matches get_attribute(<requirement>, <address>) where
// the requirement leads to a Service, directly or through a node that a
// Service exposes somewhere along its host chain.
func (r *Resolver) serviceDependency(ctx context.Context, node *topology.Node, v value.Value) (*topology.Node, bool) {
	fn, ok := v.(value.Function)
	if !ok || fn.Name != "get_attribute" || len(fn.Args) != 2 {
		return nil, false
	}
	requirement, ok := value.ScalarText(fn.Args[0])
	if !ok {
		return nil, false
	}
	attr, ok := value.ScalarText(fn.Args[1])
	if !ok {
		return nil, false
	}
	if _, ok := addressAttributes[attr]; !ok {
		return nil, false
	}

	for _, target := range r.topo.TargetNodes(ctx, node.ID, requirement) {
		if r.isService(target) {
			return target, true
		}
		seen := make(map[topology.NodeID]struct{})
		for current := target; current != nil; {
			if _, loop := seen[current.ID]; loop {
				break
			}
			seen[current.ID] = struct{}{}
			for _, src := range r.topo.SourceNodes(ctx, current.ID, "") {
				if r.isService(src) {
					return src, true
				}
			}
			host, ok := r.topo.ImmediateHost(ctx, current.ID)
			if !ok {
				break
			}
			current = host
		}
	}
	return nil, false
}

// endpointProperty matches get_property(<requirement>, <capability>, <prop>)
// where the capability derives from the endpoint type and holds prop.
func (r *Resolver) endpointProperty(ctx context.Context, node *topology.Node, v value.Value) (value.Value, bool) {
	fn, ok := v.(value.Function)
	if !ok || fn.Name != "get_property" || len(fn.Args) != 3 {
		return nil, false
	}
	var args [3]string
	for i, arg := range fn.Args {
		text, ok := value.ScalarText(arg)
		if !ok {
			return nil, false
		}
		args[i] = text
	}
	requirement, capName, prop := args[0], args[1], args[2]

	for _, target := range r.topo.TargetNodes(ctx, node.ID, requirement) {
		c, ok := target.Capability(capName)
		if !ok || !r.types.IsDerivedFrom(c.Type, registry.EndpointCapability) {
			continue
		}
		if found, ok := c.Properties.Get(prop); ok && found != nil {
			return found, true
		}
		if def, ok := r.types.CapabilityProperty(c.Type, prop); ok && def.Default != nil {
			return def.Default, true
		}
	}
	return nil, false
}

func (r *Resolver) isService(n *topology.Node) bool {
	return r.types.IsDerivedFrom(n.Type, r.serviceType)
}

func lookupOr(props *value.Complex, p *proppath.Path) value.Value {
	v, _ := value.Lookup(props, p)
	return v
}

func rawText(v value.Value) string {
	if v == nil {
		return "null"
	}
	return v.String()
}
