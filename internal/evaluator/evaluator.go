package evaluator

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/vk/kubelower/internal/ctxlog"
	"github.com/vk/kubelower/internal/topology"
	"github.com/vk/kubelower/internal/value"
)

// ErrInvalidArgument is returned when an expression cannot be resolved
// against the current topology.
var ErrInvalidArgument = errors.New("invalid argument")

// Entity keywords accepted as the first argument of get_property and
// get_attribute.
const (
	KeywordSelf   = "SELF"
	KeywordHost   = "HOST"
	KeywordSource = "SOURCE"
	KeywordTarget = "TARGET"
)

// maxDepth bounds nested resolution so that self-referencing properties
// fail instead of recursing forever.
const maxDepth = 32

// Evaluator resolves expressions against a topology and a set of inputs.
type Evaluator struct {
	topo   topology.Store
	inputs map[string]value.Value
}

// New creates an evaluator. inputs may be nil.
func New(topo topology.Store, inputs map[string]value.Value) *Evaluator {
	return &Evaluator{topo: topo, inputs: inputs}
}

// Resolve evaluates every function inside v from the point of view of node,
// whose property tree is props. Literal values are returned unchanged.
func (e *Evaluator) Resolve(ctx context.Context, node *topology.Node, props *value.Complex, v value.Value) (value.Value, error) {
	return e.resolve(ctx, node, props, v, 0)
}

func (e *Evaluator) resolve(ctx context.Context, node *topology.Node, props *value.Complex, v value.Value, depth int) (value.Value, error) {
	if depth > maxDepth {
		return nil, fmt.Errorf("%w: expression nesting deeper than %d on node %q", ErrInvalidArgument, maxDepth, node.Name)
	}

	switch t := v.(type) {
	case nil, value.Scalar:
		return v, nil
	case *value.Complex:
		out := value.NewComplex()
		for _, k := range t.Keys() {
			entry, _ := t.Get(k)
			res, err := e.resolve(ctx, node, props, entry, depth+1)
			if err != nil {
				return nil, err
			}
			out.Set(k, res)
		}
		return out, nil
	case value.List:
		items := make([]value.Value, len(t.Items))
		for i, item := range t.Items {
			res, err := e.resolve(ctx, node, props, item, depth+1)
			if err != nil {
				return nil, err
			}
			items[i] = res
		}
		return value.List{Items: items}, nil
	case value.Function:
		args := make([]value.Value, len(t.Args))
		for i, arg := range t.Args {
			res, err := e.resolve(ctx, node, props, arg, depth+1)
			if err != nil {
				return nil, err
			}
			args[i] = res
		}
		ctxlog.FromContext(ctx).Debug("Evaluating function.", "function", t.Name, "node", node.Name)
		return e.call(ctx, &scope{node: node, props: props, depth: depth}, t.Name, args)
	default:
		return nil, fmt.Errorf("%w: unsupported value %T", ErrInvalidArgument, v)
	}
}

// scope is the evaluation point a function call runs in.
type scope struct {
	node  *topology.Node
	props *value.Complex
	depth int
}

// entity resolves the first argument of get_property/get_attribute.
func (e *Evaluator) entity(ctx context.Context, s *scope, name string) (*topology.Node, *value.Complex, error) {
	switch name {
	case KeywordSelf:
		return s.node, s.props, nil
	case KeywordHost:
		host, ok := e.topo.ImmediateHost(ctx, s.node.ID)
		if !ok {
			return nil, nil, fmt.Errorf("%w: node %q has no host", ErrInvalidArgument, s.node.Name)
		}
		return host, host.Properties, nil
	case KeywordSource, KeywordTarget:
		return nil, nil, fmt.Errorf("%w: %s is only valid on relationships, not on node %q", ErrInvalidArgument, name, s.node.Name)
	}

	if targets := e.topo.TargetNodes(ctx, s.node.ID, name); len(targets) > 0 {
		return targets[0], targets[0].Properties, nil
	}
	if n, ok := e.topo.NodeByName(ctx, name); ok {
		return n, n.Properties, nil
	}
	return nil, nil, fmt.Errorf("%w: %q is neither a requirement of node %q nor a node", ErrInvalidArgument, name, s.node.Name)
}

// lookup walks a property path through a node or one of its capabilities.
// The first path element names a capability when the node has one by that
// name and more elements follow.
func lookup(n *topology.Node, props *value.Complex, path []string) (value.Value, bool) {
	if len(path) > 1 {
		if c, ok := n.Capability(path[0]); ok {
			props, path = c.Properties, path[1:]
		}
	}

	var current value.Value = props
	for _, elem := range path {
		switch t := current.(type) {
		case *value.Complex:
			next, ok := t.Get(elem)
			if !ok {
				return nil, false
			}
			current = next
		case value.List:
			i, err := strconv.Atoi(elem)
			if err != nil || i < 0 || i >= len(t.Items) {
				return nil, false
			}
			current = t.Items[i]
		default:
			return nil, false
		}
	}
	return current, true
}
