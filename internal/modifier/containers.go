package modifier

import (
	"context"
	"fmt"
	"strings"

	"github.com/vk/kubelower/internal/buildstate"
	"github.com/vk/kubelower/internal/ctxlog"
	"github.com/vk/kubelower/internal/proppath"
	"github.com/vk/kubelower/internal/topology"
	"github.com/vk/kubelower/internal/value"
)

// EnvPrefix marks create-operation inputs that become environment entries.
const EnvPrefix = "ENV_"

var (
	envPath        = proppath.MustParse("container.env")
	containersPath = proppath.MustParse("spec.template.spec.containers")
)

// foldContainer appends the container to the manifest of the deployment
// resource replacing its host.
func (p *pass) foldContainer(ctx context.Context, c *topology.Node) error {
	logger := ctxlog.FromContext(ctx).With("container", c.Name)

	host, ok := p.topo.ImmediateHost(ctx, c.ID)
	if !ok {
		return &LookupError{What: "host", Node: c.Name}
	}
	res, err := p.replacement(ctx, host)
	if err != nil {
		return err
	}
	st, ok := p.state.State(res.ID)
	if !ok {
		return &LookupError{What: "state", Node: res.Name}
	}

	for _, hosted := range p.topo.SourceNodesByCapability(ctx, c.ID, topology.CapabilityHost) {
		if err := p.collectEnv(ctx, c, hosted, st.Lookups); err != nil {
			return err
		}
	}

	if err := p.flushLookups(ctx); err != nil {
		return err
	}

	v, ok := c.Properties.Get("container")
	if !ok || v == nil {
		logger.Debug("Container declares no container property, nothing to append.")
		return nil
	}
	def, err := p.registry.NodeProperty(c.Type, "container")
	if err != nil {
		return fmt.Errorf("fold container %q: %w", c.Name, err)
	}
	out, err := p.transformer.Transform(ctx, v, def, "container")
	if err != nil {
		return fmt.Errorf("fold container %q: %w", c.Name, err)
	}
	if err := proppath.Append(st.Manifest, containersPath, out); err != nil {
		return fmt.Errorf("fold container %q into %q: %w", c.Name, res.Name, err)
	}
	logger.Debug("Folded container.", "resource", res.Name)
	return nil
}

// collectEnv turns the ENV_ inputs of hosted's create operation into
// entries of the container's env list.
func (p *pass) collectEnv(ctx context.Context, c, hosted *topology.Node, lookups *buildstate.LookupTable) error {
	op, err := p.registry.CreateOperation(hosted.Type)
	if err != nil {
		return fmt.Errorf("hosted node %q: %w", hosted.Name, err)
	}
	if op == nil || op.Inputs == nil {
		return nil
	}

	for _, name := range op.Inputs.Keys() {
		if !strings.HasPrefix(name, EnvPrefix) {
			continue
		}
		input, _ := op.Inputs.Get(name)
		if input == nil {
			continue
		}
		res, err := p.env.Resolve(ctx, hosted, name, input, lookups)
		if err != nil {
			return err
		}
		if res.Skipped {
			p.metrics.EnvSkipped()
			continue
		}
		entry := value.NewComplex().
			Set("name", value.Str(strings.TrimPrefix(name, EnvPrefix))).
			Set("value", res.Value)
		if err := value.Append(c.Properties, envPath, entry); err != nil {
			return fmt.Errorf("container %q: %w", c.Name, err)
		}
		p.metrics.EnvEntry(res.Kind.String())
	}
	return nil
}

// flushLookups writes every non-empty lookup table to its resource node.
// Tables only grow, so repeated flushes converge on the final content.
func (p *pass) flushLookups(ctx context.Context) error {
	for _, st := range p.state.States() {
		if st.Lookups.Len() == 0 {
			continue
		}
		n, ok := p.topo.Node(ctx, st.Resource)
		if !ok {
			continue
		}
		if err := value.Set(n.Properties, serviceLookupsPath, value.Str(st.Lookups.String()), proppath.Overwrite); err != nil {
			return fmt.Errorf("flush lookups of %q: %w", n.Name, err)
		}
	}
	return nil
}
