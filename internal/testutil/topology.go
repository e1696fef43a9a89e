package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/kubelower/internal/inmemorytopology"
	"github.com/vk/kubelower/internal/registry"
	"github.com/vk/kubelower/internal/topology"
)

// TopologyBuilder builds an in-memory topology, failing the test on any
// store error.
type TopologyBuilder struct {
	t     *testing.T
	Store *inmemorytopology.Store
}

// NewTopology creates an empty topology whose subtype queries use reg.
func NewTopology(t *testing.T, reg *registry.Registry) *TopologyBuilder {
	t.Helper()
	return &TopologyBuilder{t: t, Store: inmemorytopology.New(reg)}
}

// Node adds a node.
func (b *TopologyBuilder) Node(name, typeName string) *topology.Node {
	b.t.Helper()
	n, err := b.Store.AddNode(context.Background(), name, typeName)
	require.NoError(b.t, err)
	return n
}

// Link adds a relationship from src to dst.
func (b *TopologyBuilder) Link(src, dst *topology.Node, relType, requirement, capability string) *topology.Relationship {
	b.t.Helper()
	rel, err := b.Store.AddRelationship(context.Background(), topology.Relationship{
		Type:        relType,
		Source:      src.ID,
		Target:      dst.ID,
		Requirement: requirement,
		Capability:  capability,
	})
	require.NoError(b.t, err)
	return rel
}

// HostOn links src to its host with a HostedOn relationship.
func (b *TopologyBuilder) HostOn(src, host *topology.Node) *topology.Relationship {
	b.t.Helper()
	return b.Link(src, host, registry.HostedOn, topology.RequirementHost, "host")
}
