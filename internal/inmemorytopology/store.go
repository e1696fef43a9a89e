package inmemorytopology

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/multi"

	"github.com/vk/kubelower/internal/registry"
	"github.com/vk/kubelower/internal/topology"
	"github.com/vk/kubelower/internal/value"
)

// line adapts a topology relationship to gonum's graph.Line.
type line struct {
	from, to graph.Node
	rel      *topology.Relationship
}

func (l line) From() graph.Node         { return l.from }
func (l line) To() graph.Node           { return l.to }
func (l line) ID() int64                { return int64(l.rel.ID) }
func (l line) ReversedLine() graph.Line { return line{from: l.to, to: l.from, rel: l.rel} }

// Store implements topology.Store on top of a multi.DirectedGraph, guarded
// by a RWMutex for concurrent readers.
type Store struct {
	mu       sync.RWMutex
	g        *multi.DirectedGraph
	types    topology.Hierarchy
	hostedOn string
	nodes    map[topology.NodeID]*topology.Node
	names    map[string]topology.NodeID
}

// Option configures a Store.
type Option func(*Store)

// WithHostedOnType overrides the relationship type followed by ImmediateHost.
func WithHostedOnType(name string) Option {
	return func(s *Store) { s.hostedOn = name }
}

// New creates an empty store. types resolves subtype queries.
func New(types topology.Hierarchy, opts ...Option) *Store {
	s := &Store{
		g:        multi.NewDirectedGraph(),
		types:    types,
		hostedOn: registry.HostedOn,
		nodes:    make(map[topology.NodeID]*topology.Node),
		names:    make(map[string]topology.NodeID),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ topology.Store = (*Store)(nil)

// AddNode adds a new node to the store.
func (s *Store) AddNode(ctx context.Context, name, typeName string) (*topology.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.names[name]; exists {
		return nil, fmt.Errorf("%w: %q", topology.ErrNodeExists, name)
	}

	gn := s.g.NewNode()
	s.g.AddNode(gn)

	n := &topology.Node{
		ID:           topology.NodeID(gn.ID()),
		Name:         name,
		Type:         typeName,
		Tags:         topology.NewTags(),
		Properties:   value.NewComplex(),
		Capabilities: make(map[string]*topology.Capability),
	}
	s.nodes[n.ID] = n
	s.names[name] = n.ID
	return n, nil
}

// AddRelationship creates a relationship between two existing nodes.
func (s *Store) AddRelationship(ctx context.Context, rel topology.Relationship) (*topology.Relationship, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	from := s.g.Node(int64(rel.Source))
	if from == nil {
		return nil, fmt.Errorf("relationship source %d: %w", rel.Source, topology.ErrNodeNotFound)
	}
	to := s.g.Node(int64(rel.Target))
	if to == nil {
		return nil, fmt.Errorf("relationship target %d: %w", rel.Target, topology.ErrNodeNotFound)
	}
	if s.hasRelationship(rel.Source, rel.Target, rel.Requirement, rel.Capability) {
		return nil, fmt.Errorf("%w: %s -[%s/%s]-> %s", topology.ErrDuplicateRelationship,
			s.nodes[rel.Source].Name, rel.Requirement, rel.Capability, s.nodes[rel.Target].Name)
	}

	stored := rel
	stored.ID = topology.RelationshipID(s.g.NewLine(from, to).ID())
	if stored.Tags == nil {
		stored.Tags = topology.NewTags()
	}
	s.g.SetLine(line{from: from, to: to, rel: &stored})
	return &stored, nil
}

// RemoveNode removes a node and all of its incident relationships.
func (s *Store) RemoveNode(ctx context.Context, id topology.NodeID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.nodes[id]
	if !ok {
		return fmt.Errorf("node %d: %w", id, topology.ErrNodeNotFound)
	}
	s.g.RemoveNode(int64(id))
	delete(s.nodes, id)
	delete(s.names, n.Name)
	return nil
}

// Node retrieves a single node by its ID.
func (s *Store) Node(ctx context.Context, id topology.NodeID) (*topology.Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.nodes[id]
	return n, ok
}

// NodeByName retrieves a single node by its name.
func (s *Store) NodeByName(ctx context.Context, name string) (*topology.Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.names[name]
	if !ok {
		return nil, false
	}
	return s.nodes[id], true
}

// Nodes returns all nodes in ID order.
func (s *Store) Nodes(ctx context.Context) []*topology.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collect(s.g.Nodes(), func(*topology.Node) bool { return true })
}

// NodesOfType returns the nodes of typeName, optionally including subtypes.
func (s *Store) NodesOfType(ctx context.Context, typeName string, includeSubtypes bool) []*topology.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collect(s.g.Nodes(), func(n *topology.Node) bool {
		if n.Type == typeName {
			return true
		}
		return includeSubtypes && s.types != nil && s.types.IsDerivedFrom(n.Type, typeName)
	})
}

// SourceNodes returns the nodes pointing at id through requirement.
func (s *Store) SourceNodes(ctx context.Context, id topology.NodeID, requirement string) []*topology.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collect(s.g.To(int64(id)), func(n *topology.Node) bool {
		return s.anyLine(n.ID, id, func(r *topology.Relationship) bool {
			return requirement == "" || r.Requirement == requirement
		})
	})
}

// SourceNodesByCapability returns the nodes pointing at the capability of id.
func (s *Store) SourceNodesByCapability(ctx context.Context, id topology.NodeID, capability string) []*topology.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collect(s.g.To(int64(id)), func(n *topology.Node) bool {
		return s.anyLine(n.ID, id, func(r *topology.Relationship) bool {
			return r.Capability == capability
		})
	})
}

// TargetNodes returns the nodes id points at through requirement.
func (s *Store) TargetNodes(ctx context.Context, id topology.NodeID, requirement string) []*topology.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collect(s.g.From(int64(id)), func(n *topology.Node) bool {
		return s.anyLine(id, n.ID, func(r *topology.Relationship) bool {
			return requirement == "" || r.Requirement == requirement
		})
	})
}

// ImmediateHost follows the first HostedOn relationship leaving id.
func (s *Store) ImmediateHost(ctx context.Context, id topology.NodeID) (*topology.Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, rel := range s.outgoing(id) {
		if rel.Type == s.hostedOn || (s.types != nil && s.types.IsDerivedFrom(rel.Type, s.hostedOn)) {
			return s.nodes[rel.Target], true
		}
	}
	return nil, false
}

// HasRelationship reports whether the exact edge tuple exists.
func (s *Store) HasRelationship(ctx context.Context, source, target topology.NodeID, requirement, capability string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.hasRelationship(source, target, requirement, capability)
}

// Relationships returns every relationship touching id.
func (s *Store) Relationships(ctx context.Context, id topology.NodeID) []*topology.Relationship {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rels := s.outgoing(id)
	to := s.g.To(int64(id))
	for to.Next() {
		from := to.Node().ID()
		if from == int64(id) {
			continue // self loops are already in outgoing
		}
		rels = append(rels, s.lines(topology.NodeID(from), id)...)
	}
	sortRelationships(rels)
	return rels
}

// AllRelationships returns every relationship in the store.
func (s *Store) AllRelationships(ctx context.Context) []*topology.Relationship {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rels []*topology.Relationship
	for id := range s.nodes {
		rels = append(rels, s.outgoing(id)...)
	}
	sortRelationships(rels)
	return rels
}

func (s *Store) hasRelationship(source, target topology.NodeID, requirement, capability string) bool {
	return s.anyLine(source, target, func(r *topology.Relationship) bool {
		return r.Requirement == requirement && r.Capability == capability
	})
}

func (s *Store) anyLine(from, to topology.NodeID, match func(*topology.Relationship) bool) bool {
	for _, rel := range s.lines(from, to) {
		if match(rel) {
			return true
		}
	}
	return false
}

func (s *Store) lines(from, to topology.NodeID) []*topology.Relationship {
	var rels []*topology.Relationship
	it := s.g.Lines(int64(from), int64(to))
	for it.Next() {
		if l, ok := it.Line().(line); ok {
			rels = append(rels, l.rel)
		}
	}
	return rels
}

func (s *Store) outgoing(id topology.NodeID) []*topology.Relationship {
	var rels []*topology.Relationship
	from := s.g.From(int64(id))
	for from.Next() {
		rels = append(rels, s.lines(id, topology.NodeID(from.Node().ID()))...)
	}
	sortRelationships(rels)
	return rels
}

func (s *Store) collect(it graph.Nodes, keep func(*topology.Node) bool) []*topology.Node {
	var out []*topology.Node
	for it.Next() {
		n, ok := s.nodes[topology.NodeID(it.Node().ID())]
		if ok && keep(n) {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func sortRelationships(rels []*topology.Relationship) {
	sort.Slice(rels, func(i, j int) bool { return rels[i].ID < rels[j].ID })
}
