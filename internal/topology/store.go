package topology

import (
	"context"
	"errors"
)

const (
	// RequirementHost is the requirement name a hosted node uses to point at
	// its host.
	RequirementHost = "host"
	// CapabilityHost is the capability a host offers to hosted nodes.
	CapabilityHost = "host"
)

var (
	// ErrNodeExists is returned when adding a node whose name is taken.
	ErrNodeExists = errors.New("node already exists")
	// ErrNodeNotFound is returned when an operation references a missing node.
	ErrNodeNotFound = errors.New("node not found")
	// ErrDuplicateRelationship is returned when an edge with the same
	// source, target, requirement and capability already exists.
	ErrDuplicateRelationship = errors.New("duplicate relationship")
)

// Store is the interface for querying and rewriting a topology graph.
//
// Every method returning several nodes or relationships returns them in
// ascending ID order. Until something is removed, that is insertion order.
type Store interface {
	// AddNode creates a node with a fresh ID, empty tags and an empty
	// property tree.
	AddNode(ctx context.Context, name, typeName string) (*Node, error)

	// AddRelationship creates an edge. Source and Target must exist, and
	// the (source, target, requirement, capability) tuple must be new.
	AddRelationship(ctx context.Context, rel Relationship) (*Relationship, error)

	// RemoveNode deletes a node together with every incident relationship.
	RemoveNode(ctx context.Context, id NodeID) error

	// Node looks a node up by ID.
	Node(ctx context.Context, id NodeID) (*Node, bool)

	// NodeByName looks a node up by name.
	NodeByName(ctx context.Context, name string) (*Node, bool)

	// Nodes returns all nodes.
	Nodes(ctx context.Context) []*Node

	// NodesOfType returns the nodes whose type is typeName, or derives from
	// it when includeSubtypes is set.
	NodesOfType(ctx context.Context, typeName string, includeSubtypes bool) []*Node

	// SourceNodes returns the nodes holding a relationship with the given
	// requirement into id. An empty requirement matches any.
	SourceNodes(ctx context.Context, id NodeID, requirement string) []*Node

	// SourceNodesByCapability returns the nodes holding a relationship into
	// the named capability of id, whatever requirement they use.
	SourceNodesByCapability(ctx context.Context, id NodeID, capability string) []*Node

	// TargetNodes returns the nodes that id reaches through the given
	// requirement. An empty requirement matches any.
	TargetNodes(ctx context.Context, id NodeID, requirement string) []*Node

	// ImmediateHost returns the node id is hosted on, following the first
	// outgoing relationship whose type derives from HostedOn.
	ImmediateHost(ctx context.Context, id NodeID) (*Node, bool)

	// HasRelationship reports whether an edge with the tuple exists.
	HasRelationship(ctx context.Context, source, target NodeID, requirement, capability string) bool

	// Relationships returns every relationship touching id.
	Relationships(ctx context.Context, id NodeID) []*Relationship

	// AllRelationships returns every relationship in the store.
	AllRelationships(ctx context.Context) []*Relationship
}

// Hierarchy answers type inheritance questions for a store.
type Hierarchy interface {
	IsDerivedFrom(name, base string) bool
}
