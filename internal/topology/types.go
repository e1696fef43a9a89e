package topology

import "github.com/vk/kubelower/internal/value"

// NodeID is the stable identity of a node within one store.
type NodeID int64

// RelationshipID is the stable identity of a relationship within one store.
type RelationshipID int64

// Node is a typed vertex of the topology.
type Node struct {
	ID           NodeID
	Name         string
	Type         string
	Tags         *Tags
	Properties   *value.Complex
	Capabilities map[string]*Capability
}

// Capability is a named capability instance offered by a node.
type Capability struct {
	Type       string
	Properties *value.Complex
}

// Capability returns the named capability of the node.
func (n *Node) Capability(name string) (*Capability, bool) {
	if n.Capabilities == nil {
		return nil, false
	}
	c, ok := n.Capabilities[name]
	return c, ok
}

// Relationship is a directed edge from a requirement to a capability.
type Relationship struct {
	ID          RelationshipID
	Type        string
	Source      NodeID
	Target      NodeID
	Requirement string
	Capability  string
	Tags        *Tags
}

// Tags is an ordered string to string annotation set.
type Tags struct {
	keys   []string
	values map[string]string
}

// NewTags creates an empty tag set.
func NewTags() *Tags {
	return &Tags{values: make(map[string]string)}
}

// Set stores a tag, keeping the position of an existing key.
func (t *Tags) Set(key, val string) {
	if t.values == nil {
		t.values = make(map[string]string)
	}
	if _, ok := t.values[key]; !ok {
		t.keys = append(t.keys, key)
	}
	t.values[key] = val
}

// Get returns the tag stored under key.
func (t *Tags) Get(key string) (string, bool) {
	if t == nil {
		return "", false
	}
	v, ok := t.values[key]
	return v, ok
}

// Keys returns the tag keys in insertion order.
func (t *Tags) Keys() []string {
	if t == nil {
		return nil
	}
	return append([]string(nil), t.keys...)
}
