package buildstate

import (
	"fmt"
	"sort"

	"github.com/vk/kubelower/internal/topology"
)

// State is the work in progress of one resource node.
type State struct {
	Origin   topology.NodeID
	Resource topology.NodeID
	Manifest map[string]any
	Lookups  *LookupTable
}

// Store keeps the build state of one pass. It is not safe for concurrent use.
type Store struct {
	replacements map[topology.NodeID]topology.NodeID // origin -> resource
	states       map[topology.NodeID]*State          // resource -> state
}

// New creates a new, empty build state store.
func New() *Store {
	return &Store{
		replacements: make(map[topology.NodeID]topology.NodeID),
		states:       make(map[topology.NodeID]*State),
	}
}

// Replace records that resource replaces origin and returns the fresh state
// of resource. An origin can only be replaced once.
func (s *Store) Replace(origin, resource topology.NodeID) (*State, error) {
	if existing, ok := s.replacements[origin]; ok {
		return nil, fmt.Errorf("node %d is already replaced by node %d", origin, existing)
	}
	s.replacements[origin] = resource

	st := &State{
		Origin:   origin,
		Resource: resource,
		Manifest: make(map[string]any),
		Lookups:  &LookupTable{},
	}
	s.states[resource] = st
	return st, nil
}

// Replacement returns the resource node replacing origin.
func (s *Store) Replacement(origin topology.NodeID) (topology.NodeID, bool) {
	id, ok := s.replacements[origin]
	return id, ok
}

// State returns the build state of a resource node.
func (s *Store) State(resource topology.NodeID) (*State, bool) {
	st, ok := s.states[resource]
	return st, ok
}

// States returns every resource state ordered by resource ID.
func (s *Store) States() []*State {
	out := make([]*State, 0, len(s.states))
	for _, st := range s.states {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Resource < out[j].Resource })
	return out
}
