// Package inmemorytopology provides an in-memory implementation of the
// topology.Store interface backed by a gonum directed multigraph.
//
// Graph node IDs double as topology.NodeID values and graph line IDs as
// topology.RelationshipID values, so the arena indices handed out by gonum
// are the stable identities the rest of the system keys its state by.
package inmemorytopology
