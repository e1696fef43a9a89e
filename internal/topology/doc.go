// Package topology defines the typed node and relationship model of an
// application topology and the Store interface used to query and rewrite it.
//
// # Identity
//
// Nodes and relationships are identified by stable integer IDs allocated by
// the store. Names stay unique within a topology but are only used at the
// edges of the system (loading, logging, provenance tags); per-node state
// kept during a rewrite is keyed by NodeID.
//
// # Relationships
//
// A relationship is directed from the node holding the requirement (source)
// to the node offering the capability (target). Two relationships between
// the same pair of nodes must differ in requirement or capability name.
package topology
