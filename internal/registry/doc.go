// Package registry holds the type system a topology is written against.
//
// The Registry stores node, data, capability and relationship types keyed by
// their qualified names, answers derived_from questions across the
// hierarchy, and resolves property definitions into an explicit schema tree
// (see Schema) that the transformer walks alongside the value tree.
//
// A new registry is seeded with the normative root types so that loaded
// definitions can derive from them without declaring them first.
package registry
