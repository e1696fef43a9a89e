// Package buildstate holds the per-node state a rewrite pass accumulates
// before it is serialized.
//
// # Purpose
//
// A pass creates one resource node per lowered origin node. Several steps
// write into the same resource (its manifest, its environment lookups) long
// before the manifest is complete, so the pass keeps that work-in-progress
// here, keyed by stable topology.NodeID rather than by node name:
//
//   - **Replacements:** origin node ID to resource node ID, injective
//   - **Manifests:** the native `resource_def` tree of each resource
//   - **Lookups:** the deferred service address table of each resource
//
// # Lifecycle
//
// A Store is created at the start of a pass and dropped when it returns. It
// is never shared between passes.
package buildstate
