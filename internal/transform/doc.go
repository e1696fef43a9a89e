// Package transform coerces untyped property trees into native Go values
// following the schema their property definitions resolve to.
//
// Walking is structural: each value variant is matched against the schema
// variant resolved for its position. Structured types keep only their
// declared fields, maps keep every key, lists keep order and length, and
// primitives go through a registered unit parser or the coercion for their
// kind. Any other pairing returns the value's native form unchanged.
package transform
