// internal/proppath/doc.go

/*
Package proppath provides a structured representation for addresses into
nested property trees, based on the canonical dotted format.

The format is a dot-separated sequence of segments, where each segment may
carry a list index, e.g. `resource_def.spec.template.spec.containers[0]`.

Besides parsing and formatting, the package implements the read, write and
append operations on native trees (map[string]any / []any) that the
rewriter uses to accumulate manifests.
*/
package proppath
