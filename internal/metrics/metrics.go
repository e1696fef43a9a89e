// Package metrics counts what a rewrite pass did. Counters live in their own
// prometheus registry and can be written out as a node_exporter textfile.
//
// All methods are safe on a nil *Metrics, which records nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "kubelower"

// Metrics holds the pass counters.
type Metrics struct {
	registry *prometheus.Registry

	resources     *prometheus.CounterVec
	relationships prometheus.Counter
	removed       prometheus.Counter
	envEntries    *prometheus.CounterVec
	envSkipped    prometheus.Counter
	parseFallback *prometheus.CounterVec
	manifests     prometheus.Counter
}

// New creates the counters and registers them on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		resources: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resources_created_total",
			Help:      "Resource nodes created, by resource type.",
		}, []string{"type"}),
		relationships: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "relationships_created_total",
			Help:      "DependsOn relationships created between resource nodes.",
		}),
		removed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "nodes_removed_total",
			Help:      "Origin nodes removed after lowering.",
		}),
		envEntries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "env_entries_total",
			Help:      "Container environment entries written, by classification.",
		}, []string{"kind"}),
		envSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "env_entries_skipped_total",
			Help:      "Environment inputs skipped because they could not be evaluated.",
		}),
		parseFallback: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unit_parse_fallbacks_total",
			Help:      "Unit-aware scalars kept as raw text after a parse failure, by type.",
		}, []string{"type"}),
		manifests: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "manifests_serialized_total",
			Help:      "Resource manifests serialized.",
		}),
	}
	m.registry.MustRegister(m.resources, m.relationships, m.removed, m.envEntries, m.envSkipped, m.parseFallback, m.manifests)
	return m
}

// Registry exposes the underlying registry, e.g. for an HTTP handler.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ResourceCreated counts a new resource node of typeName.
func (m *Metrics) ResourceCreated(typeName string) {
	if m == nil {
		return
	}
	m.resources.WithLabelValues(typeName).Inc()
}

// RelationshipCreated counts a new DependsOn edge.
func (m *Metrics) RelationshipCreated() {
	if m == nil {
		return
	}
	m.relationships.Inc()
}

// NodeRemoved counts a removed origin node.
func (m *Metrics) NodeRemoved() {
	if m == nil {
		return
	}
	m.removed.Inc()
}

// EnvEntry counts an environment entry of the given classification.
func (m *Metrics) EnvEntry(kind string) {
	if m == nil {
		return
	}
	m.envEntries.WithLabelValues(kind).Inc()
}

// EnvSkipped counts a skipped environment input.
func (m *Metrics) EnvSkipped() {
	if m == nil {
		return
	}
	m.envSkipped.Inc()
}

// ParseFallback counts a unit parse failure for typeName.
func (m *Metrics) ParseFallback(typeName string) {
	if m == nil {
		return
	}
	m.parseFallback.WithLabelValues(typeName).Inc()
}

// ManifestSerialized counts a serialized manifest.
func (m *Metrics) ManifestSerialized() {
	if m == nil {
		return
	}
	m.manifests.Inc()
}

// WriteFile writes all counters to path in the text exposition format.
func (m *Metrics) WriteFile(path string) error {
	if m == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.registry)
}
