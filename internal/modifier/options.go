package modifier

import (
	"github.com/vk/kubelower/internal/manifest"
	"github.com/vk/kubelower/internal/metrics"
	"github.com/vk/kubelower/internal/transform"
)

// DefaultTag prefixes the provenance tags written by a pass.
const DefaultTag = "kubelower-final-modifier"

// ResourceSuffix is appended to an origin node name to name its resource.
const ResourceSuffix = "_Resource"

// Types names the node types the rewriter recognizes.
type Types struct {
	Service            string `koanf:"service"`
	Deployment         string `koanf:"deployment"`
	Container          string `koanf:"container"`
	Resource           string `koanf:"resource"`
	ServiceResource    string `koanf:"service_resource"`
	DeploymentResource string `koanf:"deployment_resource"`
}

// DefaultTypes returns the type names of the k8s.nodes type library.
func DefaultTypes() Types {
	return Types{
		Service:            "k8s.nodes.Service",
		Deployment:         "k8s.nodes.Deployment",
		Container:          "k8s.nodes.Container",
		Resource:           "k8s.nodes.Resource",
		ServiceResource:    "k8s.nodes.ServiceResource",
		DeploymentResource: "k8s.nodes.DeploymentResource",
	}
}

// Option configures a Rewriter.
type Option func(*Rewriter)

// WithTypes overrides the recognized type names.
func WithTypes(t Types) Option {
	return func(r *Rewriter) { r.types = t }
}

// WithTag overrides the provenance tag prefix.
func WithTag(tag string) Option {
	return func(r *Rewriter) { r.tag = tag }
}

// WithMetrics records pass counters on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Rewriter) { r.metrics = m }
}

// WithParsers replaces the unit-aware scalar parsers.
func WithParsers(p transform.Parsers) Option {
	return func(r *Rewriter) { r.parsers = p }
}

// WithSerializer replaces the manifest serializer.
func WithSerializer(s manifest.Serializer) Option {
	return func(r *Rewriter) { r.serializer = s }
}
