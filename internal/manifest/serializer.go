// Package manifest turns assembled resource definitions into manifest text.
package manifest

import (
	"context"
	"fmt"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"sigs.k8s.io/yaml"

	"github.com/vk/kubelower/internal/ctxlog"
)

// Serializer renders a native resource definition tree.
type Serializer interface {
	Serialize(ctx context.Context, def map[string]any) (string, error)
}

// YAMLSerializer renders Kubernetes style YAML manifests.
type YAMLSerializer struct{}

// NewYAMLSerializer creates a YAML serializer.
func NewYAMLSerializer() *YAMLSerializer {
	return &YAMLSerializer{}
}

var _ Serializer = (*YAMLSerializer)(nil)

// Serialize renders def as YAML with keys in lexical order.
func (s *YAMLSerializer) Serialize(ctx context.Context, def map[string]any) (string, error) {
	logger := ctxlog.FromContext(ctx)

	obj := &unstructured.Unstructured{Object: def}
	gvk := obj.GroupVersionKind()
	if gvk.Kind == "" {
		logger.Warn("Resource definition has no kind.", "name", obj.GetName())
	}
	logger.Debug("Serializing resource definition.", "group", gvk.Group, "version", gvk.Version, "kind", gvk.Kind, "name", obj.GetName())

	out, err := yaml.Marshal(obj.Object)
	if err != nil {
		return "", fmt.Errorf("failed to serialize %s %q: %w", gvk.Kind, obj.GetName(), err)
	}
	return string(out), nil
}
