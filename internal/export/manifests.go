package export

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/vk/kubelower/internal/topology"
	"github.com/vk/kubelower/internal/value"
)

// Manifest is the serialized manifest of one resource node.
type Manifest struct {
	Node string
	Type string
	YAML string
}

// Manifests collects the resource_yaml property of every node of
// resourceType or one of its subtypes, in node order.
func Manifests(ctx context.Context, topo topology.Store, resourceType, property string) []Manifest {
	var out []Manifest
	for _, n := range topo.NodesOfType(ctx, resourceType, true) {
		v, ok := n.Properties.Get(property)
		if !ok {
			continue
		}
		text, ok := value.ScalarText(v)
		if !ok {
			continue
		}
		out = append(out, Manifest{Node: n.Name, Type: n.Type, YAML: text})
	}
	return out
}

// WriteManifests writes the manifests as one multi-document YAML stream.
// Each document starts with a separator and a comment naming its node.
func WriteManifests(w io.Writer, manifests []Manifest) error {
	for _, m := range manifests {
		text := m.YAML
		if !strings.HasSuffix(text, "\n") {
			text += "\n"
		}
		if _, err := fmt.Fprintf(w, "---\n# Source: %s\n%s", m.Node, text); err != nil {
			return fmt.Errorf("write manifest of %q: %w", m.Node, err)
		}
	}
	return nil
}
