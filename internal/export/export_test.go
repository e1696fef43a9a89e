package export

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/vk/kubelower/internal/registry"
	"github.com/vk/kubelower/internal/testutil"
	"github.com/vk/kubelower/internal/topology"
	"github.com/vk/kubelower/internal/value"
)

func TestWriteTopology(t *testing.T) {
	// --- Arrange ---
	reg := testutil.K8sRegistry(t)
	b := testutil.NewTopology(t, reg)
	svc := b.Node("web_Resource", testutil.ServiceResourceType)
	svc.Tags.Set("origin", "web")
	svc.Properties.
		Set("service_name", value.Str("web")).
		Set("resource_yaml", value.Str("kind: Service\nmetadata:\n  name: web\n")).
		Set("ports", value.List{Items: []value.Value{value.Str("80"), nil}}).
		Set("ref", value.Call("get_input", value.Str("x")))
	db := b.Node("db", registry.RootNode)
	db.Capabilities["sql"] = &topology.Capability{Type: registry.EndpointCapability, Properties: value.NewComplex().Set("port", value.Str("5432"))}
	rel := b.Link(svc, db, registry.DependsOn, "dependency", "feature")
	rel.Tags.Set("origin", "web -> db")

	var buf bytes.Buffer

	// --- Act ---
	err := WriteTopology(context.Background(), &buf, b.Store)

	// --- Assert ---
	require.NoError(t, err)
	expected := `nodes:
  web_Resource:
    type: k8s.nodes.ServiceResource
    tags:
      origin: web
    properties:
      service_name: web
      resource_yaml: |
        kind: Service
        metadata:
          name: web
      ports:
        - "80"
        - null
      ref: get_input("x")
  db:
    type: tosca.nodes.Root
    capabilities:
      sql:
        type: tosca.capabilities.Endpoint
        properties:
          port: "5432"
relationships:
  - type: tosca.relationships.DependsOn
    source: web_Resource
    target: db
    requirement: dependency
    capability: feature
    tags:
      origin: web -> db
`
	assert.Equal(t, expected, buf.String())

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	props := decoded["nodes"].(map[string]any)["web_Resource"].(map[string]any)["properties"].(map[string]any)
	assert.Equal(t, "kind: Service\nmetadata:\n  name: web\n", props["resource_yaml"])
}

func TestManifests(t *testing.T) {
	reg := testutil.K8sRegistry(t)
	b := testutil.NewTopology(t, reg)
	b.Node("web_Resource", testutil.ServiceResourceType).Properties.Set("resource_yaml", value.Str("kind: Service\n"))
	b.Node("pending", testutil.DeploymentResourceType)
	b.Node("other", registry.RootNode).Properties.Set("resource_yaml", value.Str("ignored"))
	b.Node("app_Resource", testutil.DeploymentResourceType).Properties.Set("resource_yaml", value.Str("kind: Deployment"))

	manifests := Manifests(context.Background(), b.Store, testutil.ResourceType, "resource_yaml")

	require.Len(t, manifests, 2)
	assert.Equal(t, "web_Resource", manifests[0].Node)
	assert.Equal(t, testutil.DeploymentResourceType, manifests[1].Type)

	var buf bytes.Buffer
	require.NoError(t, WriteManifests(&buf, manifests))
	assert.Equal(t, "---\n# Source: web_Resource\nkind: Service\n---\n# Source: app_Resource\nkind: Deployment\n", buf.String())
}
