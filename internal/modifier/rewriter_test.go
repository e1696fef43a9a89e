package modifier

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sigs.k8s.io/yaml"

	"github.com/vk/kubelower/internal/registry"
	"github.com/vk/kubelower/internal/testutil"
	"github.com/vk/kubelower/internal/topology"
	"github.com/vk/kubelower/internal/value"
)

const webappType = "app.nodes.Webapp"

type scenario struct {
	reg     *registry.Registry
	b       *testutil.TopologyBuilder
	web     *topology.Node
	deploy  *topology.Node
	webapps []*topology.Node
}

// newScenario builds a Service "web" exposing a Deployment "frontend". Each
// name in containers becomes a Container hosted on the deployment, hosting
// a webapp whose create operation reads the Service address.
func newScenario(t *testing.T, containers ...string) *scenario {
	t.Helper()
	reg := testutil.K8sRegistry(t)
	testutil.RegisterComponent(t, reg, webappType, value.NewComplex().
		Set("ENV_HOST", value.Call("get_attribute", value.Str("backend"), value.Str("ip_address"))).
		Set("PORT", value.Str("8080")).
		Set("ENV_MODE", value.Str("production")).
		Set("ENV_BROKEN", value.Call("get_input", value.Str("missing"))))

	b := testutil.NewTopology(t, reg)
	s := &scenario{reg: reg, b: b}

	s.web = b.Node("web", testutil.ServiceType)
	s.web.Properties.
		Set("apiVersion", value.Str("v1")).
		Set("kind", value.Str("Service")).
		Set("metadata", value.NewComplex().Set("name", value.Str("web"))).
		Set("spec", value.NewComplex().
			Set("service_type", value.Str("ClusterIP")).
			Set("ports", value.List{Items: []value.Value{
				value.NewComplex().Set("name", value.Str("http")).Set("port", value.Str("80")),
			}}).
			Set("unknown", value.Str("dropped")))

	s.deploy = b.Node("frontend", testutil.DeploymentType)
	s.deploy.Properties.
		Set("apiVersion", value.Str("apps/v1")).
		Set("kind", value.Str("Deployment")).
		Set("metadata", value.NewComplex().Set("name", value.Str("frontend"))).
		Set("spec", value.NewComplex().
			Set("replicas", value.Str("2")).
			Set("template", value.NewComplex().
				Set("spec", value.NewComplex().Set("restartPolicy", value.Str("Always")))))

	b.Link(s.web, s.deploy, registry.DependsOn, "feature", "feature")

	for _, name := range containers {
		c := b.Node(name, testutil.ContainerType)
		c.Properties.Set("container", value.NewComplex().
			Set("name", value.Str(name)).
			Set("image", value.Str("nginx:1.27")).
			Set("limits", value.NewComplex().Set("memory", value.Str("1 GiB"))))
		b.HostOn(c, s.deploy)

		app := b.Node(name+"_app", webappType)
		b.HostOn(app, c)
		b.Link(app, s.web, registry.ConnectsTo, "backend", "endpoint")
		s.webapps = append(s.webapps, app)
	}
	return s
}

func mustNode(t *testing.T, topo topology.Store, name string) *topology.Node {
	t.Helper()
	n, ok := topo.NodeByName(context.Background(), name)
	require.True(t, ok, "node %q not found", name)
	return n
}

func manifestOf(t *testing.T, n *topology.Node) map[string]any {
	t.Helper()
	raw, ok := n.Properties.Get(PropResourceYAML)
	require.True(t, ok, "node %q has no %s", n.Name, PropResourceYAML)
	text, ok := value.ScalarText(raw)
	require.True(t, ok)

	var out map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(text), &out))
	return out
}

func TestProcess_EndToEnd(t *testing.T) {
	// --- Arrange ---
	s := newScenario(t, "frontend_container")
	topo := s.b.Store
	ctx := context.Background()

	// --- Act ---
	err := New(s.reg).Process(ctx, topo, nil)

	// --- Assert ---
	require.NoError(t, err)

	_, ok := topo.NodeByName(ctx, "web")
	assert.False(t, ok, "service must be removed")
	_, ok = topo.NodeByName(ctx, "frontend")
	assert.False(t, ok, "deployment must be removed")

	webRes := mustNode(t, topo, "web_Resource")
	assert.Equal(t, testutil.ServiceResourceType, webRes.Type)
	createdFrom, _ := webRes.Tags.Get(DefaultTag + "_created_from")
	assert.Equal(t, "web", createdFrom)
	serviceName, _ := webRes.Properties.Get(PropServiceName)
	assert.Equal(t, value.Str("web"), serviceName)

	svc := manifestOf(t, webRes)
	assert.Equal(t, "v1", svc["apiVersion"])
	assert.Equal(t, "Service", svc["kind"])
	spec := svc["spec"].(map[string]any)
	assert.Equal(t, "ClusterIP", spec["type"])
	assert.NotContains(t, spec, "service_type")
	assert.NotContains(t, spec, "unknown")
	assert.Equal(t, []any{map[string]any{"name": "http", "port": float64(80)}}, spec["ports"])

	depRes := mustNode(t, topo, "frontend_Resource")
	assert.Equal(t, testutil.DeploymentResourceType, depRes.Type)
	lookups, _ := depRes.Properties.Get(PropServiceLookups)
	assert.Equal(t, value.Str("SERVICE_IP_LOOKUP0:web"), lookups)

	dep := manifestOf(t, depRes)
	depSpec := dep["spec"].(map[string]any)
	assert.Equal(t, float64(2), depSpec["replicas"])
	podSpec := depSpec["template"].(map[string]any)["spec"].(map[string]any)
	assert.Equal(t, "Always", podSpec["restartPolicy"])
	containers := podSpec["containers"].([]any)
	require.Len(t, containers, 1)
	container := containers[0].(map[string]any)
	assert.Equal(t, "frontend_container", container["name"])
	assert.Equal(t, map[string]any{"memory": float64(1 << 30)}, container["limits"])
	assert.Equal(t, []any{
		map[string]any{"name": "HOST", "value": "$SERVICE_IP_LOOKUP0"},
		map[string]any{"name": "MODE", "value": "production"},
	}, container["env"])

	assert.True(t, topo.HasRelationship(ctx, webRes.ID, depRes.ID, "dependency", "feature"))
	for _, rel := range topo.Relationships(ctx, depRes.ID) {
		if rel.Source == webRes.ID {
			tag, _ := rel.Tags.Get(DefaultTag + "_created_from")
			assert.Equal(t, "web -> frontend", tag)
			assert.Equal(t, registry.DependsOn, rel.Type)
		}
	}
}

func TestProcess_ContainersAppendInOrderWithSharedTokens(t *testing.T) {
	s := newScenario(t, "first", "second")
	topo := s.b.Store

	require.NoError(t, New(s.reg).Process(context.Background(), topo, nil))

	depRes := mustNode(t, topo, "frontend_Resource")
	lookups, _ := depRes.Properties.Get(PropServiceLookups)
	assert.Equal(t, value.Str("SERVICE_IP_LOOKUP0:web,SERVICE_IP_LOOKUP1:web"), lookups)

	podSpec := manifestOf(t, depRes)["spec"].(map[string]any)["template"].(map[string]any)["spec"].(map[string]any)
	containers := podSpec["containers"].([]any)
	require.Len(t, containers, 2)
	assert.Equal(t, "first", containers[0].(map[string]any)["name"])
	assert.Equal(t, "second", containers[1].(map[string]any)["name"])

	secondEnv := containers[1].(map[string]any)["env"].([]any)
	assert.Equal(t, map[string]any{"name": "HOST", "value": "$SERVICE_IP_LOOKUP1"}, secondEnv[0])
}

func TestProcess_DependencyEdgeFromDeployment(t *testing.T) {
	s := newScenario(t)
	db := s.b.Node("db", testutil.ServiceType)
	s.b.Link(s.deploy, db, registry.DependsOn, "dependency", "feature")
	topo := s.b.Store
	ctx := context.Background()

	require.NoError(t, New(s.reg).Process(ctx, topo, nil))

	depRes := mustNode(t, topo, "frontend_Resource")
	dbRes := mustNode(t, topo, "db_Resource")
	assert.True(t, topo.HasRelationship(ctx, depRes.ID, dbRes.ID, "dependency", "feature"))

	var tags []string
	for _, rel := range topo.Relationships(ctx, dbRes.ID) {
		tag, _ := rel.Tags.Get(DefaultTag + "_created_from")
		tags = append(tags, tag)
	}
	assert.Equal(t, []string{"frontend -> db"}, tags)

	_, ok := dbRes.Properties.Get(PropResourceYAML)
	assert.False(t, ok, "a service without properties has nothing to serialize")
	_, ok = dbRes.Properties.Get(PropServiceName)
	assert.False(t, ok)
}

func TestProcess_SourcesMatchedByCapability(t *testing.T) {
	t.Run("service reaching feature through another requirement", func(t *testing.T) {
		// --- Arrange ---
		s := newScenario(t)
		api := s.b.Node("api", testutil.ServiceType)
		s.b.Link(api, s.deploy, registry.DependsOn, "expose", "feature")
		metricsSvc := s.b.Node("metrics", testutil.ServiceType)
		s.b.Link(metricsSvc, s.deploy, registry.ConnectsTo, "feature", "endpoint")
		topo := s.b.Store
		ctx := context.Background()

		// --- Act ---
		err := New(s.reg).Process(ctx, topo, nil)

		// --- Assert ---
		require.NoError(t, err)
		depRes := mustNode(t, topo, "frontend_Resource")
		apiRes := mustNode(t, topo, "api_Resource")
		metricsRes := mustNode(t, topo, "metrics_Resource")
		assert.True(t, topo.HasRelationship(ctx, apiRes.ID, depRes.ID, "dependency", "feature"),
			"relationships on deployment resource: %d", len(topo.Relationships(ctx, depRes.ID)))
		assert.False(t, topo.HasRelationship(ctx, metricsRes.ID, depRes.ID, "dependency", "feature"),
			"a requirement named feature aimed at another capability is not a feature edge")
	})

	t.Run("component hosted through another requirement", func(t *testing.T) {
		// --- Arrange ---
		s := newScenario(t)
		c := s.b.Node("worker", testutil.ContainerType)
		c.Properties.Set("container", value.NewComplex().
			Set("name", value.Str("worker")).
			Set("image", value.Str("busybox:1.36")))
		s.b.HostOn(c, s.deploy)
		app := s.b.Node("worker_app", webappType)
		s.b.Link(app, c, registry.HostedOn, "runs_on", "host")
		s.b.Link(app, s.web, registry.ConnectsTo, "backend", "endpoint")
		topo := s.b.Store
		ctx := context.Background()

		// --- Act ---
		err := New(s.reg).Process(ctx, topo, nil)

		// --- Assert ---
		require.NoError(t, err)
		dep := manifestOf(t, mustNode(t, topo, "frontend_Resource"))
		podSpec := dep["spec"].(map[string]any)["template"].(map[string]any)["spec"].(map[string]any)
		containers := podSpec["containers"].([]any)
		require.Len(t, containers, 1)
		assert.Equal(t, []any{
			map[string]any{"name": "HOST", "value": "$SERVICE_IP_LOOKUP0"},
			map[string]any{"name": "MODE", "value": "production"},
		}, containers[0].(map[string]any)["env"])
	})
}

func TestLink_IsIdempotent(t *testing.T) {
	reg := testutil.K8sRegistry(t)
	b := testutil.NewTopology(t, reg)
	a := b.Node("a_Resource", testutil.ServiceResourceType)
	d := b.Node("d_Resource", testutil.DeploymentResourceType)
	p := &pass{Rewriter: New(reg), topo: b.Store}
	ctx := context.Background()

	require.NoError(t, p.link(ctx, a, d, "a -> d"))
	require.NoError(t, p.link(ctx, a, d, "a -> d"))

	assert.Len(t, b.Store.AllRelationships(ctx), 1)
}

func TestProcess_CustomTag(t *testing.T) {
	s := newScenario(t)
	topo := s.b.Store

	require.NoError(t, New(s.reg, WithTag("acme")).Process(context.Background(), topo, nil))

	tag, ok := mustNode(t, topo, "web_Resource").Tags.Get("acme_created_from")
	assert.True(t, ok)
	assert.Equal(t, "web", tag)
}

func TestProcess_LookupFaults(t *testing.T) {
	t.Run("container without host", func(t *testing.T) {
		s := newScenario(t)
		s.b.Node("orphan", testutil.ContainerType)

		err := New(s.reg).Process(context.Background(), s.b.Store, nil)

		var lookupErr *LookupError
		require.True(t, errors.As(err, &lookupErr), "got %v", err)
		assert.Equal(t, "host", lookupErr.What)
		assert.Equal(t, "orphan", lookupErr.Node)
	})

	t.Run("hosted node of unknown type", func(t *testing.T) {
		s := newScenario(t)
		c := s.b.Node("c", testutil.ContainerType)
		s.b.HostOn(c, s.deploy)
		ghost := s.b.Node("ghost", "app.nodes.Missing")
		s.b.HostOn(ghost, c)

		err := New(s.reg).Process(context.Background(), s.b.Store, nil)

		var lookupErr *registry.LookupError
		require.True(t, errors.As(err, &lookupErr), "got %v", err)
		assert.Equal(t, "app.nodes.Missing", lookupErr.Name)
	})
}

type failingSerializer struct{}

func (failingSerializer) Serialize(context.Context, map[string]any) (string, error) {
	return "", errors.New("boom")
}

func TestProcess_SerializerErrorIsFatal(t *testing.T) {
	s := newScenario(t)

	err := New(s.reg, WithSerializer(failingSerializer{})).Process(context.Background(), s.b.Store, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), `serialize resource "web_Resource"`)
	assert.Contains(t, err.Error(), "boom")
}
