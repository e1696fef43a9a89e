package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/kubelower/internal/registry"
	"github.com/vk/kubelower/internal/value"
)

// Type names of the Kubernetes type library used across tests.
const (
	ServiceType            = "k8s.nodes.Service"
	DeploymentType         = "k8s.nodes.Deployment"
	ContainerType          = "k8s.nodes.Container"
	ResourceType           = "k8s.nodes.Resource"
	ServiceResourceType    = "k8s.nodes.ServiceResource"
	DeploymentResourceType = "k8s.nodes.DeploymentResource"

	ServiceSpecType    = "k8s.datatypes.ServiceSpec"
	ServicePortType    = "k8s.datatypes.ServicePort"
	DeploymentSpecType = "k8s.datatypes.DeploymentSpec"
	PodTemplateType    = "k8s.datatypes.PodTemplate"
	PodSpecType        = "k8s.datatypes.PodSpec"
	ContainerSpecType  = "k8s.datatypes.Container"
	EnvVarType         = "k8s.datatypes.EnvVar"
)

// Prop is shorthand for a property definition of a plain type.
func Prop(typeName string) *registry.PropertyDefinition {
	return &registry.PropertyDefinition{Type: typeName}
}

// ListOf is shorthand for a list property definition.
func ListOf(entry string) *registry.PropertyDefinition {
	return &registry.PropertyDefinition{Type: "list", EntrySchema: Prop(entry)}
}

// MapOf is shorthand for a map property definition.
func MapOf(entry string) *registry.PropertyDefinition {
	return &registry.PropertyDefinition{Type: "map", EntrySchema: Prop(entry)}
}

// K8sRegistry returns a registry holding a small Kubernetes type library:
// Service, Deployment and Container nodes, the resource types they lower
// into, and the data types their properties use.
func K8sRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	r := registry.New()

	data := []*registry.DataType{
		{Name: ServicePortType, DerivedFrom: registry.RootData, Properties: registry.NewDefinitions().
			Add("name", Prop("string")).
			Add("port", Prop("integer")).
			Add("target_port", Prop("integer")).
			Add("protocol", Prop("string"))},
		{Name: ServiceSpecType, DerivedFrom: registry.RootData, Properties: registry.NewDefinitions().
			Add("service_type", Prop("string")).
			Add("ports", ListOf(ServicePortType)).
			Add("selector", MapOf("string"))},
		{Name: EnvVarType, DerivedFrom: registry.RootData, Properties: registry.NewDefinitions().
			Add("name", Prop("string")).
			Add("value", Prop("string"))},
		{Name: ContainerSpecType, DerivedFrom: registry.RootData, Properties: registry.NewDefinitions().
			Add("name", Prop("string")).
			Add("image", Prop("string")).
			Add("env", ListOf(EnvVarType)).
			Add("limits", MapOf("scalar-unit.size"))},
		{Name: PodSpecType, DerivedFrom: registry.RootData, Properties: registry.NewDefinitions().
			Add("restartPolicy", Prop("string"))},
		{Name: PodTemplateType, DerivedFrom: registry.RootData, Properties: registry.NewDefinitions().
			Add("metadata", Prop("map")).
			Add("spec", Prop(PodSpecType))},
		{Name: DeploymentSpecType, DerivedFrom: registry.RootData, Properties: registry.NewDefinitions().
			Add("replicas", Prop("integer")).
			Add("selector", Prop("map")).
			Add("template", Prop(PodTemplateType))},
	}
	for _, d := range data {
		require.NoError(t, r.RegisterDataType(d))
	}

	header := func(spec string) *registry.Definitions {
		return registry.NewDefinitions().
			Add("apiVersion", Prop("string")).
			Add("kind", Prop("string")).
			Add("metadata", Prop("map")).
			Add("spec", Prop(spec))
	}
	nodes := []*registry.NodeType{
		{Name: ServiceType, DerivedFrom: registry.RootNode, Properties: header(ServiceSpecType)},
		{Name: DeploymentType, DerivedFrom: registry.RootNode, Properties: header(DeploymentSpecType)},
		{Name: ContainerType, DerivedFrom: registry.RootNode, Properties: registry.NewDefinitions().
			Add("container", Prop(ContainerSpecType))},
		{Name: ResourceType, DerivedFrom: registry.RootNode, Properties: registry.NewDefinitions().
			Add("resource_yaml", Prop("string"))},
		{Name: ServiceResourceType, DerivedFrom: ResourceType, Properties: registry.NewDefinitions().
			Add("service_name", Prop("string"))},
		{Name: DeploymentResourceType, DerivedFrom: ResourceType, Properties: registry.NewDefinitions().
			Add("service_dependency_lookups", Prop("string"))},
	}
	for _, n := range nodes {
		require.NoError(t, r.RegisterNodeType(n))
	}
	return r
}

// RegisterComponent adds a node type whose Standard.create operation
// declares inputs.
func RegisterComponent(t *testing.T, r *registry.Registry, name string, inputs *value.Complex) {
	t.Helper()
	require.NoError(t, r.RegisterNodeType(&registry.NodeType{
		Name:        name,
		DerivedFrom: registry.RootNode,
		Properties:  registry.NewDefinitions(),
		Interfaces: map[string]*registry.Interface{
			registry.StandardInterface: {
				Operations: map[string]*registry.Operation{
					registry.CreateOperation: {Implementation: "create.sh", Inputs: inputs},
				},
			},
		},
	}))
}
