package evaluator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/kubelower/internal/inmemorytopology"
	"github.com/vk/kubelower/internal/registry"
	"github.com/vk/kubelower/internal/topology"
	"github.com/vk/kubelower/internal/value"
)

type fixture struct {
	store *inmemorytopology.Store
	app   *topology.Node
	db    *topology.Node
	host  *topology.Node
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	s := inmemorytopology.New(registry.New())

	host, err := s.AddNode(ctx, "container", registry.RootNode)
	require.NoError(t, err)
	host.Properties.Set("image", value.Str("nginx:1.27"))

	db, err := s.AddNode(ctx, "db", registry.RootNode)
	require.NoError(t, err)
	db.Properties.Set("user", value.Str("admin"))
	db.Properties.Set("loop", value.Call("get_property", value.Str("SELF"), value.Str("loop")))
	db.Capabilities["endpoint"] = &topology.Capability{
		Type:       registry.EndpointCapability,
		Properties: value.NewComplex().Set("port", value.Str("5432")),
	}

	app, err := s.AddNode(ctx, "app", registry.RootNode)
	require.NoError(t, err)
	app.Properties.Set("name", value.Str("frontend"))
	app.Properties.Set("ports", value.List{Items: []value.Value{value.Str("80"), value.Str("443")}})
	app.Properties.Set("db_user", value.Call("get_property", value.Str("database"), value.Str("user")))

	_, err = s.AddRelationship(ctx, topology.Relationship{Type: registry.HostedOn, Source: app.ID, Target: host.ID, Requirement: "host", Capability: "host"})
	require.NoError(t, err)
	_, err = s.AddRelationship(ctx, topology.Relationship{Type: registry.ConnectsTo, Source: app.ID, Target: db.ID, Requirement: "database", Capability: "endpoint"})
	require.NoError(t, err)

	return &fixture{store: s, app: app, db: db, host: host}
}

func TestResolve(t *testing.T) {
	f := newFixture(t)
	inputs := map[string]value.Value{
		"region": value.Str("eu-west-1"),
		"nested": value.Call("get_property", value.Str("SELF"), value.Str("name")),
	}
	e := New(f.store, inputs)

	testCases := []struct {
		name     string
		input    value.Value
		expected value.Value
	}{
		{name: "literal", input: value.Str("plain"), expected: value.Str("plain")},
		{name: "null", input: nil, expected: nil},
		{name: "input", input: value.Call("get_input", value.Str("region")), expected: value.Str("eu-west-1")},
		{name: "input resolved in caller scope", input: value.Call("get_input", value.Str("nested")), expected: value.Str("frontend")},
		{name: "self property", input: value.Call("get_property", value.Str("SELF"), value.Str("name")), expected: value.Str("frontend")},
		{name: "list element", input: value.Call("get_property", value.Str("SELF"), value.Str("ports"), value.Str("1")), expected: value.Str("443")},
		{name: "host property", input: value.Call("get_property", value.Str("HOST"), value.Str("image")), expected: value.Str("nginx:1.27")},
		{name: "requirement capability property", input: value.Call("get_property", value.Str("database"), value.Str("endpoint"), value.Str("port")), expected: value.Str("5432")},
		{name: "nested reference", input: value.Call("get_property", value.Str("SELF"), value.Str("db_user")), expected: value.Str("admin")},
		{name: "node by name", input: value.Call("get_property", value.Str("db"), value.Str("user")), expected: value.Str("admin")},
		{name: "attribute backed by property", input: value.Call("get_attribute", value.Str("SELF"), value.Str("name")), expected: value.Str("frontend")},
		{
			name:     "concat",
			input:    value.Call("concat", value.Str("postgres://"), value.Call("get_property", value.Str("database"), value.Str("user")), value.Str("@db")),
			expected: value.Str("postgres://admin@db"),
		},
		{name: "token", input: value.Call("token", value.Str("a:b:c"), value.Str(":"), value.Str("1")), expected: value.Str("b")},
		{
			name:     "complex members are resolved",
			input:    value.NewComplex().Set("u", value.Call("get_input", value.Str("region"))),
			expected: value.NewComplex().Set("u", value.Str("eu-west-1")),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := e.Resolve(context.Background(), f.app, f.app.Properties, tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestResolve_InvalidArguments(t *testing.T) {
	f := newFixture(t)
	e := New(f.store, nil)

	testCases := []struct {
		name  string
		input value.Value
	}{
		{name: "missing input", input: value.Call("get_input", value.Str("nope"))},
		{name: "missing property", input: value.Call("get_property", value.Str("SELF"), value.Str("nope"))},
		{name: "runtime attribute", input: value.Call("get_attribute", value.Str("database"), value.Str("ip_address"))},
		{name: "relationship keyword", input: value.Call("get_property", value.Str("SOURCE"), value.Str("name"))},
		{name: "unknown entity", input: value.Call("get_property", value.Str("nowhere"), value.Str("name"))},
		{name: "operation output", input: value.Call("get_operation_output", value.Str("SELF"), value.Str("Standard"), value.Str("create"), value.Str("x"))},
		{name: "unknown function", input: value.Call("frobnicate")},
		{name: "wrong arity", input: value.Call("get_input")},
		{name: "non string argument", input: value.Call("concat", value.List{Items: []value.Value{value.Str("a")}})},
		{name: "token out of range", input: value.Call("token", value.Str("a:b"), value.Str(":"), value.Str("5"))},
		{name: "self reference", input: value.Call("get_property", value.Str("db"), value.Str("loop"))},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.Resolve(context.Background(), f.app, f.app.Properties, tc.input)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidArgument), "expected ErrInvalidArgument, got %v", err)
		})
	}
}
