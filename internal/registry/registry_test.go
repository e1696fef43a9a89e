package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/kubelower/internal/value"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	r := New()

	require.NoError(t, r.RegisterDataType(&DataType{
		Name:        "k8s.datatypes.Base",
		DerivedFrom: RootData,
		Properties:  NewDefinitions().Add("name", &PropertyDefinition{Type: "string"}),
	}))
	require.NoError(t, r.RegisterDataType(&DataType{
		Name:        "k8s.datatypes.Port",
		DerivedFrom: "k8s.datatypes.Base",
		Properties: NewDefinitions().
			Add("port", &PropertyDefinition{Type: "integer"}).
			Add("name", &PropertyDefinition{Type: "string", Description: "refined"}),
	}))
	require.NoError(t, r.RegisterDataType(&DataType{
		Name:        "k8s.datatypes.Size",
		DerivedFrom: "scalar-unit.size",
		Properties:  NewDefinitions(),
	}))
	require.NoError(t, r.RegisterNodeType(&NodeType{
		Name:        "k8s.nodes.Base",
		DerivedFrom: RootNode,
		Properties:  NewDefinitions().Add("metadata", &PropertyDefinition{Type: "map"}),
		Interfaces: map[string]*Interface{
			StandardInterface: {Operations: map[string]*Operation{
				CreateOperation: {Inputs: value.NewComplex().Set("ENV_A", value.Str("1"))},
			}},
		},
	}))
	require.NoError(t, r.RegisterNodeType(&NodeType{
		Name:        "k8s.nodes.Service",
		DerivedFrom: "k8s.nodes.Base",
		Properties:  NewDefinitions().Add("spec", &PropertyDefinition{Type: "k8s.datatypes.Port"}),
	}))
	return r
}

func TestRegister_RejectsDuplicates(t *testing.T) {
	r := newTestRegistry(t)

	err := r.RegisterNodeType(&NodeType{Name: "k8s.datatypes.Port"})
	assert.ErrorContains(t, err, "already registered")

	err = r.RegisterDataType(&DataType{Name: "integer"})
	assert.Error(t, err)
}

func TestIsDerivedFrom(t *testing.T) {
	r := newTestRegistry(t)

	assert.True(t, r.IsDerivedFrom("k8s.nodes.Service", "k8s.nodes.Service"))
	assert.True(t, r.IsDerivedFrom("k8s.nodes.Service", RootNode))
	assert.True(t, r.IsDerivedFrom(HostedOn, RootRelationship))
	assert.False(t, r.IsDerivedFrom("k8s.nodes.Base", "k8s.nodes.Service"))
	assert.False(t, r.IsDerivedFrom("unknown", RootNode))
}

func TestNodeProperty_SearchesAncestors(t *testing.T) {
	r := newTestRegistry(t)

	def, err := r.NodeProperty("k8s.nodes.Service", "metadata")
	require.NoError(t, err)
	assert.Equal(t, "map", def.Type)

	_, err = r.NodeProperty("k8s.nodes.Service", "missing")
	var lookupErr *LookupError
	require.True(t, errors.As(err, &lookupErr))
	assert.Equal(t, "property", lookupErr.Kind)

	_, err = r.NodeProperty("k8s.nodes.Nope", "spec")
	require.True(t, errors.As(err, &lookupErr))
	assert.Equal(t, "node type", lookupErr.Kind)
}

func TestDataProperties_InheritedFirst(t *testing.T) {
	r := newTestRegistry(t)

	defs, err := r.DataProperties("k8s.datatypes.Port")
	require.NoError(t, err)

	assert.Equal(t, []string{"name", "port"}, defs.Names())
	name, _ := defs.Get("name")
	assert.Equal(t, "refined", name.Description)
}

func TestCreateOperation_Inherited(t *testing.T) {
	r := newTestRegistry(t)

	op, err := r.CreateOperation("k8s.nodes.Service")
	require.NoError(t, err)
	require.NotNil(t, op)
	assert.Equal(t, []string{"ENV_A"}, op.Inputs.Keys())

	op, err = r.CreateOperation(RootNode)
	require.NoError(t, err)
	assert.Nil(t, op)
}

func TestResolve(t *testing.T) {
	r := newTestRegistry(t)
	entry := &PropertyDefinition{Type: "string"}

	testCases := []struct {
		name     string
		def      *PropertyDefinition
		expected Schema
	}{
		{name: "nil is opaque", def: nil, expected: Opaque{}},
		{name: "list", def: &PropertyDefinition{Type: "list", EntrySchema: entry}, expected: ListOf{Entry: entry}},
		{name: "map", def: &PropertyDefinition{Type: "map", EntrySchema: entry}, expected: MapOf{Entry: entry}},
		{name: "integer", def: &PropertyDefinition{Type: "integer"}, expected: Primitive{Type: "integer", Kind: KindInteger}},
		{name: "unit scalar", def: &PropertyDefinition{Type: "scalar-unit.size"}, expected: Primitive{Type: "scalar-unit.size", Kind: KindString}},
		{name: "data type over primitive", def: &PropertyDefinition{Type: "k8s.datatypes.Size"}, expected: Primitive{Type: "scalar-unit.size", Kind: KindString}},
		{name: "data type without fields", def: &PropertyDefinition{Type: RootData}, expected: Opaque{Type: RootData}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := r.Resolve(tc.def)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}

	t.Run("structured", func(t *testing.T) {
		got, err := r.Resolve(&PropertyDefinition{Type: "k8s.datatypes.Port"})
		require.NoError(t, err)
		s, ok := got.(Structured)
		require.True(t, ok)
		assert.Equal(t, []string{"name", "port"}, s.Fields.Names())
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := r.Resolve(&PropertyDefinition{Type: "k8s.datatypes.Nope"})
		var lookupErr *LookupError
		assert.True(t, errors.As(err, &lookupErr))
	})
}

func TestValidate(t *testing.T) {
	r := newTestRegistry(t)
	require.NoError(t, r.Validate(context.Background()))

	require.NoError(t, r.RegisterNodeType(&NodeType{
		Name:        "k8s.nodes.Broken",
		DerivedFrom: "k8s.nodes.Missing",
		Properties:  NewDefinitions().Add("x", &PropertyDefinition{Type: "k8s.datatypes.Missing"}),
	}))

	err := r.Validate(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "derived_from 'k8s.nodes.Missing' is not defined")
	assert.Contains(t, err.Error(), "property 'x'")
}
