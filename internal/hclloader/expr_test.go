package hclloader

import (
	"context"
	"testing"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/kubelower/internal/proppath"
	"github.com/vk/kubelower/internal/topology"
	"github.com/vk/kubelower/internal/value"
)

func mustPath(t *testing.T, raw string) *proppath.Path {
	t.Helper()
	p, err := proppath.Parse(raw)
	require.NoError(t, err)
	return p
}

func mustNode(t *testing.T, res *Result, name string) *topology.Node {
	t.Helper()
	n, ok := res.Topology.NodeByName(context.Background(), name)
	require.True(t, ok, "node %q not found", name)
	return n
}

func parseExpr(t *testing.T, src string) hcl.Expression {
	t.Helper()
	expr, diags := hclsyntax.ParseExpression([]byte(src), "test.hcl", hcl.InitialPos)
	require.False(t, diags.HasErrors(), diags.Error())
	return expr
}

func TestExprToValue(t *testing.T) {
	testCases := []struct {
		name     string
		src      string
		expected value.Value
	}{
		{name: "string", src: `"ClusterIP"`, expected: value.Str("ClusterIP")},
		{name: "number", src: `8080`, expected: value.Str("8080")},
		{name: "float", src: `1.5`, expected: value.Str("1.5")},
		{name: "bool", src: `true`, expected: value.Str("true")},
		{name: "null", src: `null`, expected: nil},
		{name: "identifier", src: `SELF`, expected: value.Str("SELF")},
		{name: "parentheses", src: `("x")`, expected: value.Str("x")},
		{name: "interpolation", src: `"${get_input("a")}"`, expected: value.Call("get_input", value.Str("a"))},
		{
			name:     "function",
			src:      `get_property(HOST, "port")`,
			expected: value.Call("get_property", value.Str("HOST"), value.Str("port")),
		},
		{
			name:     "list",
			src:      `["a", 1]`,
			expected: value.List{Items: []value.Value{value.Str("a"), value.Str("1")}},
		},
		{
			name: "object keeps source order",
			src:  `{ zeta = "z", "alpha" = { nested = get_input("n") } }`,
			expected: value.NewComplex().
				Set("zeta", value.Str("z")).
				Set("alpha", value.NewComplex().Set("nested", value.Call("get_input", value.Str("n")))),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, diags := exprToValue(parseExpr(t, tc.src))

			require.False(t, diags.HasErrors(), diags.Error())
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestExprToValue_InvalidKey(t *testing.T) {
	_, diags := exprToValue(parseExpr(t, `{ (get_input("k")) = "v" }`))

	require.True(t, diags.HasErrors())
	assert.Contains(t, diags.Error(), "Invalid object key")
}
