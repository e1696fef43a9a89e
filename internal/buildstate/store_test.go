package buildstate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/kubelower/internal/topology"
)

func TestReplaceAndLookup(t *testing.T) {
	s := New()

	// Nothing is replaced yet
	_, ok := s.Replacement(1)
	assert.False(t, ok)

	st, err := s.Replace(1, 10)
	require.NoError(t, err)
	assert.Equal(t, topology.NodeID(1), st.Origin)
	assert.NotNil(t, st.Manifest)

	got, ok := s.Replacement(1)
	require.True(t, ok)
	assert.Equal(t, topology.NodeID(10), got)

	same, ok := s.State(10)
	require.True(t, ok)
	assert.Same(t, st, same)
}

func TestReplace_IsInjective(t *testing.T) {
	s := New()

	_, err := s.Replace(1, 10)
	require.NoError(t, err)

	_, err = s.Replace(1, 11)
	assert.ErrorContains(t, err, "already replaced")
}

func TestStates_Ordered(t *testing.T) {
	s := New()
	for _, id := range []topology.NodeID{7, 3, 5} {
		_, err := s.Replace(id+100, id)
		require.NoError(t, err)
	}

	var ids []topology.NodeID
	for _, st := range s.States() {
		ids = append(ids, st.Resource)
	}
	assert.Equal(t, []topology.NodeID{3, 5, 7}, ids)
}

func TestLookupTable(t *testing.T) {
	table := &LookupTable{}
	assert.Equal(t, "", table.String())

	assert.Equal(t, 0, table.Allocate("svcA"))
	assert.Equal(t, 1, table.Allocate("svcB"))
	assert.Equal(t, 2, table.Allocate("svcA"))

	assert.Equal(t, 3, table.Len())
	assert.Equal(t, "SERVICE_IP_LOOKUP0:svcA,SERVICE_IP_LOOKUP1:svcB,SERVICE_IP_LOOKUP2:svcA", table.String())
	assert.Equal(t, "$SERVICE_IP_LOOKUP1", Placeholder(1))
}
