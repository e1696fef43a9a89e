package metrics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()

	m.ResourceCreated("k8s.nodes.ServiceResource")
	m.ResourceCreated("k8s.nodes.ServiceResource")
	m.EnvEntry("service_ip")
	m.EnvSkipped()
	m.ParseFallback("scalar-unit.size")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.resources.WithLabelValues("k8s.nodes.ServiceResource")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.envEntries.WithLabelValues("service_ip")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.envSkipped))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.parseFallback.WithLabelValues("scalar-unit.size")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.manifests))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ResourceCreated("x")
		m.RelationshipCreated()
		m.NodeRemoved()
		m.EnvEntry("x")
		m.EnvSkipped()
		m.ParseFallback("x")
		m.ManifestSerialized()
	})
	assert.NoError(t, m.WriteFile(filepath.Join(t.TempDir(), "none.prom")))
	assert.Nil(t, m.Registry())
}

func TestWriteFile(t *testing.T) {
	m := New()
	m.RelationshipCreated()
	path := filepath.Join(t.TempDir(), "kubelower.prom")

	require.NoError(t, m.WriteFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "kubelower_relationships_created_total 1")
}
