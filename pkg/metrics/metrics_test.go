package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetricsRegisters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics("fraudshield", reg)

	m.PageRenders.WithLabelValues("cases").Inc()
	m.ToastsShown.WithLabelValues("success").Add(2)
	m.ActiveSessions.Set(3)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.PageRenders.WithLabelValues("cases")))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.ToastsShown.WithLabelValues("success")))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "fraudshield_page_renders_total")
	assert.Contains(t, names, "fraudshield_session_active")
}

func TestNopDoesNotRegister(t *testing.T) {
	a, b := Nop(), Nop()
	a.Scans.WithLabelValues("ok").Inc()
	assert.Equal(t, float64(0), testutil.ToFloat64(b.Scans.WithLabelValues("ok")))
}
