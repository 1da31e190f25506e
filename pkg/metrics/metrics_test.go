package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetricsRegistersOnGivenRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics("oproom", reg)

	m.PatientsArchived.WithLabelValues("manual_archive").Inc()
	m.PatientsArchived.WithLabelValues("manual_archive").Inc()
	assert.Equal(t, float64(2), testutil.ToFloat64(m.PatientsArchived.WithLabelValues("manual_archive")))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "oproom_patients_archived_total")
}

func TestNewNopIsIsolated(t *testing.T) {
	assert.NotPanics(t, func() {
		NewNop()
		NewNop()
	})
}
