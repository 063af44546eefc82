package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistersCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.RowsExtracted.WithLabelValues("grid").Add(3)
	m.Records.WithLabelValues("accepted").Inc()
	m.NullCells.Inc()
	m.ObserveRun("top_industries", StatusSuccess, 20*time.Millisecond)

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	values := make(map[string]float64)
	for _, f := range families {
		names = append(names, f.GetName())
		for _, m := range f.GetMetric() {
			if c := m.GetCounter(); c != nil {
				values[f.GetName()] += c.GetValue()
			}
		}
	}
	assert.Equal(t, 3.0, values["census_rows_extracted_total"])
	assert.Equal(t, 1.0, values["census_ingest_runs_total"])
	assert.Contains(t, names, "census_ingest_duration_seconds")
	assert.Contains(t, names, "census_null_cells_total")
}

func TestNewTwiceOnSameRegistryPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	assert.Panics(t, func() { New(reg) })
}

func TestObserveRunNilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() { m.ObserveRun("x", StatusFailure, time.Second) })
}
