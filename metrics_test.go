package raftlog

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dto "github.com/prometheus/client_model/go"
)

func TestMetricsCollectorsRegisterable(t *testing.T) {
	m := NewMetrics()
	cs := m.Collectors()
	assert.Len(t, cs, 3)
}

func TestDurableLogRecordsAppendMetric(t *testing.T) {
	path := filepath.Join(t.TempDir(), "L")
	l, err := Create(path, "db0", 0, 0, testConfig())
	require.NoError(t, err)
	defer l.Close()

	m := NewMetrics()
	l.WithMetrics(m)

	require.NoError(t, l.Append(Entry{Term: 1, ID: 1, Data: []byte("a")}))

	var out dto.Metric
	require.NoError(t, m.Appends.Write(&out))
	assert.Equal(t, float64(1), out.GetCounter().GetValue())
}
