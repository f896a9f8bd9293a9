package metrics

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guimove/fairprice/internal/model"
)

func recordTwoTicks(t *testing.T, c *Collector) {
	t.Helper()
	require.NoError(t, c.Record(
		[]model.HostObservation{
			{Time: 1, HostID: 0, Host: "host0", Capacity: 20, Price: 21.5, Arrived: 40, Queued: 20, Processed: 20},
			{Time: 1, HostID: 1, Host: "host1", Capacity: 20, Price: -3, Arrived: 0, Queued: 0, Processed: 0},
		},
		[]model.Snapshot{
			{Time: 1, Host: "host0", Tenant: "tenant0", WorkerID: "tenant0_worker0", QueuedLoad: 20, ProcessedLoad: 10},
		},
	))
	require.NoError(t, c.Record(
		[]model.HostObservation{
			{Time: 2, HostID: 0, Host: "host0", Capacity: 20, Price: 12, Arrived: 10, Queued: 10, Processed: 20},
		},
		[]model.Snapshot{
			{Time: 2, Host: "host0", Tenant: "tenant0", WorkerID: "tenant0_worker0", QueuedLoad: 10, ProcessedLoad: 20},
		},
	))
}

func TestCollector_Record(t *testing.T) {
	c, err := NewCollector()
	require.NoError(t, err)
	recordTwoTicks(t, c)

	assert.Equal(t, 12.0, testutil.ToFloat64(c.price.WithLabelValues("host0")))
	assert.Equal(t, -3.0, testutil.ToFloat64(c.price.WithLabelValues("host1")))
	assert.Equal(t, 10.0, testutil.ToFloat64(c.backlog.WithLabelValues("host0")))
	assert.Equal(t, 10.0, testutil.ToFloat64(c.arrived.WithLabelValues("host0")))
	assert.Equal(t, 10.0, testutil.ToFloat64(c.workerBacklog.WithLabelValues("host0", "tenant0", "tenant0_worker0")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.ticks))
}

func TestCollector_WriteText(t *testing.T) {
	c, err := NewCollector(WithNamespace("sim"))
	require.NoError(t, err)
	recordTwoTicks(t, c)

	var buf bytes.Buffer
	require.NoError(t, c.WriteText(&buf))

	out := buf.String()
	assert.Contains(t, out, "# TYPE sim_host_price gauge")
	assert.Contains(t, out, `sim_host_price{host="host0"} 12`)
	assert.Contains(t, out, "sim_ticks_total 2")
}

func TestCollector_WriteTextfile(t *testing.T) {
	c, err := NewCollector()
	require.NoError(t, err)
	recordTwoTicks(t, c)

	path := filepath.Join(t.TempDir(), "fairprice.prom")
	require.NoError(t, c.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "fairprice_host_backlog"))
}

func TestCollector_SharedRegistryConflict(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewCollector(WithRegistry(reg))
	require.NoError(t, err)

	_, err = NewCollector(WithRegistry(reg))
	assert.Error(t, err)
}
