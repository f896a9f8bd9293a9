package cloud

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkerID(t *testing.T) {
	assert.Equal(t, "tenant2_worker3", WorkerID(2, 3))
}

func TestNewTenant_EqualWeights(t *testing.T) {
	h0, h1 := makeHost(t, 0, 20), makeHost(t, 1, 20)
	tn, err := NewTenant(4, []*Host{h0, h1, h1})
	require.NoError(t, err)

	workers := tn.Workers()
	require.Len(t, workers, 3)
	assert.Equal(t, WorkerView{ID: "tenant4_worker0", HostID: 0, Weight: 1.0 / 3}, workers[0])
	assert.Equal(t, WorkerView{ID: "tenant4_worker2", HostID: 1, Weight: 1.0 / 3}, workers[2])
}

func TestNewTenant_Invalid(t *testing.T) {
	h := makeHost(t, 0, 20)

	_, err := NewTenant(0, nil)
	assert.ErrorIs(t, err, ErrContractViolation)

	_, err = NewWeightedTenant(0, []*Host{h, h}, []float64{1})
	assert.ErrorIs(t, err, ErrContractViolation)

	_, err = NewWeightedTenant(0, []*Host{h, h}, []float64{0, 0})
	assert.ErrorIs(t, err, ErrContractViolation)

	_, err = NewWeightedTenant(0, []*Host{h}, []float64{-1})
	assert.ErrorIs(t, err, ErrContractViolation)

	_, err = NewWeightedTenant(0, []*Host{nil}, []float64{1})
	assert.ErrorIs(t, err, ErrContractViolation)
}

func TestTenant_PriceBased_PicksCheapestHost(t *testing.T) {
	h0 := makeHost(t, 0, 20, WithInitialPrice(5))
	h1 := makeHost(t, 1, 20, WithInitialPrice(2))
	h2 := makeHost(t, 2, 20, WithInitialPrice(3))
	tn, err := NewTenant(1, []*Host{h0, h1, h2})
	require.NoError(t, err)

	require.NoError(t, tn.ScheduleLoadOnWorkers(30, RoutePriceBased))

	assert.Empty(t, h0.QueuedLoads())
	assert.Equal(t, map[string]float64{"tenant1_worker1": 30}, h1.QueuedLoads())
	assert.Empty(t, h2.QueuedLoads())
}

func TestTenant_PriceBased_TieGoesToFirstDeclared(t *testing.T) {
	h0 := makeHost(t, 0, 20, WithInitialPrice(4))
	h1 := makeHost(t, 1, 20, WithInitialPrice(1))
	h2 := makeHost(t, 2, 20, WithInitialPrice(1))
	tn, err := NewTenant(0, []*Host{h0, h2, h1})
	require.NoError(t, err)

	require.NoError(t, tn.ScheduleLoadOnWorkers(10, RoutePriceBased))

	assert.Equal(t, map[string]float64{"tenant0_worker1": 10}, h2.QueuedLoads())
	assert.Empty(t, h1.QueuedLoads())
}

func TestTenant_WeightedSplit(t *testing.T) {
	h0, h1 := makeHost(t, 0, 20), makeHost(t, 1, 20)

	tn, err := NewTenant(0, []*Host{h0, h1})
	require.NoError(t, err)
	require.NoError(t, tn.ScheduleLoadOnWorkers(30, RouteWeightedSplit))
	assert.Equal(t, map[string]float64{"tenant0_worker0": 15}, h0.QueuedLoads())
	assert.Equal(t, map[string]float64{"tenant0_worker1": 15}, h1.QueuedLoads())

	weighted, err := NewWeightedTenant(1, []*Host{h0, h1}, []float64{3, 1})
	require.NoError(t, err)
	require.NoError(t, weighted.ScheduleLoadOnWorkers(8, RouteWeightedSplit))
	assert.InDelta(t, 6, h0.QueuedLoads()["tenant1_worker0"], 1e-12)
	assert.InDelta(t, 2, h1.QueuedLoads()["tenant1_worker1"], 1e-12)
}

func TestTenant_Schedule_RejectsBadInput(t *testing.T) {
	h0, h1 := makeHost(t, 0, 20), makeHost(t, 1, 20)
	tn, err := NewWeightedTenant(0, []*Host{h0, h1}, []float64{0, 1})
	require.NoError(t, err)

	err = tn.ScheduleLoadOnWorkers(-5, RouteWeightedSplit)
	assert.ErrorIs(t, err, ErrContractViolation)
	assert.Empty(t, h0.QueuedLoads())
	assert.Empty(t, h1.QueuedLoads())

	err = tn.ScheduleLoadOnWorkers(5, RoutingMode(42))
	assert.ErrorIs(t, err, ErrUnsupportedStrategy)
}

func TestTenant_UpdateWeight(t *testing.T) {
	h := makeHost(t, 0, 20)
	tn, err := NewTenant(0, []*Host{h})
	require.NoError(t, err)

	require.NoError(t, tn.UpdateWeight(NoAdaptation))
	assert.Equal(t, 1.0, tn.Workers()[0].Weight)

	assert.ErrorIs(t, tn.UpdateWeight(WeightStrategy(7)), ErrUnsupportedStrategy)
}

func TestParseStrategies(t *testing.T) {
	m, err := ParseRoutingMode("weighted-split")
	require.NoError(t, err)
	assert.Equal(t, RouteWeightedSplit, m)
	assert.Equal(t, "weighted-split", m.String())

	m, err = ParseRoutingMode("price-based")
	require.NoError(t, err)
	assert.Equal(t, RoutePriceBased, m)

	_, err = ParseRoutingMode("round-robin")
	assert.ErrorIs(t, err, ErrUnsupportedStrategy)

	s, err := ParseWeightStrategy("no-adaptation")
	require.NoError(t, err)
	assert.Equal(t, NoAdaptation, s)

	_, err = ParseWeightStrategy("gradient")
	assert.ErrorIs(t, err, ErrUnsupportedStrategy)
}
