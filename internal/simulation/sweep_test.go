package simulation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guimove/fairprice/internal/cloud"
	"github.com/guimove/fairprice/internal/model"
)

// referenceBuilder builds the reference cloud with the scenario's step size and
// load scale. It runs on sweep goroutines, so it reports errors instead of
// failing the test.
func referenceBuilder() CloudBuilder {
	return func(sc model.Scenario) ([]*cloud.Host, []TenantWorkload, error) {
		hosts := make([]*cloud.Host, 3)
		for i := range hosts {
			h, err := cloud.NewHost(i, 20, cloud.WithEpsilon(sc.Epsilon))
			if err != nil {
				return nil, nil, err
			}
			hosts[i] = h
		}
		tenants := make([]TenantWorkload, len(referenceTenants))
		for i, rt := range referenceTenants {
			var bound []*cloud.Host
			for _, loc := range rt.locations {
				bound = append(bound, hosts[loc])
			}
			tn, err := cloud.NewTenant(i, bound)
			if err != nil {
				return nil, nil, err
			}
			tenants[i] = TenantWorkload{Tenant: tn, LoadPerSec: rt.load * sc.LoadScale}
		}
		return hosts, tenants, nil
	}
}

func TestGenerateScenarios(t *testing.T) {
	scenarios := GenerateScenarios(
		[]cloud.RoutingMode{cloud.RoutePriceBased, cloud.RouteWeightedSplit},
		[]float64{0.5, 1},
		nil,
	)
	require.Len(t, scenarios, 4)
	assert.Equal(t, "price-based/eps=0.5", scenarios[0].Name)
	assert.Equal(t, 1.0, scenarios[0].LoadScale)
	assert.Equal(t, "weighted-split", scenarios[3].Routing)

	scaled := GenerateScenarios([]cloud.RoutingMode{cloud.RoutePriceBased}, []float64{1}, []float64{1, 1.5})
	require.Len(t, scaled, 2)
	assert.Equal(t, "price-based/eps=1/load=x1.5", scaled[1].Name)
}

func TestSweeper_RunAll_RanksStableFirst(t *testing.T) {
	s := NewSweeper(referenceBuilder(), 120)
	s.Parallelism = 2

	scenarios := GenerateScenarios(
		[]cloud.RoutingMode{cloud.RouteWeightedSplit, cloud.RoutePriceBased},
		[]float64{1},
		nil,
	)
	results, err := s.RunAll(context.Background(), scenarios)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, 1, results[0].Rank)
	assert.Equal(t, "price-based", results[0].Scenario.Routing)
	assert.True(t, results[0].Summary.Stable())
	assert.Equal(t, 1.0, results[0].Summary.Epsilon)

	assert.Equal(t, 2, results[1].Rank)
	assert.False(t, results[1].Summary.Stable())
	assert.InDelta(t, 1200, results[1].Summary.TotalBacklog(), 1e-6)
}

func TestSweeper_RunAll_MatchesSingleRun(t *testing.T) {
	s := NewSweeper(referenceBuilder(), 60)
	results, err := s.RunAll(context.Background(),
		GenerateScenarios([]cloud.RoutingMode{cloud.RoutePriceBased}, []float64{1}, nil))
	require.NoError(t, err)

	hosts, tenants := makeReferenceCloud(t)
	single, err := NewDriver(hosts, tenants).Run(context.Background(), 60)
	require.NoError(t, err)

	assert.Equal(t, single.Hosts, results[0].Summary.Hosts)
}

func TestSweeper_RunAll_SkipsFailedScenarios(t *testing.T) {
	s := NewSweeper(referenceBuilder(), 5)
	results, err := s.RunAll(context.Background(), []model.Scenario{
		{Name: "bad", Routing: "round-robin", Epsilon: 1, LoadScale: 1},
		{Name: "good", Routing: "price-based", Epsilon: 1, LoadScale: 1},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "good", results[0].Scenario.Name)
}

func TestSweeper_RunAll_AllFail(t *testing.T) {
	build := func(model.Scenario) ([]*cloud.Host, []TenantWorkload, error) {
		return nil, nil, errors.New("no capacity")
	}
	_, err := NewSweeper(build, 5).RunAll(context.Background(), []model.Scenario{{Name: "a", Routing: "price-based"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all sweep scenarios failed")
	assert.Contains(t, err.Error(), "no capacity")

	_, err = NewSweeper(build, 5).RunAll(context.Background(), nil)
	assert.Error(t, err)
}

func TestSweeper_RunAll_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewSweeper(referenceBuilder(), 5).RunAll(ctx, []model.Scenario{{Name: "a", Routing: "price-based", Epsilon: 1, LoadScale: 1}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRankResults(t *testing.T) {
	mk := func(name string, backlog, peak float64, trend model.BacklogTrend) model.ScenarioResult {
		return model.ScenarioResult{
			Scenario: model.Scenario{Name: name},
			Summary: model.RunSummary{Hosts: []model.HostSummary{
				{FinalBacklog: backlog, MaxBacklog: peak, Trend: trend},
			}},
		}
	}

	ranked := RankResults([]model.ScenarioResult{
		mk("growing", 0, 5, model.TrendGrowing),
		mk("stable-high", 10, 20, model.TrendStable),
		mk("stable-peak", 0, 30, model.TrendStable),
		mk("stable-low", 0, 10, model.TrendStable),
	})

	var names []string
	for i, r := range ranked {
		assert.Equal(t, i+1, r.Rank)
		names = append(names, r.Scenario.Name)
	}
	assert.Equal(t, []string{"stable-low", "stable-peak", "stable-high", "growing"}, names)
}
