package config

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guimove/fairprice/internal/cloud"
)

func TestDefault_Valid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}
}

func TestDefault_ReferenceCloud(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 3, cfg.Cloud.Hosts)
	assert.Equal(t, 120, cfg.Simulation.Ticks)
	require.Len(t, cfg.Tenants, 3)
	assert.Equal(t, 30.0, cfg.Tenants[0].LoadPerSec)
	assert.Equal(t, []int{1, 2}, cfg.Tenants[1].WorkerLocations)

	mode, err := cfg.RoutingMode()
	require.NoError(t, err)
	assert.Equal(t, cloud.RoutePriceBased, mode)

	strategy, err := cfg.WeightStrategy()
	require.NoError(t, err)
	assert.Equal(t, cloud.NoAdaptation, strategy)
}

func TestValidate_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"no hosts", func(c *Config) { c.Cloud.Hosts = 0 }, "cloud.hosts"},
		{"zero capacity", func(c *Config) { c.Cloud.HostCapacity = 0 }, "cloud.host_capacity"},
		{"capacity count", func(c *Config) { c.Cloud.Capacities = []float64{10, 10} }, "cloud.capacities"},
		{"negative override", func(c *Config) { c.Cloud.Capacities = []float64{10, -1, 10} }, "cloud.capacities[1]"},
		{"negative tenant load", func(c *Config) { c.Tenants[0].LoadPerSec = -3 }, "tenants[0].load_per_sec"},
		{"no workers", func(c *Config) { c.Tenants[2].WorkerLocations = nil }, "tenants[2].worker_locations"},
		{"host out of range", func(c *Config) { c.Tenants[1].WorkerLocations = []int{1, 3} }, "tenants[1].worker_locations[1]"},
		{"weight count", func(c *Config) { c.Tenants[0].Weights = []float64{1} }, "tenants[0].weights"},
		{"zero weights", func(c *Config) { c.Tenants[0].Weights = []float64{0, 0} }, "tenants[0].weights"},
		{"negative ticks", func(c *Config) { c.Simulation.Ticks = -1 }, "simulation.ticks"},
		{"zero epsilon", func(c *Config) { c.Simulation.Epsilon = 0 }, "simulation.epsilon"},
		{"unknown routing", func(c *Config) { c.Simulation.Routing = "round-robin" }, "simulation.routing"},
		{"unknown weight strategy", func(c *Config) { c.Simulation.WeightStrategy = "gradient" }, "simulation.weight_strategy"},
		{"unknown format", func(c *Config) { c.Output.Format = "xml" }, "output.format"},
		{"NaN capacity", func(c *Config) { c.Cloud.HostCapacity = math.NaN() }, "cloud.host_capacity"},
		{"infinite override", func(c *Config) { c.Cloud.Capacities = []float64{10, math.Inf(1), 10} }, "cloud.capacities[1]"},
		{"NaN tenant load", func(c *Config) { c.Tenants[1].LoadPerSec = math.NaN() }, "tenants[1].load_per_sec"},
		{"infinite tenant load", func(c *Config) { c.Tenants[1].LoadPerSec = math.Inf(1) }, "tenants[1].load_per_sec"},
		{"NaN weight", func(c *Config) { c.Tenants[0].Weights = []float64{1, math.NaN()} }, "tenants[0].weights[1]"},
		{"NaN epsilon", func(c *Config) { c.Simulation.Epsilon = math.NaN() }, "simulation.epsilon"},
		{"infinite epsilon", func(c *Config) { c.Simulation.Epsilon = math.Inf(1) }, "simulation.epsilon"},
		{"NaN initial price", func(c *Config) { c.Simulation.InitialPrice = math.NaN() }, "simulation.initial_price"},
		{"NaN price sum guard", func(c *Config) { c.Simulation.PriceSumGuard = math.NaN() }, "simulation.price_sum_guard"},
		{"NaN growth threshold", func(c *Config) { c.Simulation.GrowthThreshold = math.NaN() }, "simulation.growth_threshold"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	cfg := Default()
	cfg.Simulation.Epsilon = -1
	cfg.Output.Format = "xml"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "simulation.epsilon")
	assert.Contains(t, err.Error(), "output.format")
}

func TestHostCapacity_Override(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 20.0, cfg.HostCapacity(2))

	cfg.Cloud.Capacities = []float64{5, 10, 15}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 15.0, cfg.HostCapacity(2))
}
