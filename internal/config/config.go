package config

import (
	"fmt"
	"math"

	"k8s.io/apimachinery/pkg/util/validation/field"

	"github.com/guimove/fairprice/internal/cloud"
)

// Config is the top-level configuration for a fairprice run. It is built once
// by the CLI and passed by value; nothing reads configuration from globals.
type Config struct {
	Cloud      CloudConfig      `yaml:"cloud" mapstructure:"cloud"`
	Tenants    []TenantConfig   `yaml:"tenants" mapstructure:"tenants"`
	Simulation SimulationConfig `yaml:"simulation" mapstructure:"simulation"`
	Output     OutputConfig     `yaml:"output" mapstructure:"output"`
}

type CloudConfig struct {
	Hosts        int       `yaml:"hosts" mapstructure:"hosts"`
	HostCapacity float64   `yaml:"host_capacity" mapstructure:"host_capacity"` // load per tick
	Capacities   []float64 `yaml:"capacities" mapstructure:"capacities"`       // optional per-host override
}

type TenantConfig struct {
	LoadPerSec      float64   `yaml:"load_per_sec" mapstructure:"load_per_sec"`
	WorkerLocations []int     `yaml:"worker_locations" mapstructure:"worker_locations"` // host index per worker
	Weights         []float64 `yaml:"weights" mapstructure:"weights"`                   // empty = 1/k each
}

type SimulationConfig struct {
	Ticks           int     `yaml:"ticks" mapstructure:"ticks"`
	Epsilon         float64 `yaml:"epsilon" mapstructure:"epsilon"`
	InitialPrice    float64 `yaml:"initial_price" mapstructure:"initial_price"`
	PriceSumGuard   float64 `yaml:"price_sum_guard" mapstructure:"price_sum_guard"`
	Routing         string  `yaml:"routing" mapstructure:"routing"`
	WeightStrategy  string  `yaml:"weight_strategy" mapstructure:"weight_strategy"`
	GrowthThreshold float64 `yaml:"growth_threshold" mapstructure:"growth_threshold"` // backlog slope per tick
}

type OutputConfig struct {
	Format    string `yaml:"format" mapstructure:"format"`
	Snapshots string `yaml:"snapshots" mapstructure:"snapshots"` // CSV path, empty = skip
	Metrics   string `yaml:"metrics" mapstructure:"metrics"`     // Prometheus text file, empty = skip
}

// Default returns the reference three-host, three-tenant cloud.
func Default() Config {
	return Config{
		Cloud: CloudConfig{
			Hosts:        3,
			HostCapacity: 20,
		},
		Tenants: []TenantConfig{
			{LoadPerSec: 30, WorkerLocations: []int{0, 1}},
			{LoadPerSec: 20, WorkerLocations: []int{1, 2}},
			{LoadPerSec: 10, WorkerLocations: []int{0}},
		},
		Simulation: SimulationConfig{
			Ticks:           120,
			Epsilon:         cloud.DefaultEpsilon,
			InitialPrice:    cloud.DefaultInitialPrice,
			PriceSumGuard:   cloud.DefaultPriceSumGuard,
			Routing:         cloud.RoutePriceBased.String(),
			WeightStrategy:  cloud.NoAdaptation.String(),
			GrowthThreshold: 0.5,
		},
		Output: OutputConfig{
			Format: "table",
		},
	}
}

// Validate checks the config for consistency and reports every problem found.
func (c *Config) Validate() error {
	var allErrs field.ErrorList

	cloudPath := field.NewPath("cloud")
	if c.Cloud.Hosts < 1 {
		allErrs = append(allErrs, field.Invalid(cloudPath.Child("hosts"), c.Cloud.Hosts, "must be at least 1"))
	}
	if len(c.Cloud.Capacities) == 0 {
		if c.Cloud.HostCapacity <= 0 || !finite(c.Cloud.HostCapacity) {
			allErrs = append(allErrs, field.Invalid(cloudPath.Child("host_capacity"), c.Cloud.HostCapacity, "must be a finite positive number"))
		}
	} else {
		if len(c.Cloud.Capacities) != c.Cloud.Hosts {
			allErrs = append(allErrs, field.Invalid(cloudPath.Child("capacities"), len(c.Cloud.Capacities),
				fmt.Sprintf("must list one capacity per host (%d)", c.Cloud.Hosts)))
		}
		for i, cp := range c.Cloud.Capacities {
			if cp <= 0 || !finite(cp) {
				allErrs = append(allErrs, field.Invalid(cloudPath.Child("capacities").Index(i), cp, "must be a finite positive number"))
			}
		}
	}

	tenantsPath := field.NewPath("tenants")
	for i, t := range c.Tenants {
		p := tenantsPath.Index(i)
		if t.LoadPerSec < 0 || !finite(t.LoadPerSec) {
			allErrs = append(allErrs, field.Invalid(p.Child("load_per_sec"), t.LoadPerSec, "must be a finite non-negative number"))
		}
		if len(t.WorkerLocations) == 0 {
			allErrs = append(allErrs, field.Required(p.Child("worker_locations"), "tenant needs at least one worker"))
		}
		for j, loc := range t.WorkerLocations {
			if loc < 0 || loc >= c.Cloud.Hosts {
				allErrs = append(allErrs, field.Invalid(p.Child("worker_locations").Index(j), loc,
					fmt.Sprintf("must be a host index in [0, %d)", c.Cloud.Hosts)))
			}
		}
		if len(t.Weights) > 0 {
			if len(t.Weights) != len(t.WorkerLocations) {
				allErrs = append(allErrs, field.Invalid(p.Child("weights"), len(t.Weights),
					"must list one weight per worker location"))
			}
			var sum float64
			for j, w := range t.Weights {
				if w < 0 || !finite(w) {
					allErrs = append(allErrs, field.Invalid(p.Child("weights").Index(j), w, "must be a finite non-negative number"))
				}
				sum += w
			}
			if !(sum > 0) || !finite(sum) {
				allErrs = append(allErrs, field.Invalid(p.Child("weights"), t.Weights, "must have a positive sum"))
			}
		}
	}

	simPath := field.NewPath("simulation")
	if c.Simulation.Ticks < 0 {
		allErrs = append(allErrs, field.Invalid(simPath.Child("ticks"), c.Simulation.Ticks, "must be non-negative"))
	}
	if c.Simulation.Epsilon <= 0 || !finite(c.Simulation.Epsilon) {
		allErrs = append(allErrs, field.Invalid(simPath.Child("epsilon"), c.Simulation.Epsilon, "must be a finite positive number"))
	}
	if !finite(c.Simulation.InitialPrice) {
		allErrs = append(allErrs, field.Invalid(simPath.Child("initial_price"), c.Simulation.InitialPrice, "must be a finite number"))
	}
	if c.Simulation.PriceSumGuard < 0 || !finite(c.Simulation.PriceSumGuard) {
		allErrs = append(allErrs, field.Invalid(simPath.Child("price_sum_guard"), c.Simulation.PriceSumGuard, "must be a finite non-negative number"))
	}
	if c.Simulation.GrowthThreshold < 0 || !finite(c.Simulation.GrowthThreshold) {
		allErrs = append(allErrs, field.Invalid(simPath.Child("growth_threshold"), c.Simulation.GrowthThreshold, "must be a finite non-negative number"))
	}
	if _, err := cloud.ParseRoutingMode(c.Simulation.Routing); err != nil {
		allErrs = append(allErrs, field.NotSupported(simPath.Child("routing"), c.Simulation.Routing,
			[]string{cloud.RoutePriceBased.String(), cloud.RouteWeightedSplit.String()}))
	}
	if _, err := cloud.ParseWeightStrategy(c.Simulation.WeightStrategy); err != nil {
		allErrs = append(allErrs, field.NotSupported(simPath.Child("weight_strategy"), c.Simulation.WeightStrategy,
			[]string{cloud.NoAdaptation.String()}))
	}

	validFormats := map[string]bool{"table": true, "json": true, "csv": true}
	if !validFormats[c.Output.Format] {
		allErrs = append(allErrs, field.NotSupported(field.NewPath("output", "format"), c.Output.Format,
			[]string{"table", "json", "csv"}))
	}

	if len(allErrs) == 0 {
		return nil
	}
	return allErrs.ToAggregate()
}

// finite reports whether x is neither NaN nor infinite.
func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// HostCapacity returns the capacity of host i.
func (c Config) HostCapacity(i int) float64 {
	if len(c.Cloud.Capacities) > 0 {
		return c.Cloud.Capacities[i]
	}
	return c.Cloud.HostCapacity
}

// RoutingMode returns the parsed routing mode.
func (c Config) RoutingMode() (cloud.RoutingMode, error) {
	return cloud.ParseRoutingMode(c.Simulation.Routing)
}

// WeightStrategy returns the parsed weight strategy.
func (c Config) WeightStrategy() (cloud.WeightStrategy, error) {
	return cloud.ParseWeightStrategy(c.Simulation.WeightStrategy)
}
