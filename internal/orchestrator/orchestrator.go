package orchestrator

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/guimove/fairprice/internal/cloud"
	"github.com/guimove/fairprice/internal/config"
	"github.com/guimove/fairprice/internal/metrics"
	"github.com/guimove/fairprice/internal/model"
	"github.com/guimove/fairprice/internal/report"
	"github.com/guimove/fairprice/internal/simulation"
)

// Orchestrator coordinates a run end to end: build the cloud from config,
// drive it, export side outputs and report.
type Orchestrator struct {
	Config     config.Config
	ConfigFile string
	Writer     io.Writer

	// Parallelism bounds concurrent sweep scenarios; zero means one per CPU.
	Parallelism int
}

// New creates an orchestrator writing its report to stdout.
func New(cfg config.Config) *Orchestrator {
	return &Orchestrator{
		Config: cfg,
		Writer: os.Stdout,
	}
}

// BuildCloud creates the hosts and tenants described by the config. Tenants
// without explicit weights split evenly across their workers.
func (o *Orchestrator) BuildCloud() ([]*cloud.Host, []simulation.TenantWorkload, error) {
	return buildCloud(o.Config)
}

func buildCloud(cfg config.Config) ([]*cloud.Host, []simulation.TenantWorkload, error) {
	hosts := make([]*cloud.Host, cfg.Cloud.Hosts)
	for i := range hosts {
		h, err := cloud.NewHost(i, cfg.HostCapacity(i),
			cloud.WithInitialPrice(cfg.Simulation.InitialPrice),
			cloud.WithEpsilon(cfg.Simulation.Epsilon),
			cloud.WithPriceSumGuard(cfg.Simulation.PriceSumGuard),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("creating host %d: %w", i, err)
		}
		hosts[i] = h
	}

	tenants := make([]simulation.TenantWorkload, len(cfg.Tenants))
	for i, tc := range cfg.Tenants {
		bound := make([]*cloud.Host, len(tc.WorkerLocations))
		for j, loc := range tc.WorkerLocations {
			if loc < 0 || loc >= len(hosts) {
				return nil, nil, fmt.Errorf("tenant %d: worker %d on unknown host %d", i, j, loc)
			}
			bound[j] = hosts[loc]
		}

		var (
			tn  *cloud.Tenant
			err error
		)
		if len(tc.Weights) > 0 {
			tn, err = cloud.NewWeightedTenant(i, bound, tc.Weights)
		} else {
			tn, err = cloud.NewTenant(i, bound)
		}
		if err != nil {
			return nil, nil, fmt.Errorf("creating tenant %d: %w", i, err)
		}
		tenants[i] = simulation.TenantWorkload{Tenant: tn, LoadPerSec: tc.LoadPerSec}
	}
	return hosts, tenants, nil
}

// Run executes the configured simulation and writes the report.
func (o *Orchestrator) Run(ctx context.Context) (model.RunSummary, error) {
	cfg := o.Config

	routing, err := cfg.RoutingMode()
	if err != nil {
		return model.RunSummary{}, fmt.Errorf("routing: %w", err)
	}
	strategy, err := cfg.WeightStrategy()
	if err != nil {
		return model.RunSummary{}, fmt.Errorf("weight strategy: %w", err)
	}

	hosts, tenants, err := o.BuildCloud()
	if err != nil {
		return model.RunSummary{}, fmt.Errorf("building cloud: %w", err)
	}

	var recorders []simulation.Recorder

	var snapshots *report.SnapshotWriter
	if cfg.Output.Snapshots != "" {
		snapshots, err = report.CreateSnapshotFile(cfg.Output.Snapshots)
		if err != nil {
			return model.RunSummary{}, err
		}
		defer func() {
			if snapshots != nil {
				_ = snapshots.Close()
			}
		}()
		recorders = append(recorders, snapshots)
	}

	var collector *metrics.Collector
	if cfg.Output.Metrics != "" {
		collector, err = metrics.NewCollector()
		if err != nil {
			return model.RunSummary{}, err
		}
		recorders = append(recorders, collector)
	}

	driver := simulation.NewDriver(hosts, tenants,
		simulation.WithRouting(routing),
		simulation.WithWeightStrategy(strategy),
		simulation.WithGrowthThreshold(cfg.Simulation.GrowthThreshold),
		simulation.WithRecorders(recorders...),
	)

	summary, err := driver.Run(ctx, cfg.Simulation.Ticks)
	if err != nil {
		return model.RunSummary{}, fmt.Errorf("running simulation: %w", err)
	}
	summary.Epsilon = cfg.Simulation.Epsilon

	if snapshots != nil {
		err := snapshots.Close()
		snapshots = nil
		if err != nil {
			return model.RunSummary{}, fmt.Errorf("closing snapshot file: %w", err)
		}
		log.WithField("path", cfg.Output.Snapshots).Debug("Wrote snapshot rows")
	}
	if collector != nil {
		if err := collector.WriteTextfile(cfg.Output.Metrics); err != nil {
			return model.RunSummary{}, err
		}
		log.WithField("path", cfg.Output.Metrics).Debug("Wrote metrics textfile")
	}

	reporter := report.NewReporter(cfg.Output.Format, o.Writer)
	meta := report.ReportMeta{
		ConfigFile:    o.ConfigFile,
		GeneratedAt:   time.Now(),
		SnapshotsFile: cfg.Output.Snapshots,
		MetricsFile:   cfg.Output.Metrics,
	}
	if err := reporter.Report(ctx, summary, meta); err != nil {
		return model.RunSummary{}, fmt.Errorf("generating report: %w", err)
	}

	return summary, nil
}

// Sweep runs the configured cloud once per scenario and reports the ranked
// results. Each scenario overrides the step size and scales every tenant's load.
func (o *Orchestrator) Sweep(ctx context.Context, scenarios []model.Scenario) ([]model.ScenarioResult, error) {
	cfg := o.Config

	strategy, err := cfg.WeightStrategy()
	if err != nil {
		return nil, fmt.Errorf("weight strategy: %w", err)
	}

	build := func(sc model.Scenario) ([]*cloud.Host, []simulation.TenantWorkload, error) {
		scCfg := cfg
		scCfg.Simulation.Epsilon = sc.Epsilon
		scCfg.Tenants = make([]config.TenantConfig, len(cfg.Tenants))
		for i, t := range cfg.Tenants {
			t.LoadPerSec *= sc.LoadScale
			scCfg.Tenants[i] = t
		}
		return buildCloud(scCfg)
	}

	sweeper := simulation.NewSweeper(build, cfg.Simulation.Ticks)
	sweeper.WeightStrategy = strategy
	sweeper.GrowthThreshold = cfg.Simulation.GrowthThreshold
	if o.Parallelism > 0 {
		sweeper.Parallelism = o.Parallelism
	}

	log.WithField("scenarios", len(scenarios)).Info("Starting sweep")

	results, err := sweeper.RunAll(ctx, scenarios)
	if err != nil {
		return nil, fmt.Errorf("running sweep: %w", err)
	}

	meta := report.ReportMeta{
		ConfigFile:  o.ConfigFile,
		GeneratedAt: time.Now(),
	}
	if err := report.WriteSweep(ctx, cfg.Output.Format, o.Writer, results, meta); err != nil {
		return nil, fmt.Errorf("generating report: %w", err)
	}
	return results, nil
}
