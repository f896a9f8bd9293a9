package simulation

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"strconv"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/guimove/fairprice/internal/cloud"
	"github.com/guimove/fairprice/internal/model"
)

// CloudBuilder creates a fresh set of hosts and tenants for one scenario.
type CloudBuilder func(sc model.Scenario) ([]*cloud.Host, []TenantWorkload, error)

// Sweeper runs independent simulations over a grid of scenarios. Each
// scenario gets its own cloud, so runs share no state.
type Sweeper struct {
	Build           CloudBuilder
	Ticks           int
	WeightStrategy  cloud.WeightStrategy
	GrowthThreshold float64
	Parallelism     int
}

// NewSweeper creates a sweeper that runs up to one scenario per CPU at a time.
func NewSweeper(build CloudBuilder, ticks int) *Sweeper {
	return &Sweeper{
		Build:           build,
		Ticks:           ticks,
		WeightStrategy:  cloud.NoAdaptation,
		GrowthThreshold: DefaultGrowthThreshold,
		Parallelism:     runtime.NumCPU(),
	}
}

// RunAll executes all scenarios and returns them ranked, best first. Failed
// scenarios are logged and left out; it is an error only if all of them fail.
func (s *Sweeper) RunAll(ctx context.Context, scenarios []model.Scenario) ([]model.ScenarioResult, error) {
	if len(scenarios) == 0 {
		return nil, fmt.Errorf("no sweep scenarios provided")
	}

	parallelism := s.Parallelism
	if parallelism < 1 {
		parallelism = 1
	}

	results := make([]model.ScenarioResult, len(scenarios))
	errs := make([]error, len(scenarios))

	// Run scenarios in parallel using a worker pool
	sem := make(chan struct{}, parallelism)
	var wg sync.WaitGroup

	for i, sc := range scenarios {
		wg.Add(1)
		go func(idx int, scenario model.Scenario) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			summary, err := s.runOne(ctx, scenario)
			results[idx] = model.ScenarioResult{Scenario: scenario, Summary: summary}
			errs[idx] = err
		}(i, sc)
	}

	wg.Wait()

	var successful []model.ScenarioResult
	for i, err := range errs {
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.WithFields(log.Fields{
				"scenario": scenarios[i].Name,
				"error":    err,
			}).Warn("Sweep scenario failed")
			continue
		}
		successful = append(successful, results[i])
	}

	if len(successful) == 0 {
		return nil, errors.Join(fmt.Errorf("all sweep scenarios failed"), errors.Join(errs...))
	}

	return RankResults(successful), nil
}

func (s *Sweeper) runOne(ctx context.Context, sc model.Scenario) (model.RunSummary, error) {
	routing, err := cloud.ParseRoutingMode(sc.Routing)
	if err != nil {
		return model.RunSummary{}, fmt.Errorf("scenario %q: %w", sc.Name, err)
	}

	hosts, tenants, err := s.Build(sc)
	if err != nil {
		return model.RunSummary{}, fmt.Errorf("building scenario %q: %w", sc.Name, err)
	}

	d := NewDriver(hosts, tenants,
		WithRouting(routing),
		WithWeightStrategy(s.WeightStrategy),
		WithGrowthThreshold(s.GrowthThreshold),
	)
	summary, err := d.Run(ctx, s.Ticks)
	if err != nil {
		return model.RunSummary{}, fmt.Errorf("running scenario %q: %w", sc.Name, err)
	}
	summary.Epsilon = sc.Epsilon
	return summary, nil
}

// RankResults orders results stable first, then by final total backlog, then
// by peak backlog, and assigns ranks starting at 1. Ties keep input order.
func RankResults(results []model.ScenarioResult) []model.ScenarioResult {
	ranked := append([]model.ScenarioResult(nil), results...)
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Summary.Stable() != b.Summary.Stable() {
			return a.Summary.Stable()
		}
		if a.Summary.TotalBacklog() != b.Summary.TotalBacklog() {
			return a.Summary.TotalBacklog() < b.Summary.TotalBacklog()
		}
		return a.MaxBacklog() < b.MaxBacklog()
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}

// GenerateScenarios crosses routing modes, step sizes and load scales into
// named scenarios. An empty scale list means a scale of 1.
func GenerateScenarios(routings []cloud.RoutingMode, epsilons, loadScales []float64) []model.Scenario {
	if len(loadScales) == 0 {
		loadScales = []float64{1}
	}

	var scenarios []model.Scenario
	for _, r := range routings {
		for _, e := range epsilons {
			for _, ls := range loadScales {
				name := fmt.Sprintf("%s/eps=%s", r, strconv.FormatFloat(e, 'g', -1, 64))
				if ls != 1 {
					name += fmt.Sprintf("/load=x%s", strconv.FormatFloat(ls, 'g', -1, 64))
				}
				scenarios = append(scenarios, model.Scenario{
					Name:      name,
					Routing:   r.String(),
					Epsilon:   e,
					LoadScale: ls,
				})
			}
		}
	}
	return scenarios
}
