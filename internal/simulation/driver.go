package simulation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/guimove/fairprice/internal/cloud"
	"github.com/guimove/fairprice/internal/model"
)

// TenantWorkload pairs a tenant with the load it routes every tick.
type TenantWorkload struct {
	Tenant     *cloud.Tenant
	LoadPerSec float64
}

// Driver advances the cloud in lock-step ticks. Within a tick every tenant
// routes before any host processes, every host processes before any price
// moves, and all price updates read one shared snapshot of the old prices.
type Driver struct {
	Hosts          []*cloud.Host
	Tenants        []TenantWorkload
	Routing        cloud.RoutingMode
	WeightStrategy cloud.WeightStrategy
	Recorders      []Recorder

	// GrowthThreshold is the backlog slope per tick above which a host is
	// reported as growing.
	GrowthThreshold float64

	workerTenant map[string]int
	history      [][]model.HostObservation
}

// DriverOption configures a Driver.
type DriverOption func(*Driver)

// WithRouting sets the routing mode used by every tenant.
func WithRouting(m cloud.RoutingMode) DriverOption {
	return func(d *Driver) { d.Routing = m }
}

// WithWeightStrategy sets the weight update strategy applied after processing.
func WithWeightStrategy(s cloud.WeightStrategy) DriverOption {
	return func(d *Driver) { d.WeightStrategy = s }
}

// WithRecorders registers recorders that receive every tick's rows.
func WithRecorders(r ...Recorder) DriverOption {
	return func(d *Driver) { d.Recorders = append(d.Recorders, r...) }
}

// WithGrowthThreshold sets the slope used to classify backlogs as growing.
func WithGrowthThreshold(th float64) DriverOption {
	return func(d *Driver) { d.GrowthThreshold = th }
}

// NewDriver creates a driver over the given hosts and tenants.
func NewDriver(hosts []*cloud.Host, tenants []TenantWorkload, opts ...DriverOption) *Driver {
	d := &Driver{
		Hosts:           hosts,
		Tenants:         tenants,
		Routing:         cloud.RoutePriceBased,
		WeightStrategy:  cloud.NoAdaptation,
		GrowthThreshold: DefaultGrowthThreshold,
		workerTenant:    make(map[string]int),
		history:         make([][]model.HostObservation, len(hosts)),
	}
	for _, opt := range opts {
		opt(d)
	}
	for _, tw := range tenants {
		for _, w := range tw.Tenant.Workers() {
			d.workerTenant[w.ID] = tw.Tenant.ID()
		}
	}
	return d
}

// Run executes ticks 1..ticks and summarizes the run. The first error aborts
// the run and is returned annotated with the tick and phase.
func (d *Driver) Run(ctx context.Context, ticks int) (model.RunSummary, error) {
	start := time.Now()
	runID := uuid.NewString()

	log.WithFields(log.Fields{
		"run_id":          runID,
		"ticks":           ticks,
		"hosts":           len(d.Hosts),
		"tenants":         len(d.Tenants),
		"routing":         d.Routing.String(),
		"weight_strategy": d.WeightStrategy.String(),
	}).Info("Starting simulation")

	for t := 1; t <= ticks; t++ {
		if err := ctx.Err(); err != nil {
			return model.RunSummary{}, fmt.Errorf("tick %d: %w", t, err)
		}
		if err := d.Step(t); err != nil {
			return model.RunSummary{}, err
		}
	}

	summary := d.summarize(ticks)
	summary.RunID = runID
	summary.Duration = time.Since(start)

	log.WithFields(log.Fields{
		"run_id":        runID,
		"total_backlog": summary.TotalBacklog(),
		"stable":        summary.Stable(),
		"duration":      summary.Duration,
	}).Info("Completed simulation")

	return summary, nil
}

// Step runs a single tick.
func (d *Driver) Step(tick int) error {
	for _, tw := range d.Tenants {
		if err := tw.Tenant.ScheduleLoadOnWorkers(tw.LoadPerSec, d.Routing); err != nil {
			return fmt.Errorf("tick %d: routing %s: %w", tick, tw.Tenant.Name(), err)
		}
	}

	arrived := make([]float64, len(d.Hosts))
	for i, h := range d.Hosts {
		arrived[i] = h.Arrived()
		if err := h.ProcessLoad(); err != nil {
			return fmt.Errorf("tick %d: %w", tick, err)
		}
	}

	for _, tw := range d.Tenants {
		if err := tw.Tenant.UpdateWeight(d.WeightStrategy); err != nil {
			return fmt.Errorf("tick %d: updating weights of %s: %w", tick, tw.Tenant.Name(), err)
		}
	}

	prices := make([]float64, len(d.Hosts))
	for i, h := range d.Hosts {
		prices[i] = h.Price()
	}
	for _, h := range d.Hosts {
		if err := h.UpdatePrice(prices); err != nil {
			return fmt.Errorf("tick %d: %w", tick, err)
		}
		if h.Price() < 0 {
			log.WithFields(log.Fields{
				"tick":  tick,
				"host":  h.Name(),
				"price": h.Price(),
			}).Warn("Host price is negative")
		}
	}

	obs, rows := d.observe(tick, arrived)
	for i := range obs {
		d.history[i] = append(d.history[i], obs[i])
	}
	for _, r := range d.Recorders {
		if err := r.Record(obs, rows); err != nil {
			return fmt.Errorf("tick %d: recording: %w", tick, err)
		}
	}
	return nil
}

// observe captures the end-of-tick state of every host and worker.
func (d *Driver) observe(tick int, arrived []float64) ([]model.HostObservation, []model.Snapshot) {
	obs := make([]model.HostObservation, len(d.Hosts))
	var rows []model.Snapshot

	for i, h := range d.Hosts {
		queued := h.QueuedLoads()
		processed := h.LoadsProcessed()

		obs[i] = model.HostObservation{
			Time:      tick,
			HostID:    h.ID(),
			Host:      h.Name(),
			Capacity:  h.Capacity(),
			Price:     h.Price(),
			Arrived:   arrived[i],
			Queued:    h.TotalQueued(),
			Processed: h.TotalProcessed(),
		}

		for _, id := range h.Workers() {
			tenantID := d.workerTenant[id]
			rows = append(rows, model.Snapshot{
				Time:          tick,
				HostID:        h.ID(),
				Host:          h.Name(),
				TenantID:      tenantID,
				Tenant:        fmt.Sprintf("tenant%d", tenantID),
				WorkerID:      id,
				QueuedLoad:    queued[id],
				ProcessedLoad: processed[id],
			})
		}
	}
	return obs, rows
}

func (d *Driver) summarize(ticks int) model.RunSummary {
	summary := model.RunSummary{
		Ticks:          ticks,
		Routing:        d.Routing.String(),
		WeightStrategy: d.WeightStrategy.String(),
	}

	for i, h := range d.Hosts {
		hs := SummarizeHost(d.history[i], d.GrowthThreshold)
		hs.HostID = h.ID()
		hs.Host = h.Name()
		hs.Capacity = h.Capacity()
		hs.FinalPrice = h.Price()
		hs.FinalBacklog = h.TotalQueued()
		summary.Hosts = append(summary.Hosts, hs)
	}

	queued := make(map[string]float64)
	for _, h := range d.Hosts {
		for id, q := range h.QueuedLoads() {
			queued[id] += q
		}
	}
	for _, tw := range d.Tenants {
		ts := model.TenantSummary{
			TenantID:   tw.Tenant.ID(),
			Tenant:     tw.Tenant.Name(),
			LoadPerSec: tw.LoadPerSec,
		}
		for _, w := range tw.Tenant.Workers() {
			ts.Workers = append(ts.Workers, w.ID)
			ts.FinalQueue += queued[w.ID]
		}
		summary.Tenants = append(summary.Tenants, ts)
	}
	return summary
}
