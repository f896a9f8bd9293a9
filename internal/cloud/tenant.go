package cloud

import (
	"fmt"
	"math"
)

// Worker places a share of a tenant's load on one host.
type Worker struct {
	Index  int
	Host   *Host
	Weight float64
}

// WorkerView is a read-only description of a tenant's worker.
type WorkerView struct {
	ID     string
	HostID int
	Weight float64
}

// Tenant owns a fixed set of workers, each bound to one host, and decides
// every tick which of them receive its load.
type Tenant struct {
	id      int
	workers []Worker
}

// WorkerID renders the cloud-wide unique key of a tenant's worker.
func WorkerID(tenantID, workerIndex int) string {
	return fmt.Sprintf("tenant%d_worker%d", tenantID, workerIndex)
}

// NewTenant creates a tenant with one worker per entry in hosts. A host may
// appear more than once to place several workers on it. Workers get equal
// weights 1/k.
func NewTenant(id int, hosts []*Host) (*Tenant, error) {
	if len(hosts) == 0 {
		return nil, fmt.Errorf("%w: tenant%d needs at least one worker", ErrContractViolation, id)
	}
	weights := make([]float64, len(hosts))
	for i := range weights {
		weights[i] = 1 / float64(len(hosts))
	}
	return NewWeightedTenant(id, hosts, weights)
}

// NewWeightedTenant is NewTenant with caller-supplied fixed weights, one per
// host binding. Weights must be non-negative with a positive sum; they are
// used as proportions by the weighted-split routing mode.
func NewWeightedTenant(id int, hosts []*Host, weights []float64) (*Tenant, error) {
	if len(hosts) == 0 {
		return nil, fmt.Errorf("%w: tenant%d needs at least one worker", ErrContractViolation, id)
	}
	if len(weights) != len(hosts) {
		return nil, fmt.Errorf("%w: tenant%d has %d workers but %d weights",
			ErrContractViolation, id, len(hosts), len(weights))
	}

	var sum float64
	workers := make([]Worker, len(hosts))
	for i, h := range hosts {
		if h == nil {
			return nil, fmt.Errorf("%w: tenant%d worker %d has no host", ErrContractViolation, id, i)
		}
		w := weights[i]
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, fmt.Errorf("%w: tenant%d worker %d weight must be a finite non-negative number, got %v",
				ErrContractViolation, id, i, w)
		}
		sum += w
		workers[i] = Worker{Index: i, Host: h, Weight: w}
	}
	if sum <= 0 {
		return nil, fmt.Errorf("%w: tenant%d weights sum to zero", ErrContractViolation, id)
	}

	return &Tenant{id: id, workers: workers}, nil
}

// ID returns the tenant index.
func (t *Tenant) ID() int { return t.id }

// Name returns the display name, e.g. "tenant0".
func (t *Tenant) Name() string { return fmt.Sprintf("tenant%d", t.id) }

// Workers describes the tenant's workers in declaration order.
func (t *Tenant) Workers() []WorkerView {
	out := make([]WorkerView, len(t.workers))
	for i, w := range t.workers {
		out[i] = WorkerView{ID: WorkerID(t.id, w.Index), HostID: w.Host.ID(), Weight: w.Weight}
	}
	return out
}

// ScheduleLoadOnWorkers routes one tick's worth of load onto the tenant's
// workers according to mode.
func (t *Tenant) ScheduleLoadOnWorkers(totalLoad float64, mode RoutingMode) error {
	// Checked up front so a split never lands on some workers only.
	if totalLoad < 0 || math.IsNaN(totalLoad) || math.IsInf(totalLoad, 0) {
		return fmt.Errorf("%w: %s load must be a finite non-negative number, got %v",
			ErrContractViolation, t.Name(), totalLoad)
	}

	switch mode {
	case RoutePriceBased:
		w := t.cheapestWorker()
		return w.Host.ScheduleWorkload(WorkerID(t.id, w.Index), totalLoad)

	case RouteWeightedSplit:
		var sum float64
		for _, w := range t.workers {
			sum += w.Weight
		}
		for _, w := range t.workers {
			if err := w.Host.ScheduleWorkload(WorkerID(t.id, w.Index), totalLoad*w.Weight/sum); err != nil {
				return err
			}
		}
		return nil

	default:
		return fmt.Errorf("%w: %s routing mode %v", ErrUnsupportedStrategy, t.Name(), mode)
	}
}

// cheapestWorker returns the worker on the lowest-priced host. Ties go to the
// worker declared first.
func (t *Tenant) cheapestWorker() Worker {
	best := t.workers[0]
	for _, w := range t.workers[1:] {
		if w.Host.Price() < best.Host.Price() {
			best = w
		}
	}
	return best
}

// UpdateWeight revises worker weights with the given strategy.
func (t *Tenant) UpdateWeight(strategy WeightStrategy) error {
	switch strategy {
	case NoAdaptation:
		return nil
	default:
		return fmt.Errorf("%w: %s weight strategy %v", ErrUnsupportedStrategy, t.Name(), strategy)
	}
}
