package cloud

import (
	"fmt"
	"math"

	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"

	"github.com/guimove/fairprice/internal/fairshare"
)

const (
	DefaultInitialPrice  = 1.0
	DefaultEpsilon       = 1.0
	DefaultPriceSumGuard = 1e-9
)

// Host is a machine with a fixed per-tick processing capacity shared by the
// workers placed on it. It owns its backlog, price and accounting counters.
//
// A Host is not safe for concurrent use; the simulation driver is its only
// writer.
type Host struct {
	id       int
	capacity float64

	price         float64
	epsilon       float64
	priceSumGuard float64

	// order keeps backlog keys in first-arrival order so every tick allocates
	// over the same sequence.
	order     []string
	queued    map[string]float64
	arrived   float64
	processed map[string]float64
}

// HostOption configures a Host.
type HostOption func(*Host)

// WithInitialPrice sets the starting congestion price.
func WithInitialPrice(p float64) HostOption {
	return func(h *Host) { h.price = p }
}

// WithEpsilon sets the price update step size.
func WithEpsilon(e float64) HostOption {
	return func(h *Host) { h.epsilon = e }
}

// WithPriceSumGuard sets how close to zero the sum of all host prices may get
// before a price update is refused.
func WithPriceSumGuard(g float64) HostOption {
	return func(h *Host) { h.priceSumGuard = g }
}

// NewHost creates a host with the given id and per-tick capacity.
func NewHost(id int, capacity float64, opts ...HostOption) (*Host, error) {
	if capacity < 0 || math.IsNaN(capacity) || math.IsInf(capacity, 0) {
		return nil, fmt.Errorf("%w: host%d capacity must be a finite non-negative number, got %v",
			ErrContractViolation, id, capacity)
	}

	h := &Host{
		id:            id,
		capacity:      capacity,
		price:         DefaultInitialPrice,
		epsilon:       DefaultEpsilon,
		priceSumGuard: DefaultPriceSumGuard,
		queued:        make(map[string]float64),
		processed:     make(map[string]float64),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// ID returns the host index.
func (h *Host) ID() int { return h.id }

// Name returns the display name, e.g. "host0".
func (h *Host) Name() string { return fmt.Sprintf("host%d", h.id) }

// Capacity returns the load the host can process per tick.
func (h *Host) Capacity() float64 { return h.capacity }

// Price returns the current congestion price.
func (h *Host) Price() float64 { return h.price }

// Arrived returns the load scheduled since the last price update.
func (h *Host) Arrived() float64 { return h.arrived }

func (h *Host) String() string {
	return fmt.Sprintf("<%s capacity=%g/s price=%g>", h.Name(), h.capacity, h.price)
}

// ScheduleWorkload queues load for a worker. Worker ids are unique across the
// whole cloud, e.g. "tenant2_worker3".
func (h *Host) ScheduleWorkload(workerID string, load float64) error {
	if load < 0 || math.IsNaN(load) || math.IsInf(load, 0) {
		return fmt.Errorf("%w: load for %q on %s must be a finite non-negative number, got %v",
			ErrContractViolation, workerID, h.Name(), load)
	}

	if _, ok := h.queued[workerID]; !ok {
		h.order = append(h.order, workerID)
	}
	h.queued[workerID] += load
	h.arrived += load
	return nil
}

// ProcessLoad runs the host for one tick: capacity is split max-min fairly
// over the queued backlog and each worker's share is drained from its queue.
// The backlog that does not fit stays queued for later ticks.
func (h *Host) ProcessLoad() error {
	demands := make([]fairshare.Demand, len(h.order))
	for i, id := range h.order {
		demands[i] = fairshare.Demand{WorkerID: id, Load: h.queued[id]}
	}

	shares, err := fairshare.AllocateOrdered(h.capacity, demands)
	if err != nil {
		return fmt.Errorf("allocating capacity on %s: %w", h.Name(), err)
	}

	processed := make(map[string]float64, len(shares))
	for _, s := range shares {
		// Guard against rounding leaving a -1e-16 residue.
		h.queued[s.WorkerID] = math.Max(0, h.queued[s.WorkerID]-s.Share)
		processed[s.WorkerID] = s.Share
	}
	h.processed = processed

	log.WithFields(log.Fields{
		"host":   h.Name(),
		"queued": h.queued,
	}).Debug("Processed load")

	return nil
}

// QueuedLoads returns a copy of the backlog per worker.
func (h *Host) QueuedLoads() map[string]float64 {
	out := make(map[string]float64, len(h.queued))
	for k, v := range h.queued {
		out[k] = v
	}
	return out
}

// LoadsProcessed returns a copy of the amount processed per worker in the
// most recent tick.
func (h *Host) LoadsProcessed() map[string]float64 {
	out := make(map[string]float64, len(h.processed))
	for k, v := range h.processed {
		out[k] = v
	}
	return out
}

// Workers returns the ids of workers with a backlog entry, in arrival order.
func (h *Host) Workers() []string {
	return append([]string(nil), h.order...)
}

// TotalQueued returns the sum of all backlogs.
func (h *Host) TotalQueued() float64 {
	var total float64
	for _, id := range h.order {
		total += h.queued[id]
	}
	return total
}

// TotalProcessed returns the load processed in the most recent tick.
func (h *Host) TotalProcessed() float64 {
	var total float64
	for _, id := range h.order {
		total += h.processed[id]
	}
	return total
}

// UpdatePrice revises the congestion price from the load that arrived since
// the last update and resets the arrival counter. allHostPrices must be the
// prices of every host taken before any host updated in this tick.
//
// The price has no floor and may turn negative.
func (h *Host) UpdatePrice(allHostPrices []float64) error {
	next, err := NextPrice(h.price, h.epsilon, h.arrived, h.capacity, allHostPrices, h.priceSumGuard)
	if err != nil {
		return fmt.Errorf("updating price of %s: %w", h.Name(), err)
	}
	h.price = next
	h.arrived = 0
	return nil
}

// NextPrice is one subgradient step on the host's dual price:
//
//	old + epsilon * (arrived - capacity + 1/sum(allHostPrices))
//
// It fails with ErrDegeneratePriceSum when |sum(allHostPrices)| <= guard.
func NextPrice(old, epsilon, arrived, capacity float64, allHostPrices []float64, guard float64) (float64, error) {
	sum := floats.Sum(allHostPrices)
	if math.IsNaN(sum) || math.Abs(sum) <= guard {
		return 0, fmt.Errorf("%w: sum=%g over %d hosts", ErrDegeneratePriceSum, sum, len(allHostPrices))
	}
	return old + epsilon*(arrived-capacity+1/sum), nil
}
