// Package fairshare splits a fixed capacity among competing demands using
// max-min fairness.
package fairshare

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

var (
	// ErrContractViolation is returned when the caller breaks the input contract.
	ErrContractViolation = errors.New("contract violation")
	// ErrDuplicateWorker is returned when a worker appears twice in one call.
	ErrDuplicateWorker = fmt.Errorf("%w: duplicate worker id", ErrContractViolation)
)

// Demand is the load a single worker asks to have processed.
type Demand struct {
	WorkerID string
	Load     float64
}

// Share is the capacity granted to a single worker.
type Share struct {
	WorkerID string
	Share    float64
}

// workerLoadShare is the per-call bookkeeping for one worker.
type workerLoadShare struct {
	id    string
	load  float64
	share float64
}

// Allocate returns the max-min fair share of capacity for every worker.
//
// The sum of shares equals min(capacity, sum of demands) and no worker gets
// more than it asked for. An empty demand set yields an empty map.
func Allocate(capacity float64, demands []Demand) (map[string]float64, error) {
	shares, err := AllocateOrdered(capacity, demands)
	if err != nil {
		return nil, err
	}
	out := make(map[string]float64, len(shares))
	for _, s := range shares {
		out[s.WorkerID] = s.Share
	}
	return out, nil
}

// AllocateOrdered is Allocate returning shares in finish order: workers capped
// at their demand first (in the round they saturated), then the remaining
// workers in input order.
//
// Progressive filling: every worker starts at capacity/n. Each round, workers
// whose tentative share exceeds their demand are capped, and the excess is
// spread evenly over the workers still active. Each round removes at least one
// worker, so the loop runs at most n times.
func AllocateOrdered(capacity float64, demands []Demand) ([]Share, error) {
	if err := validate(capacity, demands); err != nil {
		return nil, err
	}
	if len(demands) == 0 {
		return []Share{}, nil
	}

	initial := capacity / float64(len(demands))
	active := make([]*workerLoadShare, len(demands))
	for i, d := range demands {
		active[i] = &workerLoadShare{id: d.WorkerID, load: d.Load, share: initial}
	}

	done := make([]*workerLoadShare, 0, len(demands))
	for {
		var saturated, remaining []*workerLoadShare
		for _, w := range active {
			if w.share > w.load {
				saturated = append(saturated, w)
			} else {
				remaining = append(remaining, w)
			}
		}
		if len(saturated) == 0 {
			break
		}

		excess := make([]float64, len(saturated))
		for i, w := range saturated {
			excess[i] = w.share - w.load
			w.share = w.load
		}
		done = append(done, saturated...)
		active = remaining

		if len(active) == 0 {
			break
		}
		extra := floats.Sum(excess) / float64(len(active))
		for _, w := range active {
			w.share += extra
		}
	}

	out := make([]Share, 0, len(demands))
	for _, w := range append(done, active...) {
		out = append(out, Share{WorkerID: w.id, Share: w.share})
	}
	return out, nil
}

func validate(capacity float64, demands []Demand) error {
	if capacity < 0 || math.IsNaN(capacity) || math.IsInf(capacity, 0) {
		return fmt.Errorf("%w: capacity must be a finite non-negative number, got %v", ErrContractViolation, capacity)
	}
	seen := make(map[string]struct{}, len(demands))
	for _, d := range demands {
		if d.Load < 0 || math.IsNaN(d.Load) || math.IsInf(d.Load, 0) {
			return fmt.Errorf("%w: demand of %q must be a finite non-negative number, got %v",
				ErrContractViolation, d.WorkerID, d.Load)
		}
		if _, ok := seen[d.WorkerID]; ok {
			return fmt.Errorf("%w: %q", ErrDuplicateWorker, d.WorkerID)
		}
		seen[d.WorkerID] = struct{}{}
	}
	return nil
}
