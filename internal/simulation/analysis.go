package simulation

import (
	"gonum.org/v1/gonum/stat"

	"github.com/guimove/fairprice/internal/model"
)

// DefaultGrowthThreshold is the backlog slope, in load per tick, above which a
// host is considered to be falling behind.
const DefaultGrowthThreshold = 0.5

// BacklogSlope fits a least-squares line to a host's total backlog over time
// and returns its slope. Fewer than two observations give zero.
func BacklogSlope(series []model.HostObservation) float64 {
	if len(series) < 2 {
		return 0
	}
	x := make([]float64, len(series))
	y := make([]float64, len(series))
	for i, o := range series {
		x[i] = float64(o.Time)
		y[i] = o.Queued
	}
	_, beta := stat.LinearRegression(x, y, nil, false)
	return beta
}

// SummarizeHost aggregates a host's observations. Identity, final price and
// final backlog are left for the caller.
func SummarizeHost(series []model.HostObservation, growthThreshold float64) model.HostSummary {
	hs := model.HostSummary{Trend: model.TrendStable}
	if len(series) == 0 {
		return hs
	}

	processed := make([]float64, len(series))
	utilization := make([]float64, len(series))
	for i, o := range series {
		processed[i] = o.Processed
		utilization[i] = o.Utilization()
		if o.Queued > hs.MaxBacklog {
			hs.MaxBacklog = o.Queued
		}
		if o.Price < 0 {
			hs.NegativePriceTicks++
		}
	}
	hs.MeanProcessed = stat.Mean(processed, nil)
	hs.MeanUtilization = stat.Mean(utilization, nil)

	hs.BacklogSlope = BacklogSlope(series)
	if hs.BacklogSlope > growthThreshold {
		hs.Trend = model.TrendGrowing
	}
	return hs
}
