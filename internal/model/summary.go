package model

import "time"

// BacklogTrend classifies how a host's backlog evolved over a run.
type BacklogTrend string

const (
	TrendStable  BacklogTrend = "stable"
	TrendGrowing BacklogTrend = "growing"
)

// HostSummary aggregates one host's observations over a run.
type HostSummary struct {
	HostID   int     `json:"host_id"`
	Host     string  `json:"host"`
	Capacity float64 `json:"capacity"`

	FinalPrice   float64 `json:"final_price"`
	FinalBacklog float64 `json:"final_backlog"`
	MaxBacklog   float64 `json:"max_backlog"`

	// Mean load processed per tick and its ratio to capacity
	MeanProcessed   float64 `json:"mean_processed"`
	MeanUtilization float64 `json:"mean_utilization"`

	// Ticks that ended with a negative price
	NegativePriceTicks int `json:"negative_price_ticks"`

	// Least-squares slope of the total backlog per tick
	BacklogSlope float64      `json:"backlog_slope"`
	Trend        BacklogTrend `json:"trend"`
}

// TenantSummary describes a tenant's configuration as run.
type TenantSummary struct {
	TenantID   int      `json:"tenant_id"`
	Tenant     string   `json:"tenant"`
	LoadPerSec float64  `json:"load_per_sec"`
	Workers    []string `json:"workers"`
	FinalQueue float64  `json:"final_queue"` // backlog summed over the tenant's workers
}

// RunSummary is the outcome of one simulation run.
type RunSummary struct {
	RunID          string          `json:"run_id"`
	Ticks          int             `json:"ticks"`
	Routing        string          `json:"routing"`
	WeightStrategy string          `json:"weight_strategy"`
	Epsilon        float64         `json:"epsilon"`
	Hosts          []HostSummary   `json:"hosts"`
	Tenants        []TenantSummary `json:"tenants"`
	Duration       time.Duration   `json:"duration"`
}

// TotalBacklog returns the backlog left across all hosts at the end of the run.
func (r RunSummary) TotalBacklog() float64 {
	var total float64
	for _, h := range r.Hosts {
		total += h.FinalBacklog
	}
	return total
}

// Stable reports whether no host's backlog was classified as growing.
func (r RunSummary) Stable() bool {
	for _, h := range r.Hosts {
		if h.Trend == TrendGrowing {
			return false
		}
	}
	return true
}
