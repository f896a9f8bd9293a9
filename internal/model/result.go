package model

// Scenario is one parameter set of a sweep.
type Scenario struct {
	Name      string  `json:"name"`
	Routing   string  `json:"routing"`
	Epsilon   float64 `json:"epsilon"`
	LoadScale float64 `json:"load_scale"` // multiplier on every tenant's load
}

// ScenarioResult is the ranked outcome of one sweep scenario.
type ScenarioResult struct {
	Rank     int        `json:"rank"`
	Scenario Scenario   `json:"scenario"`
	Summary  RunSummary `json:"summary"`
}

// MaxBacklog returns the largest backlog any host reached during the run.
func (r ScenarioResult) MaxBacklog() float64 {
	var m float64
	for _, h := range r.Summary.Hosts {
		if h.MaxBacklog > m {
			m = h.MaxBacklog
		}
	}
	return m
}

// NegativePriceTicks sums the negative-price ticks over all hosts.
func (r ScenarioResult) NegativePriceTicks() int {
	var n int
	for _, h := range r.Summary.Hosts {
		n += h.NegativePriceTicks
	}
	return n
}
