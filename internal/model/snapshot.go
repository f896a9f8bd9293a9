package model

// Snapshot is one per-(host, worker) diagnostic row emitted after a tick.
type Snapshot struct {
	Time          int     `json:"time"`
	HostID        int     `json:"host_id"`
	Host          string  `json:"host"`
	TenantID      int     `json:"tenant_id"`
	Tenant        string  `json:"tenant"`
	WorkerID      string  `json:"worker_id"`
	QueuedLoad    float64 `json:"queued_load"`
	ProcessedLoad float64 `json:"processed_load"`
}

// HostObservation is the state of one host at the end of a tick, after the
// price update.
type HostObservation struct {
	Time      int     `json:"time"`
	HostID    int     `json:"host_id"`
	Host      string  `json:"host"`
	Capacity  float64 `json:"capacity"`
	Price     float64 `json:"price"`
	Arrived   float64 `json:"arrived"` // load scheduled during the tick
	Queued    float64 `json:"queued"`
	Processed float64 `json:"processed"`
}

// Utilization returns the fraction of capacity used in the tick (0.0 - 1.0).
func (o HostObservation) Utilization() float64 {
	if o.Capacity <= 0 {
		return 0
	}
	return o.Processed / o.Capacity
}
