package simulation

import "github.com/guimove/fairprice/internal/model"

// Recorder receives the state of the cloud at the end of every tick.
type Recorder interface {
	Record(hosts []model.HostObservation, rows []model.Snapshot) error
}

// MemoryRecorder keeps every row of a run in memory.
type MemoryRecorder struct {
	Observations []model.HostObservation
	Rows         []model.Snapshot
}

// NewMemoryRecorder creates an empty in-memory recorder.
func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{}
}

func (m *MemoryRecorder) Record(hosts []model.HostObservation, rows []model.Snapshot) error {
	m.Observations = append(m.Observations, hosts...)
	m.Rows = append(m.Rows, rows...)
	return nil
}

// HostSeries returns the observations of one host in tick order.
func (m *MemoryRecorder) HostSeries(hostID int) []model.HostObservation {
	var out []model.HostObservation
	for _, o := range m.Observations {
		if o.HostID == hostID {
			out = append(out, o)
		}
	}
	return out
}
