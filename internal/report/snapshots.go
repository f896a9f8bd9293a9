package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/guimove/fairprice/internal/model"
)

var snapshotHeader = []string{"time", "host", "tenant", "worker_id", "queued_load", "processed_load"}

// SnapshotWriter streams per-worker rows as CSV while a run progresses. It
// satisfies simulation.Recorder.
type SnapshotWriter struct {
	cw     *csv.Writer
	closer io.Closer
	header bool
}

// NewSnapshotWriter writes rows to w. The header is emitted before the first row.
func NewSnapshotWriter(w io.Writer) *SnapshotWriter {
	return &SnapshotWriter{cw: csv.NewWriter(w)}
}

// CreateSnapshotFile opens path for writing and returns a writer that owns it.
func CreateSnapshotFile(path string) (*SnapshotWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating snapshot file: %w", err)
	}
	sw := NewSnapshotWriter(f)
	sw.closer = f
	return sw, nil
}

// Record appends one tick's rows.
func (s *SnapshotWriter) Record(_ []model.HostObservation, rows []model.Snapshot) error {
	if !s.header {
		if err := s.cw.Write(snapshotHeader); err != nil {
			return fmt.Errorf("writing snapshot header: %w", err)
		}
		s.header = true
	}
	for _, r := range rows {
		record := []string{
			strconv.Itoa(r.Time),
			r.Host,
			r.Tenant,
			r.WorkerID,
			formatFloat(r.QueuedLoad),
			formatFloat(r.ProcessedLoad),
		}
		if err := s.cw.Write(record); err != nil {
			return fmt.Errorf("writing snapshot row: %w", err)
		}
	}
	s.cw.Flush()
	return s.cw.Error()
}

// Close flushes pending rows and closes the underlying file, if owned.
func (s *SnapshotWriter) Close() error {
	s.cw.Flush()
	if err := s.cw.Error(); err != nil {
		return err
	}
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}

// WriteSnapshotsCSV writes a complete set of rows in one go.
func WriteSnapshotsCSV(w io.Writer, rows []model.Snapshot) error {
	sw := NewSnapshotWriter(w)
	if err := sw.Record(nil, rows); err != nil {
		return err
	}
	return sw.Close()
}
