package report

import (
	"context"
	"io"
	"time"

	"github.com/guimove/fairprice/internal/model"
)

// Reporter formats and writes a run summary to an output destination.
type Reporter interface {
	Report(ctx context.Context, summary model.RunSummary, meta ReportMeta) error
}

// ReportMeta contains contextual metadata for the report.
type ReportMeta struct {
	ConfigFile  string    `json:"config_file,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`

	// Paths of the side outputs written during the run, empty when skipped
	SnapshotsFile string `json:"snapshots_file,omitempty"`
	MetricsFile   string `json:"metrics_file,omitempty"`
}

// NewReporter creates a reporter for the given format writing to w.
func NewReporter(format string, w io.Writer) Reporter {
	switch format {
	case "json":
		return &JSONReporter{w: w}
	case "csv":
		return &CSVReporter{w: w}
	default:
		return &TableReporter{w: w}
	}
}
