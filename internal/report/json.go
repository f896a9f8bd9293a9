package report

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/guimove/fairprice/internal/model"
)

// JSONReporter outputs the run summary as JSON.
type JSONReporter struct {
	w io.Writer
}

type jsonOutput struct {
	Meta    ReportMeta       `json:"meta"`
	Stable  bool             `json:"stable"`
	Backlog float64          `json:"total_backlog"`
	Summary model.RunSummary `json:"summary"`
}

func (r *JSONReporter) Report(ctx context.Context, summary model.RunSummary, meta ReportMeta) error {
	output := jsonOutput{
		Meta:    meta,
		Stable:  summary.Stable(),
		Backlog: summary.TotalBacklog(),
		Summary: summary,
	}

	enc := json.NewEncoder(r.w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(output); err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}
	return nil
}
