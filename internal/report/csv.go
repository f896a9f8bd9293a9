package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/guimove/fairprice/internal/model"
)

// CSVReporter outputs one line per host summary.
type CSVReporter struct {
	w io.Writer
}

var hostSummaryHeader = []string{
	"host_id", "host", "capacity", "final_price", "final_backlog", "max_backlog",
	"mean_processed", "mean_utilization", "negative_price_ticks", "backlog_slope", "trend",
}

func (r *CSVReporter) Report(ctx context.Context, summary model.RunSummary, meta ReportMeta) error {
	cw := csv.NewWriter(r.w)
	if err := cw.Write(hostSummaryHeader); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, h := range summary.Hosts {
		record := []string{
			strconv.Itoa(h.HostID),
			h.Host,
			formatFloat(h.Capacity),
			formatFloat(h.FinalPrice),
			formatFloat(h.FinalBacklog),
			formatFloat(h.MaxBacklog),
			formatFloat(h.MeanProcessed),
			formatFloat(h.MeanUtilization),
			strconv.Itoa(h.NegativePriceTicks),
			formatFloat(h.BacklogSlope),
			string(h.Trend),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing CSV row for %s: %w", h.Host, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
