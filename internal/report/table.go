package report

import (
	"context"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/guimove/fairprice/internal/model"
)

// TableReporter outputs the run summary as a formatted terminal table.
type TableReporter struct {
	w io.Writer
}

// load renders a load figure with thousands separators and two decimals at most.
func load(v float64) string {
	return humanize.Commaf(math.Round(v*100) / 100)
}

func (r *TableReporter) Report(ctx context.Context, summary model.RunSummary, meta ReportMeta) error {
	fmt.Fprintf(r.w, "\n")
	fmt.Fprintf(r.w, "FairPrice Simulation\n")
	fmt.Fprintf(r.w, "%s\n", strings.Repeat("=", 60))
	if meta.ConfigFile != "" {
		fmt.Fprintf(r.w, "Config:      %s\n", meta.ConfigFile)
	}
	fmt.Fprintf(r.w, "Run:         %s\n", summary.RunID)
	fmt.Fprintf(r.w, "Ticks:       %s\n", humanize.Comma(int64(summary.Ticks)))
	fmt.Fprintf(r.w, "Routing:     %s (weights: %s)\n", summary.Routing, summary.WeightStrategy)
	fmt.Fprintf(r.w, "Epsilon:     %g\n", summary.Epsilon)
	fmt.Fprintf(r.w, "%s\n\n", strings.Repeat("=", 60))

	if len(summary.Hosts) == 0 {
		fmt.Fprintf(r.w, "No hosts simulated.\n")
		return nil
	}

	fmt.Fprintf(r.w, "%-8s %9s %10s %10s %10s %7s %8s %s\n",
		"Host", "Capacity", "Price", "Backlog", "Max", "Util%", "Slope", "Trend")
	fmt.Fprintf(r.w, "%s\n", strings.Repeat("-", 80))

	for _, h := range summary.Hosts {
		trend := string(h.Trend)
		if h.NegativePriceTicks > 0 {
			trend += fmt.Sprintf(" [%d ticks price<0]", h.NegativePriceTicks)
		}
		fmt.Fprintf(r.w, "%-8s %9s %10.3f %10s %10s %6.1f%% %8.3f %s\n",
			h.Host,
			load(h.Capacity),
			h.FinalPrice,
			load(h.FinalBacklog),
			load(h.MaxBacklog),
			h.MeanUtilization*100,
			h.BacklogSlope,
			trend,
		)
	}
	fmt.Fprintf(r.w, "%s\n", strings.Repeat("-", 80))

	if len(summary.Tenants) > 0 {
		fmt.Fprintf(r.w, "\n%-10s %10s %10s  %s\n", "Tenant", "Load/tick", "Queued", "Workers")
		for _, t := range summary.Tenants {
			fmt.Fprintf(r.w, "%-10s %10s %10s  %s\n",
				t.Tenant, load(t.LoadPerSec), load(t.FinalQueue), strings.Join(t.Workers, ","))
		}
	}

	fmt.Fprintf(r.w, "\nTotal backlog: %s\n", load(summary.TotalBacklog()))
	if summary.Stable() {
		fmt.Fprintf(r.w, "Verdict:       stable, every backlog stays bounded\n")
	} else {
		var growing []string
		for _, h := range summary.Hosts {
			if h.Trend == model.TrendGrowing {
				growing = append(growing, h.Host)
			}
		}
		fmt.Fprintf(r.w, "Verdict:       unstable, backlog growing on %s\n", strings.Join(growing, ", "))
	}

	if meta.SnapshotsFile != "" || meta.MetricsFile != "" {
		fmt.Fprintf(r.w, "\n  Outputs:\n")
		if meta.SnapshotsFile != "" {
			fmt.Fprintf(r.w, "    - snapshots: %s\n", meta.SnapshotsFile)
		}
		if meta.MetricsFile != "" {
			fmt.Fprintf(r.w, "    - metrics:   %s\n", meta.MetricsFile)
		}
	}

	fmt.Fprintf(r.w, "\n")
	return nil
}
