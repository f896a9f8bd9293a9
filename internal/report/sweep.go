package report

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/guimove/fairprice/internal/model"
)

// WriteSweep writes ranked sweep results in the given format.
func WriteSweep(ctx context.Context, format string, w io.Writer, results []model.ScenarioResult, meta ReportMeta) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		out := struct {
			Meta    ReportMeta             `json:"meta"`
			Results []model.ScenarioResult `json:"results"`
		}{meta, results}
		if err := enc.Encode(out); err != nil {
			return fmt.Errorf("encoding JSON output: %w", err)
		}
		return nil
	case "csv":
		return writeSweepCSV(w, results)
	default:
		return writeSweepTable(w, results, meta)
	}
}

func writeSweepTable(w io.Writer, results []model.ScenarioResult, meta ReportMeta) error {
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "FairPrice Sweep\n")
	fmt.Fprintf(w, "%s\n", strings.Repeat("=", 60))
	if meta.ConfigFile != "" {
		fmt.Fprintf(w, "Config:      %s\n", meta.ConfigFile)
	}
	fmt.Fprintf(w, "Scenarios:   %d\n", len(results))
	fmt.Fprintf(w, "%s\n\n", strings.Repeat("=", 60))

	if len(results) == 0 {
		fmt.Fprintf(w, "No scenarios completed.\n")
		return nil
	}

	fmt.Fprintf(w, "%-4s %-40s %-8s %12s %12s %s\n",
		"Rank", "Scenario", "Stable", "Backlog", "Peak", "Notes")
	fmt.Fprintf(w, "%s\n", strings.Repeat("-", 90))

	for _, r := range results {
		name := r.Scenario.Name
		if len(name) > 40 {
			name = name[:37] + "..."
		}
		stable := "yes"
		if !r.Summary.Stable() {
			stable = "no"
		}
		notes := ""
		if n := r.NegativePriceTicks(); n > 0 {
			notes = fmt.Sprintf("%d host-ticks price<0", n)
		}
		fmt.Fprintf(w, "#%-3d %-40s %-8s %12s %12s %s\n",
			r.Rank, name, stable, load(r.Summary.TotalBacklog()), load(r.MaxBacklog()), notes)
	}
	fmt.Fprintf(w, "%s\n\n", strings.Repeat("-", 90))
	return nil
}

func writeSweepCSV(w io.Writer, results []model.ScenarioResult) error {
	cw := csv.NewWriter(w)
	header := []string{"rank", "scenario", "routing", "epsilon", "load_scale", "stable", "total_backlog", "max_backlog", "negative_price_ticks"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, r := range results {
		record := []string{
			strconv.Itoa(r.Rank),
			r.Scenario.Name,
			r.Scenario.Routing,
			formatFloat(r.Scenario.Epsilon),
			formatFloat(r.Scenario.LoadScale),
			strconv.FormatBool(r.Summary.Stable()),
			formatFloat(r.Summary.TotalBacklog()),
			formatFloat(r.MaxBacklog()),
			strconv.Itoa(r.NegativePriceTicks()),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing CSV row for %s: %w", r.Scenario.Name, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
