package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/guimove/fairprice/internal/fairshare"
)

var allocateCmd = &cobra.Command{
	Use:   "allocate",
	Short: "Compute a max-min fair split of one host's capacity",
	Long: `Runs the fair-share allocator once, outside any simulation.

  fairprice allocate --capacity 10 --demand a=2 --demand b=2.6 --demand c=4 --demand d=5`,
	RunE: runAllocate,
}

func init() {
	f := allocateCmd.Flags()
	f.Float64("capacity", 0, "capacity to divide")
	f.StringArray("demand", nil, "worker demand as id=load (repeatable)")
	f.String("output", "table", "output format: table or json")

	_ = allocateCmd.MarkFlagRequired("capacity")
	rootCmd.AddCommand(allocateCmd)
}

func runAllocate(cmd *cobra.Command, args []string) error {
	capacity, _ := cmd.Flags().GetFloat64("capacity")
	raw, _ := cmd.Flags().GetStringArray("demand")
	format, _ := cmd.Flags().GetString("output")

	demands, err := parseDemands(raw)
	if err != nil {
		return err
	}

	shares, err := fairshare.Allocate(capacity, demands)
	if err != nil {
		return err
	}

	if format == "json" {
		ordered := make([]fairshare.Share, len(demands))
		for i, d := range demands {
			ordered[i] = fairshare.Share{WorkerID: d.WorkerID, Share: shares[d.WorkerID]}
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(ordered)
	}

	fmt.Printf("%-20s %10s %10s\n", "Worker", "Demand", "Share")
	fmt.Printf("%s\n", strings.Repeat("-", 42))
	var total float64
	for _, d := range demands {
		fmt.Printf("%-20s %10.4g %10.4g\n", d.WorkerID, d.Load, shares[d.WorkerID])
		total += shares[d.WorkerID]
	}
	fmt.Printf("%s\n", strings.Repeat("-", 42))
	fmt.Printf("%-20s %10.4g %10.4g\n", "capacity / used", capacity, total)
	return nil
}

// parseDemands turns "id=load" pairs into allocator demands, keeping their order.
func parseDemands(raw []string) ([]fairshare.Demand, error) {
	demands := make([]fairshare.Demand, 0, len(raw))
	for _, r := range raw {
		id, val, ok := strings.Cut(r, "=")
		id = strings.TrimSpace(id)
		if !ok || id == "" {
			return nil, fmt.Errorf("demand %q: expected id=load", r)
		}
		load, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return nil, fmt.Errorf("demand %q: %w", r, err)
		}
		demands = append(demands, fairshare.Demand{WorkerID: id, Load: load})
	}
	return demands, nil
}
