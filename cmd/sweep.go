package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/guimove/fairprice/internal/cloud"
	"github.com/guimove/fairprice/internal/orchestrator"
	"github.com/guimove/fairprice/internal/simulation"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Compare routing modes, step sizes and load levels side by side",
	Long: `Runs the configured cloud once per combination of routing mode, price
step size and load scale, in parallel, and ranks the runs: stable backlogs
first, then by remaining backlog.

  fairprice sweep --routing price-based,weighted-split --epsilon 0.1,1,5 --load-scale 1,1.2`,
	RunE: runSweep,
}

func init() {
	f := sweepCmd.Flags()
	f.StringSlice("routing", []string{cloud.RoutePriceBased.String(), cloud.RouteWeightedSplit.String()}, "routing modes to compare")
	f.Float64Slice("epsilon", nil, "price step sizes to compare (default: the configured one)")
	f.Float64Slice("load-scale", []float64{1}, "multipliers applied to every tenant's load")
	f.Int("ticks", 0, "number of ticks per scenario")
	f.Int("parallelism", 0, "scenarios run at once (default: number of CPUs)")
	f.String("output", "", "output format: table, json, csv")

	rootCmd.AddCommand(sweepCmd)
}

func runSweep(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()

	rawRouting, _ := flags.GetStringSlice("routing")
	routings := make([]cloud.RoutingMode, 0, len(rawRouting))
	for _, r := range rawRouting {
		m, err := cloud.ParseRoutingMode(r)
		if err != nil {
			return err
		}
		routings = append(routings, m)
	}

	epsilons, _ := flags.GetFloat64Slice("epsilon")
	if len(epsilons) == 0 {
		epsilons = []float64{cfg.Simulation.Epsilon}
	}
	for _, e := range epsilons {
		if e <= 0 {
			return fmt.Errorf("epsilon must be positive, got %g", e)
		}
	}

	scales, _ := flags.GetFloat64Slice("load-scale")
	for _, s := range scales {
		if s < 0 {
			return fmt.Errorf("load scale must be non-negative, got %g", s)
		}
	}

	if n, _ := flags.GetInt("ticks"); flags.Changed("ticks") {
		cfg.Simulation.Ticks = n
	}
	if o, _ := flags.GetString("output"); flags.Changed("output") {
		cfg.Output.Format = o
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}

	orch := orchestrator.New(cfg)
	orch.ConfigFile = viper.ConfigFileUsed()
	orch.Writer = os.Stdout
	if p, _ := flags.GetInt("parallelism"); p > 0 {
		orch.Parallelism = p
	}

	_, err := orch.Sweep(cmd.Context(), simulation.GenerateScenarios(routings, epsilons, scales))
	return err
}
