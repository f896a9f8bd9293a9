package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/guimove/fairprice/internal/orchestrator"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Simulate the configured cloud and report backlog stability",
	Long: `Builds the hosts and tenants from the config, advances the cloud tick by
tick and prints a per-host summary: final price, backlog, utilization and
whether the backlog trend is stable or growing.

Per-tick worker rows can be written as CSV with --snapshots, and the final
state as a Prometheus textfile with --metrics.`,
	RunE: runRun,
}

func init() {
	f := runCmd.Flags()
	f.Int("ticks", 0, "number of ticks to simulate")
	f.String("routing", "", "routing mode: price-based or weighted-split")
	f.Float64("epsilon", 0, "price update step size")
	f.String("output", "", "output format: table, json, csv")
	f.String("snapshots", "", "write per-tick worker rows as CSV to this path")
	f.String("metrics", "", "write Prometheus metrics in text format to this path")

	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	if n, _ := flags.GetInt("ticks"); flags.Changed("ticks") {
		cfg.Simulation.Ticks = n
	}
	if r, _ := flags.GetString("routing"); flags.Changed("routing") {
		cfg.Simulation.Routing = r
	}
	if e, _ := flags.GetFloat64("epsilon"); flags.Changed("epsilon") {
		cfg.Simulation.Epsilon = e
	}
	if o, _ := flags.GetString("output"); flags.Changed("output") {
		cfg.Output.Format = o
	}
	if p, _ := flags.GetString("snapshots"); flags.Changed("snapshots") {
		cfg.Output.Snapshots = p
	}
	if p, _ := flags.GetString("metrics"); flags.Changed("metrics") {
		cfg.Output.Metrics = p
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}

	orch := orchestrator.New(cfg)
	orch.ConfigFile = viper.ConfigFileUsed()
	orch.Writer = os.Stdout

	_, err := orch.Run(cmd.Context())
	return err
}
