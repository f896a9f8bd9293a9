package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/guimove/fairprice/internal/config"
)

var (
	cfgFile string
	cfg     config.Config
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "fairprice",
	Short: "Congestion-priced routing simulator for shared-capacity clouds",
	Long: `FairPrice simulates tenants routing load onto shared hosts. Each host
divides its capacity among the workers queued on it with max-min fairness and
moves a congestion price from its arrivals; tenants route to the cheapest host.

It reports whether every host's backlog stays bounded or keeps growing.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			log.SetLevel(log.DebugLevel)
		}
		return loadConfig()
	},
}

// Execute runs the root command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func init() {
	log.SetOutput(os.Stderr)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: fairprice.yaml)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable debug logging")
}

func loadConfig() error {
	loaded, err := loadConfigFrom(viper.GetViper(), cfgFile)
	if err != nil {
		return err
	}
	cfg = loaded
	return nil
}

// loadConfigFrom layers defaults, the config file and FAIRPRICE_* environment
// variables, in increasing precedence, and validates the result.
func loadConfigFrom(v *viper.Viper, file string) (config.Config, error) {
	// Start with defaults
	c := config.Default()
	setDefaults(v, c)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("fairprice")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.fairprice")
	}

	// Environment variable overrides, e.g. FAIRPRICE_SIMULATION_TICKS
	v.SetEnvPrefix("FAIRPRICE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not an error if missing)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && file != "" {
			return c, fmt.Errorf("reading config file: %w", err)
		}
	} else {
		log.WithField("file", v.ConfigFileUsed()).Debug("Loaded config file")
	}

	// A configured tenant list replaces the reference tenants instead of
	// merging into them element by element.
	if v.IsSet("tenants") {
		c.Tenants = nil
	}

	// Unmarshal into config struct
	if err := v.Unmarshal(&c); err != nil {
		return c, fmt.Errorf("parsing config: %w", err)
	}

	return c, c.Validate()
}

// setDefaults registers every scalar key so AutomaticEnv can reach it even
// when no config file mentions it. Tenants are only configurable by file.
func setDefaults(v *viper.Viper, d config.Config) {
	v.SetDefault("cloud.hosts", d.Cloud.Hosts)
	v.SetDefault("cloud.host_capacity", d.Cloud.HostCapacity)
	v.SetDefault("cloud.capacities", d.Cloud.Capacities)

	v.SetDefault("simulation.ticks", d.Simulation.Ticks)
	v.SetDefault("simulation.epsilon", d.Simulation.Epsilon)
	v.SetDefault("simulation.initial_price", d.Simulation.InitialPrice)
	v.SetDefault("simulation.price_sum_guard", d.Simulation.PriceSumGuard)
	v.SetDefault("simulation.routing", d.Simulation.Routing)
	v.SetDefault("simulation.weight_strategy", d.Simulation.WeightStrategy)
	v.SetDefault("simulation.growth_threshold", d.Simulation.GrowthThreshold)

	v.SetDefault("output.format", d.Output.Format)
	v.SetDefault("output.snapshots", d.Output.Snapshots)
	v.SetDefault("output.metrics", d.Output.Metrics)
}
