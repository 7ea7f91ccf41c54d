package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	sim "github.com/hospital-sim/hospital-sim/sim"
	"github.com/hospital-sim/hospital-sim/sim/analytics"
	"github.com/hospital-sim/hospital-sim/sim/trace"
)

var (
	// CLI flags shared by run and replicate
	seed             int64   // Seed of the variate generator (base seed for replicate)
	horizon          float64 // Simulated minutes to drain
	configPath       string  // YAML file layered over the default hospital
	logLevel         string  // Log verbosity level
	evictionPolicy   string  // Fate of patients evicted by a power outage
	orDurationPolicy string  // Handling of negative operation-time draws

	// CLI flags for run
	traceLevel       string // Decision trace verbosity
	outputPath       string // Replication JSON destination
	notificationsCSV string // Notification log CSV destination
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "hospital-sim",
	Short: "Discrete-event simulator for hospital patient flow",
}

// runCmd executes one replication using parameters from the config file and CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a single replication",
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevel()
		cfg, err := buildConfig(cmd)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		if cmd.Flags().Changed("trace-level") {
			cfg.TraceLevel = traceLevel
			if err := cfg.Validate(); err != nil {
				logrus.Fatalf("%v", err)
			}
		}
		logrus.WithFields(logrus.Fields{
			"seed":     cfg.Seed,
			"horizon":  cfg.Horizon,
			"eviction": cfg.EvictionPolicy,
		}).Info("starting replication")

		if err := runSingle(cfg, cmd.OutOrStdout()); err != nil {
			logrus.Fatalf("%v", err)
		}
		logrus.Info("Simulation complete.")
	},
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setLogLevel() {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", logLevel)
	}
	logrus.SetLevel(level)
}

// buildConfig layers the config file (if any) over the defaults, then applies
// only the flags the user set explicitly.
func buildConfig(cmd *cobra.Command) (sim.Config, error) {
	cfg := sim.DefaultConfig()
	if configPath != "" {
		loaded, err := sim.LoadConfig(configPath)
		if err != nil {
			return cfg, err
		}
		cfg = *loaded
	}
	flags := cmd.Flags()
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("horizon") {
		cfg.Horizon = horizon
	}
	if flags.Changed("eviction-policy") {
		cfg.EvictionPolicy = evictionPolicy
	}
	if flags.Changed("or-duration-policy") {
		cfg.ORDurationPolicy = orDurationPolicy
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("validating flags: %w", err)
	}
	return cfg, nil
}

// runSummary is printed to stdout after a single replication.
type runSummary struct {
	Seed      int64               `json:"seed"`
	Horizon   float64             `json:"horizon"`
	EndClock  float64             `json:"end_clock"`
	Patients  int                 `json:"patients"`
	Finalized int                 `json:"finalized"`
	Stats     sim.Stats           `json:"stats"`
	Trace     *trace.TraceSummary `json:"trace,omitempty"`
}

func runSingle(cfg sim.Config, w io.Writer) error {
	rep, err := sim.RunOneReplication(cfg.Seed, cfg.Horizon, cfg)
	if err != nil {
		return err
	}
	summary := runSummary{
		Seed:      rep.Seed,
		Horizon:   rep.Horizon,
		EndClock:  rep.EndClock,
		Patients:  len(rep.Patients),
		Finalized: len(rep.FinalizedPatients()),
		Stats:     rep.Stats,
	}
	if rep.Trace != nil {
		summary.Trace = trace.Summarize(rep.Trace)
	}
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling summary: %w", err)
	}
	if _, err := fmt.Fprintln(w, string(data)); err != nil {
		return fmt.Errorf("writing summary: %w", err)
	}

	if outputPath != "" {
		full, err := json.MarshalIndent(rep, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling replication: %w", err)
		}
		if err := os.WriteFile(outputPath, full, 0644); err != nil {
			return fmt.Errorf("writing replication: %w", err)
		}
	}
	if notificationsCSV != "" {
		if err := analytics.WriteNotificationsCSV(notificationsCSV, rep.Notifications); err != nil {
			return err
		}
	}
	return nil
}

func registerConfigFlags(cmd *cobra.Command) {
	def := sim.DefaultConfig()
	cmd.Flags().Int64Var(&seed, "seed", def.Seed, "Seed for the variate generator")
	cmd.Flags().Float64Var(&horizon, "horizon", def.Horizon, "Simulation horizon (in minutes)")
	cmd.Flags().StringVar(&configPath, "config", "", "YAML config file layered over the defaults")
	cmd.Flags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
	cmd.Flags().StringVar(&evictionPolicy, "eviction-policy", def.EvictionPolicy, "Power-outage eviction outcome (drop, discharge, death)")
	cmd.Flags().StringVar(&orDurationPolicy, "or-duration-policy", def.ORDurationPolicy, "Negative operation-time handling (clamp, strict)")
}

// init sets up CLI flags and subcommands
func init() {
	registerConfigFlags(runCmd)
	runCmd.Flags().StringVar(&traceLevel, "trace-level", "none", "Decision trace level (none, decisions, events)")
	runCmd.Flags().StringVar(&outputPath, "output", "", "Write the full replication as JSON to this path")
	runCmd.Flags().StringVar(&notificationsCSV, "notifications-csv", "", "Write the notification log as CSV to this path")

	rootCmd.AddCommand(runCmd)
}
