package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"runtime"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	sim "github.com/hospital-sim/hospital-sim/sim"
	"github.com/hospital-sim/hospital-sim/sim/analytics"
)

var (
	// CLI flags for replicate
	replications int     // Number of independent replications
	workers      int     // Replications run concurrently
	frameLength  float64 // Minutes per analysis frame
	alpha        float64 // Confidence interval significance level
	reportPath   string  // Analysis report JSON destination
)

// replicateCmd runs independent replications with consecutive seeds and
// analyses them together.
var replicateCmd = &cobra.Command{
	Use:   "replicate",
	Short: "Run independent replications and estimate steady-state metrics",
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevel()
		cfg, err := buildConfig(cmd)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		opts := analytics.DefaultOptions()
		opts.FrameLength = frameLength
		opts.Alpha = alpha

		reps, err := runReplications(cmd.Context(), cfg, replications, workers)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		report, err := analytics.Analyze(reps, opts)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		if err := emitReport(report, cmd.OutOrStdout()); err != nil {
			logrus.Fatalf("%v", err)
		}
	},
}

// runReplications runs n replications with seeds cfg.Seed..cfg.Seed+n-1 on
// at most `limit` goroutines. Results are ordered by seed regardless of
// completion order. The first failing replication cancels the rest.
func runReplications(ctx context.Context, cfg sim.Config, n, limit int) ([]*sim.Replication, error) {
	if n <= 0 {
		return nil, fmt.Errorf("replications must be positive, got %d", n)
	}
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	results := make([]*sim.Replication, n)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rep, err := sim.RunOneReplication(cfg.Seed+int64(i), cfg.Horizon, cfg)
			if err != nil {
				return err
			}
			results[i] = rep
			logrus.WithFields(logrus.Fields{
				"seed":   rep.Seed,
				"events": rep.Stats.EventsDispatched,
			}).Debug("replication finished")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func emitReport(report *analytics.Report, w io.Writer) error {
	if reportPath != "" {
		if err := analytics.WriteReportJSON(reportPath, report); err != nil {
			return err
		}
	}
	fmt.Fprintf(w, "Run %s: %d replications, horizon=%v, alpha=%v\n",
		report.RunID, report.Replications, report.Horizon, report.Alpha)
	for _, name := range analytics.MetricNames {
		est := report.Metrics[name].Estimation
		fmt.Fprintf(w, "%-20s mean=%10.4f  ci=[%10.4f, %10.4f]\n", name, est.Mean, est.CILower, est.CIUpper)
	}
	totals, err := json.MarshalIndent(report.Totals, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling totals: %w", err)
	}
	_, err = fmt.Fprintln(w, string(totals))
	return err
}

func init() {
	registerConfigFlags(replicateCmd)
	def := analytics.DefaultOptions()
	replicateCmd.Flags().IntVar(&replications, "replications", 10, "Number of independent replications")
	replicateCmd.Flags().IntVar(&workers, "workers", 0, "Concurrent replications (0 = GOMAXPROCS)")
	replicateCmd.Flags().Float64Var(&frameLength, "frame-length", def.FrameLength, "Analysis frame length (in minutes)")
	replicateCmd.Flags().Float64Var(&alpha, "alpha", def.Alpha, "Significance level of the confidence intervals")
	replicateCmd.Flags().StringVar(&reportPath, "report", "", "Write the analysis report as JSON to this path")

	rootCmd.AddCommand(replicateCmd)
}
