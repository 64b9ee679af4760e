package main

import (
	"fmt"
	"time"

	"github.com/example/go-dotprod/internal/bench"
	"github.com/example/go-dotprod/internal/vector"
	"github.com/spf13/cobra"
)

func newBenchCmd() *cobra.Command {
	var (
		dimension     int
		runs          int
		iterations    int
		seed          int64
		format        string
		minThroughput float64
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Benchmark the configured float64 kernel",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			if runs < 1 {
				return fmt.Errorf("--runs must be at least 1")
			}
			if format != "table" && format != "json" {
				return fmt.Errorf("--format must be 'table' or 'json'")
			}

			kernel, err := vector.ParseKernel(cfg.Compute.Kernel)
			if err != nil {
				return err
			}

			results, err := bench.Run(cmd.Context(), bench.Options{
				Kernel:     kernel,
				Dimension:  dimension,
				Runs:       runs,
				Iterations: iterations,
				Seed:       seed,
			})
			if err != nil {
				return err
			}

			durations := make([]time.Duration, len(results))
			for i, r := range results {
				durations[i] = r.Duration
			}
			stats := bench.ComputeStats(durations)

			out := cmd.OutOrStdout()
			switch format {
			case "json":
				bench.FormatJSON(results, stats, out)
			default:
				bench.FormatTable(results, stats, out)
			}

			var total float64
			for _, r := range results {
				total += r.Throughput
			}
			return bench.CheckThroughputThreshold(total/float64(len(results)), minThroughput)
		},
	}

	cmd.Flags().IntVar(&dimension, "dimension", 1024, "Vector length")
	cmd.Flags().IntVar(&runs, "runs", 5, "Number of timed runs")
	cmd.Flags().IntVar(&iterations, "iterations", 1000, "Dot products per run")
	cmd.Flags().Int64Var(&seed, "seed", 1, "Seed for the random input vectors")
	cmd.Flags().StringVar(&format, "format", "table", "Output format: table|json")
	cmd.Flags().Float64Var(&minThroughput, "min-throughput", 0, "Exit non-zero if mean Mop/s falls below this value (0 = disabled)")

	return cmd
}
