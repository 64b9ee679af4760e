package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"

	"github.com/example/go-dotprod/internal/config"
	"github.com/example/go-dotprod/internal/history"
	"github.com/example/go-dotprod/internal/vector"
	"github.com/spf13/cobra"
)

type computeOptions struct {
	A      string
	B      string
	Steps  bool
	Kernel vector.Kernel
	Format string
}

type computeOutput struct {
	Result    json.Number `json:"result"`
	Kind      string      `json:"kind"`
	Dimension int         `json:"dimension"`
	Steps     []string    `json:"steps,omitempty"`
}

func newComputeCmd() *cobra.Command {
	var (
		a, b   string
		steps  bool
		format string
	)

	cmd := &cobra.Command{
		Use:   "compute",
		Short: "Compute the dot product of two comma-separated vectors",
		Example: `  dotprod compute --a "1,3,-5" --b "4,-2,-1"
  dotprod compute --a "[1.5, 2]" --b "[2, 1.5]" --steps --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			kernel, err := vector.ParseKernel(cfg.Compute.Kernel)
			if err != nil {
				return err
			}

			selectedFormat := cfg.Compute.Format
			if format != "" {
				selectedFormat, err = config.NormalizeFormat(format)
				if err != nil {
					return err
				}
			}

			return runCompute(cmd.OutOrStdout(), computeOptions{
				A:      a,
				B:      b,
				Steps:  steps,
				Kernel: kernel,
				Format: selectedFormat,
			})
		},
	}

	cmd.Flags().StringVar(&a, "a", "", "First vector, e.g. \"1,3,-5\" or \"[1.5, 2]\"")
	cmd.Flags().StringVar(&b, "b", "", "Second vector")
	cmd.Flags().BoolVar(&steps, "steps", false, "Show the worked calculation")
	cmd.Flags().StringVar(&format, "format", "", "Output format: text|json (overrides config)")

	return cmd
}

func runCompute(w io.Writer, opts computeOptions) error {
	out, err := computeVectors(opts)
	if err != nil {
		return fmt.Errorf("compute: %w", err)
	}

	slog.Debug("dot product computed",
		slog.String("kind", out.Kind),
		slog.Int("dimension", out.Dimension),
		slog.String("kernel", string(opts.Kernel)),
	)

	if opts.Format == config.FormatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	for _, line := range out.Steps {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintln(w, out.Result)
	return err
}

var errNotFinite = errors.New("result is not finite")

// computeVectors takes the integer path when both inputs parse as integers.
func computeVectors(opts computeOptions) (computeOutput, error) {
	ai, errA := vector.ParseInt(opts.A)
	bi, errB := vector.ParseInt(opts.B)
	if errA == nil && errB == nil {
		bd, err := vector.Explain(ai, bi)
		if err != nil {
			return computeOutput{}, err
		}
		return newComputeOutput(history.FromBreakdown(history.KindInteger, bd), bd.Steps(), opts.Steps), nil
	}

	af, err := vector.Parse(opts.A)
	if err != nil {
		return computeOutput{}, err
	}
	bf, err := vector.Parse(opts.B)
	if err != nil {
		return computeOutput{}, err
	}

	bd, err := opts.Kernel.Explain(af, bf)
	if err != nil {
		return computeOutput{}, err
	}
	if math.IsNaN(bd.Result) || math.IsInf(bd.Result, 0) {
		return computeOutput{}, fmt.Errorf("%w: got %v", errNotFinite, bd.Result)
	}
	return newComputeOutput(history.FromBreakdown(history.KindReal, bd), bd.Steps(), opts.Steps), nil
}

func newComputeOutput(e history.Entry, steps []string, withSteps bool) computeOutput {
	out := computeOutput{
		Result:    e.Result,
		Kind:      e.Kind,
		Dimension: e.Dimension,
	}
	if withSteps {
		out.Steps = steps
	}
	return out
}
