// Package bench provides benchmarking primitives for the dotprod bench command.
package bench

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"strings"
	"time"

	"github.com/example/go-dotprod/internal/vector"
)

// ---------------------------------------------------------------------------
// Run result and stats
// ---------------------------------------------------------------------------

// RunResult holds the timing of a single run of Iterations dot products.
type RunResult struct {
	Index      int
	Cold       bool // true for the first run (cold-start)
	Duration   time.Duration
	Iterations int
	Dimension  int
	Throughput float64 // million multiply-adds per second
}

// Stats holds aggregate timing statistics across all runs.
type Stats struct {
	Min  time.Duration
	Max  time.Duration
	Mean time.Duration
}

// ComputeStats calculates min, max and mean over a slice of durations.
// The slice must be non-empty.
func ComputeStats(durations []time.Duration) Stats {
	if len(durations) == 0 {
		return Stats{}
	}
	mn, mx := durations[0], durations[0]
	var sum time.Duration
	for _, d := range durations {
		if d < mn {
			mn = d
		}
		if d > mx {
			mx = d
		}
		sum += d
	}
	return Stats{
		Min:  mn,
		Max:  mx,
		Mean: sum / time.Duration(len(durations)),
	}
}

// ---------------------------------------------------------------------------
// Throughput helpers
// ---------------------------------------------------------------------------

// CalcThroughput returns million multiply-adds per second for iterations dot
// products of the given dimension. Returns 0 if d is zero.
func CalcThroughput(dimension, iterations int, d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return float64(dimension) * float64(iterations) / d.Seconds() / 1e6
}

// CheckThroughputThreshold returns an error if mean throughput is below
// threshold. A threshold of 0 disables the gate.
func CheckThroughputThreshold(mean, threshold float64) error {
	if threshold <= 0 {
		return nil
	}
	if mean < threshold {
		return fmt.Errorf("mean throughput %.1f Mop/s below threshold %.1f", mean, threshold)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Runner
// ---------------------------------------------------------------------------

// Options controls Run.
type Options struct {
	Kernel     vector.Kernel
	Dimension  int
	Runs       int
	Iterations int
	Seed       int64
}

// RandomVectors returns two length-n vectors with elements in [-1, 1),
// reproducible for a given seed.
func RandomVectors(n int, seed int64) ([]float64, []float64) {
	rng := rand.New(rand.NewSource(seed))
	a := make([]float64, n)
	b := make([]float64, n)
	for i := range a {
		a[i] = rng.Float64()*2 - 1
		b[i] = rng.Float64()*2 - 1
	}
	return a, b
}

// Run times opts.Runs batches of opts.Iterations dot products with
// opts.Kernel. It stops early when ctx is cancelled.
func Run(ctx context.Context, opts Options) ([]RunResult, error) {
	if opts.Dimension < 0 {
		return nil, fmt.Errorf("dimension must be >= 0, got %d", opts.Dimension)
	}
	if opts.Runs < 1 {
		return nil, fmt.Errorf("runs must be at least 1, got %d", opts.Runs)
	}
	if opts.Iterations < 1 {
		return nil, fmt.Errorf("iterations must be at least 1, got %d", opts.Iterations)
	}

	a, b := RandomVectors(opts.Dimension, opts.Seed)
	results := make([]RunResult, 0, opts.Runs)

	var sink float64
	for i := range opts.Runs {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		start := time.Now()
		for range opts.Iterations {
			v, err := opts.Kernel.DotProduct(a, b)
			if err != nil {
				return nil, fmt.Errorf("run %d failed: %w", i+1, err)
			}
			sink += v
		}
		dur := time.Since(start)

		results = append(results, RunResult{
			Index:      i,
			Cold:       i == 0,
			Duration:   dur,
			Iterations: opts.Iterations,
			Dimension:  opts.Dimension,
			Throughput: CalcThroughput(opts.Dimension, opts.Iterations, dur),
		})
	}
	_ = sink

	return results, nil
}

// ---------------------------------------------------------------------------
// Output formatters
// ---------------------------------------------------------------------------

func micros(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / 1e3
}

// FormatTable writes a human-readable ASCII table of bench results to w.
func FormatTable(runs []RunResult, stats Stats, w io.Writer) {
	sb := &strings.Builder{}

	fmt.Fprintf(sb, "%-5s  %-5s  %12s  %10s  %10s\n", "Run", "Cold", "Total(us)", "Call(ns)", "Mop/s")
	fmt.Fprintln(sb, strings.Repeat("-", 50))

	for _, r := range runs {
		cold := ""
		if r.Cold {
			cold = "yes"
		}
		perCall := 0.0
		if r.Iterations > 0 {
			perCall = float64(r.Duration.Nanoseconds()) / float64(r.Iterations)
		}
		fmt.Fprintf(sb, "%-5d  %-5s  %12.1f  %10.1f  %10.1f\n",
			r.Index+1,
			cold,
			micros(r.Duration),
			perCall,
			r.Throughput,
		)
	}

	fmt.Fprintln(sb, strings.Repeat("-", 50))
	fmt.Fprintf(sb, "%-5s  %-5s  %12.1f  %10s  %10s  (min)\n", "", "", micros(stats.Min), "", "")
	fmt.Fprintf(sb, "%-5s  %-5s  %12.1f  %10s  %10s  (mean)\n", "", "", micros(stats.Mean), "", "")
	fmt.Fprintf(sb, "%-5s  %-5s  %12.1f  %10s  %10s  (max)\n", "", "", micros(stats.Max), "", "")

	fmt.Fprint(w, sb.String())
}

// jsonReport is the top-level JSON structure emitted by FormatJSON.
type jsonReport struct {
	Runs  []jsonRun `json:"runs"`
	Stats jsonStats `json:"stats"`
}

type jsonRun struct {
	Index      int     `json:"index"`
	Cold       bool    `json:"cold"`
	DurationUS float64 `json:"duration_us"`
	Iterations int     `json:"iterations"`
	Dimension  int     `json:"dimension"`
	Throughput float64 `json:"mops"`
}

type jsonStats struct {
	MinUS  float64 `json:"min_us"`
	MeanUS float64 `json:"mean_us"`
	MaxUS  float64 `json:"max_us"`
}

// FormatJSON writes a JSON report of bench results to w.
func FormatJSON(runs []RunResult, stats Stats, w io.Writer) {
	jr := jsonReport{
		Runs: make([]jsonRun, len(runs)),
		Stats: jsonStats{
			MinUS:  micros(stats.Min),
			MeanUS: micros(stats.Mean),
			MaxUS:  micros(stats.Max),
		},
	}
	for i, r := range runs {
		jr.Runs[i] = jsonRun{
			Index:      r.Index,
			Cold:       r.Cold,
			DurationUS: micros(r.Duration),
			Iterations: r.Iterations,
			Dimension:  r.Dimension,
			Throughput: r.Throughput,
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(jr)
}
