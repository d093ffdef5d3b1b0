package cmd

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/cescalante/optilab/internal/bench"
	"github.com/cescalante/optilab/internal/opt"
	"github.com/cescalante/optilab/internal/viz"
	"github.com/spf13/cobra"
)

var (
	funcName      string
	optName       string
	dimensions    int
	generations   int
	popSize       int
	mutationRate  float64
	crossoverRate float64
	mutationDelta float64
	seed          int64
	outPath       string
	plotPath      string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a single optimization locally",
	Long: `Runs one optimizer against one benchmark function and prints the result.
Use --out to dump the full result (including the convergence trajectory) as
JSON and --plot to render the trajectory as a PNG.`,
	RunE: runOptimization,
}

func init() {
	runCmd.Flags().StringVar(&funcName, "func", "", "Benchmark function name (required, see 'optilab bench')")
	runCmd.Flags().StringVar(&optName, "optimizer", "genetic", "Optimizer: genetic, pso, de, gd, mayfly")
	runCmd.Flags().IntVar(&dimensions, "dim", 0, "Problem dimensionality (0 = function default)")
	runCmd.Flags().IntVar(&generations, "gens", 50, "Number of generations")
	runCmd.Flags().IntVar(&popSize, "pop", 30, "Population size")
	runCmd.Flags().Float64Var(&mutationRate, "mutation-rate", 0.3, "Per-gene mutation probability")
	runCmd.Flags().Float64Var(&crossoverRate, "crossover-rate", 0.7, "Per-pair crossover probability")
	runCmd.Flags().Float64Var(&mutationDelta, "delta", 0.5, "Mutation perturbation half-width")
	runCmd.Flags().Int64Var(&seed, "seed", 42, "Random seed")
	runCmd.Flags().StringVar(&outPath, "out", "", "Write full result JSON to this path")
	runCmd.Flags().StringVar(&plotPath, "plot", "", "Write convergence plot PNG to this path")

	runCmd.MarkFlagRequired("func")
	rootCmd.AddCommand(runCmd)
}

func runOptimization(cmd *cobra.Command, args []string) error {
	b, err := bench.Lookup(funcName)
	if err != nil {
		return err
	}

	dim := dimensions
	if dim <= 0 {
		if b.Dims > 0 {
			dim = b.Dims
		} else {
			dim = 2
		}
	}
	if err := b.Validate(dim); err != nil {
		return err
	}
	lower, upper := b.BoundsFor(dim)

	// The rate flags carry defaults, so their values are always explicit;
	// passing pointers lets --mutation-rate 0 mean exactly zero.
	optimizer, err := opt.New(optName, opt.Options{
		PopulationSize: popSize,
		Generations:    generations,
		MutationRate:   &mutationRate,
		CrossoverRate:  &crossoverRate,
		MutationDelta:  &mutationDelta,
		Seed:           seed,
	})
	if err != nil {
		return err
	}

	slog.Info("Starting optimization",
		"function", b.Name, "optimizer", optName, "dim", dim,
		"generations", generations, "pop", popSize, "seed", seed)

	start := time.Now()
	result, err := optimizer.Run(b.Func, lower, upper, dim)
	if err != nil {
		return fmt.Errorf("optimization failed: %w", err)
	}
	elapsed := time.Since(start)

	eps := float64(result.Evaluations) / elapsed.Seconds()
	slog.Info("Optimization complete",
		"elapsed", elapsed,
		"initial_cost", result.InitialCost,
		"best_cost", result.BestCost,
		"evaluations", result.Evaluations,
		"evals_per_second", fmt.Sprintf("%.0f", eps),
	)

	fmt.Printf("%s / %s (dim %d)\n", b.Name, optName, dim)
	fmt.Printf("  best cost:   %.8g (known minimum %.8g)\n", result.BestCost, b.MinValue)
	fmt.Printf("  best params: %v\n", result.BestParams)
	fmt.Printf("  evaluations: %d in %s (%.0f evals/sec)\n", result.Evaluations, elapsed.Round(time.Millisecond), eps)

	if outPath != "" {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to serialize result: %w", err)
		}
		if err := os.WriteFile(outPath, data, 0644); err != nil {
			return fmt.Errorf("failed to write result: %w", err)
		}
		fmt.Printf("Wrote %s\n", outPath)
	}

	if plotPath != "" {
		if len(result.Trajectory) == 0 {
			return fmt.Errorf("optimizer %s does not report a trajectory, cannot plot", optName)
		}
		best := make([]float64, len(result.Trajectory))
		mean := make([]float64, len(result.Trajectory))
		for i, p := range result.Trajectory {
			best[i] = p.BestCost
			mean[i] = p.MeanCost
		}
		title := fmt.Sprintf("%s / %s", b.Name, optName)
		if err := viz.SavePNG(plotPath, title,
			viz.Series{Name: "best", Values: best},
			viz.Series{Name: "mean", Values: mean}); err != nil {
			return fmt.Errorf("failed to write plot: %w", err)
		}
		fmt.Printf("Wrote %s\n", plotPath)
	}

	return nil
}
