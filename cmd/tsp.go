package cmd

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/cescalante/optilab/internal/tsp"
	"github.com/cescalante/optilab/internal/viz"
	"github.com/spf13/cobra"
)

var (
	tspAlgo   string
	tspIters  int
	tspAnts   int
	tspPop    int
	tspGens   int
	tspSeed   int64
	tspTwoOpt bool
	tspPlot   string
)

var tspCmd = &cobra.Command{
	Use:   "tsp",
	Short: "Solve the traveling salesman problem over the Mexican state capitals",
	Long: `Finds a short closed tour through all 32 Mexican state capitals using great-
circle distances. Two solvers are available: an ant colony (aco) and a
permutation genetic algorithm (genetic). The tour can optionally be polished
with 2-opt local search.`,
	RunE: runTSP,
}

func init() {
	tspCmd.Flags().StringVar(&tspAlgo, "algo", "aco", "Solver: aco or genetic")
	tspCmd.Flags().IntVar(&tspIters, "iters", 200, "Iterations (aco)")
	tspCmd.Flags().IntVar(&tspAnts, "ants", 32, "Number of ants (aco)")
	tspCmd.Flags().IntVar(&tspPop, "pop", 100, "Population size (genetic)")
	tspCmd.Flags().IntVar(&tspGens, "gens", 500, "Generations (genetic)")
	tspCmd.Flags().Int64Var(&tspSeed, "seed", 42, "Random seed")
	tspCmd.Flags().BoolVar(&tspTwoOpt, "two-opt", false, "Polish the best tour with 2-opt local search")
	tspCmd.Flags().StringVar(&tspPlot, "plot", "", "Write convergence plot PNG to this path")
	rootCmd.AddCommand(tspCmd)
}

func runTSP(cmd *cobra.Command, args []string) error {
	cities := tsp.Capitals
	m := tsp.DistanceMatrix(cities)

	slog.Info("Solving TSP", "algo", tspAlgo, "cities", len(cities), "seed", tspSeed)
	start := time.Now()

	var (
		best    tsp.Tour
		length  float64
		history []float64
	)
	switch tspAlgo {
	case "aco":
		cfg := tsp.DefaultACOConfig()
		cfg.Ants = tspAnts
		cfg.Iterations = tspIters
		cfg.Seed = tspSeed
		colony, err := tsp.NewAntColony(cfg)
		if err != nil {
			return err
		}
		best, length, history = colony.Solve(m)
	case "genetic":
		cfg := tsp.DefaultGAConfig()
		cfg.PopulationSize = tspPop
		cfg.Generations = tspGens
		cfg.Seed = tspSeed
		ga, err := tsp.NewGenetic(cfg)
		if err != nil {
			return err
		}
		best, length, history = ga.Solve(m)
	default:
		return fmt.Errorf("unknown solver %q (want aco or genetic)", tspAlgo)
	}

	if tspTwoOpt {
		polished := tsp.TwoOpt(best, m)
		if polishedLength := polished.Length(m); polishedLength < length {
			slog.Info("2-opt improved tour", "before_km", length, "after_km", polishedLength)
			best, length = polished, polishedLength
		}
	}
	elapsed := time.Since(start)

	slog.Info("TSP solved", "algo", tspAlgo, "length_km", length, "elapsed", elapsed)

	fmt.Printf("Best tour (%.1f km, %s, %s):\n", length, tspAlgo, elapsed.Round(time.Millisecond))
	for i, cityIdx := range best {
		fmt.Printf("  %2d. %s\n", i+1, cities[cityIdx].Name)
	}
	fmt.Printf("  back to %s\n", cities[best[0]].Name)

	if tspPlot != "" {
		title := fmt.Sprintf("TSP capitals / %s", tspAlgo)
		if err := viz.SavePNG(tspPlot, title, viz.Series{Name: "best tour km", Values: history}); err != nil {
			return fmt.Errorf("failed to write plot: %w", err)
		}
		fmt.Printf("Wrote %s\n", tspPlot)
	}

	return nil
}
