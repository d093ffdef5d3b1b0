package opt

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/stat"
)

// GeneticConfig holds hyperparameters for the genetic optimizer.
type GeneticConfig struct {
	PopulationSize int
	Generations    int
	MutationRate   float64
	CrossoverRate  float64
	MutationDelta  float64 // maximum magnitude of a gene perturbation
	TournamentSize int
	Seed           int64

	// InitialGuess, when non-nil, is injected verbatim as one member of the
	// initial population. Used when resuming from a checkpoint.
	InitialGuess []float64
}

// DefaultGeneticConfig returns hyperparameters that work well on the
// bundled benchmark functions.
func DefaultGeneticConfig() GeneticConfig {
	return GeneticConfig{
		PopulationSize: 30,
		Generations:    50,
		MutationRate:   0.3,
		CrossoverRate:  0.7,
		MutationDelta:  0.5,
		TournamentSize: 3,
		Seed:           42,
	}
}

// Genetic minimizes a scalar objective with a fixed-length evolutionary
// loop over a real-valued population: tournament selection, single-point
// crossover, and uniform clamped mutation, with full generational
// replacement.
//
// The population gene pool carries no elitism: the best individual is
// tracked externally in the trajectory but is not guaranteed to survive
// into the next generation.
type Genetic struct {
	cfg GeneticConfig
	rng *rand.Rand
}

// NewGenetic validates the configuration and creates a genetic optimizer.
// Each instance owns a seeded random source, so runs with the same
// configuration are reproducible.
func NewGenetic(cfg GeneticConfig) (*Genetic, error) {
	if cfg.PopulationSize < 2 {
		return nil, fmt.Errorf("population size must be >= 2, got %d", cfg.PopulationSize)
	}
	if cfg.Generations < 1 {
		return nil, fmt.Errorf("generations must be >= 1, got %d", cfg.Generations)
	}
	if cfg.MutationRate < 0 || cfg.MutationRate > 1 {
		return nil, fmt.Errorf("mutation rate must be in [0,1], got %f", cfg.MutationRate)
	}
	if cfg.CrossoverRate < 0 || cfg.CrossoverRate > 1 {
		return nil, fmt.Errorf("crossover rate must be in [0,1], got %f", cfg.CrossoverRate)
	}
	if cfg.MutationDelta < 0 {
		return nil, fmt.Errorf("mutation delta must be >= 0, got %f", cfg.MutationDelta)
	}
	if cfg.TournamentSize == 0 {
		cfg.TournamentSize = 3
	}
	if cfg.TournamentSize < 1 || cfg.TournamentSize > cfg.PopulationSize {
		return nil, fmt.Errorf("tournament size must be in [1, population size], got %d", cfg.TournamentSize)
	}

	return &Genetic{
		cfg: cfg,
		rng: rand.New(rand.NewSource(cfg.Seed)),
	}, nil
}

// Run executes the evolutionary loop for the configured number of
// generations. Termination is by generation count only; there is no
// convergence-based early stop. NaN or overflowing objective values
// propagate into subsequent generations unchecked.
func (g *Genetic) Run(eval func([]float64) float64, lower, upper []float64, dim int) (*Result, error) {
	if err := checkBounds(lower, upper, dim); err != nil {
		return nil, err
	}
	if g.cfg.InitialGuess != nil && len(g.cfg.InitialGuess) != dim {
		return nil, fmt.Errorf("initial guess has %d genes, expected %d", len(g.cfg.InitialGuess), dim)
	}

	pop := g.initPopulation(lower, upper, dim)
	fitness := make([]float64, len(pop))

	var best []float64
	bestCost := math.Inf(1)
	initialCost := math.Inf(1)
	evals := 0
	trajectory := make([]Point, 0, g.cfg.Generations)

	for gen := 0; gen < g.cfg.Generations; gen++ {
		// Evaluate: fitness[i] mirrors the current population, recomputed
		// every generation.
		for i, ind := range pop {
			fitness[i] = eval(ind)
			evals++
		}

		// Track best-so-far with strict less-than. The trajectory records
		// the best found up to and including this generation, so it is
		// non-increasing even when the generation itself degrades.
		for i, f := range fitness {
			if f < bestCost {
				bestCost = f
				best = cloneVector(pop[i])
			}
		}
		if gen == 0 {
			initialCost = bestCost
		}
		trajectory = append(trajectory, Point{
			Generation: gen,
			BestCost:   bestCost,
			MeanCost:   stat.Mean(fitness, nil),
		})

		selected := g.selectTournament(pop, fitness)
		offspring := g.recombine(selected, dim)
		g.mutate(offspring, lower, upper, dim)
		pop = offspring
	}

	return &Result{
		BestParams:  best,
		BestCost:    bestCost,
		InitialCost: initialCost,
		Evaluations: evals,
		Trajectory:  trajectory,
	}, nil
}

// initPopulation samples individuals uniformly within the bounds. An
// initial guess, if configured, replaces the first member.
func (g *Genetic) initPopulation(lower, upper []float64, dim int) [][]float64 {
	pop := make([][]float64, g.cfg.PopulationSize)
	for i := range pop {
		ind := make([]float64, dim)
		for j := 0; j < dim; j++ {
			ind[j] = lower[j] + g.rng.Float64()*(upper[j]-lower[j])
		}
		pop[i] = ind
	}
	if g.cfg.InitialGuess != nil {
		pop[0] = cloneVector(g.cfg.InitialGuess)
	}
	return pop
}

// selectTournament fills P output slots. For each slot, k candidate
// indices are drawn uniformly without replacement and the candidate with
// the lowest fitness wins. Draws are independent across slots, so the
// same individual may be selected repeatedly.
func (g *Genetic) selectTournament(pop [][]float64, fitness []float64) [][]float64 {
	k := g.cfg.TournamentSize
	selected := make([][]float64, len(pop))
	for s := range selected {
		winner := -1
		for _, idx := range g.rng.Perm(len(pop))[:k] {
			if winner == -1 || fitness[idx] < fitness[winner] {
				winner = idx
			}
		}
		selected[s] = pop[winner]
	}
	return selected
}

// recombine processes selected individuals in consecutive pairs. With
// probability CrossoverRate a pair undergoes single-point crossover at a
// uniform cut in [1, dim-1]; otherwise both parents pass through
// unchanged. Passing both parents through (rather than a single randomly
// chosen one) keeps the offspring count equal to the population size.
// An unpaired final individual is carried over unmodified. In one
// dimension no valid cut exists and pairs always pass through.
func (g *Genetic) recombine(selected [][]float64, dim int) [][]float64 {
	offspring := make([][]float64, 0, len(selected))
	for i := 0; i+1 < len(selected); i += 2 {
		a, b := selected[i], selected[i+1]
		if dim > 1 && g.rng.Float64() < g.cfg.CrossoverRate {
			cut := 1 + g.rng.Intn(dim-1)
			c1 := make([]float64, dim)
			c2 := make([]float64, dim)
			copy(c1, a[:cut])
			copy(c1[cut:], b[cut:])
			copy(c2, b[:cut])
			copy(c2[cut:], a[cut:])
			offspring = append(offspring, c1, c2)
		} else {
			offspring = append(offspring, cloneVector(a), cloneVector(b))
		}
	}
	if len(selected)%2 == 1 {
		offspring = append(offspring, cloneVector(selected[len(selected)-1]))
	}
	return offspring
}

// mutate perturbs each gene with probability MutationRate by a uniform
// draw from [-delta, delta], then clamps it back into the bounds.
func (g *Genetic) mutate(pop [][]float64, lower, upper []float64, dim int) {
	for _, ind := range pop {
		for j := 0; j < dim; j++ {
			if g.rng.Float64() < g.cfg.MutationRate {
				ind[j] += (g.rng.Float64()*2 - 1) * g.cfg.MutationDelta
				ind[j] = clamp(ind[j], lower[j], upper[j])
			}
		}
	}
}
