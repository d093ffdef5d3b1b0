package opt

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/stat"
)

// DEConfig holds hyperparameters for differential evolution.
type DEConfig struct {
	PopulationSize int
	Generations    int
	Weight         float64 // differential weight F
	CrossoverProb  float64 // crossover probability CR
	Seed           int64
}

// DefaultDEConfig returns the classic DE/rand/1/bin settings.
func DefaultDEConfig() DEConfig {
	return DEConfig{
		PopulationSize: 30,
		Generations:    100,
		Weight:         0.8,
		CrossoverProb:  0.9,
		Seed:           42,
	}
}

// DifferentialEvolution implements the DE/rand/1/bin scheme: each
// individual is challenged by a trial vector built from three distinct
// peers, and the better of the two survives.
type DifferentialEvolution struct {
	cfg DEConfig
	rng *rand.Rand
}

// NewDifferentialEvolution validates the configuration and creates a DE
// optimizer.
func NewDifferentialEvolution(cfg DEConfig) (*DifferentialEvolution, error) {
	if cfg.PopulationSize < 4 {
		return nil, fmt.Errorf("population size must be >= 4 for DE/rand/1, got %d", cfg.PopulationSize)
	}
	if cfg.Generations < 1 {
		return nil, fmt.Errorf("generations must be >= 1, got %d", cfg.Generations)
	}
	if cfg.Weight <= 0 || cfg.Weight > 2 {
		return nil, fmt.Errorf("differential weight must be in (0,2], got %f", cfg.Weight)
	}
	if cfg.CrossoverProb < 0 || cfg.CrossoverProb > 1 {
		return nil, fmt.Errorf("crossover probability must be in [0,1], got %f", cfg.CrossoverProb)
	}
	return &DifferentialEvolution{
		cfg: cfg,
		rng: rand.New(rand.NewSource(cfg.Seed)),
	}, nil
}

// Run executes the evolution for the configured number of generations.
func (d *DifferentialEvolution) Run(eval func([]float64) float64, lower, upper []float64, dim int) (*Result, error) {
	if err := checkBounds(lower, upper, dim); err != nil {
		return nil, err
	}

	n := d.cfg.PopulationSize
	pop := make([][]float64, n)
	fitness := make([]float64, n)
	evals := 0

	var best []float64
	bestCost := math.Inf(1)

	for i := 0; i < n; i++ {
		pop[i] = make([]float64, dim)
		for j := 0; j < dim; j++ {
			pop[i][j] = lower[j] + d.rng.Float64()*(upper[j]-lower[j])
		}
		fitness[i] = eval(pop[i])
		evals++
		if fitness[i] < bestCost {
			bestCost = fitness[i]
			best = cloneVector(pop[i])
		}
	}
	initialCost := bestCost

	trial := make([]float64, dim)
	trajectory := make([]Point, 0, d.cfg.Generations)

	for gen := 0; gen < d.cfg.Generations; gen++ {
		for i := 0; i < n; i++ {
			a, b, c := d.pickThree(i, n)

			// Binomial crossover with a guaranteed mutant gene at jrand.
			jrand := d.rng.Intn(dim)
			for j := 0; j < dim; j++ {
				if j == jrand || d.rng.Float64() < d.cfg.CrossoverProb {
					trial[j] = pop[a][j] + d.cfg.Weight*(pop[b][j]-pop[c][j])
					trial[j] = clamp(trial[j], lower[j], upper[j])
				} else {
					trial[j] = pop[i][j]
				}
			}

			cost := eval(trial)
			evals++
			if cost <= fitness[i] {
				copy(pop[i], trial)
				fitness[i] = cost
				if cost < bestCost {
					bestCost = cost
					best = cloneVector(trial)
				}
			}
		}

		trajectory = append(trajectory, Point{
			Generation: gen,
			BestCost:   bestCost,
			MeanCost:   stat.Mean(fitness, nil),
		})
	}

	return &Result{
		BestParams:  best,
		BestCost:    bestCost,
		InitialCost: initialCost,
		Evaluations: evals,
		Trajectory:  trajectory,
	}, nil
}

// pickThree draws three distinct indices, all different from i.
func (d *DifferentialEvolution) pickThree(i, n int) (int, int, int) {
	idx := make([]int, 0, 3)
	for len(idx) < 3 {
		candidate := d.rng.Intn(n)
		if candidate == i {
			continue
		}
		dup := false
		for _, existing := range idx {
			if existing == candidate {
				dup = true
				break
			}
		}
		if !dup {
			idx = append(idx, candidate)
		}
	}
	return idx[0], idx[1], idx[2]
}
