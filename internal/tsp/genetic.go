package tsp

import (
	"fmt"
	"math"
	"math/rand"
)

// GAConfig holds hyperparameters for the genetic TSP solver.
type GAConfig struct {
	PopulationSize int
	Generations    int
	MutationRate   float64 // per-individual swap mutation probability
	TournamentSize int
	Elite          int // best tours copied unchanged into the next generation
	Seed           int64
}

// DefaultGAConfig returns settings that perform well on instances of a
// few dozen cities.
func DefaultGAConfig() GAConfig {
	return GAConfig{
		PopulationSize: 100,
		Generations:    500,
		MutationRate:   0.2,
		TournamentSize: 5,
		Elite:          2,
		Seed:           42,
	}
}

// Genetic solves a symmetric TSP instance with order crossover (OX1),
// swap mutation, and tournament selection. Unlike the continuous genetic
// optimizer, the permutation GA carries its elite unchanged between
// generations, as is conventional for combinatorial encodings.
type Genetic struct {
	cfg GAConfig
	rng *rand.Rand
}

// NewGenetic validates the configuration and creates a solver.
func NewGenetic(cfg GAConfig) (*Genetic, error) {
	if cfg.PopulationSize < 2 {
		return nil, fmt.Errorf("population size must be >= 2, got %d", cfg.PopulationSize)
	}
	if cfg.Generations < 1 {
		return nil, fmt.Errorf("generations must be >= 1, got %d", cfg.Generations)
	}
	if cfg.MutationRate < 0 || cfg.MutationRate > 1 {
		return nil, fmt.Errorf("mutation rate must be in [0,1], got %f", cfg.MutationRate)
	}
	if cfg.TournamentSize < 1 || cfg.TournamentSize > cfg.PopulationSize {
		return nil, fmt.Errorf("tournament size must be in [1, population size], got %d", cfg.TournamentSize)
	}
	if cfg.Elite < 0 || cfg.Elite >= cfg.PopulationSize {
		return nil, fmt.Errorf("elite count must be in [0, population size), got %d", cfg.Elite)
	}
	return &Genetic{
		cfg: cfg,
		rng: rand.New(rand.NewSource(cfg.Seed)),
	}, nil
}

// Solve runs the GA over the distance matrix and returns the best tour,
// its length, and the best length per generation.
func (g *Genetic) Solve(m [][]float64) (Tour, float64, []float64) {
	n := len(m)
	pop := make([]Tour, g.cfg.PopulationSize)
	lengths := make([]float64, g.cfg.PopulationSize)
	for i := range pop {
		pop[i] = RandomTour(g.rng, n)
	}

	var best Tour
	bestLen := math.Inf(1)
	history := make([]float64, 0, g.cfg.Generations)

	for gen := 0; gen < g.cfg.Generations; gen++ {
		for i, t := range pop {
			lengths[i] = t.Length(m)
			if lengths[i] < bestLen {
				bestLen = lengths[i]
				best = t.Clone()
			}
		}
		history = append(history, bestLen)

		next := make([]Tour, 0, g.cfg.PopulationSize)
		for _, idx := range g.eliteIndices(lengths) {
			next = append(next, pop[idx].Clone())
		}
		for len(next) < g.cfg.PopulationSize {
			p1 := pop[g.tournament(lengths)]
			p2 := pop[g.tournament(lengths)]
			child := g.orderCrossover(p1, p2)
			if g.rng.Float64() < g.cfg.MutationRate {
				g.swapMutate(child)
			}
			next = append(next, child)
		}
		pop = next
	}

	return best, bestLen, history
}

// tournament returns the index of the shortest tour among k random picks.
func (g *Genetic) tournament(lengths []float64) int {
	winner := g.rng.Intn(len(lengths))
	for i := 1; i < g.cfg.TournamentSize; i++ {
		c := g.rng.Intn(len(lengths))
		if lengths[c] < lengths[winner] {
			winner = c
		}
	}
	return winner
}

// eliteIndices returns the indices of the Elite shortest tours.
func (g *Genetic) eliteIndices(lengths []float64) []int {
	elite := make([]int, 0, g.cfg.Elite)
	taken := make([]bool, len(lengths))
	for e := 0; e < g.cfg.Elite; e++ {
		bestIdx := -1
		for i, l := range lengths {
			if taken[i] {
				continue
			}
			if bestIdx == -1 || l < lengths[bestIdx] {
				bestIdx = i
			}
		}
		taken[bestIdx] = true
		elite = append(elite, bestIdx)
	}
	return elite
}

// orderCrossover implements OX1: a random slice of the first parent is
// copied verbatim, and the remaining cities fill in following the second
// parent's order.
func (g *Genetic) orderCrossover(p1, p2 Tour) Tour {
	n := len(p1)
	child := make(Tour, n)
	for i := range child {
		child[i] = -1
	}

	start := g.rng.Intn(n)
	end := g.rng.Intn(n)
	if start > end {
		start, end = end, start
	}

	used := make([]bool, n)
	for i := start; i <= end; i++ {
		child[i] = p1[i]
		used[p1[i]] = true
	}

	pos := (end + 1) % n
	for i := 0; i < n; i++ {
		c := p2[(end+1+i)%n]
		if used[c] {
			continue
		}
		child[pos] = c
		used[c] = true
		pos = (pos + 1) % n
	}
	return child
}

// swapMutate exchanges two random positions in place.
func (g *Genetic) swapMutate(t Tour) {
	i := g.rng.Intn(len(t))
	j := g.rng.Intn(len(t))
	t[i], t[j] = t[j], t[i]
}
