package tsp

import (
	"fmt"
	"math"
	"math/rand"
)

// ACOConfig holds hyperparameters for the ant colony solver.
type ACOConfig struct {
	Ants        int
	Iterations  int
	Alpha       float64 // pheromone influence
	Beta        float64 // heuristic (inverse distance) influence
	Evaporation float64 // pheromone retention loss per iteration, in (0,1)
	Deposit     float64 // pheromone quantity Q spread along a tour
	Seed        int64
}

// DefaultACOConfig returns settings that perform well on instances of a
// few dozen cities.
func DefaultACOConfig() ACOConfig {
	return ACOConfig{
		Ants:        32,
		Iterations:  200,
		Alpha:       1.0,
		Beta:        3.0,
		Evaporation: 0.5,
		Deposit:     100,
		Seed:        42,
	}
}

// AntColony solves a symmetric TSP instance with the classic ant system:
// each ant builds a tour edge by edge, weighting choices by pheromone and
// inverse distance, and every tour deposits pheromone proportional to its
// quality.
type AntColony struct {
	cfg ACOConfig
	rng *rand.Rand
}

// NewAntColony validates the configuration and creates a solver.
func NewAntColony(cfg ACOConfig) (*AntColony, error) {
	if cfg.Ants < 1 {
		return nil, fmt.Errorf("ant count must be >= 1, got %d", cfg.Ants)
	}
	if cfg.Iterations < 1 {
		return nil, fmt.Errorf("iterations must be >= 1, got %d", cfg.Iterations)
	}
	if cfg.Evaporation <= 0 || cfg.Evaporation >= 1 {
		return nil, fmt.Errorf("evaporation must be in (0,1), got %f", cfg.Evaporation)
	}
	if cfg.Alpha < 0 || cfg.Beta < 0 {
		return nil, fmt.Errorf("alpha and beta must be non-negative, got %f/%f", cfg.Alpha, cfg.Beta)
	}
	return &AntColony{
		cfg: cfg,
		rng: rand.New(rand.NewSource(cfg.Seed)),
	}, nil
}

// Solve runs the colony over the distance matrix and returns the best
// tour, its length, and the best length per iteration.
func (a *AntColony) Solve(m [][]float64) (Tour, float64, []float64) {
	n := len(m)
	pheromone := make([][]float64, n)
	for i := range pheromone {
		pheromone[i] = make([]float64, n)
		for j := range pheromone[i] {
			pheromone[i][j] = 1.0
		}
	}

	var best Tour
	bestLen := math.Inf(1)
	history := make([]float64, 0, a.cfg.Iterations)

	for iter := 0; iter < a.cfg.Iterations; iter++ {
		tours := make([]Tour, a.cfg.Ants)
		lengths := make([]float64, a.cfg.Ants)

		for ant := 0; ant < a.cfg.Ants; ant++ {
			tours[ant] = a.buildTour(m, pheromone, n)
			lengths[ant] = tours[ant].Length(m)
			if lengths[ant] < bestLen {
				bestLen = lengths[ant]
				best = tours[ant].Clone()
			}
		}

		// Evaporate, then let every ant deposit along its tour.
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				pheromone[i][j] *= 1 - a.cfg.Evaporation
			}
		}
		for ant := 0; ant < a.cfg.Ants; ant++ {
			amount := a.cfg.Deposit / lengths[ant]
			t := tours[ant]
			for i := 0; i < n; i++ {
				from, to := t[i], t[(i+1)%n]
				pheromone[from][to] += amount
				pheromone[to][from] += amount
			}
		}

		history = append(history, bestLen)
	}

	return best, bestLen, history
}

// buildTour constructs one ant's tour with roulette-wheel selection over
// pheromone^alpha * (1/distance)^beta.
func (a *AntColony) buildTour(m, pheromone [][]float64, n int) Tour {
	tour := make(Tour, 0, n)
	visited := make([]bool, n)

	current := a.rng.Intn(n)
	tour = append(tour, current)
	visited[current] = true

	weights := make([]float64, n)
	for len(tour) < n {
		var total float64
		for next := 0; next < n; next++ {
			weights[next] = 0
			if visited[next] {
				continue
			}
			d := m[current][next]
			if d <= 0 {
				d = 1e-9
			}
			w := math.Pow(pheromone[current][next], a.cfg.Alpha) *
				math.Pow(1/d, a.cfg.Beta)
			weights[next] = w
			total += w
		}

		next := -1
		if total > 0 {
			pick := a.rng.Float64() * total
			for c := 0; c < n; c++ {
				if visited[c] {
					continue
				}
				pick -= weights[c]
				if pick <= 0 {
					next = c
					break
				}
			}
		}
		if next == -1 {
			// All weights underflowed; fall back to the first unvisited.
			for c := 0; c < n; c++ {
				if !visited[c] {
					next = c
					break
				}
			}
		}

		tour = append(tour, next)
		visited[next] = true
		current = next
	}

	return tour
}
