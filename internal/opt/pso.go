package opt

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/stat"
)

// PSOConfig holds hyperparameters for particle swarm optimization.
type PSOConfig struct {
	Particles  int
	Iterations int
	Inertia    float64
	Cognitive  float64
	Social     float64
	Seed       int64
}

// DefaultPSOConfig returns the constriction-style coefficients commonly
// used for the standard PSO.
func DefaultPSOConfig() PSOConfig {
	return PSOConfig{
		Particles:  30,
		Iterations: 100,
		Inertia:    0.729,
		Cognitive:  1.49445,
		Social:     1.49445,
		Seed:       42,
	}
}

// ParticleSwarm moves a swarm of particles through the search space,
// each attracted to its own best position and the swarm's best position.
type ParticleSwarm struct {
	cfg PSOConfig
	rng *rand.Rand
}

// NewParticleSwarm validates the configuration and creates a PSO optimizer.
func NewParticleSwarm(cfg PSOConfig) (*ParticleSwarm, error) {
	if cfg.Particles < 2 {
		return nil, fmt.Errorf("particle count must be >= 2, got %d", cfg.Particles)
	}
	if cfg.Iterations < 1 {
		return nil, fmt.Errorf("iterations must be >= 1, got %d", cfg.Iterations)
	}
	return &ParticleSwarm{
		cfg: cfg,
		rng: rand.New(rand.NewSource(cfg.Seed)),
	}, nil
}

// Run executes the swarm for the configured number of iterations.
func (p *ParticleSwarm) Run(eval func([]float64) float64, lower, upper []float64, dim int) (*Result, error) {
	if err := checkBounds(lower, upper, dim); err != nil {
		return nil, err
	}

	n := p.cfg.Particles
	pos := make([][]float64, n)
	vel := make([][]float64, n)
	pbest := make([][]float64, n)
	pbestCost := make([]float64, n)
	costs := make([]float64, n)

	var gbest []float64
	gbestCost := math.Inf(1)
	evals := 0

	// Velocities start within a tenth of the per-dimension range.
	for i := 0; i < n; i++ {
		pos[i] = make([]float64, dim)
		vel[i] = make([]float64, dim)
		for j := 0; j < dim; j++ {
			span := upper[j] - lower[j]
			pos[i][j] = lower[j] + p.rng.Float64()*span
			vel[i][j] = (p.rng.Float64()*2 - 1) * span * 0.1
		}
		pbest[i] = cloneVector(pos[i])
		pbestCost[i] = eval(pos[i])
		costs[i] = pbestCost[i]
		evals++
		if pbestCost[i] < gbestCost {
			gbestCost = pbestCost[i]
			gbest = cloneVector(pos[i])
		}
	}
	initialCost := gbestCost

	trajectory := make([]Point, 0, p.cfg.Iterations)
	for iter := 0; iter < p.cfg.Iterations; iter++ {
		for i := 0; i < n; i++ {
			for j := 0; j < dim; j++ {
				span := upper[j] - lower[j]
				r1, r2 := p.rng.Float64(), p.rng.Float64()
				vel[i][j] = p.cfg.Inertia*vel[i][j] +
					p.cfg.Cognitive*r1*(pbest[i][j]-pos[i][j]) +
					p.cfg.Social*r2*(gbest[j]-pos[i][j])
				vel[i][j] = clamp(vel[i][j], -span, span)
				pos[i][j] = clamp(pos[i][j]+vel[i][j], lower[j], upper[j])
			}

			costs[i] = eval(pos[i])
			evals++
			if costs[i] < pbestCost[i] {
				pbestCost[i] = costs[i]
				copy(pbest[i], pos[i])
			}
			if costs[i] < gbestCost {
				gbestCost = costs[i]
				gbest = cloneVector(pos[i])
			}
		}

		trajectory = append(trajectory, Point{
			Generation: iter,
			BestCost:   gbestCost,
			MeanCost:   stat.Mean(costs, nil),
		})
	}

	return &Result{
		BestParams:  gbest,
		BestCost:    gbestCost,
		InitialCost: initialCost,
		Evaluations: evals,
		Trajectory:  trajectory,
	}, nil
}
