package opt

import (
	"fmt"
	"math"
	"math/rand"
)

// GDConfig holds hyperparameters for numeric gradient descent.
type GDConfig struct {
	Iterations   int
	LearningRate float64
	Step         float64 // finite-difference step
	Seed         int64
}

// DefaultGDConfig returns conservative defaults for the bundled benchmarks.
func DefaultGDConfig() GDConfig {
	return GDConfig{
		Iterations:   500,
		LearningRate: 0.01,
		Step:         1e-6,
		Seed:         42,
	}
}

// GradientDescent minimizes a black-box objective by following a
// central-difference estimate of the gradient from a random start within
// the bounds. Iterates are clamped back into the feasible box.
type GradientDescent struct {
	cfg GDConfig
	rng *rand.Rand
}

// NewGradientDescent validates the configuration and creates an optimizer.
func NewGradientDescent(cfg GDConfig) (*GradientDescent, error) {
	if cfg.Iterations < 1 {
		return nil, fmt.Errorf("iterations must be >= 1, got %d", cfg.Iterations)
	}
	if cfg.LearningRate <= 0 {
		return nil, fmt.Errorf("learning rate must be positive, got %f", cfg.LearningRate)
	}
	if cfg.Step <= 0 {
		return nil, fmt.Errorf("finite-difference step must be positive, got %f", cfg.Step)
	}
	return &GradientDescent{
		cfg: cfg,
		rng: rand.New(rand.NewSource(cfg.Seed)),
	}, nil
}

// Run descends for the configured number of iterations.
func (g *GradientDescent) Run(eval func([]float64) float64, lower, upper []float64, dim int) (*Result, error) {
	if err := checkBounds(lower, upper, dim); err != nil {
		return nil, err
	}

	x := make([]float64, dim)
	for j := 0; j < dim; j++ {
		x[j] = lower[j] + g.rng.Float64()*(upper[j]-lower[j])
	}

	evals := 0
	cost := eval(x)
	evals++

	best := cloneVector(x)
	bestCost := cost
	initialCost := cost

	grad := make([]float64, dim)
	probe := make([]float64, dim)
	trajectory := make([]Point, 0, g.cfg.Iterations)

	for iter := 0; iter < g.cfg.Iterations; iter++ {
		copy(probe, x)
		for j := 0; j < dim; j++ {
			probe[j] = x[j] + g.cfg.Step
			fp := eval(probe)
			probe[j] = x[j] - g.cfg.Step
			fm := eval(probe)
			probe[j] = x[j]
			evals += 2
			grad[j] = (fp - fm) / (2 * g.cfg.Step)
		}

		for j := 0; j < dim; j++ {
			x[j] = clamp(x[j]-g.cfg.LearningRate*grad[j], lower[j], upper[j])
		}

		cost = eval(x)
		evals++
		if cost < bestCost {
			bestCost = cost
			copy(best, x)
		}

		trajectory = append(trajectory, Point{
			Generation: iter,
			BestCost:   bestCost,
		})

		if math.IsNaN(cost) || math.IsInf(cost, 0) {
			break
		}
	}

	return &Result{
		BestParams:  best,
		BestCost:    bestCost,
		InitialCost: initialCost,
		Evaluations: evals,
		Trajectory:  trajectory,
	}, nil
}
