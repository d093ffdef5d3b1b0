package opt

import (
	"fmt"
	"math/rand"

	"github.com/cwbudde/mayfly"
)

// MayflyAdapter wraps the external mayfly library to conform to the
// Optimizer interface. The library reports only its global best, so the
// result carries an empty trajectory.
type MayflyAdapter struct {
	maxIters int
	popSize  int
	seed     int64
}

// NewMayfly creates a mayfly optimizer adapter.
func NewMayfly(maxIters, popSize int, seed int64) *MayflyAdapter {
	return &MayflyAdapter{
		maxIters: maxIters,
		popSize:  popSize,
		seed:     seed,
	}
}

// Run executes the mayfly optimization using the external library.
// The library accepts scalar bounds shared by all dimensions, matching
// the uniform bounds used throughout this package.
func (m *MayflyAdapter) Run(eval func([]float64) float64, lower, upper []float64, dim int) (*Result, error) {
	if err := checkBounds(lower, upper, dim); err != nil {
		return nil, err
	}

	config := mayfly.NewDefaultConfig()
	config.ObjectiveFunc = eval
	config.ProblemSize = dim
	config.MaxIterations = m.maxIters
	config.NPop = m.popSize
	config.LowerBound = lower[0]
	config.UpperBound = upper[0]
	config.Rand = rand.New(rand.NewSource(m.seed))

	result, err := mayfly.Optimize(config)
	if err != nil {
		return nil, fmt.Errorf("mayfly optimization failed: %w", err)
	}

	return &Result{
		BestParams:  result.GlobalBest.Position,
		BestCost:    result.GlobalBest.Cost,
		InitialCost: result.GlobalBest.Cost,
		Evaluations: m.maxIters * m.popSize,
	}, nil
}
