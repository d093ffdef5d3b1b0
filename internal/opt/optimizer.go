package opt

import "fmt"

// Point is one trajectory sample: the best cost found up to and including
// a generation, together with the generation's mean population cost.
type Point struct {
	Generation int     `json:"generation"`
	BestCost   float64 `json:"bestCost"`
	MeanCost   float64 `json:"meanCost,omitempty"`
}

// Result holds the output of an optimization run.
type Result struct {
	BestParams  []float64
	BestCost    float64
	InitialCost float64
	Evaluations int
	Trajectory  []Point
}

// Optimizer defines an optimization algorithm interface
type Optimizer interface {
	// Run executes the optimization
	// eval: objective function to minimize
	// lower, upper: parameter bounds
	// dim: dimensionality of parameter space
	Run(eval func([]float64) float64, lower, upper []float64, dim int) (*Result, error)
}

func clamp(val, lo, hi float64) float64 {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}

func checkBounds(lower, upper []float64, dim int) error {
	if dim < 1 {
		return fmt.Errorf("dimensions must be >= 1, got %d", dim)
	}
	if len(lower) < dim || len(upper) < dim {
		return fmt.Errorf("bounds length %d/%d does not cover %d dimensions", len(lower), len(upper), dim)
	}
	for i := 0; i < dim; i++ {
		if lower[i] >= upper[i] {
			return fmt.Errorf("lower bound must be below upper bound in dimension %d: [%f, %f]", i, lower[i], upper[i])
		}
	}
	return nil
}

func cloneVector(v []float64) []float64 {
	out := make([]float64, len(v))
	copy(out, v)
	return out
}
