package opt

import "testing"

func TestGDConvergesOnSphere(t *testing.T) {
	cfg := DefaultGDConfig()
	cfg.LearningRate = 0.1
	cfg.Seed = 42

	g, err := NewGradientDescent(cfg)
	if err != nil {
		t.Fatalf("NewGradientDescent failed: %v", err)
	}

	lower, upper := uniformBounds(2, -5, 5)
	result, err := g.Run(sphere, lower, upper, 2)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.BestCost > 1e-6 {
		t.Errorf("Expected near-zero cost on a convex objective, got %g", result.BestCost)
	}
}

func TestGDIteratesStayInBounds(t *testing.T) {
	cfg := DefaultGDConfig()
	cfg.Iterations = 50
	cfg.LearningRate = 10 // overshoots on purpose
	cfg.Seed = 3

	g, err := NewGradientDescent(cfg)
	if err != nil {
		t.Fatalf("NewGradientDescent failed: %v", err)
	}

	lower, upper := uniformBounds(2, -1, 1)
	// The finite-difference probes step just beyond the box by cfg.Step.
	slack := cfg.Step * 2
	checked := func(x []float64) float64 {
		for j, v := range x {
			if v < lower[j]-slack || v > upper[j]+slack {
				t.Fatalf("Iterate escaped bounds: x[%d] = %f", j, v)
			}
		}
		return sphere(x)
	}

	if _, err := g.Run(checked, lower, upper, 2); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
}

func TestGDBestIsMonotonic(t *testing.T) {
	g, err := NewGradientDescent(DefaultGDConfig())
	if err != nil {
		t.Fatalf("NewGradientDescent failed: %v", err)
	}

	lower, upper := uniformBounds(2, -5, 5)
	result, err := g.Run(sphere, lower, upper, 2)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	for i := 1; i < len(result.Trajectory); i++ {
		if result.Trajectory[i].BestCost > result.Trajectory[i-1].BestCost {
			t.Errorf("Best cost increased at iteration %d", i)
		}
	}
}

func TestNewGradientDescentValidation(t *testing.T) {
	cfg := DefaultGDConfig()
	cfg.LearningRate = 0
	if _, err := NewGradientDescent(cfg); err == nil {
		t.Error("Expected error for zero learning rate")
	}

	cfg = DefaultGDConfig()
	cfg.Step = -1
	if _, err := NewGradientDescent(cfg); err == nil {
		t.Error("Expected error for negative step")
	}
}
