package opt

import "testing"

func TestDEConvergesOnSphere(t *testing.T) {
	cfg := DefaultDEConfig()
	cfg.Seed = 42

	d, err := NewDifferentialEvolution(cfg)
	if err != nil {
		t.Fatalf("NewDifferentialEvolution failed: %v", err)
	}

	lower, upper := uniformBounds(3, -10, 10)
	result, err := d.Run(sphere, lower, upper, 3)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.BestCost > 1e-3 {
		t.Errorf("Expected cost near 0, got %g", result.BestCost)
	}
}

func TestDEConvergesOnRosenbrock(t *testing.T) {
	cfg := DefaultDEConfig()
	cfg.Generations = 400
	cfg.Seed = 42

	d, err := NewDifferentialEvolution(cfg)
	if err != nil {
		t.Fatalf("NewDifferentialEvolution failed: %v", err)
	}

	rosenbrock := func(x []float64) float64 {
		a := x[1] - x[0]*x[0]
		b := 1 - x[0]
		return 100*a*a + b*b
	}

	lower, upper := uniformBounds(2, -2.048, 2.048)
	result, err := d.Run(rosenbrock, lower, upper, 2)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.BestCost > 1e-2 {
		t.Errorf("Expected near-zero Rosenbrock cost, got %g", result.BestCost)
	}
}

func TestDETrajectoryMonotonic(t *testing.T) {
	d, err := NewDifferentialEvolution(DefaultDEConfig())
	if err != nil {
		t.Fatalf("NewDifferentialEvolution failed: %v", err)
	}

	lower, upper := uniformBounds(2, -5, 5)
	result, err := d.Run(sphere, lower, upper, 2)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	for i := 1; i < len(result.Trajectory); i++ {
		if result.Trajectory[i].BestCost > result.Trajectory[i-1].BestCost {
			t.Errorf("Best cost increased at generation %d", i)
		}
	}
}

func TestDEPickThreeDistinct(t *testing.T) {
	d, err := NewDifferentialEvolution(DefaultDEConfig())
	if err != nil {
		t.Fatalf("NewDifferentialEvolution failed: %v", err)
	}

	for trial := 0; trial < 1000; trial++ {
		i := trial % 5
		a, b, c := d.pickThree(i, 5)
		if a == i || b == i || c == i {
			t.Fatalf("pickThree returned the excluded index %d", i)
		}
		if a == b || b == c || a == c {
			t.Fatalf("pickThree returned duplicates: %d %d %d", a, b, c)
		}
	}
}

func TestNewDifferentialEvolutionValidation(t *testing.T) {
	cfg := DefaultDEConfig()
	cfg.PopulationSize = 3
	if _, err := NewDifferentialEvolution(cfg); err == nil {
		t.Error("Expected error for population below 4")
	}

	cfg = DefaultDEConfig()
	cfg.Weight = 0
	if _, err := NewDifferentialEvolution(cfg); err == nil {
		t.Error("Expected error for zero weight")
	}

	cfg = DefaultDEConfig()
	cfg.CrossoverProb = 1.2
	if _, err := NewDifferentialEvolution(cfg); err == nil {
		t.Error("Expected error for crossover probability above 1")
	}
}
