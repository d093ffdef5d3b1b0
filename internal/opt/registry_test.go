package opt

import "testing"

func TestRegistryNames(t *testing.T) {
	names := Names()
	expected := map[string]bool{
		"genetic": false, "pso": false, "de": false, "gd": false, "mayfly": false,
	}
	for _, name := range names {
		if _, ok := expected[name]; !ok {
			t.Errorf("Unexpected optimizer name: %s", name)
		}
		expected[name] = true
	}
	for name, seen := range expected {
		if !seen {
			t.Errorf("Missing optimizer: %s", name)
		}
	}
}

func TestRegistryUnknownName(t *testing.T) {
	if _, err := New("annealing", Options{}); err == nil {
		t.Error("Expected error for unknown optimizer")
	}
}

func TestRegistryBuildsWorkingOptimizers(t *testing.T) {
	// mayfly is excluded here: it needs no local verification beyond its
	// adapter and would dominate the test's runtime.
	for _, name := range []string{"genetic", "pso", "de", "gd"} {
		t.Run(name, func(t *testing.T) {
			o, err := New(name, Options{
				PopulationSize: 20,
				Generations:    300,
				Seed:           42,
			})
			if err != nil {
				t.Fatalf("New(%s) failed: %v", name, err)
			}

			lower, upper := uniformBounds(2, -5, 5)
			result, err := o.Run(sphere, lower, upper, 2)
			if err != nil {
				t.Fatalf("Run failed: %v", err)
			}
			if result.BestCost > 1.0 {
				t.Errorf("%s barely improved on sphere: %g", name, result.BestCost)
			}
			if len(result.BestParams) != 2 {
				t.Errorf("Expected 2 parameters, got %d", len(result.BestParams))
			}
		})
	}
}

func TestRegistryInvalidOptions(t *testing.T) {
	if _, err := New("genetic", Options{PopulationSize: 1, Generations: 10}); err == nil {
		t.Error("Expected validation error to propagate through the registry")
	}
}

// Zero is a valid rate and must not be mistaken for an unset field.
func TestRegistryExplicitZeroRates(t *testing.T) {
	zero := 0.0
	o, err := New("genetic", Options{
		PopulationSize: 10,
		Generations:    5,
		MutationRate:   &zero,
		CrossoverRate:  &zero,
		Seed:           42,
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	g := o.(*Genetic)
	if g.cfg.MutationRate != 0 {
		t.Errorf("MutationRate = %g, want explicit 0", g.cfg.MutationRate)
	}
	if g.cfg.CrossoverRate != 0 {
		t.Errorf("CrossoverRate = %g, want explicit 0", g.cfg.CrossoverRate)
	}
}

func TestRegistryNilRatesUseDefaults(t *testing.T) {
	o, err := New("genetic", Options{PopulationSize: 10, Generations: 5, Seed: 42})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	g := o.(*Genetic)
	def := DefaultGeneticConfig()
	if g.cfg.MutationRate != def.MutationRate {
		t.Errorf("MutationRate = %g, want default %g", g.cfg.MutationRate, def.MutationRate)
	}
	if g.cfg.CrossoverRate != def.CrossoverRate {
		t.Errorf("CrossoverRate = %g, want default %g", g.cfg.CrossoverRate, def.CrossoverRate)
	}
}
