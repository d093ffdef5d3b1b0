package opt

import (
	"fmt"
	"sort"
)

// Options carries the hyperparameters shared across optimizer
// constructors. Zero counts fall back to each algorithm's defaults.
// The rate fields are pointers because zero is a valid rate: nil means
// unset, a non-nil zero is honored as given.
type Options struct {
	PopulationSize int
	Generations    int
	MutationRate   *float64
	CrossoverRate  *float64
	MutationDelta  *float64
	Seed           int64
	InitialGuess   []float64
}

type factory func(Options) (Optimizer, error)

var factories = map[string]factory{
	"genetic": newGeneticFromOptions,
	"pso":     newPSOFromOptions,
	"de":      newDEFromOptions,
	"gd":      newGDFromOptions,
	"mayfly":  newMayflyFromOptions,
}

// New builds the named optimizer from the given options.
func New(name string, o Options) (Optimizer, error) {
	f, ok := factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown optimizer: %s", name)
	}
	return f(o)
}

// Names returns the registered optimizer names in sorted order.
func Names() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func newGeneticFromOptions(o Options) (Optimizer, error) {
	cfg := DefaultGeneticConfig()
	if o.PopulationSize > 0 {
		cfg.PopulationSize = o.PopulationSize
	}
	if o.Generations > 0 {
		cfg.Generations = o.Generations
	}
	if o.MutationRate != nil {
		cfg.MutationRate = *o.MutationRate
	}
	if o.CrossoverRate != nil {
		cfg.CrossoverRate = *o.CrossoverRate
	}
	if o.MutationDelta != nil {
		cfg.MutationDelta = *o.MutationDelta
	}
	cfg.Seed = o.Seed
	cfg.InitialGuess = o.InitialGuess
	return NewGenetic(cfg)
}

func newPSOFromOptions(o Options) (Optimizer, error) {
	cfg := DefaultPSOConfig()
	if o.PopulationSize > 0 {
		cfg.Particles = o.PopulationSize
	}
	if o.Generations > 0 {
		cfg.Iterations = o.Generations
	}
	cfg.Seed = o.Seed
	return NewParticleSwarm(cfg)
}

func newDEFromOptions(o Options) (Optimizer, error) {
	cfg := DefaultDEConfig()
	if o.PopulationSize > 0 {
		cfg.PopulationSize = o.PopulationSize
	}
	if o.Generations > 0 {
		cfg.Generations = o.Generations
	}
	if o.CrossoverRate != nil {
		cfg.CrossoverProb = *o.CrossoverRate
	}
	cfg.Seed = o.Seed
	return NewDifferentialEvolution(cfg)
}

func newGDFromOptions(o Options) (Optimizer, error) {
	cfg := DefaultGDConfig()
	if o.Generations > 0 {
		cfg.Iterations = o.Generations
	}
	cfg.Seed = o.Seed
	return NewGradientDescent(cfg)
}

func newMayflyFromOptions(o Options) (Optimizer, error) {
	iters, pop := 100, 30
	if o.Generations > 0 {
		iters = o.Generations
	}
	if o.PopulationSize > 0 {
		pop = o.PopulationSize
	}
	// The mayfly library requires at least 20 individuals.
	if pop < 20 {
		pop = 20
	}
	return NewMayfly(iters, pop, o.Seed), nil
}
