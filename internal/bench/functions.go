package bench

import (
	"fmt"
	"math"
	"sort"
)

// Func is a scalar objective over a real-valued point.
// Implementations are pure and accept rank-1 input only.
type Func func(x []float64) float64

// Benchmark describes a named objective together with its canonical search
// domain. Lower and Upper are scalar bounds applied uniformly to every
// dimension. Dims is 0 for functions defined in any dimension.
type Benchmark struct {
	Name     string
	Func     Func
	Lower    float64
	Upper    float64
	Dims     int
	MinValue float64
	MinAt    []float64 // known minimizer, per-dimension for fixed-dim functions
}

// Validate checks that the benchmark can be evaluated in dim dimensions.
func (b Benchmark) Validate(dim int) error {
	if dim < 1 {
		return fmt.Errorf("dimensions must be >= 1, got %d", dim)
	}
	if b.Dims != 0 && dim != b.Dims {
		return fmt.Errorf("%s is defined for %d dimensions, got %d", b.Name, b.Dims, dim)
	}
	return nil
}

// BoundsFor expands the scalar domain bounds into per-dimension slices.
func (b Benchmark) BoundsFor(dim int) (lower, upper []float64) {
	lower = make([]float64, dim)
	upper = make([]float64, dim)
	for i := 0; i < dim; i++ {
		lower[i] = b.Lower
		upper[i] = b.Upper
	}
	return lower, upper
}

// Sphere is the convex quadratic sum of squares, minimum 0 at the origin.
func Sphere(x []float64) float64 {
	var sum float64
	for _, v := range x {
		sum += v * v
	}
	return sum
}

// Rosenbrock is the banana-valley function, minimum 0 at (1, ..., 1).
func Rosenbrock(x []float64) float64 {
	var sum float64
	for i := 0; i < len(x)-1; i++ {
		a := x[i+1] - x[i]*x[i]
		b := 1 - x[i]
		sum += 100*a*a + b*b
	}
	return sum
}

// Rastrigin is highly multimodal with a regular grid of local minima,
// global minimum 0 at the origin.
func Rastrigin(x []float64) float64 {
	sum := 10 * float64(len(x))
	for _, v := range x {
		sum += v*v - 10*math.Cos(2*math.Pi*v)
	}
	return sum
}

// Schwefel places its global minimum far from the origin, near
// (420.9687, ..., 420.9687), which defeats origin-biased searches.
func Schwefel(x []float64) float64 {
	sum := 418.9829 * float64(len(x))
	for _, v := range x {
		sum -= v * math.Sin(math.Sqrt(math.Abs(v)))
	}
	return sum
}

// Griewank combines a quadratic bowl with an oscillatory product term,
// global minimum 0 at the origin.
func Griewank(x []float64) float64 {
	var sum float64
	prod := 1.0
	for i, v := range x {
		sum += v * v / 4000
		prod *= math.Cos(v / math.Sqrt(float64(i+1)))
	}
	return 1 + sum - prod
}

// GoldsteinPrice is a 2-D test function with global minimum 3 at (0, -1).
func GoldsteinPrice(x []float64) float64 {
	a, b := x[0], x[1]
	t1 := 1 + (a+b+1)*(a+b+1)*(19-14*a+3*a*a-14*b+6*a*b+3*b*b)
	t2 := 30 + (2*a-3*b)*(2*a-3*b)*(18-32*a+12*a*a+48*b-36*a*b+27*b*b)
	return t1 * t2
}

// SixHumpCamel is a 2-D function with six local minima, two of them global
// at approximately (0.0898, -0.7126) and (-0.0898, 0.7126), value -1.0316.
func SixHumpCamel(x []float64) float64 {
	a, b := x[0], x[1]
	return (4-2.1*a*a+a*a*a*a/3)*a*a + a*b + (-4+4*b*b)*b*b
}

// Ackley is nearly flat at its outer region with a deep central well,
// global minimum 0 at the origin.
func Ackley(x []float64) float64 {
	n := float64(len(x))
	var sumSq, sumCos float64
	for _, v := range x {
		sumSq += v * v
		sumCos += math.Cos(2 * math.Pi * v)
	}
	return -20*math.Exp(-0.2*math.Sqrt(sumSq/n)) - math.Exp(sumCos/n) + 20 + math.E
}

var registry = map[string]Benchmark{
	"sphere": {
		Name: "sphere", Func: Sphere,
		Lower: -5.12, Upper: 5.12,
		MinValue: 0,
	},
	"rosenbrock": {
		Name: "rosenbrock", Func: Rosenbrock,
		Lower: -2.048, Upper: 2.048,
		MinValue: 0,
	},
	"rastrigin": {
		Name: "rastrigin", Func: Rastrigin,
		Lower: -5.12, Upper: 5.12,
		MinValue: 0,
	},
	"schwefel": {
		Name: "schwefel", Func: Schwefel,
		Lower: -500, Upper: 500,
		MinValue: 0,
	},
	"griewank": {
		Name: "griewank", Func: Griewank,
		Lower: -600, Upper: 600,
		MinValue: 0,
	},
	"goldstein-price": {
		Name: "goldstein-price", Func: GoldsteinPrice,
		Lower: -2, Upper: 2, Dims: 2,
		MinValue: 3, MinAt: []float64{0, -1},
	},
	"six-hump-camel": {
		Name: "six-hump-camel", Func: SixHumpCamel,
		Lower: -2, Upper: 2, Dims: 2,
		MinValue: -1.031628, MinAt: []float64{0.0898, -0.7126},
	},
	"ackley": {
		Name: "ackley", Func: Ackley,
		Lower: -32.768, Upper: 32.768,
		MinValue: 0,
	},
}

// Lookup returns the benchmark registered under the given name.
func Lookup(name string) (Benchmark, error) {
	b, ok := registry[name]
	if !ok {
		return Benchmark{}, fmt.Errorf("unknown benchmark function: %s", name)
	}
	return b, nil
}

// Names returns the registered benchmark names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
