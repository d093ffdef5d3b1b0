package tsp

import "math/rand"

// Tour is a closed visiting order over city indices. The return leg from
// the last city back to the first is implicit.
type Tour []int

// Length sums the tour's edge distances, including the closing leg.
func (t Tour) Length(m [][]float64) float64 {
	var total float64
	for i := 0; i < len(t); i++ {
		from := t[i]
		to := t[(i+1)%len(t)]
		total += m[from][to]
	}
	return total
}

// Valid reports whether the tour is a permutation of 0..n-1.
func (t Tour) Valid(n int) bool {
	if len(t) != n {
		return false
	}
	seen := make([]bool, n)
	for _, c := range t {
		if c < 0 || c >= n || seen[c] {
			return false
		}
		seen[c] = true
	}
	return true
}

// Clone returns an independent copy of the tour.
func (t Tour) Clone() Tour {
	out := make(Tour, len(t))
	copy(out, t)
	return out
}

// RandomTour returns a uniformly random permutation of n cities.
func RandomTour(rng *rand.Rand, n int) Tour {
	return Tour(rng.Perm(n))
}
