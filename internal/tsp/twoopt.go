package tsp

// TwoOpt improves a tour by repeatedly reversing segments whose endpoints
// form crossing edges, until no reversal shortens the tour. The input is
// not modified.
func TwoOpt(t Tour, m [][]float64) Tour {
	best := t.Clone()
	n := len(best)
	if n < 4 {
		return best
	}

	improved := true
	for improved {
		improved = false
		for i := 0; i < n-1; i++ {
			for j := i + 2; j < n; j++ {
				// Reversing best[i+1..j] replaces edges (i,i+1) and
				// (j,j+1) with (i,j) and (i+1,j+1).
				a, b := best[i], best[i+1]
				c, d := best[j], best[(j+1)%n]
				if a == d {
					continue // same edge on a closed tour
				}
				delta := m[a][c] + m[b][d] - m[a][b] - m[c][d]
				if delta < -1e-10 {
					reverse(best, i+1, j)
					improved = true
				}
			}
		}
	}
	return best
}

func reverse(t Tour, i, j int) {
	for i < j {
		t[i], t[j] = t[j], t[i]
		i++
		j--
	}
}
