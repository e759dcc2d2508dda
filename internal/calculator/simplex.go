package calculator

import (
	"math"
	"sort"
)

// ProjectCappedSimplex returns the point of {x >= 0, sum(x) <= stakeCap} closest
// to v in Euclidean distance. v is not modified.
func ProjectCappedSimplex(v []float64, stakeCap float64) []float64 {
	out := make([]float64, len(v))
	if stakeCap <= 0 {
		return out
	}

	sum := 0.0
	for i, x := range v {
		if x > 0 {
			out[i] = x
			sum += x
		}
	}
	if sum <= stakeCap {
		return out
	}

	// The cap binds: project onto the face sum(x) = stakeCap.
	sorted := make([]float64, len(out))
	copy(sorted, out)
	sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))

	theta := 0.0
	prefix := 0.0
	for rho, u := range sorted {
		prefix += u
		t := (prefix - stakeCap) / float64(rho+1)
		if u-t > 0 {
			theta = t
		}
	}

	for i, x := range out {
		out[i] = max(x-theta, 0)
	}
	trimToCap(out, stakeCap)
	return out
}

// trimToCap removes floating-point overshoot so that the left-to-right
// sum of out never exceeds stakeCap. The excess is taken off the largest leg.
func trimToCap(out []float64, stakeCap float64) {
	for {
		total := 0.0
		largest := -1
		for i, x := range out {
			total += x
			if x > 0 && (largest < 0 || x > out[largest]) {
				largest = i
			}
		}
		if total <= stakeCap || largest < 0 {
			return
		}
		next := max(out[largest]-(total-stakeCap), 0)
		if next == out[largest] {
			next = math.Nextafter(next, 0)
		}
		out[largest] = next
	}
}
