package hydrosphere

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// MaxChange is the largest absolute per-node difference between two profiles.
func MaxChange(current, previous Profile) float64 {
	return floats.Distance(current, previous, math.Inf(1))
}

// checkConvergence reports whether the step moved the profile by less than
// threshold. When it did not, the current profile becomes the reference for
// the next step.
func checkConvergence(st *State, threshold float64) (float64, bool) {
	change := MaxChange(st.Temperature, st.Previous)
	if change < threshold {
		return change, true
	}
	copy(st.Previous, st.Temperature)
	return change, false
}

func isFinite(p Profile) bool {
	for _, v := range p {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
