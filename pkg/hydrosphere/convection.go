package hydrosphere

// applyConvection homogenizes the column below every unstable liquid node.
// A node is unstable when the post-forcing gradient is negative there and it
// is above freezing. Candidates are fixed before any overwrite and processed
// in ascending order, each one copying its current value down to the base,
// so the deepest candidate decides the tail.
func applyConvection(t Profile, dTdz []float64) {
	unstable := unstableIndices(t, dTdz)
	for _, idx := range unstable {
		if idx == 0 {
			continue
		}
		v := t[idx]
		for j := idx; j < len(t); j++ {
			t[j] = v
		}
	}
}

func unstableIndices(t Profile, dTdz []float64) []int {
	var idx []int
	for i, g := range dTdz {
		if g < 0 && t[i] > FreezingPoint {
			idx = append(idx, i)
		}
	}
	return idx
}

func anyNegative(xs []float64) bool {
	for _, x := range xs {
		if x < 0 {
			return true
		}
	}
	return false
}
