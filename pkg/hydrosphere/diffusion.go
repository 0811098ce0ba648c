package hydrosphere

// applyDiffusion runs the gradient-driven mixing pass and returns the ice
// indices it found. Ice nodes first receive a correction computed on the
// ice-only sub-sequence, then every node (ice included) receives the
// whole-column correction. Both read dTdz as left by applyForcing.
func applyDiffusion(t Profile, dTdz []float64, p *Parameters, dx, dt float64) []int {
	d2Tdz2 := gradient(nil, dTdz, dx)

	ice := t.IceIndices()
	if len(ice) > 0 {
		iceGrad := make([]float64, len(ice))
		for k, i := range ice {
			iceGrad[k] = dTdz[i]
		}
		iceCurv := gradient(nil, iceGrad, dx)
		iceMix := MixingCoefficients(iceGrad, Kappa, p.Gravity)
		for k, i := range ice {
			t[i] += iceMix[k] * dt * iceCurv[k]
		}
	}

	mix := MixingCoefficients(dTdz, Kappa, p.Gravity)
	for i := range t {
		t[i] += mix[i] * dt * d2Tdz2[i]
	}

	return ice
}
