package hydrosphere

// MeltRate is the temperature removed from the base node per step by
// melting at the ice-ocean interface.
//
// The latent heat appears in both numerator and denominator and cancels, so
// the rate reduces to baseTemp·dt/depth.
// TODO: get a physics review of whether the latent heat was meant to appear once.
func MeltRate(baseTemp, depth, dt float64) float64 {
	return LatentHeatFusion / (depth * LatentHeatFusion) * (baseTemp - FreezingPoint) * dt
}

// applyPhaseBoundary melts or freezes at the base, clamps the base node to
// freezing or above, and extends the running ice extent with the deepest ice
// node the diffusion stage found this step.
func applyPhaseBoundary(st *State, g *Grid, ice []int, dt float64) {
	t := st.Temperature
	last := len(t) - 1

	base := t[last] - MeltRate(t[last], g.Depth(), dt)
	// NaN fails the comparison and clamps as well.
	if !(base > FreezingPoint) {
		base = FreezingPoint
	}
	t[last] = base

	if len(ice) == 0 {
		return
	}
	if d := g.Depths[ice[len(ice)-1]]; d > st.HighestIceExtent {
		st.HighestIceExtent = d
	}
}
