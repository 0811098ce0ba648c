package hydrosphere

import "math"

// suppressedMixing scales the background diffusivity once the column is
// stably stratified.
const suppressedMixing = 1e-3

// RichardsonNumber returns the bulk Richardson number g/(α·κ)·|gradient|.
func RichardsonNumber(gradient, kappa, gravity float64) float64 {
	return gravity / (ThermalExpansion * kappa) * math.Abs(gradient)
}

// MixingCoefficient maps a local temperature gradient (°C/m) onto an eddy
// diffusivity. Below the critical Richardson number mixing is enhanced and
// damped quadratically with Ri; above it mixing collapses to a thousandth of
// kappa.
func MixingCoefficient(gradient, kappa, gravity float64) float64 {
	ri := RichardsonNumber(gradient, kappa, gravity)
	if ri < CriticalRichardson {
		r := 1 - ri/CriticalRichardson
		return kappa * r * r
	}
	return kappa * suppressedMixing
}

// MixingCoefficients applies MixingCoefficient element-wise and returns a
// new slice; gradients is never modified.
func MixingCoefficients(gradients []float64, kappa, gravity float64) []float64 {
	out := make([]float64, len(gradients))
	for i, g := range gradients {
		out[i] = MixingCoefficient(g, kappa, gravity)
	}
	return out
}
