package hydrosphere

import "math"

// applyForcing adds geothermal heat at the base, removes net radiative loss
// at the surface and deposits tidal heat everywhere, in that order. The
// gradient it returns is taken after the boundary fluxes and before tidal
// heating; the later stages read it as the post-forcing gradient.
func applyForcing(st *State, p *Parameters, dx, dt float64) []float64 {
	t := st.Temperature

	t[len(t)-1] += p.GeothermalHeatFlux * dt

	t[0] -= SurfaceFlux(t[0], p.SolarRadiationFlux, p.Albedo) * dt

	dTdz := gradient(nil, t, dx)

	scale := p.TidalHeatingCoefficient * (1 / p.LoveNumber)
	for i, g := range dTdz {
		t[i] += scale * (g * g) * dt
	}

	return dTdz
}

// SurfaceFlux is the blackbody emission of a surface at tempC net of the
// absorbed insolation (W/m²). Positive values cool the surface.
func SurfaceFlux(tempC, solarFlux, albedo float64) float64 {
	return StefanBoltzmann*math.Pow(tempC+kelvinOffset, 4) - solarFlux*albedo
}
