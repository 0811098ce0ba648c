// Package hydrosphere integrates the temperature profile of a one-dimensional
// ice-and-ocean column with an explicit finite-difference scheme.
package hydrosphere

import "math"

// Physical constants shared by the stages.
const (
	// Kappa is the background thermal diffusivity of water (m²/s).
	Kappa = 1e-6
	// LatentHeatFusion of the ice-water transition (J/kg).
	LatentHeatFusion = 334000.0
	// StefanBoltzmann constant (W/m²/K⁴).
	StefanBoltzmann = 5.67e-8
	// ThermalExpansion coefficient of water (1/°C).
	ThermalExpansion = 2e-5
	// CriticalRichardson gates the mixing closure.
	CriticalRichardson = 0.65
	// DaysPerWeek converts the weekly step count into a daily time increment.
	DaysPerWeek = 7

	kelvinOffset = 273.15
)

// Parameters is the immutable configuration of a single run.
type Parameters struct {
	SpatialResolution       float64 // grid spacing request (m)
	Days                    int
	TimeStepsPerWeek        int
	ConvergenceThreshold    float64 // °C per step
	GeothermalHeatFlux      float64 // °C per unit time at the base node
	LoveNumber              float64
	TidalHeatingCoefficient float64
	Gravity                 float64 // m/s²
	Albedo                  float64
	SolarRadiationFlux      float64 // W/m²
	Depth                   float64 // hydrosphere depth (m)
	IceDepth                float64 // initial ice-layer depth (m)
}

// DefaultParameters returns the Europa-like column the model was built around.
func DefaultParameters() Parameters {
	return Parameters{
		SpatialResolution:       1000,
		Days:                    1000,
		TimeStepsPerWeek:        7,
		ConvergenceThreshold:    1e-7,
		GeothermalHeatFlux:      1,
		LoveNumber:              0.15,
		TidalHeatingCoefficient: 0.01,
		Gravity:                 1.315,
		Albedo:                  0.64,
		SolarRadiationFlux:      50,
		Depth:                   127000,
		IceDepth:                25000,
	}
}

// TimeStep returns dt, the fraction of a day advanced per step.
func (p Parameters) TimeStep() float64 {
	return 1 / float64(p.TimeStepsPerWeek*DaysPerWeek)
}

// TotalTimeSteps is the step budget of the run.
func (p Parameters) TotalTimeSteps() int {
	return p.Days * p.TimeStepsPerWeek
}

// Validate checks every bound the engine relies on. The returned error wraps
// ErrInvalidConfiguration and names the offending field.
func (p Parameters) Validate() error {
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"depth", p.Depth},
		{"spatial_resolution", p.SpatialResolution},
		{"convergence_threshold", p.ConvergenceThreshold},
		{"geothermal_heat_flux", p.GeothermalHeatFlux},
		{"love_number", p.LoveNumber},
		{"tidal_heating_coefficient", p.TidalHeatingCoefficient},
		{"gravity", p.Gravity},
		{"albedo", p.Albedo},
		{"solar_radiation_flux", p.SolarRadiationFlux},
		{"ice_depth", p.IceDepth},
	} {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return invalid(f.name, "must be finite, got %v", f.value)
		}
	}

	if _, err := NewGrid(p.Depth, p.SpatialResolution); err != nil {
		return err
	}

	switch {
	case p.TimeStepsPerWeek <= 0:
		return invalid("time_steps_per_week", "must be > 0, got %d", p.TimeStepsPerWeek)
	case p.TimeStepsPerWeek > math.MaxInt/DaysPerWeek:
		return invalid("time_steps_per_week", "must be <= %d, got %d", math.MaxInt/DaysPerWeek, p.TimeStepsPerWeek)
	case p.Days < 0:
		return invalid("days", "must be >= 0, got %d", p.Days)
	case p.Days > math.MaxInt/p.TimeStepsPerWeek:
		return invalid("days", "step budget days*time_steps_per_week overflows for %d days", p.Days)
	case p.ConvergenceThreshold <= 0:
		return invalid("convergence_threshold", "must be > 0, got %g", p.ConvergenceThreshold)
	case p.LoveNumber <= 0:
		return invalid("love_number", "must be > 0, got %g", p.LoveNumber)
	case p.Gravity <= 0:
		return invalid("gravity", "must be > 0, got %g", p.Gravity)
	}

	return nil
}
