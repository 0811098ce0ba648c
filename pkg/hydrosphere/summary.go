package hydrosphere

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary condenses a final profile into the figures reported per run.
type Summary struct {
	SurfaceTemperature float64 `json:"surface_temperature"`
	BaseTemperature    float64 `json:"base_temperature"`
	MeanTemperature    float64 `json:"mean_temperature"`
	MinTemperature     float64 `json:"min_temperature"`
	MaxTemperature     float64 `json:"max_temperature"`
	IceNodes           int     `json:"ice_nodes"`
	// IceShellThickness is the depth of the deepest node of the frozen
	// layer connected to the surface, zero when the surface is liquid.
	IceShellThickness float64 `json:"ice_shell_thickness"`
	HighestIceExtent  float64 `json:"highest_ice_extent"`
}

// Summarize computes a Summary for r. r must hold a non-empty profile.
func Summarize(r *Result) Summary {
	t := r.Temperature
	s := Summary{
		SurfaceTemperature: t.Surface(),
		BaseTemperature:    t.Base(),
		MeanTemperature:    stat.Mean(t, nil),
		MinTemperature:     floats.Min(t),
		MaxTemperature:     floats.Max(t),
		IceNodes:           len(t.IceIndices()),
		HighestIceExtent:   r.HighestIceExtent,
	}
	for i, v := range t {
		if v > FreezingPoint {
			break
		}
		if i < len(r.Depths) {
			s.IceShellThickness = r.Depths[i]
		}
	}
	return s
}
