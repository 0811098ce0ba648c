package hydrosphere

const (
	// SurfaceIceTemperature is the initial temperature at the top of the ice shell (°C).
	SurfaceIceTemperature = -160.0
	// OceanTemperature is the initial temperature of every node below the ice (°C).
	OceanTemperature = 40.0
	// FreezingPoint separates ice nodes from ocean nodes (°C).
	FreezingPoint = 0.0
)

// Profile holds one temperature per grid node, index 0 at the surface.
type Profile []float64

// Clone returns an independent copy.
func (p Profile) Clone() Profile {
	c := make(Profile, len(p))
	copy(c, p)
	return c
}

// Surface returns the temperature of the top node.
func (p Profile) Surface() float64 {
	return p[0]
}

// Base returns the temperature of the bottom node.
func (p Profile) Base() float64 {
	return p[len(p)-1]
}

// IceIndices returns the ascending indices of nodes at or below freezing.
func (p Profile) IceIndices() []int {
	var idx []int
	for i, t := range p {
		if t <= FreezingPoint {
			idx = append(idx, i)
		}
	}
	return idx
}

// InitialProfile ramps linearly from SurfaceIceTemperature at the surface to
// freezing at iceDepth, and holds OceanTemperature below it. A non-positive
// iceDepth leaves the whole column at OceanTemperature.
func InitialProfile(g *Grid, iceDepth float64) Profile {
	p := make(Profile, g.Len())
	for i, d := range g.Depths {
		if iceDepth > 0 && d <= iceDepth {
			p[i] = SurfaceIceTemperature * (1 - d/iceDepth)
			continue
		}
		p[i] = OceanTemperature
	}
	return p
}
