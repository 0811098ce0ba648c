package hydrosphere

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Grid is the uniform depth discretization of the column, surface first.
type Grid struct {
	Depths  []float64
	Spacing float64
}

// NewGrid builds floor(depth/resolution)+1 evenly spaced points from the
// surface (0) down to depth.
func NewGrid(depth, resolution float64) (*Grid, error) {
	switch {
	case !(depth > 0) || math.IsInf(depth, 0):
		return nil, invalid("depth", "must be a positive finite value, got %v", depth)
	case !(resolution > 0) || math.IsInf(resolution, 0):
		return nil, invalid("spatial_resolution", "must be a positive finite value, got %v", resolution)
	case resolution >= depth:
		return nil, invalid("spatial_resolution", "must be smaller than depth %g, got %g", depth, resolution)
	}

	n := int(math.Floor(depth/resolution)) + 1
	return &Grid{
		Depths:  floats.Span(make([]float64, n), 0, depth),
		Spacing: depth / float64(n-1),
	}, nil
}

// Len returns the number of nodes.
func (g *Grid) Len() int {
	return len(g.Depths)
}

// Depth returns the depth of the base node.
func (g *Grid) Depth() float64 {
	return g.Depths[len(g.Depths)-1]
}
