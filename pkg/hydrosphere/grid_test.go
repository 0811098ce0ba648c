package hydrosphere

import (
	"errors"
	"math"
	"testing"
)

func TestNewGrid(t *testing.T) {
	tests := []struct {
		name       string
		depth      float64
		resolution float64
		wantN      int
		wantDx     float64
	}{
		{name: "default hydrosphere", depth: 127000, resolution: 1000, wantN: 128, wantDx: 1000},
		{name: "non-dividing resolution", depth: 10, resolution: 3, wantN: 4, wantDx: 10.0 / 3.0},
		{name: "two nodes", depth: 10, resolution: 9.5, wantN: 2, wantDx: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := NewGrid(tt.depth, tt.resolution)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if g.Len() != tt.wantN {
				t.Fatalf("expected %d nodes, got %d", tt.wantN, g.Len())
			}
			if g.Spacing != tt.wantDx {
				t.Errorf("expected spacing %v, got %v", tt.wantDx, g.Spacing)
			}
			if g.Depths[0] != 0 {
				t.Errorf("expected surface at 0, got %v", g.Depths[0])
			}
			if g.Depth() != tt.depth {
				t.Errorf("expected base at %v, got %v", tt.depth, g.Depth())
			}
			for i := 1; i < g.Len(); i++ {
				if d := g.Depths[i] - g.Depths[i-1]; math.Abs(d-tt.wantDx) > 1e-9 {
					t.Errorf("node %d: spacing %v, expected %v", i, d, tt.wantDx)
				}
			}
		})
	}
}

func TestNewGridExactSpacing(t *testing.T) {
	g, err := NewGrid(127000, 1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, d := range g.Depths {
		if d != float64(i)*1000 {
			t.Fatalf("node %d: expected depth %v exactly, got %v", i, float64(i)*1000, d)
		}
	}
}

func TestNewGridInvalid(t *testing.T) {
	tests := []struct {
		name       string
		depth      float64
		resolution float64
		field      string
	}{
		{name: "resolution equals depth", depth: 1000, resolution: 1000, field: "spatial_resolution"},
		{name: "resolution exceeds depth", depth: 1000, resolution: 5000, field: "spatial_resolution"},
		{name: "zero resolution", depth: 1000, resolution: 0, field: "spatial_resolution"},
		{name: "negative resolution", depth: 1000, resolution: -1, field: "spatial_resolution"},
		{name: "zero depth", depth: 0, resolution: 10, field: "depth"},
		{name: "negative depth", depth: -5, resolution: 1, field: "depth"},
		{name: "NaN depth", depth: math.NaN(), resolution: 1, field: "depth"},
		{name: "infinite resolution", depth: 10, resolution: math.Inf(1), field: "spatial_resolution"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGrid(tt.depth, tt.resolution)
			if !errors.Is(err, ErrInvalidConfiguration) {
				t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
			}
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected *ConfigError, got %T", err)
			}
			if cfgErr.Field != tt.field {
				t.Errorf("expected field %q, got %q", tt.field, cfgErr.Field)
			}
		})
	}
}
