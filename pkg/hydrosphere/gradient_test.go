package hydrosphere

import (
	"math"
	"testing"
)

func TestGradient(t *testing.T) {
	tests := []struct {
		name     string
		f        []float64
		dx       float64
		expected []float64
	}{
		{name: "quadratic", f: []float64{0, 1, 4, 9}, dx: 1, expected: []float64{1, 2, 4, 5}},
		{name: "linear with spacing", f: []float64{0, 10, 20}, dx: 5, expected: []float64{2, 2, 2}},
		{name: "two samples", f: []float64{3, 1}, dx: 2, expected: []float64{-1, -1}},
		{name: "single sample", f: []float64{7}, dx: 1, expected: []float64{0}},
		{name: "empty", f: nil, dx: 1, expected: []float64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := gradient(nil, tt.f, tt.dx)
			if len(got) != len(tt.expected) {
				t.Fatalf("expected %d values, got %d", len(tt.expected), len(got))
			}
			for i := range got {
				if math.Abs(got[i]-tt.expected[i]) > 1e-12 {
					t.Errorf("point %d: expected %v, got %v", i, tt.expected[i], got[i])
				}
			}
		})
	}
}
