package hydrosphere

import (
	"math"
	"testing"
)

func TestInitialProfile(t *testing.T) {
	g, err := NewGrid(127000, 1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p := InitialProfile(g, 25000)

	if len(p) != g.Len() {
		t.Fatalf("expected %d temperatures, got %d", g.Len(), len(p))
	}
	if p[0] != -160 {
		t.Errorf("expected surface temperature -160, got %v", p[0])
	}
	if math.Abs(p[25]) > 1e-9 {
		t.Errorf("expected 0 at the ice base (25000 m), got %v", p[25])
	}
	if math.Abs(p[10]-(-160*(1-10000.0/25000))) > 1e-9 {
		t.Errorf("expected linear ramp at 10000 m, got %v", p[10])
	}
	for i := 26; i < len(p); i++ {
		if p[i] != 40 {
			t.Errorf("node %d (%v m): expected 40, got %v", i, g.Depths[i], p[i])
		}
	}
}

func TestInitialProfileWithoutIce(t *testing.T) {
	g, err := NewGrid(10000, 1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, iceDepth := range []float64{0, -500} {
		p := InitialProfile(g, iceDepth)
		for i, v := range p {
			if v != OceanTemperature {
				t.Errorf("ice depth %v, node %d: expected %v, got %v", iceDepth, i, OceanTemperature, v)
			}
		}
		if len(p.IceIndices()) != 0 {
			t.Errorf("ice depth %v: expected no ice nodes", iceDepth)
		}
	}
}

func TestProfileIceIndices(t *testing.T) {
	p := Profile{-3, 0, 2, -1, 5}
	got := p.IceIndices()
	want := []int{0, 1, 3}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("expected %v, got %v", want, got)
		}
	}
}

func TestProfileClone(t *testing.T) {
	p := Profile{1, 2, 3}
	c := p.Clone()
	c[0] = 100
	if p[0] != 1 {
		t.Errorf("clone shares storage with the original")
	}
}
