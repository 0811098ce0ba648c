package hydrosphere

import (
	"math"
	"testing"
)

func stageParams() Parameters {
	p := DefaultParameters()
	p.Depth = 2
	p.SpatialResolution = 1
	p.IceDepth = 1
	return p
}

func TestApplyForcingBoundaries(t *testing.T) {
	p := stageParams()
	p.TidalHeatingCoefficient = 0
	dt := p.TimeStep()

	st := newState(Profile{-160, 0, 40})
	dTdz := applyForcing(st, &p, 1, dt)

	wantBase := 40 + p.GeothermalHeatFlux*dt
	if math.Abs(st.Temperature[2]-wantBase) > 1e-12 {
		t.Errorf("base: expected %v, got %v", wantBase, st.Temperature[2])
	}

	flux := StefanBoltzmann*math.Pow(-160+273.15, 4) - p.SolarRadiationFlux*p.Albedo
	wantSurface := -160 - flux*dt
	if math.Abs(st.Temperature[0]-wantSurface) > 1e-12 {
		t.Errorf("surface: expected %v, got %v", wantSurface, st.Temperature[0])
	}
	if wantSurface <= -160 {
		t.Errorf("expected net radiative warming of a -160°C surface, got %v", wantSurface)
	}

	if st.Temperature[1] != 0 {
		t.Errorf("interior node changed without tidal heating: %v", st.Temperature[1])
	}

	want := gradient(nil, []float64{wantSurface, 0, wantBase}, 1)
	for i := range want {
		if math.Abs(dTdz[i]-want[i]) > 1e-12 {
			t.Errorf("gradient %d: expected %v, got %v", i, want[i], dTdz[i])
		}
	}
}

func TestApplyForcingTidalHeating(t *testing.T) {
	base := stageParams()
	base.TidalHeatingCoefficient = 0
	tidal := stageParams()
	tidal.TidalHeatingCoefficient = 0.5
	dt := base.TimeStep()

	initial := Profile{-20, -5, 30}
	without := newState(initial)
	with := newState(initial)

	applyForcing(without, &base, 1, dt)
	dTdz := applyForcing(with, &tidal, 1, dt)

	for i := range initial {
		heat := tidal.TidalHeatingCoefficient / tidal.LoveNumber * dTdz[i] * dTdz[i] * dt
		got := with.Temperature[i] - without.Temperature[i]
		if math.Abs(got-heat) > 1e-12 {
			t.Errorf("node %d: expected tidal heat %v, got %v", i, heat, got)
		}
		if got < 0 {
			t.Errorf("node %d: tidal heating cooled the node", i)
		}
	}
}

func TestSurfaceFlux(t *testing.T) {
	// A surface at the radiative equilibrium temperature has no net flux.
	eq := math.Pow(50*0.64/StefanBoltzmann, 0.25) - 273.15
	if f := SurfaceFlux(eq, 50, 0.64); math.Abs(f) > 1e-9 {
		t.Errorf("expected zero net flux at %v°C, got %v", eq, f)
	}
	if f := SurfaceFlux(eq+10, 50, 0.64); f <= 0 {
		t.Errorf("expected net loss above equilibrium, got %v", f)
	}
}

func TestApplyDiffusionLinearProfileIsSteady(t *testing.T) {
	p := stageParams()
	prof := Profile{-2, -1, 0, 1, 2}
	before := prof.Clone()
	dTdz := gradient(nil, prof, 1)

	ice := applyDiffusion(prof, dTdz, &p, 1, p.TimeStep())

	if len(ice) != 3 || ice[0] != 0 || ice[2] != 2 {
		t.Errorf("expected ice indices [0 1 2], got %v", ice)
	}
	for i := range prof {
		if prof[i] != before[i] {
			t.Errorf("node %d: linear profile changed %v -> %v", i, before[i], prof[i])
		}
	}
}

func TestApplyDiffusionCompoundsOnIce(t *testing.T) {
	p := stageParams()
	dt := p.TimeStep()

	tests := []struct {
		name    string
		profile Profile
	}{
		{name: "all ice", profile: Profile{-1, -2, -5, -10, -17}},
		{name: "all liquid", profile: Profile{1, 2, 5, 10, 17}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prof := tt.profile.Clone()
			dTdz := gradient(nil, prof, 1)
			d2 := gradient(nil, dTdz, 1)
			mix := MixingCoefficients(dTdz, Kappa, p.Gravity)

			ice := applyDiffusion(prof, dTdz, &p, 1, dt)

			passes := 1.0
			if len(ice) == len(prof) {
				// Contiguous ice: the ice-only pass sees the same gradient
				// and curvature as the whole-column pass.
				passes = 2
			}
			for i := range prof {
				want := passes * mix[i] * dt * d2[i]
				got := prof[i] - tt.profile[i]
				if math.Abs(got-want) > 1e-14 {
					t.Errorf("node %d: expected change %v, got %v", i, want, got)
				}
			}
		})
	}
}

func TestApplyDiffusionNonContiguousIce(t *testing.T) {
	p := stageParams()
	const dx, dt = 2.0, 1.0

	// Ice at nodes 0 and 2. The ice-only pass differentiates the gradient
	// sub-sequence [0, 1] with spacing dx, giving a curvature of 0.5 at both.
	prof := Profile{-1, 5, -2, 5}
	dTdz := []float64{0, 0, 1, 0}

	ice := applyDiffusion(prof, dTdz, &p, dx, dt)

	if len(ice) != 2 || ice[0] != 0 || ice[1] != 2 {
		t.Fatalf("expected ice indices [0 2], got %v", ice)
	}

	still := MixingCoefficient(0, Kappa, p.Gravity)
	steep := MixingCoefficient(1, Kappa, p.Gravity)
	want := Profile{
		-1 + still*0.5*dt,
		5 + still*0.25*dt,
		-2 + steep*0.5*dt,
		5 - still*0.5*dt,
	}
	for i := range want {
		if math.Abs(prof[i]-want[i]) > 1e-15 {
			t.Errorf("node %d: expected %.17g, got %.17g", i, want[i], prof[i])
		}
	}
}

func TestApplyDiffusionReturnsEntryIce(t *testing.T) {
	p := stageParams()

	// Node 1 starts just above freezing and is cooled below it by the
	// whole-column pass. The phase boundary must see the ice found on entry.
	prof := Profile{-1, 1e-9, 5}
	dTdz := []float64{1, 0, 0}

	ice := applyDiffusion(prof, dTdz, &p, 1, 1)

	if len(ice) != 1 || ice[0] != 0 {
		t.Errorf("expected ice indices [0], got %v", ice)
	}
	if prof[1] >= FreezingPoint {
		t.Errorf("expected node 1 to end below freezing, got %v", prof[1])
	}
}

func TestApplyConvection(t *testing.T) {
	tests := []struct {
		name     string
		profile  Profile
		dTdz     []float64
		expected Profile
	}{
		{
			name:     "deepest candidate reads the already overwritten value",
			profile:  Profile{-1, 5, 3, 8, 2},
			dTdz:     []float64{1, -1, 1, -1, -1},
			expected: Profile{-1, 5, 5, 5, 5},
		},
		{
			name:     "surface node never homogenizes",
			profile:  Profile{3, 1, 2},
			dTdz:     []float64{-1, 1, 1},
			expected: Profile{3, 1, 2},
		},
		{
			name:     "frozen nodes are not candidates",
			profile:  Profile{-4, -3, -2, 6},
			dTdz:     []float64{1, -1, -1, 1},
			expected: Profile{-4, -3, -2, 6},
		},
		{
			name:     "single unstable node propagates to the base",
			profile:  Profile{-5, 1, 4, 9, 12},
			dTdz:     []float64{1, 1, -1, 1, 1},
			expected: Profile{-5, 1, 4, 4, 4},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prof := tt.profile.Clone()
			applyConvection(prof, tt.dTdz)
			for i := range prof {
				if prof[i] != tt.expected[i] {
					t.Errorf("expected %v, got %v", tt.expected, prof)
					break
				}
			}
		})
	}
}

func TestMeltRateIgnoresLatentHeat(t *testing.T) {
	tests := []struct {
		base, depth, dt float64
	}{
		{base: 10, depth: 100, dt: 0.5},
		{base: 40.02, depth: 127000, dt: 1.0 / 49},
		{base: 0, depth: 5000, dt: 1},
	}
	for _, tt := range tests {
		got := MeltRate(tt.base, tt.depth, tt.dt)
		want := tt.base * tt.dt / tt.depth
		if math.Abs(got-want) > 1e-15 {
			t.Errorf("MeltRate(%v, %v, %v): expected %v, got %v", tt.base, tt.depth, tt.dt, want, got)
		}
	}
}

func TestApplyPhaseBoundary(t *testing.T) {
	g, err := NewGrid(4000, 1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name       string
		profile    Profile
		ice        []int
		extent     float64
		wantBase   float64
		wantExtent float64
	}{
		{name: "negative base clamps", profile: Profile{-10, -5, 0, 1, -3}, ice: []int{0, 1, 2}, extent: 0, wantBase: 0, wantExtent: 2000},
		{name: "NaN base clamps", profile: Profile{-10, -5, 0, 1, math.NaN()}, ice: []int{0}, extent: 3000, wantBase: 0, wantExtent: 3000},
		{name: "no ice leaves extent", profile: Profile{1, 2, 3, 4, 0}, ice: nil, extent: 1000, wantBase: 0, wantExtent: 1000},
		{name: "shallower ice keeps extent", profile: Profile{-1, 2, 3, 4, 5}, ice: []int{0}, extent: 3000, wantBase: 5 - 5*0.5/4000, wantExtent: 3000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := newState(tt.profile)
			st.HighestIceExtent = tt.extent
			applyPhaseBoundary(st, g, tt.ice, 0.5)

			if b := st.Temperature.Base(); math.Abs(b-tt.wantBase) > 1e-12 {
				t.Errorf("expected base %v, got %v", tt.wantBase, b)
			}
			if st.HighestIceExtent != tt.wantExtent {
				t.Errorf("expected extent %v, got %v", tt.wantExtent, st.HighestIceExtent)
			}
		})
	}
}

func TestCheckConvergence(t *testing.T) {
	st := newState(Profile{1, 2, 3})
	st.Temperature = Profile{1, 2.5, 2}

	if got := MaxChange(st.Temperature, st.Previous); got != 1 {
		t.Fatalf("expected max change 1, got %v", got)
	}

	change, done := checkConvergence(st, 0.5)
	if done || change != 1 {
		t.Fatalf("expected to keep running with change 1, got %v %v", change, done)
	}
	for i := range st.Previous {
		if st.Previous[i] != st.Temperature[i] {
			t.Fatalf("previous profile was not advanced")
		}
	}

	st.Temperature[0] += 0.1
	if _, done := checkConvergence(st, 0.5); !done {
		t.Errorf("expected convergence for change 0.1 < 0.5")
	}
	if st.Previous[0] != 1 {
		t.Errorf("previous profile must not advance on the converging step")
	}
}
