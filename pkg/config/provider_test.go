package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/chrissnell/hydrosphere/pkg/hydrosphere"
)

func TestDefaultSimulationDataMatchesEngineDefaults(t *testing.T) {
	got := DefaultSimulationData().Parameters()
	want := hydrosphere.DefaultParameters()
	if got != want {
		t.Errorf("DefaultSimulationData().Parameters() = %+v, want %+v", got, want)
	}
}

func TestParseYAML(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		check   func(t *testing.T, c *ConfigData)
		wantErr string
	}{
		{
			name: "empty document keeps defaults",
			doc:  "",
			check: func(t *testing.T, c *ConfigData) {
				if c.Simulation != DefaultSimulationData() {
					t.Errorf("simulation = %+v, want defaults", c.Simulation)
				}
				if c.Output.FrameInterval != hydrosphere.DefaultFrameInterval {
					t.Errorf("frame interval = %d, want %d", c.Output.FrameInterval, hydrosphere.DefaultFrameInterval)
				}
			},
		},
		{
			name: "partial override",
			doc: `
simulation:
  days: 10
  albedo: 0.3
output:
  record: true
  plot_path: profile.png
storage:
  sqlite:
    path: runs.db
controllers:
  - type: rest
    rest:
      port: 8080
      max_steps: 5000
`,
			check: func(t *testing.T, c *ConfigData) {
				if c.Simulation.Days != 10 || c.Simulation.Albedo != 0.3 {
					t.Errorf("overrides not applied: %+v", c.Simulation)
				}
				if c.Simulation.Depth != 127000 {
					t.Errorf("depth = %v, want default 127000", c.Simulation.Depth)
				}
				if !c.Output.Record || c.Output.PlotPath != "profile.png" {
					t.Errorf("output = %+v", c.Output)
				}
				if c.Storage.SQLite == nil || c.Storage.SQLite.Path != "runs.db" {
					t.Errorf("storage = %+v", c.Storage)
				}
				if len(c.Controllers) != 1 || c.Controllers[0].RESTServer.MaxSteps != 5000 {
					t.Errorf("controllers = %+v", c.Controllers)
				}
			},
		},
		{
			name:    "unknown key",
			doc:     "simulation:\n  dayz: 3\n",
			wantErr: "dayz",
		},
		{
			name:    "invalid simulation value",
			doc:     "simulation:\n  spatial_resolution: 0\n",
			wantErr: "spatial_resolution",
		},
		{
			name:    "unknown controller",
			doc:     "controllers:\n  - type: mqtt\n",
			wantErr: "unknown controller type",
		},
		{
			name:    "grpc controller without section",
			doc:     "controllers:\n  - type: grpc\n",
			wantErr: "requires a grpc section",
		},
		{
			name:    "sqlite storage without path",
			doc:     "storage:\n  sqlite: {}\n",
			wantErr: "storage.sqlite.path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := ParseYAML([]byte(tt.doc))
			if tt.wantErr != "" {
				if err == nil {
					t.Fatalf("ParseYAML() error = nil, want error containing %q", tt.wantErr)
				}
				if !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("ParseYAML() error = %v, want it to contain %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseYAML() error = %v", err)
			}
			tt.check(t, c)
		})
	}
}

func TestInvalidSimulationIsConfigurationError(t *testing.T) {
	_, err := ParseYAML([]byte("simulation:\n  time_steps_per_week: 0\n"))
	if !errors.Is(err, hydrosphere.ErrInvalidConfiguration) {
		t.Errorf("error = %v, want ErrInvalidConfiguration", err)
	}
}

func TestYAMLProvider(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("simulation:\n  ice_depth: 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	p := NewYAMLProvider(path)
	defer p.Close()

	sim, err := p.GetSimulation()
	if err != nil {
		t.Fatalf("GetSimulation() error = %v", err)
	}
	if sim.IceDepth != 0 {
		t.Errorf("ice_depth = %v, want 0", sim.IceDepth)
	}
	if !p.IsReadOnly() {
		t.Error("YAML provider should be read-only")
	}

	if _, err := NewYAMLProvider(filepath.Join(t.TempDir(), "missing.yaml")).LoadConfig(); err == nil {
		t.Error("LoadConfig() on a missing file should fail")
	}
}

func TestSQLiteProvider(t *testing.T) {
	p, err := NewSQLiteProvider(filepath.Join(t.TempDir(), "config.db"), nil)
	if err != nil {
		t.Fatalf("NewSQLiteProvider() error = %v", err)
	}
	defer p.Close()

	if _, err := p.GetSimulation(); !errors.Is(err, ErrNoConfiguration) {
		t.Fatalf("GetSimulation() on empty database error = %v, want ErrNoConfiguration", err)
	}

	want := DefaultConfig()
	want.Simulation.Days = 42
	want.Simulation.GeothermalHeatFlux = 0.05
	want.Output = OutputData{Record: true, FrameInterval: 25, StepLimit: 1000, PlotPath: "out.png", FramesDir: "frames"}
	want.Storage = StorageData{
		SQLite:      &SQLiteData{Path: "runs.db"},
		TimescaleDB: &TimescaleDBData{ConnectionString: "postgres://localhost/runs"},
	}
	want.Controllers = []ControllerData{
		{
			Type:       "grpc",
			GRPCServer: &GRPCData{Port: 50051, ListenAddr: "127.0.0.1", MaxSteps: 10000},
		},
		{
			Type:       "rest",
			RESTServer: &RESTServerData{Port: 8080, ListenAddr: "127.0.0.1", MaxSteps: 20000},
		},
	}

	if err := p.SaveConfig(want); err != nil {
		t.Fatalf("SaveConfig() error = %v", err)
	}
	// Saving twice replaces rather than duplicates.
	if err := p.SaveConfig(want); err != nil {
		t.Fatalf("second SaveConfig() error = %v", err)
	}

	got, err := p.LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("LoadConfig() = %+v, want %+v", got, want)
	}

	if p.IsReadOnly() {
		t.Error("SQLite provider should be writable")
	}
}

func TestSQLiteProviderRejectsInvalidConfig(t *testing.T) {
	p, err := NewSQLiteProvider(filepath.Join(t.TempDir(), "config.db"), nil)
	if err != nil {
		t.Fatalf("NewSQLiteProvider() error = %v", err)
	}
	defer p.Close()

	bad := DefaultConfig()
	bad.Simulation.Gravity = -1
	if err := p.SaveConfig(bad); !errors.Is(err, hydrosphere.ErrInvalidConfiguration) {
		t.Errorf("SaveConfig() error = %v, want ErrInvalidConfiguration", err)
	}
}
