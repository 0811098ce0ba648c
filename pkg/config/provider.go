// Package config loads simulation, output, storage and controller settings
// from YAML files or a SQLite configuration database.
package config

import (
	"fmt"

	"github.com/chrissnell/hydrosphere/pkg/hydrosphere"
)

// ConfigProvider defines the interface for configuration data sources
type ConfigProvider interface {
	// Load complete configuration
	LoadConfig() (*ConfigData, error)

	// Get specific configuration sections
	GetSimulation() (*SimulationData, error)
	GetStorageConfig() (*StorageData, error)
	GetControllers() ([]ControllerData, error)

	IsReadOnly() bool
	Close() error
}

// ConfigData represents the complete configuration structure
type ConfigData struct {
	Simulation  SimulationData   `json:"simulation" yaml:"simulation"`
	Output      OutputData       `json:"output" yaml:"output"`
	Storage     StorageData      `json:"storage,omitempty" yaml:"storage,omitempty"`
	Controllers []ControllerData `json:"controllers,omitempty" yaml:"controllers,omitempty"`
}

// SimulationData holds the physical and numerical inputs of one run.
type SimulationData struct {
	SpatialResolution       float64 `json:"spatial_resolution" yaml:"spatial_resolution"`
	Days                    int     `json:"days" yaml:"days"`
	TimeStepsPerWeek        int     `json:"time_steps_per_week" yaml:"time_steps_per_week"`
	ConvergenceThreshold    float64 `json:"convergence_threshold" yaml:"convergence_threshold"`
	GeothermalHeatFlux      float64 `json:"geothermal_heat_flux" yaml:"geothermal_heat_flux"`
	LoveNumber              float64 `json:"love_number" yaml:"love_number"`
	TidalHeatingCoefficient float64 `json:"tidal_heating_coefficient" yaml:"tidal_heating_coefficient"`
	Gravity                 float64 `json:"gravity" yaml:"gravity"`
	Albedo                  float64 `json:"albedo" yaml:"albedo"`
	SolarRadiationFlux      float64 `json:"solar_radiation_flux" yaml:"solar_radiation_flux"`
	Depth                   float64 `json:"depth" yaml:"depth"`
	IceDepth                float64 `json:"ice_depth" yaml:"ice_depth"`
}

// OutputData controls frame recording and the artifacts written after a run.
type OutputData struct {
	Record        bool   `json:"record,omitempty" yaml:"record,omitempty"`
	FrameInterval int    `json:"frame_interval,omitempty" yaml:"frame_interval,omitempty"`
	StepLimit     int    `json:"step_limit,omitempty" yaml:"step_limit,omitempty"`
	PlotPath      string `json:"plot_path,omitempty" yaml:"plot_path,omitempty"`
	FramesDir     string `json:"frames_dir,omitempty" yaml:"frames_dir,omitempty"`
}

// StorageData holds the configuration for the run storage backends. When
// none is set, runs are kept in memory.
type StorageData struct {
	SQLite      *SQLiteData      `json:"sqlite,omitempty" yaml:"sqlite,omitempty"`
	TimescaleDB *TimescaleDBData `json:"timescaledb,omitempty" yaml:"timescaledb,omitempty"`
}

// ControllerData holds the configuration for various controller backends
type ControllerData struct {
	Type       string          `json:"type,omitempty" yaml:"type,omitempty"`
	RESTServer *RESTServerData `json:"rest,omitempty" yaml:"rest,omitempty"`
	GRPCServer *GRPCData       `json:"grpc,omitempty" yaml:"grpc,omitempty"`
}

// Storage backend configuration structs
type SQLiteData struct {
	Path string `json:"path" yaml:"path"`
}

type TimescaleDBData struct {
	ConnectionString string `json:"connection_string" yaml:"connection_string"`
}

// Controller configuration structs
type RESTServerData struct {
	Cert       string `json:"cert,omitempty" yaml:"cert,omitempty"`
	Key        string `json:"key,omitempty" yaml:"key,omitempty"`
	Port       int    `json:"port,omitempty" yaml:"port,omitempty"`
	ListenAddr string `json:"listen_addr,omitempty" yaml:"listen_addr,omitempty"`
	// MaxSteps caps the step budget of runs submitted over HTTP. Zero
	// means no cap.
	MaxSteps int `json:"max_steps,omitempty" yaml:"max_steps,omitempty"`
}

// GRPCData configures the gRPC run service.
type GRPCData struct {
	Cert       string `json:"cert,omitempty" yaml:"cert,omitempty"`
	Key        string `json:"key,omitempty" yaml:"key,omitempty"`
	Port       int    `json:"port,omitempty" yaml:"port,omitempty"`
	ListenAddr string `json:"listen_addr,omitempty" yaml:"listen_addr,omitempty"`
	MaxSteps   int    `json:"max_steps,omitempty" yaml:"max_steps,omitempty"`
}

// DefaultSimulationData returns the documented default inputs.
func DefaultSimulationData() SimulationData {
	return FromParameters(hydrosphere.DefaultParameters())
}

// DefaultConfig returns a configuration with default simulation inputs,
// the default frame interval and no storage or controllers.
func DefaultConfig() *ConfigData {
	return &ConfigData{
		Simulation: DefaultSimulationData(),
		Output: OutputData{
			FrameInterval: hydrosphere.DefaultFrameInterval,
		},
	}
}

// FromParameters converts engine parameters to their configuration form.
func FromParameters(p hydrosphere.Parameters) SimulationData {
	return SimulationData{
		SpatialResolution:       p.SpatialResolution,
		Days:                    p.Days,
		TimeStepsPerWeek:        p.TimeStepsPerWeek,
		ConvergenceThreshold:    p.ConvergenceThreshold,
		GeothermalHeatFlux:      p.GeothermalHeatFlux,
		LoveNumber:              p.LoveNumber,
		TidalHeatingCoefficient: p.TidalHeatingCoefficient,
		Gravity:                 p.Gravity,
		Albedo:                  p.Albedo,
		SolarRadiationFlux:      p.SolarRadiationFlux,
		Depth:                   p.Depth,
		IceDepth:                p.IceDepth,
	}
}

// Parameters converts the configuration to engine parameters.
func (s SimulationData) Parameters() hydrosphere.Parameters {
	return hydrosphere.Parameters{
		SpatialResolution:       s.SpatialResolution,
		Days:                    s.Days,
		TimeStepsPerWeek:        s.TimeStepsPerWeek,
		ConvergenceThreshold:    s.ConvergenceThreshold,
		GeothermalHeatFlux:      s.GeothermalHeatFlux,
		LoveNumber:              s.LoveNumber,
		TidalHeatingCoefficient: s.TidalHeatingCoefficient,
		Gravity:                 s.Gravity,
		Albedo:                  s.Albedo,
		SolarRadiationFlux:      s.SolarRadiationFlux,
		Depth:                   s.Depth,
		IceDepth:                s.IceDepth,
	}
}

// Options converts the output settings to engine options. Observers are
// attached by the caller.
func (o OutputData) Options() hydrosphere.Options {
	return hydrosphere.Options{
		Record:        o.Record,
		FrameInterval: o.FrameInterval,
		StepLimit:     o.StepLimit,
	}
}

// Validate checks the parts of the configuration the engine does not.
func (c *ConfigData) Validate() error {
	if err := c.Simulation.Parameters().Validate(); err != nil {
		return err
	}
	if c.Output.FrameInterval < 0 {
		return fmt.Errorf("output.frame_interval must not be negative, got %d", c.Output.FrameInterval)
	}
	if c.Output.StepLimit < 0 {
		return fmt.Errorf("output.step_limit must not be negative, got %d", c.Output.StepLimit)
	}
	if c.Storage.SQLite != nil && c.Storage.SQLite.Path == "" {
		return fmt.Errorf("storage.sqlite.path is required")
	}
	if c.Storage.TimescaleDB != nil && c.Storage.TimescaleDB.ConnectionString == "" {
		return fmt.Errorf("storage.timescaledb.connection_string is required")
	}
	for i, ctrl := range c.Controllers {
		switch ctrl.Type {
		case "rest":
			if ctrl.RESTServer == nil {
				return fmt.Errorf("controllers[%d]: rest controller requires a rest section", i)
			}
		case "grpc":
			if ctrl.GRPCServer == nil {
				return fmt.Errorf("controllers[%d]: grpc controller requires a grpc section", i)
			}
		default:
			return fmt.Errorf("controllers[%d]: unknown controller type %q", i, ctrl.Type)
		}
	}
	return nil
}
