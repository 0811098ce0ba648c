package config

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/chrissnell/hydrosphere/pkg/migrate"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

const defaultConfigName = "default"

// MigrationProvider returns the migrations of the configuration schema.
func MigrationProvider() *migrate.FSProvider {
	return migrate.NewFSProvider(migrationFS, "migrations", "config_schema_migrations")
}

// ErrNoConfiguration is returned when the database holds no simulation
// settings yet.
var ErrNoConfiguration = errors.New("no configuration found")

// SQLiteProvider implements ConfigProvider for SQLite database configuration
type SQLiteProvider struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteProvider opens the configuration database at dbPath and brings
// its schema up to date.
func NewSQLiteProvider(dbPath string, logger *zap.SugaredLogger) (*SQLiteProvider, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	migrator := migrate.NewMigrator(db, MigrationProvider(), logger)
	if err := migrator.MigrateUp(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate configuration database: %w", err)
	}

	return &SQLiteProvider{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// LoadConfig loads the complete configuration from SQLite database
func (s *SQLiteProvider) LoadConfig() (*ConfigData, error) {
	config := DefaultConfig()

	simulation, err := s.GetSimulation()
	if err != nil {
		return nil, fmt.Errorf("failed to load simulation config: %w", err)
	}
	config.Simulation = *simulation

	output, err := s.GetOutput()
	if err != nil {
		return nil, fmt.Errorf("failed to load output config: %w", err)
	}
	config.Output = *output

	storage, err := s.GetStorageConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load storage config: %w", err)
	}
	config.Storage = *storage

	controllers, err := s.GetControllers()
	if err != nil {
		return nil, fmt.Errorf("failed to load controllers: %w", err)
	}
	config.Controllers = controllers

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// GetSimulation returns the simulation inputs from the database
func (s *SQLiteProvider) GetSimulation() (*SimulationData, error) {
	query := `
		SELECT spatial_resolution, days, time_steps_per_week, convergence_threshold,
		       geothermal_heat_flux, love_number, tidal_heating_coefficient,
		       gravity, albedo, solar_radiation_flux, depth, ice_depth
		FROM simulation_configs
		WHERE config_id = (SELECT id FROM configs WHERE name = ?)
	`

	var sim SimulationData
	err := s.db.QueryRow(query, defaultConfigName).Scan(
		&sim.SpatialResolution, &sim.Days, &sim.TimeStepsPerWeek, &sim.ConvergenceThreshold,
		&sim.GeothermalHeatFlux, &sim.LoveNumber, &sim.TidalHeatingCoefficient,
		&sim.Gravity, &sim.Albedo, &sim.SolarRadiationFlux, &sim.Depth, &sim.IceDepth,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoConfiguration
		}
		return nil, fmt.Errorf("failed to query simulation config: %w", err)
	}

	return &sim, nil
}

// GetOutput returns the output settings. Defaults are returned when the
// database has none.
func (s *SQLiteProvider) GetOutput() (*OutputData, error) {
	query := `
		SELECT record, frame_interval, step_limit, plot_path, frames_dir
		FROM output_configs
		WHERE config_id = (SELECT id FROM configs WHERE name = ?)
	`

	output := DefaultConfig().Output
	var plotPath, framesDir sql.NullString
	err := s.db.QueryRow(query, defaultConfigName).Scan(
		&output.Record, &output.FrameInterval, &output.StepLimit, &plotPath, &framesDir,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &output, nil
		}
		return nil, fmt.Errorf("failed to query output config: %w", err)
	}

	output.PlotPath = plotPath.String
	output.FramesDir = framesDir.String

	return &output, nil
}

// GetStorageConfig returns storage configuration from the database
func (s *SQLiteProvider) GetStorageConfig() (*StorageData, error) {
	query := `
		SELECT backend_type, sqlite_path, timescale_connection_string
		FROM storage_configs
		WHERE config_id = (SELECT id FROM configs WHERE name = ?) AND enabled = 1
	`

	rows, err := s.db.Query(query, defaultConfigName)
	if err != nil {
		return nil, fmt.Errorf("failed to query storage configs: %w", err)
	}
	defer rows.Close()

	storage := &StorageData{}

	for rows.Next() {
		var backendType string
		var sqlitePath, timescaleConnectionString sql.NullString

		if err := rows.Scan(&backendType, &sqlitePath, &timescaleConnectionString); err != nil {
			return nil, fmt.Errorf("failed to scan storage config row: %w", err)
		}

		switch backendType {
		case "sqlite":
			if sqlitePath.Valid {
				storage.SQLite = &SQLiteData{Path: sqlitePath.String}
			}
		case "timescaledb":
			if timescaleConnectionString.Valid {
				storage.TimescaleDB = &TimescaleDBData{
					ConnectionString: timescaleConnectionString.String,
				}
			}
		}
	}

	return storage, rows.Err()
}

// GetControllers returns controller configurations from the database
func (s *SQLiteProvider) GetControllers() ([]ControllerData, error) {
	query := `
		SELECT controller_type, rest_cert, rest_key, rest_port, rest_listen_addr, rest_max_steps,
		       grpc_cert, grpc_key, grpc_port, grpc_listen_addr, grpc_max_steps
		FROM controller_configs
		WHERE config_id = (SELECT id FROM configs WHERE name = ?) AND enabled = 1
		ORDER BY controller_type
	`

	rows, err := s.db.Query(query, defaultConfigName)
	if err != nil {
		return nil, fmt.Errorf("failed to query controller configs: %w", err)
	}
	defer rows.Close()

	var controllers []ControllerData
	for rows.Next() {
		var controller ControllerData
		var cert, key, listenAddr sql.NullString
		var port, maxSteps sql.NullInt64
		var grpcCert, grpcKey, grpcListenAddr sql.NullString
		var grpcPort, grpcMaxSteps sql.NullInt64

		err := rows.Scan(&controller.Type, &cert, &key, &port, &listenAddr, &maxSteps,
			&grpcCert, &grpcKey, &grpcPort, &grpcListenAddr, &grpcMaxSteps)
		if err != nil {
			return nil, fmt.Errorf("failed to scan controller row: %w", err)
		}

		switch controller.Type {
		case "rest":
			controller.RESTServer = &RESTServerData{
				Cert:       cert.String,
				Key:        key.String,
				Port:       int(port.Int64),
				ListenAddr: listenAddr.String,
				MaxSteps:   int(maxSteps.Int64),
			}
		case "grpc":
			controller.GRPCServer = &GRPCData{
				Cert:       grpcCert.String,
				Key:        grpcKey.String,
				Port:       int(grpcPort.Int64),
				ListenAddr: grpcListenAddr.String,
				MaxSteps:   int(grpcMaxSteps.Int64),
			}
		}

		controllers = append(controllers, controller)
	}

	return controllers, rows.Err()
}

// IsReadOnly returns false since SQLite configuration can be modified
func (s *SQLiteProvider) IsReadOnly() bool {
	return false
}

// Close closes the database connection
func (s *SQLiteProvider) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveConfig replaces the stored configuration with configData.
func (s *SQLiteProvider) SaveConfig(configData *ConfigData) error {
	if err := configData.Validate(); err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	configID, err := s.getOrCreateConfigID(tx)
	if err != nil {
		return err
	}

	if err := s.clearExistingConfig(tx, configID); err != nil {
		return fmt.Errorf("failed to clear existing config: %w", err)
	}

	if err := s.insertSimulation(tx, configID, &configData.Simulation); err != nil {
		return fmt.Errorf("failed to insert simulation config: %w", err)
	}

	if err := s.insertOutput(tx, configID, &configData.Output); err != nil {
		return fmt.Errorf("failed to insert output config: %w", err)
	}

	if err := s.insertStorageConfigs(tx, configID, &configData.Storage); err != nil {
		return fmt.Errorf("failed to insert storage configs: %w", err)
	}

	for _, controller := range configData.Controllers {
		if err := s.insertController(tx, configID, &controller); err != nil {
			return fmt.Errorf("failed to insert controller %s: %w", controller.Type, err)
		}
	}

	if _, err := tx.Exec(`UPDATE configs SET updated_at = datetime('now') WHERE id = ?`, configID); err != nil {
		return fmt.Errorf("failed to touch config: %w", err)
	}

	return tx.Commit()
}

func (s *SQLiteProvider) clearExistingConfig(tx *sql.Tx, configID int64) error {
	queries := []string{
		"DELETE FROM simulation_configs WHERE config_id = ?",
		"DELETE FROM output_configs WHERE config_id = ?",
		"DELETE FROM storage_configs WHERE config_id = ?",
		"DELETE FROM controller_configs WHERE config_id = ?",
	}

	for _, query := range queries {
		if _, err := tx.Exec(query, configID); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteProvider) insertSimulation(tx *sql.Tx, configID int64, sim *SimulationData) error {
	query := `
		INSERT INTO simulation_configs (
			config_id, spatial_resolution, days, time_steps_per_week, convergence_threshold,
			geothermal_heat_flux, love_number, tidal_heating_coefficient,
			gravity, albedo, solar_radiation_flux, depth, ice_depth
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := tx.Exec(query,
		configID, sim.SpatialResolution, sim.Days, sim.TimeStepsPerWeek, sim.ConvergenceThreshold,
		sim.GeothermalHeatFlux, sim.LoveNumber, sim.TidalHeatingCoefficient,
		sim.Gravity, sim.Albedo, sim.SolarRadiationFlux, sim.Depth, sim.IceDepth,
	)
	return err
}

func (s *SQLiteProvider) insertOutput(tx *sql.Tx, configID int64, output *OutputData) error {
	query := `
		INSERT INTO output_configs (config_id, record, frame_interval, step_limit, plot_path, frames_dir)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := tx.Exec(query,
		configID, output.Record, output.FrameInterval, output.StepLimit,
		nullString(output.PlotPath), nullString(output.FramesDir),
	)
	return err
}

func (s *SQLiteProvider) insertStorageConfigs(tx *sql.Tx, configID int64, storage *StorageData) error {
	query := `
		INSERT INTO storage_configs (config_id, backend_type, sqlite_path, timescale_connection_string)
		VALUES (?, ?, ?, ?)
	`

	if storage.SQLite != nil {
		if _, err := tx.Exec(query, configID, "sqlite", storage.SQLite.Path, nil); err != nil {
			return err
		}
	}

	if storage.TimescaleDB != nil {
		if _, err := tx.Exec(query, configID, "timescaledb", nil, storage.TimescaleDB.ConnectionString); err != nil {
			return err
		}
	}

	return nil
}

func (s *SQLiteProvider) insertController(tx *sql.Tx, configID int64, controller *ControllerData) error {
	query := `
		INSERT INTO controller_configs (
			config_id, controller_type, rest_cert, rest_key, rest_port, rest_listen_addr, rest_max_steps,
			grpc_cert, grpc_key, grpc_port, grpc_listen_addr, grpc_max_steps
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var cert, key, listenAddr sql.NullString
	var port, maxSteps sql.NullInt64
	if rest := controller.RESTServer; rest != nil {
		cert = nullString(rest.Cert)
		key = nullString(rest.Key)
		listenAddr = nullString(rest.ListenAddr)
		port = sql.NullInt64{Int64: int64(rest.Port), Valid: true}
		maxSteps = sql.NullInt64{Int64: int64(rest.MaxSteps), Valid: true}
	}

	var grpcCert, grpcKey, grpcListenAddr sql.NullString
	var grpcPort, grpcMaxSteps sql.NullInt64
	if g := controller.GRPCServer; g != nil {
		grpcCert = nullString(g.Cert)
		grpcKey = nullString(g.Key)
		grpcListenAddr = nullString(g.ListenAddr)
		grpcPort = sql.NullInt64{Int64: int64(g.Port), Valid: true}
		grpcMaxSteps = sql.NullInt64{Int64: int64(g.MaxSteps), Valid: true}
	}

	_, err := tx.Exec(query, configID, controller.Type, cert, key, port, listenAddr, maxSteps,
		grpcCert, grpcKey, grpcPort, grpcListenAddr, grpcMaxSteps)
	return err
}

// getOrCreateConfigID gets existing config ID or creates a new one
func (s *SQLiteProvider) getOrCreateConfigID(tx *sql.Tx) (int64, error) {
	var configID int64
	err := tx.QueryRow("SELECT id FROM configs WHERE name = ?", defaultConfigName).Scan(&configID)
	if err == nil {
		return configID, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("failed to look up config: %w", err)
	}

	result, err := tx.Exec(`INSERT INTO configs (name) VALUES (?)`, defaultConfigName)
	if err != nil {
		return 0, fmt.Errorf("failed to create default config: %w", err)
	}
	return result.LastInsertId()
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
