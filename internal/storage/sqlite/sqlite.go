// Package sqlite stores runs in a local SQLite database. Parameters, summary
// and profile are kept as MessagePack blobs.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/chrissnell/hydrosphere/internal/storage"
	"github.com/chrissnell/hydrosphere/pkg/hydrosphere"
	"github.com/chrissnell/hydrosphere/pkg/migrate"
	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// MigrationProvider returns the migrations of the run schema.
func MigrationProvider() *migrate.FSProvider {
	return migrate.NewFSProvider(migrationFS, "migrations", "run_schema_migrations")
}

// Storage is a RunStore backed by SQLite.
type Storage struct {
	db     *sql.DB
	logger *zap.SugaredLogger
}

type profileBlob struct {
	Depths      []float64 `msgpack:"depths"`
	Temperature []float64 `msgpack:"temperature"`
}

// New opens (or creates) the database at path and applies its migrations.
func New(ctx context.Context, path string, logger *zap.SugaredLogger) (*Storage, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	migrator := migrate.NewMigrator(db, MigrationProvider(), logger)
	if err := migrator.MigrateUp(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate run database: %w", err)
	}

	logger.Infow("SQLite run storage ready", "path", path)
	return &Storage{db: db, logger: logger}, nil
}

// SaveRun inserts or replaces a run.
func (s *Storage) SaveRun(ctx context.Context, run *storage.RunRecord) error {
	params, err := msgpack.Marshal(&run.Parameters)
	if err != nil {
		return fmt.Errorf("failed to encode parameters: %w", err)
	}
	summary, err := msgpack.Marshal(&run.Summary)
	if err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}
	profile, err := msgpack.Marshal(&profileBlob{Depths: run.Depths, Temperature: run.Temperature})
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}

	query := `
		INSERT OR REPLACE INTO runs (
			id, created_at, status, steps, total_steps, change,
			highest_ice_extent, parameters, summary, profile
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = s.db.ExecContext(ctx, query,
		run.ID.String(), run.CreatedAt.UnixNano(), run.Status.String(),
		run.Steps, run.TotalSteps, run.Change, run.HighestIceExtent,
		params, summary, profile,
	)
	if err != nil {
		return fmt.Errorf("failed to store run %s: %w", run.ID, err)
	}

	s.logger.Debugw("stored run", "id", run.ID, "status", run.Status)
	return nil
}

const selectRun = `
	SELECT id, created_at, status, steps, total_steps, change,
	       highest_ice_extent, parameters, summary, profile
	FROM runs
`

// GetRun returns the run with the given ID.
func (s *Storage) GetRun(ctx context.Context, id uuid.UUID) (*storage.RunRecord, error) {
	row := s.db.QueryRowContext(ctx, selectRun+" WHERE id = ?", id.String())

	run, err := scanRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrRunNotFound
		}
		return nil, fmt.Errorf("failed to load run %s: %w", id, err)
	}
	return run, nil
}

// ListRuns returns runs newest first.
func (s *Storage) ListRuns(ctx context.Context, limit int) ([]storage.RunRecord, error) {
	if limit <= 0 {
		limit = -1 // SQLite reads a negative LIMIT as no limit.
	}

	rows, err := s.db.QueryContext(ctx, selectRun+" ORDER BY created_at DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []storage.RunRecord
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, *run)
	}

	return runs, rows.Err()
}

// Close closes the database connection
func (s *Storage) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*storage.RunRecord, error) {
	var (
		run                      storage.RunRecord
		id, status               string
		createdAt                int64
		params, summary, profile []byte
	)

	err := row.Scan(&id, &createdAt, &status, &run.Steps, &run.TotalSteps, &run.Change,
		&run.HighestIceExtent, &params, &summary, &profile)
	if err != nil {
		return nil, err
	}

	if run.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("invalid run id %q: %w", id, err)
	}
	if run.Status, err = hydrosphere.ParseStatus(status); err != nil {
		return nil, err
	}
	run.CreatedAt = time.Unix(0, createdAt).UTC()

	if err := msgpack.Unmarshal(params, &run.Parameters); err != nil {
		return nil, fmt.Errorf("failed to decode parameters: %w", err)
	}
	if err := msgpack.Unmarshal(summary, &run.Summary); err != nil {
		return nil, fmt.Errorf("failed to decode summary: %w", err)
	}

	var p profileBlob
	if err := msgpack.Unmarshal(profile, &p); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}
	run.Depths = p.Depths
	run.Temperature = p.Temperature

	return &run, nil
}
