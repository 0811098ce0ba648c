// Package timescaledb stores runs in PostgreSQL/TimescaleDB through gorm.
// Profiles are kept in a JSONB column so they can be queried in SQL.
package timescaledb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/chrissnell/hydrosphere/internal/storage"
	"github.com/chrissnell/hydrosphere/pkg/hydrosphere"
	"github.com/google/uuid"
	"github.com/jackc/pgtype"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Storage holds the connection for a TimescaleDB storage backend
type Storage struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
}

// RunModel is the row layout of a stored run.
type RunModel struct {
	ID               uuid.UUID    `gorm:"type:uuid;primaryKey"`
	CreatedAt        time.Time    `gorm:"not null;index:idx_runs_created_at,sort:desc"`
	Status           string       `gorm:"type:text;not null"`
	Steps            int          `gorm:"not null"`
	TotalSteps       int          `gorm:"not null"`
	Change           float64      `gorm:"not null"`
	HighestIceExtent float64      `gorm:"not null"`
	Parameters       pgtype.JSONB `gorm:"type:jsonb;not null"`
	Summary          pgtype.JSONB `gorm:"type:jsonb;not null"`
	Profile          pgtype.JSONB `gorm:"type:jsonb;default:'{}';not null"`
}

// TableName sets the table used for runs.
func (RunModel) TableName() string {
	return "hydrosphere_runs"
}

type profileDoc struct {
	Depths      []float64 `json:"depths"`
	Temperature []float64 `json:"temperature"`
}

// New connects to the database and creates the runs table if needed.
func New(ctx context.Context, connectionString string, zlog *zap.SugaredLogger) (*Storage, error) {
	if zlog == nil {
		zlog = zap.NewNop().Sugar()
	}

	dbLogger := logger.New(
		zap.NewStdLog(zlog.Desugar()),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	zlog.Info("connecting to TimescaleDB...")
	db, err := gorm.Open(postgres.Open(connectionString), &gorm.Config{Logger: dbLogger})
	if err != nil {
		return nil, fmt.Errorf("unable to create a TimescaleDB connection: %w", err)
	}

	if err := db.WithContext(ctx).AutoMigrate(&RunModel{}); err != nil {
		return nil, fmt.Errorf("could not create runs table: %w", err)
	}

	zlog.Info("TimescaleDB connection successful")
	return &Storage{db: db, logger: zlog}, nil
}

// SaveRun inserts or replaces a run.
func (t *Storage) SaveRun(ctx context.Context, run *storage.RunRecord) error {
	m, err := toModel(run)
	if err != nil {
		return err
	}

	if err := t.db.WithContext(ctx).Save(m).Error; err != nil {
		return fmt.Errorf("could not store run %s: %w", run.ID, err)
	}
	return nil
}

// GetRun returns the run with the given ID.
func (t *Storage) GetRun(ctx context.Context, id uuid.UUID) (*storage.RunRecord, error) {
	var m RunModel
	err := t.db.WithContext(ctx).First(&m, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, storage.ErrRunNotFound
		}
		return nil, fmt.Errorf("could not load run %s: %w", id, err)
	}
	return fromModel(&m)
}

// ListRuns returns runs newest first.
func (t *Storage) ListRuns(ctx context.Context, limit int) ([]storage.RunRecord, error) {
	q := t.db.WithContext(ctx).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var models []RunModel
	if err := q.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("could not list runs: %w", err)
	}

	runs := make([]storage.RunRecord, 0, len(models))
	for i := range models {
		run, err := fromModel(&models[i])
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, nil
}

// Close closes the underlying connection pool.
func (t *Storage) Close() error {
	sqlDB, err := t.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func toModel(run *storage.RunRecord) (*RunModel, error) {
	m := &RunModel{
		ID:               run.ID,
		CreatedAt:        run.CreatedAt,
		Status:           run.Status.String(),
		Steps:            run.Steps,
		TotalSteps:       run.TotalSteps,
		Change:           run.Change,
		HighestIceExtent: run.HighestIceExtent,
	}

	if err := setJSONB(&m.Parameters, run.Parameters); err != nil {
		return nil, fmt.Errorf("could not encode parameters: %w", err)
	}
	if err := setJSONB(&m.Summary, run.Summary); err != nil {
		return nil, fmt.Errorf("could not encode summary: %w", err)
	}
	if err := setJSONB(&m.Profile, profileDoc{Depths: run.Depths, Temperature: run.Temperature}); err != nil {
		return nil, fmt.Errorf("could not encode profile: %w", err)
	}

	return m, nil
}

func fromModel(m *RunModel) (*storage.RunRecord, error) {
	status, err := hydrosphere.ParseStatus(m.Status)
	if err != nil {
		return nil, err
	}

	run := &storage.RunRecord{
		ID:               m.ID,
		CreatedAt:        m.CreatedAt.UTC(),
		Status:           status,
		Steps:            m.Steps,
		TotalSteps:       m.TotalSteps,
		Change:           m.Change,
		HighestIceExtent: m.HighestIceExtent,
	}

	if err := json.Unmarshal(m.Parameters.Bytes, &run.Parameters); err != nil {
		return nil, fmt.Errorf("could not decode parameters of run %s: %w", m.ID, err)
	}
	if err := json.Unmarshal(m.Summary.Bytes, &run.Summary); err != nil {
		return nil, fmt.Errorf("could not decode summary of run %s: %w", m.ID, err)
	}

	var p profileDoc
	if err := json.Unmarshal(m.Profile.Bytes, &p); err != nil {
		return nil, fmt.Errorf("could not decode profile of run %s: %w", m.ID, err)
	}
	run.Depths = p.Depths
	run.Temperature = p.Temperature

	return run, nil
}

func setJSONB(dst *pgtype.JSONB, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return dst.Set(b)
}
