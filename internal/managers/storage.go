package managers

import (
	"context"
	"errors"
	"fmt"

	"github.com/chrissnell/hydrosphere/internal/storage"
	"github.com/chrissnell/hydrosphere/internal/storage/memory"
	"github.com/chrissnell/hydrosphere/internal/storage/sqlite"
	"github.com/chrissnell/hydrosphere/internal/storage/timescaledb"
	"github.com/chrissnell/hydrosphere/pkg/config"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StorageManager holds our active storage backends. It implements
// storage.RunStore: saves go to every engine, reads come from the first.
type StorageManager struct {
	Engines []StorageEngine
	logger  *zap.SugaredLogger
}

// StorageEngine is a named storage backend.
type StorageEngine struct {
	Name  string
	Store storage.RunStore
}

// NewStorageManager opens every configured storage backend. With none
// configured, runs are kept in memory.
func NewStorageManager(ctx context.Context, c config.StorageData, logger *zap.SugaredLogger) (*StorageManager, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	s := &StorageManager{logger: logger}

	if c.SQLite != nil {
		if err := s.AddEngine(ctx, "sqlite", c); err != nil {
			s.Close()
			return nil, fmt.Errorf("could not add SQLite storage backend: %w", err)
		}
	}

	if c.TimescaleDB != nil {
		if err := s.AddEngine(ctx, "timescaledb", c); err != nil {
			s.Close()
			return nil, fmt.Errorf("could not add TimescaleDB storage backend: %w", err)
		}
	}

	if len(s.Engines) == 0 {
		if err := s.AddEngine(ctx, "memory", c); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// AddEngine adds a new StorageEngine of name engineName
func (s *StorageManager) AddEngine(ctx context.Context, engineName string, c config.StorageData) error {
	var (
		store storage.RunStore
		err   error
	)

	switch engineName {
	case "sqlite":
		store, err = sqlite.New(ctx, c.SQLite.Path, s.logger)
	case "timescaledb":
		store, err = timescaledb.New(ctx, c.TimescaleDB.ConnectionString, s.logger)
	case "memory":
		store = memory.New()
	default:
		err = fmt.Errorf("unknown storage engine %q", engineName)
	}
	if err != nil {
		return err
	}

	s.logger.Infof("enabled %s run storage", engineName)
	s.Engines = append(s.Engines, StorageEngine{Name: engineName, Store: store})
	return nil
}

// SaveRun writes run to every engine. Every engine is attempted even when an
// earlier one fails.
func (s *StorageManager) SaveRun(ctx context.Context, run *storage.RunRecord) error {
	var errs []error
	for _, e := range s.Engines {
		if err := e.Store.SaveRun(ctx, run); err != nil {
			s.logger.Errorf("%s: could not store run %s: %v", e.Name, run.ID, err)
			errs = append(errs, fmt.Errorf("%s: %w", e.Name, err))
		}
	}
	return errors.Join(errs...)
}

// GetRun reads from the primary engine.
func (s *StorageManager) GetRun(ctx context.Context, id uuid.UUID) (*storage.RunRecord, error) {
	return s.primary().GetRun(ctx, id)
}

// ListRuns reads from the primary engine.
func (s *StorageManager) ListRuns(ctx context.Context, limit int) ([]storage.RunRecord, error) {
	return s.primary().ListRuns(ctx, limit)
}

// Close closes every engine.
func (s *StorageManager) Close() error {
	var errs []error
	for _, e := range s.Engines {
		if err := e.Store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", e.Name, err))
		}
	}
	return errors.Join(errs...)
}

func (s *StorageManager) primary() storage.RunStore {
	return s.Engines[0].Store
}
