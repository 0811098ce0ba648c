package managers

import (
	"context"
	"fmt"

	"github.com/chrissnell/hydrosphere/internal/progress"
	"github.com/chrissnell/hydrosphere/internal/storage"
	"github.com/chrissnell/hydrosphere/pkg/hydrosphere"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RunManager executes simulations and records their results.
type RunManager struct {
	store  storage.RunStore
	logger *zap.SugaredLogger
}

// NewRunManager creates a RunManager saving into store.
func NewRunManager(store storage.RunStore, logger *zap.SugaredLogger) *RunManager {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &RunManager{store: store, logger: logger}
}

// Store returns the store runs are saved into.
func (m *RunManager) Store() storage.RunStore {
	return m.store
}

// Execute runs one simulation to completion and saves it. When opts has no
// progress observer, milestones are logged. Invalid parameters return an
// error wrapping hydrosphere.ErrInvalidConfiguration and nothing runs. A
// stopped run is returned with its cause and not saved; a diverged run is
// saved and reported through the result's status.
func (m *RunManager) Execute(ctx context.Context, params hydrosphere.Parameters, opts hydrosphere.Options) (*storage.RunRecord, *hydrosphere.Result, error) {
	id := uuid.New()
	if opts.Progress == nil {
		opts.Progress = progress.NewReporter(m.logger, id.String())
	}

	sim, err := hydrosphere.New(params, opts, m.logger)
	if err != nil {
		return nil, nil, err
	}

	m.logger.Infow("starting run",
		"id", id,
		"nodes", sim.Grid().Len(),
		"total_steps", params.TotalTimeSteps(),
		"step_limit", opts.StepLimit)

	res := sim.Run(ctx)
	if res.Status == hydrosphere.StatusStopped {
		m.logger.Warnw("run stopped", "id", id, "steps", res.Steps, "cause", res.Cause)
		return nil, res, res.Err()
	}

	rec := storage.NewRunRecord(params, res)
	rec.ID = id

	m.logger.Infow("run finished",
		"id", rec.ID,
		"status", res.Status,
		"steps", res.Steps,
		"highest_ice_extent", res.HighestIceExtent,
		"surface_temperature", rec.Summary.SurfaceTemperature,
		"base_temperature", rec.Summary.BaseTemperature)

	if err := m.store.SaveRun(ctx, rec); err != nil {
		return rec, res, fmt.Errorf("could not save run %s: %w", rec.ID, err)
	}

	return rec, res, nil
}
