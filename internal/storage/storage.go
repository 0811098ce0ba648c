// Package storage defines the run record and the interface implemented by
// the run storage backends.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/chrissnell/hydrosphere/pkg/config"
	"github.com/chrissnell/hydrosphere/pkg/hydrosphere"
	"github.com/google/uuid"
)

// ErrRunNotFound is returned by GetRun when no run has the requested ID.
var ErrRunNotFound = errors.New("run not found")

// RunStore persists finished simulation runs.
type RunStore interface {
	SaveRun(ctx context.Context, run *RunRecord) error
	GetRun(ctx context.Context, id uuid.UUID) (*RunRecord, error)
	// ListRuns returns the most recent runs first. A limit <= 0 returns all.
	ListRuns(ctx context.Context, limit int) ([]RunRecord, error)
	Close() error
}

// RunRecord is a finished run together with the inputs that produced it.
type RunRecord struct {
	ID               uuid.UUID             `json:"id" msgpack:"id"`
	CreatedAt        time.Time             `json:"created_at" msgpack:"created_at"`
	Parameters       config.SimulationData `json:"parameters" msgpack:"parameters"`
	Status           hydrosphere.Status    `json:"status" msgpack:"status"`
	Steps            int                   `json:"steps" msgpack:"steps"`
	TotalSteps       int                   `json:"total_steps" msgpack:"total_steps"`
	Change           float64               `json:"change" msgpack:"change"`
	HighestIceExtent float64               `json:"highest_ice_extent" msgpack:"highest_ice_extent"`
	Depths           []float64             `json:"depths,omitempty" msgpack:"depths,omitempty"`
	Temperature      []float64             `json:"temperature,omitempty" msgpack:"temperature,omitempty"`
	Summary          hydrosphere.Summary   `json:"summary" msgpack:"summary"`
}

// NewRunRecord builds a record with a fresh ID for a finished run.
func NewRunRecord(params hydrosphere.Parameters, r *hydrosphere.Result) *RunRecord {
	return &RunRecord{
		ID:               uuid.New(),
		CreatedAt:        time.Now().UTC(),
		Parameters:       config.FromParameters(params),
		Status:           r.Status,
		Steps:            r.Steps,
		TotalSteps:       r.TotalSteps,
		Change:           r.Change,
		HighestIceExtent: r.HighestIceExtent,
		Depths:           append([]float64(nil), r.Depths...),
		Temperature:      append([]float64(nil), r.Temperature...),
		Summary:          hydrosphere.Summarize(r),
	}
}

// Result rebuilds the engine result for plotting. Frames are not stored.
func (r *RunRecord) Result() *hydrosphere.Result {
	return &hydrosphere.Result{
		Status:           r.Status,
		Temperature:      hydrosphere.Profile(r.Temperature).Clone(),
		Depths:           append([]float64(nil), r.Depths...),
		HighestIceExtent: r.HighestIceExtent,
		Steps:            r.Steps,
		TotalSteps:       r.TotalSteps,
		Change:           r.Change,
	}
}

// Brief returns a copy without the profile arrays, for listings.
func (r RunRecord) Brief() RunRecord {
	r.Depths = nil
	r.Temperature = nil
	return r
}
