// Package memory keeps runs in process memory.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/chrissnell/hydrosphere/internal/storage"
	"github.com/google/uuid"
)

// Storage is an in-memory RunStore.
type Storage struct {
	mu   sync.RWMutex
	runs map[uuid.UUID]storage.RunRecord
}

// New returns an empty in-memory store.
func New() *Storage {
	return &Storage{runs: make(map[uuid.UUID]storage.RunRecord)}
}

// SaveRun stores a copy of run, replacing any run with the same ID.
func (s *Storage) SaveRun(_ context.Context, run *storage.RunRecord) error {
	rec := *run
	rec.Depths = append([]float64(nil), run.Depths...)
	rec.Temperature = append([]float64(nil), run.Temperature...)

	s.mu.Lock()
	s.runs[run.ID] = rec
	s.mu.Unlock()
	return nil
}

// GetRun returns the run with the given ID.
func (s *Storage) GetRun(_ context.Context, id uuid.UUID) (*storage.RunRecord, error) {
	s.mu.RLock()
	rec, ok := s.runs[id]
	s.mu.RUnlock()
	if !ok {
		return nil, storage.ErrRunNotFound
	}
	return &rec, nil
}

// ListRuns returns runs newest first.
func (s *Storage) ListRuns(_ context.Context, limit int) ([]storage.RunRecord, error) {
	s.mu.RLock()
	runs := make([]storage.RunRecord, 0, len(s.runs))
	for _, rec := range s.runs {
		runs = append(runs, rec)
	}
	s.mu.RUnlock()

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].CreatedAt.After(runs[j].CreatedAt)
	})

	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

// Close is a no-op.
func (s *Storage) Close() error {
	return nil
}
