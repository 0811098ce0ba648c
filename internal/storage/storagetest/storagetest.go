// Package storagetest holds behavior tests shared by every RunStore.
package storagetest

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/chrissnell/hydrosphere/internal/storage"
	"github.com/chrissnell/hydrosphere/pkg/hydrosphere"
	"github.com/google/uuid"
)

// Record returns a finished run with a small profile, created at the given
// offset from a fixed instant.
func Record(offset time.Duration) *storage.RunRecord {
	result := &hydrosphere.Result{
		Status:           hydrosphere.StatusConverged,
		Temperature:      hydrosphere.Profile{-160, -80, 0, 20, 40},
		Depths:           []float64{0, 1000, 2000, 3000, 4000},
		HighestIceExtent: 2000,
		Steps:            120,
		TotalSteps:       7000,
		Change:           9e-8,
	}
	rec := storage.NewRunRecord(hydrosphere.DefaultParameters(), result)
	rec.CreatedAt = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC).Add(offset)
	return rec
}

// Run exercises store through its whole interface. The store must be empty.
func Run(t *testing.T, store storage.RunStore) {
	t.Helper()
	ctx := context.Background()

	t.Run("missing run", func(t *testing.T) {
		_, err := store.GetRun(ctx, uuid.New())
		if !errors.Is(err, storage.ErrRunNotFound) {
			t.Errorf("GetRun() error = %v, want ErrRunNotFound", err)
		}
	})

	older := Record(0)
	newer := Record(time.Minute)
	newer.Status = hydrosphere.StatusStepBudgetExhausted
	newest := Record(2 * time.Minute)

	for _, rec := range []*storage.RunRecord{older, newest, newer} {
		if err := store.SaveRun(ctx, rec); err != nil {
			t.Fatalf("SaveRun() error = %v", err)
		}
	}

	t.Run("get", func(t *testing.T) {
		got, err := store.GetRun(ctx, newer.ID)
		if err != nil {
			t.Fatalf("GetRun() error = %v", err)
		}
		if !reflect.DeepEqual(got, newer) {
			t.Errorf("GetRun() = %+v, want %+v", got, newer)
		}
	})

	t.Run("list newest first", func(t *testing.T) {
		runs, err := store.ListRuns(ctx, 0)
		if err != nil {
			t.Fatalf("ListRuns() error = %v", err)
		}
		want := []uuid.UUID{newest.ID, newer.ID, older.ID}
		if len(runs) != len(want) {
			t.Fatalf("ListRuns() returned %d runs, want %d", len(runs), len(want))
		}
		for i, id := range want {
			if runs[i].ID != id {
				t.Errorf("runs[%d].ID = %v, want %v", i, runs[i].ID, id)
			}
		}
	})

	t.Run("list limit", func(t *testing.T) {
		runs, err := store.ListRuns(ctx, 2)
		if err != nil {
			t.Fatalf("ListRuns() error = %v", err)
		}
		if len(runs) != 2 || runs[0].ID != newest.ID {
			t.Errorf("ListRuns(2) = %d runs, first %v", len(runs), runs[0].ID)
		}
	})

	t.Run("replace", func(t *testing.T) {
		updated := *older
		updated.Status = hydrosphere.StatusDiverged
		if err := store.SaveRun(ctx, &updated); err != nil {
			t.Fatalf("SaveRun() error = %v", err)
		}
		got, err := store.GetRun(ctx, older.ID)
		if err != nil {
			t.Fatalf("GetRun() error = %v", err)
		}
		if got.Status != hydrosphere.StatusDiverged {
			t.Errorf("status = %v, want %v", got.Status, hydrosphere.StatusDiverged)
		}
		runs, _ := store.ListRuns(ctx, 0)
		if len(runs) != 3 {
			t.Errorf("ListRuns() after replace = %d runs, want 3", len(runs))
		}
	})
}
