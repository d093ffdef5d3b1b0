package server

import (
	"context"
	"errors"
	"testing"

	"github.com/cescalante/optilab/internal/store"
)

func TestRunJob_Completes(t *testing.T) {
	baseDir := t.TempDir()
	jm := NewJobManager()
	job := jm.CreateJob(testConfig())

	if err := runJob(context.Background(), jm, nil, baseDir, job.ID); err != nil {
		t.Fatalf("runJob failed: %v", err)
	}

	updated, _ := jm.Snapshot(job.ID)
	if updated.State != StateCompleted {
		t.Fatalf("state = %s, want completed (error: %s)", updated.State, updated.Error)
	}
	if len(updated.BestParams) != 2 {
		t.Errorf("BestParams length = %d, want 2", len(updated.BestParams))
	}
	if updated.BestCost > updated.InitialCost {
		t.Errorf("best cost %v worse than initial %v", updated.BestCost, updated.InitialCost)
	}
	if updated.Generation != updated.Config.Generations {
		t.Errorf("Generation = %d, want %d", updated.Generation, updated.Config.Generations)
	}
	if updated.Evaluations == 0 {
		t.Error("Evaluations should be counted")
	}
	if updated.EndTime == nil {
		t.Error("EndTime should be set")
	}

	// The trajectory must be on disk after completion
	reader, err := store.NewTraceReader(baseDir, job.ID)
	if err != nil {
		t.Fatalf("trace missing after run: %v", err)
	}
	defer reader.Close()
	entries, err := reader.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(entries) != updated.Config.Generations {
		t.Errorf("trace has %d entries, want %d", len(entries), updated.Config.Generations)
	}
}

func TestRunJob_SavesFinalCheckpoint(t *testing.T) {
	baseDir := t.TempDir()
	checkpointStore, err := store.NewFSStore(baseDir)
	if err != nil {
		t.Fatalf("NewFSStore failed: %v", err)
	}

	jm := NewJobManager()
	job := jm.CreateJob(testConfig())

	if err := runJob(context.Background(), jm, checkpointStore, baseDir, job.ID); err != nil {
		t.Fatalf("runJob failed: %v", err)
	}

	checkpoint, err := checkpointStore.LoadCheckpoint(job.ID)
	if err != nil {
		t.Fatalf("final checkpoint missing: %v", err)
	}
	updated, _ := jm.Snapshot(job.ID)
	if checkpoint.BestCost != updated.BestCost {
		t.Errorf("checkpoint cost %v != job cost %v", checkpoint.BestCost, updated.BestCost)
	}
	if err := checkpoint.IsCompatible(job.Config); err != nil {
		t.Errorf("checkpoint incompatible with its own config: %v", err)
	}
}

func TestRunJob_UnknownFunction(t *testing.T) {
	jm := NewJobManager()
	config := testConfig()
	config.Function = "no-such-function"
	job := jm.CreateJob(config)

	if err := runJob(context.Background(), jm, nil, t.TempDir(), job.ID); err == nil {
		t.Fatal("expected error for unknown function")
	}

	updated, _ := jm.Snapshot(job.ID)
	if updated.State != StateFailed {
		t.Errorf("state = %s, want failed", updated.State)
	}
	if updated.Error == "" {
		t.Error("error message should be recorded")
	}
}

func TestRunJob_FixedDimensionMismatch(t *testing.T) {
	jm := NewJobManager()
	config := testConfig()
	config.Function = "goldstein-price" // strictly two-dimensional
	config.Dimensions = 5
	job := jm.CreateJob(config)

	if err := runJob(context.Background(), jm, nil, t.TempDir(), job.ID); err == nil {
		t.Fatal("expected error for dimension mismatch")
	}

	updated, _ := jm.Snapshot(job.ID)
	if updated.State != StateFailed {
		t.Errorf("state = %s, want failed", updated.State)
	}
}

func TestRunJob_Cancelled(t *testing.T) {
	jm := NewJobManager()
	job := jm.CreateJob(testConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := runJob(ctx, jm, nil, t.TempDir(), job.ID)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	updated, _ := jm.Snapshot(job.ID)
	if updated.State != StateCancelled {
		t.Errorf("state = %s, want cancelled", updated.State)
	}
}

func TestRunJob_MissingJob(t *testing.T) {
	jm := NewJobManager()
	if err := runJob(context.Background(), jm, nil, t.TempDir(), "nonexistent"); err == nil {
		t.Fatal("expected error for missing job")
	}
}

func TestProgressTracker(t *testing.T) {
	calls := 0
	tracker := newProgressTracker(func(x []float64) float64 {
		calls++
		return x[0] * x[0]
	})

	if params, _ := tracker.Best(); params != nil {
		t.Error("Best should be nil before any evaluation")
	}

	tracker.Eval([]float64{3})
	tracker.Eval([]float64{1})
	tracker.Eval([]float64{2})

	if tracker.Evaluations() != 3 || calls != 3 {
		t.Errorf("Evaluations = %d (calls %d), want 3", tracker.Evaluations(), calls)
	}

	params, cost := tracker.Best()
	if cost != 1 || params[0] != 1 {
		t.Errorf("Best = %v at %v, want 1 at [1]", cost, params)
	}

	// Best must be a copy, not an alias into tracker state
	params[0] = 99
	again, _ := tracker.Best()
	if again[0] != 1 {
		t.Error("Best returned aliased storage")
	}
}
