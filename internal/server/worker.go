package server

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cescalante/optilab/internal/bench"
	"github.com/cescalante/optilab/internal/opt"
	"github.com/cescalante/optilab/internal/store"
)

// progressTracker wraps an objective function so monitoring goroutines can
// observe evaluation counts and the best point seen so far while the
// optimizer runs.
type progressTracker struct {
	eval  func([]float64) float64
	evals atomic.Int64

	mu         sync.Mutex
	bestCost   float64
	bestParams []float64
}

func newProgressTracker(eval func([]float64) float64) *progressTracker {
	return &progressTracker{eval: eval, bestCost: math.Inf(1)}
}

func (pt *progressTracker) Eval(x []float64) float64 {
	cost := pt.eval(x)
	pt.evals.Add(1)

	pt.mu.Lock()
	if cost < pt.bestCost {
		pt.bestCost = cost
		if pt.bestParams == nil {
			pt.bestParams = make([]float64, len(x))
		}
		copy(pt.bestParams, x)
	}
	pt.mu.Unlock()
	return cost
}

// Best returns a copy of the best point and cost observed so far.
func (pt *progressTracker) Best() ([]float64, float64) {
	pt.mu.Lock()
	defer pt.mu.Unlock()
	if pt.bestParams == nil {
		return nil, pt.bestCost
	}
	params := make([]float64, len(pt.bestParams))
	copy(params, pt.bestParams)
	return params, pt.bestCost
}

func (pt *progressTracker) Evaluations() int {
	return int(pt.evals.Load())
}

// runJob executes an optimization job in the background.
// If checkpointStore is not nil and the job has CheckpointInterval > 0,
// periodic checkpoints are saved while the optimizer runs.
func runJob(ctx context.Context, jm *JobManager, checkpointStore store.Store, baseDir, jobID string) error {
	job, exists := jm.Snapshot(jobID)
	if !exists {
		return fmt.Errorf("job not found: %s", jobID)
	}

	if err := jm.UpdateJob(jobID, func(j *Job) { j.State = StateRunning }); err != nil {
		return err
	}

	slog.Info("Starting job", "job_id", jobID,
		"function", job.Config.Function, "optimizer", job.Config.Optimizer, "dim", job.Config.Dimensions)

	b, err := bench.Lookup(job.Config.Function)
	if err != nil {
		markJobFailed(jm, jobID, err)
		return err
	}
	if err := b.Validate(job.Config.Dimensions); err != nil {
		markJobFailed(jm, jobID, err)
		return err
	}
	lower, upper := b.BoundsFor(job.Config.Dimensions)

	optimizer, err := opt.New(job.Config.Optimizer, opt.Options{
		PopulationSize: job.Config.PopulationSize,
		Generations:    job.Config.Generations,
		MutationRate:   job.Config.MutationRate,
		CrossoverRate:  job.Config.CrossoverRate,
		MutationDelta:  job.Config.MutationDelta,
		Seed:           job.Config.Seed,
	})
	if err != nil {
		markJobFailed(jm, jobID, err)
		return err
	}

	tracker := newProgressTracker(b.Func)

	// Check for cancellation before starting the expensive part
	select {
	case <-ctx.Done():
		markJobCancelled(jm, jobID)
		return ctx.Err()
	default:
	}

	start := time.Now()

	progressDone := make(chan struct{})
	go monitorProgress(ctx, jm, tracker, jobID, start, progressDone)

	checkpointDone := make(chan struct{})
	if checkpointStore != nil && job.Config.CheckpointInterval > 0 {
		go monitorCheckpoints(ctx, jm, checkpointStore, tracker, jobID, checkpointDone)
	} else {
		close(checkpointDone)
	}

	result, runErr := optimizer.Run(tracker.Eval, lower, upper, job.Config.Dimensions)

	close(progressDone)
	if checkpointStore != nil && job.Config.CheckpointInterval > 0 {
		close(checkpointDone)
	}
	elapsed := time.Since(start)

	if runErr != nil {
		markJobFailed(jm, jobID, runErr)
		return runErr
	}

	select {
	case <-ctx.Done():
		markJobCancelled(jm, jobID)
		return ctx.Err()
	default:
	}

	// Persist the full trajectory so clients can fetch it after the run
	if err := writeTrace(baseDir, jobID, result); err != nil {
		slog.Warn("Failed to write trace", "job_id", jobID, "error", err)
	}

	endTime := time.Now()
	generation := len(result.Trajectory)
	err = jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateCompleted
		j.BestParams = result.BestParams
		j.BestCost = result.BestCost
		j.InitialCost = result.InitialCost
		j.Generation = generation
		j.Evaluations = result.Evaluations
		j.EndTime = &endTime
	})
	if err != nil {
		return err
	}

	if checkpointStore != nil {
		checkpoint := store.NewCheckpoint(jobID, result.BestParams, result.BestCost,
			result.InitialCost, generation, job.Config)
		if err := checkpointStore.SaveCheckpoint(jobID, checkpoint); err != nil {
			slog.Warn("Failed to save final checkpoint", "job_id", jobID, "error", err)
		}
	}

	eps := float64(result.Evaluations) / elapsed.Seconds()
	slog.Info("Job completed",
		"job_id", jobID,
		"elapsed", elapsed,
		"initial_cost", result.InitialCost,
		"best_cost", result.BestCost,
		"evals_per_second", eps,
	)

	jm.broadcaster.Broadcast(ProgressEvent{
		JobID:       jobID,
		State:       StateCompleted,
		Generation:  generation,
		Evaluations: result.Evaluations,
		BestCost:    result.BestCost,
		EPS:         eps,
		Timestamp:   time.Now(),
	})

	return nil
}

// writeTrace dumps the result trajectory as a JSONL trace file.
func writeTrace(baseDir, jobID string, result *opt.Result) error {
	tw, err := store.NewTraceWriter(baseDir, jobID, false)
	if err != nil {
		return err
	}
	for _, p := range result.Trajectory {
		entry := store.TraceEntry{
			Generation: p.Generation,
			BestCost:   p.BestCost,
			MeanCost:   p.MeanCost,
			Timestamp:  time.Now(),
		}
		if err := tw.Write(entry); err != nil {
			tw.Close()
			return err
		}
	}
	return tw.Close()
}

// monitorProgress periodically publishes tracker state to the job record
// and the SSE broadcaster while the optimizer runs.
func monitorProgress(ctx context.Context, jm *JobManager, tracker *progressTracker, jobID string, startTime time.Time, done chan struct{}) {
	ticker := time.NewTicker(500 * time.Millisecond) // Throttle to 2 updates per second
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			job, exists := jm.Snapshot(jobID)
			if !exists {
				return
			}

			evals := tracker.Evaluations()
			bestParams, bestCost := tracker.Best()
			if bestParams == nil {
				continue // No evaluations yet
			}

			// The optimizer does not report generations mid-run, so
			// estimate from the evaluation count.
			generation := 0
			if job.Config.PopulationSize > 0 {
				generation = evals / job.Config.PopulationSize
			}

			jm.UpdateJob(jobID, func(j *Job) {
				j.BestParams = bestParams
				j.BestCost = bestCost
				j.Generation = generation
				j.Evaluations = evals
			})

			var eps float64
			if elapsed := time.Since(startTime).Seconds(); elapsed > 0 {
				eps = float64(evals) / elapsed
			}

			jm.broadcaster.Broadcast(ProgressEvent{
				JobID:       jobID,
				State:       job.State,
				Generation:  generation,
				Evaluations: evals,
				BestCost:    bestCost,
				EPS:         eps,
				Timestamp:   time.Now(),
			})
		}
	}
}

// monitorCheckpoints periodically saves checkpoints during optimization
func monitorCheckpoints(ctx context.Context, jm *JobManager, checkpointStore store.Store, tracker *progressTracker, jobID string, done chan struct{}) {
	job, exists := jm.Snapshot(jobID)
	if !exists {
		return
	}

	interval := time.Duration(job.Config.CheckpointInterval) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := saveCheckpoint(jm, checkpointStore, tracker, jobID); err != nil {
				slog.Error("Failed to save checkpoint", "job_id", jobID, "error", err)
			}
		}
	}
}

// saveCheckpoint saves an in-flight checkpoint from tracker state.
func saveCheckpoint(jm *JobManager, checkpointStore store.Store, tracker *progressTracker, jobID string) error {
	job, exists := jm.Snapshot(jobID)
	if !exists {
		return fmt.Errorf("job not found: %s", jobID)
	}

	bestParams, bestCost := tracker.Best()
	if bestParams == nil {
		slog.Debug("Skipping checkpoint, no evaluations yet", "job_id", jobID)
		return nil
	}

	generation := 0
	if job.Config.PopulationSize > 0 {
		generation = tracker.Evaluations() / job.Config.PopulationSize
	}

	checkpoint := store.NewCheckpoint(jobID, bestParams, bestCost, job.InitialCost, generation, job.Config)
	if err := checkpointStore.SaveCheckpoint(jobID, checkpoint); err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}

	slog.Info("Checkpoint saved",
		"job_id", jobID,
		"generation", generation,
		"best_cost", bestCost,
	)
	return nil
}

// markJobFailed marks a job as failed with an error message
func markJobFailed(jm *JobManager, jobID string, err error) {
	endTime := time.Now()
	jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateFailed
		j.Error = err.Error()
		j.EndTime = &endTime
	})
	slog.Error("Job failed", "job_id", jobID, "error", err)
}

// markJobCancelled marks a job as cancelled
func markJobCancelled(jm *JobManager, jobID string) {
	endTime := time.Now()
	jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateCancelled
		j.EndTime = &endTime
	})
	slog.Info("Job cancelled", "job_id", jobID)
}
