package cmd

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/cescalante/optilab/internal/bench"
	"github.com/cescalante/optilab/internal/opt"
	"github.com/cescalante/optilab/internal/store"
	"github.com/spf13/cobra"
)

var (
	resumeDataDir string
	resumeStore   string
	resumeGens    int
)

var resumeCmd = &cobra.Command{
	Use:   "resume [job-id]",
	Short: "Resume an optimization from its checkpoint",
	Long: `Loads the checkpoint for the given job and continues optimizing.
The optimizer restarts with a fresh population seeded at the checkpointed
best point, so the best cost can only improve. By default the remaining
generations from the original configuration are run; --gens overrides that.`,
	Args: cobra.ExactArgs(1),
	RunE: runResume,
}

func init() {
	resumeCmd.Flags().StringVar(&resumeDataDir, "data-dir", "./data", "Base directory for checkpoint storage")
	resumeCmd.Flags().StringVar(&resumeStore, "store", "fs", "Checkpoint backend: fs or sqlite")
	resumeCmd.Flags().IntVar(&resumeGens, "gens", 0, "Generations to run (0 = remaining from original config)")
	rootCmd.AddCommand(resumeCmd)
}

func runResume(cmd *cobra.Command, args []string) error {
	jobID := args[0]

	checkpointStore, err := store.NewStore(resumeStore, resumeDataDir)
	if err != nil {
		return fmt.Errorf("failed to create checkpoint store: %w", err)
	}
	defer store.CloseIfSupported(checkpointStore)

	checkpoint, err := checkpointStore.LoadCheckpoint(jobID)
	if err != nil {
		return fmt.Errorf("failed to load checkpoint: %w", err)
	}
	if err := checkpoint.Validate(); err != nil {
		return fmt.Errorf("checkpoint is not resumable: %w", err)
	}

	gens := resumeGens
	if gens <= 0 {
		gens = checkpoint.Config.Generations - checkpoint.Generation
	}
	if gens <= 0 {
		return fmt.Errorf("job %s already ran %d of %d generations, use --gens to run more",
			jobID, checkpoint.Generation, checkpoint.Config.Generations)
	}

	b, err := bench.Lookup(checkpoint.Config.Function)
	if err != nil {
		return err
	}
	dim := checkpoint.Config.Dimensions
	if err := b.Validate(dim); err != nil {
		return err
	}
	lower, upper := b.BoundsFor(dim)

	optimizer, err := opt.New(checkpoint.Config.Optimizer, opt.Options{
		PopulationSize: checkpoint.Config.PopulationSize,
		Generations:    gens,
		MutationRate:   checkpoint.Config.MutationRate,
		CrossoverRate:  checkpoint.Config.CrossoverRate,
		MutationDelta:  checkpoint.Config.MutationDelta,
		Seed:           checkpoint.Config.Seed,
		InitialGuess:   checkpoint.BestParams,
	})
	if err != nil {
		return err
	}

	slog.Info("Resuming job", "job_id", jobID,
		"function", b.Name, "optimizer", checkpoint.Config.Optimizer,
		"from_generation", checkpoint.Generation, "generations", gens,
		"checkpoint_cost", checkpoint.BestCost)

	start := time.Now()
	result, err := optimizer.Run(b.Func, lower, upper, dim)
	if err != nil {
		return fmt.Errorf("optimization failed: %w", err)
	}
	elapsed := time.Since(start)

	// The restarted run can only replace the checkpoint when it improves on it
	bestParams, bestCost := checkpoint.BestParams, checkpoint.BestCost
	if result.BestCost < bestCost {
		bestParams, bestCost = result.BestParams, result.BestCost
	}

	updated := store.NewCheckpoint(jobID, bestParams, bestCost,
		checkpoint.InitialCost, checkpoint.Generation+gens, checkpoint.Config)
	if err := checkpointStore.SaveCheckpoint(jobID, updated); err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}

	// Extend the trace so plots show the whole history
	if err := appendResumeTrace(resumeDataDir, jobID, checkpoint.Generation, result); err != nil {
		slog.Warn("Failed to append trace", "job_id", jobID, "error", err)
	}

	slog.Info("Resume complete", "job_id", jobID, "elapsed", elapsed,
		"previous_cost", checkpoint.BestCost, "best_cost", bestCost)
	fmt.Printf("Resumed %s: cost %.8g -> %.8g after %d more generations\n",
		jobID, checkpoint.BestCost, bestCost, gens)

	return nil
}

// appendResumeTrace writes the resumed trajectory with generation numbers
// continuing after the checkpoint.
func appendResumeTrace(baseDir, jobID string, offset int, result *opt.Result) error {
	if len(result.Trajectory) == 0 {
		return nil
	}
	tw, err := store.NewTraceWriter(baseDir, jobID, true)
	if err != nil {
		return err
	}
	for _, p := range result.Trajectory {
		entry := store.TraceEntry{
			Generation: offset + p.Generation,
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
