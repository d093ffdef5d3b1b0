package store

import (
	"fmt"
	"math"
	"time"
)

// RunConfig holds the configuration of an optimization run (checkpoint
// copy). Living here avoids an import cycle with the server package.
// The rate fields are pointers so a rate of zero survives JSON decoding:
// an absent field stays nil (optimizer default), a present zero is kept.
type RunConfig struct {
	Function           string   `json:"function"`
	Optimizer          string   `json:"optimizer"`
	Dimensions         int      `json:"dimensions"`
	Generations        int      `json:"generations"`
	PopulationSize     int      `json:"populationSize"`
	Seed               int64    `json:"seed"`
	MutationRate       *float64 `json:"mutationRate,omitempty"`
	CrossoverRate      *float64 `json:"crossoverRate,omitempty"`
	MutationDelta      *float64 `json:"mutationDelta,omitempty"`
	CheckpointInterval int      `json:"checkpointInterval,omitempty"` // Checkpoint every N seconds (0 = disabled)
}

// Checkpoint represents a saved optimization state that can be resumed later.
//
// Only the best parameters found so far are persisted, never the internal
// optimizer state (population, velocities). Resuming therefore restarts the
// optimizer with a fresh population seeded at BestParams: the best cost can
// only improve, but the run is not a bit-exact continuation. Persisting
// populations would tie the checkpoint format to each optimizer's internals
// and was not worth the coupling.
type Checkpoint struct {
	// JobID is the unique identifier for this optimization job
	JobID string `json:"jobId"`

	// BestParams is the point in the search space with the lowest cost seen
	// so far; its length equals Config.Dimensions
	BestParams []float64 `json:"bestParams"`

	// BestCost is the objective value at BestParams. Several benchmark
	// functions have negative minima, so no sign constraint applies.
	BestCost float64 `json:"bestCost"`

	// InitialCost is the best cost of the first generation, kept for
	// improvement tracking
	InitialCost float64 `json:"initialCost"`

	// Generation is the number of completed generations at save time
	Generation int `json:"generation"`

	// Timestamp records when this checkpoint was created
	Timestamp time.Time `json:"timestamp"`

	// Config holds the run configuration, needed for validation during resume.
	// We ensure that resumed jobs use compatible settings (same function,
	// optimizer, dimensionality).
	Config RunConfig `json:"config"`
}

// CheckpointInfo contains metadata about a checkpoint without the full
// parameter data. Used for listing checkpoints without loading parameter
// vectors.
type CheckpointInfo struct {
	JobID      string    `json:"jobId"`
	BestCost   float64   `json:"bestCost"`
	Generation int       `json:"generation"`
	Timestamp  time.Time `json:"timestamp"`
	Function   string    `json:"function"`
	Optimizer  string    `json:"optimizer"`
	Dimensions int       `json:"dimensions"`
}

// NewCheckpoint creates a checkpoint from runtime job state.
func NewCheckpoint(jobID string, bestParams []float64, bestCost, initialCost float64, generation int, config RunConfig) *Checkpoint {
	return &Checkpoint{
		JobID:       jobID,
		BestParams:  bestParams,
		BestCost:    bestCost,
		InitialCost: initialCost,
		Generation:  generation,
		Timestamp:   time.Now(),
		Config:      config,
	}
}

// ToInfo converts a full Checkpoint to CheckpointInfo (metadata only).
func (c *Checkpoint) ToInfo() CheckpointInfo {
	return CheckpointInfo{
		JobID:      c.JobID,
		BestCost:   c.BestCost,
		Generation: c.Generation,
		Timestamp:  c.Timestamp,
		Function:   c.Config.Function,
		Optimizer:  c.Config.Optimizer,
		Dimensions: c.Config.Dimensions,
	}
}

// Validate checks if the checkpoint has valid data.
// Returns an error if any required field is missing or invalid.
func (c *Checkpoint) Validate() error {
	if c.JobID == "" {
		return &ValidationError{Field: "JobID", Reason: "cannot be empty"}
	}
	if len(c.BestParams) == 0 {
		return &ValidationError{Field: "BestParams", Reason: "cannot be empty"}
	}
	if math.IsNaN(c.BestCost) {
		return &ValidationError{Field: "BestCost", Reason: "cannot be NaN"}
	}
	if math.IsNaN(c.InitialCost) {
		return &ValidationError{Field: "InitialCost", Reason: "cannot be NaN"}
	}
	if c.Generation < 0 {
		return &ValidationError{Field: "Generation", Reason: "cannot be negative"}
	}
	if c.Timestamp.IsZero() {
		return &ValidationError{Field: "Timestamp", Reason: "cannot be zero"}
	}
	if c.Config.Function == "" {
		return &ValidationError{Field: "Config.Function", Reason: "cannot be empty"}
	}
	if c.Config.Optimizer == "" {
		return &ValidationError{Field: "Config.Optimizer", Reason: "cannot be empty"}
	}
	if c.Config.Dimensions <= 0 {
		return &ValidationError{Field: "Config.Dimensions", Reason: "must be positive"}
	}
	if c.Config.Generations <= 0 {
		return &ValidationError{Field: "Config.Generations", Reason: "must be positive"}
	}
	if c.Config.PopulationSize <= 0 {
		return &ValidationError{Field: "Config.PopulationSize", Reason: "must be positive"}
	}
	if len(c.BestParams) != c.Config.Dimensions {
		return &ValidationError{
			Field:  "BestParams",
			Reason: fmt.Sprintf("length mismatch: %d params for %d dimensions", len(c.BestParams), c.Config.Dimensions),
		}
	}
	return nil
}

// ValidationError represents a checkpoint validation error.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Field + " " + e.Reason
}

// IsCompatible checks if this checkpoint can be resumed with the given config.
// Returns an error if the configs are incompatible.
func (c *Checkpoint) IsCompatible(config RunConfig) error {
	if c.Config.Function != config.Function {
		return &CompatibilityError{
			Field:    "Function",
			Expected: c.Config.Function,
			Actual:   config.Function,
		}
	}
	if c.Config.Optimizer != config.Optimizer {
		return &CompatibilityError{
			Field:    "Optimizer",
			Expected: c.Config.Optimizer,
			Actual:   config.Optimizer,
		}
	}
	if c.Config.Dimensions != config.Dimensions {
		return &CompatibilityError{
			Field:    "Dimensions",
			Expected: fmt.Sprintf("%d", c.Config.Dimensions),
			Actual:   fmt.Sprintf("%d", config.Dimensions),
		}
	}
	return nil
}

// CompatibilityError represents a checkpoint compatibility error.
type CompatibilityError struct {
	Field    string
	Expected string
	Actual   string
}

func (e *CompatibilityError) Error() string {
	return "compatibility error: " + e.Field + " mismatch (expected " + e.Expected + ", got " + e.Actual + ")"
}
