// Package storage defines persistence interfaces for generation runs.
package storage

import (
	"context"
	"time"

	"github.com/example/arraygen/covering/domain"
)

// Run is one persisted generation run: its parameters, outcome, and the
// finished array as a tab-separated dump.
type Run struct {
	// ID is the unique identifier for this run.
	ID string

	// Config is the configuration the run used, defaults applied.
	Config domain.Config

	// Seed is the random seed the run resolved to.
	Seed int64

	// NumRows is the number of rows in the finished array.
	NumRows int

	// Score is the score at the end of the run (0 for complete runs).
	Score int64

	// ArrayText is the tab-separated row-per-line dump of the array.
	ArrayText string

	// Duration is how long generation took.
	Duration time.Duration

	// CreatedAt is when the run started.
	CreatedAt time.Time
}

// ListOptions provides filtering options for list operations.
type ListOptions struct {
	// Pagination. Limit 0 means no limit.
	Limit  int
	Offset int
}

// RunRepository provides access to Run storage.
type RunRepository interface {
	// Create persists a new Run.
	Create(ctx context.Context, run *Run) error

	// Get retrieves a Run by full ID, or by unique ID prefix.
	Get(ctx context.Context, runID string) (*Run, error)

	// List lists Runs newest first.
	List(ctx context.Context, opts ListOptions) ([]*Run, error)

	// Delete deletes a Run by ID.
	Delete(ctx context.Context, runID string) error
}
