package app

import "time"

// TargetKind identifies what a reaped or failed target is.
type TargetKind string

const (
	TargetContainer TargetKind = "container"
	TargetImage     TargetKind = "image"
)

// TargetFailure records one deletion that failed. Failures are collected
// rather than discarded so a cycle stays observable even when the engine
// refuses individual removals.
type TargetFailure struct {
	Kind TargetKind
	ID   string
	Err  error
}

// CycleReport summarizes one collection cycle.
type CycleReport struct {
	RunID        string
	StartedAt    time.Time
	Duration     time.Duration
	Skipped      bool
	Bootstrapped bool
	DryRun       bool

	ReapedContainers []string
	ReapedImages     []string
	Failures         []TargetFailure
}

// HasFailures reports whether any per-target deletion failed.
func (r *CycleReport) HasFailures() bool {
	return len(r.Failures) > 0
}
