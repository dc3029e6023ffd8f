package reaper

import (
	"context"
	"fmt"
	"log/slog"

	"reaper/internal/state"
	"reaper/pkg/engine"
)

// ContainerReaper selects containers for deletion using two-generation
// confirmation: a container qualifies only after being observed as not
// running in two consecutive cycles. A container that merely happens to be
// stopped at the instant of a single snapshot (mid-restart, say) survives.
type ContainerReaper struct {
	engine engine.Engine
	store  state.Store
}

// NewContainerReaper creates a new ContainerReaper.
func NewContainerReaper(eng engine.Engine, store state.Store) *ContainerReaper {
	return &ContainerReaper{
		engine: eng,
		store:  store,
	}
}

// Mark computes the reap and keep sets for the current cycle and persists the
// freshly observed exited set as the baseline for the next cycle. The
// persistence happens regardless of whether the deletions later succeed, so
// repeated deletion failures do not perpetually re-flag the same survivors.
// In dry-run mode the snapshot is not advanced.
func (r *ContainerReaper) Mark(ctx context.Context, isDryRun bool) (reap, keep Set[engine.ContainerID], err error) {
	allIDs, err := r.engine.ListAllContainers(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("container enumeration failed: %w", err)
	}
	runningIDs, err := r.engine.ListRunningContainers(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("running container enumeration failed: %w", err)
	}

	prevIDs, err := r.store.ReadSet(state.SetExitedContainers)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read previous exited set: %w", err)
	}

	all := NewSet(allIDs...)
	running := NewSet(runningIDs...)
	prevExited := setFromStrings[engine.ContainerID](prevIDs)

	// A container gone between the two listings falls out of `all` or
	// `running` and is simply excluded from every derived set.
	exited := all.Diff(running)
	reap = exited.Intersect(prevExited)
	keep = all.Diff(reap)

	if !isDryRun {
		if err := r.store.WriteSet(state.SetExitedContainers, exited.Strings()); err != nil {
			return nil, nil, fmt.Errorf("failed to persist exited set: %w", err)
		}
	}

	slog.Info("Container mark phase completed",
		"all", len(all), "running", len(running), "exited", len(exited),
		"previouslyExited", len(prevExited), "reap", len(reap), "keep", len(keep),
		"dryRun", isDryRun)
	return reap, keep, nil
}
