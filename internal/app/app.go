package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"reaper/internal/config"
	"reaper/internal/reaper"
	"reaper/internal/state"
	"reaper/internal/ui"
	"reaper/pkg/engine"
)

// Reaper orchestrates one collection cycle: container mark, active-image
// resolution, image mark, then the deletions. It assumes a single sequential
// process; two orchestrators racing on the same store can corrupt the
// generational sets.
type Reaper struct {
	engine  engine.Engine
	store   state.Store
	cfg     *config.Config
	console *ui.Console

	containers *reaper.ContainerReaper
	resolver   *reaper.ImageResolver
	images     *reaper.ImageReaper
}

// New wires a Reaper from an engine, a state store, and configuration.
func New(eng engine.Engine, store state.Store, cfg *config.Config) *Reaper {
	return &Reaper{
		engine:     eng,
		store:      store,
		cfg:        cfg,
		console:    ui.NewConsole(),
		containers: reaper.NewContainerReaper(eng, store),
		resolver:   reaper.NewImageResolver(eng),
		images:     reaper.NewImageReaper(eng, store),
	}
}

// Run executes one collection cycle and returns its report. Enumeration and
// state errors abort the whole cycle before anything is deleted; individual
// deletion failures are collected into the report and do not stop the batch.
func (a *Reaper) Run(ctx context.Context, force, isDryRun bool) (*CycleReport, error) {
	report := &CycleReport{
		RunID:     uuid.New().String(),
		StartedAt: time.Now(),
		DryRun:    isDryRun,
	}
	defer func() {
		report.Duration = time.Since(report.StartedAt)
	}()

	slog.Info("Starting collection cycle", "runId", report.RunID, "force", force, "dryRun", isDryRun)

	lastRun, err := a.store.LastRun(state.MarkerLastRun)
	if err != nil {
		return nil, fmt.Errorf("failed to read last-run marker: %w", err)
	}
	bootstrap := lastRun.IsZero()

	if !bootstrap && !force {
		if elapsed := time.Since(lastRun); elapsed < a.cfg.MinInterval {
			report.Skipped = true
			a.console.PrintInfo(fmt.Sprintf("Last cycle ran %s ago (minimum interval %s); skipping. Use --force to run anyway.",
				elapsed.Round(time.Second), a.cfg.MinInterval))
			slog.Info("Cycle skipped by interval gate", "runId", report.RunID, "elapsed", elapsed, "minInterval", a.cfg.MinInterval)
			return report, nil
		}
	}

	if isDryRun {
		a.console.PrintInfo("Dry run: nothing will be deleted and state will not advance.")
	}

	// Mark phase for containers. On bootstrap there is no prior observation
	// to confirm against, so the reap set is discarded and only the snapshot
	// is seeded.
	containerReap, keep, err := a.containers.Mark(ctx, isDryRun)
	if err != nil {
		return nil, err
	}

	if bootstrap {
		return report, a.bootstrapCycle(ctx, report, isDryRun)
	}

	active, err := a.resolver.ActiveImages(ctx, keep)
	if err != nil {
		return nil, err
	}

	imageReap, err := a.images.Mark(ctx, active, isDryRun)
	if err != nil {
		return nil, err
	}

	a.sweep(ctx, report, containerReap, imageReap, isDryRun)

	if !isDryRun {
		if err := a.store.Touch(state.MarkerLastRun); err != nil {
			return nil, fmt.Errorf("failed to update last-run marker: %w", err)
		}
	}

	a.printSummary(report)
	slog.Info("Collection cycle completed", "runId", report.RunID,
		"reapedContainers", len(report.ReapedContainers), "reapedImages", len(report.ReapedImages),
		"failures", len(report.Failures), "dryRun", isDryRun)
	return report, nil
}

// bootstrapCycle seeds the image snapshot and the last-run marker on a first
// run (or after the state was cleared) and deletes nothing.
func (a *Reaper) bootstrapCycle(ctx context.Context, report *CycleReport, isDryRun bool) error {
	report.Bootstrapped = true

	if _, err := a.images.Mark(ctx, reaper.Set[engine.ImageID]{}, isDryRun); err != nil {
		return err
	}

	if !isDryRun {
		if err := a.store.Touch(state.MarkerLastRun); err != nil {
			return fmt.Errorf("failed to seed last-run marker: %w", err)
		}
	}

	if isDryRun {
		a.console.PrintInfo("No previous run found; a real run would record a baseline and delete nothing.")
	} else {
		a.console.PrintInfo("No previous run found; baseline recorded, nothing deleted.")
	}
	slog.Info("Bootstrap cycle completed", "runId", report.RunID, "dryRun", isDryRun)
	return nil
}

// sweep issues the deletions. Each target is attempted independently; one
// failure is recorded and does not block the remaining targets.
func (a *Reaper) sweep(ctx context.Context, report *CycleReport, containers reaper.Set[engine.ContainerID], images reaper.Set[engine.ImageID], isDryRun bool) {
	for _, id := range containers.Items() {
		if isDryRun {
			a.console.PrintInfo(fmt.Sprintf("Would remove container %s", shortID(string(id))))
			report.ReapedContainers = append(report.ReapedContainers, string(id))
			continue
		}
		if err := a.engine.RemoveContainer(ctx, id); err != nil {
			report.Failures = append(report.Failures, TargetFailure{Kind: TargetContainer, ID: string(id), Err: err})
			a.console.PrintWarning(fmt.Sprintf("Failed to remove container %s: %s", shortID(string(id)), err))
			slog.Warn("Container removal failed", "containerID", id, "error", err)
			continue
		}
		report.ReapedContainers = append(report.ReapedContainers, string(id))
		slog.Info("Removed container", "containerID", id)
	}

	for _, id := range images.Items() {
		if isDryRun {
			a.console.PrintInfo(fmt.Sprintf("Would remove image %s", shortID(string(id))))
			report.ReapedImages = append(report.ReapedImages, string(id))
			continue
		}
		if err := a.engine.RemoveImage(ctx, id); err != nil {
			report.Failures = append(report.Failures, TargetFailure{Kind: TargetImage, ID: string(id), Err: err})
			a.console.PrintWarning(fmt.Sprintf("Failed to remove image %s: %s", shortID(string(id)), err))
			slog.Warn("Image removal failed", "imageID", id, "error", err)
			continue
		}
		report.ReapedImages = append(report.ReapedImages, string(id))
		slog.Info("Removed image", "imageID", id)
	}
}

func (a *Reaper) printSummary(report *CycleReport) {
	verb := "Removed"
	if report.DryRun {
		verb = "Would remove"
	}
	summary := fmt.Sprintf("%s %d container(s) and %d image(s)", verb,
		len(report.ReapedContainers), len(report.ReapedImages))
	if report.HasFailures() {
		a.console.PrintWarning(fmt.Sprintf("%s; %d deletion(s) failed", summary, len(report.Failures)))
		return
	}
	a.console.PrintSuccess(summary)
}

// shortID truncates an engine ID for console output, keeping any digest
// prefix readable.
func shortID(id string) string {
	const max = 19 // "sha256:" plus 12 hex chars
	if len(id) <= max {
		return id
	}
	return id[:max]
}
