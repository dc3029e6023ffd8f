package reaper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"reaper/internal/state"
	"reaper/pkg/engine"
)

// ImageResolver maps kept containers to the canonical image IDs they
// reference. The active set is always expressed in canonical IDs, never tags:
// an image with several tags stays protected while any tag is referenced by a
// kept container.
type ImageResolver struct {
	engine engine.Engine
}

// NewImageResolver creates a new ImageResolver.
func NewImageResolver(eng engine.Engine) *ImageResolver {
	return &ImageResolver{engine: eng}
}

// ActiveImages resolves each kept container's configured image reference to a
// canonical image ID. Containers whose reference no longer resolves (image
// removed out-of-band, container gone mid-cycle) are skipped with a log line.
func (r *ImageResolver) ActiveImages(ctx context.Context, keep Set[engine.ContainerID]) (Set[engine.ImageID], error) {
	active := make(Set[engine.ImageID], len(keep))

	for _, id := range keep.Items() {
		ref, err := r.engine.ContainerImageRef(ctx, id)
		if err != nil {
			if errors.Is(err, engine.ErrNotFound) {
				slog.Info("Skipping container without resolvable image reference", "containerID", id)
				continue
			}
			return nil, fmt.Errorf("failed to read image reference of container %s: %w", id, err)
		}

		imageID, err := r.engine.ResolveImageID(ctx, ref)
		if err != nil {
			if errors.Is(err, engine.ErrNotFound) {
				slog.Info("Skipping unresolvable image reference", "containerID", id, "imageRef", ref)
				continue
			}
			return nil, fmt.Errorf("failed to resolve image reference %s: %w", ref, err)
		}

		active.Add(imageID)
	}

	slog.Info("Resolved active images", "keptContainers", len(keep), "activeImages", len(active))
	return active, nil
}

// ImageReaper selects images for deletion. An image qualifies only if it was
// already present in the previous cycle's snapshot and no currently kept
// container references it by canonical ID. Images created since the previous
// cycle are never reaped in the cycle that created them.
type ImageReaper struct {
	engine engine.Engine
	store  state.Store
}

// NewImageReaper creates a new ImageReaper.
func NewImageReaper(eng engine.Engine, store state.Store) *ImageReaper {
	return &ImageReaper{
		engine: eng,
		store:  store,
	}
}

// Mark computes the image reap set for the current cycle and persists the
// current full image set as the baseline for the next cycle. In dry-run mode
// the snapshot is not advanced.
func (r *ImageReaper) Mark(ctx context.Context, active Set[engine.ImageID], isDryRun bool) (Set[engine.ImageID], error) {
	allIDs, err := r.engine.ListAllImages(ctx)
	if err != nil {
		return nil, fmt.Errorf("image enumeration failed: %w", err)
	}

	prevIDs, err := r.store.ReadSet(state.SetAllImages)
	if err != nil {
		return nil, fmt.Errorf("failed to read previous image set: %w", err)
	}

	allImages := NewSet(allIDs...)
	prevAllImages := setFromStrings[engine.ImageID](prevIDs)

	reap := prevAllImages.Diff(active)

	if !isDryRun {
		if err := r.store.WriteSet(state.SetAllImages, allImages.Strings()); err != nil {
			return nil, fmt.Errorf("failed to persist image set: %w", err)
		}
	}

	slog.Info("Image mark phase completed",
		"all", len(allImages), "previous", len(prevAllImages), "active", len(active),
		"reap", len(reap), "dryRun", isDryRun)
	return reap, nil
}
