// Located in pkg/engine/engine.go
package engine

import (
	"context"
	"errors"
)

// ContainerID is the engine-assigned stable identifier of a container.
type ContainerID string

// ImageID is the engine-assigned canonical identifier of an image. Unlike a
// tag, it never moves between images.
type ImageID string

// ImageRef is a human-assigned image reference: a tag, a name, or an ID as
// recorded in a container's configuration.
type ImageRef string

// ErrNotFound is returned when a container, image, or reference does not
// resolve to anything known to the engine.
var ErrNotFound = errors.New("not found")

// Engine defines the contract for container engine operations the collector
// consumes.
type Engine interface {
	// ListAllContainers returns the IDs of every container known to the
	// engine, running or not.
	ListAllContainers(ctx context.Context) ([]ContainerID, error)

	// ListRunningContainers returns the IDs of currently running containers.
	ListRunningContainers(ctx context.Context) ([]ContainerID, error)

	// ContainerImageRef returns the image reference a container was created
	// from, as recorded in its configuration.
	ContainerImageRef(ctx context.Context, id ContainerID) (ImageRef, error)

	// ResolveImageID resolves an image reference to its canonical image ID.
	ResolveImageID(ctx context.Context, ref ImageRef) (ImageID, error)

	// ListAllImages returns the canonical IDs of all top-level images.
	ListAllImages(ctx context.Context) ([]ImageID, error)

	// RemoveContainer deletes a container together with its anonymous
	// writable volumes.
	RemoveContainer(ctx context.Context, id ContainerID) error

	// RemoveImage deletes an image by canonical ID.
	RemoveImage(ctx context.Context, id ImageID) error
}
