package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"

	"reaper/pkg/engine"
)

// DockerEngine implements the Engine interface using the Docker client.
type DockerEngine struct {
	client *client.Client
}

// NewDockerEngine creates a new DockerEngine instance using client.FromEnv.
func NewDockerEngine() (*DockerEngine, error) {
	dockerClient, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create Docker client: %w", err)
	}

	// Check if Docker daemon is accessible
	ctx := context.Background()
	_, err = dockerClient.Ping(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Docker daemon: %w", err)
	}

	return &DockerEngine{
		client: dockerClient,
	}, nil
}

// ListAllContainers returns the IDs of every container, running or not.
func (d *DockerEngine) ListAllContainers(ctx context.Context) ([]engine.ContainerID, error) {
	summaries, err := d.client.ContainerList(ctx, container.ListOptions{All: true})
	if err != nil {
		return nil, fmt.Errorf("failed to list containers: %w", err)
	}

	ids := make([]engine.ContainerID, 0, len(summaries))
	for _, c := range summaries {
		ids = append(ids, engine.ContainerID(c.ID))
	}
	return ids, nil
}

// ListRunningContainers returns the IDs of currently running containers.
func (d *DockerEngine) ListRunningContainers(ctx context.Context) ([]engine.ContainerID, error) {
	summaries, err := d.client.ContainerList(ctx, container.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list running containers: %w", err)
	}

	ids := make([]engine.ContainerID, 0, len(summaries))
	for _, c := range summaries {
		ids = append(ids, engine.ContainerID(c.ID))
	}
	return ids, nil
}

// ContainerImageRef returns the image reference recorded in a container's
// configuration. The reference may be a tag, a name, or an ID.
func (d *DockerEngine) ContainerImageRef(ctx context.Context, id engine.ContainerID) (engine.ImageRef, error) {
	inspect, err := d.client.ContainerInspect(ctx, string(id))
	if err != nil {
		if client.IsErrNotFound(err) {
			return "", engine.ErrNotFound
		}
		return "", fmt.Errorf("failed to inspect container %s: %w", id, err)
	}

	if inspect.Config == nil || inspect.Config.Image == "" {
		return "", engine.ErrNotFound
	}
	return engine.ImageRef(inspect.Config.Image), nil
}

// ResolveImageID resolves an image reference to its canonical image ID.
func (d *DockerEngine) ResolveImageID(ctx context.Context, ref engine.ImageRef) (engine.ImageID, error) {
	inspect, _, err := d.client.ImageInspectWithRaw(ctx, string(ref))
	if err != nil {
		if client.IsErrNotFound(err) {
			return "", engine.ErrNotFound
		}
		return "", fmt.Errorf("failed to inspect image %s: %w", ref, err)
	}
	return engine.ImageID(inspect.ID), nil
}

// ListAllImages returns the canonical IDs of all top-level images. Dangling
// intermediate layers are left out; they go away with their parent image.
func (d *DockerEngine) ListAllImages(ctx context.Context) ([]engine.ImageID, error) {
	summaries, err := d.client.ImageList(ctx, image.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}

	ids := make([]engine.ImageID, 0, len(summaries))
	for _, img := range summaries {
		ids = append(ids, engine.ImageID(img.ID))
	}
	return ids, nil
}

// RemoveContainer deletes a container and its anonymous writable volumes.
func (d *DockerEngine) RemoveContainer(ctx context.Context, id engine.ContainerID) error {
	err := d.client.ContainerRemove(ctx, string(id), container.RemoveOptions{RemoveVolumes: true})
	if err != nil {
		if client.IsErrNotFound(err) {
			slog.Info("Container already gone, nothing to remove", "containerID", id)
			return nil
		}
		return fmt.Errorf("failed to remove container %s: %w", id, err)
	}
	return nil
}

// RemoveImage deletes an image by canonical ID.
func (d *DockerEngine) RemoveImage(ctx context.Context, id engine.ImageID) error {
	_, err := d.client.ImageRemove(ctx, string(id), image.RemoveOptions{PruneChildren: true})
	if err != nil {
		if client.IsErrNotFound(err) {
			slog.Info("Image already gone, nothing to remove", "imageID", id)
			return nil
		}
		return fmt.Errorf("failed to remove image %s: %w", id, err)
	}
	return nil
}
