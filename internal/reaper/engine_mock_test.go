package reaper

import (
	"context"

	"github.com/stretchr/testify/mock"

	"reaper/pkg/engine"
)

// MockEngine is a mock implementation of the Engine interface
type MockEngine struct {
	*mock.Mock
}

func NewMockEngine() *MockEngine {
	return &MockEngine{Mock: &mock.Mock{}}
}

func (m *MockEngine) ListAllContainers(ctx context.Context) ([]engine.ContainerID, error) {
	args := m.Called(ctx)
	return args.Get(0).([]engine.ContainerID), args.Error(1)
}

func (m *MockEngine) ListRunningContainers(ctx context.Context) ([]engine.ContainerID, error) {
	args := m.Called(ctx)
	return args.Get(0).([]engine.ContainerID), args.Error(1)
}

func (m *MockEngine) ContainerImageRef(ctx context.Context, id engine.ContainerID) (engine.ImageRef, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(engine.ImageRef), args.Error(1)
}

func (m *MockEngine) ResolveImageID(ctx context.Context, ref engine.ImageRef) (engine.ImageID, error) {
	args := m.Called(ctx, ref)
	return args.Get(0).(engine.ImageID), args.Error(1)
}

func (m *MockEngine) ListAllImages(ctx context.Context) ([]engine.ImageID, error) {
	args := m.Called(ctx)
	return args.Get(0).([]engine.ImageID), args.Error(1)
}

func (m *MockEngine) RemoveContainer(ctx context.Context, id engine.ContainerID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockEngine) RemoveImage(ctx context.Context, id engine.ImageID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
