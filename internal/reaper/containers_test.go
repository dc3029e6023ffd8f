package reaper

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"reaper/internal/state"
	"reaper/pkg/engine"
)

func newTestStore(t *testing.T) state.Store {
	t.Helper()
	store, err := state.NewFileStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestContainerReaper_Mark(t *testing.T) {
	tests := []struct {
		name         string
		all          []engine.ContainerID
		running      []engine.ContainerID
		prevExited   []string
		wantReap     []engine.ContainerID
		wantKeep     []engine.ContainerID
		wantPersist  []string
	}{
		{
			name:        "Stopped in two consecutive cycles is reaped",
			all:         []engine.ContainerID{"A", "B", "C"},
			running:     []engine.ContainerID{"A"},
			prevExited:  []string{"B"},
			wantReap:    []engine.ContainerID{"B"},
			wantKeep:    []engine.ContainerID{"A", "C"},
			wantPersist: []string{"B", "C"},
		},
		{
			name:        "Newly stopped container is never reaped in the same cycle",
			all:         []engine.ContainerID{"A", "B"},
			running:     []engine.ContainerID{"A"},
			prevExited:  nil,
			wantReap:    []engine.ContainerID{},
			wantKeep:    []engine.ContainerID{"A", "B"},
			wantPersist: []string{"B"},
		},
		{
			name:        "Restarted container drops out of the exited baseline",
			all:         []engine.ContainerID{"A", "B"},
			running:     []engine.ContainerID{"A", "B"},
			prevExited:  []string{"B"},
			wantReap:    []engine.ContainerID{},
			wantKeep:    []engine.ContainerID{"A", "B"},
			wantPersist: []string{},
		},
		{
			name:        "Container vanished between listings is excluded everywhere",
			all:         []engine.ContainerID{"A"},
			running:     []engine.ContainerID{"A", "GONE"},
			prevExited:  []string{"GONE"},
			wantReap:    []engine.ContainerID{},
			wantKeep:    []engine.ContainerID{"A"},
			wantPersist: []string{},
		},
		{
			name:        "Previously exited container removed out-of-band is not reaped",
			all:         []engine.ContainerID{"A"},
			running:     []engine.ContainerID{"A"},
			prevExited:  []string{"B"},
			wantReap:    []engine.ContainerID{},
			wantKeep:    []engine.ContainerID{"A"},
			wantPersist: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newTestStore(t)
			if tt.prevExited != nil {
				require.NoError(t, store.WriteSet(state.SetExitedContainers, tt.prevExited))
			}

			mockEngine := NewMockEngine()
			mockEngine.On("ListAllContainers", mock.Anything).Return(tt.all, nil)
			mockEngine.On("ListRunningContainers", mock.Anything).Return(tt.running, nil)

			reap, keep, err := NewContainerReaper(mockEngine, store).Mark(context.Background(), false)
			require.NoError(t, err)

			require.ElementsMatch(t, tt.wantReap, reap.Items())
			require.ElementsMatch(t, tt.wantKeep, keep.Items())

			persisted, err := store.ReadSet(state.SetExitedContainers)
			require.NoError(t, err)
			require.ElementsMatch(t, tt.wantPersist, persisted)

			mockEngine.AssertExpectations(t)
		})
	}
}

func TestContainerReaper_Mark_DryRunDoesNotAdvanceState(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.WriteSet(state.SetExitedContainers, []string{"B"}))

	mockEngine := NewMockEngine()
	mockEngine.On("ListAllContainers", mock.Anything).Return([]engine.ContainerID{"A", "B", "C"}, nil)
	mockEngine.On("ListRunningContainers", mock.Anything).Return([]engine.ContainerID{"A"}, nil)

	reap, _, err := NewContainerReaper(mockEngine, store).Mark(context.Background(), true)
	require.NoError(t, err)
	require.ElementsMatch(t, []engine.ContainerID{"B"}, reap.Items())

	persisted, err := store.ReadSet(state.SetExitedContainers)
	require.NoError(t, err)
	require.Equal(t, []string{"B"}, persisted, "dry run must not overwrite the exited baseline")
}

func TestContainerReaper_Mark_EnumerationFailureAborts(t *testing.T) {
	store := newTestStore(t)

	mockEngine := NewMockEngine()
	mockEngine.On("ListAllContainers", mock.Anything).Return([]engine.ContainerID(nil), errors.New("daemon hiccup"))

	_, _, err := NewContainerReaper(mockEngine, store).Mark(context.Background(), false)
	require.Error(t, err)

	persisted, err := store.ReadSet(state.SetExitedContainers)
	require.NoError(t, err)
	require.Nil(t, persisted, "failed enumeration must not write any state")
}

func TestContainerReaper_Mark_Idempotent(t *testing.T) {
	store := newTestStore(t)

	mockEngine := NewMockEngine()
	mockEngine.On("ListAllContainers", mock.Anything).Return([]engine.ContainerID{"A", "B"}, nil)
	mockEngine.On("ListRunningContainers", mock.Anything).Return([]engine.ContainerID{"A"}, nil)

	r := NewContainerReaper(mockEngine, store)

	reap1, _, err := r.Mark(context.Background(), false)
	require.NoError(t, err)
	require.Empty(t, reap1.Items(), "first observation of B as exited must not reap it")

	reap2, _, err := r.Mark(context.Background(), false)
	require.NoError(t, err)
	require.ElementsMatch(t, []engine.ContainerID{"B"}, reap2.Items(),
		"second consecutive observation qualifies B")
}
