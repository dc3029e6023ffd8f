package state

import (
	"testing"
	"time"
)

func newSQLiteTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewSQLiteStore() failed: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("Close() failed: %v", err)
		}
	})
	return store
}

func TestSQLiteStore_ReadSet_AbsentReturnsNil(t *testing.T) {
	store := newSQLiteTestStore(t)

	ids, err := store.ReadSet(SetExitedContainers)
	if err != nil {
		t.Fatalf("ReadSet() failed: %v", err)
	}
	if ids != nil {
		t.Errorf("Expected nil for an absent set, got %v", ids)
	}
}

func TestSQLiteStore_WriteReadRoundTrip(t *testing.T) {
	store := newSQLiteTestStore(t)

	want := []string{"aaa", "bbb", "ccc"}
	if err := store.WriteSet(SetExitedContainers, want); err != nil {
		t.Fatalf("WriteSet() failed: %v", err)
	}

	got, err := store.ReadSet(SetExitedContainers)
	if err != nil {
		t.Fatalf("ReadSet() failed: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("ReadSet() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ReadSet()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSQLiteStore_WriteSet_Overwrites(t *testing.T) {
	store := newSQLiteTestStore(t)

	if err := store.WriteSet(SetAllImages, []string{"old1", "old2"}); err != nil {
		t.Fatalf("WriteSet() failed: %v", err)
	}
	if err := store.WriteSet(SetAllImages, []string{"new"}); err != nil {
		t.Fatalf("WriteSet() failed: %v", err)
	}

	got, err := store.ReadSet(SetAllImages)
	if err != nil {
		t.Fatalf("ReadSet() failed: %v", err)
	}
	if len(got) != 1 || got[0] != "new" {
		t.Errorf("Expected overwritten set [new], got %v", got)
	}
}

func TestSQLiteStore_WrittenEmptySetIsNotAbsent(t *testing.T) {
	store := newSQLiteTestStore(t)

	if err := store.WriteSet(SetAllImages, nil); err != nil {
		t.Fatalf("WriteSet() failed: %v", err)
	}

	got, err := store.ReadSet(SetAllImages)
	if err != nil {
		t.Fatalf("ReadSet() failed: %v", err)
	}
	if got == nil {
		t.Error("A written empty set should read back as empty, not absent")
	}
	if len(got) != 0 {
		t.Errorf("Expected empty set, got %v", got)
	}
}

func TestSQLiteStore_SetsAreIndependent(t *testing.T) {
	store := newSQLiteTestStore(t)

	if err := store.WriteSet(SetExitedContainers, []string{"c1"}); err != nil {
		t.Fatalf("WriteSet() failed: %v", err)
	}
	if err := store.WriteSet(SetAllImages, []string{"i1", "i2"}); err != nil {
		t.Fatalf("WriteSet() failed: %v", err)
	}

	containers, err := store.ReadSet(SetExitedContainers)
	if err != nil {
		t.Fatalf("ReadSet() failed: %v", err)
	}
	images, err := store.ReadSet(SetAllImages)
	if err != nil {
		t.Fatalf("ReadSet() failed: %v", err)
	}

	if len(containers) != 1 || len(images) != 2 {
		t.Errorf("Sets bled into each other: containers=%v images=%v", containers, images)
	}
}

func TestSQLiteStore_Marker(t *testing.T) {
	store := newSQLiteTestStore(t)

	lastRun, err := store.LastRun(MarkerLastRun)
	if err != nil {
		t.Fatalf("LastRun() failed: %v", err)
	}
	if !lastRun.IsZero() {
		t.Errorf("Expected zero time for absent marker, got %v", lastRun)
	}

	before := time.Now().Add(-2 * time.Second)
	if err := store.Touch(MarkerLastRun); err != nil {
		t.Fatalf("Touch() failed: %v", err)
	}

	lastRun, err = store.LastRun(MarkerLastRun)
	if err != nil {
		t.Fatalf("LastRun() failed: %v", err)
	}
	if lastRun.IsZero() || lastRun.Before(before) {
		t.Errorf("Expected fresh marker timestamp, got %v", lastRun)
	}
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	store, err := NewSQLiteStore(dir)
	if err != nil {
		t.Fatalf("NewSQLiteStore() failed: %v", err)
	}
	if err := store.WriteSet(SetAllImages, []string{"i1"}); err != nil {
		t.Fatalf("WriteSet() failed: %v", err)
	}
	if err := store.Touch(MarkerLastRun); err != nil {
		t.Fatalf("Touch() failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	reopened, err := NewSQLiteStore(dir)
	if err != nil {
		t.Fatalf("NewSQLiteStore() reopen failed: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.ReadSet(SetAllImages)
	if err != nil {
		t.Fatalf("ReadSet() failed: %v", err)
	}
	if len(got) != 1 || got[0] != "i1" {
		t.Errorf("Expected [i1] after reopen, got %v", got)
	}

	lastRun, err := reopened.LastRun(MarkerLastRun)
	if err != nil {
		t.Fatalf("LastRun() failed: %v", err)
	}
	if lastRun.IsZero() {
		t.Error("Expected marker to survive reopen")
	}
}

func TestOpen_BackendSelection(t *testing.T) {
	dir := t.TempDir()

	fileStore, err := Open(BackendFile, dir)
	if err != nil {
		t.Fatalf("Open(file) failed: %v", err)
	}
	if _, ok := fileStore.(*FileStore); !ok {
		t.Errorf("Open(file) returned %T, want *FileStore", fileStore)
	}

	sqliteStore, err := Open(BackendSQLite, dir)
	if err != nil {
		t.Fatalf("Open(sqlite) failed: %v", err)
	}
	defer sqliteStore.Close()
	if _, ok := sqliteStore.(*SQLiteStore); !ok {
		t.Errorf("Open(sqlite) returned %T, want *SQLiteStore", sqliteStore)
	}

	if _, err := Open("etcd", dir); err == nil {
		t.Error("Open() with unsupported backend should fail")
	}
}
