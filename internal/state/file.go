package state

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FileStore persists each set as a flat file with one identity per line and
// the marker as an empty file whose modification time is the timestamp.
// Writes go to a temp file in the same directory followed by a rename, so a
// reader never observes a half-written set.
type FileStore struct {
	dir string
}

// NewFileStore creates a FileStore rooted at dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create state directory %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

// ReadSet returns the named identity set, or (nil, nil) if absent.
func (s *FileStore) ReadSet(name string) ([]string, error) {
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read state set %s: %w", name, err)
	}

	var ids []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			ids = append(ids, line)
		}
	}
	return ids, nil
}

// WriteSet atomically replaces the named set.
func (s *FileStore) WriteSet(name string, ids []string) error {
	tmp, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file for state set %s: %w", name, err)
	}
	tmpPath := tmp.Name()

	var sb strings.Builder
	for _, id := range ids {
		sb.WriteString(id)
		sb.WriteByte('\n')
	}

	if _, err := tmp.WriteString(sb.String()); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write state set %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file for state set %s: %w", name, err)
	}

	if err := os.Rename(tmpPath, s.path(name)); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace state set %s: %w", name, err)
	}
	return nil
}

// LastRun returns the marker file's modification time, or the zero time if
// the marker does not exist.
func (s *FileStore) LastRun(name string) (time.Time, error) {
	info, err := os.Stat(s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return time.Time{}, nil
		}
		return time.Time{}, fmt.Errorf("failed to stat marker %s: %w", name, err)
	}
	return info.ModTime(), nil
}

// Touch creates or updates the marker to the current time.
func (s *FileStore) Touch(name string) error {
	path := s.path(name)
	now := time.Now()

	if err := os.Chtimes(path, now, now); err == nil {
		return nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0640)
	if err != nil {
		return fmt.Errorf("failed to create marker %s: %w", name, err)
	}
	return f.Close()
}

// Close is a no-op for the file backend.
func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) path(name string) string {
	return filepath.Join(s.dir, name)
}
