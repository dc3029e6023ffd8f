package state

import "time"

// Well-known record names for the generational bookkeeping.
const (
	SetExitedContainers = "exited-containers"
	SetAllImages        = "all-images"
	MarkerLastRun       = "last-run"
)

// Store is the durable key-value store for the generational sets and the
// last-run marker. A write must never leave a record in a partially-written
// state observable by a subsequent read. Single sequential process assumed;
// no concurrent-writer support.
type Store interface {
	// ReadSet returns the named identity set, or (nil, nil) if the set has
	// never been written.
	ReadSet(name string) ([]string, error)

	// WriteSet atomically replaces the named set with the given identities.
	WriteSet(name string, ids []string) error

	// LastRun returns the timestamp of the named marker, or the zero time if
	// the marker does not exist.
	LastRun(name string) (time.Time, error)

	// Touch creates or updates the named marker to the current time without
	// altering other state.
	Touch(name string) error

	// Close releases any resources held by the store.
	Close() error
}
