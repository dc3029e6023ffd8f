package state

import "fmt"

// Backend identifiers accepted in configuration.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Open returns the appropriate Store implementation for the configured
// backend. This decouples the reaping cycle from the persistence mechanism.
func Open(backend, dir string) (Store, error) {
	switch backend {
	case BackendFile:
		return NewFileStore(dir)
	case BackendSQLite:
		return NewSQLiteStore(dir)
	default:
		return nil, fmt.Errorf("unsupported state backend: %s", backend)
	}
}
