package presets

import (
	"fmt"
	"strings"
)

// Backend is a Persistence that owns a location and may hold resources.
type Backend interface {
	Persistence
	Path() string
	Close() error
}

// Open returns the backend named kind ("json" or "sqlite") at path.
func Open(kind, path string) (Backend, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("preset store path is empty")
	}
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", "json":
		return NewFile(path), nil
	case "sqlite":
		db, err := OpenSQLite(path)
		if err != nil {
			return nil, err
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unsupported preset backend %q", kind)
	}
}
