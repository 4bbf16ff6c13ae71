package presets

import "errors"

var (
	// ErrStorage wraps every persistence failure reported by StorageErr.
	ErrStorage = errors.New("preset storage unavailable")
	// ErrNotFound is returned by operations that require an existing preset.
	ErrNotFound = errors.New("preset not found")
	// ErrNameConflict is returned when a rename collides with another preset.
	ErrNameConflict = errors.New("preset name already in use")
)
