package presets

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

const (
	lockRetryDelay = 25 * time.Millisecond
	lockTimeout    = 2 * time.Second
)

// File stores the blob in a single JSON file. Writes go through a temp file
// and rename while holding an advisory lock on "<path>.lock", so concurrent
// processes never observe a torn file. Last writer wins.
type File struct {
	path string
	lock *flock.Flock
}

// NewFile returns a File persisting to path.
func NewFile(path string) *File {
	return &File{path: path, lock: flock.New(path + ".lock")}
}

// Path returns the blob location.
func (f *File) Path() string { return f.path }

// Close is a no-op; File holds no open handles between calls.
func (f *File) Close() error { return nil }

func (f *File) Read() ([]byte, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read presets file: %w", err)
	}
	return data, nil
}

func (f *File) Write(data []byte) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create presets directory: %w", err)
	}
	if err := checkWritable(dir); err != nil {
		return fmt.Errorf("presets directory %s not writable: %w", dir, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), lockTimeout)
	defer cancel()
	locked, err := f.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("acquire presets lock: %w", err)
	}
	if !locked {
		return errors.New("acquire presets lock: held by another process")
	}
	defer f.lock.Unlock() //nolint:errcheck

	tmpPath := f.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, f.path); err != nil {
		os.Remove(tmpPath) //nolint:errcheck
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
