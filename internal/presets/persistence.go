package presets

import (
	"slices"
	"sync"
)

// Persistence stores the serialized collection as one blob.
type Persistence interface {
	// Read returns the stored blob, or nil when nothing has been stored yet.
	Read() ([]byte, error)
	// Write replaces the stored blob.
	Write(data []byte) error
}

// Memory is an in-process Persistence, used by tests and dry runs.
type Memory struct {
	mu       sync.Mutex
	data     []byte
	writes   int
	readErr  error
	writeErr error
}

// NewMemory returns a Memory seeded with initial (may be nil).
func NewMemory(initial []byte) *Memory {
	return &Memory{data: slices.Clone(initial)}
}

func (m *Memory) Read() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readErr != nil {
		return nil, m.readErr
	}
	return slices.Clone(m.data), nil
}

func (m *Memory) Write(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	m.data = slices.Clone(data)
	m.writes++
	return nil
}

// Data returns a copy of the stored blob.
func (m *Memory) Data() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.data)
}

// Writes reports how many successful writes happened.
func (m *Memory) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

// FailReads makes subsequent reads return err (nil restores normal reads).
func (m *Memory) FailReads(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readErr = err
}

// FailWrites makes subsequent writes return err (nil restores normal writes).
func (m *Memory) FailWrites(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeErr = err
}
