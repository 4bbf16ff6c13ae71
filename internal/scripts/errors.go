package scripts

import (
	"errors"
	"fmt"

	"kontenai/internal/generation"
)

var (
	// ErrStaleResult is returned when the cache was reset while a call was
	// outstanding. The result of that call was discarded.
	ErrStaleResult = errors.New("script result discarded after reset")
	// ErrSlotBusy is returned when a slot already has a call in flight.
	ErrSlotBusy = errors.New("slot is already generating")
	// ErrUnknownSlot is returned for slot ids outside the current batch.
	ErrUnknownSlot = errors.New("unknown script slot")
)

// SlotError is a failure scoped to one slot and format. Sibling slots and the
// slot's previously cached formats are unaffected.
type SlotError struct {
	Slot   int
	Format generation.Format
	Err    error
}

func (e *SlotError) Error() string {
	return fmt.Sprintf("variant %d (%s): %v", e.Slot+1, e.Format, e.Err)
}

func (e *SlotError) Unwrap() error { return e.Err }
