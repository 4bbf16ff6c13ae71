package scripts

import (
	"maps"

	"kontenai/internal/generation"
)

// Phase is the externally visible state of a slot.
type Phase int

const (
	// PhasePopulating means a call for Pending is in flight.
	PhasePopulating Phase = iota
	// PhaseReady means at least one format is cached and Shown is set.
	PhaseReady
	// PhaseFailed means the slot has no cached body and its last call failed.
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhasePopulating:
		return "populating"
	case PhaseReady:
		return "ready"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// SlotState is a copy of one slot.
type SlotState struct {
	ID      int
	Shown   generation.Format
	Pending generation.Format
	Bodies  map[generation.Format]generation.ScriptBody
	// Err is the most recent slot-scoped failure, cleared by the next success.
	Err error
}

// Phase derives the slot phase.
func (s SlotState) Phase() Phase {
	switch {
	case s.Pending != "":
		return PhasePopulating
	case len(s.Bodies) > 0:
		return PhaseReady
	default:
		return PhaseFailed
	}
}

// Busy reports whether a call is in flight for this slot.
func (s SlotState) Busy() bool { return s.Pending != "" }

// Body returns the body for the shown format.
func (s SlotState) Body() (generation.ScriptBody, bool) {
	body, ok := s.Bodies[s.Shown]
	return body, ok
}

// Formats lists the cached formats in display order.
func (s SlotState) Formats() []generation.Format {
	var out []generation.Format
	for _, f := range generation.Formats {
		if _, ok := s.Bodies[f]; ok {
			out = append(out, f)
		}
	}
	return out
}

// Snapshot is a consistent copy of the cache.
type Snapshot struct {
	Epoch uint64
	Idea  string
	Slots []SlotState
}

type slot struct {
	shown   generation.Format
	pending generation.Format
	bodies  map[generation.Format]generation.ScriptBody
	err     error
}

func (s *slot) state(id int) SlotState {
	return SlotState{
		ID:      id,
		Shown:   s.shown,
		Pending: s.pending,
		Bodies:  maps.Clone(s.bodies),
		Err:     s.err,
	}
}
