package generation

import (
	"context"
	"errors"
	"fmt"

	"kontenai/internal/brand"
)

// ErrGeneration is matched by every *Error.
var ErrGeneration = errors.New("generation failed")

// Error reports a failed generation call.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("generation %s failed", e.Op)
	}
	return fmt.Sprintf("generation %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrGeneration}
	}
	return []error{ErrGeneration, e.Err}
}

func wrapError(op string, err error) error {
	if err == nil {
		return nil
	}
	var genErr *Error
	if errors.As(err, &genErr) {
		return err
	}
	return &Error{Op: op, Err: err}
}

// Persona is the brand voice derived from a configuration.
type Persona struct {
	Tone                     string `json:"tone"`
	ContentPillars           string `json:"contentPillars"`
	ContentTypes             string `json:"contentTypes"`
	AdditionalInfoSuggestion string `json:"additionalInfoSuggestion,omitempty"`
}

// Pillar is one content theme with its candidate hooks.
type Pillar struct {
	Name  string   `json:"pillar"`
	Hooks []string `json:"hooks"`
}

// PillarSet is the ordered list of pillars returned by DeriveIdeas.
type PillarSet []Pillar

// Ideas flattens every hook in display order.
func (s PillarSet) Ideas() []string {
	var out []string
	for _, p := range s {
		out = append(out, p.Hooks...)
	}
	return out
}

// Idea returns the hook at the given 0-based pillar and hook position.
func (s PillarSet) Idea(pillar, hook int) (string, bool) {
	if pillar < 0 || pillar >= len(s) {
		return "", false
	}
	hooks := s[pillar].Hooks
	if hook < 0 || hook >= len(hooks) {
		return "", false
	}
	return hooks[hook], true
}

// Service produces persona, ideas and scripts.
type Service interface {
	DerivePersona(ctx context.Context, dna brand.DNA) (Persona, error)
	DeriveIdeas(ctx context.Context, dna brand.DNA) (PillarSet, error)
	DeriveScript(ctx context.Context, idea string, format Format) (ScriptBody, error)
}

// ScriptFunc adapts a function to the script half of Service.
type ScriptFunc func(ctx context.Context, idea string, format Format) (ScriptBody, error)

// DeriveScript calls f.
func (f ScriptFunc) DeriveScript(ctx context.Context, idea string, format Format) (ScriptBody, error) {
	return f(ctx, idea, format)
}

// Assistant adds the brand-form helpers and the answer engine to Service.
type Assistant interface {
	Service
	SuggestSolution(ctx context.Context, dna brand.DNA) (string, error)
	SuggestValues(ctx context.Context, dna brand.DNA) (string, error)
	Answer(ctx context.Context, dna brand.DNA, question string) (string, error)
}
