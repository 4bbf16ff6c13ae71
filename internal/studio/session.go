package studio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"kontenai/internal/brand"
	"kontenai/internal/generation"
	"kontenai/internal/logging"
	"kontenai/internal/presets"
	"kontenai/internal/scripts"
)

var (
	// ErrNoActivePreset is returned by operations that need a selected preset.
	ErrNoActivePreset = errors.New("no preset selected")
	// ErrNoIdeas is returned when an idea is picked before ideas were derived.
	ErrNoIdeas = errors.New("no ideas generated yet")
	// ErrNotEnoughInput is returned when a suggestion lacks the context it needs.
	ErrNotEnoughInput = errors.New("not enough input for a suggestion")
)

// Session is the in-process studio state. It is safe for concurrent use.
type Session struct {
	store     *presets.Store
	assistant generation.Assistant
	cache     *scripts.Cache
	logger    *slog.Logger
	variants  int
	format    generation.Format

	mu      sync.Mutex
	active  *presets.Preset
	persona *generation.Persona
	pillars generation.PillarSet
}

// Option customizes a Session.
type Option func(*Session)

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logging.NewComponentLogger(logger, "studio")
	}
}

// WithVariants sets the number of script variants per idea.
func WithVariants(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.variants = n
		}
	}
}

// WithFormat sets the format of the initial script batch.
func WithFormat(f generation.Format) Option {
	return func(s *Session) {
		if f != "" {
			s.format = f
		}
	}
}

// NewSession wires a session over store, assistant and cache. A nil cache is
// replaced with one backed by assistant.
func NewSession(store *presets.Store, assistant generation.Assistant, cache *scripts.Cache, opts ...Option) *Session {
	s := &Session{
		store:     store,
		assistant: assistant,
		cache:     cache,
		logger:    logging.NewComponentLogger(nil, "studio"),
		variants:  3,
		format:    generation.FormatThread,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cache == nil {
		s.cache = scripts.NewCache(assistant, scripts.WithLogger(s.logger))
	}
	return s
}

// Scripts exposes the script grid.
func (s *Session) Scripts() *scripts.Cache { return s.cache }

// Active returns a copy of the selected preset.
func (s *Session) Active() (presets.Preset, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return presets.Preset{}, false
	}
	return s.active.Clone(), true
}

// SelectPreset makes the preset with id active and drops derived state.
func (s *Session) SelectPreset(id string) (presets.Preset, error) {
	preset, ok := s.store.Get(id)
	if !ok {
		return presets.Preset{}, fmt.Errorf("%w: %s", presets.ErrNotFound, id)
	}
	s.mu.Lock()
	s.setActiveLocked(preset)
	s.mu.Unlock()
	s.cache.Reset()
	return preset.Clone(), nil
}

// SavePreset stores dna under name and makes it active.
func (s *Session) SavePreset(name string, dna brand.DNA) (string, bool, error) {
	id, wasUpdate, err := s.store.Add(name, dna)
	if err != nil {
		return "", false, err
	}
	preset, ok := s.store.Get(id)
	if !ok {
		return "", false, fmt.Errorf("%w: %s", presets.ErrNotFound, id)
	}
	s.mu.Lock()
	s.setActiveLocked(preset)
	s.mu.Unlock()
	s.cache.Reset()
	return id, wasUpdate, nil
}

// DeletePreset removes the preset with id and clears the selection when it
// was active.
func (s *Session) DeletePreset(id string) bool {
	removed := s.store.Delete(id)
	s.mu.Lock()
	cleared := s.stillActiveLocked(id)
	if cleared {
		s.active = nil
		s.clearDerivedLocked()
	}
	s.mu.Unlock()
	if cleared {
		s.cache.Reset()
	}
	return removed
}

// Persona derives the brand voice of the active preset.
func (s *Session) Persona(ctx context.Context) (generation.Persona, error) {
	preset, err := s.requireActive()
	if err != nil {
		return generation.Persona{}, err
	}
	persona, err := s.assistant.DerivePersona(ctx, preset.DNA)
	if err != nil {
		return generation.Persona{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stillActiveLocked(preset.ID) {
		s.persona = &persona
	}
	return persona, nil
}

// LastPersona returns the persona derived for the active preset, if any.
func (s *Session) LastPersona() (generation.Persona, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.persona == nil {
		return generation.Persona{}, false
	}
	return *s.persona, true
}

// Ideas derives content pillars for the active preset. New ideas invalidate
// the script grid.
func (s *Session) Ideas(ctx context.Context) (generation.PillarSet, error) {
	preset, err := s.requireActive()
	if err != nil {
		return nil, err
	}
	pillars, err := s.assistant.DeriveIdeas(ctx, preset.DNA)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	current := s.stillActiveLocked(preset.ID)
	if current {
		s.pillars = pillars
	}
	s.mu.Unlock()
	if current {
		s.cache.Reset()
	}
	s.logger.Info("ideas generated", logging.Args(
		logging.String(logging.FieldPresetID, preset.ID),
		logging.Int("pillars", len(pillars)),
		logging.Int("ideas", len(pillars.Ideas())),
	)...)
	return pillars, nil
}

// Pillars returns the last derived ideas.
func (s *Session) Pillars() generation.PillarSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clonePillars(s.pillars)
}

// SelectIdea picks a hook from the derived pillars and generates the script
// grid for it.
func (s *Session) SelectIdea(ctx context.Context, pillar, hook int) ([]*scripts.SlotError, error) {
	s.mu.Lock()
	if len(s.pillars) == 0 {
		s.mu.Unlock()
		return nil, ErrNoIdeas
	}
	idea, ok := s.pillars.Idea(pillar, hook)
	s.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("no idea at pillar %d hook %d", pillar+1, hook+1)
	}
	return s.UseIdea(ctx, idea)
}

// UseIdea generates the script grid for idea.
func (s *Session) UseIdea(ctx context.Context, idea string) ([]*scripts.SlotError, error) {
	return s.cache.GenerateInitialBatch(ctx, idea, s.variants, s.format)
}

// SwitchFormat shows format for script variant slot.
func (s *Session) SwitchFormat(ctx context.Context, slot int, format generation.Format) error {
	return s.cache.SwitchFormat(ctx, slot, format)
}

// SuggestSolution asks for a solution given the draft's pain point.
func (s *Session) SuggestSolution(ctx context.Context, draft brand.DNA) (string, error) {
	if !brand.CanSuggestSolution(draft) {
		return "", fmt.Errorf("%w: niche, audience and a pain point of at least %d characters are required",
			ErrNotEnoughInput, brand.MinSuggestionInputLength)
	}
	return s.assistant.SuggestSolution(ctx, draft)
}

// SuggestValues asks for brand values given the draft's pain point and
// solution.
func (s *Session) SuggestValues(ctx context.Context, draft brand.DNA) (string, error) {
	if !brand.CanSuggestValues(draft) {
		return "", fmt.Errorf("%w: pain point and solution of at least %d characters are required",
			ErrNotEnoughInput, brand.MinSuggestionInputLength)
	}
	return s.assistant.SuggestValues(ctx, draft)
}

// Answer replies to an audience question in the active preset's voice.
func (s *Session) Answer(ctx context.Context, question string) (string, error) {
	preset, err := s.requireActive()
	if err != nil {
		return "", err
	}
	return s.assistant.Answer(ctx, preset.DNA, question)
}

func (s *Session) requireActive() (presets.Preset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return presets.Preset{}, ErrNoActivePreset
	}
	return s.active.Clone(), nil
}

func (s *Session) setActiveLocked(preset presets.Preset) {
	s.active = &preset
	s.clearDerivedLocked()
	s.logger.Debug("preset selected", logging.Args(logging.String(logging.FieldPresetID, preset.ID))...)
}

// clearDerivedLocked drops persona and ideas. Callers reset the cache after
// releasing s.mu since Reset notifies subscribers synchronously.
func (s *Session) clearDerivedLocked() {
	s.persona = nil
	s.pillars = nil
}

func (s *Session) stillActiveLocked(id string) bool {
	return s.active != nil && s.active.ID == id
}

func clonePillars(in generation.PillarSet) generation.PillarSet {
	if in == nil {
		return nil
	}
	out := make(generation.PillarSet, len(in))
	for i, p := range in {
		out[i] = generation.Pillar{Name: p.Name, Hooks: append([]string(nil), p.Hooks...)}
	}
	return out
}
