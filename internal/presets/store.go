package presets

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"

	"kontenai/internal/brand"
	"kontenai/internal/logging"
)

// Preset is a named, identified brand configuration.
type Preset struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	brand.DNA
}

// Clone returns a deep copy of p.
func (p Preset) Clone() Preset {
	out := p
	out.DNA = p.DNA.Clone()
	return out
}

// Store is the single in-process owner of the preset collection.
type Store struct {
	mu          sync.Mutex
	persistence Persistence
	logger      *slog.Logger
	newID       func() string

	loaded     bool
	presets    []Preset
	quarantine []Quarantined
	storageErr error
}

// Option customizes a Store.
type Option func(*Store)

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logging.NewComponentLogger(logger, "presets")
	}
}

// WithIDGenerator overrides how preset ids are minted.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// NewStore returns a Store over persistence. Nothing is read until the first
// call that needs the collection.
func NewStore(persistence Persistence, opts ...Option) *Store {
	s := &Store{
		persistence: persistence,
		logger:      logging.NewComponentLogger(nil, "presets"),
		newID:       uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load re-reads the stored collection and returns the sanitized view. Once
// the store is degraded the in-memory collection is returned instead.
func (s *Store) Load() []Preset {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.storageErr == nil {
		s.loadLocked()
	}
	s.loaded = true
	return clonePresets(s.presets)
}

// List returns the current collection, loading it on first use.
func (s *Store) List() []Preset {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoadedLocked()
	return clonePresets(s.presets)
}

// Get returns the preset with id.
func (s *Store) Get(id string) (Preset, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoadedLocked()
	if idx := s.indexByIDLocked(id); idx >= 0 {
		return s.presets[idx].Clone(), true
	}
	return Preset{}, false
}

// FindByName returns the preset whose name matches case-insensitively.
func (s *Store) FindByName(name string) (Preset, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoadedLocked()
	if idx := s.indexByNameLocked(name, ""); idx >= 0 {
		return s.presets[idx].Clone(), true
	}
	return Preset{}, false
}

// Add saves cfg under name. When a preset with the same name (ignoring case)
// exists, its id is kept, its fields are replaced and wasUpdate is true.
// Validation failures return a *brand.ValidationError and persist nothing.
func (s *Store) Add(name string, cfg brand.DNA) (id string, wasUpdate bool, err error) {
	name, dna, err := prepare(name, cfg)
	if err != nil {
		return "", false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoadedLocked()

	if idx := s.indexByNameLocked(name, ""); idx >= 0 {
		s.presets[idx].Name = name
		s.presets[idx].DNA = dna
		s.persistLocked()
		s.logger.Info("preset updated", logging.Args(
			logging.String(logging.FieldPresetID, s.presets[idx].ID),
			logging.String("name", name),
		)...)
		return s.presets[idx].ID, true, nil
	}

	preset := Preset{ID: s.newID(), Name: name, DNA: dna}
	s.presets = append(s.presets, preset)
	s.persistLocked()
	s.logger.Info("preset created", logging.Args(
		logging.String(logging.FieldPresetID, preset.ID),
		logging.String("name", name),
	)...)
	return preset.ID, false, nil
}

// Update replaces the preset with the same id. It is a no-op when the id is
// unknown. Renaming onto another preset's name returns ErrNameConflict.
func (s *Store) Update(preset Preset) error {
	name, dna, err := prepare(preset.Name, preset.DNA)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoadedLocked()

	idx := s.indexByIDLocked(preset.ID)
	if idx < 0 {
		return nil
	}
	if other := s.indexByNameLocked(name, preset.ID); other >= 0 {
		return fmt.Errorf("%w: %q", ErrNameConflict, s.presets[other].Name)
	}
	s.presets[idx].Name = name
	s.presets[idx].DNA = dna
	s.persistLocked()
	return nil
}

// Rename changes only the display name of the preset with id.
func (s *Store) Rename(id, name string) error {
	name, err := brand.NormalizeName(name)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoadedLocked()

	idx := s.indexByIDLocked(id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if other := s.indexByNameLocked(name, id); other >= 0 {
		return fmt.Errorf("%w: %q", ErrNameConflict, s.presets[other].Name)
	}
	s.presets[idx].Name = name
	s.persistLocked()
	return nil
}

// Delete removes the preset with id and reports whether one was removed.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoadedLocked()

	idx := s.indexByIDLocked(id)
	if idx < 0 {
		return false
	}
	s.presets = slices.Delete(s.presets, idx, idx+1)
	s.persistLocked()
	s.logger.Info("preset deleted", logging.Args(logging.String(logging.FieldPresetID, id))...)
	return true
}

// Duplicate clones the preset with id under a fresh id and the first free
// "(Copy)" name. It returns false when id is unknown.
func (s *Store) Duplicate(id string) (Preset, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoadedLocked()

	idx := s.indexByIDLocked(id)
	if idx < 0 {
		return Preset{}, false
	}
	clone := s.presets[idx].Clone()
	clone.ID = s.newID()
	clone.Name = copyName(s.presets[idx].Name, func(candidate string) bool {
		return s.indexByNameLocked(candidate, "") >= 0
	})
	s.presets = append(s.presets, clone)
	s.persistLocked()
	s.logger.Info("preset duplicated", logging.Args(
		logging.String(logging.FieldPresetID, clone.ID),
		logging.String("source_id", id),
		logging.String("name", clone.Name),
	)...)
	return clone.Clone(), true
}

// Degraded reports whether the store has stopped using its persistence.
func (s *Store) Degraded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.storageErr != nil
}

// StorageErr returns the failure that degraded the store, wrapping ErrStorage.
func (s *Store) StorageErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.storageErr
}

// Quarantined returns the stored records that could not be loaded.
func (s *Store) Quarantined() []Quarantined {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoadedLocked()
	return slices.Clone(s.quarantine)
}

func (s *Store) ensureLoadedLocked() {
	if s.loaded {
		return
	}
	s.loaded = true
	if s.storageErr == nil {
		s.loadLocked()
	}
}

func (s *Store) loadLocked() {
	data, err := s.persistence.Read()
	if err != nil {
		s.failLocked("read", err)
		return
	}
	env, err := decodeEnvelope(data)
	if err != nil {
		// Keep the unreadable blob on disk: never overwrite what we cannot parse.
		s.failLocked("decode", err)
		return
	}
	if env.SchemaVersion > SchemaVersion {
		s.failLocked("decode", fmt.Errorf("schema version %d is newer than supported %d", env.SchemaVersion, SchemaVersion))
		return
	}

	presets := make([]Preset, 0, len(env.Presets))
	positions := make(map[string]int, len(env.Presets))
	quarantine := slices.Clone(env.Quarantine)

	for _, raw := range env.Presets {
		preset, dropped, reason := readRecord(raw, env.SchemaVersion)
		if reason != "" {
			quarantine = append(quarantine, Quarantined{Reason: reason, SchemaVersion: env.SchemaVersion, Record: raw})
			logging.WarnWithContext(s.logger, "preset record set aside", "preset_quarantined",
				logging.String("reason", reason),
				logging.String(logging.FieldErrorHint, "record is kept in the store file under quarantine"),
				logging.String(logging.FieldImpact, "preset hidden from the list"),
			)
			continue
		}
		if len(dropped) > 0 {
			logging.WarnWithContext(s.logger, "preset tags stripped", "preset_tags_stripped",
				logging.String(logging.FieldPresetID, preset.ID),
				logging.Any("tags", dropped),
				logging.String(logging.FieldErrorHint, "tags are no longer supported"),
				logging.String(logging.FieldImpact, "unknown tags omitted from the preset"),
			)
		}
		if pos, ok := positions[preset.ID]; ok {
			presets[pos] = preset
			continue
		}
		positions[preset.ID] = len(presets)
		presets = append(presets, preset)
	}

	s.presets = presets
	s.quarantine = quarantine
	s.logger.Debug("presets loaded", logging.Args(
		logging.Int("count", len(presets)),
		logging.Int("quarantined", len(quarantine)),
		logging.Int("schema_version", env.SchemaVersion),
	)...)
}

// readRecord upgrades and validates one stored record. A non-empty reason
// means the record cannot be used.
func readRecord(raw json.RawMessage, version int) (Preset, []string, string) {
	record, err := upgradeRecord(raw, version)
	if err != nil {
		return Preset{}, nil, err.Error()
	}
	encoded, err := json.Marshal(record)
	if err != nil {
		return Preset{}, nil, err.Error()
	}
	var preset Preset
	if err := json.Unmarshal(encoded, &preset); err != nil {
		return Preset{}, nil, fmt.Sprintf("decode record: %v", err)
	}
	if preset.ID == "" {
		return Preset{}, nil, "missing id"
	}
	name, err := brand.NormalizeName(preset.Name)
	if err != nil {
		return Preset{}, nil, err.Error()
	}
	dna, dropped := brand.Sanitize(preset.DNA)
	if err := brand.Validate(dna); err != nil {
		return Preset{}, nil, err.Error()
	}
	return Preset{ID: preset.ID, Name: name, DNA: dna}, dropped, ""
}

func (s *Store) persistLocked() {
	if s.storageErr != nil {
		return
	}
	data, err := encodeEnvelope(s.presets, s.quarantine)
	if err != nil {
		s.failLocked("encode", err)
		return
	}
	if err := s.persistence.Write(data); err != nil {
		s.failLocked("write", err)
	}
}

// failLocked records the first storage failure and logs it. Later failures
// cannot happen since a degraded store stops touching its persistence.
func (s *Store) failLocked(op string, err error) {
	if s.storageErr != nil {
		return
	}
	s.storageErr = fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
	logging.WarnWithContext(s.logger, "preset storage failed; continuing in memory", "preset_storage_degraded",
		logging.String("op", op),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check permissions and free space for the presets file"),
		logging.String(logging.FieldImpact, "changes made in this session will not be saved"),
	)
}

func (s *Store) indexByIDLocked(id string) int {
	return slices.IndexFunc(s.presets, func(p Preset) bool { return p.ID == id })
}

func (s *Store) indexByNameLocked(name, excludeID string) int {
	key := brand.NameKey(name)
	return slices.IndexFunc(s.presets, func(p Preset) bool {
		return p.ID != excludeID && brand.NameKey(p.Name) == key
	})
}

// prepare validates a name and configuration together so callers see every
// failing field at once.
func prepare(name string, cfg brand.DNA) (string, brand.DNA, error) {
	verr := &brand.ValidationError{}
	normalized, err := brand.NormalizeName(name)
	var nameErr *brand.ValidationError
	if errors.As(err, &nameErr) {
		verr.Fields = append(verr.Fields, nameErr.Fields...)
	}
	dna := cfg.Normalize()
	var dnaErr *brand.ValidationError
	if errors.As(brand.Validate(dna), &dnaErr) {
		verr.Fields = append(verr.Fields, dnaErr.Fields...)
	}
	if len(verr.Fields) > 0 {
		return "", brand.DNA{}, verr
	}
	return normalized, dna, nil
}

func clonePresets(presets []Preset) []Preset {
	out := make([]Preset, len(presets))
	for i, p := range presets {
		out[i] = p.Clone()
	}
	return out
}
