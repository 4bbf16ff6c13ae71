package testsupport

import (
	"testing"

	"kontenai/internal/brand"
	"kontenai/internal/config"
	"kontenai/internal/presets"
)

// MustOpenStore opens the configured preset backend and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *presets.Store {
	t.Helper()

	backend, err := presets.Open(cfg.Store.Backend, cfg.StorePath())
	if err != nil {
		t.Fatalf("presets.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = backend.Close()
	})
	return presets.NewStore(backend)
}

// ValidDNA returns a configuration that passes brand.Validate.
func ValidDNA() brand.DNA {
	return brand.DNA{
		Niche:          "Specialty coffee",
		TargetAudience: "Remote workers who brew at home",
		PainPoints:     "Coffee at home tastes flat and bitter",
		Solutions:      "Simple grind and ratio guides",
		Values:         "Craft, patience, fair trade",
		ContentStyle:   []brand.ContentStyle{brand.StyleEducational, brand.StyleStorytelling},
		ContentTone:    []brand.ContentTone{brand.ToneCasual},
		Platforms:      []brand.Platform{brand.PlatformInstagram, brand.PlatformTikTok},
	}
}

// MustAddPreset saves dna under name and returns the stored preset.
func MustAddPreset(t testing.TB, store *presets.Store, name string, dna brand.DNA) presets.Preset {
	t.Helper()

	id, _, err := store.Add(name, dna)
	if err != nil {
		t.Fatalf("store.Add: %v", err)
	}
	preset, ok := store.Get(id)
	if !ok {
		t.Fatalf("preset %s missing after add", id)
	}
	return preset
}
