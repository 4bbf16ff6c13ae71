package testsupport

import (
	"context"
	"fmt"
	"sync"

	"kontenai/internal/brand"
	"kontenai/internal/generation"
)

// Assistant is a scripted generation.Assistant. Zero-value fields produce
// deterministic canned output; set the function fields to override.
type Assistant struct {
	PersonaFunc  func(ctx context.Context, dna brand.DNA) (generation.Persona, error)
	IdeasFunc    func(ctx context.Context, dna brand.DNA) (generation.PillarSet, error)
	ScriptFunc   func(ctx context.Context, idea string, format generation.Format) (generation.ScriptBody, error)
	SolutionFunc func(ctx context.Context, dna brand.DNA) (string, error)
	ValuesFunc   func(ctx context.Context, dna brand.DNA) (string, error)
	AnswerFunc   func(ctx context.Context, dna brand.DNA, question string) (string, error)

	mu    sync.Mutex
	calls map[string]int
}

var _ generation.Assistant = (*Assistant)(nil)

// Calls reports how often op ("persona", "ideas", "script", "solution",
// "values", "answer") was invoked.
func (a *Assistant) Calls(op string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls[op]
}

func (a *Assistant) record(op string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.calls == nil {
		a.calls = map[string]int{}
	}
	a.calls[op]++
}

func (a *Assistant) DerivePersona(ctx context.Context, dna brand.DNA) (generation.Persona, error) {
	a.record("persona")
	if a.PersonaFunc != nil {
		return a.PersonaFunc(ctx, dna)
	}
	return generation.Persona{
		Tone:           "Warm and direct",
		ContentPillars: "Guides for " + dna.Niche,
		ContentTypes:   "Carousels and short videos",
	}, nil
}

func (a *Assistant) DeriveIdeas(ctx context.Context, dna brand.DNA) (generation.PillarSet, error) {
	a.record("ideas")
	if a.IdeasFunc != nil {
		return a.IdeasFunc(ctx, dna)
	}
	set := make(generation.PillarSet, 0, 4)
	for p := range 4 {
		pillar := generation.Pillar{Name: fmt.Sprintf("Pillar %d", p+1)}
		for h := range 5 {
			pillar.Hooks = append(pillar.Hooks, fmt.Sprintf("%s hook %d.%d", dna.Niche, p+1, h+1))
		}
		set = append(set, pillar)
	}
	return set, nil
}

func (a *Assistant) DeriveScript(ctx context.Context, idea string, format generation.Format) (generation.ScriptBody, error) {
	a.record("script")
	if a.ScriptFunc != nil {
		return a.ScriptFunc(ctx, idea, format)
	}
	if format.Segmented() {
		return generation.Segmented(idea, "Part two", "Part three"), nil
	}
	return generation.Monolithic(idea + " (video)"), nil
}

func (a *Assistant) SuggestSolution(ctx context.Context, dna brand.DNA) (string, error) {
	a.record("solution")
	if a.SolutionFunc != nil {
		return a.SolutionFunc(ctx, dna)
	}
	return "Weekly walkthroughs", nil
}

func (a *Assistant) SuggestValues(ctx context.Context, dna brand.DNA) (string, error) {
	a.record("values")
	if a.ValuesFunc != nil {
		return a.ValuesFunc(ctx, dna)
	}
	return "Honesty", nil
}

func (a *Assistant) Answer(ctx context.Context, dna brand.DNA, question string) (string, error) {
	a.record("answer")
	if a.AnswerFunc != nil {
		return a.AnswerFunc(ctx, dna, question)
	}
	return "Thanks for asking about " + dna.Niche, nil
}
