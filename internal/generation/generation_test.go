package generation_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"kontenai/internal/brand"
	"kontenai/internal/generation"
	"kontenai/internal/services/llm"
)

type fakeCompleter struct {
	mu      sync.Mutex
	reply   string
	err     error
	systems []string
	users   []string
}

func (f *fakeCompleter) CompleteJSON(_ context.Context, system, user string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.systems = append(f.systems, system)
	f.users = append(f.users, user)
	return f.reply, f.err
}

func (f *fakeCompleter) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.users)
}

func sampleDNA() brand.DNA {
	return brand.DNA{
		Niche:          "Specialty coffee",
		TargetAudience: "Young professionals who work remotely",
		PainPoints:     "Cannot find good coffee near home offices",
		Solutions:      "Subscription beans delivered every two weeks",
		Values:         "Quality, honesty, craft",
		ContentStyle:   []brand.ContentStyle{brand.StyleEducational},
		ContentTone:    []brand.ContentTone{brand.ToneFriendly},
		Platforms:      []brand.Platform{brand.PlatformThreads},
	}
}

func newService(reply string) (*generation.LLMService, *fakeCompleter) {
	fake := &fakeCompleter{reply: reply}
	return generation.NewLLMService(fake, llm.DecodeLLMJSON, generation.WithLanguage("id")), fake
}

func TestDerivePersona(t *testing.T) {
	svc, fake := newService(`{"tone":" warm ","contentPillars":"tips","contentTypes":"threads"}`)
	persona, err := svc.DerivePersona(context.Background(), sampleDNA())
	if err != nil {
		t.Fatalf("DerivePersona returned error: %v", err)
	}
	want := generation.Persona{Tone: "warm", ContentPillars: "tips", ContentTypes: "threads"}
	if diff := cmp.Diff(want, persona); diff != "" {
		t.Fatalf("persona mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(fake.users[0], "Target Audience: Young professionals") {
		t.Fatalf("expected DNA in user prompt, got %q", fake.users[0])
	}
	if !strings.Contains(fake.systems[0], "Indonesian") {
		t.Fatalf("expected language instruction, got %q", fake.systems[0])
	}
}

func TestDeriveIdeasToleratesShortLists(t *testing.T) {
	svc, _ := newService(`{"pillars":[{"pillar":"Brewing","hooks":["Why your V60 tastes sour"," "]},{"name":"Beans","hooks":[]},{"pillar":"","hooks":[]}]}`)
	set, err := svc.DeriveIdeas(context.Background(), sampleDNA())
	if err != nil {
		t.Fatalf("DeriveIdeas returned error: %v", err)
	}
	want := generation.PillarSet{
		{Name: "Brewing", Hooks: []string{"Why your V60 tastes sour"}},
		{Name: "Beans", Hooks: []string{}},
	}
	if diff := cmp.Diff(want, set); diff != "" {
		t.Fatalf("pillars mismatch (-want +got):\n%s", diff)
	}
	if idea, ok := set.Idea(0, 0); !ok || idea != "Why your V60 tastes sour" {
		t.Fatalf("unexpected idea lookup: %q %v", idea, ok)
	}
	if _, ok := set.Idea(1, 0); ok {
		t.Fatal("expected out-of-range hook lookup to fail")
	}
}

func TestDeriveScriptShapesPerFormat(t *testing.T) {
	tests := []struct {
		name      string
		format    generation.Format
		reply     string
		segmented bool
		render    string
	}{
		{
			name:      "thread capped at five posts",
			format:    generation.FormatThread,
			reply:     `{"posts":["1","2","3","4","5","6"]}`,
			segmented: true,
			render:    "1\n\n2\n\n3\n\n4\n\n5",
		},
		{
			name:      "carousel slides",
			format:    generation.FormatCarousel,
			reply:     `{"slides":["Hook","CTA"]}`,
			segmented: true,
			render:    "Hook\n\nCTA",
		},
		{
			name:   "video monolithic",
			format: generation.FormatVideo,
			reply:  `{"script":"[close-up] Pagi ini..."}`,
			render: "[close-up] Pagi ini...",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newService(tt.reply)
			body, err := svc.DeriveScript(context.Background(), "Kopi pagi", tt.format)
			if err != nil {
				t.Fatalf("DeriveScript returned error: %v", err)
			}
			if body.IsSegmented() != tt.segmented {
				t.Fatalf("segmented = %v, want %v", body.IsSegmented(), tt.segmented)
			}
			if got := body.Render(); got != tt.render {
				t.Fatalf("Render() = %q, want %q", got, tt.render)
			}
		})
	}
}

func TestGenerationErrorsWrapSentinel(t *testing.T) {
	svc, fake := newService("")
	fake.err = errors.New("http 500")

	_, err := svc.DerivePersona(context.Background(), sampleDNA())
	if !errors.Is(err, generation.ErrGeneration) {
		t.Fatalf("expected ErrGeneration, got %v", err)
	}
	var genErr *generation.Error
	if !errors.As(err, &genErr) || genErr.Op != "persona" {
		t.Fatalf("expected *generation.Error for persona, got %v", err)
	}

	fake.err = nil
	fake.reply = "not json at all"
	if _, err := svc.DeriveScript(context.Background(), "idea", generation.FormatVideo); !errors.Is(err, generation.ErrGeneration) {
		t.Fatalf("expected decode failure to wrap ErrGeneration, got %v", err)
	}

	fake.reply = `{"posts":[]}`
	if _, err := svc.DeriveScript(context.Background(), "idea", generation.FormatThread); !errors.Is(err, generation.ErrGeneration) {
		t.Fatalf("expected empty script to fail, got %v", err)
	}
}

func TestSuggestionsSkipShortInputs(t *testing.T) {
	svc, fake := newService(`{"solution":"Weekly brew guides","values":"Jujur, Peduli"}`)
	dna := sampleDNA()

	solution, err := svc.SuggestSolution(context.Background(), dna)
	if err != nil || solution != "Weekly brew guides" {
		t.Fatalf("SuggestSolution = %q, %v", solution, err)
	}
	values, err := svc.SuggestValues(context.Background(), dna)
	if err != nil || values != "Jujur, Peduli" {
		t.Fatalf("SuggestValues = %q, %v", values, err)
	}

	dna.PainPoints = "too short"
	before := fake.calls()
	if got, err := svc.SuggestSolution(context.Background(), dna); err != nil || got != "" {
		t.Fatalf("expected skipped solution, got %q %v", got, err)
	}
	if got, err := svc.SuggestValues(context.Background(), dna); err != nil || got != "" {
		t.Fatalf("expected skipped values, got %q %v", got, err)
	}
	if fake.calls() != before {
		t.Fatal("expected no model calls for short inputs")
	}
}

func TestAnswerUsesBrandVoice(t *testing.T) {
	svc, fake := newService(`{"answer":"Bisa banget!"}`)
	answer, err := svc.Answer(context.Background(), sampleDNA(), "Bisa kirim ke Bandung?")
	if err != nil || answer != "Bisa banget!" {
		t.Fatalf("Answer = %q, %v", answer, err)
	}
	if !strings.Contains(fake.users[0], "Bisa kirim ke Bandung?") || !strings.Contains(fake.users[0], "Values: Quality") {
		t.Fatalf("unexpected user prompt %q", fake.users[0])
	}
	if _, err := svc.Answer(context.Background(), sampleDNA(), "  "); !errors.Is(err, generation.ErrGeneration) {
		t.Fatalf("expected empty question to fail, got %v", err)
	}
}

func TestScriptBodyJSON(t *testing.T) {
	for _, body := range []generation.ScriptBody{
		generation.Segmented("a", " ", "b"),
		generation.Monolithic("single block"),
	} {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		var decoded generation.ScriptBody
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("unmarshal %s: %v", data, err)
		}
		if decoded.Render() != body.Render() || decoded.IsSegmented() != body.IsSegmented() {
			t.Fatalf("round trip mismatch: %s", data)
		}
	}
	if got := generation.Segmented("a", " ", "b").Segments(); len(got) != 2 {
		t.Fatalf("expected blank segment dropped, got %v", got)
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := generation.ParseFormat(" Carousel "); err != nil || f != generation.FormatCarousel {
		t.Fatalf("ParseFormat = %q, %v", f, err)
	}
	if _, err := generation.ParseFormat("podcast"); err == nil {
		t.Fatal("expected unknown format error")
	}
	if name, err := generation.LanguageName("id"); err != nil || name != "Indonesian" {
		t.Fatalf("LanguageName = %q, %v", name, err)
	}
}
