package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"kontenai/internal/brand"
	"kontenai/internal/logging"
)

// Completer sends a system and user prompt and returns the model's raw JSON answer.
type Completer interface {
	CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Decoder turns a raw model answer into target.
type Decoder func(content string, target any) error

// LLMService implements Assistant on top of a Completer.
type LLMService struct {
	completer Completer
	decode    Decoder
	language  string
	logger    *slog.Logger
}

// Option customizes an LLMService.
type Option func(*LLMService)

// WithLanguage sets the output language (BCP 47 code, e.g. "id" or "en").
func WithLanguage(code string) Option {
	return func(s *LLMService) {
		if name, err := LanguageName(code); err == nil {
			s.language = name
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *LLMService) {
		s.logger = logging.NewComponentLogger(logger, "generation")
	}
}

// NewLLMService builds an Assistant. decode parses raw answers; pass
// llm.DecodeLLMJSON for production use.
func NewLLMService(completer Completer, decode Decoder, opts ...Option) *LLMService {
	s := &LLMService{
		completer: completer,
		decode:    decode,
		logger:    logging.NewComponentLogger(nil, "generation"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DerivePersona implements Service.
func (s *LLMService) DerivePersona(ctx context.Context, dna brand.DNA) (Persona, error) {
	var persona Persona
	if err := s.call(ctx, "persona", personaPrompt, describeDNA(dna), &persona); err != nil {
		return Persona{}, err
	}
	persona.Tone = strings.TrimSpace(persona.Tone)
	persona.ContentPillars = strings.TrimSpace(persona.ContentPillars)
	persona.ContentTypes = strings.TrimSpace(persona.ContentTypes)
	persona.AdditionalInfoSuggestion = strings.TrimSpace(persona.AdditionalInfoSuggestion)
	if persona.Tone == "" && persona.ContentPillars == "" && persona.ContentTypes == "" {
		return Persona{}, &Error{Op: "persona", Err: errors.New("empty persona")}
	}
	return persona, nil
}

// DeriveIdeas implements Service. Short or ragged pillar lists are returned
// as-is; empty pillars are dropped.
func (s *LLMService) DeriveIdeas(ctx context.Context, dna brand.DNA) (PillarSet, error) {
	var payload struct {
		Pillars []struct {
			Pillar string   `json:"pillar"`
			Name   string   `json:"name"`
			Hooks  []string `json:"hooks"`
		} `json:"pillars"`
	}
	if err := s.call(ctx, "ideas", ideasPrompt, describeDNA(dna), &payload); err != nil {
		return nil, err
	}
	set := make(PillarSet, 0, len(payload.Pillars))
	for _, p := range payload.Pillars {
		name := strings.TrimSpace(p.Pillar)
		if name == "" {
			name = strings.TrimSpace(p.Name)
		}
		hooks := make([]string, 0, len(p.Hooks))
		for _, h := range p.Hooks {
			if h = strings.TrimSpace(h); h != "" {
				hooks = append(hooks, h)
			}
		}
		if name == "" && len(hooks) == 0 {
			continue
		}
		set = append(set, Pillar{Name: name, Hooks: hooks})
	}
	if len(set) == 0 {
		return nil, &Error{Op: "ideas", Err: errors.New("no pillars returned")}
	}
	return set, nil
}

// DeriveScript implements Service.
func (s *LLMService) DeriveScript(ctx context.Context, idea string, format Format) (ScriptBody, error) {
	idea = strings.TrimSpace(idea)
	if idea == "" {
		return ScriptBody{}, &Error{Op: "script", Err: errors.New("idea required")}
	}
	if _, err := ParseFormat(string(format)); err != nil {
		return ScriptBody{}, &Error{Op: "script", Err: err}
	}
	var payload struct {
		Posts    []string `json:"posts"`
		Slides   []string `json:"slides"`
		Segments []string `json:"segments"`
		Script   string   `json:"script"`
	}
	if err := s.call(ctx, "script", scriptPrompt(format), "IDEA: "+idea, &payload); err != nil {
		return ScriptBody{}, err
	}

	var body ScriptBody
	if format.Segmented() {
		segments := firstNonEmptyList(payload.Posts, payload.Slides, payload.Segments)
		if len(segments) == 0 && strings.TrimSpace(payload.Script) != "" {
			segments = []string{payload.Script}
		}
		body = Segmented(segments...)
		if format == FormatThread && len(body.segments) > MaxThreadPosts {
			body.segments = body.segments[:MaxThreadPosts]
		}
	} else {
		text := payload.Script
		if strings.TrimSpace(text) == "" {
			text = strings.Join(firstNonEmptyList(payload.Segments, payload.Posts, payload.Slides), SegmentSeparator)
		}
		body = Monolithic(text)
	}
	if body.IsZero() {
		return ScriptBody{}, &Error{Op: "script", Err: fmt.Errorf("empty %s script", format)}
	}
	return body, nil
}

// SuggestSolution returns an empty string without calling the model when the
// pain point is too short to work from.
func (s *LLMService) SuggestSolution(ctx context.Context, dna brand.DNA) (string, error) {
	if !brand.CanSuggestSolution(dna) {
		return "", nil
	}
	user := fmt.Sprintf("Niche/Product: %s\nTarget Audience: %s\nProblem: %s",
		strings.TrimSpace(dna.Niche), strings.TrimSpace(dna.TargetAudience), strings.TrimSpace(dna.PainPoints))
	var payload struct {
		Solution string `json:"solution"`
	}
	if err := s.call(ctx, "solution suggestion", solutionPrompt, user, &payload); err != nil {
		return "", err
	}
	return strings.TrimSpace(payload.Solution), nil
}

// SuggestValues returns an empty string without calling the model when the
// pain point or solution is too short to work from.
func (s *LLMService) SuggestValues(ctx context.Context, dna brand.DNA) (string, error) {
	if !brand.CanSuggestValues(dna) {
		return "", nil
	}
	user := fmt.Sprintf("Niche/Product: %s\nTarget Audience: %s\nProblem: %s\nSolution: %s",
		strings.TrimSpace(dna.Niche), strings.TrimSpace(dna.TargetAudience),
		strings.TrimSpace(dna.PainPoints), strings.TrimSpace(dna.Solutions))
	var payload struct {
		Values string `json:"values"`
	}
	if err := s.call(ctx, "values suggestion", valuesPrompt, user, &payload); err != nil {
		return "", err
	}
	return strings.TrimSpace(payload.Values), nil
}

// Answer replies to an audience question in the brand's voice.
func (s *LLMService) Answer(ctx context.Context, dna brand.DNA, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", &Error{Op: "answer", Err: errors.New("question required")}
	}
	user := "Brand DNA:\n" + describeDNA(dna) + "\n---\nAudience question:\n\"" + question + "\""
	var payload struct {
		Answer string `json:"answer"`
	}
	if err := s.call(ctx, "answer", answerPrompt, user, &payload); err != nil {
		return "", err
	}
	answer := strings.TrimSpace(payload.Answer)
	if answer == "" {
		return "", &Error{Op: "answer", Err: errors.New("empty answer")}
	}
	return answer, nil
}

func (s *LLMService) call(ctx context.Context, op, systemPrompt, userPrompt string, target any) error {
	if s == nil || s.completer == nil {
		return &Error{Op: op, Err: errors.New("no completer configured")}
	}
	started := time.Now()
	content, err := s.completer.CompleteJSON(ctx, withLanguage(systemPrompt, s.language), userPrompt)
	if err != nil {
		logging.WarnWithContext(s.logger, "generation call failed", "generation_call_failed",
			logging.String("op", op),
			logging.Duration("elapsed", time.Since(started)),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check llm api key, model and network"),
			logging.String(logging.FieldImpact, "request returned no content"),
		)
		return wrapError(op, err)
	}
	if err := s.decode(content, target); err != nil {
		logging.WarnWithContext(s.logger, "generation payload unreadable", "generation_decode_failed",
			logging.String("op", op),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "the model ignored the JSON shape; retry or switch model"),
			logging.String(logging.FieldImpact, "request returned no content"),
		)
		return &Error{Op: op, Err: fmt.Errorf("parse payload: %w", err)}
	}
	s.logger.Debug("generation call completed",
		logging.Args(logging.String("op", op), logging.Duration("elapsed", time.Since(started)))...)
	return nil
}

func firstNonEmptyList(lists ...[]string) []string {
	for _, list := range lists {
		for _, item := range list {
			if strings.TrimSpace(item) != "" {
				return list
			}
		}
	}
	return nil
}
