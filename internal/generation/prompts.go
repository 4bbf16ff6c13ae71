package generation

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"kontenai/internal/brand"
)

// Each system prompt ends with the JSON shape the model must return; the
// caller appends the output language line.
const (
	personaPrompt = `You help small brands define their social media persona.
From the brand information, suggest the tone of voice, the content pillars and the content types the brand should publish.
Also suggest one specific piece of additional information the user could provide to sharpen the persona (for example customer success stories or unique product features). Leave it empty when the input is already detailed enough.

Respond ONLY with a JSON object like: {"tone": "...", "contentPillars": "...", "contentTypes": "...", "additionalInfoSuggestion": "..."}`

	ideasPrompt = `You are a content strategist. From the brand DNA, create 4 content pillars. For every pillar give 5 catchy titles or hooks that could open a social media thread.
Focus on the audience's problems and aspirations.

Respond ONLY with a JSON object like: {"pillars": [{"pillar": "name", "hooks": ["hook 1", "hook 2"]}]}`

	threadPrompt = `You are a scriptwriter. Turn the idea into a Threads thread of at most 5 posts. Keep the flow smooth and make readers curious about the next post.

Respond ONLY with a JSON object like: {"posts": ["post 1", "post 2"]}`

	carouselPrompt = `You are a scriptwriter. Turn the idea into an Instagram carousel of 5 to 8 slides. The first slide is the hook, the last slide is a call to action, each slide is short enough to read at a glance.

Respond ONLY with a JSON object like: {"slides": ["slide 1", "slide 2"]}`

	videoPrompt = `You are a scriptwriter. Turn the idea into a short vertical video script (30 to 60 seconds) with a strong hook in the first 3 seconds, the spoken lines and brief on-screen directions in brackets.

Respond ONLY with a JSON object like: {"script": "..."}`

	solutionPrompt = `You are a sharp business and social observer. From the brand information, suggest ONE concise and strong solution the brand could offer for the audience's problem.

Respond ONLY with a JSON object like: {"solution": "..."}`

	valuesPrompt = `You are a sharp business and social observer. From the brand information, suggest 3 to 5 core brand values that will resonate with the target audience. Keep each value short and separate them with commas.

Respond ONLY with a JSON object like: {"values": "value one, value two, value three"}`

	answerPrompt = `You speak on behalf of a brand with the DNA below. Answer the audience question using the brand's persona, style, tone and values.
Understand the question, give a relevant and helpful answer, reflect the brand values, keep it concise and easy to understand.

Respond ONLY with a JSON object like: {"answer": "..."}`
)

func scriptPrompt(format Format) string {
	switch format {
	case FormatCarousel:
		return carouselPrompt
	case FormatVideo:
		return videoPrompt
	default:
		return threadPrompt
	}
}

// LanguageName returns the English display name for a BCP 47 language code.
func LanguageName(code string) (string, error) {
	tag, err := language.Parse(strings.TrimSpace(code))
	if err != nil {
		return "", fmt.Errorf("parse language %q: %w", code, err)
	}
	name := display.English.Languages().Name(tag)
	if name == "" {
		return tag.String(), nil
	}
	return name, nil
}

func withLanguage(prompt, languageName string) string {
	if languageName == "" {
		return prompt
	}
	return prompt + "\n\nWrite every value in " + languageName + "."
}

// describeDNA renders the configuration as the prompt's user message.
func describeDNA(dna brand.DNA) string {
	var b strings.Builder
	line := func(label, value string) {
		if value = strings.TrimSpace(value); value != "" {
			fmt.Fprintf(&b, "%s: %s\n", label, value)
		}
	}
	line("Niche/Product", dna.Niche)
	line("Target Audience", dna.TargetAudience)
	line("Pain Points", dna.PainPoints)
	line("Solutions", dna.Solutions)
	line("Values", dna.Values)
	line("Content Style", joinTags(dna.ContentStyle))
	line("Content Tone", joinTags(dna.ContentTone))
	line("Platforms", joinTags(dna.Platforms))
	line("Additional Info", dna.AdditionalInfo)
	return strings.TrimSpace(b.String())
}

func joinTags[T ~string](tags []T) string {
	parts := make([]string, 0, len(tags))
	for _, t := range tags {
		parts = append(parts, string(t))
	}
	return strings.Join(parts, ", ")
}
