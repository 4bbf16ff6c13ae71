package llm

import (
	"context"
	"errors"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	aoption "github.com/anthropics/anthropic-sdk-go/option"
)

const anthropicJSONInstruction = "Respond with a single JSON object and nothing else."

// Anthropic adapts the official Anthropic SDK to the Completer contract.
type Anthropic struct {
	cfg    Config
	client anthropic.Client
	settings
}

// NewAnthropic constructs an Anthropic-backed completer.
func NewAnthropic(cfg Config, opts ...Option) *Anthropic {
	cfg = cfg.trimmed()
	s := newSettings(cfg, opts)
	reqOpts := []aoption.RequestOption{
		aoption.WithAPIKey(cfg.APIKey),
		aoption.WithHTTPClient(s.httpClient),
		aoption.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		reqOpts = append(reqOpts, aoption.WithBaseURL(cfg.BaseURL))
	}
	return &Anthropic{cfg: cfg, client: anthropic.NewClient(reqOpts...), settings: s}
}

// CompleteJSON implements Completer. The Messages API has no JSON mode, so the
// system prompt carries the instruction and DecodeLLMJSON absorbs stray prose.
func (a *Anthropic) CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	const op = "anthropic complete"
	if err := checkPrompts(op, a.cfg.APIKey, systemPrompt, userPrompt); err != nil {
		return "", err
	}
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(a.cfg.Model),
		MaxTokens:   a.maxTokens,
		Temperature: anthropic.Float(a.temperature),
		System: []anthropic.TextBlockParam{
			{Text: strings.TrimSpace(systemPrompt) + "\n\n" + anthropicJSONInstruction},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(strings.TrimSpace(userPrompt))),
		},
	}
	return a.retry.run(ctx, op, func(ctx context.Context) (string, error) {
		msg, err := a.client.Messages.New(ctx, params)
		if err != nil {
			var apiErr *anthropic.Error
			if errors.As(err, &apiErr) {
				return "", &httpStatusError{StatusCode: apiErr.StatusCode, Body: apiErr.Error(), Err: err}
			}
			return "", err
		}
		var parts []string
		for _, block := range msg.Content {
			if text, ok := block.AsAny().(anthropic.TextBlock); ok {
				if trimmed := strings.TrimSpace(text.Text); trimmed != "" {
					parts = append(parts, trimmed)
				}
			}
		}
		if len(parts) == 0 {
			return "", &emptyContentError{Op: op, FinishReason: string(msg.StopReason), Snippet: summarizePayloadSnippet(msg.RawJSON())}
		}
		return strings.Join(parts, "\n"), nil
	})
}

// HealthCheck issues a fast ping to verify the API key and model are usable.
func (a *Anthropic) HealthCheck(ctx context.Context) error {
	return healthCheck(ctx, a)
}
