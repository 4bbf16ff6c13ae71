package llm

import (
	"context"
	"errors"
	"strings"

	openai "github.com/openai/openai-go"
	ooption "github.com/openai/openai-go/option"
	oshared "github.com/openai/openai-go/shared"
)

// OpenAI adapts the official OpenAI SDK to the Completer contract.
type OpenAI struct {
	cfg    Config
	client openai.Client
	settings
}

// NewOpenAI constructs an OpenAI-backed completer. BaseURL may point at any
// OpenAI-compatible endpoint.
func NewOpenAI(cfg Config, opts ...Option) *OpenAI {
	cfg = cfg.trimmed()
	s := newSettings(cfg, opts)
	reqOpts := []ooption.RequestOption{
		ooption.WithAPIKey(cfg.APIKey),
		ooption.WithHTTPClient(s.httpClient),
		ooption.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		reqOpts = append(reqOpts, ooption.WithBaseURL(cfg.BaseURL))
	}
	return &OpenAI{cfg: cfg, client: openai.NewClient(reqOpts...), settings: s}
}

// CompleteJSON implements Completer.
func (o *OpenAI) CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	const op = "openai complete"
	if err := checkPrompts(op, o.cfg.APIKey, systemPrompt, userPrompt); err != nil {
		return "", err
	}
	jsonObject := oshared.NewResponseFormatJSONObjectParam()
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.cfg.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(strings.TrimSpace(systemPrompt)),
			openai.UserMessage(strings.TrimSpace(userPrompt)),
		},
		Temperature:    openai.Float(o.temperature),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{OfJSONObject: &jsonObject},
	}
	return o.retry.run(ctx, op, func(ctx context.Context) (string, error) {
		completion, err := o.client.Chat.Completions.New(ctx, params)
		if err != nil {
			var apiErr *openai.Error
			if errors.As(err, &apiErr) {
				return "", &httpStatusError{StatusCode: apiErr.StatusCode, Body: apiErr.Error(), Err: err}
			}
			return "", err
		}
		var finishReason, refusal string
		for _, choice := range completion.Choices {
			if content := strings.TrimSpace(choice.Message.Content); content != "" {
				return content, nil
			}
			finishReason = firstNonEmpty(finishReason, choice.FinishReason)
			refusal = firstNonEmpty(refusal, choice.Message.Refusal)
		}
		return "", &emptyContentError{Op: op, FinishReason: finishReason, Refusal: refusal, Snippet: summarizePayloadSnippet(completion.RawJSON())}
	})
}

// HealthCheck issues a fast ping to verify the API key and model are usable.
func (o *OpenAI) HealthCheck(ctx context.Context) error {
	return healthCheck(ctx, o)
}
