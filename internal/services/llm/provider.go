package llm

import (
	"context"
	"fmt"
	"strings"
)

// Provider names accepted by New.
const (
	ProviderOpenRouter = "openrouter"
	ProviderOpenAI     = "openai"
	ProviderAnthropic  = "anthropic"
)

// Completer sends a system and user prompt and returns the model's raw JSON answer.
type Completer interface {
	CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// New builds the Completer for provider.
func New(provider string, cfg Config, opts ...Option) (Completer, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "", ProviderOpenRouter:
		return NewClient(cfg, opts...), nil
	case ProviderOpenAI:
		return NewOpenAI(cfg, opts...), nil
	case ProviderAnthropic:
		return NewAnthropic(cfg, opts...), nil
	default:
		return nil, fmt.Errorf("llm: unsupported provider %q", provider)
	}
}

// HealthCheck verifies that any Completer answers a trivial JSON request.
func HealthCheck(ctx context.Context, completer Completer) error {
	return healthCheck(ctx, completer)
}
