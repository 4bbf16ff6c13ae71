// Package llm provides the chat-completion clients behind kontenai's
// generation service.
//
// Three providers satisfy the same Completer contract:
//   - openrouter: a plain HTTP client for the OpenRouter chat completion API
//   - openai: an adapter over github.com/openai/openai-go
//   - anthropic: an adapter over github.com/anthropics/anthropic-sdk-go
//
// Every provider asks for a JSON-only answer and returns the raw payload;
// DecodeLLMJSON turns it into a Go value while tolerating code fences and
// stray prose around the object.
//
// # Retry Behaviour
//
// All providers share one retry policy: HTTP 408/429/5xx, empty content and
// network timeouts are retried with exponential backoff (base 1s, max 10s, up
// to 5 attempts by default). The SDK clients have their own retries disabled
// so attempts are counted once. Context cancellation aborts retries
// immediately.
//
// # Entry Points
//
// New: build the Completer for a provider name.
// NewClient: construct the OpenRouter client directly.
// Client.HealthCheck: verify API key and model availability.
package llm
