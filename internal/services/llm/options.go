package llm

import (
	"net/http"
	"strings"
	"time"
)

const (
	jsonResponseType      = "json_object"
	defaultHTTPTimeout    = 15 * time.Second
	defaultRetryMaxDelay  = 10 * time.Second
	defaultRetryBaseDelay = 1 * time.Second
	defaultRetryAttempts  = 5
	defaultTemperature    = 0.7
	defaultMaxTokens      = 4096
)

// Config captures the runtime settings required to talk to a provider.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	Referer        string
	Title          string
	TimeoutSeconds int
}

func (c Config) trimmed() Config {
	return Config{
		APIKey:         strings.TrimSpace(c.APIKey),
		BaseURL:        strings.TrimSpace(c.BaseURL),
		Model:          strings.TrimSpace(c.Model),
		Referer:        strings.TrimSpace(c.Referer),
		Title:          strings.TrimSpace(c.Title),
		TimeoutSeconds: c.TimeoutSeconds,
	}
}

func (c Config) timeout() time.Duration {
	if c.TimeoutSeconds > 0 {
		return time.Duration(c.TimeoutSeconds) * time.Second
	}
	return defaultHTTPTimeout
}

// DefaultHTTPTimeout returns the default timeout used for LLM requests.
func DefaultHTTPTimeout() time.Duration {
	return defaultHTTPTimeout
}

type settings struct {
	httpClient  *http.Client
	temperature float64
	maxTokens   int64
	retry       retryPolicy
}

func newSettings(cfg Config, opts []Option) settings {
	s := settings{
		httpClient:  &http.Client{Timeout: cfg.timeout()},
		temperature: defaultTemperature,
		maxTokens:   defaultMaxTokens,
		retry: retryPolicy{
			maxAttempts: defaultRetryAttempts,
			baseDelay:   defaultRetryBaseDelay,
			maxDelay:    defaultRetryMaxDelay,
		},
	}
	for _, opt := range opts {
		opt(&s)
	}
	if s.httpClient == nil {
		s.httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return s
}

// Option customizes a provider client.
type Option func(*settings)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(s *settings) {
		if client != nil {
			s.httpClient = client
		}
	}
}

// WithTemperature overrides the sampling temperature (defaults to 0.7).
func WithTemperature(temperature float64) Option {
	return func(s *settings) {
		s.temperature = temperature
	}
}

// WithMaxTokens bounds the completion length where the provider requires it.
func WithMaxTokens(tokens int64) Option {
	return func(s *settings) {
		if tokens > 0 {
			s.maxTokens = tokens
		}
	}
}

// WithRetryMaxAttempts overrides the default retry count (defaults to 5).
func WithRetryMaxAttempts(attempts int) Option {
	return func(s *settings) {
		s.retry.maxAttempts = attempts
	}
}

// WithRetryBackoff overrides the retry backoff delays.
func WithRetryBackoff(baseDelay, maxDelay time.Duration) Option {
	return func(s *settings) {
		s.retry.baseDelay = baseDelay
		s.retry.maxDelay = maxDelay
	}
}

// WithSleeper overrides how retry sleeps are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(s *settings) {
		s.retry.sleeper = sleeper
	}
}
