package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func chatResponse(content string) map[string]any {
	return map[string]any{
		"choices": []any{
			map[string]any{
				"finish_reason": "stop",
				"message":       map[string]any{"content": content},
			},
		},
	}
}

func noSleep() []Option {
	return []Option{WithRetryBackoff(0, 0), WithSleeper(func(time.Duration) {})}
}

func TestClientHealthCheck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test" {
			t.Errorf("unexpected authorization header %q", got)
		}
		if got := r.Header.Get("X-Title"); got != "KontenAI" {
			t.Errorf("unexpected title header %q", got)
		}
		_ = json.NewEncoder(w).Encode(chatResponse(`{"ok":true}`))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "demo-model", Title: "KontenAI"})
	if err := client.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck returned error: %v", err)
	}
}

func TestClientCompleteJSONSendsPromptsAndJSONMode(t *testing.T) {
	var captured chatCompletionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(chatResponse("```json\n{\"tone\":\"warm\"}\n```"))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "demo-model"}, WithTemperature(0.2))
	content, err := client.CompleteJSON(context.Background(), " system ", " user ")
	if err != nil {
		t.Fatalf("CompleteJSON returned error: %v", err)
	}
	var parsed struct {
		Tone string `json:"tone"`
	}
	if err := DecodeLLMJSON(content, &parsed); err != nil || parsed.Tone != "warm" {
		t.Fatalf("decode content %q: %+v, %v", content, parsed, err)
	}
	if captured.Model != "demo-model" || captured.Temperature != 0.2 {
		t.Fatalf("unexpected request: %+v", captured)
	}
	if captured.ResponseFormat["type"] != jsonResponseType {
		t.Fatalf("expected json response format, got %v", captured.ResponseFormat)
	}
	if len(captured.Messages) != 2 || captured.Messages[0].Content != "system" || captured.Messages[1].Role != "user" {
		t.Fatalf("unexpected messages: %+v", captured.Messages)
	}
}

func TestClientToolCallArgumentsUsedAsContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload := map[string]any{
			"choices": []any{
				map[string]any{
					"finish_reason": "tool_calls",
					"message": map[string]any{
						"content": "",
						"tool_calls": []any{
							map[string]any{
								"type":     "function",
								"id":       "call_1",
								"function": map[string]any{"name": "answer", "arguments": `{"ok":true}`},
							},
						},
					},
				},
			},
		}
		_ = json.NewEncoder(w).Encode(payload)
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "demo-model"})
	if err := client.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck returned error: %v", err)
	}
}

func TestClientEmptyContentHasSnippet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(chatResponse(""))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "demo-model"}, noSleep()...)
	_, err := client.CompleteJSON(context.Background(), "system", "user")
	if err == nil {
		t.Fatal("expected completion to fail")
	}
	if !strings.Contains(err.Error(), "empty content") || !strings.Contains(err.Error(), "response_snippet=") {
		t.Fatalf("expected empty-content error to include snippet, got %v", err)
	}
}

func TestClientRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"error":{"message":"busy"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(chatResponse(`{"ok":true}`))
	}))
	defer server.Close()

	var slept []time.Duration
	client := NewClient(
		Config{APIKey: "test", BaseURL: server.URL, Model: "demo-model"},
		WithRetryBackoff(time.Millisecond, 10*time.Millisecond),
		WithSleeper(func(d time.Duration) { slept = append(slept, d) }),
	)
	if err := client.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck returned error: %v", err)
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 calls, got %d", calls.Load())
	}
	if len(slept) != 2 || slept[0] != time.Millisecond || slept[1] != 2*time.Millisecond {
		t.Fatalf("unexpected backoff sequence: %v", slept)
	}
}

func TestClientDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"unauthorized"}`))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "bad", BaseURL: server.URL, Model: "demo"}, noSleep()...)
	err := client.HealthCheck(context.Background())
	var statusErr *httpStatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 status error, got %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected a single call, got %d", calls.Load())
	}
}

func TestClientRequiresAPIKey(t *testing.T) {
	client := NewClient(Config{Model: "demo"})
	if _, err := client.CompleteJSON(context.Background(), "system", "user"); err == nil || !strings.Contains(err.Error(), "api key required") {
		t.Fatalf("expected api key error, got %v", err)
	}
}

func TestRetryHonoursRetryAfter(t *testing.T) {
	policy := retryPolicy{maxAttempts: 3, baseDelay: time.Second, maxDelay: 10 * time.Second}
	delay, retry := policy.delay(context.Background(), &httpStatusError{StatusCode: http.StatusTooManyRequests, RetryAfter: 4 * time.Second}, 1, 3)
	if !retry || delay != 4*time.Second {
		t.Fatalf("expected 4s retry, got %v %v", delay, retry)
	}
	delay, retry = policy.delay(context.Background(), &httpStatusError{StatusCode: http.StatusTooManyRequests, RetryAfter: time.Minute}, 1, 3)
	if !retry || delay != 10*time.Second {
		t.Fatalf("expected capped retry, got %v %v", delay, retry)
	}
	if _, retry := policy.delay(context.Background(), context.Canceled, 1, 3); retry {
		t.Fatal("expected no retry on cancellation")
	}
}

func TestDecodeLLMJSONExtractsObjectFromProse(t *testing.T) {
	var parsed struct {
		Values string `json:"values"`
	}
	if err := DecodeLLMJSON("Sure! Here you go:\n{\"values\":\"Jujur, Peduli\"}\nThanks", &parsed); err != nil {
		t.Fatalf("DecodeLLMJSON returned error: %v", err)
	}
	if parsed.Values != "Jujur, Peduli" {
		t.Fatalf("unexpected values: %q", parsed.Values)
	}
	if err := DecodeLLMJSON("   ", &parsed); err == nil {
		t.Fatal("expected empty payload error")
	}
}

func TestNewSelectsProvider(t *testing.T) {
	tests := []struct {
		provider string
		want     string
	}{
		{"", "*llm.Client"},
		{"OpenRouter", "*llm.Client"},
		{"openai", "*llm.OpenAI"},
		{"anthropic", "*llm.Anthropic"},
	}
	for _, tt := range tests {
		completer, err := New(tt.provider, Config{APIKey: "k", Model: "m"})
		if err != nil {
			t.Fatalf("New(%q) returned error: %v", tt.provider, err)
		}
		if got := typeName(completer); got != tt.want {
			t.Fatalf("New(%q) = %s, want %s", tt.provider, got, tt.want)
		}
	}
	if _, err := New("gemini", Config{}); err == nil {
		t.Fatal("expected unsupported provider error")
	}
}

func typeName(v any) string {
	switch v.(type) {
	case *Client:
		return "*llm.Client"
	case *OpenAI:
		return "*llm.OpenAI"
	case *Anthropic:
		return "*llm.Anthropic"
	default:
		return "unknown"
	}
}
