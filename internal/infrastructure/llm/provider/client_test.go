package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/kirillkom/deductive-coding/internal/core/domain"
	"github.com/kirillkom/deductive-coding/internal/infrastructure/resilience"
)

var colorTag = domain.Tag{ID: "t1", Name: "Color", Description: "mentions of color"}

const skyDocument = "The sky is blue. The grass is green."

func TestOpenAIRequestAndReply(t *testing.T) {
	var (
		auth    string
		payload openAIRequest
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		auth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"The sky is blue.\nThe grass is green."}}]}`))
	}))
	defer server.Close()

	client := New(domain.ProviderConfig{APIKey: "sk-test", Provider: domain.ProviderOpenAI}, Options{OpenAIBaseURL: server.URL})
	quotes, err := client.Analyze(context.Background(), skyDocument, colorTag)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if !reflect.DeepEqual(quotes, []string{"The sky is blue.", "The grass is green."}) {
		t.Fatalf("unexpected quotes %#v", quotes)
	}
	if auth != "Bearer sk-test" {
		t.Fatalf("unexpected auth header %q", auth)
	}
	if payload.Model != DefaultOpenAIModel || payload.Temperature != openAITemperature {
		t.Fatalf("unexpected request %+v", payload)
	}
	if len(payload.Messages) != 1 || payload.Messages[0].Role != "user" {
		t.Fatalf("expected a single user message, got %+v", payload.Messages)
	}
	prompt := payload.Messages[0].Content
	for _, want := range []string{`Tag: "Color"`, `Description: "mentions of color"`, skyDocument, "NO_MATCHES"} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestOpenAIEmptyChoicesMeansNoQuotes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	client := New(domain.ProviderConfig{APIKey: "k", Provider: domain.ProviderOpenAI}, Options{OpenAIBaseURL: server.URL})
	quotes, err := client.Analyze(context.Background(), skyDocument, colorTag)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if quotes == nil || len(quotes) != 0 {
		t.Fatalf("expected empty quotes, got %#v", quotes)
	}
}

func TestAnthropicRequestAndReply(t *testing.T) {
	var (
		headers http.Header
		payload anthropicRequest
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			http.NotFound(w, r)
			return
		}
		headers = r.Header.Clone()
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"NO_MATCHES"}]}`))
	}))
	defer server.Close()

	cfg := domain.ProviderConfig{APIKey: "ak-test", Provider: domain.ProviderAnthropic, Model: "claude-custom"}
	quotes, err := New(cfg, Options{AnthropicBaseURL: server.URL}).Analyze(context.Background(), skyDocument, colorTag)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if len(quotes) != 0 {
		t.Fatalf("expected no quotes, got %#v", quotes)
	}
	if headers.Get("x-api-key") != "ak-test" || headers.Get("anthropic-version") != anthropicVersion {
		t.Fatalf("unexpected headers %v", headers)
	}
	if headers.Get("Authorization") != "" {
		t.Fatalf("anthropic must not send bearer auth")
	}
	if payload.Model != "claude-custom" || payload.MaxTokens != anthropicMaxTokens {
		t.Fatalf("unexpected request %+v", payload)
	}
}

func TestCustomEndpointReadsResponseThenContent(t *testing.T) {
	cases := map[string]struct {
		body string
		want []string
	}{
		"response field": {body: `{"response":"The sky is blue."}`, want: []string{"The sky is blue."}},
		"content field":  {body: `{"content":"The grass is green."}`, want: []string{"The grass is green."}},
		"response wins":  {body: `{"response":"a","content":"b"}`, want: []string{"a"}},
		"neither":        {body: `{}`, want: []string{}},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			var payload map[string]any
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
					t.Fatalf("decode request: %v", err)
				}
				_, _ = w.Write([]byte(tc.body))
			}))
			defer server.Close()

			cfg := domain.ProviderConfig{APIKey: "k", Provider: domain.ProviderCustom, Endpoint: server.URL + "/generate"}
			quotes, err := New(cfg, Options{}).Analyze(context.Background(), skyDocument, colorTag)
			if err != nil {
				t.Fatalf("Analyze() error = %v", err)
			}
			if !reflect.DeepEqual(quotes, tc.want) {
				t.Fatalf("quotes = %#v, want %#v", quotes, tc.want)
			}
			if _, ok := payload["prompt"].(string); !ok {
				t.Fatalf("expected prompt in payload, got %v", payload)
			}
			if _, ok := payload["model"]; ok {
				t.Fatalf("model must be omitted when not configured")
			}
			if stream, ok := payload["stream"].(bool); !ok || stream {
				t.Fatalf("expected stream=false, got %v", payload["stream"])
			}
		})
	}
}

func TestCustomWithoutEndpointIsConfigurationError(t *testing.T) {
	client := New(domain.ProviderConfig{APIKey: "k", Provider: domain.ProviderCustom}, Options{})
	_, err := client.Analyze(context.Background(), skyDocument, colorTag)
	if !domain.IsKind(err, domain.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestUnknownProviderIsConfigurationError(t *testing.T) {
	client := New(domain.ProviderConfig{APIKey: "k", Provider: "gemini"}, Options{})
	_, err := client.Analyze(context.Background(), skyDocument, colorTag)
	if !domain.IsKind(err, domain.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestNonSuccessStatusIsProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid api key", http.StatusUnauthorized)
	}))
	defer server.Close()

	client := New(domain.ProviderConfig{APIKey: "bad", Provider: domain.ProviderOpenAI}, Options{OpenAIBaseURL: server.URL})
	_, err := client.Analyze(context.Background(), skyDocument, colorTag)
	if !domain.IsKind(err, domain.ErrProvider) {
		t.Fatalf("expected provider error, got %v", err)
	}
	if domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("401 must not be temporary")
	}
	if !strings.Contains(err.Error(), "invalid api key") {
		t.Fatalf("expected response body in error, got %v", err)
	}
}

func TestServerErrorIsTemporaryProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := New(domain.ProviderConfig{APIKey: "k", Provider: domain.ProviderAnthropic}, Options{AnthropicBaseURL: server.URL})
	_, err := client.Analyze(context.Background(), skyDocument, colorTag)
	if !domain.IsKind(err, domain.ErrProvider) || !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected temporary provider error, got %v", err)
	}
}

func TestMalformedJSONIsProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>not json</html>`))
	}))
	defer server.Close()

	client := New(domain.ProviderConfig{APIKey: "k", Provider: domain.ProviderOpenAI}, Options{OpenAIBaseURL: server.URL})
	_, err := client.Analyze(context.Background(), skyDocument, colorTag)
	if !domain.IsKind(err, domain.ErrProvider) {
		t.Fatalf("expected provider error, got %v", err)
	}
}

func TestBreakerOpensAfterBackendFailures(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	exec := resilience.NewExecutor(resilience.Config{
		BreakerEnabled:      true,
		BreakerMinRequests:  2,
		BreakerFailureRatio: 0.5,
		BreakerOpenTimeout:  time.Minute,
	})
	factory := NewFactory(Options{OpenAIBaseURL: server.URL, Executor: exec})
	client := factory.NewQuoteExtractor(domain.ProviderConfig{APIKey: "k", Provider: domain.ProviderOpenAI})

	for i := 0; i < 3; i++ {
		_, err := client.Analyze(context.Background(), skyDocument, colorTag)
		if !domain.IsKind(err, domain.ErrProvider) {
			t.Fatalf("call %d: expected provider error, got %v", i, err)
		}
	}
	if calls != 2 {
		t.Fatalf("expected breaker to stop the third call, backend saw %d", calls)
	}
}

func TestBreakerIsScopedToBackend(t *testing.T) {
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer failing.Close()
	healthyCalls := 0
	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		healthyCalls++
		_, _ = w.Write([]byte(`{"response":"The sky is blue."}`))
	}))
	defer healthy.Close()

	exec := resilience.NewExecutor(resilience.Config{
		BreakerEnabled:      true,
		BreakerMinRequests:  2,
		BreakerFailureRatio: 0.5,
		BreakerOpenTimeout:  time.Minute,
	})
	factory := NewFactory(Options{Executor: exec})

	broken := factory.NewQuoteExtractor(domain.ProviderConfig{APIKey: "k1", Provider: domain.ProviderCustom, Endpoint: failing.URL})
	for i := 0; i < 3; i++ {
		if _, err := broken.Analyze(context.Background(), skyDocument, colorTag); !domain.IsKind(err, domain.ErrProvider) {
			t.Fatalf("call %d: expected provider error, got %v", i, err)
		}
	}

	working := factory.NewQuoteExtractor(domain.ProviderConfig{APIKey: "k2", Provider: domain.ProviderCustom, Endpoint: healthy.URL})
	quotes, err := working.Analyze(context.Background(), skyDocument, colorTag)
	if err != nil {
		t.Fatalf("a failing backend must not open the breaker of another one: %v", err)
	}
	if healthyCalls != 1 || !reflect.DeepEqual(quotes, []string{"The sky is blue."}) {
		t.Fatalf("expected one call answered by the healthy backend, got %d calls and %#v", healthyCalls, quotes)
	}
}

func TestBreakerKeySeparatesCredentials(t *testing.T) {
	opts := Options{}.normalize()
	a := breakerKey(domain.ProviderConfig{APIKey: "k1", Provider: domain.ProviderOpenAI}, opts)
	b := breakerKey(domain.ProviderConfig{APIKey: "k2", Provider: domain.ProviderOpenAI}, opts)
	if a == b {
		t.Fatalf("expected distinct keys per credential, both %q", a)
	}
	if !strings.HasPrefix(a, "openai_analyze:api.openai.com:") {
		t.Fatalf("unexpected key %q", a)
	}
	if strings.Contains(a, "k1") {
		t.Fatalf("key must not expose the credential: %q", a)
	}
}

func TestParseQuotes(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{in: "", want: []string{}},
		{in: "  NO_MATCHES \n", want: []string{}},
		{in: "A\n\n  B  \nNO_MATCHES found\nA", want: []string{"A", "B", "A"}},
		{in: "\r\nline one\r\nline two\r\n", want: []string{"line one", "line two"}},
	}
	for _, tc := range cases {
		if got := parseQuotes(tc.in); !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("parseQuotes(%q) = %#v, want %#v", tc.in, got, tc.want)
		}
	}
}
