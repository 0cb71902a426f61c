package provider

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kirillkom/deductive-coding/internal/core/domain"
	"github.com/kirillkom/deductive-coding/internal/core/ports"
	"github.com/kirillkom/deductive-coding/internal/infrastructure/resilience"
)

const (
	DefaultOpenAIBaseURL    = "https://api.openai.com"
	DefaultAnthropicBaseURL = "https://api.anthropic.com"
	DefaultOpenAIModel      = "gpt-4o"
	DefaultAnthropicModel   = "claude-sonnet-4-20250514"

	anthropicVersion   = "2023-06-01"
	anthropicMaxTokens = 4096
	openAITemperature  = 0.1
)

// Options are shared by every client a Factory builds.
type Options struct {
	OpenAIBaseURL    string
	AnthropicBaseURL string
	Timeout          time.Duration
	HTTPClient       *http.Client
	Executor         *resilience.Executor
}

func (o Options) normalize() Options {
	out := o
	if strings.TrimSpace(out.OpenAIBaseURL) == "" {
		out.OpenAIBaseURL = DefaultOpenAIBaseURL
	}
	if strings.TrimSpace(out.AnthropicBaseURL) == "" {
		out.AnthropicBaseURL = DefaultAnthropicBaseURL
	}
	out.OpenAIBaseURL = strings.TrimRight(out.OpenAIBaseURL, "/")
	out.AnthropicBaseURL = strings.TrimRight(out.AnthropicBaseURL, "/")
	if out.Timeout <= 0 {
		out.Timeout = 120 * time.Second
	}
	if out.HTTPClient == nil {
		out.HTTPClient = &http.Client{Timeout: out.Timeout}
	}
	return out
}

type Factory struct {
	opts Options
}

func NewFactory(opts Options) *Factory {
	return &Factory{opts: opts.normalize()}
}

func (f *Factory) NewQuoteExtractor(cfg domain.ProviderConfig) ports.QuoteExtractor {
	return newClient(cfg, f.opts)
}

// Client extracts quotes for one tag at a time through the configured backend.
type Client struct {
	cfg        domain.ProviderConfig
	opts       Options
	httpClient *http.Client
	executor   *resilience.Executor
	breakerKey string
}

func New(cfg domain.ProviderConfig, opts Options) *Client {
	return newClient(cfg, opts.normalize())
}

func newClient(cfg domain.ProviderConfig, opts Options) *Client {
	if parsed, err := domain.ParseProvider(string(cfg.Provider)); err == nil {
		cfg.Provider = parsed
	}
	return &Client{
		cfg:        cfg,
		opts:       opts,
		httpClient: opts.HTTPClient,
		executor:   opts.Executor,
		breakerKey: breakerKey(cfg, opts),
	}
}

// breakerKey names the circuit breaker for one backend: provider kind,
// target host and a digest of the credential. Workspaces pointing at
// different endpoints or keys never share breaker state.
func breakerKey(cfg domain.ProviderConfig, opts Options) string {
	var target string
	switch cfg.Provider {
	case domain.ProviderOpenAI:
		target = opts.OpenAIBaseURL
	case domain.ProviderAnthropic:
		target = opts.AnthropicBaseURL
	default:
		target = strings.TrimSpace(cfg.Endpoint)
	}
	if u, err := url.Parse(target); err == nil && u.Host != "" {
		target = u.Host
	}
	sum := sha256.Sum256([]byte(cfg.APIKey))
	return fmt.Sprintf("%s_analyze:%s:%s", cfg.Provider, target, hex.EncodeToString(sum[:4]))
}

func (c *Client) Analyze(ctx context.Context, documentText string, tag domain.Tag) ([]string, error) {
	prompt := buildQuotePrompt(documentText, tag)
	operation := string(c.cfg.Provider) + "_analyze"

	var content string
	err := c.execute(ctx, c.breakerKey, func(ctx context.Context) error {
		var callErr error
		switch c.cfg.Provider {
		case domain.ProviderOpenAI:
			content, callErr = c.callOpenAI(ctx, prompt)
		case domain.ProviderAnthropic:
			content, callErr = c.callAnthropic(ctx, prompt)
		case domain.ProviderCustom:
			content, callErr = c.callCustom(ctx, prompt)
		default:
			return domain.WrapError(domain.ErrConfiguration, "analyze tag", fmt.Errorf("unsupported AI provider: %q", c.cfg.Provider))
		}
		return callErr
	})
	if err != nil {
		slog.Warn("provider_call_failed",
			"provider", string(c.cfg.Provider),
			"tag", tag.Name,
			"error", err,
		)
		if domain.IsKind(err, domain.ErrConfiguration) {
			return nil, err
		}
		return nil, domain.WrapError(domain.ErrProvider, operation, wrapTemporaryIfNeeded(err))
	}
	return parseQuotes(content), nil
}

func (c *Client) execute(ctx context.Context, operation string, fn func(context.Context) error) error {
	if c.executor == nil {
		return fn(ctx)
	}
	return c.executor.Execute(ctx, operation, fn, countsAsBackendFailure)
}

func modelOrDefault(model, fallback string) string {
	if m := strings.TrimSpace(model); m != "" {
		return m
	}
	return fallback
}
