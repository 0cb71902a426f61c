package domain

import (
	"errors"
	"fmt"
	"strings"
)

type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderCustom    Provider = "custom"
)

func ParseProvider(raw string) (Provider, error) {
	switch p := Provider(strings.ToLower(strings.TrimSpace(raw))); p {
	case ProviderOpenAI, ProviderAnthropic, ProviderCustom:
		return p, nil
	default:
		return "", WrapError(ErrConfiguration, "parse provider", fmt.Errorf("unsupported AI provider: %q", raw))
	}
}

// ProviderConfig selects and authenticates an LLM backend. It is treated as
// immutable for the duration of one analysis run.
type ProviderConfig struct {
	APIKey   string   `json:"apiKey"`
	Provider Provider `json:"provider"`
	Model    string   `json:"model,omitempty"`
	Endpoint string   `json:"endpoint,omitempty"`
}

func (c ProviderConfig) Validate() error {
	_, err := c.Normalized()
	return err
}

// Normalized returns c with the provider name canonicalized and the other
// fields trimmed, or an ErrConfiguration error when c is unusable.
func (c ProviderConfig) Normalized() (ProviderConfig, error) {
	provider, err := ParseProvider(string(c.Provider))
	if err != nil {
		return ProviderConfig{}, err
	}
	out := ProviderConfig{
		APIKey:   strings.TrimSpace(c.APIKey),
		Provider: provider,
		Model:    strings.TrimSpace(c.Model),
		Endpoint: strings.TrimSpace(c.Endpoint),
	}
	if out.APIKey == "" {
		return ProviderConfig{}, WrapError(ErrConfiguration, "validate provider config", errors.New("api key is required"))
	}
	if out.Provider == ProviderCustom && out.Endpoint == "" {
		return ProviderConfig{}, WrapError(ErrConfiguration, "validate provider config", errors.New("custom endpoint URL is required"))
	}
	return out, nil
}

// Redacted hides all but the last four characters of the API key.
func (c ProviderConfig) Redacted() ProviderConfig {
	out := c
	if n := len(c.APIKey); n > 4 {
		out.APIKey = strings.Repeat("*", n-4) + c.APIKey[n-4:]
	} else if n > 0 {
		out.APIKey = strings.Repeat("*", n)
	}
	return out
}
