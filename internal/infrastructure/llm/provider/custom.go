package provider

import (
	"context"
	"errors"
	"strings"

	"github.com/kirillkom/deductive-coding/internal/core/domain"
)

// customRequest also satisfies Ollama's /api/generate, which streams unless
// stream is false.
type customRequest struct {
	Prompt string `json:"prompt"`
	Model  string `json:"model,omitempty"`
	Stream bool   `json:"stream"`
}

type customResponse struct {
	Response string `json:"response"`
	Content  string `json:"content"`
}

func (c *Client) callCustom(ctx context.Context, prompt string) (string, error) {
	endpoint := strings.TrimSpace(c.cfg.Endpoint)
	if endpoint == "" {
		return "", domain.WrapError(domain.ErrConfiguration, "custom endpoint", errors.New("custom endpoint URL is required"))
	}

	request := customRequest{
		Prompt: prompt,
		Model:  strings.TrimSpace(c.cfg.Model),
	}
	headers := map[string]string{
		"Authorization": "Bearer " + c.cfg.APIKey,
	}

	var response customResponse
	if err := c.postJSON(ctx, endpoint, headers, request, &response, "custom generate"); err != nil {
		return "", err
	}
	if response.Response != "" {
		return response.Response, nil
	}
	return response.Content, nil
}
