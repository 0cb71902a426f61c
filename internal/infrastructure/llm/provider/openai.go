package provider

import "context"

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	Temperature float64         `json:"temperature"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *Client) callOpenAI(ctx context.Context, prompt string) (string, error) {
	request := openAIRequest{
		Model:       modelOrDefault(c.cfg.Model, DefaultOpenAIModel),
		Messages:    []openAIMessage{{Role: "user", Content: prompt}},
		Temperature: openAITemperature,
	}
	headers := map[string]string{
		"Authorization": "Bearer " + c.cfg.APIKey,
	}

	var response openAIResponse
	if err := c.postJSON(ctx, c.opts.OpenAIBaseURL+"/v1/chat/completions", headers, request, &response, "openai chat"); err != nil {
		return "", err
	}
	if len(response.Choices) == 0 {
		return "", nil
	}
	return response.Choices[0].Message.Content, nil
}
