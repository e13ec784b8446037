// Package openai adapts the OpenAI chat completions API to the single
// text-completion operation the extraction pipeline consumes.
package openai

import (
	"context"
	"fmt"

	sdk "github.com/sashabaranov/go-openai"
)

const defaultModel = sdk.GPT4oMini

// Client calls the OpenAI chat completions API.
type Client struct {
	api         *sdk.Client
	apiKey      string
	model       string
	temperature float32
}

// NewClient creates a new OpenAI client.
func NewClient(apiKey, model string, temperature float64) *Client {
	if model == "" {
		model = defaultModel
	}
	if temperature <= 0 {
		temperature = 0.1
	}

	return &Client{
		api:         sdk.NewClient(apiKey),
		apiKey:      apiKey,
		model:       model,
		temperature: float32(temperature),
	}
}

// Complete sends a single-turn prompt and returns the model's text reply.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, sdk.ChatCompletionRequest{
		Model:       c.model,
		Temperature: c.temperature,
		Messages: []sdk.ChatCompletionMessage{
			{Role: sdk.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response from API")
	}
	return resp.Choices[0].Message.Content, nil
}

// IsConfigured returns true if the client has an API key
func (c *Client) IsConfigured() bool {
	return c.apiKey != ""
}
