// Package openaicompat generates narrative text through any OpenAI-compatible
// chat completions endpoint (OpenAI, Hugging Face router, vLLM, Ollama).
package openaicompat

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
)

const systemPrompt = "You are a careful equity research assistant. Answer in plain English using the requested markdown headings."

// Client wraps go-openai with the sampling settings used for advisory text.
type Client struct {
	api   *openai.Client
	model string
	log   zerolog.Logger
}

// NewClient creates a chat completions client.
// baseURL is optional and defaults to the OpenAI API.
func NewClient(token, model, baseURL string, log zerolog.Logger) *Client {
	cfg := openai.DefaultConfig(token)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimSuffix(baseURL, "/")
	}

	return &Client{
		api:   openai.NewClientWithConfig(cfg),
		model: model,
		log:   log.With().Str("client", "openai").Logger(),
	}
}

// Generate sends prompt as a user message and returns the first choice.
func (c *Client) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: 0.7,
		TopP:        0.9,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}
	if maxTokens > 0 {
		req.MaxTokens = maxTokens
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}

	c.log.Debug().
		Int("prompt_tokens", resp.Usage.PromptTokens).
		Int("completion_tokens", resp.Usage.CompletionTokens).
		Msg("Chat completion finished")

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
