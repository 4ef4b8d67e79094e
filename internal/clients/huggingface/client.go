// Package huggingface provides a client for the Hugging Face hosted inference
// text-generation endpoint.
package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
)

const defaultBaseURL = "https://api-inference.huggingface.co/models/"

// Parameters mirror the text-generation task parameters.
type Parameters struct {
	MaxNewTokens      int     `json:"max_new_tokens"`
	Temperature       float64 `json:"temperature"`
	TopP              float64 `json:"top_p"`
	RepetitionPenalty float64 `json:"repetition_penalty"`
	ReturnFullText    bool    `json:"return_full_text"`
}

// DefaultParameters returns the sampling settings used for advisory text.
func DefaultParameters() Parameters {
	return Parameters{
		MaxNewTokens:      400,
		Temperature:       0.7,
		TopP:              0.9,
		RepetitionPenalty: 1.2,
		ReturnFullText:    false,
	}
}

type generationRequest struct {
	Inputs     string     `json:"inputs"`
	Parameters Parameters `json:"parameters"`
}

type generationResult struct {
	GeneratedText string `json:"generated_text"`
}

type errorResponse struct {
	Error         string  `json:"error"`
	EstimatedTime float64 `json:"estimated_time"`
}

// Client is the Hugging Face inference client.
// It has no client-level timeout; callers bound every call with ctx.
type Client struct {
	baseURL    string
	token      string
	model      string
	params     Parameters
	httpClient *http.Client
	log        zerolog.Logger
}

// NewClient creates a new inference client for model.
// baseURL is optional and defaults to the hosted inference API.
func NewClient(token, model, baseURL string, log zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &Client{
		baseURL:    baseURL,
		token:      token,
		model:      model,
		params:     DefaultParameters(),
		httpClient: &http.Client{},
		log:        log.With().Str("client", "huggingface").Logger(),
	}
}

// Generate sends prompt to the model and returns the trimmed generated text.
// maxTokens <= 0 keeps the default token budget.
func (c *Client) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	params := c.params
	if maxTokens > 0 {
		params.MaxNewTokens = maxTokens
	}

	results, err := c.doRequest(ctx, generationRequest{Inputs: prompt, Parameters: params})
	if err != nil {
		return "", err
	}

	if len(results) == 0 {
		return "", fmt.Errorf("huggingface returned no generations")
	}

	return strings.TrimSpace(results[0].GeneratedText), nil
}

func (c *Client) doRequest(ctx context.Context, payload generationRequest) ([]generationResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+c.model, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr errorResponse
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error != "" {
			c.log.Debug().
				Int("status", resp.StatusCode).
				Float64("estimated_time", apiErr.EstimatedTime).
				Msg("Inference request rejected")
			return nil, fmt.Errorf("huggingface returned status %d: %s", resp.StatusCode, apiErr.Error)
		}
		return nil, fmt.Errorf("huggingface returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var results []generationResult
	if err := json.Unmarshal(respBody, &results); err != nil {
		// Some deployments answer with a single object instead of a list
		var single generationResult
		if json.Unmarshal(respBody, &single) == nil && single.GeneratedText != "" {
			return []generationResult{single}, nil
		}
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return results, nil
}
