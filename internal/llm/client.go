// Package llm provides the chat-completion client used to turn a rendered
// task report into an HR self-feedback draft.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/reginabally/task-tracker/internal/common"
	"github.com/reginabally/task-tracker/internal/model"
)

// Defaults match a local LM Studio instance, the setup the application was
// built against.
const (
	DefaultEndpoint = "http://localhost:1234/v1/chat/completions"
	DefaultModel    = "meta-llama-3.1-8b-instruct"

	defaultTimeout = 30 * time.Second
)

// Client talks to an OpenAI-compatible chat-completion endpoint.
type Client struct {
	httpClient *http.Client
	endpoint   string
	modelName  string
	apiKey     string
}

// NewClient creates a chat-completion client from persisted settings.
// Empty endpoint and model fall back to the LM Studio defaults.
func NewClient(cfg *model.AIConfig) *Client {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	modelName := cfg.Model
	if modelName == "" {
		modelName = DefaultModel
	}

	return &Client{
		endpoint:  endpoint,
		modelName: modelName,
		apiKey:    cfg.APIKey,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
}

// Complete sends a single-message chat completion request and returns the
// assistant's reply.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	requestBody := map[string]any{
		"model": c.modelName,
		"messages": []map[string]string{
			{
				"role":    "user",
				"content": prompt,
			},
		},
	}

	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(string(jsonBody)))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", fmt.Errorf("%w: %s", common.ErrRateLimit, string(body))
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("chat completion error (status %d): %s", resp.StatusCode, string(body))
	}

	var response chatResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no completion choices returned")
	}

	return strings.TrimSpace(response.Choices[0].Message.Content), nil
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}
