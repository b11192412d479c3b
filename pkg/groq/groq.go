// Package groq implements a minimal client for Groq's chat completions
// endpoint. Groq speaks the OpenAI chat completions wire format, so the
// request and response types mirror that protocol.
//
// One Client wraps one API key. Key rotation across quota-limited keys is
// the dispatcher's concern, not the client's.
package groq

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the OpenAI-compatible Groq API root.
	DefaultBaseURL = "https://api.groq.com/openai/v1"

	// DefaultModel is the generation model used for benchmark runs.
	DefaultModel = "meta-llama/llama-4-scout-17b-16e-instruct"

	// DefaultMaxTokens caps the completion length per response.
	DefaultMaxTokens = 512

	completionsPath = "/chat/completions"
)

// ErrNoChoices indicates the endpoint returned a completion with no choices.
var ErrNoChoices = errors.New("completion returned no choices")

// Config holds configuration for a Client.
type Config struct {
	// APIKey is the bearer token for the endpoint. Required.
	APIKey string

	// BaseURL is the API root. Defaults to DefaultBaseURL if empty.
	BaseURL string

	// Model is the generation model name. Defaults to DefaultModel if empty.
	Model string

	// MaxTokens caps completion length. Defaults to DefaultMaxTokens if zero.
	MaxTokens int

	// HTTPClient overrides the default client (120s timeout).
	HTTPClient *http.Client
}

// Client wraps Groq's chat completions API for a single API key.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	maxTokens  int
	httpClient *http.Client
}

// APIError is a non-2xx response from the endpoint. The body is carried in
// the error text so callers can match provider-specific failure markers
// (quota and rate-limit codes) without depending on this package's types.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("groq: status %d: %s", e.StatusCode, e.Body)
}

// New creates a Client. The API key is required; everything else defaults.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("groq: API key is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = DefaultMaxTokens
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			// LLM completions can be slow
			Timeout: 120 * time.Second,
		}
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		maxTokens:  maxTokens,
		httpClient: httpClient,
	}, nil
}

// Complete sends a single-user-message chat completion and returns the
// trimmed text of the first choice.
func (c *Client) Complete(ctx context.Context, prompt string, temperature float64) (string, error) {
	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
		Temperature: &temperature,
		MaxTokens:   &c.maxTokens,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling completion request: %w", err)
	}

	url := c.baseURL + completionsPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("creating completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("sending completion request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return "", &APIError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	var completion chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return "", fmt.Errorf("decoding completion response: %w", err)
	}

	if len(completion.Choices) == 0 {
		return "", ErrNoChoices
	}

	return strings.TrimSpace(completion.Choices[0].Message.Content), nil
}
