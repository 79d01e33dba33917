package perception

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// GroqClient implements TextGenerator against Groq's OpenAI-compatible
// chat completions endpoint.
type GroqClient struct {
	apiKey      string
	baseURL     string
	model       string
	httpClient  *http.Client
	mu          sync.Mutex
	lastRequest time.Time
}

// GroqConfig holds configuration for the Groq client.
type GroqConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// DefaultGroqConfig returns sensible defaults.
func DefaultGroqConfig(apiKey string) GroqConfig {
	return GroqConfig{
		APIKey:  apiKey,
		BaseURL: "https://api.groq.com/openai/v1",
		Model:   "openai/gpt-oss-120b",
		Timeout: 60 * time.Second,
	}
}

// NewGroqClient creates a new Groq client with default config.
func NewGroqClient(apiKey string) *GroqClient {
	return NewGroqClientWithConfig(DefaultGroqConfig(apiKey))
}

// NewGroqClientWithConfig creates a new Groq client with custom config.
func NewGroqClientWithConfig(config GroqConfig) *GroqClient {
	return &GroqClient{
		apiKey:  config.APIKey,
		baseURL: config.BaseURL,
		model:   config.Model,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

type groqRequest struct {
	Model       string        `json:"model"`
	Messages    []groqMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

type groqMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type groqResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Generate sends a system+user prompt pair and returns the completion text.
func (c *GroqClient) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if c.apiKey == "" {
		return "", &GenerationError{Provider: "groq", Err: fmt.Errorf("API key not configured")}
	}

	// At least 500ms between requests to stay under per-minute limits.
	c.mu.Lock()
	if elapsed := time.Since(c.lastRequest); elapsed < 500*time.Millisecond {
		time.Sleep(500*time.Millisecond - elapsed)
	}
	c.lastRequest = time.Now()
	c.mu.Unlock()

	messages := make([]groqMessage, 0, 2)
	if systemPrompt != "" {
		messages = append(messages, groqMessage{Role: "system", Content: systemPrompt})
	}
	messages = append(messages, groqMessage{Role: "user", Content: userPrompt})

	body, err := json.Marshal(groqRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   2048,
		Temperature: 0.3,
	})
	if err != nil {
		return "", &GenerationError{Provider: "groq", Err: fmt.Errorf("marshal request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", &GenerationError{Provider: "groq", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &GenerationError{Provider: "groq", Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &GenerationError{Provider: "groq", Err: fmt.Errorf("read response: %w", err)}
	}

	var parsed groqResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", &GenerationError{Provider: "groq", Err: fmt.Errorf("decode response (HTTP %d): %w", resp.StatusCode, err)}
	}
	if parsed.Error != nil {
		return "", &GenerationError{Provider: "groq", Err: fmt.Errorf("API error (%s): %s", parsed.Error.Type, parsed.Error.Message)}
	}
	if resp.StatusCode != http.StatusOK {
		return "", &GenerationError{Provider: "groq", Err: fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))}
	}
	if len(parsed.Choices) == 0 {
		return "", &GenerationError{Provider: "groq", Err: fmt.Errorf("no choices in response")}
	}

	return parsed.Choices[0].Message.Content, nil
}
