package perception

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// GeminiVisionClient implements VisionGenerator using the Google GenAI SDK.
type GeminiVisionClient struct {
	client *genai.Client
	model  string
}

// GeminiConfig holds configuration for the Gemini vision client.
type GeminiConfig struct {
	APIKey string
	Model  string
}

// DefaultGeminiConfig returns sensible defaults.
func DefaultGeminiConfig(apiKey string) GeminiConfig {
	return GeminiConfig{
		APIKey: apiKey,
		Model:  "gemini-2.0-flash",
	}
}

// NewGeminiVisionClient creates a Gemini vision client.
func NewGeminiVisionClient(ctx context.Context, config GeminiConfig) (*GeminiVisionClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	model := config.Model
	if model == "" {
		model = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: config.APIKey})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &GeminiVisionClient{client: client, model: model}, nil
}

// GenerateVision sends the image plus prompts to the vision model and
// returns the raw text of the response.
func (c *GeminiVisionClient) GenerateVision(ctx context.Context, systemPrompt, userPrompt string, image []byte, mimeType string) (string, error) {
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	parts := []*genai.Part{
		genai.NewPartFromBytes(image, mimeType),
		genai.NewPartFromText(userPrompt),
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](0.3),
		MaxOutputTokens: 2048,
	}
	if systemPrompt != "" {
		cfg.SystemInstruction = genai.NewContentFromText(systemPrompt, genai.RoleUser)
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, cfg)
	if err != nil {
		return "", &GenerationError{Provider: "gemini", Err: err}
	}

	text := resp.Text()
	if text == "" {
		return "", &GenerationError{Provider: "gemini", Err: fmt.Errorf("empty response")}
	}
	return text, nil
}
