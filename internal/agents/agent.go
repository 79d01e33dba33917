package agents

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"mealmind/internal/perception"
)

// llmAgent is the shared core of the four LLM-backed agents: a name for
// logging and tracing, a fixed system prompt, and the generation clients.
type llmAgent struct {
	name   string
	system string
	text   perception.TextGenerator
	vision perception.VisionGenerator
	logger *zap.Logger
}

func newLLMAgent(name, system string, text perception.TextGenerator, vision perception.VisionGenerator, logger *zap.Logger) llmAgent {
	if logger == nil {
		logger = zap.NewNop()
	}
	return llmAgent{
		name:   name,
		system: system,
		text:   text,
		vision: vision,
		logger: logger.With(zap.String("agent", name)),
	}
}

// generateText runs a text-only completion with the agent's system prompt.
func (a *llmAgent) generateText(ctx context.Context, prompt string) (string, error) {
	if a.text == nil {
		return "", fmt.Errorf("%s: no text generator configured", a.name)
	}
	response, err := a.text.Generate(ctx, a.system, prompt)
	if err != nil {
		return "", fmt.Errorf("%s: %w", a.name, err)
	}
	return response, nil
}

// generateVision runs an image+text completion with the agent's system prompt.
func (a *llmAgent) generateVision(ctx context.Context, prompt string, image []byte, mimeType string) (string, error) {
	if a.vision == nil {
		return "", fmt.Errorf("%s: no vision generator configured", a.name)
	}
	response, err := a.vision.GenerateVision(ctx, a.system, prompt, image, mimeType)
	if err != nil {
		return "", fmt.Errorf("%s: %w", a.name, err)
	}
	return response, nil
}

// parseJSON decodes a model response through the repair parser.
func (a *llmAgent) parseJSON(raw string, v any) error {
	if err := perception.ParseJSONResponse(raw, v); err != nil {
		return fmt.Errorf("%s: %w", a.name, err)
	}
	return nil
}
