// Package perception owns the remote generation clients and the response
// parsing used by the LLM-backed agents. Text generation goes to an
// OpenAI-compatible endpoint (Groq), vision generation goes to Gemini.
package perception

import (
	"context"
	"fmt"
)

// TextGenerator is the contract for text-only model calls.
type TextGenerator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// VisionGenerator is the contract for image+text model calls.
type VisionGenerator interface {
	GenerateVision(ctx context.Context, systemPrompt, userPrompt string, image []byte, mimeType string) (string, error)
}

// GenerationError wraps a remote model failure (network, auth, rate limit,
// malformed request). Callers isolate it at stage granularity and substitute
// defaults; it never propagates past the owning agent.
type GenerationError struct {
	Provider string
	Err      error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s generation failed: %v", e.Provider, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// ParseError means the model returned text that could not be recovered as
// JSON even after all repair strategies. Treated identically to
// GenerationError by the owning stage.
type ParseError struct {
	Response string
	Err      error
}

func (e *ParseError) Error() string {
	snippet := e.Response
	if len(snippet) > 200 {
		snippet = snippet[:200]
	}
	return fmt.Sprintf("unrecoverable JSON in model response: %v (response: %q)", e.Err, snippet)
}

func (e *ParseError) Unwrap() error { return e.Err }
