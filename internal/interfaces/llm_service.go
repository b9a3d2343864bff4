package interfaces

import (
	"context"
)

// CompletionRequest is a provider-agnostic text completion request.
type CompletionRequest struct {
	// System is the optional system prompt
	System string

	// Prompt is the user prompt
	Prompt string

	// MaxTokens caps the response length; 0 uses the provider default
	MaxTokens int

	// Temperature controls sampling; 0 uses the provider default
	Temperature float32
}

// LLMService defines the interface for language model text completion.
// The service is stateless; failures (network, quota) surface as errors
// and callers degrade gracefully rather than crashing.
type LLMService interface {
	// Complete sends the assembled prompt to the model and returns its
	// trimmed text output.
	Complete(ctx context.Context, req *CompletionRequest) (string, error)

	// HealthCheck verifies the provider is reachable and configured.
	HealthCheck(ctx context.Context) error

	// Provider returns the provider identifier ("claude", "gemini").
	Provider() string

	// Close releases resources held by the provider client.
	Close() error
}
