package interfaces

import "context"

// ChatRequest is an incoming chat message.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse is the generated answer plus provenance.
type ChatResponse struct {
	Response string `json:"response"`
	Provider string `json:"provider,omitempty"`
}

// ChatService answers natural-language questions over the indexed corpus.
type ChatService interface {
	Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error)
	HealthCheck(ctx context.Context) error
}
