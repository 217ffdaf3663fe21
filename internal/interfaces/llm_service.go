package interfaces

import (
	"context"
)

// LLMMode represents the operational mode of the LLM service
type LLMMode string

const (
	// LLMModeCloud indicates the service uses cloud-based LLM APIs
	LLMModeCloud LLMMode = "cloud"

	// LLMModeOffline indicates the service uses a local OpenAI-compatible server
	LLMModeOffline LLMMode = "offline"
)

// Message represents a single message in a chat conversation
type Message struct {
	// Role identifies the message sender: "user", "assistant", or "system"
	Role string

	// Content contains the text content of the message
	Content string
}

// LLMService defines the interface for language model operations including
// embeddings generation and chat completions. Chat may be served by a cloud
// provider (Anthropic, Gemini) or a local server; embeddings always come
// from the local server.
type LLMService interface {
	// Embed generates an embedding vector for the given text
	Embed(ctx context.Context, text string) ([]float32, error)

	// Chat generates a completion for the conversation. The messages slice
	// carries the full context in chronological order, system prompt first.
	Chat(ctx context.Context, messages []Message) (string, error)

	// HealthCheck verifies the service can handle requests
	HealthCheck(ctx context.Context) error

	// GetMode reports whether chat completions go to a cloud API or a
	// local server
	GetMode() LLMMode

	// Close releases resources and performs cleanup operations
	Close() error
}
