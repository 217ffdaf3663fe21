package interfaces

import (
	"context"
)

// Source is a retrieved chunk cited in a chat response
type Source struct {
	Content  string                 `json:"content"`
	Metadata map[string]interface{} `json:"metadata"`
}

// AnswerRequest carries one user question against a folder
type AnswerRequest struct {
	FolderID  string
	Message   string
	SessionID string // empty answers statelessly, without persisting history
}

// AnswerResponse is the generated answer plus the chunks that grounded it
type AnswerResponse struct {
	Response  string   `json:"response"`
	Sources   []Source `json:"sources"`
	SessionID string   `json:"sessionId,omitempty"`
}

// ChatService answers questions grounded in a folder's documents and
// maintains per-session conversation history
type ChatService interface {
	// Answer retrieves context and generates a completion. When a session
	// ID is supplied both turns are persisted to its history.
	Answer(ctx context.Context, req *AnswerRequest) (*AnswerResponse, error)

	// DeleteSession removes a session's history. Unknown IDs are not an error.
	DeleteSession(ctx context.Context, sessionID string) error

	// HealthCheck verifies the chat pipeline is operational
	HealthCheck(ctx context.Context) error
}
