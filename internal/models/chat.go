package models

import (
	"time"
)

const (
	// RoleUser marks a turn authored by the person asking questions
	RoleUser = "user"
	// RoleAssistant marks a turn authored by the model
	RoleAssistant = "assistant"
)

// ChatTurn is a single message within a session
type ChatTurn struct {
	Role      string    `json:"role"` // "user" or "assistant"
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// ChatSession holds the persisted history for one conversation.
// Sessions are keyed by ID and scoped to a single folder.
type ChatSession struct {
	ID        string     `json:"id" badgerhold:"key"` // chat_{uuid}
	FolderID  string     `json:"folder_id"`
	Turns     []ChatTurn `json:"turns"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Append adds a turn and bumps the update timestamp
func (s *ChatSession) Append(role, content string) {
	now := time.Now()
	s.Turns = append(s.Turns, ChatTurn{Role: role, Content: content, CreatedAt: now})
	s.UpdatedAt = now
}
