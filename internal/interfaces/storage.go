package interfaces

import (
	"context"
	"time"

	"github.com/ternarybob/doctrina/internal/models"
)

// ChatStorage - interface for chat session persistence
type ChatStorage interface {
	// SaveSession inserts or updates a session
	SaveSession(ctx context.Context, session *models.ChatSession) error

	// GetSession retrieves a session by ID, returns ErrSessionNotFound if absent
	GetSession(ctx context.Context, id string) (*models.ChatSession, error)

	// DeleteSession removes a session. Unknown IDs are not an error.
	DeleteSession(ctx context.Context, id string) error

	// DeleteIdleSince removes sessions not updated since the cutoff,
	// returning how many were removed
	DeleteIdleSince(ctx context.Context, cutoff time.Time) (int, error)

	// CountSessions returns the number of stored sessions
	CountSessions(ctx context.Context) (int, error)
}

// StorageManager - composite interface for all storage operations
type StorageManager interface {
	ChatStorage() ChatStorage

	// RunGC triggers value-log garbage collection on the underlying store
	RunGC() error

	DB() interface{}
	Close() error
}
