package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/ternarybob/doctrina/internal/interfaces"
	"github.com/ternarybob/doctrina/internal/models"
)

// ChatStorage implements the ChatStorage interface for Badger
type ChatStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewChatStorage creates a new ChatStorage instance
func NewChatStorage(db *BadgerDB, logger arbor.ILogger) interfaces.ChatStorage {
	return &ChatStorage{
		db:     db,
		logger: logger,
	}
}

// SaveSession inserts or updates a session
func (s *ChatStorage) SaveSession(ctx context.Context, session *models.ChatSession) error {
	if session.ID == "" {
		return fmt.Errorf("session ID is required")
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}
	if session.UpdatedAt.IsZero() {
		session.UpdatedAt = session.CreatedAt
	}

	if err := s.db.Store().Upsert(session.ID, session); err != nil {
		return fmt.Errorf("failed to save chat session: %w", err)
	}

	return nil
}

// GetSession retrieves a session by ID
func (s *ChatStorage) GetSession(ctx context.Context, id string) (*models.ChatSession, error) {
	var session models.ChatSession
	err := s.db.Store().Get(id, &session)
	if err == badgerhold.ErrNotFound {
		return nil, interfaces.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get chat session: %w", err)
	}

	return &session, nil
}

// DeleteSession removes a session. Deleting an unknown ID is a no-op.
func (s *ChatStorage) DeleteSession(ctx context.Context, id string) error {
	err := s.db.Store().Delete(id, &models.ChatSession{})
	if err == badgerhold.ErrNotFound {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to delete chat session: %w", err)
	}

	s.logger.Debug().Str("session_id", id).Msg("Chat session deleted")
	return nil
}

// DeleteIdleSince removes sessions whose last activity is before the cutoff
func (s *ChatStorage) DeleteIdleSince(ctx context.Context, cutoff time.Time) (int, error) {
	var stale []models.ChatSession
	query := badgerhold.Where("UpdatedAt").Lt(cutoff)
	if err := s.db.Store().Find(&stale, query); err != nil {
		return 0, fmt.Errorf("failed to find idle chat sessions: %w", err)
	}

	deleted := 0
	for i := range stale {
		if err := s.db.Store().Delete(stale[i].ID, &models.ChatSession{}); err != nil && err != badgerhold.ErrNotFound {
			return deleted, fmt.Errorf("failed to delete idle chat session %s: %w", stale[i].ID, err)
		}
		deleted++
	}

	if deleted > 0 {
		s.logger.Info().Int("count", deleted).Msg("Removed idle chat sessions")
	}

	return deleted, nil
}

// CountSessions returns the number of stored sessions
func (s *ChatStorage) CountSessions(ctx context.Context) (int, error) {
	count, err := s.db.Store().Count(&models.ChatSession{}, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count chat sessions: %w", err)
	}
	return int(count), nil
}
