package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/doctrina/internal/common"
	"github.com/ternarybob/doctrina/internal/interfaces"
	"github.com/ternarybob/doctrina/internal/models"
)

// Service answers questions grounded in a folder's indexed documents.
// Each question runs retrieve -> prompt -> complete -> persist; history
// for the session is replayed to the model on every turn.
type Service struct {
	llmService  interfaces.LLMService
	index       interfaces.IndexService
	chatStorage interfaces.ChatStorage
	logger      arbor.ILogger

	topK         int
	requireIndex bool

	// sessionLocks serializes concurrent requests against the same session
	// so history turns never interleave
	mu           sync.Mutex
	sessionLocks map[string]*sync.Mutex
}

func NewService(
	llmService interfaces.LLMService,
	index interfaces.IndexService,
	chatStorage interfaces.ChatStorage,
	cfg *common.Config,
	logger arbor.ILogger,
) *Service {
	return &Service{
		llmService:   llmService,
		index:        index,
		chatStorage:  chatStorage,
		logger:       logger,
		topK:         cfg.Retrieval.TopK,
		requireIndex: cfg.Chat.RequireIndex,
		sessionLocks: make(map[string]*sync.Mutex),
	}
}

var _ interfaces.ChatService = (*Service)(nil)

func (s *Service) lockSession(sessionID string) func() {
	s.mu.Lock()
	lock, ok := s.sessionLocks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		s.sessionLocks[sessionID] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// Answer implements the ChatService interface
func (s *Service) Answer(ctx context.Context, req *interfaces.AnswerRequest) (*interfaces.AnswerResponse, error) {
	if strings.TrimSpace(req.Message) == "" {
		return nil, fmt.Errorf("message cannot be empty")
	}
	if req.FolderID == "" {
		return nil, fmt.Errorf("folder ID cannot be empty")
	}

	sessionID := req.SessionID
	session := &models.ChatSession{ID: sessionID, FolderID: req.FolderID}
	if sessionID != "" {
		unlock := s.lockSession(sessionID)
		defer unlock()

		loaded, err := s.loadOrCreateSession(ctx, sessionID, req.FolderID)
		if err != nil {
			return nil, err
		}
		session = loaded
	}

	results, err := s.retrieve(ctx, req.FolderID, req.Message)
	if err != nil {
		return nil, err
	}

	messages := s.buildMessages(session, req.FolderID, results, req.Message)

	s.logger.Debug().
		Str("session_id", sessionID).
		Str("folder_id", req.FolderID).
		Int("sources", len(results)).
		Int("history_turns", len(session.Turns)).
		Msg("Generating chat completion")

	answer, err := s.llmService.Chat(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("failed to generate completion: %w", err)
	}

	session.Append(models.RoleUser, req.Message)
	session.Append(models.RoleAssistant, answer)
	if sessionID != "" {
		if err := s.chatStorage.SaveSession(ctx, session); err != nil {
			return nil, fmt.Errorf("failed to persist chat history for session %s: %w", sessionID, err)
		}
	}

	sources := make([]interfaces.Source, len(results))
	for i, result := range results {
		sources[i] = interfaces.Source{
			Content:  result.Chunk.Content,
			Metadata: result.Chunk.Metadata,
		}
	}

	return &interfaces.AnswerResponse{
		Response:  answer,
		Sources:   sources,
		SessionID: sessionID,
	}, nil
}

func (s *Service) loadOrCreateSession(ctx context.Context, sessionID, folderID string) (*models.ChatSession, error) {
	session, err := s.chatStorage.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, interfaces.ErrSessionNotFound) {
			return &models.ChatSession{ID: sessionID, FolderID: folderID}, nil
		}
		return nil, fmt.Errorf("failed to load session %s: %w", sessionID, err)
	}
	return session, nil
}

// retrieve runs the similarity search. A folder without an index is only an
// error when require_index is set; otherwise the question goes to the model
// without document context.
func (s *Service) retrieve(ctx context.Context, folderID, message string) ([]interfaces.SearchResult, error) {
	results, err := s.index.Search(ctx, folderID, message, s.topK)
	if err != nil {
		if errors.Is(err, interfaces.ErrNoIndex) {
			if s.requireIndex {
				return nil, err
			}
			s.logger.Debug().Str("folder_id", folderID).Msg("No index for folder, answering without context")
			return nil, nil
		}
		return nil, fmt.Errorf("failed to search folder %s: %w", folderID, err)
	}
	return results, nil
}

// buildMessages assembles the full conversation: persona system message,
// retrieved context as a second system message when present, prior turns,
// then the current question.
func (s *Service) buildMessages(session *models.ChatSession, folderID string, results []interfaces.SearchResult, question string) []interfaces.Message {
	messages := make([]interfaces.Message, 0, len(session.Turns)+3)
	messages = append(messages, interfaces.Message{Role: "system", Content: systemPrompt})

	if contextBlock := buildContextBlock(folderID, results); contextBlock != "" {
		messages = append(messages, interfaces.Message{Role: "system", Content: contextBlock})
	}

	for _, turn := range session.Turns {
		messages = append(messages, interfaces.Message{Role: turn.Role, Content: turn.Content})
	}

	messages = append(messages, interfaces.Message{Role: models.RoleUser, Content: question})
	return messages
}

// DeleteSession implements the ChatService interface
func (s *Service) DeleteSession(ctx context.Context, sessionID string) error {
	if err := s.chatStorage.DeleteSession(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session %s: %w", sessionID, err)
	}

	s.mu.Lock()
	delete(s.sessionLocks, sessionID)
	s.mu.Unlock()

	s.logger.Info().Str("session_id", sessionID).Msg("Chat session deleted")
	return nil
}

// HealthCheck implements the ChatService interface
func (s *Service) HealthCheck(ctx context.Context) error {
	return s.llmService.HealthCheck(ctx)
}
