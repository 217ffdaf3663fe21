package llm

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/doctrina/internal/common"
	"github.com/ternarybob/doctrina/internal/interfaces"
)

// routedService fans Embed and Chat out to the right provider. Embeddings
// always go to the local server; chat goes to the configured provider,
// which may be the same local server.
type routedService struct {
	chat   interfaces.LLMService
	local  *LocalLLMService
	logger arbor.ILogger
}

// NewLLMService creates the LLM service from configuration. The chat
// provider is selected by llm.default_provider; embeddings always use the
// local OpenAI-compatible server.
func NewLLMService(cfg *common.Config, logger arbor.ILogger) (interfaces.LLMService, error) {
	local, err := NewLocalLLMService(&cfg.Local, &cfg.Chat, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create local LLM service: %w", err)
	}

	var chat interfaces.LLMService
	switch cfg.LLM.DefaultProvider {
	case common.LLMProviderLocal, "":
		chat = local
	case common.LLMProviderClaude:
		chat, err = NewClaudeService(&cfg.Claude, logger)
		if err != nil {
			return nil, err
		}
	case common.LLMProviderGemini:
		chat, err = NewGeminiService(&cfg.Gemini, logger)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s", cfg.LLM.DefaultProvider)
	}

	logger.Info().
		Str("chat_provider", string(cfg.LLM.DefaultProvider)).
		Str("mode", string(chat.GetMode())).
		Msg("LLM service created")

	return &routedService{
		chat:   chat,
		local:  local,
		logger: logger,
	}, nil
}

// NewMockLLMService creates a fully mocked LLM service for tests
func NewMockLLMService(logger arbor.ILogger) interfaces.LLMService {
	local := NewMockLocalLLMService(logger)
	return &routedService{
		chat:   local,
		local:  local,
		logger: logger,
	}
}

func (s *routedService) Embed(ctx context.Context, text string) ([]float32, error) {
	return s.local.Embed(ctx, text)
}

func (s *routedService) Chat(ctx context.Context, messages []interfaces.Message) (string, error) {
	return s.chat.Chat(ctx, messages)
}

// HealthCheck verifies both the embedding server and the chat provider
func (s *routedService) HealthCheck(ctx context.Context) error {
	if err := s.local.HealthCheck(ctx); err != nil {
		return fmt.Errorf("embedding server unhealthy: %w", err)
	}
	if s.chat != interfaces.LLMService(s.local) {
		if err := s.chat.HealthCheck(ctx); err != nil {
			return fmt.Errorf("chat provider unhealthy: %w", err)
		}
	}
	return nil
}

func (s *routedService) GetMode() interfaces.LLMMode {
	return s.chat.GetMode()
}

func (s *routedService) Close() error {
	var firstErr error
	if s.chat != interfaces.LLMService(s.local) {
		if err := s.chat.Close(); err != nil {
			firstErr = err
		}
	}
	if err := s.local.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
