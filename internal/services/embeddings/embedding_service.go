package embeddings

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/doctrina/internal/interfaces"
	"github.com/ternarybob/doctrina/internal/models"
)

// Service implements EmbeddingService interface
type Service struct {
	llmService interfaces.LLMService
	logger     arbor.ILogger

	mu        sync.Mutex
	dimension int // learned from the first embedding when not configured
}

// NewService creates a new embedding service. A dimension of 0 means the
// dimension is learned from the first generated vector.
func NewService(llmService interfaces.LLMService, dimension int, logger arbor.ILogger) interfaces.EmbeddingService {
	return &Service{
		llmService: llmService,
		dimension:  dimension,
		logger:     logger,
	}
}

// GenerateEmbedding creates a vector embedding for text
func (s *Service) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}

	start := time.Now()
	embedding, err := s.llmService.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}

	if len(embedding) == 0 {
		return nil, fmt.Errorf("LLM service returned empty embedding")
	}

	if err := s.checkDimension(len(embedding)); err != nil {
		return nil, err
	}

	s.logger.Debug().
		Int("embedding_dim", len(embedding)).
		Dur("duration", time.Since(start)).
		Msg("Generated embedding")

	return embedding, nil
}

// EmbedChunks generates embeddings for a batch of chunks, preserving order
func (s *Service) EmbedChunks(ctx context.Context, chunks []models.Chunk) ([][]float32, error) {
	vectors := make([][]float32, 0, len(chunks))
	for i := range chunks {
		embedding, err := s.GenerateEmbedding(ctx, chunks[i].Content)
		if err != nil {
			s.logger.Error().
				Err(err).
				Str("chunk_id", chunks[i].ID).
				Int("index", i).
				Msg("Failed to embed chunk")
			return nil, fmt.Errorf("failed to embed chunk %d of %d: %w", i+1, len(chunks), err)
		}
		vectors = append(vectors, embedding)
	}

	return vectors, nil
}

// GenerateQueryEmbedding generates embedding for a search query
func (s *Service) GenerateQueryEmbedding(ctx context.Context, query string) ([]float32, error) {
	// Queries use the same embedding space as documents
	return s.GenerateEmbedding(ctx, query)
}

// checkDimension pins the vector dimension on first use and rejects
// mismatches afterwards, which would corrupt similarity scores
func (s *Service) checkDimension(got int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dimension == 0 {
		s.dimension = got
		return nil
	}
	if got != s.dimension {
		return fmt.Errorf("embedding dimension mismatch: expected %d, got %d", s.dimension, got)
	}
	return nil
}

// ModelName returns the model mode backing embeddings
func (s *Service) ModelName() string {
	return string(s.llmService.GetMode())
}

// Dimension returns the embedding dimension (0 until first embedding)
func (s *Service) Dimension() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dimension
}

// IsAvailable checks if the embedding service is available
func (s *Service) IsAvailable(ctx context.Context) bool {
	if s.llmService == nil {
		return false
	}

	if err := s.llmService.HealthCheck(ctx); err != nil {
		s.logger.Debug().Err(err).Msg("LLM service not available")
		return false
	}

	return true
}
