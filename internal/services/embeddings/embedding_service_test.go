package embeddings

import (
	"context"
	"fmt"
	"testing"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/doctrina/internal/interfaces"
	"github.com/ternarybob/doctrina/internal/models"
)

// mockLLMService implements interfaces.LLMService with function fields
type mockLLMService struct {
	embedFunc func(ctx context.Context, text string) ([]float32, error)
}

func (m *mockLLMService) Embed(ctx context.Context, text string) ([]float32, error) {
	return m.embedFunc(ctx, text)
}

func (m *mockLLMService) Chat(ctx context.Context, messages []interfaces.Message) (string, error) {
	return "", nil
}

func (m *mockLLMService) HealthCheck(ctx context.Context) error { return nil }
func (m *mockLLMService) GetMode() interfaces.LLMMode           { return interfaces.LLMModeOffline }
func (m *mockLLMService) Close() error                          { return nil }

func TestGenerateEmbedding(t *testing.T) {
	mock := &mockLLMService{
		embedFunc: func(ctx context.Context, text string) ([]float32, error) {
			return []float32{0.1, 0.2, 0.3}, nil
		},
	}
	service := NewService(mock, 0, arbor.NewLogger())

	embedding, err := service.GenerateEmbedding(context.Background(), "cell division")
	if err != nil {
		t.Fatalf("GenerateEmbedding failed: %v", err)
	}
	if len(embedding) != 3 {
		t.Errorf("Expected 3 dims, got %d", len(embedding))
	}
	if service.Dimension() != 3 {
		t.Errorf("Expected learned dimension 3, got %d", service.Dimension())
	}
}

func TestGenerateEmbeddingEmptyText(t *testing.T) {
	service := NewService(&mockLLMService{}, 0, arbor.NewLogger())

	if _, err := service.GenerateEmbedding(context.Background(), ""); err == nil {
		t.Error("Expected error for empty text")
	}
}

func TestDimensionMismatchRejected(t *testing.T) {
	dims := []int{4, 4, 8}
	call := 0
	mock := &mockLLMService{
		embedFunc: func(ctx context.Context, text string) ([]float32, error) {
			v := make([]float32, dims[call])
			call++
			return v, nil
		},
	}
	service := NewService(mock, 0, arbor.NewLogger())

	ctx := context.Background()
	if _, err := service.GenerateEmbedding(ctx, "first"); err != nil {
		t.Fatal(err)
	}
	if _, err := service.GenerateEmbedding(ctx, "second"); err != nil {
		t.Fatal(err)
	}
	if _, err := service.GenerateEmbedding(ctx, "third"); err == nil {
		t.Error("Expected dimension mismatch error")
	}
}

func TestEmbedChunksPreservesOrder(t *testing.T) {
	mock := &mockLLMService{
		embedFunc: func(ctx context.Context, text string) ([]float32, error) {
			// Encode text length so order is observable
			return []float32{float32(len(text))}, nil
		},
	}
	service := NewService(mock, 0, arbor.NewLogger())

	chunks := []models.Chunk{
		{ID: "a", Content: "x"},
		{ID: "b", Content: "xx"},
		{ID: "c", Content: "xxx"},
	}

	vectors, err := service.EmbedChunks(context.Background(), chunks)
	if err != nil {
		t.Fatalf("EmbedChunks failed: %v", err)
	}
	if len(vectors) != 3 {
		t.Fatalf("Expected 3 vectors, got %d", len(vectors))
	}
	for i, want := range []float32{1, 2, 3} {
		if vectors[i][0] != want {
			t.Errorf("Vector %d out of order: got %f want %f", i, vectors[i][0], want)
		}
	}
}

func TestEmbedChunksPropagatesError(t *testing.T) {
	mock := &mockLLMService{
		embedFunc: func(ctx context.Context, text string) ([]float32, error) {
			if text == "bad" {
				return nil, fmt.Errorf("server exploded")
			}
			return []float32{1}, nil
		},
	}
	service := NewService(mock, 0, arbor.NewLogger())

	chunks := []models.Chunk{
		{ID: "a", Content: "good"},
		{ID: "b", Content: "bad"},
	}

	if _, err := service.EmbedChunks(context.Background(), chunks); err == nil {
		t.Error("Expected error to propagate from failed chunk")
	}
}
