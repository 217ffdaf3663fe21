package interfaces

import (
	"context"

	"github.com/ternarybob/doctrina/internal/models"
)

// SearchResult is a scored chunk returned from a similarity search
type SearchResult struct {
	Chunk models.Chunk `json:"chunk"`
	Score float32      `json:"score"` // cosine similarity, higher is closer
}

// IndexService manages per-folder vector indexes. Each folder owns an
// isolated index persisted under the folder's data directory; searches
// never cross folder boundaries.
type IndexService interface {
	// AddChunks embeds and appends chunks to the folder's index, creating
	// the index if it does not exist yet. The index is persisted before
	// returning.
	AddChunks(ctx context.Context, folderID string, chunks []models.Chunk) error

	// Rebuild replaces the folder's index with one built from the given
	// chunks. An empty slice removes the index entirely.
	Rebuild(ctx context.Context, folderID string, chunks []models.Chunk) error

	// Search returns the top-k most similar chunks for the query.
	// Returns ErrNoIndex when the folder has no index.
	Search(ctx context.Context, folderID string, query string, topK int) ([]SearchResult, error)

	// HasIndex reports whether a folder has a persisted index
	HasIndex(folderID string) bool

	// Remove drops the folder's index from memory and disk
	Remove(folderID string) error

	// Prewarm loads persisted indexes from disk into memory
	Prewarm(ctx context.Context) error
}
