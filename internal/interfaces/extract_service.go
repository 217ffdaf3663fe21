package interfaces

import (
	"context"

	"github.com/ternarybob/doctrina/internal/models"
)

// ExtractService turns an uploaded file into plain-text segments.
// The filename's extension selects the extractor; ErrUnsupportedFormat
// is returned for extensions with no extractor.
type ExtractService interface {
	// Extract reads the file at path and returns its text segments
	Extract(ctx context.Context, path string, filename string) ([]models.Segment, error)

	// Supports reports whether the filename's extension has an extractor
	Supports(filename string) bool

	// SupportedExtensions lists handled extensions, lowercase with leading dot
	SupportedExtensions() []string
}

// ChunkService splits extracted segments into retrieval-sized chunks
type ChunkService interface {
	// Chunk splits segments into overlapping chunks, preserving segment
	// metadata and document order
	Chunk(segments []models.Segment) []models.Chunk
}
