package chunker

import (
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/doctrina/internal/common"
	"github.com/ternarybob/doctrina/internal/interfaces"
	"github.com/ternarybob/doctrina/internal/models"
)

const (
	// DefaultChunkSize is the target chunk size in characters
	DefaultChunkSize = 1000
	// DefaultChunkOverlap is the overlap carried between consecutive chunks
	DefaultChunkOverlap = 200
)

// separators is the split ladder, coarsest first. The empty string is the
// terminal hard cut for text with no natural break points.
var separators = []string{"\n\n", "\n", " ", ""}

// Splitter breaks extracted segments into overlapping chunks. It prefers
// paragraph breaks, then line breaks, then spaces, and only cuts
// mid-word when a single token exceeds the chunk size.
type Splitter struct {
	chunkSize int
	overlap   int
	logger    arbor.ILogger
}

// NewSplitter creates a splitter from configuration
func NewSplitter(cfg *common.ChunkingConfig, logger arbor.ILogger) interfaces.ChunkService {
	size := cfg.Size
	if size <= 0 {
		size = DefaultChunkSize
	}
	overlap := cfg.Overlap
	if overlap < 0 || overlap >= size {
		overlap = DefaultChunkOverlap
	}

	return &Splitter{
		chunkSize: size,
		overlap:   overlap,
		logger:    logger,
	}
}

// Chunk splits segments into chunks, preserving segment metadata and
// document order. Empty pieces are dropped.
func (s *Splitter) Chunk(segments []models.Segment) []models.Chunk {
	var chunks []models.Chunk

	for _, segment := range segments {
		pieces := s.splitText(segment.Text, separators)
		for _, piece := range pieces {
			trimmed := strings.TrimSpace(piece)
			if trimmed == "" {
				continue
			}

			metadata := make(map[string]interface{}, len(segment.Metadata)+1)
			for k, v := range segment.Metadata {
				metadata[k] = v
			}
			metadata["chunk"] = len(chunks)

			chunks = append(chunks, models.Chunk{
				ID:       common.NewDocumentID(),
				Content:  trimmed,
				Metadata: metadata,
			})
		}
	}

	if s.logger != nil {
		s.logger.Debug().
			Int("segments", len(segments)).
			Int("chunks", len(chunks)).
			Msg("Split segments into chunks")
	}

	return chunks
}

// splitText recursively splits text using the first separator present,
// then merges the resulting pieces back into chunks of at most chunkSize
// with overlap carried between them.
func (s *Splitter) splitText(text string, seps []string) []string {
	if len(text) <= s.chunkSize {
		return []string{text}
	}

	// Pick the first separator that appears in the text
	sep := ""
	var remaining []string
	for i, candidate := range seps {
		if candidate == "" {
			sep = ""
			remaining = nil
			break
		}
		if strings.Contains(text, candidate) {
			sep = candidate
			remaining = seps[i+1:]
			break
		}
	}

	if sep == "" {
		return s.hardCut(text)
	}

	splits := strings.Split(text, sep)

	var final []string
	var good []string
	for _, piece := range splits {
		if len(piece) < s.chunkSize {
			good = append(good, piece)
			continue
		}

		// Flush accumulated small pieces, then recurse into the long one
		if len(good) > 0 {
			final = append(final, s.merge(good, sep)...)
			good = nil
		}
		final = append(final, s.splitText(piece, remaining)...)
	}
	if len(good) > 0 {
		final = append(final, s.merge(good, sep)...)
	}

	return final
}

// merge joins small pieces into chunks of at most chunkSize, carrying the
// trailing pieces forward so consecutive chunks overlap
func (s *Splitter) merge(pieces []string, sep string) []string {
	var out []string
	var window []string
	windowLen := 0

	joinedLen := func(extra int) int {
		n := windowLen + extra
		if len(window) > 0 {
			n += len(sep) * len(window)
		}
		return n
	}

	for _, piece := range pieces {
		if joinedLen(len(piece)) > s.chunkSize && len(window) > 0 {
			out = append(out, strings.Join(window, sep))

			// Drop from the front until within the overlap budget
			for windowLen > s.overlap || (joinedLen(len(piece)) > s.chunkSize && windowLen > 0) {
				windowLen -= len(window[0])
				window = window[1:]
			}
		}
		window = append(window, piece)
		windowLen += len(piece)
	}

	if len(window) > 0 {
		out = append(out, strings.Join(window, sep))
	}

	return out
}

// hardCut slices text with no break points into fixed windows stepping
// chunkSize-overlap characters at a time
func (s *Splitter) hardCut(text string) []string {
	step := s.chunkSize - s.overlap
	if step <= 0 {
		step = s.chunkSize
	}

	var out []string
	for start := 0; start < len(text); start += step {
		end := start + s.chunkSize
		if end > len(text) {
			end = len(text)
		}
		out = append(out, text[start:end])
		if end == len(text) {
			break
		}
	}

	return out
}
