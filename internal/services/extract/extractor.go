package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/doctrina/internal/interfaces"
	"github.com/ternarybob/doctrina/internal/models"
)

// extractFunc reads a file and returns its text segments
type extractFunc func(ctx context.Context, path string, filename string) ([]models.Segment, error)

// Service implements the ExtractService interface. One extractor is
// registered per file extension; unknown extensions are rejected with
// ErrUnsupportedFormat before any file is read.
type Service struct {
	extractors map[string]extractFunc
	logger     arbor.ILogger
	tempDir    string
}

// NewService creates a new extraction service
func NewService(logger arbor.ILogger) *Service {
	tempDir := filepath.Join(os.TempDir(), "doctrina-extract")
	os.MkdirAll(tempDir, 0755)

	s := &Service{
		logger:  logger,
		tempDir: tempDir,
	}

	s.extractors = map[string]extractFunc{
		".txt":  s.extractText,
		".md":   s.extractMarkdown,
		".html": s.extractHTML,
		".htm":  s.extractHTML,
		".pdf":  s.extractPDF,
		".doc":  s.extractDOCX,
		".docx": s.extractDOCX,
		".eml":  s.extractEML,
	}

	return s
}

// Compile-time interface assertion
var _ interfaces.ExtractService = (*Service)(nil)

// Extract reads the file at path and returns its text segments
func (s *Service) Extract(ctx context.Context, path string, filename string) ([]models.Segment, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	fn, ok := s.extractors[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %s", interfaces.ErrUnsupportedFormat, ext)
	}

	segments, err := fn(ctx, path, filename)
	if err != nil {
		return nil, fmt.Errorf("failed to extract %s: %w", filename, err)
	}

	s.logger.Debug().
		Str("filename", filename).
		Int("segments", len(segments)).
		Msg("Extracted document text")

	return segments, nil
}

// Supports reports whether the filename's extension has an extractor
func (s *Service) Supports(filename string) bool {
	_, ok := s.extractors[strings.ToLower(filepath.Ext(filename))]
	return ok
}

// SupportedExtensions lists handled extensions, lowercase with leading dot
func (s *Service) SupportedExtensions() []string {
	exts := make([]string, 0, len(s.extractors))
	for ext := range s.extractors {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// extractText handles plain text files
func (s *Service) extractText(ctx context.Context, path string, filename string) ([]models.Segment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return []models.Segment{{
		Text:     string(data),
		Metadata: map[string]interface{}{"source": filename},
	}}, nil
}
