package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/ternarybob/doctrina/internal/models"
)

// extractPDF extracts text page by page using pdfcpu. Each page becomes
// one segment so page numbers survive into chunk metadata.
func (s *Service) extractPDF(ctx context.Context, path string, filename string) ([]models.Segment, error) {
	conf := model.NewDefaultConfiguration()

	pdfCtx, err := api.ReadContextFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF context: %w", err)
	}
	pageCount := pdfCtx.PageCount

	// pdfcpu extracts page content streams to files
	outDir := filepath.Join(s.tempDir, "pages_"+uuid.New().String())
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create extraction directory: %w", err)
	}
	defer os.RemoveAll(outDir)

	if err := api.ExtractContentFile(path, outDir, nil, conf); err != nil {
		return nil, fmt.Errorf("failed to extract PDF content: %w", err)
	}

	pageTexts := make(map[int]string)
	files, _ := os.ReadDir(outDir)
	for _, file := range files {
		if file.IsDir() {
			continue
		}
		content, err := os.ReadFile(filepath.Join(outDir, file.Name()))
		if err != nil {
			continue
		}

		var pageNum int
		if _, err := fmt.Sscanf(file.Name(), "page_%d", &pageNum); err != nil {
			if _, err := fmt.Sscanf(file.Name(), "Content_page_%d", &pageNum); err != nil {
				continue
			}
		}
		pageTexts[pageNum] = decodeContentStream(string(content))
	}

	segments := make([]models.Segment, 0, pageCount)
	for pageNum := 1; pageNum <= pageCount; pageNum++ {
		text := strings.TrimSpace(pageTexts[pageNum])
		if text == "" {
			continue
		}
		segments = append(segments, models.Segment{
			Text: text,
			Metadata: map[string]interface{}{
				"source": filename,
				"page":   pageNum,
			},
		})
	}

	if len(segments) == 0 {
		return nil, fmt.Errorf("no extractable text in PDF (%d pages)", pageCount)
	}

	return segments, nil
}

// decodeContentStream pulls string operands of the text-showing operators
// (Tj, TJ, ' and ") out of a PDF content stream. Positioning operators TD
// and T* mark line breaks.
func decodeContentStream(content string) string {
	var sb strings.Builder
	var current strings.Builder
	inString := false
	escaped := false
	depth := 0

	flushOperator := func(op string) {
		switch op {
		case "Tj", "TJ", "'", "\"":
			// Text already written by the string scanner
		case "TD", "Td", "T*":
			sb.WriteString("\n")
		case "ET":
			sb.WriteString("\n")
		}
	}

	var op strings.Builder
	for i := 0; i < len(content); i++ {
		c := content[i]

		if inString {
			if escaped {
				switch c {
				case 'n':
					current.WriteByte('\n')
				case 't':
					current.WriteByte('\t')
				case '(', ')', '\\':
					current.WriteByte(c)
				}
				escaped = false
				continue
			}
			switch c {
			case '\\':
				escaped = true
			case '(':
				depth++
				current.WriteByte(c)
			case ')':
				if depth == 0 {
					inString = false
					sb.WriteString(current.String())
					current.Reset()
				} else {
					depth--
					current.WriteByte(c)
				}
			default:
				current.WriteByte(c)
			}
			continue
		}

		switch {
		case c == '(':
			inString = true
			depth = 0
		case c == ' ' || c == '\n' || c == '\r' || c == '\t' || c == '[' || c == ']':
			if op.Len() > 0 {
				flushOperator(op.String())
				op.Reset()
			}
		default:
			op.WriteByte(c)
		}
	}
	if op.Len() > 0 {
		flushOperator(op.String())
	}

	return sb.String()
}
