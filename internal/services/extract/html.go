package extract

import (
	"context"
	"os"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"

	"github.com/ternarybob/doctrina/internal/models"
)

// extractHTML strips boilerplate with goquery and converts the remaining
// document to markdown, which keeps headings and list structure for the
// chunker's separator ladder
func (s *Service) extractHTML(ctx context.Context, path string, filename string) ([]models.Segment, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())

	body := doc.Find("body")
	if body.Length() == 0 {
		body = doc.Selection
	}

	// Prefer the main content container when one exists
	mainContent := body.Find("main, article, [role=main]").First()
	if mainContent.Length() > 0 {
		body = mainContent
	}

	// Remove unwanted elements
	body.Find("script, style, noscript").Remove()
	body.Find("nav, header, footer, aside").Remove()

	html, err := goquery.OuterHtml(body)
	if err != nil {
		return nil, err
	}

	converter := md.NewConverter("", true, nil)
	markdown, err := converter.ConvertString(html)
	if err != nil {
		return nil, err
	}

	text := strings.TrimSpace(markdown)
	if text == "" {
		// Conversion produced nothing usable, fall back to raw text
		text = strings.TrimSpace(body.Text())
	}

	metadata := map[string]interface{}{"source": filename}
	if title != "" {
		metadata["title"] = title
	}

	return []models.Segment{{
		Text:     text,
		Metadata: metadata,
	}}, nil
}
