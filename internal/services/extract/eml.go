package extract

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/emersion/go-message/mail"

	"github.com/ternarybob/doctrina/internal/models"
)

// extractEML parses an RFC 5322 message. The subject and sender are
// prepended so questions about who sent what remain answerable; the
// text/plain part is preferred and text/html is converted when it is
// the only body.
func (s *Service) extractEML(ctx context.Context, path string, filename string) ([]models.Segment, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	mr, err := mail.CreateReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to create mail reader: %w", err)
	}

	metadata := map[string]interface{}{"source": filename}

	var header strings.Builder
	if subject, err := mr.Header.Subject(); err == nil && subject != "" {
		header.WriteString("Subject: " + subject + "\n")
		metadata["subject"] = subject
	}
	if from, err := mr.Header.AddressList("From"); err == nil && len(from) > 0 {
		header.WriteString("From: " + from[0].String() + "\n")
	}
	if date, err := mr.Header.Date(); err == nil && !date.IsZero() {
		header.WriteString("Date: " + date.Format("2006-01-02") + "\n")
	}

	var plainBody, htmlBody string
	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read next part: %w", err)
		}

		switch h := p.Header.(type) {
		case *mail.InlineHeader:
			contentType, _, _ := h.ContentType()
			switch {
			case strings.HasPrefix(contentType, "text/plain"):
				b, err := io.ReadAll(p.Body)
				if err != nil {
					return nil, fmt.Errorf("failed to read body: %w", err)
				}
				plainBody = string(b)
			case strings.HasPrefix(contentType, "text/html"):
				b, err := io.ReadAll(p.Body)
				if err != nil {
					return nil, fmt.Errorf("failed to read body: %w", err)
				}
				htmlBody = string(b)
			}
		}
	}

	body := strings.TrimSpace(plainBody)
	if body == "" && htmlBody != "" {
		converter := md.NewConverter("", true, nil)
		if converted, err := converter.ConvertString(htmlBody); err == nil {
			body = strings.TrimSpace(converted)
		}
	}

	text := strings.TrimSpace(header.String() + "\n" + body)
	if text == "" {
		return nil, fmt.Errorf("message has no extractable text")
	}

	return []models.Segment{{
		Text:     text,
		Metadata: metadata,
	}}, nil
}
