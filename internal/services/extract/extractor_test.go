package extract

import (
	"archive/zip"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-pdf/fpdf"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/doctrina/internal/interfaces"
)

func newTestService() *Service {
	return NewService(arbor.NewLogger())
}

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestExtractUnsupportedFormat(t *testing.T) {
	service := newTestService()

	_, err := service.Extract(context.Background(), "/tmp/whatever.xlsx", "report.xlsx")
	if !errors.Is(err, interfaces.ErrUnsupportedFormat) {
		t.Errorf("Expected ErrUnsupportedFormat, got %v", err)
	}

	if service.Supports("report.xlsx") {
		t.Error("xlsx should not be supported")
	}
	if !service.Supports("Notes.TXT") {
		t.Error("Extension matching should be case-insensitive")
	}
}

func TestExtractText(t *testing.T) {
	service := newTestService()
	path := writeFixture(t, "notes.txt", "Plain text about cells.\n\nSecond paragraph.")

	segments, err := service.Extract(context.Background(), path, "notes.txt")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(segments) != 1 {
		t.Fatalf("Expected 1 segment, got %d", len(segments))
	}
	if !strings.Contains(segments[0].Text, "Second paragraph.") {
		t.Errorf("Missing content: %s", segments[0].Text)
	}
	if segments[0].Metadata["source"] != "notes.txt" {
		t.Errorf("Expected source metadata, got %v", segments[0].Metadata)
	}
}

func TestExtractMarkdownStripsFormatting(t *testing.T) {
	service := newTestService()
	path := writeFixture(t, "guide.md", "# Cell Biology\n\nThe **mitochondria** produces energy.\n\n- point one\n- point two\n")

	segments, err := service.Extract(context.Background(), path, "guide.md")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	text := segments[0].Text
	if strings.Contains(text, "#") || strings.Contains(text, "**") {
		t.Errorf("Formatting characters leaked into text: %s", text)
	}
	if !strings.Contains(text, "Cell Biology") {
		t.Errorf("Heading text missing: %s", text)
	}
	if !strings.Contains(text, "mitochondria") {
		t.Errorf("Body text missing: %s", text)
	}
	if !strings.Contains(text, "point two") {
		t.Errorf("List text missing: %s", text)
	}
}

func TestExtractHTMLRemovesBoilerplate(t *testing.T) {
	service := newTestService()
	html := `<html><head><title>Photosynthesis</title><style>body{color:red}</style></head>
<body>
<nav>Home | About | Contact</nav>
<main><h1>Photosynthesis</h1><p>Plants convert light into chemical energy.</p></main>
<footer>Copyright 2024</footer>
<script>alert("hi")</script>
</body></html>`
	path := writeFixture(t, "page.html", html)

	segments, err := service.Extract(context.Background(), path, "page.html")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	text := segments[0].Text
	if !strings.Contains(text, "Plants convert light") {
		t.Errorf("Main content missing: %s", text)
	}
	if strings.Contains(text, "Home | About") || strings.Contains(text, "Copyright") {
		t.Errorf("Boilerplate not removed: %s", text)
	}
	if strings.Contains(text, "alert(") || strings.Contains(text, "color:red") {
		t.Errorf("Script or style leaked: %s", text)
	}
	if segments[0].Metadata["title"] != "Photosynthesis" {
		t.Errorf("Expected title metadata, got %v", segments[0].Metadata["title"])
	}
}

func TestExtractDOCX(t *testing.T) {
	service := newTestService()

	documentXML := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>The French Revolution began in 1789.</w:t></w:r></w:p>
    <w:p><w:r><w:t>It ended the monarchy.</w:t></w:r></w:p>
  </w:body>
</w:document>`

	path := filepath.Join(t.TempDir(), "history.docx")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte(documentXML)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	f.Close()

	segments, err := service.Extract(context.Background(), path, "history.docx")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	text := segments[0].Text
	if !strings.Contains(text, "French Revolution began in 1789") {
		t.Errorf("First paragraph missing: %s", text)
	}
	if !strings.Contains(text, "It ended the monarchy.") {
		t.Errorf("Second paragraph missing: %s", text)
	}
	if !strings.Contains(text, "\n\n") {
		t.Errorf("Expected paragraph break between paragraphs: %q", text)
	}
}

func TestExtractPDF(t *testing.T) {
	service := newTestService()

	path := filepath.Join(t.TempDir(), "lecture.pdf")
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(40, 10, "Thermodynamics lecture notes")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(40, 10, "Entropy always increases")
	if err := pdf.OutputFileAndClose(path); err != nil {
		t.Fatal(err)
	}

	segments, err := service.Extract(context.Background(), path, "lecture.pdf")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(segments) != 2 {
		t.Fatalf("Expected 2 page segments, got %d", len(segments))
	}

	if !strings.Contains(segments[0].Text, "Thermodynamics") {
		t.Errorf("Page 1 text missing: %s", segments[0].Text)
	}
	if !strings.Contains(segments[1].Text, "Entropy") {
		t.Errorf("Page 2 text missing: %s", segments[1].Text)
	}
	if segments[0].Metadata["page"] != 1 || segments[1].Metadata["page"] != 2 {
		t.Error("Page numbers not recorded in metadata")
	}
}

func TestExtractEML(t *testing.T) {
	service := newTestService()

	eml := "From: Alice Teacher <alice@example.edu>\r\n" +
		"To: students@example.edu\r\n" +
		"Subject: Exam schedule\r\n" +
		"Date: Mon, 02 Jan 2006 15:04:05 -0700\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n" +
		"\r\n" +
		"The final exam is on Friday at 9am in room 204.\r\n"
	path := writeFixture(t, "exam.eml", eml)

	segments, err := service.Extract(context.Background(), path, "exam.eml")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	text := segments[0].Text
	if !strings.Contains(text, "Subject: Exam schedule") {
		t.Errorf("Subject header missing: %s", text)
	}
	if !strings.Contains(text, "final exam is on Friday") {
		t.Errorf("Body missing: %s", text)
	}
	if segments[0].Metadata["subject"] != "Exam schedule" {
		t.Errorf("Expected subject metadata, got %v", segments[0].Metadata)
	}
}

func TestSupportedExtensionsSorted(t *testing.T) {
	service := newTestService()

	exts := service.SupportedExtensions()
	if len(exts) != 8 {
		t.Fatalf("Expected 8 extensions, got %d: %v", len(exts), exts)
	}
	for i := 1; i < len(exts); i++ {
		if exts[i-1] >= exts[i] {
			t.Errorf("Extensions not sorted: %v", exts)
		}
	}
}
