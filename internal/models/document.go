package models

import (
	"time"
)

// Segment represents a unit of extracted text before chunking.
// Extractors emit one segment per natural division of the source
// document (a PDF page, an HTML document body, an email part).
type Segment struct {
	Text     string                 `json:"text"`
	Metadata map[string]interface{} `json:"metadata"` // source filename, page number, etc.
}

// Chunk represents a single indexed piece of a document.
// Chunks inherit the metadata of the segment they were split from.
type Chunk struct {
	ID       string                 `json:"id"` // doc_{uuid}
	Content  string                 `json:"content"`
	Metadata map[string]interface{} `json:"metadata"`
}

// DocumentInfo describes a stored upload within a folder
type DocumentInfo struct {
	Filename   string    `json:"filename"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploaded_at"`
}
