package interfaces

import (
	"context"
	"io"

	"github.com/ternarybob/doctrina/internal/models"
)

// UploadResult reports the outcome of ingesting one document
type UploadResult struct {
	Filename string `json:"filename"`
	Chunks   int    `json:"chunks"`
	FolderID string `json:"folderId"`
}

// FolderService manages per-folder document collections: ingestion,
// listing and deletion. A folder exists once it holds at least one
// document; referencing an unknown folder is not an error for reads.
type FolderService interface {
	// Upload saves the file, extracts and chunks its text, and indexes the
	// chunks. Rejects duplicates (ErrDuplicateDocument) and unhandled
	// extensions (ErrUnsupportedFormat). The saved file is removed when
	// processing fails.
	Upload(ctx context.Context, folderID string, filename string, r io.Reader) (*UploadResult, error)

	// ListDocuments returns the filenames stored in a folder, sorted.
	// An unknown folder returns an empty list.
	ListDocuments(ctx context.Context, folderID string) ([]string, error)

	// ListDocumentInfo returns filenames with size and upload time
	ListDocumentInfo(ctx context.Context, folderID string) ([]models.DocumentInfo, error)

	// DeleteDocument removes one file and rebuilds the folder's index from
	// the remaining documents. Returns ErrDocumentNotFound when absent.
	DeleteDocument(ctx context.Context, folderID string, filename string) (remaining []string, err error)

	// DeleteFolder removes a folder's documents and index. Unknown folders
	// are not an error.
	DeleteFolder(ctx context.Context, folderID string) error

	// ListFolders returns the IDs of folders that hold documents
	ListFolders(ctx context.Context) ([]string, error)
}
