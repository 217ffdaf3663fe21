package interfaces

import "errors"

var (
	// ErrUnsupportedFormat is returned when an upload has a file extension
	// no extractor can handle
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrDuplicateDocument is returned when a folder already contains a file
	// with the same name
	ErrDuplicateDocument = errors.New("document already exists in folder")

	// ErrDocumentNotFound is returned when a named file does not exist in a folder
	ErrDocumentNotFound = errors.New("document not found in folder")

	// ErrInvalidFolderID is returned when a folder identifier contains path
	// separators or dot components that would resolve outside the data
	// directory
	ErrInvalidFolderID = errors.New("invalid folder ID")

	// ErrNoIndex is returned when a folder has no indexed documents
	ErrNoIndex = errors.New("no index exists for folder")

	// ErrSessionNotFound is returned when a chat session ID is unknown
	ErrSessionNotFound = errors.New("chat session not found")
)
