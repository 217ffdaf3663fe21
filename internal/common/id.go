package common

import (
	"github.com/google/uuid"
)

// NewDocumentID generates a unique document ID with the "doc_" prefix
// Format: doc_<uuid>
func NewDocumentID() string {
	return "doc_" + uuid.New().String()
}

// NewSessionID generates a unique chat session ID with the "chat_" prefix
// Format: chat_<uuid>
func NewSessionID() string {
	return "chat_" + uuid.New().String()
}
