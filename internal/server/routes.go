package server

import (
	"net/http"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// Document ingestion
	mux.HandleFunc("/upload/", s.app.UploadHandler.UploadDocumentHandler) // POST /upload/{folderId}

	// Question answering
	mux.HandleFunc("/chat/", s.app.ChatHandler.AskHandler) // POST /chat/{folderId}

	// Folder and document management
	mux.HandleFunc("/folders", s.app.FolderHandler.ListFoldersHandler)
	mux.HandleFunc("/folders/", s.app.FolderHandler.RouteFolderRequest) // GET .../documents, DELETE /{id}, DELETE .../files/{filename}

	// Chat history
	mux.HandleFunc("/chats/", s.app.SessionHandler.DeleteSessionHandler) // DELETE /chats/{chatId}

	// API routes - System
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)
	mux.HandleFunc("/api/health", s.app.APIHandler.HealthHandler)
	mux.HandleFunc("/api/chat/health", s.app.ChatHandler.HealthHandler)

	// 404 handler for unmatched API routes
	mux.HandleFunc("/api/", s.app.APIHandler.NotFoundHandler)

	return mux
}
