package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/doctrina/internal/interfaces"
)

// FolderHandler handles folder and document management HTTP requests
type FolderHandler struct {
	folderService interfaces.FolderService
	logger        arbor.ILogger
}

// NewFolderHandler creates a new folder handler
func NewFolderHandler(folderService interfaces.FolderService, logger arbor.ILogger) *FolderHandler {
	return &FolderHandler{
		folderService: folderService,
		logger:        logger,
	}
}

// ListFoldersHandler handles GET /folders requests
func (h *FolderHandler) ListFoldersHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	folders, err := h.folderService.ListFolders(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"folders": folders,
	})
}

// ListDocumentsHandler handles GET /folders/{folderId}/documents requests
func (h *FolderHandler) ListDocumentsHandler(w http.ResponseWriter, r *http.Request, folderID string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	documents, err := h.folderService.ListDocuments(r.Context(), folderID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"folderId":  folderID,
		"documents": documents,
	})
}

// DeleteFolderHandler handles DELETE /folders/{folderId} requests
func (h *FolderHandler) DeleteFolderHandler(w http.ResponseWriter, r *http.Request, folderID string) {
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}

	if err := h.folderService.DeleteFolder(r.Context(), folderID); err != nil {
		h.logger.Error().Err(err).Str("folder_id", folderID).Msg("Failed to delete folder")
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"message":  fmt.Sprintf("Folder %s deleted", folderID),
		"folderId": folderID,
	})
}

// DeleteDocumentHandler handles DELETE /folders/{folderId}/files/{filename} requests
func (h *FolderHandler) DeleteDocumentHandler(w http.ResponseWriter, r *http.Request, folderID, filename string) {
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}

	remaining, err := h.folderService.DeleteDocument(r.Context(), folderID, filename)
	if err != nil {
		h.logger.Warn().Err(err).
			Str("folder_id", folderID).
			Str("filename", filename).
			Msg("Failed to delete document")
		writeServiceError(w, err)
		return
	}

	if remaining == nil {
		remaining = []string{}
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message":        fmt.Sprintf("File %s deleted", filename),
		"remainingFiles": remaining,
	})
}

// RouteFolderRequest dispatches /folders/... requests to the matching
// handler based on path shape
func (h *FolderHandler) RouteFolderRequest(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/folders/"), "/")
	if rest == "" {
		h.ListFoldersHandler(w, r)
		return
	}

	parts := strings.Split(rest, "/")
	switch {
	case len(parts) == 1:
		h.DeleteFolderHandler(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "documents":
		h.ListDocumentsHandler(w, r, parts[0])
	case len(parts) == 3 && parts[1] == "files":
		h.DeleteDocumentHandler(w, r, parts[0], parts[2])
	default:
		WriteError(w, http.StatusNotFound, "Not found")
	}
}
